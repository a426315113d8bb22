package config

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/sethvargo/go-envconfig"

	"github.com/fcacademy/academyweb/pkg"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"

	envPrefix = "ACADEMY_"
)

// Duration lets TOML values like "720h" decode into a time.Duration.
type Duration struct {
	time.Duration
}

func (d *Duration) UnmarshalText(text []byte) error {
	parsed, err := time.ParseDuration(string(text))
	if err != nil {
		return fmt.Errorf("parse duration %q: %w", text, err)
	}
	d.Duration = parsed
	return nil
}

type Config struct {
	Environment string `toml:"-"`

	Host string `toml:"host"`
	Port int    `toml:"port"`

	// logging
	LogLevel      string `toml:"log_level"`
	LogsPath      string `toml:"logs_path"`
	LogToStdout   bool   `toml:"log_to_stdout"`
	LogFormatJSON bool   `toml:"log_format_json"`
	SentryEnabled bool   `toml:"sentry_enabled"`

	// metrics
	PrometheusMetricsHost string `toml:"prometheus_metrics_host"`
	PrometheusMetricsPort string `toml:"prometheus_metrics_port"`

	// database
	DBMaxConns int32 `toml:"db_max_conns"`

	// redis, used for the login rate limiter and the list cache
	RedisHost string `toml:"redis_host"`
	RedisPort string `toml:"redis_port"`

	// list cache: "redis", "memory" or "" (disabled)
	CacheBackend string   `toml:"cache_backend"`
	CacheTTL     Duration `toml:"cache_ttl"`
	CacheSizeMB  int      `toml:"cache_size_mb"`

	// auth
	TokenTTL                    Duration `toml:"token_ttl"`
	BcryptCost                  int      `toml:"bcrypt_cost"`
	LoginRateLimitAllowedPerMin int      `toml:"login_rate_limit_per_min"`

	// reverse proxies (cidr or ip) whose X-Real-Ip / X-Forwarded-For headers are honored
	TrustedProxies []string `toml:"trusted_proxies"`

	// uploads / object storage
	MaxUploadSizeMB int    `toml:"max_upload_size_mb"`
	StorageRegion   string `toml:"storage_region"`

	Secrets *Secrets `toml:"-"`
}

// Secrets are never kept in the config file; all of them come from the environment.
type Secrets struct {
	JWTSecret          string   `env:"JWT_SECRET, required"`
	DatabaseURL        string   `env:"DATABASE_URL, required"`
	ServiceURL         string   `env:"SERVICE_URL, required"`
	ServiceRoleKey     string   `env:"SERVICE_ROLE_KEY, required"`
	StorageBucket      string   `env:"STORAGE_BUCKET, required"`
	StorageAccessKeyID string   `env:"STORAGE_ACCESS_KEY_ID, required"`
	StorageSecretKey   string   `env:"STORAGE_SECRET_KEY, required"`
	CorsOrigins        []string `env:"CORS_ORIGINS, required"`
	CorsMethods        []string `env:"CORS_METHODS, required"`
	CorsHeaders        []string `env:"CORS_HEADERS, required"`
	RedisPassword      string   `env:"REDIS_PASS"`
}

type Toml struct {
	Development *Config
	Production  *Config
}

func (t *Toml) Get(env string) (*Config, error) {
	var cfg *Config
	switch strings.ToLower(env) {
	case "dev", "development":
		cfg, env = t.Development, EnvDevelopment
	case "prod", "production":
		cfg, env = t.Production, EnvProduction
	default:
		return nil, fmt.Errorf("unknown env: %s", env)
	}
	if cfg == nil {
		return nil, fmt.Errorf("no [%s] section in config", env)
	}
	cfg.Environment = env
	return cfg, nil
}

// Load reads the TOML config section for env and the secrets from ACADEMY_* env vars.
func Load(ctx context.Context, env, path string) (*Config, error) {
	var tomlConfig Toml
	if _, err := toml.DecodeFile(path, &tomlConfig); err != nil {
		return nil, fmt.Errorf("decode config file %s: %w", path, err)
	}

	cfg, err := tomlConfig.Get(env)
	if err != nil {
		return nil, err
	}
	cfg.applyDefaults()

	cfg.Secrets, err = LoadSecrets(ctx, envconfig.OsLookuper())
	if err != nil {
		return nil, err
	}

	return cfg, nil
}

func LoadSecrets(ctx context.Context, lookuper envconfig.Lookuper) (*Secrets, error) {
	var secrets Secrets
	if err := envconfig.ProcessWith(ctx, &envconfig.Config{
		Target:   &secrets,
		Lookuper: envconfig.PrefixLookuper(envPrefix, lookuper),
	}); err != nil {
		return nil, fmt.Errorf("load env secrets: %w", err)
	}

	secrets.CorsOrigins = pkg.CleanList(secrets.CorsOrigins)
	secrets.CorsMethods = pkg.CleanList(secrets.CorsMethods)
	secrets.CorsHeaders = pkg.CleanList(secrets.CorsHeaders)
	if len(secrets.CorsOrigins) == 0 || len(secrets.CorsMethods) == 0 || len(secrets.CorsHeaders) == 0 {
		return nil, errors.New("load env secrets: cors origins, methods and headers must not be empty")
	}

	return &secrets, nil
}

func (c *Config) IsProduction() bool {
	return c.Environment == EnvProduction
}

func (c *Config) MaxUploadSizeBytes() int64 {
	return int64(c.MaxUploadSizeMB) << 20
}

func (c *Config) applyDefaults() {
	if c.Host == "" {
		c.Host = "0.0.0.0"
	}
	if c.Port == 0 {
		c.Port = 5000
	}
	if c.PrometheusMetricsHost == "" {
		c.PrometheusMetricsHost = "localhost"
	}
	if c.PrometheusMetricsPort == "" {
		c.PrometheusMetricsPort = "2112"
	}
	if c.TokenTTL.Duration == 0 {
		c.TokenTTL.Duration = 30 * 24 * time.Hour
	}
	if c.BcryptCost == 0 {
		c.BcryptCost = pkg.DefaultBcryptCost
	}
	if c.LoginRateLimitAllowedPerMin == 0 {
		c.LoginRateLimitAllowedPerMin = 15
	}
	if c.MaxUploadSizeMB == 0 {
		c.MaxUploadSizeMB = 10
	}
	if c.CacheTTL.Duration == 0 {
		c.CacheTTL.Duration = 5 * time.Minute
	}
	if c.CacheSizeMB == 0 {
		c.CacheSizeMB = 32
	}
	if c.StorageRegion == "" {
		c.StorageRegion = "us-east-1"
	}
}
