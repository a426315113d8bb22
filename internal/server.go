package internal

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/IBM/pgxpoolprometheus"
	"github.com/getsentry/sentry-go"
	"github.com/go-redis/redis/extra/redisotel/v8"
	"github.com/go-redis/redis/v8"
	"github.com/go-redis/redis_rate/v9"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/multierr"

	"github.com/fcacademy/academyweb/internal/admin"
	"github.com/fcacademy/academyweb/internal/auth"
	"github.com/fcacademy/academyweb/internal/cache"
	"github.com/fcacademy/academyweb/internal/config"
	"github.com/fcacademy/academyweb/internal/content"
	"github.com/fcacademy/academyweb/internal/db"
	"github.com/fcacademy/academyweb/internal/storage"
	"github.com/fcacademy/academyweb/internal/telemetry/metrics"
	"github.com/fcacademy/academyweb/internal/telemetry/tracing"
)

const (
	serviceName          = "academy-backend"
	shutdownMaxWait      = 15 * time.Second
	cacheBackendRedis    = "redis"
	cacheBackendInMemory = "memory"
)

type Server struct {
	httpServer        *http.Server
	metricsHttpServer *http.Server
	versionInfo       string

	config      *config.Config
	dbPool      *pgxpool.Pool
	redisClient *redis.Client
	storage     *storage.S3Storage
	listCache   cache.ListCache
	jwtIssuer   *auth.JWTIssuer

	// metrics
	metricsManager *metrics.Manager
	promRegistry   *prometheus.Registry
	otelShutdown   func()
}

type NewServerParams struct {
	Config                  *config.Config
	VersionInfo             string
	HoneycombTracingEnabled bool
}

func NewServer(
	ctx context.Context,
	params NewServerParams,
) (*Server, error) {
	cfg := params.Config
	if cfg == nil || cfg.Secrets == nil {
		return nil, errors.New("config with secrets is required")
	}

	// use honeycomb distro to setup OpenTelemetry SDK
	otelShutdown, err := tracing.HoneycombSetup(params.HoneycombTracingEnabled, serviceName)
	if err != nil {
		return nil, fmt.Errorf("honeycomb setup: %w", err)
	}

	jwtIssuer, err := auth.NewJWTIssuer(cfg.Secrets.JWTSecret, cfg.TokenTTL.Duration)
	if err != nil {
		return nil, fmt.Errorf("new jwt issuer: %w", err)
	}

	dbPool, err := db.NewDBPool(ctx, db.NewDBPoolParams{
		DatabaseURL:    cfg.Secrets.DatabaseURL,
		MaxConns:       cfg.DBMaxConns,
		TracingEnabled: params.HoneycombTracingEnabled,
	})
	if err != nil {
		return nil, fmt.Errorf("new db pool: %w", err)
	}

	if err := dbPool.Ping(ctx); err != nil {
		log.Warnf("failed to ping db: %s", err)
	}

	pgxpoolCollector := pgxpoolprometheus.NewCollector(
		dbPool,
		map[string]string{"db_name": "academy"},
	)
	promRegistry := metrics.SetupPrometheus(pgxpoolCollector)
	metricsManager := metrics.NewManager("academy", "main", promRegistry)
	metricsManager.GaugeLifeSignal.Set(0)

	rdb := redis.NewClient(&redis.Options{
		Addr:     net.JoinHostPort(cfg.RedisHost, cfg.RedisPort),
		Password: cfg.Secrets.RedisPassword,
		DB:       0, // use default DB
	})
	if params.HoneycombTracingEnabled {
		rdb.AddHook(redisotel.NewTracingHook())
	}

	rdbStatus := rdb.Ping(ctx)
	if err := rdbStatus.Err(); err != nil {
		log.Errorf("--> failed to ping redis: %s", err)
	} else {
		log.Debugf("redis ping: %s", rdbStatus.Val())
	}

	objectStorage, err := storage.NewS3Storage(ctx, storage.NewS3StorageParams{
		ServiceURL:     cfg.Secrets.ServiceURL,
		Bucket:         cfg.Secrets.StorageBucket,
		Region:         cfg.StorageRegion,
		AccessKeyID:    cfg.Secrets.StorageAccessKeyID,
		SecretKey:      cfg.Secrets.StorageSecretKey,
		ServiceRoleKey: cfg.Secrets.ServiceRoleKey,
		HTTPClient: &http.Client{
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
	})
	if err != nil {
		dbPool.Close()
		return nil, multierr.Append(fmt.Errorf("new object storage: %w", err), rdb.Close())
	}

	return &Server{
		config:      cfg,
		versionInfo: params.VersionInfo,
		dbPool:      dbPool,
		redisClient: rdb,
		storage:     objectStorage,
		listCache:   newListCache(cfg, rdb),
		jwtIssuer:   jwtIssuer,

		// telemetry
		metricsManager: metricsManager,
		promRegistry:   promRegistry,
		otelShutdown:   otelShutdown,
	}, nil
}

func newListCache(cfg *config.Config, rdb *redis.Client) cache.ListCache {
	switch cfg.CacheBackend {
	case cacheBackendRedis:
		log.Debugf("list cache: redis, ttl %s", cfg.CacheTTL.Duration)
		return cache.NewRedisListCache(rdb, cfg.CacheTTL.Duration)
	case cacheBackendInMemory:
		log.Debugf("list cache: in-memory %d MB, ttl %s", cfg.CacheSizeMB, cfg.CacheTTL.Duration)
		return cache.NewMemoryListCache(cfg.CacheSizeMB<<20, cfg.CacheTTL.Duration)
	default:
		log.Debugln("list cache disabled")
		return cache.NopListCache{}
	}
}

func (s *Server) routerSetup() (http.Handler, error) {
	return NewRouter(RouterParams{
		Config:         s.config,
		VersionInfo:    s.versionInfo,
		DB:             s.dbPool,
		ContentRepo:    content.NewRepo(s.dbPool),
		AdminRepo:      admin.NewRepo(s.dbPool),
		Storage:        s.storage,
		ListCache:      s.listCache,
		RateLimiter:    redis_rate.NewLimiter(s.redisClient),
		TokenIssuer:    s.jwtIssuer,
		MetricsManager: s.metricsManager,
	})
}

func (s *Server) Serve(ctx context.Context) error {
	router, err := s.routerSetup()
	if err != nil {
		return fmt.Errorf("setup router: %w", err)
	}

	if err := s.storage.HealthCheck(ctx); err != nil {
		log.Warnf("object storage bucket [%s] not reachable: %s", s.storage.Bucket(), err)
	}

	ipAndPort := net.JoinHostPort(s.config.Host, strconv.Itoa(s.config.Port))
	s.httpServer = &http.Server{
		Handler:           router,
		Addr:              ipAndPort,
		WriteTimeout:      time.Minute,
		ReadTimeout:       time.Minute,
		ReadHeaderTimeout: 10 * time.Second,
		ConnState:         s.connStateMetrics,
	}

	metricsAddr := net.JoinHostPort(s.config.PrometheusMetricsHost, s.config.PrometheusMetricsPort)
	s.metricsHttpServer = &http.Server{
		Addr:              metricsAddr,
		Handler:           newMetricsRouter(s.promRegistry),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Infof(" > server listening on: [%s]", ipAndPort)
		err := s.httpServer.ListenAndServe()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("main service, listen and serve: %s", err)
		}
	}()

	go func() {
		log.Debugf(" > metrics listening on: [%s]", metricsAddr)
		err := s.metricsHttpServer.ListenAndServe()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("metrics service, listen and serve: %s", err)
		}
	}()

	s.metricsManager.GaugeLifeSignal.Set(1)
	return nil
}

func newMetricsRouter(reg *prometheus.Registry) http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.InstrumentMetricHandler(
		reg,
		promhttp.HandlerFor(reg, promhttp.HandlerOpts{}),
	))
	return mux
}

func (s *Server) GracefulShutdown() {
	log.Debug("graceful shutdown initiated ...")

	s.metricsManager.GaugeLifeSignal.Set(0)

	ctx, timeoutCancel := context.WithTimeout(context.Background(), shutdownMaxWait)
	defer timeoutCancel()

	// stop accepting requests before closing what the handlers use
	if s.httpServer != nil {
		if err := s.httpServer.Shutdown(ctx); err != nil {
			log.Errorf(" >>> failed to gracefully shutdown http server: %s", err)
		}
		log.Warnln("server shut down")
	}

	if s.metricsHttpServer != nil {
		if err := s.metricsHttpServer.Shutdown(ctx); err != nil {
			log.Errorf(" >>> failed to gracefully shutdown metrics http server: %s", err)
		}
		log.Warnln("metrics server shut down")
	}

	s.otelShutdown()
	log.Trace("otel shut down ...")

	if s.redisClient != nil {
		if err := s.redisClient.Close(); err != nil {
			log.Errorf("failed to close redis client conn: %s", err)
		}
	}

	if s.dbPool != nil {
		log.Debugln("closing db pool ...")
		s.dbPool.Close() // blocking operation
		log.Debugln("db pool closed")
	}

	if ok := sentry.Flush(5 * time.Second); ok {
		log.Debugf("sentry flush ok: %t", ok)
	}
}

func (s *Server) connStateMetrics(_ net.Conn, state http.ConnState) {
	switch state {
	case http.StateNew:
		s.metricsManager.GaugeRequests.Add(1)
	case http.StateClosed, http.StateHijacked:
		s.metricsManager.GaugeRequests.Add(-1)
	default:
		// do nothing
	}
}
