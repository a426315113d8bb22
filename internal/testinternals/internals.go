package testinternals

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/go-redis/redis_rate/v9"
	"github.com/stretchr/testify/require"

	"github.com/fcacademy/academyweb/internal"
	"github.com/fcacademy/academyweb/internal/admin"
	"github.com/fcacademy/academyweb/internal/auth"
	"github.com/fcacademy/academyweb/internal/cache"
	"github.com/fcacademy/academyweb/internal/config"
	"github.com/fcacademy/academyweb/internal/content"
	"github.com/fcacademy/academyweb/internal/storage"
	"github.com/fcacademy/academyweb/internal/telemetry/metrics"
	testingpkg "github.com/fcacademy/academyweb/pkg/testing"
)

const (
	TestJWTSecret     = "test-jwt-secret"
	TestServiceURL    = "https://academy.storage.test"
	TestBucket        = "academy-media"
	TestAdminUsername = "admin"
	TestAdminPassword = "correct-horse"
)

// Internals wires in-memory dependencies for router level tests.
type Internals struct {
	Config         *config.Config
	ContentRepo    *content.TestRepo
	AdminRepo      *admin.TestRepo
	Storage        *storage.TestStorage
	DB             *TestDB
	RateLimiter    *TestRateLimiter
	TokenIssuer    *auth.JWTIssuer
	MetricsManager *metrics.Manager

	RedisClient *redis.Client
	ListCache   cache.ListCache
}

func NewTestingInternals(t *testing.T) *Internals {
	t.Helper()

	cfg := &config.Config{
		Environment:                 config.EnvDevelopment,
		BcryptCost:                  4,
		LoginRateLimitAllowedPerMin: 15,
		MaxUploadSizeMB:             1,
		Secrets: &config.Secrets{
			JWTSecret:     TestJWTSecret,
			ServiceURL:    TestServiceURL,
			StorageBucket: TestBucket,
			CorsOrigins:   []string{"https://academy.test"},
			CorsMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
			CorsHeaders:   []string{"Content-Type", "Authorization"},
		},
	}

	issuer, err := auth.NewJWTIssuer(TestJWTSecret, time.Hour)
	require.NoError(t, err)

	adminRepo := admin.NewTestRepo()
	_, err = adminRepo.AddAccount(TestAdminUsername, TestAdminPassword)
	require.NoError(t, err)

	_, rdb := testingpkg.GetRedisClientAndCtx(t)

	return &Internals{
		Config:         cfg,
		ContentRepo:    content.NewTestRepo(),
		AdminRepo:      adminRepo,
		Storage:        storage.NewTestStorage(TestServiceURL, TestBucket),
		DB:             &TestDB{},
		RateLimiter:    NewTestRateLimiter(),
		TokenIssuer:    issuer,
		MetricsManager: metrics.NewTestManager(),
		RedisClient:    rdb,
		ListCache:      cache.NewRedisListCache(rdb, time.Minute),
	}
}

func (i *Internals) RouterParams() internal.RouterParams {
	return internal.RouterParams{
		Config:         i.Config,
		VersionInfo:    "test",
		DB:             i.DB,
		ContentRepo:    i.ContentRepo,
		AdminRepo:      i.AdminRepo,
		Storage:        i.Storage,
		ListCache:      i.ListCache,
		RateLimiter:    i.RateLimiter,
		TokenIssuer:    i.TokenIssuer,
		MetricsManager: i.MetricsManager,
	}
}

// Token issues a valid bearer token for the seeded admin.
func (i *Internals) Token(t *testing.T) string {
	t.Helper()
	token, _, err := i.TokenIssuer.Issue(TestAdminUsername)
	require.NoError(t, err)
	return token
}

type TestDB struct {
	Err error
}

func (db *TestDB) Ping(context.Context) error {
	return db.Err
}

// TestRateLimiter allows Limit requests per key; a zero Limit never limits.
type TestRateLimiter struct {
	mutex  sync.Mutex
	Limit  int
	counts map[string]int
}

func NewTestRateLimiter() *TestRateLimiter {
	return &TestRateLimiter{
		counts: map[string]int{},
	}
}

func (l *TestRateLimiter) Allow(_ context.Context, key string, limit redis_rate.Limit) (*redis_rate.Result, error) {
	l.mutex.Lock()
	defer l.mutex.Unlock()

	l.counts[key]++
	res := &redis_rate.Result{
		Limit:      limit,
		Allowed:    1,
		RetryAfter: -1,
	}
	if l.Limit > 0 && l.counts[key] > l.Limit {
		res.Allowed = 0
		res.RetryAfter = time.Minute
	}
	return res, nil
}
