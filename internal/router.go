package internal

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gorilla/mux/otelmux"

	"github.com/fcacademy/academyweb/internal/admin"
	"github.com/fcacademy/academyweb/internal/auth"
	"github.com/fcacademy/academyweb/internal/cache"
	"github.com/fcacademy/academyweb/internal/config"
	"github.com/fcacademy/academyweb/internal/content"
	"github.com/fcacademy/academyweb/internal/middleware"
	"github.com/fcacademy/academyweb/internal/misc"
	"github.com/fcacademy/academyweb/internal/telemetry/metrics"
	"github.com/fcacademy/academyweb/pkg"
)

const loginRateLimitRouterName = "login"

type ContentRepo interface {
	List(ctx context.Context, schema content.Schema, limit, offset int) ([]content.Record, error)
	Get(ctx context.Context, schema content.Schema, id int) (content.Record, error)
	Create(ctx context.Context, schema content.Schema, values map[string]any) (content.Record, error)
	Update(ctx context.Context, schema content.Schema, id int, values map[string]any) (content.Record, error)
	Delete(ctx context.Context, schema content.Schema, id int) (content.Record, error)
}

type AdminRepo interface {
	auth.AccountStore
	List(ctx context.Context) ([]admin.Account, error)
	Get(ctx context.Context, id int) (*admin.Account, error)
	Create(ctx context.Context, username, passwordHash string) (*admin.Account, error)
	Update(ctx context.Context, id int, username, passwordHash *string) (*admin.Account, error)
	Delete(ctx context.Context, id int, actingUsername string) error
}

type ObjectStorage interface {
	Bucket() string
	Upload(ctx context.Context, key, contentType string, body io.Reader, size int64) (string, error)
	Delete(ctx context.Context, key string) error
	KeyFromURL(url string) (string, bool)
}

type DBPinger interface {
	Ping(ctx context.Context) error
}

// RouterParams holds everything the HTTP layer depends on.
// RateLimiter, ListCache and MetricsManager are optional.
type RouterParams struct {
	Config         *config.Config
	VersionInfo    string
	DB             DBPinger
	ContentRepo    ContentRepo
	AdminRepo      AdminRepo
	Storage        ObjectStorage
	ListCache      cache.ListCache
	RateLimiter    middleware.RequestRateLimiter
	TokenIssuer    *auth.JWTIssuer
	MetricsManager *metrics.Manager
}

func NewRouter(params RouterParams) (*mux.Router, error) {
	if params.Config == nil || params.Config.Secrets == nil {
		return nil, errors.New("config with secrets is required")
	}
	if params.TokenIssuer == nil {
		return nil, errors.New("token issuer is required")
	}
	if params.DB == nil || params.ContentRepo == nil || params.AdminRepo == nil || params.Storage == nil {
		return nil, errors.New("db, repos and storage are required")
	}
	if params.MetricsManager == nil {
		params.MetricsManager = metrics.NewManager("academy", "router", prometheus.NewRegistry())
	}
	cfg := params.Config
	exposeErrors := !cfg.IsProduction()

	authService, err := auth.NewService(params.AdminRepo, params.TokenIssuer, cfg.BcryptCost)
	if err != nil {
		return nil, fmt.Errorf("new auth service: %w", err)
	}

	ipResolver, err := pkg.NewClientIPResolver(cfg.TrustedProxies)
	if err != nil {
		return nil, fmt.Errorf("new client ip resolver: %w", err)
	}

	r := mux.NewRouter()
	r.Use(otelmux.Middleware("main-router"))

	miscHandler := misc.NewHandler(params.DB, params.Storage.Bucket(), params.VersionInfo)
	miscHandler.SetupRoutes(r)

	var loginRateLimit func(http.Handler) http.Handler
	if params.RateLimiter != nil {
		loginRateLimit = middleware.RateLimit(
			params.RateLimiter,
			ipResolver,
			loginRateLimitRouterName,
			cfg.LoginRateLimitAllowedPerMin,
			params.MetricsManager,
		)
	}
	authHandler := auth.NewHandler(authService, params.MetricsManager, exposeErrors)
	authHandler.SetupRoutes(r, loginRateLimit)

	adminHandler := admin.NewHandler(params.AdminRepo, cfg.BcryptCost, exposeErrors)
	adminHandler.SetupRoutes(r)

	contentHandler := content.NewHandler(
		content.Schemas,
		params.ContentRepo,
		params.Storage,
		params.ListCache,
		params.MetricsManager,
		content.HandlerOptions{
			MaxUploadBytes: cfg.MaxUploadSizeBytes(),
			ExposeErrors:   exposeErrors,
		},
	)
	contentHandler.SetupRoutes(r)

	authMiddleware := middleware.NewAuthMiddlewareHandler(params.TokenIssuer)

	r.Use(middleware.PanicRecovery(params.MetricsManager))
	r.Use(middleware.LogRequest(ipResolver))
	r.Use(middleware.RequestMetrics(params.MetricsManager))
	r.Use(middleware.Cors(middleware.CorsConfig{
		Origins: cfg.Secrets.CorsOrigins,
		Methods: cfg.Secrets.CorsMethods,
		Headers: cfg.Secrets.CorsHeaders,
	}))
	r.Use(authMiddleware.AuthCheck())
	r.Use(middleware.DrainAndCloseRequest())

	return r, nil
}
