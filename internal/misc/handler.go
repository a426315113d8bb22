package misc

import (
	"context"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/codes"

	"github.com/fcacademy/academyweb/internal/telemetry/tracing"
	"github.com/fcacademy/academyweb/pkg"
)

const healthCheckTimeout = 3 * time.Second

type dbPinger interface {
	Ping(ctx context.Context) error
}

type HealthResponse struct {
	Status   string `json:"status"`
	Bucket   string `json:"bucket"`
	Database string `json:"database"`
	Version  string `json:"version"`
}

type Handler struct {
	db          dbPinger
	bucket      string
	versionInfo string
}

func NewHandler(db dbPinger, bucket, versionInfo string) *Handler {
	return &Handler{
		db:          db,
		bucket:      bucket,
		versionInfo: versionInfo,
	}
}

func (handler *Handler) SetupRoutes(mainRouter *mux.Router) {
	mainRouter.HandleFunc("/", handler.handleRoot).Methods("GET", "HEAD").Name("root")
	mainRouter.HandleFunc("/health", handler.handleHealth).Methods("GET").Name("health")
	mainRouter.HandleFunc("/version", handler.handleGetVersionInfo).Methods("GET").Name("version")

	mainRouter.NotFoundHandler = http.HandlerFunc(handleNotFound)
	mainRouter.MethodNotAllowedHandler = http.HandlerFunc(handleMethodNotAllowed)
}

func (handler *Handler) handleRoot(w http.ResponseWriter, _ *http.Request) {
	pkg.WriteTextResponseOK(w, "I'm OK, thanks ;)")
}

func (handler *Handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "miscHandler.health")
	defer span.End()

	resp := HealthResponse{
		Status:   "ok",
		Bucket:   handler.bucket,
		Database: "ok",
		Version:  handler.versionInfo,
	}
	statusCode := http.StatusOK

	pingCtx, cancel := context.WithTimeout(ctx, healthCheckTimeout)
	defer cancel()
	if err := handler.db.Ping(pingCtx); err != nil {
		log.Errorf("health check, database ping: %s", err)
		span.SetStatus(codes.Error, err.Error())
		resp.Status = "degraded"
		resp.Database = "error"
		statusCode = http.StatusServiceUnavailable
	}

	pkg.WriteJSON(w, statusCode, resp)
}

func (handler *Handler) handleGetVersionInfo(w http.ResponseWriter, _ *http.Request) {
	pkg.WriteTextResponseOK(w, handler.versionInfo)
}

func handleNotFound(w http.ResponseWriter, _ *http.Request) {
	pkg.WriteJSONError(w, http.StatusNotFound, "not found")
}

func handleMethodNotAllowed(w http.ResponseWriter, _ *http.Request) {
	pkg.WriteJSONError(w, http.StatusMethodNotAllowed, "method not allowed")
}
