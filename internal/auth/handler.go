package auth

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"

	"github.com/fcacademy/academyweb/internal/telemetry/metrics"
	"github.com/fcacademy/academyweb/internal/telemetry/tracing"
	"github.com/fcacademy/academyweb/pkg"
)

const (
	msgInvalidCredentials = "Invalid username or password"
	msgAuthRequired       = "Authentication required"
)

type loginService interface {
	Login(ctx context.Context, creds Credentials) (string, time.Time, error)
}

type LoginResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

type VerifyResponse struct {
	Username  string    `json:"username"`
	ExpiresAt time.Time `json:"expires_at"`
}

type Handler struct {
	service        loginService
	metricsManager *metrics.Manager
	exposeErrors   bool
}

func NewHandler(service loginService, metricsManager *metrics.Manager, exposeErrors bool) *Handler {
	return &Handler{
		service:        service,
		metricsManager: metricsManager,
		exposeErrors:   exposeErrors,
	}
}

// SetupRoutes registers login and verify. loginMiddleware wraps only the login route (rate limiting).
func (h *Handler) SetupRoutes(router *mux.Router, loginMiddleware func(http.Handler) http.Handler) {
	var login http.Handler = http.HandlerFunc(h.HandleLogin)
	if loginMiddleware != nil {
		login = loginMiddleware(login)
	}
	router.Handle("/api/admin/login", login).Methods("POST", "OPTIONS").Name("admin-login")
	router.HandleFunc("/api/admin/verify", h.HandleVerify).Methods("GET", "OPTIONS").Name("admin-verify")
}

func (h *Handler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "authHandler.login")
	defer span.End()

	creds, err := decodeCredentials(r)
	if err != nil {
		log.Debugf("login, decode credentials: %s", err)
		h.countLogin("bad_request")
		pkg.WriteJSONError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	token, expiresAt, err := h.service.Login(ctx, creds)
	switch {
	case errors.Is(err, ErrMissingCredentials):
		h.countLogin("missing_credentials")
		pkg.WriteJSONError(w, http.StatusBadRequest, ErrMissingCredentials.Error())
		return
	case errors.Is(err, ErrInvalidCredentials):
		log.Tracef("failed login attempt for user: %s", creds.Username)
		h.countLogin("invalid_credentials")
		pkg.WriteJSONError(w, http.StatusUnauthorized, msgInvalidCredentials)
		return
	case err != nil:
		log.Errorf("login failed: %s", err)
		h.countLogin("error")
		pkg.WriteInternalError(w, "login failed", err, h.exposeErrors)
		return
	}

	log.Debugf("new login success: %s", creds.Username)
	h.countLogin("success")
	pkg.WriteJSON(w, http.StatusOK, LoginResponse{
		Token:     token,
		ExpiresAt: expiresAt,
	})
}

func (h *Handler) HandleVerify(w http.ResponseWriter, r *http.Request) {
	identity, ok := IdentityFromContext(r.Context())
	if !ok {
		pkg.WriteJSONError(w, http.StatusUnauthorized, msgAuthRequired)
		return
	}

	pkg.WriteJSON(w, http.StatusOK, VerifyResponse{
		Username:  identity.Username,
		ExpiresAt: identity.ExpiresAt,
	})
}

func (h *Handler) countLogin(result string) {
	if h.metricsManager != nil {
		h.metricsManager.CounterLogins.WithLabelValues(result).Inc()
	}
}

// decodeCredentials accepts a JSON body or a url-encoded form. An empty body yields empty credentials.
func decodeCredentials(r *http.Request) (Credentials, error) {
	var creds Credentials
	if strings.HasPrefix(r.Header.Get("Content-Type"), "application/json") {
		if err := json.NewDecoder(r.Body).Decode(&creds); err != nil && !errors.Is(err, io.EOF) {
			return Credentials{}, err
		}
		return creds, nil
	}

	if err := r.ParseForm(); err != nil {
		return Credentials{}, err
	}
	creds.Username = r.Form.Get("username")
	creds.Password = r.Form.Get("password")
	return creds, nil
}
