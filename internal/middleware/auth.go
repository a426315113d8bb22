package middleware

import (
	"net/http"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/codes"

	"github.com/fcacademy/academyweb/internal/auth"
	"github.com/fcacademy/academyweb/internal/telemetry/tracing"
	"github.com/fcacademy/academyweb/pkg"
)

//go:generate mockgen -source=$GOFILE -destination=auth_mocks_test.go -package=middleware_test

const (
	msgAuthRequired = "Authentication required"
	msgInvalidToken = "Invalid or expired token"

	adminPathPrefix    = "/api/admin/"
	adminLoginPath     = "/api/admin/login"
	adminVerifyPath    = "/api/admin/verify"
	adminAccountsPath  = "/api/admin/admins"
	bearerSchemePrefix = "bearer "
)

type TokenVerifier interface {
	Verify(token string) (*auth.Claims, error)
}

type AuthMiddlewareHandler struct {
	verifier TokenVerifier
}

func NewAuthMiddlewareHandler(verifier TokenVerifier) *AuthMiddlewareHandler {
	return &AuthMiddlewareHandler{
		verifier: verifier,
	}
}

// RequiresAuth reports whether the request targets a protected route.
// Content reads are public, writes under /api/admin/ are not. Account
// management and token verification are protected for every verb.
func RequiresAuth(r *http.Request) bool {
	path := r.URL.Path
	switch {
	case r.Method == http.MethodOptions:
		return false
	case path == adminLoginPath:
		return false
	case path == adminVerifyPath,
		path == adminAccountsPath,
		strings.HasPrefix(path, adminAccountsPath+"/"):
		return true
	case !strings.HasPrefix(path, adminPathPrefix):
		return false
	}
	return r.Method != http.MethodGet && r.Method != http.MethodHead
}

func (h *AuthMiddlewareHandler) AuthCheck() func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !RequiresAuth(r) {
				next.ServeHTTP(w, r)
				return
			}

			ctx, span := tracing.GlobalTracer.Start(r.Context(), "middleware.auth")
			defer span.End()

			token, ok := bearerToken(r)
			if !ok {
				log.Tracef("[missing token] [auth middleware] unauthorized => %s %s", r.Method, r.URL.Path)
				span.SetStatus(codes.Error, "missing-auth-token")
				pkg.WriteJSONError(w, http.StatusUnauthorized, msgAuthRequired)
				return
			}

			claims, err := h.verifier.Verify(token)
			if err != nil {
				log.Tracef("[invalid token] [auth middleware] unauthorized => %s %s: %s", r.Method, r.URL.Path, err)
				span.SetStatus(codes.Error, "invalid-token")
				span.RecordError(err)
				pkg.WriteJSONError(w, http.StatusUnauthorized, msgInvalidToken)
				return
			}

			identity := auth.Identity{
				Username: claims.Username,
			}
			if claims.ExpiresAt != nil {
				identity.ExpiresAt = claims.ExpiresAt.Time.In(time.UTC)
			}

			span.SetStatus(codes.Ok, "ok")
			next.ServeHTTP(w, r.WithContext(auth.WithIdentity(ctx, identity)))
		})
	}
}

func bearerToken(r *http.Request) (string, bool) {
	header := r.Header.Get("Authorization")
	if len(header) < len(bearerSchemePrefix) || !strings.EqualFold(header[:len(bearerSchemePrefix)], bearerSchemePrefix) {
		return "", false
	}
	token := strings.TrimSpace(header[len(bearerSchemePrefix):])
	return token, token != ""
}
