package middleware

import (
	"net/http"
	"strings"

	log "github.com/sirupsen/logrus"

	"github.com/fcacademy/academyweb/pkg"
)

const corsMaxAgeSeconds = "600"

type CorsConfig struct {
	Origins []string
	Methods []string
	Headers []string
}

// Cors allows the configured origins ("*" allows any). Requests without an
// Origin header are not cross-origin browser requests and pass through untouched.
// OPTIONS requests never reach the handlers.
func Cors(conf CorsConfig) func(next http.Handler) http.Handler {
	allowedOrigins := make(map[string]bool, len(conf.Origins))
	for _, origin := range conf.Origins {
		allowedOrigins[strings.TrimRight(origin, "/")] = true
	}
	allowMethods := strings.Join(conf.Methods, ", ")
	allowHeaders := strings.Join(conf.Headers, ", ")

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			origin := r.Header.Get("Origin")
			if origin == "" {
				if r.Method == http.MethodOptions {
					w.Header().Set("Allow", allowMethods)
					w.WriteHeader(http.StatusNoContent)
					return
				}
				next.ServeHTTP(w, r)
				return
			}

			if !allowedOrigins["*"] && !allowedOrigins[origin] {
				log.Warnf("CORS: origin not allowed for path [%s] and origin [%s]", r.URL.Path, origin)
				pkg.WriteJSONError(w, http.StatusForbidden, "origin not allowed")
				return
			}

			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Add("Vary", "Origin")
			w.Header().Set("Access-Control-Allow-Methods", allowMethods)
			w.Header().Set("Access-Control-Allow-Headers", allowHeaders)

			if r.Method == http.MethodOptions {
				w.Header().Set("Access-Control-Max-Age", corsMaxAgeSeconds)
				w.WriteHeader(http.StatusNoContent)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
