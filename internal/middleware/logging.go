package middleware

import (
	"net/http"

	log "github.com/sirupsen/logrus"
)

func LogRequest(ipResolver ClientIPResolver) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if log.IsLevelEnabled(log.TraceLevel) {
				ip, _ := ipResolver.ClientIP(r)
				log.Tracef(" ====> request [%s] path: [%s] [ip: %s] [UA: %s]", r.Method, r.URL.Path, ip, r.UserAgent())
			}
			next.ServeHTTP(w, r)
		})
	}
}
