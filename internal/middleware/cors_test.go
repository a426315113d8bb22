package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCorsMiddleware(t *testing.T) {
	conf := CorsConfig{
		Origins: []string{"https://fcacademy.example", "http://localhost:5173/"},
		Methods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		Headers: []string{"Content-Type", "Authorization"},
	}

	testCases := []struct {
		name           string
		method         string
		origin         string
		preflight      bool
		expectCors     bool
		expectNext     bool
		expectedStatus int
	}{
		{
			name:           "AllowedOrigin",
			method:         "GET",
			origin:         "https://fcacademy.example",
			expectCors:     true,
			expectNext:     true,
			expectedStatus: http.StatusOK,
		},
		{
			name:           "AllowedOriginTrailingSlashInConfig",
			method:         "POST",
			origin:         "http://localhost:5173",
			expectCors:     true,
			expectNext:     true,
			expectedStatus: http.StatusOK,
		},
		{
			name:           "NotAllowedOrigin",
			method:         "GET",
			origin:         "https://evil.example",
			expectedStatus: http.StatusForbidden,
		},
		{
			name:           "NoOrigin",
			method:         "DELETE",
			expectNext:     true,
			expectedStatus: http.StatusOK,
		},
		{
			name:           "Preflight",
			method:         "OPTIONS",
			origin:         "https://fcacademy.example",
			preflight:      true,
			expectCors:     true,
			expectedStatus: http.StatusNoContent,
		},
		{
			name:           "OptionsWithoutOrigin",
			method:         "OPTIONS",
			expectedStatus: http.StatusNoContent,
		},
		{
			name:           "PreflightNotAllowed",
			method:         "OPTIONS",
			origin:         "https://evil.example",
			preflight:      true,
			expectedStatus: http.StatusForbidden,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			rr := httptest.NewRecorder()
			req, err := http.NewRequest(tc.method, "/api/admin/news", nil)
			require.NoError(t, err)
			if tc.origin != "" {
				req.Header.Set("Origin", tc.origin)
			}
			if tc.preflight {
				req.Header.Set("Access-Control-Request-Method", "DELETE")
			}

			nextCalled := false
			nextHandler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				nextCalled = true
			})
			Cors(conf)(nextHandler).ServeHTTP(rr, req)

			assert.Equal(t, tc.expectedStatus, rr.Code)
			assert.Equal(t, tc.expectNext, nextCalled)
			if tc.expectCors {
				assert.Equal(t, tc.origin, rr.Header().Get("Access-Control-Allow-Origin"))
				assert.Equal(t, "GET, POST, PUT, DELETE, OPTIONS", rr.Header().Get("Access-Control-Allow-Methods"))
				assert.Equal(t, "Content-Type, Authorization", rr.Header().Get("Access-Control-Allow-Headers"))
			} else {
				assert.Empty(t, rr.Header().Get("Access-Control-Allow-Origin"))
			}
		})
	}
}

func TestCorsMiddleware_Wildcard(t *testing.T) {
	rr := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/health", nil)
	req.Header.Set("Origin", "https://anything.example")

	Cors(CorsConfig{Origins: []string{"*"}})(http.NotFoundHandler()).ServeHTTP(rr, req)

	assert.Equal(t, "https://anything.example", rr.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, http.StatusNotFound, rr.Code)
}
