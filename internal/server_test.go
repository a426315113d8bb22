package internal

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fcacademy/academyweb/internal/cache"
	"github.com/fcacademy/academyweb/internal/config"
	"github.com/fcacademy/academyweb/internal/telemetry/metrics"
	testingpkg "github.com/fcacademy/academyweb/pkg/testing"
)

func TestNewListCache(t *testing.T) {
	_, rdb := testingpkg.GetRedisClientAndCtx(t)

	cfg := &config.Config{
		CacheBackend: cacheBackendRedis,
		CacheTTL:     config.Duration{Duration: time.Minute},
		CacheSizeMB:  1,
	}
	assert.IsType(t, &cache.RedisListCache{}, newListCache(cfg, rdb))

	cfg.CacheBackend = cacheBackendInMemory
	assert.IsType(t, &cache.MemoryListCache{}, newListCache(cfg, rdb))

	cfg.CacheBackend = ""
	assert.IsType(t, cache.NopListCache{}, newListCache(cfg, rdb))
}

func TestServer_connStateMetrics(t *testing.T) {
	s := &Server{metricsManager: metrics.NewTestManager()}

	s.connStateMetrics(nil, http.StateNew)
	s.connStateMetrics(nil, http.StateNew)
	s.connStateMetrics(nil, http.StateActive)
	assert.Equal(t, float64(2), testutil.ToFloat64(s.metricsManager.GaugeRequests))

	s.connStateMetrics(nil, http.StateClosed)
	assert.Equal(t, float64(1), testutil.ToFloat64(s.metricsManager.GaugeRequests))
}

func TestNewMetricsRouter(t *testing.T) {
	metricsManager, reg := metrics.NewTestManagerAndRegistry()
	metricsManager.GaugeLifeSignal.Set(1)

	rr := httptest.NewRecorder()
	newMetricsRouter(reg).ServeHTTP(rr, httptest.NewRequest("GET", "/metrics", nil))

	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "academy_test_server_life_signal 1")
	assert.Contains(t, rr.Body.String(), "promhttp_metric_handler_requests_total")
}
