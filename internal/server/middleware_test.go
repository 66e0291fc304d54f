package server

import (
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"frontdesk/internal/logger"
	"frontdesk/internal/metrics"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestMain(m *testing.M) {
	logger.Init("error")
	gin.SetMode(gin.TestMode)
	os.Exit(m.Run())
}

func get(router http.Handler, path string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestMetricsMiddlewareUsesRouteTemplate(t *testing.T) {
	router := gin.New()
	router.Use(MetricsMiddleware())
	router.GET("/widgets/:id", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	counter := metrics.HTTPRequestsTotal.WithLabelValues(http.MethodGet, "/widgets/:id", "200")
	before := testutil.ToFloat64(counter)

	assert.Equal(t, http.StatusOK, get(router, "/widgets/1").Code)
	assert.Equal(t, http.StatusOK, get(router, "/widgets/2").Code)

	assert.Equal(t, before+2, testutil.ToFloat64(counter))
}

func TestMetricsMiddlewareUnmatchedRoute(t *testing.T) {
	router := gin.New()
	router.Use(MetricsMiddleware())

	counter := metrics.HTTPRequestsTotal.WithLabelValues(http.MethodGet, "unmatched", "404")
	before := testutil.ToFloat64(counter)

	assert.Equal(t, http.StatusNotFound, get(router, "/nowhere").Code)
	assert.Equal(t, before+1, testutil.ToFloat64(counter))
}

func TestRequestLoggingMiddleware(t *testing.T) {
	router := gin.New()
	router.Use(RequestLoggingMiddleware())
	router.GET("/test", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	router.GET("/boom", func(c *gin.Context) {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "boom"})
	})

	assert.Equal(t, http.StatusOK, get(router, "/test?x=1").Code)
	assert.Equal(t, http.StatusInternalServerError, get(router, "/boom").Code)
}

func TestRateLimitMiddleware(t *testing.T) {
	rl := NewRateLimiter(1, 3, time.Minute)
	defer rl.Stop()

	router := gin.New()
	router.Use(rl.Middleware())
	router.GET("/test", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	for i := 0; i < 3; i++ {
		assert.Equal(t, http.StatusOK, get(router, "/test").Code, "request %d within burst", i+1)
	}
	w := get(router, "/test")
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, "1", w.Header().Get("Retry-After"))
}

func TestRateLimiterIsPerClient(t *testing.T) {
	rl := NewRateLimiter(1, 1, time.Minute)
	defer rl.Stop()

	assert.True(t, rl.Allow("10.0.0.1"))
	assert.False(t, rl.Allow("10.0.0.1"))
	assert.True(t, rl.Allow("10.0.0.2"))
}

func TestRateLimiterEvictsIdleVisitors(t *testing.T) {
	rl := NewRateLimiter(1, 1, time.Minute)
	defer rl.Stop()

	rl.Allow("10.0.0.1")
	rl.evictIdle(time.Now().Add(30 * time.Second))
	assert.Len(t, rl.visitors, 1)

	rl.evictIdle(time.Now().Add(2 * time.Minute))
	assert.Empty(t, rl.visitors)
	assert.True(t, rl.Allow("10.0.0.1"), "an evicted visitor starts with a fresh bucket")
}

func TestCorsMiddleware(t *testing.T) {
	router := gin.New()
	router.Use(corsMiddleware())
	router.GET("/test", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	w := get(router, "/test")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))

	req := httptest.NewRequest(http.MethodOptions, "/test", nil)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusNoContent, w.Code)
}
