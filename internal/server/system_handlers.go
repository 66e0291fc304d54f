package server

import (
	"net/http"

	"frontdesk/internal/api"
	"frontdesk/internal/logger"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// @Summary      Health check
// @Tags         system
// @Produce      json
// @Success      200 {object} api.HealthResponse
// @Failure      503 {object} api.HealthResponse
// @Router       /health [get]
func Health(check HealthCheck) gin.HandlerFunc {
	return func(c *gin.Context) {
		if check.Ping != nil {
			if err := check.Ping(c.Request.Context()); err != nil {
				logger.WithError(err).Warn("health check failed", "storage", check.Storage)
				c.JSON(http.StatusServiceUnavailable, api.HealthResponse{Status: "unavailable", Storage: check.Storage})
				return
			}
		}
		c.JSON(http.StatusOK, api.HealthResponse{Status: "ok", Storage: check.Storage})
	}
}

// @Summary      Prometheus metrics
// @Tags         system
// @Produce      text/plain
// @Success      200 {string} string
// @Router       /metrics [get]
func Metrics() gin.HandlerFunc {
	return gin.WrapH(promhttp.Handler())
}
