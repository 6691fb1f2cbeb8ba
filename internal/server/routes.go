package server

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"cvquery-backend/internal/shared/metrics"
)

// HealthInfo reports which backends the process was wired with.
type HealthInfo struct {
	Version  string
	Services map[string]string
}

func registerRoutes(r *gin.Engine, deps Deps) {
	api := r.Group("/api/v1")

	api.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":    "healthy",
			"version":   deps.Health.Version,
			"timestamp": time.Now().UTC().Format(time.RFC3339),
			"services":  deps.Health.Services,
		})
	})

	api.GET("/metrics", metrics.Handler())

	if deps.Curricula != nil {
		deps.Curricula.RegisterRoutes(api)
	}
}
