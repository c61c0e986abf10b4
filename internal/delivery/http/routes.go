package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/planachat/backend/config"
	"github.com/planachat/backend/internal/logger"
)

// SetupRouter creates and configures the Gin router.
// metricsHandler may be nil to leave /metrics unrouted.
func SetupRouter(cfg *config.Config, handler *Handler, log logger.Logger, metricsHandler http.Handler) *gin.Engine {
	// Set Gin mode based on environment
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()

	// Global middleware
	router.Use(RecoveryMiddleware())
	router.Use(RequestIDMiddleware())
	router.Use(LoggerMiddleware(log))
	router.Use(CORSMiddleware(cfg.Server.AllowedOrigins))

	// Health check endpoint
	router.GET("/health", handler.HealthCheck)

	if metricsHandler != nil {
		router.GET("/metrics", gin.WrapH(metricsHandler))
	}

	// API v1 routes
	v1 := router.Group("/api/v1")
	v1.Use(RateLimitMiddleware(cfg.RateLimit.PerIP))
	{
		products := v1.Group("/products")
		{
			products.POST("/extract", handler.ExtractProduct)
			products.GET("/sites", handler.ListSites)
		}
	}

	return router
}
