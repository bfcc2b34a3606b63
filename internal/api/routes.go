package api

import (
	"log/slog"

	"github.com/gin-gonic/gin"
)

// SetupRoutes sets up the API routes
func SetupRoutes(handler *Handler, log *slog.Logger) *gin.Engine {
	router := gin.New()

	// Middleware
	router.Use(Recovery())
	router.Use(CORS())
	router.Use(Logger(log))

	// Health check
	router.GET("/health", handler.HealthCheck)

	// API v1
	v1 := router.Group("/api/v1")
	{
		batches := v1.Group("/batches")
		{
			batches.GET("", handler.ListBatchRuns)
			batches.GET("/:id", handler.GetBatchRun)
		}

		v1.POST("/allocations", handler.PreviewAllocation)
		v1.GET("/locations", handler.ListLocations)
		v1.POST("/ads/quote", handler.QuoteAdvertisement)
	}

	return router
}
