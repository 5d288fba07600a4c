package router

import (
	"github.com/gin-gonic/gin"

	"invodex/internal/handler"
	"invodex/internal/middleware"
)

// Setup configures the Gin engine with all routes and middleware. documentH
// may be nil when persistence is disabled; its routes are then not mounted.
func Setup(
	allowedOrigins []string,
	processH *handler.ProcessHandler,
	fileH *handler.FileHandler,
	documentH *handler.DocumentHandler,
	healthH *handler.HealthHandler,
) *gin.Engine {
	r := gin.New()

	// Global middleware
	r.Use(middleware.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger())
	r.Use(middleware.CORS(allowedOrigins))

	// Health checks
	r.GET("/healthz", healthH.Liveness)
	r.GET("/readyz", healthH.Readiness)

	// Batch processing
	r.POST("/process", processH.Process)
	r.POST("/process/llm", processH.ProcessLLM)

	// Source file access
	r.GET("/file/view", fileH.View)
	r.POST("/upload/presigned-url", fileH.PresignedUpload)

	// Persisted results
	if documentH != nil {
		docs := r.Group("/documents")
		docs.GET("", documentH.GetBySource)
		docs.GET("/needs-review", documentH.ListNeedsReview)
		docs.GET("/needs-review/export", documentH.ExportNeedsReview)
	}

	return r
}
