// Package api implements the gin-based HTTP frontend over the collection
// engine (spec.md §2 names the HTTP frontend as an external collaborator
// of the core; this package is that collaborator).
package api

import (
	"log"

	"github.com/gin-gonic/gin"

	"github.com/flexidx/collex/engine"
	"github.com/flexidx/collex/internal/metrics"
)

// API holds the dependencies HTTP handlers need.
type API struct {
	manager *engine.Manager
	metrics *metrics.Metrics
}

// NewAPI returns a handler set backed by manager, recording to m.
func NewAPI(manager *engine.Manager, m *metrics.Metrics) *API {
	return &API{manager: manager, metrics: m}
}

// SetupRoutes registers every collex HTTP route on router.
func SetupRoutes(router *gin.Engine, manager *engine.Manager, m *metrics.Metrics) {
	a := NewAPI(manager, m)

	router.Use(CORSMiddleware())
	router.Use(RequestSizeLimitMiddleware(32 << 20))

	router.GET("/health", a.HealthHandler)
	router.GET("/metrics", gin.WrapH(metrics.Handler()))

	collections := router.Group("/collections")
	{
		collections.POST("", a.CreateCollectionHandler)
		collections.GET("", a.ListCollectionsHandler)
		collections.GET("/:name", a.GetCollectionHandler)
		collections.DELETE("/:name", a.DropCollectionHandler)

		collections.GET("/:name/search", a.SearchHandler)

		documents := collections.Group("/:name/documents")
		{
			documents.POST("", a.AddDocumentHandler)
			documents.GET("/:id", a.GetDocumentHandler)
			documents.DELETE("/:id", a.RemoveDocumentHandler)
		}
	}

	log.Println("collex routes registered")
}

// HealthHandler reports liveness.
func (a *API) HealthHandler(c *gin.Context) {
	c.JSON(200, gin.H{"status": "ok"})
}
