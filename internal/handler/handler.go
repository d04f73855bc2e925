package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/maxviazov/marketplace-items-service/internal/service"
)

// Register mounts all public routes on the given engine.
func Register(r *gin.Engine, store Pinger, items service.ItemService) {
	h := NewHealthHandler(store)

	// Health probes
	r.GET("/live", h.Liveness)
	r.GET("/ready", h.Readiness)

	// Docs endpoints (root-level)
	RegisterDocs(r)

	api := r.Group(APIPrefix)
	{
		health := api.Group("/health")
		{
			health.GET("/live", h.Liveness)
			health.GET("/ready", h.Readiness)
		}
		NewItemHandler(items).Register(api)
	}
}
