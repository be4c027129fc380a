// Package api exposes the dashboard over HTTP.
package api

import (
	"github.com/gin-gonic/gin"

	"ad-revenue-lab/internal/api/middleware"
	"ad-revenue-lab/internal/observability"
)

// NewRouter builds a gin engine with middleware and all routes.
func NewRouter(h *Handler) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), middleware.Logger(), middleware.Metrics(), middleware.Cors())
	RegisterRoutes(r, h)
	return r
}

// RegisterRoutes registers every route on r.
func RegisterRoutes(r *gin.Engine, h *Handler) {
	r.GET("/health", h.Health)
	r.GET("/status", h.Status)
	r.GET("/metrics", gin.WrapH(observability.Handler()))

	v1 := r.Group("/api/v1")
	{
		v1.GET("/metrics", h.Metrics)
		v1.GET("/regions", h.Regions)
		v1.GET("/summary", h.Summary)
		v1.GET("/detail", h.Detail)
		v1.GET("/detail/export", h.Export)
		v1.GET("/verify", h.Verify)
		v1.POST("/reload", h.Reload)
	}
}
