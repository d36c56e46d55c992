package ai

import (
	"github.com/labstack/echo/v4"
)

// RegisterRoutes registers AI routes with the Echo router
func RegisterRoutes(e *echo.Echo, h *Handler) {
	g := e.Group("/api/ai")
	g.POST("/summarize", h.Summarize)
	g.POST("/compose", h.Compose)
	g.POST("/search", h.Search)
	g.POST("/categorize", h.Categorize)
	g.POST("/index", h.IndexAll)
	g.POST("/index/:id", h.IndexOne)
}
