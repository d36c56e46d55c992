package labels

import (
	"github.com/labstack/echo/v4"
)

// RegisterRoutes registers label routes with the Echo router
func RegisterRoutes(e *echo.Echo, h *Handler) {
	g := e.Group("/api/labels")
	g.GET("", h.List)
	g.POST("", h.Create)
	g.DELETE("/:name", h.Delete)
}
