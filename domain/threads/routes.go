package threads

import (
	"github.com/labstack/echo/v4"
)

// RegisterRoutes registers thread routes with the Echo router
func RegisterRoutes(e *echo.Echo, h *Handler) {
	e.GET("/api/threads/:id", h.Get)
}
