package threads

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// Handler handles thread HTTP requests
type Handler struct {
	svc *Service
}

// NewHandler creates a new threads handler
func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

// Get handles GET /api/threads/:id
func (h *Handler) Get(c echo.Context) error {
	thread, err := h.svc.Get(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, thread)
}
