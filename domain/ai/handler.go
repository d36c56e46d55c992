package ai

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Kantosaurus/test-01/pkg/apperror"
)

// Handler handles AI HTTP requests
type Handler struct {
	svc *Service
}

// NewHandler creates a new ai handler
func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

// Summarize handles POST /api/ai/summarize
func (h *Handler) Summarize(c echo.Context) error {
	var req SummarizeRequest
	if err := c.Bind(&req); err != nil {
		return apperror.ErrBadRequest.WithMessage("invalid request body")
	}
	summary, err := h.svc.Summarize(c.Request().Context(), &req)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, SummarizeResponse{Summary: summary})
}

// Compose handles POST /api/ai/compose
func (h *Handler) Compose(c echo.Context) error {
	var req ComposeRequest
	if err := c.Bind(&req); err != nil {
		return apperror.ErrBadRequest.WithMessage("invalid request body")
	}
	suggestions, err := h.svc.SmartCompose(c.Request().Context(), &req)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, ComposeResponse{Suggestions: suggestions})
}

// Search handles POST /api/ai/search
func (h *Handler) Search(c echo.Context) error {
	var req SearchRequest
	if err := c.Bind(&req); err != nil {
		return apperror.ErrBadRequest.WithMessage("invalid request body")
	}
	resp, err := h.svc.Search(c.Request().Context(), &req)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, resp)
}

// Categorize handles POST /api/ai/categorize
func (h *Handler) Categorize(c echo.Context) error {
	var req CategorizeRequest
	if err := c.Bind(&req); err != nil {
		return apperror.ErrBadRequest.WithMessage("invalid request body")
	}
	resp, err := h.svc.Categorize(c.Request().Context(), req.EmailID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, resp)
}

// IndexAll handles POST /api/ai/index
func (h *Handler) IndexAll(c echo.Context) error {
	n, err := h.svc.BatchIndex(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, IndexResponse{IndexedCount: n})
}

// IndexOne handles POST /api/ai/index/:id
func (h *Handler) IndexOne(c echo.Context) error {
	if err := h.svc.IndexOne(c.Request().Context(), c.Param("id")); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, IndexResponse{IndexedCount: 1})
}
