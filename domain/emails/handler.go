package emails

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/Kantosaurus/test-01/pkg/apperror"
)

// Handler handles email HTTP requests
type Handler struct {
	svc *Service
}

// NewHandler creates a new emails handler
func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

// List handles GET /api/emails
func (h *Handler) List(c echo.Context) error {
	var p ListParams

	if label := c.QueryParam("label"); label != "" {
		p.Label = &label
	}

	var err error
	if p.IsRead, err = boolParam(c, "is_read"); err != nil {
		return err
	}
	if p.IsStarred, err = boolParam(c, "is_starred"); err != nil {
		return err
	}
	if p.Page, err = intParam(c, "page"); err != nil {
		return err
	}
	if p.Limit, err = intParam(c, "limit"); err != nil {
		return err
	}

	resp, err := h.svc.List(c.Request().Context(), p)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, resp)
}

// Get handles GET /api/emails/:id
func (h *Handler) Get(c echo.Context) error {
	email, err := h.svc.Get(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, email)
}

// Create handles POST /api/emails
func (h *Handler) Create(c echo.Context) error {
	var req CreateEmailRequest
	if err := c.Bind(&req); err != nil {
		return apperror.ErrBadRequest.WithMessage("invalid request body")
	}

	email, err := h.svc.Create(c.Request().Context(), &req)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, email)
}

// Update handles PATCH /api/emails/:id
func (h *Handler) Update(c echo.Context) error {
	var req UpdateEmailRequest
	if err := c.Bind(&req); err != nil {
		return apperror.ErrBadRequest.WithMessage("invalid request body")
	}

	email, err := h.svc.Update(c.Request().Context(), c.Param("id"), &req)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, email)
}

// Delete handles DELETE /api/emails/:id
func (h *Handler) Delete(c echo.Context) error {
	if err := h.svc.Delete(c.Request().Context(), c.Param("id")); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

func boolParam(c echo.Context, name string) (*bool, error) {
	raw := c.QueryParam(name)
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return nil, apperror.NewBadRequest("invalid " + name + " parameter")
	}
	return &v, nil
}

func intParam(c echo.Context, name string) (int, error) {
	raw := c.QueryParam(name)
	if raw == "" {
		return 0, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, apperror.NewBadRequest("invalid " + name + " parameter")
	}
	return v, nil
}
