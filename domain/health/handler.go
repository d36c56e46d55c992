package health

import (
	"context"
	"net/http"
	"runtime"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/Kantosaurus/test-01/internal/config"
	"github.com/Kantosaurus/test-01/internal/graphdb"
	"github.com/Kantosaurus/test-01/internal/version"
)

const pingTimeout = 5 * time.Second

// Handler handles health check requests
type Handler struct {
	store   graphdb.Store
	cfg     *config.Config
	startAt time.Time
}

// NewHandler creates a new health handler
func NewHandler(store graphdb.Store, cfg *config.Config) *Handler {
	return &Handler{
		store:   store,
		cfg:     cfg,
		startAt: time.Now(),
	}
}

// HealthResponse represents the health check response
type HealthResponse struct {
	Status    string           `json:"status"`
	Timestamp string           `json:"timestamp"`
	Uptime    string           `json:"uptime"`
	Version   version.Info     `json:"version"`
	Checks    map[string]Check `json:"checks"`
}

// Check represents an individual health check result
type Check struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
}

// Health returns the overall service health, 503 when the graph is unreachable.
func (h *Handler) Health(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), pingTimeout)
	defer cancel()

	graph := Check{Status: "healthy"}
	if err := h.store.Ping(ctx); err != nil {
		graph = Check{Status: "unhealthy", Message: err.Error()}
	}

	response := HealthResponse{
		Status:    graph.Status,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Uptime:    time.Since(h.startAt).String(),
		Version:   version.Current(),
		Checks: map[string]Check{
			"graph": graph,
		},
	}

	statusCode := http.StatusOK
	if graph.Status == "unhealthy" {
		statusCode = http.StatusServiceUnavailable
	}
	return c.JSON(statusCode, response)
}

// Healthz returns a simple liveness check
func (h *Handler) Healthz(c echo.Context) error {
	return c.String(http.StatusOK, "OK")
}

// Ready reports readiness based on graph connectivity
func (h *Handler) Ready(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), pingTimeout)
	defer cancel()

	if err := h.store.Ping(ctx); err != nil {
		return c.JSON(http.StatusServiceUnavailable, map[string]any{
			"status":  "not_ready",
			"message": "Graph database connection failed",
		})
	}
	return c.JSON(http.StatusOK, map[string]any{
		"status": "ready",
	})
}

// Debug returns runtime information outside production
func (h *Handler) Debug(c echo.Context) error {
	if h.cfg.Environment == "production" {
		return echo.NewHTTPError(http.StatusNotFound, "Not found")
	}

	var mem runtime.MemStats
	runtime.ReadMemStats(&mem)

	return c.JSON(http.StatusOK, map[string]any{
		"environment": h.cfg.Environment,
		"debug":       h.cfg.Debug,
		"go_version":  runtime.Version(),
		"goroutines":  runtime.NumGoroutine(),
		"memory": map[string]any{
			"alloc_mb":       mem.Alloc / 1024 / 1024,
			"total_alloc_mb": mem.TotalAlloc / 1024 / 1024,
			"sys_mb":         mem.Sys / 1024 / 1024,
			"num_gc":         mem.NumGC,
		},
		"graph": map[string]any{
			"uri":           h.cfg.Neo4j.URI,
			"database":      h.cfg.Neo4j.Database,
			"max_pool_size": h.cfg.Neo4j.MaxPoolSize,
		},
	})
}
