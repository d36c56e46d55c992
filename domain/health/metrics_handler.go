package health

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/Kantosaurus/test-01/domain/scheduler"
)

// MetricsHandler exposes Prometheus collectors and scheduler state
type MetricsHandler struct {
	scheduler *scheduler.Scheduler
	prom      http.Handler
}

// NewMetricsHandler creates a new metrics handler
func NewMetricsHandler(s *scheduler.Scheduler) *MetricsHandler {
	return &MetricsHandler{
		scheduler: s,
		prom:      promhttp.Handler(),
	}
}

// SchedulerMetricsResponse describes the background scheduler
type SchedulerMetricsResponse struct {
	Running bool                 `json:"running"`
	Tasks   []scheduler.TaskInfo `json:"tasks"`
}

// Prometheus serves the default registry in text exposition format
func (h *MetricsHandler) Prometheus(c echo.Context) error {
	h.prom.ServeHTTP(c.Response(), c.Request())
	return nil
}

// SchedulerMetrics returns the registered tasks with their next run
func (h *MetricsHandler) SchedulerMetrics(c echo.Context) error {
	return c.JSON(http.StatusOK, SchedulerMetricsResponse{
		Running: h.scheduler.IsRunning(),
		Tasks:   h.scheduler.GetTaskInfo(),
	})
}
