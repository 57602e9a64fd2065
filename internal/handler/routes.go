package handler

import (
	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"cors-devproxy/internal/config"
	"cors-devproxy/internal/metrics"
)

// RegisterRoutes wires all route handlers onto the Echo instance.
// Ops endpoints are exact routes; everything else reaches the dispatcher.
// m may be nil when metrics are disabled.
func RegisterRoutes(e *echo.Echo, cfg *config.Config, d *Dispatcher, health *HealthHandler, m *metrics.Metrics) {
	e.GET(cfg.Ops.HealthPath, health.Healthz)
	e.GET(cfg.Ops.StatusPath, health.Status)

	if m != nil {
		e.GET(cfg.Metrics.Path, echo.WrapHandler(promhttp.HandlerFor(m.Registry, promhttp.HandlerOpts{})))
	}

	e.Any("/", d.Handle)
	e.Any("/*", d.Handle)
}
