package handler

import (
	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"mlflow-auth-proxy/internal/config"
	"mlflow-auth-proxy/internal/metrics"
)

// RegisterRoutes wires all route handlers onto the Echo instance. The proxy
// route is a catch-all: every path and method not claimed by a local
// endpoint is forwarded to the tracking server.
func RegisterRoutes(e *echo.Echo, cfg *config.Config, proxy *ProxyHandler, status *StatusHandler, m *metrics.Metrics) {
	e.GET("/proxy/status", status.Status)

	if cfg.Metrics.Enabled {
		e.GET(cfg.Metrics.Path, echo.WrapHandler(
			promhttp.HandlerFor(m.Registry, promhttp.HandlerOpts{}),
		))
	}

	e.Any("/*", proxy.Handle)
}
