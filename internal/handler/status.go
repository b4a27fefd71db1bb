package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"mlflow-auth-proxy/internal/config"
)

// Version is a string type for dependency injection of the build version.
type Version string

// StatusHandler serves the proxy's own status endpoint. Like all routes it
// sits behind the Basic Auth gate.
type StatusHandler struct {
	cfg     *config.Config
	version Version
}

// NewStatusHandler creates a StatusHandler.
func NewStatusHandler(cfg *config.Config, v Version) *StatusHandler {
	return &StatusHandler{cfg: cfg, version: v}
}

// Status returns proxy status information.
func (h *StatusHandler) Status(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{
		"status":   "ok",
		"version":  string(h.version),
		"upstream": h.cfg.Upstream.Origin(),
	})
}
