package handler

import (
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"

	"mlflow-auth-proxy/internal/client"
	"mlflow-auth-proxy/internal/config"
	"mlflow-auth-proxy/internal/metrics"
	"mlflow-auth-proxy/internal/service"
)

func TestRegisterRoutes_Wiring(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"ok":true}`))
	}))
	defer upstream.Close()

	u, err := url.Parse(upstream.URL)
	if err != nil {
		t.Fatalf("parse upstream URL: %v", err)
	}
	host, portStr, err := net.SplitHostPort(u.Host)
	if err != nil {
		t.Fatalf("split host port: %v", err)
	}
	port, err := strconv.Atoi(portStr)
	if err != nil {
		t.Fatalf("parse port: %v", err)
	}

	cfg := &config.Config{
		Upstream: config.UpstreamConfig{
			Host:            host,
			Port:            port,
			TimeoutSeconds:  10,
			IdleConnections: 10,
		},
		Metrics: config.MetricsConfig{Enabled: true, Path: "/metrics"},
	}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	tc := client.NewTrackingClient(cfg, logger, nil)
	svc, err := service.NewProxyService(tc, cfg, logger)
	if err != nil {
		t.Fatalf("NewProxyService: %v", err)
	}

	proxy := NewProxyHandler(svc, logger)
	status := NewStatusHandler(cfg, "test")
	m := metrics.New()

	e := echo.New()
	RegisterRoutes(e, cfg, proxy, status, m)

	tests := []struct {
		name       string
		method     string
		path       string
		wantStatus int
	}{
		{"GET /proxy/status served locally", http.MethodGet, "/proxy/status", http.StatusOK},
		{"GET /metrics served locally", http.MethodGet, "/metrics", http.StatusOK},
		{"GET root proxied", http.MethodGet, "/", http.StatusOK},
		{"GET api path proxied", http.MethodGet, "/api/2.0/mlflow/experiments/list", http.StatusOK},
		{"POST proxied", http.MethodPost, "/api/2.0/mlflow/runs/create", http.StatusOK},
		{"PUT proxied", http.MethodPut, "/api/2.0/mlflow-artifacts/artifacts/x", http.StatusOK},
		{"DELETE proxied", http.MethodDelete, "/api/2.0/mlflow/runs/delete", http.StatusOK},
		{"PATCH proxied", http.MethodPatch, "/api/2.0/mlflow/registered-models/x", http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, tt.path, http.NoBody)
			rec := httptest.NewRecorder()
			e.ServeHTTP(rec, req)

			if rec.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
		})
	}
}

func TestRegisterRoutes_MetricsDisabled(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// With metrics disabled, /metrics falls through to the catch-all
		// and reaches the tracking server like any other path.
		if r.URL.Path != "/metrics" {
			t.Errorf("path = %q, want %q", r.URL.Path, "/metrics")
		}
		w.WriteHeader(http.StatusNotFound)
	}))
	defer upstream.Close()

	u, err := url.Parse(upstream.URL)
	if err != nil {
		t.Fatalf("parse upstream URL: %v", err)
	}
	host, portStr, err := net.SplitHostPort(u.Host)
	if err != nil {
		t.Fatalf("split host port: %v", err)
	}
	port, err := strconv.Atoi(portStr)
	if err != nil {
		t.Fatalf("parse port: %v", err)
	}

	cfg := &config.Config{
		Upstream: config.UpstreamConfig{
			Host:            host,
			Port:            port,
			TimeoutSeconds:  10,
			IdleConnections: 10,
		},
	}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	tc := client.NewTrackingClient(cfg, logger, nil)
	svc, err := service.NewProxyService(tc, cfg, logger)
	if err != nil {
		t.Fatalf("NewProxyService: %v", err)
	}

	e := echo.New()
	RegisterRoutes(e, cfg, NewProxyHandler(svc, logger), NewStatusHandler(cfg, "test"), metrics.New())

	req := httptest.NewRequest(http.MethodGet, "/metrics", http.NoBody)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want %d (forwarded upstream)", rec.Code, http.StatusNotFound)
	}
	if strings.Contains(rec.Body.String(), "go_goroutines") {
		t.Error("/metrics served locally despite metrics.enabled = false")
	}
}
