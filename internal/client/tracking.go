// Package client provides the upstream HTTP client for the tracking server.
package client

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"time"

	"mlflow-auth-proxy/internal/config"
	"mlflow-auth-proxy/internal/metrics"
	"mlflow-auth-proxy/internal/model"
)

// TrackingClient sends requests to the upstream MLflow tracking server.
type TrackingClient struct {
	httpClient *http.Client
	logger     *slog.Logger
	metrics    *metrics.Metrics
}

// NewTrackingClient creates a TrackingClient with connection pooling and a
// bounded overall timeout covering connect through full response completion.
// Redirects from the tracking server are never followed: the raw 3xx is
// returned so the original caller's own redirect handling applies.
// The metrics parameter is optional; pass nil to disable upstream metrics
// recording.
func NewTrackingClient(cfg *config.Config, logger *slog.Logger, m *metrics.Metrics) *TrackingClient {
	transport := &http.Transport{
		MaxIdleConns:        cfg.Upstream.IdleConnections,
		MaxIdleConnsPerHost: cfg.Upstream.IdleConnections,
		IdleConnTimeout:     90 * time.Second,
		DialContext: (&net.Dialer{
			Timeout:   30 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
	}

	return &TrackingClient{
		httpClient: &http.Client{
			Transport: transport,
			Timeout:   time.Duration(cfg.Upstream.TimeoutSeconds) * time.Second,
			CheckRedirect: func(*http.Request, []*http.Request) error {
				return http.ErrUseLastResponse
			},
		},
		logger:  logger.With("component", "tracking_client"),
		metrics: m,
	}
}

// Do executes an HTTP request against the upstream and returns the raw response.
// The caller is responsible for closing the response body.
func (c *TrackingClient) Do(req *http.Request) (*model.ProxyResponse, error) {
	c.logger.Debug("upstream request",
		"method", req.Method,
		"path", req.URL.Path,
	)

	start := time.Now()
	resp, err := c.httpClient.Do(req) //nolint:bodyclose // body ownership transfers to caller via ProxyResponse
	duration := time.Since(start).Seconds()

	method := metrics.NormalizeMethod(req.Method)

	if err != nil {
		if c.metrics != nil {
			c.metrics.UpstreamDuration.WithLabelValues(method).Observe(duration)
		}
		return nil, fmt.Errorf("upstream request: %w", err)
	}

	if c.metrics != nil {
		status := strconv.Itoa(resp.StatusCode)
		c.metrics.UpstreamDuration.WithLabelValues(method).Observe(duration)
		c.metrics.UpstreamResponses.WithLabelValues(method, status).Inc()
	}

	return &model.ProxyResponse{
		StatusCode: resp.StatusCode,
		Header:     resp.Header,
		Body:       resp.Body,
	}, nil
}

// DoStream executes a request and returns the response body as a stream.
// The caller is responsible for closing the returned ReadCloser.
// The provided context controls the lifetime of the upstream request:
// when the context is canceled (e.g. client disconnects mid-stream), the
// upstream request is also canceled so no orphaned transfer continues.
func (c *TrackingClient) DoStream(ctx context.Context, method, url string, header http.Header, body io.Reader, contentLength int64) (*model.ProxyResponse, error) {
	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return nil, fmt.Errorf("build upstream request: %w", err)
	}
	req.Header = header
	// http.NewRequestWithContext cannot infer the length of a streamed body;
	// carrying it over preserves the inbound Content-Length on the wire.
	if body != nil && contentLength > 0 {
		req.ContentLength = contentLength
	}

	return c.Do(req)
}
