// Package service implements the core proxy forwarding logic.
package service

import (
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"mlflow-auth-proxy/internal/client"
	"mlflow-auth-proxy/internal/config"
	"mlflow-auth-proxy/internal/model"
)

// droppedRequestHeaders are removed from outbound requests. Host is set from
// the upstream URL, Connection is hop-by-hop, and Authorization carries the
// proxy's own credentials, which the tracking server must never see. Every
// other header (Content-Type, Content-Length, Cookie, custom headers) is
// forwarded verbatim so binary and streamed uploads survive byte-for-byte.
var droppedRequestHeaders = []string{
	"Host",
	"Connection",
	"Authorization",
}

// droppedResponseHeaders are removed from relayed responses. All three are
// hop-by-hop; content and caching headers pass through untouched.
var droppedResponseHeaders = []string{
	"Connection",
	"Keep-Alive",
	"Transfer-Encoding",
}

// ProxyService forwards approved requests to the tracking server.
type ProxyService struct {
	client *client.TrackingClient
	logger *slog.Logger
	origin *url.URL
}

// NewProxyService creates a ProxyService targeting the configured upstream
// origin. The origin is fixed at startup; nothing is discovered at runtime.
func NewProxyService(c *client.TrackingClient, cfg *config.Config, logger *slog.Logger) (*ProxyService, error) {
	u, err := url.Parse(cfg.Upstream.Origin())
	if err != nil {
		return nil, fmt.Errorf("parse upstream origin: %w", err)
	}

	return &ProxyService{
		client: c,
		logger: logger.With("component", "proxy_service"),
		origin: u,
	}, nil
}

// Forward sends a ProxyRequest to the tracking server and returns the
// response with hop-by-hop headers stripped. The caller is responsible for
// closing the response body. The method, path, query string, body, and all
// non-dropped headers pass through unmodified.
func (s *ProxyService) Forward(pr *model.ProxyRequest) (*model.ProxyResponse, error) {
	upstreamURL := s.buildUpstreamURL(pr.Path, pr.RawQuery)
	header := filterHeaders(pr.Header, droppedRequestHeaders)

	s.logger.Debug("forwarding request",
		"method", pr.Method,
		"path", pr.Path,
	)

	resp, err := s.client.DoStream(pr.Ctx, pr.Method, upstreamURL, header, pr.Body, pr.ContentLength)
	if err != nil {
		return nil, fmt.Errorf("forward to upstream: %w", err)
	}

	resp.Header = filterHeaders(resp.Header, droppedResponseHeaders)
	return resp, nil
}

// buildUpstreamURL joins the fixed origin with the escaped request path and
// the raw query string. The query is appended verbatim, not re-encoded.
func (s *ProxyService) buildUpstreamURL(path, rawQuery string) string {
	var b strings.Builder
	b.WriteString(s.origin.String())
	if !strings.HasPrefix(path, "/") {
		b.WriteString("/")
	}
	b.WriteString(path)
	if rawQuery != "" {
		b.WriteString("?")
		b.WriteString(rawQuery)
	}
	return b.String()
}

// filterHeaders returns a copy of src with the dropped keys removed.
// Multi-valued headers are preserved in order; matching is case-insensitive
// via canonicalization.
func filterHeaders(src http.Header, dropped []string) http.Header {
	dst := src.Clone()
	for _, key := range dropped {
		dst.Del(key)
	}
	return dst
}
