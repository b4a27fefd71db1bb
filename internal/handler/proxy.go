package handler

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/url"

	"github.com/labstack/echo/v4"

	"mlflow-auth-proxy/internal/model"
	"mlflow-auth-proxy/internal/service"
)

// streamChunkSize bounds per-request relay memory. Artifact downloads can be
// multi-gigabyte; the body is never materialized beyond one chunk.
const streamChunkSize = 8 * 1024

// ProxyHandler forwards authenticated requests to the tracking server and
// streams the response back.
type ProxyHandler struct {
	service *service.ProxyService
	logger  *slog.Logger
}

// NewProxyHandler creates a ProxyHandler.
func NewProxyHandler(svc *service.ProxyService, logger *slog.Logger) *ProxyHandler {
	return &ProxyHandler{
		service: svc,
		logger:  logger.With("component", "proxy_handler"),
	}
}

// Handle proxies the request to the tracking server and streams the response
// back in bounded chunks. Headers are relayed before any body byte; chunk
// order from upstream is preserved.
func (h *ProxyHandler) Handle(c echo.Context) error {
	req := c.Request()

	pr := &model.ProxyRequest{
		Ctx:           req.Context(),
		Method:        req.Method,
		Path:          req.URL.EscapedPath(),
		RawQuery:      req.URL.RawQuery,
		Header:        req.Header,
		Body:          req.Body,
		ContentLength: req.ContentLength,
	}

	resp, err := h.service.Forward(pr)
	if err != nil {
		return h.mapError(c, err)
	}
	defer func() { _ = resp.Body.Close() }()

	// Relay filtered response headers, then commit the upstream status code.
	header := c.Response().Header()
	for key, vals := range resp.Header {
		for _, v := range vals {
			header.Add(key, v)
		}
	}
	c.Response().WriteHeader(resp.StatusCode)

	// Stream the upstream body to the client. If the copy fails mid-stream
	// (client disconnect, truncated upstream transfer), the status line has
	// already been sent, so the client sees a truncated response with the
	// original status. No synthetic error body is possible at that point;
	// the error is logged for observability. A client disconnect cancels
	// req.Context(), which in turn cancels the upstream read.
	if err := relay(c.Response(), resp.Body); err != nil {
		h.logger.Error("streaming response body",
			"err", err,
			"path", req.URL.Path,
		)
	}

	return nil
}

// relay copies body to w in streamChunkSize chunks, flushing after each
// write so bytes reach the client as they arrive from upstream.
func relay(w *echo.Response, body io.Reader) error {
	buf := make([]byte, streamChunkSize)
	for {
		n, rerr := body.Read(buf)
		if n > 0 {
			if _, werr := w.Write(buf[:n]); werr != nil {
				return werr
			}
			w.Flush()
		}
		if rerr == io.EOF {
			return nil
		}
		if rerr != nil {
			return rerr
		}
	}
}

// mapError converts a forwarding failure into a 502 response whose body
// names the failure category. The underlying cause goes to the server log
// only; raw error strings are not exposed to callers.
func (h *ProxyHandler) mapError(c echo.Context, err error) error {
	h.logger.Error("proxy error",
		"err", err,
		"method", c.Request().Method,
		"path", c.Request().URL.Path,
	)

	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return badGateway(c, "tracking server request timed out")
	case errors.Is(err, context.Canceled):
		return badGateway(c, "client disconnected")
	}

	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return badGateway(c, "tracking server host unreachable")
	}

	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		return badGateway(c, "tracking server connection failed")
	}

	return badGateway(c, "tracking server request failed")
}

func badGateway(c echo.Context, msg string) error {
	return c.JSON(http.StatusBadGateway, map[string]string{
		"error": msg,
	})
}
