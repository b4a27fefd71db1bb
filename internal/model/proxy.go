// Package model defines shared types for the proxy.
package model

import (
	"context"
	"io"
	"net/http"
)

// ProxyRequest represents a client request to be forwarded to the tracking
// server. RawQuery is carried verbatim so the upstream URL matches the
// inbound one byte-for-byte; re-encoding could reorder or re-escape
// parameters.
type ProxyRequest struct {
	Ctx      context.Context
	Method   string
	Path     string
	RawQuery string
	Header   http.Header
	Body     io.ReadCloser

	// ContentLength mirrors the inbound request's declared body length;
	// -1 means unknown (the outbound request is then sent chunked).
	ContentLength int64
}

// ProxyResponse represents the upstream response to be streamed back.
// Body is a live stream; ownership passes to whoever relays it, chunk by
// chunk, until it is exhausted or closed.
type ProxyResponse struct {
	StatusCode int
	Header     http.Header
	Body       io.ReadCloser
}
