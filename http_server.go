package mcp

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"strings"
)

const maxHTTPBody = 4 << 20 // 4 MiB, generous for a single JSON-RPC frame

// ContextFactory builds the per-request user context handed to every
// Tool.Execute call made while serving r.
type ContextFactory[C any] func(r *http.Request) (*C, error)

// HttpServer adapts a Server to net/http, treating every POST as an
// independent, per-request-stateless MCP exchange: each request starts a
// fresh dispatcher at state Fresh, so a caller must complete initialize
// within the same request that needs it (there is no session to resume
// across POSTs).
type HttpServer[C any] struct {
	inner    *Server[C]
	path     string
	buildCtx ContextFactory[C]
	logger   *slog.Logger
}

// HTTPServerOption configures an HttpServer at construction time.
type HTTPServerOption[C any] func(*HttpServer[C])

// WithPath overrides the endpoint path. The default is "/mcp".
func WithPath[C any](path string) HTTPServerOption[C] {
	return func(h *HttpServer[C]) { h.path = path }
}

// WithContextFactory supplies the function used to build the per-request
// user context. The default produces a zero-value *C.
func WithContextFactory[C any](f ContextFactory[C]) HTTPServerOption[C] {
	return func(h *HttpServer[C]) { h.buildCtx = f }
}

// WithAuth requires a valid bearer token on every request, extracting
// Claims and turning them into the per-request user context via
// claimsToContext. Any auth failure returns 401 before the inner Server
// ever sees the request.
func WithAuth[C any](validator *JWTValidator, claimsToContext func(Claims) (*C, error)) HTTPServerOption[C] {
	return func(h *HttpServer[C]) {
		h.buildCtx = func(r *http.Request) (*C, error) {
			claims, err := validator.ValidateHeader(r.Header.Get("Authorization"))
			if err != nil {
				return nil, err
			}
			return claimsToContext(claims)
		}
	}
}

// NewHTTPServer wraps inner for HTTP serving.
func NewHTTPServer[C any](inner *Server[C], opts ...HTTPServerOption[C]) *HttpServer[C] {
	h := &HttpServer[C]{
		inner:  inner,
		path:   "/mcp",
		logger: inner.logger,
		buildCtx: func(*http.Request) (*C, error) {
			var zero C
			return &zero, nil
		},
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// ListenAndServe mounts the handler at its configured path and serves addr.
func (h *HttpServer[C]) ListenAndServe(addr string) error {
	mux := http.NewServeMux()
	mux.Handle(h.path, h)
	return http.ListenAndServe(addr, mux)
}

// ServeHTTP implements http.Handler.
func (h *HttpServer[C]) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != h.path {
		http.NotFound(w, r)
		return
	}
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	userCtx, err := h.buildCtx(r)
	if err != nil {
		writeAuthError(w, err)
		return
	}

	body, err := io.ReadAll(io.LimitReader(r.Body, maxHTTPBody+1))
	if err != nil {
		http.Error(w, "failed to read request body", http.StatusBadRequest)
		return
	}
	if len(body) > maxHTTPBody {
		http.Error(w, "request body too large", http.StatusRequestEntityTooLarge)
		return
	}
	if !json.Valid(body) {
		http.Error(w, "malformed request body", http.StatusBadRequest)
		return
	}

	transport := NewHTTPTransport(body)
	if err := h.inner.ProcessOne(r.Context(), transport, userCtx); err != nil {
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	if transport.HasNotifications() {
		sse, err := transport.TakeSSEResponse()
		if err != nil {
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "text/event-stream")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(sse))
		return
	}

	body2, ok := transport.TakeResponse()
	if !ok {
		// The request was a notification: no response body, per JSON-RPC.
		w.WriteHeader(http.StatusNoContent)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(body2))
}

func writeAuthError(w http.ResponseWriter, err error) {
	// JWTValidator's sentinel errors carry an "mcp: " prefix for Go-side
	// disambiguation in logs; the 401 body is client-facing wire text and
	// drops it, e.g. ErrMissingBearer reads back as "missing bearer token".
	msg := strings.TrimPrefix(err.Error(), "mcp: ")
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": msg})
}
