package mcp

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/google/uuid"
)

// Server owns a Registry and drives the synchronous request/response loop
// against a Transport. C is the opaque user-context type threaded through to
// every Tool.Execute call.
type Server[C any] struct {
	config   ServerConfig
	registry *Registry[C]
	logger   *slog.Logger
	validate bool
}

// ServerOption configures a Server at construction time.
type ServerOption[C any] func(*Server[C])

// WithLogger overrides the server's logger. The default is slog.Default().
func WithLogger[C any](logger *slog.Logger) ServerOption[C] {
	return func(s *Server[C]) { s.logger = logger }
}

// WithSchemaValidation enables qri-io/jsonschema validation of tools/call
// arguments against each tool's declared schema before Execute runs.
func WithSchemaValidation[C any]() ServerOption[C] {
	return func(s *Server[C]) { s.validate = true }
}

// NewServer builds a Server with an empty Registry.
func NewServer[C any](config ServerConfig, opts ...ServerOption[C]) *Server[C] {
	s := &Server[C]{
		config:   config,
		registry: NewRegistry[C](),
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// AddTool registers a tool, failing on a duplicate name.
func (s *Server[C]) AddTool(t Tool[C]) error { return s.registry.AddTool(t) }

// AddResource registers a resource, failing on a duplicate URI.
func (s *Server[C]) AddResource(r Resource) error { return s.registry.AddResource(r) }

// AddPrompt registers a prompt, failing on a duplicate name.
func (s *Server[C]) AddPrompt(p Prompt, get PromptGetter) error {
	return s.registry.AddPrompt(p, get)
}

// Start owns transport for its lifetime, reading and dispatching requests
// one at a time until the transport reports a clean end of input. The
// response for request N is always fully written before request N+1 is
// read, which is what gives stdio sessions their strict response-order
// guarantee.
func (s *Server[C]) Start(ctx context.Context, transport Transport, userCtx *C) error {
	sessionID := uuid.NewString()
	logger := s.logger.With(slog.String("component", "dispatcher"), slog.String("session_id", sessionID))
	logger.Info("session started")
	d := newDispatcher(s.config, s.registry, logger, s.validate)
	err := s.drain(ctx, d, transport, userCtx)
	logger.Info("session ended", slog.Any("error", err))
	return err
}

// ProcessOne dispatches every frame the transport yields (one for a plain
// JSON-RPC body, several for a JSON-RPC batch) against a single fresh
// dispatcher, then finalizes the transport. This is the shape HttpServer
// needs for its per-request-stateless model: a batch is how a client packs
// initialize + notifications/initialized + a tools/call into one POST,
// since dispatcher state never survives past the request that produced it.
func (s *Server[C]) ProcessOne(ctx context.Context, transport Transport, userCtx *C) error {
	requestID := uuid.NewString()
	logger := s.logger.With(slog.String("component", "dispatcher"), slog.String("request_id", requestID))
	d := newDispatcher(s.config, s.registry, logger, s.validate)
	if err := s.drain(ctx, d, transport, userCtx); err != nil {
		return err
	}
	return transport.Finalize()
}

func (s *Server[C]) drain(ctx context.Context, d *dispatcher[C], transport Transport, userCtx *C) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		msg, ok, err := transport.ReadRequest()
		if err != nil {
			if !ok {
				// An I/O failure, not a bad frame: report it if the write
				// side still works, then end the loop.
				_ = transport.SendResponse(newErrorResponse(json.RawMessage("null"), errInternal(err.Error())))
				return err
			}
			resp := newErrorResponse(json.RawMessage("null"), errParseError(err.Error()))
			if werr := transport.SendResponse(resp); werr != nil {
				return werr
			}
			continue
		}
		if !ok {
			return nil
		}

		kind := kindRequest
		if len(msg.ID) == 0 {
			kind = kindNotification
		}

		resp, hasResp := d.dispatch(ctx, transport, userCtx, msg, kind)
		if !hasResp {
			continue
		}
		if err := transport.SendResponse(resp); err != nil {
			return err
		}
	}
}
