package mcp

import (
	"context"
	"encoding/json"
	"log/slog"
)

// dispatcherState is the session state machine gating which methods may
// succeed before the initialize/initialized handshake completes.
type dispatcherState int

const (
	stateFresh dispatcherState = iota
	stateAwaitingInitialized
	stateReady
)

// dispatcher is the per-session protocol state machine: the sole caller of
// Registry lookups and Tool.Execute. One dispatcher is created per
// long-lived stdio session and per stateless HTTP request.
type dispatcher[C any] struct {
	config   ServerConfig
	registry *Registry[C]
	logger   *slog.Logger
	validate bool

	state        dispatcherState
	logThreshold LogLevel
}

func newDispatcher[C any](config ServerConfig, registry *Registry[C], logger *slog.Logger, validate bool) *dispatcher[C] {
	return &dispatcher[C]{
		config:       config,
		registry:     registry,
		logger:       logger,
		validate:     validate,
		state:        stateFresh,
		logThreshold: LogLevelInfo,
	}
}

func (d *dispatcher[C]) resourceView() *registryResourceView {
	return &registryResourceView{
		list: d.registry.ListResources,
		get:  d.registry.Resource,
	}
}

// dispatch handles one decoded frame. For a notification it returns
// ok=false and no message is ever written back, per JSON-RPC 2.0.
func (d *dispatcher[C]) dispatch(ctx context.Context, transport Transport, userCtx *C, msg Message, kind messageKind) (Message, bool) {
	if kind == kindNotification {
		d.handleNotification(msg)
		return Message{}, false
	}
	return d.handleRequest(ctx, transport, userCtx, msg), true
}

func (d *dispatcher[C]) handleNotification(msg Message) {
	switch msg.Method {
	case notificationInitialized:
		if d.state == stateAwaitingInitialized {
			d.state = stateReady
		}
	case notificationCancelled:
		// Accepted and discarded: cancellation has no effect on a
		// synchronous, single-request-in-flight dispatcher.
	default:
		if d.logger != nil {
			d.logger.Debug("discarding unknown notification", slog.String("method", msg.Method))
		}
	}
}

// methodsRequiringReady is the set of methods gated on dispatcher state;
// every other method name (including one the dispatcher has never heard
// of) falls straight through to errMethodNotFound regardless of state.
var methodsRequiringReady = map[string]bool{
	methodToolsList:       true,
	methodToolsCall:       true,
	methodResourcesList:   true,
	methodResourcesRead:   true,
	methodPromptsList:     true,
	methodPromptsGet:      true,
	methodLoggingSetLevel: true,
}

func (d *dispatcher[C]) handleRequest(ctx context.Context, transport Transport, userCtx *C, req Message) Message {
	if methodsRequiringReady[req.Method] && d.state != stateReady {
		return newErrorResponse(req.ID, errNotInitialized())
	}

	switch req.Method {
	case methodInitialize:
		return d.handleInitialize(req)
	case methodPing:
		return d.handlePing(req)
	case methodToolsList:
		return d.handleToolsList(req)
	case methodToolsCall:
		return d.handleToolsCall(ctx, transport, userCtx, req)
	case methodResourcesList:
		return d.handleResourcesList(req)
	case methodResourcesRead:
		return d.handleResourcesRead(req)
	case methodPromptsList:
		return d.handlePromptsList(req)
	case methodPromptsGet:
		return d.handlePromptsGet(req)
	case methodLoggingSetLevel:
		return d.handleSetLevel(req)
	default:
		return newErrorResponse(req.ID, errMethodNotFound("method not found: "+req.Method))
	}
}

func (d *dispatcher[C]) handleInitialize(req Message) Message {
	if d.state != stateFresh {
		return newErrorResponse(req.ID, errInvalidRequest("already initialized"))
	}

	var params initializeParams
	if len(req.Params) > 0 {
		if err := json.Unmarshal(req.Params, &params); err != nil {
			return newErrorResponse(req.ID, errInvalidParams(err.Error()))
		}
	}

	caps := serverCapabilities{Logging: json.RawMessage("{}")}
	if d.registry.HasTools() {
		caps.Tools = &listChangedCapability{}
	}
	if d.registry.HasResources() {
		caps.Resources = &resourceCapability{}
	}
	if d.registry.HasPrompts() {
		caps.Prompts = &listChangedCapability{}
	}

	result := initializeResult{
		ProtocolVersion: protocolVersion,
		Capabilities:    caps,
		ServerInfo:      serverInfo{Name: d.config.Name, Version: d.config.Version},
		Instructions:    d.config.Instructions,
	}

	resp, err := newResultResponse(req.ID, result)
	if err != nil {
		return newErrorResponse(req.ID, errInternal(err.Error()))
	}
	d.state = stateAwaitingInitialized
	return resp
}

func (d *dispatcher[C]) handlePing(req Message) Message {
	resp, err := newResultResponse(req.ID, struct{}{})
	if err != nil {
		return newErrorResponse(req.ID, errInternal(err.Error()))
	}
	return resp
}

func (d *dispatcher[C]) handleToolsList(req Message) Message {
	tools := d.registry.ListTools()
	descs := make([]toolDescriptor, len(tools))
	for i, t := range tools {
		descs[i] = toolDescriptor{Name: t.Name(), Description: t.Description(), InputSchema: t.Schema()}
	}
	resp, err := newResultResponse(req.ID, listToolsResult{Tools: descs})
	if err != nil {
		return newErrorResponse(req.ID, errInternal(err.Error()))
	}
	return resp
}

func (d *dispatcher[C]) handleToolsCall(ctx context.Context, transport Transport, userCtx *C, req Message) Message {
	var params callToolParams
	if err := json.Unmarshal(req.Params, &params); err != nil {
		return newErrorResponse(req.ID, errInvalidParams(err.Error()))
	}

	tool, ok := d.registry.Tool(params.Name)
	if !ok {
		return newErrorResponse(req.ID, errMethodNotFound("tool not found: "+params.Name))
	}

	if len(params.Arguments) == 0 {
		params.Arguments = json.RawMessage("{}")
	}

	if d.validate {
		if verr := validateToolArgs(ctx, tool.Schema(), params.Arguments); verr != nil {
			resp, err := newResultResponse(req.ID, ErrorResult(verr.Error()))
			if err != nil {
				return newErrorResponse(req.ID, errInternal(err.Error()))
			}
			return resp
		}
	}

	env := newToolEnv(transport, d.resourceView(), params.Meta.ProgressToken, d.logThreshold)
	result, execErr := tool.Execute(ctx, params.Arguments, userCtx, env)
	env.close()

	if execErr != nil {
		result = ErrorResult(execErr.Error())
	}

	resp, err := newResultResponse(req.ID, result)
	if err != nil {
		return newErrorResponse(req.ID, errInternal(err.Error()))
	}
	return resp
}

func (d *dispatcher[C]) handleResourcesList(req Message) Message {
	resources := d.registry.ListResources()
	descs := make([]resourceDescriptor, len(resources))
	for i, r := range resources {
		descs[i] = resourceDescriptor{URI: r.URI, Name: r.Name, Description: r.Description, MimeType: r.MimeType}
	}
	resp, err := newResultResponse(req.ID, listResourcesResult{Resources: descs})
	if err != nil {
		return newErrorResponse(req.ID, errInternal(err.Error()))
	}
	return resp
}

func (d *dispatcher[C]) handleResourcesRead(req Message) Message {
	var params readResourceParams
	if err := json.Unmarshal(req.Params, &params); err != nil {
		return newErrorResponse(req.ID, errInvalidParams(err.Error()))
	}
	res, ok := d.registry.Resource(params.URI)
	if !ok {
		return newErrorResponse(req.ID, errResourceNotFound(params.URI))
	}
	contents := resourceContents{URI: res.URI, MimeType: res.MimeType, Text: res.Text}
	if len(res.Blob) > 0 {
		contents.Blob = base64Encode(res.Blob)
	}
	resp, err := newResultResponse(req.ID, readResourceResult{Contents: []resourceContents{contents}})
	if err != nil {
		return newErrorResponse(req.ID, errInternal(err.Error()))
	}
	return resp
}

func (d *dispatcher[C]) handlePromptsList(req Message) Message {
	prompts := d.registry.ListPrompts()
	descs := make([]promptDescriptor, len(prompts))
	for i, p := range prompts {
		descs[i] = promptDescriptor{Name: p.Name, Description: p.Description, Arguments: p.Arguments}
	}
	resp, err := newResultResponse(req.ID, listPromptsResult{Prompts: descs})
	if err != nil {
		return newErrorResponse(req.ID, errInternal(err.Error()))
	}
	return resp
}

func (d *dispatcher[C]) handlePromptsGet(req Message) Message {
	var params getPromptParams
	if err := json.Unmarshal(req.Params, &params); err != nil {
		return newErrorResponse(req.ID, errInvalidParams(err.Error()))
	}
	prompt, ok := d.registry.Prompt(params.Name)
	if !ok {
		return newErrorResponse(req.ID, errMethodNotFound("prompt not found: "+params.Name))
	}
	messages, err := prompt.get(params.Arguments)
	if err != nil {
		return newErrorResponse(req.ID, errInvalidParams(err.Error()))
	}
	resp, err := newResultResponse(req.ID, getPromptResult{Description: prompt.Description, Messages: messages})
	if err != nil {
		return newErrorResponse(req.ID, errInternal(err.Error()))
	}
	return resp
}

func (d *dispatcher[C]) handleSetLevel(req Message) Message {
	var params setLevelParams
	if err := json.Unmarshal(req.Params, &params); err != nil {
		return newErrorResponse(req.ID, errInvalidParams(err.Error()))
	}
	d.logThreshold = params.Level
	resp, err := newResultResponse(req.ID, struct{}{})
	if err != nil {
		return newErrorResponse(req.ID, errInternal(err.Error()))
	}
	return resp
}
