package mcp

import "errors"

// ErrToolEnvClosed is returned by a ToolEnv method called after the tool's
// Execute has already returned. The dispatcher clears a ToolEnv's back
// reference to its transport the moment Execute returns, so a tool that
// leaks its *ToolEnv to a goroutine gets this error instead of racing the
// dispatcher's next request.
var ErrToolEnvClosed = errors.New("mcp: tool environment closed")

// ErrResourceNotFound is returned by ToolEnv.GetResource for an unknown URI.
var ErrResourceNotFound = errors.New("mcp: resource not found")

// notificationSink is the minimal transport surface a ToolEnv needs. Both
// StdioTransport and HttpTransport satisfy it.
type notificationSink interface {
	SendNotification(Message) error
}

// ToolEnv is the facade a Tool's Execute method uses to interact with the
// server while it runs: emitting log messages and progress, and reading
// other registered resources. It is constructed fresh for each tools/call
// and is only valid for the dynamic extent of that call.
type ToolEnv struct {
	sink          notificationSink
	resources     *registryResourceView
	progressToken string
	logThreshold  LogLevel
}

// registryResourceView is the read-only slice of a Registry a ToolEnv needs;
// kept separate from Registry itself so ToolEnv does not need to be generic
// over the tool context type C.
type registryResourceView struct {
	list func() []Resource
	get  func(uri string) (Resource, bool)
}

func newToolEnv(sink notificationSink, resources *registryResourceView, progressToken string, threshold LogLevel) *ToolEnv {
	return &ToolEnv{sink: sink, resources: resources, progressToken: progressToken, logThreshold: threshold}
}

// close clears the back-reference to the transport, per the invariant that a
// ToolEnv is only valid for the duration of one Execute call.
func (e *ToolEnv) close() {
	e.sink = nil
}

// Log emits a notifications/message notification if level meets or exceeds
// the session's current logging/setLevel threshold. It returns
// ErrToolEnvClosed once the owning Execute call has returned.
func (e *ToolEnv) Log(level LogLevel, message string) error {
	if e.sink == nil {
		return ErrToolEnvClosed
	}
	if level < e.logThreshold {
		return nil
	}
	note, err := newNotification(notificationMessage, loggingMessageParams{Level: level, Data: message})
	if err != nil {
		return err
	}
	return e.sink.SendNotification(note)
}

// SendProgress emits a notifications/progress notification. It silently does
// nothing if the originating tools/call carried no progress token.
func (e *ToolEnv) SendProgress(progress float64, total *float64) error {
	if e.sink == nil {
		return ErrToolEnvClosed
	}
	if e.progressToken == "" {
		return nil
	}
	note, err := newNotification(notificationProgress, ProgressParams{
		ProgressToken: e.progressToken,
		Progress:      progress,
		Total:         total,
	})
	if err != nil {
		return err
	}
	return e.sink.SendNotification(note)
}

// ListResources returns the URIs of every resource registered on the server.
// It returns ErrToolEnvClosed once the owning Execute call has returned.
func (e *ToolEnv) ListResources() ([]string, error) {
	if e.sink == nil {
		return nil, ErrToolEnvClosed
	}
	if e.resources == nil {
		return nil, nil
	}
	all := e.resources.list()
	uris := make([]string, len(all))
	for i, r := range all {
		uris[i] = r.URI
	}
	return uris, nil
}

// GetResource reads a registered resource by URI. It returns
// ErrToolEnvClosed once the owning Execute call has returned.
func (e *ToolEnv) GetResource(uri string) (Resource, error) {
	if e.sink == nil {
		return Resource{}, ErrToolEnvClosed
	}
	if e.resources == nil {
		return Resource{}, ErrResourceNotFound
	}
	res, ok := e.resources.get(uri)
	if !ok {
		return Resource{}, ErrResourceNotFound
	}
	return res, nil
}
