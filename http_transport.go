package mcp

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/tmaxmax/go-sse"
)

// HttpTransport handles one JSON-RPC exchange carried over a single HTTP
// POST body, per the resolved design choice that HTTP sessions are
// per-request stateless: every POST starts at dispatcher state Fresh. A
// body may be a single JSON-RPC object or a JSON-RPC batch (a JSON array);
// batching is how a client completes the initialize handshake and issues a
// tools/call in the same POST, since state never survives across requests.
// The transport buffers every response and notification produced during
// dispatch so the caller can decide, once dispatch is done, whether to
// answer with plain JSON or promote to an SSE stream.
type HttpTransport struct {
	frames []json.RawMessage
	next   int

	events    []Message
	responses []Message
	notifyHit bool
}

// NewHTTPTransport wraps a POST body, accepting either a single JSON-RPC
// object or a JSON-RPC batch array.
func NewHTTPTransport(body []byte) *HttpTransport {
	var batch []json.RawMessage
	if err := json.Unmarshal(body, &batch); err == nil {
		return &HttpTransport{frames: batch}
	}
	return &HttpTransport{frames: []json.RawMessage{body}}
}

// ReadRequest decodes the next frame in the body, in order. ok is false
// once every frame has been consumed.
func (t *HttpTransport) ReadRequest() (Message, bool, error) {
	if t.next >= len(t.frames) {
		return Message{}, false, nil
	}
	raw := t.frames[t.next]
	t.next++
	msg, _, err := decodeMessage(raw)
	if err != nil {
		return Message{}, true, err
	}
	return msg, true, nil
}

// SendResponse records a response frame, in emission order.
func (t *HttpTransport) SendResponse(msg Message) error {
	t.responses = append(t.responses, msg)
	t.events = append(t.events, msg)
	return nil
}

// SendNotification records a notification frame, in emission order.
// Recording one, even for a request whose response is later discarded, is
// what HasNotifications reports on: the invariant is "at least one
// send_notification call occurred", not "the buffer holds more than one
// frame".
func (t *HttpTransport) SendNotification(msg Message) error {
	t.notifyHit = true
	t.events = append(t.events, msg)
	return nil
}

// Finalize is a no-op; HasNotifications/TakeResponse/TakeSSEResponse read
// directly off accumulated state.
func (t *HttpTransport) Finalize() error { return nil }

// HasNotifications reports whether SendNotification was called at least
// once during this exchange.
func (t *HttpTransport) HasNotifications() bool { return t.notifyHit }

// TakeResponse returns the plain JSON response body: a single object for a
// single-frame exchange, a JSON array for a batch that produced more than
// one response. ok is false if no response was ever produced (e.g. the
// body held only notifications).
func (t *HttpTransport) TakeResponse() (string, bool) {
	switch len(t.responses) {
	case 0:
		return "", false
	case 1:
		raw, err := encodeMessage(t.responses[0])
		if err != nil {
			return "", false
		}
		return string(raw), true
	default:
		var b strings.Builder
		b.WriteByte('[')
		for i, r := range t.responses {
			if i > 0 {
				b.WriteByte(',')
			}
			raw, err := encodeMessage(r)
			if err != nil {
				return "", false
			}
			b.Write(raw)
		}
		b.WriteByte(']')
		return b.String(), true
	}
}

// TakeSSEResponse renders every buffered event (notifications and
// responses, interleaved in the order they were produced) as an SSE
// stream, using go-sse's message encoder for wire-correct framing.
func (t *HttpTransport) TakeSSEResponse() (string, error) {
	var b strings.Builder
	for _, e := range t.events {
		if err := writeSSEMessage(&b, e); err != nil {
			return "", err
		}
	}
	return b.String(), nil
}

func writeSSEMessage(b *strings.Builder, msg Message) error {
	raw, err := encodeMessage(msg)
	if err != nil {
		return fmt.Errorf("mcp: encode sse frame: %w", err)
	}
	m := &sse.Message{}
	m.AppendData(string(raw))
	if _, err := m.WriteTo(b); err != nil {
		return fmt.Errorf("mcp: write sse frame: %w", err)
	}
	return nil
}
