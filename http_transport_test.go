package mcp

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type progressTool struct{}

func (progressTool) Name() string            { return "progress" }
func (progressTool) Description() string     { return "emits one progress notification" }
func (progressTool) Schema() json.RawMessage { return nil }
func (progressTool) Execute(_ context.Context, _ json.RawMessage, _ *any, env *ToolEnv) (CallToolResult, error) {
	total := 1.0
	if err := env.SendProgress(1, &total); err != nil {
		return CallToolResult{}, err
	}
	return TextResult("done"), nil
}

func TestHttpTransportHasNotificationsIsTrueOnlyWhenSent(t *testing.T) {
	transport := NewHTTPTransport([]byte(`{"jsonrpc":"2.0","id":1,"method":"ping"}`))
	assert.False(t, transport.HasNotifications())
	require.NoError(t, transport.SendResponse(newErrorResponse(json.RawMessage("1"), errInternal("x"))))
	assert.False(t, transport.HasNotifications(), "a response alone must not count as a notification")

	note, err := newNotification(notificationProgress, ProgressParams{ProgressToken: "t", Progress: 1})
	require.NoError(t, err)
	require.NoError(t, transport.SendNotification(note))
	assert.True(t, transport.HasNotifications())
}

func TestHttpTransportPlainJSONWhenNoNotifications(t *testing.T) {
	s := NewServer[any](ServerConfig{Name: "t", Version: "1"})
	h := NewHTTPServer(s)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/mcp", strings.NewReader(
		`{"jsonrpc":"2.0","id":1,"method":"ping"}`))
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Body.String(), `"result"`)
}

func TestHttpTransportPromotesToSSEWhenToolNotifies(t *testing.T) {
	s := NewServer[any](ServerConfig{Name: "t", Version: "1"})
	require.NoError(t, s.AddTool(progressTool{}))
	h := NewHTTPServer(s)

	rec := httptest.NewRecorder()
	// A batch packs the initialize handshake and the call into one POST,
	// since dispatcher state never survives past the request that produced
	// it (see TestHttpServerIsPerRequestStateless).
	body := `[` +
		`{"jsonrpc":"2.0","id":1,"method":"initialize","params":{"protocolVersion":"2025-03-26","clientInfo":{"name":"x","version":"1"}}},` +
		`{"jsonrpc":"2.0","method":"notifications/initialized"},` +
		`{"jsonrpc":"2.0","id":2,"method":"tools/call","params":{"name":"progress","arguments":{},"_meta":{"progressToken":"tok"}}}` +
		`]`
	req := httptest.NewRequest(http.MethodPost, "/mcp", strings.NewReader(body))
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/event-stream", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Body.String(), "notifications/progress")
	assert.Contains(t, rec.Body.String(), "data: ")
}

func TestHttpServerRejectsWrongMethod(t *testing.T) {
	s := NewServer[any](ServerConfig{Name: "t", Version: "1"})
	h := NewHTTPServer(s)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/mcp", nil)
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestHttpServerBatchWithoutNotificationsReturnsJSONArray(t *testing.T) {
	s := NewServer[any](ServerConfig{Name: "t", Version: "1"})
	h := NewHTTPServer(s)

	rec := httptest.NewRecorder()
	body := `[{"jsonrpc":"2.0","id":1,"method":"ping"},{"jsonrpc":"2.0","id":2,"method":"ping"}]`
	req := httptest.NewRequest(http.MethodPost, "/mcp", strings.NewReader(body))
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	var responses []Message
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &responses))
	require.Len(t, responses, 2)
}

func TestHttpServerRejectsMalformedBody(t *testing.T) {
	s := NewServer[any](ServerConfig{Name: "t", Version: "1"})
	h := NewHTTPServer(s)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/mcp", strings.NewReader(`not json`))
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHttpServerIsPerRequestStateless(t *testing.T) {
	// Every POST starts a fresh dispatcher, so a bare tools/list without a
	// prior initialize on the SAME request must still be rejected even
	// after a previous request on the same HttpServer succeeded.
	s := NewServer[any](ServerConfig{Name: "t", Version: "1"})
	h := NewHTTPServer(s)

	rec1 := httptest.NewRecorder()
	req1 := httptest.NewRequest(http.MethodPost, "/mcp", strings.NewReader(
		`{"jsonrpc":"2.0","id":1,"method":"initialize","params":{"protocolVersion":"2025-03-26","clientInfo":{"name":"x","version":"1"}}}`))
	h.ServeHTTP(rec1, req1)
	assert.Equal(t, http.StatusOK, rec1.Code)

	rec2 := httptest.NewRecorder()
	req2 := httptest.NewRequest(http.MethodPost, "/mcp", strings.NewReader(
		`{"jsonrpc":"2.0","id":2,"method":"tools/list"}`))
	h.ServeHTTP(rec2, req2)
	assert.Contains(t, rec2.Body.String(), `"error"`)
}
