package mcp

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeMessageClassifiesRequest(t *testing.T) {
	msg, kind, err := decodeMessage([]byte(`{"jsonrpc":"2.0","id":1,"method":"ping"}`))
	require.NoError(t, err)
	assert.Equal(t, kindRequest, kind)
	assert.Equal(t, "ping", msg.Method)
	assert.Equal(t, "1", string(msg.ID))
}

func TestDecodeMessageClassifiesNotification(t *testing.T) {
	_, kind, err := decodeMessage([]byte(`{"jsonrpc":"2.0","method":"notifications/initialized"}`))
	require.NoError(t, err)
	assert.Equal(t, kindNotification, kind)
}

func TestDecodeMessagePreservesStringID(t *testing.T) {
	msg, _, err := decodeMessage([]byte(`{"jsonrpc":"2.0","id":"abc-123","method":"ping"}`))
	require.NoError(t, err)
	assert.Equal(t, `"abc-123"`, string(msg.ID))

	raw, err := encodeMessage(newErrorResponse(msg.ID, errInternal("x")))
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"id":"abc-123"`)
}

func TestDecodeMessageRejectsWrongVersion(t *testing.T) {
	_, _, err := decodeMessage([]byte(`{"jsonrpc":"1.0","id":1,"method":"ping"}`))
	require.Error(t, err)
}

func TestRPCErrorImplementsError(t *testing.T) {
	e := errMethodNotFound("nope")
	assert.Equal(t, codeMethodNotFound, e.Code)
	assert.Contains(t, e.Error(), "nope")
}
