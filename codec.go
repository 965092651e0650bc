package mcp

import (
	"encoding/json"
	"fmt"
)

// JSON-RPC 2.0 and MCP-specific error codes, per the protocol's error table.
const (
	codeParseError     = -32700
	codeInvalidRequest = -32600
	codeMethodNotFound = -32601
	codeInvalidParams  = -32602
	codeInternalError  = -32603
	codeToolError      = -32000
	// codeNotInitialized is reused verbatim by the protocol for two distinct
	// conditions that never occur in the same response: a request made
	// before the initialize/initialized handshake completes, and a
	// resources/read request for an unknown URI.
	codeNotInitialized = -32002
)

const jsonRPCVersion = "2.0"

// RPCError is a JSON-RPC 2.0 error object. It implements error so dispatcher
// code can return it directly and have the caller decide whether to place it
// on the wire.
type RPCError struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

// Error implements the error interface.
func (e *RPCError) Error() string {
	return fmt.Sprintf("jsonrpc error %d: %s", e.Code, e.Message)
}

func newRPCError(code int, message string) *RPCError {
	return &RPCError{Code: code, Message: message}
}

func errParseError(msg string) *RPCError     { return newRPCError(codeParseError, msg) }
func errInvalidRequest(msg string) *RPCError { return newRPCError(codeInvalidRequest, msg) }
func errMethodNotFound(msg string) *RPCError { return newRPCError(codeMethodNotFound, msg) }
func errInvalidParams(msg string) *RPCError  { return newRPCError(codeInvalidParams, msg) }
func errInternal(msg string) *RPCError       { return newRPCError(codeInternalError, msg) }
func errNotInitialized() *RPCError {
	return newRPCError(codeNotInitialized, "server not initialized")
}
func errResourceNotFound(uri string) *RPCError {
	return newRPCError(codeNotInitialized, fmt.Sprintf("resource not found: %s", uri))
}

// Message is one JSON-RPC 2.0 frame: a request, a response or a notification.
// ID is kept as the raw JSON bytes of whatever the peer sent so a response can
// echo back the exact same literal (string or number) it received.
type Message struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      json.RawMessage `json:"id,omitempty"`
	Method  string          `json:"method,omitempty"`
	Params  json.RawMessage `json:"params,omitempty"`
	Result  json.RawMessage `json:"result,omitempty"`
	Error   *RPCError       `json:"error,omitempty"`
}

// messageKind classifies a decoded Message so the dispatcher and transports
// know how to route it.
type messageKind int

const (
	kindRequest messageKind = iota
	kindNotification
	kindResponse
)

// decodeMessage parses a raw JSON-RPC frame and classifies it: a frame with
// both "id" and "method" is a request, one with "method" but no "id" is a
// notification, anything else is treated as a response (never sent to us in
// this server-only implementation, but decoded for completeness).
func decodeMessage(raw []byte) (Message, messageKind, error) {
	var msg Message
	if err := json.Unmarshal(raw, &msg); err != nil {
		return Message{}, 0, err
	}
	if msg.JSONRPC != jsonRPCVersion {
		return Message{}, 0, fmt.Errorf("unsupported jsonrpc version %q", msg.JSONRPC)
	}
	switch {
	case msg.Method != "" && len(msg.ID) > 0:
		return msg, kindRequest, nil
	case msg.Method != "":
		return msg, kindNotification, nil
	default:
		return msg, kindResponse, nil
	}
}

func encodeMessage(msg Message) ([]byte, error) {
	msg.JSONRPC = jsonRPCVersion
	return json.Marshal(msg)
}

func newResultResponse(id json.RawMessage, result interface{}) (Message, error) {
	raw, err := json.Marshal(result)
	if err != nil {
		return Message{}, err
	}
	return Message{JSONRPC: jsonRPCVersion, ID: id, Result: raw}, nil
}

func newErrorResponse(id json.RawMessage, rpcErr *RPCError) Message {
	return Message{JSONRPC: jsonRPCVersion, ID: id, Error: rpcErr}
}

func newNotification(method string, params interface{}) (Message, error) {
	raw, err := json.Marshal(params)
	if err != nil {
		return Message{}, err
	}
	return Message{JSONRPC: jsonRPCVersion, Method: method, Params: raw}, nil
}
