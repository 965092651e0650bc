package mcp

import "encoding/json"

// protocolVersion is the MCP revision this server implements.
const protocolVersion = "2025-03-26"

// JSON-RPC method names understood by the dispatcher.
const (
	methodInitialize          = "initialize"
	methodPing                = "ping"
	methodToolsList           = "tools/list"
	methodToolsCall           = "tools/call"
	methodResourcesList       = "resources/list"
	methodResourcesRead       = "resources/read"
	methodPromptsList         = "prompts/list"
	methodPromptsGet          = "prompts/get"
	methodLoggingSetLevel     = "logging/setLevel"
	notificationInitialized   = "notifications/initialized"
	notificationCancelled     = "notifications/cancelled"
	notificationMessage       = "notifications/message"
	notificationProgress      = "notifications/progress"
)

// LogLevel is the RFC 5424 severity scale used by notifications/message and
// logging/setLevel, matching the eight levels named in the protocol.
type LogLevel int

// Log levels, ordered from least to most severe.
const (
	LogLevelDebug LogLevel = iota
	LogLevelInfo
	LogLevelNotice
	LogLevelWarning
	LogLevelError
	LogLevelCritical
	LogLevelAlert
	LogLevelEmergency
)

var logLevelNames = [...]string{
	"debug", "info", "notice", "warning", "error", "critical", "alert", "emergency",
}

// String returns the wire name of the level ("debug", "info", ...).
func (l LogLevel) String() string {
	if l < LogLevelDebug || l > LogLevelEmergency {
		return "info"
	}
	return logLevelNames[l]
}

// MarshalJSON encodes the level as its wire name.
func (l LogLevel) MarshalJSON() ([]byte, error) {
	return json.Marshal(l.String())
}

// UnmarshalJSON decodes a wire name into a LogLevel, defaulting to Info on an
// unrecognized value rather than failing the whole message.
func (l *LogLevel) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	for i, name := range logLevelNames {
		if name == s {
			*l = LogLevel(i)
			return nil
		}
	}
	*l = LogLevelInfo
	return nil
}

// ContentType identifies the kind of payload carried by a ContentBlock.
type ContentType string

// Content types a tool result or prompt message may carry.
const (
	ContentTypeText     ContentType = "text"
	ContentTypeImage    ContentType = "image"
	ContentTypeResource ContentType = "resource"
)

// ContentBlock is one unit of content inside a CallToolResult or PromptMessage.
type ContentBlock struct {
	Type     ContentType `json:"type"`
	Text     string      `json:"text,omitempty"`
	Data     string      `json:"data,omitempty"`
	MimeType string      `json:"mimeType,omitempty"`
}

// CallToolResult is the outcome of a tools/call invocation. A tool that fails
// still returns a CallToolResult with IsError set, per the dispatcher's rule
// that tool errors are in-band JSON-RPC successes, never protocol errors.
type CallToolResult struct {
	Content []ContentBlock `json:"content"`
	IsError bool           `json:"isError,omitempty"`
}

// TextResult builds a successful single-text-block CallToolResult.
func TextResult(s string) CallToolResult {
	return CallToolResult{Content: []ContentBlock{{Type: ContentTypeText, Text: s}}}
}

// ErrorResult builds a failed single-text-block CallToolResult.
func ErrorResult(s string) CallToolResult {
	return CallToolResult{Content: []ContentBlock{{Type: ContentTypeText, Text: s}}, IsError: true}
}

// Resource is a single addressable piece of content the server can hand to
// the host. Exactly one of Text or Blob is populated.
type Resource struct {
	URI         string
	Name        string
	Description string
	MimeType    string
	Text        string
	Blob        []byte
}

// resourceContents is the wire shape of a resources/read result entry.
type resourceContents struct {
	URI      string `json:"uri"`
	MimeType string `json:"mimeType,omitempty"`
	Text     string `json:"text,omitempty"`
	Blob     string `json:"blob,omitempty"`
}

// PromptArgument describes one named input a prompt accepts.
type PromptArgument struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Required    bool   `json:"required,omitempty"`
}

// Prompt describes a prompt template exposed to the host.
type Prompt struct {
	Name        string
	Description string
	Arguments   []PromptArgument
}

// Role identifies the speaker of a PromptMessage.
type Role string

// Roles a PromptMessage may carry.
const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// PromptMessage is one turn of a rendered prompt.
type PromptMessage struct {
	Role    Role         `json:"role"`
	Content ContentBlock `json:"content"`
}

// PromptGetter renders a registered prompt's messages for the given
// arguments, the Go analogue of the original design's PromptDef trait
// collapsed to the single method the protocol actually calls.
type PromptGetter func(args map[string]string) ([]PromptMessage, error)

// ServerConfig names and versions a Server for the initialize handshake.
type ServerConfig struct {
	Name         string
	Version      string
	Instructions string
}

// ParamsMeta carries the optional out-of-band metadata attached to a
// request's params, currently only the progress token.
type ParamsMeta struct {
	ProgressToken string `json:"progressToken,omitempty"`
}

type initializeParams struct {
	ProtocolVersion string          `json:"protocolVersion"`
	Capabilities    json.RawMessage `json:"capabilities,omitempty"`
	ClientInfo      clientInfo      `json:"clientInfo"`
}

type clientInfo struct {
	Name    string `json:"name"`
	Version string `json:"version"`
}

type serverInfo struct {
	Name    string `json:"name"`
	Version string `json:"version"`
}

type serverCapabilities struct {
	Logging   json.RawMessage        `json:"logging"`
	Tools     *listChangedCapability `json:"tools,omitempty"`
	Resources *resourceCapability    `json:"resources,omitempty"`
	Prompts   *listChangedCapability `json:"prompts,omitempty"`
}

type listChangedCapability struct {
	ListChanged bool `json:"listChanged"`
}

type resourceCapability struct {
	Subscribe   bool `json:"subscribe"`
	ListChanged bool `json:"listChanged"`
}

type initializeResult struct {
	ProtocolVersion string             `json:"protocolVersion"`
	Capabilities    serverCapabilities `json:"capabilities"`
	ServerInfo      serverInfo         `json:"serverInfo"`
	Instructions    string             `json:"instructions,omitempty"`
}

type toolDescriptor struct {
	Name        string          `json:"name"`
	Description string          `json:"description,omitempty"`
	InputSchema json.RawMessage `json:"inputSchema,omitempty"`
}

type listToolsResult struct {
	Tools []toolDescriptor `json:"tools"`
}

type callToolParams struct {
	Name      string          `json:"name"`
	Arguments json.RawMessage `json:"arguments,omitempty"`
	Meta      ParamsMeta      `json:"_meta,omitempty"`
}

type resourceDescriptor struct {
	URI         string `json:"uri"`
	Name        string `json:"name,omitempty"`
	Description string `json:"description,omitempty"`
	MimeType    string `json:"mimeType,omitempty"`
}

type listResourcesResult struct {
	Resources []resourceDescriptor `json:"resources"`
}

type readResourceParams struct {
	URI string `json:"uri"`
}

type readResourceResult struct {
	Contents []resourceContents `json:"contents"`
}

type promptDescriptor struct {
	Name        string           `json:"name"`
	Description string           `json:"description,omitempty"`
	Arguments   []PromptArgument `json:"arguments,omitempty"`
}

type listPromptsResult struct {
	Prompts []promptDescriptor `json:"prompts"`
}

type getPromptParams struct {
	Name      string            `json:"name"`
	Arguments map[string]string `json:"arguments,omitempty"`
}

type getPromptResult struct {
	Description string          `json:"description,omitempty"`
	Messages    []PromptMessage `json:"messages"`
}

type setLevelParams struct {
	Level LogLevel `json:"level"`
}

type loggingMessageParams struct {
	Level  LogLevel    `json:"level"`
	Logger string      `json:"logger,omitempty"`
	Data   interface{} `json:"data"`
}

// ProgressParams is the payload of a notifications/progress message.
type ProgressParams struct {
	ProgressToken string   `json:"progressToken"`
	Progress      float64  `json:"progress"`
	Total         *float64 `json:"total,omitempty"`
}
