package mcp

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubTool struct {
	name string
}

func (s stubTool) Name() string               { return s.name }
func (s stubTool) Description() string        { return "stub" }
func (s stubTool) Schema() json.RawMessage    { return nil }
func (s stubTool) Execute(context.Context, json.RawMessage, *any, *ToolEnv) (CallToolResult, error) {
	return TextResult("ok"), nil
}

func TestRegistryDuplicateToolRejected(t *testing.T) {
	r := NewRegistry[any]()
	require.NoError(t, r.AddTool(stubTool{name: "a"}))
	err := r.AddTool(stubTool{name: "a"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "duplicate tool name")

	tools := r.ListTools()
	require.Len(t, tools, 1)
}

func TestRegistryDuplicateResourceRejected(t *testing.T) {
	r := NewRegistry[any]()
	require.NoError(t, r.AddResource(Resource{URI: "file://a"}))
	err := r.AddResource(Resource{URI: "file://a"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "duplicate resource uri")
}

func TestRegistryDuplicatePromptRejected(t *testing.T) {
	r := NewRegistry[any]()
	get := func(map[string]string) ([]PromptMessage, error) { return nil, nil }
	require.NoError(t, r.AddPrompt(Prompt{Name: "p"}, get))
	err := r.AddPrompt(Prompt{Name: "p"}, get)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "duplicate prompt name")
}

func TestRegistryListOrderIsInsertionOrder(t *testing.T) {
	r := NewRegistry[any]()
	require.NoError(t, r.AddTool(stubTool{name: "z"}))
	require.NoError(t, r.AddTool(stubTool{name: "a"}))
	require.NoError(t, r.AddTool(stubTool{name: "m"}))

	var names []string
	for _, tool := range r.ListTools() {
		names = append(names, tool.Name())
	}
	assert.Equal(t, []string{"z", "a", "m"}, names)
}

func TestRegistryCapabilityPresence(t *testing.T) {
	r := NewRegistry[any]()
	assert.False(t, r.HasTools())
	require.NoError(t, r.AddTool(stubTool{name: "a"}))
	assert.True(t, r.HasTools())
}
