package mcp

import (
	"context"
	"encoding/json"
	"fmt"
)

// Tool is one callable exposed to the host. C is the opaque per-connection
// user context type threaded through from Server down to Execute, letting a
// caller carry auth identity, tenant scoping or request-local state without
// this package knowing its shape.
type Tool[C any] interface {
	Name() string
	Description() string
	Schema() json.RawMessage
	Execute(ctx context.Context, args json.RawMessage, userCtx *C, env *ToolEnv) (CallToolResult, error)
}

// registeredPrompt pairs a Prompt's metadata with the function that renders it.
type registeredPrompt struct {
	Prompt
	get PromptGetter
}

// Registry holds the tools, resources and prompts a Server exposes. It is
// built once during setup and treated as effectively immutable afterwards:
// concurrent reads from many HttpServer goroutines never race because
// nothing writes to it once serving begins.
type Registry[C any] struct {
	tools     map[string]Tool[C]
	toolOrder []string

	resources     map[string]Resource
	resourceOrder []string

	prompts     map[string]registeredPrompt
	promptOrder []string
}

// NewRegistry returns an empty Registry.
func NewRegistry[C any]() *Registry[C] {
	return &Registry[C]{
		tools:     make(map[string]Tool[C]),
		resources: make(map[string]Resource),
		prompts:   make(map[string]registeredPrompt),
	}
}

// AddTool registers a tool. It fails if a tool with the same name already
// exists; the existing registration is left untouched.
func (r *Registry[C]) AddTool(t Tool[C]) error {
	if _, exists := r.tools[t.Name()]; exists {
		return fmt.Errorf("duplicate tool name: %s", t.Name())
	}
	r.tools[t.Name()] = t
	r.toolOrder = append(r.toolOrder, t.Name())
	return nil
}

// AddResource registers a resource. It fails if the URI is already taken.
func (r *Registry[C]) AddResource(res Resource) error {
	if _, exists := r.resources[res.URI]; exists {
		return fmt.Errorf("duplicate resource uri: %s", res.URI)
	}
	r.resources[res.URI] = res
	r.resourceOrder = append(r.resourceOrder, res.URI)
	return nil
}

// AddPrompt registers a prompt and the function that renders it. It fails if
// a prompt with the same name already exists.
func (r *Registry[C]) AddPrompt(p Prompt, get PromptGetter) error {
	if _, exists := r.prompts[p.Name]; exists {
		return fmt.Errorf("duplicate prompt name: %s", p.Name)
	}
	r.prompts[p.Name] = registeredPrompt{Prompt: p, get: get}
	r.promptOrder = append(r.promptOrder, p.Name)
	return nil
}

// Tool looks up a tool by name.
func (r *Registry[C]) Tool(name string) (Tool[C], bool) {
	t, ok := r.tools[name]
	return t, ok
}

// ListTools returns all tools in registration order.
func (r *Registry[C]) ListTools() []Tool[C] {
	out := make([]Tool[C], 0, len(r.toolOrder))
	for _, name := range r.toolOrder {
		out = append(out, r.tools[name])
	}
	return out
}

// Resource looks up a resource by URI.
func (r *Registry[C]) Resource(uri string) (Resource, bool) {
	res, ok := r.resources[uri]
	return res, ok
}

// ListResources returns all resources in registration order.
func (r *Registry[C]) ListResources() []Resource {
	out := make([]Resource, 0, len(r.resourceOrder))
	for _, uri := range r.resourceOrder {
		out = append(out, r.resources[uri])
	}
	return out
}

// Prompt looks up a prompt by name.
func (r *Registry[C]) Prompt(name string) (registeredPrompt, bool) {
	p, ok := r.prompts[name]
	return p, ok
}

// ListPrompts returns all prompts in registration order.
func (r *Registry[C]) ListPrompts() []Prompt {
	out := make([]Prompt, 0, len(r.promptOrder))
	for _, name := range r.promptOrder {
		out = append(out, r.prompts[name].Prompt)
	}
	return out
}

// HasTools reports whether any tool is registered.
func (r *Registry[C]) HasTools() bool { return len(r.toolOrder) > 0 }

// HasResources reports whether any resource is registered.
func (r *Registry[C]) HasResources() bool { return len(r.resourceOrder) > 0 }

// HasPrompts reports whether any prompt is registered.
func (r *Registry[C]) HasPrompts() bool { return len(r.promptOrder) > 0 }
