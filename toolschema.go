package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"reflect"
	"strings"

	"github.com/invopop/jsonschema"
	qrischema "github.com/qri-io/jsonschema"
)

// DeriveSchema reflects a Go argument struct into a JSON Schema document
// using invopop/jsonschema, for tool authors who would rather declare their
// arguments as a struct than hand-author Tool.Schema()'s JSON.
func DeriveSchema[T any]() json.RawMessage {
	reflector := &jsonschema.Reflector{
		DoNotReference:            true,
		ExpandedStruct:            true,
		AllowAdditionalProperties: false,
	}
	var zero T
	doc := reflector.ReflectFromType(reflect.TypeOf(zero))
	raw, err := json.Marshal(doc)
	if err != nil {
		return json.RawMessage(`{}`)
	}
	return raw
}

// validateToolArgs checks args against a tool's declared schema using
// qri-io/jsonschema, generalizing the by-hand validation go-mcp's
// servers/everything tools perform into a single dispatcher-level hook. A
// nil or empty schema is treated as "anything goes".
func validateToolArgs(ctx context.Context, schema json.RawMessage, args json.RawMessage) error {
	if len(schema) == 0 {
		return nil
	}

	rs := &qrischema.Schema{}
	if err := json.Unmarshal(schema, rs); err != nil {
		// A tool that ships a schema qri-io can't parse is a tool bug, not
		// a caller error; fail open rather than block every call.
		return nil
	}

	var decoded interface{}
	if len(args) > 0 {
		if err := json.Unmarshal(args, &decoded); err != nil {
			return fmt.Errorf("invalid arguments: %w", err)
		}
	} else {
		decoded = map[string]interface{}{}
	}

	state := rs.Validate(ctx, decoded)
	if state.Errs == nil || len(*state.Errs) == 0 {
		return nil
	}

	msgs := make([]string, 0, len(*state.Errs))
	for _, e := range *state.Errs {
		msgs = append(msgs, e.Message)
	}
	return fmt.Errorf("params validation failed: %s", strings.Join(msgs, ", "))
}
