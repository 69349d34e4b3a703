package scriptbridge

import (
	"encoding/json"
	"fmt"

	"github.com/google/jsonschema-go/jsonschema"
)

// FunctionSchema is a named host function signature: ordered parameters plus
// a description shown to the model. Schemas are built once at wiring time and
// treated as immutable afterwards.
type FunctionSchema struct {
	Name        string
	Description string
	Params      []Param
}

// MapAndValidate maps a call's positional and keyword arguments onto the
// declared parameters and validates every one of them.
//
// Positional arguments fill the declared params in order (extras are
// dropped); keyword arguments then overlay by name, overwriting positional
// values. This matches conventional positional-then-keyword calling
// semantics. Missing required params and type mismatches fail with distinct
// typed errors. Absent optional params with a nil default are omitted from
// the result.
func (s FunctionSchema) MapAndValidate(positional []any, keyword map[string]any) (map[string]any, error) {
	raw := make(map[string]any, len(s.Params))
	n := min(len(positional), len(s.Params))
	for i := range n {
		raw[s.Params[i].Name] = positional[i]
	}
	for name, v := range keyword {
		raw[name] = v
	}
	out := make(map[string]any, len(s.Params))
	for _, p := range s.Params {
		v, present := raw[p.Name]
		coerced, err := p.Validate(v)
		if err != nil {
			return nil, err
		}
		if present || coerced != nil {
			out[p.Name] = coerced
		}
	}
	return out, nil
}

// JSONSchema exports the signature in the external tool-description format:
// an object schema with one property per parameter and a required list.
func (s FunctionSchema) JSONSchema() *jsonschema.Schema {
	props := make(map[string]*jsonschema.Schema, len(s.Params))
	var required []string
	for _, p := range s.Params {
		prop := &jsonschema.Schema{Type: p.Type.JSONType()}
		if p.Description != "" {
			prop.Description = p.Description
		}
		props[p.Name] = prop
		if p.Required {
			required = append(required, p.Name)
		}
	}
	return &jsonschema.Schema{
		Type:       "object",
		Properties: props,
		Required:   required,
	}
}

// SchemaMap returns the exported schema as a plain map (e.g. for LLM provider
// tool definitions). The map is freshly built on each call; callers own it.
func (s FunctionSchema) SchemaMap() (map[string]any, error) {
	data, err := json.Marshal(s.JSONSchema())
	if err != nil {
		return nil, fmt.Errorf("marshal schema for %s: %w", s.Name, err)
	}
	var m map[string]any
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("unmarshal schema for %s: %w", s.Name, err)
	}
	return m, nil
}

// Summary returns the introspection view of the schema used by the
// list_functions and help builtins: name, description, and parameters.
func (s FunctionSchema) Summary() map[string]any {
	params, err := s.SchemaMap()
	if err != nil {
		params = map[string]any{"type": "object"}
	}
	return map[string]any{
		"name":        s.Name,
		"description": s.Description,
		"parameters":  params,
	}
}
