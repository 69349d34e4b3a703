package scriptbridge

import (
	"fmt"
	"slices"
)

// ToolRecord is the upstream tool-description format: a registry entry with a
// kind, a human-readable description, and a JSON-Schema-like parameter object.
type ToolRecord struct {
	Kind            string         `json:"kind"`
	ToolDescription string         `json:"tool_description"`
	ExtraParameters map[string]any `json:"extra_parameters"`
}

// RecordBinding pairs a script-visible function name with a differently-named
// registry record. Records without a binding use their kind as the name.
type RecordBinding struct {
	ScriptName string
	Kind       string
}

// SchemaFromRecord converts an upstream tool record 1:1 into a FunctionSchema.
// The record's kind becomes the schema name.
//
// JSON objects do not preserve key order in Go, so parameter order is
// reconstructed deterministically: entries of the record's required array
// first, in array order, then the remaining properties sorted by name.
func SchemaFromRecord(rec ToolRecord) (FunctionSchema, error) {
	return SchemaFromRecordNamed(rec, rec.Kind)
}

// SchemaFromRecordNamed converts a record using an explicit script-visible
// name in place of the record kind.
func SchemaFromRecordNamed(rec ToolRecord, name string) (FunctionSchema, error) {
	if name == "" {
		return FunctionSchema{}, fmt.Errorf("tool record kind must not be empty")
	}
	props, _ := rec.ExtraParameters["properties"].(map[string]any)
	requiredSet := make(map[string]bool)
	var order []string
	if reqList, ok := rec.ExtraParameters["required"].([]any); ok {
		for _, r := range reqList {
			rn, ok := r.(string)
			if !ok {
				continue
			}
			requiredSet[rn] = true
			if _, exists := props[rn]; exists && !slices.Contains(order, rn) {
				order = append(order, rn)
			}
		}
	}
	var rest []string
	for pn := range props {
		if !requiredSet[pn] {
			rest = append(rest, pn)
		}
	}
	slices.Sort(rest)
	order = append(order, rest...)

	params := make([]Param, 0, len(order))
	for _, pn := range order {
		prop, ok := props[pn].(map[string]any)
		if !ok {
			return FunctionSchema{}, fmt.Errorf("tool record %s: property %s is not an object", name, pn)
		}
		typName, _ := prop["type"].(string)
		pt, err := paramTypeFromJSON(typName)
		if err != nil {
			return FunctionSchema{}, fmt.Errorf("tool record %s: property %s: %w", name, pn, err)
		}
		desc, _ := prop["description"].(string)
		params = append(params, Param{
			Name:        pn,
			Type:        pt,
			Required:    requiredSet[pn],
			Description: desc,
			Default:     prop["default"],
		})
	}
	return FunctionSchema{Name: name, Description: rec.ToolDescription, Params: params}, nil
}

// SchemasFromRecords converts a batch of records, applying bindings where the
// script-visible name differs from the registry kind. Records keep their
// input order; a binding whose kind matches no record is an error.
func SchemasFromRecords(records []ToolRecord, bindings []RecordBinding) ([]FunctionSchema, error) {
	names := make(map[string]string, len(bindings))
	for _, b := range bindings {
		names[b.Kind] = b.ScriptName
	}
	out := make([]FunctionSchema, 0, len(records))
	for _, rec := range records {
		name := rec.Kind
		if mapped, ok := names[rec.Kind]; ok {
			name = mapped
			delete(names, rec.Kind)
		}
		schema, err := SchemaFromRecordNamed(rec, name)
		if err != nil {
			return nil, err
		}
		out = append(out, schema)
	}
	for kind := range names {
		return nil, fmt.Errorf("binding references unknown record kind %q", kind)
	}
	return out, nil
}
