package scriptbridge

import (
	"context"
	"encoding/json"
	"fmt"
	"reflect"
	"slices"
	"strings"

	"github.com/google/jsonschema-go/jsonschema"
)

// SchemaForType reflects a Go argument struct into a FunctionSchema.
// Field types map to script-level param types via the generated JSON Schema;
// parameter order follows struct field order, json tags name the params, and
// a description struct tag overrides the generated description.
func SchemaForType[T any](name, description string) (FunctionSchema, error) {
	generated, err := jsonschema.For[T](&jsonschema.ForOptions{})
	if err != nil {
		return FunctionSchema{}, fmt.Errorf("schema for %s: %w", name, err)
	}
	typ := reflect.TypeOf(*new(T))
	if typ != nil && typ.Kind() == reflect.Pointer {
		typ = typ.Elem()
	}
	if typ == nil || typ.Kind() != reflect.Struct {
		return FunctionSchema{}, fmt.Errorf("schema for %s: argument type must be a struct", name)
	}
	var params []Param
	for i := range typ.NumField() {
		field := typ.Field(i)
		if !field.IsExported() {
			continue
		}
		jsonName := strings.Split(field.Tag.Get("json"), ",")[0]
		if jsonName == "-" {
			continue
		}
		if jsonName == "" {
			jsonName = field.Name
		}
		prop, ok := generated.Properties[jsonName]
		if !ok || prop == nil {
			continue
		}
		pt, err := paramTypeFromJSON(prop.Type)
		if err != nil {
			return FunctionSchema{}, fmt.Errorf("schema for %s: field %s: %w", name, field.Name, err)
		}
		desc := prop.Description
		if tag := field.Tag.Get("description"); tag != "" {
			desc = tag
		}
		var def any
		if len(prop.Default) > 0 {
			if err := json.Unmarshal(prop.Default, &def); err != nil {
				return FunctionSchema{}, fmt.Errorf("schema for %s: field %s default: %w", name, field.Name, err)
			}
		}
		params = append(params, Param{
			Name:        jsonName,
			Type:        pt,
			Required:    slices.Contains(generated.Required, jsonName),
			Description: desc,
			Default:     def,
		})
	}
	return FunctionSchema{Name: name, Description: description, Params: params}, nil
}

// NewTypedFunction builds a Function whose handler receives the validated
// arguments decoded into T instead of a raw map. The schema is reflected from
// T via SchemaForType.
func NewTypedFunction[T any](name, description string, fn func(ctx context.Context, args T) (any, error)) (Function, error) {
	if fn == nil {
		return Function{}, fmt.Errorf("function %s: handler must not be nil", name)
	}
	schema, err := SchemaForType[T](name, description)
	if err != nil {
		return Function{}, err
	}
	handler := func(ctx context.Context, args map[string]any) (any, error) {
		data, err := json.Marshal(args)
		if err != nil {
			return nil, fmt.Errorf("encode arguments for %s: %w", name, err)
		}
		var typed T
		if err := json.Unmarshal(data, &typed); err != nil {
			return nil, fmt.Errorf("decode arguments for %s: %w", name, err)
		}
		return fn(ctx, typed)
	}
	return NewFunction(schema, handler)
}
