package scriptbridge

import (
	"fmt"
	"math"
	"reflect"
)

// ParamType is the declared script-level type of a host function parameter.
type ParamType int

const (
	TypeString ParamType = iota
	TypeInteger
	TypeNumber
	TypeBoolean
	TypeList
	TypeMap
)

// String returns the script-level type name.
func (t ParamType) String() string {
	switch t {
	case TypeString:
		return "string"
	case TypeInteger:
		return "integer"
	case TypeNumber:
		return "number"
	case TypeBoolean:
		return "boolean"
	case TypeList:
		return "list"
	case TypeMap:
		return "map"
	default:
		return fmt.Sprintf("ParamType(%d)", int(t))
	}
}

// JSONType returns the JSON Schema type name used in exported schemas
// (list becomes array, map becomes object; the rest map 1:1).
func (t ParamType) JSONType() string {
	switch t {
	case TypeList:
		return "array"
	case TypeMap:
		return "object"
	default:
		return t.String()
	}
}

// paramTypeFromJSON maps a JSON Schema type name back to a ParamType.
// Used when importing upstream tool records and reflected Go schemas.
func paramTypeFromJSON(name string) (ParamType, error) {
	switch name {
	case "string":
		return TypeString, nil
	case "integer":
		return TypeInteger, nil
	case "number":
		return TypeNumber, nil
	case "boolean":
		return TypeBoolean, nil
	case "array":
		return TypeList, nil
	case "object":
		return TypeMap, nil
	default:
		return 0, fmt.Errorf("unsupported schema type %q", name)
	}
}

// Param is a typed parameter descriptor for a host function.
type Param struct {
	Name        string
	Type        ParamType
	Required    bool
	Description string
	Default     any
}

// Validate checks v against the declared type and returns the coerced value.
//
// A nil value means the argument was absent: the default is returned for
// optional params, required params fail with MissingParamError. Integer
// accepts Go integer kinds and integral float64 (JSON decoding erases
// integer-ness) and coerces to int64; number accepts any numeric and coerces
// to float64; the remaining types require their exact script-level shape.
func (p Param) Validate(v any) (any, error) {
	if v == nil {
		if p.Required {
			return nil, &MissingParamError{Param: p.Name}
		}
		return p.Default, nil
	}
	switch p.Type {
	case TypeString:
		if s, ok := v.(string); ok {
			return s, nil
		}
	case TypeInteger:
		if n, ok := asInt64(v); ok {
			return n, nil
		}
	case TypeNumber:
		if f, ok := asFloat64(v); ok {
			return f, nil
		}
	case TypeBoolean:
		if b, ok := v.(bool); ok {
			return b, nil
		}
	case TypeList:
		if l, ok := asList(v); ok {
			return l, nil
		}
	case TypeMap:
		if m, ok := asMap(v); ok {
			return m, nil
		}
	}
	return nil, &TypeMismatchError{Param: p.Name, Expected: p.Type.String(), Actual: valueTypeName(v)}
}

// asInt64 coerces integer kinds (and integral float64) to int64.
func asInt64(v any) (int64, bool) {
	switch n := v.(type) {
	case int:
		return int64(n), true
	case int8:
		return int64(n), true
	case int16:
		return int64(n), true
	case int32:
		return int64(n), true
	case int64:
		return n, true
	case uint:
		return int64(n), true
	case uint8:
		return int64(n), true
	case uint16:
		return int64(n), true
	case uint32:
		return int64(n), true
	case float64:
		if n == math.Trunc(n) && !math.IsInf(n, 0) {
			return int64(n), true
		}
	}
	return 0, false
}

// asFloat64 coerces any numeric kind to float64.
func asFloat64(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	default:
		if i, ok := asInt64(v); ok {
			return float64(i), true
		}
	}
	return 0, false
}

// asList coerces any slice or array to []any.
func asList(v any) ([]any, bool) {
	if l, ok := v.([]any); ok {
		return l, true
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return nil, false
	}
	out := make([]any, rv.Len())
	for i := range out {
		out[i] = rv.Index(i).Interface()
	}
	return out, true
}

// asMap coerces any string-keyed map to map[string]any.
func asMap(v any) (map[string]any, bool) {
	if m, ok := v.(map[string]any); ok {
		return m, true
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Map || rv.Type().Key().Kind() != reflect.String {
		return nil, false
	}
	out := make(map[string]any, rv.Len())
	for _, k := range rv.MapKeys() {
		out[k.String()] = rv.MapIndex(k).Interface()
	}
	return out, true
}

// valueTypeName reports the script-level type name of v for error messages.
func valueTypeName(v any) string {
	switch v.(type) {
	case nil:
		return "null"
	case string:
		return "string"
	case bool:
		return "boolean"
	case float32, float64:
		return "number"
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
		return "integer"
	}
	switch reflect.ValueOf(v).Kind() {
	case reflect.Slice, reflect.Array:
		return "list"
	case reflect.Map:
		return "map"
	default:
		return reflect.TypeOf(v).String()
	}
}
