package scriptbridge

import (
	"context"
	"fmt"
)

// Handler executes one host function call. It receives the validated,
// coerced argument map and returns the value resumed into the script.
// Handlers may block; on future-capable platforms they run concurrently
// with further script progress.
type Handler func(ctx context.Context, args map[string]any) (any, error)

// Function is the immutable pairing of a schema and its handler.
type Function struct {
	Schema  FunctionSchema
	Handler Handler
}

// NewFunction pairs a schema with a handler. The schema name must be
// non-empty and the handler non-nil.
func NewFunction(schema FunctionSchema, handler Handler) (Function, error) {
	if schema.Name == "" {
		return Function{}, fmt.Errorf("function schema name must not be empty")
	}
	if handler == nil {
		return Function{}, fmt.Errorf("function %s: handler must not be nil", schema.Name)
	}
	return Function{Schema: schema, Handler: handler}, nil
}
