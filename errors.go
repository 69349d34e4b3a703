package scriptbridge

import (
	"errors"
	"fmt"
)

// Sentinel errors for scriptbridge. Use errors.Is to check.
var (
	ErrValidation        = errors.New("validation failed")
	ErrFunctionNotFound  = errors.New("function not found")
	ErrEngineBusy        = errors.New("engine is already executing")
	ErrEngineDisposed    = errors.New("engine is disposed")
	ErrDuplicateCategory = errors.New("category already registered")
	ErrPoolExhausted     = errors.New("pool at capacity with every engine executing")
	ErrPoolDisposed      = errors.New("pool is disposed")
)

// MissingParamError reports a required parameter that was neither supplied
// positionally nor by keyword and has no default.
// It wraps ErrValidation for errors.Is.
type MissingParamError struct {
	Param string
}

func (e *MissingParamError) Error() string {
	return fmt.Sprintf("missing required parameter: %s", e.Param)
}

// Unwrap supports errors.Is(err, ErrValidation).
func (e *MissingParamError) Unwrap() error { return ErrValidation }

// TypeMismatchError reports a parameter whose value has the wrong type.
// Expected and Actual are script-level type names (string, integer, list, ...).
// It wraps ErrValidation for errors.Is.
type TypeMismatchError struct {
	Param    string
	Expected string
	Actual   string
}

func (e *TypeMismatchError) Error() string {
	return fmt.Sprintf("parameter %s: expected %s, got %s", e.Param, e.Expected, e.Actual)
}

// Unwrap supports errors.Is(err, ErrValidation).
func (e *TypeMismatchError) Unwrap() error { return ErrValidation }

// ReentrantAcquireError is returned by Pool.Acquire when the engine for the
// key is still executing. The sandbox cannot be entered concurrently from two
// logical flows, so the second acquire fails instead of sharing the instance.
type ReentrantAcquireError struct {
	Key string
}

func (e *ReentrantAcquireError) Error() string {
	return fmt.Sprintf("engine for key %q is already executing", e.Key)
}

// IsValidationError returns true if err is or wraps a validation failure
// (MissingParamError or TypeMismatchError).
func IsValidationError(err error) bool {
	return errors.Is(err, ErrValidation)
}

// panicError wraps a recovered panic value from a handler invocation.
type panicError struct{ p any }

func (e *panicError) Error() string {
	return "panic: " + fmt.Sprint(e.p)
}
