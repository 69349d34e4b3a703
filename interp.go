package scriptbridge

import (
	"context"
	"time"
)

// Progress is the interpreter's self-reported status after a start or resume
// call: a pending external call, a request to resolve previously dispatched
// futures, or completion. The variant set is closed (sum type), mirroring
// the Event model.
type Progress interface {
	isProgress()
}

// Pending reports that the script invoked an external function and the
// interpreter is suspended until the bridge resumes it. CallID is set only by
// future-capable interpreters; it keys the later ResolveFutures request.
type Pending struct {
	Name       string
	Positional []any
	Keyword    map[string]any
	CallID     string
}

// ResolveFutures reports that the script explicitly awaits the results of
// previously dispatched calls, identified by interpreter-issued ids.
type ResolveFutures struct {
	IDs []string
}

// Complete reports that the script ran to its end (successfully or not).
type Complete struct {
	Result ExecResult
}

func (Pending) isProgress()        {}
func (ResolveFutures) isProgress() {}
func (Complete) isProgress()       {}

// ExecResult carries the terminal outcome of one interpreter run: a success
// value or a typed script error, plus resource-usage counters. The bridge
// surfaces usage to observers but never enforces limits itself.
type ExecResult struct {
	Value any
	Err   *ScriptError
	Usage Usage
}

// ScriptError is a typed exception raised by the script or the interpreter.
type ScriptError struct {
	Type    string
	Message string
}

func (e *ScriptError) Error() string {
	if e.Type == "" {
		return e.Message
	}
	return e.Type + ": " + e.Message
}

// Usage reports interpreter resource consumption for one run.
type Usage struct {
	MemoryBytes int64
	Elapsed     time.Duration
	StackDepth  int
}

// Limits bounds one interpreter run. Zero values mean platform defaults.
// Limits are enforced by the interpreter, not by the bridge.
type Limits struct {
	MaxMemoryBytes int64
	Timeout        time.Duration
	MaxStackDepth  int
}

// Interpreter is the platform contract for one sandboxed interpreter
// instance. Start begins a run with the wrapped code and the list of
// externally callable names; Resume and ResumeWithError answer the pending
// external call reported by the previous progress. Implementations are
// stateful and drive exactly one run at a time; the Engine serializes access.
type Interpreter interface {
	Start(ctx context.Context, code string, externalNames []string, limits Limits) (Progress, error)
	Resume(ctx context.Context, value any) (Progress, error)
	ResumeWithError(ctx context.Context, message string) (Progress, error)
	Close() error
}

// FutureInterpreter is implemented by platforms that can resume the script
// before a dispatched call's result is known. The bridge detects the
// capability by interface assertion. ResumeAsPendingFuture answers a Pending
// progress without a value; ResolveFutures answers a ResolveFutures progress
// with the value and error maps the script requested.
type FutureInterpreter interface {
	Interpreter
	ResumeAsPendingFuture(ctx context.Context) (Progress, error)
	ResolveFutures(ctx context.Context, values map[string]any, errs map[string]string) (Progress, error)
}

// PlatformInfo describes platform constraints, read once at wiring time.
type PlatformInfo struct {
	// SupportsParallel reports whether distinct engine instances may run
	// concurrently. Single-flow platforms should size the pool to 1.
	SupportsParallel bool
	// FutureCapable reports whether interpreters implement FutureInterpreter.
	FutureCapable bool
	// MaxInstances is the maximum number of pooled engine instances.
	MaxInstances int
}
