package scriptbridge

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"
)

// ConsoleWriteName is the dedicated external function the print preamble
// routes script output through. It is reserved; host functions cannot use it.
const ConsoleWriteName = "_console_write"

// printPreamble rebinds the script's print builtin to the console-write
// external call so output is buffered by the bridge instead of interleaving
// with tool events.
const printPreamble = `def print(*args, sep=' ', end='\n'):
    _console_write(sep.join([str(a) for a in args]) + end)

`

// Engine drives one interpreter instance's start/resume protocol: it
// dispatches pending external calls to registered host functions, buffers
// script output, and emits the lifecycle event sequence.
//
// At most one execution is in flight per engine; a second Execute fails with
// ErrEngineBusy. Every operation fails with ErrEngineDisposed after Dispose.
type Engine struct {
	interp Interpreter
	logger *slog.Logger
	limits Limits
	ids    atomic.Int64

	mu          sync.Mutex
	funcs       map[string]Function // wrapped with middlewares, used by Execute
	rawFuncs    map[string]Function // unwrapped, used by Use to re-apply from scratch
	middlewares []Middleware
	executing   bool
	disposed    bool
}

// NewEngine creates an Engine around one interpreter instance.
func NewEngine(interp Interpreter, opts ...EngineOption) *Engine {
	o := engineOptions{logger: slog.New(slog.DiscardHandler)}
	for _, opt := range opts {
		opt(&o)
	}
	return &Engine{
		interp:   interp,
		logger:   o.logger,
		limits:   o.limits,
		funcs:    make(map[string]Function),
		rawFuncs: make(map[string]Function),
	}
}

// Register adds a host function, replacing any previous function with the
// same name. Stored middlewares (see Use) are applied before registration.
// The console-write name is reserved for the output preamble.
func (e *Engine) Register(fn Function) error {
	if fn.Schema.Name == "" {
		return fmt.Errorf("function schema name must not be empty")
	}
	if fn.Handler == nil {
		return fmt.Errorf("function %s: handler must not be nil", fn.Schema.Name)
	}
	if fn.Schema.Name == ConsoleWriteName {
		return fmt.Errorf("function name %q is reserved", ConsoleWriteName)
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.disposed {
		return ErrEngineDisposed
	}
	e.rawFuncs[fn.Schema.Name] = fn
	for i := len(e.middlewares) - 1; i >= 0; i-- {
		fn = e.middlewares[i](fn)
	}
	e.funcs[fn.Schema.Name] = fn
	return nil
}

// Unregister removes a host function by name.
func (e *Engine) Unregister(name string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.disposed {
		return ErrEngineDisposed
	}
	if _, ok := e.rawFuncs[name]; !ok {
		return fmt.Errorf("%w: %s", ErrFunctionNotFound, name)
	}
	delete(e.rawFuncs, name)
	delete(e.funcs, name)
	return nil
}

// Use stores the given middlewares and reapplies them from scratch to all
// registered functions (onion order: first middleware is outermost).
// Functions registered after Use also get them applied. Calling Use again
// replaces the chain and rewraps from the raw functions, never double-wrapping.
func (e *Engine) Use(middlewares ...Middleware) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.middlewares = middlewares
	for name, raw := range e.rawFuncs {
		fn := raw
		for i := len(middlewares) - 1; i >= 0; i-- {
			fn = middlewares[i](fn)
		}
		e.funcs[name] = fn
	}
}

// Schemas returns the registered function schemas sorted by name, for
// introspection and provider export.
func (e *Engine) Schemas() []FunctionSchema {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]FunctionSchema, 0, len(e.rawFuncs))
	for _, fn := range e.rawFuncs {
		out = append(out, fn.Schema)
	}
	slices.SortFunc(out, func(a, b FunctionSchema) int {
		return strings.Compare(a.Name, b.Name)
	})
	return out
}

// Dispose marks the engine unusable and closes its interpreter. An in-flight
// execution is not interrupted directly, but the closed interpreter will
// surface an error on its next resume. Dispose is idempotent.
func (e *Engine) Dispose() error {
	e.mu.Lock()
	if e.disposed {
		e.mu.Unlock()
		return nil
	}
	e.disposed = true
	e.mu.Unlock()
	return e.interp.Close()
}

// nextID returns the next monotonic id with the given prefix, unique within
// this engine instance.
func (e *Engine) nextID(prefix string) string {
	return fmt.Sprintf("%s_%d", prefix, e.ids.Add(1))
}

// ExecuteCollect runs Execute and gathers the emitted events into a slice.
func (e *Engine) ExecuteCollect(ctx context.Context, code string) ([]Event, error) {
	var events []Event
	err := e.Execute(ctx, code, func(ev Event) error {
		events = append(events, ev)
		return nil
	})
	return events, err
}

// Execute runs one script and emits its ordered, finite event sequence via
// yield. It fails synchronously with ErrEngineBusy while another execution is
// in flight and with ErrEngineDisposed after Dispose; neither alters an
// in-flight sequence.
//
// Script-level failures (unknown function, validation, handler error, raised
// exception) are part of the event sequence and return a nil error; only host
// faults (interpreter transport failure, yield failure, misuse) are returned
// as Go errors.
func (e *Engine) Execute(ctx context.Context, code string, yield func(Event) error) error {
	if yield == nil {
		return fmt.Errorf("yield must not be nil")
	}
	e.mu.Lock()
	if e.disposed {
		e.mu.Unlock()
		return ErrEngineDisposed
	}
	if e.executing {
		e.mu.Unlock()
		return ErrEngineBusy
	}
	e.executing = true
	funcs := make(map[string]Function, len(e.funcs))
	for name, fn := range e.funcs {
		funcs[name] = fn
	}
	e.mu.Unlock()
	defer func() {
		e.mu.Lock()
		e.executing = false
		e.mu.Unlock()
	}()

	run := &runState{
		engine:  e,
		funcs:   funcs,
		pending: make(map[string]*pendingCall),
		yield:   yield,
	}
	return run.execute(ctx, code)
}

// runState holds the per-execution state of one Execute call.
type runState struct {
	engine  *Engine
	funcs   map[string]Function
	pending map[string]*pendingCall
	output  strings.Builder
	yield   func(Event) error
}

// pendingCall tracks one dispatched, not-yet-resolved handler call on a
// future-capable platform: the interpreter-issued id keys it, the event
// metadata replays into ToolCallResult/StepFinished when resolved.
type pendingCall struct {
	eventCallID string
	stepID      string
	name        string
	done        chan callOutcome
}

type callOutcome struct {
	value any
	err   error
}

func (r *runState) execute(ctx context.Context, code string) error {
	e := r.engine
	names := make([]string, 0, len(r.funcs)+1)
	for name := range r.funcs {
		names = append(names, name)
	}
	slices.Sort(names)
	names = append([]string{ConsoleWriteName}, names...)

	threadID := uuid.NewString()
	runID := uuid.NewString()

	progress, err := e.interp.Start(ctx, printPreamble+code, names, e.limits)
	if err != nil {
		return fmt.Errorf("interpreter start: %w", err)
	}
	e.logger.Debug("run started", "thread", threadID, "run", runID)
	if err := r.yield(RunStarted{ThreadID: threadID, RunID: runID}); err != nil {
		return err
	}

	for {
		switch p := progress.(type) {
		case Pending:
			progress, err = r.handlePending(ctx, p)
		case ResolveFutures:
			progress, err = r.handleResolve(ctx, p)
		case Complete:
			return r.finish(p.Result, threadID, runID)
		default:
			return fmt.Errorf("interpreter reported unknown progress %T", progress)
		}
		if err != nil {
			return err
		}
	}
}

// handlePending dispatches one reported external call: console-write buffers
// output, unknown names resume with a catchable error, registered functions
// run synchronously or as a tracked future depending on platform capability.
func (r *runState) handlePending(ctx context.Context, p Pending) (Progress, error) {
	e := r.engine
	if p.Name == ConsoleWriteName {
		if len(p.Positional) > 0 {
			r.output.WriteString(asText(p.Positional[0]))
		}
		return e.interp.Resume(ctx, nil)
	}

	fn, ok := r.funcs[p.Name]
	if !ok {
		// No schema exists, so no tool events are emitted.
		e.logger.Debug("unknown function called", "name", p.Name)
		return e.interp.ResumeWithError(ctx, "Unknown function: "+p.Name)
	}

	stepID := e.nextID("step")
	callID := p.CallID
	if callID == "" {
		callID = e.nextID("call")
	}
	if err := r.yield(StepStarted{StepID: stepID}); err != nil {
		return nil, err
	}
	if err := r.yield(ToolCallStart{CallID: callID, Name: p.Name}); err != nil {
		return nil, err
	}

	args, verr := fn.Schema.MapAndValidate(p.Positional, p.Keyword)
	var argsJSON []byte
	if verr == nil {
		argsJSON, verr = json.Marshal(args)
	}
	if verr != nil {
		e.logger.Debug("call rejected", "name", p.Name, "error", verr)
		if err := r.failStep(callID, stepID, verr.Error()); err != nil {
			return nil, err
		}
		return e.interp.ResumeWithError(ctx, verr.Error())
	}
	if err := r.yield(ToolCallArgs{CallID: callID, Delta: string(argsJSON)}); err != nil {
		return nil, err
	}
	if err := r.yield(ToolCallEnd{CallID: callID}); err != nil {
		return nil, err
	}

	// Future path: the interpreter issued a call id and can make progress
	// before the result is known. Launch the handler and track it.
	if fi, ok := e.interp.(FutureInterpreter); ok && p.CallID != "" {
		pc := &pendingCall{
			eventCallID: callID,
			stepID:      stepID,
			name:        p.Name,
			done:        make(chan callOutcome, 1),
		}
		r.pending[p.CallID] = pc
		go func() {
			value, err := invokeHandler(ctx, fn.Handler, args)
			pc.done <- callOutcome{value: value, err: err}
		}()
		return fi.ResumeAsPendingFuture(ctx)
	}

	value, herr := invokeHandler(ctx, fn.Handler, args)
	if herr != nil {
		e.logger.Error("handler failed", "name", p.Name, "error", herr)
		if err := r.failStep(callID, stepID, herr.Error()); err != nil {
			return nil, err
		}
		return e.interp.ResumeWithError(ctx, herr.Error())
	}
	if err := r.yield(ToolCallResult{CallID: callID, Value: stringifyResult(value)}); err != nil {
		return nil, err
	}
	if err := r.yield(StepFinished{StepID: stepID}); err != nil {
		return nil, err
	}
	return e.interp.Resume(ctx, value)
}

// handleResolve awaits the outcome of each requested in-flight call, emits
// its result and step-finished events, and answers the interpreter with the
// full value and error maps it asked for. Ids with no remembered call are
// skipped.
func (r *runState) handleResolve(ctx context.Context, p ResolveFutures) (Progress, error) {
	e := r.engine
	fi, ok := e.interp.(FutureInterpreter)
	if !ok {
		return nil, fmt.Errorf("interpreter requested future resolution without future support")
	}
	values := make(map[string]any)
	errs := make(map[string]string)
	for _, id := range p.IDs {
		pc, ok := r.pending[id]
		if !ok {
			continue
		}
		delete(r.pending, id)
		out := <-pc.done
		if out.err != nil {
			e.logger.Error("handler failed", "name", pc.name, "error", out.err)
			errs[id] = out.err.Error()
			if err := r.failStep(pc.eventCallID, pc.stepID, out.err.Error()); err != nil {
				return nil, err
			}
			continue
		}
		values[id] = out.value
		if err := r.yield(ToolCallResult{CallID: pc.eventCallID, Value: stringifyResult(out.value)}); err != nil {
			return nil, err
		}
		if err := r.yield(StepFinished{StepID: pc.stepID}); err != nil {
			return nil, err
		}
	}
	return fi.ResolveFutures(ctx, values, errs)
}

// finish flushes buffered output and emits the terminal run event.
func (r *runState) finish(result ExecResult, threadID, runID string) error {
	e := r.engine
	if r.output.Len() > 0 {
		msgID := e.nextID("msg")
		if err := r.yield(TextStart{MessageID: msgID}); err != nil {
			return err
		}
		if err := r.yield(TextContent{MessageID: msgID, Delta: r.output.String()}); err != nil {
			return err
		}
		if err := r.yield(TextEnd{MessageID: msgID}); err != nil {
			return err
		}
	}
	e.logger.Debug("run complete",
		"run", runID,
		"memory_bytes", result.Usage.MemoryBytes,
		"elapsed", result.Usage.Elapsed,
		"stack_depth", result.Usage.StackDepth,
	)
	if result.Err != nil {
		return r.yield(RunError{Message: result.Err.Error()})
	}
	return r.yield(RunFinished{ThreadID: threadID, RunID: runID})
}

// failStep emits the error result and step-finished pair for a rejected or
// failed call.
func (r *runState) failStep(callID, stepID, message string) error {
	if err := r.yield(ToolCallResult{CallID: callID, Value: "Error: " + message}); err != nil {
		return err
	}
	return r.yield(StepFinished{StepID: stepID})
}

// invokeHandler runs a handler with panic recovery so one misbehaving host
// function cannot take down the run.
func invokeHandler(ctx context.Context, h Handler, args map[string]any) (value any, err error) {
	defer func() {
		if p := recover(); p != nil {
			value = nil
			err = &panicError{p: p}
		}
	}()
	return h(ctx, args)
}

// stringifyResult renders a handler result for the ToolCallResult event:
// strings pass through, everything else is JSON.
func stringifyResult(v any) string {
	switch t := v.(type) {
	case nil:
		return "null"
	case string:
		return t
	default:
		b, err := json.Marshal(v)
		if err != nil {
			return fmt.Sprint(v)
		}
		return string(b)
	}
}

// asText renders a console-write argument for the output buffer.
func asText(v any) string {
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprint(v)
}
