// Package scriptbridge drives a sandboxed script interpreter from Go: it lets
// agent-generated script code call host-provided functions by name, and lets
// the host observe one execution as an ordered, protocol-agnostic event
// sequence.
//
// # Overview
//
// The interpreter runs in an isolated sandbox that cannot perform host I/O on
// its own. Whenever the script calls an external function, the interpreter
// suspends and reports a pending call; the bridge validates the arguments
// against the function's declared schema, invokes the Go handler, and resumes
// the interpreter with the result (or an error the script can catch).
//
// Pipeline: declare params + schema -> Function -> Engine.Register ->
// Engine.Execute (start/resume loop, dispatch, output capture) -> Event
// sequence (RunStarted through RunFinished).
//
// # Key concepts
//
//   - Single execution: an Engine runs at most one script at a time; a second
//     Execute fails synchronously with ErrEngineBusy.
//   - Output batching: the script's print builtin is rebound to a dedicated
//     console-write external call; output is buffered and flushed as one
//     TextStart/TextContent/TextEnd triple at the end of the run.
//   - Self-correction: validation and handler failures are surfaced to the
//     script via resume-with-error and to the observer as a ToolCallResult
//     with an "Error: ..." value; one failing call never aborts the run.
//   - Pooling: Pool caches one Engine per conversation key with LRU eviction
//     and a reentrancy guard for sandboxes that cannot be entered twice.
//
// See Param, FunctionSchema, Function, Registry, Engine, and Pool for the
// core types, and the agui subpackage for the chat-protocol event adapter.
//
// # Example
//
//	schema := scriptbridge.FunctionSchema{
//	    Name:        "add",
//	    Description: "Add two integers",
//	    Params: []scriptbridge.Param{
//	        {Name: "a", Type: scriptbridge.TypeInteger, Required: true},
//	        {Name: "b", Type: scriptbridge.TypeInteger, Required: true},
//	    },
//	}
//	fn, err := scriptbridge.NewFunction(schema, func(_ context.Context, args map[string]any) (any, error) {
//	    return args["a"].(int64) + args["b"].(int64), nil
//	})
//	if err != nil { ... }
//	engine := scriptbridge.NewEngine(interp)
//	_ = engine.Register(fn)
//	events, err := engine.ExecuteCollect(ctx, "result = add(2, 3)")
package scriptbridge
