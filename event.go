package scriptbridge

// Event is one entry in the ordered lifecycle sequence emitted by an
// execution. The variant set is closed: every event type lives in this file
// and implements the unexported marker method, so consumers can switch
// exhaustively without runtime surprises. Events carry data only.
type Event interface {
	isEvent()
}

// RunStarted opens an execution's event sequence.
type RunStarted struct {
	ThreadID string
	RunID    string
}

// RunFinished closes a successful execution. No further events follow.
type RunFinished struct {
	ThreadID string
	RunID    string
}

// RunError closes a failed execution (script-level error or error result).
// No further events follow.
type RunError struct {
	Message string
}

// StepStarted opens one host function call step.
type StepStarted struct {
	StepID string
}

// StepFinished closes one host function call step.
type StepFinished struct {
	StepID string
}

// ToolCallStart announces a dispatched host function call.
type ToolCallStart struct {
	CallID string
	Name   string
}

// ToolCallArgs carries the serialized validated arguments of a call.
type ToolCallArgs struct {
	CallID string
	Delta  string
}

// ToolCallEnd marks the end of a call's argument stream.
type ToolCallEnd struct {
	CallID string
}

// ToolCallResult carries the stringified handler result, or "Error: ..." when
// validation or the handler failed.
type ToolCallResult struct {
	CallID string
	Value  string
}

// TextStart opens the run's single batched output message.
type TextStart struct {
	MessageID string
}

// TextContent carries the buffered script output, concatenated in call order.
type TextContent struct {
	MessageID string
	Delta     string
}

// TextEnd closes the output message.
type TextEnd struct {
	MessageID string
}

func (RunStarted) isEvent()     {}
func (RunFinished) isEvent()    {}
func (RunError) isEvent()       {}
func (StepStarted) isEvent()    {}
func (StepFinished) isEvent()   {}
func (ToolCallStart) isEvent()  {}
func (ToolCallArgs) isEvent()   {}
func (ToolCallEnd) isEvent()    {}
func (ToolCallResult) isEvent() {}
func (TextStart) isEvent()      {}
func (TextContent) isEvent()    {}
func (TextEnd) isEvent()        {}
