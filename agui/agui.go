// Package agui maps scriptbridge lifecycle events 1:1 onto an AG-UI style
// chat-protocol wire vocabulary (run/step/tool-call/text lifecycle).
//
// The mapping is pure and stateless: every scriptbridge event variant maps to
// exactly one wire event, and the caller supplies the thread and run ids the
// surrounding protocol session uses, overriding the bridge-generated ones.
package agui

import (
	"fmt"

	"github.com/runyaga/scriptbridge"
)

// EventType is the wire-level event discriminator.
type EventType string

const (
	EventRunStarted         EventType = "RUN_STARTED"
	EventRunFinished        EventType = "RUN_FINISHED"
	EventRunError           EventType = "RUN_ERROR"
	EventStepStarted        EventType = "STEP_STARTED"
	EventStepFinished       EventType = "STEP_FINISHED"
	EventToolCallStart      EventType = "TOOL_CALL_START"
	EventToolCallArgs       EventType = "TOOL_CALL_ARGS"
	EventToolCallEnd        EventType = "TOOL_CALL_END"
	EventToolCallResult     EventType = "TOOL_CALL_RESULT"
	EventTextMessageStart   EventType = "TEXT_MESSAGE_START"
	EventTextMessageContent EventType = "TEXT_MESSAGE_CONTENT"
	EventTextMessageEnd     EventType = "TEXT_MESSAGE_END"
)

// Event is one wire event. Unused fields are omitted from the JSON encoding.
type Event struct {
	Type         EventType `json:"type"`
	ThreadID     string    `json:"threadId,omitempty"`
	RunID        string    `json:"runId,omitempty"`
	StepID       string    `json:"stepId,omitempty"`
	ToolCallID   string    `json:"toolCallId,omitempty"`
	ToolCallName string    `json:"toolCallName,omitempty"`
	MessageID    string    `json:"messageId,omitempty"`
	Delta        string    `json:"delta,omitempty"`
	Content      string    `json:"content,omitempty"`
	Message      string    `json:"message,omitempty"`
}

// Map converts one bridge event, injecting the caller-supplied thread and run
// ids on run-level events. An unmapped variant is an error: the switch must
// stay exhaustive as the bridge vocabulary evolves.
func Map(ev scriptbridge.Event, threadID, runID string) (Event, error) {
	switch e := ev.(type) {
	case scriptbridge.RunStarted:
		return Event{Type: EventRunStarted, ThreadID: threadID, RunID: runID}, nil
	case scriptbridge.RunFinished:
		return Event{Type: EventRunFinished, ThreadID: threadID, RunID: runID}, nil
	case scriptbridge.RunError:
		return Event{Type: EventRunError, ThreadID: threadID, RunID: runID, Message: e.Message}, nil
	case scriptbridge.StepStarted:
		return Event{Type: EventStepStarted, StepID: e.StepID}, nil
	case scriptbridge.StepFinished:
		return Event{Type: EventStepFinished, StepID: e.StepID}, nil
	case scriptbridge.ToolCallStart:
		return Event{Type: EventToolCallStart, ToolCallID: e.CallID, ToolCallName: e.Name}, nil
	case scriptbridge.ToolCallArgs:
		return Event{Type: EventToolCallArgs, ToolCallID: e.CallID, Delta: e.Delta}, nil
	case scriptbridge.ToolCallEnd:
		return Event{Type: EventToolCallEnd, ToolCallID: e.CallID}, nil
	case scriptbridge.ToolCallResult:
		return Event{Type: EventToolCallResult, ToolCallID: e.CallID, Content: e.Value}, nil
	case scriptbridge.TextStart:
		return Event{Type: EventTextMessageStart, MessageID: e.MessageID}, nil
	case scriptbridge.TextContent:
		return Event{Type: EventTextMessageContent, MessageID: e.MessageID, Delta: e.Delta}, nil
	case scriptbridge.TextEnd:
		return Event{Type: EventTextMessageEnd, MessageID: e.MessageID}, nil
	default:
		return Event{}, fmt.Errorf("unmapped bridge event %T", ev)
	}
}

// MapAll converts a full event sequence in order.
func MapAll(events []scriptbridge.Event, threadID, runID string) ([]Event, error) {
	out := make([]Event, 0, len(events))
	for _, ev := range events {
		mapped, err := Map(ev, threadID, runID)
		if err != nil {
			return nil, err
		}
		out = append(out, mapped)
	}
	return out, nil
}
