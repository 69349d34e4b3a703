package agui

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/runyaga/scriptbridge"
)

func TestMap(t *testing.T) {
	tests := []struct {
		name string
		in   scriptbridge.Event
		want Event
	}{
		{
			"run started",
			scriptbridge.RunStarted{ThreadID: "bridge-t", RunID: "bridge-r"},
			Event{Type: EventRunStarted, ThreadID: "t1", RunID: "r1"},
		},
		{
			"run finished",
			scriptbridge.RunFinished{ThreadID: "bridge-t", RunID: "bridge-r"},
			Event{Type: EventRunFinished, ThreadID: "t1", RunID: "r1"},
		},
		{
			"run error",
			scriptbridge.RunError{Message: "NameError: boom"},
			Event{Type: EventRunError, ThreadID: "t1", RunID: "r1", Message: "NameError: boom"},
		},
		{
			"step started",
			scriptbridge.StepStarted{StepID: "step_1"},
			Event{Type: EventStepStarted, StepID: "step_1"},
		},
		{
			"step finished",
			scriptbridge.StepFinished{StepID: "step_1"},
			Event{Type: EventStepFinished, StepID: "step_1"},
		},
		{
			"tool call start",
			scriptbridge.ToolCallStart{CallID: "call_1", Name: "add"},
			Event{Type: EventToolCallStart, ToolCallID: "call_1", ToolCallName: "add"},
		},
		{
			"tool call args",
			scriptbridge.ToolCallArgs{CallID: "call_1", Delta: `{"a":2}`},
			Event{Type: EventToolCallArgs, ToolCallID: "call_1", Delta: `{"a":2}`},
		},
		{
			"tool call end",
			scriptbridge.ToolCallEnd{CallID: "call_1"},
			Event{Type: EventToolCallEnd, ToolCallID: "call_1"},
		},
		{
			"tool call result",
			scriptbridge.ToolCallResult{CallID: "call_1", Value: "5"},
			Event{Type: EventToolCallResult, ToolCallID: "call_1", Content: "5"},
		},
		{
			"text start",
			scriptbridge.TextStart{MessageID: "msg_1"},
			Event{Type: EventTextMessageStart, MessageID: "msg_1"},
		},
		{
			"text content",
			scriptbridge.TextContent{MessageID: "msg_1", Delta: "hello\n"},
			Event{Type: EventTextMessageContent, MessageID: "msg_1", Delta: "hello\n"},
		},
		{
			"text end",
			scriptbridge.TextEnd{MessageID: "msg_1"},
			Event{Type: EventTextMessageEnd, MessageID: "msg_1"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Map(tt.in, "t1", "r1")
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestMap_SessionIDsOverrideBridgeIDs(t *testing.T) {
	got, err := Map(scriptbridge.RunStarted{ThreadID: "internal", RunID: "internal"}, "session-thread", "session-run")
	require.NoError(t, err)
	assert.Equal(t, "session-thread", got.ThreadID)
	assert.Equal(t, "session-run", got.RunID)
}

func TestMap_UnknownVariant(t *testing.T) {
	_, err := Map(nil, "t1", "r1")
	require.Error(t, err)
}

func TestMapAll(t *testing.T) {
	events := []scriptbridge.Event{
		scriptbridge.RunStarted{},
		scriptbridge.TextStart{MessageID: "m"},
		scriptbridge.TextContent{MessageID: "m", Delta: "hi"},
		scriptbridge.TextEnd{MessageID: "m"},
		scriptbridge.RunFinished{},
	}
	wire, err := MapAll(events, "t1", "r1")
	require.NoError(t, err)
	require.Len(t, wire, 5)
	assert.Equal(t, EventRunStarted, wire[0].Type)
	assert.Equal(t, EventRunFinished, wire[4].Type)
}

func TestMapAll_StopsOnUnknown(t *testing.T) {
	_, err := MapAll([]scriptbridge.Event{scriptbridge.RunStarted{}, nil}, "t1", "r1")
	require.Error(t, err)
}

func TestEvent_JSONFieldNames(t *testing.T) {
	ev := Event{
		Type:         EventToolCallStart,
		ToolCallID:   "call_1",
		ToolCallName: "add",
	}
	b, err := json.Marshal(ev)
	require.NoError(t, err)
	assert.JSONEq(t, `{"type":"TOOL_CALL_START","toolCallId":"call_1","toolCallName":"add"}`, string(b))

	b, err = json.Marshal(Event{Type: EventRunStarted, ThreadID: "t", RunID: "r"})
	require.NoError(t, err)
	assert.JSONEq(t, `{"type":"RUN_STARTED","threadId":"t","runId":"r"}`, string(b))
}
