// Package testutil provides test helpers for scriptbridge (e.g. the scripted
// fake interpreters used to drive an Engine deterministically).
package testutil

import (
	"context"
	"fmt"

	"github.com/runyaga/scriptbridge"
)

// ScriptedInterpreter is a deterministic fake Interpreter: it answers Start
// and every resume call with the next queued progress, and records what the
// bridge sent for assertions. The queue stands in for a real sandbox running
// a script that makes the scripted external calls in order.
type ScriptedInterpreter struct {
	queue []scriptbridge.Progress

	// Recorded inputs, in call order.
	Code          string
	ExternalNames []string
	Limits        scriptbridge.Limits
	Resumed       []any
	ResumedErrors []string
	Closed        bool
}

// NewScripted queues the given progress reports. The first answers Start,
// each subsequent one answers the next resume.
func NewScripted(progress ...scriptbridge.Progress) *ScriptedInterpreter {
	return &ScriptedInterpreter{queue: progress}
}

func (s *ScriptedInterpreter) pop() (scriptbridge.Progress, error) {
	if s.Closed {
		return nil, fmt.Errorf("interpreter is closed")
	}
	if len(s.queue) == 0 {
		return nil, fmt.Errorf("scripted interpreter exhausted")
	}
	p := s.queue[0]
	s.queue = s.queue[1:]
	return p, nil
}

// Start records the wrapped code, names, and limits, then pops.
func (s *ScriptedInterpreter) Start(_ context.Context, code string, names []string, limits scriptbridge.Limits) (scriptbridge.Progress, error) {
	s.Code = code
	s.ExternalNames = names
	s.Limits = limits
	return s.pop()
}

// Resume records the value, then pops.
func (s *ScriptedInterpreter) Resume(_ context.Context, value any) (scriptbridge.Progress, error) {
	s.Resumed = append(s.Resumed, value)
	return s.pop()
}

// ResumeWithError records the message, then pops.
func (s *ScriptedInterpreter) ResumeWithError(_ context.Context, message string) (scriptbridge.Progress, error) {
	s.ResumedErrors = append(s.ResumedErrors, message)
	return s.pop()
}

// Close marks the interpreter closed; later calls fail.
func (s *ScriptedInterpreter) Close() error {
	s.Closed = true
	return nil
}

var _ scriptbridge.Interpreter = (*ScriptedInterpreter)(nil)

// FutureScriptedInterpreter extends ScriptedInterpreter with the
// future-capable resume calls, recording resolved value and error maps.
type FutureScriptedInterpreter struct {
	ScriptedInterpreter

	PendingResumes int
	Resolved       []map[string]any
	ResolvedErrors []map[string]string
}

// NewFutureScripted queues the given progress reports for a future-capable
// fake.
func NewFutureScripted(progress ...scriptbridge.Progress) *FutureScriptedInterpreter {
	return &FutureScriptedInterpreter{ScriptedInterpreter: ScriptedInterpreter{queue: progress}}
}

// ResumeAsPendingFuture counts the not-yet-available resume, then pops.
func (s *FutureScriptedInterpreter) ResumeAsPendingFuture(_ context.Context) (scriptbridge.Progress, error) {
	s.PendingResumes++
	return s.pop()
}

// ResolveFutures records the maps the bridge resolved, then pops.
func (s *FutureScriptedInterpreter) ResolveFutures(_ context.Context, values map[string]any, errs map[string]string) (scriptbridge.Progress, error) {
	s.Resolved = append(s.Resolved, values)
	s.ResolvedErrors = append(s.ResolvedErrors, errs)
	return s.pop()
}

var _ scriptbridge.FutureInterpreter = (*FutureScriptedInterpreter)(nil)
