package testutil

import (
	"github.com/runyaga/scriptbridge"
)

// NewTestEngine returns an Engine over a scripted interpreter with the given
// functions already registered, suitable for tests.
func NewTestEngine(interp scriptbridge.Interpreter, fns ...scriptbridge.Function) (*scriptbridge.Engine, error) {
	engine := scriptbridge.NewEngine(interp)
	for _, fn := range fns {
		if err := engine.Register(fn); err != nil {
			return nil, err
		}
	}
	return engine, nil
}

// CompleteOK is a Complete progress with a plain success value, the usual
// terminal entry of a scripted queue.
func CompleteOK(value any) scriptbridge.Progress {
	return scriptbridge.Complete{Result: scriptbridge.ExecResult{Value: value}}
}

// CompleteError is a Complete progress carrying a script-level error.
func CompleteError(errType, message string) scriptbridge.Progress {
	return scriptbridge.Complete{Result: scriptbridge.ExecResult{
		Err: &scriptbridge.ScriptError{Type: errType, Message: message},
	}}
}

// Call is a Pending progress for a positional external call, the usual way a
// scripted queue models the script invoking a host function.
func Call(name string, positional ...any) scriptbridge.Progress {
	return scriptbridge.Pending{Name: name, Positional: positional}
}

// Print is a Pending progress for the console-write call the print preamble
// issues.
func Print(text string) scriptbridge.Progress {
	return scriptbridge.Pending{Name: scriptbridge.ConsoleWriteName, Positional: []any{text}}
}
