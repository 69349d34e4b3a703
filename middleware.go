package scriptbridge

import (
	"context"
	"log/slog"
	"time"
)

// Middleware wraps a Function's handler with cross-cutting behavior
// (logging, recovery). The schema passes through untouched.
type Middleware func(Function) Function

// WithLogging returns a middleware that logs start, end, duration, and
// errors of every handler invocation.
func WithLogging(logger *slog.Logger) Middleware {
	if logger == nil {
		logger = slog.Default()
	}
	return func(next Function) Function {
		name := next.Schema.Name
		inner := next.Handler
		next.Handler = func(ctx context.Context, args map[string]any) (any, error) {
			logger.Info("function start", "function", name)
			start := time.Now()
			value, err := inner(ctx, args)
			dur := time.Since(start)
			if err != nil {
				logger.Error("function error", "function", name, "duration", dur, "error", err)
				return nil, err
			}
			logger.Info("function end", "function", name, "duration", dur)
			return value, nil
		}
		return next
	}
}

// WithRecovery returns a middleware that recovers handler panics and returns
// them as errors. The engine already recovers around invocation; this
// middleware is for running handlers outside an engine.
func WithRecovery() Middleware {
	return func(next Function) Function {
		inner := next.Handler
		next.Handler = func(ctx context.Context, args map[string]any) (value any, err error) {
			defer func() {
				if p := recover(); p != nil {
					value = nil
					err = &panicError{p: p}
				}
			}()
			return inner(ctx, args)
		}
		return next
	}
}
