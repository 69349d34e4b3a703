package scriptbridge

import "log/slog"

// engineOptions hold optional engine settings.
type engineOptions struct {
	logger *slog.Logger
	limits Limits
}

// EngineOption configures an Engine (e.g. WithLogger, WithLimits).
type EngineOption func(*engineOptions)

// WithLogger sets the engine's structured logger. By default the engine
// discards logs.
func WithLogger(logger *slog.Logger) EngineOption {
	return func(o *engineOptions) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithLimits sets the resource limits passed to the interpreter on each
// Start. The interpreter enforces them; the bridge only forwards and reports.
func WithLimits(limits Limits) EngineOption {
	return func(o *engineOptions) {
		o.limits = limits
	}
}

// DefaultMaxInstances is the pool capacity used when neither WithMaxInstances
// nor WithPlatformInfo is given.
const DefaultMaxInstances = 4

// poolOptions hold optional pool settings.
type poolOptions struct {
	max    int
	logger *slog.Logger
}

// PoolOption configures a Pool.
type PoolOption func(*poolOptions)

// WithMaxInstances caps the number of live engine instances.
// Non-positive values fall back to DefaultMaxInstances.
func WithMaxInstances(n int) PoolOption {
	return func(o *poolOptions) {
		if n > 0 {
			o.max = n
		}
	}
}

// WithPlatformInfo sizes the pool from the platform constraints descriptor:
// MaxInstances caps the pool, and a platform without parallel execution
// support is clamped to a single instance.
func WithPlatformInfo(info PlatformInfo) PoolOption {
	return func(o *poolOptions) {
		if info.MaxInstances > 0 {
			o.max = info.MaxInstances
		}
		if !info.SupportsParallel {
			o.max = 1
		}
	}
}

// WithPoolLogger sets the pool's structured logger. By default the pool
// discards logs.
func WithPoolLogger(logger *slog.Logger) PoolOption {
	return func(o *poolOptions) {
		if logger != nil {
			o.logger = logger
		}
	}
}
