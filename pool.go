package scriptbridge

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
)

// EngineFactory creates a fresh engine for a pool entry, typically by
// starting a new sandboxed interpreter instance.
type EngineFactory func(ctx context.Context) (*Engine, error)

// Pool is a keyed cache of engine instances, amortizing interpreter creation
// across a conversation thread's lifetime. It enforces a live-instance cap
// with least-recently-used eviction of idle entries, and guards against
// re-entering an engine that is still executing.
type Pool struct {
	factory EngineFactory
	logger  *slog.Logger

	mu       sync.Mutex
	entries  map[string]*poolEntry
	seq      uint64
	max      int
	disposed bool
}

type poolEntry struct {
	engine    *Engine
	lastUsed  uint64
	executing bool
}

// NewPool creates a Pool around an engine factory. Capacity comes from
// WithMaxInstances or WithPlatformInfo, defaulting to DefaultMaxInstances.
func NewPool(factory EngineFactory, opts ...PoolOption) *Pool {
	o := poolOptions{max: DefaultMaxInstances, logger: slog.New(slog.DiscardHandler)}
	for _, opt := range opts {
		opt(&o)
	}
	return &Pool{
		factory: factory,
		logger:  o.logger,
		entries: make(map[string]*poolEntry),
		max:     o.max,
	}
}

// Acquire returns the engine serving key, creating one if needed, and marks
// it executing until Release.
//
// An existing entry that is still executing fails with ReentrantAcquireError:
// the sandbox cannot be entered concurrently from two logical flows. At
// capacity, the least-recently-used idle entry is evicted to make room; if
// every entry is executing, Acquire fails with ErrPoolExhausted instead of
// blocking.
func (p *Pool) Acquire(ctx context.Context, key string) (*Engine, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.disposed {
		return nil, ErrPoolDisposed
	}
	if ent, ok := p.entries[key]; ok {
		if ent.executing {
			return nil, &ReentrantAcquireError{Key: key}
		}
		ent.executing = true
		ent.lastUsed = p.next()
		return ent.engine, nil
	}
	if len(p.entries) >= p.max {
		victim, ok := p.lruIdleLocked()
		if !ok {
			return nil, fmt.Errorf("%w (limit %d)", ErrPoolExhausted, p.max)
		}
		p.logger.Debug("evicting idle engine", "key", victim)
		if err := p.evictLocked(victim); err != nil {
			return nil, fmt.Errorf("evict %q: %w", victim, err)
		}
	}
	engine, err := p.factory(ctx)
	if err != nil {
		return nil, fmt.Errorf("create engine for %q: %w", key, err)
	}
	p.entries[key] = &poolEntry{engine: engine, lastUsed: p.next(), executing: true}
	p.logger.Debug("engine created", "key", key, "live", len(p.entries))
	return engine, nil
}

// Release marks the engine for key idle and eviction-eligible. The instance
// is kept for reuse, not destroyed. Releasing an unknown key is a no-op.
func (p *Pool) Release(key string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if ent, ok := p.entries[key]; ok {
		ent.executing = false
		ent.lastUsed = p.next()
	}
}

// Evict disposes and removes the engine for key, regardless of its executing
// flag. Evicting an unknown key is a no-op.
func (p *Pool) Evict(key string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if _, ok := p.entries[key]; !ok {
		return nil
	}
	return p.evictLocked(key)
}

// DisposeAll disposes every held engine and closes the pool for further
// acquires. Dispose failures are joined; all entries are removed regardless.
func (p *Pool) DisposeAll() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.disposed = true
	var errs []error
	for key, ent := range p.entries {
		if err := ent.engine.Dispose(); err != nil {
			errs = append(errs, fmt.Errorf("dispose %q: %w", key, err))
		}
		delete(p.entries, key)
	}
	return errors.Join(errs...)
}

// Len reports the number of live entries.
func (p *Pool) Len() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.entries)
}

func (p *Pool) next() uint64 {
	p.seq++
	return p.seq
}

// lruIdleLocked picks the least-recently-used non-executing entry.
func (p *Pool) lruIdleLocked() (string, bool) {
	var key string
	var oldest uint64
	found := false
	for k, ent := range p.entries {
		if ent.executing {
			continue
		}
		if !found || ent.lastUsed < oldest {
			key, oldest, found = k, ent.lastUsed, true
		}
	}
	return key, found
}

func (p *Pool) evictLocked(key string) error {
	ent := p.entries[key]
	delete(p.entries, key)
	return ent.engine.Dispose()
}
