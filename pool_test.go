package scriptbridge_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/runyaga/scriptbridge"
	"github.com/runyaga/scriptbridge/testutil"
)

func countingFactory(created *int) scriptbridge.EngineFactory {
	return func(context.Context) (*scriptbridge.Engine, error) {
		*created++
		return scriptbridge.NewEngine(testutil.NewScripted()), nil
	}
}

func TestPool_Acquire_ReusesPerKey(t *testing.T) {
	var created int
	pool := scriptbridge.NewPool(countingFactory(&created))
	defer func() { require.NoError(t, pool.DisposeAll()) }()

	ctx := context.Background()
	first, err := pool.Acquire(ctx, "thread-1")
	require.NoError(t, err)
	pool.Release("thread-1")

	second, err := pool.Acquire(ctx, "thread-1")
	require.NoError(t, err)
	assert.Same(t, first, second, "same key reuses the instance")
	assert.Equal(t, 1, created)
	pool.Release("thread-1")

	_, err = pool.Acquire(ctx, "thread-2")
	require.NoError(t, err)
	assert.Equal(t, 2, created)
	assert.Equal(t, 2, pool.Len())
}

func TestPool_Acquire_Reentrant(t *testing.T) {
	var created int
	pool := scriptbridge.NewPool(countingFactory(&created))
	defer func() { require.NoError(t, pool.DisposeAll()) }()

	ctx := context.Background()
	_, err := pool.Acquire(ctx, "thread-1")
	require.NoError(t, err)

	_, err = pool.Acquire(ctx, "thread-1")
	var reentrant *scriptbridge.ReentrantAcquireError
	require.ErrorAs(t, err, &reentrant)
	assert.Equal(t, "thread-1", reentrant.Key)
	assert.Equal(t, 1, created, "the held instance is not replaced")
}

func TestPool_Acquire_EvictsLRUIdle(t *testing.T) {
	var created int
	pool := scriptbridge.NewPool(countingFactory(&created), scriptbridge.WithMaxInstances(2))
	defer func() { require.NoError(t, pool.DisposeAll()) }()

	ctx := context.Background()
	_, err := pool.Acquire(ctx, "a")
	require.NoError(t, err)
	_, err = pool.Acquire(ctx, "b")
	require.NoError(t, err)
	pool.Release("a")
	pool.Release("b")

	// "a" was released first, so it is the least recently used.
	_, err = pool.Acquire(ctx, "c")
	require.NoError(t, err)
	assert.Equal(t, 2, pool.Len())
	assert.Equal(t, 3, created)

	// Re-acquiring "a" now creates a fresh instance.
	pool.Release("c")
	_, err = pool.Acquire(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, 4, created)

	// "b" survived both evictions.
	pool.Release("a")
	_, err = pool.Acquire(ctx, "b")
	require.NoError(t, err)
	assert.Equal(t, 4, created)
}

func TestPool_Acquire_ExhaustedWhenAllExecuting(t *testing.T) {
	var created int
	pool := scriptbridge.NewPool(countingFactory(&created), scriptbridge.WithMaxInstances(2))
	defer func() { require.NoError(t, pool.DisposeAll()) }()

	ctx := context.Background()
	_, err := pool.Acquire(ctx, "a")
	require.NoError(t, err)
	_, err = pool.Acquire(ctx, "b")
	require.NoError(t, err)

	_, err = pool.Acquire(ctx, "c")
	require.ErrorIs(t, err, scriptbridge.ErrPoolExhausted)
	assert.Equal(t, 2, created, "no instance is created past capacity")
	assert.Equal(t, 2, pool.Len())

	// Releasing one makes room again.
	pool.Release("a")
	_, err = pool.Acquire(ctx, "c")
	require.NoError(t, err)
	assert.Equal(t, 3, created)
}

func TestPool_Release_UnknownKeyNoop(t *testing.T) {
	var created int
	pool := scriptbridge.NewPool(countingFactory(&created))
	defer func() { require.NoError(t, pool.DisposeAll()) }()

	pool.Release("never-seen")
	assert.Equal(t, 0, pool.Len())
}

func TestPool_Evict(t *testing.T) {
	var created int
	pool := scriptbridge.NewPool(countingFactory(&created))
	defer func() { require.NoError(t, pool.DisposeAll()) }()

	ctx := context.Background()
	engine, err := pool.Acquire(ctx, "a")
	require.NoError(t, err)

	require.NoError(t, pool.Evict("a"))
	assert.Equal(t, 0, pool.Len())
	_, err = engine.ExecuteCollect(ctx, "x = 1")
	require.ErrorIs(t, err, scriptbridge.ErrEngineDisposed)

	require.NoError(t, pool.Evict("a"), "evicting an unknown key is a no-op")

	// The key can be served again with a fresh instance.
	_, err = pool.Acquire(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, 2, created)
}

func TestPool_DisposeAll(t *testing.T) {
	var created int
	pool := scriptbridge.NewPool(countingFactory(&created))

	ctx := context.Background()
	a, err := pool.Acquire(ctx, "a")
	require.NoError(t, err)
	b, err := pool.Acquire(ctx, "b")
	require.NoError(t, err)

	require.NoError(t, pool.DisposeAll())
	assert.Equal(t, 0, pool.Len())
	_, err = a.ExecuteCollect(ctx, "x = 1")
	require.ErrorIs(t, err, scriptbridge.ErrEngineDisposed)
	_, err = b.ExecuteCollect(ctx, "x = 1")
	require.ErrorIs(t, err, scriptbridge.ErrEngineDisposed)

	_, err = pool.Acquire(ctx, "a")
	require.ErrorIs(t, err, scriptbridge.ErrPoolDisposed)
}

func TestPool_Acquire_FactoryError(t *testing.T) {
	boom := errors.New("sandbox start failed")
	pool := scriptbridge.NewPool(func(context.Context) (*scriptbridge.Engine, error) {
		return nil, boom
	})
	defer func() { require.NoError(t, pool.DisposeAll()) }()

	_, err := pool.Acquire(context.Background(), "a")
	require.ErrorIs(t, err, boom)
	assert.Equal(t, 0, pool.Len(), "a failed creation leaves no entry behind")
}

func TestPool_PlatformInfoCapsInstances(t *testing.T) {
	var created int
	pool := scriptbridge.NewPool(countingFactory(&created),
		scriptbridge.WithPlatformInfo(scriptbridge.PlatformInfo{SupportsParallel: false, MaxInstances: 8}))
	defer func() { require.NoError(t, pool.DisposeAll()) }()

	ctx := context.Background()
	_, err := pool.Acquire(ctx, "a")
	require.NoError(t, err)

	// A serial platform is capped to one live instance.
	_, err = pool.Acquire(ctx, "b")
	require.ErrorIs(t, err, scriptbridge.ErrPoolExhausted)

	pool.Release("a")
	_, err = pool.Acquire(ctx, "b")
	require.NoError(t, err)
	assert.Equal(t, 1, pool.Len())
}
