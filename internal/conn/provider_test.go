package conn

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// newTestProvider returns a provider whose dial never touches the network,
// plus a counter of how many dials happened.
func newTestProvider() (*Provider, *int) {
	p := NewProvider(zerolog.Nop())
	dials := 0
	var mu sync.Mutex
	p.dial = func(ctx context.Context, opts *options.ClientOptions) (*mongo.Client, error) {
		mu.Lock()
		dials++
		mu.Unlock()
		return nil, nil // No real client needed; teardown guards against nil.
	}
	return p, &dials
}

// TestAcquireReusesPooledClient verifies refcounting and that host order
// does not fragment the pool.
func TestAcquireReusesPooledClient(t *testing.T) {
	p, dials := newTestProvider()
	ctx := context.Background()

	h1, _, err := p.Acquire(ctx, []string{"a:27017", "b:27017"}, Options{})
	require.NoError(t, err)

	h2, _, err := p.Acquire(ctx, []string{"b:27017", "a:27017"}, Options{})
	require.NoError(t, err)

	assert.Equal(t, 1, *dials, "second acquire should reuse the pooled client")
	assert.Equal(t, h1, h2)

	// One release keeps the other reference alive.
	p.Release(h1, 0)
	_, _, err = p.Acquire(ctx, []string{"a:27017", "b:27017"}, Options{})
	require.NoError(t, err)
	assert.Equal(t, 1, *dials)
}

// TestDirectConnectionsDoNotShareEntries verifies a direct single-host
// acquisition never reuses a discovered-topology client.
func TestDirectConnectionsDoNotShareEntries(t *testing.T) {
	p, dials := newTestProvider()
	ctx := context.Background()

	_, _, err := p.Acquire(ctx, []string{"a:27017"}, Options{})
	require.NoError(t, err)

	_, _, err = p.AcquireHost(ctx, "a:27017", Options{})
	require.NoError(t, err)

	assert.Equal(t, 2, *dials)
}

// TestReleaseIdleTeardown verifies the idle-hint lifecycle: immediate
// teardown at zero, delayed teardown after the hint, and cancellation when
// the client is re-acquired inside the window.
func TestReleaseIdleTeardown(t *testing.T) {
	t.Run("zero hint evicts immediately", func(t *testing.T) {
		p, dials := newTestProvider()
		ctx := context.Background()

		h, _, err := p.Acquire(ctx, []string{"a:27017"}, Options{})
		require.NoError(t, err)
		p.Release(h, 0)

		_, _, err = p.Acquire(ctx, []string{"a:27017"}, Options{})
		require.NoError(t, err)
		assert.Equal(t, 2, *dials)
	})

	t.Run("entry expires after the hint", func(t *testing.T) {
		p, dials := newTestProvider()
		ctx := context.Background()

		h, _, err := p.Acquire(ctx, []string{"a:27017"}, Options{})
		require.NoError(t, err)
		p.Release(h, 10*time.Millisecond)

		time.Sleep(50 * time.Millisecond)

		_, _, err = p.Acquire(ctx, []string{"a:27017"}, Options{})
		require.NoError(t, err)
		assert.Equal(t, 2, *dials)
	})

	t.Run("re-acquire cancels pending teardown", func(t *testing.T) {
		p, dials := newTestProvider()
		ctx := context.Background()

		h, _, err := p.Acquire(ctx, []string{"a:27017"}, Options{})
		require.NoError(t, err)
		p.Release(h, 50*time.Millisecond)

		_, _, err = p.Acquire(ctx, []string{"a:27017"}, Options{})
		require.NoError(t, err)

		time.Sleep(100 * time.Millisecond)

		_, _, err = p.Acquire(ctx, []string{"a:27017"}, Options{})
		require.NoError(t, err)
		assert.Equal(t, 1, *dials, "client should have survived the idle window")
	})
}

// TestReleaseIsIdempotent verifies double releases and zero handles are
// harmless.
func TestReleaseIsIdempotent(t *testing.T) {
	p, dials := newTestProvider()
	ctx := context.Background()

	p.Release(Handle{}, time.Second) // Zero handle: no-op.

	h, _, err := p.Acquire(ctx, []string{"a:27017"}, Options{})
	require.NoError(t, err)
	p.Release(h, 0)
	p.Release(h, 0) // Entry already gone.

	_, _, err = p.Acquire(ctx, []string{"a:27017"}, Options{})
	require.NoError(t, err)
	assert.Equal(t, 2, *dials)
}
