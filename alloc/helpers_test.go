package alloc

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ============================================================================
// Test Helpers
// ============================================================================

// newTestAllocator builds an allocator over specs and closes it on cleanup.
func newTestAllocator(t testing.TB, specs []Spec, opts ...Option) *Allocator {
	t.Helper()
	a, err := New(specs, opts...)
	require.NoError(t, err)
	t.Cleanup(func() {
		require.NoError(t, a.Close())
	})
	return a
}

// newTestPool builds a standalone pool and closes it on cleanup.
func newTestPool(t testing.TB, chunks, chunkSize int) *Pool {
	t.Helper()
	p, err := NewPool(chunks, chunkSize)
	require.NoError(t, err)
	t.Cleanup(func() {
		require.NoError(t, p.Close())
	})
	return p
}

// poolState is a comparable snapshot of one pool.
type poolState struct {
	freeChunks int
	occupancy  string
}

func snapshot(a *Allocator) []poolState {
	out := make([]poolState, len(a.pools))
	for i, p := range a.pools {
		out[i] = poolState{freeChunks: p.freeChunks, occupancy: p.OccupancyMap()}
	}
	return out
}

// assertInvariants checks that every pool's cached free count matches its bitmap.
func assertInvariants(t testing.TB, a *Allocator) {
	t.Helper()
	for i, p := range a.pools {
		assert.Equal(t, p.chunkCount-p.occupancy.Count(), p.freeChunks,
			"pool %d: cached free count drifted from occupancy", i)
		assert.GreaterOrEqual(t, p.freeChunks, 0, "pool %d: negative free count", i)
		assert.LessOrEqual(t, p.freeChunks, p.chunkCount, "pool %d: free count above capacity", i)
	}
}

// owners returns the indexes of every pool that contains addr.
func owners(a *Allocator, addr Addr) []int {
	var out []int
	for i, p := range a.pools {
		if p.Contains(addr) {
			out = append(out, i)
		}
	}
	return out
}
