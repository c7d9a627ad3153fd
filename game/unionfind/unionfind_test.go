package unionfind

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_Singletons(t *testing.T) {
	uf := New(1, 2, 3)
	assert.Equal(t, 3, uf.Sets())
	assert.Equal(t, 3, uf.Len())

	for _, e := range []int{1, 2, 3} {
		root, ok := uf.Find(e)
		require.True(t, ok)
		assert.Equal(t, e, root)
	}
}

func TestUnion(t *testing.T) {
	uf := New("a", "b", "c", "d")

	assert.True(t, uf.Union("a", "b"))
	assert.True(t, uf.Union("c", "d"))
	assert.False(t, uf.Union("b", "a"), "already joined")
	assert.Equal(t, 2, uf.Sets())

	assert.True(t, uf.Connected("a", "b"))
	assert.False(t, uf.Connected("a", "c"))

	assert.True(t, uf.Union("b", "d"))
	assert.True(t, uf.Connected("a", "c"))
	assert.Equal(t, 1, uf.Sets())
}

func TestUnknownElements(t *testing.T) {
	uf := New(1)

	_, ok := uf.Find(42)
	assert.False(t, ok)
	assert.False(t, uf.Union(1, 42))
	assert.False(t, uf.Connected(42, 42))

	uf.Add(1)
	assert.Equal(t, 1, uf.Len(), "re-adding is a no-op")
}

func TestFind_LongChainCompresses(t *testing.T) {
	const n = 10000
	uf := New[int]()
	for i := 0; i < n; i++ {
		uf.Add(i)
	}
	// Build a single chain 0 -> 1 -> ... -> n-1.
	for i := 0; i < n-1; i++ {
		require.True(t, uf.Union(i, i+1))
	}

	root, ok := uf.Find(0)
	require.True(t, ok)
	assert.Equal(t, n-1, root)
	assert.Equal(t, n-1, uf.parent[0], "path should be compressed to the root")
	assert.Equal(t, n-1, uf.parent[n/2])
}
