package id

import (
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewIsUniqueAndOrdered(t *testing.T) {
	t.Parallel()

	g := NewGenerator()
	ids := make([]string, 100)
	for i := range ids {
		ids[i] = g.New()
	}

	assert.True(t, sort.StringsAreSorted(ids), "IDs must sort in creation order")

	seen := make(map[string]bool, len(ids))
	for _, id := range ids {
		require.Len(t, id, 26)
		require.False(t, seen[id], "duplicate ID %s", id)
		seen[id] = true
	}
}
