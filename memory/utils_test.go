package memory

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewIds_Generated(t *testing.T) {
	ids := NewIds(nil, 3)
	require.Len(t, ids, 3)

	seen := map[string]bool{}
	for _, id := range ids {
		_, err := uuid.Parse(id)
		require.NoError(t, err)
		assert.False(t, seen[id], "ids should be unique")
		seen[id] = true
	}
}

func TestNewIds_Supplied(t *testing.T) {
	supplied := []string{"a", "b"}
	assert.Equal(t, supplied, NewIds(supplied, 2))
}

func TestCosineSimilarity(t *testing.T) {
	assert.InDelta(t, 1.0, CosineSimilarity([]float32{1, 0}, []float32{2, 0}), 1e-9)
	assert.InDelta(t, 0.0, CosineSimilarity([]float32{1, 0}, []float32{0, 1}), 1e-9)
	assert.InDelta(t, -1.0, CosineSimilarity([]float32{1, 0}, []float32{-1, 0}), 1e-9)
}

func TestCosineSimilarity_Degenerate(t *testing.T) {
	assert.Zero(t, CosineSimilarity(nil, nil))
	assert.Zero(t, CosineSimilarity([]float32{1}, []float32{1, 2}))
	assert.Zero(t, CosineSimilarity([]float32{0, 0}, []float32{1, 2}))
}
