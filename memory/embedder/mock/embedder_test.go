package mock

import (
	"context"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEmbed_Deterministic(t *testing.T) {
	e := NewEmbedder(16)
	ctx := context.Background()

	a, err := e.Embed(ctx, "same text")
	require.NoError(t, err)
	b, err := e.Embed(ctx, "same text")
	require.NoError(t, err)

	assert.Equal(t, a, b)

	c, err := e.Embed(ctx, "different text")
	require.NoError(t, err)
	assert.NotEqual(t, a, c)
}

func TestEmbed_UnitNorm(t *testing.T) {
	e := NewEmbedder(16)

	vec, err := e.Embed(context.Background(), "anything")
	require.NoError(t, err)
	require.Len(t, vec, 16)

	var norm float64
	for _, v := range vec {
		norm += float64(v) * float64(v)
	}
	assert.InDelta(t, 1.0, math.Sqrt(norm), 1e-5)
}

func TestNewEmbedder_DefaultDimensions(t *testing.T) {
	e := NewEmbedder(0)

	vec, err := e.Embed(context.Background(), "anything")
	require.NoError(t, err)
	assert.Len(t, vec, 384)
}
