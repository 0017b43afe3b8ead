package mock

import (
	"context"
	"hash/fnv"
	"math"

	"github.com/wyh7/MLE-agent/memory/embedder"
)

// mockEmbedder produces deterministic unit vectors from a hash of the
// text, so similarity search is stable without any model behind it.
type mockEmbedder struct {
	options    embedder.Options
	dimensions int
}

func (e *mockEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	h := fnv.New64a()
	h.Write([]byte(text))

	vec := make([]float32, e.dimensions)

	seed := h.Sum64()
	for i := range vec {
		seed = seed*6364136223846793005 + 1442695040888963407
		vec[i] = float32(int64(seed)) / float32(math.MaxInt64)
	}

	var norm float64
	for _, v := range vec {
		norm += float64(v) * float64(v)
	}
	if norm > 0 {
		scale := float32(1 / math.Sqrt(norm))
		for i := range vec {
			vec[i] *= scale
		}
	}

	return vec, nil
}

func NewEmbedder(dimensions int, opts ...embedder.Option) embedder.Embedder {
	options := embedder.NewOptions(opts...)

	if dimensions < 1 {
		dimensions = 384
	}

	return &mockEmbedder{
		options:    options,
		dimensions: dimensions,
	}
}
