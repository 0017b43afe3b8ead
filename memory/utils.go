package memory

import (
	"math"

	"github.com/google/uuid"
)

// NewIds returns ids for a batch of items: the supplied list when present,
// otherwise freshly generated UUIDs, one per item.
func NewIds(supplied []string, n int) []string {
	if len(supplied) > 0 {
		return supplied
	}
	ids := make([]string, n)
	for i := range ids {
		ids[i] = uuid.New().String()
	}
	return ids
}

func CosineSimilarity(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 || len(b) == 0 {
		return 0.0
	}

	var dotProduct, normA, normB float64
	for i := range a {
		dotProduct += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}

	if normA == 0 || normB == 0 {
		return 0.0
	}

	return dotProduct / (math.Sqrt(normA) * math.Sqrt(normB))
}
