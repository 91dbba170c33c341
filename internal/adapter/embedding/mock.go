package embedding

import (
	"context"
	"hash/fnv"
	"math"
	"strings"
)

// MockEmbedder produces deterministic pseudo-embeddings by hashing words into
// buckets. Texts sharing words get similar vectors, which is enough for
// pipeline tests and offline smoke runs. Not a real semantic model.
type MockEmbedder struct {
	dim int
}

// NewMockEmbedder creates a mock embedder with the given dimension.
func NewMockEmbedder(dimension int) *MockEmbedder {
	return &MockEmbedder{dim: dimension}
}

// Embed generates one deterministic vector per input text.
func (e *MockEmbedder) Embed(_ context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i, text := range texts {
		out[i] = e.embedOne(text)
	}
	return out, nil
}

func (e *MockEmbedder) embedOne(text string) []float32 {
	vec := make([]float32, e.dim)
	for _, word := range strings.Fields(strings.ToLower(text)) {
		h := fnv.New32a()
		h.Write([]byte(word))
		vec[int(h.Sum32())%e.dim]++
	}

	var norm float64
	for _, v := range vec {
		norm += float64(v) * float64(v)
	}
	if norm > 0 {
		norm = math.Sqrt(norm)
		for i := range vec {
			vec[i] = float32(float64(vec[i]) / norm)
		}
	}
	return vec
}

// Dimension returns the embedding vector dimension.
func (e *MockEmbedder) Dimension() int { return e.dim }

// ModelName returns the name of the embedding model.
func (e *MockEmbedder) ModelName() string { return "mock" }
