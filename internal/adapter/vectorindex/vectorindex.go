// Package vectorindex provides the nearest-neighbour index implementations
// behind the port.VectorIndex interface: exact brute force ("flat"), an
// inverted-file index with a k-means training pass ("ivf") and a layered
// proximity graph ("hnsw"). All three use the same distance,
// 1 - dot(query, stored), so swapping implementations only changes the
// recall/latency trade-off, never the search contract.
package vectorindex

import (
	"fmt"

	"github.com/deaguilarg/seguros-rag/internal/domain"
	"github.com/deaguilarg/seguros-rag/internal/port"
)

// Options holds implementation-specific tuning knobs.
type Options struct {
	NProbe      int // ivf: clusters probed per query
	Links       int // hnsw: links per node
	EfSearch    int // hnsw: search beam width
	EfConstruct int // hnsw: construction beam width
}

// New creates an empty index of the given type.
func New(indexType string, dim int, opts Options) (port.VectorIndex, error) {
	switch indexType {
	case "flat":
		return NewFlat(dim), nil
	case "ivf":
		return NewIVF(dim, opts.NProbe), nil
	case "hnsw":
		return NewHNSW(dim, opts.Links, opts.EfConstruct, opts.EfSearch), nil
	default:
		return nil, fmt.Errorf("unsupported index type: %s", indexType)
	}
}

func dot(a, b []float32) float64 {
	var sum float64
	for i := range a {
		sum += float64(a[i]) * float64(b[i])
	}
	return sum
}

// distance is the design constant shared by every implementation:
// 1 - inner product, roughly [0,2] for L2-normalized vectors.
func distance(a, b []float32) float64 {
	return 1 - dot(a, b)
}

func checkDim(vectors [][]float32, dim int) error {
	for _, v := range vectors {
		if len(v) != dim {
			return fmt.Errorf("expected %d, got %d: %w", dim, len(v), domain.ErrDimensionMismatch)
		}
	}
	return nil
}
