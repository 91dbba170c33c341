package vectorindex

import (
	"fmt"
	"sort"

	"github.com/deaguilarg/seguros-rag/internal/domain"
)

// Flat is the exact brute-force index: O(N) per query, correct baseline.
type Flat struct {
	dim     int
	vectors [][]float32
}

// NewFlat creates an empty exact index.
func NewFlat(dim int) *Flat {
	return &Flat{dim: dim}
}

// Add appends vectors to the index.
func (f *Flat) Add(vectors [][]float32) error {
	if err := checkDim(vectors, f.dim); err != nil {
		return err
	}
	f.vectors = append(f.vectors, vectors...)
	return nil
}

// Search scans every stored vector and returns the k nearest.
func (f *Flat) Search(query []float32, k int) ([]int, []float64, error) {
	if len(query) != f.dim {
		return nil, nil, fmt.Errorf("query: expected %d, got %d: %w", f.dim, len(query), domain.ErrDimensionMismatch)
	}
	if len(f.vectors) == 0 || k <= 0 {
		return nil, nil, nil
	}

	type hit struct {
		id   int
		dist float64
	}
	hits := make([]hit, len(f.vectors))
	for i, v := range f.vectors {
		hits[i] = hit{id: i, dist: distance(query, v)}
	}
	sort.Slice(hits, func(i, j int) bool {
		if hits[i].dist != hits[j].dist {
			return hits[i].dist < hits[j].dist
		}
		return hits[i].id < hits[j].id
	})

	if k > len(hits) {
		k = len(hits)
	}
	ids := make([]int, k)
	dists := make([]float64, k)
	for i := 0; i < k; i++ {
		ids[i] = hits[i].id
		dists[i] = hits[i].dist
	}
	return ids, dists, nil
}

// Dimension returns the configured vector width.
func (f *Flat) Dimension() int { return f.dim }

// Len returns the number of stored vectors.
func (f *Flat) Len() int { return len(f.vectors) }
