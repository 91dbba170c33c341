package vectorindex

import (
	"fmt"
	"sort"

	"github.com/deaguilarg/seguros-rag/internal/domain"
)

const kmeansIterations = 10

// IVF is an inverted-file index: vectors are clustered with k-means at build
// time and a query only scans the nprobe closest clusters. Trades exactness
// for speed at large N. The first Add call runs the training pass over its
// batch; later Adds assign to the existing centroids.
type IVF struct {
	dim       int
	nprobe    int
	centroids [][]float32
	lists     [][]int // vector IDs per cluster
	vectors   [][]float32
}

// NewIVF creates an empty inverted-file index.
func NewIVF(dim, nprobe int) *IVF {
	if nprobe <= 0 {
		nprobe = 1
	}
	return &IVF{dim: dim, nprobe: nprobe}
}

// Add appends vectors, training the clustering on the first batch.
func (ix *IVF) Add(vectors [][]float32) error {
	if err := checkDim(vectors, ix.dim); err != nil {
		return err
	}
	if len(vectors) == 0 {
		return nil
	}

	if ix.centroids == nil {
		ix.train(vectors)
	}

	for _, v := range vectors {
		id := len(ix.vectors)
		ix.vectors = append(ix.vectors, v)
		c := ix.nearestCentroid(v)
		ix.lists[c] = append(ix.lists[c], id)
	}
	return nil
}

// train runs k-means over the batch. Cluster count follows the usual
// ~39 vectors per cluster sizing, never fewer than 4.
func (ix *IVF) train(vectors [][]float32) {
	nlist := len(vectors) / 39
	if nlist < 4 {
		nlist = 4
	}
	if nlist > len(vectors) {
		nlist = len(vectors)
	}

	// Seed centroids with evenly spaced vectors.
	centroids := make([][]float32, nlist)
	step := len(vectors) / nlist
	for i := range centroids {
		src := vectors[i*step]
		c := make([]float32, ix.dim)
		copy(c, src)
		centroids[i] = c
	}
	ix.centroids = centroids

	assign := make([]int, len(vectors))
	for iter := 0; iter < kmeansIterations; iter++ {
		changed := false
		for i, v := range vectors {
			c := ix.nearestCentroid(v)
			if assign[i] != c {
				assign[i] = c
				changed = true
			}
		}
		if iter > 0 && !changed {
			break
		}

		sums := make([][]float64, nlist)
		counts := make([]int, nlist)
		for i := range sums {
			sums[i] = make([]float64, ix.dim)
		}
		for i, v := range vectors {
			c := assign[i]
			counts[c]++
			for d := range v {
				sums[c][d] += float64(v[d])
			}
		}
		for c := range centroids {
			if counts[c] == 0 {
				continue // keep old centroid for empty clusters
			}
			for d := 0; d < ix.dim; d++ {
				centroids[c][d] = float32(sums[c][d] / float64(counts[c]))
			}
		}
	}

	ix.lists = make([][]int, nlist)
}

func (ix *IVF) nearestCentroid(v []float32) int {
	best := 0
	bestDist := distance(v, ix.centroids[0])
	for c := 1; c < len(ix.centroids); c++ {
		if d := distance(v, ix.centroids[c]); d < bestDist {
			best = c
			bestDist = d
		}
	}
	return best
}

// Search probes the nprobe closest clusters and ranks their members.
func (ix *IVF) Search(query []float32, k int) ([]int, []float64, error) {
	if len(query) != ix.dim {
		return nil, nil, fmt.Errorf("query: expected %d, got %d: %w", ix.dim, len(query), domain.ErrDimensionMismatch)
	}
	if len(ix.vectors) == 0 || k <= 0 {
		return nil, nil, nil
	}

	type hit struct {
		id   int
		dist float64
	}

	// Rank centroids by distance to the query.
	order := make([]hit, len(ix.centroids))
	for c, cent := range ix.centroids {
		order[c] = hit{id: c, dist: distance(query, cent)}
	}
	sort.Slice(order, func(i, j int) bool { return order[i].dist < order[j].dist })

	nprobe := ix.nprobe
	if nprobe > len(order) {
		nprobe = len(order)
	}

	var hits []hit
	for p := 0; p < nprobe; p++ {
		for _, id := range ix.lists[order[p].id] {
			hits = append(hits, hit{id: id, dist: distance(query, ix.vectors[id])})
		}
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
func (ix *IVF) Dimension() int { return ix.dim }

// Len returns the number of stored vectors.
func (ix *IVF) Len() int { return len(ix.vectors) }
