package port

// VectorIndex is a nearest-neighbour structure over chunk embeddings. Built
// once by the index builder and immutable afterwards; implementations must
// support concurrent Search calls once Add has finished.
type VectorIndex interface {
	// Add appends vectors to the index. Row order is significant: the i-th
	// vector ever added gets ID i.
	Add(vectors [][]float32) error

	// Search returns the IDs and distances of the k nearest vectors,
	// ordered by ascending distance. Distance is 1 - dot(query, stored),
	// roughly in [0,2] for L2-normalized inputs.
	Search(query []float32, k int) ([]int, []float64, error)

	// Dimension returns the configured vector width.
	Dimension() int

	// Len returns the number of stored vectors.
	Len() int
}
