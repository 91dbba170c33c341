package vectorindex

import (
	"container/heap"
	"fmt"
	"math"
	"math/rand"
	"sort"

	"github.com/deaguilarg/seguros-rag/internal/domain"
)

// HNSW is a hierarchical navigable small-world graph: approximate search with
// no training phase. Insertion assigns each node a random level; search
// descends greedily through the upper layers and runs a beam search on the
// bottom one.
type HNSW struct {
	dim         int
	m           int // links per node on upper layers; layer 0 allows 2m
	efSearch    int
	efConstruct int
	levelMult   float64

	nodes    []hnswNode
	entry    int
	maxLevel int
	rng      *rand.Rand
}

type hnswNode struct {
	vec   []float32
	level int
	links [][]int // neighbour IDs per layer, links[l] for layer l
}

// NewHNSW creates an empty graph index.
func NewHNSW(dim, m, efConstruct, efSearch int) *HNSW {
	if m <= 0 {
		m = 16
	}
	if efConstruct < m {
		efConstruct = 200
	}
	if efSearch <= 0 {
		efSearch = 64
	}
	return &HNSW{
		dim:         dim,
		m:           m,
		efSearch:    efSearch,
		efConstruct: efConstruct,
		levelMult:   1 / math.Log(float64(m)),
		entry:       -1,
		rng:         rand.New(rand.NewSource(42)),
	}
}

// Add inserts vectors one by one into the graph.
func (h *HNSW) Add(vectors [][]float32) error {
	if err := checkDim(vectors, h.dim); err != nil {
		return err
	}
	for _, v := range vectors {
		h.insert(v)
	}
	return nil
}

func (h *HNSW) randomLevel() int {
	return int(math.Floor(-math.Log(h.rng.Float64()) * h.levelMult))
}

func (h *HNSW) insert(vec []float32) {
	level := h.randomLevel()
	id := len(h.nodes)
	node := hnswNode{vec: vec, level: level, links: make([][]int, level+1)}
	h.nodes = append(h.nodes, node)

	if h.entry < 0 {
		h.entry = id
		h.maxLevel = level
		return
	}

	cur := h.entry
	// Greedy descent through layers above the new node's level.
	for l := h.maxLevel; l > level; l-- {
		cur = h.greedyClosest(vec, cur, l)
	}

	// Beam search and link on the shared layers.
	top := level
	if top > h.maxLevel {
		top = h.maxLevel
	}
	for l := top; l >= 0; l-- {
		candidates := h.searchLayer(vec, cur, h.efConstruct, l)
		maxLinks := h.m
		if l == 0 {
			maxLinks = 2 * h.m
		}

		n := len(candidates)
		if n > maxLinks {
			n = maxLinks
		}
		neighbours := make([]int, n)
		for i := 0; i < n; i++ {
			neighbours[i] = candidates[i].id
		}
		h.nodes[id].links[l] = neighbours

		for _, nb := range neighbours {
			h.nodes[nb].links[l] = append(h.nodes[nb].links[l], id)
			if len(h.nodes[nb].links[l]) > maxLinks {
				h.pruneLinks(nb, l, maxLinks)
			}
		}
		if n > 0 {
			cur = neighbours[0]
		}
	}

	if level > h.maxLevel {
		h.maxLevel = level
		h.entry = id
	}
}

// pruneLinks keeps only the maxLinks closest neighbours of a node.
func (h *HNSW) pruneLinks(id, layer, maxLinks int) {
	links := h.nodes[id].links[layer]
	sort.Slice(links, func(i, j int) bool {
		return distance(h.nodes[id].vec, h.nodes[links[i]].vec) <
			distance(h.nodes[id].vec, h.nodes[links[j]].vec)
	})
	h.nodes[id].links[layer] = links[:maxLinks]
}

func (h *HNSW) greedyClosest(vec []float32, start, layer int) int {
	cur := start
	curDist := distance(vec, h.nodes[cur].vec)
	for {
		improved := false
		for _, nb := range h.nodes[cur].links[layer] {
			if d := distance(vec, h.nodes[nb].vec); d < curDist {
				cur = nb
				curDist = d
				improved = true
			}
		}
		if !improved {
			return cur
		}
	}
}

type scoredID struct {
	id   int
	dist float64
}

// minQueue pops the closest candidate first.
type minQueue []scoredID

func (q minQueue) Len() int            { return len(q) }
func (q minQueue) Less(i, j int) bool  { return q[i].dist < q[j].dist }
func (q minQueue) Swap(i, j int)       { q[i], q[j] = q[j], q[i] }
func (q *minQueue) Push(x any)         { *q = append(*q, x.(scoredID)) }
func (q *minQueue) Pop() any           { old := *q; n := len(old); x := old[n-1]; *q = old[:n-1]; return x }

// maxQueue pops the farthest result first, bounding the beam.
type maxQueue []scoredID

func (q maxQueue) Len() int            { return len(q) }
func (q maxQueue) Less(i, j int) bool  { return q[i].dist > q[j].dist }
func (q maxQueue) Swap(i, j int)       { q[i], q[j] = q[j], q[i] }
func (q *maxQueue) Push(x any)         { *q = append(*q, x.(scoredID)) }
func (q *maxQueue) Pop() any           { old := *q; n := len(old); x := old[n-1]; *q = old[:n-1]; return x }

// searchLayer is the standard HNSW beam search on one layer, returning up to
// ef results ordered by ascending distance.
func (h *HNSW) searchLayer(vec []float32, start, ef, layer int) []scoredID {
	visited := map[int]bool{start: true}
	startDist := distance(vec, h.nodes[start].vec)

	candidates := &minQueue{{id: start, dist: startDist}}
	results := &maxQueue{{id: start, dist: startDist}}
	heap.Init(candidates)
	heap.Init(results)

	for candidates.Len() > 0 {
		c := heap.Pop(candidates).(scoredID)
		if results.Len() >= ef && c.dist > (*results)[0].dist {
			break
		}
		for _, nb := range h.nodes[c.id].links[layer] {
			if visited[nb] {
				continue
			}
			visited[nb] = true
			d := distance(vec, h.nodes[nb].vec)
			if results.Len() < ef || d < (*results)[0].dist {
				heap.Push(candidates, scoredID{id: nb, dist: d})
				heap.Push(results, scoredID{id: nb, dist: d})
				if results.Len() > ef {
					heap.Pop(results)
				}
			}
		}
	}

	out := make([]scoredID, results.Len())
	for i := len(out) - 1; i >= 0; i-- {
		out[i] = heap.Pop(results).(scoredID)
	}
	return out
}

// Search returns the k approximate nearest neighbours.
func (h *HNSW) Search(query []float32, k int) ([]int, []float64, error) {
	if len(query) != h.dim {
		return nil, nil, fmt.Errorf("query: expected %d, got %d: %w", h.dim, len(query), domain.ErrDimensionMismatch)
	}
	if len(h.nodes) == 0 || k <= 0 {
		return nil, nil, nil
	}

	cur := h.entry
	for l := h.maxLevel; l > 0; l-- {
		cur = h.greedyClosest(query, cur, l)
	}

	ef := h.efSearch
	if ef < k {
		ef = k
	}
	found := h.searchLayer(query, cur, ef, 0)

	if k > len(found) {
		k = len(found)
	}
	ids := make([]int, k)
	dists := make([]float64, k)
	for i := 0; i < k; i++ {
		ids[i] = found[i].id
		dists[i] = found[i].dist
	}
	return ids, dists, nil
}

// Dimension returns the configured vector width.
func (h *HNSW) Dimension() int { return h.dim }

// Len returns the number of stored vectors.
func (h *HNSW) Len() int { return len(h.nodes) }
