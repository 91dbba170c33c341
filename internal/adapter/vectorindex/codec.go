package vectorindex

import (
	"encoding/gob"
	"fmt"
	"math"
	"math/rand"
	"os"
	"path/filepath"

	"github.com/deaguilarg/seguros-rag/internal/port"
)

// envelope tags the serialized state with the implementation kind so the
// loader can reconstruct the right index type.
type envelope struct {
	Kind string
	Flat *flatState
	IVF  *ivfState
	HNSW *hnswState
}

type flatState struct {
	Dim     int
	Vectors [][]float32
}

type ivfState struct {
	Dim       int
	NProbe    int
	Centroids [][]float32
	Lists     [][]int
	Vectors   [][]float32
}

type hnswState struct {
	Dim         int
	M           int
	EfSearch    int
	EfConstruct int
	Entry       int
	MaxLevel    int
	Levels      []int
	Links       [][][]int
	Vectors     [][]float32
}

// Save serializes the index to path atomically (temp file plus rename), so a
// concurrent reader never observes a partially-written index.
func Save(ix port.VectorIndex, path string) error {
	var env envelope
	switch t := ix.(type) {
	case *Flat:
		env = envelope{Kind: "flat", Flat: &flatState{Dim: t.dim, Vectors: t.vectors}}
	case *IVF:
		env = envelope{Kind: "ivf", IVF: &ivfState{
			Dim: t.dim, NProbe: t.nprobe, Centroids: t.centroids, Lists: t.lists, Vectors: t.vectors,
		}}
	case *HNSW:
		st := &hnswState{
			Dim: t.dim, M: t.m, EfSearch: t.efSearch, EfConstruct: t.efConstruct,
			Entry: t.entry, MaxLevel: t.maxLevel,
		}
		for _, n := range t.nodes {
			st.Levels = append(st.Levels, n.level)
			st.Links = append(st.Links, n.links)
			st.Vectors = append(st.Vectors, n.vec)
		}
		env = envelope{Kind: "hnsw", HNSW: st}
	default:
		return fmt.Errorf("unsupported index implementation: %T", ix)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(filepath.Dir(path), ".index-*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	if err := gob.NewEncoder(tmp).Encode(env); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to encode index: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}

// Open loads an index previously written by Save.
func Open(path string) (port.VectorIndex, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var env envelope
	if err := gob.NewDecoder(f).Decode(&env); err != nil {
		return nil, fmt.Errorf("failed to decode index: %w", err)
	}

	switch env.Kind {
	case "flat":
		if env.Flat == nil {
			return nil, fmt.Errorf("corrupt index file: missing flat state")
		}
		return &Flat{dim: env.Flat.Dim, vectors: env.Flat.Vectors}, nil
	case "ivf":
		if env.IVF == nil {
			return nil, fmt.Errorf("corrupt index file: missing ivf state")
		}
		return &IVF{
			dim: env.IVF.Dim, nprobe: env.IVF.NProbe,
			centroids: env.IVF.Centroids, lists: env.IVF.Lists, vectors: env.IVF.Vectors,
		}, nil
	case "hnsw":
		st := env.HNSW
		if st == nil {
			return nil, fmt.Errorf("corrupt index file: missing hnsw state")
		}
		h := &HNSW{
			dim: st.Dim, m: st.M, efSearch: st.EfSearch, efConstruct: st.EfConstruct,
			levelMult: 1 / math.Log(float64(st.M)),
			entry:     st.Entry, maxLevel: st.MaxLevel,
			rng: rand.New(rand.NewSource(42)),
		}
		for i := range st.Vectors {
			h.nodes = append(h.nodes, hnswNode{vec: st.Vectors[i], level: st.Levels[i], links: st.Links[i]})
		}
		return h, nil
	default:
		return nil, fmt.Errorf("unknown index kind: %q", env.Kind)
	}
}
