package usecase

import (
	"encoding/binary"
	"encoding/json"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/deaguilarg/seguros-rag/internal/domain"
)

// Per-document artifacts come in pairs: <stem>.json carries the chunk texts,
// sections and document metadata, <stem>.vec carries the embedding matrix.
// Row i of the matrix belongs to Chunks[i] of the JSON side.
//
// The .vec layout is little-endian: uint32 row count, uint32 dimension, then
// row-major float32 values.

// WriteArtifact writes the artifact pair for one document. Both files are
// written to a temp file first and renamed into place.
func WriteArtifact(dir string, artifact domain.DocumentArtifact, vectors [][]float32) error {
	if len(vectors) != len(artifact.Chunks) {
		return fmt.Errorf("artifact %s has %d chunks but %d vectors", artifact.Filename, len(artifact.Chunks), len(vectors))
	}
	for _, v := range vectors {
		if len(v) != artifact.EmbeddingDim {
			return fmt.Errorf("artifact %s: expected %d, got %d: %w",
				artifact.Filename, artifact.EmbeddingDim, len(v), domain.ErrDimensionMismatch)
		}
	}

	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	stem := artifactStem(artifact.Filename)

	data, err := json.MarshalIndent(artifact, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal artifact metadata: %w", err)
	}
	if err := writeFileAtomic(filepath.Join(dir, stem+".json"), data); err != nil {
		return err
	}

	return writeFileAtomic(filepath.Join(dir, stem+".vec"), encodeMatrix(artifact.EmbeddingDim, vectors))
}

// ReadArtifact loads the artifact pair for one stem.
func ReadArtifact(dir, stem string) (domain.DocumentArtifact, [][]float32, error) {
	var artifact domain.DocumentArtifact

	data, err := os.ReadFile(filepath.Join(dir, stem+".json"))
	if err != nil {
		return artifact, nil, err
	}
	if err := json.Unmarshal(data, &artifact); err != nil {
		return artifact, nil, fmt.Errorf("malformed artifact metadata %s.json: %w", stem, err)
	}

	raw, err := os.ReadFile(filepath.Join(dir, stem+".vec"))
	if err != nil {
		return artifact, nil, err
	}
	vectors, dim, err := decodeMatrix(raw)
	if err != nil {
		return artifact, nil, fmt.Errorf("malformed embedding matrix %s.vec: %w", stem, err)
	}
	if dim != artifact.EmbeddingDim {
		return artifact, nil, fmt.Errorf("artifact %s: metadata says %d, matrix has %d columns",
			stem, artifact.EmbeddingDim, dim)
	}
	if len(vectors) != len(artifact.Chunks) {
		return artifact, nil, fmt.Errorf("artifact %s has %d chunks but %d vectors",
			stem, len(artifact.Chunks), len(vectors))
	}
	return artifact, vectors, nil
}

// ListArtifacts returns the sorted stems of all artifact pairs under dir.
// Sorting fixes the iteration order the index build depends on.
func ListArtifacts(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	var stems []string
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".json") {
			continue
		}
		stems = append(stems, strings.TrimSuffix(e.Name(), ".json"))
	}
	sort.Strings(stems)
	return stems, nil
}

func artifactStem(filename string) string {
	return strings.TrimSuffix(filename, filepath.Ext(filename))
}

func encodeMatrix(dim int, vectors [][]float32) []byte {
	buf := make([]byte, 8+4*dim*len(vectors))
	binary.LittleEndian.PutUint32(buf[0:], uint32(len(vectors)))
	binary.LittleEndian.PutUint32(buf[4:], uint32(dim))
	off := 8
	for _, vec := range vectors {
		for _, v := range vec {
			binary.LittleEndian.PutUint32(buf[off:], math.Float32bits(v))
			off += 4
		}
	}
	return buf
}

func decodeMatrix(raw []byte) ([][]float32, int, error) {
	if len(raw) < 8 {
		return nil, 0, fmt.Errorf("truncated header")
	}
	rows := int(binary.LittleEndian.Uint32(raw[0:]))
	dim := int(binary.LittleEndian.Uint32(raw[4:]))
	if len(raw) != 8+4*rows*dim {
		return nil, 0, fmt.Errorf("expected %d bytes for %dx%d matrix, got %d", 8+4*rows*dim, rows, dim, len(raw))
	}

	vectors := make([][]float32, rows)
	off := 8
	for i := range vectors {
		vec := make([]float32, dim)
		for j := range vec {
			vec[j] = math.Float32frombits(binary.LittleEndian.Uint32(raw[off:]))
			off += 4
		}
		vectors[i] = vec
	}
	return vectors, dim, nil
}

func writeFileAtomic(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+"-*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}
