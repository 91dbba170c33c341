package usecase

import (
	"encoding/json"
	"fmt"
	"path/filepath"
	"strconv"
	"time"

	"github.com/deaguilarg/seguros-rag/internal/adapter/vectorindex"
	"github.com/deaguilarg/seguros-rag/internal/domain"
	"github.com/deaguilarg/seguros-rag/internal/logger"
)

// timestampLayout names the index/mapping pair of one build.
const timestampLayout = "20060102_150405"

// BuildUseCase turns the per-document artifacts into one persisted index plus
// its ID→metadata mapping. Configuration comes in through the constructor so
// tests can point it at fixture directories.
type BuildUseCase struct {
	embeddingsDir string
	outDir        string
	indexType     string
	dimension     int
	prefix        string
	mappingPrefix string
	opts          vectorindex.Options
}

// NewBuildUseCase creates a new build use case.
func NewBuildUseCase(
	embeddingsDir, outDir, indexType string,
	dimension int,
	prefix, mappingPrefix string,
	opts vectorindex.Options,
) *BuildUseCase {
	return &BuildUseCase{
		embeddingsDir: embeddingsDir,
		outDir:        outDir,
		indexType:     indexType,
		dimension:     dimension,
		prefix:        prefix,
		mappingPrefix: mappingPrefix,
		opts:          opts,
	}
}

// BuildResult contains the results of an index build.
type BuildResult struct {
	Documents   int
	Vectors     int
	IndexPath   string
	MappingPath string
}

// Build loads every artifact pair, concatenates the embedding matrices in
// stem order and persists a timestamped index/mapping pair. The matrix and
// the mapping are filled in the same single pass, so row i of the index is
// always described by entry "i" of the mapping.
//
// A malformed artifact is logged and skipped. A vector of the wrong width
// aborts the whole build: a partially-mismatched index would corrupt
// retrieval silently.
func (u *BuildUseCase) Build() (*BuildResult, error) {
	stems, err := ListArtifacts(u.embeddingsDir)
	if err != nil {
		return nil, fmt.Errorf("failed to list artifacts in %s: %w", u.embeddingsDir, err)
	}

	var matrix [][]float32
	mapping := make(map[string]domain.ChunkRecord)
	documents := 0

	for _, stem := range stems {
		artifact, vectors, err := ReadArtifact(u.embeddingsDir, stem)
		if err != nil {
			logger.Warn("skipping artifact %s: %v", stem, err)
			continue
		}
		if artifact.EmbeddingDim != u.dimension {
			return nil, fmt.Errorf("artifact %s: expected %d, got %d: %w",
				stem, u.dimension, artifact.EmbeddingDim, domain.ErrDimensionMismatch)
		}

		for i, chunk := range artifact.Chunks {
			id := len(matrix)
			matrix = append(matrix, vectors[i])
			mapping[strconv.Itoa(id)] = domain.ChunkRecord{
				Filename:      artifact.Filename,
				ChunkIndex:    i,
				TotalChunks:   len(artifact.Chunks),
				EmbeddingDim:  artifact.EmbeddingDim,
				Text:          chunk.Text,
				Section:       chunk.Section,
				SectionTitle:  chunk.SectionTitle,
				StartPosition: chunk.StartPosition,
				EndPosition:   chunk.EndPosition,
				Extra:         artifact.Metadata,
			}
		}
		documents++
	}

	if len(matrix) == 0 {
		return nil, domain.ErrEmptyCorpus
	}

	ix, err := vectorindex.New(u.indexType, u.dimension, u.opts)
	if err != nil {
		return nil, err
	}
	if err := ix.Add(matrix); err != nil {
		return nil, fmt.Errorf("failed to build index: %w", err)
	}

	ts := time.Now().Format(timestampLayout)
	indexPath := filepath.Join(u.outDir, fmt.Sprintf("%s_%s.bin", u.prefix, ts))
	mappingPath := filepath.Join(u.outDir, fmt.Sprintf("%s_%s.json", u.mappingPrefix, ts))

	if err := vectorindex.Save(ix, indexPath); err != nil {
		return nil, fmt.Errorf("failed to save index: %w", err)
	}
	data, err := json.MarshalIndent(mapping, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal mapping: %w", err)
	}
	if err := writeFileAtomic(mappingPath, data); err != nil {
		return nil, fmt.Errorf("failed to save mapping: %w", err)
	}

	logger.Info("built %s index: %d documents, %d vectors", u.indexType, documents, len(matrix))
	return &BuildResult{
		Documents:   documents,
		Vectors:     len(matrix),
		IndexPath:   indexPath,
		MappingPath: mappingPath,
	}, nil
}
