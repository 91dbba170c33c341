package usecase

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/deaguilarg/seguros-rag/internal/adapter/extract"
	"github.com/deaguilarg/seguros-rag/internal/adapter/metadata"
	"github.com/deaguilarg/seguros-rag/internal/domain"
	"github.com/deaguilarg/seguros-rag/internal/logger"
	"github.com/deaguilarg/seguros-rag/internal/port"
)

// IngestUseCase turns raw policy PDFs into per-document artifact pairs:
// extract text, split into sections and chunks, embed, write the pair.
type IngestUseCase struct {
	walker       *extract.Walker
	embedder     port.Embedder
	outDir       string
	chunkWords   int
	chunkOverlap int
	batchSize    int
}

// NewIngestUseCase creates a new ingest use case.
func NewIngestUseCase(
	walker *extract.Walker,
	embedder port.Embedder,
	outDir string,
	chunkWords, chunkOverlap, batchSize int,
) *IngestUseCase {
	if batchSize <= 0 {
		batchSize = 32
	}
	return &IngestUseCase{
		walker:       walker,
		embedder:     embedder,
		outDir:       outDir,
		chunkWords:   chunkWords,
		chunkOverlap: chunkOverlap,
		batchSize:    batchSize,
	}
}

// IngestResult contains the results of an ingestion run.
type IngestResult struct {
	Documents int
	Chunks    int
	Skipped   int
	Errors    []string
}

// ProgressFunc is called after each document, with the processed count, the
// total and the file just handled.
type ProgressFunc func(processed, total int, file string)

// Ingest processes every matching document under rawDir. A document that
// fails extraction or embedding is logged and skipped; the run continues.
func (u *IngestUseCase) Ingest(ctx context.Context, rawDir string, progress ProgressFunc) (*IngestResult, error) {
	files, err := u.walker.Walk(rawDir)
	if err != nil {
		return nil, fmt.Errorf("failed to walk %s: %w", rawDir, err)
	}

	result := &IngestResult{}
	for i, file := range files {
		chunks, err := u.ingestFile(ctx, file)
		if err != nil {
			result.Skipped++
			result.Errors = append(result.Errors, fmt.Sprintf("%s: %v", file, err))
			logger.Warn("skipping %s: %v", file, err)
		} else {
			result.Documents++
			result.Chunks += chunks
		}
		if progress != nil {
			progress(i+1, len(files), file)
		}
	}
	return result, nil
}

func (u *IngestUseCase) ingestFile(ctx context.Context, path string) (int, error) {
	text, pages, err := extract.ExtractText(path)
	if err != nil {
		return 0, err
	}
	text = extract.CleanText(text)

	chunks := extract.ChunkDocument(text, u.chunkWords, u.chunkOverlap)
	if len(chunks) == 0 {
		return 0, fmt.Errorf("no extractable text")
	}

	meta := metadata.Extract(text)
	meta["pages"] = pages

	vectors, err := u.embedChunks(ctx, chunks)
	if err != nil {
		return 0, err
	}

	artifact := domain.DocumentArtifact{
		Filename:     filepath.Base(path),
		EmbeddingDim: u.embedder.Dimension(),
		Metadata:     meta,
		Chunks:       chunks,
	}
	if err := WriteArtifact(u.outDir, artifact, vectors); err != nil {
		return 0, err
	}

	logger.Debug("ingested %s: %d pages, %d chunks", path, pages, len(chunks))
	return len(chunks), nil
}

func (u *IngestUseCase) embedChunks(ctx context.Context, chunks []domain.Chunk) ([][]float32, error) {
	vectors := make([][]float32, 0, len(chunks))
	for i := 0; i < len(chunks); i += u.batchSize {
		end := i + u.batchSize
		if end > len(chunks) {
			end = len(chunks)
		}
		texts := make([]string, end-i)
		for j := i; j < end; j++ {
			texts[j-i] = chunks[j].Text
		}
		batch, err := u.embedder.Embed(ctx, texts)
		if err != nil {
			return nil, fmt.Errorf("embedding batch failed: %w", err)
		}
		vectors = append(vectors, batch...)
	}
	return vectors, nil
}
