// Package cache provides a persistent embedding cache so re-running ingestion
// over an unchanged corpus does not re-embed every chunk.
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"go.etcd.io/bbolt"

	"github.com/deaguilarg/seguros-rag/internal/port"
)

var bucketEmbeddings = []byte("embeddings")

// EmbeddingCache wraps an Embedder with a bbolt-backed cache keyed by
// sha256(model|text). It implements port.Embedder itself.
type EmbeddingCache struct {
	db    *bbolt.DB
	inner port.Embedder
}

// NewEmbeddingCache opens (or creates) the cache database at path.
func NewEmbeddingCache(path string, inner port.Embedder) (*EmbeddingCache, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, err
	}
	db, err := bbolt.Open(path, 0644, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to open embedding cache: %w", err)
	}
	err = db.Update(func(tx *bbolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(bucketEmbeddings)
		return err
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create cache bucket: %w", err)
	}
	return &EmbeddingCache{db: db, inner: inner}, nil
}

func (c *EmbeddingCache) key(text string) []byte {
	sum := sha256.Sum256([]byte(c.inner.ModelName() + "|" + text))
	return sum[:]
}

// Embed returns cached vectors where available and embeds the remaining
// texts in one batch through the wrapped provider.
func (c *EmbeddingCache) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))

	var missIdx []int
	err := c.db.View(func(tx *bbolt.Tx) error {
		b := tx.Bucket(bucketEmbeddings)
		for i, text := range texts {
			data := b.Get(c.key(text))
			if data == nil {
				missIdx = append(missIdx, i)
				continue
			}
			var vec []float32
			if err := json.Unmarshal(data, &vec); err != nil {
				// Corrupted entry: treat as a miss.
				missIdx = append(missIdx, i)
				continue
			}
			out[i] = vec
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if len(missIdx) == 0 {
		return out, nil
	}

	missing := make([]string, len(missIdx))
	for j, i := range missIdx {
		missing[j] = texts[i]
	}
	vectors, err := c.inner.Embed(ctx, missing)
	if err != nil {
		return nil, err
	}
	if len(vectors) != len(missing) {
		return nil, fmt.Errorf("embedder returned %d vectors for %d texts", len(vectors), len(missing))
	}

	err = c.db.Update(func(tx *bbolt.Tx) error {
		b := tx.Bucket(bucketEmbeddings)
		for j, i := range missIdx {
			out[i] = vectors[j]
			data, err := json.Marshal(vectors[j])
			if err != nil {
				return err
			}
			if err := b.Put(c.key(texts[i]), data); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Dimension returns the wrapped embedder's dimension.
func (c *EmbeddingCache) Dimension() int { return c.inner.Dimension() }

// ModelName returns the wrapped embedder's model name.
func (c *EmbeddingCache) ModelName() string { return c.inner.ModelName() }

// Close closes the cache database.
func (c *EmbeddingCache) Close() error { return c.db.Close() }
