package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/deaguilarg/seguros-rag/config"
	"github.com/deaguilarg/seguros-rag/internal/adapter/rerank"
	"github.com/deaguilarg/seguros-rag/internal/adapter/vectorindex"
	"github.com/deaguilarg/seguros-rag/internal/domain"
	"github.com/deaguilarg/seguros-rag/internal/logger"
	"github.com/deaguilarg/seguros-rag/internal/port"
)

// ArtifactPair is a resolved handle to one build's persisted files. Making the
// pair explicit keeps the engine constructor free of directory scanning, so
// tests can point at fixtures directly.
type ArtifactPair struct {
	IndexPath   string
	MappingPath string
}

// LatestArtifactPair scans dir for the pair with the newest build timestamp.
// Returns ErrIndexNotFound when no complete pair exists.
func LatestArtifactPair(dir, prefix, mappingPrefix string) (ArtifactPair, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return ArtifactPair{}, fmt.Errorf("%s: %w", dir, domain.ErrIndexNotFound)
		}
		return ArtifactPair{}, err
	}

	var latest string
	for _, e := range entries {
		name := e.Name()
		if !strings.HasPrefix(name, prefix+"_") || !strings.HasSuffix(name, ".bin") {
			continue
		}
		ts := strings.TrimSuffix(strings.TrimPrefix(name, prefix+"_"), ".bin")
		if ts > latest {
			latest = ts
		}
	}
	if latest == "" {
		return ArtifactPair{}, fmt.Errorf("%s: %w", dir, domain.ErrIndexNotFound)
	}

	pair := ArtifactPair{
		IndexPath:   filepath.Join(dir, fmt.Sprintf("%s_%s.bin", prefix, latest)),
		MappingPath: filepath.Join(dir, fmt.Sprintf("%s_%s.json", mappingPrefix, latest)),
	}
	if _, err := os.Stat(pair.MappingPath); err != nil {
		return ArtifactPair{}, fmt.Errorf("index %s has no mapping file: %w", pair.IndexPath, domain.ErrIndexNotFound)
	}
	return pair, nil
}

// SearchEngine answers similarity queries over one loaded index/mapping pair.
// After construction it is read-only and safe for concurrent callers.
type SearchEngine struct {
	index    port.VectorIndex
	records  map[int]domain.ChunkRecord
	embedder port.Embedder
	detector *rerank.VehicleDetector
	weights  rerank.Weights

	minScore         float64
	oversampleFloor  int
	oversampleFactor int
}

// NewSearchEngine loads the given artifact pair. Construction fails fast when
// either file is missing or unreadable; there is no degraded mode.
func NewSearchEngine(pair ArtifactPair, embedder port.Embedder, cfg config.SearchConfig) (*SearchEngine, error) {
	ix, err := vectorindex.Open(pair.IndexPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%s: %w", pair.IndexPath, domain.ErrIndexNotFound)
		}
		return nil, fmt.Errorf("failed to load index: %w", err)
	}

	records, err := loadMapping(pair.MappingPath)
	if err != nil {
		return nil, err
	}

	return &SearchEngine{
		index:    ix,
		records:  records,
		embedder: embedder,
		detector: rerank.NewVehicleDetector(cfg.VehicleKeywords),
		weights: rerank.Weights{
			DistanceScale:    cfg.DistanceScale,
			SectionWeights:   cfg.SectionWeights,
			VehicleGating:    cfg.VehicleGating,
			VehicleBoost:     cfg.VehicleBoost,
			SpecificityBoost: cfg.SpecificityBoost,
			MinIndicators:    cfg.MinIndicators,
		},
		minScore:         cfg.MinScore,
		oversampleFloor:  cfg.OversampleFloor,
		oversampleFactor: cfg.OversampleFactor,
	}, nil
}

// loadMapping reads the ID→metadata file. A single malformed entry is logged
// and dropped; the candidate it would describe is simply skipped at query
// time. A key that is not a stringified integer is malformed too.
func loadMapping(path string) (map[int]domain.ChunkRecord, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%s: %w", path, domain.ErrIndexNotFound)
		}
		return nil, err
	}

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("malformed mapping file %s: %w", path, err)
	}

	records := make(map[int]domain.ChunkRecord, len(raw))
	for key, entry := range raw {
		id, err := strconv.Atoi(key)
		if err != nil {
			logger.Warn("mapping %s: non-integer key %q, skipping", path, key)
			continue
		}
		var rec domain.ChunkRecord
		if err := json.Unmarshal(entry, &rec); err != nil {
			logger.Warn("mapping %s: malformed entry %q, skipping: %v", path, key, err)
			continue
		}
		records[id] = rec
	}
	return records, nil
}

// ProcessQuery embeds the query text and L2-normalizes the vector. The index
// is built over inner-product similarity; an un-normalized query would bias
// scores toward longer texts. A zero vector is returned unchanged.
func (e *SearchEngine) ProcessQuery(ctx context.Context, query string) ([]float32, error) {
	vectors, err := e.embedder.Embed(ctx, []string{query})
	if err != nil {
		return nil, fmt.Errorf("failed to embed query: %w", err)
	}
	if len(vectors) != 1 {
		return nil, fmt.Errorf("embedder returned %d vectors for one query", len(vectors))
	}

	vec := vectors[0]
	var norm float64
	for _, v := range vec {
		norm += float64(v) * float64(v)
	}
	if norm > 0 {
		norm = math.Sqrt(norm)
		for i := range vec {
			vec[i] = float32(float64(vec[i]) / norm)
		}
	}
	return vec, nil
}

// Search returns the topK best-scoring chunks for the query, after
// re-ranking, metadata filtering and score thresholding. An empty result is a
// normal response, not an error.
func (e *SearchEngine) Search(ctx context.Context, query string, topK int, filters map[string][]string) ([]domain.SearchResult, error) {
	vec, err := e.ProcessQuery(ctx, query)
	if err != nil {
		return nil, err
	}

	hints := e.detector.Detect(query)

	// Oversample so filtering and gating still leave enough candidates,
	// with a fixed floor to keep recall stable for small topK.
	k := topK * e.oversampleFactor
	if k < e.oversampleFloor {
		k = e.oversampleFloor
	}

	ids, dists, err := e.index.Search(vec, k)
	if err != nil {
		return nil, fmt.Errorf("index search failed: %w", err)
	}

	var results []domain.SearchResult
	for i, id := range ids {
		rec, ok := e.records[id]
		if !ok {
			logger.Warn("no metadata for index id %d, skipping", id)
			continue
		}
		score, keep := e.weights.Score(dists[i], rec.Section, rec.Filename, rec.Text, hints)
		if !keep || score < e.minScore {
			continue
		}
		results = append(results, domain.SearchResult{
			Text:     rec.Text,
			Score:    score,
			Distance: dists[i],
			Section:  rec.Section,
			Metadata: rec,
		})
	}

	results = FilterByMetadata(results, filters)

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})
	if len(results) > topK {
		results = results[:topK]
	}
	return results, nil
}

// Len returns the number of vectors in the loaded index.
func (e *SearchEngine) Len() int {
	return e.index.Len()
}

// FilterByMetadata keeps the results whose metadata matches every filter
// field: the field's stringified value must equal at least one allowed value
// (OR within a field, AND across fields). A nil or empty filter map keeps
// everything.
func FilterByMetadata(results []domain.SearchResult, filters map[string][]string) []domain.SearchResult {
	if len(filters) == 0 {
		return results
	}

	filtered := make([]domain.SearchResult, 0, len(results))
	for _, r := range results {
		if matchesFilters(r.Metadata, filters) {
			filtered = append(filtered, r)
		}
	}
	return filtered
}

func matchesFilters(rec domain.ChunkRecord, filters map[string][]string) bool {
	for field, allowed := range filters {
		value, ok := rec.Field(field)
		if !ok {
			return false
		}
		match := false
		for _, a := range allowed {
			if value == a {
				match = true
				break
			}
		}
		if !match {
			return false
		}
	}
	return true
}
