package usecase

import (
	"context"
	"errors"
	"testing"

	"github.com/deaguilarg/seguros-rag/config"
	"github.com/deaguilarg/seguros-rag/internal/adapter/rerank"
	"github.com/deaguilarg/seguros-rag/internal/adapter/vectorindex"
	"github.com/deaguilarg/seguros-rag/internal/domain"
	"github.com/deaguilarg/seguros-rag/internal/port"
)

// stubEmbedder returns the same vector for every input.
type stubEmbedder struct {
	vec []float32
}

func (e *stubEmbedder) Embed(_ context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i := range out {
		vec := make([]float32, len(e.vec))
		copy(vec, e.vec)
		out[i] = vec
	}
	return out, nil
}

func (e *stubEmbedder) Dimension() int    { return len(e.vec) }
func (e *stubEmbedder) ModelName() string { return "stub" }

// stubIndex returns canned candidates and records the requested k.
type stubIndex struct {
	dim   int
	ids   []int
	dists []float64
	lastK int
}

func (s *stubIndex) Add([][]float32) error { return nil }

func (s *stubIndex) Search(_ []float32, k int) ([]int, []float64, error) {
	s.lastK = k
	return s.ids, s.dists, nil
}

func (s *stubIndex) Dimension() int { return s.dim }
func (s *stubIndex) Len() int       { return len(s.ids) }

func newTestEngine(ix port.VectorIndex, records map[int]domain.ChunkRecord, embedder port.Embedder) *SearchEngine {
	cfg := config.DefaultConfig().Search
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
	}
}

func TestSearchEndToEnd(t *testing.T) {
	embDir := t.TempDir()
	outDir := t.TempDir()

	e1 := []float32{1, 0, 0, 0}
	e2 := []float32{0, 1, 0, 0}
	e1Rotated := []float32{0.6, 0, 0.8, 0}

	writeTestArtifact(t, embDir, "moto-basico.pdf", 4,
		[]domain.Chunk{
			{Text: "La cobertura incluye una indemnización de 600 € en caso de robo.", Section: "asegurado"},
			{Text: "Condiciones generales aplicables al tomador.", Section: "general"},
		},
		[][]float32{e1, e1Rotated}, nil)
	writeTestArtifact(t, embDir, "auto-completo.pdf", 4,
		[]domain.Chunk{
			{Text: "Este seguro consiste en una póliza a todo riesgo.", Section: "consiste"},
		},
		[][]float32{e2}, nil)

	uc := NewBuildUseCase(embDir, outDir, "flat", 4, "vector_index", "id_mapping", vectorindex.Options{})
	built, err := uc.Build()
	if err != nil {
		t.Fatalf("build failed: %v", err)
	}

	pair := ArtifactPair{IndexPath: built.IndexPath, MappingPath: built.MappingPath}
	engine, err := NewSearchEngine(pair, &stubEmbedder{vec: e1}, config.DefaultConfig().Search)
	if err != nil {
		t.Fatalf("failed to construct engine: %v", err)
	}

	results, err := engine.Search(context.Background(), "¿qué cubre el seguro de moto?", 5, nil)
	if err != nil {
		t.Fatalf("search failed: %v", err)
	}

	if len(results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(results))
	}
	for _, r := range results {
		if r.Metadata.Filename == "auto-completo.pdf" {
			t.Error("vehicle gating should have dropped the auto document")
		}
	}
	if results[0].Section != "asegurado" {
		t.Errorf("expected the asegurado chunk first, got section %q", results[0].Section)
	}
	if results[0].Score != 1.0 {
		t.Errorf("expected top score clamped to 1.0, got %f", results[0].Score)
	}
	if results[1].Section != "general" {
		t.Errorf("expected the general chunk second, got section %q", results[1].Section)
	}
	if results[1].Score >= results[0].Score {
		t.Errorf("expected second score below first, got %f >= %f", results[1].Score, results[0].Score)
	}
}

func TestSearchOversamplingFloor(t *testing.T) {
	ix := &stubIndex{dim: 2}
	engine := newTestEngine(ix, map[int]domain.ChunkRecord{}, &stubEmbedder{vec: []float32{1, 0}})

	if _, err := engine.Search(context.Background(), "consulta", 2, nil); err != nil {
		t.Fatal(err)
	}
	if ix.lastK != 50 {
		t.Errorf("top_k=2 should query 50 candidates, got %d", ix.lastK)
	}

	if _, err := engine.Search(context.Background(), "consulta", 20, nil); err != nil {
		t.Fatal(err)
	}
	if ix.lastK != 100 {
		t.Errorf("top_k=20 should query 100 candidates, got %d", ix.lastK)
	}
}

func TestSearchThreshold(t *testing.T) {
	// Plain records: no section weight, no vehicle hint, no indicators,
	// so score is exactly 1 - distance/2.
	records := map[int]domain.ChunkRecord{
		0: {Filename: "a.pdf", Section: "otros", Text: "texto plano"},
		1: {Filename: "b.pdf", Section: "otros", Text: "texto plano"},
		2: {Filename: "c.pdf", Section: "otros", Text: "texto plano"},
	}
	ix := &stubIndex{dim: 2, ids: []int{0, 1, 2}, dists: []float64{1.68, 1.7, 1.8}}
	engine := newTestEngine(ix, records, &stubEmbedder{vec: []float32{1, 0}})

	results, err := engine.Search(context.Background(), "consulta", 10, nil)
	if err != nil {
		t.Fatal(err)
	}

	// Scores 0.16 and 0.15 survive the 0.15 threshold, 0.10 does not.
	if len(results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(results))
	}
	if results[0].Metadata.Filename != "a.pdf" || results[1].Metadata.Filename != "b.pdf" {
		t.Errorf("unexpected survivors: %s, %s", results[0].Metadata.Filename, results[1].Metadata.Filename)
	}
}

func TestSearchSkipsMissingMetadata(t *testing.T) {
	records := map[int]domain.ChunkRecord{
		0: {Filename: "a.pdf", Section: "otros", Text: "texto"},
	}
	ix := &stubIndex{dim: 2, ids: []int{0, 7}, dists: []float64{0.2, 0.1}}
	engine := newTestEngine(ix, records, &stubEmbedder{vec: []float32{1, 0}})

	results, err := engine.Search(context.Background(), "consulta", 5, nil)
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 1 || results[0].Metadata.Filename != "a.pdf" {
		t.Fatalf("expected only the mapped candidate, got %+v", results)
	}
}

func TestFilterByMetadata(t *testing.T) {
	results := []domain.SearchResult{
		{Metadata: domain.ChunkRecord{Filename: "a.pdf", Section: "asegurado", Extra: map[string]any{"insurer": "AXA"}}},
		{Metadata: domain.ChunkRecord{Filename: "b.pdf", Section: "general", Extra: map[string]any{"insurer": "AXA"}}},
		{Metadata: domain.ChunkRecord{Filename: "c.pdf", Section: "asegurado", Extra: map[string]any{"insurer": "Mapfre"}}},
	}

	// OR within a field.
	got := FilterByMetadata(results, map[string][]string{"section": {"asegurado", "general"}})
	if len(got) != 3 {
		t.Errorf("expected 3 results for OR filter, got %d", len(got))
	}

	// AND across fields.
	got = FilterByMetadata(results, map[string][]string{
		"section": {"asegurado"},
		"insurer": {"AXA"},
	})
	if len(got) != 1 || got[0].Metadata.Filename != "a.pdf" {
		t.Errorf("expected only a.pdf, got %+v", got)
	}

	// Missing field never matches.
	got = FilterByMetadata(results, map[string][]string{"no_existe": {"x"}})
	if len(got) != 0 {
		t.Errorf("expected no results for unknown field, got %d", len(got))
	}
}

func TestFilterByMetadataIdempotent(t *testing.T) {
	results := []domain.SearchResult{
		{Metadata: domain.ChunkRecord{Filename: "a.pdf", Section: "asegurado"}},
		{Metadata: domain.ChunkRecord{Filename: "b.pdf", Section: "general"}},
	}
	filters := map[string][]string{"section": {"asegurado"}}

	once := FilterByMetadata(results, filters)
	twice := FilterByMetadata(once, filters)
	if len(once) != len(twice) {
		t.Fatalf("filtering is not idempotent: %d vs %d", len(once), len(twice))
	}
	for i := range once {
		if once[i].Metadata.Filename != twice[i].Metadata.Filename {
			t.Errorf("result %d changed on second filter pass", i)
		}
	}
}

func TestLatestArtifactPair(t *testing.T) {
	dir := t.TempDir()
	files := []string{
		"vector_index_20240101_000000.bin",
		"id_mapping_20240101_000000.json",
		"vector_index_20250601_120000.bin",
		"id_mapping_20250601_120000.json",
	}
	for _, f := range files {
		if err := writeFileAtomic(dir+"/"+f, []byte("{}")); err != nil {
			t.Fatal(err)
		}
	}

	pair, err := LatestArtifactPair(dir, "vector_index", "id_mapping")
	if err != nil {
		t.Fatal(err)
	}
	if pair.IndexPath != dir+"/vector_index_20250601_120000.bin" {
		t.Errorf("expected newest index, got %s", pair.IndexPath)
	}
	if pair.MappingPath != dir+"/id_mapping_20250601_120000.json" {
		t.Errorf("expected matching mapping, got %s", pair.MappingPath)
	}
}

func TestLatestArtifactPairNotFound(t *testing.T) {
	_, err := LatestArtifactPair(t.TempDir(), "vector_index", "id_mapping")
	if !errors.Is(err, domain.ErrIndexNotFound) {
		t.Errorf("expected index not found for empty dir, got %v", err)
	}

	_, err = LatestArtifactPair("/nonexistent/path", "vector_index", "id_mapping")
	if !errors.Is(err, domain.ErrIndexNotFound) {
		t.Errorf("expected index not found for missing dir, got %v", err)
	}
}

func TestNewSearchEngineMissingIndex(t *testing.T) {
	pair := ArtifactPair{
		IndexPath:   t.TempDir() + "/vector_index_x.bin",
		MappingPath: t.TempDir() + "/id_mapping_x.json",
	}
	_, err := NewSearchEngine(pair, &stubEmbedder{vec: []float32{1, 0}}, config.DefaultConfig().Search)
	if !errors.Is(err, domain.ErrIndexNotFound) {
		t.Errorf("expected index not found, got %v", err)
	}
}

func TestLoadMappingSkipsMalformedEntries(t *testing.T) {
	path := t.TempDir() + "/id_mapping_x.json"
	data := []byte(`{
		"0": {"filename": "a.pdf", "text": "bueno", "section": "general"},
		"uno": {"filename": "b.pdf"},
		"2": "no es un objeto"
	}`)
	if err := writeFileAtomic(path, data); err != nil {
		t.Fatal(err)
	}

	records, err := loadMapping(path)
	if err != nil {
		t.Fatalf("one bad entry must not fail the whole load: %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("expected 1 valid record, got %d", len(records))
	}
	if records[0].Filename != "a.pdf" {
		t.Errorf("expected the valid record to survive, got %+v", records[0])
	}
}
