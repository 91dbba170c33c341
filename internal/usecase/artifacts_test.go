package usecase

import (
	"errors"
	"testing"

	"github.com/deaguilarg/seguros-rag/internal/domain"
)

func TestArtifactRoundTrip(t *testing.T) {
	dir := t.TempDir()

	artifact := domain.DocumentArtifact{
		Filename:     "moto-basico.pdf",
		EmbeddingDim: 3,
		Metadata:     map[string]any{"insurer": "Mapfre"},
		Chunks: []domain.Chunk{
			{Text: "primer fragmento", Section: "asegurado", StartPosition: 0, EndPosition: 16},
			{Text: "segundo fragmento", Section: "general", StartPosition: 16, EndPosition: 33},
		},
	}
	vectors := [][]float32{{1, 0, 0}, {0, 0.5, -0.25}}

	if err := WriteArtifact(dir, artifact, vectors); err != nil {
		t.Fatalf("write failed: %v", err)
	}

	got, gotVecs, err := ReadArtifact(dir, "moto-basico")
	if err != nil {
		t.Fatalf("read failed: %v", err)
	}
	if got.Filename != artifact.Filename {
		t.Errorf("expected filename %q, got %q", artifact.Filename, got.Filename)
	}
	if len(got.Chunks) != 2 || got.Chunks[0].Section != "asegurado" {
		t.Errorf("chunks did not round-trip: %+v", got.Chunks)
	}
	if got.Metadata["insurer"] != "Mapfre" {
		t.Errorf("metadata did not round-trip: %v", got.Metadata)
	}
	if len(gotVecs) != 2 {
		t.Fatalf("expected 2 vectors, got %d", len(gotVecs))
	}
	for i := range vectors {
		for j := range vectors[i] {
			if gotVecs[i][j] != vectors[i][j] {
				t.Errorf("vector %d differs at %d: %v vs %v", i, j, gotVecs[i][j], vectors[i][j])
			}
		}
	}
}

func TestWriteArtifactDimensionMismatch(t *testing.T) {
	artifact := domain.DocumentArtifact{
		Filename:     "auto.pdf",
		EmbeddingDim: 4,
		Chunks:       []domain.Chunk{{Text: "x"}},
	}
	err := WriteArtifact(t.TempDir(), artifact, [][]float32{{1, 0}})
	if !errors.Is(err, domain.ErrDimensionMismatch) {
		t.Errorf("expected dimension mismatch, got %v", err)
	}
}

func TestWriteArtifactVectorCountMismatch(t *testing.T) {
	artifact := domain.DocumentArtifact{
		Filename:     "auto.pdf",
		EmbeddingDim: 2,
		Chunks:       []domain.Chunk{{Text: "x"}, {Text: "y"}},
	}
	if err := WriteArtifact(t.TempDir(), artifact, [][]float32{{1, 0}}); err == nil {
		t.Error("expected error for chunk/vector count mismatch")
	}
}

func TestListArtifactsSorted(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"zeta.pdf", "alfa.pdf", "medio.pdf"} {
		artifact := domain.DocumentArtifact{
			Filename:     name,
			EmbeddingDim: 2,
			Chunks:       []domain.Chunk{{Text: "t"}},
		}
		if err := WriteArtifact(dir, artifact, [][]float32{{1, 0}}); err != nil {
			t.Fatal(err)
		}
	}

	stems, err := ListArtifacts(dir)
	if err != nil {
		t.Fatal(err)
	}
	want := []string{"alfa", "medio", "zeta"}
	if len(stems) != len(want) {
		t.Fatalf("expected %d stems, got %d", len(want), len(stems))
	}
	for i := range want {
		if stems[i] != want[i] {
			t.Errorf("expected stem %d to be %q, got %q", i, want[i], stems[i])
		}
	}
}
