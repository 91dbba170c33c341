package domain

import (
	"encoding/json"
	"testing"
)

func TestChunkRecordRoundTrip(t *testing.T) {
	rec := ChunkRecord{
		Filename:      "moto-basico.pdf",
		ChunkIndex:    2,
		TotalChunks:   7,
		EmbeddingDim:  768,
		Text:          "La prima anual asciende a 300 EUR.",
		Section:       SectionAsegurado,
		SectionTitle:  "¿Qué se asegura?",
		StartPosition: 100,
		EndPosition:   134,
		Extra: map[string]any{
			"insurer":        "Mapfre",
			"insurance_type": "Automóvil",
		},
	}

	data, err := json.Marshal(rec)
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}

	// The wire format is a single flat object.
	var flat map[string]any
	if err := json.Unmarshal(data, &flat); err != nil {
		t.Fatalf("unmarshal to map failed: %v", err)
	}
	if flat["insurer"] != "Mapfre" {
		t.Errorf("expected insurer at top level, got %v", flat["insurer"])
	}
	if flat["section"] != SectionAsegurado {
		t.Errorf("expected section=%s, got %v", SectionAsegurado, flat["section"])
	}

	var back ChunkRecord
	if err := json.Unmarshal(data, &back); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}
	if back.Filename != rec.Filename {
		t.Errorf("expected filename=%s, got %s", rec.Filename, back.Filename)
	}
	if back.ChunkIndex != 2 || back.TotalChunks != 7 {
		t.Errorf("expected chunk 2/7, got %d/%d", back.ChunkIndex, back.TotalChunks)
	}
	if back.Extra["insurer"] != "Mapfre" {
		t.Errorf("expected Extra insurer=Mapfre, got %v", back.Extra["insurer"])
	}
	if _, fixed := back.Extra["section"]; fixed {
		t.Error("fixed field leaked into Extra")
	}
}

func TestChunkRecordField(t *testing.T) {
	rec := ChunkRecord{
		Filename:   "auto-completo.pdf",
		ChunkIndex: 3,
		Section:    SectionConsiste,
		Extra: map[string]any{
			"insurer":    "AXA",
			"num_pages":  float64(12),
			"franquicia": true,
		},
	}

	cases := []struct {
		field string
		want  string
		ok    bool
	}{
		{"filename", "auto-completo.pdf", true},
		{"chunk_index", "3", true},
		{"section", SectionConsiste, true},
		{"insurer", "AXA", true},
		{"num_pages", "12", true},
		{"franquicia", "true", true},
		{"missing", "", false},
	}
	for _, c := range cases {
		got, ok := rec.Field(c.field)
		if ok != c.ok || got != c.want {
			t.Errorf("Field(%q) = (%q, %v), expected (%q, %v)", c.field, got, ok, c.want, c.ok)
		}
	}
}
