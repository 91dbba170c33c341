package domain

// Section tags assigned during ingestion. "general" is the fallback when no
// section heading matched.
const (
	SectionAsegurado = "asegurado"
	SectionConsiste  = "consiste"
	SectionGeneral   = "general"
)

// Chunk is the atomic retrievable unit extracted from a policy document.
type Chunk struct {
	Text          string `json:"text"`
	Section       string `json:"section"`
	SectionTitle  string `json:"section_title"`
	StartPosition int    `json:"start_position"`
	EndPosition   int    `json:"end_position"`
}

// DocumentArtifact is the metadata side of a per-document ingest artifact.
// The chunk embeddings live in the companion .vec file, row i matching Chunks[i].
type DocumentArtifact struct {
	Filename     string         `json:"filename"`
	EmbeddingDim int            `json:"embedding_dim"`
	Metadata     map[string]any `json:"metadata"`
	Chunks       []Chunk        `json:"chunks"`
}

// SearchResult is returned by the search engine, ordered by score descending.
type SearchResult struct {
	Text     string      `json:"text"`
	Score    float64     `json:"score"`
	Distance float64     `json:"distance"`
	Section  string      `json:"section"`
	Metadata ChunkRecord `json:"metadata"`
}

// Answer is the output of the generation use case.
type Answer struct {
	Query   string         `json:"query"`
	Text    string         `json:"answer"`
	Sources []SearchResult `json:"sources"`
}
