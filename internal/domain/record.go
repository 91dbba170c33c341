package domain

import (
	"encoding/json"
	"fmt"
	"strconv"
)

// ChunkRecord is one entry of the persisted ID→metadata mapping. The fixed
// fields are the ones the re-ranking heuristics depend on; Extra carries the
// document-level attributes merged in at build time (insurer, insurance_type,
// coverage_type, keywords, ...). On the wire the record is a single flat JSON
// object: fixed fields and Extra keys side by side.
type ChunkRecord struct {
	Filename      string
	ChunkIndex    int
	TotalChunks   int
	EmbeddingDim  int
	Text          string
	Section       string
	SectionTitle  string
	StartPosition int
	EndPosition   int
	Extra         map[string]any
}

var recordFields = map[string]struct{}{
	"filename":       {},
	"chunk_index":    {},
	"total_chunks":   {},
	"embedding_dim":  {},
	"text":           {},
	"section":        {},
	"section_title":  {},
	"start_position": {},
	"end_position":   {},
}

// MarshalJSON flattens the record into one JSON object. Fixed fields win over
// Extra keys with the same name.
func (r ChunkRecord) MarshalJSON() ([]byte, error) {
	flat := make(map[string]any, len(r.Extra)+9)
	for k, v := range r.Extra {
		if _, fixed := recordFields[k]; !fixed {
			flat[k] = v
		}
	}
	flat["filename"] = r.Filename
	flat["chunk_index"] = r.ChunkIndex
	flat["total_chunks"] = r.TotalChunks
	flat["embedding_dim"] = r.EmbeddingDim
	flat["text"] = r.Text
	flat["section"] = r.Section
	flat["section_title"] = r.SectionTitle
	flat["start_position"] = r.StartPosition
	flat["end_position"] = r.EndPosition
	return json.Marshal(flat)
}

// UnmarshalJSON splits a flat JSON object back into fixed fields and Extra.
func (r *ChunkRecord) UnmarshalJSON(data []byte) error {
	var flat map[string]any
	if err := json.Unmarshal(data, &flat); err != nil {
		return err
	}

	r.Filename = asString(flat["filename"])
	r.ChunkIndex = asInt(flat["chunk_index"])
	r.TotalChunks = asInt(flat["total_chunks"])
	r.EmbeddingDim = asInt(flat["embedding_dim"])
	r.Text = asString(flat["text"])
	r.Section = asString(flat["section"])
	r.SectionTitle = asString(flat["section_title"])
	r.StartPosition = asInt(flat["start_position"])
	r.EndPosition = asInt(flat["end_position"])

	r.Extra = make(map[string]any)
	for k, v := range flat {
		if _, fixed := recordFields[k]; !fixed {
			r.Extra[k] = v
		}
	}
	return nil
}

// Field returns the stringified value of a metadata field, fixed or Extra.
// Filters compare against these strings.
func (r ChunkRecord) Field(name string) (string, bool) {
	switch name {
	case "filename":
		return r.Filename, true
	case "chunk_index":
		return strconv.Itoa(r.ChunkIndex), true
	case "total_chunks":
		return strconv.Itoa(r.TotalChunks), true
	case "embedding_dim":
		return strconv.Itoa(r.EmbeddingDim), true
	case "text":
		return r.Text, true
	case "section":
		return r.Section, true
	case "section_title":
		return r.SectionTitle, true
	case "start_position":
		return strconv.Itoa(r.StartPosition), true
	case "end_position":
		return strconv.Itoa(r.EndPosition), true
	}
	v, ok := r.Extra[name]
	if !ok {
		return "", false
	}
	return stringify(v), true
}

func asString(v any) string {
	s, _ := v.(string)
	return s
}

func asInt(v any) int {
	switch n := v.(type) {
	case float64:
		return int(n)
	case int:
		return n
	case json.Number:
		i, _ := n.Int64()
		return int(i)
	}
	return 0
}

// stringify renders a metadata value the way filters expect: JSON numbers that
// are whole render without a decimal point.
func stringify(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case float64:
		if t == float64(int64(t)) {
			return strconv.FormatInt(int64(t), 10)
		}
		return strconv.FormatFloat(t, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(t)
	default:
		return fmt.Sprint(t)
	}
}
