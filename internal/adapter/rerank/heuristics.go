// Package rerank implements the domain re-ranking heuristics applied on top
// of raw vector distances: vehicle-type detection from the query, section
// weighting and a content-specificity bonus. The weights come from
// configuration; they are untuned heuristics inherited from the original
// deployment and should be recalibrated against a labelled relevance set.
package rerank

import (
	"sort"
	"strings"
)

// Weights holds the scoring knobs. DistanceScale maps a raw index distance to
// the base score max(0, 1 - distance/DistanceScale); the linear mapping
// assumes inner-product style distances roughly in [0, 2].
type Weights struct {
	DistanceScale    float64
	SectionWeights   map[string]float64
	VehicleGating    bool
	VehicleBoost     float64
	SpecificityBoost float64
	MinIndicators    int
}

// VehicleDetector maps query keywords to filename-substring tags. A fixed,
// extensible table, not a learned classifier: matching is case-insensitive
// substring containment and the result does not depend on keyword order.
type VehicleDetector struct {
	keywords map[string][]string // tag -> lowercased keywords
}

// NewVehicleDetector builds a detector from a tag → keyword table.
func NewVehicleDetector(table map[string][]string) *VehicleDetector {
	keywords := make(map[string][]string, len(table))
	for tag, words := range table {
		lowered := make([]string, len(words))
		for i, w := range words {
			lowered[i] = strings.ToLower(w)
		}
		keywords[strings.ToLower(tag)] = lowered
	}
	return &VehicleDetector{keywords: keywords}
}

// Detect returns the sorted set of tags whose keywords appear in the query.
func (d *VehicleDetector) Detect(query string) []string {
	q := strings.ToLower(query)
	var tags []string
	for tag, words := range d.keywords {
		for _, w := range words {
			if strings.Contains(q, w) {
				tags = append(tags, tag)
				break
			}
		}
	}
	sort.Strings(tags)
	return tags
}

// MatchesAny reports whether the filename contains at least one of the tags.
func MatchesAny(filename string, tags []string) bool {
	f := strings.ToLower(filename)
	for _, tag := range tags {
		if strings.Contains(f, tag) {
			return true
		}
	}
	return false
}

// indicatorGroups are the lexical markers of actionable policy content.
// Boilerplate legal text rarely carries two or more distinct groups.
var indicatorGroups = [][]string{
	{"€", "eur", "euro"},
	{"cobertura", "cubre", "cubierto"},
	{"indemnización", "indemnizacion", "indemnizar"},
	{"prima"},
	{"franquicia", "deducible"},
	{"suma asegurada", "límite", "limite", "capital asegurado"},
}

// CountIndicators returns how many distinct indicator groups appear in the text.
func CountIndicators(text string) int {
	t := strings.ToLower(text)
	count := 0
	for _, group := range indicatorGroups {
		for _, term := range group {
			if strings.Contains(t, term) {
				count++
				break
			}
		}
	}
	return count
}

// Score computes the final score for one candidate, or (0, false) when the
// candidate is dropped by vehicle gating. Steps, in order: base score from
// distance, section weighting, vehicle gating/boost, specificity bonus,
// clamp to [0, 1].
func (w Weights) Score(dist float64, section, filename, text string, hints []string) (float64, bool) {
	score := 1 - dist/w.DistanceScale
	if score < 0 {
		score = 0
	}

	if mult, ok := w.SectionWeights[section]; ok {
		score *= mult
	}

	if len(hints) > 0 {
		if MatchesAny(filename, hints) {
			score *= w.VehicleBoost
		} else if w.VehicleGating {
			return 0, false
		}
	}

	if CountIndicators(text) >= w.MinIndicators {
		score *= w.SpecificityBoost
	}

	if score > 1 {
		score = 1
	}
	if score < 0 {
		score = 0
	}
	return score, true
}
