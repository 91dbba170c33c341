package extract

import (
	"regexp"
	"sort"
	"strings"

	"github.com/deaguilarg/seguros-rag/internal/domain"
)

// sectionPatterns are the fixed headings of Spanish insurance product
// information documents (IPID-style). A chunk inherits the tag of the section
// heading it appears under; text before the first heading is "general".
var sectionPatterns = []struct {
	Tag string
	Re  *regexp.Regexp
}{
	{"consiste", regexp.MustCompile(`(?i)¿?en\s+qué\s+consiste\s+este\s+tipo\s+de\s+seguro`)},
	{"asegurado", regexp.MustCompile(`(?i)¿?qué\s+se\s+asegura`)},
	{"no_asegurado", regexp.MustCompile(`(?i)¿?qué\s+no\s+está\s+asegurado`)},
	{"sumas", regexp.MustCompile(`(?i)sumas\s+aseguradas`)},
	{"restricciones", regexp.MustCompile(`(?i)¿?existen\s+restricciones\s+en\s+lo\s+que\s+respecta\s+a\s+la\s+cobertura`)},
	{"cobertura", regexp.MustCompile(`(?i)¿?dónde\s+estoy\s+cubierto`)},
	{"obligaciones", regexp.MustCompile(`(?i)¿?cuáles\s+son\s+mis\s+obligaciones`)},
	{"pagos", regexp.MustCompile(`(?i)¿?cuándo\s+y\s+cómo\s+tengo\s+que\s+efectuar\s+los\s+pagos`)},
	{"vigencia", regexp.MustCompile(`(?i)¿?cuándo\s+comienza\s+y\s+finaliza\s+la\s+cobertura`)},
	{"rescindir", regexp.MustCompile(`(?i)¿?cómo\s+puedo\s+rescindir\s+el\s+contrato`)},
}

// Section is a contiguous span of document text under one heading.
type Section struct {
	Tag   string
	Title string
	Start int
	End   int
}

// SplitSections locates the known headings and slices the text into tagged
// spans. With no heading at all, the whole document is one "general" span.
func SplitSections(text string) []Section {
	type match struct {
		tag        string
		start, end int
	}
	var matches []match
	for _, p := range sectionPatterns {
		for _, loc := range p.Re.FindAllStringIndex(text, -1) {
			matches = append(matches, match{tag: p.Tag, start: loc[0], end: loc[1]})
		}
	}

	if len(matches) == 0 {
		return []Section{{Tag: domain.SectionGeneral, Start: 0, End: len(text)}}
	}

	sort.Slice(matches, func(i, j int) bool { return matches[i].start < matches[j].start })

	var sections []Section
	if matches[0].start > 0 {
		sections = append(sections, Section{Tag: domain.SectionGeneral, Start: 0, End: matches[0].start})
	}
	for i, m := range matches {
		end := len(text)
		if i+1 < len(matches) {
			end = matches[i+1].start
		}
		sections = append(sections, Section{
			Tag:   m.tag,
			Title: strings.TrimSpace(text[m.start:m.end]),
			Start: m.start,
			End:   end,
		})
	}
	return sections
}
