// Package metadata extracts document-level attributes (producto, tipo de
// seguro, tipo de cobertura, aseguradora, palabras clave) from policy text
// with fixed regular expressions. The attributes are merged into every chunk
// of the document at ingest time.
package metadata

import (
	"regexp"
	"sort"
	"strings"
)

var (
	productoRe      = regexp.MustCompile(`(?i)Producto:\s*([^\n]+)`)
	insuranceTypeRe = regexp.MustCompile(`(?i)(hogar|vida|salud|auto(?:móvil)?|responsabilidad\s+civil|accidentes)`)
	coverageTypeRe  = regexp.MustCompile(`(?i)(todo\s+riesgo\s+con\s+franquicia|básico\s+con\s+daños|todo\s+riesgo|pérdida\s+total|básico|premium)`)
	titleRes        = []*regexp.Regexp{
		regexp.MustCompile(`(?i)condiciones\s+(?:generales|particulares)\s+(?:del\s+)?seguro\s+(?:de\s+)?[^\n]+`),
		regexp.MustCompile(`(?i)póliza\s+(?:de\s+)?seguro\s+(?:de\s+)?[^\n]+`),
		regexp.MustCompile(`(?i)contrato\s+(?:de\s+)?seguro\s+(?:de\s+)?[^\n]+`),
	}
	wordRe = regexp.MustCompile(`[\p{L}]{4,}`)
)

// knownInsurers is the closed list of accepted insurer names; anything else
// the text mentions is too noisy to trust.
var knownInsurers = []string{
	"Mapfre", "AXA", "Allianz", "Generali", "Zurich", "Liberty",
	"Reale", "Helvetia", "Pelayo", "Mutua Madrileña",
}

var stopwords = map[string]struct{}{
	"para": {}, "este": {}, "esta": {}, "estos": {}, "estas": {}, "como": {},
	"donde": {}, "cuando": {}, "sobre": {}, "entre": {}, "desde": {}, "hasta": {},
	"será": {}, "sera": {}, "haber": {}, "tiene": {}, "tienen": {}, "según": {},
	"segun": {}, "caso": {}, "casos": {}, "todo": {}, "toda": {}, "todos": {},
	"todas": {}, "pero": {}, "porque": {}, "cada": {}, "ello": {}, "ellos": {},
	"cualquier": {}, "mediante": {}, "dicho": {}, "dicha": {}, "misma": {}, "mismo": {},
}

// Extract builds the document-level attribute map from the extracted text.
func Extract(text string) map[string]any {
	return map[string]any{
		"producto":       extractProducto(text),
		"title":          extractTitle(text),
		"insurer":        extractInsurer(text),
		"insurance_type": extractInsuranceType(text),
		"coverage_type":  extractCoverageType(text),
		"keywords":       extractKeywords(text),
	}
}

func extractProducto(text string) string {
	if m := productoRe.FindStringSubmatch(text); m != nil {
		return strings.TrimSpace(m[1])
	}
	return "No especificado"
}

// extractTitle looks for common policy title patterns near the top of the
// document; falls back to a generic label.
func extractTitle(text string) string {
	head := text
	if len(head) > 1000 {
		head = head[:1000]
	}
	for _, re := range titleRes {
		if m := re.FindString(head); m != "" {
			return strings.TrimSpace(m)
		}
	}
	return "Documento de Seguro"
}

func extractInsurer(text string) string {
	for _, name := range knownInsurers {
		if strings.Contains(text, name) {
			return name
		}
	}
	return "Desconocida"
}

func extractInsuranceType(text string) string {
	m := insuranceTypeRe.FindStringSubmatch(text)
	if m == nil {
		return "No especificado"
	}
	found := strings.ToLower(m[1])
	switch {
	case strings.HasPrefix(found, "auto"):
		return "Automóvil"
	case strings.HasPrefix(found, "responsabilidad"):
		return "Responsabilidad Civil"
	default:
		return capitalize(found)
	}
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	runes := []rune(s)
	return strings.ToUpper(string(runes[0])) + string(runes[1:])
}

func extractCoverageType(text string) string {
	m := coverageTypeRe.FindStringSubmatch(text)
	if m == nil {
		return "No especificado"
	}
	found := strings.ToLower(strings.Join(strings.Fields(m[1]), " "))
	switch found {
	case "todo riesgo":
		return "Todo Riesgo"
	case "todo riesgo con franquicia":
		return "Todo riesgo con franquicia"
	case "básico con daños":
		return "Básico con daños"
	case "pérdida total":
		return "Pérdida total"
	default:
		return capitalize(found)
	}
}

// extractKeywords returns the sorted set of content words (4+ letters, not a
// stopword) in the text.
func extractKeywords(text string) []string {
	seen := make(map[string]struct{})
	for _, w := range wordRe.FindAllString(strings.ToLower(text), -1) {
		if _, stop := stopwords[w]; stop {
			continue
		}
		seen[w] = struct{}{}
	}
	keywords := make([]string, 0, len(seen))
	for w := range seen {
		keywords = append(keywords, w)
	}
	sort.Strings(keywords)
	return keywords
}
