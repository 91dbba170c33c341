// Package extract turns source PDFs into section-tagged text chunks ready for
// embedding. Extraction is best effort: unreadable pages are skipped with a
// log, unreadable documents are reported to the caller.
package extract

import (
	"fmt"
	"os"
	"regexp"
	"strings"

	"github.com/ledongthuc/pdf"

	"github.com/deaguilarg/seguros-rag/internal/logger"
)

var pageNumberRe = regexp.MustCompile(`^\s*(?:página\s+)?\d{1,4}\s*$`)

// ExtractText extracts the plain text of a PDF and returns it together with
// the page count.
func ExtractText(path string) (string, int, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", 0, fmt.Errorf("failed to open PDF: %w", err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return "", 0, fmt.Errorf("failed to stat PDF: %w", err)
	}

	reader, err := pdf.NewReader(f, info.Size())
	if err != nil {
		return "", 0, fmt.Errorf("failed to read PDF: %w", err)
	}

	var b strings.Builder
	pages := reader.NumPage()
	for i := 1; i <= pages; i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			logger.Warn("failed to extract page %d of %s: %v", i, path, err)
			continue
		}
		b.WriteString(text)
		b.WriteString("\n")
	}

	text := CleanText(b.String())
	if text == "" {
		return "", pages, fmt.Errorf("no text extracted from %s", path)
	}
	return text, pages, nil
}

// CleanText normalizes line endings, drops page-number footer lines and
// collapses runs of blank lines.
func CleanText(text string) string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")

	lines := strings.Split(text, "\n")
	out := make([]string, 0, len(lines))
	blank := 0
	for _, line := range lines {
		trimmed := strings.TrimSpace(line)
		if pageNumberRe.MatchString(strings.ToLower(trimmed)) && trimmed != "" {
			continue
		}
		if trimmed == "" {
			blank++
			if blank > 1 {
				continue
			}
		} else {
			blank = 0
		}
		out = append(out, trimmed)
	}
	return strings.TrimSpace(strings.Join(out, "\n"))
}
