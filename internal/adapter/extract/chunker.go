package extract

import (
	"strings"
	"unicode"

	"github.com/deaguilarg/seguros-rag/internal/domain"
)

type wordSpan struct {
	word string
	off  int
}

// splitWords returns the words of a text with their byte offsets.
func splitWords(text string) []wordSpan {
	var spans []wordSpan
	start := -1
	for i, r := range text {
		if unicode.IsSpace(r) {
			if start >= 0 {
				spans = append(spans, wordSpan{word: text[start:i], off: start})
				start = -1
			}
		} else if start < 0 {
			start = i
		}
	}
	if start >= 0 {
		spans = append(spans, wordSpan{word: text[start:], off: start})
	}
	return spans
}

// ChunkDocument splits the text into sections and each section into
// overlapping word windows. Positions are byte offsets into the full text.
func ChunkDocument(text string, chunkWords, overlap int) []domain.Chunk {
	if chunkWords <= 0 {
		chunkWords = 512
	}
	if overlap < 0 || overlap >= chunkWords {
		overlap = 0
	}
	stride := chunkWords - overlap

	var chunks []domain.Chunk
	for _, sec := range SplitSections(text) {
		secText := text[sec.Start:sec.End]
		words := splitWords(secText)
		if len(words) == 0 {
			continue
		}

		for i := 0; i < len(words); i += stride {
			end := i + chunkWords
			if end > len(words) {
				end = len(words)
			}
			first, last := words[i], words[end-1]
			chunkText := strings.Join(fieldWords(words[i:end]), " ")
			chunks = append(chunks, domain.Chunk{
				Text:          chunkText,
				Section:       sec.Tag,
				SectionTitle:  sec.Title,
				StartPosition: sec.Start + first.off,
				EndPosition:   sec.Start + last.off + len(last.word),
			})
			if end == len(words) {
				break
			}
		}
	}
	return chunks
}

func fieldWords(spans []wordSpan) []string {
	words := make([]string, len(spans))
	for i, s := range spans {
		words[i] = s.word
	}
	return words
}
