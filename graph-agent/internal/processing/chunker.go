package processing

import (
	"regexp"
	"strings"

	"github.com/tmc/langchaingo/textsplitter"
)

const (
	ChunkSize    = 1000
	ChunkOverlap = 100
)

var paragraphBreak = regexp.MustCompile(`\n{2,}`)

var splitter = textsplitter.NewRecursiveCharacter(
	textsplitter.WithChunkSize(ChunkSize),
	textsplitter.WithChunkOverlap(ChunkOverlap),
	textsplitter.WithSeparators([]string{"\n\n", "\n", ". ", " ", ""}),
)

// ChunkText splits text into chunks of at most ChunkSize characters,
// preferring paragraph and sentence boundaries.
func ChunkText(text string) []string {
	text = strings.TrimSpace(paragraphBreak.ReplaceAllString(text, "\n\n"))
	if text == "" {
		return nil
	}
	parts, err := splitter.SplitText(text)
	if err != nil {
		return splitLong(text, ChunkSize, ChunkOverlap)
	}
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// ChunkDocuments is ChunkText returning Documents.
func ChunkDocuments(text string) []Document {
	return Documents(ChunkText(text)...)
}

func splitLong(s string, max, overlap int) []string {
	r := []rune(s)
	if len(r) <= max {
		return []string{s}
	}
	var res []string
	for i := 0; i < len(r); i += max - overlap {
		end := min(i+max, len(r))
		if chunk := strings.TrimSpace(string(r[i:end])); chunk != "" {
			res = append(res, chunk)
		}
		if end == len(r) {
			break
		}
	}
	return res
}

func isBlank(s string) bool {
	return strings.TrimSpace(s) == ""
}
