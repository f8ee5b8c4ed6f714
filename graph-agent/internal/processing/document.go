// Package processing turns raw source text into the documents the
// extraction step consumes.
package processing

// Document is the unit of text handed to extraction. Meta, when set, names
// the file the text was chunked from and Chunk is its position there.
type Document struct {
	Text  string    `json:"text"`
	Meta  *Metadata `json:"meta,omitempty"`
	Chunk int       `json:"chunk,omitempty"`
}

// Documents wraps each text as a Document, dropping blank ones.
func Documents(texts ...string) []Document {
	out := make([]Document, 0, len(texts))
	for _, t := range texts {
		if isBlank(t) {
			continue
		}
		out = append(out, Document{Text: t})
	}
	return out
}

// WithMeta stamps docs with meta and their chunk position, in place.
func WithMeta(docs []Document, meta Metadata) []Document {
	for i := range docs {
		m := meta
		docs[i].Meta = &m
		docs[i].Chunk = i
	}
	return docs
}
