// Package ingestion loads source documents from disk and Google Drive and
// reduces them to plain text for indexing.
package ingestion

import (
	"context"

	"github.com/Divas-Gupta30/graph-rag/graph-agent/internal/processing"
)

// SourceDocument is the extracted text of one file plus where it came from.
type SourceDocument struct {
	Meta processing.Metadata
	Text string
}

// Chunks splits the document into extraction-sized Documents, each
// carrying the document's metadata.
func (d SourceDocument) Chunks() []processing.Document {
	return processing.WithMeta(processing.ChunkDocuments(d.Text), d.Meta)
}

// Source yields documents to index.
type Source interface {
	Fetch(ctx context.Context) ([]SourceDocument, error)
}

// Collect fetches every source in turn and chunks the results. Every chunk
// keeps the metadata of the document it came from.
func Collect(ctx context.Context, sources ...Source) ([]processing.Document, error) {
	var docs []processing.Document
	for _, src := range sources {
		fetched, err := src.Fetch(ctx)
		if err != nil {
			return docs, err
		}
		for _, d := range fetched {
			docs = append(docs, d.Chunks()...)
		}
	}
	return docs, nil
}
