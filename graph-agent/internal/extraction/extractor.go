// Package extraction fills the knowledge graph from documents by asking a
// language model for (source, target, relation) triplets.
package extraction

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Divas-Gupta30/graph-rag/graph-agent/internal/kg"
	"github.com/Divas-Gupta30/graph-rag/graph-agent/internal/llm"
	"github.com/Divas-Gupta30/graph-rag/graph-agent/internal/logging"
	"github.com/Divas-Gupta30/graph-rag/graph-agent/internal/observability"
	"github.com/Divas-Gupta30/graph-rag/graph-agent/internal/processing"
	"github.com/tmc/langchaingo/prompts"
	"go.uber.org/zap"
)

var (
	ErrNoCapability     = errors.New("no extraction model configured")
	ErrMalformedPayload = errors.New("malformed extraction payload")
)

const previewChars = 50

type Option func(*Extractor)

func WithLogger(logger *zap.Logger) Option {
	return func(e *Extractor) { e.logger = logger }
}

func WithHook(hook observability.Hook) Option {
	return func(e *Extractor) { e.hook = hook }
}

// Extractor is the only writer of model-derived triplets into a Store.
type Extractor struct {
	model  llm.Completer
	store  *kg.Store
	prompt prompts.PromptTemplate
	logger *zap.Logger
	hook   observability.Hook
}

// New builds an Extractor. model may be nil, in which case every document
// contributes zero triplets.
func New(model llm.Completer, store *kg.Store, opts ...Option) *Extractor {
	e := &Extractor{model: model, store: store, prompt: newPrompt()}
	for _, o := range opts {
		o(e)
	}
	e.logger = logging.OrNop(e.logger).Named("extraction")
	return e
}

// Process extracts triplets from doc and adds them to the store. It returns
// the number of triplets added and never fails: errors are logged and count
// as zero.
func (e *Extractor) Process(ctx context.Context, doc processing.Document) int {
	logger := e.logger.With(docFields(doc)...)
	logger.Info("processing document", zap.String("preview", preview(doc.Text)))
	start := time.Now()

	triplets, err := e.extract(ctx, doc.Text)
	if err != nil {
		logger.Error("failed to process document", zap.Error(err))
		e.hook.Emit(ctx, observability.EventDocumentFailed, append(docEventFields(doc), "error", err.Error())...)
		return 0
	}

	for _, t := range triplets {
		e.store.AddTriplet(t.Source, t.Target, t.Relation)
	}
	logger.Info("triplets added",
		zap.Int("triplets", len(triplets)),
		zap.Duration("took", time.Since(start)))
	e.hook.Emit(ctx, observability.EventDocumentProcessed, append(docEventFields(doc), "triplets", len(triplets))...)
	return len(triplets)
}

func docFields(doc processing.Document) []zap.Field {
	if doc.Meta == nil {
		return nil
	}
	fields := []zap.Field{
		zap.String("doc_id", doc.Meta.ID),
		zap.String("doc_source", doc.Meta.Source),
		zap.Int("chunk", doc.Chunk),
	}
	if doc.Meta.Title != "" {
		fields = append(fields, zap.String("title", doc.Meta.Title))
	}
	if doc.Meta.Path != "" {
		fields = append(fields, zap.String("path", doc.Meta.Path))
	}
	return fields
}

func docEventFields(doc processing.Document) []any {
	if doc.Meta == nil {
		return nil
	}
	return []any{"doc_id", doc.Meta.ID, "doc_source", doc.Meta.Source, "chunk", doc.Chunk}
}

func (e *Extractor) extract(ctx context.Context, text string) ([]Triplet, error) {
	if e.model == nil {
		return nil, ErrNoCapability
	}
	prompt, err := e.prompt.Format(map[string]any{"text": text})
	if err != nil {
		return nil, fmt.Errorf("formatting prompt: %w", err)
	}
	raw, err := e.model.Complete(ctx, prompt)
	if err != nil {
		return nil, fmt.Errorf("calling extraction model: %w", err)
	}
	return ParseTriplets(raw)
}

// BuildIndex processes docs one at a time and saves the graph once at the
// end. It returns the total number of triplets added.
func (e *Extractor) BuildIndex(ctx context.Context, docs []processing.Document) (int, error) {
	total := 0
	for i, doc := range docs {
		if err := ctx.Err(); err != nil {
			return total, err
		}
		n := e.Process(ctx, doc)
		total += n
		e.logger.Debug("document indexed", zap.Int("index", i), zap.Int("triplets", n))
	}
	if err := e.store.Save(ctx); err != nil {
		return total, fmt.Errorf("saving graph: %w", err)
	}
	e.logger.Info("index built",
		zap.Int("documents", len(docs)),
		zap.Int("triplets", total),
		zap.Int("nodes", e.store.NodeCount()),
		zap.Int("edges", e.store.EdgeCount()))
	return total, nil
}

func preview(s string) string {
	r := []rune(s)
	if len(r) <= previewChars {
		return s
	}
	return string(r[:previewChars]) + "..."
}
