package graph

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/Divas-Gupta30/graph-rag/graph-agent/internal/llm"
	"github.com/Divas-Gupta30/graph-rag/graph-agent/internal/observability"
	"go.uber.org/zap"
)

const (
	FallbackPrefix = "SYNTHESIS (fallback): "
	fallbackChars  = 800

	localHeader   = "LOCAL SYNTHESIS"
	localMaxDocs  = 3
	localDocChars = 300
	localYield    = 20 * time.Millisecond
)

var errEmptyAnswer = errors.New("model returned an empty answer")

// Synthesizer writes the answer for a query from its retrieved snippets.
// With a model it asks the model; without one it assembles a local summary.
type Synthesizer struct {
	model  llm.Completer
	logger *zap.Logger
	hook   observability.Hook
}

// NewSynthesizer builds a Synthesizer. A nil model selects local synthesis.
func NewSynthesizer(model llm.Completer, opts ...Option) *Synthesizer {
	o := buildOptions(opts)
	return &Synthesizer{model: model, logger: o.logger.Named("synthesizer"), hook: o.hook}
}

// Run always returns a non-empty answer.
func (s *Synthesizer) Run(ctx context.Context, query string, docs []string) string {
	prompt := SynthesisPrompt(query, docs)

	if s.model == nil {
		answer := s.local(ctx, query, docs)
		s.hook.Emit(ctx, observability.EventSynthesisLocal, "docs", len(docs))
		return answer
	}

	answer, err := s.model.Complete(ctx, prompt)
	if err == nil && strings.TrimSpace(answer) == "" {
		err = errEmptyAnswer
	}
	if err != nil {
		s.logger.Warn("synthesis model failed, using fallback", zap.Error(err))
		s.hook.Emit(ctx, observability.EventSynthesisFallback, "error", err.Error())
		return FallbackPrefix + truncate(prompt, fallbackChars)
	}
	s.hook.Emit(ctx, observability.EventSynthesisModel, "docs", len(docs))
	return answer
}

func (s *Synthesizer) Node(ctx context.Context, st *State) error {
	st.Answer = s.Run(ctx, st.Query, st.Docs)
	return nil
}

// SynthesisPrompt is the instruction sent to the synthesis model.
func SynthesisPrompt(query string, docs []string) string {
	return "Synthesize a concise, accurate answer to the question using ONLY the documents below.\n\nQUESTION:\n" +
		query + "\n\nDOCUMENTS:\n\n" + strings.Join(docs, "\n\n")
}

func (s *Synthesizer) local(ctx context.Context, query string, docs []string) string {
	t := time.NewTimer(localYield)
	select {
	case <-t.C:
	case <-ctx.Done():
		t.Stop()
	}
	return LocalSynthesis(query, docs)
}

// LocalSynthesis is the deterministic answer used when no model is
// configured: the query, up to three flattened and truncated snippets, and a
// one-line summary of the same snippets.
func LocalSynthesis(query string, docs []string) string {
	top := make([]string, 0, localMaxDocs)
	for _, d := range docs {
		if len(top) == localMaxDocs {
			break
		}
		top = append(top, truncate(flatten(d), localDocChars))
	}

	var b strings.Builder
	b.WriteString(localHeader)
	b.WriteString("\nQuestion: ")
	b.WriteString(query)
	b.WriteString("\nBased on the docs:\n")
	if len(top) == 0 {
		b.WriteString("- (no matching documents)\n")
	}
	for _, d := range top {
		b.WriteString("- ")
		b.WriteString(d)
		b.WriteString("\n")
	}
	b.WriteString("Concise answer: ")
	b.WriteString(strings.Join(top, " || "))
	return b.String()
}

var flattener = strings.NewReplacer("\r\n", " ", "\n", " ", "\r", " ")

func flatten(s string) string {
	return strings.TrimSpace(flattener.Replace(s))
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
