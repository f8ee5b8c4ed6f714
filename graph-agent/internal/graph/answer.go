package graph

import (
	"context"

	"github.com/Divas-Gupta30/graph-rag/graph-agent/internal/observability"
	"go.uber.org/zap"
)

// answerNode publishes the final answer of a run.
func (p *Pipeline) answerNode(ctx context.Context, s *State) error {
	p.logger.Debug("answer ready",
		zap.String("query", s.Query),
		zap.Int("docs", len(s.Docs)),
		zap.Int("answer_chars", len(s.Answer)))
	p.hook.Emit(ctx, observability.EventAnswerReady, "query", s.Query, "docs", len(s.Docs))
	return nil
}
