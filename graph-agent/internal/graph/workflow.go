// Package graph runs the query workflow: retrieve snippets from the
// knowledge graph, then synthesize an answer from them.
package graph

import (
	"context"

	"github.com/Divas-Gupta30/graph-rag/graph-agent/internal/logging"
	"github.com/Divas-Gupta30/graph-rag/graph-agent/internal/observability"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.uber.org/zap"
)

const tracerName = "graph-rag.graph"

// State flows through the workflow nodes. Hops <= 0 uses the retriever's
// default radius.
type State struct {
	Query  string
	K      int
	Hops   int
	Docs   []string
	Answer string
}

// Node is one step of the workflow.
type Node func(ctx context.Context, s *State) error

type Option func(*options)

type options struct {
	logger *zap.Logger
	hook   observability.Hook
}

func WithLogger(logger *zap.Logger) Option {
	return func(o *options) { o.logger = logger }
}

func WithHook(hook observability.Hook) Option {
	return func(o *options) { o.hook = hook }
}

func buildOptions(opts []Option) options {
	var o options
	for _, fn := range opts {
		fn(&o)
	}
	o.logger = logging.OrNop(o.logger)
	return o
}

// Pipeline is retrieve, synthesize, answer.
type Pipeline struct {
	retriever   *Retriever
	synthesizer *Synthesizer
	nodes       []Node
	logger      *zap.Logger
	hook        observability.Hook
}

func NewPipeline(r *Retriever, s *Synthesizer, opts ...Option) *Pipeline {
	o := buildOptions(opts)
	p := &Pipeline{retriever: r, synthesizer: s, logger: o.logger.Named("pipeline"), hook: o.hook}
	p.nodes = []Node{r.Node, s.Node, p.answerNode}
	return p
}

// Run answers query from at most k snippets. It always produces an answer.
func (p *Pipeline) Run(ctx context.Context, query string, k int) (*State, error) {
	return p.RunState(ctx, &State{Query: query, K: k})
}

// RunState runs the workflow inside a "graph.query" span; hook events
// emitted along the way land on that span.
func (p *Pipeline) RunState(ctx context.Context, s *State) (*State, error) {
	ctx, span := otel.Tracer(tracerName).Start(ctx, "graph.query")
	defer span.End()
	span.SetAttributes(attribute.Int("query.k", s.K), attribute.Int("query.hops", s.Hops))

	if err := RunWorkflow(ctx, s, p.nodes...); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return s, err
	}
	span.SetAttributes(attribute.Int("query.docs", len(s.Docs)))
	return s, nil
}

func (p *Pipeline) Retriever() *Retriever { return p.retriever }

// RunWorkflow applies nodes to s in order, stopping at the first error.
func RunWorkflow(ctx context.Context, s *State, nodes ...Node) error {
	for _, n := range nodes {
		if err := n(ctx, s); err != nil {
			return err
		}
	}
	return nil
}
