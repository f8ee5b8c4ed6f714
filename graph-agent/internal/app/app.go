// Package app assembles the graph store, model capabilities and query
// pipeline from configuration.
package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/Divas-Gupta30/graph-rag/graph-agent/internal/api"
	"github.com/Divas-Gupta30/graph-rag/graph-agent/internal/config"
	"github.com/Divas-Gupta30/graph-rag/graph-agent/internal/extraction"
	"github.com/Divas-Gupta30/graph-rag/graph-agent/internal/graph"
	"github.com/Divas-Gupta30/graph-rag/graph-agent/internal/kg"
	"github.com/Divas-Gupta30/graph-rag/graph-agent/internal/llm"
	"github.com/Divas-Gupta30/graph-rag/graph-agent/internal/logging"
	"github.com/Divas-Gupta30/graph-rag/graph-agent/internal/observability"
	"github.com/Divas-Gupta30/graph-rag/graph-agent/internal/storage"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
)

const tracingFlushTimeout = 5 * time.Second

type App struct {
	Config       *config.Config
	Logger       *zap.Logger
	Capabilities llm.Capabilities
	Store        *kg.Store
	Extractor    *extraction.Extractor
	Pipeline     *graph.Pipeline
	Metrics      *observability.Metrics

	closer          io.Closer
	shutdownTracing func(context.Context) error
}

// New opens the configured backend, loads the persisted graph and selects
// the model provider. Metrics are registered on reg when it is not nil.
// The configured trace exporter is installed last; Close flushes it.
func New(ctx context.Context, cfg *config.Config, logger *zap.Logger, reg prometheus.Registerer) (*App, error) {
	logger = logging.OrNop(logger)

	backend, closer, err := storage.Open(ctx, cfg.Graph)
	if err != nil {
		return nil, fmt.Errorf("open graph backend: %w", err)
	}

	caps, err := llm.FromConfig(cfg.LLM, logger)
	if err != nil {
		closer.Close()
		return nil, fmt.Errorf("select model provider: %w", err)
	}

	metrics := observability.NewMetrics()
	if reg != nil {
		if err := metrics.Register(reg); err != nil {
			closer.Close()
			return nil, fmt.Errorf("register metrics: %w", err)
		}
	}
	hook := observability.Multi(
		observability.LogHook(logger.Named("events")),
		observability.TraceHook(),
		metrics.Hook(),
	)

	store := kg.NewStore(backend, kg.WithLogger(logger), kg.WithHook(hook))
	if err := store.Load(ctx); err != nil {
		closer.Close()
		return nil, err
	}

	shutdownTracing, err := observability.InitTracing(ctx, cfg.Tracing, observability.WithEnvironment(cfg.Environment))
	if err != nil {
		closer.Close()
		return nil, fmt.Errorf("init tracing: %w", err)
	}

	retriever := graph.NewRetriever(store, cfg.Retrieval.Hops, graph.WithLogger(logger), graph.WithHook(hook))
	synthesizer := graph.NewSynthesizer(caps.Synthesis, graph.WithLogger(logger), graph.WithHook(hook))

	return &App{
		Config:       cfg,
		Logger:       logger,
		Capabilities: caps,
		Store:        store,
		Extractor:    extraction.New(caps.Extraction, store, extraction.WithLogger(logger), extraction.WithHook(hook)),
		Pipeline:     graph.NewPipeline(retriever, synthesizer, graph.WithLogger(logger), graph.WithHook(hook)),
		Metrics:      metrics,
		closer:       closer,

		shutdownTracing: shutdownTracing,
	}, nil
}

// APIServer builds the HTTP API over this app. gatherer serves /metrics.
func (a *App) APIServer(gatherer prometheus.Gatherer) *api.Server {
	return api.NewServer(api.Deps{
		Store:     a.Store,
		Extractor: a.Extractor,
		Pipeline:  a.Pipeline,
		Retrieval: a.Config.Retrieval,
		Metrics:   a.Metrics,
		Gatherer:  gatherer,
		Logger:    a.Logger,
	})
}

// Ask runs one query through the pipeline.
func (a *App) Ask(ctx context.Context, query string, k, hops int) (*graph.State, error) {
	if k <= 0 {
		k = a.Config.Retrieval.TopK
	}
	return a.Pipeline.RunState(ctx, &graph.State{Query: query, K: k, Hops: hops})
}

func (a *App) Close() error {
	var errs []error
	if a.shutdownTracing != nil {
		ctx, cancel := context.WithTimeout(context.Background(), tracingFlushTimeout)
		defer cancel()
		errs = append(errs, a.shutdownTracing(ctx))
	}
	if a.closer != nil {
		errs = append(errs, a.closer.Close())
	}
	return errors.Join(errs...)
}
