package graph

import (
	"context"
	"sync"

	"github.com/Divas-Gupta30/graph-rag/graph-agent/internal/kg"
	"github.com/Divas-Gupta30/graph-rag/graph-agent/internal/observability"
	"go.uber.org/zap"
)

const DefaultTopK = 3

// Retriever turns a query into the entity snippets found around the
// entities it names.
type Retriever struct {
	store    *kg.Store
	searcher *kg.Searcher
	logger   *zap.Logger
	hook     observability.Hook

	loadMu sync.Mutex
	loaded bool
}

// NewRetriever searches store with the given radius (<= 0 selects
// kg.DefaultSearchHops).
func NewRetriever(store *kg.Store, hops int, opts ...Option) *Retriever {
	o := buildOptions(opts)
	return &Retriever{
		store:    store,
		searcher: kg.NewSearcher(store, hops),
		logger:   o.logger.Named("retriever"),
		hook:     o.hook,
	}
}

// Run returns the first k snippets for query. An empty graph is loaded from
// its backend before the first query; a failed load is retried next query.
func (r *Retriever) Run(ctx context.Context, query string, k int) []string {
	return r.RunHops(ctx, query, k, 0)
}

// RunHops is Run with an explicit search radius; hops <= 0 uses the default.
func (r *Retriever) RunHops(ctx context.Context, query string, k, hops int) []string {
	r.ensureLoaded(ctx)

	var entities []string
	if hops > 0 {
		entities = r.searcher.SearchHops(query, hops)
	} else {
		entities = r.searcher.Search(query)
	}

	docs := make([]string, 0, min(max(k, 0), len(entities)))
	for _, e := range entities {
		if len(docs) >= k {
			break
		}
		docs = append(docs, e)
	}

	if len(docs) == 0 {
		r.logger.Info("No graph neighbors found for query", zap.String("query", query))
		r.hook.Emit(ctx, observability.EventRetrieveEmpty, "query", query)
		return docs
	}
	r.hook.Emit(ctx, observability.EventRetrieveCompleted, "query", query, "docs", len(docs))
	return docs
}

// Node stores the retrieved snippets in s.Docs. A zero K uses DefaultTopK.
func (r *Retriever) Node(ctx context.Context, s *State) error {
	k := s.K
	if k == 0 {
		k = DefaultTopK
	}
	s.Docs = r.RunHops(ctx, s.Query, k, s.Hops)
	return nil
}

// MatchedEntities lists the query tokens that name graph entities.
func (r *Retriever) MatchedEntities(query string) []string {
	return r.searcher.MatchedEntities(query)
}

func (r *Retriever) ensureLoaded(ctx context.Context) {
	r.loadMu.Lock()
	defer r.loadMu.Unlock()
	if r.loaded {
		return
	}
	if r.store.NodeCount() > 0 || r.store.Location() == "" {
		r.loaded = true
		return
	}
	if err := r.store.Load(ctx); err != nil {
		r.logger.Warn("could not load graph", zap.Error(err))
		return
	}
	r.loaded = true
}
