package kg

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/Divas-Gupta30/graph-rag/graph-agent/internal/logging"
	"github.com/Divas-Gupta30/graph-rag/graph-agent/internal/observability"
	"go.uber.org/zap"
)

// Edge is a labelled, undirected relation between two entities. Source and
// Target keep the orientation of the first triplet that created the edge.
type Edge struct {
	Source   string
	Target   string
	Relation string
}

type pairKey struct{ a, b string }

func keyOf(x, y string) pairKey {
	if x > y {
		x, y = y, x
	}
	return pairKey{a: x, b: y}
}

type Option func(*Store)

func WithLogger(logger *zap.Logger) Option {
	return func(s *Store) { s.logger = logging.OrNop(logger).Named("kg") }
}

func WithHook(hook observability.Hook) Option {
	return func(s *Store) { s.hook = hook }
}

// Store is an in-memory undirected simple graph backed by a Backend.
type Store struct {
	mu sync.RWMutex

	// adjacency in insertion order, so traversal output is reproducible
	adj   map[string][]string
	nodes []string

	edges     map[pairKey]*Edge
	edgeOrder []pairKey

	backend Backend
	logger  *zap.Logger
	hook    observability.Hook
}

func NewStore(backend Backend, opts ...Option) *Store {
	s := &Store{
		adj:     make(map[string][]string),
		edges:   make(map[pairKey]*Edge),
		backend: backend,
		logger:  zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// AddTriplet inserts both entities if absent and sets the label of the edge
// between them, replacing any previous label.
func (s *Store) AddTriplet(source, target, relation string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.addTriplet(source, target, relation)
}

func (s *Store) addTriplet(source, target, relation string) {
	s.addNode(source)
	s.addNode(target)

	key := keyOf(source, target)
	if e, ok := s.edges[key]; ok {
		e.Relation = relation
		return
	}
	s.edges[key] = &Edge{Source: source, Target: target, Relation: relation}
	s.edgeOrder = append(s.edgeOrder, key)

	s.adj[source] = append(s.adj[source], target)
	if source != target {
		s.adj[target] = append(s.adj[target], source)
	}
}

func (s *Store) addNode(id string) {
	if _, ok := s.adj[id]; ok {
		return
	}
	s.adj[id] = nil
	s.nodes = append(s.nodes, id)
}

// Neighbors returns every entity reachable from entity in 1..hops steps, in
// discovery order, excluding entity itself. It never returns nil.
func (s *Store) Neighbors(entity string, hops int) []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	found := []string{}
	if _, ok := s.adj[entity]; !ok || hops <= 0 {
		return found
	}

	visited := map[string]struct{}{entity: {}}
	layer := []string{entity}
	for i := 0; i < hops && len(layer) > 0; i++ {
		var next []string
		for _, node := range layer {
			for _, nb := range s.adj[node] {
				if _, seen := visited[nb]; seen {
					continue
				}
				visited[nb] = struct{}{}
				next = append(next, nb)
				found = append(found, nb)
			}
		}
		layer = next
	}
	return found
}

func (s *Store) HasEntity(entity string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.adj[entity]
	return ok
}

// Relation reports the label of the edge between a and b in either direction.
func (s *Store) Relation(a, b string) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.edges[keyOf(a, b)]
	if !ok {
		return "", false
	}
	return e.Relation, true
}

func (s *Store) Entities() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]string(nil), s.nodes...)
}

func (s *Store) Edges() []Edge {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Edge, 0, len(s.edgeOrder))
	for _, k := range s.edgeOrder {
		out = append(out, *s.edges[k])
	}
	return out
}

func (s *Store) NodeCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.nodes)
}

func (s *Store) EdgeCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.edgeOrder)
}

// Snapshot copies the full graph into node-link form.
func (s *Store) Snapshot() *Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snap := newSnapshot(len(s.nodes), len(s.edgeOrder))
	for _, id := range s.nodes {
		snap.Nodes = append(snap.Nodes, Node{ID: id})
	}
	for _, k := range s.edgeOrder {
		e := s.edges[k]
		snap.Links = append(snap.Links, Link{Source: e.Source, Target: e.Target, Relation: e.Relation})
	}
	return snap
}

// Subgraph returns the graph induced by the given entities. Names that are
// not in the graph are ignored.
func (s *Store) Subgraph(entities []string) *Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	keep := make(map[string]struct{}, len(entities))
	snap := newSnapshot(len(entities), 0)
	for _, id := range entities {
		if _, ok := s.adj[id]; !ok {
			continue
		}
		if _, dup := keep[id]; dup {
			continue
		}
		keep[id] = struct{}{}
		snap.Nodes = append(snap.Nodes, Node{ID: id})
	}
	for _, k := range s.edgeOrder {
		_, okA := keep[k.a]
		_, okB := keep[k.b]
		if okA && okB {
			e := s.edges[k]
			snap.Links = append(snap.Links, Link{Source: e.Source, Target: e.Target, Relation: e.Relation})
		}
	}
	return snap
}

// Restore replaces the whole graph with the contents of snap. Links naming
// undeclared nodes create them.
func (s *Store) Restore(snap *Snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.adj = make(map[string][]string, len(snap.Nodes))
	s.nodes = make([]string, 0, len(snap.Nodes))
	s.edges = make(map[pairKey]*Edge, len(snap.Links))
	s.edgeOrder = make([]pairKey, 0, len(snap.Links))

	for _, n := range snap.Nodes {
		s.addNode(n.ID)
	}
	for _, l := range snap.Links {
		s.addTriplet(l.Source, l.Target, l.Relation)
	}
}

func (s *Store) Location() string {
	if s.backend == nil {
		return ""
	}
	return s.backend.Location()
}

var errNoBackend = errors.New("kg: store has no backend")

// Save writes the whole graph to the backend, replacing what was there.
func (s *Store) Save(ctx context.Context) error {
	if s.backend == nil {
		return errNoBackend
	}
	snap := s.Snapshot()
	if err := s.backend.Write(ctx, snap); err != nil {
		return fmt.Errorf("save graph to %s: %w", s.backend.Location(), err)
	}

	s.logger.Info("graph saved",
		zap.String("location", s.backend.Location()),
		zap.Int("nodes", len(snap.Nodes)),
		zap.Int("edges", len(snap.Links)))
	s.hook.Emit(ctx, observability.EventGraphSaved,
		"location", s.backend.Location(), "nodes", len(snap.Nodes), "edges", len(snap.Links))
	return nil
}

// Load replaces the in-memory graph with the persisted one. When nothing has
// been persisted yet the in-memory graph is left as it is and no error is
// returned.
func (s *Store) Load(ctx context.Context) error {
	if s.backend == nil {
		return errNoBackend
	}
	snap, err := s.backend.Read(ctx)
	if errors.Is(err, ErrNoSnapshot) {
		s.logger.Warn("graph file not found, starting empty", zap.String("location", s.backend.Location()))
		return nil
	}
	if err != nil {
		return fmt.Errorf("load graph from %s: %w", s.backend.Location(), err)
	}

	s.Restore(snap)
	nodes, edges := s.NodeCount(), s.EdgeCount()
	s.logger.Info("graph loaded",
		zap.String("location", s.backend.Location()),
		zap.Int("nodes", nodes),
		zap.Int("edges", edges))
	s.hook.Emit(ctx, observability.EventGraphLoaded,
		"location", s.backend.Location(), "nodes", nodes, "edges", edges)
	return nil
}
