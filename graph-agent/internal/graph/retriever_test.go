package graph

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/Divas-Gupta30/graph-rag/graph-agent/internal/kg"
	"github.com/Divas-Gupta30/graph-rag/graph-agent/internal/observability"
	"github.com/Divas-Gupta30/graph-rag/graph-agent/internal/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func appleStore(backend kg.Backend) *kg.Store {
	s := kg.NewStore(backend)
	s.AddTriplet("Apple", "iPhone", "released")
	s.AddTriplet("iPhone", "2007", "released_in")
	s.AddTriplet("Steve Jobs", "Apple", "founded")
	return s
}

func TestRetrieverRun(t *testing.T) {
	r := NewRetriever(appleStore(nil), 0)
	docs := r.Run(context.Background(), "Apple", 10)
	assert.ElementsMatch(t, []string{"iPhone", "Steve Jobs", "2007"}, docs)
}

func TestRetrieverTruncatesToK(t *testing.T) {
	r := NewRetriever(appleStore(nil), 0)
	assert.Len(t, r.Run(context.Background(), "Apple", 2), 2)
	assert.Empty(t, r.Run(context.Background(), "Apple", 0))
	assert.Empty(t, r.Run(context.Background(), "Apple", -1))
}

func TestRetrieverHops(t *testing.T) {
	r := NewRetriever(appleStore(nil), 0)
	assert.ElementsMatch(t, []string{"iPhone", "Steve Jobs"}, r.RunHops(context.Background(), "Apple", 10, 1))
}

func TestRetrieverEmptyEmitsEvent(t *testing.T) {
	var events []string
	hook := observability.Hook(func(_ context.Context, ev observability.Event) { events = append(events, ev.Name) })

	r := NewRetriever(appleStore(nil), 0, WithHook(hook))
	docs := r.Run(context.Background(), "apple banana", 3)
	assert.NotNil(t, docs)
	assert.Empty(t, docs)
	assert.Equal(t, []string{observability.EventRetrieveEmpty}, events)
}

func TestRetrieverLoadsEmptyGraph(t *testing.T) {
	path := filepath.Join(t.TempDir(), "graph.json")
	require.NoError(t, appleStore(storage.NewFileBackend(path)).Save(context.Background()))

	store := kg.NewStore(storage.NewFileBackend(path))
	r := NewRetriever(store, 0)
	docs := r.Run(context.Background(), "Steve", 3)
	assert.Empty(t, docs)
	assert.Equal(t, 4, store.NodeCount())

	assert.Contains(t, r.Run(context.Background(), "Apple", 3), "iPhone")
}

func TestRetrieverMissingGraphFile(t *testing.T) {
	store := kg.NewStore(storage.NewFileBackend(filepath.Join(t.TempDir(), "missing", "graph.json")))
	r := NewRetriever(store, 0)
	assert.Empty(t, r.Run(context.Background(), "Apple", 3))
}

// countingBackend counts reads and serves snap, or readErr when set.
type countingBackend struct {
	reads   int
	snap    *kg.Snapshot
	readErr error
}

func (c *countingBackend) Read(context.Context) (*kg.Snapshot, error) {
	c.reads++
	if c.readErr != nil {
		return nil, c.readErr
	}
	if c.snap == nil {
		return nil, kg.ErrNoSnapshot
	}
	return c.snap, nil
}

func (c *countingBackend) Write(_ context.Context, snap *kg.Snapshot) error {
	c.snap = snap
	return nil
}

func (c *countingBackend) Location() string { return "counting" }

func TestRetrieverLoadsMissingGraphOnce(t *testing.T) {
	backend := &countingBackend{}
	r := NewRetriever(kg.NewStore(backend), 0)

	for range 3 {
		assert.Empty(t, r.Run(context.Background(), "Apple", 3))
	}
	assert.Equal(t, 1, backend.reads)
}

func TestRetrieverDoesNotReloadAfterLoad(t *testing.T) {
	backend := &countingBackend{snap: appleStore(nil).Snapshot()}
	store := kg.NewStore(backend)
	r := NewRetriever(store, 0)

	assert.Contains(t, r.Run(context.Background(), "Apple", 3), "iPhone")
	store.Restore(&kg.Snapshot{})
	assert.Empty(t, r.Run(context.Background(), "Apple", 3))
	assert.Equal(t, 1, backend.reads)
}

func TestRetrieverRetriesFailedLoad(t *testing.T) {
	backend := &countingBackend{readErr: errors.New("connection refused")}
	r := NewRetriever(kg.NewStore(backend), 0)

	assert.Empty(t, r.Run(context.Background(), "Apple", 3))
	assert.Equal(t, 1, backend.reads)

	backend.readErr = nil
	backend.snap = appleStore(nil).Snapshot()
	assert.Contains(t, r.Run(context.Background(), "Apple", 3), "iPhone")
	assert.Equal(t, 2, backend.reads)
}
