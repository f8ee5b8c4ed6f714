package storage

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/Divas-Gupta30/graph-rag/graph-agent/internal/config"
	"github.com/Divas-Gupta30/graph-rag/graph-agent/internal/kg"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleStore(b kg.Backend) *kg.Store {
	s := kg.NewStore(b)
	s.AddTriplet("Apple", "iPhone", "released")
	s.AddTriplet("iPhone", "2007", "released_in")
	s.AddTriplet("Steve Jobs", "Apple", "founded")
	return s
}

func TestFileBackendRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "dir", "graph.json")
	ctx := context.Background()

	original := sampleStore(NewFileBackend(path))
	require.NoError(t, original.Save(ctx))
	require.FileExists(t, path)

	loaded := kg.NewStore(NewFileBackend(path))
	require.NoError(t, loaded.Load(ctx))

	assert.Equal(t, 4, loaded.NodeCount())
	assert.ElementsMatch(t, original.Entities(), loaded.Entities())
	for _, e := range original.Edges() {
		rel, ok := loaded.Relation(e.Target, e.Source)
		assert.True(t, ok)
		assert.Equal(t, e.Relation, rel)
	}
}

func TestFileBackendOverwrites(t *testing.T) {
	path := filepath.Join(t.TempDir(), "graph.json")
	ctx := context.Background()

	require.NoError(t, sampleStore(NewFileBackend(path)).Save(ctx))

	small := kg.NewStore(NewFileBackend(path))
	small.AddTriplet("A", "B", "r")
	require.NoError(t, small.Save(ctx))

	loaded := kg.NewStore(NewFileBackend(path))
	require.NoError(t, loaded.Load(ctx))
	assert.ElementsMatch(t, []string{"A", "B"}, loaded.Entities())
}

func TestFileBackendMissingFile(t *testing.T) {
	b := NewFileBackend(filepath.Join(t.TempDir(), "graph.json"))
	_, err := b.Read(context.Background())
	assert.ErrorIs(t, err, kg.ErrNoSnapshot)
}

func TestFileBackendReadsNetworkxEdgesKey(t *testing.T) {
	path := filepath.Join(t.TempDir(), "graph.json")
	doc := `{"directed": false, "multigraph": false, "graph": {}, "nodes": [{"id": "A"}, {"id": "B"}],
		"edges": [{"relation": "knows", "source": "A", "target": "B"}]}`
	require.NoError(t, os.WriteFile(path, []byte(doc), 0o644))

	s := kg.NewStore(NewFileBackend(path))
	require.NoError(t, s.Load(context.Background()))
	rel, ok := s.Relation("B", "A")
	assert.True(t, ok)
	assert.Equal(t, "knows", rel)
}

func TestFileBackendReadsNumericNodeIDs(t *testing.T) {
	path := filepath.Join(t.TempDir(), "graph.json")
	doc := `{"directed": false, "multigraph": false, "graph": {},
		"nodes": [{"id": "iPhone"}, {"id": 2007}],
		"links": [{"source": "iPhone", "target": 2007, "relation": "released_in"}]}`
	require.NoError(t, os.WriteFile(path, []byte(doc), 0o644))

	s := kg.NewStore(NewFileBackend(path))
	require.NoError(t, s.Load(context.Background()))
	assert.ElementsMatch(t, []string{"iPhone", "2007"}, s.Entities())
	rel, ok := s.Relation("2007", "iPhone")
	assert.True(t, ok)
	assert.Equal(t, "released_in", rel)
}

func TestFileBackendCorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "graph.json")
	require.NoError(t, os.WriteFile(path, []byte("{"), 0o644))

	s := kg.NewStore(NewFileBackend(path))
	assert.Error(t, s.Load(context.Background()))
}

func TestOpenFileBackend(t *testing.T) {
	backend, closer, err := Open(context.Background(), config.GraphConfig{Backend: config.BackendFile, Path: "x/graph.json"})
	require.NoError(t, err)
	defer closer.Close()
	assert.Equal(t, "x/graph.json", backend.Location())

	_, _, err = Open(context.Background(), config.GraphConfig{Backend: "neo4j"})
	assert.Error(t, err)
}
