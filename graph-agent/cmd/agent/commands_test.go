package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/Divas-Gupta30/graph-rag/graph-agent/internal/app"
	"github.com/Divas-Gupta30/graph-rag/graph-agent/internal/config"
	"github.com/Divas-Gupta30/graph-rag/graph-agent/internal/ingestion"
	"github.com/Divas-Gupta30/graph-rag/graph-agent/internal/kg"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteSnapshot(t *testing.T) {
	store := kg.NewStore(nil)
	store.AddTriplet("Apple", "iPhone", "released")
	snap := store.Snapshot()

	var js bytes.Buffer
	require.NoError(t, writeSnapshot(&js, snap, "json"))
	assert.Contains(t, js.String(), `"relation":"released"`)

	var y bytes.Buffer
	require.NoError(t, writeSnapshot(&y, snap, "yaml"))
	assert.Contains(t, y.String(), "relation: released")

	assert.Error(t, writeSnapshot(&bytes.Buffer{}, snap, "xml"))
}

func TestCommandsRegistered(t *testing.T) {
	names := map[string]bool{}
	for _, c := range rootCmd.Commands() {
		names[c.Name()] = true
	}
	for _, want := range []string{"index", "query", "neighbors", "export", "drive-auth"} {
		assert.True(t, names[want], want)
	}
	assert.NotNil(t, indexCmd.Flags().Lookup("rebuild"))
}

func TestIndexSourcesAccumulatesOrRebuilds(t *testing.T) {
	ctx := context.Background()
	cfg := config.Default()
	cfg.Graph.Path = filepath.Join(t.TempDir(), "graph.json")
	cfg.LLM.Provider = config.ProviderNone

	docsDir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(docsDir, "notes.txt"), []byte("Tim Cook leads Apple."), 0o644))
	sources := func() []ingestion.Source { return []ingestion.Source{ingestion.NewLocalSource(docsDir, nil)} }

	seed, err := app.New(ctx, cfg, nil, nil)
	require.NoError(t, err)
	seed.Store.AddTriplet("Apple", "iPhone", "released")
	require.NoError(t, seed.Store.Save(ctx))
	require.NoError(t, seed.Close())

	reopen := func() *app.App {
		a, err := app.New(ctx, cfg, nil, nil)
		require.NoError(t, err)
		t.Cleanup(func() { a.Close() })
		return a
	}

	a := reopen()
	res, err := indexSources(ctx, a, sources(), false)
	require.NoError(t, err)
	assert.Equal(t, 1, res.chunks)
	assert.Equal(t, 2, reopen().Store.NodeCount())

	a = reopen()
	_, err = indexSources(ctx, a, sources(), true)
	require.NoError(t, err)
	assert.Zero(t, a.Store.NodeCount())
	assert.Zero(t, reopen().Store.NodeCount())
}
