package ingestion

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestLoadLocalFiles(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "a.txt"), "a")
	writeFile(t, filepath.Join(root, "nested", "b.MD"), "b")
	writeFile(t, filepath.Join(root, "c.go"), "package c")

	paths, err := LoadLocalFiles(root)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{filepath.Join(root, "a.txt"), filepath.Join(root, "nested", "b.MD")}, paths)
}

func TestExtractText(t *testing.T) {
	root := t.TempDir()
	p := filepath.Join(root, "apple.md")
	writeFile(t, p, "# Apple\nApple released the iPhone.")
	text, err := ExtractText(p)
	require.NoError(t, err)
	assert.Equal(t, "# Apple\nApple released the iPhone.", text)

	_, err = ExtractText(filepath.Join(root, "x.docx"))
	assert.ErrorIs(t, err, ErrUnsupportedType)
}

func TestLocalSourceCollect(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "short.txt"), "Steve Jobs founded Apple.")
	writeFile(t, filepath.Join(root, "long.txt"), strings.Repeat("Apple released the iPhone in 2007. ", 100))
	writeFile(t, filepath.Join(root, "empty.txt"), "   ")

	src := NewLocalSource(root, nil)
	fetched, err := src.Fetch(context.Background())
	require.NoError(t, err)
	assert.Len(t, fetched, 3)
	for _, d := range fetched {
		assert.NotEmpty(t, d.Meta.ID)
		assert.Equal(t, "local", d.Meta.Source)
	}

	docs, err := Collect(context.Background(), src)
	require.NoError(t, err)
	assert.Greater(t, len(docs), 2)
	chunksByID := map[string]int{}
	for _, d := range docs {
		assert.NotEmpty(t, strings.TrimSpace(d.Text))
		require.NotNil(t, d.Meta)
		assert.Equal(t, "local", d.Meta.Source)
		assert.NotEmpty(t, d.Meta.Path)
		assert.Equal(t, chunksByID[d.Meta.ID], d.Chunk)
		chunksByID[d.Meta.ID]++
	}
	assert.Len(t, chunksByID, 2)
}

func TestLocalSourceMissingRoot(t *testing.T) {
	_, err := NewLocalSource(filepath.Join(t.TempDir(), "nope"), nil).Fetch(context.Background())
	assert.Error(t, err)
}
