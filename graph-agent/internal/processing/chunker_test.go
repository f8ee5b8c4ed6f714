package processing

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChunkTextShort(t *testing.T) {
	chunks := ChunkText("Apple released the iPhone in 2007.")
	assert.Equal(t, []string{"Apple released the iPhone in 2007."}, chunks)
}

func TestChunkTextBlank(t *testing.T) {
	assert.Empty(t, ChunkText(""))
	assert.Empty(t, ChunkText("  \n\n\n  "))
}

func TestChunkTextLongIsBounded(t *testing.T) {
	text := strings.Repeat("Steve Jobs founded Apple. ", 200)
	chunks := ChunkText(text)
	require.Greater(t, len(chunks), 1)
	for _, c := range chunks {
		assert.LessOrEqual(t, utf8.RuneCountInString(c), ChunkSize)
		assert.NotEmpty(t, c)
	}
}

func TestSplitLong(t *testing.T) {
	s := strings.Repeat("x", 25)
	parts := splitLong(s, 10, 2)
	require.Len(t, parts, 3)
	assert.Equal(t, strings.Repeat("x", 10), parts[0])
	assert.Equal(t, []string{s}, splitLong(s, 100, 10))
}

func TestDocumentsDropsBlank(t *testing.T) {
	docs := Documents("a", " ", "b")
	assert.Equal(t, []Document{{Text: "a"}, {Text: "b"}}, docs)
	assert.Equal(t, []Document{{Text: "hello"}}, ChunkDocuments("hello"))
}

func TestWithMetaStampsChunks(t *testing.T) {
	meta := Metadata{ID: "doc-1", Source: SourceUpload, Title: "notes"}
	docs := WithMeta(Documents("a", "b"), meta)

	require.Len(t, docs, 2)
	for i, d := range docs {
		require.NotNil(t, d.Meta)
		assert.Equal(t, meta, *d.Meta)
		assert.Equal(t, i, d.Chunk)
	}
	docs[0].Meta.Title = "changed"
	assert.Equal(t, "notes", docs[1].Meta.Title)
}
