package kg

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeDecodeSnapshot(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, EncodeSnapshot(&buf, appleGraph().Snapshot()))
	assert.Contains(t, buf.String(), `"links":[`)
	assert.Contains(t, buf.String(), `"directed":false`)

	snap, err := DecodeSnapshot(&buf)
	require.NoError(t, err)
	assert.Len(t, snap.Nodes, 4)
	assert.Contains(t, snap.Links, Link{Source: "Steve Jobs", Target: "Apple", Relation: "founded"})
}

func TestDecodeSnapshotAcceptsEdgesKey(t *testing.T) {
	doc := `{"directed": false, "multigraph": false, "graph": {},
		"nodes": [{"id": "A"}, {"id": "B"}],
		"edges": [{"source": "A", "target": "B", "relation": "r"}]}`

	snap, err := DecodeSnapshot(strings.NewReader(doc))
	require.NoError(t, err)
	assert.Equal(t, []Link{{Source: "A", Target: "B", Relation: "r"}}, snap.Links)
}

func TestDecodeSnapshotNumericIDs(t *testing.T) {
	doc := `{"nodes": [{"id": "iPhone"}, {"id": 2007}],
		"links": [{"source": "iPhone", "target": 2007, "relation": "released_in"}]}`

	snap, err := DecodeSnapshot(strings.NewReader(doc))
	require.NoError(t, err)
	assert.Equal(t, []Node{{ID: "iPhone"}, {ID: "2007"}}, snap.Nodes)
	assert.Equal(t, []Link{{Source: "iPhone", Target: "2007", Relation: "released_in"}}, snap.Links)

	s := NewStore(nil)
	s.Restore(snap)
	assert.True(t, s.HasEntity("2007"))
	assert.Equal(t, []string{"iPhone"}, s.Neighbors("2007", 1))
}

func TestDecodeSnapshotRejectsNonScalarIDs(t *testing.T) {
	for _, doc := range []string{
		`{"nodes": [{"id": true}]}`,
		`{"nodes": [{"id": {"name": "x"}}]}`,
		`{"links": [{"source": ["a"], "target": "b"}]}`,
	} {
		_, err := DecodeSnapshot(strings.NewReader(doc))
		assert.Error(t, err, doc)
	}
}

func TestDecodeSnapshotRejectsGarbage(t *testing.T) {
	_, err := DecodeSnapshot(strings.NewReader("not json"))
	assert.Error(t, err)
}

func TestEncodeSnapshotYAML(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, EncodeSnapshotYAML(&buf, appleGraph().Snapshot()))
	out := buf.String()
	assert.Contains(t, out, "nodes:")
	assert.Contains(t, out, "relation: released_in")
}
