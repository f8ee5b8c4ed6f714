package kg

import (
	"encoding/json"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"
)

// Snapshot is the node-link form of the whole graph.
type Snapshot struct {
	Directed   bool           `json:"directed" yaml:"directed"`
	Multigraph bool           `json:"multigraph" yaml:"multigraph"`
	Graph      map[string]any `json:"graph" yaml:"graph"`
	Nodes      []Node         `json:"nodes" yaml:"nodes"`
	Links      []Link         `json:"links" yaml:"links"`
}

type Node struct {
	ID string `json:"id" yaml:"id"`
}

type Link struct {
	Source   string `json:"source" yaml:"source"`
	Target   string `json:"target" yaml:"target"`
	Relation string `json:"relation" yaml:"relation"`
}

func newSnapshot(nodes, links int) *Snapshot {
	return &Snapshot{
		Graph: map[string]any{},
		Nodes: make([]Node, 0, nodes),
		Links: make([]Link, 0, links),
	}
}

// UnmarshalJSON accepts both "links" and "edges" for the edge list, and
// numeric node ids, which are kept as their literal text.
func (s *Snapshot) UnmarshalJSON(data []byte) error {
	type rawNode struct {
		ID nodeID `json:"id"`
	}
	type rawLink struct {
		Source   nodeID `json:"source"`
		Target   nodeID `json:"target"`
		Relation string `json:"relation"`
	}
	var aux struct {
		Directed   bool           `json:"directed"`
		Multigraph bool           `json:"multigraph"`
		Graph      map[string]any `json:"graph"`
		Nodes      []rawNode      `json:"nodes"`
		Links      []rawLink      `json:"links"`
		Edges      []rawLink      `json:"edges"`
	}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	s.Directed = aux.Directed
	s.Multigraph = aux.Multigraph
	s.Graph = aux.Graph
	s.Nodes = make([]Node, 0, len(aux.Nodes))
	for _, n := range aux.Nodes {
		s.Nodes = append(s.Nodes, Node{ID: string(n.ID)})
	}
	s.Links = make([]Link, 0, len(aux.Links)+len(aux.Edges))
	for _, l := range append(aux.Links, aux.Edges...) {
		s.Links = append(s.Links, Link{Source: string(l.Source), Target: string(l.Target), Relation: l.Relation})
	}
	return nil
}

// nodeID decodes a JSON string or number.
type nodeID string

func (id *nodeID) UnmarshalJSON(data []byte) error {
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*id = nodeID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("node id must be a string or number, got %s", data)
	}
	*id = nodeID(n.String())
	return nil
}

// EncodeSnapshot writes snap as JSON.
func EncodeSnapshot(w io.Writer, snap *Snapshot) error {
	if err := json.NewEncoder(w).Encode(snap); err != nil {
		return fmt.Errorf("encode graph snapshot: %w", err)
	}
	return nil
}

// DecodeSnapshot reads a JSON snapshot.
func DecodeSnapshot(r io.Reader) (*Snapshot, error) {
	var snap Snapshot
	if err := json.NewDecoder(r).Decode(&snap); err != nil {
		return nil, fmt.Errorf("decode graph snapshot: %w", err)
	}
	return &snap, nil
}

// EncodeSnapshotYAML writes snap as YAML, for human inspection.
func EncodeSnapshotYAML(w io.Writer, snap *Snapshot) error {
	encoder := yaml.NewEncoder(w)
	encoder.SetIndent(2)
	defer encoder.Close()

	if err := encoder.Encode(snap); err != nil {
		return fmt.Errorf("encode graph snapshot as YAML: %w", err)
	}
	return nil
}
