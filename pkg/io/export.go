package io

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/matzehuels/transitcal/pkg/dag"
)

type graph struct {
	Meta  dag.Metadata `json:"meta,omitempty"`
	Nodes []node       `json:"nodes"`
	Edges []edge       `json:"edges"`
}

type node struct {
	ID         string       `json:"id"`
	Converters []string     `json:"converters,omitempty"`
	Meta       dag.Metadata `json:"meta,omitempty"`
}

type edge struct {
	From    string       `json:"from"`
	To      string       `json:"to"`
	Columns []columnPair `json:"columns,omitempty"`
	Meta    dag.Metadata `json:"meta,omitempty"`
}

type columnPair struct {
	From string `json:"from"`
	To   string `json:"to"`
}

// WriteJSON encodes a DAG as JSON and writes it to w.
// Converters are written as the list of converted column names; the
// functions themselves are restored by [ReadJSON] through a lookup.
func WriteJSON(g *dag.DAG, w io.Writer) error {
	out := graph{
		Meta:  g.Meta(),
		Nodes: make([]node, 0, g.NodeCount()),
		Edges: make([]edge, 0, g.EdgeCount()),
	}

	for _, n := range g.Nodes() {
		nd := node{ID: n.ID}
		if len(n.Converters) > 0 {
			nd.Converters = n.Converters.Columns()
		}
		if len(n.Meta) > 0 {
			nd.Meta = n.Meta
		}
		out.Nodes = append(out.Nodes, nd)
	}
	for _, e := range g.Edges() {
		ed := edge{From: e.From, To: e.To}
		for _, p := range e.Dependencies {
			ed.Columns = append(ed.Columns, columnPair{From: p.From, To: p.To})
		}
		if len(e.Meta) > 0 {
			ed.Meta = e.Meta
		}
		out.Edges = append(out.Edges, ed)
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(out); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return nil
}

// ExportJSON writes a DAG to a JSON file at path.
// This is a convenience wrapper around [WriteJSON] for file-based output.
func ExportJSON(g *dag.DAG, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()
	return WriteJSON(g, f)
}
