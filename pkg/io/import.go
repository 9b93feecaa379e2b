package io

import (
	"encoding/json"
	"errors"
	"io"
	"io/fs"
	"os"

	"github.com/matzehuels/transitcal/pkg/dag"
	fterrors "github.com/matzehuels/transitcal/pkg/errors"
)

// ConverterLookup returns the converter for a column of a table.
type ConverterLookup func(table, column string) (dag.Converter, bool)

// ReadJSON decodes a JSON graph from r into a DAG.
//
// The input must be a JSON object with "nodes" and "edges" arrays:
//
//	{
//	  "nodes": [{"id": "trips.txt", "converters": ["direction_id"]}, {"id": "routes.txt"}],
//	  "edges": [{"from": "trips.txt", "to": "routes.txt", "columns": [{"from": "route_id", "to": "route_id"}]}]
//	}
//
// Converted columns are resolved through lookup. A nil lookup drops them.
// Every failure, including a cycle, is an INVALID_GRAPH error naming the
// offending node or edge.
func ReadJSON(r io.Reader, lookup ConverterLookup) (*dag.DAG, error) {
	var data graph
	if err := json.NewDecoder(r).Decode(&data); err != nil {
		return nil, fterrors.Wrap(fterrors.ErrCodeInvalidGraph, err, "decode graph")
	}

	g := dag.New(data.Meta)
	for _, n := range data.Nodes {
		nd := dag.Node{ID: n.ID, Meta: n.Meta}
		if lookup != nil && len(n.Converters) > 0 {
			nd.Converters = make(dag.Converters, len(n.Converters))
			for _, col := range n.Converters {
				conv, ok := lookup(n.ID, col)
				if !ok {
					return nil, fterrors.New(fterrors.ErrCodeInvalidGraph, "node %s: no converter for column %s", n.ID, col)
				}
				nd.Converters[col] = conv
			}
		}
		if err := g.AddNode(nd); err != nil {
			return nil, fterrors.Wrap(fterrors.ErrCodeInvalidGraph, err, "node %s", n.ID)
		}
	}
	for _, e := range data.Edges {
		ed := dag.Edge{From: e.From, To: e.To, Meta: e.Meta}
		for _, p := range e.Columns {
			ed.Dependencies = append(ed.Dependencies, dag.ColumnPair{From: p.From, To: p.To})
		}
		if err := g.AddEdge(ed); err != nil {
			return nil, fterrors.Wrap(fterrors.ErrCodeInvalidGraph, err, "edge %s->%s", e.From, e.To)
		}
	}

	if err := g.Validate(); err != nil {
		return nil, fterrors.Wrap(fterrors.ErrCodeInvalidGraph, err, "invalid graph")
	}
	return g, nil
}

// ImportJSON reads a JSON file at path and returns the decoded DAG.
// See [ReadJSON] for the format and error behavior.
func ImportJSON(path string, lookup ConverterLookup) (*dag.DAG, error) {
	f, err := os.Open(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fterrors.New(fterrors.ErrCodeFileNotFound, "graph file not found: %s", path)
	}
	if err != nil {
		return nil, fterrors.Wrap(fterrors.ErrCodeInvalidInput, err, "open %s", path)
	}
	defer f.Close()
	return ReadJSON(f, lookup)
}
