package io_test

import (
	"bytes"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/matzehuels/transitcal/pkg/dag"
	fterrors "github.com/matzehuels/transitcal/pkg/errors"
	"github.com/matzehuels/transitcal/pkg/feed"
	graphio "github.com/matzehuels/transitcal/pkg/io"
)

func TestRoundTrip(t *testing.T) {
	orig := feed.DefaultGraph()

	var buf bytes.Buffer
	if err := graphio.WriteJSON(orig, &buf); err != nil {
		t.Fatal(err)
	}
	got, err := graphio.ReadJSON(&buf, feed.LookupConverter)
	if err != nil {
		t.Fatal(err)
	}

	if !reflect.DeepEqual(got.NodeIDs(), orig.NodeIDs()) {
		t.Errorf("nodes = %v, want %v", got.NodeIDs(), orig.NodeIDs())
	}
	if got.EdgeCount() != orig.EdgeCount() {
		t.Fatalf("edges = %d, want %d", got.EdgeCount(), orig.EdgeCount())
	}
	for _, e := range orig.Edges() {
		ge, ok := got.Edge(e.From, e.To)
		if !ok {
			t.Errorf("edge %s->%s missing", e.From, e.To)
			continue
		}
		if !reflect.DeepEqual(ge.Dependencies, e.Dependencies) {
			t.Errorf("edge %s->%s columns = %v, want %v", e.From, e.To, ge.Dependencies, e.Dependencies)
		}
	}
	for _, n := range orig.Nodes() {
		gn, _ := got.Node(n.ID)
		if !reflect.DeepEqual(gn.Converters.Columns(), n.Converters.Columns()) {
			t.Errorf("%s converters = %v, want %v", n.ID, gn.Converters.Columns(), n.Converters.Columns())
		}
	}
	if got.Meta()["name"] != "gtfs" {
		t.Errorf("meta = %v", got.Meta())
	}
}

func TestReadJSON_NilLookupDropsConverters(t *testing.T) {
	in := `{"nodes":[{"id":"trips.txt","converters":["direction_id"]}],"edges":[]}`
	g, err := graphio.ReadJSON(strings.NewReader(in), nil)
	if err != nil {
		t.Fatal(err)
	}
	n, _ := g.Node("trips.txt")
	if len(n.Converters) != 0 {
		t.Errorf("converters = %v, want none", n.Converters.Columns())
	}
}

func TestReadJSON_Errors(t *testing.T) {
	tests := []struct {
		name string
		in   string
	}{
		{"malformed", `{"nodes": [`},
		{"duplicate node", `{"nodes":[{"id":"a.txt"},{"id":"a.txt"}],"edges":[]}`},
		{"unknown edge node", `{"nodes":[{"id":"a.txt"}],"edges":[{"from":"a.txt","to":"b.txt"}]}`},
		{"unknown converter", `{"nodes":[{"id":"trips.txt","converters":["nope"]}],"edges":[]}`},
		{"cycle", `{"nodes":[{"id":"a.txt"},{"id":"b.txt"}],"edges":[{"from":"a.txt","to":"b.txt"},{"from":"b.txt","to":"a.txt"}]}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := graphio.ReadJSON(strings.NewReader(tt.in), feed.LookupConverter)
			if !fterrors.Is(err, fterrors.ErrCodeInvalidGraph) {
				t.Errorf("ReadJSON() = %v, want INVALID_GRAPH", err)
			}
		})
	}
}

func TestImportExport(t *testing.T) {
	g := dag.New(nil)
	_ = g.AddNode(dag.Node{ID: "trips.txt"})
	_ = g.AddNode(dag.Node{ID: "routes.txt"})
	_ = g.AddEdge(dag.Edge{From: "trips.txt", To: "routes.txt", Dependencies: []dag.ColumnPair{{From: "route_id", To: "route_id"}}})

	path := filepath.Join(t.TempDir(), "graph.json")
	if err := graphio.ExportJSON(g, path); err != nil {
		t.Fatal(err)
	}
	got, err := graphio.ImportJSON(path, nil)
	if err != nil {
		t.Fatal(err)
	}
	if e, ok := got.Edge("trips.txt", "routes.txt"); !ok || !e.PropagatesFilter() {
		t.Errorf("edge = %+v, %v", e, ok)
	}

	_, err = graphio.ImportJSON(filepath.Join(t.TempDir(), "missing.json"), nil)
	if !fterrors.Is(err, fterrors.ErrCodeFileNotFound) {
		t.Errorf("ImportJSON(missing) = %v", err)
	}
}
