package transform

import "github.com/matzehuels/transitcal/pkg/dag"

// StripAttribute returns a copy of g with attr removed from every node and
// edge. [dag.AttrConverters] clears node converters; [dag.AttrDependencies]
// clears edge column pairs, leaving edges that no longer propagate filters.
// Any other attribute is treated as a metadata key and deleted from node,
// edge and graph metadata.
func StripAttribute(g *dag.DAG, attr dag.Attribute) *dag.DAG {
	out := dag.New(nil)
	for k, v := range g.Meta() {
		if k != string(attr) {
			out.Meta()[k] = v
		}
	}

	for _, n := range g.Nodes() {
		node := dag.Node{ID: n.ID, Converters: n.Converters, Meta: stripMeta(n.Meta, attr)}
		if attr == dag.AttrConverters {
			node.Converters = nil
		}
		_ = out.AddNode(node)
	}

	for _, e := range g.Edges() {
		edge := dag.Edge{From: e.From, To: e.To, Dependencies: e.Dependencies, Meta: stripMeta(e.Meta, attr)}
		if attr == dag.AttrDependencies {
			edge.Dependencies = nil
		}
		_ = out.AddEdge(edge)
	}

	// Detach shared maps and slices from g.
	return out.Clone()
}

func stripMeta(m dag.Metadata, attr dag.Attribute) dag.Metadata {
	out := make(dag.Metadata, len(m))
	for k, v := range m {
		if k != string(attr) {
			out[k] = v
		}
	}
	return out
}
