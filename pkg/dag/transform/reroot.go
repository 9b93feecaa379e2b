package transform

import "github.com/matzehuels/transitcal/pkg/dag"

// Reroot returns a copy of g in which every breadth-first tree edge reachable
// from root is reversed. Reversed edges keep their dependencies (with column
// pairs swapped) and metadata. Non-tree edges are left alone.
//
// If root is not in g, the copy is returned unchanged.
func Reroot(g *dag.DAG, root string) *dag.DAG {
	out := g.Clone()
	if !g.HasNode(root) {
		return out
	}

	for _, e := range bfsTreeEdges(g, root) {
		out.RemoveEdge(e.From, e.To)
		_ = out.AddEdge(e.Reversed())
	}
	return out
}

// bfsTreeEdges lists the edges through which a breadth-first search from
// root discovers each node, computed on g before any edge is reversed.
func bfsTreeEdges(g *dag.DAG, root string) []dag.Edge {
	visited := map[string]bool{root: true}
	queue := []string{root}
	var tree []dag.Edge

	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]
		for _, child := range g.Children(id) {
			if visited[child] {
				continue
			}
			visited[child] = true
			e, _ := g.Edge(id, child)
			tree = append(tree, e)
			queue = append(queue, child)
		}
	}
	return tree
}
