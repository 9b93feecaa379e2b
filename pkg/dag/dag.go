package dag

import (
	"errors"
	"maps"
	"slices"
)

var (
	// ErrInvalidNodeID is returned by [DAG.AddNode] when the node ID is empty.
	// All nodes must have non-empty identifiers (table file names).
	ErrInvalidNodeID = errors.New("node ID must not be empty")

	// ErrDuplicateNodeID is returned by [DAG.AddNode] when a node with the
	// same ID already exists in the graph.
	ErrDuplicateNodeID = errors.New("duplicate node ID")

	// ErrUnknownSourceNode is returned by [DAG.AddEdge] when the From node
	// does not exist.
	ErrUnknownSourceNode = errors.New("unknown source node")

	// ErrUnknownTargetNode is returned by [DAG.AddEdge] when the To node
	// does not exist in the graph.
	ErrUnknownTargetNode = errors.New("unknown target node")

	// ErrDuplicateEdge is returned by [DAG.AddEdge] when an edge between the
	// same ordered pair of nodes already exists. Column pairs for one table
	// pair belong on a single edge.
	ErrDuplicateEdge = errors.New("duplicate edge")

	// ErrInvalidEdgeEndpoint is returned by [DAG.Validate] when an edge
	// references a node that doesn't exist. This indicates graph corruption.
	ErrInvalidEdgeEndpoint = errors.New("invalid edge endpoint")

	// ErrGraphHasCycle is returned by [DAG.Validate] when a cycle is detected.
	// Cycles are detected using depth-first search with white/gray/black coloring.
	ErrGraphHasCycle = errors.New("graph contains a cycle")
)

// Attribute names a piece of metadata that [transform.StripAttribute] can
// remove from a graph.
type Attribute string

const (
	// AttrConverters names the per-column value converters held on nodes.
	AttrConverters Attribute = "converters"
	// AttrDependencies names the column pairs held on edges. An edge without
	// dependencies does not propagate filters.
	AttrDependencies Attribute = "dependencies"
)

// Metadata stores arbitrary key-value pairs attached to nodes, edges or the
// graph. Metadata maps are never nil after insertion.
type Metadata map[string]any

// Converter turns a raw textual table value into a richer value (a date,
// a number). It is applied once per value, after all filtering is final.
type Converter func(raw string) (any, error)

// Converters maps column names to their converter.
type Converters map[string]Converter

// Columns returns the converted column names in sorted order.
func (c Converters) Columns() []string {
	return slices.Sorted(maps.Keys(c))
}

// Node is a table in the dependency graph.
//
// The zero value is not usable - ID must be set before adding to a DAG.
type Node struct {
	ID         string     // Table file name, e.g. "trips.txt"
	Converters Converters // Column converters (may be nil)
	Meta       Metadata   // Arbitrary key-value metadata (never nil after AddNode)
}

// ColumnPair links a column of the dependent table to a column of the
// referenced table. Rows of the dependent table survive only if their value
// in From appears in the referenced table's To column.
type ColumnPair struct {
	From string // Column in the edge's From table
	To   string // Column in the edge's To table
}

// Edge is a directed "From is constrained by To" relation between tables.
type Edge struct {
	From         string       // Dependent table
	To           string       // Referenced table
	Dependencies []ColumnPair // Column pairs that carry filters (may be empty)
	Meta         Metadata     // Arbitrary key-value metadata (never nil after AddEdge)
}

// PropagatesFilter reports whether filtering the To table narrows the From table.
func (e Edge) PropagatesFilter() bool { return len(e.Dependencies) > 0 }

// Reversed returns the edge pointing the other way with its column pairs
// swapped, so the relation between columns is kept.
func (e Edge) Reversed() Edge {
	deps := make([]ColumnPair, len(e.Dependencies))
	for i, d := range e.Dependencies {
		deps[i] = ColumnPair{From: d.To, To: d.From}
	}
	return Edge{From: e.To, To: e.From, Dependencies: deps, Meta: maps.Clone(e.Meta)}
}

// DAG is a directed acyclic graph over table names. Edges point from a
// dependent table to the table whose rows constrain it.
//
// The zero value is not usable - use New to create a valid DAG instance.
// DAG is not safe for concurrent mutation; graphs handed to the feed loader
// are treated as immutable and transformed by copy.
type DAG struct {
	nodes    map[string]*Node
	edges    []Edge
	outgoing map[string][]string // nodeID -> referenced table IDs
	incoming map[string][]string // nodeID -> dependent table IDs
	meta     Metadata
}

// New creates an empty DAG with optional graph-level metadata.
// The metadata parameter can be nil, in which case an empty map is created.
func New(meta Metadata) *DAG {
	if meta == nil {
		meta = Metadata{}
	}
	return &DAG{
		nodes:    make(map[string]*Node),
		outgoing: make(map[string][]string),
		incoming: make(map[string][]string),
		meta:     meta,
	}
}

// Meta returns the graph-level metadata map.
func (d *DAG) Meta() Metadata { return d.meta }

// AddNode adds a node to the graph.
// Returns ErrInvalidNodeID if the node ID is empty, or ErrDuplicateNodeID
// if a node with the same ID already exists. The node's Meta field is
// automatically initialized to an empty map if nil.
func (d *DAG) AddNode(n Node) error {
	if n.ID == "" {
		return ErrInvalidNodeID
	}
	if _, exists := d.nodes[n.ID]; exists {
		return ErrDuplicateNodeID
	}
	if n.Meta == nil {
		n.Meta = Metadata{}
	}
	node := &n
	d.nodes[node.ID] = node
	return nil
}

// AddEdge adds a directed edge between two existing nodes.
// Returns ErrUnknownSourceNode if the From node doesn't exist,
// ErrUnknownTargetNode if the To node doesn't exist, or ErrDuplicateEdge
// if the pair is already connected in this direction.
//
// AddEdge does not check for cycles - use Validate after building the graph.
func (d *DAG) AddEdge(e Edge) error {
	if _, ok := d.nodes[e.From]; !ok {
		return ErrUnknownSourceNode
	}
	if _, ok := d.nodes[e.To]; !ok {
		return ErrUnknownTargetNode
	}
	if slices.Contains(d.outgoing[e.From], e.To) {
		return ErrDuplicateEdge
	}
	if e.Meta == nil {
		e.Meta = Metadata{}
	}
	d.edges = append(d.edges, e)
	d.outgoing[e.From] = append(d.outgoing[e.From], e.To)
	d.incoming[e.To] = append(d.incoming[e.To], e.From)
	return nil
}

// RemoveEdge removes the edge from→to if it exists.
// No error is returned if the edge does not exist.
func (d *DAG) RemoveEdge(from, to string) {
	d.edges = slices.DeleteFunc(d.edges, func(e Edge) bool { return e.From == from && e.To == to })
	d.outgoing[from] = slices.DeleteFunc(d.outgoing[from], func(s string) bool { return s == to })
	d.incoming[to] = slices.DeleteFunc(d.incoming[to], func(s string) bool { return s == from })
}

// Clone returns a deep copy of the graph. Converter functions are shared,
// the maps and slices holding them are not.
func (d *DAG) Clone() *DAG {
	c := New(maps.Clone(d.meta))
	for _, id := range d.NodeIDs() {
		n := d.nodes[id]
		_ = c.AddNode(Node{
			ID:         n.ID,
			Converters: maps.Clone(n.Converters),
			Meta:       maps.Clone(n.Meta),
		})
	}
	for _, e := range d.edges {
		_ = c.AddEdge(Edge{
			From:         e.From,
			To:           e.To,
			Dependencies: slices.Clone(e.Dependencies),
			Meta:         maps.Clone(e.Meta),
		})
	}
	return c
}

// Nodes returns all nodes in the graph sorted by ID.
// The returned slice contains pointers to the actual node structs, so
// modifications affect the graph.
func (d *DAG) Nodes() []*Node {
	nodes := make([]*Node, 0, len(d.nodes))
	for _, id := range d.NodeIDs() {
		nodes = append(nodes, d.nodes[id])
	}
	return nodes
}

// NodeIDs returns all node IDs in ascending order.
func (d *DAG) NodeIDs() []string {
	return slices.Sorted(maps.Keys(d.nodes))
}

// Edges returns a copy of all edges in the graph.
// The order matches insertion order.
func (d *DAG) Edges() []Edge { return slices.Clone(d.edges) }

// Edge returns the edge from→to and true, or the zero Edge and false.
func (d *DAG) Edge(from, to string) (Edge, bool) {
	for _, e := range d.edges {
		if e.From == from && e.To == to {
			return e, true
		}
	}
	return Edge{}, false
}

// OutEdges returns the edges leaving id in insertion order.
func (d *DAG) OutEdges(id string) []Edge {
	var out []Edge
	for _, e := range d.edges {
		if e.From == id {
			out = append(out, e)
		}
	}
	return out
}

// NodeCount returns the number of nodes in the graph.
func (d *DAG) NodeCount() int { return len(d.nodes) }

// EdgeCount returns the number of edges in the graph.
func (d *DAG) EdgeCount() int { return len(d.edges) }

// Children returns the IDs of the tables this table is constrained by.
// The returned slice should not be modified.
func (d *DAG) Children(id string) []string { return d.outgoing[id] }

// Parents returns the IDs of the tables constrained by this table.
// The returned slice should not be modified.
func (d *DAG) Parents(id string) []string { return d.incoming[id] }

// OutDegree returns the number of outgoing edges from the node.
func (d *DAG) OutDegree(id string) int { return len(d.outgoing[id]) }

// Node returns the node with the given ID and true, or nil and false if not found.
func (d *DAG) Node(id string) (*Node, bool) {
	n, ok := d.nodes[id]
	return n, ok
}

// HasNode reports whether the graph contains a node with the given ID.
func (d *DAG) HasNode(id string) bool {
	_, ok := d.nodes[id]
	return ok
}

// Sources returns nodes with no incoming edges, sorted by ID.
func (d *DAG) Sources() []*Node {
	var sources []*Node
	for _, n := range d.Nodes() {
		if len(d.incoming[n.ID]) == 0 {
			sources = append(sources, n)
		}
	}
	return sources
}

// Sinks returns nodes with no outgoing edges, sorted by ID. In a rerooted
// graph the reroot table is always a sink.
func (d *DAG) Sinks() []*Node {
	var sinks []*Node
	for _, n := range d.Nodes() {
		if len(d.outgoing[n.ID]) == 0 {
			sinks = append(sinks, n)
		}
	}
	return sinks
}

// Validate checks graph integrity and returns nil if valid.
// Returns ErrInvalidEdgeEndpoint if an edge references a missing node or
// ErrGraphHasCycle if a cycle is detected.
//
// Cycle detection runs in O(N+E) time using depth-first search.
func (d *DAG) Validate() error {
	for _, e := range d.edges {
		_, okS := d.nodes[e.From]
		_, okD := d.nodes[e.To]
		if !okS || !okD {
			return ErrInvalidEdgeEndpoint
		}
	}
	return d.detectCycles()
}

func (d *DAG) detectCycles() error {
	const (
		white = iota
		gray
		black
	)

	color := make(map[string]int, len(d.nodes))
	var hasCycle bool

	var dfs func(id string)
	dfs = func(id string) {
		color[id] = gray
		for _, child := range d.outgoing[id] {
			switch color[child] {
			case white:
				dfs(child)
			case gray:
				hasCycle = true
				return
			}
			if hasCycle {
				return
			}
		}
		color[id] = black
	}

	for _, id := range d.NodeIDs() {
		if color[id] == white {
			dfs(id)
			if hasCycle {
				return ErrGraphHasCycle
			}
		}
	}
	return nil
}
