// Package transform provides structural transformations of a dependency graph.
//
// Every function in this package is pure: it returns a new [dag.DAG] and never
// modifies its input, so a single base graph can be transformed repeatedly
// while it is also being read elsewhere.
//
// # Rerooting
//
// [Reroot] makes a filtered table the root of dependency resolution. Edges on
// the breadth-first tree reachable from that table are reversed, so the tables
// it used to depend on now depend on it and inherit its filter:
//
//	Before: routes.txt → trips.txt ← stop_times.txt
//	After:  trips.txt → routes.txt, stop_times.txt → trips.txt   (Reroot at routes.txt)
//
// # Attribute Stripping
//
// [StripAttribute] drops one attribute from every node or edge. The loader
// strips converters to build a filter-only graph for intermediate view
// layers, so conversions run exactly once in the last layer.
package transform
