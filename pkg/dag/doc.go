// Package dag provides the dependency graph that drives feed view composition.
//
// # Overview
//
// A transit feed is a set of flat tables that reference each other through
// identifier columns: trips.txt names a service_id defined in calendar.txt,
// stop_times.txt names a trip_id defined in trips.txt, and so on. Filtering
// one table (keep only route "A" in routes.txt) should narrow every table
// that depends on it (the trips of route "A", the stop times of those trips,
// the calendars those trips use).
//
// This package models that wiring as a directed acyclic graph whose nodes are
// table file names. An edge From→To reads "From's rows are constrained by
// To's rows" and carries the [ColumnPair] values that relate the two tables.
// Nodes carry optional per-column [Converter] functions that turn raw text
// into dates or numbers once filtering is final.
//
// # Basic Usage
//
// Create a new graph with [New], add tables with [DAG.AddNode], and
// relations with [DAG.AddEdge]:
//
//	g := dag.New(nil)
//	g.AddNode(dag.Node{ID: "routes.txt"})
//	g.AddNode(dag.Node{ID: "trips.txt"})
//	g.AddEdge(dag.Edge{
//	    From:         "routes.txt",
//	    To:           "trips.txt",
//	    Dependencies: []dag.ColumnPair{{From: "route_id", To: "route_id"}},
//	})
//
// Use [DAG.Validate] before handing a graph to the feed loader; a cyclic
// graph has no resolution order and is rejected.
//
// # Attributes
//
// Converters and dependencies are the two attributes the loader cares about.
// The [transform] subpackage strips either one ([AttrConverters],
// [AttrDependencies]) and reroots a graph at a filtered table, always
// returning a new graph.
//
// # Concurrency
//
// DAG instances are not safe for concurrent mutation. The feed loader never
// mutates a graph it was given, so one base graph can be shared by many loads.
//
// [transform]: github.com/matzehuels/transitcal/pkg/dag/transform
package dag
