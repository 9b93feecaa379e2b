// Package io provides JSON import and export for table dependency graphs.
//
// # Overview
//
// A graph file describes the tables of a feed and the relations along which
// filters cascade. It lets callers replace the built-in GTFS graph, for
// example to add a relation for a feed extension table.
//
// # JSON Format
//
//	{
//	  "meta": {"name": "custom"},
//	  "nodes": [
//	    {"id": "trips.txt", "converters": ["direction_id"]},
//	    {"id": "routes.txt"}
//	  ],
//	  "edges": [
//	    {"from": "trips.txt", "to": "routes.txt",
//	     "columns": [{"from": "route_id", "to": "route_id"}]}
//	  ]
//	}
//
// Edges point from the dependent table to the table that constrains it. An
// edge without columns orders tables but does not propagate filters.
//
// # Converters
//
// Converter functions cannot be serialized. [WriteJSON] records the names of
// converted columns and [ReadJSON] resolves them through a [ConverterLookup],
// usually feed.LookupConverter:
//
//	g, err := io.ImportJSON("graph.json", feed.LookupConverter)
//
// # Concurrency
//
// [WriteJSON] only reads the graph and may run alongside other readers.
// Imported graphs are independent of the input.
package io
