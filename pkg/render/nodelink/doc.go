// Package nodelink renders table dependency graphs as node-link diagrams.
//
// # Overview
//
// Each table is a box and each relation an arrow from the dependent table to
// the table that constrains it. Arrows that propagate filters are labeled
// with their column pairs; the remaining arrows are dashed.
//
// # Usage
//
//	dot := nodelink.ToDOT(feed.DefaultGraph(), nodelink.Options{})
//	svg, err := nodelink.RenderSVG(ctx, dot)
//
// The DOT source can also be saved and processed with external Graphviz tools.
//
// # Dependencies
//
// This package uses [github.com/goccy/go-graphviz] for in-process SVG
// rendering.
package nodelink
