package nodelink

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/matzehuels/transitcal/pkg/dag"
)

// Options configures node-link diagram rendering.
type Options struct {
	// Detailed adds the converted columns of each table to its label.
	Detailed bool

	// Highlight marks one table, typically the root of a rerooted graph.
	Highlight string
}

// ToDOT converts a table dependency graph to Graphviz DOT format.
// The resulting DOT string can be rendered using [RenderSVG].
//
// Edges that carry column pairs are labeled with them. Edges without
// column pairs only order tables and are drawn dashed.
func ToDOT(g *dag.DAG, opts Options) string {
	var buf bytes.Buffer
	buf.WriteString("digraph G {\n")
	buf.WriteString("  rankdir=TB;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [shape=box, style=\"rounded,filled\", fillcolor=white, fontsize=14, margin=\"0.2,0.1\"];\n")
	buf.WriteString("  edge [fontsize=10];\n")
	buf.WriteString("  ranksep=0.5;\n")
	buf.WriteString("  nodesep=0.3;\n")
	buf.WriteString("\n")

	for _, n := range g.Nodes() {
		label := fmtLabel(*n, opts.Detailed)
		attrs := fmtAttrs(*n, label, opts.Highlight)
		fmt.Fprintf(&buf, "  %q [%s];\n", n.ID, strings.Join(attrs, ", "))
	}

	buf.WriteString("\n")
	for _, e := range g.Edges() {
		if !e.PropagatesFilter() {
			fmt.Fprintf(&buf, "  %q -> %q [style=dashed];\n", e.From, e.To)
			continue
		}
		fmt.Fprintf(&buf, "  %q -> %q [label=%q];\n", e.From, e.To, fmtPairs(e.Dependencies))
	}

	buf.WriteString("}\n")
	return buf.String()
}

func fmtLabel(n dag.Node, detailed bool) string {
	if !detailed || len(n.Converters) == 0 {
		return n.ID
	}
	return n.ID + "\n" + strings.Join(n.Converters.Columns(), "\n")
}

func fmtAttrs(n dag.Node, label, highlight string) []string {
	attrs := []string{fmt.Sprintf("label=%q", label)}
	if n.ID == highlight {
		attrs = append(attrs, "fillcolor=lightyellow", "penwidth=2")
	}
	return attrs
}

func fmtPairs(pairs []dag.ColumnPair) string {
	parts := make([]string, len(pairs))
	for i, p := range pairs {
		if p.From == p.To {
			parts[i] = p.From
			continue
		}
		parts[i] = p.From + "=" + p.To
	}
	return strings.Join(parts, "\n")
}

// RenderSVG renders a DOT graph to SVG using Graphviz.
func RenderSVG(ctx context.Context, dot string) ([]byte, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, graphviz.SVG, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return normalizeViewBox(buf.Bytes()), nil
}

var (
	svgTagRe  = regexp.MustCompile(`<svg[^>]*>`)
	viewBoxRe = regexp.MustCompile(`viewBox="([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)"`)
)

// normalizeViewBox replaces the root svg tag so the drawing scales with its
// container.
func normalizeViewBox(svg []byte) []byte {
	match := viewBoxRe.FindSubmatch(svg)
	if match == nil {
		return svg
	}

	w, _ := strconv.ParseFloat(string(match[3]), 64)
	h, _ := strconv.ParseFloat(string(match[4]), 64)
	if w == 0 || h == 0 {
		return svg
	}

	newSvg := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`,
		w, h, w, h)

	return svgTagRe.ReplaceAll(svg, []byte(newSvg))
}
