package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/transitcal/pkg/dag"
	"github.com/matzehuels/transitcal/pkg/dag/transform"
	fterrors "github.com/matzehuels/transitcal/pkg/errors"
	"github.com/matzehuels/transitcal/pkg/feed"
	graphio "github.com/matzehuels/transitcal/pkg/io"
	"github.com/matzehuels/transitcal/pkg/render/nodelink"
)

// Graph output formats.
const (
	formatDOT  = "dot"
	formatSVG  = "svg"
	formatJSON = "json"
)

// graphCommand creates the "graph" command.
func (c *CLI) graphCommand() *cobra.Command {
	var (
		root     string
		format   string
		raw      bool
		detailed bool
	)

	cmd := &cobra.Command{
		Use:   "graph",
		Short: "Print the table dependency graph",
		Long: `Print the GTFS table dependency graph used to cascade view filters.

Arrows point from a table to the table that constrains it and are labeled
with the joined columns. With --root, the graph is rerooted at a table the
way a filter on that table is propagated.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			g, err := buildGraph(root, raw)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if format == formatJSON {
				return graphio.WriteJSON(g, out)
			}

			dot := nodelink.ToDOT(g, nodelink.Options{Detailed: detailed, Highlight: root})
			switch format {
			case formatDOT:
				_, err := fmt.Fprint(out, dot)
				return err
			case formatSVG:
				svg, err := nodelink.RenderSVG(cmd.Context(), dot)
				if err != nil {
					return err
				}
				_, err = out.Write(svg)
				return err
			default:
				return fterrors.New(fterrors.ErrCodeInvalidInput, "unknown format %q (want %s, %s or %s)", format, formatDOT, formatSVG, formatJSON)
			}
		},
	}

	cmd.Flags().StringVar(&root, "root", "", "reroot the graph at this table")
	cmd.Flags().StringVar(&format, "format", formatDOT, "output format: dot, svg or json")
	cmd.Flags().BoolVar(&raw, "raw", false, "show the raw graph without relations")
	cmd.Flags().BoolVar(&detailed, "detailed", false, "list converted columns in table labels")
	return cmd
}

// buildGraph returns the default or raw graph, rerooted at root if set.
func buildGraph(root string, raw bool) (*dag.DAG, error) {
	g := feed.DefaultGraph()
	if raw {
		g = feed.EmptyGraph()
	}
	if root == "" {
		return g, nil
	}
	if !g.HasNode(root) {
		return nil, fterrors.New(fterrors.ErrCodeInvalidInput, "unknown table %q", root)
	}
	return transform.Reroot(g, root), nil
}
