package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/transitcal/pkg/feed"
	"github.com/matzehuels/transitcal/pkg/pipeline"
)

// tablesCommand creates the "tables" command.
func (c *CLI) tablesCommand() *cobra.Command {
	var (
		viewPath  string
		graphPath string
		asJSON    bool
	)

	cmd := &cobra.Command{
		Use:   "tables <feed>",
		Short: "Print the row count of every known table",
		Long: `Print the row count of every known GTFS table.

With --view, filters are cascaded through the default dependency graph and
the counts show how many rows of each table remain visible.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			view, err := loadView(viewPath)
			if err != nil {
				return err
			}
			graph, err := loadGraph(graphPath)
			if err != nil {
				return err
			}

			runner := pipeline.NewRunner(nil, nil, c.Logger)
			prog := newProgress(c.Logger)
			counts, err := runner.TableCounts(cmd.Context(), pipeline.Options{Path: args[0], View: view, Graph: graph})
			if err != nil {
				return err
			}
			prog.done(fmt.Sprintf("Counted %d tables", len(counts)))

			out := cmd.OutOrStdout()
			if asJSON {
				return writeJSON(out, counts)
			}
			total := 0
			for _, name := range feed.KnownTables {
				n := counts[name]
				total += n
				if n == 0 {
					printKeyValue(out, name, StyleDim.Render("-"))
					continue
				}
				printKeyValue(out, name, StyleNumber.Render(fmt.Sprint(n)))
			}
			if total == 0 {
				printWarning(out, "No rows visible; check the feed path and view filters")
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&viewPath, "view", "", "view file (TOML or YAML) filtering the feed")
	cmd.Flags().StringVar(&graphPath, "graph", "", "JSON dependency graph replacing the built-in one")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print counts as JSON")
	return cmd
}
