// Package cli implements the transitcal command-line interface.
package cli

import (
	"io"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/transitcal/pkg/buildinfo"
	"github.com/matzehuels/transitcal/pkg/cache"
	"github.com/matzehuels/transitcal/pkg/dag"
	"github.com/matzehuels/transitcal/pkg/feed"
	graphio "github.com/matzehuels/transitcal/pkg/io"
	"github.com/matzehuels/transitcal/pkg/pipeline"
)

// =============================================================================
// Constants
// =============================================================================

// appName is the application name used for directories and display.
const appName = "transitcal"

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{Logger: newLogger(w, level)}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   appName,
		Short: "Transitcal answers calendar questions about GTFS feeds",
		Long: `Transitcal resolves which services run on which dates in a GTFS feed,
merging calendar.txt with calendar_dates.txt, and reports trip counts,
the busiest date and the busiest week. Feeds can be narrowed with view
files whose filters cascade through the table dependency graph.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
	}

	root.SetVersionTemplate(buildinfo.Template())

	root.AddCommand(c.serviceIDsCommand())
	root.AddCommand(c.datesCommand())
	root.AddCommand(c.tripCountsCommand())
	root.AddCommand(c.busiestDateCommand())
	root.AddCommand(c.busiestWeekCommand())
	root.AddCommand(c.tablesCommand())
	root.AddCommand(c.graphCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// =============================================================================
// Runner Factory
// =============================================================================

// newRunner creates a pipeline runner for CLI use.
func (c *CLI) newRunner(noCache bool) (*pipeline.Runner, error) {
	cache, err := newCache(noCache)
	if err != nil {
		return nil, err
	}
	return pipeline.NewRunner(cache, newKeyer(), c.Logger), nil
}

// newCache opens the file cache, or returns nil when caching is off or no
// cache directory can be determined.
func newCache(noCache bool) (cache.Cache, error) {
	if noCache {
		return nil, nil
	}
	dir, err := cacheDir()
	if err != nil {
		return nil, nil
	}
	return cache.NewFileCache(dir)
}

// newKeyer scopes cache keys to the running release.
func newKeyer() cache.Keyer {
	return cache.NewScopedKeyer(nil, buildinfo.CacheScope())
}

// =============================================================================
// Paths
// =============================================================================

// cacheDir returns the cache directory using XDG standard (~/.cache/transitcal/).
func cacheDir() (string, error) {
	if cacheHome := os.Getenv("XDG_CACHE_HOME"); cacheHome != "" {
		return filepath.Join(cacheHome, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".cache", appName), nil
}

// =============================================================================
// Options Helpers
// =============================================================================

// loadView reads the view file at path, or returns an empty view.
func loadView(path string) (feed.View, error) {
	if path == "" {
		return nil, nil
	}
	return feed.LoadViewFile(path)
}

// loadGraph reads the JSON graph at path, or returns nil for the built-in
// graph.
func loadGraph(path string) (*dag.DAG, error) {
	if path == "" {
		return nil, nil
	}
	return graphio.ImportJSON(path, feed.LookupConverter)
}
