// Package pipeline runs the load → resolve → count sequence behind every
// calendar command, with result caching.
//
// # Architecture
//
// The pipeline consists of two stages:
//
//  1. Load: open the feed, raw or through a filtered view
//  2. Resolve: compute the service calendar and per-date trip counts
//
// Results are cached by feed digest and view, so repeated queries over an
// unchanged feed skip both stages.
//
// # Usage
//
//	runner := pipeline.NewRunner(cache, nil, logger)
//	result, err := runner.Resolve(ctx, pipeline.Options{Path: "gtfs.zip"})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	date, service, err := calendar.BusiestDate(result.ServiceIDs, result.Counts)
package pipeline

import (
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/transitcal/pkg/calendar"
	"github.com/matzehuels/transitcal/pkg/dag"
	fterrors "github.com/matzehuels/transitcal/pkg/errors"
	"github.com/matzehuels/transitcal/pkg/feed"
)

// Options configures a pipeline run.
type Options struct {
	// Path is the feed directory or zip archive.
	Path string

	// View filters the feed. An empty view loads the feed raw, without
	// cascading or conversion.
	View feed.View

	// Graph overrides the dependency graph. Nil means feed.DefaultGraph()
	// with a non-empty View and feed.EmptyGraph() without one.
	Graph *dag.DAG

	// Refresh skips cache reads; fresh results are still written.
	Refresh bool

	// Logger overrides the runner's logger for this run.
	Logger *log.Logger `json:"-"`
}

// Validate checks the options before any I/O.
func (o Options) Validate() error {
	if o.Path == "" {
		return fterrors.New(fterrors.ErrCodeInvalidInput, "feed path is required")
	}
	for _, tf := range o.View {
		if err := fterrors.ValidateTableName(tf.Table); err != nil {
			return err
		}
		if len(tf.Filter) == 0 {
			return fterrors.New(fterrors.ErrCodeInvalidView, "filter on %s has no columns", tf.Table)
		}
	}
	return nil
}

// loadOptions returns the feed options for this run.
func (o Options) loadOptions(logger *log.Logger) feed.Options {
	if len(o.View) == 0 && o.Graph == nil {
		return feed.Options{Graph: feed.EmptyGraph(), Logger: logger}
	}
	return feed.Options{View: o.View, Graph: o.Graph, Logger: logger}
}

// Result holds the resolved calendar of a feed.
type Result struct {
	ServiceIDs calendar.ServiceIDsByDate
	Counts     calendar.CountsByDate
	Digest     string
	Stats      Stats
	CacheInfo  CacheInfo
}

// Stats records stage timings.
type Stats struct {
	LoadTime    time.Duration
	ResolveTime time.Duration
	Dates       int
}

// CacheInfo reports whether the result came from the cache.
type CacheInfo struct {
	Hit bool
}
