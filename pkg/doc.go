// Package pkg provides the core libraries for transitcal GTFS calendar analysis.
//
// # Overview
//
// Transitcal answers calendar questions about a GTFS feed: which services run
// on each date, which dates share identical service, how many trips run per
// date, and which date or ISO week is the busiest. Feeds can be narrowed by
// views whose filters cascade along a table dependency graph.
//
// # Architecture
//
// The typical data flow:
//
//	GTFS directory or zip archive
//	         ↓
//	    [feed] package (table source, filtered views, dependency catalog)
//	         ↓
//	    [calendar] package (service resolution + aggregates)
//	         ↓
//	    text or JSON output
//
// # Quick Start
//
//	date, service, err := calendar.ReadBusiestDate(ctx, "gtfs.zip")
//
// Narrow the feed to one route before resolving:
//
//	f, err := feed.Load(ctx, "gtfs.zip", feed.Options{View: feed.View{
//	    {Table: feed.TableRoutes, Filter: feed.ColumnFilter{"route_id": {"A"}}},
//	}})
//	if err != nil {
//	    return err
//	}
//	defer f.Close()
//	byDate, err := calendar.ResolveServiceIDs(f)
//
// # Main Packages
//
// [dag] - Directed acyclic graph over table names. Nodes carry column
// converters, edges carry the column pairs along which filters propagate.
//
// [dag/transform] - Copying graph transforms: Reroot and StripAttribute.
//
// [feed] - CSV tables, filtered view stacking, the GTFS catalog and the feed
// loader with archive staging.
//
// [calendar] - Service resolution from calendar.txt and calendar_dates.txt
// and the aggregate queries built on it.
//
// [pipeline] - Load, resolve and count with result caching, used by the CLI.
//
// [cache] - File and null caches keyed by feed digest.
//
// [io] - JSON import and export of dependency graphs.
//
// [render/nodelink] - DOT and SVG diagrams of dependency graphs.
//
// [errors] - Coded errors shared by every package.
//
// [observability] - Hooks for load, unpack, resolve and cache events.
//
// # Testing
//
//	go test ./pkg/...                    # All tests
//	go test ./pkg/feed/...               # Specific package
//	go test -run Example ./pkg/...       # Examples only
//
// [dag]: https://pkg.go.dev/github.com/matzehuels/transitcal/pkg/dag
// [dag/transform]: https://pkg.go.dev/github.com/matzehuels/transitcal/pkg/dag/transform
// [feed]: https://pkg.go.dev/github.com/matzehuels/transitcal/pkg/feed
// [calendar]: https://pkg.go.dev/github.com/matzehuels/transitcal/pkg/calendar
// [pipeline]: https://pkg.go.dev/github.com/matzehuels/transitcal/pkg/pipeline
// [cache]: https://pkg.go.dev/github.com/matzehuels/transitcal/pkg/cache
// [io]: https://pkg.go.dev/github.com/matzehuels/transitcal/pkg/io
// [render/nodelink]: https://pkg.go.dev/github.com/matzehuels/transitcal/pkg/render/nodelink
// [errors]: https://pkg.go.dev/github.com/matzehuels/transitcal/pkg/errors
// [observability]: https://pkg.go.dev/github.com/matzehuels/transitcal/pkg/observability
package pkg
