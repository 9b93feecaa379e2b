// Package feed loads GTFS feeds into layered, filtered views of their tables.
//
// # Overview
//
// A feed is a directory, or a zip archive, of CSV tables. [Load] reads it
// through a stack of [FilteredView] layers:
//
//  1. a base layer over the raw CSV files
//  2. one layer per [View] entry, each filtering a single table and
//     rerooted at it so the filter cascades to linked tables
//  3. a final layer over the full dependency graph that runs converters
//
// Intermediate layers use a copy of the graph with converters stripped, so
// every value is converted exactly once, after filtering has settled.
//
// # Tables
//
// [Table] is an ordered list of [Row] values. Raw values are strings; after
// conversion, dates become [time.Time] at midnight UTC, integers int, and
// times of day seconds since midnight. Tables missing from the feed are empty.
//
// # Usage
//
//	f, err := feed.Load(ctx, "gtfs.zip", feed.Options{
//	    View: feed.View{
//	        {Table: "routes.txt", Filter: feed.ColumnFilter{"route_id": {"A"}}},
//	    },
//	})
//	if err != nil {
//	    return err
//	}
//	defer f.Close()
//
//	trips, err := f.Trips()
//
// Views may also be read from TOML or YAML files with [LoadViewFile].
//
// # Resources
//
// Archives are unpacked into a staging directory owned by the [Feed].
// [Feed.Close] removes it. Feeds and views are not safe for concurrent use.
package feed
