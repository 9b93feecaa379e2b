// Package calendar resolves which GTFS services run on which dates and
// answers aggregate questions about them.
//
// # Resolution
//
// [ResolveServiceIDs] merges the weekly patterns of calendar.txt with the
// per-date exceptions of calendar_dates.txt into a [ServiceIDsByDate]. Only
// services referenced by trips.txt are considered. Removals are applied after
// every addition, so a removal wins regardless of row order, and dates left
// without service are dropped.
//
// # Aggregates
//
//   - [GroupByService] inverts the map, grouping dates with identical service
//   - [TripCountsByDate] counts trips per date, once per distinct [Service]
//   - [BusiestDate] and [BusiestWeek] pick the date or ISO week with the most
//     trips, earliest first on ties
//
// # Single-call reads
//
// The Read functions load a raw feed, compute one aggregate and close the
// feed before returning:
//
//	date, service, err := calendar.ReadBusiestDate(ctx, "gtfs.zip")
package calendar
