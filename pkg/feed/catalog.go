package feed

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/matzehuels/transitcal/pkg/dag"
)

// Known GTFS table file names.
const (
	TableAgency         = "agency.txt"
	TableCalendar       = "calendar.txt"
	TableCalendarDates  = "calendar_dates.txt"
	TableFareAttributes = "fare_attributes.txt"
	TableFareRules      = "fare_rules.txt"
	TableFeedInfo       = "feed_info.txt"
	TableFrequencies    = "frequencies.txt"
	TableRoutes         = "routes.txt"
	TableShapes         = "shapes.txt"
	TableStops          = "stops.txt"
	TableStopTimes      = "stop_times.txt"
	TableTransfers      = "transfers.txt"
	TableTrips          = "trips.txt"
)

// KnownTables lists every table in the default graph, sorted.
var KnownTables = []string{
	TableAgency,
	TableCalendar,
	TableCalendarDates,
	TableFareAttributes,
	TableFareRules,
	TableFeedInfo,
	TableFrequencies,
	TableRoutes,
	TableShapes,
	TableStopTimes,
	TableStops,
	TableTransfers,
	TableTrips,
}

// DateLayout is the GTFS service date format.
const DateLayout = "20060102"

// Weekdays names the weekly-pattern flag columns, Monday first.
var Weekdays = [7]string{"monday", "tuesday", "wednesday", "thursday", "friday", "saturday", "sunday"}

type relation struct {
	from, to string
	pairs    []dag.ColumnPair
}

func same(cols ...string) []dag.ColumnPair {
	pairs := make([]dag.ColumnPair, len(cols))
	for i, c := range cols {
		pairs[i] = dag.ColumnPair{From: c, To: c}
	}
	return pairs
}

var relations = []relation{
	{TableAgency, TableRoutes, same("agency_id")},
	{TableCalendar, TableTrips, same("service_id")},
	{TableCalendarDates, TableTrips, same("service_id")},
	{TableFareAttributes, TableFareRules, same("fare_id")},
	{TableFareRules, TableStops, []dag.ColumnPair{
		{From: "origin_id", To: "zone_id"},
		{From: "destination_id", To: "zone_id"},
		{From: "contains_id", To: "zone_id"},
	}},
	{TableFareRules, TableRoutes, same("route_id")},
	{TableFrequencies, TableTrips, same("trip_id")},
	{TableRoutes, TableTrips, same("route_id")},
	{TableShapes, TableTrips, same("shape_id")},
	{TableStops, TableStopTimes, same("stop_id")},
	{TableStopTimes, TableTrips, same("trip_id")},
	{TableTransfers, TableStops, []dag.ColumnPair{
		{From: "from_stop_id", To: "stop_id"},
		{From: "to_stop_id", To: "stop_id"},
	}},
}

func converters() map[string]dag.Converters {
	date := dag.Converter(func(s string) (any, error) {
		if s == "" {
			return nil, nil
		}
		return ParseDate(s)
	})
	integer := dag.Converter(parseOptionalInt)
	float := dag.Converter(parseOptionalFloat)
	clock := dag.Converter(func(s string) (any, error) {
		if s == "" {
			return nil, nil
		}
		return ParseTime(s)
	})

	cal := dag.Converters{"start_date": date, "end_date": date}
	for _, day := range Weekdays {
		cal[day] = integer
	}

	return map[string]dag.Converters{
		TableCalendar:      cal,
		TableCalendarDates: {"date": date, "exception_type": integer},
		TableFareAttributes: {
			"price":             float,
			"payment_method":    integer,
			"transfers":         integer,
			"transfer_duration": integer,
		},
		TableFeedInfo:    {"feed_start_date": date, "feed_end_date": date},
		TableFrequencies: {"start_time": clock, "end_time": clock, "headway_secs": integer, "exact_times": integer},
		TableRoutes:      {"route_type": integer},
		TableShapes: {
			"shape_pt_lat":        float,
			"shape_pt_lon":        float,
			"shape_pt_sequence":   integer,
			"shape_dist_traveled": float,
		},
		TableStopTimes: {
			"arrival_time":        clock,
			"departure_time":      clock,
			"stop_sequence":       integer,
			"pickup_type":         integer,
			"drop_off_type":       integer,
			"shape_dist_traveled": float,
			"timepoint":           integer,
		},
		TableStops: {
			"stop_lat":            float,
			"stop_lon":            float,
			"location_type":       integer,
			"wheelchair_boarding": integer,
		},
		TableTransfers: {"transfer_type": integer, "min_transfer_time": integer},
		TableTrips:     {"direction_id": integer, "wheelchair_accessible": integer, "bikes_allowed": integer},
	}
}

// DefaultGraph returns the GTFS dependency graph with filter-propagating
// edges and value converters. Each call builds a fresh graph.
func DefaultGraph() *dag.DAG {
	g := dag.New(dag.Metadata{"name": "gtfs"})
	conv := converters()
	for _, name := range KnownTables {
		_ = g.AddNode(dag.Node{ID: name, Converters: conv[name]})
	}
	for _, r := range relations {
		_ = g.AddEdge(dag.Edge{From: r.from, To: r.to, Dependencies: r.pairs})
	}
	return g
}

// LookupConverter returns the converter DefaultGraph attaches to column of
// table.
func LookupConverter(table, column string) (dag.Converter, bool) {
	c, ok := converters()[table][column]
	return c, ok
}

// EmptyGraph returns a graph with every known table and no edges or
// converters. Loading through it yields raw, unfiltered tables.
func EmptyGraph() *dag.DAG {
	g := dag.New(dag.Metadata{"name": "gtfs-raw"})
	for _, name := range KnownTables {
		_ = g.AddNode(dag.Node{ID: name})
	}
	return g
}

// ParseDate parses a YYYYMMDD service date into midnight UTC.
func ParseDate(s string) (time.Time, error) {
	d, err := time.Parse(DateLayout, strings.TrimSpace(s))
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q", s)
	}
	return d, nil
}

// FormatDate renders a date in YYYYMMDD form.
func FormatDate(d time.Time) string { return d.Format(DateLayout) }

// ParseTime parses an H:MM:SS or HH:MM:SS time of day into seconds since
// midnight. Hours may exceed 23 for trips running past midnight.
func ParseTime(s string) (int, error) {
	parts := strings.Split(strings.TrimSpace(s), ":")
	if len(parts) != 3 {
		return 0, fmt.Errorf("invalid time %q", s)
	}
	var hms [3]int
	for i, p := range parts {
		n, err := strconv.Atoi(p)
		if err != nil || n < 0 {
			return 0, fmt.Errorf("invalid time %q", s)
		}
		hms[i] = n
	}
	if hms[1] > 59 || hms[2] > 59 {
		return 0, fmt.Errorf("invalid time %q", s)
	}
	return hms[0]*3600 + hms[1]*60 + hms[2], nil
}

func parseOptionalInt(s string) (any, error) {
	if s == "" {
		return nil, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return nil, fmt.Errorf("invalid integer %q", s)
	}
	return n, nil
}

func parseOptionalFloat(s string) (any, error) {
	if s == "" {
		return nil, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid number %q", s)
	}
	return f, nil
}
