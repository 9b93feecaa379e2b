package calendar

import (
	"strconv"
	"strings"
	"time"

	fterrors "github.com/matzehuels/transitcal/pkg/errors"
	"github.com/matzehuels/transitcal/pkg/feed"
)

// GTFS exception_type values.
const (
	ExceptionAdded   = 1
	ExceptionRemoved = 2
)

type removal struct {
	date time.Time
	id   string
}

// ResolveServiceIDs resolves the active service ids for every date of the
// feed. Weekly patterns from calendar.txt and additions from
// calendar_dates.txt are collected first; removals are applied afterwards, so
// a removal always wins over an addition of the same service on the same date
// regardless of row order. Only services referenced by trips.txt count.
//
// Both raw feeds (string values) and converted feeds are accepted. A
// malformed date or weekday flag is a PARSE_ERROR; exception rows of any
// type other than 1 or 2 are ignored. An empty result is a NO_SERVICE error.
func ResolveServiceIDs(src feed.TableSource) (ServiceIDsByDate, error) {
	trips, err := src.Table(feed.TableTrips)
	if err != nil {
		return nil, err
	}
	used := trips.ValueSet("service_id")

	cal, err := src.Table(feed.TableCalendar)
	if err != nil {
		return nil, err
	}
	dates, err := src.Table(feed.TableCalendarDates)
	if err != nil {
		return nil, err
	}

	active := make(map[time.Time]map[string]struct{})
	add := func(d time.Time, id string) {
		set, ok := active[d]
		if !ok {
			set = make(map[string]struct{})
			active[d] = set
		}
		set[id] = struct{}{}
	}

	if cal.HasColumn("service_id") {
		for _, r := range cal.IsIn("service_id", used).Rows() {
			if err := expandWeekly(r, add); err != nil {
				return nil, err
			}
		}
	}

	var removals []removal
	if dates.HasColumn("service_id") {
		for _, r := range dates.IsIn("service_id", used).Rows() {
			id := feed.ValueString(r["service_id"])
			d, err := dateValue(feed.TableCalendarDates, "date", r["date"])
			if err != nil {
				return nil, err
			}
			switch exceptionType(r["exception_type"]) {
			case ExceptionAdded:
				add(d, id)
			case ExceptionRemoved:
				removals = append(removals, removal{date: d, id: id})
			}
		}
	}

	for _, rm := range removals {
		if set, ok := active[rm.date]; ok {
			delete(set, rm.id)
			if len(set) == 0 {
				delete(active, rm.date)
			}
		}
	}

	if len(active) == 0 {
		return nil, fterrors.New(fterrors.ErrCodeNoService, "no service found in feed")
	}

	out := make(ServiceIDsByDate, len(active))
	for d, set := range active {
		ids := make([]string, 0, len(set))
		for id := range set {
			ids = append(ids, id)
		}
		out[d] = NewService(ids...)
	}
	return out, nil
}

// expandWeekly adds a calendar.txt row's service id to every date in its
// range whose weekday flag is set.
func expandWeekly(r feed.Row, add func(time.Time, string)) error {
	id := feed.ValueString(r["service_id"])
	start, err := dateValue(feed.TableCalendar, "start_date", r["start_date"])
	if err != nil {
		return err
	}
	end, err := dateValue(feed.TableCalendar, "end_date", r["end_date"])
	if err != nil {
		return err
	}

	var flags [7]bool
	for i, day := range feed.Weekdays {
		v, err := intValue(feed.TableCalendar, day, r[day])
		if err != nil {
			return err
		}
		flags[i] = v != 0
	}

	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		if flags[weekdayIndex(d)] {
			add(d, id)
		}
	}
	return nil
}

// weekdayIndex numbers days Monday=0 through Sunday=6.
func weekdayIndex(d time.Time) int { return (int(d.Weekday()) + 6) % 7 }

// exceptionType returns the exception_type of a calendar_dates.txt row, or 0
// when it is neither an addition nor a removal.
func exceptionType(v any) int {
	switch x := v.(type) {
	case int:
		if x == ExceptionAdded || x == ExceptionRemoved {
			return x
		}
	case string:
		switch strings.TrimSpace(x) {
		case "1":
			return ExceptionAdded
		case "2":
			return ExceptionRemoved
		}
	}
	return 0
}

func dateValue(table, col string, v any) (time.Time, error) {
	switch x := v.(type) {
	case time.Time:
		return x, nil
	case string:
		d, err := feed.ParseDate(x)
		if err != nil {
			return time.Time{}, fterrors.Wrap(fterrors.ErrCodeParse, err, "%s: column %s value %q", table, col, x)
		}
		return d, nil
	default:
		return time.Time{}, fterrors.New(fterrors.ErrCodeParse, "%s: column %s value %v is not a date", table, col, v)
	}
}

func intValue(table, col string, v any) (int, error) {
	switch x := v.(type) {
	case int:
		return x, nil
	case string:
		n, err := strconv.Atoi(strings.TrimSpace(x))
		if err != nil {
			return 0, fterrors.Wrap(fterrors.ErrCodeParse, err, "%s: column %s value %q", table, col, x)
		}
		return n, nil
	default:
		return 0, fterrors.New(fterrors.ErrCodeParse, "%s: column %s value %v is not an integer", table, col, v)
	}
}
