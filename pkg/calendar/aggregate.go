package calendar

import (
	"slices"
	"time"

	fterrors "github.com/matzehuels/transitcal/pkg/errors"
	"github.com/matzehuels/transitcal/pkg/feed"
)

// GroupByService groups the dates of m by their Service. Expanding every group back
// to one entry per date reproduces m exactly.
func GroupByService(m ServiceIDsByDate) DatesByService {
	out := make(DatesByService)
	for _, d := range m.Dates() {
		s := m[d]
		out[s] = append(out[s], d)
	}
	return out
}

// Expand is the inverse of GroupByService.
func (m DatesByService) Expand() ServiceIDsByDate {
	out := make(ServiceIDsByDate)
	for s, dates := range m {
		for _, d := range dates {
			out[d] = s
		}
	}
	return out
}

// TripCountsByDate counts the trips running on each date. Trips are scanned
// once per distinct Service and the count is shared by all its dates.
func TripCountsByDate(trips *feed.Table, byService DatesByService) CountsByDate {
	out := make(CountsByDate)
	perID := trips.GroupBy("service_id")
	for s, dates := range byService {
		n := 0
		for _, id := range s.IDs() {
			if g, ok := perID[id]; ok {
				n += g.Len()
			}
		}
		for _, d := range dates {
			out[d] = n
		}
	}
	return out
}

// BusiestDate returns the date with the most trips and its Service. Ties go
// to the earliest date.
func BusiestDate(m ServiceIDsByDate, counts CountsByDate) (time.Time, Service, error) {
	dates := m.Dates()
	if len(dates) == 0 {
		return time.Time{}, Service{}, fterrors.New(fterrors.ErrCodeNoService, "no service found in feed")
	}
	best := dates[0]
	for _, d := range dates[1:] {
		if counts[d] > counts[best] {
			best = d
		}
	}
	return best, m[best], nil
}

// Week identifies an ISO 8601 week.
type Week struct {
	Year int
	Week int
}

// WeekOf returns the ISO week containing d.
func WeekOf(d time.Time) Week {
	y, w := d.ISOWeek()
	return Week{Year: y, Week: w}
}

func (w Week) before(o Week) bool {
	return w.Year < o.Year || (w.Year == o.Year && w.Week < o.Week)
}

// BusiestWeek returns the entries of m that fall in the ISO week with the
// highest total trip count. Ties go to the earliest week. Only dates present
// in m are returned, not every day of the week.
func BusiestWeek(m ServiceIDsByDate, counts CountsByDate) (ServiceIDsByDate, error) {
	if len(m) == 0 {
		return nil, fterrors.New(fterrors.ErrCodeNoService, "no service found in feed")
	}

	totals := make(map[Week]int)
	members := make(map[Week][]time.Time)
	for _, d := range m.Dates() {
		w := WeekOf(d)
		totals[w] += counts[d]
		members[w] = append(members[w], d)
	}

	weeks := make([]Week, 0, len(totals))
	for w := range totals {
		weeks = append(weeks, w)
	}
	slices.SortFunc(weeks, func(a, b Week) int {
		switch {
		case a.before(b):
			return -1
		case b.before(a):
			return 1
		}
		return 0
	})

	best := weeks[0]
	for _, w := range weeks[1:] {
		if totals[w] > totals[best] {
			best = w
		}
	}

	out := make(ServiceIDsByDate, len(members[best]))
	for _, d := range members[best] {
		out[d] = m[d]
	}
	return out, nil
}

// Total sums counts over the dates of m.
func Total(m ServiceIDsByDate, counts CountsByDate) int {
	n := 0
	for d := range m {
		n += counts[d]
	}
	return n
}
