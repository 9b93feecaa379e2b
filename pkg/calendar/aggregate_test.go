package calendar

import (
	"reflect"
	"slices"
	"testing"
	"time"

	"github.com/matzehuels/transitcal/internal/feedtest"
	fterrors "github.com/matzehuels/transitcal/pkg/errors"
)

func minimalResolved(t *testing.T) (ServiceIDsByDate, CountsByDate) {
	t.Helper()
	byDate, counts, err := Resolve(rawFeed(t, feedtest.Minimal()))
	if err != nil {
		t.Fatalf("Resolve() error: %v", err)
	}
	return byDate, counts
}

func TestGroupByService(t *testing.T) {
	byDate, _ := minimalResolved(t)
	groups := GroupByService(byDate)

	if len(groups) != 2 {
		t.Fatalf("len = %d, want 2", len(groups))
	}
	if got := groups[NewService("HOL")]; !slices.Equal(got, []time.Time{day(1)}) {
		t.Errorf("{HOL} = %v", got)
	}
	wantWD := []time.Time{day(2), day(3), day(6), day(7), day(8), day(9), day(10)}
	if got := groups[NewService("WD")]; !slices.Equal(got, wantWD) {
		t.Errorf("{WD} = %v, want %v", got, wantWD)
	}

	if order := groups.Services(); order[0] != NewService("HOL") {
		t.Errorf("Services()[0] = %v, want {HOL}", order[0])
	}
}

func TestGroupByService_RoundTrip(t *testing.T) {
	byDate := resolve(t, feedtest.Sample())
	if got := GroupByService(byDate).Expand(); !reflect.DeepEqual(got, byDate) {
		t.Errorf("Expand(GroupByService(m)) != m\n got %v\nwant %v", got, byDate)
	}
}

func TestTripCountsByDate(t *testing.T) {
	_, counts := minimalResolved(t)
	if counts[day(1)] != 1 {
		t.Errorf("counts[2020-01-01] = %d, want 1", counts[day(1)])
	}
	if counts[day(2)] != 3 {
		t.Errorf("counts[2020-01-02] = %d, want 3", counts[day(2)])
	}
	if len(counts) != 8 {
		t.Errorf("len = %d, want 8", len(counts))
	}
}

func TestTripCountsByDate_SharedService(t *testing.T) {
	byDate := resolve(t, feedtest.Sample())
	trips, err := rawFeed(t, feedtest.Sample()).Trips()
	if err != nil {
		t.Fatal(err)
	}
	counts := TripCountsByDate(trips, GroupByService(byDate))

	tests := []struct {
		date time.Time
		want int
	}{
		{day(1), 1}, // HOL only
		{day(2), 3}, // WD
		{day(4), 1}, // WE
	}
	for _, tt := range tests {
		if got := counts[tt.date]; got != tt.want {
			t.Errorf("counts[%s] = %d, want %d", tt.date.Format("2006-01-02"), got, tt.want)
		}
	}
}

func TestBusiestDate(t *testing.T) {
	byDate, counts := minimalResolved(t)
	d, s, err := BusiestDate(byDate, counts)
	if err != nil {
		t.Fatal(err)
	}
	// 2020-01-02 ties with every later weekday; the earliest wins.
	if !d.Equal(day(2)) || s != NewService("WD") {
		t.Errorf("BusiestDate() = %s %v, want 2020-01-02 {WD}", d.Format("2006-01-02"), s)
	}
}

func TestBusiestDate_TieBreak(t *testing.T) {
	a, b := NewService("A"), NewService("B")
	byDate := ServiceIDsByDate{day(9): b, day(3): a, day(5): b}
	counts := CountsByDate{day(9): 7, day(3): 2, day(5): 7}

	d, s, err := BusiestDate(byDate, counts)
	if err != nil {
		t.Fatal(err)
	}
	if !d.Equal(day(5)) || s != b {
		t.Errorf("BusiestDate() = %s %v, want 2020-01-05 {B}", d.Format("2006-01-02"), s)
	}

	if _, _, err := BusiestDate(ServiceIDsByDate{}, counts); !fterrors.Is(err, fterrors.ErrCodeNoService) {
		t.Errorf("empty map err = %v, want NO_SERVICE", err)
	}
}

func TestBusiestWeek(t *testing.T) {
	byDate, counts := minimalResolved(t)
	week, err := BusiestWeek(byDate, counts)
	if err != nil {
		t.Fatal(err)
	}

	want := []time.Time{day(6), day(7), day(8), day(9), day(10)}
	if got := week.Dates(); !slices.Equal(got, want) {
		t.Errorf("Dates() = %v, want %v", got, want)
	}
	if total := Total(week, counts); total != 15 {
		t.Errorf("Total() = %d, want 15", total)
	}

	// No other bucket beats the chosen one.
	totals := map[Week]int{}
	for d, n := range counts {
		totals[WeekOf(d)] += n
	}
	for w, n := range totals {
		if n > Total(week, counts) {
			t.Errorf("week %v total %d exceeds busiest week", w, n)
		}
	}
}

func TestBusiestWeek_TieBreakAndPartialWeeks(t *testing.T) {
	s := NewService("S")
	// 2019-12-30 and 2020-01-01 are both in ISO week 2020-W01; 2020-01-08 is in W02.
	dec30 := time.Date(2019, 12, 30, 0, 0, 0, 0, time.UTC)
	byDate := ServiceIDsByDate{dec30: s, day(1): s, day(8): s}
	counts := CountsByDate{dec30: 2, day(1): 3, day(8): 5}

	week, err := BusiestWeek(byDate, counts)
	if err != nil {
		t.Fatal(err)
	}
	want := ServiceIDsByDate{dec30: s, day(1): s}
	if !reflect.DeepEqual(week, want) {
		t.Errorf("BusiestWeek() = %v, want %v", week, want)
	}
}

func TestWeekOf(t *testing.T) {
	tests := []struct {
		date time.Time
		want Week
	}{
		{day(1), Week{2020, 1}},
		{day(6), Week{2020, 2}},
		{time.Date(2021, 1, 3, 0, 0, 0, 0, time.UTC), Week{2020, 53}},
	}
	for _, tt := range tests {
		if got := WeekOf(tt.date); got != tt.want {
			t.Errorf("WeekOf(%s) = %v, want %v", tt.date.Format("2006-01-02"), got, tt.want)
		}
	}
}
