package feed

import (
	"slices"
	"testing"
	"time"
)

func tripsTable() *Table {
	return NewTable([]string{"trip_id", "route_id", "service_id"}, []Row{
		{"trip_id": "t1", "route_id": "A", "service_id": "WD"},
		{"trip_id": "t2", "route_id": "A", "service_id": "WE"},
		{"trip_id": "t3", "route_id": "B", "service_id": "WD"},
	})
}

func TestTableIsIn(t *testing.T) {
	tests := []struct {
		name string
		col  string
		set  map[string]struct{}
		want int
	}{
		{"match some", "route_id", map[string]struct{}{"A": {}}, 2},
		{"match none", "route_id", map[string]struct{}{"Z": {}}, 0},
		{"empty set", "service_id", map[string]struct{}{}, 0},
		{"missing column ignored", "block_id", map[string]struct{}{"x": {}}, 3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tripsTable().IsIn(tt.col, tt.set).Len(); got != tt.want {
				t.Errorf("IsIn().Len() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestTableValues(t *testing.T) {
	got := tripsTable().Values("service_id")
	if !slices.Equal(got, []string{"WD", "WE"}) {
		t.Errorf("Values() = %v, want [WD WE]", got)
	}
	if vals := tripsTable().Values("nope"); len(vals) != 0 {
		t.Errorf("Values(missing) = %v, want empty", vals)
	}
}

func TestTableGroupBy(t *testing.T) {
	groups := tripsTable().GroupBy("service_id")
	if len(groups) != 2 {
		t.Fatalf("GroupBy() = %d groups, want 2", len(groups))
	}
	if groups["WD"].Len() != 2 || groups["WE"].Len() != 1 {
		t.Errorf("group sizes WD=%d WE=%d", groups["WD"].Len(), groups["WE"].Len())
	}
	if !groups["WD"].HasColumn("trip_id") {
		t.Error("groups should keep columns")
	}
}

func TestTableFilterDoesNotModify(t *testing.T) {
	base := tripsTable()
	f := base.Filter(func(r Row) bool { return r["trip_id"] == "t1" })
	if f.Len() != 1 || base.Len() != 3 {
		t.Errorf("Filter() len = %d, base len = %d", f.Len(), base.Len())
	}
}

func TestValueString(t *testing.T) {
	d := time.Date(2020, 1, 2, 0, 0, 0, 0, time.UTC)
	tests := []struct {
		in   any
		want string
	}{
		{nil, ""},
		{"WD", "WD"},
		{3, "3"},
		{1.5, "1.5"},
		{d, d.String()},
	}
	for _, tt := range tests {
		if got := ValueString(tt.in); got != tt.want {
			t.Errorf("ValueString(%v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
