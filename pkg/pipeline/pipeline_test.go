package pipeline

import (
	"context"
	"io"
	"path/filepath"
	"reflect"
	"testing"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/transitcal/internal/feedtest"
	"github.com/matzehuels/transitcal/pkg/cache"
	"github.com/matzehuels/transitcal/pkg/calendar"
	"github.com/matzehuels/transitcal/pkg/dag"
	fterrors "github.com/matzehuels/transitcal/pkg/errors"
	"github.com/matzehuels/transitcal/pkg/feed"
	"github.com/matzehuels/transitcal/pkg/observability"
)

func quietLogger() *log.Logger {
	return log.NewWithOptions(io.Discard, log.Options{Level: log.FatalLevel})
}

func fileRunner(t *testing.T) *Runner {
	t.Helper()
	c, err := cache.NewFileCache(filepath.Join(t.TempDir(), "cache"))
	if err != nil {
		t.Fatal(err)
	}
	return NewRunner(c, nil, quietLogger())
}

func TestOptionsValidate(t *testing.T) {
	tests := []struct {
		name string
		opts Options
		code fterrors.Code
	}{
		{"missing path", Options{}, fterrors.ErrCodeInvalidInput},
		{"bad table", Options{Path: "x", View: feed.View{{Table: "a/b.txt", Filter: feed.ColumnFilter{"c": {"d"}}}}}, fterrors.ErrCodeInvalidView},
		{"empty filter", Options{Path: "x", View: feed.View{{Table: "routes.txt"}}}, fterrors.ErrCodeInvalidView},
		{"ok", Options{Path: "x"}, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.opts.Validate()
			if tt.code == "" {
				if err != nil {
					t.Errorf("Validate() = %v, want nil", err)
				}
				return
			}
			if !fterrors.Is(err, tt.code) {
				t.Errorf("Validate() = %v, want %s", err, tt.code)
			}
		})
	}
}

func TestRunnerResolve(t *testing.T) {
	r := fileRunner(t)
	defer r.Close()
	ctx := context.Background()
	path := feedtest.WriteZip(t, feedtest.Minimal(), "")

	first, err := r.Resolve(ctx, Options{Path: path})
	if err != nil {
		t.Fatal(err)
	}
	if first.CacheInfo.Hit {
		t.Error("first run should miss the cache")
	}
	if first.Counts[time.Date(2020, 1, 2, 0, 0, 0, 0, time.UTC)] != 3 {
		t.Errorf("counts = %v", first.Counts)
	}

	second, err := r.Resolve(ctx, Options{Path: path})
	if err != nil {
		t.Fatal(err)
	}
	if !second.CacheInfo.Hit {
		t.Error("second run should hit the cache")
	}
	if !reflect.DeepEqual(first.ServiceIDs, second.ServiceIDs) || !reflect.DeepEqual(first.Counts, second.Counts) {
		t.Error("cached results differ from computed ones")
	}
	if first.Digest == "" || first.Digest != second.Digest {
		t.Errorf("digests %q / %q", first.Digest, second.Digest)
	}

	refreshed, err := r.Resolve(ctx, Options{Path: path, Refresh: true})
	if err != nil {
		t.Fatal(err)
	}
	if refreshed.CacheInfo.Hit {
		t.Error("Refresh should bypass the cache")
	}
}

func TestRunnerResolve_MatchesDirectComputation(t *testing.T) {
	r := fileRunner(t)
	ctx := context.Background()
	dir := feedtest.WriteDir(t, feedtest.Sample())

	res, err := r.Resolve(ctx, Options{Path: dir})
	if err != nil {
		t.Fatal(err)
	}
	want, err := calendar.ReadServiceIDsByDate(ctx, dir)
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(res.ServiceIDs, want) {
		t.Errorf("Resolve() = %v, want %v", res.ServiceIDs, want)
	}
}

func TestRunnerResolve_ViewChangesKey(t *testing.T) {
	r := fileRunner(t)
	ctx := context.Background()
	dir := feedtest.WriteDir(t, feedtest.Sample())

	all, err := r.Resolve(ctx, Options{Path: dir})
	if err != nil {
		t.Fatal(err)
	}
	rail, err := r.Resolve(ctx, Options{Path: dir, View: feed.View{
		{Table: feed.TableRoutes, Filter: feed.ColumnFilter{"route_id": {"R"}}},
	}})
	if err != nil {
		t.Fatal(err)
	}
	if rail.CacheInfo.Hit {
		t.Error("filtered run must not reuse the unfiltered entry")
	}
	if len(rail.ServiceIDs) != 2 || len(all.ServiceIDs) <= len(rail.ServiceIDs) {
		t.Errorf("dates: all=%d rail=%d", len(all.ServiceIDs), len(rail.ServiceIDs))
	}
}

func TestRunnerResolve_Errors(t *testing.T) {
	r := NewRunner(nil, nil, quietLogger())
	ctx := context.Background()

	_, err := r.Resolve(ctx, Options{Path: filepath.Join(t.TempDir(), "missing")})
	if !fterrors.Is(err, fterrors.ErrCodeFileNotFound) {
		t.Errorf("missing feed err = %v", err)
	}

	noService := feedtest.WriteDir(t, feedtest.Minimal().Without(feed.TableCalendar, feed.TableCalendarDates))
	_, err = r.Resolve(ctx, Options{Path: noService})
	if !fterrors.Is(err, fterrors.ErrCodeNoService) {
		t.Errorf("no service err = %v", err)
	}
}

func TestRunnerTableCounts(t *testing.T) {
	r := NewRunner(nil, nil, quietLogger())
	dir := feedtest.WriteDir(t, feedtest.Sample())

	counts, err := r.TableCounts(context.Background(), Options{Path: dir, View: feed.View{
		{Table: feed.TableRoutes, Filter: feed.ColumnFilter{"route_id": {"A"}}},
	}})
	if err != nil {
		t.Fatal(err)
	}
	want := map[string]int{
		feed.TableTrips:     2,
		feed.TableStopTimes: 2,
		feed.TableStops:     2,
		feed.TableCalendar:  1,
		feed.TableRoutes:    1,
		feed.TableShapes:    0,
	}
	for name, n := range want {
		if counts[name] != n {
			t.Errorf("%s = %d, want %d", name, counts[name], n)
		}
	}
	if len(counts) != len(feed.KnownTables) {
		t.Errorf("len = %d, want %d", len(counts), len(feed.KnownTables))
	}
}

type countingCacheHooks struct {
	observability.NoopCacheHooks
	hits, misses, sets int
}

func (h *countingCacheHooks) OnCacheHit(context.Context, string)      { h.hits++ }
func (h *countingCacheHooks) OnCacheMiss(context.Context, string)     { h.misses++ }
func (h *countingCacheHooks) OnCacheSet(context.Context, string, int) { h.sets++ }

func TestRunnerResolve_WithoutCache(t *testing.T) {
	hooks := &countingCacheHooks{}
	observability.SetCacheHooks(hooks)
	defer observability.Reset()

	r := NewRunner(nil, nil, quietLogger())
	if r.Cache != nil {
		t.Fatalf("NewRunner(nil) Cache = %T, want nil", r.Cache)
	}
	path := feedtest.WriteZip(t, feedtest.Minimal(), "")
	for i := 0; i < 2; i++ {
		res, err := r.Resolve(context.Background(), Options{Path: path})
		if err != nil {
			t.Fatal(err)
		}
		if res.CacheInfo.Hit {
			t.Errorf("run %d hit a disabled cache", i+1)
		}
	}
	if hooks.hits+hooks.misses+hooks.sets != 0 {
		t.Errorf("cache hooks fired without a cache: %+v", *hooks)
	}
	if err := r.Close(); err != nil {
		t.Errorf("Close() = %v", err)
	}
}

func TestRunnerResolve_GraphWithoutView(t *testing.T) {
	cyclic := dag.New(nil)
	_ = cyclic.AddNode(dag.Node{ID: feed.TableTrips})
	_ = cyclic.AddNode(dag.Node{ID: feed.TableRoutes})
	_ = cyclic.AddEdge(dag.Edge{From: feed.TableTrips, To: feed.TableRoutes})
	_ = cyclic.AddEdge(dag.Edge{From: feed.TableRoutes, To: feed.TableTrips})

	r := NewRunner(nil, nil, quietLogger())
	dir := feedtest.WriteDir(t, feedtest.Minimal())
	_, err := r.Resolve(context.Background(), Options{Path: dir, Graph: cyclic})
	if !fterrors.Is(err, fterrors.ErrCodeInvalidGraph) {
		t.Errorf("Resolve() = %v, want INVALID_GRAPH from the custom graph", err)
	}

	raw, err := r.Resolve(context.Background(), Options{Path: dir, Graph: feed.EmptyGraph()})
	if err != nil {
		t.Fatal(err)
	}
	want, err := calendar.ReadServiceIDsByDate(context.Background(), dir)
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(raw.ServiceIDs, want) {
		t.Errorf("Resolve() = %v, want %v", raw.ServiceIDs, want)
	}
}
