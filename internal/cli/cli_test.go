package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/transitcal/internal/feedtest"
	"github.com/matzehuels/transitcal/pkg/buildinfo"
	"github.com/matzehuels/transitcal/pkg/cache"
	"github.com/matzehuels/transitcal/pkg/calendar"
	fterrors "github.com/matzehuels/transitcal/pkg/errors"
	"github.com/matzehuels/transitcal/pkg/feed"
	graphio "github.com/matzehuels/transitcal/pkg/io"
)

// execute runs the root command with a fresh cache home and returns its
// stdout.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	return executeIn(t, t.TempDir(), New(io.Discard, LogInfo), args...)
}

// executeIn runs c's root command with XDG_CACHE_HOME set to cacheHome.
func executeIn(t *testing.T, cacheHome string, c *CLI, args ...string) (string, error) {
	t.Helper()
	t.Setenv("XDG_CACHE_HOME", cacheHome)

	root := c.RootCommand()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func TestServiceIDsCommand_JSON(t *testing.T) {
	dir := feedtest.WriteDir(t, feedtest.Minimal())

	out, err := execute(t, "service-ids", dir, "--json", "--no-cache")
	if err != nil {
		t.Fatal(err)
	}
	var got calendar.ServiceIDsByDate
	if err := json.Unmarshal([]byte(out), &got); err != nil {
		t.Fatalf("decode %q: %v", out, err)
	}
	want, err := calendar.ReadServiceIDsByDate(context.Background(), dir)
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("service-ids = %v, want %v", got, want)
	}
}

func TestBusiestDateCommand_JSON(t *testing.T) {
	dir := feedtest.WriteDir(t, feedtest.Minimal())

	out, err := execute(t, "busiest-date", dir, "--json", "--no-cache")
	if err != nil {
		t.Fatal(err)
	}
	var got busiestDate
	if err := json.Unmarshal([]byte(out), &got); err != nil {
		t.Fatal(err)
	}
	want := busiestDate{Date: "20200102", ServiceIDs: []string{"WD"}, Trips: 3}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("busiest-date = %+v, want %+v", got, want)
	}
}

func TestBusiestWeekCommand_JSON(t *testing.T) {
	dir := feedtest.WriteDir(t, feedtest.Minimal())

	out, err := execute(t, "busiest-week", dir, "--json", "--no-cache")
	if err != nil {
		t.Fatal(err)
	}
	var got busiestWeek
	if err := json.Unmarshal([]byte(out), &got); err != nil {
		t.Fatal(err)
	}
	if got.Year != 2020 || got.Week != 2 || got.Trips != 15 || len(got.ServiceIDs) != 5 {
		t.Errorf("busiest-week = %d-W%d, %d trips over %d dates", got.Year, got.Week, got.Trips, len(got.ServiceIDs))
	}
}

func TestDatesCommand_JSON(t *testing.T) {
	dir := feedtest.WriteDir(t, feedtest.Minimal())

	out, err := execute(t, "dates", dir, "--json", "--no-cache")
	if err != nil {
		t.Fatal(err)
	}
	var got []serviceGroup
	if err := json.Unmarshal([]byte(out), &got); err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 {
		t.Fatalf("groups = %+v", got)
	}
	if !reflect.DeepEqual(got[0], serviceGroup{ServiceIDs: []string{"HOL"}, Dates: []string{"20200101"}}) {
		t.Errorf("first group = %+v", got[0])
	}
	if len(got[1].Dates) != 7 {
		t.Errorf("WD dates = %v", got[1].Dates)
	}
}

func TestTripCountsCommand_Cached(t *testing.T) {
	dir := feedtest.WriteDir(t, feedtest.Minimal())
	t.Setenv("XDG_CACHE_HOME", t.TempDir())

	run := func() string {
		var logs, out bytes.Buffer
		root := New(&logs, LogInfo).RootCommand()
		root.SetOut(&out)
		root.SetArgs([]string{"trip-counts", dir})
		if err := root.ExecuteContext(context.Background()); err != nil {
			t.Fatal(err)
		}
		return out.String()
	}

	first := run()
	if !strings.Contains(first, "fresh") {
		t.Errorf("first run output:\n%s", first)
	}
	second := run()
	if !strings.Contains(second, "cached") {
		t.Errorf("second run output:\n%s", second)
	}
}

func TestTablesCommand_View(t *testing.T) {
	dir := feedtest.WriteDir(t, feedtest.Sample())
	view := filepath.Join(t.TempDir(), "view.toml")
	content := `[[filters]]
table = "routes.txt"
columns = { route_id = ["A"] }
`
	if err := os.WriteFile(view, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	out, err := execute(t, "tables", dir, "--view", view, "--json")
	if err != nil {
		t.Fatal(err)
	}
	var counts map[string]int
	if err := json.Unmarshal([]byte(out), &counts); err != nil {
		t.Fatal(err)
	}
	if counts["trips.txt"] != 2 || counts["routes.txt"] != 1 {
		t.Errorf("counts = %v", counts)
	}
}

func TestGraphCommand(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want string
		code fterrors.Code
	}{
		{"default", []string{"graph"}, `"routes.txt" -> "trips.txt" [label="route_id"]`, ""},
		{"rerooted", []string{"graph", "--root", "routes.txt"}, `"trips.txt" -> "routes.txt" [label="route_id"]`, ""},
		{"raw", []string{"graph", "--raw"}, `"trips.txt" [label="trips.txt"]`, ""},
		{"unknown root", []string{"graph", "--root", "nope.txt"}, "", fterrors.ErrCodeInvalidInput},
		{"bad format", []string{"graph", "--format", "png"}, "", fterrors.ErrCodeInvalidInput},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := execute(t, tt.args...)
			if tt.code != "" {
				if !fterrors.Is(err, tt.code) {
					t.Errorf("err = %v, want %s", err, tt.code)
				}
				return
			}
			if err != nil {
				t.Fatal(err)
			}
			if !strings.Contains(out, tt.want) {
				t.Errorf("output missing %q:\n%s", tt.want, out)
			}
		})
	}
}

func TestGraphCommand_RawHasNoEdges(t *testing.T) {
	out, err := execute(t, "graph", "--raw")
	if err != nil {
		t.Fatal(err)
	}
	if strings.Contains(out, "->") {
		t.Errorf("raw graph has edges:\n%s", out)
	}
}

func TestGraphCommand_JSONFeedsGraphFlag(t *testing.T) {
	out, err := execute(t, "graph", "--format", "json", "--raw")
	if err != nil {
		t.Fatal(err)
	}
	g, err := graphio.ReadJSON(strings.NewReader(out), feed.LookupConverter)
	if err != nil {
		t.Fatal(err)
	}
	if g.EdgeCount() != 0 || g.NodeCount() != len(feed.KnownTables) {
		t.Fatalf("raw graph: %d nodes, %d edges", g.NodeCount(), g.EdgeCount())
	}

	graphPath := filepath.Join(t.TempDir(), "graph.json")
	if err := os.WriteFile(graphPath, []byte(out), 0o644); err != nil {
		t.Fatal(err)
	}
	view := filepath.Join(t.TempDir(), "view.yaml")
	content := "filters:\n  - table: routes.txt\n    columns:\n      route_id: [A]\n"
	if err := os.WriteFile(view, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	dir := feedtest.WriteDir(t, feedtest.Sample())
	out, err = execute(t, "tables", dir, "--view", view, "--graph", graphPath, "--json")
	if err != nil {
		t.Fatal(err)
	}
	var counts map[string]int
	if err := json.Unmarshal([]byte(out), &counts); err != nil {
		t.Fatal(err)
	}
	// Without relations the routes filter does not reach trips.
	if counts["routes.txt"] != 1 || counts["trips.txt"] != 5 {
		t.Errorf("counts = %v", counts)
	}
}

func TestCommandErrors(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "missing.zip")

	_, err := execute(t, "service-ids", missing, "--no-cache")
	if !fterrors.Is(err, fterrors.ErrCodeFileNotFound) {
		t.Errorf("missing feed err = %v", err)
	}

	view := filepath.Join(t.TempDir(), "view.json")
	if err := os.WriteFile(view, []byte(`{}`), 0o644); err != nil {
		t.Fatal(err)
	}
	_, err = execute(t, "service-ids", t.TempDir(), "--view", view)
	if !fterrors.Is(err, fterrors.ErrCodeInvalidView) {
		t.Errorf("bad view err = %v", err)
	}

	if _, err := execute(t, "busiest-date"); err == nil {
		t.Error("missing argument should fail")
	}
}

func TestCacheDir(t *testing.T) {
	tests := []struct {
		name string
		xdg  string
		home string
		want string
	}{
		{"xdg", "/tmp/xdg-cache", "/home/rider", filepath.Join("/tmp/xdg-cache", appName)},
		{"home fallback", "", "/home/rider", filepath.Join("/home/rider", ".cache", appName)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("XDG_CACHE_HOME", tt.xdg)
			t.Setenv("HOME", tt.home)
			got, err := cacheDir()
			if err != nil {
				t.Fatalf("cacheDir() error: %v", err)
			}
			if got != tt.want {
				t.Errorf("cacheDir() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestCacheCommands(t *testing.T) {
	home := t.TempDir()
	dir := filepath.Join(home, appName)
	feedDir := feedtest.WriteDir(t, feedtest.Minimal())
	c := New(io.Discard, LogInfo)

	out, err := executeIn(t, home, c, "cache", "clear")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "Cache is empty") {
		t.Errorf("clear before any run = %q", out)
	}

	out, err = executeIn(t, home, c, "cache", "path")
	if err != nil {
		t.Fatal(err)
	}
	if got := strings.TrimSpace(out); got != dir {
		t.Errorf("cache path = %q, want %q", got, dir)
	}

	if _, err := executeIn(t, home, c, "trip-counts", feedDir); err != nil {
		t.Fatal(err)
	}
	entries, err := os.ReadDir(dir)
	if err != nil || len(entries) == 0 {
		t.Fatalf("no cache entries after a cached run: %v", err)
	}

	out, err = executeIn(t, home, c, "cache", "clear")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "Cleared cache") || !strings.Contains(out, dir) {
		t.Errorf("clear output = %q", out)
	}
	if entries, _ := os.ReadDir(dir); len(entries) != 0 {
		t.Errorf("%d entries left after clear", len(entries))
	}
}

func TestNewCache(t *testing.T) {
	home := t.TempDir()
	t.Setenv("XDG_CACHE_HOME", home)

	off, err := newCache(true)
	if err != nil || off != nil {
		t.Errorf("newCache(true) = %v, %v, want no cache", off, err)
	}

	on, err := newCache(false)
	if err != nil {
		t.Fatal(err)
	}
	defer on.Close()
	fc, ok := on.(*cache.FileCache)
	if !ok {
		t.Fatalf("newCache(false) = %T, want *cache.FileCache", on)
	}
	if fc.Dir() != filepath.Join(home, appName) {
		t.Errorf("cache dir = %q", fc.Dir())
	}
}

func TestKeyerScopedToRelease(t *testing.T) {
	defer func(v string) { buildinfo.Version = v }(buildinfo.Version)

	buildinfo.Version = "v1.0.0"
	key := newKeyer().FeedKey("digest", "calendar", nil)
	if !strings.HasPrefix(key, "transitcal:v1.0.0:") {
		t.Errorf("key %q lacks the release scope", key)
	}
	if want := buildinfo.CacheScope() + cache.NewDefaultKeyer().FeedKey("digest", "calendar", nil); key != want {
		t.Errorf("key = %q, want %q", key, want)
	}

	buildinfo.Version = "v1.1.0"
	if newKeyer().FeedKey("digest", "calendar", nil) == key {
		t.Error("a new release must not reuse cache keys")
	}
}

func TestLogLevels(t *testing.T) {
	path := feedtest.WriteZip(t, feedtest.Minimal(), "")

	tests := []struct {
		name      string
		level     log.Level
		wantDebug bool
	}{
		{"info", LogInfo, false},
		{"debug", LogDebug, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var logs bytes.Buffer
			if _, err := executeIn(t, t.TempDir(), New(&logs, tt.level), "service-ids", path, "--no-cache"); err != nil {
				t.Fatal(err)
			}
			if !strings.Contains(logs.String(), "Resolved 8 dates") {
				t.Errorf("progress line missing:\n%s", logs.String())
			}
			if got := strings.Contains(logs.String(), "unpacked archive"); got != tt.wantDebug {
				t.Errorf("debug output = %v, want %v:\n%s", got, tt.wantDebug, logs.String())
			}
		})
	}
}

func TestSetLogLevel(t *testing.T) {
	var buf bytes.Buffer
	c := New(&buf, LogInfo)

	c.Logger.Debug("hidden")
	if buf.Len() != 0 {
		t.Fatal("debug message logged at info level")
	}

	c.SetLogLevel(LogDebug)
	c.Logger.Debug("shown")
	if !bytes.Contains(buf.Bytes(), []byte("shown")) {
		t.Error("debug message missing after SetLogLevel(LogDebug)")
	}
}

func TestProgressTimestamps(t *testing.T) {
	var buf bytes.Buffer
	prog := newProgress(newLogger(&buf, LogInfo))
	prog.done("Resolved 3 dates")

	line := buf.String()
	if !strings.Contains(line, "Resolved 3 dates (") {
		t.Errorf("progress line = %q", line)
	}
	if _, err := time.Parse("15:04:05.00", strings.Fields(line)[0]); err != nil {
		t.Errorf("timestamp of %q: %v", line, err)
	}
}
