package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/transitcal/pkg/cache"
	"github.com/matzehuels/transitcal/pkg/calendar"
	"github.com/matzehuels/transitcal/pkg/feed"
	"github.com/matzehuels/transitcal/pkg/observability"
)

const queryCalendar = "calendar"

// Runner encapsulates pipeline execution with caching.
//
// The Runner is stateless except for the cache and logger - it doesn't
// store pipeline results. Multiple goroutines can safely use the same
// Runner with different options as long as the cache is safe for it.
// A nil Cache disables caching: nothing is read, written or reported to
// the cache hooks.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Logger *log.Logger
}

// NewRunner creates a runner with the given cache and keyer.
// If keyer is nil, a DefaultKeyer is used.
// If cache is nil, caching is disabled.
func NewRunner(c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{
		Cache:  c,
		Keyer:  keyer,
		Logger: logger,
	}
}

type cachedCalendar struct {
	ServiceIDs calendar.ServiceIDsByDate `json:"service_ids"`
	Counts     calendar.CountsByDate     `json:"counts"`
}

// Resolve loads the feed and computes its service calendar and trip counts,
// serving both from the cache when the feed and view are unchanged.
func (r *Runner) Resolve(ctx context.Context, opts Options) (*Result, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	r.applyLogger(&opts)

	digest, err := cache.Digest(opts.Path)
	if err != nil {
		// Load reports missing paths with a proper error code.
		digest = ""
	}
	cacheable := r.Cache != nil && digest != "" && opts.Graph == nil
	key := r.Keyer.FeedKey(digest, queryCalendar, opts.View)

	if cacheable && !opts.Refresh {
		if res, ok := r.fromCache(ctx, key); ok {
			res.Digest = digest
			opts.Logger.Debug("calendar from cache", "path", opts.Path, "dates", len(res.ServiceIDs))
			return res, nil
		}
	}

	res, err := r.compute(ctx, opts)
	if err != nil {
		return nil, err
	}
	res.Digest = digest

	if cacheable {
		data, err := json.Marshal(cachedCalendar{ServiceIDs: res.ServiceIDs, Counts: res.Counts})
		if err == nil {
			if err := r.Cache.Set(ctx, key, data, cache.TTLServiceIDs); err != nil {
				opts.Logger.Warn("cache write failed", "error", err)
			} else {
				observability.Cache().OnCacheSet(ctx, queryCalendar, len(data))
			}
		}
	}
	return res, nil
}

func (r *Runner) fromCache(ctx context.Context, key string) (*Result, bool) {
	data, hit, err := r.Cache.Get(ctx, key)
	if err != nil || !hit {
		observability.Cache().OnCacheMiss(ctx, queryCalendar)
		return nil, false
	}
	var cached cachedCalendar
	if err := json.Unmarshal(data, &cached); err != nil || len(cached.ServiceIDs) == 0 {
		observability.Cache().OnCacheMiss(ctx, queryCalendar)
		return nil, false
	}
	observability.Cache().OnCacheHit(ctx, queryCalendar)
	return &Result{
		ServiceIDs: cached.ServiceIDs,
		Counts:     cached.Counts,
		Stats:      Stats{Dates: len(cached.ServiceIDs)},
		CacheInfo:  CacheInfo{Hit: true},
	}, true
}

func (r *Runner) compute(ctx context.Context, opts Options) (*Result, error) {
	loadStart := time.Now()
	f, err := feed.Load(ctx, opts.Path, opts.loadOptions(opts.Logger))
	if err != nil {
		return nil, fmt.Errorf("load: %w", err)
	}
	defer f.Close()
	loadTime := time.Since(loadStart)

	resolveStart := time.Now()
	observability.Feed().OnResolveStart(ctx, opts.Path)
	byDate, counts, err := calendar.Resolve(f)
	resolveTime := time.Since(resolveStart)
	observability.Feed().OnResolveComplete(ctx, opts.Path, len(byDate), resolveTime, err)
	if err != nil {
		return nil, fmt.Errorf("resolve: %w", err)
	}

	opts.Logger.Info("resolved calendar",
		"dates", len(byDate),
		"load", loadTime,
		"resolve", resolveTime)

	return &Result{
		ServiceIDs: byDate,
		Counts:     counts,
		Stats:      Stats{LoadTime: loadTime, ResolveTime: resolveTime, Dates: len(byDate)},
	}, nil
}

// TableCounts loads the feed through opts.View and the default graph and
// returns the number of visible rows of every known table.
func (r *Runner) TableCounts(ctx context.Context, opts Options) (map[string]int, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	r.applyLogger(&opts)

	f, err := feed.Load(ctx, opts.Path, feed.Options{View: opts.View, Graph: opts.Graph, Logger: opts.Logger})
	if err != nil {
		return nil, fmt.Errorf("load: %w", err)
	}
	defer f.Close()

	counts := make(map[string]int, len(feed.KnownTables))
	for _, name := range feed.KnownTables {
		t, err := f.Table(name)
		if err != nil {
			return nil, fmt.Errorf("table %s: %w", name, err)
		}
		counts[name] = t.Len()
	}
	return counts, nil
}

// Close releases resources held by the runner (primarily the cache).
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}

// applyLogger sets the runner's logger on options if not already set.
func (r *Runner) applyLogger(opts *Options) {
	if opts.Logger == nil {
		opts.Logger = r.Logger
	}
}
