package calendar

import (
	"context"
	"time"

	"github.com/matzehuels/transitcal/pkg/feed"
)

// withRawFeed loads the feed at path without filters or conversion, runs fn
// and closes the feed before returning.
func withRawFeed[T any](ctx context.Context, path string, fn func(*feed.Feed) (T, error)) (T, error) {
	var zero T
	f, err := feed.LoadRaw(ctx, path)
	if err != nil {
		return zero, err
	}
	defer f.Close()
	return fn(f)
}

// ReadServiceIDsByDate loads the feed at path and resolves its service
// calendar.
func ReadServiceIDsByDate(ctx context.Context, path string) (ServiceIDsByDate, error) {
	return withRawFeed(ctx, path, func(f *feed.Feed) (ServiceIDsByDate, error) {
		return ResolveServiceIDs(f)
	})
}

// ReadDatesByServiceIDs loads the feed at path and groups its dates by
// identical service.
func ReadDatesByServiceIDs(ctx context.Context, path string) (DatesByService, error) {
	return withRawFeed(ctx, path, func(f *feed.Feed) (DatesByService, error) {
		byDate, err := ResolveServiceIDs(f)
		if err != nil {
			return nil, err
		}
		return GroupByService(byDate), nil
	})
}

// ReadTripCountsByDate loads the feed at path and counts trips per date.
func ReadTripCountsByDate(ctx context.Context, path string) (CountsByDate, error) {
	return withRawFeed(ctx, path, func(f *feed.Feed) (CountsByDate, error) {
		_, counts, err := Resolve(f)
		return counts, err
	})
}

// ReadBusiestDate loads the feed at path and returns the date with the most
// trips, earliest first on ties, with its active service.
func ReadBusiestDate(ctx context.Context, path string) (time.Time, Service, error) {
	type result struct {
		date    time.Time
		service Service
	}
	r, err := withRawFeed(ctx, path, func(f *feed.Feed) (result, error) {
		byDate, counts, err := Resolve(f)
		if err != nil {
			return result{}, err
		}
		d, s, err := BusiestDate(byDate, counts)
		return result{d, s}, err
	})
	return r.date, r.service, err
}

// ReadBusiestWeek loads the feed at path and returns the service of every
// date in its busiest ISO week.
func ReadBusiestWeek(ctx context.Context, path string) (ServiceIDsByDate, error) {
	return withRawFeed(ctx, path, func(f *feed.Feed) (ServiceIDsByDate, error) {
		byDate, counts, err := Resolve(f)
		if err != nil {
			return nil, err
		}
		return BusiestWeek(byDate, counts)
	})
}

// Resolve computes the service calendar of src and the trip count of every
// date in it.
func Resolve(src feed.TableSource) (ServiceIDsByDate, CountsByDate, error) {
	byDate, err := ResolveServiceIDs(src)
	if err != nil {
		return nil, nil, err
	}
	trips, err := src.Table(feed.TableTrips)
	if err != nil {
		return nil, nil, err
	}
	return byDate, TripCountsByDate(trips, GroupByService(byDate)), nil
}
