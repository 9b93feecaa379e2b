// Package observability provides hooks for metrics, tracing, and logging.
//
// This package enables optional instrumentation without adding hard dependencies
// on specific observability backends. Consumers can register hooks at startup
// to receive events about feed loading, calendar resolution and cache use.
//
// # Architecture
//
// The package uses a simple hooks pattern:
//   - Define hook interfaces for different event categories
//   - Provide no-op default implementations
//   - Allow registration of custom implementations at startup
//
// Hooks are registered by main, not by libraries, so feed and calendar code
// never import a metrics backend.
//
// # Usage
//
// Register hooks at application startup:
//
//	func main() {
//	    observability.SetFeedHooks(&myFeedHooks{})
//	    observability.SetCacheHooks(&myCacheHooks{})
//	    // ... run application
//	}
//
// Libraries call hooks to emit events:
//
//	observability.Feed().OnLoadStart(ctx, path, layers)
//	// ... load ...
//	observability.Feed().OnLoadComplete(ctx, path, duration, err)
package observability

import (
	"context"
	"sync"
	"time"
)

// =============================================================================
// Feed Hooks
// =============================================================================

// FeedHooks receives events from feed loading and calendar resolution.
type FeedHooks interface {
	// Load events
	OnLoadStart(ctx context.Context, path string, layers int)
	OnLoadComplete(ctx context.Context, path string, duration time.Duration, err error)

	// Unpack events (archive inputs only)
	OnUnpack(ctx context.Context, path string, files int, duration time.Duration, err error)

	// Resolve events
	OnResolveStart(ctx context.Context, path string)
	OnResolveComplete(ctx context.Context, path string, dates int, duration time.Duration, err error)
}

// =============================================================================
// Cache Hooks
// =============================================================================

// CacheHooks receives events from cache operations.
type CacheHooks interface {
	// OnCacheHit records a cache hit.
	OnCacheHit(ctx context.Context, keyType string)

	// OnCacheMiss records a cache miss.
	OnCacheMiss(ctx context.Context, keyType string)

	// OnCacheSet records a cache write.
	OnCacheSet(ctx context.Context, keyType string, size int)
}

// =============================================================================
// No-op Implementations
// =============================================================================

// NoopFeedHooks is a no-op implementation of FeedHooks.
type NoopFeedHooks struct{}

func (NoopFeedHooks) OnLoadStart(context.Context, string, int)                             {}
func (NoopFeedHooks) OnLoadComplete(context.Context, string, time.Duration, error)         {}
func (NoopFeedHooks) OnUnpack(context.Context, string, int, time.Duration, error)          {}
func (NoopFeedHooks) OnResolveStart(context.Context, string)                               {}
func (NoopFeedHooks) OnResolveComplete(context.Context, string, int, time.Duration, error) {}

// NoopCacheHooks is a no-op implementation of CacheHooks.
type NoopCacheHooks struct{}

func (NoopCacheHooks) OnCacheHit(context.Context, string)      {}
func (NoopCacheHooks) OnCacheMiss(context.Context, string)     {}
func (NoopCacheHooks) OnCacheSet(context.Context, string, int) {}

// =============================================================================
// Global Hook Registry
// =============================================================================

var (
	feedHooks  FeedHooks  = NoopFeedHooks{}
	cacheHooks CacheHooks = NoopCacheHooks{}
	hooksMu    sync.RWMutex
)

// SetFeedHooks registers custom feed hooks.
// This should be called once at application startup before any feed is loaded.
func SetFeedHooks(h FeedHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		feedHooks = h
	}
}

// SetCacheHooks registers custom cache hooks.
// This should be called once at application startup before any cache operations.
func SetCacheHooks(h CacheHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		cacheHooks = h
	}
}

// Feed returns the registered feed hooks.
func Feed() FeedHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return feedHooks
}

// Cache returns the registered cache hooks.
func Cache() CacheHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return cacheHooks
}

// Reset restores all hooks to their no-op defaults.
// This is primarily useful for testing.
func Reset() {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	feedHooks = NoopFeedHooks{}
	cacheHooks = NoopCacheHooks{}
}
