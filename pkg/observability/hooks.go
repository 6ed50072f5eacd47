// Package observability provides hooks for metrics, tracing, and logging.
//
// Library packages emit events through the hooks registered here instead of
// depending on a particular logging or metrics backend. The defaults are
// no-ops; the CLI registers implementations that forward events to its
// logger when --verbose is set.
//
// # Usage
//
// Register hooks at application startup. A value implementing several hook
// interfaces is installed for each of them:
//
//	func main() {
//	    observability.Register(&logHooks{logger: logger})
//	    // ... run application
//	}
//
// Libraries call hooks to emit events:
//
//	start := time.Now()
//	observability.Install().OnFetchStart(ctx, len(deps))
//	err := bridge.Fetch(ctx, deps)
//	observability.Install().OnFetchComplete(ctx, len(deps), time.Since(start), err)
package observability

import (
	"context"
	"sync"
	"time"
)

// =============================================================================
// Install Hooks
// =============================================================================

// InstallHooks receives events from the install engine.
type InstallHooks interface {
	// OnScan is called after the store directory has been indexed.
	OnScan(ctx context.Context, root string, keys int, duration time.Duration)

	// OnCollect is called after a node_modules tree has been folded into the store.
	OnCollect(ctx context.Context, dir string, moved, discarded int, err error)

	// Fetch events
	OnFetchStart(ctx context.Context, deps int)
	OnFetchComplete(ctx context.Context, deps int, duration time.Duration, err error)

	// OnLink is called for every symlink the linker creates or finds in place.
	OnLink(ctx context.Context, dest, target string, created bool)
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
// HTTP Hooks
// =============================================================================

// HTTPHooks receives events from HTTP client operations.
type HTTPHooks interface {
	// OnRequest records an outgoing HTTP request.
	OnRequest(ctx context.Context, method, host, path string)

	// OnResponse records an HTTP response.
	OnResponse(ctx context.Context, method, host, path string, statusCode int, duration time.Duration)

	// OnError records an HTTP error (network failure, timeout).
	OnError(ctx context.Context, method, host, path string, err error)
}

// =============================================================================
// No-op Implementations
// =============================================================================

// NoopInstallHooks is a no-op implementation of InstallHooks.
type NoopInstallHooks struct{}

func (NoopInstallHooks) OnScan(context.Context, string, int, time.Duration)         {}
func (NoopInstallHooks) OnCollect(context.Context, string, int, int, error)         {}
func (NoopInstallHooks) OnFetchStart(context.Context, int)                          {}
func (NoopInstallHooks) OnFetchComplete(context.Context, int, time.Duration, error) {}
func (NoopInstallHooks) OnLink(context.Context, string, string, bool)               {}

// NoopCacheHooks is a no-op implementation of CacheHooks.
type NoopCacheHooks struct{}

func (NoopCacheHooks) OnCacheHit(context.Context, string)      {}
func (NoopCacheHooks) OnCacheMiss(context.Context, string)     {}
func (NoopCacheHooks) OnCacheSet(context.Context, string, int) {}

// NoopHTTPHooks is a no-op implementation of HTTPHooks.
type NoopHTTPHooks struct{}

func (NoopHTTPHooks) OnRequest(context.Context, string, string, string)                      {}
func (NoopHTTPHooks) OnResponse(context.Context, string, string, string, int, time.Duration) {}
func (NoopHTTPHooks) OnError(context.Context, string, string, string, error)                 {}

// =============================================================================
// Global Hook Registry
// =============================================================================

var (
	hooksMu      sync.RWMutex
	installHooks InstallHooks = NoopInstallHooks{}
	cacheHooks   CacheHooks   = NoopCacheHooks{}
	httpHooks    HTTPHooks    = NoopHTTPHooks{}
)

// Register installs h for every hook interface it implements and reports
// how many it matched. Interfaces h does not implement keep their current
// hooks. Call it once at startup, before the engine runs.
func Register(h any) int {
	hooksMu.Lock()
	defer hooksMu.Unlock()

	n := 0
	if v, ok := h.(InstallHooks); ok {
		installHooks = v
		n++
	}
	if v, ok := h.(CacheHooks); ok {
		cacheHooks = v
		n++
	}
	if v, ok := h.(HTTPHooks); ok {
		httpHooks = v
		n++
	}
	return n
}

// Install returns the registered install hooks.
func Install() InstallHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return installHooks
}

// Cache returns the registered cache hooks.
func Cache() CacheHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return cacheHooks
}

// HTTP returns the registered HTTP hooks.
func HTTP() HTTPHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return httpHooks
}

// Reset restores the no-op hooks.
func Reset() {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	installHooks = NoopInstallHooks{}
	cacheHooks = NoopCacheHooks{}
	httpHooks = NoopHTTPHooks{}
}
