// Package observability provides hooks for metrics, tracing, and logging.
//
// This package enables optional instrumentation without adding hard dependencies
// on specific observability backends. Consumers register hooks at startup to
// receive events about offset-table maintenance, scroll recomputation and HTTP
// requests served by the window API.
//
// # Architecture
//
// The package uses a simple hooks pattern:
//   - Define hook interfaces for different event categories
//   - Provide no-op default implementations
//   - Allow registration of custom implementations at startup
//
// Libraries only ever call the accessors ([Table], [Scroll], [HTTP]); main
// decides what, if anything, listens.
//
// # Usage
//
// Register hooks at application startup:
//
//	func main() {
//	    observability.SetTableHooks(&myTableHooks{})
//	    observability.SetScrollHooks(&myScrollHooks{})
//	    // ... run application
//	}
//
// Libraries call hooks to emit events:
//
//	start := time.Now()
//	// ... build prefix sums ...
//	observability.Table().OnTableBuild(count, uniform, time.Since(start))
package observability

import (
	"context"
	"sync"
	"time"
)

// =============================================================================
// Table Hooks
// =============================================================================

// TableHooks receives events from the window offset-table cache.
// The engine is synchronous and carries no context, so neither do these.
type TableHooks interface {
	// OnTableBuild records a (re)build of the offset table for count items.
	// uniform is true when the fast constant-size path was taken.
	OnTableBuild(count int, uniform bool, duration time.Duration)

	// OnTableHit records reuse of a memoized table.
	OnTableHit(count int)

	// OnTableInvalidate records an explicit invalidation.
	OnTableInvalidate(reason string)
}

// =============================================================================
// Scroll Hooks
// =============================================================================

// ScrollHooks receives events from scroll controllers.
type ScrollHooks interface {
	// OnRecompute records one synchronous window recomputation.
	OnRecompute(seq uint64, offset, viewport float64, start, end int)

	// OnRejected records a state change refused because of a precondition error.
	OnRejected(err error)
}

// =============================================================================
// HTTP Hooks
// =============================================================================

// HTTPHooks receives events from the window HTTP API.
type HTTPHooks interface {
	// OnRequest records an incoming HTTP request.
	OnRequest(ctx context.Context, method, path string)

	// OnResponse records a completed HTTP response.
	OnResponse(ctx context.Context, method, path string, statusCode int, duration time.Duration)
}

// =============================================================================
// No-op Implementations
// =============================================================================

// NoopTableHooks is a no-op implementation of TableHooks.
type NoopTableHooks struct{}

func (NoopTableHooks) OnTableBuild(int, bool, time.Duration) {}
func (NoopTableHooks) OnTableHit(int)                        {}
func (NoopTableHooks) OnTableInvalidate(string)              {}

// NoopScrollHooks is a no-op implementation of ScrollHooks.
type NoopScrollHooks struct{}

func (NoopScrollHooks) OnRecompute(uint64, float64, float64, int, int) {}
func (NoopScrollHooks) OnRejected(error)                               {}

// NoopHTTPHooks is a no-op implementation of HTTPHooks.
type NoopHTTPHooks struct{}

func (NoopHTTPHooks) OnRequest(context.Context, string, string)                       {}
func (NoopHTTPHooks) OnResponse(context.Context, string, string, int, time.Duration) {}

// =============================================================================
// Global Hook Registry
// =============================================================================

var (
	tableHooks  TableHooks  = NoopTableHooks{}
	scrollHooks ScrollHooks = NoopScrollHooks{}
	httpHooks   HTTPHooks   = NoopHTTPHooks{}
	hooksMu     sync.RWMutex
)

// SetTableHooks registers custom table hooks.
// This should be called once at application startup before any window computation.
func SetTableHooks(h TableHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		tableHooks = h
	}
}

// SetScrollHooks registers custom scroll hooks.
func SetScrollHooks(h ScrollHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		scrollHooks = h
	}
}

// SetHTTPHooks registers custom HTTP hooks.
func SetHTTPHooks(h HTTPHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		httpHooks = h
	}
}

// Table returns the registered table hooks.
func Table() TableHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return tableHooks
}

// Scroll returns the registered scroll hooks.
func Scroll() ScrollHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return scrollHooks
}

// HTTP returns the registered HTTP hooks.
func HTTP() HTTPHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return httpHooks
}

// Reset restores all hooks to their no-op defaults.
// This is primarily useful for testing.
func Reset() {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	tableHooks = NoopTableHooks{}
	scrollHooks = NoopScrollHooks{}
	httpHooks = NoopHTTPHooks{}
}
