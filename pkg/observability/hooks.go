// Package observability provides hooks for metrics and logging.
//
// Libraries emit events through package-level hooks; main registers real
// implementations at startup. The defaults are no-ops, so library code
// never depends on a metrics backend.
//
// `cratediff serve` installs Prometheus-backed hooks at startup:
//
//	observability.NewMetrics(reg).Install()
//	defer observability.Reset()
//
// Libraries call hooks to emit events:
//
//	observability.Pipeline().OnDiffStart(ctx, mode, len(requests))
//	// ... build records ...
//	observability.Pipeline().OnDiffComplete(ctx, mode, records, time.Since(start), err)
package observability

import (
	"context"
	"sync"
	"time"
)

// =============================================================================
// Pipeline Hooks
// =============================================================================

// PipelineHooks receives events from a diff run.
type PipelineHooks interface {
	// Metadata events
	OnMetadataStart(ctx context.Context, provider, manifest string)
	OnMetadataComplete(ctx context.Context, provider, manifest string, nodeCount int, duration time.Duration, err error)

	// Diff events; mode is "workspace", "dependencies" or "requests"
	OnDiffStart(ctx context.Context, mode string, requests int)
	OnDiffComplete(ctx context.Context, mode string, records int, duration time.Duration, err error)

	// Render events
	OnRenderStart(ctx context.Context, format string)
	OnRenderComplete(ctx context.Context, format string, duration time.Duration, err error)
}

// =============================================================================
// Lookup Hooks
// =============================================================================

// LookupHooks receives events from registry providers.
type LookupHooks interface {
	// OnLookup records one registry call; kind is "version", "hash",
	// "repository" or "source".
	OnLookup(ctx context.Context, provider, kind string, duration time.Duration, err error)
}

// =============================================================================
// Cache Hooks
// =============================================================================

// CacheHooks receives cache events; keyType is "http" for API responses
// or the lookup kind for registry lookups.
type CacheHooks interface {
	OnCacheHit(ctx context.Context, keyType string)
	OnCacheMiss(ctx context.Context, keyType string)
	OnCacheSet(ctx context.Context, keyType string, size int)
}

// =============================================================================
// HTTP Hooks
// =============================================================================

// HTTPHooks receives events from the crates.io and GitHub clients. OnError
// fires for transport failures only; error statuses arrive via OnResponse.
type HTTPHooks interface {
	OnRequest(ctx context.Context, method, host, path string)
	OnResponse(ctx context.Context, method, host, path string, statusCode int, duration time.Duration)
	OnError(ctx context.Context, method, host, path string, err error)
}

// =============================================================================
// No-op Implementations
// =============================================================================

// NoopPipelineHooks is a no-op implementation of PipelineHooks.
type NoopPipelineHooks struct{}

func (NoopPipelineHooks) OnMetadataStart(context.Context, string, string) {}
func (NoopPipelineHooks) OnMetadataComplete(context.Context, string, string, int, time.Duration, error) {
}
func (NoopPipelineHooks) OnDiffStart(context.Context, string, int)                          {}
func (NoopPipelineHooks) OnDiffComplete(context.Context, string, int, time.Duration, error) {}
func (NoopPipelineHooks) OnRenderStart(context.Context, string)                             {}
func (NoopPipelineHooks) OnRenderComplete(context.Context, string, time.Duration, error)    {}

// NoopLookupHooks is a no-op implementation of LookupHooks.
type NoopLookupHooks struct{}

func (NoopLookupHooks) OnLookup(context.Context, string, string, time.Duration, error) {}

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

var hooksMu sync.RWMutex

var (
	pipelineHooks PipelineHooks = NoopPipelineHooks{}
	lookupHooks   LookupHooks   = NoopLookupHooks{}
	cacheHooks    CacheHooks    = NoopCacheHooks{}
	httpHooks     HTTPHooks     = NoopHTTPHooks{}
)

// install replaces *dst with h under the registry lock. Nil is ignored.
func install[T any](dst *T, h T) {
	if any(h) == nil {
		return
	}
	hooksMu.Lock()
	*dst = h
	hooksMu.Unlock()
}

func current[T any](src *T) T {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return *src
}

func SetPipelineHooks(h PipelineHooks) { install(&pipelineHooks, h) }
func SetLookupHooks(h LookupHooks)     { install(&lookupHooks, h) }
func SetCacheHooks(h CacheHooks)       { install(&cacheHooks, h) }
func SetHTTPHooks(h HTTPHooks)         { install(&httpHooks, h) }

// Pipeline returns the hooks diff runs report to.
func Pipeline() PipelineHooks { return current(&pipelineHooks) }

// Lookup returns the hooks registry providers report to.
func Lookup() LookupHooks { return current(&lookupHooks) }

// Cache returns the hooks caches report to.
func Cache() CacheHooks { return current(&cacheHooks) }

// HTTP returns the hooks the API clients report to.
func HTTP() HTTPHooks { return current(&httpHooks) }

// Reset installs the no-op hooks again.
func Reset() {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	pipelineHooks = NoopPipelineHooks{}
	lookupHooks = NoopLookupHooks{}
	cacheHooks = NoopCacheHooks{}
	httpHooks = NoopHTTPHooks{}
}
