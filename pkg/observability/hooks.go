// Package observability provides hooks for metrics, tracing, and logging.
//
// This package enables optional instrumentation without adding hard dependencies
// on specific observability backends. Consumers can register hooks at startup
// to receive events about annealing runs, pipeline execution and cache
// operations.
//
// # Architecture
//
// The package uses a simple hooks pattern:
//   - Define hook interfaces for different event categories
//   - Provide no-op default implementations
//   - Allow registration of custom implementations at startup
//
// Hooks are registered by main, never by libraries, so the core packages stay
// free of any metrics framework.
//
// # Usage
//
// Register hooks at application startup:
//
//	func main() {
//	    observability.SetAnnealHooks(&myAnnealHooks{})
//	    observability.SetCacheHooks(&myCacheHooks{})
//	    // ... run application
//	}
//
// Libraries call hooks to emit events:
//
//	observability.Pipeline().OnOptimizeStart(ctx, len(mods))
//	// ... anneal ...
//	observability.Pipeline().OnOptimizeComplete(ctx, area, duration, err)
package observability

import (
	"context"
	"sync"
	"time"
)

// =============================================================================
// Anneal Hooks
// =============================================================================

// AnnealHooks receives events from the annealing loop.
type AnnealHooks interface {
	// OnRunStart fires after the initial tree has been packed.
	OnRunStart(ctx context.Context, modules int, initialArea int64)

	// OnStageComplete fires after every trial batch, before the temperature decays.
	OnStageComplete(ctx context.Context, stage int, temperature float64, bestArea int64)

	// OnImprovement fires whenever a new best area is recorded.
	OnImprovement(ctx context.Context, stage int, area int64)

	// OnRunComplete fires once the run has stopped, successfully or not.
	OnRunComplete(ctx context.Context, bestArea int64, stages int, duration time.Duration, err error)
}

// =============================================================================
// Pipeline Hooks
// =============================================================================

// PipelineHooks receives events from the floorplanning pipeline.
type PipelineHooks interface {
	// Optimize events
	OnOptimizeStart(ctx context.Context, modules int)
	OnOptimizeComplete(ctx context.Context, area int64, duration time.Duration, err error)

	// Render events
	OnRenderStart(ctx context.Context, formats []string)
	OnRenderComplete(ctx context.Context, formats []string, duration time.Duration, err error)
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

// NoopAnnealHooks is a no-op implementation of AnnealHooks.
type NoopAnnealHooks struct{}

func (NoopAnnealHooks) OnRunStart(context.Context, int, int64)                           {}
func (NoopAnnealHooks) OnStageComplete(context.Context, int, float64, int64)             {}
func (NoopAnnealHooks) OnImprovement(context.Context, int, int64)                        {}
func (NoopAnnealHooks) OnRunComplete(context.Context, int64, int, time.Duration, error) {}

// NoopPipelineHooks is a no-op implementation of PipelineHooks.
type NoopPipelineHooks struct{}

func (NoopPipelineHooks) OnOptimizeStart(context.Context, int)                              {}
func (NoopPipelineHooks) OnOptimizeComplete(context.Context, int64, time.Duration, error)   {}
func (NoopPipelineHooks) OnRenderStart(context.Context, []string)                           {}
func (NoopPipelineHooks) OnRenderComplete(context.Context, []string, time.Duration, error)  {}

// NoopCacheHooks is a no-op implementation of CacheHooks.
type NoopCacheHooks struct{}

func (NoopCacheHooks) OnCacheHit(context.Context, string)      {}
func (NoopCacheHooks) OnCacheMiss(context.Context, string)     {}
func (NoopCacheHooks) OnCacheSet(context.Context, string, int) {}

// =============================================================================
// Global Hook Registry
// =============================================================================

var (
	annealHooks   AnnealHooks   = NoopAnnealHooks{}
	pipelineHooks PipelineHooks = NoopPipelineHooks{}
	cacheHooks    CacheHooks    = NoopCacheHooks{}
	hooksMu       sync.RWMutex
)

// SetAnnealHooks registers custom anneal hooks.
// This should be called once at application startup before any run starts.
func SetAnnealHooks(h AnnealHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		annealHooks = h
	}
}

// SetPipelineHooks registers custom pipeline hooks.
// This should be called once at application startup before any pipeline operations.
func SetPipelineHooks(h PipelineHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		pipelineHooks = h
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

// Anneal returns the registered anneal hooks.
func Anneal() AnnealHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return annealHooks
}

// Pipeline returns the registered pipeline hooks.
func Pipeline() PipelineHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return pipelineHooks
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
	annealHooks = NoopAnnealHooks{}
	pipelineHooks = NoopPipelineHooks{}
	cacheHooks = NoopCacheHooks{}
}
