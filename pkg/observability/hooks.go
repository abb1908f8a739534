// Package observability provides hooks for instrumenting diagram rendering.
//
// This package enables optional instrumentation without adding hard
// dependencies on specific observability backends. Consumers register hooks
// at startup to receive events about scene loading, drawing, and export.
//
// # Architecture
//
// The package uses a simple hooks pattern:
//   - Define hook interfaces for different event categories
//   - Provide no-op default implementations
//   - Allow registration of custom implementations at startup
//
// # Usage
//
// Register hooks at application startup:
//
//	func main() {
//	    observability.SetPipelineHooks(&myPipelineHooks{})
//	    // ... run application
//	}
//
// The pipeline calls hooks to emit events:
//
//	observability.Pipeline().OnLoadStart(ctx, source)
//	// ... parse and validate ...
//	observability.Pipeline().OnLoadComplete(ctx, source, elements, duration, err)
package observability

import (
	"context"
	"sync"
	"time"
)

// =============================================================================
// Pipeline Hooks
// =============================================================================

// PipelineHooks receives events from the load → draw → export pipeline.
type PipelineHooks interface {
	// Load events. source is a file path or "builtin:<name>".
	OnLoadStart(ctx context.Context, source string)
	OnLoadComplete(ctx context.Context, source string, elements int, duration time.Duration, err error)

	// Draw events
	OnDrawStart(ctx context.Context, elements int)
	OnElement(ctx context.Context, index int, kind string, ops int, err error)
	OnDrawComplete(ctx context.Context, ops int, duration time.Duration, err error)

	// Export events, one pair per format
	OnExportStart(ctx context.Context, format, path string)
	OnExportComplete(ctx context.Context, format, path string, size int, duration time.Duration, err error)
}

// =============================================================================
// No-op Implementation
// =============================================================================

// NoopPipelineHooks is a no-op implementation of PipelineHooks.
type NoopPipelineHooks struct{}

func (NoopPipelineHooks) OnLoadStart(context.Context, string)                               {}
func (NoopPipelineHooks) OnLoadComplete(context.Context, string, int, time.Duration, error) {}
func (NoopPipelineHooks) OnDrawStart(context.Context, int)                                  {}
func (NoopPipelineHooks) OnElement(context.Context, int, string, int, error)                {}
func (NoopPipelineHooks) OnDrawComplete(context.Context, int, time.Duration, error)         {}
func (NoopPipelineHooks) OnExportStart(context.Context, string, string)                     {}
func (NoopPipelineHooks) OnExportComplete(context.Context, string, string, int, time.Duration, error) {
}

// =============================================================================
// Global Hook Registry
// =============================================================================

var (
	pipelineHooks PipelineHooks = NoopPipelineHooks{}
	hooksMu       sync.RWMutex
)

// SetPipelineHooks registers custom pipeline hooks.
// This should be called once at application startup before any rendering.
func SetPipelineHooks(h PipelineHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		pipelineHooks = h
	}
}

// Pipeline returns the registered pipeline hooks.
func Pipeline() PipelineHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return pipelineHooks
}

// Reset restores all hooks to their no-op defaults.
// This is primarily useful for testing.
func Reset() {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	pipelineHooks = NoopPipelineHooks{}
}
