package asset

import (
	"github.com/Carmen-Shannon/automation/tools/worker"
	"github.com/Carmen-Shannon/oxy-assets/engine/profiler"
	"go.uber.org/zap"
)

// CacheBuilderOption is a functional option for configuring a Cache via NewCache.
type CacheBuilderOption func(*cache)

// WithLogger sets the logger used by the Cache. Defaults to the package Logger.
//
// Parameters:
//   - l: the logger to use
//
// Returns:
//   - CacheBuilderOption: option function to apply
func WithLogger(l *zap.Logger) CacheBuilderOption {
	return func(c *cache) {
		if l != nil {
			c.log = l
		}
	}
}

// WithWorkerPool runs collaborator loads on pool instead of a goroutine per load. The pool
// grows whenever every worker is taken by an outstanding load, and it may be shared between
// caches. The caller owns the pool and stops it after closing every cache using it.
//
// Parameters:
//   - pool: the worker pool to submit loads to
//
// Returns:
//   - CacheBuilderOption: option function to apply
func WithWorkerPool(pool worker.DynamicWorkerPool) CacheBuilderOption {
	return func(c *cache) {
		c.loadPool = pool
	}
}

// WithCloneFirstInstance makes the acquirer that triggers a load receive a disposable clone
// instead of the container's own placement. The placement is then kept hidden for the lifetime
// of the container, so releasing the first instance frees its nodes like any other clone at
// the cost of one extra instantiation per load.
//
// Parameters:
//   - enabled: true to clone for every acquirer
//
// Returns:
//   - CacheBuilderOption: option function to apply
func WithCloneFirstInstance(enabled bool) CacheBuilderOption {
	return func(c *cache) {
		c.cloneFirstInstance = enabled
	}
}

// WithProfiler records load timings and disposals on p.
//
// Parameters:
//   - p: the profiler to record to
//
// Returns:
//   - CacheBuilderOption: option function to apply
func WithProfiler(p *profiler.Profiler) CacheBuilderOption {
	return func(c *cache) {
		c.profiler = p
	}
}
