package profiler

import (
	"time"

	"go.uber.org/zap"
)

// ProfilerBuilderOption is a functional option for configuring a Profiler via NewProfiler.
type ProfilerBuilderOption func(*Profiler)

// WithUpdateInterval sets how often Tick logs a summary. Values <= 0 log on every tick.
//
// Parameters:
//   - d: the minimum time between summaries
//
// Returns:
//   - ProfilerBuilderOption: option function to apply
func WithUpdateInterval(d time.Duration) ProfilerBuilderOption {
	return func(p *Profiler) {
		p.updateInterval = max(d, 0)
	}
}

// WithLogger sets the logger summaries are written to.
//
// Parameters:
//   - l: the logger to use
//
// Returns:
//   - ProfilerBuilderOption: option function to apply
func WithLogger(l *zap.Logger) ProfilerBuilderOption {
	return func(p *Profiler) {
		if l != nil {
			p.log = l
		}
	}
}
