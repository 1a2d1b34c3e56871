package profiler

import (
	"runtime"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Stats is a point-in-time summary of asset activity since the profiler was created.
type Stats struct {
	// Loads is the number of collaborator loads that completed, successfully or not.
	Loads int
	// Failures is the number of loads that returned an error.
	Failures int
	// Disposals is the number of containers disposed.
	Disposals int
	// TotalLoadTime is the summed wall time of every load.
	TotalLoadTime time.Duration
	// MaxLoadTime is the slowest single load.
	MaxLoadTime time.Duration
	// Slowest is the identifier of the slowest load.
	Slowest string
}

// AverageLoadTime returns the mean wall time per load, or 0 before the first load.
func (s Stats) AverageLoadTime() time.Duration {
	if s.Loads == 0 {
		return 0
	}
	return s.TotalLoadTime / time.Duration(s.Loads)
}

// Profiler tracks asset load timings, disposals and memory statistics for performance monitoring.
// Outputs a summary to the log from Tick at a configurable interval.
// Safe for concurrent use; loads complete on worker goroutines.
type Profiler struct {
	mu sync.Mutex

	log            *zap.Logger
	lastTime       time.Time
	updateInterval time.Duration
	memStats       runtime.MemStats
	lastGCCount    uint32
	lastTotalAlloc uint64

	stats       Stats
	windowLoads int
}

// NewProfiler creates a new Profiler with default settings.
// Update interval defaults to 1 second and the logger to a no-op logger.
//
// Parameters:
//   - options: functional options to configure the profiler
//
// Returns:
//   - *Profiler: the newly created profiler instance
func NewProfiler(options ...ProfilerBuilderOption) *Profiler {
	p := &Profiler{
		log:            zap.NewNop(),
		lastTime:       time.Now(),
		updateInterval: time.Second,
	}
	for _, option := range options {
		option(p)
	}
	return p
}

// RecordLoad records a completed load.
//
// Parameters:
//   - identifier: the asset that was loaded
//   - d: the wall time the load took
//   - err: the load error, or nil on success
func (p *Profiler) RecordLoad(identifier string, d time.Duration, err error) {
	p.mu.Lock()
	p.stats.Loads++
	p.windowLoads++
	if err != nil {
		p.stats.Failures++
	}
	p.stats.TotalLoadTime += d
	if d > p.stats.MaxLoadTime {
		p.stats.MaxLoadTime = d
		p.stats.Slowest = identifier
	}
	p.mu.Unlock()
}

// RecordDisposal records that a container was disposed.
//
// Parameters:
//   - identifier: the asset whose container was disposed
func (p *Profiler) RecordDisposal(identifier string) {
	p.mu.Lock()
	p.stats.Disposals++
	p.mu.Unlock()
}

// Snapshot returns the statistics gathered so far.
//
// Returns:
//   - Stats: a copy of the current statistics
func (p *Profiler) Snapshot() Stats {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.stats
}

// Tick logs a summary when the update interval has elapsed.
// Statistics include: load rate, load times, live containers, heap usage, allocation rate and GC pauses.
//
// Returns:
//   - bool: true if stats were logged this tick, false otherwise
func (p *Profiler) Tick() bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	currentTime := time.Now()
	elapsed := currentTime.Sub(p.lastTime)
	if elapsed < p.updateInterval {
		return false
	}

	runtime.ReadMemStats(&p.memStats)
	// Alloc is live heap; TotalAlloc only grows and so tracks churn.
	allocMB := float64(p.memStats.Alloc) / 1024 / 1024
	allocDelta := p.memStats.TotalAlloc - p.lastTotalAlloc
	allocRateMB := float64(allocDelta) / 1024 / 1024 / elapsed.Seconds()

	gcCount := p.memStats.NumGC
	var lastPauseUs, maxPauseUs uint64
	if gcCount > 0 {
		// PauseNs is a circular buffer of the last 256 GC pauses
		lastPauseUs = p.memStats.PauseNs[(gcCount-1)%256] / 1000

		startIdx := p.lastGCCount
		if gcCount-startIdx > 256 {
			startIdx = gcCount - 256
		}
		for i := startIdx; i < gcCount; i++ {
			if pause := p.memStats.PauseNs[i%256] / 1000; pause > maxPauseUs {
				maxPauseUs = pause
			}
		}
	}

	p.log.Info("asset profile",
		zap.Float64("loads_per_sec", float64(p.windowLoads)/elapsed.Seconds()),
		zap.Int("loads", p.stats.Loads),
		zap.Int("failures", p.stats.Failures),
		zap.Int("live", p.stats.Loads-p.stats.Failures-p.stats.Disposals),
		zap.Duration("avg_load", p.stats.AverageLoadTime()),
		zap.Duration("max_load", p.stats.MaxLoadTime),
		zap.String("slowest", p.stats.Slowest),
		zap.Float64("heap_mb", allocMB),
		zap.Float64("alloc_rate_mb_s", allocRateMB),
		zap.Uint32("gc", gcCount),
		zap.Uint64("gc_last_pause_us", lastPauseUs),
		zap.Uint64("gc_max_pause_us", maxPauseUs),
	)

	p.windowLoads = 0
	p.lastTime = currentTime
	p.lastGCCount = gcCount
	p.lastTotalAlloc = p.memStats.TotalAlloc
	return true
}
