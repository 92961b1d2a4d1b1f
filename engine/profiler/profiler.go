// Package profiler reports frame throughput and memory statistics of the render aspect through the engine logger.
package profiler

import (
	"log/slog"
	"runtime"
	"time"

	"github.com/Carmen-Shannon/oxy-render/common"
	"github.com/Carmen-Shannon/oxy-render/engine/renderer"
)

// Profiler accumulates frame statistics and logs a summary once per update interval.
// It is not safe for concurrent use; call Tick from the goroutine that runs frames.
type Profiler struct {
	frameCount     int
	views          int
	commands       int
	jobsRun        uint64
	lastJobsRun    uint64
	lastTime       time.Time
	updateInterval time.Duration
	memStats       runtime.MemStats
	lastGCCount    uint32
	lastTotalAlloc uint64
	logger         *slog.Logger
	now            func() time.Time
}

// NewProfiler creates a new Profiler. The update interval defaults to 1 second and output goes to common.Logger().
//
// Parameters:
//   - options: functional options
//
// Returns:
//   - *Profiler: the newly created profiler instance
func NewProfiler(options ...ProfilerBuilderOption) *Profiler {
	p := &Profiler{
		updateInterval: time.Second,
		now:            time.Now,
	}
	for _, opt := range options {
		opt(p)
	}
	p.lastTime = p.now()
	return p
}

// Tick records one finished frame. When the update interval has elapsed it logs frames per second, the average
// views and commands per frame, jobs run, heap usage, allocation rate and GC pauses, then starts a new interval.
//
// Parameters:
//   - stats: the statistics of the frame just finished
//
// Returns:
//   - bool: true if stats were logged this tick, false otherwise
func (p *Profiler) Tick(stats renderer.FrameStats) bool {
	p.frameCount++
	p.views += stats.Views
	p.commands += stats.Commands
	p.jobsRun = stats.JobsRun

	currentTime := p.now()
	elapsed := currentTime.Sub(p.lastTime)
	if elapsed < p.updateInterval || elapsed <= 0 {
		return false
	}

	runtime.ReadMemStats(&p.memStats)
	allocDelta := p.memStats.TotalAlloc - p.lastTotalAlloc

	gcCount := p.memStats.NumGC
	var lastPauseUs, maxPauseUs uint64
	if gcCount > 0 {
		lastPauseUs = p.memStats.PauseNs[(gcCount-1)%256] / 1000

		// PauseNs is a circular buffer of the last 256 pauses.
		startIdx := p.lastGCCount
		if gcCount-startIdx > 256 {
			startIdx = gcCount - 256
		}
		for i := startIdx; i < gcCount; i++ {
			maxPauseUs = max(maxPauseUs, p.memStats.PauseNs[i%256]/1000)
		}
	}

	frames := float64(p.frameCount)
	p.log().Info("profiler",
		slog.Uint64("frame", stats.Frame),
		slog.Float64("fps", frames/elapsed.Seconds()),
		slog.Float64("views_per_frame", float64(p.views)/frames),
		slog.Float64("commands_per_frame", float64(p.commands)/frames),
		slog.Uint64("jobs_run", p.jobsRun-p.lastJobsRun),
		slog.Float64("heap_mb", float64(p.memStats.Alloc)/1024/1024),
		slog.Float64("alloc_rate_mb_s", float64(allocDelta)/1024/1024/elapsed.Seconds()),
		slog.Uint64("gc", uint64(gcCount)),
		slog.Uint64("gc_last_pause_us", lastPauseUs),
		slog.Uint64("gc_max_pause_us", maxPauseUs),
		slog.Float64("sys_mb", float64(p.memStats.Sys)/1024/1024),
	)

	p.frameCount, p.views, p.commands = 0, 0, 0
	p.lastJobsRun = p.jobsRun
	p.lastTime = currentTime
	p.lastGCCount = gcCount
	p.lastTotalAlloc = p.memStats.TotalAlloc
	return true
}

// Reset starts a new interval without logging.
func (p *Profiler) Reset() {
	p.frameCount, p.views, p.commands = 0, 0, 0
	p.lastJobsRun = p.jobsRun
	p.lastTime = p.now()
}

func (p *Profiler) log() *slog.Logger {
	if p.logger != nil {
		return p.logger
	}
	return common.Logger()
}
