package profiler

import (
	"runtime"
	"time"

	"github.com/rs/zerolog"
)

// HUD is the per-frame statistics snapshot the demo overlays on screen.
type HUD struct {
	Instances int
	Visible   int
	Radius    float32
	Angle     float32
}

// Report is the aggregate emitted once per update interval.
type Report struct {
	FPS       float64
	HUD       HUD
	HeapMB    float64
	SysMB     float64
	GCCount   uint32
	Skipped   int
	Elapsed   time.Duration
	Timestamp time.Time
}

// Profiler tracks frame rate, memory statistics and the latest HUD values.
// Outputs a structured log line at a configurable interval.
type Profiler struct {
	log            zerolog.Logger
	now            func() time.Time
	frameCount     int
	skippedCount   int
	lastTime       time.Time
	updateInterval time.Duration
	memStats       runtime.MemStats
	last           Report
}

// ProfilerOption is a functional option for configuring a Profiler.
type ProfilerOption func(*Profiler)

// WithInterval sets how often statistics are reported. Values <= 0 keep the default of one second.
func WithInterval(d time.Duration) ProfilerOption {
	return func(p *Profiler) {
		if d > 0 {
			p.updateInterval = d
		}
	}
}

// WithLogger sets the logger the report is written to.
func WithLogger(l zerolog.Logger) ProfilerOption {
	return func(p *Profiler) {
		p.log = l
	}
}

// WithClock replaces time.Now, used by tests to drive the interval deterministically.
func WithClock(now func() time.Time) ProfilerOption {
	return func(p *Profiler) {
		p.now = now
	}
}

// NewProfiler creates a new Profiler.
// Update interval defaults to 1 second and logging to a no-op logger.
//
// Parameters:
//   - options: functional options to configure the profiler
//
// Returns:
//   - *Profiler: the newly created profiler instance
func NewProfiler(options ...ProfilerOption) *Profiler {
	p := &Profiler{
		log:            zerolog.Nop(),
		now:            time.Now,
		updateInterval: time.Second,
	}
	for _, option := range options {
		option(p)
	}
	p.lastTime = p.now()
	return p
}

// Skip records a frame that was dropped because the camera could not produce a matrix.
func (p *Profiler) Skip() {
	p.skippedCount++
}

// Tick should be called once per published frame with that frame's HUD values.
// Logs a report when the update interval has elapsed.
//
// Parameters:
//   - hud: the frame's HUD statistics
//
// Returns:
//   - bool: true if a report was produced this tick, false otherwise
func (p *Profiler) Tick(hud HUD) bool {
	p.frameCount++
	currentTime := p.now()
	elapsed := currentTime.Sub(p.lastTime)

	if elapsed < p.updateInterval {
		return false
	}

	runtime.ReadMemStats(&p.memStats)
	p.last = Report{
		FPS:       float64(p.frameCount) / elapsed.Seconds(),
		HUD:       hud,
		HeapMB:    float64(p.memStats.Alloc) / 1024 / 1024,
		SysMB:     float64(p.memStats.Sys) / 1024 / 1024,
		GCCount:   p.memStats.NumGC,
		Skipped:   p.skippedCount,
		Elapsed:   elapsed,
		Timestamp: currentTime,
	}

	p.log.Info().
		Float64("fps", p.last.FPS).
		Int("instances", hud.Instances).
		Int("visible", hud.Visible).
		Float32("radius", hud.Radius).
		Float32("angle", hud.Angle).
		Int("skipped", p.last.Skipped).
		Float64("heap_mb", p.last.HeapMB).
		Float64("sys_mb", p.last.SysMB).
		Uint32("gc", p.last.GCCount).
		Msg("frame stats")

	p.frameCount = 0
	p.skippedCount = 0
	p.lastTime = currentTime
	return true
}

// Last returns the most recent report, or the zero Report if none has been produced yet.
func (p *Profiler) Last() Report {
	return p.last
}
