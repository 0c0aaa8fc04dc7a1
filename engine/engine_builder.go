package engine

import (
	"time"

	"github.com/Carmen-Shannon/oxy-cubes/engine/camera"
	"github.com/Carmen-Shannon/oxy-cubes/engine/grid"
	"github.com/Carmen-Shannon/oxy-cubes/engine/profiler"
	"github.com/rs/zerolog"
)

// EngineBuilderOption is a functional option for configuring an Engine.
// Use the With* functions to create options that are applied directly to the engine instance.
type EngineBuilderOption func(*engine)

// WithProfiling enables or disables HUD statistics output.
//
// Parameters:
//   - enabled: if true, enables HUD statistics
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithProfiling(enabled bool) EngineBuilderOption {
	return func(e *engine) {
		e.profilingEnabled.Store(enabled)
	}
}

// WithProfiler sets a pre-configured profiler, replacing the default one-second reporter.
//
// Parameters:
//   - p: the profiler to use
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithProfiler(p *profiler.Profiler) EngineBuilderOption {
	return func(e *engine) {
		e.profiler = p
	}
}

// WithTickRate sets the frame loop rate in frames per second.
// Values <= 0 will be treated as the default (60Hz).
//
// Parameters:
//   - fps: target frames per second (default 60)
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithTickRate(fps float64) EngineBuilderOption {
	return func(e *engine) {
		e.engineTickRate.Store(int64(tickInterval(fps)))
	}
}

// WithCamera sets the camera the engine updates each frame.
//
// Parameters:
//   - c: a pre-configured Camera instance
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithCamera(c camera.Camera) EngineBuilderOption {
	return func(e *engine) {
		e.camera = c
	}
}

// WithGrid sets the instance grid reported in each frame's simulation uniform.
//
// Parameters:
//   - g: the grid instance
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithGrid(g grid.Grid) EngineBuilderOption {
	return func(e *engine) {
		e.grid = g
	}
}

// WithCuller sets the culler used to count visible instances.
// A culler with a default worker count is created when a grid is set and no culler is given.
//
// Parameters:
//   - c: the culler
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithCuller(c *grid.Culler) EngineBuilderOption {
	return func(e *engine) {
		e.culler = c
	}
}

// WithInput sets the source of per-frame movement snapshots.
// Without one every frame sees an empty snapshot.
//
// Parameters:
//   - in: the input source, typically an *input.KeyTracker
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithInput(in InputSource) EngineBuilderOption {
	return func(e *engine) {
		e.input = in
	}
}

// WithSink sets the collaborator that receives each frame.
//
// Parameters:
//   - s: the frame sink
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithSink(s FrameSink) EngineBuilderOption {
	return func(e *engine) {
		e.sink = s
	}
}

// WithLogger sets the logger used by the engine and its default profiler.
//
// Parameters:
//   - l: the zerolog logger
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithLogger(l zerolog.Logger) EngineBuilderOption {
	return func(e *engine) {
		e.log = l.With().Str("component", "engine").Logger()
	}
}

// WithHaltOnError makes Run return the first frame error instead of logging and skipping it.
//
// Parameters:
//   - halt: if true, Run halts on the first failed frame
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithHaltOnError(halt bool) EngineBuilderOption {
	return func(e *engine) {
		e.haltOnError = halt
	}
}

// WithClock replaces time.Now for delta time computation.
//
// Parameters:
//   - now: the clock function
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithClock(now func() time.Time) EngineBuilderOption {
	return func(e *engine) {
		if now != nil {
			e.now = now
		}
	}
}
