package engine

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sync"
	"sync/atomic"
	"time"

	"github.com/Carmen-Shannon/oxy-cubes/engine/camera"
	"github.com/Carmen-Shannon/oxy-cubes/engine/grid"
	"github.com/Carmen-Shannon/oxy-cubes/engine/input"
	"github.com/Carmen-Shannon/oxy-cubes/engine/profiler"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/rs/zerolog"
)

var (
	// ErrAlreadyRunning is returned by Run when the loop is already active.
	ErrAlreadyRunning = errors.New("engine is already running")
	// ErrStopped is returned by Run after Stop has been called; a stopped engine cannot restart.
	ErrStopped = errors.New("engine is stopped")
	// ErrPublish wraps errors returned by the FrameSink.
	ErrPublish = errors.New("frame publish failed")
)

// Frame is everything the rendering collaborator needs for one frame.
// ViewProj is uploaded verbatim as the camera uniform. DeltaTime is the step actually applied,
// zero when the caller passed a negative or non-finite dt.
type Frame struct {
	Index     uint64
	Time      float32
	DeltaTime float32
	ViewProj  mgl32.Mat4
	Sim       grid.GPUSimUniform
	Visible   int
}

// FrameSink receives each published frame. Implementations must not retain the Frame past the call
// unless they copy it.
type FrameSink interface {
	Publish(f Frame) error
}

// FrameSinkFunc adapts a function to the FrameSink interface.
type FrameSinkFunc func(f Frame) error

// Publish calls fn(f).
func (fn FrameSinkFunc) Publish(f Frame) error {
	return fn(f)
}

// InputSource supplies the movement snapshot for the next frame.
type InputSource interface {
	Snapshot() input.Snapshot
}

// InputSourceFunc adapts a function to the InputSource interface.
type InputSourceFunc func() input.Snapshot

// Snapshot calls fn().
func (fn InputSourceFunc) Snapshot() input.Snapshot {
	return fn()
}

// engine implements the Engine interface.
type engine struct {
	tickRateChannel chan time.Duration // Channel for dynamic tick rate updates

	running atomic.Bool

	quitChannel chan struct{}
	quitOnce    sync.Once // Ensures quitChannel is only closed once

	log         zerolog.Logger
	now         func() time.Time
	haltOnError bool

	profiler         *profiler.Profiler
	profilingEnabled atomic.Bool

	engineTickRate atomic.Int64 // time.Duration between ticks

	camera camera.Camera
	grid   grid.Grid
	culler *grid.Culler
	input  InputSource
	sink   FrameSink

	frameIndex uint64
	simTime    float32
}

// Engine drives the per-frame cycle: take an input snapshot, update the camera, compose the
// view-projection matrix and publish a Frame to the sink.
type Engine interface {
	// Camera returns the camera owned by the engine.
	//
	// Returns:
	//   - camera.Camera: the camera instance
	Camera() camera.Camera

	// Grid returns the instance grid, or nil if the engine was built without one.
	//
	// Returns:
	//   - grid.Grid: the grid instance or nil
	Grid() grid.Grid

	// SetViewport forwards a surface resize to the camera's aspect ratio.
	//
	// Parameters:
	//   - width, height: the new surface size in pixels
	//
	// Returns:
	//   - error: common.ErrInvalidProjectionParams for a non-positive size
	SetViewport(width, height int) error

	// SetTickRate sets the loop rate in frames per second.
	// If the engine is running, the change takes effect immediately.
	//
	// Parameters:
	//   - fps: target frames per second (defaults to 60 if <= 0)
	SetTickRate(fps float64)

	// TickRate returns the current interval between loop ticks.
	//
	// Returns:
	//   - time.Duration: the tick interval
	TickRate() time.Duration

	// EnableProfiler enables HUD statistics output to the log.
	EnableProfiler()

	// DisableProfiler disables HUD statistics output.
	DisableProfiler()

	// ProfilerEnabled reports whether HUD statistics are being logged.
	//
	// Returns:
	//   - bool: true while profiling is enabled
	ProfilerEnabled() bool

	// Step runs one frame synchronously with an explicit delta time.
	// Camera errors skip the frame: nothing is published and the error is returned.
	// Sink errors are wrapped in ErrPublish.
	//
	// Parameters:
	//   - dt: seconds since the previous frame
	//
	// Returns:
	//   - Frame: the published frame (zero value when the camera failed)
	//   - error: common.ErrInvalidProjectionParams, common.ErrDegenerateView or ErrPublish
	Step(dt float32) (Frame, error)

	// Run drives Step from a ticker on the calling goroutine until ctx is cancelled or Stop is called.
	// Frame errors are logged and skipped unless the engine was built WithHaltOnError.
	//
	// Parameters:
	//   - ctx: cancelling it stops the loop
	//
	// Returns:
	//   - error: nil on a clean stop, the frame error when halting, ErrAlreadyRunning or ErrStopped
	Run(ctx context.Context) error

	// Stop signals the loop to exit. Safe to call multiple times and from any goroutine.
	Stop()

	// Frames returns the number of frames published so far.
	//
	// Returns:
	//   - uint64: the published frame count
	Frames() uint64
}

var _ Engine = &engine{}

// NewEngine creates a new Engine with the provided options.
// A camera with the demo defaults is created when none is supplied.
//
// Parameters:
//   - options: functional options for engine configuration
//
// Returns:
//   - Engine: the newly created engine
//   - error: error if the default camera cannot be built
func NewEngine(options ...EngineBuilderOption) (Engine, error) {
	e := &engine{
		tickRateChannel: make(chan time.Duration, 1),
		quitChannel:     make(chan struct{}),
		log:             zerolog.Nop(),
		now:             time.Now,
	}
	e.engineTickRate.Store(int64(time.Second / 60))

	for _, opt := range options {
		opt(e)
	}

	if e.camera == nil {
		cam, err := camera.NewCamera()
		if err != nil {
			return nil, fmt.Errorf("failed to create default camera: %w", err)
		}
		e.camera = cam
	}
	if e.profiler == nil {
		e.profiler = profiler.NewProfiler(profiler.WithLogger(e.log))
	}
	if e.grid != nil && e.culler == nil {
		e.culler = grid.NewCuller(0)
	}

	return e, nil
}

func (e *engine) Camera() camera.Camera {
	return e.camera
}

func (e *engine) Grid() grid.Grid {
	return e.grid
}

func (e *engine) SetViewport(width, height int) error {
	if err := e.camera.SetViewport(width, height); err != nil {
		e.log.Warn().Err(err).Int("width", width).Int("height", height).Msg("viewport rejected")
		return err
	}
	return nil
}

func (e *engine) Frames() uint64 {
	return atomic.LoadUint64(&e.frameIndex)
}

func (e *engine) Step(dt float32) (Frame, error) {
	var snap input.Snapshot
	if e.input != nil {
		snap = e.input.Snapshot()
	}

	// A negative, NaN or infinite step neither moves the camera nor advances the clock.
	if !(dt > 0) || math.IsInf(float64(dt), 1) {
		dt = 0
	}

	if err := e.camera.Update(snap, dt); err != nil {
		e.profiler.Skip()
		return Frame{}, err
	}
	e.simTime += dt

	f := Frame{
		Index:     atomic.LoadUint64(&e.frameIndex),
		Time:      e.simTime,
		DeltaTime: dt,
		ViewProj:  e.camera.ViewProjectionMatrix(),
	}
	if e.grid != nil {
		f.Sim = grid.GPUSimUniform{Time: e.simTime, Count: float32(e.grid.InstanceCount())}
		f.Visible = e.culler.CountVisible(e.grid, e.camera.Frustum())
	}

	if e.sink != nil {
		if err := e.sink.Publish(f); err != nil {
			return f, fmt.Errorf("%w: frame %d: %w", ErrPublish, f.Index, err)
		}
	}
	atomic.AddUint64(&e.frameIndex, 1)

	if e.profilingEnabled.Load() {
		s := e.camera.State()
		e.profiler.Tick(profiler.HUD{
			Instances: int(f.Sim.Count),
			Visible:   f.Visible,
			Radius:    s.Radius,
			Angle:     s.Angle,
		})
	}

	return f, nil
}

func (e *engine) Run(ctx context.Context) error {
	select {
	case <-e.quitChannel:
		return ErrStopped
	default:
	}
	if !e.running.CompareAndSwap(false, true) {
		return ErrAlreadyRunning
	}
	defer e.running.Store(false)

	ticker := time.NewTicker(e.TickRate())
	defer ticker.Stop()

	lastTick := e.now()
	e.log.Debug().Dur("tick", e.TickRate()).Msg("frame loop started")

	for {
		select {
		case <-ctx.Done():
			e.log.Debug().Uint64("frames", e.Frames()).Msg("frame loop cancelled")
			return nil
		case <-e.quitChannel:
			e.log.Debug().Uint64("frames", e.Frames()).Msg("frame loop stopped")
			return nil
		case <-ticker.C:
			now := e.now()
			dt := float32(now.Sub(lastTick).Seconds())
			lastTick = now

			if _, err := e.Step(dt); err != nil {
				if e.haltOnError {
					e.log.Error().Err(err).Msg("frame failed, halting")
					e.signalQuit()
					return err
				}
				e.log.Warn().Err(err).Msg("frame skipped")
			}
		case newRate := <-e.tickRateChannel:
			ticker.Reset(newRate)
			e.log.Debug().Dur("tick", newRate).Msg("tick rate changed")
		}
	}
}

// Stop signals the frame loop to exit.
// Safe to call multiple times; subsequent calls are no-ops due to sync.Once.
func (e *engine) Stop() {
	e.signalQuit()
}

// signalQuit closes the quit channel to signal the loop to exit.
// Uses sync.Once to ensure the channel is only closed once.
func (e *engine) signalQuit() {
	e.quitOnce.Do(func() {
		close(e.quitChannel)
	})
}

// EnableProfiler enables HUD statistics output to the log.
func (e *engine) EnableProfiler() {
	e.profilingEnabled.Store(true)
}

// DisableProfiler disables HUD statistics output.
func (e *engine) DisableProfiler() {
	e.profilingEnabled.Store(false)
}

func (e *engine) ProfilerEnabled() bool {
	return e.profilingEnabled.Load()
}

func (e *engine) TickRate() time.Duration {
	return time.Duration(e.engineTickRate.Load())
}

func (e *engine) SetTickRate(fps float64) {
	newRate := tickInterval(fps)
	e.engineTickRate.Store(int64(newRate))

	// Non-blocking send; a pending value is replaced so a running loop only sees the latest rate.
	// A value left in the channel before Run starts resets the ticker to the same rate.
	for {
		select {
		case e.tickRateChannel <- newRate:
			return
		default:
		}
		select {
		case <-e.tickRateChannel:
		default:
		}
	}
}

func tickInterval(fps float64) time.Duration {
	if fps <= 0 {
		fps = 60
	}
	return time.Duration(float64(time.Second) / fps)
}
