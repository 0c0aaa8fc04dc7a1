package engine

import (
	"context"
	"errors"
	"math"
	"sync"
	"testing"
	"time"

	"github.com/Carmen-Shannon/oxy-cubes/common"
	"github.com/Carmen-Shannon/oxy-cubes/engine/camera"
	"github.com/Carmen-Shannon/oxy-cubes/engine/grid"
	"github.com/Carmen-Shannon/oxy-cubes/engine/input"
	"github.com/Carmen-Shannon/oxy-cubes/engine/profiler"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingSink struct {
	mu     sync.Mutex
	frames []Frame
	err    error
	notify chan struct{}
}

func (s *recordingSink) Publish(f Frame) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	s.frames = append(s.frames, f)
	if s.notify != nil {
		select {
		case s.notify <- struct{}{}:
		default:
		}
	}
	return nil
}

func (s *recordingSink) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.frames)
}

// failingCamera rejects every update.
type failingCamera struct {
	camera.Camera
}

func (failingCamera) Update(input.Snapshot, float32) error {
	return common.ErrDegenerateView
}

type fixedInput input.Snapshot

func (in fixedInput) Snapshot() input.Snapshot { return input.Snapshot(in) }

func TestStepPublishesCameraMatrix(t *testing.T) {
	sink := &recordingSink{}
	e, err := NewEngine(WithSink(sink))
	require.NoError(t, err)

	f, err := e.Step(1.0 / 60)
	require.NoError(t, err)
	require.Equal(t, 1, sink.count())

	assert.Equal(t, e.Camera().ViewProjectionMatrix(), f.ViewProj)
	assert.Equal(t, uint64(0), f.Index)
	assert.Equal(t, uint64(1), e.Frames())
	assert.Nil(t, e.Grid())
	assert.Equal(t, grid.GPUSimUniform{}, f.Sim)
}

func TestStepAppliesInput(t *testing.T) {
	cam, err := camera.NewCamera(camera.WithOrbit(170, 0, 60))
	require.NoError(t, err)
	e, err := NewEngine(
		WithCamera(cam),
		WithInput(fixedInput(input.NewSnapshot(input.MoveForward))),
	)
	require.NoError(t, err)

	_, err = e.Step(1)
	require.NoError(t, err)
	assert.Equal(t, float32(120), cam.State().Radius)
}

func TestStepReportsGridAndVisibility(t *testing.T) {
	g, err := grid.NewGrid(grid.WithSize(10), grid.WithSeed(1))
	require.NoError(t, err)
	e, err := NewEngine(WithGrid(g), WithCuller(grid.NewCuller(1)))
	require.NoError(t, err)

	f1, err := e.Step(0.5)
	require.NoError(t, err)
	f2, err := e.Step(0.25)
	require.NoError(t, err)

	assert.Equal(t, float32(1000), f2.Sim.Count)
	assert.InDelta(t, 0.75, f2.Sim.Time, 1e-6)
	assert.Equal(t, float32(0.75), f2.Time)
	// the default camera frames the whole grid
	assert.Equal(t, 1000, f1.Visible)
	assert.Equal(t, uint64(1), f2.Index)
}

func TestStepIgnoresInvalidDeltaForSimTime(t *testing.T) {
	e, err := NewEngine()
	require.NoError(t, err)

	_, err = e.Step(-1)
	require.NoError(t, err)
	f, err := e.Step(0.5)
	require.NoError(t, err)
	assert.Equal(t, float32(0.5), f.Time)
}

func TestStepIgnoresNonFiniteDelta(t *testing.T) {
	cam, err := camera.NewCamera()
	require.NoError(t, err)
	before := cam.State()
	e, err := NewEngine(
		WithCamera(cam),
		WithInput(fixedInput(input.NewSnapshot(input.MoveForward, input.TurnLeft))),
	)
	require.NoError(t, err)

	for _, dt := range []float32{float32(math.Inf(1)), float32(math.NaN()), float32(math.Inf(-1))} {
		f, err := e.Step(dt)
		require.NoError(t, err)
		assert.Equal(t, float32(0), f.Time)
		assert.Equal(t, float32(0), f.DeltaTime)
		assert.True(t, common.IsFiniteMatrix(f.ViewProj))
	}
	assert.Equal(t, before, cam.State())

	f, err := e.Step(0.5)
	require.NoError(t, err)
	assert.Equal(t, float32(0.5), f.Time)
	assert.Equal(t, float32(0.5), f.DeltaTime)
}

func TestStepSkipsFrameOnCameraError(t *testing.T) {
	cam, err := camera.NewCamera()
	require.NoError(t, err)
	sink := &recordingSink{}
	e, err := NewEngine(WithCamera(failingCamera{cam}), WithSink(sink))
	require.NoError(t, err)

	_, err = e.Step(1.0 / 60)
	assert.ErrorIs(t, err, common.ErrDegenerateView)
	assert.Equal(t, 0, sink.count())
	assert.Equal(t, uint64(0), e.Frames())
}

func TestStepWrapsSinkError(t *testing.T) {
	boom := errors.New("device lost")
	e, err := NewEngine(WithSink(&recordingSink{err: boom}))
	require.NoError(t, err)

	_, err = e.Step(1.0 / 60)
	assert.ErrorIs(t, err, ErrPublish)
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, uint64(0), e.Frames())
}

func TestSetViewportUpdatesAspect(t *testing.T) {
	e, err := NewEngine()
	require.NoError(t, err)

	require.NoError(t, e.SetViewport(1600, 900))
	assert.InDelta(t, 16.0/9.0, e.Camera().Projection().Aspect, 1e-6)

	assert.ErrorIs(t, e.SetViewport(0, 900), common.ErrInvalidProjectionParams)
	assert.InDelta(t, 16.0/9.0, e.Camera().Projection().Aspect, 1e-6)
}

func TestRunStopsOnStop(t *testing.T) {
	sink := &recordingSink{notify: make(chan struct{}, 1)}
	e, err := NewEngine(WithSink(sink), WithTickRate(1000))
	require.NoError(t, err)

	done := make(chan error, 1)
	go func() { done <- e.Run(context.Background()) }()

	for sink.count() < 3 {
		select {
		case <-sink.notify:
		case <-time.After(2 * time.Second):
			t.Fatal("no frames published")
		}
	}
	e.Stop()
	e.Stop()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return after Stop")
	}
	assert.ErrorIs(t, e.Run(context.Background()), ErrStopped)
}

func TestRunStopsOnContextCancel(t *testing.T) {
	e, err := NewEngine(WithTickRate(1000))
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	assert.NoError(t, e.Run(ctx))
	assert.Greater(t, e.Frames(), uint64(0))
}

func TestRunSkipsFailedFrames(t *testing.T) {
	e, err := NewEngine(WithSink(&recordingSink{err: errors.New("busy")}), WithTickRate(1000))
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	assert.NoError(t, e.Run(ctx))
}

func TestRunHaltsOnError(t *testing.T) {
	cam, err := camera.NewCamera()
	require.NoError(t, err)
	e, err := NewEngine(
		WithCamera(failingCamera{cam}),
		WithHaltOnError(true),
		WithTickRate(1000),
	)
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	assert.ErrorIs(t, e.Run(ctx), common.ErrDegenerateView)
}

func TestSetTickRateBeforeRun(t *testing.T) {
	e, err := NewEngine(WithTickRate(30))
	require.NoError(t, err)
	assert.Equal(t, time.Second/30, e.TickRate())

	// repeated calls replace the pending value instead of blocking
	e.SetTickRate(250)
	e.SetTickRate(500)
	assert.Equal(t, 2*time.Millisecond, e.TickRate())

	e.SetTickRate(-1)
	assert.Equal(t, time.Second/60, e.TickRate())
}

func TestSetTickRateWhileRunning(t *testing.T) {
	sink := &recordingSink{notify: make(chan struct{}, 1)}
	e, err := NewEngine(WithSink(sink), WithTickRate(1000))
	require.NoError(t, err)

	done := make(chan error, 1)
	go func() { done <- e.Run(context.Background()) }()

	waitFrames := func(n int) {
		for sink.count() < n {
			select {
			case <-sink.notify:
			case <-time.After(2 * time.Second):
				t.Fatalf("only %d of %d frames published", sink.count(), n)
			}
		}
	}

	waitFrames(2)
	e.SetTickRate(500)
	e.SetTickRate(400)
	assert.Equal(t, 2500*time.Microsecond, e.TickRate())
	waitFrames(sink.count() + 3)

	e.Stop()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return after Stop")
	}
}

func TestProfilerToggle(t *testing.T) {
	// every clock read is two seconds after the previous one, so each tick reports
	base := time.Unix(0, 0)
	calls := 0
	clock := func() time.Time {
		calls++
		return base.Add(time.Duration(calls) * 2 * time.Second)
	}
	p := profiler.NewProfiler(profiler.WithClock(clock))

	g, err := grid.NewGrid(grid.WithSize(2), grid.WithSeed(1))
	require.NoError(t, err)
	e, err := NewEngine(WithProfiler(p), WithGrid(g), WithCuller(grid.NewCuller(1)))
	require.NoError(t, err)
	assert.False(t, e.ProfilerEnabled())

	_, err = e.Step(0.1)
	require.NoError(t, err)
	assert.Equal(t, profiler.Report{}, p.Last())

	e.EnableProfiler()
	assert.True(t, e.ProfilerEnabled())
	_, err = e.Step(0.1)
	require.NoError(t, err)
	report := p.Last()
	assert.Equal(t, 8, report.HUD.Instances)
	assert.False(t, report.Timestamp.IsZero())

	e.DisableProfiler()
	assert.False(t, e.ProfilerEnabled())
	_, err = e.Step(0.1)
	require.NoError(t, err)
	assert.Equal(t, report, p.Last())
}

func TestTickInterval(t *testing.T) {
	assert.Equal(t, time.Second/60, tickInterval(0))
	assert.Equal(t, 4*time.Millisecond, tickInterval(250))
}
