package main

import (
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/Carmen-Shannon/oxy-cubes/common"
	"github.com/Carmen-Shannon/oxy-cubes/config"
	"github.com/Carmen-Shannon/oxy-cubes/engine"
	"github.com/Carmen-Shannon/oxy-cubes/engine/camera"
	"github.com/Carmen-Shannon/oxy-cubes/engine/grid"
	"github.com/Carmen-Shannon/oxy-cubes/engine/input"
	"github.com/Carmen-Shannon/oxy-cubes/engine/renderer"
	"github.com/Carmen-Shannon/oxy-cubes/engine/window"
	"github.com/spf13/cobra"
)

func runCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Open a window and render the cube grid (default)",
		Long: `Open a window and render the cube grid.

Controls:
  W / Up      move toward the grid
  S / Down    move away from the grid
  A / Left    orbit left
  D / Right   orbit right
  = / -       grow / shrink the grid
  [ / ]       halve / double the frame rate
  P           toggle frame stats in the log
  Esc         quit`,
		RunE: runWindowed,
	}
}

// runWindowed owns the main goroutine for GLFW; the frame loop runs on a second goroutine
// and publishes straight to the renderer.
func runWindowed(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return err
	}

	keys := input.NewKeyTracker()
	win, err := window.NewWindow(
		window.WithTitle(cfg.Window.Title),
		window.WithSize(cfg.Window.Width, cfg.Window.Height),
		window.WithKeyTracker(keys),
	)
	if err != nil {
		return err
	}
	defer func() { _ = win.Close() }()

	g, err := grid.NewGrid(cfg.GridOptions()...)
	if err != nil {
		return err
	}

	// The framebuffer may differ from the requested size on high-DPI displays.
	camOpts := append(cfg.CameraOptions(), camera.WithAspect(float32(win.Width())/float32(win.Height())))
	cam, err := camera.NewCamera(camOpts...)
	if err != nil {
		return err
	}

	r, err := renderer.NewRenderer(win.SurfaceDescriptor(), g, win.Width(), win.Height(),
		renderer.WithPresentMode(renderer.ParsePresentMode(cfg.Renderer.PresentMode)),
		renderer.WithForceSoftwareRenderer(cfg.Renderer.Software),
		renderer.WithLogger(log),
	)
	if err != nil {
		return err
	}
	defer r.Release()

	culler := grid.NewCuller(cfg.Engine.Workers)
	defer culler.Close()

	eng, err := engine.NewEngine(
		engine.WithCamera(cam),
		engine.WithGrid(g),
		engine.WithCuller(culler),
		engine.WithInput(keys),
		engine.WithSink(r),
		engine.WithLogger(log),
		engine.WithTickRate(cfg.Engine.TickRate),
		engine.WithHaltOnError(cfg.Engine.HaltOnError),
		engine.WithProfiling(cfg.Engine.Profiling),
	)
	if err != nil {
		return err
	}

	win.SetResizeCallback(func(width, height int) {
		if err := r.Resize(width, height); err != nil {
			log.Error().Err(err).Msg("surface resize failed")
			return
		}
		_ = eng.SetViewport(width, height)
	})
	tickRate := cfg.Engine.TickRate
	win.SetKeyDownCallback(func(keyCode uint32) {
		switch keyCode {
		case common.KeyEqual:
			stepGrid(g, 1)
		case common.KeyMinus:
			stepGrid(g, -1)
		case common.KeyLBrkt:
			tickRate = stepTickRate(eng, tickRate, 0.5)
		case common.KeyRBrkt:
			tickRate = stepTickRate(eng, tickRate, 2)
		case common.KeyP:
			toggleProfiler(eng)
		}
	})

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var runErr error
	done := make(chan struct{})
	go func() {
		defer close(done)
		defer func() {
			if rec := recover(); rec != nil {
				runErr = fmt.Errorf("frame loop panic: %v", rec)
			}
		}()
		runErr = eng.Run(ctx)
	}()

	// The window closes itself when the frame loop exits first (halt on error or a signal).
	win.SetUpdateCallback(func() {
		select {
		case <-done:
			_ = win.Close()
		default:
		}
	})

	log.Info().
		Int("instances", g.InstanceCount()).
		Int("width", win.Width()).
		Int("height", win.Height()).
		Msg("running")
	win.ProcessMessages()

	eng.Stop()
	<-done
	log.Info().Uint64("frames", eng.Frames()).Msg("stopped")

	if errors.Is(runErr, engine.ErrStopped) {
		return nil
	}
	return runErr
}

// stepGrid moves the grid-size slider by delta, ignoring steps past either end.
func stepGrid(g grid.Grid, delta int) {
	next := common.Clamp(g.Size()+delta, 1, grid.MaxSize)
	if next == g.Size() {
		return
	}
	if err := g.Resize(next); err != nil {
		log.Warn().Err(err).Int("size", next).Msg("grid resize rejected")
		return
	}
	log.Info().Int("size", next).Int("instances", g.InstanceCount()).Msg("grid resized")
}

const (
	minTickRate = 15.0
	maxTickRate = 480.0
)

// stepTickRate scales the frame loop rate by factor, staying within [minTickRate, maxTickRate].
// Returns the rate now in effect.
func stepTickRate(eng engine.Engine, fps, factor float64) float64 {
	next := common.Clamp(fps*factor, minTickRate, maxTickRate)
	if next == fps {
		return fps
	}
	eng.SetTickRate(next)
	log.Info().Float64("fps", next).Msg("tick rate changed")
	return next
}

func toggleProfiler(eng engine.Engine) {
	if eng.ProfilerEnabled() {
		eng.DisableProfiler()
		log.Info().Msg("frame stats off")
		return
	}
	eng.EnableProfiler()
	log.Info().Msg("frame stats on")
}
