package main

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/Carmen-Shannon/oxy-cubes/common"
	"github.com/Carmen-Shannon/oxy-cubes/config"
	"github.com/Carmen-Shannon/oxy-cubes/engine"
	"github.com/Carmen-Shannon/oxy-cubes/engine/camera"
	"github.com/Carmen-Shannon/oxy-cubes/engine/grid"
	"github.com/Carmen-Shannon/oxy-cubes/engine/input"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

// simulateOptions are the flags of the simulate command.
type simulateOptions struct {
	frames int
	dt     float32
	input  string
	width  int
	height int
}

func simulateCmd() *cobra.Command {
	opts := simulateOptions{}
	cmd := &cobra.Command{
		Use:   "simulate",
		Short: "Step the frame loop without a window and print the final camera",
		Long: `Step the frame loop with a fixed delta time while holding the given movements,
then print the camera state, the view-projection matrix and where the origin lands in NDC.

Movements: forward, back, left, right (comma separated).`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(cfgPath)
			if err != nil {
				return err
			}
			return simulate(cfg, opts, cmd.OutOrStdout(), log)
		},
	}
	cmd.Flags().IntVar(&opts.frames, "frames", 60, "number of frames to step")
	cmd.Flags().Float32Var(&opts.dt, "dt", 1.0/60.0, "seconds per frame")
	cmd.Flags().StringVar(&opts.input, "input", "", "movements held for every frame, e.g. forward,left")
	cmd.Flags().IntVar(&opts.width, "width", 0, "viewport width (default window.width)")
	cmd.Flags().IntVar(&opts.height, "height", 0, "viewport height (default window.height)")
	return cmd
}

// parseSnapshot turns a comma separated movement list into a Snapshot.
func parseSnapshot(list string) (input.Snapshot, error) {
	var s input.Snapshot
	for _, name := range strings.Split(list, ",") {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		m, err := input.ParseMovement(name)
		if err != nil {
			return 0, err
		}
		s = s.With(m)
	}
	return s, nil
}

// frameCounter is the headless sink: it records the last frame and logs each one at debug level.
type frameCounter struct {
	log   zerolog.Logger
	count int
	last  engine.Frame
}

func (c *frameCounter) Publish(f engine.Frame) error {
	c.count++
	c.last = f
	c.log.Debug().
		Uint64("frame", f.Index).
		Float32("time", f.Time).
		Int("visible", f.Visible).
		Msg("frame")
	return nil
}

func simulate(cfg *config.Config, opts simulateOptions, out io.Writer, log zerolog.Logger) error {
	if opts.frames < 0 {
		return fmt.Errorf("frames must not be negative, got %d", opts.frames)
	}
	snap, err := parseSnapshot(opts.input)
	if err != nil {
		return err
	}

	g, err := grid.NewGrid(cfg.GridOptions()...)
	if err != nil {
		return err
	}
	cam, err := camera.NewCamera(cfg.CameraOptions()...)
	if err != nil {
		return err
	}

	culler := grid.NewCuller(cfg.Engine.Workers)
	defer culler.Close()

	sink := &frameCounter{log: log}
	eng, err := engine.NewEngine(
		engine.WithCamera(cam),
		engine.WithGrid(g),
		engine.WithCuller(culler),
		engine.WithInput(engine.InputSourceFunc(func() input.Snapshot { return snap })),
		engine.WithSink(sink),
		engine.WithLogger(log),
		engine.WithProfiling(cfg.Engine.Profiling),
	)
	if err != nil {
		return err
	}

	if opts.width != 0 || opts.height != 0 {
		width := common.Coalesce(opts.width, cfg.Window.Width)
		height := common.Coalesce(opts.height, cfg.Window.Height)
		if err := eng.SetViewport(width, height); err != nil {
			return err
		}
	}

	skipped := 0
	for range opts.frames {
		if _, err := eng.Step(opts.dt); err != nil {
			if cfg.Engine.HaltOnError {
				return err
			}
			skipped++
		}
	}

	s := cam.State()
	vp := cam.ViewProjectionMatrix()
	fmt.Fprintf(out, "frames:   %d (%d skipped)\n", sink.count, skipped)
	fmt.Fprintf(out, "input:    %s\n", snap)
	fmt.Fprintf(out, "eye:      (%.4f, %.4f, %.4f)\n", s.Position[0], s.Position[1], s.Position[2])
	fmt.Fprintf(out, "radius:   %.4f\n", s.Radius)
	fmt.Fprintf(out, "angle:    %.4f\n", s.Angle)
	fmt.Fprintf(out, "visible:  %d / %d\n", sink.last.Visible, g.InstanceCount())
	fmt.Fprintln(out, "view-projection:")
	writeMatrix(out, vp)

	ndc, err := common.ProjectPoint(vp, mgl32.Vec3{})
	switch {
	case errors.Is(err, common.ErrPointAtInfinity):
		fmt.Fprintln(out, "origin:   at infinity")
	case err != nil:
		return err
	default:
		fmt.Fprintf(out, "origin:   ndc (%.4f, %.4f, %.4f)\n", ndc[0], ndc[1], ndc[2])
	}
	return nil
}

// writeMatrix prints m row by row.
func writeMatrix(out io.Writer, m mgl32.Mat4) {
	for r := range 4 {
		row := m.Row(r)
		fmt.Fprintf(out, "  [%10.4f %10.4f %10.4f %10.4f]\n", row[0], row[1], row[2], row[3])
	}
}
