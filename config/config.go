// Package config provides layered configuration for the cubes demo:
// built-in defaults, then an optional YAML file, then CUBES_* environment variables.
package config

import (
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"

	"github.com/Carmen-Shannon/oxy-cubes/common"
	"github.com/Carmen-Shannon/oxy-cubes/engine/camera"
	"github.com/Carmen-Shannon/oxy-cubes/engine/grid"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// EnvPrefix is prepended to every environment override, e.g. CUBES_GRID_SIZE.
const EnvPrefix = "CUBES"

// Config holds all application configuration
type Config struct {
	Camera   CameraConfig   `mapstructure:"camera" yaml:"camera"`
	Grid     GridConfig     `mapstructure:"grid" yaml:"grid"`
	Engine   EngineConfig   `mapstructure:"engine" yaml:"engine"`
	Window   WindowConfig   `mapstructure:"window" yaml:"window"`
	Renderer RendererConfig `mapstructure:"renderer" yaml:"renderer"`
}

// CameraConfig configures the projection and the orbit controller
type CameraConfig struct {
	FovDegrees float32 `mapstructure:"fov_degrees" yaml:"fov_degrees"`
	Near       float32 `mapstructure:"near" yaml:"near"`
	Far        float32 `mapstructure:"far" yaml:"far"`
	Radius     float32 `mapstructure:"radius" yaml:"radius"`
	Angle      float32 `mapstructure:"angle" yaml:"angle"` // radians
	Height     float32 `mapstructure:"height" yaml:"height"`
	MinRadius  float32 `mapstructure:"min_radius" yaml:"min_radius"`
	MaxRadius  float32 `mapstructure:"max_radius" yaml:"max_radius"` // 0 = unbounded
	Speed      float32 `mapstructure:"speed" yaml:"speed"`           // radius units per second
	TurnRate   float32 `mapstructure:"turn_rate" yaml:"turn_rate"`   // radians per second
	Fixed      bool    `mapstructure:"fixed" yaml:"fixed"`           // pin the eye at the initial orbit position
}

// GridConfig configures the instance grid
type GridConfig struct {
	Size    int     `mapstructure:"size" yaml:"size"`
	Spacing float32 `mapstructure:"spacing" yaml:"spacing"`
	Seed    uint64  `mapstructure:"seed" yaml:"seed"` // 0 = random
}

// EngineConfig configures the frame loop
type EngineConfig struct {
	TickRate    float64 `mapstructure:"tick_rate" yaml:"tick_rate"`
	HaltOnError bool    `mapstructure:"halt_on_error" yaml:"halt_on_error"`
	Profiling   bool    `mapstructure:"profiling" yaml:"profiling"`
	Workers     int     `mapstructure:"workers" yaml:"workers"` // visibility workers, 0 = NumCPU-1
}

// WindowConfig configures the window
type WindowConfig struct {
	Title  string `mapstructure:"title" yaml:"title"`
	Width  int    `mapstructure:"width" yaml:"width"`
	Height int    `mapstructure:"height" yaml:"height"`
}

// RendererConfig configures the GPU surface
type RendererConfig struct {
	PresentMode string `mapstructure:"present_mode" yaml:"present_mode"` // vsync or uncapped
	Software    bool   `mapstructure:"software" yaml:"software"`
}

// DefaultConfig returns the configuration of the original demo
func DefaultConfig() *Config {
	return &Config{
		Camera: CameraConfig{
			FovDegrees: 45,
			Near:       camera.DefaultNear,
			Far:        camera.DefaultFar,
			Radius:     camera.DefaultRadius,
			Angle:      camera.DefaultAngle,
			Height:     camera.DefaultHeight,
			MinRadius:  camera.DefaultMinRadius,
			MaxRadius:  0,
			Speed:      camera.DefaultSpeed,
			TurnRate:   camera.DefaultTurnRate,
		},
		Grid: GridConfig{
			Size:    grid.DefaultSize,
			Spacing: grid.DefaultSpacing,
		},
		Engine: EngineConfig{
			TickRate: 60,
		},
		Window: WindowConfig{
			Title:  "Instanced Cubes",
			Width:  1280,
			Height: 720,
		},
		Renderer: RendererConfig{
			PresentMode: "vsync",
		},
	}
}

// Load reads configuration from defaults, an optional file and the environment.
// An explicit path must exist; otherwise config.yaml is looked up in the working directory
// and in ~/.oxy-cubes, and a missing file is not an error.
//
// Parameters:
//   - path: explicit config file, or "" to search (CUBES_CONFIG is used when empty)
//
// Returns:
//   - *Config: the merged, validated configuration
//   - error: read, decode or validation errors
func Load(path string) (*Config, error) {
	v := newViper()

	path = common.Coalesce(path, os.Getenv(EnvPrefix+"_CONFIG"))
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		if dir, err := Dir(); err == nil {
			v.AddConfigPath(dir)
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// newViper returns a viper instance with every default registered, so that AutomaticEnv
// can override keys that no config file mentions.
func newViper() *viper.Viper {
	v := viper.New()
	d := DefaultConfig()

	v.SetDefault("camera.fov_degrees", d.Camera.FovDegrees)
	v.SetDefault("camera.near", d.Camera.Near)
	v.SetDefault("camera.far", d.Camera.Far)
	v.SetDefault("camera.radius", d.Camera.Radius)
	v.SetDefault("camera.angle", d.Camera.Angle)
	v.SetDefault("camera.height", d.Camera.Height)
	v.SetDefault("camera.min_radius", d.Camera.MinRadius)
	v.SetDefault("camera.max_radius", d.Camera.MaxRadius)
	v.SetDefault("camera.speed", d.Camera.Speed)
	v.SetDefault("camera.turn_rate", d.Camera.TurnRate)
	v.SetDefault("camera.fixed", d.Camera.Fixed)

	v.SetDefault("grid.size", d.Grid.Size)
	v.SetDefault("grid.spacing", d.Grid.Spacing)
	v.SetDefault("grid.seed", d.Grid.Seed)

	v.SetDefault("engine.tick_rate", d.Engine.TickRate)
	v.SetDefault("engine.halt_on_error", d.Engine.HaltOnError)
	v.SetDefault("engine.profiling", d.Engine.Profiling)
	v.SetDefault("engine.workers", d.Engine.Workers)

	v.SetDefault("window.title", d.Window.Title)
	v.SetDefault("window.width", d.Window.Width)
	v.SetDefault("window.height", d.Window.Height)

	v.SetDefault("renderer.present_mode", d.Renderer.PresentMode)
	v.SetDefault("renderer.software", d.Renderer.Software)

	// Environment variable overrides
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

// Dir returns the per-user configuration directory path
func Dir() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(homeDir, ".oxy-cubes"), nil
}

// Validate reports every invalid field at once.
//
// Returns:
//   - error: nil, or the joined field errors
func (c *Config) Validate() error {
	var errs []error
	add := func(format string, args ...any) {
		errs = append(errs, fmt.Errorf(format, args...))
	}

	if c.Camera.FovDegrees <= 0 || c.Camera.FovDegrees >= 180 {
		add("camera.fov_degrees must be in (0, 180), got %v", c.Camera.FovDegrees)
	}
	if c.Camera.Near <= 0 {
		add("camera.near must be positive, got %v", c.Camera.Near)
	}
	if c.Camera.Far <= c.Camera.Near {
		add("camera.far must be greater than camera.near, got %v", c.Camera.Far)
	}
	if c.Camera.MinRadius <= 0 {
		add("camera.min_radius must be positive, got %v", c.Camera.MinRadius)
	}
	if c.Camera.MaxRadius != 0 && c.Camera.MaxRadius < c.Camera.MinRadius {
		add("camera.max_radius must be 0 or at least camera.min_radius, got %v", c.Camera.MaxRadius)
	}
	if c.Camera.Speed < 0 {
		add("camera.speed must not be negative, got %v", c.Camera.Speed)
	}
	if c.Camera.TurnRate < 0 {
		add("camera.turn_rate must not be negative, got %v", c.Camera.TurnRate)
	}
	if c.Grid.Size < 1 || c.Grid.Size > grid.MaxSize {
		add("grid.size must be in [1, %d], got %d", grid.MaxSize, c.Grid.Size)
	}
	if c.Grid.Spacing <= 0 {
		add("grid.spacing must be positive, got %v", c.Grid.Spacing)
	}
	if c.Engine.TickRate <= 0 {
		add("engine.tick_rate must be positive, got %v", c.Engine.TickRate)
	}
	if c.Engine.Workers < 0 {
		add("engine.workers must not be negative, got %d", c.Engine.Workers)
	}
	if c.Window.Width <= 0 || c.Window.Height <= 0 {
		add("window size must be positive, got %dx%d", c.Window.Width, c.Window.Height)
	}
	switch c.Renderer.PresentMode {
	case "vsync", "uncapped", "immediate":
	default:
		add("renderer.present_mode must be vsync or uncapped, got %q", c.Renderer.PresentMode)
	}

	return errors.Join(errs...)
}

// FovRadians returns the vertical field of view in radians.
func (c CameraConfig) FovRadians() float32 {
	return c.FovDegrees * math.Pi / 180
}

// CameraOptions converts the camera section into camera builder options.
// The initial viewport aspect comes from the window size.
//
// Returns:
//   - []camera.CameraBuilderOption: options for camera.NewCamera
func (c *Config) CameraOptions() []camera.CameraBuilderOption {
	opts := []camera.CameraBuilderOption{
		camera.WithFov(c.Camera.FovRadians()),
		camera.WithClipPlanes(c.Camera.Near, c.Camera.Far),
		camera.WithOrbit(c.Camera.Radius, c.Camera.Angle, c.Camera.Height),
		camera.WithOrbitConfig(camera.OrbitConfig{
			Speed:     c.Camera.Speed,
			TurnRate:  c.Camera.TurnRate,
			MinRadius: c.Camera.MinRadius,
			MaxRadius: c.Camera.MaxRadius,
		}),
	}
	if c.Window.Width > 0 && c.Window.Height > 0 {
		opts = append(opts, camera.WithAspect(float32(c.Window.Width)/float32(c.Window.Height)))
	}
	if c.Camera.Fixed {
		s := camera.State{Radius: c.Camera.Radius, Angle: c.Camera.Angle, Height: c.Camera.Height}
		s.SyncPosition()
		opts = append(opts, camera.WithFixedEye(s.Position[0], s.Position[1], s.Position[2]))
	}
	return opts
}

// GridOptions converts the grid section into grid builder options.
//
// Returns:
//   - []grid.GridBuilderOption: options for grid.NewGrid
func (c *Config) GridOptions() []grid.GridBuilderOption {
	opts := []grid.GridBuilderOption{
		grid.WithSize(c.Grid.Size),
		grid.WithSpacing(c.Grid.Spacing),
	}
	if c.Grid.Seed != 0 {
		opts = append(opts, grid.WithSeed(c.Grid.Seed))
	}
	return opts
}

// YAML renders the configuration as a YAML document.
//
// Returns:
//   - []byte: the YAML document
//   - error: marshal error
func (c *Config) YAML() ([]byte, error) {
	return yaml.Marshal(c)
}
