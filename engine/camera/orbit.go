package camera

import (
	"math"

	"github.com/Carmen-Shannon/oxy-cubes/engine/input"
	"github.com/go-gl/mathgl/mgl32"
)

// Default orbit values. The default radius, angle and height put the eye at (100, 100, 100),
// the same viewpoint as the static grid demo.
const (
	DefaultRadius    = 141.42136 // 100 * sqrt(2)
	DefaultAngle     = math.Pi / 4
	DefaultHeight    = 100.0
	DefaultMinRadius = 10.0
	DefaultSpeed     = 50.0
	DefaultTurnRate  = 1.0
)

// State is the mutable camera state threaded through the per-frame update.
// Position is derived from Target, Radius, Angle and Height; it is only written by Update
// (or set directly for a fixed-eye camera).
type State struct {
	// Position is the world-space eye position.
	Position mgl32.Vec3
	// Target is the look-at point. The orbit is centered on it.
	Target mgl32.Vec3
	// Up is the world up vector used to build the view basis.
	Up mgl32.Vec3

	// Radius is the horizontal distance from Target, never below OrbitConfig.MinRadius.
	Radius float32
	// Angle is the orbit angle around the Y axis in radians. It is unbounded; trig wraps it.
	Angle float32
	// Height is the eye's Y offset above Target.
	Height float32
}

// OrbitConfig holds the per-second rates and limits applied by Update.
type OrbitConfig struct {
	// Speed is the radius change per second while MoveForward or MoveBack is held.
	Speed float32
	// TurnRate is the angle change in radians per second while TurnLeft or TurnRight is held.
	TurnRate float32
	// MinRadius keeps the eye from passing through the target.
	MinRadius float32
	// MaxRadius caps zooming out. Zero means unbounded.
	MaxRadius float32
}

// DefaultState returns the orbit state of the demo: eye at (100, 100, 100) looking at the origin.
func DefaultState() State {
	s := State{
		Target: mgl32.Vec3{0, 0, 0},
		Up:     mgl32.Vec3{0, 1, 0},
		Radius: DefaultRadius,
		Angle:  DefaultAngle,
		Height: DefaultHeight,
	}
	s.SyncPosition()
	return s
}

// DefaultOrbitConfig returns the demo's orbit rates.
func DefaultOrbitConfig() OrbitConfig {
	return OrbitConfig{
		Speed:     DefaultSpeed,
		TurnRate:  DefaultTurnRate,
		MinRadius: DefaultMinRadius,
	}
}

// SyncPosition recomputes Position from the orbit parameters:
// eye = target + (radius*cos(angle), height, radius*sin(angle)).
func (s *State) SyncPosition() {
	cosA := float32(math.Cos(float64(s.Angle)))
	sinA := float32(math.Sin(float64(s.Angle)))
	s.Position = s.Target.Add(mgl32.Vec3{s.Radius * cosA, s.Height, s.Radius * sinA})
}

// Update advances the orbit state by one frame.
// MoveForward shrinks the radius and MoveBack grows it by Speed*dt; TurnLeft adds and TurnRight
// subtracts TurnRate*dt from the angle. The radius is clamped to [MinRadius, MaxRadius] and the
// eye position is recomputed. A negative or non-finite dt is treated as zero.
//
// Parameters:
//   - s: the state to mutate
//   - cfg: orbit rates and limits
//   - in: the movements active this frame
//   - dt: seconds since the previous frame
func Update(s *State, cfg OrbitConfig, in input.Snapshot, dt float32) {
	if !(dt > 0) || math.IsInf(float64(dt), 0) {
		dt = 0
	}

	if in.Has(input.MoveForward) {
		s.Radius -= cfg.Speed * dt
	}
	if in.Has(input.MoveBack) {
		s.Radius += cfg.Speed * dt
	}
	s.Radius = cfg.clampRadius(s.Radius)

	if in.Has(input.TurnLeft) {
		s.Angle += cfg.TurnRate * dt
	}
	if in.Has(input.TurnRight) {
		s.Angle -= cfg.TurnRate * dt
	}

	s.SyncPosition()
}

func (cfg OrbitConfig) clampRadius(r float32) float32 {
	if r < cfg.MinRadius {
		r = cfg.MinRadius
	}
	if cfg.MaxRadius > 0 && r > cfg.MaxRadius {
		r = cfg.MaxRadius
	}
	return r
}
