package camera

import (
	"fmt"
	"math"

	"github.com/Carmen-Shannon/oxy-cubes/common"
	"github.com/go-gl/mathgl/mgl32"
)

// Default projection values used by every demo variant.
const (
	DefaultFov  = math.Pi / 4 // radians
	DefaultNear = 0.1
	DefaultFar  = 2000.0
)

// ProjectionParams describes a perspective projection.
type ProjectionParams struct {
	// FovY is the vertical field of view in radians.
	FovY float32
	// Aspect is viewport width / height.
	Aspect float32
	// Near and Far are the clip plane distances, 0 < Near < Far.
	Near float32
	Far  float32
}

// DefaultProjection returns the demo projection with a square aspect ratio.
func DefaultProjection() ProjectionParams {
	return ProjectionParams{FovY: DefaultFov, Aspect: 1, Near: DefaultNear, Far: DefaultFar}
}

// Validate reports common.ErrInvalidProjectionParams if the parameters cannot build a projection.
func (p ProjectionParams) Validate() error {
	return common.ValidateProjection(p.FovY, p.Aspect, p.Near, p.Far)
}

// Matrix builds the perspective projection matrix.
func (p ProjectionParams) Matrix() (mgl32.Mat4, error) {
	return common.Perspective(p.FovY, p.Aspect, p.Near, p.Far)
}

// WithViewport returns a copy with the aspect ratio recomputed from a viewport size.
//
// Parameters:
//   - width, height: viewport size in pixels, both must be positive
//
// Returns:
//   - ProjectionParams: the updated parameters
//   - error: common.ErrInvalidProjectionParams if either dimension is not positive
func (p ProjectionParams) WithViewport(width, height int) (ProjectionParams, error) {
	if width <= 0 || height <= 0 {
		return p, fmt.Errorf("%w: viewport %dx%d", common.ErrInvalidProjectionParams, width, height)
	}
	p.Aspect = float32(width) / float32(height)
	return p, nil
}
