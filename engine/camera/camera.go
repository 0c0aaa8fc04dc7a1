package camera

import (
	"sync"

	"github.com/Carmen-Shannon/oxy-cubes/common"
	"github.com/Carmen-Shannon/oxy-cubes/engine/input"
	"github.com/go-gl/mathgl/mgl32"
)

type cameraImpl struct {
	mu *sync.Mutex

	projection ProjectionParams
	state      State
	orbit      OrbitConfig
	fixed      bool

	viewMatrix           mgl32.Mat4
	projectionMatrix     mgl32.Mat4
	viewProjectionMatrix mgl32.Mat4
}

// Camera defines the interface for the camera system.
// The camera owns the orbit State and the projection parameters, and publishes a
// view-projection matrix that is fully replaced on every successful Update.
type Camera interface {
	// Projection returns the current projection parameters.
	//
	// Returns:
	//   - ProjectionParams: fov, aspect and clip planes
	Projection() ProjectionParams

	// State returns a copy of the current camera state.
	//
	// Returns:
	//   - State: position, target, up and orbit parameters
	State() State

	// OrbitConfig returns the orbit rates and limits applied by Update.
	//
	// Returns:
	//   - OrbitConfig: speed, turn rate and radius bounds
	OrbitConfig() OrbitConfig

	// Fixed reports whether the camera ignores movement input.
	//
	// Returns:
	//   - bool: true for a fixed-eye camera
	Fixed() bool

	// ViewMatrix returns the last published 4x4 view matrix (column-major).
	//
	// Returns:
	//   - mgl32.Mat4: the view matrix
	ViewMatrix() mgl32.Mat4

	// ProjectionMatrix returns the last published 4x4 projection matrix (column-major).
	//
	// Returns:
	//   - mgl32.Mat4: the projection matrix
	ProjectionMatrix() mgl32.Mat4

	// ViewProjectionMatrix returns the last published combined view-projection matrix (column-major).
	//
	// Returns:
	//   - mgl32.Mat4: the combined view-projection matrix
	ViewProjectionMatrix() mgl32.Mat4

	// Frustum returns the culling frustum of the published view-projection matrix.
	//
	// Returns:
	//   - common.Frustum: six normalized planes
	Frustum() common.Frustum

	// Update advances the orbit state with the frame's input and recomputes all matrices.
	// On error the previously published matrices are kept and the error is returned.
	//
	// Parameters:
	//   - in: the movements active this frame
	//   - dt: seconds since the previous frame
	//
	// Returns:
	//   - error: common.ErrInvalidProjectionParams or common.ErrDegenerateView
	Update(in input.Snapshot, dt float32) error

	// SetViewport recomputes the aspect ratio from a viewport size and republishes the matrices.
	//
	// Parameters:
	//   - width, height: viewport size in pixels
	//
	// Returns:
	//   - error: common.ErrInvalidProjectionParams for a non-positive size
	SetViewport(width, height int) error

	// SetProjection replaces the projection parameters and republishes the matrices.
	// Invalid parameters are rejected and the previous ones are kept.
	//
	// Parameters:
	//   - p: the new projection parameters
	//
	// Returns:
	//   - error: common.ErrInvalidProjectionParams
	SetProjection(p ProjectionParams) error

	// SetState replaces the camera state and republishes the matrices.
	// For an orbiting camera Position is recomputed from the orbit parameters.
	//
	// Parameters:
	//   - s: the new state
	//
	// Returns:
	//   - error: common.ErrDegenerateView
	SetState(s State) error
}

var _ Camera = &cameraImpl{}

// NewCamera creates a new orbiting Camera with the demo defaults and computes its initial matrices.
//
// Parameters:
//   - options: functional options to configure the camera
//
// Returns:
//   - Camera: the newly created camera
//   - error: error if the configured projection or view is degenerate
func NewCamera(options ...CameraBuilderOption) (Camera, error) {
	c := &cameraImpl{
		mu:                   &sync.Mutex{},
		projection:           DefaultProjection(),
		state:                DefaultState(),
		orbit:                DefaultOrbitConfig(),
		viewMatrix:           mgl32.Ident4(),
		projectionMatrix:     mgl32.Ident4(),
		viewProjectionMatrix: mgl32.Ident4(),
	}
	for _, option := range options {
		option(c)
	}
	if !c.fixed {
		c.state.Radius = c.orbit.clampRadius(c.state.Radius)
		c.state.SyncPosition()
	}
	if err := c.commit(c.state, c.projection); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *cameraImpl) Projection() ProjectionParams {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.projection
}

func (c *cameraImpl) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

func (c *cameraImpl) OrbitConfig() OrbitConfig {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.orbit
}

func (c *cameraImpl) Fixed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.fixed
}

func (c *cameraImpl) ViewMatrix() mgl32.Mat4 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.viewMatrix
}

func (c *cameraImpl) ProjectionMatrix() mgl32.Mat4 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.projectionMatrix
}

func (c *cameraImpl) ViewProjectionMatrix() mgl32.Mat4 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.viewProjectionMatrix
}

func (c *cameraImpl) Frustum() common.Frustum {
	c.mu.Lock()
	defer c.mu.Unlock()
	return common.ExtractFrustum(c.viewProjectionMatrix)
}

func (c *cameraImpl) Update(in input.Snapshot, dt float32) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	s := c.state
	if !c.fixed {
		Update(&s, c.orbit, in, dt)
	}
	return c.commit(s, c.projection)
}

func (c *cameraImpl) SetViewport(width, height int) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	p, err := c.projection.WithViewport(width, height)
	if err != nil {
		return err
	}
	return c.commit(c.state, p)
}

func (c *cameraImpl) SetProjection(p ProjectionParams) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.commit(c.state, p)
}

func (c *cameraImpl) SetState(s State) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.fixed {
		s.Radius = c.orbit.clampRadius(s.Radius)
		s.SyncPosition()
	}
	return c.commit(s, c.projection)
}

// commit builds the view, projection and view-projection matrices for a candidate state and
// projection. The candidates and all three matrices are adopted together, only after every
// step has succeeded; on error the camera is left exactly as it was.
// Caller must hold the mutex.
func (c *cameraImpl) commit(s State, p ProjectionParams) error {
	view, err := common.LookAt(s.Position, s.Target, s.Up)
	if err != nil {
		return err
	}
	projection, err := p.Matrix()
	if err != nil {
		return err
	}

	c.state = s
	c.projection = p
	c.viewMatrix = view
	c.projectionMatrix = projection
	c.viewProjectionMatrix = common.ViewProjection(projection, view)
	return nil
}
