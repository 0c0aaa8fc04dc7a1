package camera

import "github.com/go-gl/mathgl/mgl32"

// CameraBuilderOption is a functional option for configuring a Camera.
type CameraBuilderOption func(*cameraImpl)

// WithFov sets the camera's vertical field of view in radians.
//
// Parameters:
//   - fov: field of view in radians
//
// Returns:
//   - CameraBuilderOption: a function that sets the camera's field of view
func WithFov(fov float32) CameraBuilderOption {
	return func(c *cameraImpl) {
		c.projection.FovY = fov
	}
}

// WithAspect sets the camera's aspect ratio (width / height).
//
// Parameters:
//   - aspect: the aspect ratio to set
//
// Returns:
//   - CameraBuilderOption: a function that sets the camera's aspect ratio
func WithAspect(aspect float32) CameraBuilderOption {
	return func(c *cameraImpl) {
		c.projection.Aspect = aspect
	}
}

// WithClipPlanes sets the near and far clipping plane distances.
//
// Parameters:
//   - near: near plane distance
//   - far: far plane distance
//
// Returns:
//   - CameraBuilderOption: a function that sets the clip planes
func WithClipPlanes(near, far float32) CameraBuilderOption {
	return func(c *cameraImpl) {
		c.projection.Near = near
		c.projection.Far = far
	}
}

// WithProjection replaces all projection parameters at once.
//
// Parameters:
//   - p: the projection parameters
//
// Returns:
//   - CameraBuilderOption: a function that sets the projection
func WithProjection(p ProjectionParams) CameraBuilderOption {
	return func(c *cameraImpl) {
		c.projection = p
	}
}

// WithOrbit sets the initial orbit radius, angle and eye height.
//
// Parameters:
//   - radius: horizontal distance from the target
//   - angle: orbit angle in radians
//   - height: eye height above the target
//
// Returns:
//   - CameraBuilderOption: a function that sets the orbit parameters
func WithOrbit(radius, angle, height float32) CameraBuilderOption {
	return func(c *cameraImpl) {
		c.state.Radius = radius
		c.state.Angle = angle
		c.state.Height = height
	}
}

// WithOrbitConfig sets the orbit speeds and radius bounds.
//
// Parameters:
//   - cfg: orbit rates and limits
//
// Returns:
//   - CameraBuilderOption: a function that sets the orbit config
func WithOrbitConfig(cfg OrbitConfig) CameraBuilderOption {
	return func(c *cameraImpl) {
		c.orbit = cfg
	}
}

// WithTarget sets the look-at point the camera orbits around.
//
// Parameters:
//   - x, y, z: world-space coordinates
//
// Returns:
//   - CameraBuilderOption: a function that sets the target
func WithTarget(x, y, z float32) CameraBuilderOption {
	return func(c *cameraImpl) {
		c.state.Target = mgl32.Vec3{x, y, z}
	}
}

// WithUp sets the camera's up vector.
//
// Parameters:
//   - x, y, z: up vector components
//
// Returns:
//   - CameraBuilderOption: a function that sets the camera's up vector
func WithUp(x, y, z float32) CameraBuilderOption {
	return func(c *cameraImpl) {
		c.state.Up = mgl32.Vec3{x, y, z}
	}
}

// WithFixedEye pins the eye at a world-space position. A fixed camera ignores movement input.
//
// Parameters:
//   - x, y, z: world-space eye position
//
// Returns:
//   - CameraBuilderOption: a function that fixes the eye
func WithFixedEye(x, y, z float32) CameraBuilderOption {
	return func(c *cameraImpl) {
		c.fixed = true
		c.state.Position = mgl32.Vec3{x, y, z}
	}
}
