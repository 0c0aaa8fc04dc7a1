package common

import (
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// degenerateEpsilon is the length below which a direction vector is treated as zero.
const degenerateEpsilon = 1e-6

// Perspective creates a right-handed perspective projection matrix.
// View-space depth [near, far] maps to clip-space z in [-w, 0] after the divide by w = -z_view,
// which lands in the WebGPU [0, 1] depth range. The matrix is stored in column-major order.
//
// Parameters:
//   - fovY: vertical field of view in radians, in (0, π)
//   - aspect: viewport aspect ratio (width/height), must be > 0
//   - near: near clipping plane distance, must be > 0
//   - far: far clipping plane distance, must be > near
//
// Returns:
//   - mgl32.Mat4: the projection matrix
//   - error: ErrInvalidProjectionParams if any parameter is out of range or non-finite
func Perspective(fovY, aspect, near, far float32) (mgl32.Mat4, error) {
	if err := checkProjectionRanges(fovY, aspect, near, far); err != nil {
		return mgl32.Mat4{}, err
	}

	f := 1.0 / float32(math.Tan(float64(fovY)/2.0))

	var out mgl32.Mat4
	out[0] = f / aspect
	out[5] = f
	out[10] = far / (near - far)
	out[11] = -1.0
	out[14] = (near * far) / (near - far)

	// In-range values can still overflow float32, e.g. a tiny aspect or near*far past MaxFloat32.
	if !IsFiniteMatrix(out) {
		return mgl32.Mat4{}, fmt.Errorf("%w: matrix overflows float32 (fovY=%v aspect=%v near=%v far=%v)",
			ErrInvalidProjectionParams, fovY, aspect, near, far)
	}
	return out, nil
}

// ValidateProjection reports whether Perspective would accept the parameters.
//
// Parameters:
//   - fovY, aspect, near, far: see Perspective
//
// Returns:
//   - error: ErrInvalidProjectionParams wrapped with the offending values, or nil
func ValidateProjection(fovY, aspect, near, far float32) error {
	_, err := Perspective(fovY, aspect, near, far)
	return err
}

func checkProjectionRanges(fovY, aspect, near, far float32) error {
	for _, v := range [4]float32{fovY, aspect, near, far} {
		if !isFinite(v) {
			return fmt.Errorf("%w: non-finite value (fovY=%v aspect=%v near=%v far=%v)",
				ErrInvalidProjectionParams, fovY, aspect, near, far)
		}
	}
	switch {
	case fovY <= 0 || fovY >= math.Pi:
		return fmt.Errorf("%w: fovY %v outside (0, π)", ErrInvalidProjectionParams, fovY)
	case aspect <= 0:
		return fmt.Errorf("%w: aspect %v must be positive", ErrInvalidProjectionParams, aspect)
	case near <= 0:
		return fmt.Errorf("%w: near %v must be positive", ErrInvalidProjectionParams, near)
	case near >= far:
		return fmt.Errorf("%w: near %v must be less than far %v", ErrInvalidProjectionParams, near, far)
	}
	return nil
}

// LookAt creates a view matrix that positions and orients the camera.
// The resulting matrix transforms world coordinates to view space, with the camera looking down -Z.
//
// Parameters:
//   - eye: camera position in world space
//   - center: target point the camera looks at
//   - up: up vector defining camera orientation (typically 0,1,0)
//
// Returns:
//   - mgl32.Mat4: the view matrix (column-major)
//   - error: ErrDegenerateView if eye == center or up is parallel to the view direction
func LookAt(eye, center, up mgl32.Vec3) (mgl32.Mat4, error) {
	z := eye.Sub(center)
	zLen := z.Len()
	if !isFinite(zLen) || zLen < degenerateEpsilon {
		return mgl32.Mat4{}, fmt.Errorf("%w: eye %v coincides with center %v", ErrDegenerateView, eye, center)
	}
	z = z.Mul(1 / zLen)

	x := up.Cross(z)
	xLen := x.Len()
	if !isFinite(xLen) || xLen < degenerateEpsilon {
		return mgl32.Mat4{}, fmt.Errorf("%w: up %v is parallel to view direction %v", ErrDegenerateView, up, z)
	}
	x = x.Mul(1 / xLen)

	y := z.Cross(x)

	var out mgl32.Mat4
	out[0], out[4], out[8], out[12] = x[0], x[1], x[2], -x.Dot(eye)
	out[1], out[5], out[9], out[13] = y[0], y[1], y[2], -y.Dot(eye)
	out[2], out[6], out[10], out[14] = z[0], z[1], z[2], -z.Dot(eye)
	out[3], out[7], out[11], out[15] = 0, 0, 0, 1
	return out, nil
}

// ViewProjection composes a projection and a view matrix (projection * view).
// All matrices are stored in column-major order (OpenGL/WebGPU convention).
//
// Parameters:
//   - projection: the projection matrix
//   - view: the view matrix
//
// Returns:
//   - mgl32.Mat4: the combined view-projection matrix
func ViewProjection(projection, view mgl32.Mat4) mgl32.Mat4 {
	return projection.Mul4(view)
}

// ProjectPoint transforms a point by m and performs the perspective divide.
//
// Parameters:
//   - m: a view, projection or view-projection matrix
//   - p: the point to transform (w = 1)
//
// Returns:
//   - mgl32.Vec3: the point in normalized device coordinates
//   - error: ErrPointAtInfinity if the transformed w is zero
func ProjectPoint(m mgl32.Mat4, p mgl32.Vec3) (mgl32.Vec3, error) {
	v := m.Mul4x1(mgl32.Vec4{p[0], p[1], p[2], 1})
	w := v[3]
	if w == 0 {
		return mgl32.Vec3{}, fmt.Errorf("%w: point %v", ErrPointAtInfinity, p)
	}
	return mgl32.Vec3{v[0] / w, v[1] / w, v[2] / w}, nil
}

// IsFiniteMatrix reports whether every element of m is a finite number.
func IsFiniteMatrix(m mgl32.Mat4) bool {
	for _, v := range m {
		if !isFinite(v) {
			return false
		}
	}
	return true
}

func isFinite(v float32) bool {
	f := float64(v)
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
