package common

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const eps = 1e-5

func TestPerspectiveLayout(t *testing.T) {
	cases := []struct {
		name                    string
		fovY, aspect, near, far float32
	}{
		{"demo defaults", math.Pi / 4, 16.0 / 9.0, 0.1, 2000},
		{"square", math.Pi / 2, 1, 1, 10},
		{"narrow", 0.2, 0.5, 0.01, 0.02},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			m, err := Perspective(tc.fovY, tc.aspect, tc.near, tc.far)
			require.NoError(t, err)

			f := float32(1 / math.Tan(float64(tc.fovY)/2))
			assert.InDelta(t, f/tc.aspect, m[0], eps)
			assert.InDelta(t, f, m[5], eps)
			assert.InDelta(t, tc.far/(tc.near-tc.far), m[10], eps)
			assert.Equal(t, float32(-1), m[11])
			assert.Equal(t, tc.near*tc.far/(tc.near-tc.far), m[14])
			assert.Equal(t, float32(0), m[15])
			for _, i := range []int{1, 2, 3, 4, 6, 7, 8, 9, 12, 13} {
				assert.Zerof(t, m[i], "element %d", i)
			}
		})
	}
}

func TestPerspectiveRejectsDegenerateInput(t *testing.T) {
	nan := float32(math.NaN())
	inf := float32(math.Inf(1))

	cases := []struct {
		name                    string
		fovY, aspect, near, far float32
	}{
		{"zero aspect", 1, 0, 0.1, 10},
		{"negative aspect", 1, -1, 0.1, 10},
		{"zero near", 1, 1, 0, 10},
		{"negative near", 1, 1, -1, 10},
		{"near equals far", 1, 1, 5, 5},
		{"near beyond far", 1, 1, 10, 5},
		{"zero fov", 0, 1, 0.1, 10},
		{"fov of pi", math.Pi, 1, 0.1, 10},
		{"nan aspect", 1, nan, 0.1, 10},
		{"infinite far", 1, 1, 0.1, inf},
		{"near times far overflows", 1, 1, 1e20, 1e30},
		{"aspect too small for float32", 1, 1e-44, 0.1, 10},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			m, err := Perspective(tc.fovY, tc.aspect, tc.near, tc.far)
			require.ErrorIs(t, err, ErrInvalidProjectionParams)
			assert.Equal(t, mgl32.Mat4{}, m)
			assert.ErrorIs(t, ValidateProjection(tc.fovY, tc.aspect, tc.near, tc.far), ErrInvalidProjectionParams)
		})
	}
}

func TestLookAtFromPositiveZ(t *testing.T) {
	m, err := LookAt(mgl32.Vec3{0, 0, 5}, mgl32.Vec3{}, mgl32.Vec3{0, 1, 0})
	require.NoError(t, err)

	assert.InDelta(t, 0, m[12], eps)
	assert.InDelta(t, 0, m[13], eps)
	assert.InDelta(t, -5, m[14], eps)

	// forward basis (third row of the rotation) points from center to eye
	assert.InDelta(t, 0, m[2], eps)
	assert.InDelta(t, 0, m[6], eps)
	assert.InDelta(t, 1, m[10], eps)

	assert.True(t, m.ApproxEqualThreshold(mgl32.Translate3D(0, 0, -5), eps))
}

func TestLookAtMatchesMathgl(t *testing.T) {
	eyes := []mgl32.Vec3{
		{100, 100, 100},
		{170, 60, 0},
		{-3, 2, 7},
		{0.5, -20, 1},
	}
	up := mgl32.Vec3{0, 1, 0}

	for _, eye := range eyes {
		m, err := LookAt(eye, mgl32.Vec3{}, up)
		require.NoError(t, err)
		want := mgl32.LookAtV(eye, mgl32.Vec3{}, up)
		assert.Truef(t, m.ApproxEqualThreshold(want, 1e-4), "eye %v: got %v want %v", eye, m, want)
	}
}

func TestLookAtMapsEyeToOrigin(t *testing.T) {
	eye := mgl32.Vec3{12, -4, 9}
	m, err := LookAt(eye, mgl32.Vec3{1, 1, 1}, mgl32.Vec3{0, 1, 0})
	require.NoError(t, err)

	p := m.Mul4x1(mgl32.Vec4{eye[0], eye[1], eye[2], 1})
	assert.InDelta(t, 0, p[0], 1e-4)
	assert.InDelta(t, 0, p[1], 1e-4)
	assert.InDelta(t, 0, p[2], 1e-4)
	assert.InDelta(t, 1, p[3], 1e-4)
}

func TestLookAtDegenerate(t *testing.T) {
	cases := []struct {
		name            string
		eye, center, up mgl32.Vec3
	}{
		{"eye equals center", mgl32.Vec3{1, 2, 3}, mgl32.Vec3{1, 2, 3}, mgl32.Vec3{0, 1, 0}},
		{"up parallel to view", mgl32.Vec3{0, 10, 0}, mgl32.Vec3{}, mgl32.Vec3{0, 1, 0}},
		{"up antiparallel to view", mgl32.Vec3{0, -10, 0}, mgl32.Vec3{}, mgl32.Vec3{0, 1, 0}},
		{"zero up", mgl32.Vec3{0, 0, 5}, mgl32.Vec3{}, mgl32.Vec3{}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			m, err := LookAt(tc.eye, tc.center, tc.up)
			require.ErrorIs(t, err, ErrDegenerateView)
			assert.True(t, IsFiniteMatrix(m))
		})
	}
}

func TestViewProjectionIdentityView(t *testing.T) {
	p, err := Perspective(math.Pi/4, 1.5, 0.1, 2000)
	require.NoError(t, err)

	assert.Equal(t, p, ViewProjection(p, mgl32.Ident4()))
}

func TestViewProjectionColumnMajorProduct(t *testing.T) {
	var a, b mgl32.Mat4
	for i := range a {
		a[i] = float32(i + 1)
		b[i] = float32(16 - i)
	}

	got := ViewProjection(a, b)
	for c := 0; c < 4; c++ {
		for r := 0; r < 4; r++ {
			var sum float32
			for k := 0; k < 4; k++ {
				sum += a[k*4+r] * b[c*4+k]
			}
			assert.Equalf(t, sum, got[c*4+r], "col %d row %d", c, r)
		}
	}
}

func TestProjectPointCenterRoundTrip(t *testing.T) {
	cases := []struct {
		fovY, aspect float32
	}{
		{math.Pi / 4, 16.0 / 9.0},
		{math.Pi / 3, 1},
		{0.3, 0.25},
		{2.5, 4},
	}
	near, far := float32(0.1), float32(2000)
	mid := (near + far) / 2

	for _, tc := range cases {
		p, err := Perspective(tc.fovY, tc.aspect, near, far)
		require.NoError(t, err)

		ndc, err := ProjectPoint(p, mgl32.Vec3{0, 0, -mid})
		require.NoError(t, err)
		assert.InDelta(t, 0, ndc[0], eps)
		assert.InDelta(t, 0, ndc[1], eps)
		assert.True(t, ndc[2] > 0 && ndc[2] < 1, "depth %v outside (0, 1)", ndc[2])
	}
}

func TestProjectPointDepthRange(t *testing.T) {
	p, err := Perspective(math.Pi/4, 1, 1, 100)
	require.NoError(t, err)

	nearNDC, err := ProjectPoint(p, mgl32.Vec3{0, 0, -1})
	require.NoError(t, err)
	farNDC, err := ProjectPoint(p, mgl32.Vec3{0, 0, -100})
	require.NoError(t, err)

	assert.InDelta(t, 0, nearNDC[2], eps)
	assert.InDelta(t, 1, farNDC[2], eps)
}

func TestProjectPointAtInfinity(t *testing.T) {
	p, err := Perspective(math.Pi/4, 1, 1, 100)
	require.NoError(t, err)

	_, err = ProjectPoint(p, mgl32.Vec3{3, 4, 0})
	assert.ErrorIs(t, err, ErrPointAtInfinity)
}

func TestClamp(t *testing.T) {
	assert.Equal(t, 1, Clamp(0, 1, 5))
	assert.Equal(t, 5, Clamp(9, 1, 5))
	assert.Equal(t, 3, Clamp(3, 1, 5))
	assert.Equal(t, float32(0.5), Clamp(float32(0.5), 0, 1))
}

func TestCoalesce(t *testing.T) {
	assert.Equal(t, "b", Coalesce("", "b", "c"))
	assert.Equal(t, 0, Coalesce(0, 0))
}

func TestSliceToBytes(t *testing.T) {
	assert.Nil(t, SliceToBytes([]float32{}))
	b := SliceToBytes([]mgl32.Vec3{{1, 2, 3}, {4, 5, 6}})
	require.Len(t, b, 24)
	assert.Equal(t, []byte{0, 0, 0x80, 0x3f}, b[:4])
}
