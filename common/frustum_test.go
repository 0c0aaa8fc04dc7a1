package common

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testFrustum(t *testing.T) Frustum {
	t.Helper()
	p, err := Perspective(math.Pi/2, 1, 1, 100)
	require.NoError(t, err)
	v, err := LookAt(mgl32.Vec3{0, 0, 10}, mgl32.Vec3{}, mgl32.Vec3{0, 1, 0})
	require.NoError(t, err)
	return ExtractFrustum(ViewProjection(p, v))
}

func TestFrustumPlanesAreNormalized(t *testing.T) {
	f := testFrustum(t)
	for i, p := range f.Planes {
		assert.InDeltaf(t, 1, p.Normal.Len(), 1e-5, "plane %d", i)
	}
}

func TestFrustumIntersectsSphere(t *testing.T) {
	f := testFrustum(t)

	cases := []struct {
		name   string
		center mgl32.Vec3
		radius float32
		want   bool
	}{
		{"origin", mgl32.Vec3{}, 0.5, true},
		{"behind camera", mgl32.Vec3{0, 0, 20}, 0.5, false},
		{"closer than near plane", mgl32.Vec3{0, 0, 9.5}, 0.1, false},
		{"straddles near plane", mgl32.Vec3{0, 0, 9.5}, 1, true},
		{"beyond far plane", mgl32.Vec3{0, 0, -100}, 1, false},
		{"far left", mgl32.Vec3{-50, 0, 0}, 1, false},
		{"just inside right edge", mgl32.Vec3{9, 0, 0}, 0.1, true},
		{"above top edge", mgl32.Vec3{0, 12, 0}, 1, false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, f.IntersectsSphere(tc.center, tc.radius))
		})
	}
}
