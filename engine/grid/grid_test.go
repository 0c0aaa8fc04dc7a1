package grid

import (
	"encoding/binary"
	"math"
	"testing"

	"github.com/Carmen-Shannon/oxy-cubes/common"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewGridDefaults(t *testing.T) {
	g, err := NewGrid(WithSeed(1))
	require.NoError(t, err)

	assert.Equal(t, DefaultSize, g.Size())
	assert.Equal(t, float32(DefaultSpacing), g.Spacing())
	assert.Equal(t, 64000, g.InstanceCount())
	assert.Len(t, g.Offsets(), 64000)
	assert.Len(t, g.PositionBytes(), 64000*12)
	assert.Len(t, g.OffsetBytes(), 64000*4)

	// x-major ordering starting at -size/2 * spacing
	assert.Equal(t, mgl32.Vec3{-40, -40, -40}, g.Positions()[0])
	assert.Equal(t, mgl32.Vec3{-40, -40, -38}, g.Positions()[1])
	assert.Equal(t, mgl32.Vec3{38, 38, 38}, g.Positions()[63999])
}

func TestGridOffsetsInRange(t *testing.T) {
	g, err := NewGrid(WithSize(10), WithSeed(7))
	require.NoError(t, err)
	for i, o := range g.Offsets() {
		assert.GreaterOrEqualf(t, o, float32(0), "offset %d", i)
		assert.Lessf(t, o, float32(MaxOffset), "offset %d", i)
	}
}

func TestGridSeedIsDeterministic(t *testing.T) {
	a, err := NewGrid(WithSize(5), WithSeed(42))
	require.NoError(t, err)
	b, err := NewGrid(WithSize(5), WithSeed(42))
	require.NoError(t, err)
	assert.Equal(t, a.Offsets(), b.Offsets())
}

func TestGridRejectsInvalidConfig(t *testing.T) {
	_, err := NewGrid(WithSize(0))
	assert.Error(t, err)
	_, err = NewGrid(WithSize(MaxSize + 1))
	assert.Error(t, err)
	_, err = NewGrid(WithSpacing(0))
	assert.Error(t, err)
}

func TestGridResize(t *testing.T) {
	g, err := NewGrid(WithSize(4), WithSeed(3))
	require.NoError(t, err)
	v := g.Version()
	old := g.Positions()

	require.NoError(t, g.Resize(6))
	assert.Equal(t, 6, g.Size())
	assert.Equal(t, 216, g.InstanceCount())
	assert.Greater(t, g.Version(), v)
	assert.Len(t, old, 64, "earlier slices are not mutated")

	assert.Error(t, g.Resize(0))
	assert.Equal(t, 6, g.Size())
}

func TestCubeMesh(t *testing.T) {
	assert.Len(t, CubeVertexBytes(), 8*12)
	assert.Len(t, CubeIndexBytes(), 72)
	for _, idx := range CubeIndices {
		assert.Less(t, idx, uint16(8))
	}
}

func TestGPUSimUniformMarshal(t *testing.T) {
	u := GPUSimUniform{Time: 1.5, Count: 64000}
	buf := u.Marshal()
	require.Len(t, buf, 8)
	assert.Equal(t, float32(1.5), math.Float32frombits(binary.LittleEndian.Uint32(buf[0:])))
	assert.Equal(t, float32(64000), math.Float32frombits(binary.LittleEndian.Uint32(buf[4:])))
}

func testFrustum(t *testing.T, eye mgl32.Vec3) common.Frustum {
	t.Helper()
	p, err := common.Perspective(math.Pi/4, 1, 0.1, 2000)
	require.NoError(t, err)
	v, err := common.LookAt(eye, mgl32.Vec3{}, mgl32.Vec3{0, 1, 0})
	require.NoError(t, err)
	return common.ExtractFrustum(common.ViewProjection(p, v))
}

func TestCullerCountsEverythingFromFarAway(t *testing.T) {
	g, err := NewGrid(WithSize(20), WithSeed(1))
	require.NoError(t, err)
	f := testFrustum(t, mgl32.Vec3{300, 300, 300})

	c := NewCuller(4)
	assert.Equal(t, g.InstanceCount(), c.CountVisible(g, f))
}

func TestCullerParallelMatchesInline(t *testing.T) {
	g, err := NewGrid(WithSize(30), WithSeed(1))
	require.NoError(t, err)
	// from inside the grid only part of it is in view
	f := testFrustum(t, mgl32.Vec3{10, 5, 10})

	inline := NewCuller(1).CountVisible(g, f)
	parallel := NewCuller(4).CountVisible(g, f)

	assert.Equal(t, inline, parallel)
	assert.Greater(t, inline, 0)
	assert.Less(t, inline, g.InstanceCount())
}

func TestCullerCloseFallsBackInline(t *testing.T) {
	g, err := NewGrid(WithSize(30), WithSeed(1))
	require.NoError(t, err)
	f := testFrustum(t, mgl32.Vec3{10, 5, 10})

	c := NewCuller(4)
	before := c.CountVisible(g, f)
	c.Close()
	c.Close()

	assert.Equal(t, before, c.CountVisible(g, f))
	assert.Equal(t, NewCuller(1).CountVisible(g, f), before)

	var none *Culler
	none.Close()
}

func TestCullerNothingBehindCamera(t *testing.T) {
	g, err := NewGrid(WithSize(3), WithSeed(1))
	require.NoError(t, err)
	p, err := common.Perspective(math.Pi/4, 1, 0.1, 2000)
	require.NoError(t, err)
	// looking away from the grid
	v, err := common.LookAt(mgl32.Vec3{0, 0, 50}, mgl32.Vec3{0, 0, 100}, mgl32.Vec3{0, 1, 0})
	require.NoError(t, err)

	var c *Culler
	assert.Equal(t, 0, c.CountVisible(g, common.ExtractFrustum(common.ViewProjection(p, v))))
}
