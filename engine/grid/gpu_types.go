package grid

import (
	"encoding/binary"
	"math"
	"unsafe"

	"github.com/Carmen-Shannon/oxy-cubes/common"
)

// CubeVertices are the eight corners of a unit cube centered on the origin (float32x3).
var CubeVertices = []float32{
	-0.5, -0.5, -0.5,
	0.5, -0.5, -0.5,
	0.5, 0.5, -0.5,
	-0.5, 0.5, -0.5,
	-0.5, -0.5, 0.5,
	0.5, -0.5, 0.5,
	0.5, 0.5, 0.5,
	-0.5, 0.5, 0.5,
}

// CubeIndices triangulate the six faces of CubeVertices (uint16, 12 triangles).
var CubeIndices = []uint16{
	0, 1, 2, 2, 3, 0, 4, 5, 6, 6, 7, 4,
	0, 1, 5, 5, 4, 0, 2, 3, 7, 7, 6, 2,
	0, 3, 7, 7, 4, 0, 1, 2, 6, 6, 5, 1,
}

// CubeVertexBytes returns CubeVertices as vertex buffer data.
func CubeVertexBytes() []byte {
	return common.SliceToBytes(CubeVertices)
}

// CubeIndexBytes returns CubeIndices as index buffer data (72 bytes, a multiple of 4).
func CubeIndexBytes() []byte {
	return common.SliceToBytes(CubeIndices)
}

// GPUSimUniform is the GPU-aligned simulation uniform read by the colour animation.
// Matches the WGSL struct `Sim { time: f32, count: f32 }`.
// Size: 8 bytes.
type GPUSimUniform struct {
	Time  float32 // offset 0: seconds since the loop started
	Count float32 // offset 4: number of live instances
}

// Size returns the size of the GPUSimUniform struct in bytes.
//
// Returns:
//   - int: the struct size in bytes (8)
func (g *GPUSimUniform) Size() int {
	return int(unsafe.Sizeof(*g))
}

// Marshal serializes the GPUSimUniform struct into a byte buffer suitable for GPU upload.
//
// Returns:
//   - []byte: the serialized byte buffer
func (g *GPUSimUniform) Marshal() []byte {
	buf := make([]byte, g.Size())
	binary.LittleEndian.PutUint32(buf[0:], math.Float32bits(g.Time))
	binary.LittleEndian.PutUint32(buf[4:], math.Float32bits(g.Count))
	return buf
}
