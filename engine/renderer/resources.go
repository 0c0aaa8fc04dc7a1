package renderer

import (
	"github.com/Carmen-Shannon/oxy-cubes/engine"
	"github.com/Carmen-Shannon/oxy-cubes/engine/camera"
	"github.com/cogentcore/webgpu/wgpu"
)

// bufferWrite describes a single queued GPU buffer write at a given byte offset.
type bufferWrite struct {
	buffer *wgpu.Buffer
	offset uint64
	data   []byte
}

// meshResources holds the static cube geometry.
type meshResources struct {
	vertexBuffer *wgpu.Buffer
	indexBuffer  *wgpu.Buffer
	indexCount   uint32
}

func (m *meshResources) release() {
	if m == nil {
		return
	}
	if m.vertexBuffer != nil {
		m.vertexBuffer.Release()
		m.vertexBuffer = nil
	}
	if m.indexBuffer != nil {
		m.indexBuffer.Release()
		m.indexBuffer = nil
	}
}

// instanceResources holds every GPU object whose size depends on the grid.
// They are rebuilt together when the grid version changes.
type instanceResources struct {
	version uint64
	count   uint32

	positions *wgpu.Buffer
	offsets   *wgpu.Buffer
	colors    *wgpu.Buffer

	renderGroup  *wgpu.BindGroup
	computeGroup *wgpu.BindGroup
}

func (r *instanceResources) release() {
	if r == nil {
		return
	}
	if r.renderGroup != nil {
		r.renderGroup.Release()
		r.renderGroup = nil
	}
	if r.computeGroup != nil {
		r.computeGroup.Release()
		r.computeGroup = nil
	}
	for _, buf := range []*wgpu.Buffer{r.positions, r.offsets, r.colors} {
		if buf != nil {
			buf.Release()
		}
	}
	r.positions, r.offsets, r.colors = nil, nil, nil
}

// frameWrites returns the uniform uploads for f. The view-projection matrix is copied verbatim;
// the instance count is taken from the uploaded grid so the compute pass never overruns its buffers.
//
// Parameters:
//   - f: the published frame
//   - viewProj: the 64 byte camera uniform buffer
//   - sim: the simulation uniform buffer
//   - count: the instance count of the currently uploaded grid
//
// Returns:
//   - []bufferWrite: the writes to queue before encoding the frame
func frameWrites(f engine.Frame, viewProj, sim *wgpu.Buffer, count uint32) []bufferWrite {
	u := camera.NewGPUCameraUniform(f.ViewProj)
	s := f.Sim
	s.Count = float32(count)
	return []bufferWrite{
		{buffer: viewProj, offset: 0, data: u.Marshal()},
		{buffer: sim, offset: 0, data: s.Marshal()},
	}
}
