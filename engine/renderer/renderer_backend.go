package renderer

import (
	_ "embed"

	"github.com/cogentcore/webgpu/wgpu"
)

// PresentMode controls how rendered frames are presented to the display surface.
type PresentMode int

const (
	// PresentModeVSync waits for the next vertical blank before presenting, capping frame rate
	// to the monitor's refresh rate. Eliminates tearing.
	PresentModeVSync PresentMode = iota

	// PresentModeUncapped presents frames immediately without waiting for vertical blank.
	// May cause screen tearing but provides the lowest latency.
	PresentModeUncapped
)

// String returns the configuration name of the mode.
func (m PresentMode) String() string {
	if m == PresentModeUncapped {
		return "uncapped"
	}
	return "vsync"
}

// ParsePresentMode maps a configuration name to a PresentMode. Unknown names select VSync.
func ParsePresentMode(name string) PresentMode {
	if name == "uncapped" || name == "immediate" {
		return PresentModeUncapped
	}
	return PresentModeVSync
}

func (m PresentMode) wgpuPresentMode() wgpu.PresentMode {
	switch m {
	case PresentModeUncapped:
		return wgpu.PresentModeImmediate
	default:
		return wgpu.PresentModeFifo
	}
}

const (
	// computeWorkgroupSize must match @workgroup_size in animate.wgsl.
	computeWorkgroupSize = 64

	viewProjBufferSize = 64
	// The simulation uniform is 8 bytes; the buffer is padded to the 16 byte uniform alignment.
	simBufferSize = 16

	positionStride = 12
	offsetStride   = 4
	colorStride    = 16
)

//go:embed assets/cubes.wgsl
var cubesShaderSource string

//go:embed assets/animate.wgsl
var animateShaderSource string

// workgroupCount returns the number of compute workgroups that cover count instances.
func workgroupCount(count uint32) uint32 {
	return (count + computeWorkgroupSize - 1) / computeWorkgroupSize
}

// renderBindGroupLayout describes group 0 of cubes.wgsl.
func renderBindGroupLayout() wgpu.BindGroupLayoutDescriptor {
	return wgpu.BindGroupLayoutDescriptor{
		Label: "Cubes Render Layout",
		Entries: []wgpu.BindGroupLayoutEntry{
			{
				Binding:    0,
				Visibility: wgpu.ShaderStageVertex,
				Buffer: wgpu.BufferBindingLayout{
					Type:           wgpu.BufferBindingTypeUniform,
					MinBindingSize: viewProjBufferSize,
				},
			},
			{
				Binding:    1,
				Visibility: wgpu.ShaderStageVertex,
				Buffer: wgpu.BufferBindingLayout{
					Type: wgpu.BufferBindingTypeReadOnlyStorage,
				},
			},
		},
	}
}

// computeBindGroupLayout describes group 0 of animate.wgsl.
func computeBindGroupLayout() wgpu.BindGroupLayoutDescriptor {
	return wgpu.BindGroupLayoutDescriptor{
		Label: "Cubes Animate Layout",
		Entries: []wgpu.BindGroupLayoutEntry{
			{
				Binding:    0,
				Visibility: wgpu.ShaderStageCompute,
				Buffer: wgpu.BufferBindingLayout{
					Type:           wgpu.BufferBindingTypeUniform,
					MinBindingSize: simBufferSize,
				},
			},
			{
				Binding:    1,
				Visibility: wgpu.ShaderStageCompute,
				Buffer: wgpu.BufferBindingLayout{
					Type: wgpu.BufferBindingTypeReadOnlyStorage,
				},
			},
			{
				Binding:    2,
				Visibility: wgpu.ShaderStageCompute,
				Buffer: wgpu.BufferBindingLayout{
					Type: wgpu.BufferBindingTypeStorage,
				},
			},
		},
	}
}

// vertexBufferLayouts returns slot 0 (cube corners, per vertex) and slot 1 (grid positions, per instance).
func vertexBufferLayouts() []wgpu.VertexBufferLayout {
	return []wgpu.VertexBufferLayout{
		{
			ArrayStride: positionStride,
			StepMode:    wgpu.VertexStepModeVertex,
			Attributes: []wgpu.VertexAttribute{
				{Format: wgpu.VertexFormatFloat32x3, Offset: 0, ShaderLocation: 0},
			},
		},
		{
			ArrayStride: positionStride,
			StepMode:    wgpu.VertexStepModeInstance,
			Attributes: []wgpu.VertexAttribute{
				{Format: wgpu.VertexFormatFloat32x3, Offset: 0, ShaderLocation: 1},
			},
		},
	}
}
