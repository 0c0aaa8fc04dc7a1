package renderer

import (
	"errors"
	"fmt"
	"sync"

	"github.com/Carmen-Shannon/oxy-cubes/engine"
	"github.com/Carmen-Shannon/oxy-cubes/engine/grid"
	"github.com/cogentcore/webgpu/wgpu"
	"github.com/rs/zerolog"
)

var (
	// ErrReleased is returned when a frame is published to a renderer after Release.
	ErrReleased = errors.New("renderer has been released")
)

// Renderer draws the instanced cube grid to a window surface.
// It is the engine's FrameSink: each published Frame uploads the camera uniform verbatim,
// advances the colour animation on a compute pass and draws every instance.
type Renderer interface {
	engine.FrameSink

	// Resize reconfigures the surface and depth buffer to a new size.
	// Non-positive sizes (a minimized window) are ignored.
	//
	// Parameters:
	//   - width: the new width of the surface in pixels
	//   - height: the new height of the surface in pixels
	//
	// Returns:
	//   - error: an error if the depth texture cannot be recreated
	Resize(width, height int) error

	// SetPresentMode changes the present mode; it takes effect on the next Resize.
	//
	// Parameters:
	//   - mode: the PresentMode to use
	SetPresentMode(mode PresentMode)

	// Release frees every GPU resource. Publish returns ErrReleased afterwards.
	Release()
}

// renderer is the implementation of the Renderer interface.
type renderer struct {
	mu  *sync.Mutex
	log zerolog.Logger

	// Pre-creation config collected from builder options
	forceFallbackAdapter bool
	presentMode          PresentMode
	clearColor           wgpu.Color

	instance      *wgpu.Instance
	adapter       *wgpu.Adapter
	device        *wgpu.Device
	queue         *wgpu.Queue
	surface       *wgpu.Surface
	surfaceFormat wgpu.TextureFormat
	alphaMode     wgpu.CompositeAlphaMode

	width, height int
	depthTexture  *wgpu.Texture
	depthView     *wgpu.TextureView

	renderLayout    *wgpu.BindGroupLayout
	computeLayout   *wgpu.BindGroupLayout
	renderPipeline  *wgpu.RenderPipeline
	computePipeline *wgpu.ComputePipeline

	viewProjBuffer *wgpu.Buffer
	simBuffer      *wgpu.Buffer

	grid      grid.Grid
	mesh      *meshResources
	instances *instanceResources

	released bool
}

var _ Renderer = &renderer{}

// NewRenderer creates the WebGPU device for the given surface and builds the cube pipelines.
//
// Parameters:
//   - surfaceDescriptor: the platform surface descriptor from the window
//   - g: the instance grid to draw
//   - width, height: the initial surface size in pixels
//   - options: functional options to configure the renderer
//
// Returns:
//   - Renderer: the ready renderer
//   - error: an error if any GPU object cannot be created
func NewRenderer(surfaceDescriptor *wgpu.SurfaceDescriptor, g grid.Grid, width, height int, options ...RendererBuilderOption) (Renderer, error) {
	if surfaceDescriptor == nil {
		return nil, errors.New("surface descriptor is required")
	}
	if g == nil {
		return nil, errors.New("grid is required")
	}

	r := &renderer{
		mu:          &sync.Mutex{},
		log:         zerolog.Nop(),
		presentMode: PresentModeVSync,
		clearColor:  wgpu.Color{R: 0, G: 0, B: 0, A: 1},
		grid:        g,
	}
	for _, opt := range options {
		opt(r)
	}

	if err := r.initDevice(surfaceDescriptor); err != nil {
		r.Release()
		return nil, err
	}
	if err := r.Resize(width, height); err != nil {
		r.Release()
		return nil, err
	}
	if err := r.initPipelines(); err != nil {
		r.Release()
		return nil, err
	}
	if err := r.initStaticBuffers(); err != nil {
		r.Release()
		return nil, err
	}

	r.mu.Lock()
	err := r.syncInstances()
	r.mu.Unlock()
	if err != nil {
		r.Release()
		return nil, err
	}

	r.log.Info().
		Str("format", fmt.Sprint(r.surfaceFormat)).
		Str("present_mode", r.presentMode.String()).
		Int("instances", g.InstanceCount()).
		Msg("renderer ready")
	return r, nil
}

func (r *renderer) initDevice(surfaceDescriptor *wgpu.SurfaceDescriptor) error {
	r.instance = wgpu.CreateInstance(nil)
	r.surface = r.instance.CreateSurface(surfaceDescriptor)

	a, err := r.instance.RequestAdapter(&wgpu.RequestAdapterOptions{
		ForceFallbackAdapter: r.forceFallbackAdapter,
		CompatibleSurface:    r.surface,
	})
	if err != nil {
		return fmt.Errorf("failed to request adapter: %w", err)
	}
	r.adapter = a

	d, err := a.RequestDevice(&wgpu.DeviceDescriptor{
		Label: "Cubes Device",
		RequiredLimits: &wgpu.RequiredLimits{
			Limits: wgpu.DefaultLimits(),
		},
	})
	if err != nil {
		return fmt.Errorf("failed to request device: %w", err)
	}
	r.device = d
	r.queue = d.GetQueue()

	capabilities := r.surface.GetCapabilities(a)
	if len(capabilities.Formats) == 0 || len(capabilities.AlphaModes) == 0 {
		return errors.New("surface is not supported by the adapter")
	}
	r.surfaceFormat = capabilities.Formats[0]
	r.alphaMode = capabilities.AlphaModes[0]
	return nil
}

func (r *renderer) initPipelines() error {
	renderDesc := renderBindGroupLayout()
	renderLayout, err := r.device.CreateBindGroupLayout(&renderDesc)
	if err != nil {
		return fmt.Errorf("failed to create render bind group layout: %w", err)
	}
	r.renderLayout = renderLayout

	computeDesc := computeBindGroupLayout()
	computeLayout, err := r.device.CreateBindGroupLayout(&computeDesc)
	if err != nil {
		return fmt.Errorf("failed to create compute bind group layout: %w", err)
	}
	r.computeLayout = computeLayout

	cubes, err := r.device.CreateShaderModule(&wgpu.ShaderModuleDescriptor{
		Label:          "cubes.wgsl",
		WGSLDescriptor: &wgpu.ShaderModuleWGSLDescriptor{Code: cubesShaderSource},
	})
	if err != nil {
		return fmt.Errorf("failed to compile cubes shader: %w", err)
	}
	defer cubes.Release()

	animate, err := r.device.CreateShaderModule(&wgpu.ShaderModuleDescriptor{
		Label:          "animate.wgsl",
		WGSLDescriptor: &wgpu.ShaderModuleWGSLDescriptor{Code: animateShaderSource},
	})
	if err != nil {
		return fmt.Errorf("failed to compile animate shader: %w", err)
	}
	defer animate.Release()

	renderPipelineLayout, err := r.device.CreatePipelineLayout(&wgpu.PipelineLayoutDescriptor{
		Label:            "Cubes Render",
		BindGroupLayouts: []*wgpu.BindGroupLayout{renderLayout},
	})
	if err != nil {
		return err
	}
	defer renderPipelineLayout.Release()

	r.renderPipeline, err = r.device.CreateRenderPipeline(&wgpu.RenderPipelineDescriptor{
		Label:  "Cubes Render Pipeline",
		Layout: renderPipelineLayout,
		Vertex: wgpu.VertexState{
			Module:     cubes,
			EntryPoint: "vs_main",
			Buffers:    vertexBufferLayouts(),
		},
		Fragment: &wgpu.FragmentState{
			Module:     cubes,
			EntryPoint: "fs_main",
			Targets: []wgpu.ColorTargetState{
				{
					Format:    r.surfaceFormat,
					WriteMask: wgpu.ColorWriteMaskAll,
				},
			},
		},
		Primitive: wgpu.PrimitiveState{
			Topology:  wgpu.PrimitiveTopologyTriangleList,
			FrontFace: wgpu.FrontFaceCCW,
			CullMode:  wgpu.CullModeBack,
		},
		Multisample: wgpu.MultisampleState{
			Count: 1,
			Mask:  0xFFFFFFFF,
		},
		DepthStencil: &wgpu.DepthStencilState{
			Format:            wgpu.TextureFormatDepth24Plus,
			DepthWriteEnabled: true,
			DepthCompare:      wgpu.CompareFunctionLess,
			StencilFront: wgpu.StencilFaceState{
				Compare: wgpu.CompareFunctionAlways,
			},
			StencilBack: wgpu.StencilFaceState{
				Compare: wgpu.CompareFunctionAlways,
			},
		},
	})
	if err != nil {
		return fmt.Errorf("failed to create render pipeline: %w", err)
	}

	computePipelineLayout, err := r.device.CreatePipelineLayout(&wgpu.PipelineLayoutDescriptor{
		Label:            "Cubes Animate",
		BindGroupLayouts: []*wgpu.BindGroupLayout{computeLayout},
	})
	if err != nil {
		return err
	}
	defer computePipelineLayout.Release()

	r.computePipeline, err = r.device.CreateComputePipeline(&wgpu.ComputePipelineDescriptor{
		Label:  "Cubes Animate Pipeline",
		Layout: computePipelineLayout,
		Compute: wgpu.ProgrammableStageDescriptor{
			Module:     animate,
			EntryPoint: "cs_main",
		},
	})
	if err != nil {
		return fmt.Errorf("failed to create compute pipeline: %w", err)
	}
	return nil
}

func (r *renderer) initStaticBuffers() error {
	var err error
	r.viewProjBuffer, err = r.createBuffer("View Projection Uniform", viewProjBufferSize, wgpu.BufferUsageUniform|wgpu.BufferUsageCopyDst)
	if err != nil {
		return err
	}
	r.simBuffer, err = r.createBuffer("Simulation Uniform", simBufferSize, wgpu.BufferUsageUniform|wgpu.BufferUsageCopyDst)
	if err != nil {
		return err
	}

	vertexData := grid.CubeVertexBytes()
	indexData := grid.CubeIndexBytes()
	r.mesh = &meshResources{indexCount: uint32(len(grid.CubeIndices))}
	if r.mesh.vertexBuffer, err = r.uploadBuffer("Cube Vertex Buffer", vertexData, wgpu.BufferUsageVertex); err != nil {
		return err
	}
	if r.mesh.indexBuffer, err = r.uploadBuffer("Cube Index Buffer", indexData, wgpu.BufferUsageIndex); err != nil {
		return err
	}
	return nil
}

func (r *renderer) createBuffer(label string, size uint64, usage wgpu.BufferUsage) (*wgpu.Buffer, error) {
	buf, err := r.device.CreateBuffer(&wgpu.BufferDescriptor{
		Label: label,
		Size:  size,
		Usage: usage,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create %s: %w", label, err)
	}
	return buf, nil
}

// uploadBuffer creates a buffer sized for data and queues its initial contents.
func (r *renderer) uploadBuffer(label string, data []byte, usage wgpu.BufferUsage) (*wgpu.Buffer, error) {
	buf, err := r.createBuffer(label, uint64(len(data)), usage|wgpu.BufferUsageCopyDst)
	if err != nil {
		return nil, err
	}
	r.queue.WriteBuffer(buf, 0, data)
	return buf, nil
}

// syncInstances rebuilds the per-instance buffers and bind groups when the grid has changed.
// Must be called with r.mu held.
func (r *renderer) syncInstances() error {
	version := r.grid.Version()
	if r.instances != nil && r.instances.version == version {
		return nil
	}

	positions := r.grid.PositionBytes()
	offsets := r.grid.OffsetBytes()
	count := len(offsets) / offsetStride
	if count == 0 || len(positions) != count*positionStride {
		// The grid was resized between the two reads; pick it up next frame.
		return nil
	}

	next := &instanceResources{version: version, count: uint32(count)}
	var err error
	if next.positions, err = r.uploadBuffer("Instance Positions", positions, wgpu.BufferUsageVertex); err != nil {
		next.release()
		return err
	}
	if next.offsets, err = r.uploadBuffer("Instance Offsets", offsets, wgpu.BufferUsageStorage); err != nil {
		next.release()
		return err
	}
	if next.colors, err = r.createBuffer("Instance Colors", uint64(count*colorStride), wgpu.BufferUsageStorage); err != nil {
		next.release()
		return err
	}

	next.renderGroup, err = r.device.CreateBindGroup(&wgpu.BindGroupDescriptor{
		Label:  "Cubes Render Bind Group",
		Layout: r.renderLayout,
		Entries: []wgpu.BindGroupEntry{
			{Binding: 0, Buffer: r.viewProjBuffer, Offset: 0, Size: wgpu.WholeSize},
			{Binding: 1, Buffer: next.colors, Offset: 0, Size: wgpu.WholeSize},
		},
	})
	if err != nil {
		next.release()
		return fmt.Errorf("failed to create render bind group: %w", err)
	}

	next.computeGroup, err = r.device.CreateBindGroup(&wgpu.BindGroupDescriptor{
		Label:  "Cubes Animate Bind Group",
		Layout: r.computeLayout,
		Entries: []wgpu.BindGroupEntry{
			{Binding: 0, Buffer: r.simBuffer, Offset: 0, Size: wgpu.WholeSize},
			{Binding: 1, Buffer: next.offsets, Offset: 0, Size: wgpu.WholeSize},
			{Binding: 2, Buffer: next.colors, Offset: 0, Size: wgpu.WholeSize},
		},
	})
	if err != nil {
		next.release()
		return fmt.Errorf("failed to create compute bind group: %w", err)
	}

	r.instances.release()
	r.instances = next
	r.log.Debug().Int("instances", count).Uint64("version", version).Msg("instance data uploaded")
	return nil
}

func (r *renderer) Resize(width, height int) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.released || width <= 0 || height <= 0 {
		return nil
	}

	r.surface.Configure(r.adapter, r.device, &wgpu.SurfaceConfiguration{
		Usage:       wgpu.TextureUsageRenderAttachment,
		Format:      r.surfaceFormat,
		Width:       uint32(width),
		Height:      uint32(height),
		PresentMode: r.presentMode.wgpuPresentMode(),
		AlphaMode:   r.alphaMode,
	})

	depthTexture, err := r.device.CreateTexture(&wgpu.TextureDescriptor{
		Label: "Depth Texture",
		Size: wgpu.Extent3D{
			Width:              uint32(width),
			Height:             uint32(height),
			DepthOrArrayLayers: 1,
		},
		MipLevelCount: 1,
		SampleCount:   1,
		Dimension:     wgpu.TextureDimension2D,
		Format:        wgpu.TextureFormatDepth24Plus,
		Usage:         wgpu.TextureUsageRenderAttachment,
	})
	if err != nil {
		return fmt.Errorf("failed to create depth texture: %w", err)
	}
	depthView, err := depthTexture.CreateView(nil)
	if err != nil {
		depthTexture.Release()
		return fmt.Errorf("failed to create depth view: %w", err)
	}

	r.releaseDepth()
	r.depthTexture = depthTexture
	r.depthView = depthView
	r.width = width
	r.height = height
	return nil
}

func (r *renderer) SetPresentMode(mode PresentMode) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.presentMode = mode
}

// Publish encodes the animation compute pass and the instanced draw for f, then presents.
func (r *renderer) Publish(f engine.Frame) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.released {
		return ErrReleased
	}
	if err := r.syncInstances(); err != nil {
		return err
	}
	inst := r.instances

	for _, w := range frameWrites(f, r.viewProjBuffer, r.simBuffer, inst.count) {
		r.queue.WriteBuffer(w.buffer, w.offset, w.data)
	}

	surfaceTexture, err := r.surface.GetCurrentTexture()
	if err != nil {
		return fmt.Errorf("failed to acquire surface texture: %w", err)
	}
	defer surfaceTexture.Release()

	view, err := surfaceTexture.CreateView(nil)
	if err != nil {
		return err
	}
	defer view.Release()

	encoder, err := r.device.CreateCommandEncoder(nil)
	if err != nil {
		return err
	}
	defer encoder.Release()

	compute := encoder.BeginComputePass(nil)
	compute.SetPipeline(r.computePipeline)
	compute.SetBindGroup(0, inst.computeGroup, nil)
	compute.DispatchWorkgroups(workgroupCount(inst.count), 1, 1)
	compute.End()
	compute.Release()

	pass := encoder.BeginRenderPass(&wgpu.RenderPassDescriptor{
		ColorAttachments: []wgpu.RenderPassColorAttachment{
			{
				View:       view,
				LoadOp:     wgpu.LoadOpClear,
				StoreOp:    wgpu.StoreOpStore,
				ClearValue: r.clearColor,
			},
		},
		DepthStencilAttachment: &wgpu.RenderPassDepthStencilAttachment{
			View:            r.depthView,
			DepthLoadOp:     wgpu.LoadOpClear,
			DepthStoreOp:    wgpu.StoreOpStore,
			DepthClearValue: 1.0,
		},
	})
	pass.SetPipeline(r.renderPipeline)
	pass.SetBindGroup(0, inst.renderGroup, nil)
	pass.SetVertexBuffer(0, r.mesh.vertexBuffer, 0, wgpu.WholeSize)
	pass.SetVertexBuffer(1, inst.positions, 0, wgpu.WholeSize)
	pass.SetIndexBuffer(r.mesh.indexBuffer, wgpu.IndexFormatUint16, 0, wgpu.WholeSize)
	pass.DrawIndexed(r.mesh.indexCount, inst.count, 0, 0, 0)
	pass.End()
	pass.Release()

	commandBuffer, err := encoder.Finish(nil)
	if err != nil {
		return fmt.Errorf("failed to finish frame %d: %w", f.Index, err)
	}
	r.queue.Submit(commandBuffer)
	commandBuffer.Release()

	r.surface.Present()
	return nil
}

func (r *renderer) releaseDepth() {
	if r.depthView != nil {
		r.depthView.Release()
		r.depthView = nil
	}
	if r.depthTexture != nil {
		r.depthTexture.Release()
		r.depthTexture = nil
	}
}

func (r *renderer) Release() {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.released {
		return
	}
	r.released = true

	r.instances.release()
	r.instances = nil
	r.mesh.release()
	r.mesh = nil
	r.releaseDepth()

	for _, buf := range []*wgpu.Buffer{r.viewProjBuffer, r.simBuffer} {
		if buf != nil {
			buf.Release()
		}
	}
	if r.renderPipeline != nil {
		r.renderPipeline.Release()
	}
	if r.computePipeline != nil {
		r.computePipeline.Release()
	}
	if r.renderLayout != nil {
		r.renderLayout.Release()
	}
	if r.computeLayout != nil {
		r.computeLayout.Release()
	}
	if r.queue != nil {
		r.queue.Release()
	}
	if r.device != nil {
		r.device.Release()
	}
	if r.adapter != nil {
		r.adapter.Release()
	}
	if r.surface != nil {
		r.surface.Release()
	}
	if r.instance != nil {
		r.instance.Release()
	}
}
