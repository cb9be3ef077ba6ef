package wgpu

import (
	"encoding/binary"
	"fmt"

	"github.com/gogpu/gfx"
	"github.com/gogpu/gputypes"
	"github.com/gogpu/naga"
	"github.com/gogpu/wgpu/hal"
)

// CreateBuffer implements gfx.Backend.
func (b *Backend) CreateBuffer(desc *gfx.BufferDesc, size int) (gfx.NativeID, error) {
	usage := gputypes.BufferUsageCopyDst
	switch desc.Type {
	case gfx.BufferTypeIndex:
		usage |= gputypes.BufferUsageIndex
	default:
		usage |= gputypes.BufferUsageVertex
	}

	buf, err := b.device.CreateBuffer(&hal.BufferDescriptor{
		Label: "gfx_buffer",
		Size:  uint64(size),
		Usage: usage,
	})
	if err != nil {
		return 0, fmt.Errorf("wgpu: create buffer: %w", err)
	}
	if len(desc.Data) > 0 {
		if err := b.queue.WriteBuffer(buf, 0, desc.Data); err != nil {
			b.device.DestroyBuffer(buf)
			return 0, fmt.Errorf("wgpu: write buffer: %w", err)
		}
	}

	id := b.newID()
	b.mu.Lock()
	b.buffers[id] = &bufferRes{buf: buf, size: size, usage: usage}
	b.mu.Unlock()
	return id, nil
}

// DestroyBuffer implements gfx.Backend.
func (b *Backend) DestroyBuffer(id gfx.NativeID) {
	b.mu.Lock()
	res := b.buffers[id]
	delete(b.buffers, id)
	b.mu.Unlock()
	if res != nil {
		b.device.DestroyBuffer(res.buf)
	}
}

// UpdateBuffer implements gfx.Backend. The core has already checked
// mutability and bounds.
func (b *Backend) UpdateBuffer(id gfx.NativeID, data []byte) {
	b.mu.Lock()
	res := b.buffers[id]
	b.mu.Unlock()
	if res == nil {
		return
	}
	if err := b.queue.WriteBuffer(res.buf, 0, data); err != nil {
		gfx.Logger().Warn("wgpu: buffer update failed", "error", err)
	}
}

// CreateImage implements gfx.Backend.
func (b *Backend) CreateImage(desc *gfx.ImageDesc) (gfx.NativeID, error) {
	format, bpp, err := texFormat(desc.Format)
	if err != nil {
		return 0, err
	}

	usage := gputypes.TextureUsageTextureBinding | gputypes.TextureUsageCopyDst
	if desc.RenderTarget {
		usage |= gputypes.TextureUsageRenderAttachment | gputypes.TextureUsageCopySrc
	}

	tex, err := b.device.CreateTexture(&hal.TextureDescriptor{
		Label: "gfx_image",
		Size: hal.Extent3D{
			Width:              uint32(desc.Width),
			Height:             uint32(desc.Height),
			DepthOrArrayLayers: uint32(desc.Slices),
		},
		MipLevelCount: uint32(desc.MipLevels),
		SampleCount:   uint32(desc.SampleCount),
		Dimension:     gputypes.TextureDimension2D,
		Format:        format,
		Usage:         usage,
	})
	if err != nil {
		return 0, fmt.Errorf("wgpu: create texture: %w", err)
	}

	view, err := b.device.CreateTextureView(tex, &hal.TextureViewDescriptor{
		Label:         "gfx_image_view",
		Format:        format,
		Dimension:     gputypes.TextureViewDimension2D,
		Aspect:        gputypes.TextureAspectAll,
		MipLevelCount: uint32(desc.MipLevels),
	})
	if err != nil {
		b.device.DestroyTexture(tex)
		return 0, fmt.Errorf("wgpu: create texture view: %w", err)
	}

	res := &imageRes{
		tex:          tex,
		view:         view,
		width:        desc.Width,
		height:       desc.Height,
		bytesPerPix:  bpp,
		format:       format,
		renderTarget: desc.RenderTarget,
	}
	if len(desc.Content) > 0 {
		b.writeTexture(res, desc.Content, desc.Width, desc.Height, 0, 0)
	}

	id := b.newID()
	b.mu.Lock()
	b.images[id] = res
	b.mu.Unlock()
	return id, nil
}

// DestroyImage implements gfx.Backend.
func (b *Backend) DestroyImage(id gfx.NativeID) {
	b.mu.Lock()
	res := b.images[id]
	delete(b.images, id)
	b.mu.Unlock()
	if res != nil {
		b.device.DestroyTextureView(res.view)
		b.device.DestroyTexture(res.tex)
	}
}

// UpdateImage implements gfx.Backend.
func (b *Backend) UpdateImage(id gfx.NativeID, data []byte, desc *gfx.UpdateImageDesc) {
	b.mu.Lock()
	res := b.images[id]
	b.mu.Unlock()
	if res == nil {
		return
	}
	w, h := desc.Width, desc.Height
	if w == 0 {
		w = res.width
	}
	if h == 0 {
		h = res.height
	}
	b.writeTexture(res, data, w, h, desc.MipLevel, desc.Slice)
}

func (b *Backend) writeTexture(res *imageRes, data []byte, w, h, mip, slice int) {
	err := b.queue.WriteTexture(
		&hal.ImageCopyTexture{
			Texture:  res.tex,
			MipLevel: uint32(mip),
			Origin:   hal.Origin3D{X: 0, Y: 0, Z: uint32(slice)},
			Aspect:   gputypes.TextureAspectAll,
		},
		data,
		&hal.ImageDataLayout{
			Offset:       0,
			BytesPerRow:  uint32(w * res.bytesPerPix),
			RowsPerImage: uint32(h),
		},
		&hal.Extent3D{Width: uint32(w), Height: uint32(h), DepthOrArrayLayers: 1},
	)
	if err != nil {
		gfx.Logger().Warn("wgpu: texture write failed", "error", err)
	}
}

// CreateShader implements gfx.Backend. Stage sources must be WGSL; they
// are compiled to SPIR-V through naga before module creation.
func (b *Backend) CreateShader(desc *gfx.ShaderDesc) (gfx.NativeID, error) {
	if desc.Lang != gfx.ShaderLangWGSL {
		return 0, fmt.Errorf("wgpu: shader language %d not supported, want WGSL", desc.Lang)
	}

	vs, err := b.compileStage(desc.VS.Source, "gfx_vs")
	if err != nil {
		return 0, err
	}
	fs, err := b.compileStage(desc.FS.Source, "gfx_fs")
	if err != nil {
		b.device.DestroyShaderModule(vs)
		return 0, err
	}

	res := &shaderRes{
		vs:      vs,
		fs:      fs,
		entryVS: desc.VS.Entry,
		entryFS: desc.FS.Entry,
	}
	if res.entryVS == "" {
		res.entryVS = "vs_main"
	}
	if res.entryFS == "" {
		res.entryFS = "fs_main"
	}
	for bi, ub := range desc.VS.UniformBlocks {
		res.ubSizes[gfx.ShaderStageVS][bi] = ub.ByteSize()
	}
	res.ubCount[gfx.ShaderStageVS] = len(desc.VS.UniformBlocks)
	for bi, ub := range desc.FS.UniformBlocks {
		res.ubSizes[gfx.ShaderStageFS][bi] = ub.ByteSize()
	}
	res.ubCount[gfx.ShaderStageFS] = len(desc.FS.UniformBlocks)

	id := b.newID()
	b.mu.Lock()
	b.shaders[id] = res
	b.mu.Unlock()
	return id, nil
}

func (b *Backend) compileStage(source, label string) (hal.ShaderModule, error) {
	spirv, err := naga.Compile(source)
	if err != nil {
		return nil, fmt.Errorf("wgpu: shader compile: %w", err)
	}
	if len(spirv)%4 != 0 {
		return nil, fmt.Errorf("wgpu: shader compile produced %d bytes, not word aligned", len(spirv))
	}
	words := make([]uint32, len(spirv)/4)
	for i := range words {
		words[i] = binary.LittleEndian.Uint32(spirv[i*4:])
	}
	module, err := b.device.CreateShaderModule(&hal.ShaderModuleDescriptor{
		Label:  label,
		Source: hal.ShaderSource{SPIRV: words},
	})
	if err != nil {
		return nil, fmt.Errorf("wgpu: create shader module: %w", err)
	}
	return module, nil
}

// DestroyShader implements gfx.Backend.
func (b *Backend) DestroyShader(id gfx.NativeID) {
	b.mu.Lock()
	res := b.shaders[id]
	delete(b.shaders, id)
	b.mu.Unlock()
	if res != nil {
		b.device.DestroyShaderModule(res.vs)
		b.device.DestroyShaderModule(res.fs)
	}
}

// CreatePipeline implements gfx.Backend. Pipelines render into the
// default framebuffer configuration: the surface color format plus a
// depth24-stencil8 attachment at the context sample count.
func (b *Backend) CreatePipeline(desc *gfx.PipelineDesc, shader gfx.NativeID) (gfx.NativeID, error) {
	b.mu.Lock()
	shd := b.shaders[shader]
	b.mu.Unlock()
	if shd == nil {
		return 0, fmt.Errorf("wgpu: pipeline references unknown shader")
	}

	buffers, err := vertexBufferLayouts(desc)
	if err != nil {
		return 0, err
	}

	res := &pipelineRes{}
	cleanup := func() { b.releasePipeline(res) }

	if err := b.createUniformResources(res, shd); err != nil {
		cleanup()
		return 0, err
	}

	var blend *gputypes.BlendState
	if desc.Blend.Enabled {
		// The HAL exposes a fixed premultiplied-alpha blend state rather
		// than arbitrary factor combinations.
		p := gputypes.BlendStatePremultiplied()
		blend = &p
	}
	writeMask := gputypes.ColorWriteMaskAll
	if desc.Blend.ColorWriteMask == 0 {
		writeMask = gputypes.ColorWriteMaskNone
	}

	depthCompare := compareFunc(desc.DepthStencil.DepthCompareFunc)
	front := stencilFace(desc.DepthStencil.StencilFront)
	back := stencilFace(desc.DepthStencil.StencilBack)
	if !desc.DepthStencil.StencilEnabled {
		keep := hal.StencilFaceState{
			Compare:     gputypes.CompareFunctionAlways,
			FailOp:      hal.StencilOperationKeep,
			DepthFailOp: hal.StencilOperationKeep,
			PassOp:      hal.StencilOperationKeep,
		}
		front, back = keep, keep
	}

	pipeline, err := b.device.CreateRenderPipeline(&hal.RenderPipelineDescriptor{
		Label:  "gfx_pipeline",
		Layout: res.pipeLayout,
		Vertex: hal.VertexState{
			Module:     shd.vs,
			EntryPoint: shd.entryVS,
			Buffers:    buffers,
		},
		Fragment: &hal.FragmentState{
			Module:     shd.fs,
			EntryPoint: shd.entryFS,
			Targets: []gputypes.ColorTargetState{{
				Format:    b.surfaceFormat,
				Blend:     blend,
				WriteMask: writeMask,
			}},
		},
		DepthStencil: &hal.DepthStencilState{
			Format:            gputypes.TextureFormatDepth24PlusStencil8,
			DepthWriteEnabled: desc.DepthStencil.DepthWrite,
			DepthCompare:      depthCompare,
			StencilFront:      front,
			StencilBack:       back,
			StencilReadMask:   uint32(desc.DepthStencil.StencilReadMask),
			StencilWriteMask:  uint32(desc.DepthStencil.StencilWriteMask),
		},
		Primitive: gputypes.PrimitiveState{
			Topology: topology(desc.PrimitiveType),
			CullMode: cullMode(desc.Rast),
		},
		Multisample: gputypes.MultisampleState{
			Count: uint32(b.desc.SampleCount),
			Mask:  0xFFFFFFFF,
		},
	})
	if err != nil {
		cleanup()
		return 0, fmt.Errorf("wgpu: create render pipeline: %w", err)
	}
	res.pipeline = pipeline

	id := b.newID()
	b.mu.Lock()
	b.pipelines[id] = res
	b.mu.Unlock()
	return id, nil
}

func vertexBufferLayouts(desc *gfx.PipelineDesc) ([]gputypes.VertexBufferLayout, error) {
	var buffers []gputypes.VertexBufferLayout
	location := uint32(0)
	for slot := range desc.Layouts {
		l := &desc.Layouts[slot]
		if len(l.Attrs) == 0 {
			continue
		}
		var attrs []gputypes.VertexAttribute
		stride := uint64(0)
		for _, a := range l.Attrs {
			vf, err := vertexFormat(a.Format)
			if err != nil {
				return nil, err
			}
			attrs = append(attrs, gputypes.VertexAttribute{
				Format:         vf,
				Offset:         stride,
				ShaderLocation: location,
			})
			stride += uint64(a.Format.ByteSize())
			location++
		}
		buffers = append(buffers, gputypes.VertexBufferLayout{
			ArrayStride: stride,
			StepMode:    stepMode(l.StepFunc),
			Attributes:  attrs,
		})
	}
	return buffers, nil
}

// createUniformResources builds the bind group layout, pipeline layout,
// per-block uniform buffers and the bind group for a pipeline. Binding
// order is the vertex stage blocks followed by the fragment stage blocks.
func (b *Backend) createUniformResources(res *pipelineRes, shd *shaderRes) error {
	var entries []gputypes.BindGroupLayoutEntry
	binding := uint32(0)
	stages := []struct {
		stage      gfx.ShaderStage
		visibility gputypes.ShaderStage
	}{
		{gfx.ShaderStageVS, gputypes.ShaderStageVertex},
		{gfx.ShaderStageFS, gputypes.ShaderStageFragment},
	}
	for _, s := range stages {
		for slot := 0; slot < shd.ubCount[s.stage]; slot++ {
			size := shd.ubSizes[s.stage][slot]
			buf, err := b.device.CreateBuffer(&hal.BufferDescriptor{
				Label: "gfx_uniforms",
				Size:  uint64(size),
				Usage: gputypes.BufferUsageUniform | gputypes.BufferUsageCopyDst,
			})
			if err != nil {
				return fmt.Errorf("wgpu: create uniform buffer: %w", err)
			}
			res.ubIndex[s.stage][slot] = len(res.uniformBufs)
			res.uniformBufs = append(res.uniformBufs, buf)
			entries = append(entries, gputypes.BindGroupLayoutEntry{
				Binding:    binding,
				Visibility: s.visibility,
				Buffer:     &gputypes.BufferBindingLayout{Type: gputypes.BufferBindingTypeUniform},
			})
			binding++
		}
	}

	layout, err := b.device.CreateBindGroupLayout(&hal.BindGroupLayoutDescriptor{
		Label:   "gfx_bind_layout",
		Entries: entries,
	})
	if err != nil {
		return fmt.Errorf("wgpu: create bind group layout: %w", err)
	}
	res.bindLayout = layout

	pipeLayout, err := b.device.CreatePipelineLayout(&hal.PipelineLayoutDescriptor{
		Label:            "gfx_pipe_layout",
		BindGroupLayouts: []hal.BindGroupLayout{layout},
	})
	if err != nil {
		return fmt.Errorf("wgpu: create pipeline layout: %w", err)
	}
	res.pipeLayout = pipeLayout

	var bgEntries []gputypes.BindGroupEntry
	binding = 0
	for _, s := range stages {
		for slot := 0; slot < shd.ubCount[s.stage]; slot++ {
			buf := res.uniformBufs[res.ubIndex[s.stage][slot]]
			bgEntries = append(bgEntries, gputypes.BindGroupEntry{
				Binding: binding,
				Resource: gputypes.BufferBinding{
					Buffer: buf.NativeHandle(),
					Offset: 0,
					Size:   uint64(shd.ubSizes[s.stage][slot]),
				},
			})
			binding++
		}
	}
	bg, err := b.device.CreateBindGroup(&hal.BindGroupDescriptor{
		Label:   "gfx_bind_group",
		Layout:  layout,
		Entries: bgEntries,
	})
	if err != nil {
		return fmt.Errorf("wgpu: create bind group: %w", err)
	}
	res.bindGroup = bg
	return nil
}

func (b *Backend) releasePipeline(res *pipelineRes) {
	if res.pipeline != nil {
		b.device.DestroyRenderPipeline(res.pipeline)
	}
	if res.pipeLayout != nil {
		b.device.DestroyPipelineLayout(res.pipeLayout)
	}
	if res.bindLayout != nil {
		b.device.DestroyBindGroupLayout(res.bindLayout)
	}
	for _, buf := range res.uniformBufs {
		b.device.DestroyBuffer(buf)
	}
	res.uniformBufs = nil
}

// DestroyPipeline implements gfx.Backend.
func (b *Backend) DestroyPipeline(id gfx.NativeID) {
	b.mu.Lock()
	res := b.pipelines[id]
	delete(b.pipelines, id)
	b.mu.Unlock()
	if res != nil {
		b.releasePipeline(res)
	}
}

// CreatePass implements gfx.Backend. Attachment views were created with
// the images; the pass only collects them.
func (b *Backend) CreatePass(desc *gfx.PassDesc, color [gfx.MaxColorAttachments]gfx.NativeID, depthStencil gfx.NativeID) (gfx.NativeID, error) {
	res := &passRes{}
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, cid := range color {
		if cid == 0 {
			break
		}
		img := b.images[cid]
		if img == nil {
			return 0, fmt.Errorf("wgpu: pass references unknown color image")
		}
		res.colorViews = append(res.colorViews, img.view)
	}
	if depthStencil != 0 {
		img := b.images[depthStencil]
		if img == nil {
			return 0, fmt.Errorf("wgpu: pass references unknown depth/stencil image")
		}
		res.dsView = img.view
	}

	id := b.newID()
	b.passes[id] = res
	return id, nil
}

// DestroyPass implements gfx.Backend.
func (b *Backend) DestroyPass(id gfx.NativeID) {
	b.mu.Lock()
	delete(b.passes, id)
	b.mu.Unlock()
}
