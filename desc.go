package gfx

import "fmt"

// Desc configures a Context at setup time. Zero fields are replaced by
// the defaults from DefaultDesc.
type Desc struct {
	// Width and Height are the default framebuffer dimensions in pixels.
	Width  int
	Height int

	// SampleCount is the MSAA sample count of the default framebuffer.
	SampleCount int

	// Per-category resource pool capacities.
	BufferPoolSize   int
	ImagePoolSize    int
	ShaderPoolSize   int
	PipelinePoolSize int
	PassPoolSize     int
}

// DefaultDesc returns the default setup configuration: a 640x400
// single-sampled framebuffer and 128 slots per resource category.
func DefaultDesc() Desc {
	return Desc{
		Width:            640,
		Height:           400,
		SampleCount:      1,
		BufferPoolSize:   128,
		ImagePoolSize:    128,
		ShaderPoolSize:   128,
		PipelinePoolSize: 128,
		PassPoolSize:     128,
	}
}

// withDefaults fills zero fields from DefaultDesc.
func (d Desc) withDefaults() Desc {
	def := DefaultDesc()
	if d.Width == 0 {
		d.Width = def.Width
	}
	if d.Height == 0 {
		d.Height = def.Height
	}
	if d.SampleCount == 0 {
		d.SampleCount = def.SampleCount
	}
	if d.BufferPoolSize == 0 {
		d.BufferPoolSize = def.BufferPoolSize
	}
	if d.ImagePoolSize == 0 {
		d.ImagePoolSize = def.ImagePoolSize
	}
	if d.ShaderPoolSize == 0 {
		d.ShaderPoolSize = def.ShaderPoolSize
	}
	if d.PipelinePoolSize == 0 {
		d.PipelinePoolSize = def.PipelinePoolSize
	}
	if d.PassPoolSize == 0 {
		d.PassPoolSize = def.PassPoolSize
	}
	return d
}

// BufferDesc describes a buffer to create.
type BufferDesc struct {
	// Size is the buffer size in bytes. Defaults to len(Data).
	Size int

	// Type declares whether the buffer binds as a vertex or index buffer.
	Type BufferType

	// Usage is the mutability class. Immutable buffers require Data.
	Usage Usage

	// Data is the initial content. Required for immutable usage,
	// optional otherwise.
	Data []byte
}

// DefaultBufferDesc returns a descriptor for an immutable vertex buffer.
func DefaultBufferDesc() BufferDesc {
	return BufferDesc{Type: BufferTypeVertex, Usage: UsageImmutable}
}

// validate checks descriptor shape. It also resolves the effective size.
func (d *BufferDesc) validate() (size int, err error) {
	size = d.Size
	if size == 0 {
		size = len(d.Data)
	}
	if size <= 0 {
		return 0, fmt.Errorf("%w: buffer size is zero", ErrInvalidDescriptor)
	}
	if len(d.Data) > size {
		return 0, fmt.Errorf("%w: buffer data larger than declared size", ErrInvalidDescriptor)
	}
	if d.Usage == UsageImmutable && len(d.Data) == 0 {
		return 0, fmt.Errorf("%w: immutable buffer needs initial data", ErrInvalidDescriptor)
	}
	return size, nil
}

// ImageDesc describes an image to create.
type ImageDesc struct {
	// Type is the image dimensionality. Defaults to ImageType2D.
	Type ImageType

	// RenderTarget marks the image as a pass attachment target.
	RenderTarget bool

	// Width and Height are the dimensions in pixels. Required.
	Width  int
	Height int

	// Slices is the depth (3D) or layer count (array/cube). Defaults to 1.
	Slices int

	// MipLevels is the mip chain length. Defaults to 1.
	MipLevels int

	// Usage is the mutability class.
	Usage Usage

	// Format is the pixel format.
	Format PixelFormat

	// SampleCount is the MSAA sample count for render targets. Defaults to 1.
	SampleCount int

	// Sampling state.
	MinFilter Filter
	MagFilter Filter
	WrapU     Wrap
	WrapV     Wrap

	// Content is the initial pixel data for mip level 0, slice 0.
	// Required for immutable non-render-target images.
	Content []byte
}

// DefaultImageDesc returns a descriptor for an immutable 2D RGBA8 image.
func DefaultImageDesc() ImageDesc {
	return ImageDesc{
		Type:        ImageType2D,
		Slices:      1,
		MipLevels:   1,
		SampleCount: 1,
	}
}

func (d *ImageDesc) validate() error {
	if d.Type == ImageTypeInvalid {
		return fmt.Errorf("%w: image type is invalid", ErrInvalidDescriptor)
	}
	if d.Width <= 0 || d.Height <= 0 {
		return fmt.Errorf("%w: image size %dx%d", ErrInvalidDescriptor, d.Width, d.Height)
	}
	if d.Usage == UsageImmutable && !d.RenderTarget && len(d.Content) == 0 {
		return fmt.Errorf("%w: immutable image needs initial content", ErrInvalidDescriptor)
	}
	if d.RenderTarget && d.Usage != UsageImmutable {
		return fmt.Errorf("%w: render target images must be immutable", ErrInvalidDescriptor)
	}
	return nil
}

// normalized returns a copy with zero fields resolved to their defaults.
func (d ImageDesc) normalized() ImageDesc {
	if d.Slices == 0 {
		d.Slices = 1
	}
	if d.MipLevels == 0 {
		d.MipLevels = 1
	}
	if d.SampleCount == 0 {
		d.SampleCount = 1
	}
	return d
}

// VertexAttr describes one vertex attribute by name and data format.
type VertexAttr struct {
	Name   string
	Format VertexFormat
}

// UniformDesc describes one uniform inside a uniform block.
type UniformDesc struct {
	// Name is the uniform name as it appears in shader source. Required.
	Name string

	// Type is the uniform data type. Required.
	Type UniformType

	// ArraySize is the element count for array uniforms. Defaults to 1.
	ArraySize int
}

// UniformBlockDesc describes one uniform block of a shader stage.
type UniformBlockDesc struct {
	// Uniforms lists the block members in declaration order.
	// At most MaxUniforms entries.
	Uniforms []UniformDesc
}

// ByteSize returns the total byte size of the block: the sum of each
// member's type size times its array size. ApplyUniformBlock enforces
// this exact size for every update targeting the block.
func (d *UniformBlockDesc) ByteSize() int {
	total := 0
	for _, u := range d.Uniforms {
		n := u.ArraySize
		if n == 0 {
			n = 1
		}
		total += u.Type.ByteSize() * n
	}
	return total
}

// ShaderImageDesc declares one image slot expected by a shader stage.
type ShaderImageDesc struct {
	Name string
	Type ImageType
}

// StageDesc describes one shader stage.
type StageDesc struct {
	// Source is the stage source code. Required.
	Source string

	// Entry is the entry point name. Backends may default it.
	Entry string

	// UniformBlocks declares the stage's uniform blocks by slot order.
	// At most MaxShaderStageUBs entries.
	UniformBlocks []UniformBlockDesc

	// Images declares the stage's image slots by slot order.
	// At most MaxShaderStageImages entries.
	Images []ShaderImageDesc
}

func (d *StageDesc) validate(stage ShaderStage) error {
	if d.Source == "" {
		return fmt.Errorf("%w: %v stage has no source", ErrInvalidDescriptor, stage)
	}
	if len(d.UniformBlocks) > MaxShaderStageUBs {
		return fmt.Errorf("%w: %v stage declares %d uniform blocks (max %d)",
			ErrLimitExceeded, stage, len(d.UniformBlocks), MaxShaderStageUBs)
	}
	if len(d.Images) > MaxShaderStageImages {
		return fmt.Errorf("%w: %v stage declares %d images (max %d)",
			ErrLimitExceeded, stage, len(d.Images), MaxShaderStageImages)
	}
	for bi, ub := range d.UniformBlocks {
		if len(ub.Uniforms) > MaxUniforms {
			return fmt.Errorf("%w: %v stage block %d declares %d uniforms (max %d)",
				ErrLimitExceeded, stage, bi, len(ub.Uniforms), MaxUniforms)
		}
		for _, u := range ub.Uniforms {
			if u.Name == "" {
				return fmt.Errorf("%w: %v stage block %d has unnamed uniform",
					ErrInvalidDescriptor, stage, bi)
			}
			if u.Type == UniformTypeInvalid {
				return fmt.Errorf("%w: %v stage uniform %q has invalid type",
					ErrInvalidDescriptor, stage, u.Name)
			}
		}
	}
	for si, img := range d.Images {
		if img.Type == ImageTypeInvalid {
			return fmt.Errorf("%w: %v stage image slot %d has invalid type",
				ErrInvalidDescriptor, stage, si)
		}
	}
	return nil
}

// ShaderDesc describes a shader to create: a vertex stage, a fragment
// stage, and the vertex attributes the vertex stage consumes.
type ShaderDesc struct {
	// Lang is the source language of both stages.
	Lang ShaderLang

	// Attrs lists the vertex attributes the shader expects.
	// At most MaxVertexAttributes entries.
	Attrs []VertexAttr

	// VS and FS are the stage descriptions.
	VS StageDesc
	FS StageDesc
}

func (d *ShaderDesc) validate() error {
	if len(d.Attrs) > MaxVertexAttributes {
		return fmt.Errorf("%w: shader declares %d attributes (max %d)",
			ErrLimitExceeded, len(d.Attrs), MaxVertexAttributes)
	}
	for _, a := range d.Attrs {
		if a.Name == "" {
			return fmt.Errorf("%w: shader attribute has no name", ErrInvalidDescriptor)
		}
		if a.Format == VertexFormatInvalid {
			return fmt.Errorf("%w: shader attribute %q has invalid format",
				ErrInvalidDescriptor, a.Name)
		}
	}
	if err := d.VS.validate(ShaderStageVS); err != nil {
		return err
	}
	return d.FS.validate(ShaderStageFS)
}

// StencilState configures stencil operations for one face.
type StencilState struct {
	FailOp      StencilOp
	DepthFailOp StencilOp
	PassOp      StencilOp
	CompareFunc CompareFunc
}

// DepthStencilState configures the depth and stencil stage of a pipeline.
type DepthStencilState struct {
	StencilFront     StencilState
	StencilBack      StencilState
	DepthCompareFunc CompareFunc
	DepthWrite       bool
	StencilEnabled   bool
	StencilReadMask  uint8
	StencilWriteMask uint8
	StencilRef       uint8
}

// BlendState configures the color blend stage of a pipeline.
type BlendState struct {
	Enabled        bool
	SrcFactorRGB   BlendFactor
	DstFactorRGB   BlendFactor
	OpRGB          BlendOp
	SrcFactorAlpha BlendFactor
	DstFactorAlpha BlendFactor
	OpAlpha        BlendOp
	ColorWriteMask ColorMask
	BlendColor     [4]float32
}

// RasterizerState configures the rasterizer stage of a pipeline.
type RasterizerState struct {
	CullFaceEnabled        bool
	ScissorTestEnabled     bool
	DitherEnabled          bool
	AlphaToCoverageEnabled bool
	CullFace               Face
}

// VertexLayout describes the attributes sourced from one vertex buffer
// bind slot.
type VertexLayout struct {
	// Attrs lists the attributes in buffer order.
	// At most MaxVertexAttributes entries.
	Attrs []VertexAttr

	// StepFunc advances per vertex or per instance.
	StepFunc StepFunc

	// StepRate is the instance step rate. Defaults to 1.
	StepRate int
}

// PipelineDesc describes a pipeline state object: a shader plus the
// fixed-function state and vertex layouts needed to draw with it.
type PipelineDesc struct {
	// Shader is the shader the pipeline executes. Required and must be
	// valid when the pipeline is initialized.
	Shader Shader

	// Layouts maps vertex buffer bind slots to attribute layouts.
	Layouts [MaxShaderStageBuffers]VertexLayout

	// PrimitiveType is the draw topology.
	PrimitiveType PrimitiveType

	// IndexType declares indexed drawing; IndexTypeNone draws non-indexed.
	IndexType IndexType

	DepthStencil DepthStencilState
	Blend        BlendState
	Rast         RasterizerState
}

// DefaultPipelineDesc returns a descriptor with the conventional OpenGL-ish
// defaults: triangles, no indexing, depth test always without write,
// stencil off (keep ops, 0xFF masks), blending off with one/zero factors,
// full color write mask, back-face culling disabled, dithering on.
func DefaultPipelineDesc() PipelineDesc {
	stencil := StencilState{
		FailOp:      StencilOpKeep,
		DepthFailOp: StencilOpKeep,
		PassOp:      StencilOpKeep,
		CompareFunc: CompareFuncAlways,
	}
	d := PipelineDesc{
		PrimitiveType: PrimitiveTypeTriangles,
		DepthStencil: DepthStencilState{
			StencilFront:     stencil,
			StencilBack:      stencil,
			DepthCompareFunc: CompareFuncAlways,
			StencilReadMask:  0xFF,
			StencilWriteMask: 0xFF,
		},
		Blend: BlendState{
			SrcFactorRGB:   BlendFactorOne,
			DstFactorRGB:   BlendFactorZero,
			OpRGB:          BlendOpAdd,
			SrcFactorAlpha: BlendFactorOne,
			DstFactorAlpha: BlendFactorZero,
			OpAlpha:        BlendOpAdd,
			ColorWriteMask: ColorMaskRGBA,
			BlendColor:     [4]float32{1, 1, 1, 1},
		},
		Rast: RasterizerState{
			DitherEnabled: true,
			CullFace:      FaceBack,
		},
	}
	for i := range d.Layouts {
		d.Layouts[i].StepFunc = StepFuncPerVertex
		d.Layouts[i].StepRate = 1
	}
	return d
}

func (d *PipelineDesc) validate() error {
	if d.Shader == InvalidID {
		return fmt.Errorf("%w: pipeline has no shader", ErrInvalidDescriptor)
	}
	attrs := 0
	for slot := range d.Layouts {
		l := &d.Layouts[slot]
		if len(l.Attrs) > MaxVertexAttributes {
			return fmt.Errorf("%w: layout slot %d declares %d attributes (max %d)",
				ErrLimitExceeded, slot, len(l.Attrs), MaxVertexAttributes)
		}
		for _, a := range l.Attrs {
			if a.Name == "" {
				return fmt.Errorf("%w: layout slot %d attribute has no name",
					ErrInvalidDescriptor, slot)
			}
			if a.Format == VertexFormatInvalid {
				return fmt.Errorf("%w: layout slot %d attribute %q has invalid format",
					ErrInvalidDescriptor, slot, a.Name)
			}
		}
		attrs += len(l.Attrs)
	}
	if attrs == 0 {
		return fmt.Errorf("%w: pipeline declares no vertex attributes", ErrInvalidDescriptor)
	}
	if attrs > MaxVertexAttributes {
		return fmt.Errorf("%w: pipeline declares %d attributes (max %d)",
			ErrLimitExceeded, attrs, MaxVertexAttributes)
	}
	return nil
}

// AttachmentDesc selects one image subresource as a pass attachment.
type AttachmentDesc struct {
	// Image is the attachment target. The zero handle leaves the
	// attachment unused.
	Image Image

	// MipLevel selects the mip level to render into.
	MipLevel int

	// Slice selects the array layer, cube face, or depth slice.
	Slice int
}

// PassDesc describes a render pass: up to MaxColorAttachments color
// attachments plus an optional depth/stencil attachment. All referenced
// images must be valid render targets when the pass is initialized.
type PassDesc struct {
	ColorAttachments       [MaxColorAttachments]AttachmentDesc
	DepthStencilAttachment AttachmentDesc
}

func (d *PassDesc) validate() error {
	if d.ColorAttachments[0].Image == InvalidID {
		return fmt.Errorf("%w: pass has no color attachment in slot 0", ErrInvalidDescriptor)
	}
	// Color attachments must be packed from slot 0.
	used := true
	for i := range d.ColorAttachments {
		if d.ColorAttachments[i].Image == InvalidID {
			used = false
		} else if !used {
			return fmt.Errorf("%w: pass color attachments have a gap before slot %d",
				ErrInvalidDescriptor, i)
		}
	}
	return nil
}

// numColorAttachments returns the count of used color attachment slots.
func (d *PassDesc) numColorAttachments() int {
	n := 0
	for i := range d.ColorAttachments {
		if d.ColorAttachments[i].Image == InvalidID {
			break
		}
		n++
	}
	return n
}

// DrawState bundles the pipeline and resource bindings for subsequent
// draw calls. Unused trailing slots stay zero.
type DrawState struct {
	// Pipeline is the pipeline to draw with. Required.
	Pipeline Pipeline

	// VertexBuffers maps vertex buffer bind slots to buffers.
	VertexBuffers [MaxShaderStageBuffers]Buffer

	// IndexBuffer supplies indices for indexed pipelines.
	IndexBuffer Buffer

	// VSImages and FSImages map per-stage image slots to images.
	VSImages [MaxShaderStageImages]Image
	FSImages [MaxShaderStageImages]Image
}

// UpdateImageDesc describes the target region of an UpdateImage call.
// Zero Width/Height default to the full image extent.
type UpdateImageDesc struct {
	Width    int
	Height   int
	MipLevel int
	Slice    int
}
