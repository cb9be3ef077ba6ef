package gfx

// BufferType declares what a buffer binds as. A buffer's declared type
// must match its usage slot in a DrawState; an index buffer bound as a
// vertex buffer (or vice versa) invalidates the draw state.
type BufferType uint8

// Buffer types.
const (
	BufferTypeVertex BufferType = iota
	BufferTypeIndex
)

// ImageType is the dimensionality of an image.
type ImageType uint8

// Image types. ImageTypeInvalid marks an unset shader image slot.
const (
	ImageTypeInvalid ImageType = iota
	ImageType2D
	ImageTypeCube
	ImageType3D
	ImageTypeArray
)

// IndexType selects the element width of an index buffer.
type IndexType uint8

// Index types. IndexTypeNone declares a pipeline for non-indexed draws.
const (
	IndexTypeNone IndexType = iota
	IndexTypeUint16
	IndexTypeUint32
)

// Feature identifies an optional backend capability. Feature data is
// static, supplied by the backend and consumed read-only by the core.
type Feature uint8

// Optional backend features.
const (
	FeatureTextureCompressionDXT Feature = iota
	FeatureTextureCompressionPVRTC
	FeatureTextureCompressionATC
	FeatureTextureCompressionETC2
	FeatureTextureFloat
	FeatureTextureHalfFloat
	FeatureOriginBottomLeft
	FeatureOriginTopLeft
	FeatureMSAARenderTargets
	FeaturePackedVertexFormat102
	FeatureMultipleRenderTarget
	FeatureTexture3D
	FeatureTextureArray
	FeatureNativeTexture

	featureCount
)

// ShaderStage selects the vertex or fragment stage of a shader.
type ShaderStage uint8

// Shader stages.
const (
	ShaderStageVS ShaderStage = iota
	ShaderStageFS

	shaderStageCount
)

// String returns the stage name for diagnostics.
func (s ShaderStage) String() string {
	switch s {
	case ShaderStageVS:
		return "vs"
	case ShaderStageFS:
		return "fs"
	default:
		return "invalid"
	}
}

// PixelFormat is the pixel format of an image.
type PixelFormat uint8

// Pixel formats.
const (
	PixelFormatRGBA8 PixelFormat = iota
	PixelFormatRGB8
	PixelFormatRGBA4
	PixelFormatR5G6B5
	PixelFormatR5G5B5A1
	PixelFormatR10G10B10A2
	PixelFormatRGBA32F
	PixelFormatRGBA16F
	PixelFormatR32F
	PixelFormatR16F
	PixelFormatL8
	PixelFormatDXT1
	PixelFormatDXT3
	PixelFormatDXT5
	PixelFormatDepth
	PixelFormatDepthStencil
	PixelFormatPVRTC2RGB
	PixelFormatPVRTC4RGB
	PixelFormatPVRTC2RGBA
	PixelFormatETC2RGB8
	PixelFormatETC2SRGB8
)

// PrimitiveType is the primitive topology drawn by a pipeline.
type PrimitiveType uint8

// Primitive types.
const (
	PrimitiveTypePoints PrimitiveType = iota
	PrimitiveTypeLines
	PrimitiveTypeLineStrip
	PrimitiveTypeTriangles
	PrimitiveTypeTriangleStrip
)

// Filter is a texture sampling filter.
type Filter uint8

// Sampling filters.
const (
	FilterNearest Filter = iota
	FilterLinear
	FilterNearestMipmapNearest
	FilterNearestMipmapLinear
	FilterLinearMipmapNearest
	FilterLinearMipmapLinear
)

// Wrap is a texture coordinate wrapping mode.
type Wrap uint8

// Wrap modes.
const (
	WrapClampToEdge Wrap = iota
	WrapRepeat
	WrapMirroredRepeat
)

// Usage is the declared mutability class of a buffer or image. Update
// operations are only legal for dynamic and stream resources.
type Usage uint8

// Usage classes.
const (
	UsageImmutable Usage = iota
	UsageDynamic
	UsageStream
)

// Mutable reports whether post-creation updates are legal for this usage.
func (u Usage) Mutable() bool { return u == UsageDynamic || u == UsageStream }

// VertexFormat is the data format of a single vertex attribute.
type VertexFormat uint8

// Vertex formats. VertexFormatInvalid marks an unset attribute.
const (
	VertexFormatInvalid VertexFormat = iota
	VertexFormatFloat
	VertexFormatFloat2
	VertexFormatFloat3
	VertexFormatFloat4
	VertexFormatByte4
	VertexFormatByte4N
	VertexFormatUByte4
	VertexFormatUByte4N
	VertexFormatShort2
	VertexFormatShort2N
	VertexFormatShort4
	VertexFormatShort4N
	VertexFormatUint10N2
)

// ByteSize returns the packed byte size of one attribute element.
func (f VertexFormat) ByteSize() int {
	switch f {
	case VertexFormatFloat:
		return 4
	case VertexFormatFloat2:
		return 8
	case VertexFormatFloat3:
		return 12
	case VertexFormatFloat4:
		return 16
	case VertexFormatByte4, VertexFormatByte4N, VertexFormatUByte4, VertexFormatUByte4N:
		return 4
	case VertexFormatShort2, VertexFormatShort2N:
		return 4
	case VertexFormatShort4, VertexFormatShort4N:
		return 8
	case VertexFormatUint10N2:
		return 4
	default:
		return 0
	}
}

// ShaderLang identifies the source language of shader stage code.
type ShaderLang uint8

// Shader source languages. Which languages a backend accepts is a
// backend property; the wgpu backend compiles WGSL via naga.
const (
	ShaderLangGLSL100 ShaderLang = iota
	ShaderLangGLSL330
	ShaderLangGLSLES3
	ShaderLangHLSL5
	ShaderLangMetal
	ShaderLangWGSL
)

// UniformType is the data type of a uniform inside a uniform block.
type UniformType uint8

// Uniform types. UniformTypeInvalid marks an unset uniform.
const (
	UniformTypeInvalid UniformType = iota
	UniformTypeFloat
	UniformTypeFloat2
	UniformTypeFloat3
	UniformTypeFloat4
	UniformTypeMat4
)

// ByteSize returns the byte size of one element of this uniform type.
// The per-block byte size that ApplyUniformBlock checks against is the
// sum over all uniforms of ByteSize times array size.
func (t UniformType) ByteSize() int {
	switch t {
	case UniformTypeFloat:
		return 4
	case UniformTypeFloat2:
		return 8
	case UniformTypeFloat3:
		return 12
	case UniformTypeFloat4:
		return 16
	case UniformTypeMat4:
		return 64
	default:
		return 0
	}
}

// Face selects polygon faces for culling.
type Face uint8

// Faces.
const (
	FaceFront Face = iota
	FaceBack
	FaceBoth
)

// CompareFunc is a depth or stencil comparison function.
type CompareFunc uint8

// Comparison functions.
const (
	CompareFuncNever CompareFunc = iota
	CompareFuncLess
	CompareFuncEqual
	CompareFuncLessEqual
	CompareFuncGreater
	CompareFuncNotEqual
	CompareFuncGreaterEqual
	CompareFuncAlways
)

// StencilOp is a stencil buffer operation.
type StencilOp uint8

// Stencil operations.
const (
	StencilOpKeep StencilOp = iota
	StencilOpZero
	StencilOpReplace
	StencilOpIncrClamp
	StencilOpDecrClamp
	StencilOpInvert
	StencilOpIncrWrap
	StencilOpDecrWrap
)

// BlendFactor is a source or destination blend factor.
type BlendFactor uint8

// Blend factors.
const (
	BlendFactorZero BlendFactor = iota
	BlendFactorOne
	BlendFactorSrcColor
	BlendFactorOneMinusSrcColor
	BlendFactorSrcAlpha
	BlendFactorOneMinusSrcAlpha
	BlendFactorDstColor
	BlendFactorOneMinusDstColor
	BlendFactorDstAlpha
	BlendFactorOneMinusDstAlpha
	BlendFactorSrcAlphaSaturated
	BlendFactorBlendColor
	BlendFactorOneMinusBlendColor
	BlendFactorBlendAlpha
	BlendFactorOneMinusBlendAlpha
)

// BlendOp combines source and destination blend terms.
type BlendOp uint8

// Blend operations.
const (
	BlendOpAdd BlendOp = iota
	BlendOpSubtract
	BlendOpReverseSubtract
)

// StepFunc advances a vertex layout per vertex or per instance.
type StepFunc uint8

// Step functions.
const (
	StepFuncPerVertex StepFunc = iota
	StepFuncPerInstance
)

// ColorMask is a per-channel color write mask.
type ColorMask uint8

// Color mask bits.
const (
	ColorMaskR    ColorMask = 1 << 0
	ColorMaskG    ColorMask = 1 << 1
	ColorMaskB    ColorMask = 1 << 2
	ColorMaskA    ColorMask = 1 << 3
	ColorMaskRGBA ColorMask = 0xF
)
