package wgpu

import (
	"fmt"

	"github.com/gogpu/gfx"
	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
)

// texFormat maps a gfx pixel format to the HAL texture format. Formats
// without a HAL counterpart report an error; the core marks the resource
// failed.
func texFormat(f gfx.PixelFormat) (gputypes.TextureFormat, int, error) {
	switch f {
	case gfx.PixelFormatRGBA8:
		return gputypes.TextureFormatRGBA8Unorm, 4, nil
	case gfx.PixelFormatL8:
		return gputypes.TextureFormatR8Unorm, 1, nil
	case gfx.PixelFormatR32F:
		return gputypes.TextureFormatR32Float, 4, nil
	case gfx.PixelFormatRGBA32F:
		return gputypes.TextureFormatRGBA32Float, 16, nil
	case gfx.PixelFormatDepth, gfx.PixelFormatDepthStencil:
		return gputypes.TextureFormatDepth24PlusStencil8, 4, nil
	default:
		return gputypes.TextureFormatUndefined, 0, fmt.Errorf("wgpu: unsupported pixel format %d", f)
	}
}

func vertexFormat(f gfx.VertexFormat) (gputypes.VertexFormat, error) {
	switch f {
	case gfx.VertexFormatFloat:
		return gputypes.VertexFormatFloat32, nil
	case gfx.VertexFormatFloat2:
		return gputypes.VertexFormatFloat32x2, nil
	case gfx.VertexFormatFloat3:
		return gputypes.VertexFormatFloat32x3, nil
	case gfx.VertexFormatFloat4:
		return gputypes.VertexFormatFloat32x4, nil
	default:
		return 0, fmt.Errorf("wgpu: unsupported vertex format %d", f)
	}
}

func compareFunc(f gfx.CompareFunc) gputypes.CompareFunction {
	switch f {
	case gfx.CompareFuncNever:
		return gputypes.CompareFunctionNever
	case gfx.CompareFuncLess:
		return gputypes.CompareFunctionLess
	case gfx.CompareFuncEqual:
		return gputypes.CompareFunctionEqual
	case gfx.CompareFuncLessEqual:
		return gputypes.CompareFunctionLessEqual
	case gfx.CompareFuncGreater:
		return gputypes.CompareFunctionGreater
	case gfx.CompareFuncNotEqual:
		return gputypes.CompareFunctionNotEqual
	case gfx.CompareFuncGreaterEqual:
		return gputypes.CompareFunctionGreaterEqual
	default:
		return gputypes.CompareFunctionAlways
	}
}

func stencilOp(op gfx.StencilOp) hal.StencilOperation {
	switch op {
	case gfx.StencilOpZero:
		return hal.StencilOperationZero
	case gfx.StencilOpReplace:
		return hal.StencilOperationReplace
	case gfx.StencilOpIncrClamp:
		return hal.StencilOperationIncrementClamp
	case gfx.StencilOpDecrClamp:
		return hal.StencilOperationDecrementClamp
	case gfx.StencilOpInvert:
		return hal.StencilOperationInvert
	case gfx.StencilOpIncrWrap:
		return hal.StencilOperationIncrementWrap
	case gfx.StencilOpDecrWrap:
		return hal.StencilOperationDecrementWrap
	default:
		return hal.StencilOperationKeep
	}
}

func stencilFace(s gfx.StencilState) hal.StencilFaceState {
	return hal.StencilFaceState{
		Compare:     compareFunc(s.CompareFunc),
		FailOp:      stencilOp(s.FailOp),
		DepthFailOp: stencilOp(s.DepthFailOp),
		PassOp:      stencilOp(s.PassOp),
	}
}

func topology(t gfx.PrimitiveType) gputypes.PrimitiveTopology {
	switch t {
	case gfx.PrimitiveTypePoints:
		return gputypes.PrimitiveTopologyPointList
	case gfx.PrimitiveTypeLines:
		return gputypes.PrimitiveTopologyLineList
	case gfx.PrimitiveTypeLineStrip:
		return gputypes.PrimitiveTopologyLineStrip
	case gfx.PrimitiveTypeTriangleStrip:
		return gputypes.PrimitiveTopologyTriangleStrip
	default:
		return gputypes.PrimitiveTopologyTriangleList
	}
}

func cullMode(r gfx.RasterizerState) gputypes.CullMode {
	if !r.CullFaceEnabled {
		return gputypes.CullModeNone
	}
	switch r.CullFace {
	case gfx.FaceFront:
		return gputypes.CullModeFront
	case gfx.FaceBack:
		return gputypes.CullModeBack
	default:
		// Culling both faces draws nothing; the HAL has no mode for it,
		// so fall back to back-face culling.
		return gputypes.CullModeBack
	}
}

func stepMode(s gfx.StepFunc) gputypes.VertexStepMode {
	if s == gfx.StepFuncPerInstance {
		return gputypes.VertexStepModeInstance
	}
	return gputypes.VertexStepModeVertex
}

// colorLoadOp resolves the clear-vs-load action of color attachment i.
// A don't-care attachment clears, the cheap choice on tiled GPUs.
func colorLoadOp(a *gfx.PassAction, i int) (gputypes.LoadOp, gputypes.Color) {
	clear := gputypes.Color{
		R: float64(a.Colors[i][0]),
		G: float64(a.Colors[i][1]),
		B: float64(a.Colors[i][2]),
		A: float64(a.Colors[i][3]),
	}
	if a.Actions.LoadsColor(i) && !a.Actions.ClearsColor(i) {
		return gputypes.LoadOpLoad, clear
	}
	return gputypes.LoadOpClear, clear
}

func depthLoadOp(a *gfx.PassAction) gputypes.LoadOp {
	if a.Actions&gfx.LoadDepth != 0 && a.Actions&gfx.ClearDepth == 0 {
		return gputypes.LoadOpLoad
	}
	return gputypes.LoadOpClear
}

func stencilLoadOp(a *gfx.PassAction) gputypes.LoadOp {
	if a.Actions&gfx.LoadStencil != 0 && a.Actions&gfx.ClearStencil == 0 {
		return gputypes.LoadOpLoad
	}
	return gputypes.LoadOpClear
}
