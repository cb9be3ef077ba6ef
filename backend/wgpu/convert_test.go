package wgpu

import (
	"testing"

	"github.com/gogpu/gfx"
	"github.com/gogpu/gputypes"
)

func TestTexFormat(t *testing.T) {
	tests := []struct {
		in      gfx.PixelFormat
		want    gputypes.TextureFormat
		wantBpp int
	}{
		{gfx.PixelFormatRGBA8, gputypes.TextureFormatRGBA8Unorm, 4},
		{gfx.PixelFormatL8, gputypes.TextureFormatR8Unorm, 1},
		{gfx.PixelFormatR32F, gputypes.TextureFormatR32Float, 4},
		{gfx.PixelFormatRGBA32F, gputypes.TextureFormatRGBA32Float, 16},
		{gfx.PixelFormatDepthStencil, gputypes.TextureFormatDepth24PlusStencil8, 4},
	}
	for _, tt := range tests {
		got, bpp, err := texFormat(tt.in)
		if err != nil {
			t.Errorf("texFormat(%d) error: %v", tt.in, err)
			continue
		}
		if got != tt.want || bpp != tt.wantBpp {
			t.Errorf("texFormat(%d) = (%v, %d), want (%v, %d)", tt.in, got, bpp, tt.want, tt.wantBpp)
		}
	}
}

func TestTexFormatUnsupported(t *testing.T) {
	for _, f := range []gfx.PixelFormat{
		gfx.PixelFormatDXT1,
		gfx.PixelFormatPVRTC2RGB,
		gfx.PixelFormatETC2RGB8,
	} {
		if _, _, err := texFormat(f); err == nil {
			t.Errorf("texFormat(%d): want error for compressed format", f)
		}
	}
}

func TestVertexFormat(t *testing.T) {
	tests := []struct {
		in   gfx.VertexFormat
		want gputypes.VertexFormat
	}{
		{gfx.VertexFormatFloat, gputypes.VertexFormatFloat32},
		{gfx.VertexFormatFloat2, gputypes.VertexFormatFloat32x2},
		{gfx.VertexFormatFloat3, gputypes.VertexFormatFloat32x3},
		{gfx.VertexFormatFloat4, gputypes.VertexFormatFloat32x4},
	}
	for _, tt := range tests {
		got, err := vertexFormat(tt.in)
		if err != nil {
			t.Errorf("vertexFormat(%d) error: %v", tt.in, err)
			continue
		}
		if got != tt.want {
			t.Errorf("vertexFormat(%d) = %v, want %v", tt.in, got, tt.want)
		}
	}
	if _, err := vertexFormat(gfx.VertexFormatUint10N2); err == nil {
		t.Error("vertexFormat(Uint10N2): want error")
	}
}

func TestColorLoadOp(t *testing.T) {
	action := gfx.DefaultPassAction()
	op, clear := colorLoadOp(&action, 0)
	if op != gputypes.LoadOpClear {
		t.Errorf("default action slot 0: op = %v, want clear", op)
	}
	if clear.R != 0.5 || clear.A != 1.0 {
		t.Errorf("default action clear value = %+v", clear)
	}

	action.Actions = gfx.LoadColor0 | gfx.ClearColor1
	if op, _ := colorLoadOp(&action, 0); op != gputypes.LoadOpLoad {
		t.Errorf("load slot 0: op = %v, want load", op)
	}
	if op, _ := colorLoadOp(&action, 1); op != gputypes.LoadOpClear {
		t.Errorf("clear slot 1: op = %v, want clear", op)
	}
	// Neither bit set resolves to clear.
	if op, _ := colorLoadOp(&action, 2); op != gputypes.LoadOpClear {
		t.Errorf("don't-care slot 2: op = %v, want clear", op)
	}
}

func TestDepthStencilLoadOps(t *testing.T) {
	action := gfx.PassAction{Actions: gfx.LoadDepth | gfx.ClearStencil}
	if op := depthLoadOp(&action); op != gputypes.LoadOpLoad {
		t.Errorf("depth op = %v, want load", op)
	}
	if op := stencilLoadOp(&action); op != gputypes.LoadOpClear {
		t.Errorf("stencil op = %v, want clear", op)
	}
	action.Actions = 0
	if op := depthLoadOp(&action); op != gputypes.LoadOpClear {
		t.Errorf("don't-care depth op = %v, want clear", op)
	}
}

func TestCullMode(t *testing.T) {
	if got := cullMode(gfx.RasterizerState{}); got != gputypes.CullModeNone {
		t.Errorf("culling disabled: %v, want none", got)
	}
	r := gfx.RasterizerState{CullFaceEnabled: true, CullFace: gfx.FaceFront}
	if got := cullMode(r); got != gputypes.CullModeFront {
		t.Errorf("front culling: %v", got)
	}
	r.CullFace = gfx.FaceBack
	if got := cullMode(r); got != gputypes.CullModeBack {
		t.Errorf("back culling: %v", got)
	}
}

func TestVertexBufferLayouts(t *testing.T) {
	desc := gfx.DefaultPipelineDesc()
	desc.Layouts[0].Attrs = []gfx.VertexAttr{
		{Name: "position", Format: gfx.VertexFormatFloat3},
		{Name: "color", Format: gfx.VertexFormatFloat4},
	}
	desc.Layouts[1].Attrs = []gfx.VertexAttr{
		{Name: "uv", Format: gfx.VertexFormatFloat2},
	}

	layouts, err := vertexBufferLayouts(&desc)
	if err != nil {
		t.Fatalf("vertexBufferLayouts: %v", err)
	}
	if len(layouts) != 2 {
		t.Fatalf("got %d layouts, want 2", len(layouts))
	}
	if layouts[0].ArrayStride != 28 {
		t.Errorf("slot 0 stride = %d, want 28", layouts[0].ArrayStride)
	}
	if layouts[0].Attributes[1].Offset != 12 {
		t.Errorf("slot 0 attr 1 offset = %d, want 12", layouts[0].Attributes[1].Offset)
	}
	// Shader locations run consecutively across buffer slots.
	if layouts[1].Attributes[0].ShaderLocation != 2 {
		t.Errorf("slot 1 attr 0 location = %d, want 2", layouts[1].Attributes[0].ShaderLocation)
	}
	if layouts[1].ArrayStride != 8 {
		t.Errorf("slot 1 stride = %d, want 8", layouts[1].ArrayStride)
	}
}

func TestVertexBufferLayoutsRejectsPackedFormats(t *testing.T) {
	desc := gfx.DefaultPipelineDesc()
	desc.Layouts[0].Attrs = []gfx.VertexAttr{
		{Name: "position", Format: gfx.VertexFormatShort2N},
	}
	if _, err := vertexBufferLayouts(&desc); err == nil {
		t.Error("want error for unsupported vertex format")
	}
}

func TestSwapBGRA(t *testing.T) {
	p := []byte{1, 2, 3, 4, 10, 20, 30, 40}
	swapBGRA(p)
	want := []byte{3, 2, 1, 4, 30, 20, 10, 40}
	for i := range want {
		if p[i] != want[i] {
			t.Fatalf("swapBGRA = %v, want %v", p, want)
		}
	}
}
