// Command gfxdemo drives a complete frame through the gfx pipeline:
// resource creation, a clear pass, a draw state with uniforms, draw
// calls, and commit. It runs on any registered backend and prints the
// per-frame statistics.
package main

import (
	"encoding/binary"
	"flag"
	"log"
	"math"

	"github.com/gogpu/gfx"
	"github.com/gogpu/gfx/backend"
)

func main() {
	var (
		width       = flag.Int("width", 640, "framebuffer width")
		height      = flag.Int("height", 400, "framebuffer height")
		frames      = flag.Int("frames", 3, "number of frames to render")
		backendName = flag.String("backend", backend.BackendHeadless, "backend to use")
	)
	flag.Parse()

	b := backend.Get(*backendName)
	if b == nil {
		log.Fatalf("Backend %q is not registered", *backendName)
	}
	ctx, err := gfx.New(&gfx.Desc{Width: *width, Height: *height},
		gfx.WithBackend(b))
	if err != nil {
		log.Fatalf("Setup failed: %v", err)
	}
	defer ctx.Close()

	vbuf, err := ctx.MakeBuffer(&gfx.BufferDesc{
		Data: triangleVertices(),
	})
	if err != nil {
		log.Fatalf("Vertex buffer: %v", err)
	}

	shd, err := ctx.MakeShader(triangleShader())
	if err != nil {
		log.Fatalf("Shader: %v", err)
	}

	pipDesc := gfx.DefaultPipelineDesc()
	pipDesc.Shader = shd
	pipDesc.Layouts[0].Attrs = []gfx.VertexAttr{
		{Name: "position", Format: gfx.VertexFormatFloat2},
		{Name: "color", Format: gfx.VertexFormatFloat4},
	}
	pip, err := ctx.MakePipeline(&pipDesc)
	if err != nil {
		log.Fatalf("Pipeline: %v", err)
	}

	action := gfx.PassAction{
		Colors:  [gfx.MaxColorAttachments]gfx.Color{{0.1, 0.2, 0.4, 1.0}},
		Depth:   1.0,
		Actions: gfx.ClearAll,
	}
	ds := &gfx.DrawState{Pipeline: pip}
	ds.VertexBuffers[0] = vbuf

	for frame := 0; frame < *frames; frame++ {
		if err := ctx.BeginDefaultPass(&action, *width, *height); err != nil {
			log.Fatalf("Frame %d: begin pass: %v", frame, err)
		}
		if err := ctx.ApplyDrawState(ds); err != nil {
			log.Fatalf("Frame %d: draw state: %v", frame, err)
		}
		if err := ctx.ApplyUniformBlock(gfx.ShaderStageVS, 0, angleUniform(frame)); err != nil {
			log.Fatalf("Frame %d: uniforms: %v", frame, err)
		}
		if err := ctx.Draw(0, 3, 1); err != nil {
			log.Fatalf("Frame %d: draw: %v", frame, err)
		}
		if err := ctx.EndPass(); err != nil {
			log.Fatalf("Frame %d: end pass: %v", frame, err)
		}

		stats := ctx.FrameStats()
		if err := ctx.Commit(); err != nil {
			log.Fatalf("Frame %d: commit: %v", frame, err)
		}
		log.Printf("Frame %d: passes=%d draw states=%d uniforms=%d draws=%d",
			frame, stats.Passes, stats.DrawStates, stats.UniformBlocks, stats.Draws)
	}
}

// triangleVertices packs three vertices of position (x, y) and RGBA color.
func triangleVertices() []byte {
	verts := []float32{
		0.0, 0.5, 1, 0, 0, 1,
		0.5, -0.5, 0, 1, 0, 1,
		-0.5, -0.5, 0, 0, 1, 1,
	}
	data := make([]byte, len(verts)*4)
	for i, v := range verts {
		binary.LittleEndian.PutUint32(data[i*4:], math.Float32bits(v))
	}
	return data
}

// angleUniform returns the per-frame rotation angle as a float uniform
// padded to the declared block size.
func angleUniform(frame int) []byte {
	data := make([]byte, 4)
	angle := float32(frame) * 0.1
	binary.LittleEndian.PutUint32(data, math.Float32bits(angle))
	return data
}

func triangleShader() *gfx.ShaderDesc {
	return &gfx.ShaderDesc{
		Lang: gfx.ShaderLangWGSL,
		Attrs: []gfx.VertexAttr{
			{Name: "position", Format: gfx.VertexFormatFloat2},
			{Name: "color", Format: gfx.VertexFormatFloat4},
		},
		VS: gfx.StageDesc{
			Entry: "vs_main",
			UniformBlocks: []gfx.UniformBlockDesc{{
				Uniforms: []gfx.UniformDesc{{Name: "angle", Type: gfx.UniformTypeFloat}},
			}},
			Source: `
struct Params { angle: f32 }
@group(0) @binding(0) var<uniform> params: Params;

struct VSOut {
    @builtin(position) pos: vec4<f32>,
    @location(0) color: vec4<f32>,
}

@vertex
fn vs_main(@location(0) position: vec2<f32>, @location(1) color: vec4<f32>) -> VSOut {
    let c = cos(params.angle);
    let s = sin(params.angle);
    var out: VSOut;
    out.pos = vec4<f32>(position.x * c - position.y * s, position.x * s + position.y * c, 0.0, 1.0);
    out.color = color;
    return out;
}
`,
		},
		FS: gfx.StageDesc{
			Entry: "fs_main",
			Source: `
@fragment
fn fs_main(@location(0) color: vec4<f32>) -> @location(0) vec4<f32> {
    return color;
}
`,
		},
	}
}
