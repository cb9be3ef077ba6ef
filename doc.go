// Package gfx provides a declarative GPU resource and render-command
// layer for Go.
//
// # Overview
//
// gfx wraps the stateful, pointer-heavy surface of native 3D APIs in a
// small declarative core: resources are created from plain descriptor
// structs and addressed through opaque generation-checked handles, and
// every render command is validated against cached state before it is
// forwarded to a backend. It is designed to integrate with the GoGPU
// ecosystem.
//
// # Quick Start
//
//	import "github.com/gogpu/gfx"
//
//	ctx, err := gfx.New(nil)
//	if err != nil {
//		log.Fatal(err)
//	}
//	defer ctx.Close()
//
//	vbuf, _ := ctx.MakeBuffer(&gfx.BufferDesc{
//		Type: gfx.BufferTypeVertex,
//		Data: vertices,
//	})
//
//	ctx.BeginDefaultPass(nil, 640, 400)
//	ctx.ApplyDrawState(&gfx.DrawState{
//		Pipeline:      pip,
//		VertexBuffers: [4]gfx.Buffer{vbuf},
//	})
//	ctx.Draw(0, 3, 1)
//	ctx.EndPass()
//	ctx.Commit()
//
// # Handles
//
// Buffers, images, shaders, pipelines and passes live in fixed-capacity
// pools owned by a Context. A handle packs a slot index and a generation
// counter; destroying a resource bumps the generation, so stale handles
// never alias a reused slot. The zero handle is always invalid.
//
// # Error Model
//
// Two failure channels are deliberate and distinct. Contract violations
// (nil descriptors, out-of-range slots, commands outside a pass) return
// typed errors from the Err* family. Runtime conditions that a correct
// program cannot always avoid (exhausted pools, destroyed resources
// still referenced by a draw) never fail the frame: the offending
// command is dropped, counted in FrameStats, and logged at debug level.
//
// # Backends
//
// A Context drives a Backend chosen at creation time. The default is
// HeadlessBackend, which executes no GPU work and is the reference
// backend for tests and CI. The backend/wgpu package renders through
// WebGPU via gogpu/wgpu; the backend package holds the registry that
// selects among them.
package gfx

// Version information
const (
	// Version is the current version of the library
	Version = "0.1.0"
)
