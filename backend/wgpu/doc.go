// Package wgpu provides a gfx backend that renders through wgpu/hal.
//
// The backend compiles WGSL shaders to SPIR-V via gogpu/naga and drives
// a hal.Device directly. It registers itself under the name "wgpu":
//
//	import _ "github.com/gogpu/gfx/backend/wgpu"
//
//	ctx, err := backend.NewContext(nil)
//
// Without a shared device the backend opens its own Vulkan adapter on
// Setup. To render into an existing application device (for example one
// owned by a gogpu window), construct the backend explicitly:
//
//	b, err := wgpu.NewFromProvider(provider)
//	ctx, err := gfx.New(nil, gfx.WithBackend(b))
//
// The default render target is an offscreen texture in the surface
// format; ReadPixels copies it back for inspection or presentation by
// the embedding application.
package wgpu
