package gfx

import "github.com/gogpu/gfx/internal/pool"

// Resource handles
//
// These opaque 32-bit ids name resources held by a Context. Each packs a
// pool slot index and a generation counter; the zero value is the
// universal invalid handle. Handles are never raw pointers and stay
// meaningful (as "stale") after their resource is destroyed.

// Buffer is an opaque handle to a vertex or index buffer.
type Buffer uint32

// Image is an opaque handle to a texture or render target.
type Image uint32

// Shader is an opaque handle to a vertex/fragment shader pair.
type Shader uint32

// Pipeline is an opaque handle to a pipeline state object.
type Pipeline uint32

// Pass is an opaque handle to a render pass.
type Pass uint32

// InvalidID is the zero handle value, representing an invalid/null
// resource. Passed as a Pass to BeginPass it selects the default
// (swapchain) render target; this dual meaning is part of the contract.
const InvalidID = 0

// Fixed limits, shared by descriptor validation and the state cache.
const (
	// MaxColorAttachments is the number of color attachments a pass can hold.
	MaxColorAttachments = 4

	// MaxShaderStageBuffers is the number of vertex buffer bind slots.
	MaxShaderStageBuffers = 4

	// MaxShaderStageImages is the number of image bind slots per stage.
	MaxShaderStageImages = 12

	// MaxShaderStageUBs is the number of uniform block slots per stage.
	MaxShaderStageUBs = 4

	// MaxUniforms is the number of uniforms a single block can declare.
	MaxUniforms = 16

	// MaxVertexAttributes is the number of attributes a shader or vertex
	// layout can declare.
	MaxVertexAttributes = 16
)

// ResourceState is the lifecycle state of a resource slot.
//
// Resources start in ResourceStateInitial (slot unoccupied). Allocation
// moves them to ResourceStateAlloc, initialization to ResourceStateValid
// or ResourceStateFailed, and destruction back to ResourceStateInitial.
// Any render command referencing a resource that is not valid is dropped
// silently.
type ResourceState uint8

// Resource lifecycle states.
const (
	ResourceStateInitial ResourceState = ResourceState(pool.StateInitial)
	ResourceStateAlloc   ResourceState = ResourceState(pool.StateAlloc)
	ResourceStateValid   ResourceState = ResourceState(pool.StateValid)
	ResourceStateFailed  ResourceState = ResourceState(pool.StateFailed)
)

// String returns the state name for diagnostics.
func (s ResourceState) String() string { return pool.State(s).String() }

// NativeID is an opaque backend-side resource identifier. Backends hand
// these out from their Create calls and resolve them on every forwarded
// command; 0 is invalid. The core never interprets a NativeID.
type NativeID uint64

// Rect is a viewport or scissor rectangle in framebuffer pixels.
type Rect struct {
	X, Y, W, H int
}
