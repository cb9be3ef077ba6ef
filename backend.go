package gfx

// Backend is the native graphics layer a Context drives. The core calls
// a backend only after validation succeeds: every handle in a forwarded
// command has already been resolved against the pools, so backends never
// see stale or wrong-category resources.
//
// Create calls return opaque NativeIDs that the backend later resolves
// on its own; 0 reports a construction failure alongside the error.
// Backends are owned by a single Context and are driven from its thread.
//
// Implementations: the built-in headless backend (this package) and
// backend/wgpu. Pluggable selection goes through the backend registry
// package.
type Backend interface {
	// Name returns the backend identifier (e.g. "headless", "wgpu").
	Name() string

	// Setup initializes the backend for the given configuration.
	// Called once by New before any other method.
	Setup(desc *Desc) error

	// Shutdown releases everything the backend holds. The backend is not
	// used after Shutdown.
	Shutdown()

	// Feature reports whether an optional capability is available.
	Feature(f Feature) bool

	// Resource construction and destruction.
	CreateBuffer(desc *BufferDesc, size int) (NativeID, error)
	DestroyBuffer(id NativeID)
	UpdateBuffer(id NativeID, data []byte)

	CreateImage(desc *ImageDesc) (NativeID, error)
	DestroyImage(id NativeID)
	UpdateImage(id NativeID, data []byte, desc *UpdateImageDesc)

	CreateShader(desc *ShaderDesc) (NativeID, error)
	DestroyShader(id NativeID)

	CreatePipeline(desc *PipelineDesc, shader NativeID) (NativeID, error)
	DestroyPipeline(id NativeID)

	CreatePass(desc *PassDesc, color [MaxColorAttachments]NativeID, depthStencil NativeID) (NativeID, error)
	DestroyPass(id NativeID)

	// Frame commands, forwarded post-validation in protocol order.
	// BeginPass with id 0 targets the default framebuffer.
	BeginPass(id NativeID, action *PassAction, width, height int)
	ApplyViewport(x, y, width, height int, originTopLeft bool)
	ApplyScissorRect(x, y, width, height int, originTopLeft bool)
	ApplyPipeline(id NativeID)
	ApplyBindings(b *NativeBindings)
	ApplyUniformBlock(stage ShaderStage, slot int, data []byte)
	Draw(baseElement, numElements, numInstances int)

	// EndPass ends the active pass, performing any multisample resolve
	// the pass attachments require.
	EndPass()

	// Commit marks the end of a frame and presents/flushes.
	Commit()

	// ResetStateCache invalidates any native state the backend caches.
	// Called when external code may have touched the native API directly.
	ResetStateCache()
}

// NativeBindings carries the resolved resource bindings of an accepted
// draw state. Unused trailing slots are 0.
type NativeBindings struct {
	VertexBuffers [MaxShaderStageBuffers]NativeID
	IndexBuffer   NativeID
	IndexType     IndexType
	VSImages      [MaxShaderStageImages]NativeID
	FSImages      [MaxShaderStageImages]NativeID
}
