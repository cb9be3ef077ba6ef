package gfx

import (
	"fmt"
	"log/slog"

	"github.com/gogpu/gfx/internal/pool"
)

// Resource payloads. A payload exists only while its slot is valid; it
// owns the backend-side object named by native.

type bufferRes struct {
	native NativeID
	size   int
	typ    BufferType
	usage  Usage
}

type imageRes struct {
	native       NativeID
	typ          ImageType
	width        int
	height       int
	usage        Usage
	renderTarget bool
	format       PixelFormat
	sampleCount  int
}

// stageInfo is the validator's digest of one shader stage: the declared
// uniform block byte sizes and the number of image slots the stage
// samples. The state cache snapshots it when a draw state is accepted.
type stageInfo struct {
	numUniformBlocks int
	ubSizes          [MaxShaderStageUBs]int
	numImages        int
}

type shaderRes struct {
	native   NativeID
	numAttrs int
	stages   [shaderStageCount]stageInfo
}

type pipelineRes struct {
	native     NativeID
	shader     Shader
	indexType  IndexType
	usesLayout [MaxShaderStageBuffers]bool
}

type passRes struct {
	native       NativeID
	numColor     int
	color        [MaxColorAttachments]Image
	depthStencil Image
}

// Context owns the five resource pools, the render state cache, and the
// backend they drive. It replaces the process-wide current context of
// classic stateful graphics APIs with an explicit value: create one with
// New, release it with Close.
//
// A Context is single-threaded by contract. All resource and frame
// operations must run on the thread that owns it; the split Alloc/Init
// resource path exists to interleave with asynchronous content loading,
// not to enable cross-thread access.
type Context struct {
	backend Backend
	desc    Desc
	valid   bool

	buffers   *pool.Pool[bufferRes]
	images    *pool.Pool[imageRes]
	shaders   *pool.Pool[shaderRes]
	pipelines *pool.Pool[pipelineRes]
	passes    *pool.Pool[passRes]

	// cache and frame are the per-frame control surface; the commands
	// that mutate them live in frame.go.
	cache stateCache
	frame FrameStats
}

// New creates a Context for the given configuration. A nil desc and any
// zero field fall back to DefaultDesc. When no WithBackend option is
// supplied the Context drives a HeadlessBackend.
func New(desc *Desc, opts ...Option) (*Context, error) {
	cfg := DefaultDesc()
	if desc != nil {
		cfg = desc.withDefaults()
	}

	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	b := o.backend
	if b == nil {
		b = NewHeadlessBackend()
	}

	c := &Context{backend: b, desc: cfg}

	var err error
	if c.buffers, err = pool.New[bufferRes](cfg.BufferPoolSize); err != nil {
		return nil, fmt.Errorf("gfx: buffer pool: %w", err)
	}
	if c.images, err = pool.New[imageRes](cfg.ImagePoolSize); err != nil {
		return nil, fmt.Errorf("gfx: image pool: %w", err)
	}
	if c.shaders, err = pool.New[shaderRes](cfg.ShaderPoolSize); err != nil {
		return nil, fmt.Errorf("gfx: shader pool: %w", err)
	}
	if c.pipelines, err = pool.New[pipelineRes](cfg.PipelinePoolSize); err != nil {
		return nil, fmt.Errorf("gfx: pipeline pool: %w", err)
	}
	if c.passes, err = pool.New[passRes](cfg.PassPoolSize); err != nil {
		return nil, fmt.Errorf("gfx: pass pool: %w", err)
	}

	if err := b.Setup(&cfg); err != nil {
		return nil, fmt.Errorf("gfx: backend %q setup: %w", b.Name(), err)
	}

	c.valid = true
	Logger().Info("gfx: context created",
		slog.String("backend", b.Name()),
		slog.Int("width", cfg.Width),
		slog.Int("height", cfg.Height),
		slog.Int("samples", cfg.SampleCount))
	return c, nil
}

// Close destroys every resource still alive, shuts the backend down, and
// invalidates the Context. Close is idempotent.
func (c *Context) Close() {
	if !c.valid {
		return
	}
	c.passes.Each(func(id uint32, _ pool.State) { c.DestroyPass(Pass(id)) })
	c.pipelines.Each(func(id uint32, _ pool.State) { c.DestroyPipeline(Pipeline(id)) })
	c.shaders.Each(func(id uint32, _ pool.State) { c.DestroyShader(Shader(id)) })
	c.images.Each(func(id uint32, _ pool.State) { c.DestroyImage(Image(id)) })
	c.buffers.Each(func(id uint32, _ pool.State) { c.DestroyBuffer(Buffer(id)) })
	c.backend.Shutdown()
	c.valid = false
	Logger().Info("gfx: context closed")
}

// IsValid reports whether New has completed and Close has not yet run.
func (c *Context) IsValid() bool { return c != nil && c.valid }

// Desc returns the effective setup configuration, with defaults applied.
func (c *Context) Desc() Desc { return c.desc }

// QueryFeature reports whether the backend supports an optional feature.
func (c *Context) QueryFeature(f Feature) bool {
	return c.valid && c.backend.Feature(f)
}

// --- Buffers ---

// AllocBuffer reserves a buffer handle without initializing it, for
// asynchronous construction. It returns InvalidID when the pool is
// exhausted or the context is not initialized; exhaustion is a soft
// failure by design.
func (c *Context) AllocBuffer() Buffer {
	if !c.valid {
		return InvalidID
	}
	id := c.buffers.Alloc()
	if id == pool.InvalidID {
		Logger().Warn("gfx: buffer pool exhausted")
	}
	return Buffer(id)
}

// InitBuffer completes construction of an allocated buffer handle.
// Descriptor violations are returned as errors and leave the slot in the
// failed state; a backend construction failure is a soft failure that
// also leaves the slot failed but returns nil.
func (c *Context) InitBuffer(buf Buffer, desc *BufferDesc) error {
	if !c.valid {
		return ErrNotInitialized
	}
	if desc == nil {
		return ErrNilDescriptor
	}
	id := uint32(buf)
	if c.buffers.State(id) != pool.StateAlloc {
		return fmt.Errorf("%w: buffer %#x", ErrInvalidHandle, id)
	}

	size, err := desc.validate()
	if err != nil {
		c.buffers.Fail(id)
		return err
	}

	native, err := c.backend.CreateBuffer(desc, size)
	if err != nil {
		c.buffers.Fail(id)
		Logger().Warn("gfx: buffer creation failed", slog.String("error", err.Error()))
		return nil
	}
	c.buffers.Init(id, bufferRes{
		native: native,
		size:   size,
		typ:    desc.Type,
		usage:  desc.Usage,
	})
	return nil
}

// MakeBuffer allocates and initializes a buffer in one step. It always
// returns a handle: on pool exhaustion the invalid sentinel, on
// initialization failure a handle in the failed state. The caller can
// query the outcome later.
func (c *Context) MakeBuffer(desc *BufferDesc) (Buffer, error) {
	if !c.valid {
		return InvalidID, ErrNotInitialized
	}
	if desc == nil {
		return InvalidID, ErrNilDescriptor
	}
	buf := c.AllocBuffer()
	if buf == InvalidID {
		return InvalidID, nil
	}
	return buf, c.InitBuffer(buf, desc)
}

// DestroyBuffer releases the buffer and reclaims its slot. Invalid,
// stale, and already-destroyed handles are ignored.
func (c *Context) DestroyBuffer(buf Buffer) {
	if !c.valid {
		return
	}
	if res, ok := c.buffers.Release(uint32(buf)); ok && res.native != 0 {
		c.backend.DestroyBuffer(res.native)
	}
}

// QueryBufferState returns the lifecycle state of a buffer handle.
// Invalid and stale handles report ResourceStateInitial.
func (c *Context) QueryBufferState(buf Buffer) ResourceState {
	if !c.valid {
		return ResourceStateInitial
	}
	return ResourceState(c.buffers.State(uint32(buf)))
}

// UpdateBuffer replaces the contents of a dynamic or stream buffer.
// Updating an immutable buffer or writing past the buffer's size is a
// usage violation; referencing a handle that is not valid is silently
// ignored.
func (c *Context) UpdateBuffer(buf Buffer, data []byte) error {
	if !c.valid {
		return ErrNotInitialized
	}
	res := c.buffers.Lookup(uint32(buf))
	if res == nil {
		return nil
	}
	if !res.usage.Mutable() {
		return ErrImmutableResource
	}
	if len(data) > res.size {
		return fmt.Errorf("%w: %d bytes into %d-byte buffer", ErrUpdateOutOfRange, len(data), res.size)
	}
	c.backend.UpdateBuffer(res.native, data)
	return nil
}

// --- Images ---

// AllocImage reserves an image handle without initializing it. See
// AllocBuffer for the exhaustion contract.
func (c *Context) AllocImage() Image {
	if !c.valid {
		return InvalidID
	}
	id := c.images.Alloc()
	if id == pool.InvalidID {
		Logger().Warn("gfx: image pool exhausted")
	}
	return Image(id)
}

// InitImage completes construction of an allocated image handle.
func (c *Context) InitImage(img Image, desc *ImageDesc) error {
	if !c.valid {
		return ErrNotInitialized
	}
	if desc == nil {
		return ErrNilDescriptor
	}
	id := uint32(img)
	if c.images.State(id) != pool.StateAlloc {
		return fmt.Errorf("%w: image %#x", ErrInvalidHandle, id)
	}

	if err := desc.validate(); err != nil {
		c.images.Fail(id)
		return err
	}
	norm := desc.normalized()

	if norm.SampleCount > 1 && !c.backend.Feature(FeatureMSAARenderTargets) {
		c.images.Fail(id)
		Logger().Warn("gfx: MSAA render targets unavailable")
		return nil
	}

	native, err := c.backend.CreateImage(&norm)
	if err != nil {
		c.images.Fail(id)
		Logger().Warn("gfx: image creation failed", slog.String("error", err.Error()))
		return nil
	}
	c.images.Init(id, imageRes{
		native:       native,
		typ:          norm.Type,
		width:        norm.Width,
		height:       norm.Height,
		usage:        norm.Usage,
		renderTarget: norm.RenderTarget,
		format:       norm.Format,
		sampleCount:  norm.SampleCount,
	})
	return nil
}

// MakeImage allocates and initializes an image in one step.
func (c *Context) MakeImage(desc *ImageDesc) (Image, error) {
	if !c.valid {
		return InvalidID, ErrNotInitialized
	}
	if desc == nil {
		return InvalidID, ErrNilDescriptor
	}
	img := c.AllocImage()
	if img == InvalidID {
		return InvalidID, nil
	}
	return img, c.InitImage(img, desc)
}

// DestroyImage releases the image and reclaims its slot.
func (c *Context) DestroyImage(img Image) {
	if !c.valid {
		return
	}
	if res, ok := c.images.Release(uint32(img)); ok && res.native != 0 {
		c.backend.DestroyImage(res.native)
	}
}

// QueryImageState returns the lifecycle state of an image handle.
func (c *Context) QueryImageState(img Image) ResourceState {
	if !c.valid {
		return ResourceStateInitial
	}
	return ResourceState(c.images.State(uint32(img)))
}

// UpdateImage replaces pixel content of a dynamic or stream image. A nil
// desc targets the full extent of mip level 0.
func (c *Context) UpdateImage(img Image, data []byte, desc *UpdateImageDesc) error {
	if !c.valid {
		return ErrNotInitialized
	}
	res := c.images.Lookup(uint32(img))
	if res == nil {
		return nil
	}
	if !res.usage.Mutable() {
		return ErrImmutableResource
	}
	region := UpdateImageDesc{Width: res.width, Height: res.height}
	if desc != nil {
		region = *desc
		if region.Width == 0 {
			region.Width = res.width
		}
		if region.Height == 0 {
			region.Height = res.height
		}
	}
	if region.Width > res.width || region.Height > res.height {
		return fmt.Errorf("%w: %dx%d region into %dx%d image",
			ErrUpdateOutOfRange, region.Width, region.Height, res.width, res.height)
	}
	c.backend.UpdateImage(res.native, data, &region)
	return nil
}

// --- Shaders ---

// AllocShader reserves a shader handle without initializing it.
func (c *Context) AllocShader() Shader {
	if !c.valid {
		return InvalidID
	}
	id := c.shaders.Alloc()
	if id == pool.InvalidID {
		Logger().Warn("gfx: shader pool exhausted")
	}
	return Shader(id)
}

// InitShader completes construction of an allocated shader handle. The
// declared uniform blocks are digested into per-stage byte sizes that
// ApplyUniformBlock later enforces exactly.
func (c *Context) InitShader(shd Shader, desc *ShaderDesc) error {
	if !c.valid {
		return ErrNotInitialized
	}
	if desc == nil {
		return ErrNilDescriptor
	}
	id := uint32(shd)
	if c.shaders.State(id) != pool.StateAlloc {
		return fmt.Errorf("%w: shader %#x", ErrInvalidHandle, id)
	}

	if err := desc.validate(); err != nil {
		c.shaders.Fail(id)
		return err
	}

	native, err := c.backend.CreateShader(desc)
	if err != nil {
		c.shaders.Fail(id)
		Logger().Warn("gfx: shader creation failed", slog.String("error", err.Error()))
		return nil
	}

	res := shaderRes{native: native, numAttrs: len(desc.Attrs)}
	for stage, sd := range [shaderStageCount]*StageDesc{&desc.VS, &desc.FS} {
		info := &res.stages[stage]
		info.numUniformBlocks = len(sd.UniformBlocks)
		for slot := range sd.UniformBlocks {
			info.ubSizes[slot] = sd.UniformBlocks[slot].ByteSize()
		}
		info.numImages = len(sd.Images)
	}
	c.shaders.Init(id, res)
	return nil
}

// MakeShader allocates and initializes a shader in one step.
func (c *Context) MakeShader(desc *ShaderDesc) (Shader, error) {
	if !c.valid {
		return InvalidID, ErrNotInitialized
	}
	if desc == nil {
		return InvalidID, ErrNilDescriptor
	}
	shd := c.AllocShader()
	if shd == InvalidID {
		return InvalidID, nil
	}
	return shd, c.InitShader(shd, desc)
}

// DestroyShader releases the shader and reclaims its slot.
func (c *Context) DestroyShader(shd Shader) {
	if !c.valid {
		return
	}
	if res, ok := c.shaders.Release(uint32(shd)); ok && res.native != 0 {
		c.backend.DestroyShader(res.native)
	}
}

// QueryShaderState returns the lifecycle state of a shader handle.
func (c *Context) QueryShaderState(shd Shader) ResourceState {
	if !c.valid {
		return ResourceStateInitial
	}
	return ResourceState(c.shaders.State(uint32(shd)))
}

// --- Pipelines ---

// AllocPipeline reserves a pipeline handle without initializing it.
func (c *Context) AllocPipeline() Pipeline {
	if !c.valid {
		return InvalidID
	}
	id := c.pipelines.Alloc()
	if id == pool.InvalidID {
		Logger().Warn("gfx: pipeline pool exhausted")
	}
	return Pipeline(id)
}

// InitPipeline completes construction of an allocated pipeline handle.
// The referenced shader must be valid at this point.
func (c *Context) InitPipeline(pip Pipeline, desc *PipelineDesc) error {
	if !c.valid {
		return ErrNotInitialized
	}
	if desc == nil {
		return ErrNilDescriptor
	}
	id := uint32(pip)
	if c.pipelines.State(id) != pool.StateAlloc {
		return fmt.Errorf("%w: pipeline %#x", ErrInvalidHandle, id)
	}

	if err := desc.validate(); err != nil {
		c.pipelines.Fail(id)
		return err
	}
	shd := c.shaders.Lookup(uint32(desc.Shader))
	if shd == nil {
		c.pipelines.Fail(id)
		return fmt.Errorf("%w: pipeline shader not valid", ErrInvalidDescriptor)
	}

	native, err := c.backend.CreatePipeline(desc, shd.native)
	if err != nil {
		c.pipelines.Fail(id)
		Logger().Warn("gfx: pipeline creation failed", slog.String("error", err.Error()))
		return nil
	}

	res := pipelineRes{native: native, shader: desc.Shader, indexType: desc.IndexType}
	for slot := range desc.Layouts {
		res.usesLayout[slot] = len(desc.Layouts[slot].Attrs) > 0
	}
	c.pipelines.Init(id, res)
	return nil
}

// MakePipeline allocates and initializes a pipeline in one step.
func (c *Context) MakePipeline(desc *PipelineDesc) (Pipeline, error) {
	if !c.valid {
		return InvalidID, ErrNotInitialized
	}
	if desc == nil {
		return InvalidID, ErrNilDescriptor
	}
	pip := c.AllocPipeline()
	if pip == InvalidID {
		return InvalidID, nil
	}
	return pip, c.InitPipeline(pip, desc)
}

// DestroyPipeline releases the pipeline and reclaims its slot.
func (c *Context) DestroyPipeline(pip Pipeline) {
	if !c.valid {
		return
	}
	if res, ok := c.pipelines.Release(uint32(pip)); ok && res.native != 0 {
		c.backend.DestroyPipeline(res.native)
	}
}

// QueryPipelineState returns the lifecycle state of a pipeline handle.
func (c *Context) QueryPipelineState(pip Pipeline) ResourceState {
	if !c.valid {
		return ResourceStateInitial
	}
	return ResourceState(c.pipelines.State(uint32(pip)))
}

// --- Passes ---

// AllocPass reserves a pass handle without initializing it.
func (c *Context) AllocPass() Pass {
	if !c.valid {
		return InvalidID
	}
	id := c.passes.Alloc()
	if id == pool.InvalidID {
		Logger().Warn("gfx: pass pool exhausted")
	}
	return Pass(id)
}

// InitPass completes construction of an allocated pass handle. Every
// referenced attachment must be a valid render-target image.
func (c *Context) InitPass(pass Pass, desc *PassDesc) error {
	if !c.valid {
		return ErrNotInitialized
	}
	if desc == nil {
		return ErrNilDescriptor
	}
	id := uint32(pass)
	if c.passes.State(id) != pool.StateAlloc {
		return fmt.Errorf("%w: pass %#x", ErrInvalidHandle, id)
	}

	if err := desc.validate(); err != nil {
		c.passes.Fail(id)
		return err
	}

	var color [MaxColorAttachments]NativeID
	numColor := desc.numColorAttachments()
	for i := 0; i < numColor; i++ {
		img := c.images.Lookup(uint32(desc.ColorAttachments[i].Image))
		if img == nil || !img.renderTarget {
			c.passes.Fail(id)
			return fmt.Errorf("%w: color attachment %d is not a valid render target",
				ErrInvalidDescriptor, i)
		}
		color[i] = img.native
	}
	var depthStencil NativeID
	if ds := desc.DepthStencilAttachment.Image; ds != InvalidID {
		img := c.images.Lookup(uint32(ds))
		if img == nil || !img.renderTarget {
			c.passes.Fail(id)
			return fmt.Errorf("%w: depth/stencil attachment is not a valid render target",
				ErrInvalidDescriptor)
		}
		depthStencil = img.native
	}

	native, err := c.backend.CreatePass(desc, color, depthStencil)
	if err != nil {
		c.passes.Fail(id)
		Logger().Warn("gfx: pass creation failed", slog.String("error", err.Error()))
		return nil
	}

	res := passRes{native: native, numColor: numColor, depthStencil: desc.DepthStencilAttachment.Image}
	for i := 0; i < numColor; i++ {
		res.color[i] = desc.ColorAttachments[i].Image
	}
	c.passes.Init(id, res)
	return nil
}

// MakePass allocates and initializes a pass in one step.
func (c *Context) MakePass(desc *PassDesc) (Pass, error) {
	if !c.valid {
		return InvalidID, ErrNotInitialized
	}
	if desc == nil {
		return InvalidID, ErrNilDescriptor
	}
	pass := c.AllocPass()
	if pass == InvalidID {
		return InvalidID, nil
	}
	return pass, c.InitPass(pass, desc)
}

// DestroyPass releases the pass and reclaims its slot. The attachment
// images are not destroyed; they belong to their own pool.
func (c *Context) DestroyPass(pass Pass) {
	if !c.valid {
		return
	}
	if res, ok := c.passes.Release(uint32(pass)); ok && res.native != 0 {
		c.backend.DestroyPass(res.native)
	}
}

// QueryPassState returns the lifecycle state of a pass handle.
func (c *Context) QueryPassState(pass Pass) ResourceState {
	if !c.valid {
		return ResourceStateInitial
	}
	return ResourceState(c.passes.State(uint32(pass)))
}
