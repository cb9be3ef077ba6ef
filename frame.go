package gfx

import (
	"fmt"
	"log/slog"
)

// stateCache is the validator's record of what is currently bound. It
// lives for the duration of a pass: EndPass and ResetStateCache clear
// it, and every ApplyDrawState rebuilds it from resolved handles.
type stateCache struct {
	insidePass bool

	// passValid is false when the active pass handle failed to resolve;
	// commands inside such a pass are counted and dropped.
	passValid bool
	curPass   Pass

	pipeline      Pipeline
	pipelineValid bool

	// stages snapshots the bound pipeline's shader digest so uniform
	// updates validate without another pool lookup.
	stages [shaderStageCount]stageInfo

	vertexBuffers [MaxShaderStageBuffers]Buffer
	indexBuffer   Buffer
	vsImages      [MaxShaderStageImages]Image
	fsImages      [MaxShaderStageImages]Image

	viewport Rect
	scissor  Rect
}

// clearBindings drops everything except the pass bookkeeping. Used by
// ResetStateCache, which may run mid-pass.
func (s *stateCache) clearBindings() {
	s.pipeline = InvalidID
	s.pipelineValid = false
	s.stages = [shaderStageCount]stageInfo{}
	s.vertexBuffers = [MaxShaderStageBuffers]Buffer{}
	s.indexBuffer = InvalidID
	s.vsImages = [MaxShaderStageImages]Image{}
	s.fsImages = [MaxShaderStageImages]Image{}
}

// FrameStats counts the frame commands accepted and dropped since the
// last Commit. The dropped counters are the observable side channel of
// the silent-drop policy: they never influence control flow.
type FrameStats struct {
	Passes        int
	DrawStates    int
	UniformBlocks int
	Draws         int

	DroppedPasses        int
	DroppedDrawStates    int
	DroppedUniformBlocks int
	DroppedDraws         int
}

// FrameStats returns the counters of the frame in progress.
func (c *Context) FrameStats() FrameStats { return c.frame }

// BeginDefaultPass begins rendering to the default (swapchain)
// framebuffer. Equivalent to BeginPass with the invalid sentinel handle.
func (c *Context) BeginDefaultPass(action *PassAction, width, height int) error {
	return c.BeginPass(InvalidID, action, width, height)
}

// BeginPass begins a render pass. The zero pass handle selects the
// default framebuffer; any other handle is resolved through the pass
// pool, and a handle that is not valid turns the whole pass into a
// counted no-op (its draws are dropped, EndPass still closes it).
//
// A nil action applies DefaultPassAction. Viewport and scissor are reset
// to cover the full target. Calling BeginPass while a pass is already
// active is a protocol violation.
func (c *Context) BeginPass(pass Pass, action *PassAction, width, height int) error {
	if !c.valid {
		return ErrNotInitialized
	}
	if c.cache.insidePass {
		return ErrPassActive
	}
	if width <= 0 || height <= 0 {
		return fmt.Errorf("%w: pass size %dx%d", ErrInvalidDescriptor, width, height)
	}

	act := DefaultPassAction()
	if action != nil {
		act = *action
	}

	c.cache.insidePass = true
	c.cache.curPass = pass
	c.cache.pipelineValid = false
	c.cache.viewport = Rect{0, 0, width, height}
	c.cache.scissor = Rect{0, 0, width, height}

	native := NativeID(0)
	if pass != InvalidID {
		res := c.passes.Lookup(uint32(pass))
		if res == nil {
			c.cache.passValid = false
			c.frame.DroppedPasses++
			Logger().Debug("gfx: begin pass dropped", slog.Uint64("pass", uint64(pass)))
			return nil
		}
		native = res.native
	}
	c.cache.passValid = true
	c.frame.Passes++
	c.backend.BeginPass(native, &act, width, height)
	return nil
}

// ApplyViewport sets the viewport rectangle. Valid only inside a pass.
func (c *Context) ApplyViewport(x, y, width, height int, originTopLeft bool) error {
	if !c.valid {
		return ErrNotInitialized
	}
	if !c.cache.insidePass {
		return ErrNoActivePass
	}
	c.cache.viewport = Rect{x, y, width, height}
	if c.cache.passValid {
		c.backend.ApplyViewport(x, y, width, height, originTopLeft)
	}
	return nil
}

// ApplyScissorRect sets the scissor rectangle. Valid only inside a pass.
func (c *Context) ApplyScissorRect(x, y, width, height int, originTopLeft bool) error {
	if !c.valid {
		return ErrNotInitialized
	}
	if !c.cache.insidePass {
		return ErrNoActivePass
	}
	c.cache.scissor = Rect{x, y, width, height}
	if c.cache.passValid {
		c.backend.ApplyScissorRect(x, y, width, height, originTopLeft)
	}
	return nil
}

// ApplyDrawState resolves and binds a draw state for subsequent Draw
// calls. Every referenced handle is resolved through its pool; if any
// resource is not valid, a buffer's declared type does not match its
// slot, or the bindings do not satisfy what the pipeline's shader
// declares, the draw state is rejected: the cached pipeline is cleared,
// the rejection is counted, and the call returns nil.
func (c *Context) ApplyDrawState(ds *DrawState) error {
	if !c.valid {
		return ErrNotInitialized
	}
	if !c.cache.insidePass {
		return ErrNoActivePass
	}
	if ds == nil {
		return ErrNilDescriptor
	}

	// Any rejection below leaves the cache with no valid pipeline, so
	// later draws and uniform updates drop.
	c.cache.clearBindings()
	if !c.cache.passValid {
		c.frame.DroppedDrawStates++
		return nil
	}

	pip := c.pipelines.Lookup(uint32(ds.Pipeline))
	if pip == nil {
		c.dropDrawState("pipeline not valid", ds.Pipeline)
		return nil
	}
	shd := c.shaders.Lookup(uint32(pip.shader))
	if shd == nil {
		c.dropDrawState("pipeline shader destroyed", ds.Pipeline)
		return nil
	}

	var bind NativeBindings
	bind.IndexType = pip.indexType

	for slot := range ds.VertexBuffers {
		h := ds.VertexBuffers[slot]
		if h == InvalidID {
			if pip.usesLayout[slot] {
				c.dropDrawState("vertex buffer slot unbound", ds.Pipeline)
				return nil
			}
			continue
		}
		buf := c.buffers.Lookup(uint32(h))
		if buf == nil {
			c.dropDrawState("vertex buffer not valid", ds.Pipeline)
			return nil
		}
		if buf.typ != BufferTypeVertex {
			c.dropDrawState("index buffer bound to vertex slot", ds.Pipeline)
			return nil
		}
		bind.VertexBuffers[slot] = buf.native
	}

	if pip.indexType != IndexTypeNone {
		buf := c.buffers.Lookup(uint32(ds.IndexBuffer))
		if buf == nil {
			c.dropDrawState("index buffer not valid", ds.Pipeline)
			return nil
		}
		if buf.typ != BufferTypeIndex {
			c.dropDrawState("vertex buffer bound as index buffer", ds.Pipeline)
			return nil
		}
		bind.IndexBuffer = buf.native
	} else if ds.IndexBuffer != InvalidID {
		c.dropDrawState("index buffer bound to non-indexed pipeline", ds.Pipeline)
		return nil
	}

	type stageImages struct {
		stage  ShaderStage
		bound  *[MaxShaderStageImages]Image
		native *[MaxShaderStageImages]NativeID
	}
	for _, si := range []stageImages{
		{ShaderStageVS, &ds.VSImages, &bind.VSImages},
		{ShaderStageFS, &ds.FSImages, &bind.FSImages},
	} {
		need := shd.stages[si.stage].numImages
		for slot := 0; slot < MaxShaderStageImages; slot++ {
			h := si.bound[slot]
			if h == InvalidID {
				if slot < need {
					c.dropDrawState("shader image slot unbound", ds.Pipeline)
					return nil
				}
				continue
			}
			img := c.images.Lookup(uint32(h))
			if img == nil {
				c.dropDrawState("image not valid", ds.Pipeline)
				return nil
			}
			si.native[slot] = img.native
		}
	}

	c.cache.pipeline = ds.Pipeline
	c.cache.pipelineValid = true
	c.cache.stages = shd.stages
	c.cache.vertexBuffers = ds.VertexBuffers
	c.cache.indexBuffer = ds.IndexBuffer
	c.cache.vsImages = ds.VSImages
	c.cache.fsImages = ds.FSImages

	c.frame.DrawStates++
	c.backend.ApplyPipeline(pip.native)
	c.backend.ApplyBindings(&bind)
	return nil
}

func (c *Context) dropDrawState(reason string, pip Pipeline) {
	c.frame.DroppedDrawStates++
	Logger().Debug("gfx: draw state dropped",
		slog.String("reason", reason),
		slog.Uint64("pipeline", uint64(pip)))
}

// ApplyUniformBlock uploads uniform data for one block of the active
// pipeline's shader. The byte length must equal the block's declared
// size exactly; a mismatch is rejected without touching the bound state.
// Stage and slot arguments outside their fixed ranges are contract
// violations.
func (c *Context) ApplyUniformBlock(stage ShaderStage, slot int, data []byte) error {
	if !c.valid {
		return ErrNotInitialized
	}
	if !c.cache.insidePass {
		return ErrNoActivePass
	}
	if stage >= shaderStageCount {
		return fmt.Errorf("%w: shader stage %d", ErrSlotOutOfRange, stage)
	}
	if slot < 0 || slot >= MaxShaderStageUBs {
		return fmt.Errorf("%w: uniform block slot %d (max %d)",
			ErrSlotOutOfRange, slot, MaxShaderStageUBs-1)
	}
	if !c.cache.pipelineValid {
		c.frame.DroppedUniformBlocks++
		return nil
	}
	info := &c.cache.stages[stage]
	if slot >= info.numUniformBlocks || len(data) != info.ubSizes[slot] {
		c.frame.DroppedUniformBlocks++
		Logger().Debug("gfx: uniform block dropped",
			slog.String("stage", stage.String()),
			slog.Int("slot", slot),
			slog.Int("size", len(data)),
			slog.Int("declared", info.ubSizes[slot]))
		return nil
	}
	c.frame.UniformBlocks++
	c.backend.ApplyUniformBlock(stage, slot, data)
	return nil
}

// Draw draws primitives with the bound draw state. Without a valid
// cached pipeline the call is a counted no-op.
func (c *Context) Draw(baseElement, numElements, numInstances int) error {
	if !c.valid {
		return ErrNotInitialized
	}
	if !c.cache.insidePass {
		return ErrNoActivePass
	}
	if baseElement < 0 || numElements < 0 || numInstances < 0 {
		return ErrInvalidDrawCall
	}
	if !c.cache.passValid || !c.cache.pipelineValid {
		c.frame.DroppedDraws++
		return nil
	}
	c.frame.Draws++
	c.backend.Draw(baseElement, numElements, numInstances)
	return nil
}

// EndPass ends the active pass, triggering any multisample resolve the
// backend requires, and implicitly resets the state cache.
func (c *Context) EndPass() error {
	if !c.valid {
		return ErrNotInitialized
	}
	if !c.cache.insidePass {
		return ErrNoActivePass
	}
	if c.cache.passValid {
		c.backend.EndPass()
	}
	c.cache = stateCache{}
	return nil
}

// Commit marks the end of the frame: the backend presents/flushes and
// the per-frame counters reset. Persistent resource state is untouched.
// Calling Commit with a pass still active is a protocol violation.
func (c *Context) Commit() error {
	if !c.valid {
		return ErrNotInitialized
	}
	if c.cache.insidePass {
		return ErrPassActive
	}
	c.backend.Commit()
	c.frame = FrameStats{}
	return nil
}

// ResetStateCache forcibly clears all cached bindings and tells the
// backend to invalidate whatever native state it caches. Call it after
// external code may have mutated backend-global state outside this API.
// Inside a pass only the bindings are cleared; the pass itself stays
// active.
func (c *Context) ResetStateCache() {
	if !c.valid {
		return
	}
	c.cache.clearBindings()
	c.backend.ResetStateCache()
}
