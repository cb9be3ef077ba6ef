package wgpu

import (
	"fmt"
	"time"

	"github.com/gogpu/gfx"
	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
)

// ensureEncoder lazily opens the frame's command encoder.
func (b *Backend) ensureEncoder() error {
	if b.encoder != nil {
		return nil
	}
	enc, err := b.device.CreateCommandEncoder(&hal.CommandEncoderDescriptor{Label: "gfx_frame"})
	if err != nil {
		return fmt.Errorf("wgpu: create command encoder: %w", err)
	}
	if err := enc.BeginEncoding("gfx_frame"); err != nil {
		return fmt.Errorf("wgpu: begin encoding: %w", err)
	}
	b.encoder = enc
	return nil
}

// BeginPass implements gfx.Backend. Pass id 0 targets the default
// framebuffer.
func (b *Backend) BeginPass(id gfx.NativeID, action *gfx.PassAction, width, height int) {
	if err := b.ensureEncoder(); err != nil {
		gfx.Logger().Warn("wgpu: begin pass", "error", err)
		return
	}

	colorViews := []hal.TextureView{b.fbColorView}
	dsView := b.fbDepthView
	if id != 0 {
		b.mu.Lock()
		pass := b.passes[id]
		b.mu.Unlock()
		if pass == nil {
			gfx.Logger().Warn("wgpu: begin pass references unknown pass", "id", id)
			return
		}
		colorViews = pass.colorViews
		dsView = pass.dsView
	}

	attachments := make([]hal.RenderPassColorAttachment, len(colorViews))
	for i, view := range colorViews {
		loadOp, clear := colorLoadOp(action, i)
		attachments[i] = hal.RenderPassColorAttachment{
			View:       view,
			LoadOp:     loadOp,
			StoreOp:    gputypes.StoreOpStore,
			ClearValue: clear,
		}
	}

	desc := &hal.RenderPassDescriptor{
		Label:            "gfx_pass",
		ColorAttachments: attachments,
	}
	if dsView != nil {
		desc.DepthStencilAttachment = &hal.RenderPassDepthStencilAttachment{
			View:              dsView,
			DepthLoadOp:       depthLoadOp(action),
			DepthStoreOp:      gputypes.StoreOpStore,
			DepthClearValue:   action.Depth,
			StencilLoadOp:     stencilLoadOp(action),
			StencilStoreOp:    gputypes.StoreOpStore,
			StencilClearValue: uint32(action.Stencil),
		}
	}

	b.rp = b.encoder.BeginRenderPass(desc)
	b.curPipeline = nil
	b.viewport = [4]int{0, 0, width, height}
	b.scissor = [4]int{0, 0, width, height}
}

// ApplyViewport implements gfx.Backend. The HAL render pass encoder has
// no viewport command; the rectangle is recorded for inspection only.
func (b *Backend) ApplyViewport(x, y, width, height int, originTopLeft bool) {
	_ = originTopLeft
	b.viewport = [4]int{x, y, width, height}
}

// ApplyScissorRect implements gfx.Backend. Recorded, not forwarded,
// like ApplyViewport.
func (b *Backend) ApplyScissorRect(x, y, width, height int, originTopLeft bool) {
	_ = originTopLeft
	b.scissor = [4]int{x, y, width, height}
}

// ApplyPipeline implements gfx.Backend.
func (b *Backend) ApplyPipeline(id gfx.NativeID) {
	if b.rp == nil {
		return
	}
	b.mu.Lock()
	pip := b.pipelines[id]
	b.mu.Unlock()
	if pip == nil {
		gfx.Logger().Warn("wgpu: apply pipeline references unknown pipeline", "id", id)
		return
	}
	b.curPipeline = pip
	b.rp.SetPipeline(pip.pipeline)
	b.rp.SetBindGroup(0, pip.bindGroup, nil)
}

// ApplyBindings implements gfx.Backend. Vertex buffers bind directly;
// the index buffer is recorded because the HAL encoder draws non-indexed.
func (b *Backend) ApplyBindings(bind *gfx.NativeBindings) {
	if b.rp == nil {
		return
	}
	b.mu.Lock()
	for slot, bid := range bind.VertexBuffers {
		if bid == 0 {
			continue
		}
		if res := b.buffers[bid]; res != nil {
			b.rp.SetVertexBuffer(uint32(slot), res.buf, 0)
		}
	}
	b.mu.Unlock()
	b.curIndexBuffer = bind.IndexBuffer
	b.curIndexType = bind.IndexType
}

// ApplyUniformBlock implements gfx.Backend. The data lands in the
// current pipeline's uniform buffer for the stage and slot; the bind
// group set by ApplyPipeline already references it.
func (b *Backend) ApplyUniformBlock(stage gfx.ShaderStage, slot int, data []byte) {
	pip := b.curPipeline
	if pip == nil {
		return
	}
	buf := pip.uniformBufs[pip.ubIndex[stage][slot]]
	if err := b.queue.WriteBuffer(buf, 0, data); err != nil {
		gfx.Logger().Warn("wgpu: uniform update failed", "error", err)
	}
}

// Draw implements gfx.Backend.
func (b *Backend) Draw(baseElement, numElements, numInstances int) {
	if b.rp == nil || b.curPipeline == nil {
		return
	}
	b.rp.Draw(uint32(numElements), uint32(numInstances), uint32(baseElement), 0)
}

// EndPass implements gfx.Backend.
func (b *Backend) EndPass() {
	if b.rp == nil {
		return
	}
	b.rp.End()
	b.rp = nil
	b.curPipeline = nil
}

// Commit implements gfx.Backend. The frame's commands are submitted and
// waited on; rendering is complete when Commit returns.
func (b *Backend) Commit() {
	if b.encoder != nil {
		cmd, err := b.encoder.EndEncoding()
		b.encoder = nil
		if err != nil {
			gfx.Logger().Warn("wgpu: end encoding failed", "error", err)
		} else {
			b.pending = append(b.pending, cmd)
		}
	}
	if len(b.pending) == 0 {
		return
	}
	if err := b.submitAndWait(b.pending); err != nil {
		gfx.Logger().Warn("wgpu: commit failed", "error", err)
	}
	for _, cmd := range b.pending {
		b.device.FreeCommandBuffer(cmd)
	}
	b.pending = b.pending[:0]
}

func (b *Backend) submitAndWait(cmds []hal.CommandBuffer) error {
	fence, err := b.device.CreateFence()
	if err != nil {
		return fmt.Errorf("create fence: %w", err)
	}
	defer b.device.DestroyFence(fence)

	if err := b.queue.Submit(cmds, fence, 1); err != nil {
		return fmt.Errorf("submit: %w", err)
	}
	ok, err := b.device.Wait(fence, 1, 5*time.Second)
	if err != nil {
		return fmt.Errorf("wait: %w", err)
	}
	if !ok {
		return fmt.Errorf("wait: fence timeout")
	}
	return nil
}

// ResetStateCache implements gfx.Backend.
func (b *Backend) ResetStateCache() {
	b.curPipeline = nil
	b.curIndexBuffer = 0
	b.curIndexType = gfx.IndexTypeNone
}

// ReadPixels copies the default framebuffer's color contents into out as
// tightly packed RGBA8 rows. out must hold width*height*4 bytes. Call it
// after Commit; the frame has fully rendered by then.
func (b *Backend) ReadPixels(out []byte) error {
	if b.device == nil {
		return ErrDeviceNotOpen
	}
	w := uint32(b.desc.Width)
	h := uint32(b.desc.Height)
	if len(out) < int(w*h*4) {
		return fmt.Errorf("wgpu: readback buffer too small: %d < %d", len(out), w*h*4)
	}

	// Copy rows at the 256-byte pitch alignment WebGPU requires.
	bytesPerRow := w * 4
	const copyPitchAlignment = 256
	alignedBytesPerRow := (bytesPerRow + copyPitchAlignment - 1) &^ (copyPitchAlignment - 1)
	stagingSize := uint64(alignedBytesPerRow) * uint64(h)

	staging, err := b.device.CreateBuffer(&hal.BufferDescriptor{
		Label: "gfx_readback",
		Size:  stagingSize,
		Usage: gputypes.BufferUsageMapRead | gputypes.BufferUsageCopyDst,
	})
	if err != nil {
		return fmt.Errorf("wgpu: create readback buffer: %w", err)
	}
	defer b.device.DestroyBuffer(staging)

	enc, err := b.device.CreateCommandEncoder(&hal.CommandEncoderDescriptor{Label: "gfx_readback"})
	if err != nil {
		return fmt.Errorf("wgpu: create readback encoder: %w", err)
	}
	if err := enc.BeginEncoding("gfx_readback"); err != nil {
		return fmt.Errorf("wgpu: begin readback encoding: %w", err)
	}

	enc.TransitionTextures([]hal.TextureBarrier{{
		Texture: b.fbColor,
		Usage: hal.TextureUsageTransition{
			OldUsage: gputypes.TextureUsageRenderAttachment,
			NewUsage: gputypes.TextureUsageCopySrc,
		},
	}})
	enc.CopyTextureToBuffer(b.fbColor, staging, []hal.BufferTextureCopy{{
		BufferLayout: hal.ImageDataLayout{Offset: 0, BytesPerRow: alignedBytesPerRow, RowsPerImage: h},
		TextureBase:  hal.ImageCopyTexture{Texture: b.fbColor, MipLevel: 0},
		Size:         hal.Extent3D{Width: w, Height: h, DepthOrArrayLayers: 1},
	}})
	enc.TransitionTextures([]hal.TextureBarrier{{
		Texture: b.fbColor,
		Usage: hal.TextureUsageTransition{
			OldUsage: gputypes.TextureUsageCopySrc,
			NewUsage: gputypes.TextureUsageRenderAttachment,
		},
	}})

	cmd, err := enc.EndEncoding()
	if err != nil {
		return fmt.Errorf("wgpu: end readback encoding: %w", err)
	}
	defer b.device.FreeCommandBuffer(cmd)

	if err := b.submitAndWait([]hal.CommandBuffer{cmd}); err != nil {
		return fmt.Errorf("wgpu: readback: %w", err)
	}

	readback := make([]byte, stagingSize)
	if err := b.queue.ReadBuffer(staging, 0, readback); err != nil {
		return fmt.Errorf("wgpu: readback: %w", err)
	}

	for row := uint32(0); row < h; row++ {
		src := readback[row*alignedBytesPerRow : row*alignedBytesPerRow+bytesPerRow]
		copy(out[row*bytesPerRow:], src)
	}
	if b.surfaceFormat == gputypes.TextureFormatBGRA8Unorm ||
		b.surfaceFormat == gputypes.TextureFormatBGRA8UnormSrgb {
		swapBGRA(out[:w*h*4])
	}
	return nil
}

// swapBGRA converts BGRA pixels to RGBA in place.
func swapBGRA(p []byte) {
	for i := 0; i+3 < len(p); i += 4 {
		p[i], p[i+2] = p[i+2], p[i]
	}
}
