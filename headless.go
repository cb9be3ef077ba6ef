package gfx

import (
	"fmt"
	"sync/atomic"
)

// HeadlessBackend is a Backend that constructs no native objects and
// produces no pixels. It hands out ids, tracks live resources, and
// counts every forwarded command, which makes it the default backend and
// the reference tool for observing what the validator forwards versus
// drops. Tests assert against its counters; applications can use it to
// run render code on machines without a GPU.
type HeadlessBackend struct {
	nextID   atomic.Uint64
	features [featureCount]bool

	// live tracks backend resources by id so leaks are observable.
	live map[NativeID]string

	stats HeadlessStats
}

// HeadlessStats counts the commands a HeadlessBackend received.
type HeadlessStats struct {
	BeginPasses   int
	Viewports     int
	Scissors      int
	Pipelines     int
	Bindings      int
	UniformBlocks int
	Draws         int
	EndPasses     int
	Commits       int
	CacheResets   int
}

// NewHeadlessBackend creates a headless backend. It reports the common
// uncompressed-texture features as available and all compressed formats
// as unavailable.
func NewHeadlessBackend() *HeadlessBackend {
	b := &HeadlessBackend{live: make(map[NativeID]string)}
	for _, f := range []Feature{
		FeatureTextureFloat,
		FeatureTextureHalfFloat,
		FeatureOriginTopLeft,
		FeatureMSAARenderTargets,
		FeatureMultipleRenderTarget,
		FeatureTexture3D,
		FeatureTextureArray,
	} {
		b.features[f] = true
	}
	return b
}

// SetFeature overrides a capability flag. Intended for tests that need
// to exercise feature-dependent paths.
func (b *HeadlessBackend) SetFeature(f Feature, available bool) {
	if int(f) < len(b.features) {
		b.features[f] = available
	}
}

// Stats returns the command counters accumulated so far.
func (b *HeadlessBackend) Stats() HeadlessStats { return b.stats }

// LiveResources returns the number of backend resources not yet destroyed.
func (b *HeadlessBackend) LiveResources() int { return len(b.live) }

// Name returns "headless".
func (b *HeadlessBackend) Name() string { return "headless" }

// Setup implements Backend. It never fails.
func (b *HeadlessBackend) Setup(desc *Desc) error { return nil }

// Shutdown implements Backend.
func (b *HeadlessBackend) Shutdown() { clear(b.live) }

// Feature implements Backend.
func (b *HeadlessBackend) Feature(f Feature) bool {
	return int(f) < len(b.features) && b.features[f]
}

func (b *HeadlessBackend) create(kind string) NativeID {
	id := NativeID(b.nextID.Add(1))
	b.live[id] = kind
	return id
}

func (b *HeadlessBackend) destroy(id NativeID, kind string) {
	if got, ok := b.live[id]; ok && got == kind {
		delete(b.live, id)
	}
}

// CreateBuffer implements Backend.
func (b *HeadlessBackend) CreateBuffer(desc *BufferDesc, size int) (NativeID, error) {
	return b.create("buffer"), nil
}

// DestroyBuffer implements Backend.
func (b *HeadlessBackend) DestroyBuffer(id NativeID) { b.destroy(id, "buffer") }

// UpdateBuffer implements Backend.
func (b *HeadlessBackend) UpdateBuffer(id NativeID, data []byte) {}

// CreateImage implements Backend.
func (b *HeadlessBackend) CreateImage(desc *ImageDesc) (NativeID, error) {
	if desc.Type == ImageType3D && !b.Feature(FeatureTexture3D) {
		return 0, fmt.Errorf("headless: 3D textures unavailable")
	}
	if desc.Type == ImageTypeArray && !b.Feature(FeatureTextureArray) {
		return 0, fmt.Errorf("headless: array textures unavailable")
	}
	return b.create("image"), nil
}

// DestroyImage implements Backend.
func (b *HeadlessBackend) DestroyImage(id NativeID) { b.destroy(id, "image") }

// UpdateImage implements Backend.
func (b *HeadlessBackend) UpdateImage(id NativeID, data []byte, desc *UpdateImageDesc) {}

// CreateShader implements Backend.
func (b *HeadlessBackend) CreateShader(desc *ShaderDesc) (NativeID, error) {
	return b.create("shader"), nil
}

// DestroyShader implements Backend.
func (b *HeadlessBackend) DestroyShader(id NativeID) { b.destroy(id, "shader") }

// CreatePipeline implements Backend.
func (b *HeadlessBackend) CreatePipeline(desc *PipelineDesc, shader NativeID) (NativeID, error) {
	return b.create("pipeline"), nil
}

// DestroyPipeline implements Backend.
func (b *HeadlessBackend) DestroyPipeline(id NativeID) { b.destroy(id, "pipeline") }

// CreatePass implements Backend.
func (b *HeadlessBackend) CreatePass(desc *PassDesc, color [MaxColorAttachments]NativeID, depthStencil NativeID) (NativeID, error) {
	return b.create("pass"), nil
}

// DestroyPass implements Backend.
func (b *HeadlessBackend) DestroyPass(id NativeID) { b.destroy(id, "pass") }

// BeginPass implements Backend.
func (b *HeadlessBackend) BeginPass(id NativeID, action *PassAction, width, height int) {
	b.stats.BeginPasses++
}

// ApplyViewport implements Backend.
func (b *HeadlessBackend) ApplyViewport(x, y, width, height int, originTopLeft bool) {
	b.stats.Viewports++
}

// ApplyScissorRect implements Backend.
func (b *HeadlessBackend) ApplyScissorRect(x, y, width, height int, originTopLeft bool) {
	b.stats.Scissors++
}

// ApplyPipeline implements Backend.
func (b *HeadlessBackend) ApplyPipeline(id NativeID) { b.stats.Pipelines++ }

// ApplyBindings implements Backend.
func (b *HeadlessBackend) ApplyBindings(bind *NativeBindings) { b.stats.Bindings++ }

// ApplyUniformBlock implements Backend.
func (b *HeadlessBackend) ApplyUniformBlock(stage ShaderStage, slot int, data []byte) {
	b.stats.UniformBlocks++
}

// Draw implements Backend.
func (b *HeadlessBackend) Draw(baseElement, numElements, numInstances int) { b.stats.Draws++ }

// EndPass implements Backend.
func (b *HeadlessBackend) EndPass() { b.stats.EndPasses++ }

// Commit implements Backend.
func (b *HeadlessBackend) Commit() { b.stats.Commits++ }

// ResetStateCache implements Backend.
func (b *HeadlessBackend) ResetStateCache() { b.stats.CacheResets++ }
