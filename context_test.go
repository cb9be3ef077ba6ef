package gfx

import (
	"errors"
	"testing"
)

// newTestContext creates a context on a fresh headless backend so tests
// can observe which commands reach the backend.
func newTestContext(t *testing.T, desc *Desc) (*Context, *HeadlessBackend) {
	t.Helper()
	b := NewHeadlessBackend()
	c, err := New(desc, WithBackend(b))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	t.Cleanup(c.Close)
	return c, b
}

func testShaderDesc() *ShaderDesc {
	return &ShaderDesc{
		Lang:  ShaderLangGLSL330,
		Attrs: []VertexAttr{{Name: "position", Format: VertexFormatFloat3}},
		VS: StageDesc{
			Source: "void main() {}",
			UniformBlocks: []UniformBlockDesc{
				{Uniforms: []UniformDesc{{Name: "mvp", Type: UniformTypeMat4}}},
			},
		},
		FS: StageDesc{Source: "void main() {}"},
	}
}

func testPipelineDesc(shd Shader) *PipelineDesc {
	d := DefaultPipelineDesc()
	d.Shader = shd
	d.Layouts[0].Attrs = []VertexAttr{{Name: "position", Format: VertexFormatFloat3}}
	return &d
}

func TestNewAppliesDefaults(t *testing.T) {
	c, _ := newTestContext(t, nil)
	d := c.Desc()
	if d.Width != 640 || d.Height != 400 || d.SampleCount != 1 {
		t.Errorf("Desc() = %dx%d/%d samples, want 640x400/1", d.Width, d.Height, d.SampleCount)
	}
	if d.BufferPoolSize != 128 {
		t.Errorf("BufferPoolSize = %d, want 128", d.BufferPoolSize)
	}
	if !c.IsValid() {
		t.Error("IsValid() = false after New")
	}
}

func TestNewRejectsBadPoolSize(t *testing.T) {
	b := NewHeadlessBackend()
	if _, err := New(&Desc{BufferPoolSize: -1}, WithBackend(b)); err == nil {
		t.Error("New() with negative pool size: want error, got nil")
	}
}

func TestMakeBuffer(t *testing.T) {
	c, b := newTestContext(t, nil)
	buf, err := c.MakeBuffer(&BufferDesc{
		Type:  BufferTypeVertex,
		Usage: UsageImmutable,
		Data:  make([]byte, 64),
	})
	if err != nil {
		t.Fatalf("MakeBuffer() error = %v", err)
	}
	if buf == InvalidID {
		t.Fatal("MakeBuffer() returned the invalid handle")
	}
	if st := c.QueryBufferState(buf); st != ResourceStateValid {
		t.Errorf("QueryBufferState() = %v, want valid", st)
	}
	if n := b.LiveResources(); n != 1 {
		t.Errorf("LiveResources() = %d, want 1", n)
	}
	c.DestroyBuffer(buf)
	if st := c.QueryBufferState(buf); st != ResourceStateInitial {
		t.Errorf("state after destroy = %v, want initial", st)
	}
	if n := b.LiveResources(); n != 0 {
		t.Errorf("LiveResources() after destroy = %d, want 0", n)
	}
}

func TestMakeBufferInvalidDescriptorFailsSlot(t *testing.T) {
	c, _ := newTestContext(t, nil)
	buf, err := c.MakeBuffer(&BufferDesc{Usage: UsageImmutable})
	if !errors.Is(err, ErrInvalidDescriptor) {
		t.Fatalf("MakeBuffer() error = %v, want ErrInvalidDescriptor", err)
	}
	if buf == InvalidID {
		t.Fatal("MakeBuffer() should return a handle even on failure")
	}
	if st := c.QueryBufferState(buf); st != ResourceStateFailed {
		t.Errorf("QueryBufferState() = %v, want failed", st)
	}
}

func TestPoolExhaustionIsSoft(t *testing.T) {
	c, _ := newTestContext(t, &Desc{BufferPoolSize: 2})
	desc := &BufferDesc{Usage: UsageDynamic, Size: 16}
	for i := 0; i < 2; i++ {
		if buf, err := c.MakeBuffer(desc); err != nil || buf == InvalidID {
			t.Fatalf("MakeBuffer() #%d = (%#x, %v)", i, buf, err)
		}
	}
	buf, err := c.MakeBuffer(desc)
	if err != nil {
		t.Errorf("exhausted MakeBuffer() error = %v, want nil", err)
	}
	if buf != InvalidID {
		t.Errorf("exhausted MakeBuffer() = %#x, want InvalidID", buf)
	}
}

func TestStaleHandleAfterSlotReuse(t *testing.T) {
	c, _ := newTestContext(t, &Desc{BufferPoolSize: 1})
	desc := &BufferDesc{Usage: UsageDynamic, Size: 16}

	old, err := c.MakeBuffer(desc)
	if err != nil || old == InvalidID {
		t.Fatalf("MakeBuffer() = (%#x, %v)", old, err)
	}
	c.DestroyBuffer(old)

	fresh, err := c.MakeBuffer(desc)
	if err != nil || fresh == InvalidID {
		t.Fatalf("MakeBuffer() after reuse = (%#x, %v)", fresh, err)
	}
	if fresh == old {
		t.Fatalf("reused slot got the same handle %#x; generations must differ", old)
	}
	if st := c.QueryBufferState(old); st != ResourceStateInitial {
		t.Errorf("stale handle state = %v, want initial", st)
	}
	if st := c.QueryBufferState(fresh); st != ResourceStateValid {
		t.Errorf("fresh handle state = %v, want valid", st)
	}
	// Operations through the stale handle must not touch the new resource.
	if err := c.UpdateBuffer(old, make([]byte, 8)); err != nil {
		t.Errorf("UpdateBuffer(stale) error = %v, want silent nil", err)
	}
}

func TestAllocInitSplit(t *testing.T) {
	c, _ := newTestContext(t, nil)
	buf := c.AllocBuffer()
	if buf == InvalidID {
		t.Fatal("AllocBuffer() returned InvalidID")
	}
	if st := c.QueryBufferState(buf); st != ResourceStateAlloc {
		t.Fatalf("state after alloc = %v, want alloc", st)
	}
	if err := c.InitBuffer(buf, &BufferDesc{Usage: UsageDynamic, Size: 32}); err != nil {
		t.Fatalf("InitBuffer() error = %v", err)
	}
	if st := c.QueryBufferState(buf); st != ResourceStateValid {
		t.Errorf("state after init = %v, want valid", st)
	}
	// Double init is a contract violation.
	if err := c.InitBuffer(buf, &BufferDesc{Usage: UsageDynamic, Size: 32}); !errors.Is(err, ErrInvalidHandle) {
		t.Errorf("double InitBuffer() error = %v, want ErrInvalidHandle", err)
	}
}

func TestUpdateBuffer(t *testing.T) {
	c, _ := newTestContext(t, nil)

	dyn, err := c.MakeBuffer(&BufferDesc{Usage: UsageDynamic, Size: 16})
	if err != nil {
		t.Fatalf("MakeBuffer() error = %v", err)
	}
	if err := c.UpdateBuffer(dyn, make([]byte, 16)); err != nil {
		t.Errorf("UpdateBuffer() error = %v", err)
	}
	if err := c.UpdateBuffer(dyn, make([]byte, 17)); !errors.Is(err, ErrUpdateOutOfRange) {
		t.Errorf("oversized update error = %v, want ErrUpdateOutOfRange", err)
	}

	imm, err := c.MakeBuffer(&BufferDesc{Usage: UsageImmutable, Data: make([]byte, 16)})
	if err != nil {
		t.Fatalf("MakeBuffer() error = %v", err)
	}
	if err := c.UpdateBuffer(imm, make([]byte, 8)); !errors.Is(err, ErrImmutableResource) {
		t.Errorf("immutable update error = %v, want ErrImmutableResource", err)
	}
}

func TestMakeImageAndUpdate(t *testing.T) {
	c, _ := newTestContext(t, nil)
	img, err := c.MakeImage(&ImageDesc{
		Type:   ImageType2D,
		Width:  8,
		Height: 8,
		Usage:  UsageDynamic,
	})
	if err != nil {
		t.Fatalf("MakeImage() error = %v", err)
	}
	if st := c.QueryImageState(img); st != ResourceStateValid {
		t.Fatalf("QueryImageState() = %v, want valid", st)
	}
	if err := c.UpdateImage(img, make([]byte, 8*8*4), nil); err != nil {
		t.Errorf("full UpdateImage() error = %v", err)
	}
	region := &UpdateImageDesc{Width: 4, Height: 4}
	if err := c.UpdateImage(img, make([]byte, 4*4*4), region); err != nil {
		t.Errorf("region UpdateImage() error = %v", err)
	}
	big := &UpdateImageDesc{Width: 16, Height: 16}
	if err := c.UpdateImage(img, nil, big); !errors.Is(err, ErrUpdateOutOfRange) {
		t.Errorf("oversized region error = %v, want ErrUpdateOutOfRange", err)
	}
}

func TestInitImageMSAAWithoutFeature(t *testing.T) {
	b := NewHeadlessBackend()
	b.SetFeature(FeatureMSAARenderTargets, false)
	c, err := New(nil, WithBackend(b))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	defer c.Close()

	img, err := c.MakeImage(&ImageDesc{
		Type:         ImageType2D,
		RenderTarget: true,
		Width:        64,
		Height:       64,
		SampleCount:  4,
	})
	if err != nil {
		t.Fatalf("MakeImage() error = %v, want soft failure", err)
	}
	if st := c.QueryImageState(img); st != ResourceStateFailed {
		t.Errorf("QueryImageState() = %v, want failed", st)
	}
}

func TestMakeShaderDigestsUniformBlocks(t *testing.T) {
	c, _ := newTestContext(t, nil)
	shd, err := c.MakeShader(testShaderDesc())
	if err != nil {
		t.Fatalf("MakeShader() error = %v", err)
	}
	if st := c.QueryShaderState(shd); st != ResourceStateValid {
		t.Fatalf("QueryShaderState() = %v, want valid", st)
	}
	res := c.shaders.Lookup(uint32(shd))
	if res == nil {
		t.Fatal("shader payload missing")
	}
	vs := res.stages[ShaderStageVS]
	if vs.numUniformBlocks != 1 || vs.ubSizes[0] != 64 {
		t.Errorf("VS digest = %d blocks, sizes %v; want 1 block of 64 bytes",
			vs.numUniformBlocks, vs.ubSizes)
	}
	if fs := res.stages[ShaderStageFS]; fs.numUniformBlocks != 0 {
		t.Errorf("FS digest = %d blocks, want 0", fs.numUniformBlocks)
	}
}

func TestMakePipelineRequiresValidShader(t *testing.T) {
	c, _ := newTestContext(t, nil)

	pip, err := c.MakePipeline(testPipelineDesc(Shader(0x70007)))
	if !errors.Is(err, ErrInvalidDescriptor) {
		t.Fatalf("MakePipeline() with dangling shader error = %v, want ErrInvalidDescriptor", err)
	}
	if st := c.QueryPipelineState(pip); st != ResourceStateFailed {
		t.Errorf("QueryPipelineState() = %v, want failed", st)
	}

	shd, err := c.MakeShader(testShaderDesc())
	if err != nil {
		t.Fatalf("MakeShader() error = %v", err)
	}
	pip, err = c.MakePipeline(testPipelineDesc(shd))
	if err != nil {
		t.Fatalf("MakePipeline() error = %v", err)
	}
	if st := c.QueryPipelineState(pip); st != ResourceStateValid {
		t.Errorf("QueryPipelineState() = %v, want valid", st)
	}
}

func TestMakePassRequiresRenderTargets(t *testing.T) {
	c, _ := newTestContext(t, nil)

	plain, err := c.MakeImage(&ImageDesc{
		Type: ImageType2D, Width: 8, Height: 8, Usage: UsageDynamic,
	})
	if err != nil {
		t.Fatalf("MakeImage() error = %v", err)
	}
	var desc PassDesc
	desc.ColorAttachments[0].Image = plain
	if pass, err := c.MakePass(&desc); !errors.Is(err, ErrInvalidDescriptor) {
		t.Errorf("MakePass() with non-render-target error = %v, want ErrInvalidDescriptor", err)
	} else if st := c.QueryPassState(pass); st != ResourceStateFailed {
		t.Errorf("QueryPassState() = %v, want failed", st)
	}

	rt, err := c.MakeImage(&ImageDesc{
		Type: ImageType2D, RenderTarget: true, Width: 64, Height: 64,
	})
	if err != nil {
		t.Fatalf("MakeImage() error = %v", err)
	}
	desc.ColorAttachments[0].Image = rt
	pass, err := c.MakePass(&desc)
	if err != nil {
		t.Fatalf("MakePass() error = %v", err)
	}
	if st := c.QueryPassState(pass); st != ResourceStateValid {
		t.Errorf("QueryPassState() = %v, want valid", st)
	}
}

func TestNilDescriptors(t *testing.T) {
	c, _ := newTestContext(t, nil)
	if _, err := c.MakeBuffer(nil); !errors.Is(err, ErrNilDescriptor) {
		t.Errorf("MakeBuffer(nil) error = %v, want ErrNilDescriptor", err)
	}
	if _, err := c.MakeImage(nil); !errors.Is(err, ErrNilDescriptor) {
		t.Errorf("MakeImage(nil) error = %v, want ErrNilDescriptor", err)
	}
	if _, err := c.MakeShader(nil); !errors.Is(err, ErrNilDescriptor) {
		t.Errorf("MakeShader(nil) error = %v, want ErrNilDescriptor", err)
	}
	if _, err := c.MakePipeline(nil); !errors.Is(err, ErrNilDescriptor) {
		t.Errorf("MakePipeline(nil) error = %v, want ErrNilDescriptor", err)
	}
	if _, err := c.MakePass(nil); !errors.Is(err, ErrNilDescriptor) {
		t.Errorf("MakePass(nil) error = %v, want ErrNilDescriptor", err)
	}
}

func TestCloseReleasesEverything(t *testing.T) {
	b := NewHeadlessBackend()
	c, err := New(nil, WithBackend(b))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if _, err := c.MakeBuffer(&BufferDesc{Usage: UsageDynamic, Size: 16}); err != nil {
		t.Fatalf("MakeBuffer() error = %v", err)
	}
	shd, err := c.MakeShader(testShaderDesc())
	if err != nil {
		t.Fatalf("MakeShader() error = %v", err)
	}
	if _, err := c.MakePipeline(testPipelineDesc(shd)); err != nil {
		t.Fatalf("MakePipeline() error = %v", err)
	}

	c.Close()
	if c.IsValid() {
		t.Error("IsValid() = true after Close")
	}
	if n := b.LiveResources(); n != 0 {
		t.Errorf("LiveResources() after Close = %d, want 0", n)
	}
	// Idempotent.
	c.Close()
}

func TestOperationsAfterClose(t *testing.T) {
	c, _ := newTestContext(t, nil)
	c.Close()
	if _, err := c.MakeBuffer(&BufferDesc{Usage: UsageDynamic, Size: 16}); !errors.Is(err, ErrNotInitialized) {
		t.Errorf("MakeBuffer() after Close error = %v, want ErrNotInitialized", err)
	}
	if buf := c.AllocBuffer(); buf != InvalidID {
		t.Errorf("AllocBuffer() after Close = %#x, want InvalidID", buf)
	}
	if st := c.QueryBufferState(Buffer(1)); st != ResourceStateInitial {
		t.Errorf("QueryBufferState() after Close = %v, want initial", st)
	}
}

func TestQueryFeature(t *testing.T) {
	b := NewHeadlessBackend()
	b.SetFeature(FeatureTextureCompressionDXT, false)
	c, err := New(nil, WithBackend(b))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	defer c.Close()
	if !c.QueryFeature(FeatureTextureFloat) {
		t.Error("QueryFeature(TextureFloat) = false, want true")
	}
	if c.QueryFeature(FeatureTextureCompressionDXT) {
		t.Error("QueryFeature(TextureCompressionDXT) = true, want false")
	}
}
