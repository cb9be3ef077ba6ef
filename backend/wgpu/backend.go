package wgpu

import (
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/gogpu/gfx"
	"github.com/gogpu/gfx/backend"
	"github.com/gogpu/gpucontext"
	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"

	// Import Vulkan backend so it registers via init().
	_ "github.com/gogpu/wgpu/hal/vulkan"
)

// Package errors.
var (
	ErrNoAdapter     = errors.New("wgpu: no GPU adapters found")
	ErrDeviceNotOpen = errors.New("wgpu: device not open")
	ErrNilProvider   = errors.New("wgpu: nil device provider")
)

func init() {
	backend.Register(backend.BackendWGPU, func() gfx.Backend { return New() })
}

type bufferRes struct {
	buf   hal.Buffer
	size  int
	usage gputypes.BufferUsage
}

type imageRes struct {
	tex          hal.Texture
	view         hal.TextureView
	width        int
	height       int
	bytesPerPix  int
	format       gputypes.TextureFormat
	renderTarget bool
}

type shaderRes struct {
	vs hal.ShaderModule
	fs hal.ShaderModule

	entryVS string
	entryFS string

	// Per-stage uniform block byte sizes, digested from the descriptor
	// so pipelines can size their uniform buffers.
	ubSizes [2][gfx.MaxShaderStageUBs]int
	ubCount [2]int
}

type pipelineRes struct {
	pipeline   hal.RenderPipeline
	pipeLayout hal.PipelineLayout
	bindLayout hal.BindGroupLayout
	bindGroup  hal.BindGroup

	// One uniform buffer per declared block, written by ApplyUniformBlock.
	// Index order: VS blocks first, then FS blocks.
	uniformBufs []hal.Buffer
	ubIndex     [2][gfx.MaxShaderStageUBs]int
}

type passRes struct {
	colorViews []hal.TextureView
	dsView     hal.TextureView
}

// Backend implements gfx.Backend on a hal.Device.
//
// Thread safety follows the gfx contract: a Backend serves one Context
// and is driven from one goroutine. The mutex only guards the resource
// maps against concurrent resource queries.
type Backend struct {
	mu sync.Mutex

	instance   hal.Instance
	device     hal.Device
	queue      hal.Queue
	ownsDevice bool

	desc          gfx.Desc
	surfaceFormat gputypes.TextureFormat

	nextID atomic.Uint64

	buffers   map[gfx.NativeID]*bufferRes
	images    map[gfx.NativeID]*imageRes
	shaders   map[gfx.NativeID]*shaderRes
	pipelines map[gfx.NativeID]*pipelineRes
	passes    map[gfx.NativeID]*passRes

	// Default framebuffer: offscreen color target plus depth/stencil,
	// recreated on Setup.
	fbColor     hal.Texture
	fbColorView hal.TextureView
	fbDepth     hal.Texture
	fbDepthView hal.TextureView

	// Frame recording state.
	encoder     hal.CommandEncoder
	rp          hal.RenderPassEncoder
	curPipeline *pipelineRes
	pending     []hal.CommandBuffer

	// Bindings the HAL render pass encoder has no dynamic slot for are
	// recorded here rather than forwarded.
	curIndexBuffer gfx.NativeID
	curIndexType   gfx.IndexType
	viewport       [4]int
	scissor        [4]int
}

var _ gfx.Backend = (*Backend)(nil)

// New creates a backend that opens its own Vulkan device on Setup.
func New() *Backend {
	return &Backend{
		surfaceFormat: gputypes.TextureFormatBGRA8Unorm,
		buffers:       make(map[gfx.NativeID]*bufferRes),
		images:        make(map[gfx.NativeID]*imageRes),
		shaders:       make(map[gfx.NativeID]*shaderRes),
		pipelines:     make(map[gfx.NativeID]*pipelineRes),
		passes:        make(map[gfx.NativeID]*passRes),
	}
}

// NewWithDevice creates a backend on an existing device and queue. The
// caller keeps ownership; Shutdown will not destroy them.
func NewWithDevice(device hal.Device, queue hal.Queue) *Backend {
	b := New()
	b.device = device
	b.queue = queue
	return b
}

// NewFromProvider creates a backend sharing the GPU device of an
// application-level provider (for example gogpu's window context). The
// provider must also implement HalDevice() any and HalQueue() any
// returning wgpu/hal types; a SurfaceFormat method, when present,
// selects the color target format.
func NewFromProvider(provider gpucontext.DeviceProvider) (*Backend, error) {
	if provider == nil {
		return nil, ErrNilProvider
	}
	type halProvider interface {
		HalDevice() any
		HalQueue() any
	}
	hp, ok := provider.(halProvider)
	if !ok {
		return nil, fmt.Errorf("wgpu: provider does not expose HAL types")
	}
	device, ok := hp.HalDevice().(hal.Device)
	if !ok || device == nil {
		return nil, fmt.Errorf("wgpu: provider HalDevice is not hal.Device")
	}
	queue, ok := hp.HalQueue().(hal.Queue)
	if !ok || queue == nil {
		return nil, fmt.Errorf("wgpu: provider HalQueue is not hal.Queue")
	}

	b := NewWithDevice(device, queue)
	type surfaceFormatter interface {
		SurfaceFormat() gputypes.TextureFormat
	}
	if sf, ok := provider.(surfaceFormatter); ok {
		if f := sf.SurfaceFormat(); f != gputypes.TextureFormatUndefined {
			b.surfaceFormat = f
		}
	}
	return b, nil
}

// Name returns "wgpu".
func (b *Backend) Name() string { return "wgpu" }

// Setup implements gfx.Backend. It opens a device if none was shared
// and creates the default framebuffer.
func (b *Backend) Setup(desc *gfx.Desc) error {
	b.desc = *desc
	if b.device == nil {
		if err := b.openDevice(); err != nil {
			return err
		}
		b.ownsDevice = true
	}
	return b.createDefaultFramebuffer()
}

func (b *Backend) openDevice() error {
	hb, ok := hal.GetBackend(gputypes.BackendVulkan)
	if !ok {
		return fmt.Errorf("wgpu: vulkan backend not available")
	}
	instance, err := hb.CreateInstance(&hal.InstanceDescriptor{Flags: 0})
	if err != nil {
		return fmt.Errorf("wgpu: create instance: %w", err)
	}
	b.instance = instance

	adapters := instance.EnumerateAdapters(nil)
	if len(adapters) == 0 {
		instance.Destroy()
		b.instance = nil
		return ErrNoAdapter
	}
	var selected *hal.ExposedAdapter
	for i := range adapters {
		if adapters[i].Info.DeviceType == gputypes.DeviceTypeDiscreteGPU ||
			adapters[i].Info.DeviceType == gputypes.DeviceTypeIntegratedGPU {
			selected = &adapters[i]
			break
		}
	}
	if selected == nil {
		selected = &adapters[0]
	}
	openDev, err := selected.Adapter.Open(gputypes.Features(0), gputypes.DefaultLimits())
	if err != nil {
		instance.Destroy()
		b.instance = nil
		return fmt.Errorf("wgpu: open device: %w", err)
	}
	b.device = openDev.Device
	b.queue = openDev.Queue
	return nil
}

func (b *Backend) createDefaultFramebuffer() error {
	size := hal.Extent3D{
		Width:              uint32(b.desc.Width),
		Height:             uint32(b.desc.Height),
		DepthOrArrayLayers: 1,
	}

	color, err := b.device.CreateTexture(&hal.TextureDescriptor{
		Label:         "gfx_default_color",
		Size:          size,
		MipLevelCount: 1,
		SampleCount:   uint32(b.desc.SampleCount),
		Dimension:     gputypes.TextureDimension2D,
		Format:        b.surfaceFormat,
		Usage:         gputypes.TextureUsageRenderAttachment | gputypes.TextureUsageCopySrc,
	})
	if err != nil {
		return fmt.Errorf("wgpu: create default color target: %w", err)
	}
	b.fbColor = color

	colorView, err := b.device.CreateTextureView(color, &hal.TextureViewDescriptor{
		Label: "gfx_default_color_view",
	})
	if err != nil {
		b.destroyDefaultFramebuffer()
		return fmt.Errorf("wgpu: create default color view: %w", err)
	}
	b.fbColorView = colorView

	depth, err := b.device.CreateTexture(&hal.TextureDescriptor{
		Label:         "gfx_default_depth",
		Size:          size,
		MipLevelCount: 1,
		SampleCount:   uint32(b.desc.SampleCount),
		Dimension:     gputypes.TextureDimension2D,
		Format:        gputypes.TextureFormatDepth24PlusStencil8,
		Usage:         gputypes.TextureUsageRenderAttachment,
	})
	if err != nil {
		b.destroyDefaultFramebuffer()
		return fmt.Errorf("wgpu: create default depth/stencil target: %w", err)
	}
	b.fbDepth = depth

	depthView, err := b.device.CreateTextureView(depth, &hal.TextureViewDescriptor{
		Label: "gfx_default_depth_view",
	})
	if err != nil {
		b.destroyDefaultFramebuffer()
		return fmt.Errorf("wgpu: create default depth/stencil view: %w", err)
	}
	b.fbDepthView = depthView
	return nil
}

func (b *Backend) destroyDefaultFramebuffer() {
	if b.fbDepthView != nil {
		b.device.DestroyTextureView(b.fbDepthView)
		b.fbDepthView = nil
	}
	if b.fbDepth != nil {
		b.device.DestroyTexture(b.fbDepth)
		b.fbDepth = nil
	}
	if b.fbColorView != nil {
		b.device.DestroyTextureView(b.fbColorView)
		b.fbColorView = nil
	}
	if b.fbColor != nil {
		b.device.DestroyTexture(b.fbColor)
		b.fbColor = nil
	}
}

// Shutdown implements gfx.Backend. Resources the core did not destroy
// are released here; a device opened by Setup is closed as well.
func (b *Backend) Shutdown() {
	if b.device == nil {
		return
	}
	for id := range b.buffers {
		b.DestroyBuffer(id)
	}
	for id := range b.images {
		b.DestroyImage(id)
	}
	for id := range b.shaders {
		b.DestroyShader(id)
	}
	for id := range b.pipelines {
		b.DestroyPipeline(id)
	}
	for id := range b.passes {
		b.DestroyPass(id)
	}
	b.destroyDefaultFramebuffer()

	if b.ownsDevice {
		b.device.Destroy()
		if b.instance != nil {
			b.instance.Destroy()
			b.instance = nil
		}
	}
	b.device = nil
	b.queue = nil
	b.ownsDevice = false
}

// Feature implements gfx.Backend.
func (b *Backend) Feature(f gfx.Feature) bool {
	switch f {
	case gfx.FeatureTextureFloat,
		gfx.FeatureTextureHalfFloat,
		gfx.FeatureOriginTopLeft,
		gfx.FeatureMSAARenderTargets,
		gfx.FeatureMultipleRenderTarget,
		gfx.FeatureTexture3D,
		gfx.FeatureTextureArray:
		return true
	default:
		return false
	}
}

func (b *Backend) newID() gfx.NativeID {
	return gfx.NativeID(b.nextID.Add(1))
}
