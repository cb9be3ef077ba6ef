package gfx

// PassActionBits selects the load behavior of each pass attachment: a
// clear bit applies the supplied clear value, a load bit preserves the
// existing contents. An attachment with neither bit set is "don't care";
// backends resolve don't-care to a clear, the cheaper choice on tiled
// GPUs, so contents must never be assumed preserved.
type PassActionBits uint16

// Per-attachment action bits.
const (
	ClearColor0 PassActionBits = 1 << 0
	ClearColor1 PassActionBits = 1 << 1
	ClearColor2 PassActionBits = 1 << 2
	ClearColor3 PassActionBits = 1 << 3
	ClearColor  PassActionBits = ClearColor0 | ClearColor1 | ClearColor2 | ClearColor3

	ClearDepth        PassActionBits = 1 << 4
	ClearStencil      PassActionBits = 1 << 5
	ClearDepthStencil PassActionBits = ClearDepth | ClearStencil

	ClearAll PassActionBits = ClearColor | ClearDepthStencil

	LoadColor0 PassActionBits = 1 << 6
	LoadColor1 PassActionBits = 1 << 7
	LoadColor2 PassActionBits = 1 << 8
	LoadColor3 PassActionBits = 1 << 9
	LoadColor  PassActionBits = LoadColor0 | LoadColor1 | LoadColor2 | LoadColor3

	LoadDepth        PassActionBits = 1 << 10
	LoadStencil      PassActionBits = 1 << 11
	LoadDepthStencil PassActionBits = LoadDepth | LoadStencil

	LoadAll PassActionBits = LoadColor | LoadDepthStencil
)

// ClearsColor reports whether color attachment i has its clear bit set.
func (b PassActionBits) ClearsColor(i int) bool {
	return b&(ClearColor0<<uint(i)) != 0
}

// LoadsColor reports whether color attachment i has its load bit set.
func (b PassActionBits) LoadsColor(i int) bool {
	return b&(LoadColor0<<uint(i)) != 0
}

// Color is an RGBA color with float channels.
type Color [4]float32

// PassAction describes the per-attachment clear-vs-load behavior applied
// when a pass begins. It is transient: consumed by BeginPass, never
// stored in a pool.
type PassAction struct {
	// Colors are the clear values for the four color attachments.
	Colors [MaxColorAttachments]Color

	// Depth is the depth clear value.
	Depth float32

	// Stencil is the stencil clear value.
	Stencil uint8

	// Actions is the clear/load bitmask.
	Actions PassActionBits
}

// DefaultPassAction returns the action used when BeginPass receives nil:
// clear everything, colors to (0.5, 0.5, 0.5, 1.0), depth to 1.0 and
// stencil to 0.
func DefaultPassAction() PassAction {
	a := PassAction{
		Depth:   1.0,
		Stencil: 0,
		Actions: ClearAll,
	}
	for i := range a.Colors {
		a.Colors[i] = Color{0.5, 0.5, 0.5, 1.0}
	}
	return a
}
