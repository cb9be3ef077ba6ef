package gfx

// Option configures a Context during creation.
// Use functional options to customize Context behavior.
//
// Example:
//
//	// Default headless backend
//	ctx, err := gfx.New(nil)
//
//	// Custom backend (dependency injection)
//	ctx, err := gfx.New(nil, gfx.WithBackend(wgpuBackend))
type Option func(*contextOptions)

// contextOptions holds optional configuration for Context creation.
type contextOptions struct {
	backend Backend
}

// defaultOptions returns the default context options.
func defaultOptions() contextOptions {
	return contextOptions{
		backend: nil, // Will be set to HeadlessBackend if nil
	}
}

// WithBackend sets the native backend the Context drives.
// Use this for dependency injection of the wgpu or a custom backend.
//
// Example:
//
//	b := wgpu.New(device, queue)
//	ctx, err := gfx.New(nil, gfx.WithBackend(b))
//
// When no backend is supplied, the Context uses a HeadlessBackend, which
// validates and counts commands without producing pixels.
func WithBackend(b Backend) Option {
	return func(o *contextOptions) {
		o.backend = b
	}
}
