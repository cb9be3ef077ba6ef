package backend

import (
	"errors"

	"github.com/gogpu/gfx"
)

// Common backend errors.
var (
	// ErrBackendNotAvailable is returned when a requested backend is not available.
	ErrBackendNotAvailable = errors.New("backend: not available")
)

// Well-known backend names.
const (
	// BackendWGPU renders through WebGPU via gogpu/wgpu. Registered by
	// importing the backend/wgpu package.
	BackendWGPU = "wgpu"

	// BackendHeadless executes no GPU work. Always registered.
	BackendHeadless = "headless"
)

func init() {
	Register(BackendHeadless, func() gfx.Backend {
		return gfx.NewHeadlessBackend()
	})
}
