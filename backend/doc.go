// Package backend provides a pluggable gfx backend registry.
//
// The backend package lets gfx select among rendering implementations at
// runtime. The headless backend is automatically registered on import;
// GPU backends register themselves from their own packages:
//
//	import _ "github.com/gogpu/gfx/backend/wgpu"
//
// # Backend Selection
//
// Use Default() to get the best available backend, or Get() to request
// a specific backend by name:
//
//	// Get the default (best available) backend
//	b := backend.Default()
//
//	// Or request a specific backend
//	b := backend.Get("headless")
//
// # Usage with Context
//
//	ctx, err := backend.NewContext(nil)
//	if err != nil {
//		log.Fatal(err)
//	}
//	defer ctx.Close()
package backend
