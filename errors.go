package gfx

import "errors"

// Contract-channel errors.
//
// These report programmer errors at the public boundary: nil or
// malformed descriptors, out-of-range slot arguments, exceeded fixed
// limits, and frame-protocol violations. Resource-state problems during
// rendering (stale handles, failed resources, exhausted pools) are
// deliberately not errors; those commands are dropped silently and show
// up only in FrameStats.
var (
	// ErrNotInitialized is returned when operations are called before New
	// or after Close.
	ErrNotInitialized = errors.New("gfx: context not initialized")

	// ErrNilDescriptor is returned when a required descriptor is nil.
	ErrNilDescriptor = errors.New("gfx: descriptor is nil")

	// ErrInvalidDescriptor is returned when a descriptor fails shape
	// validation (missing required fields or invalid enum values).
	ErrInvalidDescriptor = errors.New("gfx: invalid descriptor")

	// ErrLimitExceeded is returned when a descriptor declares more
	// attributes, uniforms, uniform blocks, or images than the fixed
	// per-stage limits allow.
	ErrLimitExceeded = errors.New("gfx: fixed limit exceeded")

	// ErrInvalidHandle is returned when an operation that requires an
	// allocated handle receives one in the wrong lifecycle state.
	ErrInvalidHandle = errors.New("gfx: handle not in allocated state")

	// ErrSlotOutOfRange is returned when a bind slot argument exceeds its
	// fixed per-stage range.
	ErrSlotOutOfRange = errors.New("gfx: slot index out of range")

	// ErrPassActive is returned when an operation that must run outside a
	// render pass is called between BeginPass and EndPass.
	ErrPassActive = errors.New("gfx: render pass already active")

	// ErrNoActivePass is returned when a frame command that is only valid
	// inside a render pass is called outside one.
	ErrNoActivePass = errors.New("gfx: no active render pass")

	// ErrImmutableResource is returned when UpdateBuffer or UpdateImage is
	// called on a resource whose usage is not dynamic or stream.
	ErrImmutableResource = errors.New("gfx: resource usage is immutable")

	// ErrUpdateOutOfRange is returned when an update supplies more bytes
	// than the target resource can hold.
	ErrUpdateOutOfRange = errors.New("gfx: update exceeds resource size")

	// ErrInvalidDrawCall is returned when Draw receives negative element
	// or instance counts.
	ErrInvalidDrawCall = errors.New("gfx: negative draw arguments")
)
