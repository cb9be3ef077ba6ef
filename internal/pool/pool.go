// Package pool implements the fixed-capacity slot pools that back all
// gfx resource categories.
//
// Each pool entry is addressed by an opaque 32-bit id that packs a slot
// index into the low bits and a per-slot generation counter into the high
// bits. The generation is bumped every time a slot is released, so an id
// that survived its resource can never resolve against whatever occupies
// the slot afterwards.
//
// Pools perform no locking: the owning rendering context is a
// single-threaded construct and all mutation happens on its thread.
package pool

import (
	"errors"
	"fmt"
)

const (
	// InvalidID is the reserved "no resource" id. It is never returned by
	// a successful allocation.
	InvalidID uint32 = 0

	// slotShift is the bit position of the generation counter inside an id.
	slotShift = 16

	// slotMask extracts the slot index from an id.
	slotMask = (1 << slotShift) - 1

	// MaxCapacity is the largest slot count a pool can hold. Index 0 is
	// reserved so that a zero id never addresses a live slot.
	MaxCapacity = slotMask - 1
)

// Pool capacity errors.
var (
	// ErrInvalidCapacity is returned when a pool is created with a
	// non-positive capacity.
	ErrInvalidCapacity = errors.New("pool: capacity must be positive")

	// ErrCapacityTooLarge is returned when the requested capacity exceeds
	// the index range an id can encode.
	ErrCapacityTooLarge = errors.New("pool: capacity exceeds index range")
)

// State is the lifecycle state of a pool slot.
type State uint8

// Slot lifecycle states. A slot starts Initial, moves to Alloc when its
// index is handed out, then to Valid or Failed once initialization
// finishes, and back to Initial when the resource is destroyed.
const (
	StateInitial State = iota
	StateAlloc
	StateValid
	StateFailed
)

// String returns the state name for diagnostics.
func (s State) String() string {
	switch s {
	case StateInitial:
		return "initial"
	case StateAlloc:
		return "alloc"
	case StateValid:
		return "valid"
	case StateFailed:
		return "failed"
	default:
		return fmt.Sprintf("State(%d)", uint8(s))
	}
}

// slot is one pool entry. The payload is only meaningful while the slot
// is in StateValid.
type slot[T any] struct {
	state   State
	gen     uint32
	payload T
}

// Pool is a fixed-capacity collection of slots for one resource category.
//
// The zero value is not usable; create pools with New.
type Pool[T any] struct {
	slots []slot[T]
	free  []uint32
}

// New creates a pool with the given number of usable slots.
func New[T any](capacity int) (*Pool[T], error) {
	if capacity <= 0 {
		return nil, ErrInvalidCapacity
	}
	if capacity > MaxCapacity {
		return nil, fmt.Errorf("%w: %d > %d", ErrCapacityTooLarge, capacity, MaxCapacity)
	}

	p := &Pool[T]{
		// Slot 0 stays reserved so id 0 remains universally invalid.
		slots: make([]slot[T], capacity+1),
		free:  make([]uint32, 0, capacity),
	}
	// Push indices in reverse so the first allocation hands out index 1.
	for i := capacity; i >= 1; i-- {
		p.free = append(p.free, uint32(i))
	}
	return p, nil
}

// Cap returns the number of usable slots.
func (p *Pool[T]) Cap() int { return len(p.slots) - 1 }

// Avail returns the number of unoccupied slots.
func (p *Pool[T]) Avail() int { return len(p.free) }

// Alloc reserves a free slot and returns its id, or InvalidID when the
// pool is exhausted. The slot enters StateAlloc and carries no payload
// until Init or Fail is called.
func (p *Pool[T]) Alloc() uint32 {
	if len(p.free) == 0 {
		return InvalidID
	}
	idx := p.free[len(p.free)-1]
	p.free = p.free[:len(p.free)-1]

	s := &p.slots[idx]
	s.state = StateAlloc
	return idx | s.gen<<slotShift
}

// Init transitions an allocated slot to StateValid and stores its
// payload. It reports false if the id does not address a slot in
// StateAlloc.
func (p *Pool[T]) Init(id uint32, payload T) bool {
	s := p.slotFor(id)
	if s == nil || s.state != StateAlloc {
		return false
	}
	s.state = StateValid
	s.payload = payload
	return true
}

// Fail transitions an allocated slot to StateFailed. The slot keeps no
// payload. It reports false if the id does not address a slot in
// StateAlloc.
func (p *Pool[T]) Fail(id uint32) bool {
	s := p.slotFor(id)
	if s == nil || s.state != StateAlloc {
		return false
	}
	s.state = StateFailed
	return true
}

// Lookup resolves an id to its payload. It returns nil unless the id is
// current for its slot and the slot is in StateValid. A stale id whose
// slot has been reused resolves to nil, never to the new occupant.
func (p *Pool[T]) Lookup(id uint32) *T {
	s := p.slotFor(id)
	if s == nil || s.state != StateValid {
		return nil
	}
	return &s.payload
}

// State returns the lifecycle state addressed by id, or StateInitial if
// the id is invalid, stale, or out of range.
func (p *Pool[T]) State(id uint32) State {
	s := p.slotFor(id)
	if s == nil {
		return StateInitial
	}
	return s.state
}

// Release returns a slot to the free list. It is legal from StateAlloc,
// StateValid, and StateFailed; any other id is a no-op. The slot's
// generation is bumped exactly once so outstanding ids go stale, and the
// previous payload is returned to let the caller release what it owned.
func (p *Pool[T]) Release(id uint32) (payload T, ok bool) {
	s := p.slotFor(id)
	if s == nil || s.state == StateInitial {
		return payload, false
	}
	payload = s.payload

	var zero T
	s.payload = zero
	s.state = StateInitial
	s.gen = (s.gen + 1) & slotMask

	p.free = append(p.free, id&slotMask)
	return payload, true
}

// Each calls fn for every id currently in a non-initial state. Release
// may be called from within fn; slots released this way are not
// revisited.
func (p *Pool[T]) Each(fn func(id uint32, state State)) {
	for i := 1; i < len(p.slots); i++ {
		s := &p.slots[i]
		if s.state == StateInitial {
			continue
		}
		fn(uint32(i)|s.gen<<slotShift, s.state)
	}
}

// slotFor maps an id back to its slot, re-checking both the index range
// and the embedded generation. Bounds alone are not enough: a stale id
// pointing at a reused slot must not resolve.
func (p *Pool[T]) slotFor(id uint32) *slot[T] {
	idx := id & slotMask
	if idx == 0 || int(idx) >= len(p.slots) {
		return nil
	}
	s := &p.slots[idx]
	if s.gen != id>>slotShift {
		return nil
	}
	return s
}
