package pool

import (
	"errors"
	"testing"
)

func TestNewValidation(t *testing.T) {
	tests := []struct {
		name     string
		capacity int
		wantErr  error
	}{
		{"zero", 0, ErrInvalidCapacity},
		{"negative", -3, ErrInvalidCapacity},
		{"too large", MaxCapacity + 1, ErrCapacityTooLarge},
		{"max", MaxCapacity, nil},
		{"one", 1, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := New[int](tt.capacity)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("New(%d) error = %v, want %v", tt.capacity, err, tt.wantErr)
			}
			if tt.wantErr == nil {
				if p.Cap() != tt.capacity {
					t.Errorf("Cap() = %d, want %d", p.Cap(), tt.capacity)
				}
				if p.Avail() != tt.capacity {
					t.Errorf("Avail() = %d, want %d", p.Avail(), tt.capacity)
				}
			}
		})
	}
}

func TestAllocNeverReturnsZero(t *testing.T) {
	p, err := New[string](8)
	if err != nil {
		t.Fatal(err)
	}
	seen := make(map[uint32]bool)
	for i := 0; i < 8; i++ {
		id := p.Alloc()
		if id == InvalidID {
			t.Fatalf("Alloc() = InvalidID at %d with slots available", i)
		}
		if seen[id] {
			t.Fatalf("Alloc() returned duplicate id %#x", id)
		}
		seen[id] = true
	}
}

func TestExhaustionReturnsInvalidID(t *testing.T) {
	p, _ := New[int](2)
	a := p.Alloc()
	b := p.Alloc()
	if a == InvalidID || b == InvalidID {
		t.Fatal("allocation failed with capacity available")
	}
	if got := p.Alloc(); got != InvalidID {
		t.Fatalf("Alloc() on exhausted pool = %#x, want InvalidID", got)
	}

	// Releasing one slot makes allocation succeed again.
	if _, ok := p.Release(a); !ok {
		t.Fatal("Release of live id failed")
	}
	c := p.Alloc()
	if c == InvalidID {
		t.Fatal("Alloc() after release = InvalidID")
	}
	if c == a {
		t.Fatalf("reused slot id %#x did not change generation", c)
	}
}

func TestStateMachine(t *testing.T) {
	p, _ := New[int](4)

	id := p.Alloc()
	if got := p.State(id); got != StateAlloc {
		t.Fatalf("state after Alloc = %v, want alloc", got)
	}
	if p.Lookup(id) != nil {
		t.Error("Lookup of allocated-but-uninitialized slot must fail")
	}

	if !p.Init(id, 42) {
		t.Fatal("Init of allocated slot failed")
	}
	if got := p.State(id); got != StateValid {
		t.Fatalf("state after Init = %v, want valid", got)
	}
	if v := p.Lookup(id); v == nil || *v != 42 {
		t.Fatalf("Lookup = %v, want payload 42", v)
	}

	// Init is only legal from alloc.
	if p.Init(id, 7) {
		t.Error("Init of valid slot must fail")
	}
	if p.Fail(id) {
		t.Error("Fail of valid slot must fail")
	}

	payload, ok := p.Release(id)
	if !ok || payload != 42 {
		t.Fatalf("Release = (%v, %v), want (42, true)", payload, ok)
	}
	if got := p.State(id); got != StateInitial {
		t.Fatalf("state after Release = %v, want initial", got)
	}
}

func TestFailedState(t *testing.T) {
	p, _ := New[int](4)
	id := p.Alloc()
	if !p.Fail(id) {
		t.Fatal("Fail of allocated slot failed")
	}
	if got := p.State(id); got != StateFailed {
		t.Fatalf("state = %v, want failed", got)
	}
	if p.Lookup(id) != nil {
		t.Error("Lookup of failed slot must return nil")
	}
	// Destroy is legal from failed.
	if _, ok := p.Release(id); !ok {
		t.Error("Release of failed slot must succeed")
	}
}

func TestStaleIDNeverResolvesReusedSlot(t *testing.T) {
	p, _ := New[int](1)

	old := p.Alloc()
	p.Init(old, 1)
	p.Release(old)

	fresh := p.Alloc()
	p.Init(fresh, 2)

	if old&slotMask != fresh&slotMask {
		t.Fatalf("expected slot reuse, got indices %d and %d", old&slotMask, fresh&slotMask)
	}
	if old == fresh {
		t.Fatal("generation did not change on reuse")
	}
	if p.Lookup(old) != nil {
		t.Error("stale id resolved against new occupant")
	}
	if p.State(old) != StateInitial {
		t.Error("stale id must report initial state")
	}
	if v := p.Lookup(fresh); v == nil || *v != 2 {
		t.Errorf("fresh id failed to resolve, got %v", v)
	}
}

func TestReleaseIsIdempotent(t *testing.T) {
	p, _ := New[int](2)
	id := p.Alloc()
	p.Init(id, 9)

	if _, ok := p.Release(id); !ok {
		t.Fatal("first Release failed")
	}
	if _, ok := p.Release(id); ok {
		t.Error("second Release of same id must be a no-op")
	}
	if _, ok := p.Release(InvalidID); ok {
		t.Error("Release of InvalidID must be a no-op")
	}
	if _, ok := p.Release(0xFFFF_FFFF); ok {
		t.Error("Release of out-of-range id must be a no-op")
	}
	if p.Avail() != 2 {
		t.Errorf("Avail = %d after double release, want 2", p.Avail())
	}
}

func TestEachVisitsLiveSlots(t *testing.T) {
	p, _ := New[int](4)
	a := p.Alloc()
	p.Init(a, 1)
	b := p.Alloc() // left in alloc state
	c := p.Alloc()
	p.Fail(c)

	visited := make(map[uint32]State)
	p.Each(func(id uint32, state State) {
		visited[id] = state
	})
	if len(visited) != 3 {
		t.Fatalf("Each visited %d slots, want 3", len(visited))
	}
	if visited[a] != StateValid || visited[b] != StateAlloc || visited[c] != StateFailed {
		t.Errorf("Each states = %v", visited)
	}
}

func TestStateStrings(t *testing.T) {
	for s, want := range map[State]string{
		StateInitial: "initial",
		StateAlloc:   "alloc",
		StateValid:   "valid",
		StateFailed:  "failed",
		State(9):     "State(9)",
	} {
		if got := s.String(); got != want {
			t.Errorf("State(%d).String() = %q, want %q", s, got, want)
		}
	}
}
