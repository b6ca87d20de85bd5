// Package arena is a generational slot map. Items live in slots addressed by
// handles; freeing a slot bumps its generation so that handles taken before
// the free are detectably stale instead of silently aliasing whatever reuses
// the slot. Freed slots are recycled before the arena grows.
//
// Items are allocated individually, so a pointer obtained from Get stays valid
// (and keeps pointing at the same slot) while the arena grows. It must not be
// used after the slot is freed.
package arena

import "fmt"

// Handle to an item in an arena. The zero handle is never valid, which makes it
// usable as "none".
type Handle struct {
	index      uint32
	generation uint32
}

// The zero handle
var Nil Handle

func (h Handle) IsNil() bool {
	return h.generation == 0
}

// Position of the slot. Only meaningful for debugging and stable ordering.
func (h Handle) Index() int {
	return int(h.index)
}

func (h Handle) String() string {
	if h.IsNil() {
		return "nil"
	}
	return fmt.Sprintf("%d@%d", h.index, h.generation)
}

type slot[T any] struct {
	generation uint32
	live       bool
	item       *T
}

type Arena[T any] struct {
	slots []slot[T]
	free  []uint32
	live  int
}

// Allocate a zeroed item, preferring a previously freed slot.
func (a *Arena[T]) Alloc() (Handle, *T) {
	var index uint32
	if n := len(a.free); n > 0 {
		index = a.free[n-1]
		a.free = a.free[:n-1]
		s := &a.slots[index]
		var zero T
		*s.item = zero
	} else {
		index = uint32(len(a.slots))
		a.slots = append(a.slots, slot[T]{item: new(T)})
	}
	s := &a.slots[index]
	s.generation++
	if s.generation == 0 {
		// Wrapped around. Generation zero is reserved for the nil handle.
		s.generation = 1
	}
	s.live = true
	a.live++
	return Handle{index: index, generation: s.generation}, s.item
}

// Look up a handle. Returns false for nil, stale or out of range handles.
func (a *Arena[T]) Get(h Handle) (*T, bool) {
	if h.IsNil() || int(h.index) >= len(a.slots) {
		return nil, false
	}
	s := &a.slots[h.index]
	if !s.live || s.generation != h.generation {
		return nil, false
	}
	return s.item, true
}

func (a *Arena[T]) Valid(h Handle) bool {
	_, ok := a.Get(h)
	return ok
}

// Release the slot. Returns false if the handle was not live.
func (a *Arena[T]) Free(h Handle) bool {
	if !a.Valid(h) {
		return false
	}
	s := &a.slots[h.index]
	s.live = false
	a.free = append(a.free, h.index)
	a.live--
	return true
}

// Number of live items
func (a *Arena[T]) Len() int {
	return a.live
}

// Number of slots, live or not. Slot indexes range over [0, Slots()).
func (a *Arena[T]) Slots() int {
	return len(a.slots)
}

// Number of free slots waiting to be recycled
func (a *Arena[T]) FreeSlots() int {
	return len(a.free)
}

// The item in the slot with the given index, if that slot is live.
func (a *Arena[T]) At(index int) (Handle, *T, bool) {
	if index < 0 || index >= len(a.slots) {
		return Nil, nil, false
	}
	s := &a.slots[index]
	if !s.live {
		return Nil, nil, false
	}
	return Handle{index: uint32(index), generation: s.generation}, s.item, true
}

// Visit every live item in slot order. Stop early if fn returns false. The
// arena must not be modified during iteration.
func (a *Arena[T]) Each(fn func(Handle, *T) bool) {
	for i := range a.slots {
		s := &a.slots[i]
		if !s.live {
			continue
		}
		if !fn(Handle{index: uint32(i), generation: s.generation}, s.item) {
			return
		}
	}
}

// Handles of all live items in slot order
func (a *Arena[T]) Handles() []Handle {
	result := make([]Handle, 0, a.live)
	a.Each(func(h Handle, _ *T) bool {
		result = append(result, h)
		return true
	})
	return result
}

// Drop every item. Generations are kept so that handles from before the clear
// stay invalid.
func (a *Arena[T]) Clear() {
	a.free = a.free[:0]
	for i := range a.slots {
		s := &a.slots[i]
		if s.live {
			s.live = false
			a.live--
		}
		var zero T
		*s.item = zero
		a.free = append(a.free, uint32(i))
	}
	// Reverse so that recycling starts from slot zero again
	for i, j := 0, len(a.free)-1; i < j; i, j = i+1, j-1 {
		a.free[i], a.free[j] = a.free[j], a.free[i]
	}
}
