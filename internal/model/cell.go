package model

import "sync"

// cell is an independently-lockable field, mirroring the original's
// per-field Arc<Mutex<T>> bundle (spec.md §4.3: "concurrent readers of one
// field are not blocked by writers of another field — logically the state
// is a bundle of independent cells"). A plain struct-level mutex would
// satisfy the invariant too (DESIGN NOTES §9 permits either design); cell
// is kept because it maps field-for-field onto the original and makes the
// "every mutation is serialized with respect to other mutations of the
// same state" invariant (Invariant 4) trivially true per field.
type cell[T any] struct {
	mu  sync.RWMutex
	val T
}

func newCell[T any](v T) *cell[T] {
	return &cell[T]{val: v}
}

func (c *cell[T]) get() T {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.val
}

func (c *cell[T]) set(v T) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.val = v
}
