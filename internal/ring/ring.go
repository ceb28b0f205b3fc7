// Package ring implements a single-producer/single-consumer lock-free
// FIFO ring buffer of fixed capacity, used wherever the foreground
// (application code) hands data to the radio-ISR-driven link layer
// without a mutex. Capacity is fixed at construction and never grows.
package ring

import "sync/atomic"

// Buffer is a bounded SPSC ring buffer holding values of type T. Exactly
// one goroutine may call Push; exactly one (possibly different) goroutine
// may call Pop. Both may run concurrently with each other, never with
// themselves.
type Buffer[T any] struct {
	slots []T
	head  atomic.Uint64 // next slot to pop; written only by the consumer
	tail  atomic.Uint64 // next slot to push; written only by the producer
}

// New returns a ring buffer with room for capacity elements.
func New[T any](capacity int) *Buffer[T] {
	if capacity <= 0 {
		panic("ring: capacity must be positive")
	}
	return &Buffer[T]{slots: make([]T, capacity)}
}

// Cap returns the buffer's fixed capacity.
func (r *Buffer[T]) Cap() int { return len(r.slots) }

// Len returns the number of items currently queued. It is a snapshot;
// another goroutine may be concurrently pushing or popping.
func (r *Buffer[T]) Len() int {
	return int(r.tail.Load() - r.head.Load())
}

// Push appends v to the buffer and reports whether there was room. The
// store of v happens-before the release of tail, so a concurrent Pop
// that observes the new tail is guaranteed to see v.
func (r *Buffer[T]) Push(v T) bool {
	tail := r.tail.Load()
	head := r.head.Load()
	if int(tail-head) >= len(r.slots) {
		return false
	}
	r.slots[int(tail)%len(r.slots)] = v
	r.tail.Store(tail + 1) // release
	return true
}

// Pop removes and returns the oldest queued item. ok is false if the
// buffer was empty.
func (r *Buffer[T]) Pop() (v T, ok bool) {
	head := r.head.Load()
	tail := r.tail.Load() // acquire
	if head == tail {
		return v, false
	}
	v = r.slots[int(head)%len(r.slots)]
	r.head.Store(head + 1)
	return v, true
}
