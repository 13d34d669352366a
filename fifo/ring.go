// Package fifo provides the fixed-capacity ring that backs every queue of the
// interconnect, and a depth-only stream FIFO built on it.
package fifo

import "log"

// Ring is a fixed-capacity first-in first-out queue. The storage is allocated
// once; elements are addressed by a head index and a count.
type Ring[T any] struct {
	slots []T
	head  int
	size  int
}

// NewRing creates a ring that holds up to capacity elements.
func NewRing[T any](capacity int) *Ring[T] {
	if capacity <= 0 {
		log.Panicf("ring capacity must be positive, got %d", capacity)
	}

	return &Ring[T]{slots: make([]T, capacity)}
}

// Capacity returns the maximum number of elements.
func (r *Ring[T]) Capacity() int {
	return len(r.slots)
}

// Size returns the number of elements held.
func (r *Ring[T]) Size() int {
	return r.size
}

// Full reports whether no more element can be pushed.
func (r *Ring[T]) Full() bool {
	return r.size == len(r.slots)
}

// Empty reports whether the ring holds nothing.
func (r *Ring[T]) Empty() bool {
	return r.size == 0
}

// Push appends an element to the tail.
func (r *Ring[T]) Push(e T) {
	if r.Full() {
		log.Panic("ring overflow")
	}

	r.slots[(r.head+r.size)%len(r.slots)] = e
	r.size++
}

// Peek returns the element at the head without removing it.
func (r *Ring[T]) Peek() T {
	if r.Empty() {
		log.Panic("peek into an empty ring")
	}

	return r.slots[r.head]
}

// At returns the i-th element counted from the head.
func (r *Ring[T]) At(i int) T {
	if i < 0 || i >= r.size {
		log.Panicf("ring index %d out of range [0, %d)", i, r.size)
	}

	return r.slots[(r.head+i)%len(r.slots)]
}

// Pop removes and returns the element at the head.
func (r *Ring[T]) Pop() T {
	e := r.Peek()

	var zero T
	r.slots[r.head] = zero
	r.head = (r.head + 1) % len(r.slots)
	r.size--

	return e
}

// Clear removes all elements.
func (r *Ring[T]) Clear() {
	var zero T
	for i := range r.slots {
		r.slots[i] = zero
	}

	r.head = 0
	r.size = 0
}
