package packetformer

import (
	"log"

	"github.com/sarchlab/streamsim/stream"
)

// delayLine is a fixed-depth shift register. An item entering on one tick
// leaves depth ticks later.
type delayLine[T any] struct {
	valid []bool
	items []T
}

func newDelayLine[T any](depth int) *delayLine[T] {
	return &delayLine[T]{
		valid: make([]bool, depth),
		items: make([]T, depth),
	}
}

// Advance shifts the line by one tick. It returns the item that leaves, if
// any.
func (d *delayLine[T]) Advance(in T, inValid bool) (out T, outValid bool) {
	last := len(d.items) - 1
	out, outValid = d.items[last], d.valid[last]

	copy(d.items[1:], d.items[:last])
	copy(d.valid[1:], d.valid[:last])

	d.items[0], d.valid[0] = in, inValid

	return out, outValid
}

// Count returns the number of items in flight.
func (d *delayLine[T]) Count() int {
	n := 0
	for _, v := range d.valid {
		if v {
			n++
		}
	}

	return n
}

func (d *delayLine[T]) Clear() {
	var zero T
	for i := range d.items {
		d.items[i] = zero
		d.valid[i] = false
	}
}

// memory is a memory with one write port and one read port. A read samples
// the cell when it is issued and the data leaves the read pipeline after the
// read latency.
type memory struct {
	cells []stream.Transfer
	reads *delayLine[stream.Transfer]
}

func newMemory(depth, readLatency int) *memory {
	return &memory{
		cells: make([]stream.Transfer, depth),
		reads: newDelayLine[stream.Transfer](readLatency),
	}
}

func (m *memory) Write(addr int, t stream.Transfer) {
	if addr < 0 || addr >= len(m.cells) {
		log.Panicf("memory address %d out of range", addr)
	}

	m.cells[addr] = t
}

// Advance moves the read pipeline by one tick, issuing a read of addr if
// issue is set. It returns the data of the read that completes.
func (m *memory) Advance(addr int, issue bool) (stream.Transfer, bool) {
	var data stream.Transfer
	if issue {
		data = m.cells[addr]
	}

	return m.reads.Advance(data, issue)
}

func (m *memory) InFlight() int {
	return m.reads.Count()
}

func (m *memory) Clear() {
	for i := range m.cells {
		m.cells[i] = stream.Transfer{}
	}

	m.reads.Clear()
}

// readTag is the metadata of one issued read.
type readTag struct {
	stream int
	length int
	last   bool
}

// tagPipe carries read metadata in lockstep with the read pipeline.
type tagPipe struct {
	line *delayLine[readTag]
}

func newTagPipe(depth int) *tagPipe {
	return &tagPipe{line: newDelayLine[readTag](depth)}
}

func (p *tagPipe) Advance(tag readTag, issue bool) (readTag, bool) {
	return p.line.Advance(tag, issue)
}

func (p *tagPipe) Clear() {
	p.line.Clear()
}
