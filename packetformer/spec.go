// Package packetformer regroups one interleaved multi-stream channel into
// contiguous per-stream packets.
//
// Every stream owns a virtual queue carved out of a single shared memory. A
// packet is complete when its end flag arrives or when its length reaches the
// packet size. Completed packets are replayed in completion order, each
// transfer carrying the packet length in the low bits of its side channel.
package packetformer

import (
	"github.com/sarchlab/streamsim/stream"
)

// Spec is the elaboration-time configuration of a packet former.
type Spec struct {
	// NumStreams is the number of distinct stream tags accepted.
	NumStreams int

	// PacketSize is the maximum number of transfers in one packet.
	PacketSize int

	// ReadLatency is the number of ticks from issuing a memory read to the
	// data being available for reassembly.
	ReadLatency int

	// AlmostFullMargin is the number of free slots below which a virtual
	// queue is reported almost full.
	AlmostFullMargin int

	// RecordQueueDepth is the capacity of the packet-record queue. Zero
	// selects NumStreams times the virtual-queue depth.
	RecordQueueDepth int

	// Config is the shape of the input and output channel.
	Config stream.Config
}

// DefaultSpec returns a packet former of two streams with packets of up to
// 16 transfers.
func DefaultSpec() Spec {
	return Spec{
		NumStreams:       2,
		PacketSize:       16,
		ReadLatency:      2,
		AlmostFullMargin: 1,
		Config:           stream.DefaultConfig(),
	}
}

// QueueDepth returns the capacity of one virtual queue, the smallest power of
// two that holds a full packet plus one slot.
func (s Spec) QueueDepth() int {
	return 1 << stream.CeilLog2(s.PacketSize+1)
}

// MemoryDepth returns the number of transfers held by the shared memory.
func (s Spec) MemoryDepth() int {
	return s.NumStreams * s.QueueDepth()
}

// LengthBits returns the width of the length header in the side channel.
func (s Spec) LengthBits() int {
	return stream.BitsFor(s.PacketSize)
}

func (s Spec) recordQueueDepth() int {
	if s.RecordQueueDepth == 0 {
		return s.NumStreams * s.QueueDepth()
	}

	return s.RecordQueueDepth
}

func (s Spec) validate(name string) error {
	if err := s.Config.Validate(); err != nil {
		return err
	}

	if s.NumStreams < 1 {
		return stream.NewConfigError(name,
			"number of streams must be positive, got %d", s.NumStreams)
	}

	if s.PacketSize < 1 || s.PacketSize > 256 {
		return stream.NewConfigError(name,
			"packet size must be in [1, 256], got %d", s.PacketSize)
	}

	if !s.Config.CanTag(s.NumStreams) {
		return stream.NewConfigError(name,
			"stream tag of %d bits cannot distinguish %d streams",
			s.Config.IDBits, s.NumStreams)
	}

	if s.Config.IgnoreUser || s.Config.UserBits < s.LengthBits() {
		return stream.NewConfigError(name,
			"side channel of %d bits cannot carry a %d-bit length header",
			s.Config.UserBits, s.LengthBits())
	}

	if s.ReadLatency < 1 {
		return stream.NewConfigError(name,
			"read latency must be at least 1, got %d", s.ReadLatency)
	}

	if s.AlmostFullMargin < 1 ||
		s.AlmostFullMargin > s.QueueDepth()-s.PacketSize {
		return stream.NewConfigError(name,
			"almost-full margin must be in [1, %d], got %d",
			s.QueueDepth()-s.PacketSize, s.AlmostFullMargin)
	}

	if s.recordQueueDepth() < s.NumStreams*s.PacketSize {
		return stream.NewConfigError(name,
			"packet-record queue of %d cannot hold %d minimum-length packets",
			s.recordQueueDepth(), s.NumStreams*s.PacketSize)
	}

	return nil
}
