package packetformer

import (
	"github.com/sarchlab/streamsim/fifo"
	"github.com/sarchlab/streamsim/sim"
	"github.com/sarchlab/streamsim/stream"
)

// A Builder can build packet formers.
type Builder struct {
	spec Spec
}

// MakeBuilder creates a builder with the default spec.
func MakeBuilder() Builder {
	return Builder{spec: DefaultSpec()}
}

// WithSpec replaces the whole spec.
func (b Builder) WithSpec(s Spec) Builder {
	b.spec = s
	return b
}

// WithNumStreams sets the number of streams.
func (b Builder) WithNumStreams(n int) Builder {
	b.spec.NumStreams = n
	return b
}

// WithPacketSize sets the maximum packet length.
func (b Builder) WithPacketSize(n int) Builder {
	b.spec.PacketSize = n
	return b
}

// WithReadLatency sets the read latency of the shared memory.
func (b Builder) WithReadLatency(n int) Builder {
	b.spec.ReadLatency = n
	return b
}

// WithAlmostFullMargin sets the almost-full margin of the virtual queues.
func (b Builder) WithAlmostFullMargin(n int) Builder {
	b.spec.AlmostFullMargin = n
	return b
}

// WithRecordQueueDepth sets the capacity of the packet-record queue.
func (b Builder) WithRecordQueueDepth(n int) Builder {
	b.spec.RecordQueueDepth = n
	return b
}

// WithConfig sets the shape of the channel.
func (b Builder) WithConfig(c stream.Config) Builder {
	b.spec.Config = c
	return b
}

// Build builds a packet former. It panics with a *stream.ConfigError if the
// spec cannot be elaborated.
func (b Builder) Build(name string) *Comp {
	sim.NameMustBeValid(name)

	if err := b.spec.validate(name); err != nil {
		panic(err)
	}

	s := b.spec
	c := &Comp{
		name:     name,
		spec:     s,
		queues:   newVirtualQueues(s.NumStreams, s.QueueDepth(), s.AlmostFullMargin),
		tracker:  newCompletionTracker(s.recordQueueDepth()),
		mem:      newMemory(s.MemoryDepth(), s.ReadLatency),
		tags:     newTagPipe(s.ReadLatency),
		counters: make([]int, s.NumStreams),
	}

	c.out = fifo.NewRing[stream.Transfer](s.ReadLatency + 1)

	return c
}
