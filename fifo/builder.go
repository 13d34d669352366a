package fifo

import (
	"github.com/sarchlab/streamsim/sim"
	"github.com/sarchlab/streamsim/stream"
)

// A Builder can build stream FIFOs.
type Builder struct {
	config           stream.Config
	capacity         int
	almostFullLevel  int
	almostEmptyLevel int
}

// MakeBuilder creates a builder of a 16-deep FIFO over the default channel
// shape. The almost-full level defaults to the capacity and the almost-empty
// level to zero.
func MakeBuilder() Builder {
	return Builder{
		config:   stream.DefaultConfig(),
		capacity: 16,
	}
}

// WithConfig sets the shape of the channel.
func (b Builder) WithConfig(c stream.Config) Builder {
	b.config = c
	return b
}

// WithCapacity sets the number of transfers that can be stored.
func (b Builder) WithCapacity(n int) Builder {
	b.capacity = n
	return b
}

// WithAlmostFullLevel sets the fill level from which AlmostFull is reported.
func (b Builder) WithAlmostFullLevel(n int) Builder {
	b.almostFullLevel = n
	return b
}

// WithAlmostEmptyLevel sets the fill level up to which AlmostEmpty is
// reported.
func (b Builder) WithAlmostEmptyLevel(n int) Builder {
	b.almostEmptyLevel = n
	return b
}

// Build builds a FIFO.
func (b Builder) Build(name string) *Comp {
	sim.NameMustBeValid(name)

	if err := b.config.Validate(); err != nil {
		panic(err)
	}

	if b.capacity <= 0 {
		panic(stream.NewConfigError(name,
			"capacity must be positive, got %d", b.capacity))
	}

	almostFull := b.almostFullLevel
	if almostFull == 0 {
		almostFull = b.capacity
	}

	if almostFull > b.capacity || b.almostEmptyLevel >= b.capacity ||
		b.almostEmptyLevel < 0 || almostFull < 0 {
		panic(stream.NewConfigError(name,
			"threshold levels %d/%d do not fit capacity %d",
			almostFull, b.almostEmptyLevel, b.capacity))
	}

	return &Comp{
		name:             name,
		config:           b.config,
		ring:             NewRing[stream.Transfer](b.capacity),
		almostFullLevel:  almostFull,
		almostEmptyLevel: b.almostEmptyLevel,
	}
}
