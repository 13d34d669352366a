package fabric

import (
	"log"

	"github.com/sarchlab/streamsim/arbiter"
	"github.com/sarchlab/streamsim/sim"
	"github.com/sarchlab/streamsim/stream"
)

// A Builder can build fabrics.
type Builder struct {
	engine    sim.Engine
	freq      sim.Freq
	sources   []stream.Source
	arb       *arbiter.Comp
	path      stream.Block
	sink      stream.Sink
	maxCycles uint64
}

// MakeBuilder creates a builder with a 1 GHz clock and no cycle limit.
func MakeBuilder() Builder {
	return Builder{freq: 1 * sim.GHz}
}

// WithEngine sets the engine that schedules the cycles.
func (b Builder) WithEngine(e sim.Engine) Builder {
	b.engine = e
	return b
}

// WithFreq sets the clock frequency.
func (b Builder) WithFreq(f sim.Freq) Builder {
	b.freq = f
	return b
}

// WithSources sets the producers. With more than one producer an arbiter is
// required.
func (b Builder) WithSources(sources ...stream.Source) Builder {
	b.sources = append([]stream.Source(nil), sources...)
	return b
}

// WithArbiter sets the arbiter that merges the producers.
func (b Builder) WithArbiter(a *arbiter.Comp) Builder {
	b.arb = a
	return b
}

// WithPath sets the blocks between the producers and the consumer.
func (b Builder) WithPath(p stream.Block) Builder {
	b.path = p
	return b
}

// WithSink sets the consumer.
func (b Builder) WithSink(s stream.Sink) Builder {
	b.sink = s
	return b
}

// WithMaxCycles limits the number of cycles run. Zero means no limit.
func (b Builder) WithMaxCycles(n uint64) Builder {
	b.maxCycles = n
	return b
}

// Build builds a fabric.
func (b Builder) Build(name string) *Comp {
	b.mustBeComplete(name)

	path := b.path
	if path == nil {
		path = stream.NewPath(sim.BuildName(name, "Path"))
	}

	c := &Comp{
		sources:   b.sources,
		arb:       b.arb,
		path:      path,
		sink:      b.sink,
		maxCycles: b.maxCycles,
		ins:       make([]stream.Beat, len(b.sources)),
		accepted:  make([]bool, len(b.sources)),
	}
	c.TickingComponent = sim.NewTickingComponent(name, b.engine, b.freq, c)

	return c
}

func (b Builder) mustBeComplete(name string) {
	if b.engine == nil {
		log.Panicf("fabric %s has no engine", name)
	}

	if b.sink == nil {
		log.Panicf("fabric %s has no sink", name)
	}

	if len(b.sources) == 0 {
		log.Panicf("fabric %s has no source", name)
	}

	if b.arb == nil && len(b.sources) > 1 {
		panic(stream.NewConfigError(name,
			"%d sources need an arbiter", len(b.sources)))
	}

	if b.arb != nil && b.arb.NumPorts() != len(b.sources) {
		panic(stream.NewConfigError(name,
			"arbiter has %d ports but %d sources are given",
			b.arb.NumPorts(), len(b.sources)))
	}
}
