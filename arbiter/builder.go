package arbiter

import (
	"github.com/sarchlab/streamsim/sim"
	"github.com/sarchlab/streamsim/stream"
)

// Spec is the configuration of an arbiter.
type Spec struct {
	NumPorts int
	Policy   Policy

	// PacketAtomic keeps a grant until the granted port transfers the end of
	// its packet.
	PacketAtomic bool

	// TagPorts overwrites the stream tag of every transfer with the index of
	// the port it came from.
	TagPorts bool

	Config stream.Config
}

// A Builder can build arbiters.
type Builder struct {
	spec Spec
}

// MakeBuilder creates a builder of a two-port round-robin arbiter.
func MakeBuilder() Builder {
	return Builder{spec: Spec{
		NumPorts: 2,
		Policy:   RoundRobin,
		Config:   stream.DefaultConfig(),
	}}
}

// WithNumPorts sets the number of producer ports.
func (b Builder) WithNumPorts(n int) Builder {
	b.spec.NumPorts = n
	return b
}

// WithPolicy sets the arbitration policy.
func (b Builder) WithPolicy(p Policy) Builder {
	b.spec.Policy = p
	return b
}

// WithPacketAtomic sets whether whole packets are granted.
func (b Builder) WithPacketAtomic(atomic bool) Builder {
	b.spec.PacketAtomic = atomic
	return b
}

// WithTagPorts sets whether the port index is written into the stream tag.
func (b Builder) WithTagPorts(tag bool) Builder {
	b.spec.TagPorts = tag
	return b
}

// WithConfig sets the shape of the channels.
func (b Builder) WithConfig(c stream.Config) Builder {
	b.spec.Config = c
	return b
}

// Build builds an arbiter.
func (b Builder) Build(name string) *Comp {
	sim.NameMustBeValid(name)

	s := b.spec
	if err := s.Config.Validate(); err != nil {
		panic(err)
	}

	if s.NumPorts < 1 {
		panic(stream.NewConfigError(name,
			"number of ports must be positive, got %d", s.NumPorts))
	}

	if _, ok := policyNames[s.Policy]; !ok {
		panic(stream.NewConfigError(name,
			"unknown arbitration policy %d", int(s.Policy)))
	}

	if s.TagPorts && !s.Config.CanTag(s.NumPorts) {
		panic(stream.NewConfigError(name,
			"stream tag of %d bits cannot distinguish %d ports",
			s.Config.IDBits, s.NumPorts))
	}

	return &Comp{
		name:    name,
		spec:    s,
		queued:  make([]bool, s.NumPorts),
		readies: make([]bool, s.NumPorts),
	}
}
