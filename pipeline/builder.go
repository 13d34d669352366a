package pipeline

import (
	"github.com/sarchlab/streamsim/sim"
	"github.com/sarchlab/streamsim/stream"
)

// A Builder can build pipelines.
type Builder struct {
	config   stream.Config
	policies []Policy
}

// MakeBuilder creates a builder of a single primed stage over the default
// channel shape.
func MakeBuilder() Builder {
	return Builder{
		config:   stream.DefaultConfig(),
		policies: []Policy{Primed},
	}
}

// WithConfig sets the shape of the channel that the pipeline carries.
func (b Builder) WithConfig(c stream.Config) Builder {
	b.config = c
	return b
}

// WithPolicies sets the policy of every stage, upstream first. An empty list
// builds a pipeline that is a plain wire.
func (b Builder) WithPolicies(policies ...Policy) Builder {
	b.policies = append([]Policy(nil), policies...)
	return b
}

// WithNumStage sets the pipeline to n stages of the same policy.
func (b Builder) WithNumStage(n int, policy Policy) Builder {
	b.policies = make([]Policy, n)
	for i := range b.policies {
		b.policies[i] = policy
	}

	return b
}

// Build builds a pipeline.
func (b Builder) Build(name string) *Pipeline {
	if err := b.config.Validate(); err != nil {
		panic(err)
	}

	stages := make([]*Stage, len(b.policies))
	blocks := make([]stream.Block, len(b.policies))

	for i, policy := range b.policies {
		stages[i] = NewStage(sim.BuildNameWithIndex(name, "Stage", i), policy)
		blocks[i] = stages[i]
	}

	return &Pipeline{
		Path:   stream.NewPath(name, blocks...),
		config: b.config,
		stages: stages,
	}
}

// A Pipeline is a chain of stages that carries one channel shape.
type Pipeline struct {
	*stream.Path

	config stream.Config
	stages []*Stage
}

// Stages returns the stages, upstream first.
func (p *Pipeline) Stages() []*Stage {
	return p.stages
}

// Latency returns the number of registered stages, which is the number of
// ticks a transfer takes to cross an unstalled pipeline.
func (p *Pipeline) Latency() int {
	n := 0

	for _, s := range p.stages {
		if s.Policy().Registered() {
			n++
		}
	}

	return n
}

// InConfig returns the shape of the input channel.
func (p *Pipeline) InConfig() stream.Config {
	return p.config
}

// OutConfig returns the shape of the output channel.
func (p *Pipeline) OutConfig() stream.Config {
	return p.config
}

// Reset requests a local reset of every registered stage.
func (p *Pipeline) Reset() {
	for _, s := range p.stages {
		s.Reset()
	}
}

// SetDecoupled sets the disable condition of every decoupling stage.
func (p *Pipeline) SetDecoupled(decoupled bool) {
	for _, s := range p.stages {
		s.SetDecoupled(decoupled)
	}
}

// Occupancy returns the number of transfers held by all stages.
func (p *Pipeline) Occupancy() int {
	n := 0
	for _, s := range p.stages {
		n += s.Occupancy()
	}

	return n
}
