// Package acceptance builds a randomized end-to-end fabric and checks that
// every transfer produced arrives regrouped into well-formed packets.
package acceptance

import (
	"fmt"
	"log"
	"math/rand"

	"github.com/sarchlab/streamsim/arbiter"
	"github.com/sarchlab/streamsim/fabric"
	"github.com/sarchlab/streamsim/fifo"
	"github.com/sarchlab/streamsim/packetformer"
	"github.com/sarchlab/streamsim/pipeline"
	"github.com/sarchlab/streamsim/sim"
	"github.com/sarchlab/streamsim/stream"
	"github.com/sarchlab/streamsim/widthconv"
)

// Options selects the shape and traffic of a test.
type Options struct {
	Config           stream.Config
	NumStreams       int
	PacketSize       int
	ReadLatency      int
	TransfersPerSrc  int
	LastProbability  float64
	ValidProbability float64
	ReadyProbability float64
	ArbiterPolicy    arbiter.Policy
	PacketAtomic     bool
	InPolicies       []pipeline.Policy
	OutPolicies      []pipeline.Policy
	Seed             int64
	MaxCycles        uint64

	// FIFODepth inserts a FIFO of that capacity between the input pipeline
	// and the packet former. Zero leaves it out.
	FIFODepth int

	// WidthRatio splits every packet former output into that many narrower
	// transfers and gathers them back before the consumer. It must divide
	// the item count. Zero and one leave the pair out.
	WidthRatio int
}

// DefaultOptions returns a two-stream test with moderate back-pressure.
func DefaultOptions() Options {
	return Options{
		Config:           stream.DefaultConfig(),
		NumStreams:       2,
		PacketSize:       16,
		ReadLatency:      2,
		TransfersPerSrc:  200,
		LastProbability:  0.1,
		ValidProbability: 0.6,
		ReadyProbability: 0.7,
		ArbiterPolicy:    arbiter.RoundRobin,
		InPolicies:       []pipeline.Policy{pipeline.ReadyDecoupled},
		OutPolicies:      []pipeline.Policy{pipeline.Primed},
		Seed:             1,
		MaxCycles:        1_000_000,
	}
}

// Test is one assembled fabric together with the traffic it carries.
type Test struct {
	opts Options

	Sources      []*stream.ScriptSource
	Sink         *stream.CollectSink
	Arbiter      *arbiter.Comp
	InPipe       *pipeline.Pipeline
	PacketFormer *packetformer.Comp
	OutPipe      *pipeline.Pipeline
	FIFO         *fifo.Comp
	Downsizer    *widthconv.Downsizer
	Upsizer      *widthconv.Upsizer
	Fabric       *fabric.Comp

	sent [][]stream.Transfer
}

// NewTest builds the fabric on the engine and generates the traffic.
func NewTest(engine sim.Engine, opts Options) *Test {
	t := &Test{opts: opts}

	rng := rand.New(rand.NewSource(opts.Seed))
	t.generate(rng)

	t.Sources = make([]*stream.ScriptSource, opts.NumStreams)
	sources := make([]stream.Source, opts.NumStreams)

	for i := range t.Sources {
		t.Sources[i] = stream.NewScriptSource(t.sent[i]...).
			WithValidPattern(stream.Random(rng.Uint64(), opts.ValidProbability))
		sources[i] = t.Sources[i]
	}

	t.Sink = stream.NewCollectSink().
		WithReadyPattern(stream.Random(rng.Uint64(), opts.ReadyProbability))

	t.Arbiter = arbiter.MakeBuilder().
		WithConfig(opts.Config).
		WithNumPorts(opts.NumStreams).
		WithPolicy(opts.ArbiterPolicy).
		WithPacketAtomic(opts.PacketAtomic).
		WithTagPorts(true).
		Build("Arbiter")
	t.InPipe = pipeline.MakeBuilder().
		WithConfig(opts.Config).
		WithPolicies(opts.InPolicies...).
		Build("InPipe")
	t.PacketFormer = packetformer.MakeBuilder().
		WithConfig(opts.Config).
		WithNumStreams(opts.NumStreams).
		WithPacketSize(opts.PacketSize).
		WithReadLatency(opts.ReadLatency).
		Build("PacketFormer")
	t.OutPipe = pipeline.MakeBuilder().
		WithConfig(opts.Config).
		WithPolicies(opts.OutPolicies...).
		Build("OutPipe")

	t.Fabric = fabric.MakeBuilder().
		WithEngine(engine).
		WithSources(sources...).
		WithArbiter(t.Arbiter).
		WithPath(stream.NewPath("Path", t.blocks()...)).
		WithSink(t.Sink).
		WithMaxCycles(opts.MaxCycles).
		Build("Fabric")

	return t
}

func (t *Test) buildWidthPair() {
	cfg := t.opts.Config
	r := t.opts.WidthRatio

	if cfg.NumItems%r != 0 {
		panic(stream.NewConfigError("Test",
			"width ratio %d does not divide %d items", r, cfg.NumItems))
	}

	narrow := cfg
	narrow.NumItems = cfg.NumItems / r

	t.Downsizer = widthconv.NewDownsizer("Downsizer", narrow, r, true)
	t.Upsizer = widthconv.NewUpsizer("Upsizer", narrow, r)
}

func (t *Test) blocks() []stream.Block {
	blocks := []stream.Block{t.InPipe}

	if t.opts.FIFODepth > 0 {
		t.FIFO = fifo.MakeBuilder().
			WithConfig(t.opts.Config).
			WithCapacity(t.opts.FIFODepth).
			Build("FIFO")
		blocks = append(blocks, t.FIFO)
	}

	blocks = append(blocks, t.PacketFormer, t.OutPipe)

	if t.opts.WidthRatio > 1 {
		t.buildWidthPair()
		blocks = append(blocks, t.Downsizer, t.Upsizer)
	}

	return blocks
}

func (t *Test) generate(rng *rand.Rand) {
	cfg := t.opts.Config
	itemMask := stream.FullMask(cfg.ItemBits)
	fullKeep := stream.FullMask(cfg.NumItems)

	t.sent = make([][]stream.Transfer, t.opts.NumStreams)

	for s := range t.sent {
		for i := 0; i < t.opts.TransfersPerSrc; i++ {
			data := make([]uint64, cfg.NumItems)
			for j := range data {
				data[j] = rng.Uint64() & itemMask
			}

			t.sent[s] = append(t.sent[s], stream.Transfer{
				Data: data,
				Keep: fullKeep,
				Strb: fullKeep,
				Last: i == t.opts.TransfersPerSrc-1 ||
					rng.Float64() < t.opts.LastProbability,
			})
		}
	}
}

// NumTransfers returns the total number of transfers the sources offer.
func (t *Test) NumTransfers() int {
	n := 0
	for _, s := range t.sent {
		n += len(s)
	}

	return n
}

// Start schedules the first cycle.
func (t *Test) Start() {
	t.Fabric.Start()
}

// Verify checks that nothing was lost, stream order is preserved, and every
// packet is tagged with one stream and with its length.
func (t *Test) Verify() error {
	if t.Fabric.HitMaxCycles() {
		return fmt.Errorf("fabric did not drain within %d cycles",
			t.opts.MaxCycles)
	}

	if len(t.Sink.Received) != t.NumTransfers() {
		return fmt.Errorf("%d transfers sent, but %d received",
			t.NumTransfers(), len(t.Sink.Received))
	}

	lengthMask := stream.FullMask(t.PacketFormer.Spec().LengthBits())
	perStream := make([]int, t.opts.NumStreams)

	for i, p := range t.Sink.Packets() {
		if len(p) > t.opts.PacketSize {
			return fmt.Errorf("packet %d has %d transfers, more than %d",
				i, len(p), t.opts.PacketSize)
		}

		for _, got := range p {
			if err := t.checkTransfer(got, p, perStream, lengthMask); err != nil {
				return fmt.Errorf("packet %d: %w", i, err)
			}
		}
	}

	return nil
}

func (t *Test) checkTransfer(
	got stream.Transfer,
	packet []stream.Transfer,
	perStream []int,
	lengthMask uint64,
) error {
	s := int(got.ID)
	if got.ID != packet[0].ID || s >= len(t.sent) {
		return fmt.Errorf("mixed or unknown stream tag %d", got.ID)
	}

	if got.User&lengthMask != uint64(len(packet)) {
		return fmt.Errorf("length field %d, but %d transfers",
			got.User&lengthMask, len(packet))
	}

	want := t.sent[s][perStream[s]]
	perStream[s]++

	if got.Keep != want.Keep || got.Strb != want.Strb {
		return fmt.Errorf("stream %d transfer %d has wrong masks", s, perStream[s]-1)
	}

	for j := range want.Data {
		if got.Data[j] != want.Data[j] {
			return fmt.Errorf("stream %d transfer %d is out of order",
				s, perStream[s]-1)
		}
	}

	if want.Last && !got.Last {
		return fmt.Errorf("stream %d transfer %d lost its last flag",
			s, perStream[s]-1)
	}

	return nil
}

// Report logs the throughput the test achieved.
func (t *Test) Report() {
	cycles := t.Fabric.Cycle()
	if cycles == 0 {
		return
	}

	log.Printf("%d transfers, %d packets in %d cycles, %.3f transfers/cycle, "+
		"%d arbiter grants, %d interrupted grants",
		len(t.Sink.Received), len(t.Sink.Packets()), cycles,
		float64(len(t.Sink.Received))/float64(cycles),
		t.Arbiter.NumGrants(), t.Arbiter.InterruptCount())
}
