// Package fabric drives a stream interconnect with the simulation engine.
//
// A fabric ties producer sources, an optional arbiter, a path of blocks, and
// a consumer sink together. On every cycle it first evaluates every element
// against the state committed on the previous cycle and then commits all of
// them.
package fabric

import (
	"github.com/sarchlab/streamsim/arbiter"
	"github.com/sarchlab/streamsim/sim"
	"github.com/sarchlab/streamsim/stream"
)

// HookPosTransferIn marks a transfer entering the path. The item is the
// transfer.
var HookPosTransferIn = &sim.HookPos{Name: "Transfer In"}

// HookPosTransferOut marks a transfer delivered to the sink. The item is the
// transfer.
var HookPosTransferOut = &sim.HookPos{Name: "Transfer Out"}

// Comp is a ticking component that runs one interconnect.
type Comp struct {
	*sim.TickingComponent

	sources   []stream.Source
	arb       *arbiter.Comp
	path      stream.Block
	sink      stream.Sink
	maxCycles uint64

	cycle        uint64
	numIn        uint64
	numOut       uint64
	ins          []stream.Beat
	accepted     []bool
	hitMaxCycles bool
}

// Start schedules the first cycle.
func (c *Comp) Start() {
	c.TickNow()
}

// Tick runs one cycle.
func (c *Comp) Tick() bool {
	if c.maxCycles > 0 && c.cycle >= c.maxCycles {
		c.hitMaxCycles = true
		return false
	}

	for i, s := range c.sources {
		c.ins[i] = s.Present()
	}

	sinkReady := c.sink.Ready()
	pathReady := c.path.Backward(sinkReady)
	merged := c.merge(pathReady)
	out := c.path.Forward(merged)

	if c.arb != nil {
		c.arb.Commit(c.ins, pathReady)
	}

	c.path.Commit(merged, sinkReady)

	madeProgress := false

	for i, s := range c.sources {
		fired := stream.Fires(c.ins[i], c.accepted[i])
		s.Commit(fired)
		madeProgress = madeProgress || fired
	}

	c.sink.Commit(out, sinkReady)

	if stream.Fires(merged, pathReady) {
		c.numIn++
		c.invoke(HookPosTransferIn, merged.T)
	}

	if stream.Fires(out, sinkReady) {
		c.numOut++
		c.invoke(HookPosTransferOut, out.T)
		madeProgress = true
	}

	c.cycle++

	return madeProgress || c.path.Busy() || !c.sourcesDone()
}

func (c *Comp) merge(pathReady bool) stream.Beat {
	if c.arb == nil {
		c.accepted[0] = pathReady
		return c.ins[0]
	}

	merged, readies := c.arb.Eval(c.ins, pathReady)
	copy(c.accepted, readies)

	return merged
}

func (c *Comp) sourcesDone() bool {
	for _, s := range c.sources {
		if !s.Done() {
			return false
		}
	}

	return true
}

func (c *Comp) invoke(pos *sim.HookPos, t stream.Transfer) {
	if c.NumHooks() == 0 {
		return
	}

	c.InvokeHook(sim.HookCtx{
		Domain: c,
		Pos:    pos,
		Item:   t,
	})
}

// Cycle returns the number of cycles run.
func (c *Comp) Cycle() uint64 {
	return c.cycle
}

// NumTransfersIn returns the number of transfers that entered the path.
func (c *Comp) NumTransfersIn() uint64 {
	return c.numIn
}

// NumTransfersOut returns the number of transfers delivered to the sink.
func (c *Comp) NumTransfersOut() uint64 {
	return c.numOut
}

// HitMaxCycles reports whether the fabric stopped because of the cycle limit.
func (c *Comp) HitMaxCycles() bool {
	return c.hitMaxCycles
}

// Path returns the block path of the fabric.
func (c *Comp) Path() stream.Block {
	return c.path
}

// Arbiter returns the arbiter, or nil if the fabric has a single source.
func (c *Comp) Arbiter() *arbiter.Comp {
	return c.arb
}
