package fifo

import (
	"github.com/sarchlab/streamsim/sim"
	"github.com/sarchlab/streamsim/stream"
)

// HookPosPush marks a transfer entering the FIFO.
var HookPosPush = &sim.HookPos{Name: "FIFO Push"}

// HookPosPop marks a transfer leaving the FIFO.
var HookPosPop = &sim.HookPos{Name: "FIFO Pop"}

// Comp is a first-word-fall-through stream FIFO. The head transfer is
// presented as soon as it is stored. The FIFO is not aware of packets.
//
// The pipelined reset flag on the input empties the FIFO. The flag is then
// presented on the output for one tick, during which the input is refused.
type Comp struct {
	sim.HookableBase

	name   string
	config stream.Config
	ring   *Ring[stream.Transfer]

	almostFullLevel  int
	almostEmptyLevel int
	rst              bool
}

// Name returns the name of the FIFO.
func (c *Comp) Name() string {
	return c.name
}

// InConfig returns the shape of the input channel.
func (c *Comp) InConfig() stream.Config {
	return c.config
}

// OutConfig returns the shape of the output channel.
func (c *Comp) OutConfig() stream.Config {
	return c.config
}

// Forward presents the head transfer.
func (c *Comp) Forward(stream.Beat) stream.Beat {
	if c.rst {
		return stream.ResetBeat()
	}

	if c.ring.Empty() {
		return stream.Idle
	}

	return stream.Beat{Valid: true, T: c.ring.Peek()}
}

// Backward accepts while there is room. Acceptance does not depend on the
// downstream on the same tick.
func (c *Comp) Backward(bool) bool {
	return !c.rst && !c.ring.Full()
}

// Commit pops the head if it was accepted and stores the input if it fired.
func (c *Comp) Commit(in stream.Beat, downReady bool) {
	if in.T.Reset {
		c.ring.Clear()
		c.rst = true

		return
	}

	if c.rst {
		c.rst = false
		return
	}

	upFire := stream.Fires(in, c.Backward(downReady))

	if !c.ring.Empty() && downReady {
		t := c.ring.Pop()
		c.invoke(HookPosPop, t)
	}

	if upFire {
		t := c.config.Trim(in.T)
		c.ring.Push(t)
		c.invoke(HookPosPush, t)
	}
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

// Busy reports whether the FIFO holds a transfer.
func (c *Comp) Busy() bool {
	return !c.ring.Empty()
}

// Size returns the number of transfers stored.
func (c *Comp) Size() int {
	return c.ring.Size()
}

// Capacity returns the number of transfers the FIFO can store.
func (c *Comp) Capacity() int {
	return c.ring.Capacity()
}

// AlmostFull reports whether the fill level reached the almost-full level.
func (c *Comp) AlmostFull() bool {
	return c.ring.Size() >= c.almostFullLevel
}

// AlmostEmpty reports whether the fill level is at or below the almost-empty
// level.
func (c *Comp) AlmostEmpty() bool {
	return c.ring.Size() <= c.almostEmptyLevel
}
