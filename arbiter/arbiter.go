package arbiter

import (
	"log"

	"github.com/sarchlab/streamsim/sim"
	"github.com/sarchlab/streamsim/stream"
)

// HookPosGrantInterrupted marks a tick on which the port holding a packet
// grant presented no valid transfer. The item is the port index.
var HookPosGrantInterrupted = &sim.HookPos{Name: "Grant Interrupted"}

// Comp is an arbiter. Only the granted port sees the downstream acceptance;
// every other port sees it deasserted.
//
// In packet-atomic mode an interrupted grant is reported and kept. The
// packet is never truncated; the consumer decides how to handle the gap.
type Comp struct {
	sim.HookableBase

	name string
	spec Spec

	locked     bool
	lockedPort int
	next       int
	fcfs       []int
	queued     []bool
	readies    []bool

	interrupted    bool
	interruptCount uint64
	numGrants      uint64
}

// Name returns the name of the arbiter.
func (c *Comp) Name() string {
	return c.name
}

// Spec returns the configuration of the arbiter.
func (c *Comp) Spec() Spec {
	return c.spec
}

// NumPorts returns the number of producer ports.
func (c *Comp) NumPorts() int {
	return c.spec.NumPorts
}

// Eval returns the beat presented downstream and the acceptance presented to
// every port on this tick. The returned slice is reused across calls.
func (c *Comp) Eval(ins []stream.Beat, downReady bool) (stream.Beat, []bool) {
	c.mustHaveAllPorts(ins)

	for i := range c.readies {
		c.readies[i] = false
	}

	g := c.grant(ins)
	if g < 0 {
		return stream.Idle, c.readies
	}

	c.readies[g] = downReady

	return c.present(ins[g], g), c.readies
}

func (c *Comp) present(b stream.Beat, port int) stream.Beat {
	if !c.spec.TagPorts || !b.Valid {
		return b
	}

	b.T = b.T.Clone()
	b.T.ID = uint32(port)

	return b
}

// Commit latches the arbitration state with the same inputs Eval saw.
func (c *Comp) Commit(ins []stream.Beat, downReady bool) {
	c.mustHaveAllPorts(ins)

	g := c.grant(ins)
	c.interrupted = false

	if c.locked && ins[g].T.Reset {
		c.locked = false
	} else if c.locked && !ins[g].Valid {
		c.reportInterrupt(g)
	}

	fired := g >= 0 && stream.Fires(ins[g], downReady)
	if fired {
		c.numGrants++
		c.next = (g + 1) % c.spec.NumPorts

		if c.spec.PacketAtomic {
			c.locked = !ins[g].T.Last
			c.lockedPort = g
		}

		if !c.locked {
			c.dequeue(g)
		}
	}

	c.updateQueue(ins, g, fired)
}

func (c *Comp) reportInterrupt(port int) {
	c.interrupted = true
	c.interruptCount++

	if c.NumHooks() > 0 {
		c.InvokeHook(sim.HookCtx{
			Domain: c,
			Pos:    HookPosGrantInterrupted,
			Item:   port,
		})
	}
}

func (c *Comp) grant(ins []stream.Beat) int {
	if c.locked {
		return c.lockedPort
	}

	switch c.spec.Policy {
	case RoundRobin:
		for i := 0; i < c.spec.NumPorts; i++ {
			p := (c.next + i) % c.spec.NumPorts
			if ins[p].Valid {
				return p
			}
		}
	case FirstComeFirstServed:
		for _, p := range c.fcfs {
			if ins[p].Valid {
				return p
			}
		}

		for p := range ins {
			if ins[p].Valid && !c.queued[p] {
				return p
			}
		}
	default:
		for p := range ins {
			if ins[p].Valid {
				return p
			}
		}
	}

	return -1
}

func (c *Comp) dequeue(port int) {
	if !c.queued[port] {
		return
	}

	c.queued[port] = false
	for i, p := range c.fcfs {
		if p == port {
			c.fcfs = append(c.fcfs[:i], c.fcfs[i+1:]...)
			return
		}
	}
}

// updateQueue keeps the waiting ports in the order they became valid. A port
// whose transfer just fired leaves the queue; it rejoins if it presents
// another transfer that is not served immediately.
func (c *Comp) updateQueue(ins []stream.Beat, granted int, fired bool) {
	if c.spec.Policy != FirstComeFirstServed {
		return
	}

	kept := c.fcfs[:0]
	for _, p := range c.fcfs {
		if ins[p].Valid || (c.locked && p == c.lockedPort) {
			kept = append(kept, p)
		} else {
			c.queued[p] = false
		}
	}
	c.fcfs = kept

	for p := range ins {
		if !ins[p].Valid || c.queued[p] {
			continue
		}

		if fired && p == granted && !c.locked {
			continue
		}

		c.queued[p] = true
		c.fcfs = append(c.fcfs, p)
	}
}

func (c *Comp) mustHaveAllPorts(ins []stream.Beat) {
	if len(ins) != c.spec.NumPorts {
		log.Panicf("arbiter %s has %d ports, got %d beats",
			c.name, c.spec.NumPorts, len(ins))
	}
}

// Locked reports whether a packet grant is held.
func (c *Comp) Locked() bool {
	return c.locked
}

// Interrupted reports whether the last committed tick found the port holding
// the packet grant without a valid transfer.
func (c *Comp) Interrupted() bool {
	return c.interrupted
}

// InterruptCount returns the number of interrupted ticks so far.
func (c *Comp) InterruptCount() uint64 {
	return c.interruptCount
}

// NumGrants returns the number of transfers that passed the arbiter.
func (c *Comp) NumGrants() uint64 {
	return c.numGrants
}
