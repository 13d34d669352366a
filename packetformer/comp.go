package packetformer

import (
	"log"

	"github.com/sarchlab/streamsim/fifo"
	"github.com/sarchlab/streamsim/sim"
	"github.com/sarchlab/streamsim/stream"
)

// HookPosPacketComplete marks the creation of a packet record. The item is
// the PacketRecord.
var HookPosPacketComplete = &sim.HookPos{Name: "Packet Complete"}

// HookPosPacketStart marks a packet record being taken for replay. The item
// is the PacketRecord.
var HookPosPacketStart = &sim.HookPos{Name: "Packet Start"}

// Comp is a packet former. It is a stream.Block.
//
// The input is accepted only while no virtual queue is almost full and the
// packet-record queue is not full. One acceptance signal serves all streams,
// so a single near-full queue stalls every stream.
type Comp struct {
	sim.HookableBase

	name string
	spec Spec

	queues   *virtualQueues
	tracker  *completionTracker
	mem      *memory
	tags     *tagPipe
	out      *fifo.Ring[stream.Transfer]
	counters []int

	active    PacketRecord
	remaining int

	almostFull bool
	recordFull bool
	rst        bool
}

// Name returns the name of the packet former.
func (c *Comp) Name() string {
	return c.name
}

// Spec returns the configuration the packet former was built with.
func (c *Comp) Spec() Spec {
	return c.spec
}

// InConfig returns the shape of the input channel.
func (c *Comp) InConfig() stream.Config {
	return c.spec.Config
}

// OutConfig returns the shape of the output channel.
func (c *Comp) OutConfig() stream.Config {
	return c.spec.Config
}

// Forward presents the next reassembled transfer.
func (c *Comp) Forward(stream.Beat) stream.Beat {
	if c.rst {
		return stream.ResetBeat()
	}

	if c.out.Empty() {
		return stream.Idle
	}

	return stream.Beat{Valid: true, T: c.out.Peek()}
}

// Backward returns the shared input acceptance. It only depends on
// registered state.
func (c *Comp) Backward(bool) bool {
	return !c.rst && !c.almostFull && !c.recordFull
}

// Commit latches the next state. A fired transfer whose tag is not below the
// number of streams panics with a *stream.ProtocolError.
func (c *Comp) Commit(in stream.Beat, downReady bool) {
	if in.T.Reset {
		c.clear()
		c.rst = true

		return
	}

	if c.rst {
		c.rst = false
		c.updateFlags()

		return
	}

	upFire := stream.Fires(in, c.Backward(downReady))

	if !c.out.Empty() && downReady {
		c.out.Pop()
	}

	c.drain()

	if upFire {
		c.accept(in.T)
	}

	c.updateFlags()
}

func (c *Comp) drain() {
	if c.remaining == 0 && !c.tracker.Empty() {
		c.active = c.tracker.Pop()
		c.remaining = c.active.Length
		c.invoke(HookPosPacketStart, c.active)
	}

	issue := c.remaining > 0 &&
		c.out.Size()+c.mem.InFlight() < c.out.Capacity()

	addr := 0
	tag := readTag{}

	if issue {
		addr = c.queues.Pop(c.active.Stream)
		tag = readTag{
			stream: c.active.Stream,
			length: c.active.Length,
			last:   c.remaining == 1,
		}
		c.remaining--
	}

	data, dataValid := c.mem.Advance(addr, issue)
	tag, tagValid := c.tags.Advance(tag, issue)

	if dataValid != tagValid {
		log.Panic("read pipeline and tag pipeline lost lockstep")
	}

	if dataValid {
		c.out.Push(c.reassemble(data, tag))
	}
}

func (c *Comp) reassemble(data stream.Transfer, tag readTag) stream.Transfer {
	t := data
	t.ID = uint32(tag.stream)
	t.User = uint64(tag.length) | data.User<<uint(c.spec.LengthBits())
	t.Last = tag.last

	return c.spec.Config.Trim(t)
}

func (c *Comp) accept(t stream.Transfer) {
	k := 0
	if !c.spec.Config.IgnoreID {
		k = int(t.ID)
	}

	if k >= c.spec.NumStreams {
		panic(stream.NewProtocolError(c.name, t,
			"stream tag %d is not below the number of streams %d",
			t.ID, c.spec.NumStreams))
	}

	addr := c.queues.Push(k)
	c.mem.Write(addr, c.spec.Config.Trim(t))

	c.counters[k]++
	if !t.Last && c.counters[k] < c.spec.PacketSize {
		return
	}

	record := PacketRecord{Stream: k, Length: c.counters[k]}
	c.tracker.Push(record)
	c.counters[k] = 0
	c.invoke(HookPosPacketComplete, record)
}

func (c *Comp) updateFlags() {
	c.almostFull = c.queues.AnyAlmostFull()
	c.recordFull = c.tracker.Full()
}

func (c *Comp) invoke(pos *sim.HookPos, r PacketRecord) {
	if c.NumHooks() == 0 {
		return
	}

	c.InvokeHook(sim.HookCtx{
		Domain: c,
		Pos:    pos,
		Item:   r,
	})
}

func (c *Comp) clear() {
	c.queues.Clear()
	c.tracker.Clear()
	c.mem.Clear()
	c.tags.Clear()
	c.out.Clear()

	for k := range c.counters {
		c.counters[k] = 0
	}

	c.active = PacketRecord{}
	c.remaining = 0
	c.almostFull = false
	c.recordFull = false
}

// Busy reports whether a completed packet is still waiting to leave. Partial
// packets do not count since they cannot move without more input.
func (c *Comp) Busy() bool {
	return !c.tracker.Empty() || c.remaining > 0 ||
		c.mem.InFlight() > 0 || !c.out.Empty()
}

// QueueLevels returns the fill level of every virtual queue.
func (c *Comp) QueueLevels() []int {
	levels := make([]int, c.spec.NumStreams)
	for k := range levels {
		levels[k] = c.queues.Level(k)
	}

	return levels
}

// PendingPackets returns the number of completed packets not yet replayed.
func (c *Comp) PendingPackets() int {
	return c.tracker.Len()
}

// PartialLengths returns the number of transfers of the open packet of every
// stream.
func (c *Comp) PartialLengths() []int {
	return append([]int(nil), c.counters...)
}
