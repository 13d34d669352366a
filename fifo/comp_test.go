package fifo

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/sarchlab/streamsim/sim"
	"github.com/sarchlab/streamsim/stream"
)

type countingHook struct {
	pushes, pops int
}

func (h *countingHook) Func(ctx sim.HookCtx) {
	switch ctx.Pos {
	case HookPosPush:
		h.pushes++
	case HookPosPop:
		h.pops++
	}
}

func tick(src stream.Source, blk stream.Block, sink stream.Sink) {
	in := src.Present()
	ready := sink.Ready()

	out := blk.Forward(in)
	upReady := blk.Backward(ready)
	blk.Commit(in, ready)

	src.Commit(stream.Fires(in, upReady))
	sink.Commit(out, ready)
}

func transfers(n int) []stream.Transfer {
	ts := make([]stream.Transfer, n)
	for i := range ts {
		ts[i] = stream.Transfer{
			Data: []uint64{uint64(i)},
			Keep: 1,
			Strb: 1,
			Last: i%3 == 2,
		}
	}

	return ts
}

var _ = Describe("Comp", func() {
	var cfg stream.Config

	BeforeEach(func() {
		cfg = stream.DefaultConfig()
		cfg.NumItems = 1
	})

	It("should preserve order under random handshakes", func() {
		sent := transfers(50)
		f := MakeBuilder().WithConfig(cfg).WithCapacity(4).Build("FIFO")
		hook := &countingHook{}
		f.AcceptHook(hook)

		src := stream.NewScriptSource(sent...).
			WithValidPattern(stream.Random(3, 0.6))
		sink := stream.NewCollectSink().
			WithReadyPattern(stream.Random(4, 0.4))
		path := stream.NewPath("P", f, stream.NewChecker("Out"))

		for i := 0; i < 2000 && len(sink.Received) < len(sent); i++ {
			tick(src, path, sink)
		}

		Expect(sink.Received).To(Equal(sent))
		Expect(hook.pushes).To(Equal(50))
		Expect(hook.pops).To(Equal(50))
	})

	It("should fall through on the tick after the write", func() {
		f := MakeBuilder().WithConfig(cfg).Build("FIFO")
		t := transfers(1)[0]

		f.Commit(stream.Beat{Valid: true, T: t}, true)

		Expect(f.Forward(stream.Idle)).To(Equal(stream.Beat{Valid: true, T: t}))
	})

	It("should report threshold levels", func() {
		f := MakeBuilder().WithConfig(cfg).
			WithCapacity(4).
			WithAlmostFullLevel(3).
			WithAlmostEmptyLevel(1).
			Build("FIFO")

		Expect(f.AlmostEmpty()).To(BeTrue())

		for _, t := range transfers(3) {
			f.Commit(stream.Beat{Valid: true, T: t}, false)
		}

		Expect(f.AlmostFull()).To(BeTrue())
		Expect(f.AlmostEmpty()).To(BeFalse())
		Expect(f.Backward(false)).To(BeTrue())

		f.Commit(stream.Beat{Valid: true, T: transfers(1)[0]}, false)
		Expect(f.Size()).To(Equal(4))
		Expect(f.Backward(true)).To(BeFalse())
	})

	It("should empty on a pipelined reset", func() {
		f := MakeBuilder().WithConfig(cfg).Build("FIFO")
		f.Commit(stream.Beat{Valid: true, T: transfers(1)[0]}, false)

		f.Commit(stream.ResetBeat(), false)

		Expect(f.Busy()).To(BeFalse())
		Expect(f.Forward(stream.Idle).T.Reset).To(BeTrue())
		Expect(f.Backward(true)).To(BeFalse())

		f.Commit(stream.Idle, true)
		Expect(f.Forward(stream.Idle)).To(Equal(stream.Idle))
		Expect(f.Backward(true)).To(BeTrue())
	})

	It("should reject thresholds beyond the capacity", func() {
		Expect(func() {
			MakeBuilder().WithCapacity(2).WithAlmostFullLevel(3).Build("FIFO")
		}).To(Panic())
	})
})
