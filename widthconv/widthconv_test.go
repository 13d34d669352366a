package widthconv

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/sarchlab/streamsim/stream"
)

var _ = Describe("Upsizer", func() {
	It("should pad a packet that ends early", func() {
		up := NewUpsizer("Up", narrowConfig(), 2)
		src := stream.NewScriptSource(
			narrow(1, 2, false),
			narrow(3, 4, false),
			narrow(5, 6, true),
		)
		sink := stream.NewCollectSink()

		for i := 0; i < 10; i++ {
			tick(src, up, sink)
		}

		Expect(sink.Received).To(Equal([]stream.Transfer{
			{Data: []uint64{1, 2, 3, 4}, Keep: 0xf, Strb: 0xf, ID: 3, User: 0x42},
			{Data: []uint64{5, 6, 0, 0}, Keep: 0x3, Strb: 0x3, ID: 3, User: 0x42,
				Last: true},
		}))
		Expect(up.Busy()).To(BeFalse())
		Expect(up.Gathered()).To(BeZero())
	})

	It("should hold the wide transfer under back-pressure", func() {
		up := NewUpsizer("Up", narrowConfig(), 2)
		up.Commit(stream.Beat{Valid: true, T: narrow(1, 2, false)}, false)
		up.Commit(stream.Beat{Valid: true, T: narrow(3, 4, false)}, false)

		Expect(up.Forward(stream.Idle).Valid).To(BeTrue())
		Expect(up.Backward(false)).To(BeFalse())
		Expect(up.Backward(true)).To(BeTrue())
	})

	It("should present the pipelined reset for one tick", func() {
		up := NewUpsizer("Up", narrowConfig(), 2)
		up.Commit(stream.Beat{Valid: true, T: narrow(1, 2, false)}, false)

		up.Commit(stream.ResetBeat(), false)

		Expect(up.Gathered()).To(BeZero())
		Expect(up.Forward(stream.Idle).T.Reset).To(BeTrue())
		Expect(up.Backward(true)).To(BeFalse())

		up.Commit(stream.Idle, true)
		Expect(up.Forward(stream.Idle)).To(Equal(stream.Idle))
	})
})

var _ = Describe("Downsizer", func() {
	wide := func(keep uint64, last bool) stream.Beat {
		return stream.Beat{Valid: true, T: stream.Transfer{
			Data: []uint64{1, 2, 3, 4},
			Keep: keep,
			Strb: keep,
			Last: last,
		}}
	}

	drain := func(d *Downsizer) []stream.Transfer {
		var out []stream.Transfer
		for d.Busy() {
			out = append(out, d.Forward(stream.Idle).T)
			d.Commit(stream.Idle, true)
		}

		return out
	}

	It("should split a wide transfer", func() {
		d := NewDownsizer("Down", narrowConfig(), 2, false)
		d.Commit(wide(0xf, true), true)

		out := drain(d)
		Expect(out).To(HaveLen(2))
		Expect(out[0].Data).To(Equal([]uint64{1, 2}))
		Expect(out[0].Last).To(BeFalse())
		Expect(out[1].Data).To(Equal([]uint64{3, 4}))
		Expect(out[1].Last).To(BeTrue())
	})

	It("should elide null sub-units when packing", func() {
		d := NewDownsizer("Down", narrowConfig(), 2, true)
		d.Commit(wide(0xc, false), true)

		out := drain(d)
		Expect(out).To(HaveLen(1))
		Expect(out[0].Data).To(Equal([]uint64{3, 4}))
	})

	It("should keep the end flag of an all-null transfer when packing", func() {
		d := NewDownsizer("Down", narrowConfig(), 2, true)
		d.Commit(wide(0, true), true)

		out := drain(d)
		Expect(out).To(HaveLen(1))
		Expect(out[0].IsNull()).To(BeTrue())
		Expect(out[0].Last).To(BeTrue())
	})

	It("should drop an all-null transfer inside a packet when packing", func() {
		d := NewDownsizer("Down", narrowConfig(), 2, true)
		d.Commit(wide(0, false), true)

		Expect(d.Busy()).To(BeFalse())
	})

	It("should only accept once the last sub-unit leaves", func() {
		d := NewDownsizer("Down", narrowConfig(), 2, false)
		d.Commit(wide(0xf, false), true)

		Expect(d.Backward(true)).To(BeFalse())
		d.Commit(stream.Idle, true)
		Expect(d.Backward(false)).To(BeFalse())
		Expect(d.Backward(true)).To(BeTrue())
	})
})

var _ = Describe("Round trip", func() {
	sent := []stream.Transfer{
		narrow(1, 2, false),
		narrow(3, 4, false),
		narrow(5, 6, true),
		narrow(7, 8, false),
		narrow(9, 10, true),
	}

	It("should restore the narrow stream with packing", func() {
		path := stream.NewPath("P",
			NewUpsizer("Up", narrowConfig(), 2),
			stream.NewChecker("Mid"),
			NewDownsizer("Down", narrowConfig(), 2, true),
			stream.NewChecker("Out"),
		)
		src := stream.NewScriptSource(sent...).
			WithValidPattern(stream.Random(5, 0.5))
		sink := stream.NewCollectSink().
			WithReadyPattern(stream.Random(6, 0.5))

		for i := 0; i < 200; i++ {
			tick(src, path, sink)
		}

		Expect(sink.Received).To(Equal(sent))
	})

	It("should emit padding without packing", func() {
		path := stream.NewPath("P",
			NewUpsizer("Up", narrowConfig(), 2),
			NewDownsizer("Down", narrowConfig(), 2, false),
		)
		src := stream.NewScriptSource(sent[:3]...)
		sink := stream.NewCollectSink()

		for i := 0; i < 20; i++ {
			tick(src, path, sink)
		}

		Expect(sink.Received).To(HaveLen(4))
		Expect(sink.Received[2].Last).To(BeFalse())
		Expect(sink.Received[3].IsNull()).To(BeTrue())
		Expect(sink.Received[3].Last).To(BeTrue())
	})

	It("should refuse mismatched widths", func() {
		Expect(func() {
			stream.NewPath("P",
				NewUpsizer("Up", narrowConfig(), 2),
				NewDownsizer("Down", narrowConfig(), 4, false),
			)
		}).To(PanicWith(BeAssignableToTypeOf(&stream.ConfigError{})))
	})

	It("should refuse ratios beyond the mask width", func() {
		Expect(func() { NewUpsizer("Up", narrowConfig(), 64) }).To(Panic())
		Expect(func() { NewDownsizer("Down", narrowConfig(), 0, false) }).
			To(Panic())
	})
})
