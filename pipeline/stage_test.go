package pipeline

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/sarchlab/streamsim/stream"
)

var allPolicies = []Policy{
	PassThrough, Decoupling, Simple, Primed, Gated, PrimedGated, ReadyDecoupled,
}

var _ = Describe("Stage", func() {
	valid := func(id uint32) stream.Beat {
		return stream.Beat{Valid: true, T: stream.Transfer{ID: id}}
	}

	DescribeTable("no loss, no duplication, stable output under back-pressure",
		func(policy Policy) {
			sent := makeTransfers(40)
			src := stream.NewScriptSource(sent...).
				WithValidPattern(stream.Random(1, 0.7))
			sink := stream.NewCollectSink().
				WithReadyPattern(stream.Random(2, 0.5))
			p := MakeBuilder().WithNumStage(3, policy).Build("Pipe")
			path := stream.NewPath("Checked",
				stream.NewChecker("In"), p, stream.NewChecker("Out"))

			for i := 0; i < 1000 && len(sink.Received) < len(sent); i++ {
				tickOnce(src, path, sink)
			}

			Expect(sink.Received).To(Equal(sent))
			Expect(p.Busy()).To(BeFalse())
		},
		Entry("pass-through", PassThrough),
		Entry("decoupling", Decoupling),
		Entry("simple", Simple),
		Entry("primed", Primed),
		Entry("gated", Gated),
		Entry("primed-gated", PrimedGated),
		Entry("ready-decoupled", ReadyDecoupled),
	)

	DescribeTable("bubble-free policies emit on every tick once filled",
		func(policy Policy) {
			src := stream.NewScriptSource(makeTransfers(20)...)
			sink := stream.NewCollectSink()
			p := MakeBuilder().WithNumStage(3, policy).Build("Pipe")

			var validTicks []int
			for i := 0; i < 30; i++ {
				if tickOnce(src, p, sink).Valid {
					validTicks = append(validTicks, i)
				}
			}

			Expect(validTicks).To(HaveLen(20))
			Expect(validTicks[0]).To(Equal(p.Latency()))
			for i := 1; i < len(validTicks); i++ {
				Expect(validTicks[i]).To(Equal(validTicks[i-1] + 1))
			}
		},
		Entry("primed", Primed),
		Entry("primed-gated", PrimedGated),
		Entry("ready-decoupled", ReadyDecoupled),
	)

	It("should let primed stages fill while the consumer stalls", func() {
		primed := MakeBuilder().WithNumStage(3, Primed).Build("Primed")
		simple := MakeBuilder().WithNumStage(3, Simple).Build("Simple")
		stall := stream.Invert(stream.Window(0, 5))

		primedSrc := stream.NewScriptSource(makeTransfers(8)...)
		primedSink := stream.NewCollectSink().WithReadyPattern(stall)
		simpleSrc := stream.NewScriptSource(makeTransfers(8)...)
		simpleSink := stream.NewCollectSink().WithReadyPattern(stall)

		for i := 0; i < 6; i++ {
			tickOnce(primedSrc, primed, primedSink)
			tickOnce(simpleSrc, simple, simpleSink)
		}

		Expect(primed.Occupancy()).To(Equal(3))
		Expect(primedSink.Received).To(HaveLen(1))
		Expect(simple.Occupancy()).To(Equal(1))
		Expect(simpleSink.Received).To(BeEmpty())
	})

	It("should hold the payload of a gated stage when input is idle", func() {
		gated := NewStage("Gated", Gated)
		simple := NewStage("Simple", Simple)

		for _, s := range []*Stage{gated, simple} {
			s.Commit(valid(5), true)
			s.Commit(stream.Idle, true)
		}

		Expect(gated.Forward(stream.Idle).Valid).To(BeFalse())
		Expect(gated.Forward(stream.Idle).T.ID).To(Equal(uint32(5)))
		Expect(simple.Forward(stream.Idle).T.ID).To(BeZero())
	})

	It("should register the acceptance of a ready-decoupled stage", func() {
		s := NewStage("Skid", ReadyDecoupled)

		Expect(s.Backward(false)).To(BeTrue())
		s.Commit(valid(1), false)

		Expect(s.Backward(false)).To(BeTrue())
		s.Commit(valid(2), false)
		Expect(s.Occupancy()).To(Equal(2))

		Expect(s.Backward(true)).To(BeFalse())
		Expect(s.Forward(stream.Idle).T.ID).To(Equal(uint32(1)))
		s.Commit(valid(3), true)

		Expect(s.Forward(stream.Idle).T.ID).To(Equal(uint32(2)))
		Expect(s.Backward(false)).To(BeTrue())
		Expect(s.Occupancy()).To(Equal(1))
	})

	It("should force validity low while decoupled", func() {
		s := NewStage("Decouple", Decoupling)
		s.SetDecoupled(true)

		out := s.Forward(valid(1))
		Expect(out.Valid).To(BeFalse())
		Expect(out.T.Reset).To(BeTrue())
		Expect(s.Backward(true)).To(BeFalse())

		s.SetDecoupled(false)
		Expect(s.Forward(valid(1))).To(Equal(valid(1)))
		Expect(s.Backward(true)).To(BeTrue())
	})

	It("should propagate the pipelined reset one stage per tick", func() {
		p := MakeBuilder().WithNumStage(2, Primed).Build("Pipe")
		first, second := p.Stages()[0], p.Stages()[1]

		p.Commit(valid(1), false)
		p.Commit(valid(2), false)
		Expect(p.Occupancy()).To(Equal(2))

		p.Commit(stream.ResetBeat(), false)
		Expect(first.InReset()).To(BeTrue())
		Expect(first.Busy()).To(BeFalse())
		Expect(second.InReset()).To(BeFalse())
		Expect(p.Backward(true)).To(BeFalse())

		p.Commit(stream.Idle, false)
		Expect(first.InReset()).To(BeFalse())
		Expect(second.InReset()).To(BeTrue())
		Expect(p.Forward(stream.Idle).T.Reset).To(BeTrue())
		Expect(p.Forward(stream.Idle).Valid).To(BeFalse())

		p.Commit(stream.Idle, false)
		Expect(p.Busy()).To(BeFalse())
		Expect(p.Backward(false)).To(BeTrue())
	})

	It("should defer a local reset until the output is not waiting", func() {
		s := NewStage("Stage", Primed)
		s.Commit(valid(7), false)

		s.Reset()
		Expect(s.Backward(false)).To(BeFalse())

		s.Commit(stream.Idle, false)
		Expect(s.Forward(stream.Idle)).To(Equal(valid(7)))
		Expect(s.InReset()).To(BeFalse())

		s.Commit(stream.Idle, true)
		Expect(s.InReset()).To(BeTrue())
		Expect(s.Busy()).To(BeFalse())
	})

	It("should reject unknown policies", func() {
		Expect(func() { NewStage("Stage", Policy(42)) }).To(Panic())
	})
})

var _ = Describe("Policy", func() {
	It("should round trip names", func() {
		for _, p := range allPolicies {
			parsed, err := ParsePolicy(p.String())
			Expect(err).NotTo(HaveOccurred())
			Expect(parsed).To(Equal(p))
		}
	})

	It("should parse a policy list", func() {
		policies, err := ParsePolicies("primed, simple,ready-decoupled")

		Expect(err).NotTo(HaveOccurred())
		Expect(policies).To(Equal([]Policy{Primed, Simple, ReadyDecoupled}))
	})

	It("should fail on unknown names", func() {
		_, err := ParsePolicies("primed,bogus")
		Expect(err).To(HaveOccurred())
	})

	It("should tell which policies are bubble-free", func() {
		Expect(Primed.BubbleFree()).To(BeTrue())
		Expect(Simple.BubbleFree()).To(BeFalse())
		Expect(Decoupling.Registered()).To(BeFalse())
	})
})

var _ = Describe("Builder", func() {
	It("should name and count stages", func() {
		p := MakeBuilder().
			WithPolicies(Decoupling, Primed, ReadyDecoupled).
			Build("Pipe")

		Expect(p.Stages()).To(HaveLen(3))
		Expect(p.Stages()[1].Name()).To(Equal("Pipe.Stage[1]"))
		Expect(p.Latency()).To(Equal(2))
	})

	It("should reject invalid channel shapes", func() {
		cfg := stream.DefaultConfig()
		cfg.NumItems = 0

		Expect(func() { MakeBuilder().WithConfig(cfg).Build("Pipe") }).
			To(Panic())
	})
})
