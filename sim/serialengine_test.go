package sim

import (
	"errors"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"go.uber.org/mock/gomock"
)

type eventCounter struct {
	before, after int
}

func (h *eventCounter) Func(ctx HookCtx) {
	switch ctx.Pos {
	case HookPosBeforeEvent:
		h.before++
	case HookPosAfterEvent:
		h.after++
	}
}

var _ = Describe("SerialEngine", func() {
	var (
		mockCtrl *gomock.Controller
		engine   *SerialEngine
	)

	BeforeEach(func() {
		mockCtrl = gomock.NewController(GinkgoT())
		engine = NewSerialEngine()
	})

	AfterEach(func() {
		mockCtrl.Finish()
	})

	mockEvent := func(t VTimeInSec, h Handler) *MockEvent {
		evt := NewMockEvent(mockCtrl)
		evt.EXPECT().Time().Return(t).AnyTimes()
		evt.EXPECT().Handler().Return(h).AnyTimes()

		return evt
	}

	It("should run events in time order", func() {
		handler1 := NewMockHandler(mockCtrl)
		handler2 := NewMockHandler(mockCtrl)
		evt1 := mockEvent(4.0, handler1)
		evt2 := mockEvent(2.0, handler2)
		evt3 := mockEvent(3.0, handler1)

		handleEvt2 := handler2.EXPECT().Handle(evt2).Do(func(e Event) {
			engine.Schedule(evt3)
		})
		handleEvt3 := handler1.EXPECT().Handle(evt3).After(handleEvt2)
		handler1.EXPECT().Handle(evt1).After(handleEvt3)

		engine.Schedule(evt1)
		engine.Schedule(evt2)

		Expect(engine.Run()).To(Succeed())
		Expect(engine.CurrentTime()).To(Equal(VTimeInSec(4.0)))
	})

	It("should run same-time events in scheduling order", func() {
		handler := NewMockHandler(mockCtrl)
		evt1 := mockEvent(2.0, handler)
		evt2 := mockEvent(2.0, handler)

		first := handler.EXPECT().Handle(evt1)
		handler.EXPECT().Handle(evt2).After(first)

		engine.Schedule(evt1)
		engine.Schedule(evt2)

		Expect(engine.Run()).To(Succeed())
	})

	It("should invoke hooks around every event", func() {
		handler := NewMockHandler(mockCtrl)
		handler.EXPECT().Handle(gomock.Any()).Times(2)
		counter := &eventCounter{}
		engine.AcceptHook(counter)

		engine.Schedule(mockEvent(1.0, handler))
		engine.Schedule(mockEvent(2.0, handler))

		Expect(engine.Run()).To(Succeed())
		Expect(counter.before).To(Equal(2))
		Expect(counter.after).To(Equal(2))
	})

	It("should stop when a handler fails", func() {
		handler := NewMockHandler(mockCtrl)
		evt1 := mockEvent(1.0, handler)
		evt2 := mockEvent(2.0, handler)

		handler.EXPECT().Handle(evt1).Return(errors.New("boom"))

		engine.Schedule(evt1)
		engine.Schedule(evt2)

		Expect(engine.Run()).To(MatchError("boom"))
	})

	It("should panic when scheduling into the past", func() {
		handler := NewMockHandler(mockCtrl)
		evt1 := mockEvent(2.0, handler)
		evt2 := mockEvent(1.0, handler)

		handler.EXPECT().Handle(evt1).Do(func(e Event) {
			Expect(func() { engine.Schedule(evt2) }).To(Panic())
		})

		engine.Schedule(evt1)
		Expect(engine.Run()).To(Succeed())
	})

	It("should hold events while paused", func() {
		handler := NewMockHandler(mockCtrl)
		handler.EXPECT().Handle(gomock.Any())
		engine.Schedule(mockEvent(1.0, handler))

		engine.Pause()
		engine.Pause()

		done := make(chan error)
		go func() { done <- engine.Run() }()

		Consistently(done, 20*time.Millisecond).ShouldNot(Receive())

		engine.Continue()
		engine.Continue()

		Eventually(done).Should(Receive(BeNil()))
	})
})

var _ = Describe("TickingComponent", func() {
	var (
		mockCtrl *gomock.Controller
		engine   *SerialEngine
		ticker   *MockTicker
		comp     *TickingComponent
	)

	BeforeEach(func() {
		mockCtrl = gomock.NewController(GinkgoT())
		engine = NewSerialEngine()
		ticker = NewMockTicker(mockCtrl)
		comp = NewTickingComponent("Comp", engine, 1*GHz, ticker)
	})

	AfterEach(func() {
		mockCtrl.Finish()
	})

	It("should keep ticking while making progress", func() {
		ticker.EXPECT().Tick().Return(true).Times(2)
		ticker.EXPECT().Tick().Return(false)

		comp.TickLater()
		Expect(engine.Run()).To(Succeed())

		Expect(engine.CurrentTime()).To(BeNumerically("~", 3e-9, 1e-15))
	})

	It("should tick at time zero when started now", func() {
		ticker.EXPECT().Tick().Return(false)

		comp.TickNow()
		Expect(engine.Run()).To(Succeed())

		Expect(engine.CurrentTime()).To(Equal(VTimeInSec(0)))
	})

	It("should not double schedule the same cycle", func() {
		ticker.EXPECT().Tick().Return(false)

		comp.TickLater()
		comp.TickLater()
		Expect(engine.Run()).To(Succeed())
	})

	It("should report its name and clock", func() {
		Expect(comp.Name()).To(Equal("Comp"))
		Expect(comp.Freq()).To(Equal(1 * GHz))
	})
})
