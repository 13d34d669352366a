package sim

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

type recordingHook struct {
	positions []*HookPos
}

func (h *recordingHook) Func(ctx HookCtx) {
	h.positions = append(h.positions, ctx.Pos)
}

var _ = Describe("Buffer", func() {
	var (
		buf Buffer
	)

	BeforeEach(func() {
		buf = NewBuffer("Buf", 2)
	})

	It("should allow push and pop", func() {
		Expect(buf.Capacity()).To(Equal(2))
		Expect(buf.CanPush()).To(BeTrue())

		buf.Push(1)
		Expect(buf.CanPush()).To(BeTrue())
		Expect(buf.Size()).To(Equal(1))

		buf.Push(2)
		Expect(buf.CanPush()).To(BeFalse())
		Expect(buf.Size()).To(Equal(2))
		Expect(func() { buf.Push(3) }).To(Panic())

		Expect(buf.Peek()).To(Equal(1))
		Expect(buf.Pop()).To(Equal(1))
		Expect(buf.Peek()).To(Equal(2))
		Expect(buf.Pop()).To(Equal(2))
		Expect(buf.Size()).To(Equal(0))
		Expect(buf.Peek()).To(BeNil())
		Expect(buf.Pop()).To(BeNil())
	})

	It("should wrap around its storage", func() {
		for i := 0; i < 5; i++ {
			buf.Push(i)
			buf.Push(i + 10)
			Expect(buf.Pop()).To(Equal(i))
			Expect(buf.Pop()).To(Equal(i + 10))
		}

		Expect(buf.Size()).To(Equal(0))
	})

	It("should refuse a negative capacity", func() {
		Expect(func() { NewBuffer("Neg", -1) }).To(Panic())
	})

	It("should clear", func() {
		buf.Push(2)
		buf.Clear()

		Expect(buf.Size()).To(Equal(0))
		Expect(buf.Peek()).To(BeNil())
	})

	It("should invoke hooks on push and pop", func() {
		hook := &recordingHook{}
		buf.AcceptHook(hook)

		buf.Push(1)
		buf.Pop()

		Expect(hook.positions).To(Equal([]*HookPos{HookPosBufPush, HookPosBufPop}))
	})

	It("should reject duplicated hooks", func() {
		hook := &recordingHook{}
		buf.AcceptHook(hook)

		Expect(func() { buf.AcceptHook(hook) }).To(Panic())
	})
})
