package stream

import (
	"io"

	"github.com/sarchlab/streamsim/sim"
)

// TransferLogger is a hook that prints every transfer it is invoked with.
type TransferLogger struct {
	sim.LogHookBase

	timeTeller sim.TimeTeller
}

// NewTransferLogger creates a TransferLogger that writes to w.
func NewTransferLogger(w io.Writer, timeTeller sim.TimeTeller) *TransferLogger {
	return &TransferLogger{
		LogHookBase: sim.NewLogHookBase(w, ""),
		timeTeller:  timeTeller,
	}
}

// Func logs the transfer carried by the hook context.
func (h *TransferLogger) Func(ctx sim.HookCtx) {
	t, ok := ctx.Item.(Transfer)
	if !ok {
		return
	}

	domain := "-"
	if named, ok := ctx.Domain.(sim.Named); ok {
		domain = named.Name()
	}

	h.Printf("%.10f, %s, %s, %s",
		h.timeTeller.CurrentTime(), domain, ctx.Pos.Name, t)
}
