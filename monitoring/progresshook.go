package monitoring

import (
	"github.com/sarchlab/streamsim/fabric"
	"github.com/sarchlab/streamsim/sim"
)

// ProgressHook advances a progress bar for fabric transfers. Entering
// transfers count as in progress and delivered ones as finished.
type ProgressHook struct {
	Bar *ProgressBar
}

// Func updates the bar.
func (h ProgressHook) Func(ctx sim.HookCtx) {
	switch ctx.Pos {
	case fabric.HookPosTransferIn:
		h.Bar.IncrementInProgress(1)
	case fabric.HookPosTransferOut:
		h.Bar.MoveInProgressToFinished(1)
	}
}
