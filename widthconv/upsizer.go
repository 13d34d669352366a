// Package widthconv converts a channel between a narrow and a wide item
// count.
package widthconv

import (
	"github.com/sarchlab/streamsim/sim"
	"github.com/sarchlab/streamsim/stream"
)

// Upsizer gathers ratio narrow transfers into one wide transfer. The stream
// tag, destination, and side channel of the wide transfer are those of its
// first narrow transfer. A packet that ends early is padded with null items
// and the end flag is kept on the padded transfer.
type Upsizer struct {
	name  string
	ratio int
	in    stream.Config
	out   stream.Config

	acc   stream.Transfer
	count int
	reg   stream.Beat
}

// NewUpsizer creates an upsizer from the narrow channel shape.
func NewUpsizer(name string, narrow stream.Config, ratio int) *Upsizer {
	sim.NameMustBeValid(name)

	wide := mustWiden(name, narrow, ratio)

	u := &Upsizer{
		name:  name,
		ratio: ratio,
		in:    narrow,
		out:   wide,
	}
	u.clearAcc()

	return u
}

// Name returns the name of the upsizer.
func (u *Upsizer) Name() string {
	return u.name
}

// InConfig returns the narrow channel shape.
func (u *Upsizer) InConfig() stream.Config {
	return u.in
}

// OutConfig returns the wide channel shape.
func (u *Upsizer) OutConfig() stream.Config {
	return u.out
}

// Forward presents the last completed wide transfer.
func (u *Upsizer) Forward(stream.Beat) stream.Beat {
	return u.reg
}

// Backward accepts when the output register is free or is being emptied.
// Nothing is accepted while the pipelined reset is presented.
func (u *Upsizer) Backward(downReady bool) bool {
	if u.reg.T.Reset {
		return false
	}

	return !u.reg.Valid || downReady
}

// Commit latches the next state.
func (u *Upsizer) Commit(in stream.Beat, downReady bool) {
	if in.T.Reset {
		u.clearAcc()
		u.reg = stream.ResetBeat()

		return
	}

	upFire := stream.Fires(in, u.Backward(downReady))

	if u.reg.T.Reset || (u.reg.Valid && downReady) {
		u.reg = stream.Idle
	}

	if !upFire {
		return
	}

	u.gather(u.in.Trim(in.T))

	if in.T.Last || u.count == u.ratio {
		u.acc.Last = in.T.Last
		u.reg = stream.Beat{Valid: true, T: u.acc}
		u.clearAcc()
	}
}

func (u *Upsizer) gather(t stream.Transfer) {
	n := u.in.NumItems
	if u.count == 0 {
		u.acc.ID = t.ID
		u.acc.Dest = t.Dest
		u.acc.User = t.User
	}

	base := u.count * n
	for i := 0; i < n && i < len(t.Data); i++ {
		u.acc.Data[base+i] = t.Data[i]
	}

	u.acc.Keep |= t.Keep << uint(base)
	u.acc.Strb |= t.Strb << uint(base)
	u.count++
}

func (u *Upsizer) clearAcc() {
	u.acc = stream.Transfer{Data: make([]uint64, u.out.NumItems)}
	u.count = 0
}

// Busy reports whether a wide transfer waits for acceptance.
func (u *Upsizer) Busy() bool {
	return u.reg.Valid
}

// Gathered returns the number of narrow transfers held for the next wide
// transfer.
func (u *Upsizer) Gathered() int {
	return u.count
}

func mustWiden(name string, narrow stream.Config, ratio int) stream.Config {
	if err := narrow.Validate(); err != nil {
		panic(err)
	}

	if ratio < 1 || narrow.NumItems*ratio > stream.MaxItems {
		panic(stream.NewConfigError(name,
			"ratio %d cannot widen %d items within %d",
			ratio, narrow.NumItems, stream.MaxItems))
	}

	wide := narrow
	wide.NumItems = narrow.NumItems * ratio

	return wide
}
