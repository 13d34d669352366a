package widthconv

import (
	"github.com/sarchlab/streamsim/sim"
	"github.com/sarchlab/streamsim/stream"
)

// Downsizer splits one wide transfer into ratio narrow transfers, the end
// flag going to the last one emitted. With packing, sub-units whose items are
// all null are not emitted; if that removes every sub-unit of a transfer
// that ends a packet, its final sub-unit is still emitted to carry the end
// flag.
type Downsizer struct {
	name    string
	ratio   int
	packing bool
	in      stream.Config
	out     stream.Config

	pending []stream.Transfer
	rst     bool
}

// NewDownsizer creates a downsizer from the narrow channel shape.
func NewDownsizer(
	name string,
	narrow stream.Config,
	ratio int,
	packing bool,
) *Downsizer {
	sim.NameMustBeValid(name)

	return &Downsizer{
		name:    name,
		ratio:   ratio,
		packing: packing,
		in:      mustWiden(name, narrow, ratio),
		out:     narrow,
	}
}

// Name returns the name of the downsizer.
func (d *Downsizer) Name() string {
	return d.name
}

// InConfig returns the wide channel shape.
func (d *Downsizer) InConfig() stream.Config {
	return d.in
}

// OutConfig returns the narrow channel shape.
func (d *Downsizer) OutConfig() stream.Config {
	return d.out
}

// Forward presents the next narrow transfer.
func (d *Downsizer) Forward(stream.Beat) stream.Beat {
	if d.rst {
		return stream.ResetBeat()
	}

	if len(d.pending) == 0 {
		return stream.Idle
	}

	return stream.Beat{Valid: true, T: d.pending[0]}
}

// Backward accepts a new wide transfer once the last narrow one of the
// current transfer is leaving.
func (d *Downsizer) Backward(downReady bool) bool {
	if d.rst {
		return false
	}

	return len(d.pending) == 0 || (len(d.pending) == 1 && downReady)
}

// Commit latches the next state.
func (d *Downsizer) Commit(in stream.Beat, downReady bool) {
	if in.T.Reset {
		d.pending = nil
		d.rst = true

		return
	}

	if d.rst {
		d.rst = false
		return
	}

	upFire := stream.Fires(in, d.Backward(downReady))

	if len(d.pending) > 0 && downReady {
		d.pending = d.pending[1:]
	}

	if upFire {
		d.pending = d.split(d.in.Trim(in.T))
	}
}

func (d *Downsizer) split(t stream.Transfer) []stream.Transfer {
	n := d.out.NumItems
	mask := stream.FullMask(n)
	slices := make([]stream.Transfer, 0, d.ratio)

	for j := 0; j < d.ratio; j++ {
		shift := uint(j * n)
		keep := (t.Keep >> shift) & mask

		if d.packing && keep == 0 {
			if !(t.Last && j == d.ratio-1 && len(slices) == 0) {
				continue
			}
		}

		s := stream.Transfer{
			Data: make([]uint64, n),
			Keep: keep,
			Strb: (t.Strb >> shift) & mask,
			ID:   t.ID,
			Dest: t.Dest,
			User: t.User,
		}

		for i := 0; i < n && j*n+i < len(t.Data); i++ {
			s.Data[i] = t.Data[j*n+i]
		}

		slices = append(slices, s)
	}

	if len(slices) > 0 {
		slices[len(slices)-1].Last = t.Last
	}

	return slices
}

// Busy reports whether narrow transfers are waiting to leave.
func (d *Downsizer) Busy() bool {
	return len(d.pending) > 0
}
