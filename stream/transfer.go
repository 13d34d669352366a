// Package stream defines the valid/accept handshake shared by every block of
// the interconnect, the transfer that moves on a successful handshake, and the
// Path that chains blocks into one synchronous pipeline.
package stream

import (
	"fmt"
	"math/bits"
	"strings"
)

// A Transfer is the unit moved by one successful handshake.
//
// Per item i, Keep bit i and Strb bit i classify the item: both set is data,
// Keep without Strb is position-only, neither is null padding.
type Transfer struct {
	Data  []uint64
	Keep  uint64
	Strb  uint64
	Last  bool
	ID    uint32
	Dest  uint32
	User  uint64
	Reset bool
}

// Clone returns a deep copy of the transfer.
func (t Transfer) Clone() Transfer {
	c := t
	if t.Data != nil {
		c.Data = make([]uint64, len(t.Data))
		copy(c.Data, t.Data)
	}

	return c
}

// Equal reports whether two transfers are bit-identical.
func (t Transfer) Equal(o Transfer) bool {
	if t.Keep != o.Keep || t.Strb != o.Strb || t.Last != o.Last ||
		t.ID != o.ID || t.Dest != o.Dest || t.User != o.User ||
		t.Reset != o.Reset || len(t.Data) != len(o.Data) {
		return false
	}

	for i := range t.Data {
		if t.Data[i] != o.Data[i] {
			return false
		}
	}

	return true
}

// NumDataItems returns the number of items that carry data.
func (t Transfer) NumDataItems() int {
	return bits.OnesCount64(t.Keep & t.Strb)
}

// IsNull reports whether no item of the transfer is kept.
func (t Transfer) IsNull() bool {
	return t.Keep == 0
}

func (t Transfer) String() string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "id=%d dest=%d user=%#x keep=%#x strb=%#x data=%v",
		t.ID, t.Dest, t.User, t.Keep, t.Strb, t.Data)

	if t.Last {
		sb.WriteString(" last")
	}

	if t.Reset {
		sb.WriteString(" reset")
	}

	return sb.String()
}

// A Beat is the forward signal set of a channel on one tick: the validity flag
// and the transfer it qualifies. The acceptance flag travels backward as a
// plain bool.
type Beat struct {
	Valid bool
	T     Transfer
}

// Idle is a beat with validity deasserted.
var Idle = Beat{}

// Fires reports whether a handshake completes on this tick.
func Fires(b Beat, ready bool) bool {
	return b.Valid && ready
}

// ResetBeat returns a beat that carries only the pipelined reset flag.
func ResetBeat() Beat {
	return Beat{T: Transfer{Reset: true}}
}

// FullMask returns a mask with the low n bits set.
func FullMask(n int) uint64 {
	if n >= 64 {
		return ^uint64(0)
	}

	return (uint64(1) << uint(n)) - 1
}
