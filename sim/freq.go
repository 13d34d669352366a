package sim

import (
	"log"
	"math"
)

// Freq is a clock frequency in Hz.
type Freq float64

// Frequency units.
const (
	Hz  Freq = 1
	KHz Freq = 1e3
	MHz Freq = 1e6
	GHz Freq = 1e9
)

// Period returns the time between two consecutive ticks
func (f Freq) Period() VTimeInSec {
	if f == 0 {
		log.Panic("frequency cannot be 0")
	}

	return VTimeInSec(1.0 / f)
}

// Cycle converts a time to the number of cycles passed since time 0.
func (f Freq) Cycle(t VTimeInSec) uint64 {
	return uint64(math.Round(float64(t) * float64(f)))
}

// ThisTick returns the edge at now, or the following edge if now falls
// between two edges.
func (f Freq) ThisTick(now VTimeInSec) VTimeInSec {
	return f.edge(math.Ceil(f.cycles(now)))
}

// NextTick returns the first edge strictly after now.
func (f Freq) NextTick(now VTimeInSec) VTimeInSec {
	return f.edge(math.Floor(f.cycles(now)) + 1)
}

// NCyclesLater returns the edge n cycles after now.
func (f Freq) NCyclesLater(n int, now VTimeInSec) VTimeInSec {
	return f.ThisTick(now + VTimeInSec(float64(n)/float64(f)))
}

// cycles converts now to fractional cycles, snapped to a tenth of a cycle so
// that floating-point noise does not move a time across an edge.
func (f Freq) cycles(now VTimeInSec) float64 {
	if math.IsNaN(float64(now)) {
		log.Panic("invalid time")
	}

	return math.Round(float64(now)*float64(f)*10) / 10
}

func (f Freq) edge(count float64) VTimeInSec {
	return VTimeInSec(count / float64(f))
}
