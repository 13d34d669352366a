package stream

// A Pattern decides, per cycle, whether a producer offers data or a consumer
// offers acceptance. Patterns must be pure functions of the cycle number.
type Pattern func(cycle uint64) bool

// Always is asserted on every cycle.
func Always(uint64) bool {
	return true
}

// Never is never asserted.
func Never(uint64) bool {
	return false
}

// EveryNth is asserted once every n cycles, starting at cycle 0.
func EveryNth(n uint64) Pattern {
	return func(cycle uint64) bool {
		return cycle%n == 0
	}
}

// Window is asserted for cycles in [from, to).
func Window(from, to uint64) Pattern {
	return func(cycle uint64) bool {
		return cycle >= from && cycle < to
	}
}

// Invert returns a pattern that holds exactly when p does not.
func Invert(p Pattern) Pattern {
	return func(cycle uint64) bool {
		return !p(cycle)
	}
}

// Random is asserted with the given probability. The outcome for a cycle
// depends only on the seed and the cycle.
func Random(seed uint64, probability float64) Pattern {
	return func(cycle uint64) bool {
		h := splitMix64(seed ^ (cycle * 0x9e3779b97f4a7c15))
		return float64(h>>11)/float64(1<<53) < probability
	}
}

func splitMix64(x uint64) uint64 {
	x += 0x9e3779b97f4a7c15
	x = (x ^ (x >> 30)) * 0xbf58476d1ce4e5b9
	x = (x ^ (x >> 27)) * 0x94d049bb133111eb

	return x ^ (x >> 31)
}
