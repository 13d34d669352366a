package stream

import "github.com/sarchlab/streamsim/sim"

// Checker is a pass-through block that enforces the producer side of the
// handshake: once a valid beat is presented it must stay valid and
// bit-identical until it is accepted. A violation panics with a
// *ProtocolError. A beat carrying the pipelined reset flag may retract.
type Checker struct {
	name    string
	pending bool
	held    Transfer
	fired   uint64
}

// NewChecker creates a Checker.
func NewChecker(name string) *Checker {
	sim.NameMustBeValid(name)

	return &Checker{name: name}
}

// Name returns the name of the checker.
func (c *Checker) Name() string {
	return c.name
}

// Forward passes the upstream beat through.
func (c *Checker) Forward(in Beat) Beat {
	return in
}

// Backward passes the downstream acceptance through.
func (c *Checker) Backward(downReady bool) bool {
	return downReady
}

// Commit verifies the beat against the one held since the last tick.
func (c *Checker) Commit(in Beat, downReady bool) {
	if c.pending && !in.T.Reset {
		if !in.Valid {
			panic(NewProtocolError(c.name, c.held,
				"validity retracted before the transfer was accepted"))
		}

		if !in.T.Equal(c.held) {
			panic(NewProtocolError(c.name, in.T,
				"payload changed while waiting for acceptance, held %s",
				c.held))
		}
	}

	if Fires(in, downReady) {
		c.fired++
	}

	c.pending = in.Valid && !downReady && !in.T.Reset
	if c.pending {
		c.held = in.T.Clone()
	}
}

// Busy always returns false as the checker holds no transfer.
func (c *Checker) Busy() bool {
	return false
}

// NumFired returns the number of handshakes observed.
func (c *Checker) NumFired() uint64 {
	return c.fired
}
