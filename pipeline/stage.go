package pipeline

import (
	"github.com/sarchlab/streamsim/sim"
	"github.com/sarchlab/streamsim/stream"
)

// A Stage is one register-insertion point of a pipeline. The policy selects
// its behavior; all policies share the same record layout.
//
// Registered stages also register the pipelined reset flag of their input on
// every tick, regardless of acceptance. While that flag is high the stage
// presents no valid data, refuses upstream transfers, and clears its
// registers.
type Stage struct {
	name   string
	policy Policy

	main      stream.Beat
	overflow  stream.Beat
	readyReg  bool
	rst       bool
	resetReq  bool
	decoupled bool
}

// NewStage creates a stage with the given policy.
func NewStage(name string, policy Policy) *Stage {
	sim.NameMustBeValid(name)

	if _, ok := policyNames[policy]; !ok {
		panic(stream.NewConfigError(name, "unknown pipeline policy %d",
			int(policy)))
	}

	return &Stage{
		name:     name,
		policy:   policy,
		readyReg: true,
	}
}

// Name returns the name of the stage.
func (s *Stage) Name() string {
	return s.name
}

// Policy returns the register-insertion policy of the stage.
func (s *Stage) Policy() Policy {
	return s.policy
}

// SetDecoupled sets the local disable condition of a decoupling stage. It
// takes effect from the next evaluation. Other policies ignore it.
func (s *Stage) SetDecoupled(decoupled bool) {
	s.decoupled = decoupled
}

// Reset requests a local reset. The stage stops accepting and applies the
// reset on the first commit where its output is not waiting for acceptance:
// the valid registers are cleared and the pipelined reset flag is raised on
// that same tick.
func (s *Stage) Reset() {
	s.resetReq = true
}

// InReset reports whether the stage currently presents the pipelined reset.
func (s *Stage) InReset() bool {
	return s.rst
}

// Forward returns the beat presented downstream.
func (s *Stage) Forward(in stream.Beat) stream.Beat {
	switch s.policy {
	case PassThrough:
		return in
	case Decoupling:
		if s.decoupled {
			return stream.ResetBeat()
		}

		return in
	}

	if s.rst {
		return stream.ResetBeat()
	}

	return s.main
}

// Backward returns the acceptance presented upstream.
func (s *Stage) Backward(downReady bool) bool {
	switch s.policy {
	case PassThrough:
		return downReady
	case Decoupling:
		return downReady && !s.decoupled
	}

	if s.rst || s.resetReq {
		return false
	}

	switch s.policy {
	case Primed, PrimedGated:
		return downReady || !s.main.Valid
	case ReadyDecoupled:
		return s.readyReg
	default:
		return downReady
	}
}

// Commit latches the next state of the stage.
func (s *Stage) Commit(in stream.Beat, downReady bool) {
	if !s.policy.Registered() {
		return
	}

	if in.T.Reset || (s.resetReq && (!s.main.Valid || downReady)) {
		s.enterReset()
		return
	}

	if s.rst {
		s.rst = false
		s.readyReg = true

		return
	}

	upReady := s.Backward(downReady)
	upFire := stream.Fires(in, upReady)
	canLoad := downReady || !s.main.Valid

	if s.resetReq {
		return
	}

	switch s.policy {
	case Simple:
		if downReady {
			s.main = capture(in)
		}
	case Gated:
		if downReady {
			s.captureGated(in)
		}
	case Primed:
		if canLoad {
			s.main = capture(in)
		}
	case PrimedGated:
		if canLoad {
			s.captureGated(in)
		}
	case ReadyDecoupled:
		s.commitReadyDecoupled(in, upFire, canLoad)
	}
}

func (s *Stage) commitReadyDecoupled(in stream.Beat, upFire, canLoad bool) {
	switch {
	case canLoad && s.overflow.Valid:
		s.main = s.overflow
		s.overflow = stream.Idle
	case canLoad && upFire:
		s.main = capture(in)
	case canLoad:
		s.main.Valid = false
	case upFire:
		s.overflow = capture(in)
	}

	s.readyReg = !s.overflow.Valid
}

func (s *Stage) captureGated(in stream.Beat) {
	s.main.Valid = in.Valid
	if in.Valid {
		s.main.T = in.T.Clone()
	}
}

func capture(in stream.Beat) stream.Beat {
	return stream.Beat{Valid: in.Valid, T: in.T.Clone()}
}

func (s *Stage) enterReset() {
	s.main.Valid = false
	s.overflow = stream.Idle
	s.rst = true
	s.readyReg = false
	s.resetReq = false
}

// Busy reports whether the stage holds a valid transfer.
func (s *Stage) Busy() bool {
	return s.main.Valid || s.overflow.Valid
}

// Occupancy returns the number of transfers held by the stage.
func (s *Stage) Occupancy() int {
	n := 0
	if s.main.Valid {
		n++
	}

	if s.overflow.Valid {
		n++
	}

	return n
}
