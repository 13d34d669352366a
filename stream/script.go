package stream

// ScriptSource offers a fixed list of transfers in order. While the valid
// pattern is deasserted it offers nothing, but once a transfer is offered it
// is held until accepted.
type ScriptSource struct {
	transfers  []Transfer
	next       int
	cycle      uint64
	presenting bool
	pattern    Pattern
}

// NewScriptSource creates a source that offers the transfers on every cycle.
func NewScriptSource(transfers ...Transfer) *ScriptSource {
	return &ScriptSource{
		transfers: transfers,
		pattern:   Always,
	}
}

// WithValidPattern sets when a new transfer may be offered.
func (s *ScriptSource) WithValidPattern(p Pattern) *ScriptSource {
	s.pattern = p
	return s
}

// Append adds transfers to the end of the script.
func (s *ScriptSource) Append(transfers ...Transfer) {
	s.transfers = append(s.transfers, transfers...)
}

// Present returns the beat offered on this cycle.
func (s *ScriptSource) Present() Beat {
	if s.next >= len(s.transfers) {
		return Idle
	}

	if !s.presenting && !s.pattern(s.cycle) {
		return Idle
	}

	return Beat{Valid: true, T: s.transfers[s.next]}
}

// Commit advances the script when the offered transfer was accepted.
func (s *ScriptSource) Commit(accepted bool) {
	offered := s.Present().Valid

	switch {
	case offered && accepted:
		s.next++
		s.presenting = false
	case offered:
		s.presenting = true
	}

	s.cycle++
}

// Done reports whether every transfer has been accepted.
func (s *ScriptSource) Done() bool {
	return s.next >= len(s.transfers)
}

// NumAccepted returns the number of transfers accepted so far.
func (s *ScriptSource) NumAccepted() int {
	return s.next
}

// CollectSink records every transfer it accepts.
type CollectSink struct {
	Received []Transfer

	cycle   uint64
	pattern Pattern
	resets  int
}

// NewCollectSink creates a sink that accepts on every cycle.
func NewCollectSink() *CollectSink {
	return &CollectSink{pattern: Always}
}

// WithReadyPattern sets when the sink offers acceptance.
func (s *CollectSink) WithReadyPattern(p Pattern) *CollectSink {
	s.pattern = p
	return s
}

// Ready returns the acceptance offered on this cycle.
func (s *CollectSink) Ready() bool {
	return s.pattern(s.cycle)
}

// Commit records the beat if it fired.
func (s *CollectSink) Commit(b Beat, accepted bool) {
	if b.T.Reset {
		s.resets++
	}

	if Fires(b, accepted) {
		s.Received = append(s.Received, b.T.Clone())
	}

	s.cycle++
}

// NumResetCycles returns how many cycles the sink observed the pipelined
// reset flag.
func (s *CollectSink) NumResetCycles() int {
	return s.resets
}

// Packets groups the received transfers into packets delimited by Last. A
// trailing unterminated run is returned as a final packet.
func (s *CollectSink) Packets() [][]Transfer {
	return SplitPackets(s.Received)
}

// SplitPackets groups transfers into packets delimited by Last.
func SplitPackets(transfers []Transfer) [][]Transfer {
	var (
		packets [][]Transfer
		current []Transfer
	)

	for _, t := range transfers {
		current = append(current, t)
		if t.Last {
			packets = append(packets, current)
			current = nil
		}
	}

	if len(current) > 0 {
		packets = append(packets, current)
	}

	return packets
}
