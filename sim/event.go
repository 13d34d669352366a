package sim

// VTimeInSec is a point in simulated time, in seconds.
type VTimeInSec float64

// An Event is a callback scheduled at a point in simulated time.
type Event interface {
	Time() VTimeInSec
	Handler() Handler
}

// A Handler runs the events scheduled for it. An event may only modify the
// state of its own handler.
type Handler interface {
	Handle(e Event) error
}

// TickEvent asks a ticking component to evaluate one cycle.
type TickEvent struct {
	ID string

	time    VTimeInSec
	handler Handler
}

// MakeTickEvent creates a tick for the handler at the given time.
func MakeTickEvent(handler Handler, time VTimeInSec) TickEvent {
	return TickEvent{
		ID:      GetIDGenerator().Generate(),
		time:    time,
		handler: handler,
	}
}

// Time returns the cycle edge the tick runs at.
func (e TickEvent) Time() VTimeInSec {
	return e.time
}

// Handler returns the component to tick.
func (e TickEvent) Handler() Handler {
	return e.handler
}
