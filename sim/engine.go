package sim

// TimeTeller can be used to get the current time.
type TimeTeller interface {
	CurrentTime() VTimeInSec
}

// EventScheduler can be used to schedule future events.
type EventScheduler interface {
	Schedule(e Event)
}

// An Engine runs scheduled events in time order.
type Engine interface {
	Hookable
	TimeTeller
	EventScheduler

	// Run processes events until none is left or a handler fails.
	Run() error

	// Pause blocks until the running event completes and then holds the
	// engine until Continue is called.
	Pause()

	// Continue releases a paused engine.
	Continue()
}
