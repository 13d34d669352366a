package sim

import "sync"

// A Ticker evaluates one cycle and reports whether it made progress.
type Ticker interface {
	Tick() bool
}

// TickingComponent is a component driven by a clock. It ticks again on the
// next cycle edge for as long as its Ticker reports progress; a component
// that stalls has to be woken with TickNow or TickLater.
type TickingComponent struct {
	HookableBase

	name   string
	engine Engine
	freq   Freq
	ticker Ticker

	lock      sync.Mutex
	scheduled VTimeInSec
}

// NewTickingComponent creates a new ticking component
func NewTickingComponent(
	name string,
	engine Engine,
	freq Freq,
	ticker Ticker,
) *TickingComponent {
	NameMustBeValid(name)

	return &TickingComponent{
		name:      name,
		engine:    engine,
		freq:      freq,
		ticker:    ticker,
		scheduled: -1,
	}
}

// Name returns the name of the component.
func (c *TickingComponent) Name() string {
	return c.name
}

// Freq returns the clock of the component.
func (c *TickingComponent) Freq() Freq {
	return c.freq
}

// CurrentTime returns the time of the engine that drives the component.
func (c *TickingComponent) CurrentTime() VTimeInSec {
	return c.engine.CurrentTime()
}

// Handle runs one tick.
func (c *TickingComponent) Handle(_ Event) error {
	if c.ticker.Tick() {
		c.TickLater()
	}

	return nil
}

// TickNow schedules a tick on the current cycle edge, or on the next edge if
// the current time falls between edges.
func (c *TickingComponent) TickNow() {
	c.scheduleAt(c.freq.ThisTick(c.CurrentTime()))
}

// TickLater schedules a tick on the edge after the current time.
func (c *TickingComponent) TickLater() {
	c.scheduleAt(c.freq.NextTick(c.CurrentTime()))
}

func (c *TickingComponent) scheduleAt(t VTimeInSec) {
	c.lock.Lock()
	defer c.lock.Unlock()

	if c.scheduled >= t {
		return
	}

	c.scheduled = t
	c.engine.Schedule(MakeTickEvent(c, t))
}
