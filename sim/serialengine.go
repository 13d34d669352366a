package sim

import (
	"log"
	"reflect"
	"sync"
)

// A SerialEngine is an Engine that runs one event at a time.
type SerialEngine struct {
	HookableBase

	mu    sync.Mutex
	now   VTimeInSec
	queue eventQueue

	// gate is held while an event runs and while the engine is paused.
	gate   sync.Mutex
	ctrl   sync.Mutex
	paused bool
}

// NewSerialEngine creates a SerialEngine
func NewSerialEngine() *SerialEngine {
	return &SerialEngine{}
}

// Name returns the name of the engine.
func (e *SerialEngine) Name() string {
	return "SerialEngine"
}

// Schedule registers an event. It panics if the event is in the past.
func (e *SerialEngine) Schedule(evt Event) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if evt.Time() < e.now {
		log.Panicf(
			"scheduling an event earlier than current time, evt %s @ %.10f, now %.10f",
			reflect.TypeOf(evt), evt.Time(), e.now,
		)
	}

	e.queue.push(evt)
}

// Run processes all the events scheduled in the SerialEngine
func (e *SerialEngine) Run() error {
	for {
		e.gate.Lock()

		evt, ok := e.next()
		if !ok {
			e.gate.Unlock()
			return nil
		}

		err := e.handle(evt)

		e.gate.Unlock()

		if err != nil {
			return err
		}
	}
}

func (e *SerialEngine) next() (Event, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.queue.Len() == 0 {
		return nil, false
	}

	evt := e.queue.pop()
	e.now = evt.Time()

	return evt, true
}

func (e *SerialEngine) handle(evt Event) error {
	ctx := HookCtx{Domain: e, Pos: HookPosBeforeEvent, Item: evt}
	e.InvokeHook(ctx)

	err := evt.Handler().Handle(evt)

	ctx.Pos = HookPosAfterEvent
	e.InvokeHook(ctx)

	return err
}

// Pause prevents the SerialEngine from running more events.
func (e *SerialEngine) Pause() {
	e.ctrl.Lock()
	defer e.ctrl.Unlock()

	if !e.paused {
		e.gate.Lock()
		e.paused = true
	}
}

// Continue allows the SerialEngine to run events again.
func (e *SerialEngine) Continue() {
	e.ctrl.Lock()
	defer e.ctrl.Unlock()

	if e.paused {
		e.paused = false
		e.gate.Unlock()
	}
}

// CurrentTime returns the time of the event being run.
func (e *SerialEngine) CurrentTime() VTimeInSec {
	e.mu.Lock()
	defer e.mu.Unlock()

	return e.now
}
