package sim

import (
	"log"
	"slices"
)

// HookPos names a site where hooks are invoked.
type HookPos struct {
	Name string
}

// HookCtx describes one hook invocation. Domain is the object invoking the
// hook, Item is the subject at that site, and Detail carries anything else
// the site wants to report.
type HookCtx struct {
	Domain Hookable
	Pos    *HookPos
	Item   any
	Detail any
}

// Hook is a short piece of program that can be invoked by a hookable object.
type Hook interface {
	Func(ctx HookCtx)
}

// Hookable defines an object that accept Hooks
type Hookable interface {
	AcceptHook(hook Hook)
	NumHooks() int
}

// Engine hook positions. The item is the event.
var (
	HookPosBeforeEvent = &HookPos{Name: "BeforeEvent"}
	HookPosAfterEvent  = &HookPos{Name: "AfterEvent"}
)

// HookableBase implements Hookable for embedding.
type HookableBase struct {
	hooks []Hook
}

// NumHooks returns the number of hooks registered.
func (h *HookableBase) NumHooks() int {
	return len(h.hooks)
}

// AcceptHook registers a hook. A hook can be registered only once.
func (h *HookableBase) AcceptHook(hook Hook) {
	if slices.Contains(h.hooks, hook) {
		log.Panicf("hook %T registered twice", hook)
	}

	h.hooks = append(h.hooks, hook)
}

// InvokeHook calls every hook in registration order.
func (h *HookableBase) InvokeHook(ctx HookCtx) {
	for _, hook := range h.hooks {
		hook.Func(ctx)
	}
}
