// Package hooking lets observers attach to the positions where the driver and
// the simulation pair change state.
package hooking

// HookPos names a place that raises hooks. Positions are compared by pointer.
type HookPos struct {
	Name string
}

// HookCtx describes one firing of a hook.
type HookCtx struct {
	// Domain raised the hook.
	Domain Hookable
	Pos    *HookPos

	// Item is the subject, for example the handle that was stepped.
	Item any

	// Detail is extra data whose type depends on Pos.
	Detail any
}

// Hookable is anything observers can attach to.
type Hookable interface {
	AcceptHook(hook Hook)
}

// Hook observes a Hookable.
type Hook interface {
	Func(ctx HookCtx)
}

// HookFunc adapts a plain function to the Hook interface.
type HookFunc func(ctx HookCtx)

// Func calls f.
func (f HookFunc) Func(ctx HookCtx) {
	f(ctx)
}

// HookableBase keeps a list of hooks and calls them in the order they were
// attached. Embed it to make a type Hookable.
//
// Hooks are attached before the driver loop starts and never removed, so the
// list is not guarded.
type HookableBase struct {
	attached []Hook
}

// AcceptHook attaches a hook. Attaching the same hook value twice panics;
// HookFunc values are exempt because functions cannot be compared.
func (h *HookableBase) AcceptHook(hook Hook) {
	if _, isFunc := hook.(HookFunc); !isFunc {
		for _, other := range h.attached {
			if other == hook {
				panic("hooking: hook attached twice")
			}
		}
	}

	h.attached = append(h.attached, hook)
}

// InvokeHook passes ctx to every attached hook.
func (h *HookableBase) InvokeHook(ctx HookCtx) {
	for _, hook := range h.attached {
		hook.Func(ctx)
	}
}
