package interp

import "sync/atomic"

// Context is the explicit per-call execution handle. Per the Design
// Notes ("Per-thread global state... pass as an explicit context
// handle to every operation; there is no hidden thread-local"), the
// current activation, the active multi-slot context id, and the
// cooperative interrupt flag are threaded explicitly rather than stored
// in package-level or goroutine-local state.
type Context struct {
	// Current is the activation record (C2) executing right now.
	Current *RCaller

	// frame is the Frame belonging to Current, when Current is a
	// function activation with its own locals. Stack-introspection
	// walks this frame's anc chain (§4.5).
	frame *Frame

	// ContextID selects which multi-context slot value reads/writes
	// through a MultiSlot target (§5). The initial context is always 0.
	ContextID int

	interrupted *atomic.Bool
}

// NewContext returns a fresh Context rooted at the global activation,
// context id 0.
func NewContext() *Context {
	return &Context{Current: globalCaller(), interrupted: new(atomic.Bool)}
}

// WithCall returns a shallow copy of ctx with Current and frame replaced
// by a newly pushed activation, used when entering a function call
// without disturbing the caller's own Context value. The interrupt flag
// is shared with the parent, since it represents one top-level
// evaluation's cooperative cancellation, not a per-frame property.
func (c *Context) WithCall(caller *RCaller, frame *Frame) *Context {
	nc := *c
	nc.Current = caller
	nc.frame = frame
	return &nc
}

// Frame returns the Frame belonging to the current activation, if any.
func (c *Context) Frame() *Frame { return c.frame }

// Interrupt cooperatively requests that the running statement stop at
// its next safepoint (§5 "Cancellation & timeout").
func (c *Context) Interrupt() { c.interrupted.Store(true) }

// Interrupted reports and clears whether Interrupt was requested: the
// first check after an Interrupt sees true and consumes it, mirroring
// the profiler's own tick-flag drain (profiler.go's OnStatement).
func (c *Context) Interrupted() bool {
	return c.interrupted.CompareAndSwap(true, false)
}
