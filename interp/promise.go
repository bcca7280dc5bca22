package interp

import "sync"

// PromiseState is a promise's lifecycle state (§3, §4.4).
type PromiseState uint8

const (
	Unforced PromiseState = iota
	Forcing
	Forced
)

// Thunk evaluates a promise's captured expression in its captured
// environment, running under the given (promise-evaluation) activation.
type Thunk func(env *Frame, caller *RCaller) (Value, error)

// Promise is a lazy argument (§3, C5): a thunk that is never run again
// once it has succeeded (a failed run leaves the promise Unforced, so a
// later Force runs it again), producing a value attributed to the
// activation that forced it.
type Promise struct {
	share ShareState

	mu            sync.Mutex
	state         PromiseState
	thunk         Thunk
	capturedEnv   *Frame
	forcedValue   Value
	logicalCaller *RCaller

	// eager marks a promise the caller believed could be evaluated
	// ahead of time; sys.frame/sys.frames must deoptimize (clear) this
	// before exposing the frame to user code (§4.4).
	eager bool
}

// NewPromise builds an unforced promise over thunk, evaluated lazily in
// env.
func NewPromise(thunk Thunk, env *Frame, eager bool) *Promise {
	return &Promise{thunk: thunk, capturedEnv: env, eager: eager}
}

// State returns the promise's current lifecycle state.
func (p *Promise) State() PromiseState {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state
}

// Deoptimize marks the promise non-eager, so a later force is never
// elided by an optimizer that assumed eager evaluation. This module has
// no optimizer to actually elide anything (Design Notes: "no actual
// deoptimization is required in an interpreter"), so Deoptimize is pure
// bookkeeping that sys.frame/sys.frames must still perform for
// observational fidelity with the spec.
func (p *Promise) Deoptimize() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.state == Unforced {
		p.eager = false
	}
}

// Force runs the force protocol (§4.4). current is the activation
// forcing the promise; it becomes the promise's logical caller and the
// thunk runs under a transparent promise-evaluation activation installed
// on top of it.
func (p *Promise) Force(ctx *Context) (Value, error) {
	current := ctx.Current

	p.mu.Lock()
	switch p.state {
	case Forced:
		v := p.forcedValue
		p.mu.Unlock()
		return v, nil
	case Forcing:
		p.mu.Unlock()
		return nil, &RecursivePromiseError{Caller: attributeCaller(current)}
	}
	p.state = Forcing
	p.logicalCaller = current
	p.mu.Unlock()

	evalCaller := &RCaller{
		depth:       current.Depth(),
		parent:      current.parent,
		previous:    current,
		payloadKind: PromiseEvaluation,
		payload:     current,
	}

	v, err := p.thunk(p.capturedEnv, evalCaller)

	p.mu.Lock()
	defer p.mu.Unlock()
	if err != nil {
		// §4.4 step 6: on any failure the promise must not be left
		// "forcing" (that would zombie it for every future force
		// attempt); it always resets to unforced before the error
		// propagates, whether the failure was a recoverable user
		// interrupt or a fatal recursive-evaluation error. Scenario 6
		// in §8 is exactly this: a RecursivePromise failure must leave
		// the promise Unforced.
		p.state = Unforced
		return nil, err
	}
	p.forcedValue = v
	p.state = Forced
	p.eager = false
	return v, nil
}
