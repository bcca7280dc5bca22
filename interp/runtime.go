package interp

import (
	"sync"

	"go.uber.org/zap"
)

// Options configures a Runtime. Mirrors the teacher's opt/Options split:
// an exported struct for caller-visible knobs, applied once in New.
type Options struct {
	// SearchPathForcePromises selects whether promoting a slot to
	// multi-context storage eagerly forces any promise bound there
	// (§6's single boolean flag).
	SearchPathForcePromises bool

	// Logger overrides the default zap logger; nil uses a production
	// logger.
	Logger *zap.Logger
}

// Runtime owns the global resources shared by every activation: the
// frame-descriptor arena, the global environment, and the sampling
// profiler. It corresponds to the teacher's Interpreter type, scoped
// down to the execution-time environment core.
type Runtime struct {
	// mu serializes the slow-path FD-metadata mutations §5 calls out:
	// registration and enclosing-chain rewiring through rt.Attach and
	// rt.Detach. Multi-slot promotion (Frame.PromoteToMultiSlot) does not
	// take it, and hot-path slot reads/writes never take it.
	mu     sync.Mutex
	nextID descID
	descriptors map[descID]*FrameDescriptor

	// GlobalDescriptor/GlobalFrame are the one singleton FD+Frame for
	// the global environment (§3, §4.1's MaxInvalGlobal = 1 budget).
	GlobalDescriptor *FrameDescriptor
	GlobalFrame      *Frame

	profiler *Profiler

	SearchPathForcePromises bool

	log *zap.SugaredLogger
}

// New returns a Runtime with a fresh global environment and an initially
// disabled profiler.
func New(opts Options) *Runtime {
	logger := opts.Logger
	if logger == nil {
		logger, _ = zap.NewProduction()
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	rt := &Runtime{
		descriptors:             map[descID]*FrameDescriptor{},
		SearchPathForcePromises: opts.SearchPathForcePromises,
		log:                     logger.Sugar(),
	}
	rt.profiler = newProfiler(rt)
	rt.GlobalDescriptor, rt.GlobalFrame = rt.newSingletonDescriptorLocked(globalEnvName, nil)
	rt.GlobalFrame.caller = globalCaller()
	return rt
}

func (rt *Runtime) allocID() descID {
	id := rt.nextID
	rt.nextID++
	return id
}

// NewFunctionDescriptor registers a new, non-singleton FrameDescriptor
// for a function with the given formals as its slots, enclosed lexically
// by enclosing. Every activation of this function shares the returned
// FD (§3: "Many activations may share one FD (function frames)").
//
// This module assigns a function's enclosing FD once, at definition time, and shares it across
// every call — consistent with every §8 test scenario, where functions
// are defined once at a stable lexical level. A function re-closed over
// a different environment on each call (R permits this in principle)
// would need a per-closure rather than per-FD enclosing chain, which
// this core does not model.
func (rt *Runtime) NewFunctionDescriptor(name string, formals []Formal, enclosing *FrameDescriptor) *FrameDescriptor {
	rt.mu.Lock()
	defer rt.mu.Unlock()

	fd := newFrameDescriptor(rt.allocID(), name, true)
	fd.enclosing = enclosing
	fd.enclosingAssumption = NewAssumption()
	rt.descriptors[fd.id] = fd
	if enclosing != nil {
		enclosing.mu.Lock()
		enclosing.children[fd.id] = fd
		enclosing.mu.Unlock()
	}
	for _, f := range formals {
		fd.AddSlot(f.Name, ObjectKind, false)
	}
	rt.log.Debugw("registered function descriptor", "name", name, "slots", len(formals))
	return fd
}

func (rt *Runtime) newSingletonDescriptorLocked(name string, enclosing *FrameDescriptor) (*FrameDescriptor, *Frame) {
	id := rt.allocID()
	fd := newFrameDescriptor(id, name, false)
	fd.enclosing = enclosing
	fd.enclosingAssumption = NewAssumption()
	rt.descriptors[id] = fd
	if enclosing != nil {
		enclosing.mu.Lock()
		enclosing.children[id] = fd
		enclosing.mu.Unlock()
	}
	f := newFrame(fd, nil)
	if rt.GlobalFrame != nil {
		f.root = rt.GlobalFrame
	}
	fd.singleton = f
	return fd, f
}

// NewEnvironment creates a fresh, manually constructed singleton
// environment enclosed by enclosing — e.g. the child environment
// attached under the global environment in §8 scenario 2.
func (rt *Runtime) NewEnvironment(name string, enclosing *FrameDescriptor) (*FrameDescriptor, *Frame) {
	rt.mu.Lock()
	defer rt.mu.Unlock()
	fd, f := rt.newSingletonDescriptorLocked(name, enclosing)
	rt.log.Debugw("constructed environment", "name", name)
	return fd, f
}

// NewActivationFrame creates a fresh activation frame for a function
// descriptor, with the given caller record and function value.
func (rt *Runtime) NewActivationFrame(fd *FrameDescriptor, dynamicParent *Frame, caller *RCaller, fn Value) *Frame {
	f := newFrame(fd, dynamicParent)
	f.caller = caller
	f.fn = fn
	return f
}

// Profiler returns the runtime's sampling profiler (C7).
func (rt *Runtime) Profiler() *Profiler { return rt.profiler }

// ForcePromise forces p under ctx, logging (but not suppressing) any
// runtime-invariant violation it raises, per §7's fatal-error taxonomy.
func (rt *Runtime) ForcePromise(ctx *Context, p *Promise) (Value, error) {
	v, err := p.Force(ctx)
	if err != nil {
		if _, ok := err.(*RecursivePromiseError); ok {
			rt.logFatalInvariant("recursive promise force", err)
		}
	}
	return v, err
}

// Attach rewires fd's enclosing FD, serializing on the runtime monitor
// (§5) and logging the slow-path event.
func (rt *Runtime) Attach(fd, newEnclosing *FrameDescriptor) {
	rt.mu.Lock()
	defer rt.mu.Unlock()
	Attach(fd, newEnclosing)
	rt.log.Debugw("attached descriptor", "fd", fd.name, "enclosing", newEnclosing.name)
}

// Detach removes fd from its enclosing FD's child set.
func (rt *Runtime) Detach(fd *FrameDescriptor) {
	rt.mu.Lock()
	defer rt.mu.Unlock()
	Detach(fd)
	rt.log.Debugw("detached descriptor", "fd", fd.name)
}

// ResolveIdentifier performs a full identifier resolution starting at
// frame, using the lookup cache where possible and falling back to a
// direct per-frame walk otherwise (§4.2's "not cacheable" path). This is
// the convenience entry point tests and cmd/rcore use; the bare Lookup
// function is the cache layer itself.
func ResolveIdentifier(ctx *Context, frame *Frame, id string) (Value, error) {
	r := Lookup(frame.desc, id)
	switch res := r.(type) {
	case StableValueResult:
		return res.Value, nil
	case FrameAndSlotResult:
		return res.Frame.Read(ctx, res.Slot), nil
	case MissingResult:
		return nil, &InvalidArgumentError{Msg: "object '" + id + "' not found", Caller: attributeCaller(ctx.Current)}
	default:
		// notCacheable: walk the enclosing chain directly without
		// touching the cache.
		return directWalk(ctx, frame, id)
	}
}

// ResolveBindingFrame walks the enclosing chain from frame to find the
// concrete Frame and slot index that actually owns identifier id,
// ignoring the lookup cache's stable-value shortcut. This is what a
// non-local assignment (e.g. `x <- x + 1` where x isn't local) needs: the
// write target itself, not a snapshot of its current value.
func ResolveBindingFrame(frame *Frame, id string) (*Frame, int, bool) {
	fd := frame.desc
	f := frame
	for fd != nil {
		if idx, ok := fd.SlotIndex(id); ok {
			if f == nil {
				return nil, 0, false
			}
			return f, idx, true
		}
		fd = fd.enclosing
		f = nil
		if fd != nil && fd.singleton != nil {
			f = fd.singleton
		}
	}
	return nil, 0, false
}

func directWalk(ctx *Context, frame *Frame, id string) (Value, error) {
	fd := frame.desc
	f := frame
	for fd != nil {
		if idx, ok := fd.SlotIndex(id); ok {
			if f != nil {
				return f.Read(ctx, idx), nil
			}
			// Bound in an FD with no reachable live frame from here;
			// nothing more we can do but report missing.
			break
		}
		fd = fd.enclosing
		f = nil
		if fd != nil && fd.singleton != nil {
			f = fd.singleton
		}
	}
	return nil, &InvalidArgumentError{Msg: "object '" + id + "' not found", Caller: attributeCaller(ctx.Current)}
}
