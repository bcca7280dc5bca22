package interp

import "testing"

import "github.com/stretchr/testify/require"

// newTestRuntime returns a fresh Runtime with an empty global environment,
// wired the way cmd/rcore's demo workload wires one.
func newTestRuntime(t *testing.T) *Runtime {
	t.Helper()
	return New(Options{})
}

// callFunction pushes a regular activation for def, enclosed dynamically
// by closureEnv, and returns the activation's Context.
func callFunction(ctx *Context, rt *Runtime, fd *FrameDescriptor, def *FuncDefPayload, closureEnv *Frame, site *Node) *Context {
	caller := NewCall(ctx.Current, ctx.Current, site)
	frame := rt.NewActivationFrame(fd, closureEnv, caller, &Function{Def: def, Closure: closureEnv})
	return ctx.WithCall(caller, frame)
}

// TestLookupCacheStabilizes is §8 scenario 1: f <- function() g(); g <-
// function() x; x <- 1 in global. Calling f() repeatedly should settle
// every lookup of x from g's FD on StableValue(1); redefining x at
// global must be observed by the next call.
func TestLookupCacheStabilizes(t *testing.T) {
	rt := newTestRuntime(t)
	ctx := NewContext()

	xIdx := rt.GlobalDescriptor.AddSlot("x", ObjectKind, true)
	rt.GlobalFrame.Write(ctx, xIdx, NewDouble(1), WriteLocal)

	gFD := rt.NewFunctionDescriptor("g", nil, rt.GlobalDescriptor)
	gDef := &FuncDefPayload{Name: "g"}
	fFD := rt.NewFunctionDescriptor("f", nil, rt.GlobalDescriptor)
	fDef := &FuncDefPayload{Name: "f"}

	call := func() Value {
		fctx := callFunction(ctx, rt, fFD, fDef, rt.GlobalFrame, &Node{})
		gctx := callFunction(fctx, rt, gFD, gDef, rt.GlobalFrame, &Node{})
		v, err := ResolveIdentifier(gctx, gctx.Frame(), "x")
		require.NoError(t, err)
		return v
	}

	for i := 0; i < 1000; i++ {
		v := call()
		d, ok := v.(Double)
		require.True(t, ok)
		require.Equal(t, float64(1), d.Float())
	}

	r := Lookup(gFD, "x")
	sv, ok := r.(StableValueResult)
	require.True(t, ok, "expected a cached StableValue after repeated identical lookups")
	d, ok := sv.Value.(Double)
	require.True(t, ok)
	require.Equal(t, float64(1), d.Float())

	rt.GlobalFrame.Write(ctx, xIdx, NewDouble(2), WriteLocal)

	v := call()
	d, ok = v.(Double)
	require.True(t, ok)
	require.Equal(t, float64(2), d.Float())
}

// TestLookupInvalidatedByChildEnvironmentWrite is §8 scenario 2: a fresh
// child environment attaches under global (without its own `x` slot);
// `x <- x + 1` evaluated there resolves to global's existing binding and
// writes through to it (a non-local write, since the name isn't local to
// the child). That write must invalidate the StableValue already cached
// for x in g's FD, a sibling of the child under global.
func TestLookupInvalidatedByChildEnvironmentWrite(t *testing.T) {
	rt := newTestRuntime(t)
	ctx := NewContext()

	xIdx := rt.GlobalDescriptor.AddSlot("x", ObjectKind, true)
	rt.GlobalFrame.Write(ctx, xIdx, NewDouble(1), WriteLocal)

	gFD := rt.NewFunctionDescriptor("g", nil, rt.GlobalDescriptor)
	gDef := &FuncDefPayload{Name: "g"}

	gctx := callFunction(ctx, rt, gFD, gDef, rt.GlobalFrame, &Node{})
	_, err := ResolveIdentifier(gctx, gctx.Frame(), "x")
	require.NoError(t, err)

	r := Lookup(gFD, "x")
	_, ok := r.(StableValueResult)
	require.True(t, ok, "expected g's first lookup of x to cache a StableValue")

	_, childFrame := rt.NewEnvironment("<child>", rt.GlobalDescriptor)

	targetFrame, targetIdx, ok := ResolveBindingFrame(childFrame, "x")
	require.True(t, ok)
	require.Same(t, rt.GlobalFrame, targetFrame, "x isn't local to the child, so it must resolve to global's binding")

	cur := targetFrame.Read(ctx, targetIdx)
	curD, _ := cur.(Double)
	targetFrame.Write(ctx, targetIdx, NewDouble(curD.Float()+1), WriteNonLocal)

	r = Lookup(gFD, "x")
	sv, ok := r.(StableValueResult)
	require.True(t, ok, "expected a fresh StableValue to be cacheable again after re-lookup")
	d, ok := sv.Value.(Double)
	require.True(t, ok)
	require.Equal(t, float64(2), d.Float())
}
