package interp

import (
	"testing"

	"github.com/stretchr/testify/require"
)

// TestSysParentThroughPromise is §8 scenario 3: f <- function(a) a; call
// f(g()) where g <- function() sys.parent(1). g's sys.parent(1) must
// resolve to the depth of f's caller (global), not f's own depth and not
// the transparent promise-evaluation frame's depth.
func TestSysParentThroughPromise(t *testing.T) {
	rt := newTestRuntime(t)
	ctx := NewContext() // Current == globalCaller(), depth 0

	fFD := rt.NewFunctionDescriptor("f", []Formal{{Name: "a"}}, rt.GlobalDescriptor)
	fDef := &FuncDefPayload{Name: "f"}

	fCaller := NewCall(ctx.Current, ctx.Current, &Node{}) // f's lexical parent is global
	fFrame := rt.NewActivationFrame(fFD, rt.GlobalFrame, fCaller, &Function{Def: fDef, Closure: rt.GlobalFrame})
	fctx := ctx.WithCall(fCaller, fFrame)

	var parentDepth int
	thunk := func(env *Frame, evalCaller *RCaller) (Value, error) {
		gCaller := NewCall(evalCaller, ctx.Current, &Node{}) // g's lexical parent is global
		parentDepth = SysParentDepth(gCaller, 1)
		return Integer{V: int32(parentDepth)}, nil
	}
	p := NewPromise(thunk, rt.GlobalFrame, false)
	fFrame.Write(fctx, 0, p, WriteLocal)

	_, err := rt.ForcePromise(fctx, p)
	require.NoError(t, err)

	require.Equal(t, 0, parentDepth, "sys.parent(1) from g must land on f's caller's depth")
	require.NotEqual(t, fCaller.Depth(), parentDepth, "must not resolve to f's own depth")
}

// TestDepthMonotonicity checks §8's invariant: for every activation c,
// c.previous.depth <= c.depth <= c.previous.depth+1, with equality to
// c.previous.depth exactly when c is non-function or promise-evaluation.
func TestDepthMonotonicity(t *testing.T) {
	g := globalCaller()
	regular := NewCall(g, g, &Node{})
	require.Equal(t, g.Depth()+1, regular.Depth())

	nonFn := NewNonFunctionActivation(regular, &Node{})
	require.Equal(t, regular.Depth(), nonFn.Depth())

	promiseEval := &RCaller{
		depth:       regular.Depth(),
		previous:    regular,
		payloadKind: PromiseEvaluation,
		payload:     regular,
	}
	require.Equal(t, regular.Depth(), promiseEval.Depth())

	nested := NewCall(promiseEval, regular, &Node{})
	require.Equal(t, promiseEval.Depth()+1, nested.Depth())
}

// TestUnwrapPromiseCallerIdempotent checks the unwrap-idempotence law:
// unwrap(unwrap(c)) == unwrap(c).
func TestUnwrapPromiseCallerIdempotent(t *testing.T) {
	regular := NewCall(globalCaller(), globalCaller(), &Node{})
	chain := &RCaller{depth: regular.Depth(), previous: regular, payloadKind: PromiseEvaluation, payload: regular}
	once := UnwrapPromiseCaller(chain)
	twice := UnwrapPromiseCaller(once)
	require.Same(t, once, twice)
	require.Same(t, regular, once)
}
