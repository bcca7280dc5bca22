package interp

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func lit(v Value) *Node { return &Node{Tag: LiteralNodeTag, Literal: v} }

// TestMatchCallVariadic is §8 scenario 4: f <- function(a, ...)
// match.call(); call f(b = 2, 1, c = 3). With expand_dots = true the
// result must have arguments in order (a=1, b=2, c=3); the bare 1 binds
// positionally to `a`, not to the already-named (but unmatched) `b`.
func TestMatchCallVariadic(t *testing.T) {
	def := &FuncDefPayload{
		Name: "f",
		Formals: []Formal{
			{Name: "a"},
			{Name: "...", Variadic: true},
		},
	}
	call := &CallPayload{
		Function: newSymbolNode(SourcePosition{}, "f"),
		Args: []Arg{
			{Name: "b", Value: lit(NewDouble(2))},
			{Value: lit(NewDouble(1))},
			{Name: "c", Value: lit(NewDouble(3))},
		},
	}

	matched, err := MatchCall(def, call, true, nil)
	require.NoError(t, err)
	require.Len(t, matched.Args, 3)
	require.Equal(t, "a", matched.Args[0].Name)
	require.Equal(t, "b", matched.Args[1].Name)
	require.Equal(t, "c", matched.Args[2].Name)
	require.Equal(t, float64(1), matched.Args[0].Value.Literal.(Double).Float())
	require.Equal(t, float64(2), matched.Args[1].Value.Literal.(Double).Float())
	require.Equal(t, float64(3), matched.Args[2].Value.Literal.(Double).Float())
}

// TestMatchCallVariadicNoExpand checks the expand_dots = false branch of
// the same scenario: a=1, ... = pairlist(b=2, c=3).
func TestMatchCallVariadicNoExpand(t *testing.T) {
	def := &FuncDefPayload{
		Name: "f",
		Formals: []Formal{
			{Name: "a"},
			{Name: "...", Variadic: true},
		},
	}
	call := &CallPayload{
		Function: newSymbolNode(SourcePosition{}, "f"),
		Args: []Arg{
			{Name: "b", Value: lit(NewDouble(2))},
			{Value: lit(NewDouble(1))},
			{Name: "c", Value: lit(NewDouble(3))},
		},
	}

	matched, err := MatchCall(def, call, false, nil)
	require.NoError(t, err)
	require.Len(t, matched.Args, 2)
	require.Equal(t, "a", matched.Args[0].Name)
	require.Equal(t, "...", matched.Args[1].Name)

	pl, ok := matched.Args[1].Value.Literal.(*Pairlist)
	require.True(t, ok)
	require.Len(t, pl.Entries, 2)
	require.Equal(t, "b", pl.Entries[0].Name)
	require.Equal(t, "c", pl.Entries[1].Name)
}

// TestMatchCallIdempotent is the idempotence-on-canonical-form law:
// re-matching a call already in canonical form (all-named, in formal
// order) returns the same result.
func TestMatchCallIdempotent(t *testing.T) {
	def := &FuncDefPayload{Formals: []Formal{{Name: "a"}, {Name: "b"}}}
	canonical := &CallPayload{
		Function: newSymbolNode(SourcePosition{}, "f"),
		Args: []Arg{
			{Name: "a", Value: lit(NewDouble(1))},
			{Name: "b", Value: lit(NewDouble(2))},
		},
	}

	first, err := MatchCall(def, canonical, true, nil)
	require.NoError(t, err)
	second, err := MatchCall(def, first, true, nil)
	require.NoError(t, err)

	require.Equal(t, len(first.Args), len(second.Args))
	for i := range first.Args {
		require.Equal(t, first.Args[i].Name, second.Args[i].Name)
	}
}

// TestSysFrameNframeRoundTrip checks the round-trip law: sys.frame(sys.nframe())
// is the innermost user function's environment.
func TestSysFrameNframeRoundTrip(t *testing.T) {
	rt := newTestRuntime(t)
	ctx := NewContext()

	fFD := rt.NewFunctionDescriptor("f", nil, rt.GlobalDescriptor)
	fDef := &FuncDefPayload{Name: "f"}
	fCaller := NewCall(ctx.Current, ctx.Current, &Node{})
	fFrame := rt.NewActivationFrame(fFD, rt.GlobalFrame, fCaller, &Function{Def: fDef, Closure: rt.GlobalFrame})
	fctx := ctx.WithCall(fCaller, fFrame)

	// The builtins run under their own activation called from f, so f's
	// activation is c0.previous for both (§4.5).
	bFD := rt.NewFunctionDescriptor("sys.nframe", nil, rt.GlobalDescriptor)
	bCaller := NewCall(fCaller, fCaller, &Node{})
	bctx := fctx.WithCall(bCaller, rt.NewActivationFrame(bFD, fFrame, bCaller, nil))

	n := SysNframe(bctx)
	got, err := SysFrame(bctx, n)
	require.NoError(t, err)
	require.Same(t, fFrame, got)
}

// TestParentFrameMatchesSysParent checks: parent.frame(1) equals
// sys.frame(sys.parent(1)) when the resolved activation is a function
// frame.
func TestParentFrameMatchesSysParent(t *testing.T) {
	rt := newTestRuntime(t)
	ctx := NewContext()

	fFD := rt.NewFunctionDescriptor("f", nil, rt.GlobalDescriptor)
	gFD := rt.NewFunctionDescriptor("g", nil, rt.GlobalDescriptor)
	fDef := &FuncDefPayload{Name: "f"}
	gDef := &FuncDefPayload{Name: "g"}

	fCaller := NewCall(ctx.Current, ctx.Current, &Node{})
	fFrame := rt.NewActivationFrame(fFD, rt.GlobalFrame, fCaller, &Function{Def: fDef, Closure: rt.GlobalFrame})
	fctx := ctx.WithCall(fCaller, fFrame)

	gCaller := NewCall(fCaller, fCaller, &Node{})
	gFrame := rt.NewActivationFrame(gFD, fFrame, gCaller, &Function{Def: gDef, Closure: rt.GlobalFrame})
	gctx := fctx.WithCall(gCaller, gFrame)

	viaParentFrame, err := ParentFrame(gctx, 1)
	require.NoError(t, err)

	parentDepth := SysParentDepth(gctx.Current, 1)
	viaSysFrame, err := SysFrame(gctx, parentDepth)
	require.NoError(t, err)

	require.Same(t, viaSysFrame, viaParentFrame)
	require.Same(t, fFrame, viaParentFrame)
}
