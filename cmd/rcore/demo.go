package main

import (
	"fmt"
	"io"

	"github.com/gostat/rcore/interp"
	"golang.org/x/exp/slices"
)

// runDemoWorkload exercises the execution core the way a real evaluator
// would drive it for `f <- function() g(); g <- function() x; x <- 1`,
// calling f() a handful of times. There is no parser/evaluator in this
// module (out of scope, §1), so the call graph below is built directly
// against the C2-C6 API instead of being parsed from source — the same
// shape the package's own tests use.
func runDemoWorkload(rt *interp.Runtime, out io.Writer) error {
	ctx := interp.NewContext()

	xIdx := rt.GlobalDescriptor.AddSlot("x", interp.ObjectKind, true)
	rt.GlobalFrame.Write(ctx, xIdx, interp.NewDouble(1), interp.WriteLocal)

	gFD := rt.NewFunctionDescriptor("g", nil, rt.GlobalDescriptor)
	fFD := rt.NewFunctionDescriptor("f", nil, rt.GlobalDescriptor)

	gDef := &interp.FuncDefPayload{Name: "g"}
	fDef := &interp.FuncDefPayload{Name: "f"}

	fCallSite := interp.Node{}
	gCallSite := interp.Node{}

	results := make([]string, 0, 3)
	for i := 0; i < 3; i++ {
		fCaller := interp.NewCall(ctx.Current, ctx.Current, &fCallSite)
		fFrame := rt.NewActivationFrame(fFD, rt.GlobalFrame, fCaller, &interp.Function{Def: fDef, Closure: rt.GlobalFrame})
		fctx := ctx.WithCall(fCaller, fFrame)

		gCaller := interp.NewCall(fCaller, fCaller, &gCallSite)
		gFrame := rt.NewActivationFrame(gFD, rt.GlobalFrame, gCaller, &interp.Function{Def: gDef, Closure: rt.GlobalFrame})
		gctx := fctx.WithCall(gCaller, gFrame)

		v, err := interp.ResolveIdentifier(gctx, gFrame, "x")
		if err != nil {
			return err
		}
		d, _ := v.(interp.Double)
		results = append(results, fmt.Sprintf("call %d: x=%v", i, d.Float()))
	}

	slices.Sort(results)
	for _, r := range results {
		fmt.Fprintln(out, r)
	}
	return nil
}
