package interp

// This file implements the C6 stack-introspection builtins (§4.5). Each
// operates on the current activation (ctx.Current) and, for most, a
// requested frame number `which`, following the shared
// decode_frame_number rule.

// SysCall returns the syntax node of the activation selected by which.
func SysCall(ctx *Context, which int) (*Node, error) {
	depth, err := decodeFrameNumber(ctx.Current, which)
	if err != nil {
		return nil, err
	}
	c := findByDepth(ctx.Current, depth)
	if c == nil {
		return nil, &NotThatManyFramesError{Requested: which, Caller: attributeCaller(ctx.Current)}
	}
	return c.syntaxNode, nil
}

// SysFrame returns the environment view of the numbered frame,
// deoptimizing its unforced eager promises first (§4.4).
func SysFrame(ctx *Context, which int) (*Frame, error) {
	depth, err := decodeFrameNumber(ctx.Current, which)
	if err != nil {
		return nil, err
	}
	f := findFrameByDepth(ctx, depth)
	if f == nil {
		return nil, &NotThatManyFramesError{Requested: which, Caller: attributeCaller(ctx.Current)}
	}
	deoptimizeFrame(f)
	return f, nil
}

// SysFrames returns the environment views from depth 1 up to
// ctx.Current.depth-1, outermost first.
func SysFrames(ctx *Context) []*Frame {
	top := UnwrapPromiseCaller(ctx.Current).Depth() - 1
	var out []*Frame
	for d := 1; d <= top; d++ {
		if f := findFrameByDepth(ctx, d); f != nil {
			deoptimizeFrame(f)
			out = append(out, f)
		}
	}
	return out
}

// SysNframe returns the depth of unwrap(ctx.Current.previous).
func SysNframe(ctx *Context) int {
	return UnwrapPrevious(ctx.Current).Depth()
}

// SysParent implements sys.parent(n) per §4.3.
func SysParent(ctx *Context, n int) int {
	return SysParentDepth(ctx.Current, n)
}

// SysParents returns the vector of parent depths along the dynamic
// stack, from depth 1 to ctx.Current.depth.
func SysParents(ctx *Context) []int {
	top := UnwrapPromiseCaller(ctx.Current).Depth()
	out := make([]int, 0, top)
	for d := 1; d <= top; d++ {
		c := findByDepth(ctx.Current, d)
		if c == nil {
			continue
		}
		out = append(out, SysParentDepth(c, 1))
	}
	return out
}

// SysFunction returns the function object of the numbered frame, or nil
// if the frame has none.
func SysFunction(ctx *Context, which int) (Value, error) {
	depth, err := decodeFrameNumber(ctx.Current, which)
	if err != nil {
		return nil, err
	}
	f := findFrameByDepth(ctx, depth)
	if f == nil {
		return nil, &NotThatManyFramesError{Requested: which, Caller: attributeCaller(ctx.Current)}
	}
	return f.fn, nil
}

// findFrameByDepth walks frames reachable from ctx.Current's own frame
// via the dynamic (anc) chain until it finds the one whose caller is at
// the requested depth. The anc chain mirrors the RCaller.previous chain
// one-to-one (every pushed Frame records its RCaller), so this performs
// the same walk as findByDepth but over frames instead of bare records.
func findFrameByDepth(ctx *Context, depth int) *Frame {
	f := ctx.frame
	for f != nil {
		uc := UnwrapPromiseCaller(f.caller)
		if uc != nil && uc.depth == depth {
			return f
		}
		f = f.anc
	}
	return nil
}

// deoptimizeFrame implements §4.4's deoptimization rule: before exposing
// a frame to user code, mark any still-unforced eager promise bound in
// it as non-eager.
func deoptimizeFrame(f *Frame) {
	f.mu.RLock()
	cells := make([]cell, len(f.data))
	copy(cells, f.data)
	f.mu.RUnlock()
	for _, c := range cells {
		if c.kind == ObjectKind {
			if p, ok := c.obj.(*Promise); ok {
				p.Deoptimize()
			}
		}
	}
}

// ParentFrame implements parent.frame(n) (§4.5): like sys.parent(n) but
// returns the environment of the resolved activation. It optimizes the
// common case where the resolved depth is exactly the caller's own
// dynamic parent, reusing the cached `anc` pointer instead of
// re-walking the chain.
func ParentFrame(ctx *Context, n int) (*Frame, error) {
	resolvedDepth := SysParentDepth(ctx.Current, n)

	if cur := ctx.frame; cur != nil && cur.anc != nil {
		if uc := UnwrapPromiseCaller(cur.anc.caller); uc != nil && uc.depth == resolvedDepth {
			deoptimizeFrame(cur.anc)
			return cur.anc, nil
		}
	}

	f := findFrameByDepth(ctx, resolvedDepth)
	if f == nil {
		return nil, &NotThatManyFramesError{Requested: n, Caller: attributeCaller(ctx.Current)}
	}
	deoptimizeFrame(f)
	return f, nil
}

// MatchCall re-matches call's actual arguments against def's formals in
// env (§4.5): named arguments are matched exactly first, then
// unnamed/unused arguments are matched positionally to the remaining
// non-variadic formals in order, and anything left over is attributed
// to the variadic formal (expanded in place, or wrapped as a pairlist).
func MatchCall(def *FuncDefPayload, call *CallPayload, expandDots bool, env *Frame) (*CallPayload, error) {
	if def == nil || call == nil {
		return nil, &InvalidArgumentError{Msg: "match.call requires a function definition and a call"}
	}

	matched := make([]*Arg, len(def.Formals))
	used := make([]bool, len(call.Args))

	// Pass 1: exact name matching against every non-variadic formal.
	for i, f := range def.Formals {
		if f.Variadic {
			continue
		}
		for j, a := range call.Args {
			if used[j] || a.Name == "" || a.Name != f.Name {
				continue
			}
			matched[i] = &Arg{Name: f.Name, Value: a.Value}
			used[j] = true
			break
		}
	}

	// Pass 2: positional matching of remaining *unnamed* args against
	// remaining non-variadic formals, in order. Named args that failed
	// to exact-match stay unmatched here and fall through to `...`
	// rather than stealing a positional slot — this is the behavior
	// §8 scenario 4 pins down (`f(b = 2, 1, c = 3)` binds the bare `1`
	// to `a`, not `b`).
	argIdx := 0
	for i, f := range def.Formals {
		if f.Variadic {
			break
		}
		if matched[i] != nil {
			continue
		}
		for argIdx < len(call.Args) && (used[argIdx] || call.Args[argIdx].Name != "") {
			argIdx++
		}
		if argIdx >= len(call.Args) {
			continue
		}
		matched[i] = &Arg{Name: f.Name, Value: call.Args[argIdx].Value}
		used[argIdx] = true
		argIdx++
	}

	// Pass 3: everything still unused is attributed to `...`, in its
	// original relative order.
	var extra []Arg
	for j, a := range call.Args {
		if !used[j] {
			extra = append(extra, a)
		}
	}

	result := &CallPayload{Function: call.Function}
	for i, f := range def.Formals {
		if f.Variadic {
			if len(extra) == 0 {
				continue
			}
			if expandDots {
				result.Args = append(result.Args, extra...)
			} else {
				entries := make([]PairlistEntry, len(extra))
				for k, a := range extra {
					entries[k] = PairlistEntry{Name: a.Name, Value: nodeValue(a.Value)}
				}
				result.Args = append(result.Args, Arg{
					Name:  "...",
					Value: &Node{Tag: LiteralNodeTag, Literal: &Pairlist{Entries: entries}},
				})
			}
			continue
		}
		if matched[i] != nil {
			result.Args = append(result.Args, *matched[i])
		}
	}
	return result, nil
}

// nodeValue extracts a Value from a literal node, or wraps the node
// itself as an opaque symbol placeholder when it isn't a literal. This
// module doesn't evaluate expressions (that belongs to the external
// interpreter loop), so unevaluated `...` entries are carried as best-
// effort placeholders good enough for introspection and tests.
func nodeValue(n *Node) Value {
	if n == nil {
		return Null{}
	}
	if n.Tag == LiteralNodeTag && n.Literal != nil {
		return n.Literal
	}
	if n.Tag == SymbolNodeTag {
		return Symbol{Name: n.Symbol}
	}
	return Symbol{Name: "<expr>"}
}
