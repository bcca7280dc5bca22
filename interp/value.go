package interp

import (
	"fmt"
	"math"
)

// ShareState tracks whether a Value may be mutated destructively.
// Grounded on the "temporary / non-shared / shared" share-state triad
// described for the out-of-scope vector layer (C1) in the spec; the
// core only needs to read and compare this state, never decide it.
type ShareState uint8

const (
	// Temporary values may be reused destructively by their owner.
	Temporary ShareState = iota
	// NonShared values have exactly one known reference.
	NonShared
	// Shared values must be copied before any in-place mutation.
	Shared
)

func (s ShareState) String() string {
	switch s {
	case Temporary:
		return "temporary"
	case NonShared:
		return "non-shared"
	case Shared:
		return "shared"
	default:
		return "unknown"
	}
}

// ValueTag is the tag of the C1 tagged union. The core never inspects
// these beyond routing to SlotKind and accounting memory, since the
// real coercion/vector machinery lives outside this module.
type ValueTag uint8

const (
	NullTag ValueTag = iota
	MissingTag
	UnboundTag
	LogicalTag
	IntegerTag
	DoubleTag
	ComplexTag
	StringTag
	RawTag
	ListTag
	PairlistTag
	SymbolTag
	EnvironmentTag
	FunctionTag
	PromiseTag
	ArgsTag
)

// Value is the only contract the execution core has with the value and
// vector layer (C1). Real vector storage, coercions, and attributes are
// out of scope and owned elsewhere; the core only needs to know a
// value's tag, its approximate size for profiler memory accounting, its
// share state, and how to compare it for the stable-value assumption.
type Value interface {
	Tag() ValueTag
	// Size is an approximate byte footprint, consumed by the profiler's
	// allocation accounting (§4.6); real sizes are computed by the
	// vector layer this interface stands in for.
	Size() int64
	ShareState() ShareState
	SetShareState(ShareState)
}

// Equal reports whether two values are the same under the stable-value
// assumption's equality rule: bitwise for primitives, identity for
// objects. See DESIGN.md for the NaN/-0.0 open-question resolution.
func Equal(a, b Value) bool {
	if a == nil || b == nil {
		return a == b
	}
	if a.Tag() != b.Tag() {
		return false
	}
	switch av := a.(type) {
	case Logical:
		bv := b.(Logical)
		return av == bv
	case Integer:
		bv := b.(Integer)
		return av == bv
	case Double:
		bv := b.(Double)
		return av.bits() == bv.bits()
	case Str:
		bv := b.(Str)
		return av.NA == bv.NA && av.V == bv.V
	default:
		// Objects compare by identity, as mandated by §4.1.
		return a == b
	}
}

// baseValue implements the bookkeeping common to every concrete value.
// Scalars are passed by value, so SetShareState on one has no effect;
// the pointer-backed values (*List, *Pairlist, *ArgsAndNames, *Function)
// override it to update their share state in place.
type baseValue struct {
	share ShareState
}

func (b baseValue) ShareState() ShareState { return b.share }
func (baseValue) SetShareState(ShareState) {}

// Null is the language's NULL.
type Null struct{ baseValue }

func (Null) Tag() ValueTag { return NullTag }
func (Null) Size() int64   { return 0 }

// Missing marks an argument slot with no supplied value and no default.
type Missing struct{ baseValue }

func (Missing) Tag() ValueTag { return MissingTag }
func (Missing) Size() int64   { return 0 }

// Unbound marks a frame slot that has never been written.
type Unbound struct{ baseValue }

func (Unbound) Tag() ValueTag { return UnboundTag }
func (Unbound) Size() int64   { return 0 }

// Logical is a tri-state NA-aware boolean.
type Logical struct {
	baseValue
	NA bool
	V  bool
}

func (Logical) Tag() ValueTag { return LogicalTag }
func (Logical) Size() int64   { return 1 }

// Integer carries an explicit NA sentinel distinct from any valid int32.
type Integer struct {
	baseValue
	NA bool
	V  int32
}

func (Integer) Tag() ValueTag { return IntegerTag }
func (Integer) Size() int64   { return 4 }

// naDoubleBits is the bit pattern reserved as the double NA sentinel,
// distinct from any IEEE-754 quiet NaN produced by arithmetic.
const naDoubleBits uint64 = 0x7FF00000000007A2

// Double carries its NA-ness in the bit pattern itself, as the real
// language does, rather than as a side flag.
type Double struct {
	baseValue
	Bits uint64
}

func NewDouble(v float64) Double { return Double{Bits: math.Float64bits(v)} }
func (d Double) Float() float64  { return math.Float64frombits(d.Bits) }
func (d Double) NA() bool        { return d.Bits == naDoubleBits }
func (d Double) Tag() ValueTag   { return DoubleTag }
func (d Double) Size() int64     { return 8 }
func (d Double) bits() uint64    { return d.Bits }

// Complex is a pair of doubles.
type Complex struct {
	baseValue
	Re, Im float64
}

func (Complex) Tag() ValueTag { return ComplexTag }
func (Complex) Size() int64   { return 16 }

// Str is an NA-aware string scalar.
type Str struct {
	baseValue
	NA bool
	V  string
}

func (s Str) Tag() ValueTag { return StringTag }
func (s Str) Size() int64   { return int64(len(s.V)) }

// Raw is a single raw byte.
type Raw struct {
	baseValue
	V byte
}

func (Raw) Tag() ValueTag { return RawTag }
func (Raw) Size() int64   { return 1 }

// List is a heterogeneous, possibly-named vector of values.
type List struct {
	baseValue
	Names []string
	Elems []Value
}

func (l *List) Tag() ValueTag              { return ListTag }
func (l *List) SetShareState(s ShareState) { l.share = s }
func (l *List) Size() int64 {
	var sz int64
	for _, e := range l.Elems {
		if e != nil {
			sz += e.Size()
		}
	}
	return sz
}

// PairlistEntry is one cons cell of a Pairlist.
type PairlistEntry struct {
	Name  string
	Value Value
}

// Pairlist is the dotted-pair list used for unevaluated argument lists,
// e.g. the `...` binding when match.call is asked not to expand it.
type Pairlist struct {
	baseValue
	Entries []PairlistEntry
}

func (p *Pairlist) Tag() ValueTag              { return PairlistTag }
func (p *Pairlist) SetShareState(s ShareState) { p.share = s }
func (p *Pairlist) Size() int64 {
	var sz int64
	for _, e := range p.Entries {
		if e.Value != nil {
			sz += e.Value.Size()
		}
	}
	return sz
}

// Symbol is an interned identifier value (distinct from a string).
type Symbol struct {
	baseValue
	Name string
}

func (Symbol) Tag() ValueTag { return SymbolTag }
func (s Symbol) Size() int64 { return int64(len(s.Name)) }

// Environment is a first-class handle on a frame + its descriptor.
type Environment struct {
	baseValue
	Frame *Frame
}

func (Environment) Tag() ValueTag { return EnvironmentTag }
func (Environment) Size() int64   { return 0 }

// Function is a closure: its definition node plus the environment it
// closed over.
type Function struct {
	baseValue
	Def     *FuncDefPayload
	Closure *Frame
}

func (*Function) Tag() ValueTag                { return FunctionTag }
func (*Function) Size() int64                  { return 0 }
func (f *Function) SetShareState(s ShareState) { f.share = s }

// ArgsAndNames is the args-and-names tuple mentioned in §3, used to
// carry an unevaluated call's actual arguments before binding.
type ArgsAndNames struct {
	baseValue
	Names []string
	Args  []Value
}

func (*ArgsAndNames) Tag() ValueTag                { return ArgsTag }
func (a *ArgsAndNames) SetShareState(s ShareState) { a.share = s }
func (a *ArgsAndNames) Size() int64 {
	var sz int64
	for _, v := range a.Args {
		if v != nil {
			sz += v.Size()
		}
	}
	return sz
}

var _ Value = (*Promise)(nil)

func (p *Promise) Tag() ValueTag { return PromiseTag }
func (p *Promise) Size() int64   { return 0 }

func (p *Promise) ShareState() ShareState     { return p.share }
func (p *Promise) SetShareState(s ShareState) { p.share = s }

// describe renders a short human label for a Value, used by logging and
// by the REPL demo in cmd/rcore.
func describe(v Value) string {
	if v == nil {
		return "<nil>"
	}
	return fmt.Sprintf("%T(tag=%d)", v, v.Tag())
}
