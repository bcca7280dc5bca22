package interp

import "sync"

// SlotKind is a frame slot's declared storage kind. These five values
// name FastR's real FrameSlotKind enum (see SPEC_FULL.md §9.1); keeping
// them distinct from the full Value tag lets common slots (loop
// counters, logical flags) live unboxed in a frame cell instead of
// behind an interface.
type SlotKind uint8

const (
	BooleanKind SlotKind = iota
	ByteKind
	IntKind
	DoubleKind
	ObjectKind
)

//go:generate stringer -type=SlotKind

// MaxInvalLocal and MaxInvalGlobal bound how many times a slot's stable
// value may be re-armed after invalidation before the core gives up and
// leaves stable-value absent forever (§3).
const (
	MaxInvalLocal  = 2
	MaxInvalGlobal = 1
)

// stableValue pairs a recorded value with the assumption that it is
// still current.
type stableValue struct {
	value      Value
	assumption *Assumption
}

// SlotInfo is the per-slot metadata shared by every activation of a
// function's FrameDescriptor (or owned outright by a singleton FD's one
// frame). It never lives in the Frame itself, only in the
// FrameDescriptor, matching §3's "Slot info is created when a slot is
// added and lives as long as its FD."
type SlotInfo struct {
	name         string
	declaredKind SlotKind

	// nonLocalModified is valid until some non-local writer (the
	// super-assign operator, or a write through a materialized/irregular
	// frame) touches this slot.
	nonLocalModified *Assumption

	// noMultiSlot is cleared the first time this slot is promoted to
	// multi-context storage (§5).
	noMultiSlot *Assumption

	// possibleMultiSlot is a static bit: true for slots of a singleton,
	// non-new-env frame descriptor, which are the only slots eligible
	// for multi-context promotion.
	possibleMultiSlot bool

	// maxInval bounds stable-value re-arming: 2 for ordinary local
	// frames, 1 for the global environment (§3).
	maxInval int

	mu         sync.Mutex
	stable     *stableValue
	invalCount int
}

func newSlotInfo(name string, kind SlotKind, possibleMultiSlot bool, maxInval int) *SlotInfo {
	return &SlotInfo{
		name:              name,
		declaredKind:      kind,
		nonLocalModified:  NewAssumption(),
		noMultiSlot:       NewAssumption(),
		possibleMultiSlot: possibleMultiSlot,
		maxInval:          maxInval,
	}
}

// StableValue returns the currently recorded stable value, or nil if
// none is live.
func (s *SlotInfo) StableValue() Value {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stable == nil || !s.stable.assumption.IsValid() {
		return nil
	}
	return s.stable.value
}

// observeWrite implements step 4 of the §4.1 write algorithm: compare
// the new value against any live stable value, invalidate on mismatch,
// and re-arm a fresh stable value while the invalidation budget allows.
func (s *SlotInfo) observeWrite(v Value) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.stable != nil && s.stable.assumption.IsValid() {
		if Equal(s.stable.value, v) {
			return // still current; nothing to invalidate or re-arm.
		}
		s.stable.assumption.Invalidate()
		s.invalCount++
	}

	if s.invalCount > s.maxInval {
		s.stable = nil
		return
	}
	s.stable = &stableValue{value: v, assumption: NewAssumption()}
}

// cell is a single frame slot's storage: a tagged union over the five
// declared SlotKinds, mirroring FastR's unboxed-primitive frame cells.
type cell struct {
	kind SlotKind
	b    bool
	by   byte
	i    int64
	d    float64
	obj  Value
}

func (c cell) toValue() Value {
	switch c.kind {
	case BooleanKind:
		return Logical{V: c.b}
	case ByteKind:
		return Raw{V: c.by}
	case IntKind:
		return Integer{V: int32(c.i)}
	case DoubleKind:
		return NewDouble(c.d)
	default:
		return c.obj
	}
}

// cellFromValue boxes/unboxes v into the cell shape matching kind. A
// value whose tag doesn't match the declared kind is stored boxed under
// ObjectKind instead — the same "generalize to Object on mismatch"
// behavior FastR frames use rather than rejecting the write outright.
func cellFromValue(kind SlotKind, v Value) cell {
	switch kind {
	case BooleanKind:
		if lv, ok := v.(Logical); ok && !lv.NA {
			return cell{kind: BooleanKind, b: lv.V}
		}
	case ByteKind:
		if rv, ok := v.(Raw); ok {
			return cell{kind: ByteKind, by: rv.V}
		}
	case IntKind:
		if iv, ok := v.(Integer); ok && !iv.NA {
			return cell{kind: IntKind, i: int64(iv.V)}
		}
	case DoubleKind:
		if dv, ok := v.(Double); ok {
			return cell{kind: DoubleKind, d: dv.Float()}
		}
	}
	return cell{kind: ObjectKind, obj: v}
}
