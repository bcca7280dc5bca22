package interp

import "sync"

// descID is an arena index for a FrameDescriptor. Per the Design Notes
// ("Cyclic references (FD ↔ sub-FD ↔ cached LookupResult)"), FD metadata
// is arena-allocated and keyed by a small integer id rather than linked
// purely by pointer, which keeps the parent/child graph easy to reason
// about and to dump for debugging.
type descID uint64

// FrameDescriptor is the shape of a frame's locals (§3): a named set of
// slots with declared kinds, shared across every activation of one
// function, plus the bookkeeping C4 needs to cache and invalidate
// cross-frame identifier lookups.
type FrameDescriptor struct {
	id       descID
	name     string
	isFunc   bool // function FDs have no singleton frame
	slotName []string
	slotIdx  map[string]int
	slotInfo []*SlotInfo

	// singleton is non-nil exactly for non-function FDs (§3: "a
	// function-FD has no singleton frame, a non-function-FD has exactly
	// one").
	singleton *Frame

	mu sync.Mutex

	// enclosing is the lexical parent FD used for identifier
	// resolution, with its own invalidation assumption (§3's FD
	// metadata: "enclosing-FD reference with its own invalidation
	// assumption").
	enclosing           *FrameDescriptor
	enclosingAssumption *Assumption

	// children is the weak set of child FDs (§3); Go has no portable
	// weak map pre-1.24 (this module targets 1.22 to match its
	// teacher), so this is a plain strong map and DESIGN.md records the
	// simplification: children are pruned explicitly on detach.
	children map[descID]*FrameDescriptor

	// previousLookups is the set of identifiers any FD on the search
	// path starting here has looked up through this FD (§4.2).
	previousLookups map[string]struct{}

	// lookupResults caches resolved LookupResults keyed by identifier,
	// for lookups that *started* at this FD.
	lookupResults map[string]LookupResult

	// noActiveBinding is cleared the first time an active binding
	// (callable getter) is installed in any slot of this FD (§4.1).
	noActiveBinding *Assumption
}

func newFrameDescriptor(id descID, name string, isFunc bool) *FrameDescriptor {
	return &FrameDescriptor{
		id:              id,
		name:            name,
		isFunc:          isFunc,
		slotIdx:         map[string]int{},
		children:        map[descID]*FrameDescriptor{},
		previousLookups: map[string]struct{}{},
		lookupResults:   map[string]LookupResult{},
		noActiveBinding: NewAssumption(),
	}
}

// AddSlot registers a new named slot with the given declared kind,
// returning its index. possibleMultiSlot should be true only for
// singleton, non-new-env FDs (the global environment and manually
// constructed environments attached to the search path).
func (fd *FrameDescriptor) AddSlot(name string, kind SlotKind, possibleMultiSlot bool) int {
	fd.mu.Lock()
	defer fd.mu.Unlock()

	maxInval := MaxInvalLocal
	if fd.name == globalEnvName {
		maxInval = MaxInvalGlobal
	}

	idx := len(fd.slotName)
	fd.slotName = append(fd.slotName, name)
	fd.slotIdx[name] = idx
	fd.slotInfo = append(fd.slotInfo, newSlotInfo(name, kind, possibleMultiSlot, maxInval))
	if fd.singleton != nil {
		fd.singleton.growTo(idx + 1)
	}
	return idx
}

// SlotIndex returns the index of name within fd, or (-1, false).
func (fd *FrameDescriptor) SlotIndex(name string) (int, bool) {
	fd.mu.Lock()
	defer fd.mu.Unlock()
	idx, ok := fd.slotIdx[name]
	if !ok {
		return -1, false
	}
	return idx, true
}

func (fd *FrameDescriptor) slotInfoAt(idx int) *SlotInfo { return fd.slotInfo[idx] }

const globalEnvName = "<global>"
