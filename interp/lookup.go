package interp

// LookupResult is the result of resolving an identifier along an
// enclosing chain (§3). Exactly one of the three constructors below
// produces any given LookupResult value; the type itself is a closed
// sum via an unexported marker method, mirroring how the teacher's own
// node/action enums are small closed tag sets.
type LookupResult interface {
	isLookupResult()
}

// StableValueResult is a bound, known-immutable value with an
// invalidatable assumption.
type StableValueResult struct{ Value Value }

// FrameAndSlotResult is a concrete read-out location that can be
// re-read on the slow path.
type FrameAndSlotResult struct {
	Frame *Frame
	Slot  int
}

// MissingResult means the identifier is known absent along the current
// chain.
type MissingResult struct{}

func (StableValueResult) isLookupResult()  {}
func (FrameAndSlotResult) isLookupResult() {}
func (MissingResult) isLookupResult()      {}

// notCacheable is returned internally by lookup when a slot is bound
// but has neither a stable value nor a singleton frame to read from
// (i.e. it belongs to a non-singleton function FD with no live frame
// reachable from here); §4.2 says the caller falls back to a direct
// per-read walk in that case, and nothing is cached.
type notCacheable struct{ frame *Frame; slot int }

func (notCacheable) isLookupResult() {}

// Lookup implements the §4.2 lookup contract: walk the enclosing chain
// from start upward, recording which FDs were consulted for id along
// the way, and cache the final result at start.
func Lookup(start *FrameDescriptor, id string) LookupResult {
	fd := start
	for fd != nil {
		fd.mu.Lock()
		fd.previousLookups[id] = struct{}{}
		fd.mu.Unlock()

		if idx, ok := fd.SlotIndex(id); ok {
			info := fd.slotInfoAt(idx)
			if sv := info.StableValue(); sv != nil {
				r := StableValueResult{Value: sv}
				cacheLookup(start, id, r)
				return r
			}
			if fd.singleton != nil {
				r := FrameAndSlotResult{Frame: fd.singleton, Slot: idx}
				cacheLookup(start, id, r)
				return r
			}
			// Bound, but neither stable nor singleton: not cacheable.
			return notCacheable{}
		}
		fd = fd.enclosing
	}
	r := MissingResult{}
	cacheLookup(start, id, r)
	return r
}

func cacheLookup(start *FrameDescriptor, id string, r LookupResult) {
	start.mu.Lock()
	start.lookupResults[id] = r
	start.mu.Unlock()
}

// CachedLookup returns a previously cached result for id at start, if
// any is live.
func CachedLookup(start *FrameDescriptor, id string) (LookupResult, bool) {
	start.mu.Lock()
	defer start.mu.Unlock()
	r, ok := start.lookupResults[id]
	return r, ok
}

// writeInvalidate implements the §4.2 invalidation contract: writing id
// to a slot in fd must invalidate every cached LookupResult for id in
// fd and every FD reachable through fd's children, but only if fd was
// ever consulted for id in the first place (fd.previousLookups records
// exactly that).
func writeInvalidate(fd *FrameDescriptor, id string) {
	fd.mu.Lock()
	_, consulted := fd.previousLookups[id]
	fd.mu.Unlock()
	if !consulted {
		return
	}
	invalidateIDInSubtree(fd, id, map[descID]bool{})
}

func invalidateIDInSubtree(fd *FrameDescriptor, id string, seen map[descID]bool) {
	if seen[fd.id] {
		return
	}
	seen[fd.id] = true

	fd.mu.Lock()
	delete(fd.lookupResults, id)
	kids := make([]*FrameDescriptor, 0, len(fd.children))
	for _, c := range fd.children {
		kids = append(kids, c)
	}
	fd.mu.Unlock()

	for _, c := range kids {
		invalidateIDInSubtree(c, id, seen)
	}
}

// Attach rewires fd's enclosing FD to newEnclosing (e.g. `attach()`,
// library load, or any other manipulation of the search path). Per
// §4.2 this invalidates *all* cached lookups in fd's subtree, resets
// previous_lookups, and updates the child back-pointer on both the old
// and new enclosing FD.
func Attach(fd, newEnclosing *FrameDescriptor) {
	rewire(fd, newEnclosing)
}

// Detach removes fd from its current enclosing FD's child set, leaving
// it with no lexical parent. Used to model the base-namespace marker
// manipulations §4.2 calls out.
func Detach(fd *FrameDescriptor) {
	rewire(fd, nil)
}

func rewire(fd, newEnclosing *FrameDescriptor) {
	invalidateAllInSubtree(fd)

	if fd.enclosing != nil {
		fd.enclosing.mu.Lock()
		delete(fd.enclosing.children, fd.id)
		fd.enclosing.mu.Unlock()
	}

	fd.enclosingAssumption.Invalidate()
	fd.enclosing = newEnclosing
	fd.enclosingAssumption = NewAssumption()

	if newEnclosing != nil {
		newEnclosing.mu.Lock()
		newEnclosing.children[fd.id] = fd
		newEnclosing.mu.Unlock()
	}
}

func invalidateAllInSubtree(fd *FrameDescriptor) {
	var walk func(*FrameDescriptor, map[descID]bool)
	walk = func(f *FrameDescriptor, seen map[descID]bool) {
		if seen[f.id] {
			return
		}
		seen[f.id] = true

		f.mu.Lock()
		f.lookupResults = map[string]LookupResult{}
		f.previousLookups = map[string]struct{}{}
		kids := make([]*FrameDescriptor, 0, len(f.children))
		for _, c := range f.children {
			kids = append(kids, c)
		}
		f.mu.Unlock()

		for _, c := range kids {
			walk(c, seen)
		}
	}
	walk(fd, map[descID]bool{})
}
