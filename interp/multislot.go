package interp

import "sync"

// multiSlotData is a per-context array backing a promoted slot (§5): a
// slot that must hold a different value per logical "context" running
// side-by-side on the same interpreter thread. The initial context is
// always index 0.
type multiSlotData struct {
	mu     sync.RWMutex
	values map[int]cell
}

func newMultiSlotData(initial cell) *multiSlotData {
	return &multiSlotData{values: map[int]cell{0: initial}}
}

func (m *multiSlotData) read(ctxID int) Value {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if c, ok := m.values[ctxID]; ok {
		return c.toValue()
	}
	return Unbound{}
}

func (m *multiSlotData) write(ctxID int, v Value) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.values[ctxID] = cellFromValue(ObjectKind, v)
}

// dropContext discards a context's private value when that context
// exits. DESIGN.md records this as the resolution of the spec's open
// question on MultiSlotData lifetime: the source nullifies entries
// case-by-case with no single documented policy, so this module adopts
// the simplest sound one — the owning context removes its own entry
// when it tears down, and no other context may do so for it.
func (m *multiSlotData) dropContext(ctxID int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.values, ctxID)
}

// PromoteToMultiSlot promotes slot idx to multi-context storage.
// Promotion invalidates no_multi_slot, stable_value, and
// non_local_modified for that slot (§5) and preserves the slot's
// current value as context 0's value.
//
// If forcePromises is true (the SearchPathForcePromises flag, §6) and
// the slot currently holds an unforced Promise, it is forced eagerly
// as part of promotion rather than left lazy across contexts.
func (f *Frame) PromoteToMultiSlot(ctx *Context, idx int, forcePromises bool) *multiSlotData {
	f.mu.Lock()
	if f.multi == nil {
		f.multi = map[int]*multiSlotData{}
	}
	if m, ok := f.multi[idx]; ok {
		f.mu.Unlock()
		return m
	}
	cur := f.data[idx]
	f.mu.Unlock()

	info := f.desc.slotInfoAt(idx)
	info.noMultiSlot.Invalidate()
	info.nonLocalModified.Invalidate()
	info.mu.Lock()
	if info.stable != nil {
		info.stable.assumption.Invalidate()
		info.stable = nil
	}
	info.mu.Unlock()

	if forcePromises {
		if p, ok := cur.obj.(*Promise); ok && cur.kind == ObjectKind {
			if v, err := p.Force(ctx); err == nil {
				cur = cellFromValue(ObjectKind, v)
			}
		}
	}

	m := newMultiSlotData(cur)
	f.mu.Lock()
	f.multi[idx] = m
	f.mu.Unlock()
	return m
}

// IsMultiSlot reports whether slot idx has been promoted.
func (f *Frame) IsMultiSlot(idx int) bool {
	f.mu.RLock()
	defer f.mu.RUnlock()
	_, ok := f.multi[idx]
	return ok
}
