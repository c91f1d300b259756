// Package selection accumulates element subsets across interactive query
// passes. A Set is the bridge between index range queries and boundary
// extraction: circle/rectangle/polygon results are merged in or subtracted
// until the user is happy, then the final subset is handed to the
// extractor and the subdomain writer.
package selection

import (
	"sync"

	"github.com/sanonone/meshdex/pkg/core/mesh"
	"github.com/tidwall/btree"
)

// Set is an ordered, de-duplicated collection of element ids. It is safe
// for concurrent use; iteration order is ascending id, which keeps exports
// and tests deterministic.
type Set struct {
	mu  sync.RWMutex
	ids *btree.BTreeG[uint32]
}

// NewSet returns an empty selection.
func NewSet() *Set {
	return &Set{
		ids: btree.NewBTreeG[uint32](func(a, b uint32) bool { return a < b }),
	}
}

// Select adds the ids of the given elements. Already-selected elements are
// ignored, so repeated overlapping range selections stay de-duplicated.
func (s *Set) Select(elems []*mesh.Element) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, e := range elems {
		s.ids.Set(e.ID)
	}
}

// Deselect removes the ids of the given elements; absent ids are ignored.
func (s *Set) Deselect(elems []*mesh.Element) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, e := range elems {
		s.ids.Delete(e.ID)
	}
}

// SelectIDs adds raw element ids.
func (s *Set) SelectIDs(ids []uint32) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, id := range ids {
		s.ids.Set(id)
	}
}

// Contains reports whether the element id is selected.
func (s *Set) Contains(id uint32) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.ids.Get(id)
	return ok
}

// Len returns the number of selected elements.
func (s *Set) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.ids.Len()
}

// Clear empties the selection.
func (s *Set) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ids = btree.NewBTreeG[uint32](func(a, b uint32) bool { return a < b })
}

// IDs returns the selected ids in ascending order.
func (s *Set) IDs() []uint32 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]uint32, 0, s.ids.Len())
	s.ids.Scan(func(id uint32) bool {
		out = append(out, id)
		return true
	})
	return out
}

// Elements resolves the selection against a mesh snapshot, in ascending id
// order. Ids unknown to the mesh are skipped; a selection built against one
// snapshot resolves cleanly against a rebuilt identical one.
func (s *Set) Elements(m *mesh.Mesh) []*mesh.Element {
	ids := s.IDs()
	out := make([]*mesh.Element, 0, len(ids))
	for _, id := range ids {
		if e, ok := m.Element(id); ok {
			out = append(out, e)
		}
	}
	return out
}
