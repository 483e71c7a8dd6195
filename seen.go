package quadtree

// Seen is a set of element indices used to deduplicate query results, since
// an element spanning several leaves is reachable from each of them.
//
// Reset is O(1): membership is a per-index stamp compared to the current generation.
// The zero value is an empty set.
type Seen struct {
	stamps []uint32
	gen    uint32
}

// Reset empties the set.
func (s *Seen) Reset() {
	s.gen++
	if s.gen == 0 {
		// generation wrapped, old stamps could collide
		clear(s.stamps)
		s.gen = 1
	}
}

// Add marks the element index as seen.
func (s *Seen) Add(elt int) {
	if s.gen == 0 {
		s.gen = 1
	}
	if elt >= len(s.stamps) {
		n := max(elt+1, 2*len(s.stamps), 64)
		grown := make([]uint32, n)
		copy(grown, s.stamps)
		s.stamps = grown
	}
	s.stamps[elt] = s.gen
}

// Has reports whether the element index was added since the last Reset.
func (s *Seen) Has(elt int) bool {
	return s.gen != 0 && elt < len(s.stamps) && s.stamps[elt] == s.gen
}
