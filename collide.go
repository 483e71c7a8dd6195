package quadtree

// Pair is two owner ids whose rectangles overlap.
type Pair struct {
	A int
	B int
}

// CollidingPairs finds every pair of overlapping elements and returns their
// owner ids, each pair once. It accepts a 'pairs' slice as input to avoid
// reallocating it every frame.
//
// Leaves are walked in turn; each element not yet processed queries its own
// rectangle with itself pre-marked as seen, and pairs with every overlapping
// element that has not been processed yet.
func (t *Quadtree) CollidingPairs(pairs []Pair) []Pair {
	pairs = pairs[:0]
	t.processed.Reset()

	t.Traverse(nil, func(leaf int, _ Region, _ int) {
		for en := t.nodes.first(leaf); en != -1; en = t.enodes.next(en) {
			elt := t.enodes.element(en)
			if t.processed.Has(elt) {
				continue
			}
			t.processed.Add(elt)

			t.seen.Reset()
			t.seen.Add(elt)
			t.results = t.query(t.elements.box(elt), &t.seen, t.results)

			a := t.elements.id(elt)
			for _, other := range t.results {
				if t.processed.Has(other) {
					continue
				}
				pairs = append(pairs, Pair{A: a, B: t.elements.id(other)})
			}
		}
	})
	return pairs
}
