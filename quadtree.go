package quadtree

// Package quadtree is a loose quadtree for broad phase overlap queries among
// moving axis aligned rectangles.

import "fmt"

const rootIndex = 0

// Quadtree is a spatial index over a fixed world rectangle.
//
// An element is registered in every leaf its rectangle reaches, so an element
// spanning a subdivision boundary lives in several leaves at once. All storage
// lives in IntLists addressed by integer indices: elements, the element nodes
// that link elements into leaves, and the quad nodes themselves.
//
// A Quadtree is not safe for concurrent use.
type Quadtree struct {
	bounds         Rect
	root           Region
	splitThreshold int
	maxDepth       int

	elements elementList
	enodes   elementNodeList
	nodes    nodeList

	// scratch, reused between calls
	stacks    []IntList // descent stack per insertion nesting level
	nesting   int
	displaced []IntList // elements detached by a split, per depth
	walk      IntList
	sweep     IntList
	seen      Seen
	processed Seen
	results   []int
}

// New creates an empty tree covering bounds.
// A leaf splits once it holds splitThreshold elements, unless it is maxDepth
// branches below the root, in which case it keeps accumulating elements.
func New(bounds Rect, splitThreshold, maxDepth int) *Quadtree {
	if splitThreshold < 1 {
		splitThreshold = 1
	}
	if maxDepth < 0 {
		maxDepth = 0
	}

	t := &Quadtree{
		bounds:         bounds,
		root:           Region{MidX: bounds.X, MidY: bounds.Y, HalfW: bounds.W >> 1, HalfH: bounds.H >> 1},
		splitThreshold: splitThreshold,
		maxDepth:       maxDepth,
		elements:       newElementList(),
		enodes:         newElementNodeList(),
		nodes:          newNodeList(),
		stacks:         make([]IntList, maxDepth+1),
		displaced:      make([]IntList, maxDepth+1),
	}
	for i := range t.stacks {
		t.stacks[i].init(ndNumFields)
		t.displaced[i].init(1)
	}
	t.walk.init(ndNumFields)
	t.sweep.init(2)
	t.nodes.addLeafNode()
	return t
}

// Bounds returns the world rectangle the tree was created with.
func (t *Quadtree) Bounds() Rect {
	return t.bounds
}

// Root returns the region of the root node.
func (t *Quadtree) Root() Region {
	return t.root
}

func (t *Quadtree) SplitThreshold() int {
	return t.splitThreshold
}

func (t *Quadtree) MaxDepth() int {
	return t.maxDepth
}

// Len returns the number of live elements.
func (t *Quadtree) Len() int {
	return t.elements.Len()
}

// Insert adds a rectangle owned by id and returns the element index, the handle
// to pass to Remove.
func (t *Quadtree) Insert(id int, r Rect) int {
	elt := t.elements.addElement(id, r.Box())
	t.insertElement(rootIndex, t.root, 0, elt)
	return elt
}

func (t *Quadtree) insertElement(node int, r Region, depth int, elt int) {
	stack := &t.stacks[t.nesting]
	t.nesting++
	t.findLeaves(node, r, depth, t.elements.box(elt), stack, func(leaf int, lr Region, ld int) {
		t.insertIntoLeaf(leaf, lr, ld, elt)
	})
	t.nesting--
}

func (t *Quadtree) insertIntoLeaf(node int, r Region, depth int, elt int) {
	en := t.enodes.addElementNode(elt)
	t.enodes.Set(en, enodeNext, t.nodes.first(node))
	t.nodes.Set(node, nodeFirst, en)
	count := t.nodes.count(node) + 1
	t.nodes.Set(node, nodeCount, count)

	if count < t.splitThreshold || depth >= t.maxDepth {
		return
	}

	// Detach the leaf's elements. Deeper splits triggered while they are
	// re-inserted use the buffers of deeper levels.
	displaced := &t.displaced[depth]
	displaced.Clear()
	for en := t.nodes.first(node); en != -1; {
		i := displaced.PushBack()
		displaced.Set(i, 0, t.enodes.element(en))
		next := t.enodes.next(en)
		t.enodes.Erase(en)
		en = next
	}

	t.nodes.makeBranch(node, t.nodes.addChildren())

	for i := 0; i < displaced.Range(); i++ {
		t.insertElement(node, r, depth, displaced.Get(i, 0))
	}
}

// Remove removes an element previously returned by Insert.
// Removing an element that is not live corrupts the tree.
func (t *Quadtree) Remove(elt int) {
	t.findLeaves(rootIndex, t.root, 0, t.elements.box(elt), &t.stacks[t.nesting], func(leaf int, _ Region, _ int) {
		t.removeFromLeaf(leaf, elt)
	})
	t.elements.Erase(elt)
}

func (t *Quadtree) removeFromLeaf(node int, elt int) {
	prev := -1
	en := t.nodes.first(node)
	for en != -1 && t.enodes.element(en) != elt {
		prev = en
		en = t.enodes.next(en)
	}
	if en == -1 {
		panic(fmt.Sprintf("quadtree: element %v is not registered in leaf %v", elt, node))
	}

	next := t.enodes.next(en)
	if prev == -1 {
		t.nodes.Set(node, nodeFirst, next)
	} else {
		t.enodes.Set(prev, enodeNext, next)
	}
	t.enodes.Erase(en)
	t.nodes.Set(node, nodeCount, t.nodes.count(node)-1)
}

// Move replaces the rectangle of an element and returns its new handle.
// Elements are never mutated in place: this is a Remove followed by an Insert.
func (t *Quadtree) Move(elt int, r Rect) int {
	id := t.elements.id(elt)
	t.Remove(elt)
	return t.Insert(id, r)
}

// Query returns the indices of all elements overlapping r.
func (t *Quadtree) Query(r Rect) []int {
	t.seen.Reset()
	return t.QueryFast(r, &t.seen, []int{})
}

// QueryFast accepts a 'results' slice as input, so repeated queries need not allocate.
// Elements already in seen are skipped. Every element visited is added to seen,
// overlapping or not, so each element is tested against r at most once.
func (t *Quadtree) QueryFast(r Rect, seen *Seen, results []int) []int {
	return t.query(r.Box(), seen, results)
}

func (t *Quadtree) query(q Box, seen *Seen, results []int) []int {
	results = results[:0]
	t.findLeaves(rootIndex, t.root, 0, q, &t.stacks[t.nesting], func(leaf int, _ Region, _ int) {
		for en := t.nodes.first(leaf); en != -1; en = t.enodes.next(en) {
			elt := t.enodes.element(en)
			if seen.Has(elt) {
				continue
			}
			seen.Add(elt)
			if t.elements.box(elt).Intersects(q) {
				results = append(results, elt)
			}
		}
	})
	return results
}

// Clean collapses every branch whose four children are empty leaves back into
// an empty leaf, bottom up, so a whole emptied subtree folds in one pass.
// Run it once per frame after the removals and insertions.
func (t *Quadtree) Clean() {
	if !t.nodes.isBranch(rootIndex) {
		return
	}

	// entries are (node, children visited)
	stack := &t.sweep
	stack.Clear()
	i := stack.PushBack()
	stack.Set(i, 0, rootIndex)
	stack.Set(i, 1, 0)

	for stack.Range() > 0 {
		top := stack.Range() - 1
		node := stack.Get(top, 0)
		visited := stack.Get(top, 1)
		stack.PopBack()
		first := t.nodes.first(node)

		if visited == 0 {
			i := stack.PushBack()
			stack.Set(i, 0, node)
			stack.Set(i, 1, 1)
			for c := first; c < first+4; c++ {
				if t.nodes.isBranch(c) {
					i := stack.PushBack()
					stack.Set(i, 0, c)
					stack.Set(i, 1, 0)
				}
			}
			continue
		}

		empty := true
		for c := first; c < first+4; c++ {
			if !t.nodes.isEmptyLeaf(c) {
				empty = false
				break
			}
		}
		if empty {
			t.nodes.freeChildren(first)
			t.nodes.makeLeaf(node)
		}
	}
}

// Clear removes every element and collapses the tree to a single empty leaf.
// Storage already allocated is kept.
func (t *Quadtree) Clear() {
	t.elements.Clear()
	t.enodes.Clear()
	t.nodes.Clear()
	t.nodes.addLeafNode()
}

// ElementID returns the owner id an element was inserted with.
func (t *Quadtree) ElementID(elt int) int {
	return t.elements.id(elt)
}

// ElementBox returns the rectangle an element was inserted with.
func (t *Quadtree) ElementBox(elt int) Box {
	return t.elements.box(elt)
}

// IsLeaf reports whether the quad node is a leaf.
func (t *Quadtree) IsLeaf(node int) bool {
	return !t.nodes.isBranch(node)
}

// LeafCount returns the number of elements registered in a leaf, or -1 for a branch.
func (t *Quadtree) LeafCount(node int) int {
	return t.nodes.count(node)
}

// LeafElements calls fn with every element registered in a leaf.
func (t *Quadtree) LeafElements(node int, fn func(elt int)) {
	if t.nodes.isBranch(node) {
		return
	}
	for en := t.nodes.first(node); en != -1; en = t.enodes.next(en) {
		fn(t.enodes.element(en))
	}
}

// Stats describes the current shape of the tree.
type Stats struct {
	Elements     int `json:"elements"`
	ElementNodes int `json:"element_nodes"`
	Nodes        int `json:"nodes"`
	Leaves       int `json:"leaves"`
	Branches     int `json:"branches"`
	MaxLeafDepth int `json:"max_leaf_depth"`
}

// Stats counts the live records and walks the tree for its shape.
func (t *Quadtree) Stats() Stats {
	s := Stats{
		Elements:     t.elements.Len(),
		ElementNodes: t.enodes.Len(),
		Nodes:        t.nodes.Len(),
	}
	t.Traverse(func(int, Region, int) {
		s.Branches++
	}, func(_ int, _ Region, depth int) {
		s.Leaves++
		s.MaxLeafDepth = max(s.MaxLeafDepth, depth)
	})
	return s
}
