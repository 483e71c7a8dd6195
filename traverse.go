package quadtree

// Fields of a traversal stack entry.
const (
	ndIndex = iota
	ndMidX
	ndMidY
	ndHalfW
	ndHalfH
	ndDepth
	ndNumFields
)

// LeafFunc is called for a node during a descent or a traversal.
type LeafFunc func(node int, r Region, depth int)

func pushNode(stack *IntList, node int, r Region, depth int) {
	i := stack.PushBack()
	stack.Set(i, ndIndex, node)
	stack.Set(i, ndMidX, r.MidX)
	stack.Set(i, ndMidY, r.MidY)
	stack.Set(i, ndHalfW, r.HalfW)
	stack.Set(i, ndHalfH, r.HalfH)
	stack.Set(i, ndDepth, depth)
}

func popNode(stack *IntList) (node int, r Region, depth int) {
	i := stack.Range() - 1
	node = stack.Get(i, ndIndex)
	r = Region{
		MidX:  stack.Get(i, ndMidX),
		MidY:  stack.Get(i, ndMidY),
		HalfW: stack.Get(i, ndHalfW),
		HalfH: stack.Get(i, ndHalfH),
	}
	depth = stack.Get(i, ndDepth)
	stack.PopBack()
	return node, r, depth
}

// findLeaves visits every leaf below node whose region the target box reaches.
//
// A branch only pushes the children on the target's side of its center: the top
// pair when target.Top >= MidY, the bottom pair when target.Bottom < MidY, the left
// pair when target.Left <= MidX and the right pair when target.Right > MidX. Child
// regions partition their parent, so these four comparisons are all that is needed.
//
// visit may split the leaf it is given; entries already on the stack stay valid
// because nodes are addressed by index and a split rewrites the leaf in place.
func (t *Quadtree) findLeaves(node int, r Region, depth int, target Box, stack *IntList, visit LeafFunc) {
	stack.Clear()
	pushNode(stack, node, r, depth)

	for stack.Range() > 0 {
		node, r, depth := popNode(stack)

		if !t.nodes.isBranch(node) {
			visit(node, r, depth)
			continue
		}

		first := t.nodes.first(node)
		w4 := r.HalfW >> 1
		h4 := r.HalfH >> 1
		l := r.MidX - w4
		rt := r.MidX + w4

		if target.Top >= r.MidY {
			top := r.MidY + h4
			if target.Left <= r.MidX {
				pushNode(stack, first+TopLeft, Region{l, top, w4, h4}, depth+1)
			}
			if target.Right > r.MidX {
				pushNode(stack, first+TopRight, Region{rt, top, w4, h4}, depth+1)
			}
		}
		if target.Bottom < r.MidY {
			bottom := r.MidY - h4
			if target.Left <= r.MidX {
				pushNode(stack, first+BottomLeft, Region{l, bottom, w4, h4}, depth+1)
			}
			if target.Right > r.MidX {
				pushNode(stack, first+BottomRight, Region{rt, bottom, w4, h4}, depth+1)
			}
		}
	}
}

// Traverse walks every node depth first, calling branch on each branch and leaf
// on each leaf. Either function may be nil. The callbacks may query the tree but
// must not modify it, and Traverse must not be called from inside them.
func (t *Quadtree) Traverse(branch, leaf LeafFunc) {
	stack := &t.walk
	stack.Clear()
	pushNode(stack, rootIndex, t.root, 0)

	for stack.Range() > 0 {
		node, r, depth := popNode(stack)

		if !t.nodes.isBranch(node) {
			if leaf != nil {
				leaf(node, r, depth)
			}
			continue
		}

		if branch != nil {
			branch(node, r, depth)
		}
		// pushed in reverse so that children pop in TL, TR, BL, BR order
		first := t.nodes.first(node)
		for q := BottomRight; q >= TopLeft; q-- {
			pushNode(stack, first+q, r.Child(q), depth+1)
		}
	}
}
