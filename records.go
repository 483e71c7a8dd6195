package quadtree

// Element fields: the element's rectangle and the id of its owner.
const (
	eltLeft = iota
	eltTop
	eltRight
	eltBottom
	eltID
	eltNumFields
)

// Element node fields. An element node links one element into a leaf's list.
const (
	enodeNext = iota // next element node in the leaf, -1 ends the list
	enodeElement
	enodeNumFields
)

// Quad node fields.
const (
	nodeFirst = iota // first child if a branch, first element node if a leaf
	nodeCount        // number of elements in a leaf, branchMarker for a branch
	nodeNumFields
)

const branchMarker = -1

type elementList struct {
	IntList
}

func newElementList() elementList {
	var l elementList
	l.init(eltNumFields)
	return l
}

func (l *elementList) addElement(id int, b Box) int {
	i := l.Insert()
	l.Set(i, eltLeft, b.Left)
	l.Set(i, eltTop, b.Top)
	l.Set(i, eltRight, b.Right)
	l.Set(i, eltBottom, b.Bottom)
	l.Set(i, eltID, id)
	return i
}

func (l *elementList) box(i int) Box {
	l.check(i)
	p := i * eltNumFields
	return Box{
		Left:   l.data[p+eltLeft],
		Top:    l.data[p+eltTop],
		Right:  l.data[p+eltRight],
		Bottom: l.data[p+eltBottom],
	}
}

func (l *elementList) id(i int) int {
	return l.Get(i, eltID)
}

type elementNodeList struct {
	IntList
}

func newElementNodeList() elementNodeList {
	var l elementNodeList
	l.init(enodeNumFields)
	return l
}

func (l *elementNodeList) addElementNode(element int) int {
	i := l.Insert()
	l.Set(i, enodeNext, -1)
	l.Set(i, enodeElement, element)
	return i
}

func (l *elementNodeList) next(i int) int {
	return l.Get(i, enodeNext)
}

func (l *elementNodeList) element(i int) int {
	return l.Get(i, enodeElement)
}

// nodeList stores quad nodes. Children of a branch are always four contiguous
// records, so they are allocated and recycled as blocks of four. The free list
// links the first node of each free block.
type nodeList struct {
	IntList
	freeBlock  int
	freedNodes int
}

func newNodeList() nodeList {
	var l nodeList
	l.init(nodeNumFields)
	l.freeBlock = -1
	return l
}

// Len returns the number of live quad nodes.
func (l *nodeList) Len() int {
	return l.num - l.freedNodes
}

func (l *nodeList) Clear() {
	l.IntList.Clear()
	l.freeBlock = -1
	l.freedNodes = 0
}

// addLeafNode appends a single empty leaf. Only the root is allocated this way.
func (l *nodeList) addLeafNode() int {
	i := l.PushBack()
	l.makeLeaf(i)
	return i
}

// addChildren allocates four empty leaves and returns the index of the first.
func (l *nodeList) addChildren() int {
	var first int
	if l.freeBlock != -1 {
		first = l.freeBlock
		l.freeBlock = l.Get(first, nodeFirst)
		l.freedNodes -= 4
	} else {
		first = l.PushBack()
		l.PushBack()
		l.PushBack()
		l.PushBack()
	}
	for i := first; i < first+4; i++ {
		l.makeLeaf(i)
	}
	return first
}

func (l *nodeList) freeChildren(first int) {
	l.Set(first, nodeFirst, l.freeBlock)
	l.freeBlock = first
	l.freedNodes += 4
}

func (l *nodeList) makeLeaf(i int) {
	l.Set(i, nodeFirst, -1)
	l.Set(i, nodeCount, 0)
}

func (l *nodeList) makeBranch(i, firstChild int) {
	l.Set(i, nodeFirst, firstChild)
	l.Set(i, nodeCount, branchMarker)
}

func (l *nodeList) isBranch(i int) bool {
	return l.Get(i, nodeCount) == branchMarker
}

func (l *nodeList) isEmptyLeaf(i int) bool {
	return l.Get(i, nodeCount) == 0
}

func (l *nodeList) first(i int) int {
	return l.Get(i, nodeFirst)
}

func (l *nodeList) count(i int) int {
	return l.Get(i, nodeCount)
}
