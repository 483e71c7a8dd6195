package quadtree

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestIntListFreeList(t *testing.T) {
	l := NewIntList(3)
	require.Equal(t, 3, l.NumFields())

	for i := 0; i < 3; i++ {
		n := l.Insert()
		require.Equal(t, i, n)
		l.Set(n, 1, i*10)
		l.Set(n, 2, i*100)
	}
	require.Equal(t, 3, l.Len())

	l.Erase(1)
	require.Equal(t, 2, l.Len())
	require.Equal(t, 3, l.Range())

	// live records keep their index and contents
	require.Equal(t, 20, l.Get(2, 1))
	require.Equal(t, 200, l.Get(2, 2))

	// erased slots are recycled most recent first
	l.Erase(0)
	require.Equal(t, 0, l.Insert())
	require.Equal(t, 1, l.Insert())
	require.Equal(t, 3, l.Insert())
	require.Equal(t, 4, l.Len())
}

func TestIntListGrow(t *testing.T) {
	l := NewIntList(2)
	require.Equal(t, DefaultCapacity, l.Cap())

	n := DefaultCapacity*4 + 3
	for i := 0; i < n; i++ {
		k := l.Insert()
		l.Set(k, 0, i)
		l.Set(k, 1, -i)
	}
	require.Equal(t, n, l.Len())
	require.GreaterOrEqual(t, l.Cap(), n)
	for i := 0; i < n; i++ {
		require.Equal(t, i, l.Get(i, 0))
		require.Equal(t, -i, l.Get(i, 1))
	}

	// capacity never shrinks
	c := l.Cap()
	l.Clear()
	require.Equal(t, 0, l.Len())
	require.Equal(t, c, l.Cap())
	require.Equal(t, 0, l.Insert())
}

func TestIntListStack(t *testing.T) {
	l := NewIntList(1)
	for i := 0; i < 10; i++ {
		l.Set(l.PushBack(), 0, i)
	}
	for i := 9; i >= 0; i-- {
		require.Equal(t, i, l.Get(l.Range()-1, 0))
		l.PopBack()
	}
	require.Equal(t, 0, l.Range())
	require.Panics(t, func() { l.PopBack() })
}

func TestIntListOutOfRange(t *testing.T) {
	l := NewIntList(2)
	l.Insert()
	require.Panics(t, func() { l.Get(1, 0) })
	require.Panics(t, func() { l.Set(-1, 0, 0) })
	require.Panics(t, func() { l.Erase(5) })
}

func TestIntListZeroValue(t *testing.T) {
	var l IntList
	require.Equal(t, 1, l.NumFields())
	require.Zero(t, l.Len())
	require.Zero(t, l.Cap())
	require.Panics(t, func() { l.Get(0, 0) })

	a := l.Insert()
	b := l.Insert()
	require.Equal(t, []int{0, 1}, []int{a, b})
	l.Set(b, 0, 42)
	require.Equal(t, 42, l.Get(b, 0))
	require.Equal(t, DefaultCapacity, l.Cap())

	l.Erase(a)
	require.Equal(t, a, l.Insert())
	require.Equal(t, 2, l.Len())

	var stack IntList
	stack.Clear()
	stack.Set(stack.PushBack(), 0, 7)
	require.Equal(t, 1, stack.Range())
	require.Equal(t, 7, stack.Get(0, 0))
	stack.PopBack()
	require.Zero(t, stack.Range())
}

func TestNodeListBlocks(t *testing.T) {
	l := newNodeList()
	root := l.addLeafNode()
	require.Equal(t, 0, root)

	a := l.addChildren()
	b := l.addChildren()
	require.Equal(t, 1, a)
	require.Equal(t, 5, b)
	require.Equal(t, 9, l.Len())

	l.freeChildren(a)
	require.Equal(t, 5, l.Len())

	// a freed block comes back whole, as four empty leaves
	c := l.addChildren()
	require.Equal(t, a, c)
	for i := c; i < c+4; i++ {
		require.True(t, l.isEmptyLeaf(i))
		require.Equal(t, -1, l.first(i))
	}
	require.Equal(t, 9, l.Len())
}
