package quadtree

import "fmt"

// DefaultCapacity is the number of records an IntList holds before its
// backing buffer has to grow.
const DefaultCapacity = 128

// IntList is a growable array of fixed size records made of integer fields.
//
// It has two interfaces which must not be mixed on the same list:
//   - a free list (Insert/Erase): erased slots are recycled in O(1) and the
//     indices of other live records never change.
//   - a stack (PushBack/PopBack), used for temporary traversal state.
//
// An erased record stores the next free index in its first field, so callers must
// track liveness themselves. Accessing a record outside the list's range panics.
//
// The zero value is an empty list of single-field records.
type IntList struct {
	data      []int
	numFields int
	num       int // records in use, including erased ones
	freed     int
	freeHead  int
}

// NewIntList creates a list whose records each have numFields integer fields.
func NewIntList(numFields int) *IntList {
	l := &IntList{}
	l.init(numFields)
	return l
}

func (l *IntList) init(numFields int) {
	if numFields < 1 {
		numFields = 1
	}
	l.numFields = numFields
	l.data = make([]int, DefaultCapacity*numFields)
	l.num = 0
	l.freed = 0
	l.freeHead = -1
}

// Range returns the number of slots handed out so far, live or erased.
// Every valid index is below Range.
func (l *IntList) Range() int {
	return l.num
}

// Len returns the number of live records.
func (l *IntList) Len() int {
	return l.num - l.freed
}

// Cap returns the number of records the backing buffer can hold before it grows.
func (l *IntList) Cap() int {
	if l.numFields == 0 {
		return 0
	}
	return len(l.data) / l.numFields
}

// NumFields returns the number of integer fields per record.
func (l *IntList) NumFields() int {
	return max(l.numFields, 1)
}

// Get returns the value of a field of the nth record.
func (l *IntList) Get(n, field int) int {
	l.check(n)
	return l.data[n*l.numFields+field]
}

// Set sets the value of a field of the nth record.
func (l *IntList) Set(n, field, val int) {
	l.check(n)
	l.data[n*l.numFields+field] = val
}

// Clear empties the list. The backing buffer is kept.
func (l *IntList) Clear() {
	l.num = 0
	l.freed = 0
	l.freeHead = -1
}

// PushBack appends a record to the back of the list and returns its index.
// The record's fields hold whatever the slot held before.
func (l *IntList) PushBack() int {
	if l.numFields == 0 {
		l.init(1)
	}
	end := (l.num + 1) * l.numFields
	if end > len(l.data) {
		// double the capacity; the old buffer is left to the collector
		grown := make([]int, len(l.data)*2)
		copy(grown, l.data[:l.num*l.numFields])
		l.data = grown
	}
	l.num++
	return l.num - 1
}

// PopBack removes the record at the back of the list.
func (l *IntList) PopBack() {
	if l.num == 0 {
		panic("quadtree: PopBack on empty IntList")
	}
	l.num--
}

// Insert returns the index of a vacant record, recycling an erased one when possible.
func (l *IntList) Insert() int {
	if l.numFields == 0 {
		l.init(1)
	}
	if l.freeHead != -1 {
		index := l.freeHead
		l.freeHead = l.data[index*l.numFields]
		l.freed--
		return index
	}
	return l.PushBack()
}

// Erase releases the nth record so a later Insert can reuse it.
func (l *IntList) Erase(n int) {
	l.check(n)
	l.data[n*l.numFields] = l.freeHead
	l.freeHead = n
	l.freed++
}

func (l *IntList) check(n int) {
	if n < 0 || n >= l.num {
		panic(fmt.Sprintf("quadtree: index %v out of range [0, %v)", n, l.num))
	}
}
