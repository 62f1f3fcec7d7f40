package sortedset

import (
	"fmt"
)

type position int

const (
	beforeFirst position = iota
	atElement
	afterLast
)

// Iterator is a cursor that steps through a set in both directions. It
// starts before the first element; Next from there yields the minimum, and
// Prev past the end yields the maximum. Each step is a fresh O(log n)
// lookup, so the set may be modified between steps.
//
// Copying an Iterator value copies the cursor.
type Iterator[T any] struct {
	set *Set[T]
	cur T
	pos position
}

// Iterator returns a cursor before the first element.
func (s *Set[T]) Iterator() *Iterator[T] {
	return &Iterator[T]{set: s, pos: beforeFirst}
}

// ReverseIterator returns a cursor after the last element, for walking
// with Prev.
func (s *Set[T]) ReverseIterator() *Iterator[T] {
	return &Iterator[T]{set: s, pos: afterLast}
}

// IteratorFrom returns a cursor whose Next yields v. v must be in the set.
func (s *Set[T]) IteratorFrom(v T) (*Iterator[T], error) {
	if !s.Contains(v) {
		return nil, fmt.Errorf("IteratorFrom(%v): %w", v, ErrNotFound)
	}
	it := &Iterator[T]{set: s, pos: beforeFirst}
	if p, ok := s.Predecessor(v); ok {
		it.cur, it.pos = p, atElement
	}

	return it, nil
}

// Next advances the cursor and returns the element under it. ok is false
// when the cursor moves past the last element.
func (it *Iterator[T]) Next() (v T, ok bool) {
	switch it.pos {
	case beforeFirst:
		v, ok = it.set.Min()
	case atElement:
		v, ok = it.set.Successor(it.cur)
	case afterLast:
		return v, false
	}

	return it.move(v, ok, afterLast)
}

// Prev moves the cursor back and returns the element under it. ok is false
// when the cursor moves before the first element.
func (it *Iterator[T]) Prev() (v T, ok bool) {
	switch it.pos {
	case afterLast:
		v, ok = it.set.Max()
	case atElement:
		v, ok = it.set.Predecessor(it.cur)
	case beforeFirst:
		return v, false
	}

	return it.move(v, ok, beforeFirst)
}

func (it *Iterator[T]) move(v T, ok bool, edge position) (T, bool) {
	if !ok {
		var zero T
		it.cur, it.pos = zero, edge

		return zero, false
	}
	it.cur, it.pos = v, atElement

	return v, true
}
