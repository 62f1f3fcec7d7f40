package sortedset

import (
	"cmp"
	"errors"

	"github.com/google/btree"
	"golang.org/x/exp/constraints"
)

var (
	// ErrComparatorMismatch is returned when two sets of different
	// orderings are combined.
	ErrComparatorMismatch = errors.New("sortedset: comparator mismatch")

	// ErrNotFound is returned by IteratorFrom for an absent element.
	ErrNotFound = errors.New("sortedset: element not found")
)

// degree of the underlying B-tree.
const degree = 16

// Ordering is a three-way comparator with an identity. cmp returns a
// negative number when a < b, zero when equal and a positive one otherwise.
type Ordering[T any] struct {
	cmp     func(a, b T) int
	natural bool
}

// NewOrdering wraps cmp. Each call yields a distinct Ordering even for the
// same function.
func NewOrdering[T any](cmp func(a, b T) int) *Ordering[T] {
	return &Ordering[T]{cmp: cmp}
}

// Natural returns the < ordering of an ordered type.
func Natural[T constraints.Ordered]() *Ordering[T] {
	return &Ordering[T]{cmp: cmp.Compare[T], natural: true}
}

// Compare applies the ordering.
func (o *Ordering[T]) Compare(a, b T) int { return o.cmp(a, b) }

// Same reports whether o and other order elements identically by
// construction.
func (o *Ordering[T]) Same(other *Ordering[T]) bool {
	return o == other || (o.natural && other.natural)
}

func (o *Ordering[T]) less() btree.LessFunc[T] {
	return func(a, b T) bool { return o.cmp(a, b) < 0 }
}

// Set is an ordered set of T.
type Set[T any] struct {
	tree *btree.BTreeG[T]
	ord  *Ordering[T]
}
