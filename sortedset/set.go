package sortedset

import (
	"fmt"

	"github.com/google/btree"
	"golang.org/x/exp/constraints"
)

// New returns an empty set kept in ord.
func New[T any](ord *Ordering[T]) *Set[T] {
	return &Set[T]{tree: btree.NewG[T](degree, ord.less()), ord: ord}
}

// NewOrdered returns an empty set of an ordered type under Natural.
func NewOrdered[T constraints.Ordered]() *Set[T] {
	return New(Natural[T]())
}

// Of returns a set of ord holding items.
func Of[T any](ord *Ordering[T], items ...T) *Set[T] {
	s := New(ord)
	for _, v := range items {
		s.Insert(v)
	}

	return s
}

// Ordering returns the set's ordering.
func (s *Set[T]) Ordering() *Ordering[T] { return s.ord }

// Insert adds v, replacing an element equal to it. It reports whether an
// element was replaced.
func (s *Set[T]) Insert(v T) bool {
	_, replaced := s.tree.ReplaceOrInsert(v)

	return replaced
}

// Remove deletes the element equal to v and returns it.
func (s *Set[T]) Remove(v T) (T, bool) { return s.tree.Delete(v) }

// Contains reports whether an element equal to v is present.
func (s *Set[T]) Contains(v T) bool { return s.tree.Has(v) }

// Get returns the stored element equal to v.
func (s *Set[T]) Get(v T) (T, bool) { return s.tree.Get(v) }

// Len returns the number of elements.
func (s *Set[T]) Len() int { return s.tree.Len() }

// Min returns the smallest element.
func (s *Set[T]) Min() (T, bool) { return s.tree.Min() }

// Max returns the largest element.
func (s *Set[T]) Max() (T, bool) { return s.tree.Max() }

// Predecessor returns the largest element strictly less than v.
func (s *Set[T]) Predecessor(v T) (out T, ok bool) {
	s.tree.DescendLessOrEqual(v, func(x T) bool {
		if s.ord.cmp(x, v) == 0 {
			return true
		}
		out, ok = x, true

		return false
	})

	return out, ok
}

// Floor returns the largest element less than or equal to v.
func (s *Set[T]) Floor(v T) (out T, ok bool) {
	s.tree.DescendLessOrEqual(v, func(x T) bool {
		out, ok = x, true
		return false
	})

	return out, ok
}

// Successor returns the smallest element strictly greater than v.
func (s *Set[T]) Successor(v T) (out T, ok bool) {
	s.tree.AscendGreaterOrEqual(v, func(x T) bool {
		if s.ord.cmp(x, v) == 0 {
			return true
		}
		out, ok = x, true

		return false
	})

	return out, ok
}

// Ceiling returns the smallest element greater than or equal to v.
func (s *Set[T]) Ceiling(v T) (out T, ok bool) {
	s.tree.AscendGreaterOrEqual(v, func(x T) bool {
		out, ok = x, true
		return false
	})

	return out, ok
}

// Ascend calls fn on every element in increasing order until fn returns false.
func (s *Set[T]) Ascend(fn func(v T) bool) { s.tree.Ascend(btree.ItemIteratorG[T](fn)) }

// Descend calls fn on every element in decreasing order until fn returns false.
func (s *Set[T]) Descend(fn func(v T) bool) { s.tree.Descend(btree.ItemIteratorG[T](fn)) }

// Range calls fn, in increasing order, on the elements x with
// from <= x < to until fn returns false.
func (s *Set[T]) Range(from, to T, fn func(v T) bool) {
	s.tree.AscendRange(from, to, btree.ItemIteratorG[T](fn))
}

// Slice returns the elements in increasing order.
func (s *Set[T]) Slice() []T {
	out := make([]T, 0, s.Len())
	s.tree.Ascend(func(v T) bool {
		out = append(out, v)
		return true
	})

	return out
}

// Clone returns an independent copy sharing s's ordering.
func (s *Set[T]) Clone() *Set[T] {
	return &Set[T]{tree: s.tree.Clone(), ord: s.ord}
}

// Equal reports whether s and other have the same ordering and the same
// elements.
func (s *Set[T]) Equal(other *Set[T]) bool {
	if s == other {
		return true
	}
	if !s.ord.Same(other.ord) || s.Len() != other.Len() {
		return false
	}
	a, b := s.Slice(), other.Slice()
	for i := range a {
		if s.ord.cmp(a[i], b[i]) != 0 {
			return false
		}
	}

	return true
}

// String lists the elements in order, e.g. "[-1 3 7]".
func (s *Set[T]) String() string {
	return fmt.Sprintf("%v", s.Slice())
}

func checkSame[T any](op string, a, b *Set[T]) error {
	if !a.ord.Same(b.ord) {
		return fmt.Errorf("%s: %w", op, ErrComparatorMismatch)
	}

	return nil
}

// Union returns a new set holding the elements of a or b; where both hold
// equal elements the one from a is kept.
func Union[T any](a, b *Set[T]) (*Set[T], error) {
	if err := checkSame("Union", a, b); err != nil {
		return nil, err
	}
	out := a.Clone()
	b.Ascend(func(v T) bool {
		if !out.Contains(v) {
			out.Insert(v)
		}
		return true
	})

	return out, nil
}

// Intersection returns a new set holding the elements of a also in b.
func Intersection[T any](a, b *Set[T]) (*Set[T], error) {
	if err := checkSame("Intersection", a, b); err != nil {
		return nil, err
	}
	small, large := a, b
	if b.Len() < a.Len() {
		small, large = b, a
	}
	out := New(a.ord)
	small.Ascend(func(v T) bool {
		if x, ok := a.Get(v); ok && large.Contains(v) {
			out.Insert(x)
		}
		return true
	})

	return out, nil
}

// Difference returns a new set holding the elements of a not in b.
func Difference[T any](a, b *Set[T]) (*Set[T], error) {
	if err := checkSame("Difference", a, b); err != nil {
		return nil, err
	}
	out := New(a.ord)
	a.Ascend(func(v T) bool {
		if !b.Contains(v) {
			out.Insert(v)
		}
		return true
	})

	return out, nil
}
