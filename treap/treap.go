package treap

import (
	"math/rand/v2"
)

// Node is one element of a sequence. The zero value is not usable; create
// nodes with New.
type Node[T any] struct {
	Value T

	priority            uint64
	size                int
	left, right, parent *Node[T]
}

// New returns a one-element sequence holding v.
func New[T any](v T) *Node[T] {
	return &Node[T]{Value: v, priority: rand.Uint64(), size: 1}
}

// Size returns the number of elements in the subtree rooted at n; 0 for nil.
// Called on a root it is the length of the sequence.
func Size[T any](n *Node[T]) int {
	if n == nil {
		return 0
	}

	return n.size
}

func (n *Node[T]) update() {
	n.size = 1 + Size(n.left) + Size(n.right)
}

// Root returns the root of the treap containing n.
func Root[T any](n *Node[T]) *Node[T] {
	if n == nil {
		return nil
	}
	for n.parent != nil {
		n = n.parent
	}

	return n
}

// Len returns the length of the sequence containing n.
func Len[T any](n *Node[T]) int {
	return Size(Root(n))
}

// Index returns the zero-based position of n in its sequence.
func Index[T any](n *Node[T]) int {
	idx := Size(n.left)
	for x := n; x.parent != nil; x = x.parent {
		if x == x.parent.right {
			idx += Size(x.parent.left) + 1
		}
	}

	return idx
}

// First returns the first element of the sequence containing n.
func First[T any](n *Node[T]) *Node[T] {
	r := Root(n)
	if r == nil {
		return nil
	}
	for r.left != nil {
		r = r.left
	}

	return r
}

// Last returns the last element of the sequence containing n.
func Last[T any](n *Node[T]) *Node[T] {
	r := Root(n)
	if r == nil {
		return nil
	}
	for r.right != nil {
		r = r.right
	}

	return r
}

// Next returns the element after n, or nil when n is last.
func Next[T any](n *Node[T]) *Node[T] {
	if n.right != nil {
		x := n.right
		for x.left != nil {
			x = x.left
		}

		return x
	}
	for x := n; x.parent != nil; x = x.parent {
		if x == x.parent.left {
			return x.parent
		}
	}

	return nil
}

// Prev returns the element before n, or nil when n is first.
func Prev[T any](n *Node[T]) *Node[T] {
	if n.left != nil {
		x := n.left
		for x.right != nil {
			x = x.right
		}

		return x
	}
	for x := n; x.parent != nil; x = x.parent {
		if x == x.parent.right {
			return x.parent
		}
	}

	return nil
}

// At returns the element at position i of the sequence rooted at root, or
// nil when i is out of range.
func At[T any](root *Node[T], i int) *Node[T] {
	for n := root; n != nil; {
		ls := Size(n.left)
		switch {
		case i < ls:
			n = n.left
		case i == ls:
			return n
		default:
			i -= ls + 1
			n = n.right
		}
	}

	return nil
}

// Each calls fn on the elements of the sequence containing n, in order,
// until fn returns false.
func Each[T any](n *Node[T], fn func(*Node[T]) bool) {
	for x := First(n); x != nil; x = Next(x) {
		if !fn(x) {
			return
		}
	}
}

// Concat joins the sequences containing a and b, a's first, and returns the
// new root. Either argument may be nil. a and b must belong to different
// sequences.
func Concat[T any](a, b *Node[T]) *Node[T] {
	return merge(Root(a), Root(b))
}

func merge[T any](a, b *Node[T]) *Node[T] {
	if a == nil {
		return b
	}
	if b == nil {
		return a
	}
	if a.priority > b.priority {
		r := merge(a.right, b)
		a.right, r.parent = r, a
		a.update()

		return a
	}
	l := merge(a, b.left)
	b.left, l.parent = l, b
	b.update()

	return b
}

// Split cuts the sequence rooted at root into its first k elements and the
// rest, returning both roots (nil for an empty part).
func Split[T any](root *Node[T], k int) (left, right *Node[T]) {
	left, right = split(root, k)
	if left != nil {
		left.parent = nil
	}
	if right != nil {
		right.parent = nil
	}

	return left, right
}

func split[T any](t *Node[T], k int) (*Node[T], *Node[T]) {
	if t == nil {
		return nil, nil
	}
	if Size(t.left) < k {
		a, b := split(t.right, k-Size(t.left)-1)
		t.right = a
		if a != nil {
			a.parent = t
		}
		t.update()

		return t, b
	}
	a, b := split(t.left, k)
	t.left = b
	if b != nil {
		b.parent = t
	}
	t.update()

	return a, t
}

// SplitBefore cuts n's sequence so that n starts the right part.
func SplitBefore[T any](n *Node[T]) (left, right *Node[T]) {
	return Split(Root(n), Index(n))
}

// SplitAfter cuts n's sequence so that n ends the left part.
func SplitAfter[T any](n *Node[T]) (left, right *Node[T]) {
	return Split(Root(n), Index(n)+1)
}
