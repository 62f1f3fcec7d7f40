package tree

import (
	"slices"
)

// New returns a detached node with no label and an unset branch length.
func New() *Node {
	return &Node{branchLength: Unset}
}

// NewNode returns a detached node with the given label and branch length.
func NewNode(label string, branchLength float64) *Node {
	return &Node{label: label, branchLength: branchLength}
}

// Label returns the node label, or "" when the node is unlabelled.
func (n *Node) Label() string { return n.label }

// SetLabel replaces the node label.
func (n *Node) SetLabel(label string) { n.label = label }

// BranchLength returns the length of the branch above n (Unset if never set).
func (n *Node) BranchLength() float64 { return n.branchLength }

// SetBranchLength sets the length of the branch above n.
func (n *Node) SetBranchLength(length float64) { n.branchLength = length }

// Parent returns the parent of n, or nil for a root.
func (n *Node) Parent() *Node { return n.parent }

// SetParent moves n under parent, appending it as the last child. A nil
// parent detaches n and makes it a root.
func (n *Node) SetParent(parent *Node) {
	if n.parent != nil {
		n.parent.removeChild(n)
	}
	n.parent = parent
	if parent != nil {
		parent.children = append(parent.children, n)
	}
}

func (n *Node) removeChild(child *Node) {
	for i, c := range n.children {
		if c == child {
			n.children = slices.Delete(n.children, i, i+1)
			return
		}
	}
}

// ChildNumber returns the number of children of n.
func (n *Node) ChildNumber() int { return len(n.children) }

// Child returns the i-th child of n, or nil when i is out of range.
func (n *Node) Child(i int) *Node {
	if i < 0 || i >= len(n.children) {
		return nil
	}

	return n.children[i]
}

// Children returns a copy of the child list of n.
func (n *Node) Children() []*Node {
	return slices.Clone(n.children)
}

// IsLeaf reports whether n has no children.
func (n *Node) IsLeaf() bool { return len(n.children) == 0 }

// Root walks parent links up to the root of the tree containing n.
func (n *Node) Root() *Node {
	for n.parent != nil {
		n = n.parent
	}

	return n
}

// Depth returns the number of edges between n and its root.
func (n *Node) Depth() int {
	d := 0
	for p := n.parent; p != nil; p = p.parent {
		d++
	}

	return d
}

// Destruct detaches n from its parent and dismantles the subtree rooted at
// n. The nodes must not be used afterwards.
func (n *Node) Destruct() {
	n.SetParent(nil)
	n.PostOrder(func(x *Node) {
		x.parent = nil
		x.children = nil
	})
}

// PreOrder calls fn on n and then on every descendant, parents before
// children, children in order.
func (n *Node) PreOrder(fn func(*Node)) {
	fn(n)
	for _, c := range n.children {
		c.PreOrder(fn)
	}
}

// PostOrder calls fn on every descendant of n and then on n, children before
// parents.
func (n *Node) PostOrder(fn func(*Node)) {
	for _, c := range slices.Clone(n.children) {
		c.PostOrder(fn)
	}
	fn(n)
}

// NumNodes returns the number of nodes in the subtree rooted at n.
func (n *Node) NumNodes() int {
	total := 1
	for _, c := range n.children {
		total += c.NumNodes()
	}

	return total
}

// Leaves returns the leaves below n in pre-order.
func (n *Node) Leaves() []*Node {
	var out []*Node
	n.PreOrder(func(x *Node) {
		if x.IsLeaf() {
			out = append(out, x)
		}
	})

	return out
}

// FindChild returns the first descendant of n (pre-order, n excluded) whose
// label equals label, or nil.
func (n *Node) FindChild(label string) *Node {
	for _, c := range n.children {
		if c.label == label {
			return c
		}
		if found := c.FindChild(label); found != nil {
			return found
		}
	}

	return nil
}

// SortChildren sorts the children of every node in the subtree rooted at n
// with cmp. The sort is stable.
func (n *Node) SortChildren(cmp Compare) {
	slices.SortStableFunc(n.children, cmp)
	for _, c := range n.children {
		c.SortChildren(cmp)
	}
}

// MRCA returns the most recent common ancestor of a and b, or nil when they
// belong to different trees. A node is its own ancestor.
func MRCA(a, b *Node) *Node {
	if a == nil || b == nil {
		return nil
	}
	ancestors := make(map[*Node]struct{})
	for x := a; x != nil; x = x.parent {
		ancestors[x] = struct{}{}
	}
	for y := b; y != nil; y = y.parent {
		if _, ok := ancestors[y]; ok {
			return y
		}
	}

	return nil
}

// Equals reports whether a and b have identical labels, branch lengths and
// child order, recursively.
func Equals(a, b *Node) bool {
	if a == nil || b == nil {
		return a == b
	}
	if a.label != b.label || len(a.children) != len(b.children) {
		return false
	}
	if a.branchLength != b.branchLength {
		return false
	}
	for i := range a.children {
		if !Equals(a.children[i], b.children[i]) {
			return false
		}
	}

	return true
}
