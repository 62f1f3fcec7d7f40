package tree

import (
	"fmt"
)

// Clone returns a deep copy of the subtree rooted at n. The copy is a root.
func (n *Node) Clone() *Node {
	return cloneInto(n, nil)
}

// CloneTracked is Clone that also returns the original->copy node mapping.
func (n *Node) CloneTracked() (*Node, map[*Node]*Node) {
	seen := make(map[*Node]*Node)

	return cloneInto(n, seen), seen
}

// cloneInto copies the subtree rooted at n, recording original->copy pairs
// in seen when it is non-nil.
func cloneInto(n *Node, seen map[*Node]*Node) *Node {
	c := &Node{label: n.label, branchLength: n.branchLength}
	if seen != nil {
		seen[n] = c
	}
	c.children = make([]*Node, 0, len(n.children))
	for _, child := range n.children {
		cc := cloneInto(child, seen)
		cc.parent = c
		c.children = append(c.children, cc)
	}

	return c
}

// ReRoot returns a new tree rooted distanceAbove above node, on the branch
// between node and its parent. The original tree is left untouched.
//
// A binary root of the original tree is eliminated: its two branches are
// merged into one. A root with more than two children survives as an
// ordinary internal node. When node is already the root, ReRoot returns a
// clone of the whole tree.
func ReRoot(node *Node, distanceAbove float64) (*Node, error) {
	root, _, err := ReRootTracked(node, distanceAbove)

	return root, err
}

// ReRootTracked behaves like ReRoot and also returns, for every node of the
// original tree that survives in the result, the node that replaces it.
func ReRootTracked(node *Node, distanceAbove float64) (*Node, map[*Node]*Node, error) {
	if node == nil {
		return nil, nil, ErrNilNode
	}
	seen := make(map[*Node]*Node)
	if node.parent == nil {
		return cloneInto(node, seen), seen, nil
	}
	if distanceAbove < 0 || distanceAbove > node.branchLength {
		return nil, nil, fmt.Errorf("ReRoot(%g above %g): %w", distanceAbove, node.branchLength, ErrDistanceAbove)
	}

	newRoot := New()
	cloned := cloneInto(node, seen)
	cloned.SetParent(newRoot)
	cloned.branchLength = distanceAbove
	flipInto(node.parent, node, newRoot, node.branchLength-distanceAbove, seen)

	return newRoot, seen, nil
}

// flipInto re-attaches the part of the tree reached through n (coming up
// from child from) below attach, reversing parent links on the way to the
// old root.
func flipInto(n, from, attach *Node, branchLength float64, seen map[*Node]*Node) {
	if n.parent != nil || len(n.children) > 2 {
		flipped := &Node{label: n.label, branchLength: branchLength}
		seen[n] = flipped
		flipped.SetParent(attach)
		for _, child := range n.children {
			if child != from {
				cloneInto(child, seen).SetParent(flipped)
			}
		}
		if n.parent != nil {
			flipInto(n.parent, n, flipped, n.branchLength, seen)
		}

		return
	}
	// Old binary root: dropped, its remaining branch absorbs ours.
	for _, child := range n.children {
		if child != from {
			c := cloneInto(child, seen)
			c.SetParent(attach)
			c.branchLength = child.branchLength + branchLength
		}
	}
}
