package phylogeny

import (
	"fmt"

	"github.com/katalvlaran/sonlib/tree"
)

// NNI returns the two nearest-neighbour interchanges around node. Both move
// the last child of node: the first swaps it with node's sibling, the second
// with the sibling of node's parent. node's tree is not modified; each
// neighbour is a full copy.
//
// Errors:
//   - ErrNotInternal when node is a leaf, or has no parent, sibling,
//     grandparent or parent sibling.
func NNI(node *tree.Node) (*tree.Node, *tree.Node, error) {
	parent := node.Parent()
	if node.IsLeaf() || parent == nil || parent.Parent() == nil {
		return nil, nil, fmt.Errorf("NNI(%q): %w", node.Label(), ErrNotInternal)
	}
	if otherChild(parent, node) == nil || otherChild(parent.Parent(), parent) == nil {
		return nil, nil, fmt.Errorf("NNI(%q): %w", node.Label(), ErrNotInternal)
	}

	swap := func(up func(n *tree.Node) *tree.Node) *tree.Node {
		clone, seen := node.Root().CloneTracked()
		n := seen[node]
		moved := n.Child(n.ChildNumber() - 1)
		other := up(n)
		moved.SetParent(other.Parent())
		other.SetParent(n)

		return clone
	}
	first := swap(func(n *tree.Node) *tree.Node { return otherChild(n.Parent(), n) })
	second := swap(func(n *tree.Node) *tree.Node { return otherChild(n.Parent().Parent(), n.Parent()) })

	return first, second, nil
}

// otherChild returns the first child of parent other than child.
func otherChild(parent, child *tree.Node) *tree.Node {
	for i := 0; i < parent.ChildNumber(); i++ {
		if c := parent.Child(i); c != child {
			return c
		}
	}

	return nil
}
