package phylogeny

import (
	"fmt"
	"strconv"

	"github.com/soniakeys/bits"

	"github.com/katalvlaran/sonlib/tree"
)

// Wrap returns a Tree around root with an empty side table.
func Wrap(root *tree.Node) *Tree {
	return &Tree{Root: root, info: make(map[*tree.Node]*Info)}
}

// Annotate wraps root and attaches IndexedInfo to every node.
// Leaf labels must be the distinct integers 0..leaves-1.
func Annotate(root *tree.Node) (*Tree, error) {
	t := Wrap(root)
	if err := t.Annotate(); err != nil {
		return nil, err
	}

	return t, nil
}

// Annotate (re)computes IndexedInfo for every node, keeping any
// reconciliation already attached.
func (t *Tree) Annotate() error {
	leaves := t.Root.Leaves()
	n := len(leaves)
	seen := make([]bool, n)
	for _, l := range leaves {
		idx, err := strconv.Atoi(l.Label())
		if err != nil || idx < 0 || idx >= n || seen[idx] {
			return fmt.Errorf("Annotate: leaf %q: %w", l.Label(), ErrBadLeafLabel)
		}
		seen[idx] = true
	}
	t.Root.PostOrder(func(x *tree.Node) {
		ii := &IndexedInfo{MatrixIndex: -1, LeavesBelow: bits.New(n), TotalNumLeaves: n}
		if x.IsLeaf() {
			ii.MatrixIndex, _ = strconv.Atoi(x.Label())
			ii.LeavesBelow.SetBit(ii.MatrixIndex, 1)
		} else {
			for i := 0; i < x.ChildNumber(); i++ {
				below := t.node(x.Child(i)).Index.LeavesBelow
				ii.LeavesBelow.Or(ii.LeavesBelow, below)
			}
		}
		t.node(x).Index = ii
	})

	return nil
}

func (t *Tree) node(n *tree.Node) *Info {
	in, ok := t.info[n]
	if !ok {
		in = &Info{}
		t.info[n] = in
	}

	return in
}

// Info returns the metadata of n, or nil when none is attached.
func (t *Tree) Info(n *tree.Node) *Info { return t.info[n] }

// Indexed returns the IndexedInfo of n, or nil.
func (t *Tree) Indexed(n *tree.Node) *IndexedInfo {
	if in := t.info[n]; in != nil {
		return in.Index
	}

	return nil
}

// Recon returns the ReconInfo of n, or nil.
func (t *Tree) Recon(n *tree.Node) *ReconInfo {
	if in := t.info[n]; in != nil {
		return in.Recon
	}

	return nil
}

// SetRecon attaches a reconciliation to n.
func (t *Tree) SetRecon(n, species *tree.Node, event Event) {
	t.node(n).Recon = &ReconInfo{Species: species, Event: event}
}

// Detach drops every piece of metadata. The nodes are left untouched.
func (t *Tree) Detach() {
	clear(t.info)
}

// LeafByIndex returns the leaf with matrix index i, or nil.
func (t *Tree) LeafByIndex(i int) *tree.Node {
	n := t.Root
	for {
		ii := t.Indexed(n)
		if ii == nil || i < 0 || i >= ii.TotalNumLeaves || ii.LeavesBelow.Bit(i) == 0 {
			return nil
		}
		if n.IsLeaf() {
			return n
		}
		var next *tree.Node
		for c := 0; c < n.ChildNumber(); c++ {
			if ci := t.Indexed(n.Child(c)); ci != nil && ci.LeavesBelow.Bit(i) == 1 {
				next = n.Child(c)
				break
			}
		}
		if next == nil {
			return nil
		}
		n = next
	}
}

// MRCAByIndex returns the most recent common ancestor of leaves i and j,
// or nil when either is missing.
func (t *Tree) MRCAByIndex(i, j int) *tree.Node {
	a, b := t.LeafByIndex(i), t.LeafByIndex(j)
	if a == nil || b == nil {
		return nil
	}

	return tree.MRCA(a, b)
}

// DistanceBetweenLeaves returns the path length between leaves i and j.
func (t *Tree) DistanceBetweenLeaves(i, j int) (float64, error) {
	a, b := t.LeafByIndex(i), t.LeafByIndex(j)
	if a == nil || b == nil {
		return 0, fmt.Errorf("DistanceBetweenLeaves(%d,%d): %w", i, j, ErrNotAnnotated)
	}

	return DistanceBetweenNodes(a, b)
}

// DistanceBetweenNodes returns the sum of branch lengths on the path between
// a and b. Unset branch lengths count as 0.
func DistanceBetweenNodes(a, b *tree.Node) (float64, error) {
	m := tree.MRCA(a, b)
	if m == nil {
		return 0, fmt.Errorf("DistanceBetweenNodes: %w", ErrLeafSetMismatch)
	}

	return pathLength(a, m) + pathLength(b, m), nil
}

func pathLength(from, ancestor *tree.Node) float64 {
	var d float64
	for x := from; x != ancestor; x = x.Parent() {
		if bl := x.BranchLength(); !tree.IsUnset(bl) {
			d += bl
		}
	}

	return d
}
