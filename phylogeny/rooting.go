package phylogeny

import (
	"fmt"

	"github.com/katalvlaran/sonlib/tree"
)

// cost orders reconciliations by duplications, then losses.
type cost struct {
	dups, losses int
}

func (c cost) less(o cost) bool {
	return c.dups < o.dups || (c.dups == o.dups && c.losses < o.losses)
}

func (c cost) plus(o cost) cost {
	return cost{dups: c.dups + o.dups, losses: c.losses + o.losses}
}

// rootCandidates lists the nodes whose branch can carry the root, in the
// order rootings are compared. The branches to the root's children are left
// out: rooting there gives back the current rooting.
func rootCandidates(root *tree.Node) []*tree.Node {
	var out []*tree.Node
	root.PreOrder(func(n *tree.Node) {
		if p := n.Parent(); p != nil && p != root {
			out = append(out, n)
		}
	})

	return out
}

func checkBinary(gene *tree.Node) error {
	var err error
	gene.PreOrder(func(n *tree.Node) {
		if k := n.ChildNumber(); k != 0 && k != 2 && err == nil {
			err = fmt.Errorf("RootByReconciliation: node %q has %d children: %w", n.Label(), k, ErrNotBinary)
		}
	})

	return err
}

// halfway is the root position on the branch above n.
func halfway(n *tree.Node) float64 {
	if bl := n.BranchLength(); !tree.IsUnset(bl) {
		return bl / 2
	}

	return 0
}

// RootByReconciliationNaive returns a copy of the binary gene tree rooted on
// the branch that minimises (duplications, losses), halfway along it. Every
// branch is tried by rerooting and reconciling from scratch; the current
// root wins ties, then the first branch in pre-order.
//
// Errors:
//   - ErrNotBinary for a node with one or more than two children.
//   - ErrMissingSpecies when a gene leaf is absent from leafToSpecies.
//
// Complexity:
//   - Time O(n²·h).
func RootByReconciliationNaive(gene *tree.Node, leafToSpecies map[*tree.Node]*tree.Node) (*tree.Node, error) {
	if err := checkBinary(gene); err != nil {
		return nil, err
	}
	score := func(root *tree.Node, leaves map[*tree.Node]*tree.Node) (cost, error) {
		t := Wrap(root)
		if err := ReconcileAtMostBinary(t, leaves, false); err != nil {
			return cost{}, err
		}
		d, l, err := ReconciliationCostAtMostBinary(t)

		return cost{d, l}, err
	}

	best, err := score(gene, leafToSpecies)
	if err != nil {
		return nil, err
	}
	var bestNode *tree.Node
	for _, n := range rootCandidates(gene) {
		rooted, seen, err := tree.ReRootTracked(n, halfway(n))
		if err != nil {
			return nil, err
		}
		leaves := make(map[*tree.Node]*tree.Node, len(leafToSpecies))
		for g, s := range leafToSpecies {
			if c, ok := seen[g]; ok {
				leaves[c] = s
			}
		}
		c, err := score(rooted, leaves)
		if err != nil {
			return nil, err
		}
		if c.less(best) {
			best, bestNode = c, n
		}
	}

	return rootAtBest(gene, bestNode)
}

func rootAtBest(gene, best *tree.Node) (*tree.Node, error) {
	if best == nil {
		return gene.Clone(), nil
	}

	return tree.ReRoot(best, halfway(best))
}

// RootByReconciliationAtMostBinary returns the same rooting as
// RootByReconciliationNaive. It scores every rooting from the species
// mappings and costs of the two directed subtrees on either side of a
// branch, each computed once.
//
// Complexity:
//   - Time O(n·h).
func RootByReconciliationAtMostBinary(gene *tree.Node, leafToSpecies map[*tree.Node]*tree.Node) (*tree.Node, error) {
	if err := checkBinary(gene); err != nil {
		return nil, err
	}
	for _, leaf := range gene.Leaves() {
		if leafToSpecies[leaf] == nil {
			return nil, fmt.Errorf("RootByReconciliationAtMostBinary: leaf %q: %w", leaf.Label(), ErrMissingSpecies)
		}
	}
	if gene.IsLeaf() {
		return gene.Clone(), nil
	}

	r := newRooter(gene, leafToSpecies)
	left, right := gene.Child(0), gene.Child(1)
	best := r.rootedCost(left, right)
	var bestNode *tree.Node
	for _, n := range rootCandidates(gene) {
		if c := r.rootedCost(n, n.Parent()); c.less(best) {
			best, bestNode = c, n
		}
	}

	return rootAtBest(gene, bestNode)
}

// directed identifies the subtree reached by crossing the branch from→to.
type directed struct {
	from, to *tree.Node
}

type subtree struct {
	species *tree.Node
	cost    cost
}

// rooter memoises reconciliations of directed subtrees of the unrooted gene
// tree obtained by suppressing the binary root.
type rooter struct {
	leaves map[*tree.Node]*tree.Node
	root   *tree.Node
	memo   map[directed]subtree
}

func newRooter(root *tree.Node, leaves map[*tree.Node]*tree.Node) *rooter {
	return &rooter{leaves: leaves, root: root, memo: make(map[directed]subtree)}
}

// neighbours returns the unrooted neighbours of n: its children and its
// parent, with the root suppressed into a branch between its two children.
func (r *rooter) neighbours(n *tree.Node) []*tree.Node {
	out := n.Children()
	switch p := n.Parent(); {
	case p == nil:
	case p == r.root:
		out = append(out, otherChild(p, n))
	default:
		out = append(out, p)
	}

	return out
}

func (r *rooter) subtree(from, to *tree.Node) subtree {
	key := directed{from, to}
	if st, ok := r.memo[key]; ok {
		return st
	}
	var st subtree
	if to.IsLeaf() {
		st = subtree{species: r.leaves[to]}
	} else {
		var parts []subtree
		for _, nb := range r.neighbours(to) {
			if nb != from {
				parts = append(parts, r.subtree(to, nb))
			}
		}
		st = join(parts[0], parts[1])
	}
	r.memo[key] = st

	return st
}

// join reconciles a binary gene node whose children are a and b.
func join(a, b subtree) subtree {
	s := tree.MRCA(a.species, b.species)
	ev := Speciation
	if a.species == s || b.species == s {
		ev = Duplication
	}
	d, l := localCost(s, ev, []*tree.Node{a.species, b.species})

	return subtree{species: s, cost: a.cost.plus(b.cost).plus(cost{d, l})}
}

// rootedCost is the reconciliation cost of the tree rooted on the branch
// between a and b.
func (r *rooter) rootedCost(a, b *tree.Node) cost {
	return join(r.subtree(b, a), r.subtree(a, b)).cost
}
