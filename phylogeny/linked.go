package phylogeny

import (
	"fmt"

	"github.com/katalvlaran/sonlib/tree"
)

// LinkedSpeciesTree returns the part of species relevant to the root of a
// reconciled polytomy: the root's species s, every species node on a path
// from s to a species some child maps to, and the siblings hanging off those
// paths. counts maps nodes of the returned tree to the number of polytomy
// children mapped to them; leaves absent from counts are losses.
//
// Errors:
//   - ErrNotReconciled when the polytomy root or a child has no ReconInfo.
//   - ErrMissingSpecies when the polytomy is reconciled to another tree.
func LinkedSpeciesTree(species *tree.Node, polytomy *Tree) (*tree.Node, map[*tree.Node]int, error) {
	root := polytomy.Recon(polytomy.Root)
	if root == nil {
		return nil, nil, fmt.Errorf("LinkedSpeciesTree: %w", ErrNotReconciled)
	}
	if root.Species.Root() != species.Root() {
		return nil, nil, fmt.Errorf("LinkedSpeciesTree: %w", ErrMissingSpecies)
	}
	mapped := make([]*tree.Node, polytomy.Root.ChildNumber())
	for i := range mapped {
		r := polytomy.Recon(polytomy.Root.Child(i))
		if r == nil {
			return nil, nil, fmt.Errorf("LinkedSpeciesTree: child %d: %w", i, ErrNotReconciled)
		}
		mapped[i] = r.Species
	}

	path := speciesPath(root.Species, mapped)
	copies := make(map[*tree.Node]*tree.Node)
	var link func(s *tree.Node) *tree.Node
	link = func(s *tree.Node) *tree.Node {
		c := tree.NewNode(s.Label(), s.BranchLength())
		copies[s] = c
		if path[s] {
			for i := 0; i < s.ChildNumber(); i++ {
				link(s.Child(i)).SetParent(c)
			}
		}

		return c
	}
	linked := link(root.Species)
	linked.SetBranchLength(tree.Unset)

	counts := make(map[*tree.Node]int)
	for _, m := range mapped {
		counts[copies[m]]++
	}

	return linked, counts, nil
}
