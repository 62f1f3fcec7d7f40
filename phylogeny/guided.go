package phylogeny

import (
	"fmt"

	"github.com/katalvlaran/sonlib/matrix"
)

// Guide biases neighbour joining towards gene trees that reconcile cheaply
// against a species tree.
type Guide struct {
	// JoinCosts is the species×species matrix from ComputeJoinCosts.
	JoinCosts *matrix.Dense

	// SpeciesIndex maps each distance-matrix index to the species index
	// (row of JoinCosts) its gene belongs to.
	SpeciesIndex []int

	// MRCA is the species MRCA index matrix from SpeciesMRCAMatrix.
	MRCA [][]int
}

// GuidedNeighborJoin agglomerates like NeighborJoin, adding to the joining
// criterion of two clusters the join cost of the species they map to, and
// keeps joining until one cluster is left: the last join is the root.
// A cluster maps to the MRCA of its members' species. With all join costs
// zero the unrooted topology equals NeighborJoin's.
//
// Errors:
//   - ErrNotSquare for a non-square distance or cost matrix.
//   - ErrGuideMismatch when the guide does not cover every matrix index.
//
// Complexity:
//   - Time O(n³), Space O(n²).
func GuidedNeighborJoin(dist *matrix.Dense, guide Guide) (*Tree, error) {
	if !dist.IsSquare() || !guide.JoinCosts.IsSquare() {
		return nil, fmt.Errorf("GuidedNeighborJoin: %w", ErrNotSquare)
	}
	n, numSpecies := dist.Rows(), guide.JoinCosts.Rows()
	if len(guide.SpeciesIndex) != n || len(guide.MRCA) != numSpecies {
		return nil, fmt.Errorf("GuidedNeighborJoin: %d genes, %d species: %w", n, numSpecies, ErrGuideMismatch)
	}
	species := make([]int, n)
	for i, s := range guide.SpeciesIndex {
		if s < 0 || s >= numSpecies {
			return nil, fmt.Errorf("GuidedNeighborJoin: gene %d species %d: %w", i, s, ErrGuideMismatch)
		}
		species[i] = s
	}

	j := newJoiner(dist.ToSlices())
	root := 0
	bias := func(a, b int) float64 { return guide.JoinCosts.MustAt(species[a], species[b]) }
	for len(j.active) > 1 {
		a, b := j.pick(bias)
		root = j.join(a, b)
		species[a] = guide.MRCA[species[a]][species[b]]
	}

	return Annotate(j.g.rootAt(root))
}
