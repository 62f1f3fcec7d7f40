package phylogeny

import (
	"github.com/katalvlaran/sonlib/matrix"
	"github.com/katalvlaran/sonlib/tree"
)

// SpeciesIndex numbers the nodes of a species tree in pre-order.
func SpeciesIndex(species *tree.Node) map[*tree.Node]int {
	index := make(map[*tree.Node]int)
	species.PreOrder(func(s *tree.Node) { index[s] = len(index) })

	return index
}

// ComputeJoinCosts returns the cost of joining two gene clusters mapped to
// species i and j, for every pair of species nodes: dupCost if the join is a
// duplication plus lossCost per loss it implies. The second result numbers
// the species nodes (see SpeciesIndex).
//
// Complexity:
//   - Time O(s²·h), Space O(s²) for s species nodes of height h.
func ComputeJoinCosts(species *tree.Node, dupCost, lossCost float64) (*matrix.Dense, map[*tree.Node]int, error) {
	index := SpeciesIndex(species)
	nodes := make([]*tree.Node, len(index))
	for s, i := range index {
		nodes[i] = s
	}
	costs, err := matrix.NewSquare(len(nodes))
	if err != nil {
		return nil, nil, err
	}
	for i, a := range nodes {
		for j, b := range nodes {
			s := tree.MRCA(a, b)
			var dups float64
			if s == a || s == b {
				dups = 1
			}
			losses := float64(lossesBelow(s, []*tree.Node{a, b}))
			costs.MustSet(i, j, dups*dupCost+losses*lossCost)
		}
	}

	return costs, index, nil
}

// SpeciesMRCAMatrix returns, for every pair of species indices, the index of
// their most recent common ancestor.
func SpeciesMRCAMatrix(index map[*tree.Node]int) [][]int {
	nodes := make([]*tree.Node, len(index))
	for s, i := range index {
		nodes[i] = s
	}
	mrca := make([][]int, len(nodes))
	for i, a := range nodes {
		mrca[i] = make([]int, len(nodes))
		for j, b := range nodes {
			mrca[i][j] = index[tree.MRCA(a, b)]
		}
	}

	return mrca
}
