package phylogeny_test

import (
	"math/rand/v2"
	"strconv"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/katalvlaran/sonlib/matrix"
	"github.com/katalvlaran/sonlib/phylogeny"
	"github.com/katalvlaran/sonlib/tree"
)

func denseFrom(t *testing.T, rows [][]float64) *matrix.Dense {
	t.Helper()
	m, err := matrix.NewDenseFrom(rows)
	require.NoError(t, err)

	return m
}

// randomDistances returns a symmetric matrix with a zero diagonal.
func randomDistances(t *testing.T, rng *rand.Rand, n int) *matrix.Dense {
	t.Helper()
	m, err := matrix.NewSquare(n)
	require.NoError(t, err)
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			v := rng.Float64()
			m.MustSet(i, j, v)
			m.MustSet(j, i, v)
		}
	}

	return m
}

// randomSimilarities fills the upper triangle with similarity counts and
// the lower triangle with difference counts.
func randomSimilarities(t *testing.T, rng *rand.Rand, n int) *matrix.Dense {
	t.Helper()
	m, err := matrix.NewSquare(n)
	require.NoError(t, err)
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			m.MustSet(i, j, rng.Float64()*50)
			m.MustSet(j, i, rng.Float64()*50)
		}
	}

	return m
}

// randomBinaryTree returns a binary tree whose leaves are labelled
// "0".."leaves-1" and whose internal nodes are labelled "n<k>".
func randomBinaryTree(rng *rand.Rand, leaves int) *tree.Node {
	pool := make([]*tree.Node, leaves)
	for i := range pool {
		pool[i] = tree.NewNode(strconv.Itoa(i), 1)
	}
	for k := 0; len(pool) > 1; k++ {
		i := rng.IntN(len(pool))
		a := pool[i]
		pool = append(pool[:i], pool[i+1:]...)
		j := rng.IntN(len(pool))
		b := pool[j]
		parent := tree.NewNode("n"+strconv.Itoa(k), 1)
		a.SetParent(parent)
		b.SetParent(parent)
		pool[j] = parent
	}
	pool[0].SetBranchLength(tree.Unset)

	return pool[0]
}

// topologyEqual compares two annotated trees clade by clade, ignoring child
// order and branch lengths.
func topologyEqual(a *phylogeny.Tree, an *tree.Node, b *phylogeny.Tree, bn *tree.Node) bool {
	if an.ChildNumber() != bn.ChildNumber() {
		return false
	}
	for i := 0; i < an.ChildNumber(); i++ {
		ac := an.Child(i)
		var match *tree.Node
		for j := 0; j < bn.ChildNumber(); j++ {
			if a.Indexed(ac).LeavesBelow.Equal(b.Indexed(bn.Child(j)).LeavesBelow) {
				match = bn.Child(j)
				break
			}
		}
		if match == nil || !topologyEqual(a, ac, b, match) {
			return false
		}
	}

	return true
}

// nodeOrRoot finds a labelled node, the root included.
func nodeOrRoot(root *tree.Node, label string) *tree.Node {
	if root.Label() == label {
		return root
	}

	return root.FindChild(label)
}
