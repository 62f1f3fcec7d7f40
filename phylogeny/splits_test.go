package phylogeny_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/katalvlaran/sonlib/phylogeny"
	"github.com/katalvlaran/sonlib/tree"
)

// TestSplits uses the example of Bandelt and Dress (1992).
func TestSplits(t *testing.T) {
	dist := denseFrom(t, [][]float64{
		{0, 4, 5, 7, 13, 8, 6},
		{4, 0, 1, 3, 9, 12, 10},
		{5, 1, 0, 2, 8, 13, 11},
		{7, 3, 2, 0, 6, 11, 13},
		{13, 9, 8, 6, 0, 5, 7},
		{8, 12, 13, 11, 5, 0, 2},
		{6, 10, 11, 13, 7, 2, 0},
	})
	splits, err := phylogeny.Splits(dist)
	require.NoError(t, err)
	require.Len(t, splits, 4)

	want := []float64{6, 4, 2, 1}
	for i, s := range splits {
		assert.InDelta(t, want[i], s.IsolationIndex, 0.01)
		sizes := []int{len(s.Left), len(s.Right)}
		assert.ElementsMatch(t, []int{3, 4}, sizes)
		assert.Equal(t, 0, s.Left[0])
	}
	assert.Equal(t, []int{0, 1, 2, 3}, splits[0].Left)
	assert.Equal(t, []int{4, 5, 6}, splits[0].Right)
}

func TestGreedySplitDecomposition(t *testing.T) {
	dist := denseFrom(t, [][]float64{
		{0.0, 0.225, 0.22, 0.06, 0.215, 0.0, 0.015, 0.21, 0.075, 0.06, 0.235, 0.255},
		{0.225, 0.0, 0.05, 0.22, 0.045, 0.225, 0.23, 0.04, 0.235, 0.225, 0.09, 0.03},
		{0.22, 0.05, 0.0, 0.215, 0.015, 0.22, 0.225, 0.01, 0.23, 0.22, 0.08, 0.08},
		{0.06, 0.22, 0.215, 0.0, 0.21, 0.06, 0.07, 0.205, 0.07, 0.02, 0.24, 0.25},
		{0.215, 0.045, 0.015, 0.21, 0.0, 0.215, 0.22, 0.005, 0.225, 0.215, 0.075, 0.075},
		{0.0, 0.225, 0.22, 0.06, 0.215, 0.0, 0.015, 0.21, 0.075, 0.06, 0.235, 0.255},
		{0.015, 0.23, 0.225, 0.07, 0.22, 0.015, 0.0, 0.215, 0.085, 0.07, 0.24, 0.26},
		{0.21, 0.04, 0.01, 0.205, 0.005, 0.21, 0.215, 0.0, 0.22, 0.21, 0.07, 0.07},
		{0.075, 0.235, 0.23, 0.07, 0.225, 0.075, 0.085, 0.22, 0.0, 0.075, 0.255, 0.265},
		{0.06, 0.225, 0.22, 0.02, 0.215, 0.06, 0.07, 0.21, 0.075, 0.0, 0.245, 0.255},
		{0.235, 0.09, 0.08, 0.24, 0.075, 0.235, 0.24, 0.07, 0.255, 0.245, 0.0, 0.115},
		{0.255, 0.03, 0.08, 0.25, 0.075, 0.255, 0.26, 0.07, 0.265, 0.255, 0.115, 0.0},
	})
	pt, err := phylogeny.GreedySplitDecomposition(dist)
	require.NoError(t, err)
	require.NotNil(t, pt.Indexed(pt.Root))
	assert.Equal(t, 12, pt.Indexed(pt.Root).TotalNumLeaves)
	pt.Detach()

	rooted, err := tree.ReRoot(pt.Root.FindChild("10"), 0)
	require.NoError(t, err)
	assert.Equal(t, "(10:0,((1:1,11:1):1,(2:1,4:1,7:1):1,(8:1,(6:1,(0:1,5:1):1):1,(3:1,9:1):1):1):1);", tree.Newick(rooted))
}

func TestGreedySplitDecomposition_Star(t *testing.T) {
	dist := denseFrom(t, [][]float64{{0, 1, 1}, {1, 0, 1}, {1, 1, 0}})
	pt, err := phylogeny.GreedySplitDecomposition(dist)
	require.NoError(t, err)
	assert.Equal(t, "(0:1,1:1,2:1);", tree.Newick(pt.Root))
}

func TestNNI(t *testing.T) {
	gene := tree.MustParseNewick("(NZOHlLtJ.chr9_87081620_87115187|0|16656-16694.30:0.000120563,((C57B6J.9_87174839_87208406|16656-16694.30:0.0001,C57B6NJ.chr9_90403979_90439438|16656-16694.27:0.0001)27:0.00132877,(C57B6NJ.chr9_90403979_90439438|18548-18586.29:0.00113208,(C57B6NJ.chr1_3987551_4018377|20930-20968.30:0.0001,C57B6NJ.chr1_3987551_4018377|15210-15248.30:0.0001)branch:0.0554717)27:0.00291265)30:0.000120563)30;")
	before := tree.Newick(gene)
	first, second, err := phylogeny.NNI(gene.FindChild("branch"))
	require.NoError(t, err)
	assert.Equal(t, before, tree.Newick(gene), "input untouched")
	assert.False(t, tree.Equals(gene, first))
	assert.False(t, tree.Equals(gene, second))
	assert.False(t, tree.Equals(first, second))

	neighbor1 := tree.MustParseNewick("(NZOHlLtJ.chr9_87081620_87115187|0|16656-16694.30:0.000120563,((C57B6NJ.chr9_90403979_90439438|18548-18586.29:0.00113208,(C57B6NJ.chr1_3987551_4018377|20930-20968.30:0.0001,(C57B6J.9_87174839_87208406|16656-16694.30:0.0001,C57B6NJ.chr9_90403979_90439438|16656-16694.27:0.0001)27:0.00132877)branch:0.0554717)27:0.00291265,C57B6NJ.chr1_3987551_4018377|15210-15248.30:0.0001)30:0.000120563)30;")
	neighbor2 := tree.MustParseNewick("(NZOHlLtJ.chr9_87081620_87115187|0|16656-16694.30:0.000120563,((C57B6J.9_87174839_87208406|16656-16694.30:0.0001,C57B6NJ.chr9_90403979_90439438|16656-16694.27:0.0001)27:0.00132877,((C57B6NJ.chr1_3987551_4018377|20930-20968.30:0.0001,C57B6NJ.chr9_90403979_90439438|18548-18586.29:0.00113208)branch:0.0554717,C57B6NJ.chr1_3987551_4018377|15210-15248.30:0.0001)27:0.00291265)30:0.000120563)30;")
	assert.True(t, tree.Equals(first, neighbor1) || tree.Equals(first, neighbor2))
	assert.True(t, tree.Equals(second, neighbor1) || tree.Equals(second, neighbor2))
}

func TestNNI_Errors(t *testing.T) {
	root := tree.MustParseNewick("((a,b)c,d)r;")
	for _, n := range []*tree.Node{root, root.FindChild("a"), root.FindChild("c")} {
		_, _, err := phylogeny.NNI(n)
		assert.ErrorIs(t, err, phylogeny.ErrNotInternal)
	}
}
