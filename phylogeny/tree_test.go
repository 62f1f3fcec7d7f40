package phylogeny_test

import (
	"math"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/katalvlaran/sonlib/matrix"
	"github.com/katalvlaran/sonlib/phylogeny"
	"github.com/katalvlaran/sonlib/tree"
)

func TestAnnotate(t *testing.T) {
	root := tree.MustParseNewick("((0:1,2:2)a:1,(1:1,3:1)b:3)r;")
	pt, err := phylogeny.Annotate(root)
	require.NoError(t, err)

	ri := pt.Indexed(root)
	require.NotNil(t, ri)
	assert.Equal(t, -1, ri.MatrixIndex)
	assert.Equal(t, 4, ri.TotalNumLeaves)
	assert.Equal(t, 4, ri.LeavesBelow.OnesCount())
	assert.Equal(t, []int{0, 2}, pt.Indexed(root.FindChild("a")).LeavesBelow.Slice())
	assert.Equal(t, 3, pt.Indexed(root.FindChild("3")).MatrixIndex)

	for i := 0; i < 4; i++ {
		leaf := pt.LeafByIndex(i)
		require.NotNil(t, leaf)
		assert.Equal(t, strconv.Itoa(i), leaf.Label())
	}
	assert.Nil(t, pt.LeafByIndex(4))
	assert.Nil(t, pt.LeafByIndex(-1))
	assert.Same(t, root.FindChild("b"), pt.MRCAByIndex(1, 3))
	assert.Same(t, root, pt.MRCAByIndex(0, 3))

	d, err := pt.DistanceBetweenLeaves(0, 3)
	require.NoError(t, err)
	assert.InDelta(t, 6.0, d, 1e-12)
	d, err = pt.DistanceBetweenLeaves(2, 0)
	require.NoError(t, err)
	assert.InDelta(t, 3.0, d, 1e-12)

	d, err = phylogeny.DistanceBetweenNodes(root, root)
	require.NoError(t, err)
	assert.Zero(t, d)
	_, err = phylogeny.DistanceBetweenNodes(root, tree.New())
	assert.ErrorIs(t, err, phylogeny.ErrLeafSetMismatch)

	pt.Detach()
	assert.Nil(t, pt.Info(root))
}

func TestAnnotate_BadLabels(t *testing.T) {
	for _, s := range []string{"(0,x);", "(0,0);", "(0,2);", "(-1,0);"} {
		_, err := phylogeny.Annotate(tree.MustParseNewick(s))
		assert.ErrorIs(t, err, phylogeny.ErrBadLeafLabel, s)
	}
}

func TestAnnotateKeepsReconciliation(t *testing.T) {
	root := tree.MustParseNewick("(0,1)r;")
	pt := phylogeny.Wrap(root)
	species := tree.New()
	pt.SetRecon(root, species, phylogeny.Speciation)
	require.NoError(t, pt.Annotate())
	assert.Same(t, species, pt.Recon(root).Species)
	assert.NotNil(t, pt.Indexed(root))
}

func TestDistanceMatrixFromSimilarity(t *testing.T) {
	counts := denseFrom(t, [][]float64{
		{0, 3, 0},
		{1, 0, 5},
		{0, 5, 0},
	})
	dist, err := phylogeny.DistanceMatrixFromSimilarity(counts)
	require.NoError(t, err)
	assert.InDelta(t, 0.25, dist.MustAt(0, 1), 1e-12)
	assert.InDelta(t, 0.25, dist.MustAt(1, 0), 1e-12)
	assert.Equal(t, float64(math.MaxInt64), dist.MustAt(0, 2))
	assert.InDelta(t, 0.5, dist.MustAt(2, 1), 1e-12)
	assert.Zero(t, dist.MustAt(1, 1))

	rect, err := matrix.NewDense(2, 3)
	require.NoError(t, err)
	_, err = phylogeny.DistanceMatrixFromSimilarity(rect)
	assert.ErrorIs(t, err, phylogeny.ErrNotSquare)
}

func TestJukesCantor(t *testing.T) {
	dist := denseFrom(t, [][]float64{
		{0, 0.745, 0.06},
		{0.745, 0, 0.76},
		{0.06, 0.76, 0},
	})
	require.NoError(t, phylogeny.ApplyJukesCantorCorrection(dist))
	assert.InDelta(t, 3.7579, dist.MustAt(0, 1), 1e-3)
	assert.InDelta(t, 0.0625, dist.MustAt(0, 2), 1e-3)
	assert.Zero(t, dist.MustAt(0, 0))
	saturated := dist.MustAt(1, 2)
	assert.False(t, math.IsInf(saturated, 0) || math.IsNaN(saturated))
	assert.Greater(t, saturated, dist.MustAt(0, 1))
}
