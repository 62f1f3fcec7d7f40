package phylogeny_test

import (
	"math/rand/v2"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/katalvlaran/sonlib/matrix"
	"github.com/katalvlaran/sonlib/phylogeny"
	"github.com/katalvlaran/sonlib/tree"
)

// TestNeighborJoin_Simple: 1 is far from everything, 0 and 3 are close and 2
// is closer to (0,3) than to 1.
func TestNeighborJoin_Simple(t *testing.T) {
	dist := denseFrom(t, [][]float64{
		{0.0, 9.0, 3.0, 0.1},
		{9.0, 0.0, 6.0, 8.9},
		{3.0, 6.0, 0.0, 3.0},
		{0.1, 8.9, 3.0, 0.0},
	})
	pt, err := phylogeny.NeighborJoin(dist, nil)
	require.NoError(t, err)
	assert.Equal(t, 4, pt.Indexed(pt.Root).LeavesBelow.OnesCount())

	d := func(i, j int) float64 {
		v, err := pt.DistanceBetweenLeaves(i, j)
		require.NoError(t, err)
		return v
	}
	assert.Less(t, d(0, 3), d(0, 2))
	assert.Less(t, d(0, 3), d(0, 1))
	assert.Less(t, d(0, 3), d(3, 2))
	assert.Less(t, d(0, 3), d(3, 1))
	assert.Less(t, d(0, 2), d(0, 1))
	assert.Less(t, d(0, 2), d(2, 1))
}

func TestNeighborJoin_SmallInputs(t *testing.T) {
	one := denseFrom(t, [][]float64{{0}})
	pt, err := phylogeny.NeighborJoin(one, nil)
	require.NoError(t, err)
	assert.Equal(t, "0;", tree.Newick(pt.Root))

	two := denseFrom(t, [][]float64{{0, 3}, {3, 0}})
	pt, err = phylogeny.NeighborJoin(two, nil)
	require.NoError(t, err)
	assert.Equal(t, "(0:1.5,1:1.5);", tree.Newick(pt.Root))
}

func TestNeighborJoin_Errors(t *testing.T) {
	rect, err := matrix.NewDense(2, 3)
	require.NoError(t, err)
	_, err = phylogeny.NeighborJoin(rect, nil)
	assert.ErrorIs(t, err, phylogeny.ErrNotSquare)

	sq := denseFrom(t, [][]float64{{0, 1, 2}, {1, 0, 1}, {2, 1, 0}})
	_, err = phylogeny.NeighborJoin(sq, []int{3})
	assert.ErrorIs(t, err, phylogeny.ErrBadOutgroup)
}

func TestNeighborJoin_Random(t *testing.T) {
	rng := rand.New(rand.NewPCG(7, 11))
	for iter := 0; iter < 20; iter++ {
		n := 3 + rng.IntN(60)
		dist := randomDistances(t, rng, n)
		var outgroups []int
		if rng.IntN(2) == 0 {
			for k := 1 + rng.IntN(n); k > 0; k-- {
				outgroups = append(outgroups, rng.IntN(n))
			}
		}
		pt, err := phylogeny.NeighborJoin(dist, outgroups)
		require.NoError(t, err)

		if len(outgroups) > 0 {
			onRoot := false
			for _, o := range outgroups {
				if pt.LeafByIndex(o).Parent().Parent() == nil {
					onRoot = true
				}
			}
			assert.True(t, onRoot, "root is on an outgroup branch")
		}

		pt.Root.PreOrder(func(x *tree.Node) {
			ii := pt.Indexed(x)
			require.NotNil(t, ii)
			for i := 0; i < n; i++ {
				label := strconv.Itoa(i)
				below := x.Label() == label || x.FindChild(label) != nil
				assert.Equal(t, below, ii.LeavesBelow.Bit(i) == 1)
			}
		})
		for i := 0; i < n; i++ {
			leaf := pt.LeafByIndex(i)
			require.NotNil(t, leaf)
			assert.Equal(t, i, pt.Indexed(leaf).MatrixIndex)
		}
		for i := 0; i < n; i++ {
			for j := 0; j < n; j++ {
				dij, err := pt.DistanceBetweenLeaves(i, j)
				require.NoError(t, err)
				dji, err := pt.DistanceBetweenLeaves(j, i)
				require.NoError(t, err)
				assert.InDelta(t, dij, dji, 1e-9)
				dn, err := phylogeny.DistanceBetweenNodes(pt.LeafByIndex(i), pt.LeafByIndex(j))
				require.NoError(t, err)
				assert.InDelta(t, dij, dn, 1e-9)
			}
		}
	}
}

// speciesGuide builds a guide over a random species tree whose leaves are
// "0".."numSpecies-1"; gene j belongs to species j mod numSpecies.
func speciesGuide(t *testing.T, species *tree.Node, numSpecies, numGenes int, dupCost, lossCost float64) phylogeny.Guide {
	t.Helper()
	costs, index, err := phylogeny.ComputeJoinCosts(species, dupCost, lossCost)
	require.NoError(t, err)
	guide := phylogeny.Guide{JoinCosts: costs, MRCA: phylogeny.SpeciesMRCAMatrix(index), SpeciesIndex: make([]int, numGenes)}
	for j := range guide.SpeciesIndex {
		leaf := species.FindChild(strconv.Itoa(j % numSpecies))
		require.NotNil(t, leaf)
		guide.SpeciesIndex[j] = index[leaf]
	}

	return guide
}

func TestGuidedNeighborJoin_ReducesToNeighborJoin(t *testing.T) {
	rng := rand.New(rand.NewPCG(3, 5))
	for iter := 0; iter < 100; iter++ {
		numSpecies := 3 + rng.IntN(5)
		species := randomBinaryTree(rng, numSpecies)
		guide := speciesGuide(t, species, numSpecies, numSpecies, 0, 0)
		dist, err := phylogeny.DistanceMatrixFromSimilarity(randomSimilarities(t, rng, numSpecies))
		require.NoError(t, err)

		nj, err := phylogeny.NeighborJoin(dist, nil)
		require.NoError(t, err)
		guided, err := phylogeny.GuidedNeighborJoin(dist, guide)
		require.NoError(t, err)

		reroot := func(pt *phylogeny.Tree) *phylogeny.Tree {
			leaf := pt.Root.FindChild("0")
			rooted, err := tree.ReRoot(leaf, leaf.BranchLength()/2)
			require.NoError(t, err)
			out, err := phylogeny.Annotate(rooted)
			require.NoError(t, err)
			return out
		}
		a, b := reroot(nj), reroot(guided)
		assert.True(t, topologyEqual(a, a.Root, b, b.Root), "%s vs %s", tree.Newick(a.Root), tree.Newick(b.Root))
	}
}

func TestGuidedNeighborJoin_HighCostsGiveMinimalReconciliation(t *testing.T) {
	rng := rand.New(rand.NewPCG(13, 17))
	for iter := 0; iter < 100; iter++ {
		numSpecies := 3 + rng.IntN(5)
		perSpecies := 2 + rng.IntN(3)
		numGenes := numSpecies * perSpecies
		species := randomBinaryTree(rng, numSpecies)
		guide := speciesGuide(t, species, numSpecies, numGenes, 100000, 100000)
		dist, err := phylogeny.DistanceMatrixFromSimilarity(randomSimilarities(t, rng, numGenes))
		require.NoError(t, err)

		guided, err := phylogeny.GuidedNeighborJoin(dist, guide)
		require.NoError(t, err)

		leafToSpecies := make(map[*tree.Node]*tree.Node)
		for j := 0; j < numGenes; j++ {
			leafToSpecies[guided.LeafByIndex(j)] = species.FindChild(strconv.Itoa(j % numSpecies))
		}
		require.NoError(t, phylogeny.ReconcileAtMostBinary(guided, leafToSpecies, false))
		dups, losses, err := phylogeny.ReconciliationCostAtMostBinary(guided)
		require.NoError(t, err)
		assert.Zero(t, losses)
		assert.Equal(t, perSpecies-1, dups)
	}
}

func TestGuidedNeighborJoin_Errors(t *testing.T) {
	species := tree.MustParseNewick("(0,1)r;")
	dist := denseFrom(t, [][]float64{{0, 1}, {1, 0}})
	guide := speciesGuide(t, species, 2, 2, 1, 1)
	guide.SpeciesIndex = guide.SpeciesIndex[:1]
	_, err := phylogeny.GuidedNeighborJoin(dist, guide)
	assert.ErrorIs(t, err, phylogeny.ErrGuideMismatch)

	guide = speciesGuide(t, species, 2, 2, 1, 1)
	guide.SpeciesIndex[1] = 7
	_, err = phylogeny.GuidedNeighborJoin(dist, guide)
	assert.ErrorIs(t, err, phylogeny.ErrGuideMismatch)
}
