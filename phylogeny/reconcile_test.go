package phylogeny_test

import (
	"math/rand/v2"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/katalvlaran/sonlib/matrix"
	"github.com/katalvlaran/sonlib/phylogeny"
	"github.com/katalvlaran/sonlib/tree"
)

func TestComputeJoinCosts(t *testing.T) {
	species := tree.MustParseNewick("((A,B)C,E)D;")
	cost := func(costs *matrix.Dense, index map[*tree.Node]int, a, b string) float64 {
		return costs.MustAt(index[nodeOrRoot(species, a)], index[nodeOrRoot(species, b)])
	}

	costs, index, err := phylogeny.ComputeJoinCosts(species, 1, 0)
	require.NoError(t, err)
	require.Len(t, index, species.NumNodes())
	seen := make(map[int]bool)
	for _, i := range index {
		assert.False(t, seen[i])
		assert.GreaterOrEqual(t, i, 0)
		assert.Less(t, i, species.NumNodes())
		seen[i] = true
	}
	assert.Equal(t, 0, index[species], "pre-order numbering starts at the root")

	dups := map[[2]string]float64{
		{"A", "A"}: 1, {"A", "B"}: 0, {"B", "A"}: 0, {"A", "E"}: 0,
		{"A", "D"}: 1, {"A", "C"}: 1, {"C", "A"}: 1, {"D", "D"}: 1,
	}
	for pair, want := range dups {
		assert.InDelta(t, want, cost(costs, index, pair[0], pair[1]), 0.01, "dups %v", pair)
	}

	costs, index, err = phylogeny.ComputeJoinCosts(species, 0, 1)
	require.NoError(t, err)
	losses := map[[2]string]float64{
		{"A", "A"}: 0, {"A", "B"}: 0, {"B", "A"}: 0, {"A", "E"}: 1,
		{"A", "D"}: 2, {"A", "C"}: 1, {"C", "A"}: 1, {"D", "D"}: 0,
	}
	for pair, want := range losses {
		assert.InDelta(t, want, cost(costs, index, pair[0], pair[1]), 0.01, "losses %v", pair)
	}
}

// TestComputeJoinCosts_MatchesReconciliation joins every pair of species
// into a two-leaf gene tree and checks the reconciliation cost.
func TestComputeJoinCosts_MatchesReconciliation(t *testing.T) {
	rng := rand.New(rand.NewPCG(1, 2))
	for iter := 0; iter < 10; iter++ {
		species := randomBinaryTree(rng, 2+rng.IntN(8))
		dupCost, lossCost := rng.Float64(), rng.Float64()
		costs, index, err := phylogeny.ComputeJoinCosts(species, dupCost, lossCost)
		require.NoError(t, err)
		mrca := phylogeny.SpeciesMRCAMatrix(index)
		for a, i := range index {
			for b, j := range index {
				gene := tree.MustParseNewick("(x,y);")
				pt := phylogeny.Wrap(gene)
				leaves := map[*tree.Node]*tree.Node{gene.Child(0): a, gene.Child(1): b}
				require.NoError(t, phylogeny.ReconcileAtMostBinary(pt, leaves, false))
				dups, losses, err := phylogeny.ReconciliationCostAtMostBinary(pt)
				require.NoError(t, err)
				assert.InDelta(t, float64(dups)*dupCost+float64(losses)*lossCost, costs.MustAt(i, j), 1e-9)
				assert.Equal(t, index[tree.MRCA(a, b)], mrca[i][j])
				assert.Equal(t, costs.MustAt(i, j), costs.MustAt(j, i))
			}
		}
	}
}

func mapByLabel(t *testing.T, gene, species *tree.Node, sep string) map[*tree.Node]*tree.Node {
	t.Helper()
	m, err := phylogeny.MapLeavesToSpecies(gene, species, sep)
	require.NoError(t, err)

	return m
}

func TestReconcileAtMostBinary_UnaryNodes(t *testing.T) {
	species := tree.MustParseNewick("(((A,B)F)G,((C,D)H,(E)I)J)K;")

	// A and B hang from G, E from J: no cost.
	gene := tree.MustParseNewick("((A,B)G,((C,D)H,E)J)K;")
	pt := phylogeny.Wrap(gene)
	require.NoError(t, phylogeny.ReconcileAtMostBinary(pt, mapByLabel(t, gene, species, ""), true))
	dups, losses, err := phylogeny.ReconciliationCostAtMostBinary(pt)
	require.NoError(t, err)
	assert.Equal(t, 0, dups)
	assert.Equal(t, 0, losses)
	assert.Equal(t, "((A,B)F,((C,D)H,E)J)K;", tree.Newick(gene))

	// Without E there is a single loss.
	gene = tree.MustParseNewick("((A,B)F,(C,D)H)K;")
	pt = phylogeny.Wrap(gene)
	require.NoError(t, phylogeny.ReconcileAtMostBinary(pt, mapByLabel(t, gene, species, ""), true))
	dups, losses, err = phylogeny.ReconciliationCostAtMostBinary(pt)
	require.NoError(t, err)
	assert.Equal(t, 0, dups)
	assert.Equal(t, 1, losses)
}

func TestReconcileAtMostBinary_Events(t *testing.T) {
	species := tree.MustParseNewick("((a,b)ab,c)r;")
	gene := tree.MustParseNewick("((a-1,a-2),(b-1,c-1));")
	pt := phylogeny.Wrap(gene)
	require.NoError(t, phylogeny.ReconcileAtMostBinary(pt, mapByLabel(t, gene, species, "-"), false))

	aa := tree.MRCA(gene.FindChild("a-1"), gene.FindChild("a-2"))
	assert.Equal(t, phylogeny.Duplication, pt.Recon(aa).Event)
	assert.Equal(t, "a", pt.Recon(aa).Species.Label())
	bc := tree.MRCA(gene.FindChild("b-1"), gene.FindChild("c-1"))
	assert.Equal(t, phylogeny.Speciation, pt.Recon(bc).Event)
	assert.Equal(t, "r", pt.Recon(bc).Species.Label())
	assert.Equal(t, phylogeny.Duplication, pt.Recon(gene).Event)
	assert.Equal(t, phylogeny.Leaf, pt.Recon(gene.FindChild("c-1")).Event)
	assert.Equal(t, "", gene.Label(), "no relabelling requested")

	dups, losses, err := phylogeny.ReconciliationCostAtMostBinary(pt)
	require.NoError(t, err)
	assert.Equal(t, 2, dups)
	// (a-1,a-2) at a: none. (b-1,c-1) at r: a is lost below ab.
	// root at r with children a and r: b and c are lost.
	assert.Equal(t, 3, losses)
}

func TestReconcile_Errors(t *testing.T) {
	species := tree.MustParseNewick("(a,b)r;")
	gene := tree.MustParseNewick("(a-1,z-1);")
	_, err := phylogeny.MapLeavesToSpecies(gene, species, "-")
	assert.ErrorIs(t, err, phylogeny.ErrMissingSpecies)

	pt := phylogeny.Wrap(gene)
	err = phylogeny.ReconcileAtMostBinary(pt, map[*tree.Node]*tree.Node{gene.Child(0): species.Child(0)}, false)
	assert.ErrorIs(t, err, phylogeny.ErrMissingSpecies)

	_, _, err = phylogeny.ReconciliationCostAtMostBinary(phylogeny.Wrap(tree.MustParseNewick("(x,y);")))
	assert.ErrorIs(t, err, phylogeny.ErrNotReconciled)
}

func TestReconcileNonBinary(t *testing.T) {
	// "exercise5" from the Notung distribution.
	species := tree.MustParseNewick("((tasmanian_devil,opossum,bandicoot,kangaroo)Metatheria,((mouse,human)Euarchontoglires,cow)Boreoeutheria)Theria;")
	gene := tree.MustParseNewick("((((opossum-gene1,tasmanian_devil-gene1),kangaroo-gene1),((mouse-gene,human-gene),cow-gene)),((opossum-gene2,kangaroo-gene2),(bandicoot-gene3,kangaroo-gene3)));")
	pt := phylogeny.Wrap(gene)
	require.NoError(t, phylogeny.ReconcileNonBinary(pt, mapByLabel(t, gene, species, "-"), true))
	assert.Equal(t, "((((opossum-gene1,tasmanian_devil-gene1)Metatheria,kangaroo-gene1)Metatheria,((mouse-gene,human-gene)Euarchontoglires,cow-gene)Boreoeutheria)Theria,((opossum-gene2,kangaroo-gene2)Metatheria,(bandicoot-gene3,kangaroo-gene3)Metatheria)Metatheria)Theria;", tree.Newick(gene))

	event := func(a, b string) phylogeny.Event {
		return pt.Recon(tree.MRCA(gene.FindChild(a), gene.FindChild(b))).Event
	}
	assert.Equal(t, phylogeny.Speciation, event("opossum-gene1", "kangaroo-gene1"))
	assert.Equal(t, phylogeny.Duplication, event("opossum-gene2", "bandicoot-gene3"))
	assert.Equal(t, phylogeny.Duplication, event("opossum-gene1", "opossum-gene2"))

	// Fig. 3 of the Notung paper.
	species = tree.MustParseNewick("(A,B,(C,D)Beta)Alpha;")
	gene = tree.MustParseNewick("(A-g1,((B-g3,C-g3),D-g2));")
	pt = phylogeny.Wrap(gene)
	require.NoError(t, phylogeny.ReconcileNonBinary(pt, mapByLabel(t, gene, species, "-"), true))
	assert.Equal(t, "(A-g1,((B-g3,C-g3)Alpha,D-g2)Alpha)Alpha;", tree.Newick(gene))
	// Three nodes map to Alpha but only the g3/g2 coalescence duplicates.
	assert.Equal(t, phylogeny.Speciation, event("B-g3", "C-g3"))
	assert.Equal(t, phylogeny.Duplication, event("B-g3", "D-g2"))
	assert.Equal(t, phylogeny.Speciation, event("B-g3", "A-g1"))
}

// caterpillar returns (((x0,x1),x2),...) over n leaves, and the leaves.
func caterpillar(n int, label func(i int) string) (*tree.Node, []*tree.Node) {
	leaves := make([]*tree.Node, n)
	for i := range leaves {
		leaves[i] = tree.New()
		leaves[i].SetLabel(label(i))
	}
	root := leaves[0]
	for i := 1; i < n; i++ {
		p := tree.New()
		root.SetParent(p)
		leaves[i].SetParent(p)
		root = p
	}

	return root, leaves
}

func TestReconcile_LargeTree(t *testing.T) {
	const n = 10000
	species, speciesLeaves := caterpillar(n, func(i int) string { return "s" + strconv.Itoa(i) })
	gene, geneLeaves := caterpillar(n, func(i int) string { return "s" + strconv.Itoa(i) + "-g" })
	leafToSpecies := make(map[*tree.Node]*tree.Node, n)
	for i, l := range geneLeaves {
		leafToSpecies[l] = speciesLeaves[i]
	}

	for _, tc := range []struct {
		name      string
		reconcile func(*phylogeny.Tree, map[*tree.Node]*tree.Node, bool) error
	}{
		{"AtMostBinary", phylogeny.ReconcileAtMostBinary},
		{"NonBinary", phylogeny.ReconcileNonBinary},
	} {
		t.Run(tc.name, func(t *testing.T) {
			pt := phylogeny.Wrap(gene)
			start := time.Now()
			require.NoError(t, tc.reconcile(pt, leafToSpecies, false))
			assert.Less(t, time.Since(start), 2*time.Second)

			root := pt.Recon(gene)
			assert.Same(t, species, root.Species)
			assert.Equal(t, phylogeny.Speciation, root.Event)
			dups, losses, err := phylogeny.ReconciliationCostAtMostBinary(pt)
			require.NoError(t, err)
			assert.Zero(t, dups)
			assert.Zero(t, losses)
		})
	}
}

func TestReconcile_DisjointSpecies(t *testing.T) {
	gene := tree.MustParseNewick("(a-1,b-1);")
	a, b := tree.MustParseNewick("(a,x);"), tree.MustParseNewick("(b,y);")
	leafToSpecies := map[*tree.Node]*tree.Node{
		gene.FindChild("a-1"): a.FindChild("a"),
		gene.FindChild("b-1"): b.FindChild("b"),
	}
	err := phylogeny.ReconcileAtMostBinary(phylogeny.Wrap(gene), leafToSpecies, true)
	assert.ErrorIs(t, err, phylogeny.ErrMissingSpecies)
	err = phylogeny.ReconcileNonBinary(phylogeny.Wrap(gene), leafToSpecies, true)
	assert.ErrorIs(t, err, phylogeny.ErrMissingSpecies)
}

const polytomySpecies = "(((a1,(a2.1,a2.2)a2)a,b)e,((c1, c2)c,(d1, d2)d)f)g;"

func reconciledPolytomy(t *testing.T) (*tree.Node, *phylogeny.Tree) {
	t.Helper()
	species := tree.MustParseNewick(polytomySpecies)
	gene := tree.MustParseNewick("(a-1,a-2,a-3,a-4,b-1,b-2,c-1,e-1)G;")
	pt := phylogeny.Wrap(gene)
	require.NoError(t, phylogeny.ReconcileAtMostBinary(pt, mapByLabel(t, gene, species, "-"), false))

	return species, pt
}

func TestLinkedSpeciesTree(t *testing.T) {
	species, pt := reconciledPolytomy(t)
	linked, counts, err := phylogeny.LinkedSpeciesTree(species, pt)
	require.NoError(t, err)
	assert.Equal(t, "((a,b)e,(c,d)f)g;", tree.Newick(linked))
	assert.Equal(t, 4, counts[linked.FindChild("a")])
	assert.Equal(t, 2, counts[linked.FindChild("b")])
	assert.Equal(t, 1, counts[linked.FindChild("c")])
	assert.Equal(t, 1, counts[linked.FindChild("e")])
	assert.Zero(t, counts[linked.FindChild("d")])

	_, _, err = phylogeny.LinkedSpeciesTree(tree.MustParseNewick("(x,y);"), pt)
	assert.ErrorIs(t, err, phylogeny.ErrMissingSpecies)
	_, _, err = phylogeny.LinkedSpeciesTree(species, phylogeny.Wrap(tree.New()))
	assert.ErrorIs(t, err, phylogeny.ErrNotReconciled)
}

func TestReconciliationCost_Polytomy(t *testing.T) {
	_, pt := reconciledPolytomy(t)
	assert.Equal(t, phylogeny.Duplication, pt.Recon(pt.Root).Event)
	dups, losses, err := phylogeny.ReconciliationCostAtMostBinary(pt)
	require.NoError(t, err)
	assert.Equal(t, 4, dups)
	assert.Equal(t, 1, losses)
}

func TestEventString(t *testing.T) {
	assert.Equal(t, "leaf", phylogeny.Leaf.String())
	assert.Equal(t, "speciation", phylogeny.Speciation.String())
	assert.Equal(t, "duplication", phylogeny.Duplication.String())
	assert.Equal(t, "unknown", phylogeny.Event(9).String())
}
