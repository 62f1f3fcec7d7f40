// Package phylogeny builds and scores phylogenetic trees on top of package
// tree: distance-based tree building, gene/species tree reconciliation,
// reconciliation-driven rooting, bootstrap support and split decomposition.
//
// What
//
//   - Tree: a tree.Node root plus a side table of per-node metadata.
//     Annotate attaches leaf indices and leaf bitsets (IndexedInfo);
//     the reconciliation functions attach species and event (ReconInfo).
//   - NeighborJoin / GuidedNeighborJoin: neighbour joining, optionally
//     biased by species-tree join costs (ComputeJoinCosts, SpeciesMRCAMatrix).
//   - ReconcileAtMostBinary / ReconcileNonBinary and
//     ReconciliationCostAtMostBinary: LCA mapping, duplication and loss counts.
//   - RootByReconciliationAtMostBinary / RootByReconciliationNaive: pick the
//     root that minimises (duplications, losses).
//   - ScoreFromBootstraps / ScoreReconciliationFromBootstraps: clade support.
//   - Splits / GreedySplitDecomposition: Bandelt–Dress d-splits.
//   - NNI, ApplyJukesCantorCorrection, DistanceMatrixFromSimilarity.
//
// Leaf labels
//
//	Trees built from a distance matrix label their leaves with the decimal
//	matrix index ("0", "1", ...). Annotate expects exactly that labelling.
//
// Side tables
//
//	Metadata lives in Tree, keyed by *tree.Node. Functions that return a new
//	tree return a new Tree; the input side table is never shared. Detach drops
//	all metadata at once.
//
// Complexity
//
//   - NeighborJoin, GuidedNeighborJoin: O(n³) time, O(n²) space.
//   - Annotate: O(n²/64) for the leaf bitsets.
//   - ReconcileAtMostBinary: O(n·h) with h the species tree height.
//   - RootByReconciliationAtMostBinary: O(n·h); the naive variant O(n²·h).
//   - Splits: O(n⁶) worst case, fine for the tens of taxa it is used on.
package phylogeny
