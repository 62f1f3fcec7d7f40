// Package sonlib gathers the data structures and phylogenetics algorithms
// used by comparative-genomics tools, plus a small record store.
//
// What is in here?
//
//	treap/        — order-statistics treap with split and concatenate
//	eulertour/    — Euler-tour forest: link, cut, reroot, connected, size
//	connectivity/ — fully dynamic graph connectivity (Holm et al.)
//	tree/         — rooted trees, Newick read/write, reroot, MRCA
//	matrix/       — dense float64 matrix for distance tables
//	phylogeny/    — neighbor joining, bootstraps, splits, reconciliation, NNI
//	sortedset/    — ordered set over a B-tree with neighbour queries
//	kvstore/      — int64-keyed records over memory, bbolt, pebble or Redis
//	cmd/sonlib/   — command-line front end
//
// Quick example, building a tree from a distance matrix:
//
//	d, _ := matrix.NewDenseFrom([][]float64{{0, 3}, {3, 0}})
//	t, _ := phylogeny.NeighborJoin(d, nil)
//	fmt.Println(tree.Newick(t.Root)) // (0:1.5,1:1.5);
//
// The command-line tool exposes the same operations:
//
//	go install github.com/katalvlaran/sonlib/cmd/sonlib@latest
//	sonlib nj distances.txt
package sonlib
