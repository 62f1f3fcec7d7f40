// Package eulertour maintains a forest of unrooted trees as Euler tours,
// supporting link, cut and connectivity queries in O(log n) expected time.
//
// A tree with k edges is stored as the cyclic sequence of its 2k directed
// half-edges in depth-first order; an isolated vertex is a one-element
// tour of its own. Sequences live in implicit treaps (package treap), so
// re-rooting a tour is a rotation (one split and one concat), linking two
// trees is a handful of concatenations and cutting an edge is four splits.
//
// The tour has no preferred starting point. MakeRoot rotates it so that it
// starts at a given vertex and FindRoot reports the vertex it currently
// starts at; Link(u, v) leaves u as the root of the merged tour.
//
// Each pair of vertices carries at most one forest edge. Parallel edges and
// edge identities are the business of package connectivity, which keeps one
// Forest per level.
package eulertour
