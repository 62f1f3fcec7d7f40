// Package connectivity answers "are u and v connected?" on an undirected
// multigraph that changes by edge and vertex insertions and deletions.
//
// Graph is the layered structure of Holm, de Lichtenberg and Thorup. Every
// edge carries a level, starting at 0 and only ever growing. Level i owns a
// spanning forest F_i of the edges with level ≥ i, held as an Euler-tour
// forest (package eulertour), so F_0 spans the whole graph. When a tree
// edge disappears the smaller half is searched for a replacement, level by
// level from the edge's own level downwards; edges that fail to reconnect
// are promoted, which bounds the amortized cost at O(log² n) per update.
//
// Components are exposed as *Component handles. A handle survives every
// operation that does not change its vertex set: only merges (AddEdge
// between components), cleaves (RemoveEdge with no replacement) and vertex
// deletions retire it. Callbacks registered with the With* options observe
// those events synchronously, in the order they happen.
//
// Naive is a from-scratch reference with the same surface, recomputing
// components by breadth-first search; the tests drive both side by side.
//
// Neither type is safe for concurrent use, and callbacks must not mutate
// the graph that invoked them.
package connectivity
