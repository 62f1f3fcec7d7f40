// Package tree provides an owned, mutable, parent-linked N-ary tree used to
// represent phylogenies, together with a Newick codec.
//
// What
//
//   - Node: label, branch length, ordered children, non-owning parent link.
//   - Structural edits: SetParent (re-parenting detaches first), Destruct.
//   - Queries: FindChild, NumNodes, Leaves, Depth, MRCA, Equals.
//   - Copies: Clone (deep copy of a subtree) and ReRoot, which returns a new
//     tree rooted a given distance above any node.
//   - Codec: ParseNewick / Newick, round-trip stable for labels, branch
//     lengths and child order.
//
// Branch lengths
//
//	A branch length that was never set holds the Unset sentinel (+Inf).
//	Newick output omits ":length" for unset branches.
//
// Payloads
//
//	Nodes carry no client data. Callers associate metadata with nodes through
//	their own side tables keyed by *Node (see package phylogeny), so cloning or
//	destroying a tree never leaves a payload pointing at a dead node.
//
// Complexity
//
//   - SetParent: O(k) in the old parent's child count.
//   - Clone, NumNodes, Leaves, Equals, Newick: O(n).
//   - ReRoot: O(n).
//   - MRCA: O(depth).
//
// Concurrency
//
//	A tree is owned by a single caller; no method is safe for concurrent
//	mutation.
package tree
