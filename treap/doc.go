// Package treap implements an implicit treap: a randomized balanced binary
// tree that stores a sequence by position rather than by key.
//
// Every Node knows its parent, so a caller holding a node can find the
// sequence it belongs to (Root), its position (Index), and cut the sequence
// around it (SplitBefore, SplitAfter). Sequences are glued back together
// with Concat. All of these run in O(log n) expected time.
//
// The Euler-tour forest uses one treap per tree of the forest; comparing
// Root results answers "same sequence?".
package treap
