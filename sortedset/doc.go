// Package sortedset is an ordered set over a B-tree (github.com/google/btree).
//
// Every Set carries an *Ordering, the three-way comparator its elements are
// kept in. Elements that compare equal are the same element: inserting one
// replaces the other. Set algebra (Union, Intersection, Difference) is only
// defined between sets of one Ordering and fails with ErrComparatorMismatch
// otherwise; Equal reports false for such pairs. All orderings made by
// Natural for one element type count as the same Ordering.
//
// Besides membership the set answers neighbour queries (Predecessor,
// Successor, Floor, Ceiling), walks in either direction with callbacks or
// with an Iterator, and copies in O(1) with lazy copy-on-write.
//
// Complexity: O(log n) per insert, remove, lookup or neighbour query;
// O(n + m) for the algebra. A Set is not safe for concurrent use.
package sortedset
