// SPDX-License-Identifier: MIT

// Package matrix provides a dense, row-major float64 matrix used for
// distance, similarity and join-cost tables.
//
// What
//
//   - Dense: fixed dimensions chosen at construction, mutable cells.
//   - At/Set are bounds-checked and return sentinel errors instead of
//     panicking; NaN is rejected by Set.
//   - No symmetry is enforced. Algorithms that need a symmetric matrix check
//     it themselves (IsSymmetric) or maintain it while writing.
//
// Complexity
//
//   - NewDense: O(r*c) zero-init; At/Set: O(1); Clone, ToSlices: O(r*c).
package matrix
