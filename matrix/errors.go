// SPDX-License-Identifier: MIT

package matrix

import "errors"

// Every message is prefixed with "matrix: "; callers match with errors.Is.
var (
	// ErrInvalidDimensions indicates that requested dimensions are non-positive.
	ErrInvalidDimensions = errors.New("matrix: dimensions must be > 0")

	// ErrIndexOutOfBounds indicates a row or column index outside the matrix.
	ErrIndexOutOfBounds = errors.New("matrix: index out of bounds")

	// ErrRaggedRows is returned by NewDenseFrom when rows differ in length.
	ErrRaggedRows = errors.New("matrix: rows have different lengths")

	// ErrNaN is returned by Set when the value is NaN.
	ErrNaN = errors.New("matrix: NaN value")
)
