// Package matrix_test exercises the Dense matrix.
package matrix_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/katalvlaran/sonlib/matrix"
)

// TestNewDenseInvalidDimensions ensures that NewDense rejects non-positive dimensions.
func TestNewDenseInvalidDimensions(t *testing.T) {
	_, err := matrix.NewDense(0, 5)
	require.ErrorIs(t, err, matrix.ErrInvalidDimensions)

	_, err = matrix.NewDense(5, -1)
	require.ErrorIs(t, err, matrix.ErrInvalidDimensions)
}

// TestAtSetOutOfBounds ensures At() and Set() return ErrIndexOutOfBounds on invalid access.
func TestAtSetOutOfBounds(t *testing.T) {
	m, err := matrix.NewDense(2, 3)
	require.NoError(t, err)
	require.Equal(t, 2, m.Rows())
	require.Equal(t, 3, m.Cols())

	_, err = m.At(-1, 0) // negative row
	require.ErrorIs(t, err, matrix.ErrIndexOutOfBounds)
	_, err = m.At(0, 3) // column past the end
	require.ErrorIs(t, err, matrix.ErrIndexOutOfBounds)
	require.ErrorIs(t, m.Set(2, 0, 1), matrix.ErrIndexOutOfBounds)
	require.ErrorIs(t, m.Set(0, 0, math.NaN()), matrix.ErrNaN)
	require.NoError(t, m.Set(0, 0, math.Inf(1)), "infinities are stored as is")
}

// TestSetGetClone validates Set/At and that Clone does not share storage.
func TestSetGetClone(t *testing.T) {
	m, err := matrix.NewSquare(2)
	require.NoError(t, err)
	require.NoError(t, m.Set(1, 0, 7.5))

	v, err := m.At(1, 0)
	require.NoError(t, err)
	assert.Equal(t, 7.5, v)

	c := m.Clone()
	require.NoError(t, c.Set(1, 0, 1))
	v, _ = m.At(1, 0)
	assert.Equal(t, 7.5, v, "original unchanged after clone mutation")
}

// TestNewDenseFrom builds from rows and rejects ragged input.
func TestNewDenseFrom(t *testing.T) {
	m, err := matrix.NewDenseFrom([][]float64{{0, 1}, {1, 0}})
	require.NoError(t, err)
	assert.True(t, m.IsSquare())
	assert.True(t, m.IsSymmetric(0))
	assert.Equal(t, [][]float64{{0, 1}, {1, 0}}, m.ToSlices())
	assert.Equal(t, "[0, 1]\n[1, 0]\n", m.String())

	_, err = matrix.NewDenseFrom([][]float64{{0, 1}, {1}})
	assert.ErrorIs(t, err, matrix.ErrRaggedRows)
	_, err = matrix.NewDenseFrom(nil)
	assert.ErrorIs(t, err, matrix.ErrInvalidDimensions)

	require.NoError(t, m.Set(0, 1, 2))
	assert.False(t, m.IsSymmetric(0.5))
}

// TestDoApply walks cells in row-major order and transforms them in place.
func TestDoApply(t *testing.T) {
	m, err := matrix.NewDenseFrom([][]float64{{1, 2}, {3, 4}})
	require.NoError(t, err)

	var seen []float64
	m.Do(func(_, _ int, v float64) bool {
		seen = append(seen, v)
		return len(seen) < 3
	})
	assert.Equal(t, []float64{1, 2, 3}, seen)

	require.NoError(t, m.Apply(func(i, j int, v float64) float64 { return v * 2 }))
	assert.Equal(t, [][]float64{{2, 4}, {6, 8}}, m.ToSlices())
	assert.ErrorIs(t, m.Apply(func(int, int, float64) float64 { return math.NaN() }), matrix.ErrNaN)
}

// TestMustAtMustSet checks the panicking accessors.
func TestMustAtMustSet(t *testing.T) {
	m, err := matrix.NewSquare(2)
	require.NoError(t, err)

	m.MustSet(1, 0, 4.5)
	assert.Equal(t, 4.5, m.MustAt(1, 0))
	assert.Panics(t, func() { m.MustAt(2, 0) })
	assert.Panics(t, func() { m.MustSet(0, 0, math.NaN()) })
}
