package phylogeny

import (
	"fmt"
	"math"

	"github.com/katalvlaran/sonlib/matrix"
)

// DistanceMatrixFromSimilarity turns a similarity/difference count matrix
// into distances. Cell (i,j) with i<j holds the similarity count of the pair
// and cell (j,i) the difference count; the result is diff/(sim+diff),
// math.MaxInt64 when both counts are zero.
func DistanceMatrixFromSimilarity(counts *matrix.Dense) (*matrix.Dense, error) {
	if !counts.IsSquare() {
		return nil, fmt.Errorf("DistanceMatrixFromSimilarity: %w", ErrNotSquare)
	}
	n := counts.Rows()
	dist, err := matrix.NewSquare(n)
	if err != nil {
		return nil, err
	}
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			sim, diff := counts.MustAt(i, j), counts.MustAt(j, i)
			d := float64(math.MaxInt64)
			if sim+diff != 0 {
				d = diff / (sim + diff)
			}
			dist.MustSet(i, j, d)
			dist.MustSet(j, i, d)
		}
	}

	return dist, nil
}

// jcFloor bounds the logarithm argument of the Jukes–Cantor correction so
// saturated distances stay finite.
const jcFloor = 1e-4

// ApplyJukesCantorCorrection replaces every distance d by
// -3/4·ln(1 - 4d/3) in place.
func ApplyJukesCantorCorrection(dist *matrix.Dense) error {
	return dist.Apply(func(_, _ int, d float64) float64 {
		return -0.75 * math.Log(math.Max(1-4*d/3, jcFloor))
	})
}
