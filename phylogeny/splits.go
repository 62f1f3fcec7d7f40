package phylogeny

import (
	"cmp"
	"fmt"
	"math"
	"slices"
	"strconv"

	"github.com/soniakeys/bits"

	"github.com/katalvlaran/sonlib/matrix"
	"github.com/katalvlaran/sonlib/tree"
)

// Split is a bipartition of the taxa together with its isolation index.
type Split struct {
	// Left holds the side containing the smallest taxon, Right the other.
	// Both are ascending.
	Left, Right []int

	IsolationIndex float64
}

// splitEpsilon is the smallest isolation index still counted as positive.
const splitEpsilon = 1e-12

// Splits returns the non-trivial d-splits of a distance matrix (both sides
// with at least two taxa) in order of descending isolation index, computed
// with the incremental Bandelt–Dress construction.
//
// Errors:
//   - ErrNotSquare for a non-square matrix.
func Splits(dist *matrix.Dense) ([]Split, error) {
	if !dist.IsSquare() {
		return nil, fmt.Errorf("Splits: %w", ErrNotSquare)
	}
	n := dist.Rows()
	taxa := make([]int, n)
	for i := range taxa {
		taxa[i] = i
	}

	return dSplits(dist.ToSlices(), taxa), nil
}

// dSplits computes the non-trivial d-splits of d restricted to taxa, which
// must be ascending.
func dSplits(d [][]float64, taxa []int) []Split {
	if len(taxa) < 2 {
		return nil
	}
	n := len(d)
	seen := bits.New(n)
	seen.SetBit(taxa[0], 1)
	seen.SetBit(taxa[1], 1)
	first := bits.New(n)
	first.SetBit(taxa[0], 1)
	current := []bits.Bits{first}

	for _, t := range taxa[2:] {
		var next []bits.Bits
		grown := bits.New(n)
		grown.Set(seen)
		grown.SetBit(t, 1)
		for _, a := range current {
			var b bits.Bits
			b.AndNot(seen, a)
			withA := bits.New(n)
			withA.Set(a)
			withA.SetBit(t, 1)
			if isolationIndex(d, withA.Slice(), b.Slice()) > splitEpsilon {
				next = append(next, withA)
			}
			withB := bits.New(n)
			withB.Set(b)
			withB.SetBit(t, 1)
			if isolationIndex(d, a.Slice(), withB.Slice()) > splitEpsilon {
				next = append(next, a)
			}
		}
		if isolationIndex(d, seen.Slice(), []int{t}) > splitEpsilon {
			next = append(next, seen)
		}
		current, seen = next, grown
	}

	var out []Split
	for _, a := range current {
		var b bits.Bits
		b.AndNot(seen, a)
		if a.OnesCount() < 2 || b.OnesCount() < 2 {
			continue
		}
		if a.Bit(taxa[0]) == 0 {
			a, b = b, a
		}
		out = append(out, Split{Left: a.Slice(), Right: b.Slice(), IsolationIndex: isolationIndex(d, a.Slice(), b.Slice())})
	}
	slices.SortStableFunc(out, func(x, y Split) int {
		return cmp.Compare(y.IsolationIndex, x.IsolationIndex)
	})

	return out
}

// isolationIndex is the Bandelt–Dress isolation index of the split a|b:
// half the minimum, over a,a' in a and b,b' in b, of
// max(d(a,b)+d(a',b'), d(a,b')+d(a',b), d(a,a')+d(b,b')) - d(a,a') - d(b,b').
func isolationIndex(d [][]float64, a, b []int) float64 {
	best := math.Inf(1)
	for _, x := range a {
		for _, x2 := range a {
			for _, y := range b {
				for _, y2 := range b {
					v := max(d[x][y]+d[x2][y2], d[x][y2]+d[x2][y], d[x][x2]+d[y][y2]) - d[x][x2] - d[y][y2]
					best = min(best, v)
				}
			}
		}
	}

	return best / 2
}

// GreedySplitDecomposition builds a tree from the d-splits of a distance
// matrix. The strongest split cuts the taxa in two; each side becomes a
// multifurcation refined by greedily inserting the compatible d-splits of
// the side's own sub-matrix, strongest first. The cluster side of a split
// is the one with the larger isolation index against all other taxa (the
// smaller side, then the side with the lowest taxon, on ties). The cluster
// side of the first cut hangs below the root of the other side. Every
// branch has length 1.
//
// A matrix without non-trivial splits gives a star tree.
//
// Errors:
//   - ErrNotSquare for a non-square matrix.
func GreedySplitDecomposition(dist *matrix.Dense) (*Tree, error) {
	all, err := Splits(dist)
	if err != nil {
		return nil, fmt.Errorf("GreedySplitDecomposition: %w", err)
	}
	d := dist.ToSlices()
	n := len(d)
	everyone := make([]int, n)
	for i := range everyone {
		everyone[i] = i
	}
	if len(all) == 0 {
		return Annotate(greedyTree(d, everyone))
	}

	inner := clusterSide(d, all[0].Left, all[0].Right)
	outer := complement(n, inner, everyone)
	root := greedyTree(d, outer)
	sub := greedyTree(d, inner)
	sub.SetBranchLength(1)
	sub.SetParent(root)

	return Annotate(root)
}

// greedyTree refines the star over taxa with the d-splits of taxa.
func greedyTree(d [][]float64, taxa []int) *tree.Node {
	n := len(d)
	root := tree.New()
	for _, t := range taxa {
		tree.NewNode(strconv.Itoa(t), 1).SetParent(root)
	}
	for _, s := range dSplits(d, taxa) {
		c := clusterSide(d, s.Left, s.Right)
		if !insertCluster(root, toBits(n, c), n) {
			insertCluster(root, toBits(n, complement(n, c, taxa)), n)
		}
	}

	return root
}

// clusterSide picks the side of a|b that becomes a clade.
func clusterSide(d [][]float64, a, b []int) []int {
	n := len(d)
	all := make([]int, n)
	for i := range all {
		all[i] = i
	}
	ia := isolationIndex(d, a, complement(n, a, all))
	ib := isolationIndex(d, b, complement(n, b, all))
	switch {
	case ia > ib:
		return a
	case ib > ia:
		return b
	case len(a) != len(b):
		if len(a) < len(b) {
			return a
		}
		return b
	case a[0] < b[0]:
		return a
	default:
		return b
	}
}

// complement returns the members of within that are not in s.
func complement(n int, s, within []int) []int {
	in := toBits(n, s)
	var out []int
	for _, t := range within {
		if in.Bit(t) == 0 {
			out = append(out, t)
		}
	}

	return out
}

func toBits(n int, members []int) bits.Bits {
	b := bits.New(n)
	b.SetBits(members...)

	return b
}

func leafBits(x *tree.Node, n int) bits.Bits {
	b := bits.New(n)
	for _, l := range x.Leaves() {
		i, _ := strconv.Atoi(l.Label())
		b.SetBit(i, 1)
	}

	return b
}

func isSubset(a, b bits.Bits) bool {
	var z bits.Bits
	z.AndNot(a, b)

	return z.AllZeros()
}

func intersects(a, b bits.Bits) bool {
	var z bits.Bits
	z.And(a, b)

	return !z.AllZeros()
}

// insertCluster adds a clade with exactly the leaves in c below the deepest
// node containing c, when c is compatible with the tree and not already a
// clade.
func insertCluster(root *tree.Node, c bits.Bits, n int) bool {
	node := root
	for descended := true; descended; {
		descended = false
		for i := 0; i < node.ChildNumber(); i++ {
			if child := node.Child(i); isSubset(c, leafBits(child, n)) {
				node, descended = child, true
				break
			}
		}
	}
	if leafBits(node, n).Equal(c) {
		return false
	}
	var inside []*tree.Node
	for i := 0; i < node.ChildNumber(); i++ {
		child := node.Child(i)
		lb := leafBits(child, n)
		switch {
		case isSubset(lb, c):
			inside = append(inside, child)
		case intersects(lb, c):
			return false
		}
	}
	if len(inside) < 2 {
		return false
	}
	clade := tree.NewNode("", 1)
	for _, child := range inside {
		child.SetParent(clade)
	}
	clade.SetParent(node)

	return true
}
