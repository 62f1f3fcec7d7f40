package phylogeny

import (
	"fmt"
	"slices"

	"github.com/katalvlaran/sonlib/matrix"
	"github.com/katalvlaran/sonlib/tree"
)

// NeighborJoin builds an annotated tree from a distance matrix with the
// neighbour-joining algorithm. Ties in the join criterion go to the lowest
// index pair and negative branch lengths are clamped to zero.
//
// With outgroups, the tree is rooted on the branch of the outgroup with the
// largest mean distance to the ingroup (ties to the lowest index), halfway
// along it, so the outgroup leaf hangs directly below the root. Without
// outgroups the root is placed halfway along the longest branch.
//
// Errors:
//   - ErrNotSquare for a non-square matrix.
//   - ErrBadOutgroup for an outgroup index outside [0, n).
//
// Complexity:
//   - Time O(n³), Space O(n²).
func NeighborJoin(dist *matrix.Dense, outgroups []int) (*Tree, error) {
	if !dist.IsSquare() {
		return nil, fmt.Errorf("NeighborJoin: %w", ErrNotSquare)
	}
	n := dist.Rows()
	for _, o := range outgroups {
		if o < 0 || o >= n {
			return nil, fmt.Errorf("NeighborJoin: outgroup %d: %w", o, ErrBadOutgroup)
		}
	}

	var root *tree.Node
	switch n {
	case 1:
		root = tree.NewNode("0", tree.Unset)
	case 2:
		half := clampLength(dist.MustAt(0, 1) / 2)
		root = tree.New()
		tree.NewNode("0", half).SetParent(root)
		tree.NewNode("1", half).SetParent(root)
	default:
		g := joinToTrifurcation(dist.ToSlices())
		if len(outgroups) > 0 {
			root = rootOnOutgroup(g, dist, outgroups)
		} else {
			root = rootOnLongestBranch(g)
		}
	}

	return Annotate(root)
}

// joiner holds the state of an agglomeration over a working copy of the
// distance matrix. Slots of merged clusters are reused by the first member.
type joiner struct {
	d      [][]float64
	g      *unrooted
	active []int // matrix slots still in play, ascending
	node   []int // graph node standing for each slot
	r      []float64
}

func newJoiner(d [][]float64) *joiner {
	n := len(d)
	j := &joiner{d: d, g: newUnrooted(n), active: make([]int, n), node: make([]int, n), r: make([]float64, n)}
	for i := range j.active {
		j.active[i], j.node[i] = i, i
	}

	return j
}

// pick returns the active pair minimising the neighbour-joining criterion
// plus bias(i, j), the first pair in slot order on ties.
func (j *joiner) pick(bias func(a, b int) float64) (int, int) {
	m := float64(len(j.active))
	for _, a := range j.active {
		j.r[a] = 0
		for _, k := range j.active {
			j.r[a] += j.d[a][k]
		}
	}
	bi, bj := -1, -1
	var best float64
	for x, a := range j.active {
		for _, b := range j.active[x+1:] {
			q := (m-2)*j.d[a][b] - j.r[a] - j.r[b]
			if bias != nil {
				q += bias(a, b)
			}
			if bi < 0 || q < best {
				bi, bj, best = a, b, q
			}
		}
	}

	return bi, bj
}

// join merges slot b into slot a under a new graph node and returns it.
func (j *joiner) join(a, b int) int {
	m := float64(len(j.active))
	dab := j.d[a][b]
	la := dab / 2
	if m > 2 {
		la += (j.r[a] - j.r[b]) / (2 * (m - 2))
	}
	u := j.g.addNode()
	j.g.connect(u, j.node[a], clampLength(la))
	j.g.connect(u, j.node[b], clampLength(dab-la))
	for _, k := range j.active {
		if k != a && k != b {
			v := (j.d[a][k] + j.d[b][k] - dab) / 2
			j.d[a][k], j.d[k][a] = v, v
		}
	}
	j.node[a] = u
	j.active = slices.DeleteFunc(j.active, func(k int) bool { return k == b })

	return u
}

// joinToTrifurcation runs the joining loop until three clusters remain and
// connects them through a central node.
func joinToTrifurcation(d [][]float64) *unrooted {
	j := newJoiner(d)
	for len(j.active) > 3 {
		j.join(j.pick(nil))
	}

	a, b, c := j.active[0], j.active[1], j.active[2]
	center := j.g.addNode()
	j.g.connect(center, j.node[a], clampLength((d[a][b]+d[a][c]-d[b][c])/2))
	j.g.connect(center, j.node[b], clampLength((d[a][b]+d[b][c]-d[a][c])/2))
	j.g.connect(center, j.node[c], clampLength((d[a][c]+d[b][c]-d[a][b])/2))

	return j.g
}

// rootOnOutgroup roots halfway along the branch of the chosen outgroup leaf.
func rootOnOutgroup(g *unrooted, dist *matrix.Dense, outgroups []int) *tree.Node {
	n := dist.Rows()
	isOut := make([]bool, n)
	for _, o := range outgroups {
		isOut[o] = true
	}
	best, bestMean := -1, 0.0
	for o := 0; o < n; o++ {
		if !isOut[o] {
			continue
		}
		var sum float64
		count := 0
		for k := 0; k < n; k++ {
			if !isOut[k] {
				sum += dist.MustAt(o, k)
				count++
			}
		}
		if count == 0 { // everything is an outgroup
			for k := 0; k < n; k++ {
				if k != o {
					sum += dist.MustAt(o, k)
					count++
				}
			}
		}
		mean := sum / float64(count)
		if best < 0 || mean > bestMean {
			best, bestMean = o, mean
		}
	}
	edge := g.adj[best][0]

	return g.rootOnEdge(best, edge.to, edge.length, edge.length/2)
}

// rootOnLongestBranch roots halfway along the longest edge, the first one in
// node order on ties.
func rootOnLongestBranch(g *unrooted) *tree.Node {
	ba, bb, bl := -1, -1, -1.0
	for a := range g.adj {
		for _, e := range g.adj[a] {
			if a < e.to && e.length > bl {
				ba, bb, bl = a, e.to, e.length
			}
		}
	}

	return g.rootOnEdge(ba, bb, bl, bl/2)
}
