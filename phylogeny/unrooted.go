package phylogeny

import (
	"strconv"

	"github.com/katalvlaran/sonlib/tree"
)

// arc is one direction of an unrooted edge.
type arc struct {
	to     int
	length float64
}

// unrooted is a tree under construction by a joining algorithm. Nodes
// 0..leaves-1 are the leaves, named by their matrix index.
type unrooted struct {
	leaves int
	adj    [][]arc
}

func newUnrooted(leaves int) *unrooted {
	return &unrooted{leaves: leaves, adj: make([][]arc, leaves, 2*leaves)}
}

func (g *unrooted) addNode() int {
	g.adj = append(g.adj, nil)

	return len(g.adj) - 1
}

func (g *unrooted) connect(a, b int, length float64) {
	g.adj[a] = append(g.adj[a], arc{to: b, length: length})
	g.adj[b] = append(g.adj[b], arc{to: a, length: length})
}

// hang builds the rooted subtree reached from parent through id.
func (g *unrooted) hang(id, parent int, length float64) *tree.Node {
	n := tree.NewNode("", length)
	if id < g.leaves {
		n.SetLabel(strconv.Itoa(id))
	}
	for _, a := range g.adj[id] {
		if a.to != parent {
			g.hang(a.to, id, a.length).SetParent(n)
		}
	}

	return n
}

// rootAt hangs the tree from a node. The root branch length is unset.
func (g *unrooted) rootAt(id int) *tree.Node {
	return g.hang(id, -1, tree.Unset)
}

// rootOnEdge places a new root on the edge a–b, fromA away from a.
func (g *unrooted) rootOnEdge(a, b int, length, fromA float64) *tree.Node {
	root := tree.New()
	g.hang(a, b, fromA).SetParent(root)
	g.hang(b, a, length-fromA).SetParent(root)

	return root
}

// clampLength maps negative branch lengths to zero.
func clampLength(l float64) float64 {
	if l < 0 {
		return 0
	}

	return l
}
