package connectivity

import (
	"fmt"
)

// Naive is a reference connectivity structure: it stores the multigraph
// as adjacency counts and answers every query with a breadth-first search.
// It exists to cross-check Graph.
type Naive[K comparable] struct {
	adj map[K]map[K]int
}

// NewNaive returns an empty reference graph.
func NewNaive[K comparable]() *Naive[K] {
	return &Naive[K]{adj: make(map[K]map[K]int)}
}

// AddNode adds an isolated vertex.
func (n *Naive[K]) AddNode(v K) error {
	if _, ok := n.adj[v]; ok {
		return fmt.Errorf("AddNode(%v): %w", v, ErrNodeExists)
	}
	n.adj[v] = make(map[K]int)

	return nil
}

// RemoveNode drops v and every edge incident to it.
func (n *Naive[K]) RemoveNode(v K) error {
	nb, ok := n.adj[v]
	if !ok {
		return fmt.Errorf("RemoveNode(%v): %w", v, ErrNodeNotFound)
	}
	for w := range nb {
		delete(n.adj[w], v)
	}
	delete(n.adj, v)

	return nil
}

// AddEdge adds one instance of {u, v}.
func (n *Naive[K]) AddEdge(u, v K) error {
	if _, ok := n.adj[u]; !ok {
		return fmt.Errorf("AddEdge(%v,%v): %w", u, v, ErrNodeNotFound)
	}
	if _, ok := n.adj[v]; !ok {
		return fmt.Errorf("AddEdge(%v,%v): %w", u, v, ErrNodeNotFound)
	}
	n.adj[u][v]++
	if u != v {
		n.adj[v][u]++
	}

	return nil
}

// RemoveEdge removes one instance of {u, v}.
func (n *Naive[K]) RemoveEdge(u, v K) error {
	if !n.HasEdge(u, v) {
		return fmt.Errorf("RemoveEdge(%v,%v): %w", u, v, ErrEdgeNotFound)
	}
	for _, p := range [][2]K{{u, v}, {v, u}} {
		if n.adj[p[0]][p[1]]--; n.adj[p[0]][p[1]] == 0 {
			delete(n.adj[p[0]], p[1])
		}
		if u == v {
			break
		}
	}

	return nil
}

// HasNode reports whether v is a vertex.
func (n *Naive[K]) HasNode(v K) bool {
	_, ok := n.adj[v]

	return ok
}

// HasEdge reports whether at least one instance of {u, v} exists.
func (n *Naive[K]) HasEdge(u, v K) bool {
	return n.adj[u][v] > 0
}

// NumNodes returns the number of vertices.
func (n *Naive[K]) NumNodes() int { return len(n.adj) }

// ComponentOf returns the vertices reachable from v, v first.
func (n *Naive[K]) ComponentOf(v K) []K {
	if _, ok := n.adj[v]; !ok {
		return nil
	}
	seen := map[K]bool{v: true}
	out := []K{v}
	for head := 0; head < len(out); head++ {
		for w := range n.adj[out[head]] {
			if !seen[w] {
				seen[w] = true
				out = append(out, w)
			}
		}
	}

	return out
}

// Connected reports whether a path joins u and v.
func (n *Naive[K]) Connected(u, v K) bool {
	if !n.HasNode(u) || !n.HasNode(v) {
		return false
	}
	for _, w := range n.ComponentOf(u) {
		if w == v {
			return true
		}
	}

	return false
}

// Components returns the vertex sets of all components.
func (n *Naive[K]) Components() [][]K {
	seen := make(map[K]bool, len(n.adj))
	var out [][]K
	for v := range n.adj {
		if seen[v] {
			continue
		}
		comp := n.ComponentOf(v)
		for _, w := range comp {
			seen[w] = true
		}
		out = append(out, comp)
	}

	return out
}
