package phylogeny

import (
	"fmt"
	"strings"

	"github.com/katalvlaran/sonlib/tree"
)

// MapLeavesToSpecies maps every gene leaf to the species node whose label is
// the gene label's prefix before the first sep. An empty sep uses the whole
// label.
//
// Errors:
//   - ErrMissingSpecies when a prefix names no node of species.
func MapLeavesToSpecies(gene, species *tree.Node, sep string) (map[*tree.Node]*tree.Node, error) {
	byLabel := make(map[string]*tree.Node)
	species.PreOrder(func(s *tree.Node) {
		if _, dup := byLabel[s.Label()]; !dup {
			byLabel[s.Label()] = s
		}
	})
	out := make(map[*tree.Node]*tree.Node)
	for _, leaf := range gene.Leaves() {
		name := leaf.Label()
		if sep != "" {
			name, _, _ = strings.Cut(name, sep)
		}
		s, ok := byLabel[name]
		if !ok {
			return nil, fmt.Errorf("MapLeavesToSpecies(%q): %w", leaf.Label(), ErrMissingSpecies)
		}
		out[leaf] = s
	}

	return out, nil
}

// ReconcileAtMostBinary maps every gene node to a species node by least
// common ancestor and labels it Leaf, Speciation or Duplication. A node is a
// duplication when one of its children maps to the node's own species, or
// when two children map to the same species. With relabel, internal gene
// nodes take the label of their species.
//
// Errors:
//   - ErrMissingSpecies when a gene leaf is absent from leafToSpecies, or
//     when leaves map to species trees with no common ancestor.
//
// Complexity:
//   - Time O(n·h), h the height of the species tree.
func ReconcileAtMostBinary(gene *Tree, leafToSpecies map[*tree.Node]*tree.Node, relabel bool) error {
	return reconcile(gene, leafToSpecies, relabel, func(s *tree.Node, children []*tree.Node) Event {
		seen := make(map[*tree.Node]bool, len(children))
		for _, c := range children {
			if c == s || seen[c] {
				return Duplication
			}
			seen[c] = true
		}

		return Speciation
	})
}

// ReconcileNonBinary reconciles like ReconcileAtMostBinary but is aware of
// polytomous species nodes: a gene node is a duplication only when the
// species lineages below two of its children meet in the same child lineage
// of the mapped species. A gene lineage ending at the mapped species itself
// overlaps every other lineage.
//
// Complexity:
//   - Time O(n·h), like ReconcileAtMostBinary.
func ReconcileNonBinary(gene *Tree, leafToSpecies map[*tree.Node]*tree.Node, relabel bool) error {
	// covers holds, per gene node mapped to s, the child lineages of s its
	// leaves reach; s itself marks a leaf mapped to s.
	covers := make(map[*tree.Node][]*tree.Node)
	var cover func(n *tree.Node) []*tree.Node
	lineages := func(c, s *tree.Node) []*tree.Node {
		if cs := gene.Recon(c).Species; cs != s {
			return []*tree.Node{lineageBelow(cs, s)}
		}

		return cover(c)
	}
	cover = func(n *tree.Node) []*tree.Node {
		if c, ok := covers[n]; ok {
			return c
		}
		s := gene.Recon(n).Species
		var out []*tree.Node
		if n.IsLeaf() {
			out = []*tree.Node{s}
		} else {
			seen := make(map[*tree.Node]bool)
			for i := 0; i < n.ChildNumber(); i++ {
				for _, l := range lineages(n.Child(i), s) {
					if !seen[l] {
						seen[l] = true
						out = append(out, l)
					}
				}
			}
		}
		covers[n] = out

		return out
	}

	return reconcileNodes(gene, leafToSpecies, relabel, func(n, s *tree.Node) Event {
		ev := Speciation
		used := make(map[*tree.Node]bool)
		var all []*tree.Node
		for i := 0; i < n.ChildNumber(); i++ {
			for _, l := range lineages(n.Child(i), s) {
				if l == s || used[l] {
					ev = Duplication
				}
				if !used[l] {
					used[l] = true
					all = append(all, l)
				}
			}
		}
		covers[n] = all

		return ev
	})
}

// lineageBelow returns the child of ancestor on the path to x.
func lineageBelow(x, ancestor *tree.Node) *tree.Node {
	for x.Parent() != ancestor {
		x = x.Parent()
	}

	return x
}

type classifier func(s *tree.Node, children []*tree.Node) Event

func reconcile(gene *Tree, leafToSpecies map[*tree.Node]*tree.Node, relabel bool, classify classifier) error {
	return reconcileNodes(gene, leafToSpecies, relabel, func(n, s *tree.Node) Event {
		children := make([]*tree.Node, n.ChildNumber())
		for i := range children {
			children[i] = gene.Recon(n.Child(i)).Species
		}

		return classify(s, children)
	})
}

// reconcileNodes does the bottom-up LCA mapping and asks event for the
// classification of every internal node with at least two children.
func reconcileNodes(gene *Tree, leafToSpecies map[*tree.Node]*tree.Node, relabel bool, event func(n, s *tree.Node) Event) error {
	var err error
	depths := make(speciesDepths)
	gene.Root.PostOrder(func(n *tree.Node) {
		if err != nil {
			return
		}
		if n.IsLeaf() {
			s, ok := leafToSpecies[n]
			if !ok || s == nil {
				err = fmt.Errorf("Reconcile: leaf %q: %w", n.Label(), ErrMissingSpecies)
				return
			}
			gene.SetRecon(n, s, Leaf)

			return
		}
		s := gene.Recon(n.Child(0)).Species
		for i := 1; i < n.ChildNumber() && s != nil; i++ {
			s = depths.mrca(s, gene.Recon(n.Child(i)).Species)
		}
		if s == nil {
			err = fmt.Errorf("Reconcile: node %q: species of its leaves share no ancestor: %w", n.Label(), ErrMissingSpecies)
			return
		}
		ev := Speciation
		if n.ChildNumber() > 1 {
			ev = event(n, s)
		}
		gene.SetRecon(n, s, ev)
		if relabel {
			n.SetLabel(s.Label())
		}
	})

	return err
}

// ReconciliationCostAtMostBinary returns the number of duplications and
// losses implied by a reconciled gene tree. A binary duplication costs one;
// a polytomy costs one less than the size of each group of children mapped
// to the same species. Losses at a node are the species branches below its
// species that none of its children descend into.
//
// Errors:
//   - ErrNotReconciled when a node has no ReconInfo.
func ReconciliationCostAtMostBinary(gene *Tree) (dups, losses int, err error) {
	gene.Root.PreOrder(func(n *tree.Node) {
		if err != nil || n.IsLeaf() {
			return
		}
		r := gene.Recon(n)
		if r == nil {
			err = fmt.Errorf("ReconciliationCostAtMostBinary(%q): %w", n.Label(), ErrNotReconciled)
			return
		}
		children := make([]*tree.Node, n.ChildNumber())
		for i := range children {
			cr := gene.Recon(n.Child(i))
			if cr == nil {
				err = fmt.Errorf("ReconciliationCostAtMostBinary(%q): %w", n.Child(i).Label(), ErrNotReconciled)
				return
			}
			children[i] = cr.Species
		}
		d, l := localCost(r.Species, r.Event, children)
		dups += d
		losses += l
	})

	return dups, losses, err
}

// localCost is the (duplications, losses) charged to one gene node mapped to
// s whose children map to children.
func localCost(s *tree.Node, ev Event, children []*tree.Node) (dups, losses int) {
	if ev == Duplication {
		if len(children) <= 2 {
			dups = 1
		} else {
			groups := make(map[*tree.Node]int)
			for _, c := range children {
				groups[c]++
			}
			for _, size := range groups {
				dups += size - 1
			}
			dups = max(dups, 1)
		}
	}

	return dups, lossesBelow(s, children)
}

// speciesPath returns the strict ancestors of every mapped species up to and
// including s.
func speciesPath(s *tree.Node, mapped []*tree.Node) map[*tree.Node]bool {
	path := make(map[*tree.Node]bool)
	for _, m := range mapped {
		if m == s {
			continue
		}
		for p := m.Parent(); p != nil && !path[p]; p = p.Parent() {
			path[p] = true
			if p == s {
				break
			}
		}
	}

	return path
}

// lossesBelow counts the species branches hanging off the paths from s to
// the mapped species that lead to no mapped species.
func lossesBelow(s *tree.Node, mapped []*tree.Node) int {
	path := speciesPath(s, mapped)
	isMapped := make(map[*tree.Node]bool, len(mapped))
	for _, m := range mapped {
		isMapped[m] = true
	}
	losses := 0
	for p := range path {
		for i := 0; i < p.ChildNumber(); i++ {
			if c := p.Child(i); !path[c] && !isMapped[c] {
				losses++
			}
		}
	}

	return losses
}

// speciesDepths memoizes species node depths so that an MRCA query costs
// the distance to the ancestor rather than the depth of the tree.
type speciesDepths map[*tree.Node]int

func (d speciesDepths) depth(x *tree.Node) int {
	var path []*tree.Node
	for ; x != nil; x = x.Parent() {
		if _, ok := d[x]; ok {
			break
		}
		path = append(path, x)
	}
	depth := -1
	if x != nil {
		depth = d[x]
	}
	for i := len(path) - 1; i >= 0; i-- {
		depth++
		d[path[i]] = depth
	}

	return depth
}

// mrca returns nil for nodes of different trees.
func (d speciesDepths) mrca(a, b *tree.Node) *tree.Node {
	da, db := d.depth(a), d.depth(b)
	for ; da > db; da-- {
		a = a.Parent()
	}
	for ; db > da; db-- {
		b = b.Parent()
	}
	for a != b {
		a, b = a.Parent(), b.Parent()
	}

	return a
}
