package connectivity

import (
	"fmt"
	"maps"
	"slices"

	"github.com/cockroachdb/swiss"

	"github.com/katalvlaran/sonlib/eulertour"
)

// edge is one instance of an undirected edge.
type edge[K comparable] struct {
	id    EdgeID
	u, v  K
	level int
	tree  bool
}

func (e *edge[K]) other(x K) K {
	if e.u == x {
		return e.v
	}

	return e.u
}

// slot is shared by the vertices of one component so that a handle can be
// replaced without touching every vertex.
type slot[K comparable] struct {
	comp *Component[K]
}

type edgeSet[K comparable] map[EdgeID]*edge[K]

type vertex[K comparable] struct {
	slot *slot[K]

	// adj lists every edge instance towards each neighbour, oldest first.
	// Self-loops are listed once under the vertex itself.
	adj map[K][]*edge[K]

	// tree[i] and nonTree[i] hold incident edges whose level is exactly i.
	tree    []edgeSet[K]
	nonTree []edgeSet[K]
}

func (x *vertex[K]) sets(tree bool) *[]edgeSet[K] {
	if tree {
		return &x.tree
	}

	return &x.nonTree
}

func (x *vertex[K]) add(e *edge[K]) {
	sets := x.sets(e.tree)
	for len(*sets) <= e.level {
		*sets = append(*sets, make(edgeSet[K]))
	}
	(*sets)[e.level][e.id] = e
}

func (x *vertex[K]) drop(e *edge[K]) {
	sets := *x.sets(e.tree)
	if e.level < len(sets) {
		delete(sets[e.level], e.id)
	}
}

// at returns the edges of the given kind at exactly level i, by id.
func (x *vertex[K]) at(tree bool, i int) []*edge[K] {
	sets := *x.sets(tree)
	if i >= len(sets) || len(sets[i]) == 0 {
		return nil
	}
	ids := slices.Sorted(maps.Keys(sets[i]))
	out := make([]*edge[K], len(ids))
	for k, id := range ids {
		out[k] = sets[i][id]
	}

	return out
}

func (x *vertex[K]) unlink(w K, e *edge[K]) {
	list := x.adj[w]
	if i := slices.Index(list, e); i >= 0 {
		list = slices.Delete(list, i, i+1)
	}
	if len(list) == 0 {
		delete(x.adj, w)
		return
	}
	x.adj[w] = list
}

// Graph is a dynamic connectivity structure over an undirected multigraph.
// The zero value is not usable; create graphs with New.
type Graph[K comparable] struct {
	opts     Options[K]
	vertices swiss.Map[K, *vertex[K]]
	forests  []*eulertour.Forest[K]
	edges    map[EdgeID]*edge[K]
	comps    map[*Component[K]]struct{}
	nextID   EdgeID
}

// New returns an empty graph configured by opts.
func New[K comparable](opts ...Option[K]) *Graph[K] {
	g := &Graph[K]{
		opts:    DefaultOptions[K](),
		forests: []*eulertour.Forest[K]{eulertour.New[K]()},
		edges:   make(map[EdgeID]*edge[K]),
		comps:   make(map[*Component[K]]struct{}),
	}
	for _, opt := range opts {
		opt(&g.opts)
	}
	g.vertices.Init(16)

	return g
}

// SetOnCreate replaces the creation callback.
func (g *Graph[K]) SetOnCreate(fn func(c *Component[K])) { g.opts.OnCreate = fn }

// SetOnMerge replaces the merge callback.
func (g *Graph[K]) SetOnMerge(fn func(a, b, merged *Component[K])) { g.opts.OnMerge = fn }

// SetOnCleave replaces the cleave callback.
func (g *Graph[K]) SetOnCleave(fn func(old, a, b *Component[K], moved []K)) { g.opts.OnCleave = fn }

// SetOnDelete replaces the deletion callback.
func (g *Graph[K]) SetOnDelete(fn func(c *Component[K])) { g.opts.OnDelete = fn }

func (g *Graph[K]) vertex(ctx string, v K) (*vertex[K], error) {
	x, ok := g.vertices.Get(v)
	if !ok {
		return nil, fmt.Errorf("%s(%v): %w", ctx, v, ErrNodeNotFound)
	}

	return x, nil
}

func (g *Graph[K]) mustVertex(v K) *vertex[K] {
	x, _ := g.vertices.Get(v)

	return x
}

func must(err error) {
	if err != nil {
		panic(fmt.Sprintf("connectivity: forest out of sync: %v", err))
	}
}

// forest returns F_i, creating empty levels on the way.
func (g *Graph[K]) forest(i int) *eulertour.Forest[K] {
	for len(g.forests) <= i {
		g.forests = append(g.forests, eulertour.New[K]())
	}

	return g.forests[i]
}

// link adds the tree edge e to F_0..F_upto.
func (g *Graph[K]) link(e *edge[K], upto int) {
	for i := 0; i <= upto; i++ {
		f := g.forest(i)
		for _, v := range [2]K{e.u, e.v} {
			if !f.HasVertex(v) {
				must(f.CreateVertex(v))
			}
		}
		must(f.Link(e.u, e.v))
	}
}

// AddNode adds v as a new singleton component and fires the creation
// callback.
func (g *Graph[K]) AddNode(v K) error {
	if _, ok := g.vertices.Get(v); ok {
		return fmt.Errorf("AddNode(%v): %w", v, ErrNodeExists)
	}
	c := &Component[K]{rep: v}
	g.vertices.Put(v, &vertex[K]{
		slot: &slot[K]{comp: c},
		adj:  make(map[K][]*edge[K]),
	})
	must(g.forests[0].CreateVertex(v))
	g.comps[c] = struct{}{}
	if g.opts.OnCreate != nil {
		g.opts.OnCreate(c)
	}

	return nil
}

// AddEdge inserts a new instance of the edge {u, v}. Joining two components
// fires the merge callback; both old handles are retired.
func (g *Graph[K]) AddEdge(u, v K) (EdgeID, error) {
	xu, err := g.vertex("AddEdge", u)
	if err != nil {
		return 0, err
	}
	xv, err := g.vertex("AddEdge", v)
	if err != nil {
		return 0, err
	}

	g.nextID++
	e := &edge[K]{id: g.nextID, u: u, v: v}
	g.edges[e.id] = e
	xu.adj[v] = append(xu.adj[v], e)
	if u == v {
		return e.id, nil
	}
	xv.adj[u] = append(xv.adj[u], e)

	f0 := g.forests[0]
	if f0.Connected(u, v) {
		xu.add(e)
		xv.add(e)
		return e.id, nil
	}

	ca, cb := xu.slot.comp, xv.slot.comp
	su, err := f0.ComponentSize(u)
	must(err)
	sv, err := f0.ComponentSize(v)
	must(err)
	big, small := xu, v
	if su < sv {
		big, small = xv, u
	}
	moved, err := f0.NodesInComponent(small)
	must(err)

	e.tree = true
	xu.add(e)
	xv.add(e)
	g.link(e, 0)

	merged := &Component[K]{rep: u}
	big.slot.comp = merged
	for _, w := range moved {
		g.mustVertex(w).slot = big.slot
	}
	delete(g.comps, ca)
	delete(g.comps, cb)
	g.comps[merged] = struct{}{}
	if g.opts.OnMerge != nil {
		g.opts.OnMerge(ca, cb, merged)
	}

	return e.id, nil
}

// RemoveEdge removes one instance of the edge {u, v}, preferring an
// instance that is not in the spanning forest.
func (g *Graph[K]) RemoveEdge(u, v K) error {
	xu, err := g.vertex("RemoveEdge", u)
	if err != nil {
		return err
	}
	list := xu.adj[v]
	if len(list) == 0 {
		return fmt.Errorf("RemoveEdge(%v,%v): %w", u, v, ErrEdgeNotFound)
	}
	e := list[len(list)-1]
	for i := len(list) - 1; i >= 0; i-- {
		if !list[i].tree {
			e = list[i]
			break
		}
	}
	g.removeEdge(e)

	return nil
}

// RemoveEdgeByID removes the edge instance id.
func (g *Graph[K]) RemoveEdgeByID(id EdgeID) error {
	e, ok := g.edges[id]
	if !ok {
		return fmt.Errorf("RemoveEdgeByID(%d): %w", id, ErrEdgeNotFound)
	}
	g.removeEdge(e)

	return nil
}

func (g *Graph[K]) removeEdge(e *edge[K]) {
	xu, xv := g.mustVertex(e.u), g.mustVertex(e.v)
	delete(g.edges, e.id)
	xu.unlink(e.v, e)
	if e.u == e.v {
		return
	}
	xv.unlink(e.u, e)
	xu.drop(e)
	xv.drop(e)
	if !e.tree {
		return
	}

	for i := 0; i <= e.level; i++ {
		must(g.forests[i].Cut(e.u, e.v))
	}
	if !g.replace(e.u, e.v, e.level) {
		g.cleave(e.u, e.v)
	}
}

// replace searches for an edge reconnecting the two trees of u and v,
// starting at level top and walking down to 0.
func (g *Graph[K]) replace(u, v K, top int) bool {
	for i := top; i >= 0; i-- {
		f := g.forests[i]
		su, err := f.ComponentSize(u)
		must(err)
		sv, err := f.ComponentSize(v)
		must(err)
		small := u
		if sv < su {
			small = v
		}
		nodes, err := f.NodesInComponent(small)
		must(err)

		// Push the small tree up one level; it is at most half the size of
		// the tree it came from.
		for _, n := range nodes {
			x := g.mustVertex(n)
			for _, e := range x.at(true, i) {
				y := g.mustVertex(e.other(n))
				x.drop(e)
				y.drop(e)
				e.level = i + 1
				x.add(e)
				y.add(e)
				up := g.forest(i + 1)
				for _, w := range [2]K{e.u, e.v} {
					if !up.HasVertex(w) {
						must(up.CreateVertex(w))
					}
				}
				must(up.Link(e.u, e.v))
			}
		}

		for _, n := range nodes {
			x := g.mustVertex(n)
			for _, e := range x.at(false, i) {
				w := e.other(n)
				y := g.mustVertex(w)
				x.drop(e)
				y.drop(e)
				if f.Connected(w, small) {
					e.level = i + 1
					x.add(e)
					y.add(e)
					continue
				}
				e.tree = true
				x.add(e)
				y.add(e)
				g.link(e, i)

				return true
			}
		}
	}

	return false
}

// cleave retires the component of u and v, which F_0 now splits in two.
func (g *Graph[K]) cleave(u, v K) {
	f0 := g.forests[0]
	su, err := f0.ComponentSize(u)
	must(err)
	sv, err := f0.ComponentSize(v)
	must(err)
	big, small := u, v
	if su < sv {
		big, small = v, u
	}
	moved, err := f0.NodesInComponent(small)
	must(err)

	xb := g.mustVertex(big)
	old := xb.slot.comp
	a := &Component[K]{rep: big}
	b := &Component[K]{rep: small}
	xb.slot.comp = a
	ns := &slot[K]{comp: b}
	for _, w := range moved {
		g.mustVertex(w).slot = ns
	}
	delete(g.comps, old)
	g.comps[a] = struct{}{}
	g.comps[b] = struct{}{}
	if g.opts.OnCleave != nil {
		g.opts.OnCleave(old, a, b, moved)
	}
}

// RemoveNode removes every edge incident to v, oldest first and each with
// the full removal logic, then drops v and fires the deletion callback for
// its singleton component.
func (g *Graph[K]) RemoveNode(v K) error {
	x, err := g.vertex("RemoveNode", v)
	if err != nil {
		return err
	}
	var ids []EdgeID
	for _, list := range x.adj {
		for _, e := range list {
			ids = append(ids, e.id)
		}
	}
	slices.Sort(ids)
	for _, id := range ids {
		g.removeEdge(g.edges[id])
	}

	c := x.slot.comp
	delete(g.comps, c)
	for _, f := range g.forests {
		if f.HasVertex(v) {
			must(f.RemoveVertex(v))
		}
	}
	g.vertices.Delete(v)
	if g.opts.OnDelete != nil {
		g.opts.OnDelete(c)
	}

	return nil
}

// Connected reports whether u and v are in the same component. Unknown
// vertices are connected to nothing.
func (g *Graph[K]) Connected(u, v K) bool {
	if !g.HasNode(u) || !g.HasNode(v) {
		return false
	}

	return g.forests[0].Connected(u, v)
}

// Component returns the handle of v's component.
func (g *Graph[K]) Component(v K) (*Component[K], error) {
	x, err := g.vertex("Component", v)
	if err != nil {
		return nil, err
	}

	return x.slot.comp, nil
}

// Components returns the handles of all live components, in no particular
// order.
func (g *Graph[K]) Components() []*Component[K] {
	return slices.Collect(maps.Keys(g.comps))
}

// ComponentVertices returns the vertices of c, or nil when c has been
// retired.
func (g *Graph[K]) ComponentVertices(c *Component[K]) []K {
	if _, ok := g.comps[c]; !ok {
		return nil
	}
	nodes, err := g.forests[0].NodesInComponent(c.rep)
	must(err)

	return nodes
}

// ComponentSize returns the number of vertices of c, 0 when retired.
func (g *Graph[K]) ComponentSize(c *Component[K]) int {
	if _, ok := g.comps[c]; !ok {
		return 0
	}
	n, err := g.forests[0].ComponentSize(c.rep)
	must(err)

	return n
}

// NumComponents returns the number of live components.
func (g *Graph[K]) NumComponents() int { return len(g.comps) }

// NumNodes returns the number of vertices.
func (g *Graph[K]) NumNodes() int { return g.vertices.Len() }

// NumEdges returns the number of edge instances, parallel edges and
// self-loops included.
func (g *Graph[K]) NumEdges() int { return len(g.edges) }

// HasNode reports whether v is a vertex.
func (g *Graph[K]) HasNode(v K) bool {
	_, ok := g.vertices.Get(v)

	return ok
}

// HasEdge reports whether at least one instance of {u, v} exists.
func (g *Graph[K]) HasEdge(u, v K) bool {
	x, ok := g.vertices.Get(u)
	if !ok {
		return false
	}

	return len(x.adj[v]) > 0
}

// Levels returns the number of levels currently in use.
func (g *Graph[K]) Levels() int { return len(g.forests) }
