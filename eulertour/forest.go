package eulertour

import (
	"fmt"

	"github.com/katalvlaran/sonlib/treap"
)

// New returns an empty forest.
func New[K comparable]() *Forest[K] {
	f := &Forest[K]{}
	f.vertices.Init(16)

	return f
}

// Len returns the number of vertices.
func (f *Forest[K]) Len() int { return f.vertices.Len() }

// NumEdges returns the number of forest edges.
func (f *Forest[K]) NumEdges() int { return f.edges }

// HasVertex reports whether id was created and not removed.
func (f *Forest[K]) HasVertex(id K) bool {
	_, ok := f.vertices.Get(id)

	return ok
}

// CreateVertex adds id as an isolated vertex with a one-element tour.
func (f *Forest[K]) CreateVertex(id K) error {
	if _, ok := f.vertices.Get(id); ok {
		return fmt.Errorf("CreateVertex(%v): %w", id, ErrVertexExists)
	}
	f.vertices.Put(id, &vertex[K]{
		out:    make(map[K]*treap.Node[Step[K]]),
		single: treap.New(Step[K]{From: id, To: id}),
	})

	return nil
}

// RemoveVertex deletes an isolated vertex.
func (f *Forest[K]) RemoveVertex(id K) error {
	v, err := f.vertex("RemoveVertex", id)
	if err != nil {
		return err
	}
	if len(v.out) > 0 {
		return fmt.Errorf("RemoveVertex(%v): %w", id, ErrVertexNotIsolated)
	}
	f.vertices.Delete(id)

	return nil
}

func (f *Forest[K]) vertex(ctx string, id K) (*vertex[K], error) {
	v, ok := f.vertices.Get(id)
	if !ok {
		return nil, fmt.Errorf("%s(%v): %w", ctx, id, ErrVertexNotFound)
	}

	return v, nil
}

// handle returns some element of v's tour.
func (v *vertex[K]) handle() *treap.Node[Step[K]] {
	if v.single != nil {
		return v.single
	}
	for _, h := range v.out {
		return h
	}

	return nil
}

// rotate makes the tour containing v start with a half-edge leaving v and
// returns its root. Isolated vertices are left alone.
func (v *vertex[K]) rotate() *treap.Node[Step[K]] {
	if v.single != nil {
		return v.single
	}
	left, right := treap.SplitBefore(v.handle())

	return treap.Concat(right, left)
}

// MakeRoot rotates the tour of id so that it starts at id.
func (f *Forest[K]) MakeRoot(id K) error {
	v, err := f.vertex("MakeRoot", id)
	if err != nil {
		return err
	}
	v.rotate()

	return nil
}

// FindRoot returns the vertex the tour of id currently starts at.
func (f *Forest[K]) FindRoot(id K) (K, error) {
	v, err := f.vertex("FindRoot", id)
	if err != nil {
		var zero K
		return zero, err
	}

	return treap.First(v.handle()).Value.From, nil
}

// Connected reports whether u and v lie in the same tree. Unknown ids are
// connected to nothing but themselves.
func (f *Forest[K]) Connected(u, v K) bool {
	if u == v {
		return true
	}
	vu, ok := f.vertices.Get(u)
	if !ok {
		return false
	}
	vv, ok := f.vertices.Get(v)
	if !ok {
		return false
	}

	return treap.Root(vu.handle()) == treap.Root(vv.handle())
}

// HasEdge reports whether the forest holds the edge {u, v}.
func (f *Forest[K]) HasEdge(u, v K) bool {
	vu, ok := f.vertices.Get(u)
	if !ok {
		return false
	}
	_, ok = vu.out[v]

	return ok
}

// Link joins the trees of u and v with the edge {u, v}. The merged tour
// starts at u.
func (f *Forest[K]) Link(u, v K) error {
	vu, err := f.vertex("Link", u)
	if err != nil {
		return err
	}
	vv, err := f.vertex("Link", v)
	if err != nil {
		return err
	}
	if f.Connected(u, v) {
		return fmt.Errorf("Link(%v,%v): %w", u, v, ErrAlreadyConnected)
	}

	tu, tv := vu.rotate(), vv.rotate()
	if vu.single != nil {
		tu, vu.single = nil, nil
	}
	if vv.single != nil {
		tv, vv.single = nil, nil
	}
	uv := treap.New(Step[K]{From: u, To: v})
	vu2 := treap.New(Step[K]{From: v, To: u})
	treap.Concat(treap.Concat(treap.Concat(tu, uv), tv), vu2)

	vu.out[v] = uv
	vv.out[u] = vu2
	f.edges++

	return nil
}

// Cut removes the edge {u, v}, splitting its tree in two.
func (f *Forest[K]) Cut(u, v K) error {
	vu, ok := f.vertices.Get(u)
	if !ok {
		return fmt.Errorf("Cut(%v,%v): %w", u, v, ErrEdgeNotFound)
	}
	vv, ok := f.vertices.Get(v)
	if !ok {
		return fmt.Errorf("Cut(%v,%v): %w", u, v, ErrEdgeNotFound)
	}
	a, okA := vu.out[v]
	b, okB := vv.out[u]
	if !okA || !okB {
		return fmt.Errorf("Cut(%v,%v): %w", u, v, ErrEdgeNotFound)
	}
	if treap.Index(a) > treap.Index(b) {
		a, b = b, a
	}

	// The tour reads L a M b R: M is the subtree below the cut edge and
	// R+L is what remains on the other side.
	left, rest := treap.SplitBefore(a)
	treap.Split(rest, 1)
	_, rest = treap.SplitBefore(b)
	_, right := treap.Split(rest, 1)
	treap.Concat(right, left)

	delete(vu.out, v)
	delete(vv.out, u)
	if len(vu.out) == 0 {
		vu.single = treap.New(Step[K]{From: u, To: u})
	}
	if len(vv.out) == 0 {
		vv.single = treap.New(Step[K]{From: v, To: v})
	}
	f.edges--

	return nil
}

// Neighbors returns the vertices adjacent to id, in no particular order.
func (f *Forest[K]) Neighbors(id K) ([]K, error) {
	v, err := f.vertex("Neighbors", id)
	if err != nil {
		return nil, err
	}
	out := make([]K, 0, len(v.out))
	for k := range v.out {
		out = append(out, k)
	}

	return out, nil
}

// ComponentSize returns the number of vertices in the tree of id.
func (f *Forest[K]) ComponentSize(id K) (int, error) {
	v, err := f.vertex("ComponentSize", id)
	if err != nil {
		return 0, err
	}
	if v.single != nil {
		return 1, nil
	}

	return treap.Len(v.handle())/2 + 1, nil
}

// NodesInComponent returns the vertices of the tree of id in tour order,
// starting with the tour's root. It runs in time linear in the tree size.
func (f *Forest[K]) NodesInComponent(id K) ([]K, error) {
	v, err := f.vertex("NodesInComponent", id)
	if err != nil {
		return nil, err
	}
	if v.single != nil {
		return []K{id}, nil
	}
	seen := make(map[K]struct{}, treap.Len(v.handle())/2+1)
	var out []K
	treap.Each(v.handle(), func(n *treap.Node[Step[K]]) bool {
		if _, ok := seen[n.Value.From]; !ok {
			seen[n.Value.From] = struct{}{}
			out = append(out, n.Value.From)
		}
		return true
	})

	return out, nil
}

// Tour returns the half-edges of the tree of id in tour order. The tour of
// an isolated vertex is empty.
func (f *Forest[K]) Tour(id K) ([]Step[K], error) {
	v, err := f.vertex("Tour", id)
	if err != nil {
		return nil, err
	}
	if v.single != nil {
		return nil, nil
	}
	out := make([]Step[K], 0, treap.Len(v.handle()))
	treap.Each(v.handle(), func(n *treap.Node[Step[K]]) bool {
		out = append(out, n.Value)
		return true
	})

	return out, nil
}
