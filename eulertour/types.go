package eulertour

import (
	"errors"

	"github.com/cockroachdb/swiss"

	"github.com/katalvlaran/sonlib/treap"
)

// Sentinel errors returned by Forest methods.
var (
	// ErrVertexExists is returned by CreateVertex for a known id.
	ErrVertexExists = errors.New("eulertour: vertex already exists")

	// ErrVertexNotFound is returned when an id was never created.
	ErrVertexNotFound = errors.New("eulertour: vertex not found")

	// ErrAlreadyConnected is returned by Link when both endpoints are
	// already in the same tree.
	ErrAlreadyConnected = errors.New("eulertour: vertices already connected")

	// ErrEdgeNotFound is returned by Cut when the forest has no such edge.
	ErrEdgeNotFound = errors.New("eulertour: edge not found")

	// ErrVertexNotIsolated is returned by RemoveVertex for a vertex that
	// still has incident edges.
	ErrVertexNotIsolated = errors.New("eulertour: vertex has incident edges")
)

// Step is one element of a tour: the traversal of a half-edge From→To.
// The tour of an isolated vertex v is the single step v→v.
type Step[K comparable] struct {
	From, To K
}

// vertex holds the tour elements owned by one vertex.
type vertex[K comparable] struct {
	// out maps a neighbour to the half-edge leaving this vertex towards it.
	out map[K]*treap.Node[Step[K]]

	// single is the one-element tour of an isolated vertex; nil otherwise.
	single *treap.Node[Step[K]]
}

// Forest is a set of vertices and undirected forest edges kept as Euler
// tours. The zero value is not usable; create forests with New.
//
// Forest is not safe for concurrent use.
type Forest[K comparable] struct {
	vertices swiss.Map[K, *vertex[K]]
	edges    int
}
