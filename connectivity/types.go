package connectivity

import (
	"errors"
)

// Sentinel errors returned by Graph and Naive.
var (
	// ErrNodeNotFound is returned for a vertex that was never added.
	ErrNodeNotFound = errors.New("connectivity: node not found")

	// ErrNodeExists is returned by AddNode for a known vertex.
	ErrNodeExists = errors.New("connectivity: node already exists")

	// ErrEdgeNotFound is returned when removing an absent edge.
	ErrEdgeNotFound = errors.New("connectivity: edge not found")
)

// EdgeID identifies one instance of a (possibly parallel) edge. IDs are
// never reused by the same Graph.
type EdgeID uint64

// Component is an opaque handle for one connected component. Compare
// handles by pointer.
type Component[K comparable] struct {
	rep K
}

// Option configures a Graph.
type Option[K comparable] func(*Options[K])

// Options holds the change-notification callbacks of a Graph. A nil
// callback is never invoked.
type Options[K comparable] struct {
	// OnCreate fires when AddNode creates the singleton component c.
	OnCreate func(c *Component[K])

	// OnMerge fires when AddEdge joins a and b into merged.
	OnMerge func(a, b, merged *Component[K])

	// OnCleave fires when a removal splits old into a and b. moved lists the
	// vertices of b, the smaller side.
	OnCleave func(old, a, b *Component[K], moved []K)

	// OnDelete fires when RemoveNode drops the vertex's own component c.
	OnDelete func(c *Component[K])
}

// DefaultOptions returns Options with every callback unset.
func DefaultOptions[K comparable]() Options[K] {
	return Options[K]{}
}

// WithOnCreate registers the creation callback.
func WithOnCreate[K comparable](fn func(c *Component[K])) Option[K] {
	return func(o *Options[K]) { o.OnCreate = fn }
}

// WithOnMerge registers the merge callback.
func WithOnMerge[K comparable](fn func(a, b, merged *Component[K])) Option[K] {
	return func(o *Options[K]) { o.OnMerge = fn }
}

// WithOnCleave registers the cleave callback.
func WithOnCleave[K comparable](fn func(old, a, b *Component[K], moved []K)) Option[K] {
	return func(o *Options[K]) { o.OnCleave = fn }
}

// WithOnDelete registers the deletion callback.
func WithOnDelete[K comparable](fn func(c *Component[K])) Option[K] {
	return func(o *Options[K]) { o.OnDelete = fn }
}
