package tree

import (
	"errors"
	"math"
)

// Sentinel errors for tree construction and parsing.
var (
	// ErrMalformedNewick is returned when a Newick string cannot be parsed.
	ErrMalformedNewick = errors.New("tree: malformed newick string")

	// ErrNilNode is returned when a nil node is passed where one is required.
	ErrNilNode = errors.New("tree: nil node")

	// ErrDistanceAbove is returned by ReRoot when the requested root position
	// lies outside the branch above the node.
	ErrDistanceAbove = errors.New("tree: distance above node exceeds its branch length")
)

// Unset is the branch length of a node whose branch length was never set.
var Unset = math.Inf(1)

// IsUnset reports whether a branch length is the Unset sentinel.
func IsUnset(branchLength float64) bool {
	return math.IsInf(branchLength, 1)
}

// Node is one vertex of a rooted tree. A Node owns its children; the parent
// link is a back-reference. The zero value is not usable, construct nodes
// with New or NewNode.
type Node struct {
	label        string
	branchLength float64
	parent       *Node
	children     []*Node
}

// Compare orders two nodes; it returns a negative number when a sorts before
// b, zero when they are equal, and a positive number otherwise.
type Compare func(a, b *Node) int
