package phylogeny

import (
	"errors"

	"github.com/soniakeys/bits"

	"github.com/katalvlaran/sonlib/tree"
)

// Sentinel errors returned by phylogeny functions.
var (
	// ErrNotSquare is returned for a distance or cost matrix that is not n×n.
	ErrNotSquare = errors.New("phylogeny: matrix is not square")

	// ErrBadLeafLabel is returned by Annotate when a leaf label is not a
	// distinct matrix index in [0, leaves).
	ErrBadLeafLabel = errors.New("phylogeny: leaf label is not a matrix index")

	// ErrNotAnnotated is returned when a node carries no IndexedInfo.
	ErrNotAnnotated = errors.New("phylogeny: tree is not annotated")

	// ErrNotReconciled is returned when a node carries no ReconInfo.
	ErrNotReconciled = errors.New("phylogeny: tree is not reconciled")

	// ErrMissingSpecies is returned when a gene leaf has no species mapping.
	ErrMissingSpecies = errors.New("phylogeny: gene leaf has no species")

	// ErrNotBinary is returned by rooting for a tree with a non-binary node.
	ErrNotBinary = errors.New("phylogeny: tree is not binary")

	// ErrLeafSetMismatch is returned when two trees do not share a leaf set.
	ErrLeafSetMismatch = errors.New("phylogeny: trees have different leaf sets")

	// ErrBadOutgroup is returned for an outgroup index outside the matrix.
	ErrBadOutgroup = errors.New("phylogeny: outgroup index out of range")

	// ErrGuideMismatch is returned when a Guide does not fit the matrix.
	ErrGuideMismatch = errors.New("phylogeny: guide does not match distance matrix")

	// ErrNotInternal is returned by NNI for a leaf or a root.
	ErrNotInternal = errors.New("phylogeny: node is not an internal non-root node")
)

// Event is the evolutionary event a reconciled gene node stands for.
type Event int

const (
	// Leaf marks a gene tree leaf.
	Leaf Event = iota
	// Speciation marks a node whose children split into different species
	// lineages.
	Speciation
	// Duplication marks a node whose children share a species lineage.
	Duplication
)

// String returns the lower-case event name.
func (e Event) String() string {
	switch e {
	case Leaf:
		return "leaf"
	case Speciation:
		return "speciation"
	case Duplication:
		return "duplication"
	default:
		return "unknown"
	}
}

// IndexedInfo describes the leaves below a node of an annotated tree.
type IndexedInfo struct {
	// MatrixIndex is the leaf's matrix index, -1 for internal nodes.
	MatrixIndex int

	// LeavesBelow has bit i set iff leaf i is in the subtree.
	LeavesBelow bits.Bits

	// TotalNumLeaves is the number of leaves of the whole tree.
	TotalNumLeaves int

	// NumBootstraps is the number of bootstrap trees containing this clade.
	NumBootstraps int

	// BootstrapSupport is NumBootstraps divided by the number of bootstraps;
	// it is always 1 at the root.
	BootstrapSupport float64
}

// ReconInfo is the species and event a gene node reconciles to.
type ReconInfo struct {
	Species *tree.Node
	Event   Event
}

// Info is the metadata attached to one node.
type Info struct {
	Index *IndexedInfo
	Recon *ReconInfo
}

// Tree is a rooted tree together with its node metadata.
type Tree struct {
	Root *tree.Node

	info map[*tree.Node]*Info
}
