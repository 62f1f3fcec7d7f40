package tree_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/katalvlaran/sonlib/tree"
)

// TestReRoot_BinaryRootIsMerged moves the root onto an internal branch.
func TestReRoot_BinaryRootIsMerged(t *testing.T) {
	root := tree.MustParseNewick("(((0:1,1:1):1,2:1):1,3:1);")
	x := tree.MRCA(root.FindChild("0"), root.FindChild("1"))

	rerooted, err := tree.ReRoot(x, 0.5)
	require.NoError(t, err)
	assert.Equal(t, "((0:1,1:1):0.5,(2:1,3:2):0.5);", tree.Newick(rerooted))
	// The original is untouched.
	assert.Equal(t, "(((0:1,1:1):1,2:1):1,3:1);", tree.Newick(root))
}

// TestReRoot_MultifurcatingRootSurvives keeps a root with three children.
func TestReRoot_MultifurcatingRootSurvives(t *testing.T) {
	root := tree.MustParseNewick("(a:1,b:2,c:3)r;")
	rerooted, err := tree.ReRoot(root.FindChild("a"), 0)
	require.NoError(t, err)
	assert.Equal(t, "(a:0,(b:2,c:3)r:1);", tree.Newick(rerooted))
}

// TestReRoot_AtRootClones returns an equal copy when asked to root at the root.
func TestReRoot_AtRootClones(t *testing.T) {
	root := tree.MustParseNewick("((a:1,b:1):1,c:2);")
	rerooted, err := tree.ReRoot(root, 0)
	require.NoError(t, err)
	assert.True(t, tree.Equals(root, rerooted))
	assert.NotSame(t, root, rerooted)
}

// TestReRoot_Errors rejects positions outside the branch.
func TestReRoot_Errors(t *testing.T) {
	root := tree.MustParseNewick("((a:1,b:1):1,c:2);")
	_, err := tree.ReRoot(root.FindChild("a"), 2)
	assert.ErrorIs(t, err, tree.ErrDistanceAbove)
	_, err = tree.ReRoot(root.FindChild("a"), -1)
	assert.ErrorIs(t, err, tree.ErrDistanceAbove)
	_, err = tree.ReRoot(nil, 0)
	assert.ErrorIs(t, err, tree.ErrNilNode)
}

// TestReRootTracked maps every original node to its replacement.
func TestReRootTracked(t *testing.T) {
	root := tree.MustParseNewick("(((0:1,1:1)x:1,2:1)y:1,3:1)r;")
	rerooted, seen, err := tree.ReRootTracked(root.FindChild("x"), 0.5)
	require.NoError(t, err)
	for _, label := range []string{"0", "1", "2", "3", "x", "y"} {
		orig := root.FindChild(label)
		require.NotNil(t, seen[orig], label)
		assert.Equal(t, label, seen[orig].Label())
		assert.Same(t, rerooted, seen[orig].Root())
	}
	_, ok := seen[root]
	assert.False(t, ok, "the binary root is eliminated")
}
