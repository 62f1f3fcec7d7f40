package phylogeny

import (
	"encoding/binary"
	"fmt"

	"github.com/soniakeys/bits"

	"github.com/katalvlaran/sonlib/tree"
)

// ScoreFromBootstrap is ScoreFromBootstraps with a single bootstrap.
func ScoreFromBootstrap(ref, bootstrap *Tree) (*Tree, error) {
	return ScoreFromBootstraps(ref, []*Tree{bootstrap})
}

// ScoreFromBootstraps returns an annotated copy of ref where every node
// records how many bootstrap trees contain a node with the same leaf set.
// The root is supported by every bootstrap.
//
// Errors:
//   - ErrBadLeafLabel when the leaves of ref are not matrix indices.
//   - ErrNotAnnotated when a bootstrap lacks IndexedInfo.
//   - ErrLeafSetMismatch when a bootstrap has a different number of leaves.
func ScoreFromBootstraps(ref *Tree, bootstraps []*Tree) (*Tree, error) {
	return score(ref, bootstraps, false)
}

// ScoreReconciliationFromBootstrap is ScoreReconciliationFromBootstraps with
// a single bootstrap.
func ScoreReconciliationFromBootstrap(ref, bootstrap *Tree) (*Tree, error) {
	return ScoreReconciliationFromBootstraps(ref, []*Tree{bootstrap})
}

// ScoreReconciliationFromBootstraps scores like ScoreFromBootstraps but a
// bootstrap node only supports a clade when, in addition, the parents of the
// two nodes reconcile to the same species and event. Leaves can therefore
// be unsupported.
//
// Errors:
//   - ErrNotReconciled when a matched parent lacks ReconInfo.
func ScoreReconciliationFromBootstraps(ref *Tree, bootstraps []*Tree) (*Tree, error) {
	return score(ref, bootstraps, true)
}

// cladeKey is a comparable form of a leaf bitset.
func cladeKey(b bits.Bits) string {
	buf := make([]byte, 0, 8*len(b.Bits))
	for _, w := range b.Bits {
		buf = binary.LittleEndian.AppendUint64(buf, w)
	}

	return string(buf)
}

func clades(t *Tree) (map[string]*tree.Node, error) {
	out := make(map[string]*tree.Node)
	var err error
	t.Root.PreOrder(func(n *tree.Node) {
		ii := t.Indexed(n)
		if ii == nil {
			err = ErrNotAnnotated
			return
		}
		out[cladeKey(ii.LeavesBelow)] = n
	})

	return out, err
}

func score(ref *Tree, bootstraps []*Tree, recon bool) (*Tree, error) {
	clone, seen := ref.Root.CloneTracked()
	out, err := Annotate(clone)
	if err != nil {
		return nil, fmt.Errorf("ScoreFromBootstraps: reference: %w", err)
	}
	for orig, c := range seen {
		if r := ref.Recon(orig); r != nil {
			out.SetRecon(c, r.Species, r.Event)
		}
	}
	leaves := out.Indexed(out.Root).TotalNumLeaves

	counts := make(map[*tree.Node]int)
	for i, b := range bootstraps {
		bi := b.Indexed(b.Root)
		if bi == nil {
			return nil, fmt.Errorf("ScoreFromBootstraps: bootstrap %d: %w", i, ErrNotAnnotated)
		}
		if bi.TotalNumLeaves != leaves {
			return nil, fmt.Errorf("ScoreFromBootstraps: bootstrap %d: %w", i, ErrLeafSetMismatch)
		}
		byClade, err := clades(b)
		if err != nil {
			return nil, fmt.Errorf("ScoreFromBootstraps: bootstrap %d: %w", i, err)
		}
		var walkErr error
		out.Root.PreOrder(func(n *tree.Node) {
			if walkErr != nil {
				return
			}
			match, ok := byClade[cladeKey(out.Indexed(n).LeavesBelow)]
			if !ok {
				return
			}
			if recon && n != out.Root {
				same, err := sameParentRecon(out, n, b, match)
				if err != nil {
					walkErr = fmt.Errorf("ScoreReconciliationFromBootstraps: bootstrap %d: %w", i, err)
				}
				if !same {
					return
				}
			}
			counts[n]++
		})
		if walkErr != nil {
			return nil, walkErr
		}
	}
	counts[out.Root] = len(bootstraps)

	out.Root.PreOrder(func(n *tree.Node) {
		ii := out.Indexed(n)
		ii.NumBootstraps = counts[n]
		if len(bootstraps) > 0 {
			ii.BootstrapSupport = float64(ii.NumBootstraps) / float64(len(bootstraps))
		}
	})
	out.Indexed(out.Root).BootstrapSupport = 1

	return out, nil
}

// sameParentRecon reports whether the parents of a (in at) and b (in bt)
// reconcile identically. A bootstrap root matched to a non-root clade has no
// parent and never matches.
func sameParentRecon(at *Tree, a *tree.Node, bt *Tree, b *tree.Node) (bool, error) {
	if b.Parent() == nil {
		return false, nil
	}
	ra, rb := at.Recon(a.Parent()), bt.Recon(b.Parent())
	if ra == nil || rb == nil {
		return false, ErrNotReconciled
	}

	return ra.Species == rb.Species && ra.Event == rb.Event, nil
}
