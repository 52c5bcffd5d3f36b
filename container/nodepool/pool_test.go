package nodepool_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/eth2-core/beacon-engine/container/nodepool"
)

func TestCreateLeafAndBranchRoot(t *testing.T) {
	p := nodepool.New()
	left := p.CreateLeaf([32]byte{1})
	right := p.CreateLeaf([32]byte{2})
	branch := p.CreateBranch(left, right)

	root := p.GetRoot(branch)
	require.NotEqual(t, [32]byte{}, root)

	// recomputation is memoized and stable.
	require.Equal(t, root, p.GetRoot(branch))
}

func TestSetNodeSharesUnmodifiedDescendants(t *testing.T) {
	p := nodepool.New()
	leaves := make([]nodepool.NodeId, 4)
	for i := range leaves {
		leaves[i] = p.CreateLeaf([32]byte{byte(i + 1)})
	}
	root := p.FillWithContents(leaves, 2)
	originalRoot := p.GetRoot(root)

	newLeaf := p.CreateLeaf([32]byte{99})
	newRoot := p.SetNode(root, nodepool.FromDepth(2, 1), newLeaf)

	require.NotEqual(t, originalRoot, p.GetRoot(newRoot))
	// original root/subtree untouched.
	require.Equal(t, originalRoot, p.GetRoot(root))
}

func TestUnrefFreesSubtree(t *testing.T) {
	p := nodepool.New()
	baseline := p.Stats().NodesInUse

	leaf1 := p.CreateLeaf([32]byte{1})
	leaf2 := p.CreateLeaf([32]byte{2})
	branch := p.CreateBranch(leaf1, leaf2)
	// branch holds its own ref on children; drop our direct refs.
	p.Unref(leaf1)
	p.Unref(leaf2)

	require.Greater(t, p.Stats().NodesInUse, baseline)

	p.Unref(branch)
	require.Equal(t, baseline, p.Stats().NodesInUse)
}

func TestTruncateAfterIndexZeroesTail(t *testing.T) {
	p := nodepool.New()
	leaves := make([]nodepool.NodeId, 4)
	for i := range leaves {
		leaves[i] = p.CreateLeaf([32]byte{byte(i + 1)})
	}
	root := p.FillWithContents(leaves, 2)

	truncated := p.TruncateAfterIndex(root, 2, 1)
	node0, err := p.GetNode(truncated, nodepool.FromDepth(2, 0))
	require.NoError(t, err)
	require.Equal(t, leaves[0], node0)

	node2, err := p.GetNode(truncated, nodepool.FromDepth(2, 2))
	require.NoError(t, err)
	require.Equal(t, p.ZeroSubtree(0), node2)
}

func TestSnapshotRestoreRollsBackAllocations(t *testing.T) {
	p := nodepool.New()
	snap := p.Snapshot()

	leaf1 := p.CreateLeaf([32]byte{1})
	leaf2 := p.CreateLeaf([32]byte{2})
	p.Unref(leaf1)
	p.Unref(leaf2)

	p.Restore(snap)
	require.Equal(t, snap, p.Snapshot())
}

func TestGetNodesAtDepthBulkRead(t *testing.T) {
	p := nodepool.New()
	leaves := make([]nodepool.NodeId, 8)
	for i := range leaves {
		leaves[i] = p.CreateLeaf([32]byte{byte(i + 1)})
	}
	root := p.FillWithContents(leaves, 3)

	out := make([]nodepool.NodeId, 8)
	p.GetNodesAtDepth(root, 3, 0, out)
	require.Equal(t, leaves, out)
}
