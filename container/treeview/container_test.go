package treeview_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/eth2-core/beacon-engine/container/nodepool"
	"github.com/eth2-core/beacon-engine/container/treeview"
)

func TestContainerViewSetGetBasicRoundTrip(t *testing.T) {
	pool := nodepool.New()
	c := treeview.NewEmptyContainer(pool, 3)

	var val [32]byte
	val[0] = 7
	c.SetBasic(1, val)
	require.Equal(t, val, c.GetBasic(1))

	var zero [32]byte
	require.Equal(t, zero, c.GetBasic(0))
	require.Equal(t, zero, c.GetBasic(2))
}

func TestContainerViewCommitPersistsAcrossNewView(t *testing.T) {
	pool := nodepool.New()
	c := treeview.NewEmptyContainer(pool, 5)

	var val [32]byte
	val[0] = 9
	c.SetBasic(3, val)
	require.True(t, c.Dirty())
	root := c.Commit()
	require.False(t, c.Dirty())

	reopened := treeview.NewContainerView(pool, root, 5)
	require.Equal(t, val, reopened.GetBasic(3))
}

func TestContainerViewSubViewTransfersOwnership(t *testing.T) {
	pool := nodepool.New()
	outer := treeview.NewEmptyContainer(pool, 2)
	inner := treeview.NewEmptyContainer(pool, 2)

	var innerVal [32]byte
	innerVal[0] = 42
	inner.SetBasic(0, innerVal)

	outer.SetSubView(0, inner)
	sv := outer.GetOrCreateSubView(0, func(id nodepool.NodeId) treeview.Committer {
		return treeview.NewContainerView(pool, id, 2)
	})
	require.Same(t, inner, sv)
	require.True(t, outer.Dirty())
}
