package treeview_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/eth2-core/beacon-engine/container/nodepool"
	"github.com/eth2-core/beacon-engine/container/treeview"
)

func TestBasicVectorViewUint64RoundTrip(t *testing.T) {
	pool := nodepool.New()
	v := treeview.NewBasicVectorView(pool, pool.ZeroSubtree(1), 8, treeview.Uint64Codec)

	v.Set(0, 100)
	v.Set(3, 200)
	v.Set(7, 300)

	require.Equal(t, uint64(100), v.Get(0))
	require.Equal(t, uint64(200), v.Get(3))
	require.Equal(t, uint64(300), v.Get(7))
	require.Equal(t, uint64(0), v.Get(1))
}

func TestBasicVectorViewGetAll(t *testing.T) {
	pool := nodepool.New()
	v := treeview.NewBasicVectorView(pool, pool.ZeroSubtree(0), 4, treeview.Uint16Codec)
	v.Set(0, 11)
	v.Set(1, 22)
	v.Set(2, 33)
	v.Set(3, 44)

	out := make([]uint64, 4)
	v.GetAll(out)
	require.Equal(t, []uint64{11, 22, 33, 44}, out)
}

func TestBasicVectorViewCommitPersists(t *testing.T) {
	pool := nodepool.New()
	v := treeview.NewBasicVectorView(pool, pool.ZeroSubtree(0), 4, treeview.Uint64Codec)
	v.Set(2, 555)
	root := v.Commit()

	reopened := treeview.NewBasicVectorView(pool, root, 4, treeview.Uint64Codec)
	require.Equal(t, uint64(555), reopened.Get(2))
}

func TestCompositeVectorViewGetSet(t *testing.T) {
	pool := nodepool.New()
	newElem := func(id nodepool.NodeId) treeview.Committer {
		return treeview.NewContainerView(pool, id, 2)
	}
	v := treeview.NewCompositeVectorView(pool, pool.ZeroSubtree(1), 2, newElem)

	elem := treeview.NewEmptyContainer(pool, 2)
	var val [32]byte
	val[0] = 5
	elem.SetBasic(0, val)
	v.Set(0, elem)

	got := v.Get(0).(*treeview.ContainerView)
	require.Equal(t, val, got.GetBasic(0))
}
