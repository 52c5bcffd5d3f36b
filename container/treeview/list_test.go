package treeview_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/eth2-core/beacon-engine/container/nodepool"
	"github.com/eth2-core/beacon-engine/container/treeview"
)

func TestBasicListViewPushGetSet(t *testing.T) {
	pool := nodepool.New()
	v := treeview.NewBasicListView(pool, pool.ZeroSubtree(1), 8, 0, treeview.Uint64Codec)

	require.NoError(t, v.Push(10))
	require.NoError(t, v.Push(20))
	require.Equal(t, 2, v.Length())

	got, err := v.Get(0)
	require.NoError(t, err)
	require.Equal(t, uint64(10), got)

	require.NoError(t, v.Set(1, 99))
	got, err = v.Get(1)
	require.NoError(t, err)
	require.Equal(t, uint64(99), got)
}

func TestBasicListViewGetOutOfBounds(t *testing.T) {
	pool := nodepool.New()
	v := treeview.NewBasicListView(pool, pool.ZeroSubtree(1), 8, 1, treeview.Uint64Codec)
	_, err := v.Get(5)
	require.Error(t, err)
}

func TestBasicListViewPushOverLimit(t *testing.T) {
	pool := nodepool.New()
	v := treeview.NewBasicListView(pool, pool.ZeroSubtree(0), 2, 2, treeview.Uint64Codec)
	require.Error(t, v.Push(1))
}

func TestBasicListViewSliceTo(t *testing.T) {
	pool := nodepool.New()
	v := treeview.NewBasicListView(pool, pool.ZeroSubtree(1), 8, 0, treeview.Uint64Codec)
	for i := 0; i < 5; i++ {
		require.NoError(t, v.Push(uint64(i+1)))
	}

	require.NoError(t, v.SliceTo(3))
	require.Equal(t, 3, v.Length())
	got, err := v.Get(2)
	require.NoError(t, err)
	require.Equal(t, uint64(3), got)
}

func TestBasicListViewSliceFromUnsupported(t *testing.T) {
	pool := nodepool.New()
	v := treeview.NewBasicListView(pool, pool.ZeroSubtree(0), 4, 0, treeview.Uint64Codec)
	require.Error(t, v.SliceFrom(1))
}

func TestCompositeListViewAppendAndGet(t *testing.T) {
	pool := nodepool.New()
	newElem := func(id nodepool.NodeId) treeview.Committer {
		return treeview.NewContainerView(pool, id, 2)
	}
	v := treeview.NewCompositeListView(pool, pool.ZeroSubtree(1), 4, 0, newElem)

	elem := treeview.NewEmptyContainer(pool, 2)
	var val [32]byte
	val[0] = 3
	elem.SetBasic(0, val)
	require.NoError(t, v.Append(elem))
	require.Equal(t, 1, v.Length())

	got, err := v.Get(0)
	require.NoError(t, err)
	require.Equal(t, val, got.(*treeview.ContainerView).GetBasic(0))

	_, err = v.Get(5)
	require.Error(t, err)
}

func TestCompositeListViewSliceFrom(t *testing.T) {
	pool := nodepool.New()
	newElem := func(id nodepool.NodeId) treeview.Committer {
		return treeview.NewContainerView(pool, id, 1)
	}
	v := treeview.NewCompositeListView(pool, pool.ZeroSubtree(2), 4, 0, newElem)

	for i := 0; i < 3; i++ {
		elem := treeview.NewEmptyContainer(pool, 1)
		var val [32]byte
		val[0] = byte(i + 1)
		elem.SetBasic(0, val)
		require.NoError(t, v.Append(elem))
	}

	require.NoError(t, v.SliceFrom(1))
	require.Equal(t, 2, v.Length())

	got, err := v.Get(0)
	require.NoError(t, err)
	var want [32]byte
	want[0] = 2
	require.Equal(t, want, got.(*treeview.ContainerView).GetBasic(0))
}
