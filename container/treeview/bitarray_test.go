package treeview_test

import (
	"testing"

	"github.com/prysmaticlabs/go-bitfield"
	"github.com/stretchr/testify/require"

	"github.com/eth2-core/beacon-engine/container/nodepool"
	"github.com/eth2-core/beacon-engine/container/treeview"
)

func TestBitVectorViewSetGetBit(t *testing.T) {
	pool := nodepool.New()
	v := treeview.NewBitVectorView(pool, pool.ZeroSubtree(0), 64)

	require.False(t, v.BitAt(3))
	v.SetBit(3, true)
	require.True(t, v.BitAt(3))
	v.SetBit(3, false)
	require.False(t, v.BitAt(3))
}

func TestBitVectorViewAsBitvector64(t *testing.T) {
	pool := nodepool.New()
	v := treeview.NewBitVectorView(pool, pool.ZeroSubtree(0), 64)
	v.SetBit(0, true)
	v.SetBit(9, true)

	bv := v.AsBitvector64()
	require.True(t, bv.BitAt(0))
	require.True(t, bv.BitAt(9))
	require.False(t, bv.BitAt(1))
}

func TestBitListViewSetGetBit(t *testing.T) {
	pool := nodepool.New()
	v := treeview.NewBitListView(pool, pool.ZeroSubtree(0), 256, 10)

	require.NoError(t, v.SetBit(4, true))
	got, err := v.BitAt(4)
	require.NoError(t, err)
	require.True(t, got)

	_, err = v.BitAt(20)
	require.Error(t, err)
}

func TestFromBitlistAndToBitlistRoundTrip(t *testing.T) {
	pool := nodepool.New()
	bl := bitfield.NewBitlist(10)
	bl.SetBitAt(2, true)
	bl.SetBitAt(7, true)

	v := treeview.FromBitlist(pool, 256, bl)
	require.Equal(t, 10, v.Length())

	got, err := v.BitAt(2)
	require.NoError(t, err)
	require.True(t, got)
	got, err = v.BitAt(3)
	require.NoError(t, err)
	require.False(t, got)

	roundTripped := v.ToBitlist()
	require.Equal(t, []byte(bl), []byte(roundTripped))
}
