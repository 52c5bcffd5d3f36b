package hashutil_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/eth2-core/beacon-engine/crypto/hashutil"
)

func TestZeroHashMonotonic(t *testing.T) {
	h0 := hashutil.ZeroHash(0)
	h1 := hashutil.ZeroHash(1)
	require.Equal(t, h0, [32]byte{})
	require.Equal(t, h1, hashutil.HashTwo(h0, h0))
}

func TestZeroHashClampsOutOfRangeDepth(t *testing.T) {
	require.Equal(t, hashutil.ZeroHash(0), hashutil.ZeroHash(-5))
	require.Equal(t, hashutil.ZeroHash(hashutil.MaxDepth-1), hashutil.ZeroHash(hashutil.MaxDepth+100))
}

func TestHashTwoDeterministicAndOrderSensitive(t *testing.T) {
	var a, b [32]byte
	a[0] = 1
	b[0] = 2

	require.Equal(t, hashutil.HashTwo(a, b), hashutil.HashTwo(a, b))
	require.NotEqual(t, hashutil.HashTwo(a, b), hashutil.HashTwo(b, a))
}

func TestMerkleizeSingleLeafIsIdentity(t *testing.T) {
	var leaf [32]byte
	leaf[0] = 9
	require.Equal(t, leaf, hashutil.Merkleize([][32]byte{leaf}, 1))
}

func TestMerkleizePadsToLimit(t *testing.T) {
	var a, b [32]byte
	a[0] = 1
	b[0] = 2

	withoutLimit := hashutil.Merkleize([][32]byte{a, b}, 0)
	withLimit := hashutil.Merkleize([][32]byte{a, b}, 4)
	require.NotEqual(t, withoutLimit, withLimit)
}

func TestMerkleizeEmptyReturnsZeroHash(t *testing.T) {
	require.Equal(t, hashutil.ZeroHash(0), hashutil.Merkleize(nil, 1))
}

func TestMixInLengthDiffersByLength(t *testing.T) {
	var root [32]byte
	root[0] = 5
	require.NotEqual(t, hashutil.MixInLength(root, 1), hashutil.MixInLength(root, 2))
}
