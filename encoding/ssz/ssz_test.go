package ssz_test

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/eth2-core/beacon-engine/container/nodepool"
	"github.com/eth2-core/beacon-engine/crypto/hashutil"
	"github.com/eth2-core/beacon-engine/encoding/ssz"
)

func TestUint64RoundTrip(t *testing.T) {
	var u ssz.Uint64
	buf := make([]byte, u.SerializeSize(1234567890))
	n := u.SerializeInto(1234567890, buf)
	require.Equal(t, 8, n)

	got, err := u.DeserializeFrom(buf)
	require.NoError(t, err)
	require.Equal(t, uint64(1234567890), got)
}

func TestUint64HashTreeRootIsLittleEndianPadded(t *testing.T) {
	var u ssz.Uint64
	root := u.HashTreeRoot(42)
	require.Equal(t, byte(42), root[0])
	for _, b := range root[1:] {
		require.Equal(t, byte(0), b)
	}
}

func TestByteVectorRoundTrip(t *testing.T) {
	bv := ssz.ByteVector{N: 4}
	got, err := bv.DeserializeFrom([]byte{1, 2, 3, 4})
	require.NoError(t, err)
	require.Equal(t, []byte{1, 2, 3, 4}, got)

	_, err = bv.DeserializeFrom([]byte{1, 2, 3})
	require.Error(t, err)
}

func TestByteListRejectsOverLimit(t *testing.T) {
	bl := ssz.ByteList{Limit: 4}
	_, err := bl.DeserializeFrom([]byte{1, 2, 3, 4, 5})
	require.Error(t, err)

	got, err := bl.DeserializeFrom([]byte{1, 2, 3})
	require.NoError(t, err)
	require.Equal(t, []byte{1, 2, 3}, got)
}

func TestByteListHashTreeRootMixesInLength(t *testing.T) {
	bl := ssz.ByteList{Limit: 64}
	r1 := bl.HashTreeRoot([]byte{1, 2, 3})
	r2 := bl.HashTreeRoot([]byte{1, 2, 3, 0})
	require.NotEqual(t, r1, r2)
}

// Checkpoint round-trip: end-to-end scenario 3 and laws RT1-RT3.
func TestCheckpointSerializeLayout(t *testing.T) {
	var root [32]byte
	for i := range root {
		root[i] = 1
	}
	cp := ssz.Checkpoint{Epoch: 42, Root: root}

	data := cp.Serialize()
	require.Len(t, data, 40)
	require.Equal(t, []byte{42, 0, 0, 0, 0, 0, 0, 0}, data[0:8])
	require.True(t, bytes.Equal(root[:], data[8:40]))

	back, err := ssz.DeserializeCheckpoint(data)
	require.NoError(t, err)
	require.Equal(t, cp, back)
}

func TestCheckpointHashTreeRootMatchesHashTwoOfFields(t *testing.T) {
	var root [32]byte
	for i := range root {
		root[i] = 1
	}
	cp := ssz.Checkpoint{Epoch: 42, Root: root}

	var u ssz.Uint64
	epochLeaf := u.HashTreeRoot(42)
	expected := hashutil.HashTwo(epochLeaf, root)

	require.Equal(t, expected, cp.HashTreeRoot())
}

func TestCheckpointTreeRoundTrip(t *testing.T) {
	pool := nodepool.New()
	var root [32]byte
	root[0] = 9
	cp := ssz.Checkpoint{Epoch: 7, Root: root}

	view := cp.ToTree(pool)
	back := ssz.CheckpointFromTree(view)
	require.Equal(t, cp, back)
}

func TestDefaultHasherMatchesHashutil(t *testing.T) {
	h := ssz.DefaultHasher()
	var a, b [32]byte
	a[0] = 1
	b[0] = 2
	require.Equal(t, hashutil.HashTwo(a, b), h.HashTwo(a, b))
}

func TestDescribeLabels(t *testing.T) {
	require.Equal(t, "uint64", (ssz.Uint64{}).Describe())
	require.Equal(t, "Vector[byte, N]", (ssz.ByteVector{N: 4}).Describe())
	require.Equal(t, "List[byte, N]", (ssz.ByteList{Limit: 4}).Describe())
}

func TestReadFieldRanges(t *testing.T) {
	ranges, err := ssz.ReadFieldRanges(make([]byte, 16), 8, 2)
	require.NoError(t, err)
	require.Equal(t, []ssz.FieldRange{{Start: 0, End: 8}, {Start: 8, End: 16}}, ranges)

	_, err = ssz.ReadFieldRanges(make([]byte, 15), 8, 2)
	require.Error(t, err)
}
