package pubkeyindex_test

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/eth2-core/beacon-engine/core/pubkeyindex"
	"github.com/eth2-core/beacon-engine/crypto/bls"
)

func keypairFromIKM(t *testing.T, seedByte byte) (*bls.SecretKey, []byte) {
	t.Helper()
	var ikm [32]byte
	ikm[0] = seedByte
	sk, err := bls.SecretKeyFromBytes(ikm[:])
	require.NoError(t, err)
	return sk, sk.PublicKey().Compress()
}

func TestSetGetRoundTrip(t *testing.T) {
	idx := pubkeyindex.New()
	_, pkBytes := keypairFromIKM(t, 1)

	require.NoError(t, idx.Set(0, pkBytes))

	got, ok := idx.Get(0)
	require.True(t, ok)
	require.Equal(t, pkBytes, got.Compress())

	gotIndex, ok, err := idx.GetIndex(pkBytes)
	require.NoError(t, err)
	require.True(t, ok)
	require.EqualValues(t, 0, gotIndex)

	_, ok, err = idx.GetIndex(bytes.Repeat([]byte{0xff}, 48))
	require.NoError(t, err)
	require.False(t, ok)

	_, ok = idx.Get(1 << 31)
	require.False(t, ok)
}

func TestSaveLoadRoundTrip(t *testing.T) {
	idx := pubkeyindex.New()
	var pubkeys [][]byte
	for i := uint32(0); i < 3; i++ {
		_, pkBytes := keypairFromIKM(t, byte(i+1))
		require.NoError(t, idx.Set(i, pkBytes))
		pubkeys = append(pubkeys, pkBytes)
	}

	var buf bytes.Buffer
	require.NoError(t, idx.Save(func(b []byte) error {
		_, err := buf.Write(b)
		return err
	}))

	loaded, err := pubkeyindex.Load(buf.Bytes())
	require.NoError(t, err)
	require.EqualValues(t, 3, loaded.Size())

	for i, pkBytes := range pubkeys {
		gotIndex, ok, err := loaded.GetIndex(pkBytes)
		require.NoError(t, err)
		require.True(t, ok)
		require.EqualValues(t, i, gotIndex)

		got, ok := loaded.Get(uint32(i))
		require.True(t, ok)
		require.Equal(t, pkBytes, got.Compress())
	}
}

func TestSetRejectsWrongLength(t *testing.T) {
	idx := pubkeyindex.New()
	require.Error(t, idx.Set(0, []byte{1, 2, 3}))
}
