package blsbatch_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/eth2-core/beacon-engine/core/blsbatch"
	"github.com/eth2-core/beacon-engine/core/pubkeyindex"
	"github.com/eth2-core/beacon-engine/crypto/bls"
	bserrors "github.com/eth2-core/beacon-engine/errors"
)

type keypair struct {
	sk *bls.SecretKey
	pk []byte
}

func genKeypair(t *testing.T, seed byte) keypair {
	t.Helper()
	var ikm [32]byte
	ikm[0] = seed
	sk, err := bls.SecretKeyFromBytes(ikm[:])
	require.NoError(t, err)
	return keypair{sk: sk, pk: sk.PublicKey().Compress()}
}

func setupIndex(t *testing.T, n int) (*pubkeyindex.Index, []keypair) {
	t.Helper()
	idx := pubkeyindex.New()
	kps := make([]keypair, n)
	for i := 0; i < n; i++ {
		kps[i] = genKeypair(t, byte(i+1))
		require.NoError(t, idx.Set(uint32(i), kps[i].pk))
	}
	return idx, kps
}

func TestVerifyIndexedAllValid(t *testing.T) {
	idx, kps := setupIndex(t, 4)
	sets := make([]blsbatch.IndexedSet, 4)
	for i, kp := range kps {
		var msg [32]byte
		msg[0] = byte(i + 10)
		sig := kp.sk.Sign(msg[:]).Compress()
		var sigArr [96]byte
		copy(sigArr[:], sig)
		sets[i] = blsbatch.IndexedSet{Index: uint32(i), Message: msg, Signature: sigArr}
	}

	ok, err := blsbatch.VerifyIndexed(idx, sets)
	require.NoError(t, err)
	require.True(t, ok)
}

func TestVerifyIndexedEmpty(t *testing.T) {
	idx := pubkeyindex.New()
	ok, err := blsbatch.VerifyIndexed(idx, nil)
	require.NoError(t, err)
	require.False(t, ok)
}

func TestVerifyIndexedTamperedSignatureFails(t *testing.T) {
	idx, kps := setupIndex(t, 4)
	sets := make([]blsbatch.IndexedSet, 4)
	for i, kp := range kps {
		var msg [32]byte
		msg[0] = byte(i + 10)
		sig := kp.sk.Sign(msg[:]).Compress()
		var sigArr [96]byte
		copy(sigArr[:], sig)
		sets[i] = blsbatch.IndexedSet{Index: uint32(i), Message: msg, Signature: sigArr}
	}

	// Tamper: replace sets[0]'s signature with a different key/message pair.
	var otherMsg [32]byte
	otherMsg[0] = 200
	tampered := kps[1].sk.Sign(otherMsg[:]).Compress()
	copy(sets[0].Signature[:], tampered)

	ok, err := blsbatch.VerifyIndexed(idx, sets)
	require.NoError(t, err)
	require.False(t, ok)
}

func TestVerifyAggregateMatchesSignerSet(t *testing.T) {
	idx, kps := setupIndex(t, 4)
	var msg [32]byte
	msg[0] = 7

	sigs := make([]*bls.Signature, 0, len(kps))
	for _, kp := range kps {
		sigs = append(sigs, kp.sk.Sign(msg[:]))
	}
	agg, err := bls.AggregateSignatures(sigs)
	require.NoError(t, err)
	var sigArr [96]byte
	copy(sigArr[:], agg.Compress())

	ok, err := blsbatch.VerifyAggregate(idx, blsbatch.AggregateSet{
		Indices:   []uint32{0, 1, 2, 3},
		Message:   msg,
		Signature: sigArr,
	})
	require.NoError(t, err)
	require.True(t, ok)
}

func TestVerifySameMessageTooManySets(t *testing.T) {
	idx := pubkeyindex.New()
	sets := make([]blsbatch.IndexedSet, blsbatch.MaxSets+1)
	_, err := blsbatch.VerifySameMessage(idx, sets, [32]byte{})
	require.ErrorIs(t, err, bserrors.ErrTooManySets)
}

func TestVerifySameMessageEmpty(t *testing.T) {
	idx := pubkeyindex.New()
	ok, err := blsbatch.VerifySameMessage(idx, nil, [32]byte{})
	require.NoError(t, err)
	require.False(t, ok)
}

func TestVerifySameMessageValid(t *testing.T) {
	idx, kps := setupIndex(t, 3)
	var msg [32]byte
	msg[0] = 42

	sets := make([]blsbatch.IndexedSet, len(kps))
	for i, kp := range kps {
		var sigArr [96]byte
		copy(sigArr[:], kp.sk.Sign(msg[:]).Compress())
		sets[i] = blsbatch.IndexedSet{Index: uint32(i), Message: msg, Signature: sigArr}
	}

	ok, err := blsbatch.VerifySameMessage(idx, sets, msg)
	require.NoError(t, err)
	require.True(t, ok)
}
