package bls_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/eth2-core/beacon-engine/crypto/bls"
)

func keypair(t *testing.T, seedByte byte) *bls.SecretKey {
	t.Helper()
	var ikm [32]byte
	ikm[0] = seedByte
	sk, err := bls.SecretKeyFromBytes(ikm[:])
	require.NoError(t, err)
	return sk
}

func TestSignVerifyRoundTrip(t *testing.T) {
	sk := keypair(t, 1)
	msg := []byte("beacon block root")
	sig := sk.Sign(msg)

	require.True(t, sig.Verify(sk.PublicKey(), msg))
	require.False(t, sig.Verify(sk.PublicKey(), []byte("different message")))
}

func TestPublicKeyCompressRoundTrip(t *testing.T) {
	sk := keypair(t, 2)
	pk := sk.PublicKey()

	decoded, err := bls.PublicKeyFromBytes(pk.Compress())
	require.NoError(t, err)
	require.Equal(t, pk.Compress(), decoded.Compress())
}

func TestPublicKeyFromBytesRejectsWrongLength(t *testing.T) {
	_, err := bls.PublicKeyFromBytes([]byte{1, 2, 3})
	require.Error(t, err)
}

func TestFastAggregateVerify(t *testing.T) {
	msg := []byte("sync committee root")
	sk1 := keypair(t, 10)
	sk2 := keypair(t, 11)
	sk3 := keypair(t, 12)

	sig1 := sk1.Sign(msg)
	sig2 := sk2.Sign(msg)
	sig3 := sk3.Sign(msg)

	agg, err := bls.AggregateSignatures([]*bls.Signature{sig1, sig2, sig3})
	require.NoError(t, err)

	pubkeys := []*bls.PublicKey{sk1.PublicKey(), sk2.PublicKey(), sk3.PublicKey()}
	require.True(t, agg.FastAggregateVerify(pubkeys, msg))

	wrongOrder := []*bls.PublicKey{sk2.PublicKey(), sk1.PublicKey(), sk3.PublicKey()}
	require.True(t, agg.FastAggregateVerify(wrongOrder, msg))

	missingOne := []*bls.PublicKey{sk1.PublicKey(), sk2.PublicKey()}
	require.False(t, agg.FastAggregateVerify(missingOne, msg))
}

func TestAggregateVerifyDistinctMessages(t *testing.T) {
	sk1 := keypair(t, 20)
	sk2 := keypair(t, 21)
	msg1 := []byte("message one")
	msg2 := []byte("message two")

	sig1 := sk1.Sign(msg1)
	sig2 := sk2.Sign(msg2)
	agg, err := bls.AggregateSignatures([]*bls.Signature{sig1, sig2})
	require.NoError(t, err)

	pubkeys := []*bls.PublicKey{sk1.PublicKey(), sk2.PublicKey()}
	msgs := [][]byte{msg1, msg2}
	require.True(t, agg.AggregateVerify(pubkeys, msgs))

	swappedMsgs := [][]byte{msg2, msg1}
	require.False(t, agg.AggregateVerify(pubkeys, swappedMsgs))
}

func TestInfiniteSignature(t *testing.T) {
	require.True(t, bls.InfiniteSignature().IsInfinite())

	sk := keypair(t, 30)
	sig := sk.Sign([]byte("not infinite"))
	require.False(t, sig.IsInfinite())
}

func TestAggregatePublicKeysRejectsEmpty(t *testing.T) {
	_, err := bls.AggregatePublicKeys(nil)
	require.Error(t, err)
}
