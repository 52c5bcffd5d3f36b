package state

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/eth2-core/beacon-engine/container/nodepool"
	"github.com/eth2-core/beacon-engine/crypto/hashutil"
)

func sampleValidator(i byte) Validator {
	v := Validator{EffectiveBalance: uint64(i) * 1_000_000_000, ActivationEpoch: uint64(i)}
	v.Pubkey[0] = i
	v.WithdrawalCredentials[0] = i + 1
	return v
}

// validatorsRoot must agree with a flat Merkleize of each validator's own
// HashTreeRoot, the same shape the pre-CompositeListView implementation
// produced, since wiring a real nested tree must not change the committed
// value.
func TestValidatorsRootMatchesFlatMerkleize(t *testing.T) {
	for _, n := range []int{0, 1, 3, 5} {
		vs := make([]Validator, n)
		for i := range vs {
			vs[i] = sampleValidator(byte(i + 1))
		}

		pool := nodepool.New()
		got := validatorsRoot(pool, vs)

		leaves := make([][32]byte, n)
		for i, v := range vs {
			leaves[i] = v.HashTreeRoot()
		}
		want := hashutil.MixInLength(hashutil.Merkleize(leaves, 1<<22), uint64(n))

		require.Equal(t, want, got, "validator count %d", n)
	}
}

func TestValidatorElementSerializeDeserializeRoundTrip(t *testing.T) {
	elem := validatorElement()
	v := sampleValidator(7)

	data := elem.Serialize(v)
	require.Len(t, data, validatorFixedSize)

	got, err := elem.Deserialize(data)
	require.NoError(t, err)
	require.Equal(t, v, got)
}

func TestValidatorElementHashTreeRootMatchesValidatorHashTreeRoot(t *testing.T) {
	elem := validatorElement()
	v := sampleValidator(3)
	require.Equal(t, v.HashTreeRoot(), elem.HashTreeRoot(v))
}
