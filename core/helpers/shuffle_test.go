package helpers_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/eth2-core/beacon-engine/core/helpers"
)

func rangeSlice(n int) []uint64 {
	out := make([]uint64, n)
	for i := range out {
		out[i] = uint64(i)
	}
	return out
}

func TestInnerShuffleListRegressionVector(t *testing.T) {
	var seed [32]byte
	xs := rangeSlice(9)

	unshuffled, err := helpers.InnerShuffleList(xs, seed, 32, false)
	require.NoError(t, err)
	require.Equal(t, []uint64{6, 2, 3, 5, 1, 7, 8, 0, 4}, unshuffled)

	back, err := helpers.InnerShuffleList(unshuffled, seed, 32, true)
	require.NoError(t, err)
	require.Equal(t, xs, back)
}

func TestInnerShuffleListReversible(t *testing.T) {
	var seed [32]byte
	for i := range seed {
		seed[i] = byte(i)
	}
	xs := rangeSlice(50)
	for r := 0; r <= 255; r += 17 {
		forward, err := helpers.InnerShuffleList(xs, seed, uint8(r), true)
		require.NoError(t, err)
		back, err := helpers.InnerShuffleList(forward, seed, uint8(r), false)
		require.NoError(t, err)
		require.Equal(t, xs, back)
	}
}

func TestInnerShuffleListIdentity(t *testing.T) {
	var seed [32]byte
	xs := rangeSlice(10)

	noRounds, err := helpers.InnerShuffleList(xs, seed, 0, true)
	require.NoError(t, err)
	require.Equal(t, xs, noRounds)

	single, err := helpers.InnerShuffleList([]uint64{5}, seed, 12, true)
	require.NoError(t, err)
	require.Equal(t, []uint64{5}, single)

	empty, err := helpers.InnerShuffleList(nil, seed, 12, true)
	require.NoError(t, err)
	require.Empty(t, empty)
}

func TestValidateShuffleRounds(t *testing.T) {
	require.NoError(t, helpers.ValidateShuffleRounds(0))
	require.NoError(t, helpers.ValidateShuffleRounds(helpers.MaxShuffleRounds))
	require.Error(t, helpers.ValidateShuffleRounds(helpers.MaxShuffleRounds+1))
	require.Error(t, helpers.ValidateShuffleRounds(-1))
}
