package helpers_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/eth2-core/beacon-engine/core/helpers"
)

func activeIndices(n int) []uint64 {
	out := make([]uint64, n)
	for i := range out {
		out[i] = uint64(i)
	}
	return out
}

func TestNewEpochShufflingCommitteesCoverActiveSet(t *testing.T) {
	var seed [32]byte
	active := activeIndices(2048)

	sh, err := helpers.NewEpochShuffling(seed, 10, active)
	require.NoError(t, err)

	total := 0
	for _, row := range sh.Committees {
		for _, committee := range row {
			total += len(committee)
		}
	}
	require.Equal(t, len(active), total)
}

func TestEpochShufflingCommitteeLookup(t *testing.T) {
	var seed [32]byte
	active := activeIndices(512)
	sh, err := helpers.NewEpochShuffling(seed, 1, active)
	require.NoError(t, err)

	committee := sh.Committee(0, 0)
	require.NotEmpty(t, committee)
	require.Nil(t, sh.Committee(999, 0))
}

func TestShufflingCacheReusesBySeed(t *testing.T) {
	var seed [32]byte
	active := activeIndices(256)
	sh, err := helpers.NewEpochShuffling(seed, 5, active)
	require.NoError(t, err)

	cache := helpers.NewShufflingCache()
	cache.Put(seed, sh)

	got, ok := cache.Get(seed)
	require.True(t, ok)
	require.Same(t, sh, got)

	var other [32]byte
	other[0] = 1
	_, ok = cache.Get(other)
	require.False(t, ok)
}
