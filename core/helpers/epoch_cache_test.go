package helpers_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/eth2-core/beacon-engine/config/params"
	"github.com/eth2-core/beacon-engine/core/helpers"
)

func TestEpochCacheGetBeaconProposer(t *testing.T) {
	cfg := params.BeaconConfig()
	var proposers [32]uint32
	for i := range proposers {
		proposers[i] = uint32(i * 7)
	}
	ec := helpers.NewEpochCache(cfg, 0, nil, nil, nil, proposers, nil)

	require.Equal(t, uint32(0), ec.GetBeaconProposer(0))
	require.Equal(t, uint32(7), ec.GetBeaconProposer(1))
	require.Equal(t, uint32(7), ec.GetBeaconProposer(1+cfg.SlotsPerEpoch))
}

func TestEpochCacheChurnLimits(t *testing.T) {
	cfg := params.BeaconConfig()
	var proposers [32]uint32
	ec := helpers.NewEpochCache(cfg, 0, nil, nil, nil, proposers, make([]uint64, 100))

	require.Equal(t, cfg.MinPerEpochChurnLimit, ec.ChurnLimit())
	require.LessOrEqual(t, ec.ActivationChurnLimit(), cfg.MaxPerEpochActivationChurnLimit)
}

func TestEpochCacheSyncProposerReward(t *testing.T) {
	cfg := params.BeaconConfig()
	var proposers [32]uint32
	balances := make([]uint64, 100)
	for i := range balances {
		balances[i] = cfg.MaxEffectiveBalance
	}
	ec := helpers.NewEpochCache(cfg, 0, nil, nil, nil, proposers, balances)

	require.Equal(t, uint64(0), ec.SyncProposerReward(0))
	require.Greater(t, ec.SyncProposerReward(512), uint64(0))
}

func TestEpochCacheRotate(t *testing.T) {
	cfg := params.BeaconConfig()
	var proposers [32]uint32
	prev := &helpers.EpochShuffling{Epoch: 0}
	cur := &helpers.EpochShuffling{Epoch: 1}
	next := &helpers.EpochShuffling{Epoch: 2}
	ec := helpers.NewEpochCache(cfg, 1, prev, cur, next, proposers, nil)

	fresh := &helpers.EpochShuffling{Epoch: 3}
	stale := ec.Rotate(2, fresh)

	require.Same(t, prev, stale)
	require.Same(t, cur, ec.GetPreviousEpochShuffling())
	require.Same(t, next, ec.GetCurrentEpochShuffling())
	require.Same(t, fresh, ec.GetNextEpochShuffling())
}
