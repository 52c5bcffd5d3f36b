package transition_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/eth2-core/beacon-engine/config/params"
	"github.com/eth2-core/beacon-engine/container/nodepool"
	"github.com/eth2-core/beacon-engine/core/blocks"
	"github.com/eth2-core/beacon-engine/core/helpers"
	"github.com/eth2-core/beacon-engine/core/pubkeyindex"
	"github.com/eth2-core/beacon-engine/core/state"
	"github.com/eth2-core/beacon-engine/core/transition"
)

func cacheBuilder(cfg *params.BeaconChainConfig) transition.CacheBuilder {
	return func(s *state.BeaconState, epochNum uint64) (*helpers.EpochCache, error) {
		var proposers [32]uint32
		return helpers.NewEpochCache(cfg, epochNum, nil, nil, nil, proposers, nil), nil
	}
}

func TestProcessSlotsRejectsNonIncreasingTarget(t *testing.T) {
	cfg := params.BeaconConfig()
	pool := nodepool.New()
	s := state.NewGenesisState(pool, params.Phase0)
	s.Slot = 5

	err := transition.ProcessSlots(context.Background(), s, cfg, cacheBuilder(cfg), 5)
	require.Error(t, err)
}

func TestProcessSlotsAdvancesAndRunsEpochBoundary(t *testing.T) {
	cfg := params.BeaconConfig()
	pool := nodepool.New()
	s := state.NewGenesisState(pool, params.Phase0)

	err := transition.ProcessSlots(context.Background(), s, cfg, cacheBuilder(cfg), cfg.SlotsPerEpoch+1)
	require.NoError(t, err)
	require.Equal(t, cfg.SlotsPerEpoch+1, s.Slot)
}

func TestProcessSlotsBackfillsStateRoots(t *testing.T) {
	cfg := params.BeaconConfig()
	pool := nodepool.New()
	s := state.NewGenesisState(pool, params.Phase0)

	err := transition.ProcessSlots(context.Background(), s, cfg, cacheBuilder(cfg), 3)
	require.NoError(t, err)
	require.NotEqual(t, [32]byte{}, s.StateRoots[0])
}

func TestUpgradeToAltairAllocatesParticipation(t *testing.T) {
	cfg := params.BeaconConfig()
	pool := nodepool.New()
	s := state.NewGenesisState(pool, params.Phase0)
	s.Validators = make([]state.Validator, 3)

	transition.UpgradeToAltair(s, cfg)

	require.Equal(t, params.Altair, s.Fork)
	require.Len(t, s.PreviousEpochParticipation, 3)
	require.Len(t, s.InactivityScores, 3)
	require.NotNil(t, s.CurrentSyncCommittee)
}

func TestStateTransitionSkipsStateRootCheckWhenDisabled(t *testing.T) {
	cfg := params.BeaconConfig()
	pool := nodepool.New()
	s := state.NewGenesisState(pool, params.Phase0)
	s.Validators = make([]state.Validator, 1)
	s.LatestBlockHeader = state.BeaconBlockHeader{Slot: 0}

	var proposers [32]uint32
	proposers[1] = 0
	builder := func(st *state.BeaconState, epochNum uint64) (*helpers.EpochCache, error) {
		return helpers.NewEpochCache(cfg, epochNum, nil, nil, nil, proposers, nil), nil
	}

	// process_slot backfills the header's zero state_root with the
	// pre-advance state root before process_block_header compares roots.
	s.Commit()
	parent := s.LatestBlockHeader
	parent.StateRoot = s.HashTreeRoot()

	block := blocks.BeaconBlock{
		Slot:          1,
		ProposerIndex: 0,
		ParentRoot:    parent.HashTreeRoot(),
	}
	signed := blocks.NewSignedFullBlock(block, [96]byte{})

	opts := transition.DefaultOptions()
	opts.VerifyStateRoot = false

	err := transition.StateTransition(context.Background(), s, cfg, pubkeyindex.New(), builder, signed, opts)
	require.NoError(t, err)
	require.Equal(t, uint64(1), s.Slot)
}

func TestIsWithinWeakSubjectivityPeriod(t *testing.T) {
	cfg := params.BeaconConfig()

	require.True(t, transition.IsWithinWeakSubjectivityPeriod(cfg, 100, 100, 1000, cfg.MaxEffectiveBalance))
	require.False(t, transition.IsWithinWeakSubjectivityPeriod(cfg, 100, 50, 1000, cfg.MaxEffectiveBalance))
	require.False(t, transition.IsWithinWeakSubjectivityPeriod(cfg, 100, 100000, 1000, cfg.MaxEffectiveBalance))
}
