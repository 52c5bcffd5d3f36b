package state_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/eth2-core/beacon-engine/config/params"
	"github.com/eth2-core/beacon-engine/container/nodepool"
	"github.com/eth2-core/beacon-engine/core/state"
)

func TestNewGenesisStateFieldSizing(t *testing.T) {
	pool := nodepool.New()
	s := state.NewGenesisState(pool, params.Phase0)

	cfg := params.BeaconConfig()
	require.Len(t, s.BlockRoots, int(cfg.SlotsPerHistoricalRoot))
	require.Len(t, s.StateRoots, int(cfg.SlotsPerHistoricalRoot))
	require.Len(t, s.RandaoMixes, int(cfg.EpochsPerHistoricalVector))
	require.Len(t, s.Slashings, int(cfg.EpochsPerSlashingsVector))
	require.Equal(t, params.Phase0, s.Fork)
}

func TestBeaconStateEpochAndPreviousEpoch(t *testing.T) {
	pool := nodepool.New()
	s := state.NewGenesisState(pool, params.Phase0)
	cfg := params.BeaconConfig()

	s.Slot = 0
	require.Equal(t, uint64(0), s.Epoch())
	require.Equal(t, uint64(0), s.PreviousEpoch())

	s.Slot = cfg.SlotsPerEpoch * 3
	require.Equal(t, uint64(3), s.Epoch())
	require.Equal(t, uint64(2), s.PreviousEpoch())
}

func TestBeaconStateCommitIsDeterministic(t *testing.T) {
	pool := nodepool.New()
	s := state.NewGenesisState(pool, params.Phase0)
	s.GenesisTime = 1234

	root1 := s.Pool().GetRoot(s.Commit())
	root2 := s.Pool().GetRoot(s.Commit())
	require.Equal(t, root1, root2)
}

func TestBeaconStateCommitChangesRootOnFieldChange(t *testing.T) {
	pool := nodepool.New()
	s := state.NewGenesisState(pool, params.Phase0)
	s.Commit()
	before := s.HashTreeRoot()

	s.Slot = 5
	s.Commit()
	after := s.HashTreeRoot()

	require.NotEqual(t, before, after)
}

func TestBeaconStateCommitSkipsPostPhase0FieldsBeforeFork(t *testing.T) {
	pool := nodepool.New()
	s := state.NewGenesisState(pool, params.Phase0)
	require.NotPanics(t, func() { s.Commit() })
}

func TestBeaconStateAltairCommitIncludesSyncCommitteeFields(t *testing.T) {
	pool := nodepool.New()
	s := state.NewGenesisState(pool, params.Altair)
	s.CurrentSyncCommittee = &state.SyncCommittee{}
	s.NextSyncCommittee = &state.SyncCommittee{}
	require.NotPanics(t, func() { s.Commit() })
}

func TestValidatorIsActiveAndSlashable(t *testing.T) {
	v := state.Validator{
		ActivationEligibilityEpoch: 1,
		ActivationEpoch:            2,
		ExitEpoch:                  10,
		WithdrawableEpoch:          12,
	}
	require.False(t, v.IsActive(1))
	require.True(t, v.IsActive(2))
	require.True(t, v.IsActive(9))
	require.False(t, v.IsActive(10))

	require.True(t, v.IsSlashable(5))
	v.Slashed = true
	require.False(t, v.IsSlashable(5))
}

func TestValidatorHashTreeRootChangesWithSlashedFlag(t *testing.T) {
	v := state.Validator{}
	unslashed := v.HashTreeRoot()
	v.Slashed = true
	slashed := v.HashTreeRoot()
	require.NotEqual(t, unslashed, slashed)
}

func TestBeaconBlockHeaderHashTreeRootChangesWithSlot(t *testing.T) {
	h := state.BeaconBlockHeader{Slot: 1}
	r1 := h.HashTreeRoot()
	h.Slot = 2
	r2 := h.HashTreeRoot()
	require.NotEqual(t, r1, r2)
}
