package epoch_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/eth2-core/beacon-engine/config/params"
	"github.com/eth2-core/beacon-engine/container/nodepool"
	"github.com/eth2-core/beacon-engine/core/epoch"
	"github.com/eth2-core/beacon-engine/core/helpers"
	"github.com/eth2-core/beacon-engine/core/state"
)

func setupState(t *testing.T, seq params.ForkSeq, slot uint64) (*state.BeaconState, *helpers.EpochCache) {
	t.Helper()
	pool := nodepool.New()
	s := state.NewGenesisState(pool, seq)
	s.Slot = slot
	cfg := params.BeaconConfig()
	var proposers [32]uint32
	cache := helpers.NewEpochCache(cfg, s.Epoch(), nil, nil, nil, proposers, nil)
	return s, cache
}

func TestProcessEpochEffectiveBalanceUpdates(t *testing.T) {
	cfg := params.BeaconConfig()
	s, cache := setupState(t, params.Phase0, cfg.SlotsPerEpoch*2)
	s.Validators = []state.Validator{{
		EffectiveBalance:  cfg.MaxEffectiveBalance,
		ActivationEpoch:   0,
		ExitEpoch:         params.FarFutureEpoch,
		WithdrawableEpoch: params.FarFutureEpoch,
	}}
	s.Balances = []uint64{cfg.MaxEffectiveBalance - cfg.EffectiveBalanceIncrement*5}

	err := epoch.ProcessEpoch(s, cfg, cache)
	require.NoError(t, err)
	require.Less(t, s.Validators[0].EffectiveBalance, cfg.MaxEffectiveBalance)
}

func TestProcessEpochSlashingsResetClearsUpcomingSlot(t *testing.T) {
	cfg := params.BeaconConfig()
	s, cache := setupState(t, params.Phase0, cfg.SlotsPerEpoch*2)
	nextIdx := (s.Epoch() + 1) % cfg.EpochsPerSlashingsVector
	s.Slashings[nextIdx] = 999

	err := epoch.ProcessEpoch(s, cfg, cache)
	require.NoError(t, err)
	require.Equal(t, uint64(0), s.Slashings[nextIdx])
}

func TestProcessEpochRandaoMixesResetCopiesForward(t *testing.T) {
	cfg := params.BeaconConfig()
	s, cache := setupState(t, params.Phase0, cfg.SlotsPerEpoch*2)
	curIdx := s.Epoch() % cfg.EpochsPerHistoricalVector
	nextIdx := (s.Epoch() + 1) % cfg.EpochsPerHistoricalVector
	var mix [32]byte
	mix[0] = 0x42
	s.RandaoMixes[curIdx] = mix

	err := epoch.ProcessEpoch(s, cfg, cache)
	require.NoError(t, err)
	require.Equal(t, mix, s.RandaoMixes[nextIdx])
}

func TestProcessEpochJustificationNoopBeforeEpochTwo(t *testing.T) {
	cfg := params.BeaconConfig()
	s, cache := setupState(t, params.Phase0, cfg.SlotsPerEpoch)

	err := epoch.ProcessEpoch(s, cfg, cache)
	require.NoError(t, err)
	require.Equal(t, state.Checkpoint{}, s.FinalizedCheckpoint)
}

func TestProcessEpochRegistryUpdatesMarksValidatorEligible(t *testing.T) {
	cfg := params.BeaconConfig()
	s, cache := setupState(t, params.Phase0, cfg.SlotsPerEpoch*2)
	s.Validators = []state.Validator{{
		EffectiveBalance:           cfg.MaxEffectiveBalance,
		ActivationEligibilityEpoch: params.FarFutureEpoch,
		ActivationEpoch:            params.FarFutureEpoch,
		ExitEpoch:                  params.FarFutureEpoch,
		WithdrawableEpoch:          params.FarFutureEpoch,
	}}
	s.Balances = []uint64{cfg.MaxEffectiveBalance}

	err := epoch.ProcessEpoch(s, cfg, cache)
	require.NoError(t, err)
	require.Equal(t, s.Epoch()+1, s.Validators[0].ActivationEligibilityEpoch)
}
