package blocks_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/eth2-core/beacon-engine/config/params"
	"github.com/eth2-core/beacon-engine/container/nodepool"
	"github.com/eth2-core/beacon-engine/core/blocks"
	"github.com/eth2-core/beacon-engine/core/helpers"
	"github.com/eth2-core/beacon-engine/core/state"
	bserrors "github.com/eth2-core/beacon-engine/errors"
)

func setupState(t *testing.T) (*state.BeaconState, *helpers.EpochCache) {
	t.Helper()
	pool := nodepool.New()
	s := state.NewGenesisState(pool, params.Phase0)
	s.Slot = 5
	s.LatestBlockHeader = state.BeaconBlockHeader{Slot: 4}

	var proposers [32]uint32
	proposers[5] = 3
	cache := helpers.NewEpochCache(params.BeaconConfig(), 0, nil, nil, nil, proposers, nil)
	s.Validators = make([]state.Validator, 4)
	return s, cache
}

func TestProcessBlockHeaderBlockNotNewer(t *testing.T) {
	s, cache := setupState(t)
	s.LatestBlockHeader.Slot = 5

	block := blocks.BeaconBlock{Slot: 5, ProposerIndex: 3, ParentRoot: s.LatestBlockHeader.HashTreeRoot()}
	err := blocks.ProcessBlockHeader(s, params.BeaconConfig(), cache, block, true)
	require.ErrorIs(t, err, bserrors.ErrBlockNotNewerThanLatestHeader)
}

func TestProcessBlockHeaderProposerMismatch(t *testing.T) {
	s, cache := setupState(t)
	block := blocks.BeaconBlock{Slot: 5, ProposerIndex: 1, ParentRoot: s.LatestBlockHeader.HashTreeRoot()}
	err := blocks.ProcessBlockHeader(s, params.BeaconConfig(), cache, block, true)
	require.Error(t, err)
}

func TestProcessBlockHeaderParentRootMismatch(t *testing.T) {
	s, cache := setupState(t)
	var wrongRoot [32]byte
	wrongRoot[0] = 1
	block := blocks.BeaconBlock{Slot: 5, ProposerIndex: 3, ParentRoot: wrongRoot}
	err := blocks.ProcessBlockHeader(s, params.BeaconConfig(), cache, block, true)
	require.Error(t, err)
}

func TestProcessBlockHeaderValid(t *testing.T) {
	s, cache := setupState(t)
	block := blocks.BeaconBlock{Slot: 5, ProposerIndex: 3, ParentRoot: s.LatestBlockHeader.HashTreeRoot()}
	err := blocks.ProcessBlockHeader(s, params.BeaconConfig(), cache, block, true)
	require.NoError(t, err)
	require.Equal(t, [32]byte{}, s.LatestBlockHeader.StateRoot)
	require.Equal(t, uint32(3), s.LatestBlockHeader.ProposerIndex)
}

func TestProcessBlockHeaderSkipsProposerCheckWhenDisabled(t *testing.T) {
	s, cache := setupState(t)
	block := blocks.BeaconBlock{Slot: 5, ProposerIndex: 1, ParentRoot: s.LatestBlockHeader.HashTreeRoot()}
	err := blocks.ProcessBlockHeader(s, params.BeaconConfig(), cache, block, false)
	require.NoError(t, err)
	require.Equal(t, uint32(1), s.LatestBlockHeader.ProposerIndex)
}
