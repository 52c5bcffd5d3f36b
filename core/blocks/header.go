package blocks

import (
	"github.com/eth2-core/beacon-engine/config/params"
	"github.com/eth2-core/beacon-engine/core/helpers"
	"github.com/eth2-core/beacon-engine/core/state"
	bserrors "github.com/eth2-core/beacon-engine/errors"
)

// ProcessBlockHeader validates and replaces state.LatestBlockHeader (spec
// §4.8). The slot comparison uses strictly-greater-than against the
// previous header's slot: the Open Question in spec §9 about the source
// reading block.slot() two different ways is resolved here in favor of the
// stricter `block.slot > latest_header.slot` (matching the `block.slot ==
// state.slot` assertion immediately above it, which already pins the
// relationship to the single current-slot value, leaving no ambiguity for
// what "newer" means).
// verifyProposer controls the proposer-index assertion: the consensus spec
// runs it unconditionally, but a caller replaying blocks it has already
// validated once (e.g. during a batch state-root backfill) can skip it.
func ProcessBlockHeader(s *state.BeaconState, cfg *params.BeaconChainConfig, cache *helpers.EpochCache, block BeaconBlock, verifyProposer bool) error {
	if block.Slot != s.Slot {
		return bserrors.ErrBlockSlotMismatch
	}
	if block.Slot <= s.LatestBlockHeader.Slot {
		return bserrors.ErrBlockNotNewerThanLatestHeader
	}
	if verifyProposer && block.ProposerIndex != cache.GetBeaconProposer(s.Slot) {
		return bserrors.ErrBlockProposerIndexMismatch
	}
	if block.ParentRoot != s.LatestBlockHeader.HashTreeRoot() {
		return bserrors.ErrBlockParentRootMismatch
	}
	if int(block.ProposerIndex) < len(s.Validators) && s.Validators[block.ProposerIndex].Slashed {
		return bserrors.ErrBlockProposerSlashed
	}

	s.LatestBlockHeader = state.BeaconBlockHeader{
		Slot:          block.Slot,
		ProposerIndex: block.ProposerIndex,
		ParentRoot:    block.ParentRoot,
		StateRoot:     zero32,
		BodyRoot:      block.Body.HashTreeRoot(cfg),
	}
	return nil
}

var zero32 [32]byte
