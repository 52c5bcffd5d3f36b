package blocks

import (
	"github.com/eth2-core/beacon-engine/config/params"
	"github.com/eth2-core/beacon-engine/core/state"
	bserrors "github.com/eth2-core/beacon-engine/errors"
)

// ProcessExecutionPayload validates the Bellatrix+ header-level fields
// spec §4.8 names. Full payload/EVM execution is a named non-goal (§1);
// this core validates only the fields that gate state-transition
// correctness (parent linkage, randao mix consistency, slot timing, and
// the Deneb+ blob count ceiling).
func ProcessExecutionPayload(s *state.BeaconState, cfg *params.BeaconChainConfig, genesisTime uint64, body BeaconBlockBody) error {
	if body.ExecutionPayload == nil {
		return bserrors.ErrExecutionPayloadStatusPreMerge
	}
	payload := body.ExecutionPayload

	if s.LatestExecutionPayloadHeader != zero32 && payload.ParentHash != s.LatestExecutionPayloadHeader {
		return bserrors.ErrInvalidExecutionPayloadParentHash
	}
	epoch := computeEpochAtSlot(cfg, s.Slot)
	if payload.PrevRandao != s.RandaoMixes[epoch%cfg.EpochsPerHistoricalVector] {
		return bserrors.ErrInvalidExecutionPayloadRandom
	}
	if payload.Timestamp != genesisTime+s.Slot*cfg.SecondsPerSlot {
		return bserrors.ErrInvalidExecutionPayloadTimestamp
	}

	if s.Fork.Gte(params.Deneb) {
		limit := cfg.MaxBlobsPerBlock
		if s.Fork.Gte(params.Electra) {
			limit = cfg.MaxBlobsPerBlockElectra
		}
		if uint64(len(body.BlobKzgCommitments)) > limit {
			return bserrors.ErrBlobKzgCommitmentsExceedsLimit
		}
	}

	s.LatestExecutionPayloadHeader = payload.BlockHash
	return nil
}
