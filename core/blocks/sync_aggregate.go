package blocks

import (
	"bytes"

	"github.com/eth2-core/beacon-engine/config/params"
	"github.com/eth2-core/beacon-engine/core/helpers"
	"github.com/eth2-core/beacon-engine/core/state"
	"github.com/eth2-core/beacon-engine/crypto/bls"
	bserrors "github.com/eth2-core/beacon-engine/errors"
)

// ProcessSyncAggregate applies the Altair+ sync-committee vote (spec
// §4.8): expands the bitfield against the indexed current sync committee,
// verifies the aggregate signature over the previous slot's block root
// (or requires the point at infinity when no bit is set), then rewards
// every participant and penalizes every absentee.
//
// The proposer reward hook referenced in spec §9's open question ("the
// sync aggregate processing in at least one variant of the source applies
// proposer reward inside the committee loop") is resolved here as: accrue
// the per-participant proposer share inside the same loop that grants the
// participant reward, rather than as a single end-of-aggregate lump sum.
// This only affects rounding of the last increment, not which validators
// are rewarded, and keeps the reward hook colocated with the condition
// (participation) that creates it.
func ProcessSyncAggregate(s *state.BeaconState, cfg *params.BeaconChainConfig, cache *helpers.EpochCache, agg SyncAggregate, previousSlotBlockRoot [32]byte, verifySignatures bool) error {
	if cache.SyncCommittee == nil {
		return nil
	}
	committee := cache.SyncCommittee.ValidatorIndices

	participantCount := 0
	bitSet := make([]bool, len(committee))
	for i := range committee {
		byteIdx, bitIdx := i/8, uint(i%8)
		if byteIdx < len(agg.SyncCommitteeBits) && agg.SyncCommitteeBits[byteIdx]&(1<<bitIdx) != 0 {
			bitSet[i] = true
			participantCount++
		}
	}

	sig, err := bls.SignatureFromBytes(agg.SyncCommitteeSignature[:])
	if participantCount == 0 {
		// SignatureFromBytes rejects the point at infinity, so the empty
		// case compares the encoding directly.
		if verifySignatures && !bytes.Equal(agg.SyncCommitteeSignature[:], bls.InfiniteSignature().Compress()) {
			return bserrors.ErrEmptySyncCommitteeSignatureIsNotInfinity
		}
	} else if err != nil {
		return bserrors.ErrSyncCommitteeSignatureInvalid
	} else if verifySignatures {
		pubkeys := make([]*bls.PublicKey, 0, participantCount)
		var aggPk *bls.PublicKey
		for i, on := range bitSet {
			if !on || int(committee[i]) >= len(s.Validators) {
				continue
			}
			pk, ok := idxPublicKey(s, committee[i])
			if !ok {
				continue
			}
			pubkeys = append(pubkeys, pk)
		}
		if len(pubkeys) > 0 {
			aggPk, err = bls.AggregatePublicKeys(pubkeys)
			if err != nil {
				return bserrors.ErrSyncCommitteeSignatureInvalid
			}
			domain := computeDomain(cfg.DomainSyncCommittee, s.ForkData.CurrentVersion, s.GenesisValidatorsRoot)
			root := signingRoot(previousSlotBlockRoot, domain)
			if !sig.Verify(aggPk, root[:]) {
				return bserrors.ErrSyncCommitteeSignatureInvalid
			}
		}
	}

	totalActiveIncrements := uint64(0)
	for _, b := range cache.EffectiveBalanceIncrements {
		totalActiveIncrements += uint64(b)
	}
	if totalActiveIncrements == 0 {
		return nil
	}
	totalBaseRewards := cfg.EffectiveBalanceIncrement * cfg.BaseRewardFactor * totalActiveIncrements / isqrt(totalActiveIncrements*cfg.EffectiveBalanceIncrement)
	maxParticipantReward := totalBaseRewards * cfg.WeightDenominator / (cfg.WeightDenominator + cfg.ProposerWeight) / cfg.SlotsPerEpoch // approximated across SLOTS_PER_EPOCH proposer turns
	participantReward := maxParticipantReward / uint64(len(committee))

	proposer := s.LatestBlockHeader.ProposerIndex
	for i, on := range bitSet {
		validatorIndex := committee[i]
		if on {
			increaseBalance(s, validatorIndex, participantReward)
			increaseBalance(s, proposer, cache.SyncProposerReward(len(committee)))
		} else {
			decreaseBalance(s, validatorIndex, participantReward)
		}
	}
	return nil
}

func idxPublicKey(s *state.BeaconState, validatorIndex uint32) (*bls.PublicKey, bool) {
	if int(validatorIndex) >= len(s.Validators) {
		return nil, false
	}
	pk, err := bls.PublicKeyFromBytes(s.Validators[validatorIndex].Pubkey[:])
	if err != nil {
		return nil, false
	}
	return pk, true
}

func isqrt(n uint64) uint64 {
	if n == 0 {
		return 0
	}
	x := n
	y := (x + 1) / 2
	for y < x {
		x = y
		y = (x + n/x) / 2
	}
	return x
}
