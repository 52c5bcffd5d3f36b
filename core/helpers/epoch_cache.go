package helpers

import (
	"github.com/eth2-core/beacon-engine/config/params"
)

// SyncCommitteeIndexed is the indexed current sync committee EpochCache
// answers queries against (spec §3/§4.7).
type SyncCommitteeIndexed struct {
	ValidatorIndices []uint32
	AggregatePubkey  [48]byte
}

// EpochCache answers the O(1)-amortized queries block/epoch processing need
// (spec §4.7): proposer indices for the epoch's 32 slots, the Fulu+
// proposer lookahead window, the indexed sync committee, effective-balance
// increments, and churn limits.
type EpochCache struct {
	cfg *params.BeaconChainConfig

	Epoch    uint64
	Previous *EpochShuffling
	Current  *EpochShuffling
	Next     *EpochShuffling

	Proposers [32]uint32
	// ProposerLookahead holds MIN_SEED_LOOKAHEAD+1 epochs worth of 32-slot
	// proposer rows (Fulu+); index 0 is the current epoch's row.
	ProposerLookahead [][32]uint32

	SyncCommittee *SyncCommitteeIndexed

	EffectiveBalanceIncrements []uint16

	churnLimit           uint64
	activationChurnLimit uint64
}

// NewEpochCache builds a cache for the given epoch. proposers must already
// be resolved by the caller (proposer election needs effective balances and
// the current shuffling, both already in hand by the time EpochCache is
// built during process_epoch).
func NewEpochCache(cfg *params.BeaconChainConfig, epoch uint64, previous, current, next *EpochShuffling, proposers [32]uint32, effectiveBalances []uint64) *EpochCache {
	increments := make([]uint16, len(effectiveBalances))
	for i, b := range effectiveBalances {
		increments[i] = uint16(b / cfg.EffectiveBalanceIncrement)
	}
	activeCount := uint64(0)
	if current != nil {
		activeCount = uint64(len(current.ActiveIndices))
	}
	return &EpochCache{
		cfg:                        cfg,
		Epoch:                      epoch,
		Previous:                   previous,
		Current:                    current,
		Next:                       next,
		Proposers:                  proposers,
		EffectiveBalanceIncrements: increments,
		churnLimit:                 churnLimit(cfg, activeCount),
		activationChurnLimit:       activationChurnLimit(cfg, activeCount),
	}
}

func churnLimit(cfg *params.BeaconChainConfig, activeCount uint64) uint64 {
	limit := activeCount / cfg.ChurnLimitQuotient
	if limit < cfg.MinPerEpochChurnLimit {
		return cfg.MinPerEpochChurnLimit
	}
	return limit
}

func activationChurnLimit(cfg *params.BeaconChainConfig, activeCount uint64) uint64 {
	limit := churnLimit(cfg, activeCount)
	if limit > cfg.MaxPerEpochActivationChurnLimit {
		return cfg.MaxPerEpochActivationChurnLimit
	}
	return limit
}

// ChurnLimit returns the per-epoch exit churn limit for the active set this
// cache was built from.
func (c *EpochCache) ChurnLimit() uint64 { return c.churnLimit }

// ActivationChurnLimit returns the per-epoch activation churn limit.
func (c *EpochCache) ActivationChurnLimit() uint64 { return c.activationChurnLimit }

// GetBeaconProposer returns the elected proposer for slot, which must fall
// within this cache's epoch.
func (c *EpochCache) GetBeaconProposer(slot uint64) uint32 {
	return c.Proposers[slot%c.cfg.SlotsPerEpoch]
}

// GetProposerLookahead indexes into the precomputed Fulu+ lookahead window;
// offset 0 is the current epoch, offset i is i epochs ahead.
func (c *EpochCache) GetProposerLookahead(slot uint64, epochsAhead uint64) uint32 {
	if int(epochsAhead) >= len(c.ProposerLookahead) {
		return 0
	}
	return c.ProposerLookahead[epochsAhead][slot%c.cfg.SlotsPerEpoch]
}

// GetEffectiveBalanceIncrements returns the cached per-validator balance
// increments array.
func (c *EpochCache) GetEffectiveBalanceIncrements() []uint16 { return c.EffectiveBalanceIncrements }

// GetPreviousEpochShuffling, GetCurrentEpochShuffling, GetNextEpochShuffling
// expose the three reference-counted shufflings this cache holds shared
// ownership of (spec §4.7/§9's cyclic-sharing design note).
func (c *EpochCache) GetPreviousEpochShuffling() *EpochShuffling { return c.Previous }
func (c *EpochCache) GetCurrentEpochShuffling() *EpochShuffling  { return c.Current }
func (c *EpochCache) GetNextEpochShuffling() *EpochShuffling     { return c.Next }

// RotateSyncCommitteeIndexed installs a freshly indexed sync committee,
// e.g. after a sync-committee-period boundary (spec §4.7).
func (c *EpochCache) RotateSyncCommitteeIndexed(indices []uint32, aggregatePubkey [48]byte) {
	c.SyncCommittee = &SyncCommitteeIndexed{ValidatorIndices: indices, AggregatePubkey: aggregatePubkey}
}

// SyncProposerReward returns the proposer's reward share for a single sync
// committee participant bit, given the committee's total size. Block
// processing calls this once per set bit in the aggregate rather than
// computing a single end-of-aggregate lump sum, keeping the reward hook
// colocated with the participation bit that creates it.
func (c *EpochCache) SyncProposerReward(committeeSize int) uint64 {
	if committeeSize == 0 {
		return 0
	}
	totalActiveIncrements := uint64(0)
	for _, b := range c.EffectiveBalanceIncrements {
		totalActiveIncrements += uint64(b)
	}
	if totalActiveIncrements == 0 {
		return 0
	}
	totalBaseRewards := c.cfg.EffectiveBalanceIncrement * c.cfg.BaseRewardFactor * totalActiveIncrements / isqrt(totalActiveIncrements*c.cfg.EffectiveBalanceIncrement)
	maxParticipantReward := totalBaseRewards * c.cfg.WeightDenominator / (c.cfg.WeightDenominator + c.cfg.ProposerWeight) / c.cfg.SlotsPerEpoch
	participantReward := maxParticipantReward / uint64(committeeSize)
	return participantReward * c.cfg.ProposerWeight / (c.cfg.WeightDenominator - c.cfg.ProposerWeight)
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

// Rotate advances the epoch window: previous <- current, current <- next,
// next <- freshly supplied next shuffling. The caller is responsible for
// Ref-ing next before passing it in and for Unref-ing the returned stale
// previous shuffling once it has finished using it (spec §4.7's rotation
// rule; refcounting is the caller's to manage since EpochCache never blocks
// on cache eviction itself).
func (c *EpochCache) Rotate(nextEpoch uint64, next *EpochShuffling) (stalePrevious *EpochShuffling) {
	stalePrevious = c.Previous
	c.Previous = c.Current
	c.Current = c.Next
	c.Next = next
	c.Epoch = nextEpoch
	return stalePrevious
}
