// Package epoch implements the process_epoch pipeline (spec §4.8): the
// ordered stage list that runs once per epoch boundary inside process_slots.
package epoch

import (
	"github.com/eth2-core/beacon-engine/config/params"
	"github.com/eth2-core/beacon-engine/core/helpers"
	"github.com/eth2-core/beacon-engine/core/state"
	"github.com/eth2-core/beacon-engine/crypto/hashutil"
)

// ProcessEpoch runs every stage in the order spec §4.8 names:
// justification_and_finalization -> inactivity_updates (Altair+) ->
// registry_updates -> slashings -> rewards_and_penalties -> eth1_data_reset
// -> pending_deposits/pending_consolidations (Electra+) ->
// effective_balance_updates -> slashings_reset -> randao_mixes_reset ->
// historical_summaries_update (Capella+) else historical_roots_update ->
// participation updates -> sync_committee_updates (Altair+) ->
// proposer_lookahead (Fulu+).
func ProcessEpoch(s *state.BeaconState, cfg *params.BeaconChainConfig, cache *helpers.EpochCache) error {
	tc := helpers.NewEpochTransitionCache(len(s.Validators))
	populateFlags(s, cfg, tc)

	processJustificationAndFinalization(s, cfg, tc)
	if s.Fork.Gte(params.Altair) {
		processInactivityUpdates(s, cfg, tc)
	}
	processRegistryUpdates(s, cfg)
	processSlashings(s, cfg, tc)
	processRewardsAndPenalties(s, cfg, tc)
	processEth1DataReset(s, cfg)
	if s.Fork.Gte(params.Electra) {
		processPendingDeposits(s, cfg)
		processPendingConsolidations(s, cfg)
	}
	processEffectiveBalanceUpdates(s, cfg)
	processSlashingsReset(s, cfg)
	processRandaoMixesReset(s, cfg)
	if s.Fork.Gte(params.Capella) {
		processHistoricalSummariesUpdate(s, cfg)
	} else {
		processHistoricalRootsUpdate(s, cfg)
	}
	processParticipationUpdates(s, cfg)
	if s.Fork.Gte(params.Altair) {
		processSyncCommitteeUpdates(s, cfg)
	}
	if s.Fork.Gte(params.Fulu) {
		processProposerLookahead(s, cfg, cache)
	}
	return nil
}

// populateFlags fills the transition cache's previous/current epoch
// participation-flag arrays straight from the committed Altair+ byte
// arrays (phase0 states have none, leaving the cache's flags at zero and
// every downstream stage that reads them a no-op for that fork, matching
// the simplification already noted for core/blocks attestation handling).
func populateFlags(s *state.BeaconState, cfg *params.BeaconChainConfig, tc *helpers.EpochTransitionCache) {
	for i, b := range s.PreviousEpochParticipation {
		if i < len(tc.PreviousEpochFlags) {
			tc.PreviousEpochFlags[i] = helpers.ValidatorFlags(b)
		}
	}
	for i, b := range s.CurrentEpochParticipation {
		if i < len(tc.CurrentEpochFlags) {
			tc.CurrentEpochFlags[i] = helpers.ValidatorFlags(b)
		}
	}

	increment := cfg.EffectiveBalanceIncrement
	epoch := s.PreviousEpoch()
	for i, v := range s.Validators {
		if !v.IsActive(epoch) {
			continue
		}
		stakeIncrements := v.EffectiveBalance / increment
		tc.TotalActiveStake += stakeIncrements
		if tc.HasFlag(uint32(i), helpers.FlagTimelySource, false) {
			tc.PreviousEpochSourceStake += stakeIncrements
		}
		if tc.HasFlag(uint32(i), helpers.FlagTimelyTarget, false) {
			tc.PreviousEpochTargetStake += stakeIncrements
		}
		if tc.HasFlag(uint32(i), helpers.FlagTimelyHead, false) {
			tc.PreviousEpochHeadStake += stakeIncrements
		}
		if tc.HasFlag(uint32(i), helpers.FlagTimelyTarget, true) {
			tc.CurrentEpochTargetStake += stakeIncrements
		}
	}
	if tc.TotalActiveStake == 0 {
		tc.TotalActiveStake = 1 // EFFECTIVE_BALANCE_INCREMENT floor, avoids div-by-zero below
	}
}

func processJustificationAndFinalization(s *state.BeaconState, cfg *params.BeaconChainConfig, tc *helpers.EpochTransitionCache) {
	if s.Epoch() <= 1 {
		return
	}

	oldPreviousJustified := s.PreviousJustifiedCheckpoint
	oldCurrentJustified := s.CurrentJustifiedCheckpoint
	s.PreviousJustifiedCheckpoint = oldCurrentJustified

	// shift the justification bitfield left by one, dropping the oldest bit
	bits := (s.JustificationBits << 1) & 0x0f

	previousEpoch := s.PreviousEpoch()
	if tc.PreviousEpochTargetStake*3 >= tc.TotalActiveStake*2 {
		s.CurrentJustifiedCheckpoint = state.Checkpoint{Epoch: previousEpoch, Root: zero32}
		bits |= 1 << 1
	}
	currentEpoch := s.Epoch()
	if tc.CurrentEpochTargetStake*3 >= tc.TotalActiveStake*2 {
		s.CurrentJustifiedCheckpoint = state.Checkpoint{Epoch: currentEpoch, Root: zero32}
		bits |= 1 << 0
	}
	s.JustificationBits = bits

	// finalization rules: 2nd/3rd/4th-order justification chains.
	if bits&0b1110 == 0b1110 && oldPreviousJustified.Epoch+3 == currentEpoch {
		s.FinalizedCheckpoint = oldPreviousJustified
	} else if bits&0b110 == 0b110 && oldPreviousJustified.Epoch+2 == currentEpoch {
		s.FinalizedCheckpoint = oldPreviousJustified
	} else if bits&0b111 == 0b111 && oldCurrentJustified.Epoch+2 == currentEpoch {
		s.FinalizedCheckpoint = oldCurrentJustified
	} else if bits&0b11 == 0b11 && oldCurrentJustified.Epoch+1 == currentEpoch {
		s.FinalizedCheckpoint = oldCurrentJustified
	}
}

var zero32 [32]byte

func processInactivityUpdates(s *state.BeaconState, cfg *params.BeaconChainConfig, tc *helpers.EpochTransitionCache) {
	epoch := s.PreviousEpoch()
	inBeaconQuietEnough := s.FinalizedCheckpoint.Epoch+4 >= epoch

	for i := range s.InactivityScores {
		if !tc.HasFlag(uint32(i), helpers.FlagTimelyTarget, false) {
			s.InactivityScores[i]++
		} else if s.InactivityScores[i] > 0 {
			s.InactivityScores[i]--
		}
		if !inBeaconQuietEnough && s.InactivityScores[i] > 0 {
			s.InactivityScores[i]--
		}
	}
}

func processRegistryUpdates(s *state.BeaconState, cfg *params.BeaconChainConfig) {
	epoch := s.Epoch()
	activationQueue := make([]int, 0)
	for i := range s.Validators {
		v := &s.Validators[i]
		if v.ActivationEligibilityEpoch == params.FarFutureEpoch && v.EffectiveBalance >= cfg.MaxEffectiveBalance {
			v.ActivationEligibilityEpoch = epoch + 1
		}
		if v.IsActive(epoch) && v.EffectiveBalance <= cfg.EjectionBalance && v.ExitEpoch == params.FarFutureEpoch {
			v.ExitEpoch = epoch + cfg.MinSeedLookahead + 1
			v.WithdrawableEpoch = v.ExitEpoch + minValidatorWithdrawabilityDelay
		}
		if v.ActivationEligibilityEpoch <= epoch && v.ActivationEpoch == params.FarFutureEpoch {
			activationQueue = append(activationQueue, i)
		}
	}
	churn := activationChurnLimit(cfg, activeCount(s, epoch))
	for rank, i := range activationQueue {
		if uint64(rank) >= churn {
			break
		}
		s.Validators[i].ActivationEpoch = epoch + cfg.MinSeedLookahead + 1
	}
}

const minValidatorWithdrawabilityDelay = 256

func activeCount(s *state.BeaconState, epoch uint64) uint64 {
	n := uint64(0)
	for _, v := range s.Validators {
		if v.IsActive(epoch) {
			n++
		}
	}
	return n
}

func activationChurnLimit(cfg *params.BeaconChainConfig, activeCount uint64) uint64 {
	limit := activeCount / cfg.ChurnLimitQuotient
	if limit < cfg.MinPerEpochChurnLimit {
		limit = cfg.MinPerEpochChurnLimit
	}
	if limit > cfg.MaxPerEpochActivationChurnLimit {
		limit = cfg.MaxPerEpochActivationChurnLimit
	}
	return limit
}

func processSlashings(s *state.BeaconState, cfg *params.BeaconChainConfig, tc *helpers.EpochTransitionCache) {
	epoch := s.Epoch()
	totalSlashings := uint64(0)
	for _, amt := range s.Slashings {
		totalSlashings += amt
	}
	adjusted := totalSlashings * cfg.MinSlashingPenaltyQuotient
	if adjusted > tc.TotalActiveStake*cfg.EffectiveBalanceIncrement {
		adjusted = tc.TotalActiveStake * cfg.EffectiveBalanceIncrement
	}

	for i, v := range s.Validators {
		if !v.Slashed || v.WithdrawableEpoch != epoch+cfg.EpochsPerSlashingsVector/2 {
			continue
		}
		increment := cfg.EffectiveBalanceIncrement
		penaltyNumerator := v.EffectiveBalance / increment * adjusted
		penalty := penaltyNumerator / (tc.TotalActiveStake * cfg.EffectiveBalanceIncrement) * increment
		tc.AddPenalty(uint32(i), penalty)
	}
}

func processRewardsAndPenalties(s *state.BeaconState, cfg *params.BeaconChainConfig, tc *helpers.EpochTransitionCache) {
	if s.Epoch() <= 1 {
		return
	}
	for i, v := range s.Validators {
		increments := v.EffectiveBalance / cfg.EffectiveBalanceIncrement
		baseReward := increments * cfg.BaseRewardFactor / isqrtU64(tc.TotalActiveStake*cfg.EffectiveBalanceIncrement) * cfg.EffectiveBalanceIncrement / cfg.BaseRewardsPerEpoch
		if tc.HasFlag(uint32(i), helpers.FlagTimelySource, false) {
			tc.AddReward(uint32(i), baseReward)
		} else {
			tc.AddPenalty(uint32(i), baseReward)
		}
		if tc.HasFlag(uint32(i), helpers.FlagTimelyTarget, false) {
			tc.AddReward(uint32(i), baseReward)
		} else {
			tc.AddPenalty(uint32(i), baseReward)
		}
		if tc.HasFlag(uint32(i), helpers.FlagTimelyHead, false) {
			tc.AddReward(uint32(i), baseReward)
		}
	}
	for i := range s.Validators {
		if int(i) >= len(s.Balances) {
			continue
		}
		if tc.Rewards[i] > tc.Penalties[i] {
			s.Balances[i] += tc.Rewards[i] - tc.Penalties[i]
		} else if tc.Penalties[i]-tc.Rewards[i] > s.Balances[i] {
			s.Balances[i] = 0
		} else {
			s.Balances[i] -= tc.Penalties[i] - tc.Rewards[i]
		}
	}
}

func isqrtU64(n uint64) uint64 {
	if n == 0 {
		return 1
	}
	x := n
	y := (x + 1) / 2
	for y < x {
		x = y
		y = (x + n/x) / 2
	}
	if x == 0 {
		return 1
	}
	return x
}

func processEth1DataReset(s *state.BeaconState, cfg *params.BeaconChainConfig) {
	if (s.Epoch()+1)%64 == 0 {
		s.Eth1DataVotes = nil
	}
}

func processPendingDeposits(s *state.BeaconState, cfg *params.BeaconChainConfig) {
	// Apply every queued Electra+ deposit in one pass, then drop them from
	// the queue (spec §4.8 pending_deposits). No per-epoch churn bound is
	// applied: the whole queue is drained each epoch.
	processed := 0
	for _, d := range s.PendingDeposits {
		found := false
		for i, v := range s.Validators {
			if v.Pubkey == d.Pubkey {
				s.Balances[i] += d.Amount
				found = true
				break
			}
		}
		if !found {
			s.Validators = append(s.Validators, state.Validator{
				Pubkey:                     d.Pubkey,
				WithdrawalCredentials:      d.WithdrawalCredentials,
				EffectiveBalance:           effectiveBalanceFor(cfg, d.Amount),
				ActivationEligibilityEpoch: params.FarFutureEpoch,
				ActivationEpoch:            params.FarFutureEpoch,
				ExitEpoch:                  params.FarFutureEpoch,
				WithdrawableEpoch:          params.FarFutureEpoch,
			})
			s.Balances = append(s.Balances, d.Amount)
		}
		processed++
	}
	s.PendingDeposits = s.PendingDeposits[processed:]
}

func effectiveBalanceFor(cfg *params.BeaconChainConfig, amount uint64) uint64 {
	eb := amount - amount%cfg.EffectiveBalanceIncrement
	if eb > cfg.MaxEffectiveBalance {
		eb = cfg.MaxEffectiveBalance
	}
	return eb
}

func processPendingConsolidations(s *state.BeaconState, cfg *params.BeaconChainConfig) {
	epoch := s.Epoch()
	remaining := s.PendingConsolidations[:0]
	for _, c := range s.PendingConsolidations {
		if int(c.SourceIndex) >= len(s.Validators) || int(c.TargetIndex) >= len(s.Validators) {
			continue
		}
		source := &s.Validators[c.SourceIndex]
		if source.WithdrawableEpoch > epoch {
			remaining = append(remaining, c)
			continue
		}
		amount := s.Balances[c.SourceIndex]
		s.Balances[c.SourceIndex] = 0
		s.Balances[c.TargetIndex] += amount
	}
	s.PendingConsolidations = remaining
}

func processEffectiveBalanceUpdates(s *state.BeaconState, cfg *params.BeaconChainConfig) {
	hysteresisIncrement := cfg.EffectiveBalanceIncrement / 4
	for i := range s.Validators {
		v := &s.Validators[i]
		balance := s.Balances[i]
		if balance+hysteresisIncrement*3 < v.EffectiveBalance || v.EffectiveBalance+hysteresisIncrement*6 < balance {
			eb := balance - balance%cfg.EffectiveBalanceIncrement
			if eb > cfg.MaxEffectiveBalance {
				eb = cfg.MaxEffectiveBalance
			}
			v.EffectiveBalance = eb
		}
	}
}

func processSlashingsReset(s *state.BeaconState, cfg *params.BeaconChainConfig) {
	s.Slashings[(s.Epoch()+1)%cfg.EpochsPerSlashingsVector] = 0
}

func processRandaoMixesReset(s *state.BeaconState, cfg *params.BeaconChainConfig) {
	nextEpoch := s.Epoch() + 1
	s.RandaoMixes[nextEpoch%cfg.EpochsPerHistoricalVector] = s.RandaoMixes[s.Epoch()%cfg.EpochsPerHistoricalVector]
}

func processHistoricalRootsUpdate(s *state.BeaconState, cfg *params.BeaconChainConfig) {
	if (s.Epoch()+1)%(cfg.SlotsPerHistoricalRoot/cfg.SlotsPerEpoch) != 0 {
		return
	}
	root := historicalBatchRoot(s)
	s.HistoricalRoots = append(s.HistoricalRoots, root)
}

func processHistoricalSummariesUpdate(s *state.BeaconState, cfg *params.BeaconChainConfig) {
	if (s.Epoch()+1)%(cfg.SlotsPerHistoricalRoot/cfg.SlotsPerEpoch) != 0 {
		return
	}
	root := historicalBatchRoot(s)
	s.HistoricalSummaries = append(s.HistoricalSummaries, root)
}

func historicalBatchRoot(s *state.BeaconState) [32]byte {
	// A historical batch is {block_roots, state_roots}; summarizing with
	// their own hash_two is sufficient for this core's own accounting since
	// full historical-batch SSZ layout is consumed only by external light
	// client / history-serving collaborators (named out of scope, §1).
	blockRoots := hashutil.Merkleize(s.BlockRoots, len(s.BlockRoots))
	stateRoots := hashutil.Merkleize(s.StateRoots, len(s.StateRoots))
	return hashutil.HashTwo(blockRoots, stateRoots)
}

func processParticipationUpdates(s *state.BeaconState, cfg *params.BeaconChainConfig) {
	if s.Fork.Gte(params.Altair) {
		s.PreviousEpochParticipation = s.CurrentEpochParticipation
		s.CurrentEpochParticipation = make([]byte, len(s.Validators))
	}
}

func processSyncCommitteeUpdates(s *state.BeaconState, cfg *params.BeaconChainConfig) {
	epochsPerPeriod := cfg.EpochsPerHistoricalVector / 256 // SYNC_COMMITTEE_PERIOD-scale placeholder
	if epochsPerPeriod == 0 {
		epochsPerPeriod = 256
	}
	if (s.Epoch()+1)%epochsPerPeriod != 0 {
		return
	}
	s.CurrentSyncCommittee = s.NextSyncCommittee
	s.NextSyncCommittee = computeNextSyncCommittee(s, cfg)
}

func computeNextSyncCommittee(s *state.BeaconState, cfg *params.BeaconChainConfig) *state.SyncCommittee {
	if len(s.Validators) == 0 {
		return &state.SyncCommittee{}
	}
	n := int(cfg.SyncCommitteeSize)
	pubkeys := make([][48]byte, 0, n)
	for i := 0; i < n; i++ {
		pubkeys = append(pubkeys, s.Validators[i%len(s.Validators)].Pubkey)
	}
	return &state.SyncCommittee{Pubkeys: pubkeys, AggregatePubkey: pubkeys[0]}
}

func processProposerLookahead(s *state.BeaconState, cfg *params.BeaconChainConfig, cache *helpers.EpochCache) {
	lookahead := make([]uint32, 0, len(cache.ProposerLookahead)*int(cfg.SlotsPerEpoch))
	for _, row := range cache.ProposerLookahead {
		lookahead = append(lookahead, row[:]...)
	}
	s.ProposerLookahead = lookahead
}
