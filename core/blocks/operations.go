package blocks

import (
	"github.com/eth2-core/beacon-engine/config/params"
	"github.com/eth2-core/beacon-engine/core/pubkeyindex"
	"github.com/eth2-core/beacon-engine/core/state"
	bserrors "github.com/eth2-core/beacon-engine/errors"
)

// ProcessOperations runs every per-block operation list in the order spec
// §4.8 names: proposer_slashings, attester_slashings, attestations,
// deposits, voluntary_exits, bls_to_execution_changes (Capella+), and the
// Electra+ execution_requests triad. It first asserts the block carries
// exactly the deposit count process_operations requires.
func ProcessOperations(s *state.BeaconState, cfg *params.BeaconChainConfig, idx *pubkeyindex.Index, body BeaconBlockBody) error {
	expectedDeposits := cfg.MaxDeposits
	if remaining := s.Eth1Data.DepositCount - s.Eth1DepositIndex; remaining < expectedDeposits {
		expectedDeposits = remaining
	}
	if uint64(len(body.Deposits)) != expectedDeposits {
		return bserrors.ErrInvalidDepositCount
	}

	for _, ps := range body.ProposerSlashings {
		if err := ProcessProposerSlashing(s, cfg, ps); err != nil {
			return err
		}
	}
	for _, as := range body.AttesterSlashings {
		if err := ProcessAttesterSlashing(s, cfg, as); err != nil {
			return err
		}
	}
	for _, att := range body.Attestations {
		if err := ProcessAttestation(s, cfg, att); err != nil {
			return err
		}
	}
	for _, d := range body.Deposits {
		ProcessDeposit(s, cfg, d)
	}
	for _, ve := range body.VoluntaryExits {
		if err := ProcessVoluntaryExit(s, cfg, ve); err != nil {
			return err
		}
	}
	if s.Fork.Gte(params.Capella) {
		for _, c := range body.BlsToExecutionChanges {
			if err := ProcessBlsToExecutionChange(s, c); err != nil {
				return err
			}
		}
	}
	if s.Fork.Gte(params.Electra) && body.ExecutionRequests != nil {
		processExecutionRequests(s, cfg, *body.ExecutionRequests)
	}
	return nil
}

// slashValidator applies the common slashing bookkeeping (spec: mark
// slashed, set withdrawable_epoch, move the effective balance into
// slashings, apply the immediate proposer/whistleblower reward split).
func slashValidator(s *state.BeaconState, cfg *params.BeaconChainConfig, slashedIndex uint32, whistleblowerIndex uint32) {
	v := &s.Validators[slashedIndex]
	epoch := s.Epoch()

	v.Slashed = true
	withdrawable := epoch + cfg.EpochsPerSlashingsVector
	if withdrawable > v.WithdrawableEpoch {
		v.WithdrawableEpoch = withdrawable
	}

	s.Slashings[epoch%cfg.EpochsPerSlashingsVector] += v.EffectiveBalance

	decreaseBalance(s, slashedIndex, v.EffectiveBalance/cfg.MinSlashingPenaltyQuotient)

	proposer := s.LatestBlockHeader.ProposerIndex
	whistleblowerReward := v.EffectiveBalance / cfg.WhistleblowerRewardQuotient
	proposerReward := whistleblowerReward * cfg.ProposerWeight / cfg.WeightDenominator
	increaseBalance(s, proposer, proposerReward)
	if whistleblowerIndex != proposer {
		increaseBalance(s, whistleblowerIndex, whistleblowerReward-proposerReward)
	}
}

func increaseBalance(s *state.BeaconState, index uint32, amount uint64) {
	if int(index) < len(s.Balances) {
		s.Balances[index] += amount
	}
}

func decreaseBalance(s *state.BeaconState, index uint32, amount uint64) {
	if int(index) >= len(s.Balances) {
		return
	}
	if s.Balances[index] < amount {
		s.Balances[index] = 0
		return
	}
	s.Balances[index] -= amount
}

// ProcessProposerSlashing validates two conflicting signed headers from the
// same proposer and slashes them.
func ProcessProposerSlashing(s *state.BeaconState, cfg *params.BeaconChainConfig, ps ProposerSlashing) error {
	h1, h2 := ps.Header1.Header, ps.Header2.Header
	if h1.Slot != h2.Slot || h1.ProposerIndex != h2.ProposerIndex || h1 == h2 {
		return bserrors.ErrBlockProposerIndexMismatch
	}
	if int(h1.ProposerIndex) >= len(s.Validators) {
		return bserrors.ErrIndexOutOfBounds
	}
	v := s.Validators[h1.ProposerIndex]
	if !v.IsSlashable(s.Epoch()) {
		return bserrors.ErrBlockProposerSlashed
	}
	slashValidator(s, cfg, h1.ProposerIndex, s.LatestBlockHeader.ProposerIndex)
	return nil
}

// ProcessAttesterSlashing slashes every index attesting in both of two
// slashable (double-vote or surround-vote) indexed attestations.
func ProcessAttesterSlashing(s *state.BeaconState, cfg *params.BeaconChainConfig, as AttesterSlashing) error {
	d1, d2 := as.Attestation1.Data, as.Attestation2.Data
	doubleVote := d1.Target.Epoch == d2.Target.Epoch && d1 != d2
	surroundVote := d1.Source.Epoch < d2.Source.Epoch && d2.Target.Epoch < d1.Target.Epoch
	if !doubleVote && !surroundVote {
		return bserrors.ErrInvalidSignature
	}

	set2 := make(map[uint32]bool, len(as.Attestation2.AttestingIndices))
	for _, i := range as.Attestation2.AttestingIndices {
		set2[i] = true
	}
	slashedAny := false
	epoch := s.Epoch()
	for _, i := range as.Attestation1.AttestingIndices {
		if !set2[i] {
			continue
		}
		if int(i) >= len(s.Validators) || !s.Validators[i].IsSlashable(epoch) {
			continue
		}
		slashValidator(s, cfg, i, s.LatestBlockHeader.ProposerIndex)
		slashedAny = true
	}
	if !slashedAny {
		return bserrors.ErrInvalidSignature
	}
	return nil
}

// ProcessAttestation records participation for every attesting validator
// (Altair+ participation-flag accounting) and applies the immediate
// base-reward-scaled reward. On a state without participation arrays
// (Phase0) the attestation is accepted and nothing is recorded.
func ProcessAttestation(s *state.BeaconState, cfg *params.BeaconChainConfig, att Attestation) error {
	if att.Data.Slot+cfg.SlotsPerEpoch < s.Slot {
		return bserrors.ErrInvalidSignature
	}

	participation := s.CurrentEpochParticipation
	if att.Data.Target.Epoch == s.PreviousEpoch() {
		participation = s.PreviousEpochParticipation
	}
	if participation == nil {
		return nil
	}

	flags := attestationFlags(s, cfg, att.Data)
	for i, bit := range att.AggregationBits {
		for b := 0; b < 8; b++ {
			if bit&(1<<uint(b)) == 0 {
				continue
			}
			index := i*8 + b
			if index >= len(participation) {
				continue
			}
			if participation[index]|flags != participation[index] {
				participation[index] |= flags
				rewardForFlags(s, cfg, uint32(index), flags)
			}
		}
	}
	return nil
}

// attestationFlags grants TIMELY_SOURCE/TARGET/HEAD by comparing the
// attestation's recorded roots against state.block_roots, matching
// get_attestation_participation_flag_indices: source requires an exact
// match against the justified checkpoint this epoch is voting relative to,
// target additionally requires the claimed target root to match the root
// actually recorded at the start of its epoch, and head additionally
// requires the claimed head root to match the root recorded at the
// attested slot. Each flag only applies if every flag before it also holds.
func attestationFlags(s *state.BeaconState, cfg *params.BeaconChainConfig, data AttestationData) byte {
	justified := s.CurrentJustifiedCheckpoint
	if data.Target.Epoch != s.Epoch() {
		justified = s.PreviousJustifiedCheckpoint
	}

	var flags byte
	matchingSource := data.Source == justified
	if !matchingSource {
		return 0
	}
	flags |= 1

	matchingTarget := data.Target.Root == blockRootAtSlot(s, data.Target.Epoch*cfg.SlotsPerEpoch)
	if !matchingTarget {
		return flags
	}
	flags |= 2

	if data.BeaconBlockRoot == blockRootAtSlot(s, data.Slot) {
		flags |= 4
	}
	return flags
}

// blockRootAtSlot reads state.block_roots[slot % SLOTS_PER_HISTORICAL_ROOT]
// (get_block_root_at_slot).
func blockRootAtSlot(s *state.BeaconState, slot uint64) [32]byte {
	if len(s.BlockRoots) == 0 {
		return [32]byte{}
	}
	return s.BlockRoots[slot%uint64(len(s.BlockRoots))]
}

func rewardForFlags(s *state.BeaconState, cfg *params.BeaconChainConfig, index uint32, flags byte) {
	if int(index) >= len(s.Validators) {
		return
	}
	baseReward := s.Validators[index].EffectiveBalance / cfg.EffectiveBalanceIncrement * cfg.BaseRewardFactor
	increaseBalance(s, index, baseReward/cfg.BaseRewardsPerEpoch)
}

// ProcessDeposit applies one deposit: increases an existing validator's
// balance, or appends a new validator when the pubkey is unseen.
func ProcessDeposit(s *state.BeaconState, cfg *params.BeaconChainConfig, d Deposit) {
	s.Eth1DepositIndex++

	for i, v := range s.Validators {
		if v.Pubkey == d.Data.Pubkey {
			increaseBalance(s, uint32(i), d.Data.Amount)
			return
		}
	}

	s.Validators = append(s.Validators, state.Validator{
		Pubkey:                     d.Data.Pubkey,
		WithdrawalCredentials:      d.Data.WithdrawalCredentials,
		EffectiveBalance:           effectiveBalanceFor(cfg, d.Data.Amount),
		ActivationEligibilityEpoch: params.FarFutureEpoch,
		ActivationEpoch:            params.FarFutureEpoch,
		ExitEpoch:                  params.FarFutureEpoch,
		WithdrawableEpoch:          params.FarFutureEpoch,
	})
	s.Balances = append(s.Balances, d.Data.Amount)
	if len(s.PreviousEpochParticipation) > 0 {
		s.PreviousEpochParticipation = append(s.PreviousEpochParticipation, 0)
		s.CurrentEpochParticipation = append(s.CurrentEpochParticipation, 0)
		s.InactivityScores = append(s.InactivityScores, 0)
	}
}

func effectiveBalanceFor(cfg *params.BeaconChainConfig, amount uint64) uint64 {
	eb := amount - amount%cfg.EffectiveBalanceIncrement
	if eb > cfg.MaxEffectiveBalance {
		eb = cfg.MaxEffectiveBalance
	}
	return eb
}

// ProcessVoluntaryExit initiates the named validator's exit, assigning the
// latest exit epoch already scheduled in the registry, or
// epoch + MIN_SEED_LOOKAHEAD + 1 if that is later. No per-epoch churn limit
// is applied to the exit queue.
func ProcessVoluntaryExit(s *state.BeaconState, cfg *params.BeaconChainConfig, ve SignedVoluntaryExit) error {
	idx := ve.Exit.ValidatorIndex
	if int(idx) >= len(s.Validators) {
		return bserrors.ErrIndexOutOfBounds
	}
	v := &s.Validators[idx]
	epoch := s.Epoch()
	if !v.IsActive(epoch) || v.ExitEpoch != params.FarFutureEpoch || epoch < ve.Exit.Epoch {
		return bserrors.ErrInvalidSignature
	}
	v.ExitEpoch = computeExitEpoch(s, cfg, epoch)
	v.WithdrawableEpoch = v.ExitEpoch + minValidatorWithdrawabilityDelay
	return nil
}

// minValidatorWithdrawabilityDelay is MIN_VALIDATOR_WITHDRAWABILITY_DELAY,
// a fixed consensus constant not otherwise parameterized in this config.
const minValidatorWithdrawabilityDelay = 256

func computeExitEpoch(s *state.BeaconState, cfg *params.BeaconChainConfig, epoch uint64) uint64 {
	maxExit := epoch + cfg.MinSeedLookahead + 1
	for _, v := range s.Validators {
		if v.ExitEpoch != params.FarFutureEpoch && v.ExitEpoch > maxExit {
			maxExit = v.ExitEpoch
		}
	}
	return maxExit
}

// ProcessBlsToExecutionChange rotates a validator's withdrawal credentials
// from the 0x00 BLS prefix to the 0x01 execution-address prefix (Capella+).
func ProcessBlsToExecutionChange(s *state.BeaconState, c SignedBlsToExecutionChange) error {
	idx := c.Change.ValidatorIndex
	if int(idx) >= len(s.Validators) {
		return bserrors.ErrIndexOutOfBounds
	}
	v := &s.Validators[idx]
	if v.WithdrawalCredentials[0] != 0x00 {
		return bserrors.ErrInvalidSignature
	}
	var newCreds [32]byte
	newCreds[0] = 0x01
	copy(newCreds[12:], c.Change.ToExecutionAddress[:])
	v.WithdrawalCredentials = newCreds
	return nil
}

// processExecutionRequests applies the Electra+ EL-originated request
// triad's consensus-side bookkeeping (queueing only; EL-side validation of
// the requests themselves is a named non-goal).
func processExecutionRequests(s *state.BeaconState, cfg *params.BeaconChainConfig, reqs ExecutionRequests) {
	for _, d := range reqs.Deposits {
		s.PendingDeposits = append(s.PendingDeposits, state.PendingDeposit{
			Pubkey:                d.Pubkey,
			WithdrawalCredentials: d.WithdrawalCredentials,
			Amount:                d.Amount,
			Signature:             d.Signature,
			Slot:                  s.Slot,
		})
	}
	for _, c := range reqs.Consolidations {
		sourceIdx, sourceOK := findValidatorByPubkeyPrefix(s, c.SourcePubkey)
		targetIdx, targetOK := findValidatorByPubkeyPrefix(s, c.TargetPubkey)
		if sourceOK && targetOK {
			s.PendingConsolidations = append(s.PendingConsolidations, state.PendingConsolidation{
				SourceIndex: sourceIdx,
				TargetIndex: targetIdx,
			})
		}
	}
	_ = cfg
}

func findValidatorByPubkeyPrefix(s *state.BeaconState, pk [48]byte) (uint32, bool) {
	for i, v := range s.Validators {
		if v.Pubkey == pk {
			return uint32(i), true
		}
	}
	return 0, false
}
