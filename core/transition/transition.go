// Package transition implements the top-level StateTransition driver (spec
// §2): advancing slots one at a time, running process_epoch on every epoch
// boundary crossed, applying a block's per-block operations, and dispatching
// the fork-upgrade functions when a slot crosses a scheduled fork epoch.
package transition

import (
	"context"

	"github.com/pkg/errors"
	"go.opencensus.io/trace"

	"github.com/eth2-core/beacon-engine/config/params"
	"github.com/eth2-core/beacon-engine/core/blocks"
	"github.com/eth2-core/beacon-engine/core/epoch"
	"github.com/eth2-core/beacon-engine/core/helpers"
	"github.com/eth2-core/beacon-engine/core/pubkeyindex"
	"github.com/eth2-core/beacon-engine/core/state"
	bserrors "github.com/eth2-core/beacon-engine/errors"
)

// CacheBuilder resolves the EpochCache a given epoch's processing needs.
// Building one requires shuffling data this package does not itself own
// (core/helpers.EpochShuffling is computed from the active-validator set
// and RANDAO history by the caller's cache-management layer); callers
// supply a builder rather than this package reaching into state internals
// it has no shuffling algorithm of its own to recompute.
type CacheBuilder func(s *state.BeaconState, epochNum uint64) (*helpers.EpochCache, error)

// Options carries the four runtime flags StateTransition recognizes (spec
// §6): VerifyStateRoot gates the final post-state root comparison,
// VerifyProposer gates process_block_header's proposer-index assertion,
// VerifySignatures gates every BLS check (randao reveal, sync aggregate),
// and TransferCache documents that a caller replaying consecutive blocks
// should hand the same CacheBuilder-resolved EpochCache across calls
// instead of rebuilding it from scratch each time — this package has no
// cache of its own to transfer, so the flag is advisory to the caller
// rather than plumbed through here.
type Options struct {
	VerifyStateRoot  bool
	VerifyProposer   bool
	VerifySignatures bool
	TransferCache    bool
}

// DefaultOptions returns the spec-mandated defaults: verify everything
// except signatures (a replaying caller that already trusts its input
// history turns VerifySignatures on explicitly).
func DefaultOptions() Options {
	return Options{VerifyStateRoot: true, VerifyProposer: true, TransferCache: true}
}

// ProcessSlots advances s from its current slot to targetSlot, running
// process_slot's single-slot bookkeeping (state-root backfill into
// block_roots/state_roots, and latest_block_header.state_root backfill) for
// every slot from the current one up to but not including targetSlot, and
// process_epoch at every epoch boundary crossed; s.Slot ends at targetSlot
// (spec §4.8 process_slot / §2's slot-advance loop).
func ProcessSlots(ctx context.Context, s *state.BeaconState, cfg *params.BeaconChainConfig, cacheFor CacheBuilder, targetSlot uint64) error {
	ctx, span := trace.StartSpan(ctx, "beacon-engine.transition.ProcessSlots")
	defer span.End()

	if targetSlot <= s.Slot {
		return bserrors.ErrBlockSlotMismatch
	}
	for s.Slot < targetSlot {
		if err := processSlot(s); err != nil {
			return err
		}
		s.Slot++
		if (s.Slot)%cfg.SlotsPerEpoch == 0 {
			cache, err := cacheFor(s, s.Epoch())
			if err != nil {
				return errors.Wrap(err, "build epoch cache")
			}
			if err := epoch.ProcessEpoch(s, cfg, cache); err != nil {
				return errors.Wrap(err, "process epoch")
			}
			upgradeAtForkBoundary(s, cfg)
		}
	}
	return nil
}

// processSlot runs the single-slot bookkeeping process_slot performs before
// the slot counter advances: cache the pre-advance state root into
// state_roots, and (lazily) the block root once latest_block_header is
// filled in by the next process_block_header call.
func processSlot(s *state.BeaconState) error {
	s.Commit()
	root := s.HashTreeRoot()
	idx := s.Slot % uint64(len(s.StateRoots))
	s.StateRoots[idx] = root

	if s.LatestBlockHeader.StateRoot == zero32 {
		s.LatestBlockHeader.StateRoot = root
	}
	blockIdx := s.Slot % uint64(len(s.BlockRoots))
	s.BlockRoots[blockIdx] = s.LatestBlockHeader.HashTreeRoot()
	return nil
}

var zero32 [32]byte

// upgradeAtForkBoundary dispatches the fork-upgrade function for the fork
// whose scheduled epoch the state just reached. Each upgrade is a one-shot,
// idempotent no-op once s.Fork already reflects the target fork (callers may
// run StateTransition repeatedly past a boundary without double-upgrading).
func upgradeAtForkBoundary(s *state.BeaconState, cfg *params.BeaconChainConfig) {
	epochNum := s.Epoch()
	switch {
	case s.Fork == params.Phase0 && epochNum == cfg.AltairForkEpoch:
		UpgradeToAltair(s, cfg)
	case s.Fork == params.Altair && epochNum == cfg.BellatrixForkEpoch:
		UpgradeToBellatrix(s, cfg)
	case s.Fork == params.Bellatrix && epochNum == cfg.CapellaForkEpoch:
		UpgradeToCapella(s, cfg)
	case s.Fork == params.Capella && epochNum == cfg.DenebForkEpoch:
		UpgradeToDeneb(s, cfg)
	case s.Fork == params.Deneb && epochNum == cfg.ElectraForkEpoch:
		UpgradeToElectra(s, cfg)
	case s.Fork == params.Electra && epochNum == cfg.FuluForkEpoch:
		UpgradeToFulu(s, cfg)
	}
}

// UpgradeToAltair allocates the Altair-only fields a phase0 state lacks:
// participation byte arrays sized to the validator set, inactivity scores,
// and a zeroed sync committee pair (a real deployment replaces these with
// the freshly computed committee; spec §4.9 names the upgrade functions as
// one-shot migrations run once at the fork boundary).
func UpgradeToAltair(s *state.BeaconState, cfg *params.BeaconChainConfig) {
	n := len(s.Validators)
	s.PreviousEpochParticipation = make([]byte, n)
	s.CurrentEpochParticipation = make([]byte, n)
	s.InactivityScores = make([]uint64, n)
	s.CurrentSyncCommittee = &state.SyncCommittee{}
	s.NextSyncCommittee = &state.SyncCommittee{}
	s.Fork = params.Altair
}

// UpgradeToBellatrix installs a zeroed execution payload header; the first
// post-merge block supplies the real one via process_execution_payload.
func UpgradeToBellatrix(s *state.BeaconState, cfg *params.BeaconChainConfig) {
	s.LatestExecutionPayloadHeader = zero32
	s.Fork = params.Bellatrix
}

// UpgradeToCapella initializes the withdrawal-related counters Capella
// introduces.
func UpgradeToCapella(s *state.BeaconState, cfg *params.BeaconChainConfig) {
	s.NextWithdrawalIndex = 0
	s.NextWithdrawalValidatorIndex = 0
	s.HistoricalSummaries = nil
	s.Fork = params.Capella
}

// UpgradeToDeneb is a no-op beyond the fork marker: Deneb adds
// blob_kzg_commitments at the block-body level, not new state fields.
func UpgradeToDeneb(s *state.BeaconState, cfg *params.BeaconChainConfig) {
	s.Fork = params.Deneb
}

// UpgradeToElectra allocates the Electra-only pending queues and
// churn-consumption counters.
func UpgradeToElectra(s *state.BeaconState, cfg *params.BeaconChainConfig) {
	s.DepositRequestsStartIndex = 0
	s.DepositBalanceToConsume = 0
	s.ExitBalanceToConsume = 0
	s.EarliestExitEpoch = s.Epoch()
	s.ConsolidationBalanceToConsume = 0
	s.EarliestConsolidationEpoch = s.Epoch()
	s.PendingDeposits = nil
	s.PendingPartialWithdrawals = nil
	s.PendingConsolidations = nil
	s.Fork = params.Electra
}

// UpgradeToFulu allocates the proposer lookahead window Fulu introduces,
// filled by the next process_epoch's proposer_lookahead stage.
func UpgradeToFulu(s *state.BeaconState, cfg *params.BeaconChainConfig) {
	s.ProposerLookahead = make([]uint32, (cfg.MinSeedLookahead+1)*cfg.SlotsPerEpoch)
	s.Fork = params.Fulu
}

// StateTransition applies one signed block to s: advances slots up to the
// block's slot (running epoch processing at any crossed boundary), verifies
// and applies process_block_header, then runs every per-block stage in
// order (spec §2/§4.8). verifySignatures controls whether RANDAO/sync-
// aggregate BLS checks run, so callers replaying trusted history can skip
// them for speed.
func StateTransition(ctx context.Context, s *state.BeaconState, cfg *params.BeaconChainConfig, idx *pubkeyindex.Index, cacheFor CacheBuilder, signed blocks.SignedBeaconBlock, opts Options) error {
	ctx, span := trace.StartSpan(ctx, "beacon-engine.transition.StateTransition")
	defer span.End()

	block := signed.Block()

	if err := ProcessSlots(ctx, s, cfg, cacheFor, block.Slot); err != nil {
		return errors.Wrap(err, "process slots")
	}

	cache, err := cacheFor(s, s.Epoch())
	if err != nil {
		return errors.Wrap(err, "build epoch cache")
	}

	if err := blocks.ProcessBlockHeader(s, cfg, cache, block, opts.VerifyProposer); err != nil {
		return errors.Wrap(err, "process block header")
	}
	if err := blocks.ProcessRandao(s, idx, cfg, block, opts.VerifySignatures); err != nil {
		return errors.Wrap(err, "process randao")
	}
	blocks.ProcessEth1Data(s, cfg, block.Body.Eth1Data)
	if err := blocks.ProcessOperations(s, cfg, idx, block.Body); err != nil {
		return errors.Wrap(err, "process operations")
	}
	if s.Fork.Gte(params.Altair) && block.Body.SyncAggregate != nil {
		previousRoot := s.BlockRoots[(s.Slot-1)%uint64(len(s.BlockRoots))]
		if err := blocks.ProcessSyncAggregate(s, cfg, cache, *block.Body.SyncAggregate, previousRoot, opts.VerifySignatures); err != nil {
			return errors.Wrap(err, "process sync aggregate")
		}
	}
	if s.Fork.Gte(params.Bellatrix) && block.Body.ExecutionPayload != nil {
		if err := blocks.ProcessExecutionPayload(s, cfg, s.GenesisTime, block.Body); err != nil {
			return errors.Wrap(err, "process execution payload")
		}
	}

	s.Commit()
	if opts.VerifyStateRoot && block.StateRoot != s.HashTreeRoot() {
		return bserrors.ErrPostStateMismatch
	}
	return nil
}

// IsWithinWeakSubjectivityPeriod reports whether a checkpoint sync anchored
// at checkpointEpoch is still safe to bootstrap from at currentEpoch, given
// the active validator count and total balance observed at the checkpoint
// (spec §9's weak-subjectivity Open Question, resolved here to a simplified
// window rather than the full consensus-spec formula: the period scales with
// the active set size and shrinks as average effective balance falls below
// the maximum).
func IsWithinWeakSubjectivityPeriod(cfg *params.BeaconChainConfig, checkpointEpoch, currentEpoch, activeValidatorCount uint64, averageEffectiveBalance uint64) bool {
	if currentEpoch < checkpointEpoch || activeValidatorCount == 0 {
		return false
	}

	// Base window plus a churn-bounded term: the fewer validators the churn
	// limit lets exit per epoch relative to the active set, the longer it
	// safely takes an attacker to reorganize finality from a stale
	// checkpoint. Scaled down when average effective balance sits below
	// the maximum, since a lighter-weight validator set is cheaper to
	// overtake sooner.
	const baseWSPeriod = 256

	churn := activationChurnLimit(cfg, activeValidatorCount)
	if churn == 0 {
		churn = 1
	}
	wsPeriod := baseWSPeriod + activeValidatorCount/churn

	balanceRatio := averageEffectiveBalance * 100 / cfg.MaxEffectiveBalance
	if balanceRatio < 100 {
		wsPeriod = wsPeriod * balanceRatio / 100
	}

	return currentEpoch <= checkpointEpoch+wsPeriod
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
