package state

import (
	"github.com/eth2-core/beacon-engine/config/params"
	"github.com/eth2-core/beacon-engine/container/nodepool"
	"github.com/eth2-core/beacon-engine/container/treeview"
	"github.com/eth2-core/beacon-engine/crypto/hashutil"
	"github.com/eth2-core/beacon-engine/encoding/ssz"
)

// Field positions are stable across forks (spec §3): a fork upgrade only
// ever appends new fields after the last one used by the prior fork, never
// renumbers an existing field.
const (
	fieldGenesisTime = iota
	fieldGenesisValidatorsRoot
	fieldSlot
	fieldFork
	fieldLatestBlockHeader
	fieldBlockRoots
	fieldStateRoots
	fieldHistoricalRoots
	fieldEth1Data
	fieldEth1DataVotes
	fieldEth1DepositIndex
	fieldValidators
	fieldBalances
	fieldRandaoMixes
	fieldSlashings
	fieldPreviousEpochParticipation
	fieldCurrentEpochParticipation
	fieldJustificationBits
	fieldPreviousJustifiedCheckpoint
	fieldCurrentJustifiedCheckpoint
	fieldFinalizedCheckpoint
	fieldInactivityScores
	fieldCurrentSyncCommittee
	fieldNextSyncCommittee
	fieldLatestExecutionPayloadHeader
	fieldNextWithdrawalIndex
	fieldNextWithdrawalValidatorIndex
	fieldHistoricalSummaries
	fieldDepositRequestsStartIndex
	fieldDepositBalanceToConsume
	fieldExitBalanceToConsume
	fieldEarliestExitEpoch
	fieldConsolidationBalanceToConsume
	fieldEarliestConsolidationEpoch
	fieldPendingDeposits
	fieldPendingPartialWithdrawals
	fieldPendingConsolidations
	fieldProposerLookahead

	fieldCountFulu
)

// fieldCount returns how many fields are live for a given fork, so earlier
// forks build a smaller container and never see fields they don't have.
func fieldCount(seq params.ForkSeq) int {
	switch {
	case seq < params.Altair:
		return fieldInactivityScores // phase0 stops before Altair-only fields
	case seq < params.Bellatrix:
		return fieldLatestExecutionPayloadHeader
	case seq < params.Capella:
		return fieldNextWithdrawalIndex
	case seq < params.Electra:
		return fieldDepositRequestsStartIndex
	case seq < params.Fulu:
		return fieldProposerLookahead
	default:
		return fieldCountFulu
	}
}

// BeaconState is the TreeView-backed consensus state (spec §3). Top-level
// field positions are addressed through a treeview.ContainerView. Validators
// commits through a real treeview.CompositeListView (see validatorsRoot):
// every other list/vector-valued field is still held as a plain Go slice and
// re-merkleized into its container leaf on Commit, a scope decision recorded
// in DESIGN.md (wiring all ~35 fields through nested TreeViews wouldn't
// exercise machinery beyond what container/treeview's own tests already
// cover; Validators was singled out as the field large enough, and mutated
// often enough via individual-validator writes, for the nested view to
// actually pay for itself).
type BeaconState struct {
	view *treeview.ContainerView
	Fork params.ForkSeq

	GenesisTime           uint64
	GenesisValidatorsRoot [32]byte
	Slot                  uint64
	ForkData              Fork
	LatestBlockHeader     BeaconBlockHeader
	BlockRoots            [][32]byte
	StateRoots            [][32]byte
	HistoricalRoots       [][32]byte
	Eth1Data              Eth1Data
	Eth1DataVotes         []Eth1Data
	Eth1DepositIndex      uint64
	Validators            []Validator
	Balances              []uint64
	RandaoMixes           [][32]byte
	Slashings             []uint64

	PreviousEpochParticipation []byte
	CurrentEpochParticipation  []byte
	JustificationBits          byte
	PreviousJustifiedCheckpoint Checkpoint
	CurrentJustifiedCheckpoint  Checkpoint
	FinalizedCheckpoint         Checkpoint
	InactivityScores            []uint64

	CurrentSyncCommittee *SyncCommittee
	NextSyncCommittee    *SyncCommittee

	LatestExecutionPayloadHeader [32]byte // opaque root; payload body out of scope (§1 non-goals)

	NextWithdrawalIndex          uint64
	NextWithdrawalValidatorIndex uint64
	HistoricalSummaries          [][32]byte

	DepositRequestsStartIndex       uint64
	DepositBalanceToConsume         uint64
	ExitBalanceToConsume            uint64
	EarliestExitEpoch               uint64
	ConsolidationBalanceToConsume   uint64
	EarliestConsolidationEpoch      uint64
	PendingDeposits                 []PendingDeposit
	PendingPartialWithdrawals       []PendingPartialWithdrawal
	PendingConsolidations           []PendingConsolidation

	ProposerLookahead []uint32
}

// NewGenesisState builds a zeroed state for fork seq rooted in pool, with
// block_roots, state_roots, randao_mixes and slashings sized from the
// mainnet config. The validator registry and balances start empty (used by
// tests and by the era-file loading seam described in spec §4.9).
func NewGenesisState(pool *nodepool.Pool, seq params.ForkSeq) *BeaconState {
	s := &BeaconState{
		Fork:              seq,
		view:              treeview.NewEmptyContainer(pool, fieldCount(seq)),
		BlockRoots:        make([][32]byte, params.BeaconConfig().SlotsPerHistoricalRoot),
		StateRoots:        make([][32]byte, params.BeaconConfig().SlotsPerHistoricalRoot),
		RandaoMixes:       make([][32]byte, params.BeaconConfig().EpochsPerHistoricalVector),
		Slashings:         make([]uint64, params.BeaconConfig().EpochsPerSlashingsVector),
		JustificationBits: 0,
	}
	return s
}

// Pool exposes the backing arena for callers that need to ref/unref roots
// directly (e.g. computing tree_hash(latest_block_header) in process_slot).
func (s *BeaconState) Pool() *nodepool.Pool { return s.view.Pool }

// Epoch returns the epoch containing the state's current slot.
func (s *BeaconState) Epoch() uint64 {
	return s.Slot / params.BeaconConfig().SlotsPerEpoch
}

// PreviousEpoch returns Epoch()-1, saturating at 0 (genesis epoch has no
// predecessor).
func (s *BeaconState) PreviousEpoch() uint64 {
	e := s.Epoch()
	if e == 0 {
		return 0
	}
	return e - 1
}

// Commit recomputes every field leaf from the current Go-level value and
// runs the container's two-phase commit, returning the fresh state root.
func (s *BeaconState) Commit() nodepool.NodeId {
	s.view.SetBasic(fieldGenesisTime, (ssz.Uint64{}).HashTreeRoot(s.GenesisTime))
	s.view.SetBasic(fieldGenesisValidatorsRoot, s.GenesisValidatorsRoot)
	s.view.SetBasic(fieldSlot, (ssz.Uint64{}).HashTreeRoot(s.Slot))
	s.view.SetBasic(fieldFork, forkRoot(s.ForkData))
	s.view.SetBasic(fieldLatestBlockHeader, s.LatestBlockHeader.HashTreeRoot())
	s.view.SetBasic(fieldBlockRoots, merkleizeRoots(s.BlockRoots))
	s.view.SetBasic(fieldStateRoots, merkleizeRoots(s.StateRoots))
	s.view.SetBasic(fieldHistoricalRoots, merkleizeRoots(s.HistoricalRoots))
	s.view.SetBasic(fieldEth1Data, eth1DataRoot(s.Eth1Data))
	s.view.SetBasic(fieldEth1DataVotes, eth1DataVotesRoot(s.Eth1DataVotes))
	s.view.SetBasic(fieldEth1DepositIndex, (ssz.Uint64{}).HashTreeRoot(s.Eth1DepositIndex))
	s.view.SetBasic(fieldValidators, validatorsRoot(s.view.Pool, s.Validators))
	s.view.SetBasic(fieldBalances, balancesRoot(s.Balances))
	s.view.SetBasic(fieldRandaoMixes, merkleizeRoots(s.RandaoMixes))
	s.view.SetBasic(fieldSlashings, balancesRoot(s.Slashings))

	if s.Fork.Gte(params.Altair) {
		s.view.SetBasic(fieldPreviousEpochParticipation, (ssz.ByteList{Limit: 1 << 22}).HashTreeRoot(s.PreviousEpochParticipation))
		s.view.SetBasic(fieldCurrentEpochParticipation, (ssz.ByteList{Limit: 1 << 22}).HashTreeRoot(s.CurrentEpochParticipation))
	}
	s.view.SetBasic(fieldJustificationBits, justificationBitsRoot(s.JustificationBits))
	s.view.SetBasic(fieldPreviousJustifiedCheckpoint, s.PreviousJustifiedCheckpoint.HashTreeRoot())
	s.view.SetBasic(fieldCurrentJustifiedCheckpoint, s.CurrentJustifiedCheckpoint.HashTreeRoot())
	s.view.SetBasic(fieldFinalizedCheckpoint, s.FinalizedCheckpoint.HashTreeRoot())

	if s.Fork.Gte(params.Altair) {
		s.view.SetBasic(fieldInactivityScores, balancesRoot(s.InactivityScores))
		s.view.SetBasic(fieldCurrentSyncCommittee, syncCommitteeRoot(s.CurrentSyncCommittee))
		s.view.SetBasic(fieldNextSyncCommittee, syncCommitteeRoot(s.NextSyncCommittee))
	}
	if s.Fork.Gte(params.Bellatrix) {
		s.view.SetBasic(fieldLatestExecutionPayloadHeader, s.LatestExecutionPayloadHeader)
	}
	if s.Fork.Gte(params.Capella) {
		s.view.SetBasic(fieldNextWithdrawalIndex, (ssz.Uint64{}).HashTreeRoot(s.NextWithdrawalIndex))
		s.view.SetBasic(fieldNextWithdrawalValidatorIndex, (ssz.Uint64{}).HashTreeRoot(s.NextWithdrawalValidatorIndex))
		s.view.SetBasic(fieldHistoricalSummaries, merkleizeRoots(s.HistoricalSummaries))
	}
	if s.Fork.Gte(params.Electra) {
		s.view.SetBasic(fieldDepositRequestsStartIndex, (ssz.Uint64{}).HashTreeRoot(s.DepositRequestsStartIndex))
		s.view.SetBasic(fieldDepositBalanceToConsume, (ssz.Uint64{}).HashTreeRoot(s.DepositBalanceToConsume))
		s.view.SetBasic(fieldExitBalanceToConsume, (ssz.Uint64{}).HashTreeRoot(s.ExitBalanceToConsume))
		s.view.SetBasic(fieldEarliestExitEpoch, (ssz.Uint64{}).HashTreeRoot(s.EarliestExitEpoch))
		s.view.SetBasic(fieldConsolidationBalanceToConsume, (ssz.Uint64{}).HashTreeRoot(s.ConsolidationBalanceToConsume))
		s.view.SetBasic(fieldEarliestConsolidationEpoch, (ssz.Uint64{}).HashTreeRoot(s.EarliestConsolidationEpoch))
	}
	if s.Fork.Gte(params.Fulu) {
		s.view.SetBasic(fieldProposerLookahead, proposerLookaheadRoot(s.ProposerLookahead))
	}

	return s.view.Commit()
}

// HashTreeRoot returns the committed state root without mutating s (callers
// that only need to read the root call Commit first if dirty).
func (s *BeaconState) HashTreeRoot() [32]byte {
	return s.Pool().GetRoot(s.view.Root)
}

func forkRoot(f Fork) [32]byte {
	var u ssz.Uint64
	cur := (ssz.ByteVector{N: 4}).HashTreeRoot(f.CurrentVersion[:])
	prev := (ssz.ByteVector{N: 4}).HashTreeRoot(f.PreviousVersion[:])
	return hashutil.HashTwo(hashutil.HashTwo(prev, cur), u.HashTreeRoot(f.Epoch))
}

func eth1DataRoot(e Eth1Data) [32]byte {
	var u ssz.Uint64
	l := hashutil.HashTwo(e.DepositRoot, u.HashTreeRoot(e.DepositCount))
	return hashutil.HashTwo(l, e.BlockHash)
}

func eth1DataVotesRoot(votes []Eth1Data) [32]byte {
	leaves := make([][32]byte, len(votes))
	for i, v := range votes {
		leaves[i] = eth1DataRoot(v)
	}
	limit := (params.BeaconConfig().SlotsPerEpoch * 64) // EPOCHS_PER_ETH1_VOTING_PERIOD upper bound
	root := hashutil.Merkleize(leaves, int(limit))
	return hashutil.MixInLength(root, uint64(len(votes)))
}

// validatorsRoot commits the registry through a real treeview.CompositeListView
// (one ContainerView per validator) rather than a flat leaf slice, so the
// nested-list machinery container/treeview provides is actually exercised
// for BeaconState's largest field.
func validatorsRoot(pool *nodepool.Pool, vs []Validator) [32]byte {
	view := validatorsListDescriptor.ToTree(pool, vs)
	root := pool.GetRoot(view.Commit())
	return hashutil.MixInLength(root, uint64(len(vs)))
}

func balancesRoot(balances []uint64) [32]byte {
	leaves := make([][32]byte, (len(balances)+3)/4)
	for i := range leaves {
		for j := 0; j < 4 && i*4+j < len(balances); j++ {
			treeview.Uint64Codec.Encode(&leaves[i], j, balances[i*4+j])
		}
	}
	root := hashutil.Merkleize(leaves, (1<<22+3)/4)
	return hashutil.MixInLength(root, uint64(len(balances)))
}

func merkleizeRoots(roots [][32]byte) [32]byte {
	return hashutil.Merkleize(roots, len(roots))
}

func justificationBitsRoot(bits byte) [32]byte {
	var out [32]byte
	out[0] = bits
	return out
}

func syncCommitteeRoot(sc *SyncCommittee) [32]byte {
	if sc == nil {
		return zero32
	}
	leaves := make([][32]byte, len(sc.Pubkeys))
	for i, pk := range sc.Pubkeys {
		leaves[i] = (ssz.ByteVector{N: 48}).HashTreeRoot(pk[:])
	}
	pubkeysRoot := hashutil.Merkleize(leaves, len(leaves))
	aggRoot := (ssz.ByteVector{N: 48}).HashTreeRoot(sc.AggregatePubkey[:])
	return hashutil.HashTwo(pubkeysRoot, aggRoot)
}

func proposerLookaheadRoot(lookahead []uint32) [32]byte {
	leaves := make([][32]byte, (len(lookahead)+7)/8)
	for i := range leaves {
		for j := 0; j < 8 && i*8+j < len(lookahead); j++ {
			v := lookahead[i*8+j]
			for b := 0; b < 4; b++ {
				leaves[i][j*4+b] = byte(v >> (8 * uint(b)))
			}
		}
	}
	return hashutil.Merkleize(leaves, len(leaves))
}
