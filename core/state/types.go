// Package state implements the BeaconState data model (spec §3): a
// fork-tagged container whose field positions are stable across forks, plus
// the plain value types state fields hold.
package state

import (
	"github.com/eth2-core/beacon-engine/crypto/hashutil"
	"github.com/eth2-core/beacon-engine/encoding/ssz"
)

// Fork identifies the current and previous fork versions active at a slot.
type Fork struct {
	PreviousVersion [4]byte
	CurrentVersion  [4]byte
	Epoch           uint64
}

// Eth1Data is the deposit-contract checkpoint a block votes for.
type Eth1Data struct {
	DepositRoot  [32]byte
	DepositCount uint64
	BlockHash    [32]byte
}

// BeaconBlockHeader is the compact header stored as state.latest_block_header
// (spec §4.8 process_block_header/process_slot).
type BeaconBlockHeader struct {
	Slot          uint64
	ProposerIndex uint32
	ParentRoot    [32]byte
	StateRoot     [32]byte
	BodyRoot      [32]byte
}

// HashTreeRoot merkleizes the five 32-byte-rooted fields of the header.
func (h BeaconBlockHeader) HashTreeRoot() [32]byte {
	var u ssz.Uint64
	slotLeaf := u.HashTreeRoot(h.Slot)
	proposerLeaf := u.HashTreeRoot(uint64(h.ProposerIndex))
	l1 := hashTwo(slotLeaf, proposerLeaf)
	l2 := hashTwo(h.ParentRoot, h.StateRoot)
	r1 := hashTwo(l1, l2)
	r2 := hashTwo(hashTwo(h.BodyRoot, zero32), hashTwo(zero32, zero32))
	return hashTwo(r1, r2)
}

var zero32 [32]byte

// Checkpoint re-exports ssz.Checkpoint so state fields can reference it
// without importing encoding/ssz directly at every call site.
type Checkpoint = ssz.Checkpoint

// Validator is one entry of state.validators (spec §3, field 11).
type Validator struct {
	Pubkey                     [48]byte
	WithdrawalCredentials      [32]byte
	EffectiveBalance           uint64
	Slashed                    bool
	ActivationEligibilityEpoch uint64
	ActivationEpoch            uint64
	ExitEpoch                  uint64
	WithdrawableEpoch          uint64
}

// IsActive reports whether the validator is active at epoch.
func (v Validator) IsActive(epoch uint64) bool {
	return v.ActivationEpoch <= epoch && epoch < v.ExitEpoch
}

// IsSlashable reports whether the validator can still be slashed at epoch.
func (v Validator) IsSlashable(epoch uint64) bool {
	return !v.Slashed && v.ActivationEligibilityEpoch <= epoch && epoch < v.WithdrawableEpoch
}

// HashTreeRoot merkleizes the eight validator fields (pubkey spans two
// chunks, every other field is one).
func (v Validator) HashTreeRoot() [32]byte {
	var u ssz.Uint64
	pubkeyRoot := (ssz.ByteVector{N: 48}).HashTreeRoot(v.Pubkey[:])
	slashedLeaf := zero32
	if v.Slashed {
		slashedLeaf[0] = 1
	}

	l1 := hashTwo(pubkeyRoot, v.WithdrawalCredentials)
	l2 := hashTwo(u.HashTreeRoot(v.EffectiveBalance), slashedLeaf)
	left := hashTwo(l1, l2)

	r1 := hashTwo(u.HashTreeRoot(v.ActivationEligibilityEpoch), u.HashTreeRoot(v.ActivationEpoch))
	r2 := hashTwo(u.HashTreeRoot(v.ExitEpoch), u.HashTreeRoot(v.WithdrawableEpoch))
	right := hashTwo(r1, r2)

	return hashTwo(left, right)
}

// SyncCommittee is the indexed current/next sync committee (spec §4.7's
// "indexed current sync committee").
type SyncCommittee struct {
	Pubkeys         [][48]byte
	AggregatePubkey [48]byte
}

// PendingDeposit is an Electra+ queued deposit (spec §4.8 pending_deposits).
type PendingDeposit struct {
	Pubkey                [48]byte
	WithdrawalCredentials [32]byte
	Amount                uint64
	Signature             [96]byte
	Slot                  uint64
}

// PendingPartialWithdrawal is an Electra+ queued partial withdrawal.
type PendingPartialWithdrawal struct {
	Index          uint32
	Amount         uint64
	WithdrawableEpoch uint64
}

// PendingConsolidation is an Electra+ queued validator consolidation.
type PendingConsolidation struct {
	SourceIndex uint32
	TargetIndex uint32
}

func hashTwo(left, right [32]byte) [32]byte {
	return hashutil.HashTwo(left, right)
}
