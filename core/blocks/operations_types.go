package blocks

import "github.com/eth2-core/beacon-engine/core/state"

// SignedBeaconBlockHeader pairs a header with its proposer signature, the
// shape both halves of a ProposerSlashing carry.
type SignedBeaconBlockHeader struct {
	Header    state.BeaconBlockHeader
	Signature [96]byte
}

// ProposerSlashing proves one proposer signed two distinct headers for the
// same slot.
type ProposerSlashing struct {
	Header1 SignedBeaconBlockHeader
	Header2 SignedBeaconBlockHeader
}

// AttestationData is the vote body an Attestation/IndexedAttestation signs.
type AttestationData struct {
	Slot            uint64
	CommitteeIndex  uint64
	BeaconBlockRoot [32]byte
	Source          state.Checkpoint
	Target          state.Checkpoint
}

// IndexedAttestation names the attesting validator indices explicitly,
// the form AttesterSlashing evidence carries.
type IndexedAttestation struct {
	AttestingIndices []uint32
	Data             AttestationData
	Signature        [96]byte
}

// AttesterSlashing proves two attestations from an overlapping signer set
// violate the double-vote or surround-vote slashing conditions.
type AttesterSlashing struct {
	Attestation1 IndexedAttestation
	Attestation2 IndexedAttestation
}

// Attestation is the committee-aggregated on-chain vote (pre-Electra
// single-committee form; Electra's multi-committee bitfield format is not
// modeled separately since the participation-flag accounting it feeds is
// identical once attesting indices are resolved).
type Attestation struct {
	AggregationBits []byte
	Data            AttestationData
	Signature       [96]byte
}

// DepositData is the signed deposit-contract log entry a Deposit proves
// inclusion of via its merkle proof (proof verification is delegated to the
// era-file/EL collaborator per §1; this core trusts deposits.len matches
// eth1_data bookkeeping per process_operations' assertion).
type DepositData struct {
	Pubkey                [48]byte
	WithdrawalCredentials [32]byte
	Amount                uint64
	Signature             [96]byte
}

// Deposit is one deposit-contract entry included in a block.
type Deposit struct {
	Proof [][32]byte
	Data  DepositData
}

// VoluntaryExit signals a validator's intent to exit the active set.
type VoluntaryExit struct {
	Epoch          uint64
	ValidatorIndex uint32
}

// SignedVoluntaryExit pairs a VoluntaryExit with its signature.
type SignedVoluntaryExit struct {
	Exit      VoluntaryExit
	Signature [96]byte
}

// BlsToExecutionChange (Capella+) rotates a validator's withdrawal
// credentials from a BLS key to an execution address.
type BlsToExecutionChange struct {
	ValidatorIndex     uint32
	FromBlsPubkey      [48]byte
	ToExecutionAddress [20]byte
}

// SignedBlsToExecutionChange pairs the change with its signature.
type SignedBlsToExecutionChange struct {
	Change    BlsToExecutionChange
	Signature [96]byte
}

// SyncAggregate (Altair+) is the aggregated sync-committee vote over the
// previous slot's block root.
type SyncAggregate struct {
	SyncCommitteeBits      []byte // SYNC_COMMITTEE_SIZE-bit bitfield
	SyncCommitteeSignature [96]byte
}

// ExecutionRequests (Electra+) carries the EL-originated deposit,
// withdrawal, and consolidation requests surfaced through the execution
// payload (full EL request validation is out of scope per §1; this core
// applies only the consensus-side bookkeeping).
type ExecutionRequests struct {
	Deposits       []DepositRequest
	Withdrawals    []WithdrawalRequest
	Consolidations []ConsolidationRequest
}

// DepositRequest is an EL-originated deposit request (Electra+).
type DepositRequest struct {
	Pubkey                [48]byte
	WithdrawalCredentials [32]byte
	Amount                uint64
	Signature             [96]byte
	Index                 uint64
}

// WithdrawalRequest is an EL-originated partial/full withdrawal request.
type WithdrawalRequest struct {
	SourceAddress   [20]byte
	ValidatorPubkey [48]byte
	Amount          uint64
}

// ConsolidationRequest is an EL-originated validator consolidation request.
type ConsolidationRequest struct {
	SourceAddress [20]byte
	SourcePubkey  [48]byte
	TargetPubkey  [48]byte
}
