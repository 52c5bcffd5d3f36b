// Package blocks implements the per-block processing stage of
// StateTransition (spec §4.8): process_block_header, process_randao,
// process_eth1_data, process_operations, process_sync_aggregate, and
// process_execution_payload.
package blocks

import (
	"github.com/eth2-core/beacon-engine/config/params"
	"github.com/eth2-core/beacon-engine/core/state"
)

// BeaconBlock carries the fields every fork shares plus a fork-gated Body.
type BeaconBlock struct {
	Slot          uint64
	ProposerIndex uint32
	ParentRoot    [32]byte
	StateRoot     [32]byte
	Body          BeaconBlockBody
}

// HashTreeRoot merkleizes the block's five top-level fields, mirroring
// state.BeaconBlockHeader's layout (a block and its header share shape:
// body_root stands in for body).
func (b BeaconBlock) HashTreeRoot(cfg *params.BeaconChainConfig) [32]byte {
	h := state.BeaconBlockHeader{
		Slot:          b.Slot,
		ProposerIndex: b.ProposerIndex,
		ParentRoot:    b.ParentRoot,
		StateRoot:     b.StateRoot,
		BodyRoot:      b.Body.HashTreeRoot(cfg),
	}
	return h.HashTreeRoot()
}

// BeaconBlockBody grows by fork (spec §3): sync_aggregate is Altair+,
// execution payload is Bellatrix+ (modeled as an opaque root per §1's EL
// non-goal), bls_to_execution_changes is Capella+, blob_kzg_commitments is
// Deneb+, execution_requests is Electra+.
type BeaconBlockBody struct {
	RandaoReveal [96]byte
	Eth1Data     state.Eth1Data
	Graffiti     [32]byte

	ProposerSlashings []ProposerSlashing
	AttesterSlashings []AttesterSlashing
	Attestations      []Attestation
	Deposits          []Deposit
	VoluntaryExits    []VoluntaryExit

	SyncAggregate *SyncAggregate

	ExecutionPayloadRoot [32]byte
	ExecutionPayload     *ExecutionPayloadHeader

	BlsToExecutionChanges []BlsToExecutionChange
	BlobKzgCommitments    [][48]byte
	ExecutionRequests     *ExecutionRequests
}

// HashTreeRoot Merkleizes the body as the variable-size container it is:
// randao_reveal/eth1_data/graffiti are fixed, every operation list is a
// VariableList, sync_aggregate/execution payload/bls-to-execution/blob
// commitments/execution_requests are each present only from their
// activating fork onward (nil pointers and empty slices both Merkleize to
// their type's default value, so a Phase0 body and an Electra body with
// nothing in its Electra-only fields hash identically up to the fields
// Phase0 actually has).
func (b BeaconBlockBody) HashTreeRoot(cfg *params.BeaconChainConfig) [32]byte {
	return b.sszContainer(cfg).HashTreeRoot()
}

// SignedBeaconBlock is satisfied by both full and blinded signed blocks
// (spec §3).
type SignedBeaconBlock interface {
	Block() BeaconBlock
	Signature() [96]byte
}

type signedFullBlock struct {
	block BeaconBlock
	sig   [96]byte
}

// NewSignedFullBlock wraps a block carrying its full execution payload.
func NewSignedFullBlock(block BeaconBlock, sig [96]byte) SignedBeaconBlock {
	return signedFullBlock{block: block, sig: sig}
}

func (s signedFullBlock) Block() BeaconBlock { return s.block }
func (s signedFullBlock) Signature() [96]byte { return s.sig }

type signedBlindedBlock struct {
	block BeaconBlock
	sig   [96]byte
}

// NewSignedBlindedBlock wraps a block whose body carries only an
// execution_payload_header (the builder supplies the full payload
// out-of-band; constructing/validating that handoff is a named non-goal).
func NewSignedBlindedBlock(block BeaconBlock, sig [96]byte) SignedBeaconBlock {
	return signedBlindedBlock{block: block, sig: sig}
}

func (s signedBlindedBlock) Block() BeaconBlock  { return s.block }
func (s signedBlindedBlock) Signature() [96]byte { return s.sig }

// ExecutionPayloadHeader is the subset of execution-payload fields the
// state-transition engine itself validates (spec §4.8 process_execution_payload).
// Full payload/EVM execution is a named non-goal (§1).
type ExecutionPayloadHeader struct {
	ParentHash   [32]byte
	PrevRandao   [32]byte
	Timestamp    uint64
	BlockHash    [32]byte
}

func computeEpochAtSlot(cfg *params.BeaconChainConfig, slot uint64) uint64 {
	return slot / cfg.SlotsPerEpoch
}
