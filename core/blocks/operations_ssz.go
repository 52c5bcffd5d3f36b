package blocks

import (
	"encoding/binary"

	"github.com/eth2-core/beacon-engine/config/params"
	"github.com/eth2-core/beacon-engine/container/treeview"
	"github.com/eth2-core/beacon-engine/core/state"
	"github.com/eth2-core/beacon-engine/crypto/hashutil"
	"github.com/eth2-core/beacon-engine/encoding/ssz"
	bserrors "github.com/eth2-core/beacon-engine/errors"
)

// This file builds the ssz.Field/FixedContainer/VariableContainer
// descriptors every body-carried operation Merkleizes and (de)serializes
// through. Each sszContainer method closes over the receiver so the
// returned Field funcs read and write the struct in place: Deserialize
// mutates the receiver directly instead of handing back a second value.

func u64Field(get func() uint64, set func(uint64)) ssz.Field {
	return ssz.Field{
		FixedSize: 8,
		Serialize: func() []byte {
			out := make([]byte, 8)
			binary.LittleEndian.PutUint64(out, get())
			return out
		},
		Deserialize: func(d []byte) error {
			if len(d) != 8 {
				return bserrors.ErrUnexpectedRemainder
			}
			set(binary.LittleEndian.Uint64(d))
			return nil
		},
		HashTreeRoot: func() [32]byte { return (ssz.Uint64{}).HashTreeRoot(get()) },
	}
}

func bytesField(n int, get func() []byte, set func([]byte)) ssz.Field {
	bv := ssz.ByteVector{N: n}
	return ssz.Field{
		FixedSize: n,
		Serialize: func() []byte {
			out := make([]byte, n)
			copy(out, get())
			return out
		},
		Deserialize: func(d []byte) error {
			v, err := bv.DeserializeFrom(d)
			if err != nil {
				return err
			}
			set(v)
			return nil
		},
		HashTreeRoot: func() [32]byte { return bv.HashTreeRoot(get()) },
	}
}

func checkpointField(c *state.Checkpoint) ssz.Field {
	return ssz.Field{
		FixedSize: ssz.CheckpointSerializeSize,
		Serialize: func() []byte { return c.Serialize() },
		Deserialize: func(d []byte) error {
			v, err := ssz.DeserializeCheckpoint(d)
			if err != nil {
				return err
			}
			*c = v
			return nil
		},
		HashTreeRoot: func() [32]byte { return c.HashTreeRoot() },
	}
}

func eth1DataField(e *state.Eth1Data) ssz.Field {
	return ssz.Field{
		FixedSize: 72,
		Serialize: func() []byte {
			out := make([]byte, 72)
			copy(out[0:32], e.DepositRoot[:])
			binary.LittleEndian.PutUint64(out[32:40], e.DepositCount)
			copy(out[40:72], e.BlockHash[:])
			return out
		},
		Deserialize: func(d []byte) error {
			if len(d) != 72 {
				return bserrors.ErrUnexpectedRemainder
			}
			copy(e.DepositRoot[:], d[0:32])
			e.DepositCount = binary.LittleEndian.Uint64(d[32:40])
			copy(e.BlockHash[:], d[40:72])
			return nil
		},
		HashTreeRoot: func() [32]byte {
			l1 := hashutil.HashTwo(e.DepositRoot, (ssz.Uint64{}).HashTreeRoot(e.DepositCount))
			return hashutil.HashTwo(l1, e.BlockHash)
		},
	}
}

func headerFields(h *state.BeaconBlockHeader) []ssz.Field {
	return []ssz.Field{
		u64Field(func() uint64 { return h.Slot }, func(v uint64) { h.Slot = v }),
		u64Field(func() uint64 { return uint64(h.ProposerIndex) }, func(v uint64) { h.ProposerIndex = uint32(v) }),
		bytesField(32, func() []byte { return h.ParentRoot[:] }, func(v []byte) { copy(h.ParentRoot[:], v) }),
		bytesField(32, func() []byte { return h.StateRoot[:] }, func(v []byte) { copy(h.StateRoot[:], v) }),
		bytesField(32, func() []byte { return h.BodyRoot[:] }, func(v []byte) { copy(h.BodyRoot[:], v) }),
	}
}

func (h *SignedBeaconBlockHeader) sszContainer() ssz.FixedContainer {
	fields := headerFields(&h.Header)
	fields = append(fields, bytesField(96, func() []byte { return h.Signature[:] }, func(v []byte) { copy(h.Signature[:], v) }))
	return ssz.FixedContainer{Fields: fields}
}

func (p *ProposerSlashing) sszContainer() ssz.FixedContainer {
	c1, c2 := p.Header1.sszContainer(), p.Header2.sszContainer()
	return ssz.FixedContainer{Fields: []ssz.Field{
		{FixedSize: 208, Serialize: c1.Serialize, Deserialize: c1.Deserialize, HashTreeRoot: c1.HashTreeRoot},
		{FixedSize: 208, Serialize: c2.Serialize, Deserialize: c2.Deserialize, HashTreeRoot: c2.HashTreeRoot},
	}}
}

func (d *AttestationData) sszContainer() ssz.FixedContainer {
	return ssz.FixedContainer{Fields: []ssz.Field{
		u64Field(func() uint64 { return d.Slot }, func(v uint64) { d.Slot = v }),
		u64Field(func() uint64 { return d.CommitteeIndex }, func(v uint64) { d.CommitteeIndex = v }),
		bytesField(32, func() []byte { return d.BeaconBlockRoot[:] }, func(v []byte) { copy(d.BeaconBlockRoot[:], v) }),
		checkpointField(&d.Source),
		checkpointField(&d.Target),
	}}
}

func attestingIndicesField(cfg *params.BeaconChainConfig, indices *[]uint32) ssz.Field {
	// ValidatorIndex is a spec uint64, packed four to a chunk like any other
	// Uint64Codec basic list, even though this fork's struct narrows the
	// in-memory slice to uint32 (validator counts never approach 2^32).
	fl := ssz.FixedList{Limit: int(cfg.MaxValidatorsPerCommittee), Codec: treeview.Uint64Codec}
	return ssz.Field{
		IsVariable: true,
		Serialize: func() []byte {
			widened := make([]uint64, len(*indices))
			for i, v := range *indices {
				widened[i] = uint64(v)
			}
			return fl.Serialize(widened)
		},
		Deserialize: func(d []byte) error {
			widened, err := fl.DeserializeFrom(d)
			if err != nil {
				return err
			}
			out := make([]uint32, len(widened))
			for i, v := range widened {
				out[i] = uint32(v)
			}
			*indices = out
			return nil
		},
		HashTreeRoot: func() [32]byte {
			widened := make([]uint64, len(*indices))
			for i, v := range *indices {
				widened[i] = uint64(v)
			}
			return fl.HashTreeRoot(widened)
		},
	}
}

func (ia *IndexedAttestation) sszContainer(cfg *params.BeaconChainConfig) ssz.VariableContainer {
	dataC := ia.Data.sszContainer()
	return ssz.VariableContainer{Fields: []ssz.Field{
		attestingIndicesField(cfg, &ia.AttestingIndices),
		{FixedSize: 128, Serialize: dataC.Serialize, Deserialize: dataC.Deserialize, HashTreeRoot: dataC.HashTreeRoot},
		bytesField(96, func() []byte { return ia.Signature[:] }, func(v []byte) { copy(ia.Signature[:], v) }),
	}}
}

func (as *AttesterSlashing) sszContainer(cfg *params.BeaconChainConfig) ssz.VariableContainer {
	c1, c2 := as.Attestation1.sszContainer(cfg), as.Attestation2.sszContainer(cfg)
	return ssz.VariableContainer{Fields: []ssz.Field{
		{IsVariable: true, Serialize: c1.Serialize, Deserialize: c1.Deserialize, HashTreeRoot: c1.HashTreeRoot},
		{IsVariable: true, Serialize: c2.Serialize, Deserialize: c2.Deserialize, HashTreeRoot: c2.HashTreeRoot},
	}}
}

// attestationBitsToBools unpacks raw bit-packed bytes (no delimiter bit —
// see ProcessAttestation's own direct iteration over AggregationBits) into
// one bool per committee seat.
func attestationBitsToBools(packed []byte) []bool {
	bits := make([]bool, len(packed)*8)
	for i := range bits {
		bits[i] = packed[i/8]&(1<<uint(i%8)) != 0
	}
	return bits
}

func attestationBitsFromBools(bits []bool) []byte {
	out := make([]byte, (len(bits)+7)/8)
	for i, set := range bits {
		if set {
			out[i/8] |= 1 << uint(i%8)
		}
	}
	return out
}

func (a *Attestation) sszContainer(cfg *params.BeaconChainConfig) ssz.VariableContainer {
	bl := ssz.BitList{Limit: int(cfg.MaxValidatorsPerCommittee)}
	dataC := a.Data.sszContainer()
	return ssz.VariableContainer{Fields: []ssz.Field{
		{
			IsVariable: true,
			Serialize:  func() []byte { return bl.Serialize(attestationBitsToBools(a.AggregationBits)) },
			Deserialize: func(d []byte) error {
				bits, err := bl.DeserializeFrom(d)
				if err != nil {
					return err
				}
				a.AggregationBits = attestationBitsFromBools(bits)
				return nil
			},
			HashTreeRoot: func() [32]byte { return bl.HashTreeRoot(attestationBitsToBools(a.AggregationBits)) },
		},
		{FixedSize: 128, Serialize: dataC.Serialize, Deserialize: dataC.Deserialize, HashTreeRoot: dataC.HashTreeRoot},
		bytesField(96, func() []byte { return a.Signature[:] }, func(v []byte) { copy(a.Signature[:], v) }),
	}}
}

func (d *DepositData) sszFields() []ssz.Field {
	return []ssz.Field{
		bytesField(48, func() []byte { return d.Pubkey[:] }, func(v []byte) { copy(d.Pubkey[:], v) }),
		bytesField(32, func() []byte { return d.WithdrawalCredentials[:] }, func(v []byte) { copy(d.WithdrawalCredentials[:], v) }),
		u64Field(func() uint64 { return d.Amount }, func(v uint64) { d.Amount = v }),
		bytesField(96, func() []byte { return d.Signature[:] }, func(v []byte) { copy(d.Signature[:], v) }),
	}
}

func (d *DepositData) sszContainer() ssz.FixedContainer { return ssz.FixedContainer{Fields: d.sszFields()} }

// depositProofLength is DEPOSIT_CONTRACT_TREE_DEPTH + 1: the merkle branch
// from a deposit leaf up through the mixed-in deposit count.
const depositProofLength = 33

func (d *Deposit) sszContainer() ssz.FixedContainer {
	dataC := d.Data.sszContainer()
	return ssz.FixedContainer{Fields: []ssz.Field{
		{
			FixedSize: depositProofLength * 32,
			Serialize: func() []byte {
				out := make([]byte, depositProofLength*32)
				for i := 0; i < depositProofLength && i < len(d.Proof); i++ {
					copy(out[i*32:(i+1)*32], d.Proof[i][:])
				}
				return out
			},
			Deserialize: func(data []byte) error {
				if len(data) != depositProofLength*32 {
					return bserrors.ErrUnexpectedRemainder
				}
				proof := make([][32]byte, depositProofLength)
				for i := range proof {
					copy(proof[i][:], data[i*32:(i+1)*32])
				}
				d.Proof = proof
				return nil
			},
			HashTreeRoot: func() [32]byte {
				leaves := make([][32]byte, depositProofLength)
				for i := 0; i < depositProofLength && i < len(d.Proof); i++ {
					leaves[i] = d.Proof[i]
				}
				return hashutil.Merkleize(leaves, depositProofLength)
			},
		},
		{FixedSize: 184, Serialize: dataC.Serialize, Deserialize: dataC.Deserialize, HashTreeRoot: dataC.HashTreeRoot},
	}}
}

func (e *VoluntaryExit) sszFields() []ssz.Field {
	return []ssz.Field{
		u64Field(func() uint64 { return e.Epoch }, func(v uint64) { e.Epoch = v }),
		u64Field(func() uint64 { return uint64(e.ValidatorIndex) }, func(v uint64) { e.ValidatorIndex = uint32(v) }),
	}
}

func (e *VoluntaryExit) sszContainer() ssz.FixedContainer { return ssz.FixedContainer{Fields: e.sszFields()} }

func (s *SignedVoluntaryExit) sszContainer() ssz.FixedContainer {
	ec := s.Exit.sszContainer()
	return ssz.FixedContainer{Fields: []ssz.Field{
		{FixedSize: 16, Serialize: ec.Serialize, Deserialize: ec.Deserialize, HashTreeRoot: ec.HashTreeRoot},
		bytesField(96, func() []byte { return s.Signature[:] }, func(v []byte) { copy(s.Signature[:], v) }),
	}}
}

func (c *BlsToExecutionChange) sszContainer() ssz.FixedContainer {
	return ssz.FixedContainer{Fields: []ssz.Field{
		u64Field(func() uint64 { return uint64(c.ValidatorIndex) }, func(v uint64) { c.ValidatorIndex = uint32(v) }),
		bytesField(48, func() []byte { return c.FromBlsPubkey[:] }, func(v []byte) { copy(c.FromBlsPubkey[:], v) }),
		bytesField(20, func() []byte { return c.ToExecutionAddress[:] }, func(v []byte) { copy(c.ToExecutionAddress[:], v) }),
	}}
}

func (sa *SyncAggregate) sszContainer(cfg *params.BeaconChainConfig) ssz.FixedContainer {
	bitsLen := int(cfg.SyncCommitteeSize / 8)
	return ssz.FixedContainer{Fields: []ssz.Field{
		bytesField(bitsLen, func() []byte { return sa.SyncCommitteeBits }, func(v []byte) { sa.SyncCommitteeBits = v }),
		bytesField(96, func() []byte { return sa.SyncCommitteeSignature[:] }, func(v []byte) { copy(sa.SyncCommitteeSignature[:], v) }),
	}}
}

func (r *DepositRequest) sszContainer() ssz.FixedContainer {
	return ssz.FixedContainer{Fields: []ssz.Field{
		bytesField(48, func() []byte { return r.Pubkey[:] }, func(v []byte) { copy(r.Pubkey[:], v) }),
		bytesField(32, func() []byte { return r.WithdrawalCredentials[:] }, func(v []byte) { copy(r.WithdrawalCredentials[:], v) }),
		u64Field(func() uint64 { return r.Amount }, func(v uint64) { r.Amount = v }),
		bytesField(96, func() []byte { return r.Signature[:] }, func(v []byte) { copy(r.Signature[:], v) }),
		u64Field(func() uint64 { return r.Index }, func(v uint64) { r.Index = v }),
	}}
}

func (r *WithdrawalRequest) sszContainer() ssz.FixedContainer {
	return ssz.FixedContainer{Fields: []ssz.Field{
		bytesField(20, func() []byte { return r.SourceAddress[:] }, func(v []byte) { copy(r.SourceAddress[:], v) }),
		bytesField(48, func() []byte { return r.ValidatorPubkey[:] }, func(v []byte) { copy(r.ValidatorPubkey[:], v) }),
		u64Field(func() uint64 { return r.Amount }, func(v uint64) { r.Amount = v }),
	}}
}

func (r *ConsolidationRequest) sszContainer() ssz.FixedContainer {
	return ssz.FixedContainer{Fields: []ssz.Field{
		bytesField(20, func() []byte { return r.SourceAddress[:] }, func(v []byte) { copy(r.SourceAddress[:], v) }),
		bytesField(48, func() []byte { return r.SourcePubkey[:] }, func(v []byte) { copy(r.SourcePubkey[:], v) }),
		bytesField(48, func() []byte { return r.TargetPubkey[:] }, func(v []byte) { copy(r.TargetPubkey[:], v) }),
	}}
}

// Electra mainnet request-list limits (MAX_DEPOSIT_REQUESTS_PER_PAYLOAD,
// MAX_WITHDRAWAL_REQUESTS_PER_PAYLOAD, MAX_CONSOLIDATION_REQUESTS_PER_PAYLOAD).
const (
	maxDepositRequestsPerPayload       = 8192
	maxWithdrawalRequestsPerPayload    = 16
	maxConsolidationRequestsPerPayload = 2
)

func depositRequestElement() ssz.ListElement[DepositRequest] {
	return ssz.ListElement[DepositRequest]{
		Fixed:     true,
		FixedSize: 192,
		Serialize: func(r DepositRequest) []byte { return r.sszContainer().Serialize() },
		Deserialize: func(d []byte) (DepositRequest, error) {
			var r DepositRequest
			if err := r.sszContainer().Deserialize(d); err != nil {
				return DepositRequest{}, err
			}
			return r, nil
		},
		HashTreeRoot: func(r DepositRequest) [32]byte { return r.sszContainer().HashTreeRoot() },
	}
}

func withdrawalRequestElement() ssz.ListElement[WithdrawalRequest] {
	return ssz.ListElement[WithdrawalRequest]{
		Fixed:     true,
		FixedSize: 76,
		Serialize: func(r WithdrawalRequest) []byte { return r.sszContainer().Serialize() },
		Deserialize: func(d []byte) (WithdrawalRequest, error) {
			var r WithdrawalRequest
			if err := r.sszContainer().Deserialize(d); err != nil {
				return WithdrawalRequest{}, err
			}
			return r, nil
		},
		HashTreeRoot: func(r WithdrawalRequest) [32]byte { return r.sszContainer().HashTreeRoot() },
	}
}

func consolidationRequestElement() ssz.ListElement[ConsolidationRequest] {
	return ssz.ListElement[ConsolidationRequest]{
		Fixed:     true,
		FixedSize: 116,
		Serialize: func(r ConsolidationRequest) []byte { return r.sszContainer().Serialize() },
		Deserialize: func(d []byte) (ConsolidationRequest, error) {
			var r ConsolidationRequest
			if err := r.sszContainer().Deserialize(d); err != nil {
				return ConsolidationRequest{}, err
			}
			return r, nil
		},
		HashTreeRoot: func(r ConsolidationRequest) [32]byte { return r.sszContainer().HashTreeRoot() },
	}
}

func (er *ExecutionRequests) sszContainer() ssz.VariableContainer {
	depositList := ssz.VariableList[DepositRequest]{Limit: maxDepositRequestsPerPayload, Elem: depositRequestElement()}
	withdrawalList := ssz.VariableList[WithdrawalRequest]{Limit: maxWithdrawalRequestsPerPayload, Elem: withdrawalRequestElement()}
	consolidationList := ssz.VariableList[ConsolidationRequest]{Limit: maxConsolidationRequestsPerPayload, Elem: consolidationRequestElement()}
	return ssz.VariableContainer{Fields: []ssz.Field{
		{
			IsVariable: true,
			Serialize:  func() []byte { return depositList.Serialize(er.Deposits) },
			Deserialize: func(d []byte) error {
				v, err := depositList.DeserializeFrom(d)
				if err != nil {
					return err
				}
				er.Deposits = v
				return nil
			},
			HashTreeRoot: func() [32]byte { return depositList.HashTreeRoot(er.Deposits) },
		},
		{
			IsVariable: true,
			Serialize:  func() []byte { return withdrawalList.Serialize(er.Withdrawals) },
			Deserialize: func(d []byte) error {
				v, err := withdrawalList.DeserializeFrom(d)
				if err != nil {
					return err
				}
				er.Withdrawals = v
				return nil
			},
			HashTreeRoot: func() [32]byte { return withdrawalList.HashTreeRoot(er.Withdrawals) },
		},
		{
			IsVariable: true,
			Serialize:  func() []byte { return consolidationList.Serialize(er.Consolidations) },
			Deserialize: func(d []byte) error {
				v, err := consolidationList.DeserializeFrom(d)
				if err != nil {
					return err
				}
				er.Consolidations = v
				return nil
			},
			HashTreeRoot: func() [32]byte { return consolidationList.HashTreeRoot(er.Consolidations) },
		},
	}}
}

func blobCommitmentElement() ssz.ListElement[[48]byte] {
	bv := ssz.ByteVector{N: 48}
	return ssz.ListElement[[48]byte]{
		Fixed:     true,
		FixedSize: 48,
		Serialize: func(v [48]byte) []byte { out := make([]byte, 48); copy(out, v[:]); return out },
		Deserialize: func(d []byte) ([48]byte, error) {
			var v [48]byte
			if len(d) != 48 {
				return v, bserrors.ErrUnexpectedRemainder
			}
			copy(v[:], d)
			return v, nil
		},
		HashTreeRoot: func(v [48]byte) [32]byte { return bv.HashTreeRoot(v[:]) },
	}
}

func proposerSlashingElement() ssz.ListElement[ProposerSlashing] {
	return ssz.ListElement[ProposerSlashing]{
		Fixed:     true,
		FixedSize: 416,
		Serialize: func(p ProposerSlashing) []byte { return p.sszContainer().Serialize() },
		Deserialize: func(d []byte) (ProposerSlashing, error) {
			var p ProposerSlashing
			if err := p.sszContainer().Deserialize(d); err != nil {
				return ProposerSlashing{}, err
			}
			return p, nil
		},
		HashTreeRoot: func(p ProposerSlashing) [32]byte { return p.sszContainer().HashTreeRoot() },
	}
}

func attesterSlashingElement(cfg *params.BeaconChainConfig) ssz.ListElement[AttesterSlashing] {
	return ssz.ListElement[AttesterSlashing]{
		Fixed: false,
		Serialize: func(a AttesterSlashing) []byte { return a.sszContainer(cfg).Serialize() },
		Deserialize: func(d []byte) (AttesterSlashing, error) {
			var a AttesterSlashing
			if err := a.sszContainer(cfg).Deserialize(d); err != nil {
				return AttesterSlashing{}, err
			}
			return a, nil
		},
		HashTreeRoot: func(a AttesterSlashing) [32]byte { return a.sszContainer(cfg).HashTreeRoot() },
	}
}

func attestationElement(cfg *params.BeaconChainConfig) ssz.ListElement[Attestation] {
	return ssz.ListElement[Attestation]{
		Fixed: false,
		Serialize: func(a Attestation) []byte { return a.sszContainer(cfg).Serialize() },
		Deserialize: func(d []byte) (Attestation, error) {
			var a Attestation
			if err := a.sszContainer(cfg).Deserialize(d); err != nil {
				return Attestation{}, err
			}
			return a, nil
		},
		HashTreeRoot: func(a Attestation) [32]byte { return a.sszContainer(cfg).HashTreeRoot() },
	}
}

func depositElement() ssz.ListElement[Deposit] {
	fixedSize := depositProofLength*32 + 184
	return ssz.ListElement[Deposit]{
		Fixed:     true,
		FixedSize: fixedSize,
		Serialize: func(d Deposit) []byte { return d.sszContainer().Serialize() },
		Deserialize: func(data []byte) (Deposit, error) {
			var d Deposit
			if err := d.sszContainer().Deserialize(data); err != nil {
				return Deposit{}, err
			}
			return d, nil
		},
		HashTreeRoot: func(d Deposit) [32]byte { return d.sszContainer().HashTreeRoot() },
	}
}

func voluntaryExitElement() ssz.ListElement[SignedVoluntaryExit] {
	return ssz.ListElement[SignedVoluntaryExit]{
		Fixed:     true,
		FixedSize: 112,
		Serialize: func(e SignedVoluntaryExit) []byte { return e.sszContainer().Serialize() },
		Deserialize: func(d []byte) (SignedVoluntaryExit, error) {
			var e SignedVoluntaryExit
			if err := e.sszContainer().Deserialize(d); err != nil {
				return SignedVoluntaryExit{}, err
			}
			return e, nil
		},
		HashTreeRoot: func(e SignedVoluntaryExit) [32]byte { return e.sszContainer().HashTreeRoot() },
	}
}

func blsToExecutionChangeElement() ssz.ListElement[BlsToExecutionChange] {
	return ssz.ListElement[BlsToExecutionChange]{
		Fixed:     true,
		FixedSize: 76,
		Serialize: func(c BlsToExecutionChange) []byte { return c.sszContainer().Serialize() },
		Deserialize: func(d []byte) (BlsToExecutionChange, error) {
			var c BlsToExecutionChange
			if err := c.sszContainer().Deserialize(d); err != nil {
				return BlsToExecutionChange{}, err
			}
			return c, nil
		},
		HashTreeRoot: func(c BlsToExecutionChange) [32]byte { return c.sszContainer().HashTreeRoot() },
	}
}

// sszContainer assembles the body's variable-size container. Fork-gated
// fields key off the shape already on the struct rather than a separate
// fork parameter: SyncAggregate/ExecutionRequests are nil before their
// fork activates, ExecutionPayload is nil pre-Bellatrix, and
// BlsToExecutionChanges/BlobKzgCommitments are nil (as opposed to merely
// empty) until a block-builder for that fork starts populating them.
// ExecutionRequests' presence also selects the Deneb vs. Electra blob
// commitment limit, since both land on the same fork boundary as Electra.
func (b *BeaconBlockBody) sszContainer(cfg *params.BeaconChainConfig) ssz.VariableContainer {
	proposerSlashingsList := ssz.VariableList[ProposerSlashing]{Limit: int(cfg.MaxProposerSlashings), Elem: proposerSlashingElement()}
	attesterSlashingsList := ssz.VariableList[AttesterSlashing]{Limit: int(cfg.MaxAttesterSlashings), Elem: attesterSlashingElement(cfg)}
	attestationsList := ssz.VariableList[Attestation]{Limit: int(cfg.MaxAttestations), Elem: attestationElement(cfg)}
	depositsList := ssz.VariableList[Deposit]{Limit: int(cfg.MaxDeposits), Elem: depositElement()}
	voluntaryExitsList := ssz.VariableList[SignedVoluntaryExit]{Limit: int(cfg.MaxVoluntaryExits), Elem: voluntaryExitElement()}

	fields := []ssz.Field{
		bytesField(96, func() []byte { return b.RandaoReveal[:] }, func(v []byte) { copy(b.RandaoReveal[:], v) }),
		eth1DataField(&b.Eth1Data),
		bytesField(32, func() []byte { return b.Graffiti[:] }, func(v []byte) { copy(b.Graffiti[:], v) }),
		{
			IsVariable: true,
			Serialize:  func() []byte { return proposerSlashingsList.Serialize(b.ProposerSlashings) },
			Deserialize: func(d []byte) error {
				v, err := proposerSlashingsList.DeserializeFrom(d)
				if err != nil {
					return err
				}
				b.ProposerSlashings = v
				return nil
			},
			HashTreeRoot: func() [32]byte { return proposerSlashingsList.HashTreeRoot(b.ProposerSlashings) },
		},
		{
			IsVariable: true,
			Serialize:  func() []byte { return attesterSlashingsList.Serialize(b.AttesterSlashings) },
			Deserialize: func(d []byte) error {
				v, err := attesterSlashingsList.DeserializeFrom(d)
				if err != nil {
					return err
				}
				b.AttesterSlashings = v
				return nil
			},
			HashTreeRoot: func() [32]byte { return attesterSlashingsList.HashTreeRoot(b.AttesterSlashings) },
		},
		{
			IsVariable: true,
			Serialize:  func() []byte { return attestationsList.Serialize(b.Attestations) },
			Deserialize: func(d []byte) error {
				v, err := attestationsList.DeserializeFrom(d)
				if err != nil {
					return err
				}
				b.Attestations = v
				return nil
			},
			HashTreeRoot: func() [32]byte { return attestationsList.HashTreeRoot(b.Attestations) },
		},
		{
			IsVariable: true,
			Serialize:  func() []byte { return depositsList.Serialize(b.Deposits) },
			Deserialize: func(d []byte) error {
				v, err := depositsList.DeserializeFrom(d)
				if err != nil {
					return err
				}
				b.Deposits = v
				return nil
			},
			HashTreeRoot: func() [32]byte { return depositsList.HashTreeRoot(b.Deposits) },
		},
		{
			IsVariable: true,
			Serialize:  func() []byte { return voluntaryExitsList.Serialize(b.VoluntaryExits) },
			Deserialize: func(d []byte) error {
				v, err := voluntaryExitsList.DeserializeFrom(d)
				if err != nil {
					return err
				}
				b.VoluntaryExits = v
				return nil
			},
			HashTreeRoot: func() [32]byte { return voluntaryExitsList.HashTreeRoot(b.VoluntaryExits) },
		},
	}

	if b.SyncAggregate != nil {
		saC := b.SyncAggregate.sszContainer(cfg)
		fields = append(fields, ssz.Field{
			FixedSize:    int(cfg.SyncCommitteeSize/8) + 96,
			Serialize:    saC.Serialize,
			Deserialize:  saC.Deserialize,
			HashTreeRoot: saC.HashTreeRoot,
		})
	}

	if b.ExecutionPayload != nil {
		fields = append(fields, bytesField(32, func() []byte { return b.ExecutionPayloadRoot[:] }, func(v []byte) { copy(b.ExecutionPayloadRoot[:], v) }))
	}

	if b.BlsToExecutionChanges != nil {
		blsList := ssz.VariableList[BlsToExecutionChange]{Limit: int(cfg.MaxBlsToExecutionChanges), Elem: blsToExecutionChangeElement()}
		fields = append(fields, ssz.Field{
			IsVariable: true,
			Serialize:  func() []byte { return blsList.Serialize(b.BlsToExecutionChanges) },
			Deserialize: func(d []byte) error {
				v, err := blsList.DeserializeFrom(d)
				if err != nil {
					return err
				}
				b.BlsToExecutionChanges = v
				return nil
			},
			HashTreeRoot: func() [32]byte { return blsList.HashTreeRoot(b.BlsToExecutionChanges) },
		})
	}

	if b.BlobKzgCommitments != nil {
		limit := int(cfg.MaxBlobsPerBlock)
		if b.ExecutionRequests != nil {
			limit = int(cfg.MaxBlobsPerBlockElectra)
		}
		blobList := ssz.VariableList[[48]byte]{Limit: limit, Elem: blobCommitmentElement()}
		fields = append(fields, ssz.Field{
			IsVariable: true,
			Serialize:  func() []byte { return blobList.Serialize(b.BlobKzgCommitments) },
			Deserialize: func(d []byte) error {
				v, err := blobList.DeserializeFrom(d)
				if err != nil {
					return err
				}
				b.BlobKzgCommitments = v
				return nil
			},
			HashTreeRoot: func() [32]byte { return blobList.HashTreeRoot(b.BlobKzgCommitments) },
		})
	}

	if b.ExecutionRequests != nil {
		erC := b.ExecutionRequests.sszContainer()
		fields = append(fields, ssz.Field{
			IsVariable:   true,
			Serialize:    erC.Serialize,
			Deserialize:  erC.Deserialize,
			HashTreeRoot: erC.HashTreeRoot,
		})
	}

	return ssz.VariableContainer{Fields: fields}
}
