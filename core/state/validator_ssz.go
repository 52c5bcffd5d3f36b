package state

import (
	"encoding/binary"

	"github.com/eth2-core/beacon-engine/container/nodepool"
	"github.com/eth2-core/beacon-engine/container/treeview"
	"github.com/eth2-core/beacon-engine/encoding/ssz"
	bserrors "github.com/eth2-core/beacon-engine/errors"
)

func validatorU64Field(get func() uint64, set func(uint64)) ssz.Field {
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

func validatorBytesField(n int, get func() []byte, set func([]byte)) ssz.Field {
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

func validatorBoolField(get func() bool, set func(bool)) ssz.Field {
	return ssz.Field{
		FixedSize: 1,
		Serialize: func() []byte {
			if get() {
				return []byte{1}
			}
			return []byte{0}
		},
		Deserialize: func(d []byte) error {
			if len(d) != 1 {
				return bserrors.ErrUnexpectedRemainder
			}
			set(d[0] != 0)
			return nil
		},
		HashTreeRoot: func() [32]byte {
			var out [32]byte
			if get() {
				out[0] = 1
			}
			return out
		},
	}
}

// sszFields lists Validator's 8 fields in spec order, the same order
// HashTreeRoot already hand-cascades them in.
func (v *Validator) sszFields() []ssz.Field {
	return []ssz.Field{
		validatorBytesField(48, func() []byte { return v.Pubkey[:] }, func(b []byte) { copy(v.Pubkey[:], b) }),
		validatorBytesField(32, func() []byte { return v.WithdrawalCredentials[:] }, func(b []byte) { copy(v.WithdrawalCredentials[:], b) }),
		validatorU64Field(func() uint64 { return v.EffectiveBalance }, func(x uint64) { v.EffectiveBalance = x }),
		validatorBoolField(func() bool { return v.Slashed }, func(x bool) { v.Slashed = x }),
		validatorU64Field(func() uint64 { return v.ActivationEligibilityEpoch }, func(x uint64) { v.ActivationEligibilityEpoch = x }),
		validatorU64Field(func() uint64 { return v.ActivationEpoch }, func(x uint64) { v.ActivationEpoch = x }),
		validatorU64Field(func() uint64 { return v.ExitEpoch }, func(x uint64) { v.ExitEpoch = x }),
		validatorU64Field(func() uint64 { return v.WithdrawableEpoch }, func(x uint64) { v.WithdrawableEpoch = x }),
	}
}

func (v *Validator) sszContainer() ssz.FixedContainer { return ssz.FixedContainer{Fields: v.sszFields()} }

const validatorFixedSize = 48 + 32 + 8 + 1 + 8 + 8 + 8 + 8 // 121 bytes

// validatorElement is the ssz.ListElement vtable that lets the validator
// registry be interned as a real treeview.CompositeListView (one
// ContainerView sub-view per validator) instead of a flat leaf slice.
// ReadView is left nil: nothing in this package reads validators back out
// of a committed tree (the registry slice is always the source of truth),
// and a ContainerView's per-field leaves hold HashTreeRoot() values rather
// than raw bytes, so Pubkey in particular isn't recoverable from them
// anyway — only Serialize/Deserialize round-trip the wire form.
func validatorElement() ssz.ListElement[Validator] {
	return ssz.ListElement[Validator]{
		Fixed:     true,
		FixedSize: validatorFixedSize,
		Serialize: func(v Validator) []byte { return v.sszContainer().Serialize() },
		Deserialize: func(d []byte) (Validator, error) {
			var v Validator
			if err := v.sszContainer().Deserialize(d); err != nil {
				return Validator{}, err
			}
			return v, nil
		},
		HashTreeRoot: func(v Validator) [32]byte { return v.sszContainer().HashTreeRoot() },
		NewView: func(pool *nodepool.Pool, id nodepool.NodeId) treeview.Committer {
			return treeview.NewContainerView(pool, id, len((&Validator{}).sszFields()))
		},
		BuildView: func(pool *nodepool.Pool, v Validator) treeview.Committer {
			return v.sszContainer().ToTree(pool)
		},
	}
}

var validatorsListDescriptor = ssz.VariableList[Validator]{Limit: 1 << 22, Elem: validatorElement()}
