// Package bls wraps github.com/supranational/blst for the min-pubkey-size
// BLS12-381 variant used by the consensus spec: public keys live in G1 (48
// bytes compressed), signatures in G2 (96 bytes compressed). Grounded on the
// teacher's shared/bls/blst wrapper-struct style (secret_key.go).
package bls

import (
	"github.com/pkg/errors"
	blst "github.com/supranational/blst/bindings/go"

	bserrors "github.com/eth2-core/beacon-engine/errors"
)

// dst is the domain separation tag the consensus spec mandates for the
// min-pubkey-size ciphersuite.
var dst = []byte("BLS_SIG_BLS12381G2_XMD:SHA-256_SSWU_RO_POP_")

// SecretKeyLength and friends bound the raw input sizes taxonomy errors
// reference (§7 InputValidation).
const (
	SecretKeyLength = 32
	PublicKeyLength = 48
	SignatureLength = 96
)

// SecretKey is a BLS12-381 scalar.
type SecretKey struct {
	p *blst.SecretKey
}

// SecretKeyFromBytes deserializes a 32-byte big-endian secret key.
func SecretKeyFromBytes(raw []byte) (*SecretKey, error) {
	if len(raw) != SecretKeyLength {
		return nil, bserrors.ErrInvalidSecretKeyLength
	}
	sk := new(blst.SecretKey).Deserialize(raw)
	if sk == nil {
		return nil, errors.Wrap(bserrors.ErrKeyGenFailed, "deserialize secret key")
	}
	return &SecretKey{p: sk}, nil
}

// PublicKey derives the corresponding compressed public key.
func (s *SecretKey) PublicKey() *PublicKey {
	return &PublicKey{p: new(blst.P1Affine).From(s.p)}
}

// Sign produces a signature over msg under this secret key.
func (s *SecretKey) Sign(msg []byte) *Signature {
	return &Signature{p: new(blst.P2Affine).Sign(s.p, msg, dst)}
}

// PublicKey is a compressed G1 point.
type PublicKey struct {
	p *blst.P1Affine
}

// PublicKeyFromBytes deserializes and subgroup-checks a compressed 48-byte
// public key.
func PublicKeyFromBytes(raw []byte) (*PublicKey, error) {
	if len(raw) != PublicKeyLength {
		return nil, bserrors.ErrInvalidPubkeyLength
	}
	p := new(blst.P1Affine).Uncompress(raw)
	if p == nil || !p.KeyValidate() {
		return nil, errors.Wrap(bserrors.ErrInvalidPublicKey, "uncompress/validate public key")
	}
	return &PublicKey{p: p}, nil
}

// Compress returns the 48-byte compressed form.
func (p *PublicKey) Compress() []byte {
	return p.p.Compress()
}

// AggregatePublicKeys combines pubkeys into a single G1 point (used to
// verify one signature against a committee's combined key).
func AggregatePublicKeys(pubkeys []*PublicKey) (*PublicKey, error) {
	if len(pubkeys) == 0 {
		return nil, bserrors.ErrEmptyPublicKeyArray
	}
	affines := make([]*blst.P1Affine, len(pubkeys))
	for i, pk := range pubkeys {
		affines[i] = pk.p
	}
	var agg blst.P1Aggregate
	if !agg.Aggregate(affines, true) {
		return nil, bserrors.ErrAggregationFailed
	}
	return &PublicKey{p: agg.ToAffine()}, nil
}

// Signature is a compressed G2 point.
type Signature struct {
	p *blst.P2Affine
}

// SignatureFromBytes deserializes and subgroup-checks a compressed 96-byte
// signature.
func SignatureFromBytes(raw []byte) (*Signature, error) {
	if len(raw) != SignatureLength {
		return nil, errors.Wrap(bserrors.ErrInvalidSignature, "wrong signature length")
	}
	p := new(blst.P2Affine).Uncompress(raw)
	if p == nil || !p.SigValidate(true) {
		return nil, errors.Wrap(bserrors.ErrInvalidSignature, "uncompress/validate signature")
	}
	return &Signature{p: p}, nil
}

// Compress returns the 96-byte compressed form.
func (s *Signature) Compress() []byte {
	return s.p.Compress()
}

// Verify checks s against msg under pk.
func (s *Signature) Verify(pk *PublicKey, msg []byte) bool {
	return s.p.Verify(true, pk.p, true, msg, dst)
}

// FastAggregateVerify checks a single signature produced by aggregating
// signatures from every key in pubkeys, all over the same msg (the sync
// aggregate and attestation-committee shape).
func (s *Signature) FastAggregateVerify(pubkeys []*PublicKey, msg []byte) bool {
	if len(pubkeys) == 0 {
		return false
	}
	affines := make([]*blst.P1Affine, len(pubkeys))
	for i, pk := range pubkeys {
		affines[i] = pk.p
	}
	return s.p.FastAggregateVerify(true, affines, msg, dst)
}

// AggregateVerify checks a single signature produced by aggregating one
// signature per (pubkey, message) pair.
func (s *Signature) AggregateVerify(pubkeys []*PublicKey, msgs [][]byte) bool {
	if len(pubkeys) == 0 || len(pubkeys) != len(msgs) {
		return false
	}
	affines := make([]*blst.P1Affine, len(pubkeys))
	for i, pk := range pubkeys {
		affines[i] = pk.p
	}
	return s.p.AggregateVerify(true, affines, true, msgs, dst)
}

// AggregateSignatures combines signatures into one G2 point.
func AggregateSignatures(sigs []*Signature) (*Signature, error) {
	if len(sigs) == 0 {
		return nil, bserrors.ErrEmptySignatureArray
	}
	affines := make([]*blst.P2Affine, len(sigs))
	for i, sig := range sigs {
		affines[i] = sig.p
	}
	var agg blst.P2Aggregate
	if !agg.Aggregate(affines, true) {
		return nil, bserrors.ErrAggregationFailed
	}
	return &Signature{p: agg.ToAffine()}, nil
}

// InfiniteSignature returns the G2 point at infinity, the required encoding
// for an empty sync-committee participation bitfield (§4.8 process_sync_aggregate).
func InfiniteSignature() *Signature {
	return &Signature{p: new(blst.P2Affine)}
}

// IsInfinite reports whether s is the identity element.
func (s *Signature) IsInfinite() bool {
	return s.p.Compress()[0]&0x40 != 0
}
