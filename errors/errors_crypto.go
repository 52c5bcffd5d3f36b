package errors

import "github.com/pkg/errors"

// Crypto failure.
var (
	ErrInvalidPublicKey                        = errors.New("invalid public key")
	ErrInvalidSignature                        = errors.New("invalid signature")
	ErrAggregationFailed                       = errors.New("bls aggregation failed")
	ErrKeyGenFailed                             = errors.New("bls key generation failed")
	ErrEmptySyncCommitteeSignatureIsNotInfinity = errors.New("empty sync committee signature is not infinity")
	ErrSyncCommitteeSignatureInvalid            = errors.New("sync committee signature invalid")
	ErrInvalidRandaoSignature                   = errors.New("invalid randao reveal signature")
)
