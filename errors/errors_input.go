package errors

import "github.com/pkg/errors"

// Input validation.
var (
	ErrInvalidPubkeyLength                  = errors.New("invalid pubkey length")
	ErrInvalidMessageLength                 = errors.New("invalid message length")
	ErrInvalidSeedLength                    = errors.New("invalid seed length")
	ErrInvalidEffectiveBalanceIncrementsType = errors.New("invalid effective balance increments type")
	ErrInvalidIndicesType                    = errors.New("invalid indices type")
	ErrEmptyPublicKeyArray                   = errors.New("empty public key array")
	ErrEmptySignatureArray                   = errors.New("empty signature array")
	ErrEmptyIndicesArray                     = errors.New("empty indices array")
	ErrTooManySets                           = errors.New("too many signature sets")
	ErrInvalidSecretKeyLength                = errors.New("invalid secret key length")
	ErrInvalidAggregateVerifyInput           = errors.New("invalid aggregate verify input")
)
