package errors

import "github.com/pkg/errors"

// Deserialization failure.
var (
	ErrDeserializationFailed  = errors.New("deserialization failed")
	ErrUnexpectedRemainder    = errors.New("unexpected remainder after deserialization")
	ErrInvalidPubkeyIndexFile = errors.New("invalid pubkey index file")
	ErrBadEncoding            = errors.New("bad ssz encoding")
	ErrInvalidListSize        = errors.New("invalid list size")
	ErrInvalidRoundsSize      = errors.New("invalid rounds size")
	ErrOffsetOutOfBounds      = errors.New("ssz offset out of bounds")
	ErrInvalidLength          = errors.New("invalid ssz length")
)
