package errors

import "github.com/pkg/errors"

// Block validation.
var (
	ErrBlockSlotMismatch             = errors.New("block slot does not match state slot")
	ErrBlockNotNewerThanLatestHeader = errors.New("block slot not newer than latest block header slot")
	ErrBlockProposerIndexMismatch    = errors.New("block proposer index mismatch")
	ErrBlockParentRootMismatch       = errors.New("block parent root mismatch")
	ErrBlockProposerSlashed          = errors.New("block proposer is slashed")
	ErrInvalidDepositCount           = errors.New("invalid deposit count")
)
