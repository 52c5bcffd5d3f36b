package errors

import "github.com/pkg/errors"

// Execution-layer validation.
var (
	ErrInvalidExecutionPayloadParentHash = errors.New("invalid execution payload parent hash")
	ErrInvalidExecutionPayloadRandom     = errors.New("invalid execution payload prev_randao")
	ErrInvalidExecutionPayloadTimestamp  = errors.New("invalid execution payload timestamp")
	ErrBlobKzgCommitmentsExceedsLimit    = errors.New("blob kzg commitments exceed per-block limit")
	ErrExecutionPayloadStatusPreMerge    = errors.New("execution payload present before merge")
	ErrInvalidExecutionPayload           = errors.New("invalid execution payload")
)
