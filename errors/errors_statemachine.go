package errors

import "github.com/pkg/errors"

// State-machine / engine-internal failure.
var (
	ErrPubkeyIndexNotInitialized = errors.New("pubkey index not initialized")
	ErrPoolNotInitialized        = errors.New("node pool not initialized")
	ErrStateIsNotFork            = errors.New("state is not the expected fork")
	ErrUnexpectedForkSeq         = errors.New("unexpected fork sequence")
	ErrEpochShufflingNotFound    = errors.New("epoch shuffling not found")
	ErrRefNotInitialized         = errors.New("node reference not initialized")
	ErrIndexOutOfBounds          = errors.New("index out of bounds")
	ErrLengthOverLimit           = errors.New("length exceeds type limit")
	ErrChildNotFound             = errors.New("child node not found")
	ErrPostStateMismatch         = errors.New("post-state root mismatch")
	ErrUnsupportedBasicSliceFrom = errors.New("sliceFrom is unsupported for basic-element lists")
)
