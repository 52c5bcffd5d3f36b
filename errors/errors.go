// Package errors collects the closed set of sentinel errors named in the
// engine's error taxonomy, grouped by kind into one file per category.
// Callers wrap these with github.com/pkg/errors (Wrap/Wrapf) to attach
// context; use errors.Is against a sentinel here to classify a failure.
package errors

import "github.com/pkg/errors"

// Re-exported so call sites only need to import this package.
var (
	Wrap  = errors.Wrap
	Wrapf = errors.Wrapf
	Is    = errors.Is
	New   = errors.New
	Cause = errors.Cause
)
