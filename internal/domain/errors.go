package domain

import (
	"errors"
	"fmt"
)

// Error taxonomy for the pipeline. Row-level problems are handled where they
// occur (the row is dropped or its outcome recorded); these errors surface
// only the conditions a caller has to act on.
var (
	// ErrDataUnavailable marks a required source file or warehouse
	// connection that could not be obtained. Fatal to the stage that
	// needed it; not retried automatically.
	ErrDataUnavailable = errors.New("data unavailable")

	// ErrDataCorruption marks a row that fails validation after sentinel
	// filtering (unparseable timestamp, non-numeric total). The row is
	// dropped, not the run.
	ErrDataCorruption = errors.New("data corruption")

	// ErrNoData marks a report run that could not retrieve anything from
	// the warehouse. Distinct from an empty window, which is a valid
	// zero-valued summary.
	ErrNoData = errors.New("no data retrieved")
)

// UnknownDimensionError reports a payment-method label with no warehouse
// mapping. It must propagate rather than default to an arbitrary key, since
// a guessed key would corrupt the fact table.
type UnknownDimensionError struct {
	Dimension string
	Label     string
}

func (e *UnknownDimensionError) Error() string {
	return fmt.Sprintf("unknown %s value %q", e.Dimension, e.Label)
}

// IsUnknownDimension reports whether err wraps an UnknownDimensionError.
func IsUnknownDimension(err error) bool {
	var ude *UnknownDimensionError
	return errors.As(err, &ude)
}
