package calculation

import "errors"

var (
	// ErrConfigInvalid marks a profile that cannot be simulated.
	ErrConfigInvalid = errors.New("invalid configuration")
	// ErrTaxSolveFailed is returned when the withdrawal gross-up does not converge.
	ErrTaxSolveFailed = errors.New("tax gross-up did not converge")
	// ErrMissingHistoricalYear is returned when a replayed year has no usable returns.
	ErrMissingHistoricalYear = errors.New("missing historical year")
)
