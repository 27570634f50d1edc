package recommend

import "errors"

// Sentinel errors for the recommend package.
var (
	// ErrNoSeeds is returned when no seed identities were supplied.
	ErrNoSeeds = errors.New("no seed identities supplied")

	// ErrSeedsUnresolved is returned when metadata could not be resolved
	// for any seed. Partial seed failures are tolerated; total failure is
	// fatal for the call.
	ErrSeedsUnresolved = errors.New("no seed metadata could be resolved")
)
