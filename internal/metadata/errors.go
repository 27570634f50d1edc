package metadata

import "errors"

// Sentinel errors for the metadata package.
var (
	// ErrInvalidMediaType is returned for identities whose type is neither
	// movie nor tv. This is a caller error and is never retried.
	ErrInvalidMediaType = errors.New("invalid media type")

	// ErrNotFound is returned when the provider has no record for an
	// identity. Aggregation treats it as a valid, skippable outcome.
	ErrNotFound = errors.New("title not found")
)
