package catalog

import "errors"

var (
	// ErrSourceUnavailable is returned when a bulk feed file is missing.
	ErrSourceUnavailable = errors.New("source unavailable")
	// ErrMalformedDocument is returned when a single feed document cannot be decoded.
	ErrMalformedDocument = errors.New("malformed document")
	// ErrStoreUnavailable is returned when the catalog store cannot be opened or created.
	ErrStoreUnavailable = errors.New("store unavailable")
	// ErrExternalSearch is returned when the package manager search fails.
	ErrExternalSearch = errors.New("external search failed")
)
