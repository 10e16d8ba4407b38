package cards

import (
	"errors"
	"fmt"
)

var (
	// ErrConfigMissing marks a source skipped because its identifiers or
	// credentials are absent.
	ErrConfigMissing = errors.New("source is not configured")

	// ErrManifestTimeout marks a remote manifest fetch that exceeded its bound.
	ErrManifestTimeout = errors.New("manifest request timed out")
)

// FetchError represents a non-success response status from a remote source.
type FetchError struct {
	URL    string
	Status int
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("manifest fetch failed (%d): %s", e.Status, e.URL)
}
