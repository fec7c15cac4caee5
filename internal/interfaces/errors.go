package interfaces

import (
	"errors"
	"fmt"
)

// Sentinel errors shared across collaborator boundaries. The research core
// classifies failures by matching these, never by inspecting a
// collaborator-specific error format.
var (
	// ErrNotFound is returned by stores when no entry exists for a key
	ErrNotFound = errors.New("not found")

	// ErrNotAuthenticated is returned when no credential is stored for a
	// principal. Not retryable - the principal must authenticate first.
	ErrNotAuthenticated = errors.New("not authenticated")

	// ErrRenewalFailed is returned when credential renewal permanently
	// failed and the stored credential was invalidated. Not retryable -
	// the principal must re-authenticate.
	ErrRenewalFailed = errors.New("credential renewal failed")
)

// StatusError carries an upstream HTTP status code so the executor's retry
// policy can distinguish transient (429, 5xx) from permanent (other 4xx)
// call failures without knowing which collaborator produced it.
type StatusError struct {
	StatusCode int
	URL        string
	Message    string
}

func (e *StatusError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("upstream returned %d for %s: %s", e.StatusCode, e.URL, e.Message)
	}
	return fmt.Sprintf("upstream returned %d for %s", e.StatusCode, e.URL)
}
