package research

import (
	"context"
	"errors"
	"net"

	"github.com/ternarybob/vestigo/internal/interfaces"
	"github.com/ternarybob/vestigo/internal/models"
)

// Failure pairs an error with its place in the failure taxonomy. Collaborator
// errors are classified once, at the executor boundary, and only the reason
// propagates upward.
type Failure struct {
	Reason models.FailureReason
	Err    error
}

func (f *Failure) Error() string {
	if f.Err == nil {
		return string(f.Reason)
	}
	return f.Err.Error()
}

func (f *Failure) Unwrap() error {
	return f.Err
}

// NewFailure wraps err with an explicit classification
func NewFailure(reason models.FailureReason, err error) *Failure {
	return &Failure{Reason: reason, Err: err}
}

// Classify maps an error to its failure reason. Pre-classified failures keep
// their reason; auth sentinels map to the identity reasons; status codes and
// network conditions decide transient vs permanent. Anything unrecognized is
// permanent - unclassified errors are never retried.
func Classify(err error) models.FailureReason {
	if err == nil {
		return ""
	}

	var failure *Failure
	if errors.As(err, &failure) {
		return failure.Reason
	}

	if errors.Is(err, interfaces.ErrNotAuthenticated) {
		return models.FailureAuthenticationRequired
	}
	if errors.Is(err, interfaces.ErrRenewalFailed) {
		return models.FailureRenewalFailed
	}

	var statusErr *interfaces.StatusError
	if errors.As(err, &statusErr) {
		if isRetryableStatusCode(statusErr.StatusCode) {
			return models.FailureTransient
		}
		return models.FailurePermanent
	}

	if isRetryableNetworkError(err) {
		return models.FailureTransient
	}

	return models.FailurePermanent
}

// isRetryableStatusCode reports whether a status code indicates a transient condition
func isRetryableStatusCode(statusCode int) bool {
	switch statusCode {
	case 408, 429, 500, 502, 503, 504:
		return true
	}
	return false
}

// isRetryableNetworkError checks for timeouts and connection-level errors
func isRetryableNetworkError(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		return netErr.Timeout()
	}

	var opErr *net.OpError
	return errors.As(err, &opErr)
}
