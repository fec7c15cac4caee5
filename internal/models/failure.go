package models

// FailureReason classifies how a call, phase, or job failed. The taxonomy is
// fixed: collaborator-specific error formats never leak past the executor
// boundary, only these reasons do.
type FailureReason string

const (
	// FailureAuthenticationRequired - no usable credential; never retried
	FailureAuthenticationRequired FailureReason = "authentication_required"
	// FailureRenewalFailed - credential permanently invalid; principal must re-authenticate
	FailureRenewalFailed FailureReason = "renewal_failed"
	// FailureTransient - network error, rate limit, or 5xx; retried with backoff
	FailureTransient FailureReason = "transient_call_failure"
	// FailurePermanent - malformed input or non-retryable 4xx; fails on first attempt
	FailurePermanent FailureReason = "permanent_call_failure"
	// FailurePhaseTimeout - phase exceeded its end-to-end bound
	FailurePhaseTimeout FailureReason = "phase_timeout"
	// FailureSetup - pre-job setup failed; no job was created
	FailureSetup FailureReason = "setup_failure"
	// FailureCancelled - job cancelled while a phase was in flight
	FailureCancelled FailureReason = "cancelled"
)
