package interfaces

import "context"

// ResearchOrchestrator owns the fixed phase sequence and the job state
// machine. Submit performs the synchronous setup precondition (resolving the
// artifact destination) and returns a job id immediately; phase execution is
// driven by the orchestrator's worker pool, never by the caller.
type ResearchOrchestrator interface {
	Submit(ctx context.Context, principalID, companyName, folderName string) (string, error)

	// Cancel requests cancellation of a running job. In-flight work items
	// finish; no further phase starts. Returns false for unknown or
	// already-terminal jobs.
	Cancel(jobID string) bool

	// Stop drains in-flight phases and shuts the orchestrator down
	Stop()
}
