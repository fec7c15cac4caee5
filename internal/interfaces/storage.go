package interfaces

import (
	"context"

	"github.com/ternarybob/vestigo/internal/models"
)

// JobStatusStore holds the committed snapshot per job id. Written by the
// orchestrator on every transition, read by the status-polling boundary.
// Readers see the latest committed snapshot or ErrNotFound - never a
// half-updated phase.
type JobStatusStore interface {
	PutSnapshot(ctx context.Context, snapshot *models.JobSnapshot) error
	GetSnapshot(ctx context.Context, jobID string) (*models.JobSnapshot, error)

	// DeleteSnapshot evicts one job's snapshot. Deleting a missing
	// snapshot is a no-op.
	DeleteSnapshot(ctx context.Context, jobID string) error
}

// DocumentStorage persists produced research documents per job
type DocumentStorage interface {
	SaveDocument(ctx context.Context, doc *models.Document) error
	GetDocumentsByJob(ctx context.Context, jobID string) ([]*models.Document, error)
	DeleteDocumentsByJob(ctx context.Context, jobID string) (int, error)
}

// StorageManager aggregates the persistent stores behind one lifecycle
type StorageManager interface {
	CredentialStorage() CredentialStorage
	JobStatusStore() JobStatusStore
	DocumentStorage() DocumentStorage
	Close() error
}
