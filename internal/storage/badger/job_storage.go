package badger

import (
	"context"
	"fmt"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/vestigo/internal/interfaces"
	"github.com/ternarybob/vestigo/internal/models"
	"github.com/timshannon/badgerhold/v4"
)

// JobStatusStorage implements the JobStatusStore interface for Badger.
// One snapshot per job id, overwritten on every committed transition, so a
// reader can never observe a half-updated phase.
type JobStatusStorage struct {
	db     *BadgerDB
	logger arbor.ILogger
}

// NewJobStatusStorage creates a new JobStatusStorage instance
func NewJobStatusStorage(db *BadgerDB, logger arbor.ILogger) interfaces.JobStatusStore {
	return &JobStatusStorage{
		db:     db,
		logger: logger,
	}
}

func (s *JobStatusStorage) PutSnapshot(ctx context.Context, snapshot *models.JobSnapshot) error {
	if snapshot.JobID == "" {
		return fmt.Errorf("snapshot job id is required")
	}

	if err := s.db.Store().Upsert(snapshot.JobID, snapshot); err != nil {
		return fmt.Errorf("failed to store snapshot: %w", err)
	}
	return nil
}

func (s *JobStatusStorage) GetSnapshot(ctx context.Context, jobID string) (*models.JobSnapshot, error) {
	var snapshot models.JobSnapshot
	if err := s.db.Store().Get(jobID, &snapshot); err != nil {
		if err == badgerhold.ErrNotFound {
			return nil, interfaces.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get snapshot: %w", err)
	}
	return &snapshot, nil
}

// DeleteSnapshot evicts one job's snapshot. Missing snapshots are a no-op.
func (s *JobStatusStorage) DeleteSnapshot(ctx context.Context, jobID string) error {
	if err := s.db.Store().Delete(jobID, &models.JobSnapshot{}); err != nil {
		if err == badgerhold.ErrNotFound {
			return nil
		}
		return fmt.Errorf("failed to delete snapshot %s: %w", jobID, err)
	}
	return nil
}
