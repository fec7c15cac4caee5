package badger

import (
	"context"
	"fmt"
	"time"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/vestigo/internal/interfaces"
	"github.com/ternarybob/vestigo/internal/models"
	"github.com/timshannon/badgerhold/v4"
)

// DocumentStorage implements the DocumentStorage interface for Badger
type DocumentStorage struct {
	db     *BadgerDB
	logger arbor.ILogger
}

// NewDocumentStorage creates a new DocumentStorage instance
func NewDocumentStorage(db *BadgerDB, logger arbor.ILogger) interfaces.DocumentStorage {
	return &DocumentStorage{
		db:     db,
		logger: logger,
	}
}

func (s *DocumentStorage) SaveDocument(ctx context.Context, doc *models.Document) error {
	if doc.ID == "" {
		return fmt.Errorf("document id is required")
	}
	if doc.JobID == "" {
		return fmt.Errorf("document job id is required")
	}
	if doc.CreatedAt.IsZero() {
		doc.CreatedAt = time.Now()
	}

	if err := s.db.Store().Upsert(doc.ID, doc); err != nil {
		return fmt.Errorf("failed to save document: %w", err)
	}
	return nil
}

// GetDocumentsByJob returns a job's documents in creation order, which is the
// order the upload phase presents them
func (s *DocumentStorage) GetDocumentsByJob(ctx context.Context, jobID string) ([]*models.Document, error) {
	var docs []models.Document
	query := badgerhold.Where("JobID").Eq(jobID).Index("JobID").SortBy("CreatedAt")
	if err := s.db.Store().Find(&docs, query); err != nil {
		return nil, fmt.Errorf("failed to find documents for job %s: %w", jobID, err)
	}

	result := make([]*models.Document, len(docs))
	for i := range docs {
		result[i] = &docs[i]
	}
	return result, nil
}

func (s *DocumentStorage) DeleteDocumentsByJob(ctx context.Context, jobID string) (int, error) {
	var docs []models.Document
	query := badgerhold.Where("JobID").Eq(jobID).Index("JobID")
	if err := s.db.Store().Find(&docs, query); err != nil {
		return 0, fmt.Errorf("failed to find documents for job %s: %w", jobID, err)
	}

	deleted := 0
	for i := range docs {
		if err := s.db.Store().Delete(docs[i].ID, &models.Document{}); err != nil {
			if err == badgerhold.ErrNotFound {
				continue
			}
			return deleted, fmt.Errorf("failed to delete document %s: %w", docs[i].ID, err)
		}
		deleted++
	}
	return deleted, nil
}
