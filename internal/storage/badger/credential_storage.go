package badger

import (
	"context"
	"fmt"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/vestigo/internal/interfaces"
	"github.com/ternarybob/vestigo/internal/models"
	"github.com/timshannon/badgerhold/v4"
)

// CredentialStorage implements the CredentialStorage interface for Badger.
// One record per principal id; Upsert makes stores idempotent.
type CredentialStorage struct {
	db     *BadgerDB
	logger arbor.ILogger
}

// NewCredentialStorage creates a new CredentialStorage instance
func NewCredentialStorage(db *BadgerDB, logger arbor.ILogger) interfaces.CredentialStorage {
	return &CredentialStorage{
		db:     db,
		logger: logger,
	}
}

func (s *CredentialStorage) GetCredential(ctx context.Context, principalID string) (*models.Credential, error) {
	var cred models.Credential
	if err := s.db.Store().Get(principalID, &cred); err != nil {
		if err == badgerhold.ErrNotFound {
			return nil, interfaces.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get credential: %w", err)
	}
	return &cred, nil
}

func (s *CredentialStorage) StoreCredential(ctx context.Context, cred *models.Credential) error {
	if cred.PrincipalID == "" {
		return fmt.Errorf("credential principal id is required")
	}

	if err := s.db.Store().Upsert(cred.PrincipalID, cred); err != nil {
		return fmt.Errorf("failed to store credential: %w", err)
	}
	return nil
}

func (s *CredentialStorage) DeleteCredential(ctx context.Context, principalID string) error {
	if err := s.db.Store().Delete(principalID, &models.Credential{}); err != nil {
		if err == badgerhold.ErrNotFound {
			return nil // Already deleted
		}
		return fmt.Errorf("failed to delete credential: %w", err)
	}
	return nil
}
