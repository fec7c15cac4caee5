package auth

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/vestigo/internal/interfaces"
	"github.com/ternarybob/vestigo/internal/models"
)

// Manager is the credential lifecycle manager. It hands out stored
// credentials while they are fresh, renews them once per call when stale,
// and deletes them on renewal failure so the principal is cleanly
// unauthenticated rather than stuck with a dead token.
type Manager struct {
	storage         interfaces.CredentialStorage
	renewer         interfaces.CredentialRenewer
	stalenessMargin time.Duration
	logger          arbor.ILogger

	// One lock per principal serializes renewal and writes so concurrent
	// callers cannot clobber a fresh token with a stale one.
	locks sync.Map
}

// NewManager creates a credential manager with the given staleness margin
func NewManager(storage interfaces.CredentialStorage, renewer interfaces.CredentialRenewer, stalenessMargin time.Duration, logger arbor.ILogger) *Manager {
	if stalenessMargin <= 0 {
		stalenessMargin = 5 * time.Minute
	}
	return &Manager{
		storage:         storage,
		renewer:         renewer,
		stalenessMargin: stalenessMargin,
		logger:          logger,
	}
}

func (m *Manager) lockFor(principalID string) *sync.Mutex {
	lock, _ := m.locks.LoadOrStore(principalID, &sync.Mutex{})
	return lock.(*sync.Mutex)
}

// GetValidCredential returns a credential whose expiry is more than the
// staleness margin away, renewing at most once per call. A missing credential
// yields ErrNotAuthenticated; a failed renewal deletes the stored credential
// and yields ErrRenewalFailed.
func (m *Manager) GetValidCredential(ctx context.Context, principalID string) (*models.Credential, error) {
	lock := m.lockFor(principalID)
	lock.Lock()
	defer lock.Unlock()

	cred, err := m.storage.GetCredential(ctx, principalID)
	if err != nil {
		if errors.Is(err, interfaces.ErrNotFound) {
			return nil, interfaces.ErrNotAuthenticated
		}
		return nil, fmt.Errorf("failed to load credential for %s: %w", principalID, err)
	}

	if cred.FreshWithin(m.stalenessMargin) {
		return cred, nil
	}

	m.logger.Info().
		Str("principal_id", principalID).
		Str("expiry", cred.Expiry.Format(time.RFC3339)).
		Msg("Credential stale, renewing")

	renewed, renewErr := m.renewer.Renew(ctx, cred)
	if renewErr != nil {
		// A credential that cannot be renewed is useless. Delete it so the
		// principal reads as unauthenticated instead of repeatedly failing.
		if delErr := m.storage.DeleteCredential(ctx, principalID); delErr != nil {
			m.logger.Error().
				Err(delErr).
				Str("principal_id", principalID).
				Msg("Failed to delete credential after renewal failure")
		}
		m.logger.Warn().
			Err(renewErr).
			Str("principal_id", principalID).
			Msg("Credential renewal failed")
		return nil, fmt.Errorf("%w: %v", interfaces.ErrRenewalFailed, renewErr)
	}

	renewed.PrincipalID = principalID
	renewed.UpdatedAt = time.Now()
	if err := m.storage.StoreCredential(ctx, renewed); err != nil {
		return nil, fmt.Errorf("failed to persist renewed credential for %s: %w", principalID, err)
	}

	m.logger.Info().
		Str("principal_id", principalID).
		Str("expiry", renewed.Expiry.Format(time.RFC3339)).
		Msg("Credential renewed")

	return renewed, nil
}

// StoreCredential persists a captured credential for a principal
func (m *Manager) StoreCredential(ctx context.Context, cred *models.Credential) error {
	lock := m.lockFor(cred.PrincipalID)
	lock.Lock()
	defer lock.Unlock()

	now := time.Now()
	if cred.CreatedAt.IsZero() {
		cred.CreatedAt = now
	}
	cred.UpdatedAt = now

	if err := m.storage.StoreCredential(ctx, cred); err != nil {
		return fmt.Errorf("failed to store credential for %s: %w", cred.PrincipalID, err)
	}

	m.logger.Info().
		Str("principal_id", cred.PrincipalID).
		Str("expiry", cred.Expiry.Format(time.RFC3339)).
		Msg("Credential stored")

	return nil
}

// DeleteCredential removes a principal's credential
func (m *Manager) DeleteCredential(ctx context.Context, principalID string) error {
	lock := m.lockFor(principalID)
	lock.Lock()
	defer lock.Unlock()

	return m.storage.DeleteCredential(ctx, principalID)
}
