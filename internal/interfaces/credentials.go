package interfaces

import (
	"context"

	"github.com/ternarybob/vestigo/internal/models"
)

// CredentialManager is the credential lifecycle manager consulted by every
// work item executor before a call that needs authentication.
//
// GetValidCredential returns the stored credential unchanged while its expiry
// is more than the safety margin in the future. Otherwise it attempts renewal
// exactly once per call: on success the refreshed credential is persisted
// atomically and returned; on failure the stored credential is deleted and
// ErrRenewalFailed is returned. A missing credential yields
// ErrNotAuthenticated. Updates are serialized per principal so concurrent
// renewals cannot overwrite each other with a stale token.
type CredentialManager interface {
	GetValidCredential(ctx context.Context, principalID string) (*models.Credential, error)
	StoreCredential(ctx context.Context, cred *models.Credential) error
	DeleteCredential(ctx context.Context, principalID string) error
}

// CredentialRenewer exchanges a refresh token for a new access token.
// Implemented against the identity provider's token endpoint; the manager
// treats any renewal error as permanent.
type CredentialRenewer interface {
	Renew(ctx context.Context, cred *models.Credential) (*models.Credential, error)
}

// CredentialStorage persists credentials keyed by principal id.
// GetCredential returns ErrNotFound when no credential is stored.
type CredentialStorage interface {
	GetCredential(ctx context.Context, principalID string) (*models.Credential, error)
	StoreCredential(ctx context.Context, cred *models.Credential) error
	DeleteCredential(ctx context.Context, principalID string) error
}
