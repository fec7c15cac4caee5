package interfaces

import (
	"context"

	"github.com/ternarybob/vestigo/internal/models"
)

// ArtifactRef identifies one uploaded artifact in the external store
type ArtifactRef struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	WebViewLink string `json:"web_view_link,omitempty"`
}

// ArtifactStore is the external destination for produced research documents.
// Calls are authenticated with the caller-supplied credential; the store
// never consults the credential manager itself.
type ArtifactStore interface {
	// EnsureFolder finds a folder by name or creates it, returning its id
	EnsureFolder(ctx context.Context, cred *models.Credential, name string) (string, error)

	// UploadText uploads text content as a named file into a folder
	UploadText(ctx context.Context, cred *models.Credential, folderID, fileName, content string) (*ArtifactRef, error)

	// FolderLink returns the browsable link for a folder id
	FolderLink(folderID string) string
}
