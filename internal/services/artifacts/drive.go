package artifacts

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"strings"
	"time"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/vestigo/internal/common"
	"github.com/ternarybob/vestigo/internal/interfaces"
	"github.com/ternarybob/vestigo/internal/models"
)

const folderMimeType = "application/vnd.google-apps.folder"

// DriveStore uploads research documents to Google Drive over its REST API.
// Every call authenticates with the caller-supplied credential; the store
// never refreshes tokens itself.
type DriveStore struct {
	client        *http.Client
	apiBaseURL    string
	uploadBaseURL string
	logger        arbor.ILogger
}

// NewDriveStore creates a Drive artifact store from the drive config
func NewDriveStore(cfg *common.DriveConfig, logger arbor.ILogger) *DriveStore {
	return &DriveStore{
		client:        &http.Client{Timeout: 60 * time.Second},
		apiBaseURL:    strings.TrimRight(cfg.APIBaseURL, "/"),
		uploadBaseURL: strings.TrimRight(cfg.UploadBaseURL, "/"),
		logger:        logger,
	}
}

type driveFile struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	WebViewLink string `json:"webViewLink,omitempty"`
}

type driveFileList struct {
	Files []driveFile `json:"files"`
}

// EnsureFolder finds a folder by exact name or creates it, returning its id.
// Lookup before create keeps repeated jobs for the same prospect in one
// folder instead of accumulating duplicates.
func (d *DriveStore) EnsureFolder(ctx context.Context, cred *models.Credential, name string) (string, error) {
	query := fmt.Sprintf("name = '%s' and mimeType = '%s' and trashed = false",
		strings.ReplaceAll(name, "'", `\'`), folderMimeType)

	listURL := fmt.Sprintf("%s/files?q=%s&fields=files(id,name)&pageSize=1",
		d.apiBaseURL, url.QueryEscape(query))

	var list driveFileList
	if err := d.doJSON(ctx, cred, http.MethodGet, listURL, nil, &list); err != nil {
		return "", fmt.Errorf("folder lookup failed: %w", err)
	}

	if len(list.Files) > 0 {
		d.logger.Debug().
			Str("folder", name).
			Str("folder_id", list.Files[0].ID).
			Msg("Found existing folder")
		return list.Files[0].ID, nil
	}

	metadata := map[string]any{
		"name":     name,
		"mimeType": folderMimeType,
	}
	body, err := json.Marshal(metadata)
	if err != nil {
		return "", fmt.Errorf("failed to encode folder metadata: %w", err)
	}

	var created driveFile
	createURL := d.apiBaseURL + "/files?fields=id,name"
	if err := d.doJSON(ctx, cred, http.MethodPost, createURL, bytes.NewReader(body), &created); err != nil {
		return "", fmt.Errorf("folder creation failed: %w", err)
	}

	d.logger.Info().
		Str("folder", name).
		Str("folder_id", created.ID).
		Msg("Created folder")

	return created.ID, nil
}

// UploadText uploads text content as a named file into a folder using a
// multipart upload: one metadata part, one content part
func (d *DriveStore) UploadText(ctx context.Context, cred *models.Credential, folderID, fileName, content string) (*interfaces.ArtifactRef, error) {
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)

	metadata := map[string]any{
		"name":    fileName,
		"parents": []string{folderID},
	}
	metadataBytes, err := json.Marshal(metadata)
	if err != nil {
		return nil, fmt.Errorf("failed to encode file metadata: %w", err)
	}

	metaHeader := textproto.MIMEHeader{}
	metaHeader.Set("Content-Type", "application/json; charset=UTF-8")
	metaPart, err := writer.CreatePart(metaHeader)
	if err != nil {
		return nil, fmt.Errorf("failed to create metadata part: %w", err)
	}
	if _, err := metaPart.Write(metadataBytes); err != nil {
		return nil, fmt.Errorf("failed to write metadata part: %w", err)
	}

	contentHeader := textproto.MIMEHeader{}
	contentHeader.Set("Content-Type", "text/markdown; charset=UTF-8")
	contentPart, err := writer.CreatePart(contentHeader)
	if err != nil {
		return nil, fmt.Errorf("failed to create content part: %w", err)
	}
	if _, err := io.WriteString(contentPart, content); err != nil {
		return nil, fmt.Errorf("failed to write content part: %w", err)
	}

	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("failed to finalize multipart body: %w", err)
	}

	uploadURL := d.uploadBaseURL + "/files?uploadType=multipart&fields=id,name,webViewLink"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, uploadURL, &buf)
	if err != nil {
		return nil, fmt.Errorf("failed to build upload request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+cred.AccessToken)
	req.Header.Set("Content-Type", "multipart/related; boundary="+writer.Boundary())

	var uploaded driveFile
	if err := d.execute(req, &uploaded); err != nil {
		return nil, fmt.Errorf("upload of %s failed: %w", fileName, err)
	}

	d.logger.Info().
		Str("file_name", fileName).
		Str("file_id", uploaded.ID).
		Str("folder_id", folderID).
		Msg("Document uploaded")

	return &interfaces.ArtifactRef{
		ID:          uploaded.ID,
		Name:        uploaded.Name,
		WebViewLink: uploaded.WebViewLink,
	}, nil
}

// FolderLink returns the browsable link for a folder id
func (d *DriveStore) FolderLink(folderID string) string {
	return "https://drive.google.com/drive/folders/" + folderID
}

// doJSON issues one authenticated JSON request
func (d *DriveStore) doJSON(ctx context.Context, cred *models.Credential, method, requestURL string, body io.Reader, out any) error {
	req, err := http.NewRequestWithContext(ctx, method, requestURL, body)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+cred.AccessToken)
	if body != nil {
		req.Header.Set("Content-Type", "application/json; charset=UTF-8")
	}

	return d.execute(req, out)
}

// execute sends a request and decodes the response, mapping auth rejections
// to ErrNotAuthenticated and other failures to a StatusError
func (d *DriveStore) execute(req *http.Request, out any) error {
	resp, err := d.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized {
		return fmt.Errorf("%w: drive rejected the access token", interfaces.ErrNotAuthenticated)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return &interfaces.StatusError{
			StatusCode: resp.StatusCode,
			URL:        req.URL.String(),
			Message:    strings.TrimSpace(string(detail)),
		}
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}
