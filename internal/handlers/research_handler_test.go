package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/arbor"
	"github.com/ternarybob/vestigo/internal/interfaces"
	"github.com/ternarybob/vestigo/internal/models"
)

// fakeOrchestrator records submissions and serves canned results
type fakeOrchestrator struct {
	mu          sync.Mutex
	submitErr   error
	jobID       string
	cancelable  map[string]bool
	lastCompany string
	lastFolder  string
}

func (f *fakeOrchestrator) Submit(ctx context.Context, principalID, companyName, folderName string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.submitErr != nil {
		return "", f.submitErr
	}
	f.lastCompany = companyName
	f.lastFolder = folderName
	return f.jobID, nil
}

func (f *fakeOrchestrator) Cancel(jobID string) bool {
	return f.cancelable[jobID]
}

func (f *fakeOrchestrator) Stop() {}

// fakeSnapshotStore serves a fixed snapshot set
type fakeSnapshotStore struct {
	snapshots map[string]*models.JobSnapshot
}

func (f *fakeSnapshotStore) PutSnapshot(ctx context.Context, snapshot *models.JobSnapshot) error {
	f.snapshots[snapshot.JobID] = snapshot
	return nil
}

func (f *fakeSnapshotStore) GetSnapshot(ctx context.Context, jobID string) (*models.JobSnapshot, error) {
	snap, ok := f.snapshots[jobID]
	if !ok {
		return nil, interfaces.ErrNotFound
	}
	return snap, nil
}

func (f *fakeSnapshotStore) DeleteSnapshot(ctx context.Context, jobID string) error {
	delete(f.snapshots, jobID)
	return nil
}

func newTestResearchHandler(orch *fakeOrchestrator, store *fakeSnapshotStore) *ResearchHandler {
	if store == nil {
		store = &fakeSnapshotStore{snapshots: make(map[string]*models.JobSnapshot)}
	}
	return NewResearchHandler(orch, store, arbor.NewLogger())
}

func TestSubmitAcceptsValidRequest(t *testing.T) {
	orch := &fakeOrchestrator{jobID: "job-1"}
	handler := newTestResearchHandler(orch, nil)

	req := httptest.NewRequest("POST", "/api/research", strings.NewReader(`{"company_name": "Acme"}`))
	req.Header.Set("X-Principal-ID", "principal-1")
	w := httptest.NewRecorder()

	handler.SubmitHandler(w, req)

	require.Equal(t, http.StatusAccepted, w.Code)

	var resp map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "job-1", resp["job_id"])
	assert.Equal(t, "queued", resp["status"])

	// Folder name defaults from the company name
	assert.Equal(t, "Acme", orch.lastCompany)
	assert.Equal(t, "Acme Research", orch.lastFolder)
}

func TestSubmitRequiresPrincipalHeader(t *testing.T) {
	handler := newTestResearchHandler(&fakeOrchestrator{jobID: "job-1"}, nil)

	req := httptest.NewRequest("POST", "/api/research", strings.NewReader(`{"company_name": "Acme"}`))
	w := httptest.NewRecorder()

	handler.SubmitHandler(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSubmitRejectsMissingCompanyName(t *testing.T) {
	handler := newTestResearchHandler(&fakeOrchestrator{jobID: "job-1"}, nil)

	req := httptest.NewRequest("POST", "/api/research", strings.NewReader(`{"folder_name": "X"}`))
	req.Header.Set("X-Principal-ID", "principal-1")
	w := httptest.NewRecorder()

	handler.SubmitHandler(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSubmitUnauthenticatedIs401(t *testing.T) {
	orch := &fakeOrchestrator{submitErr: interfaces.ErrNotAuthenticated}
	handler := newTestResearchHandler(orch, nil)

	req := httptest.NewRequest("POST", "/api/research", strings.NewReader(`{"company_name": "Acme"}`))
	req.Header.Set("X-Principal-ID", "principal-1")
	w := httptest.NewRecorder()

	handler.SubmitHandler(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestSubmitRejectsWrongMethod(t *testing.T) {
	handler := newTestResearchHandler(&fakeOrchestrator{}, nil)

	req := httptest.NewRequest("GET", "/api/research", nil)
	w := httptest.NewRecorder()

	handler.SubmitHandler(w, req)
	assert.Equal(t, http.StatusMethodNotAllowed, w.Code)
}

func TestStatusReturnsSnapshot(t *testing.T) {
	store := &fakeSnapshotStore{snapshots: map[string]*models.JobSnapshot{
		"job-1": {
			JobID:    "job-1",
			Status:   models.JobStatusRunning,
			Phase:    string(models.PhaseDeepDive),
			Progress: "Phase 1: Prospect Deep Dive",
		},
	}}
	handler := newTestResearchHandler(&fakeOrchestrator{}, store)

	req := httptest.NewRequest("GET", "/api/research/status?id=job-1", nil)
	w := httptest.NewRecorder()

	handler.StatusJobHandler(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	var snap models.JobSnapshot
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &snap))
	assert.Equal(t, models.JobStatusRunning, snap.Status)
	assert.Equal(t, "Phase 1: Prospect Deep Dive", snap.Progress)
}

func TestStatusUnknownJobReportsUnknown(t *testing.T) {
	handler := newTestResearchHandler(&fakeOrchestrator{}, nil)

	req := httptest.NewRequest("GET", "/api/research/status?id=missing", nil)
	w := httptest.NewRecorder()

	handler.StatusJobHandler(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	var resp map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "unknown", resp["status"])
	assert.Equal(t, "missing", resp["job_id"])
}

func TestStatusRequiresID(t *testing.T) {
	handler := newTestResearchHandler(&fakeOrchestrator{}, nil)

	req := httptest.NewRequest("GET", "/api/research/status", nil)
	w := httptest.NewRecorder()

	handler.StatusJobHandler(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCancelRunningJob(t *testing.T) {
	orch := &fakeOrchestrator{cancelable: map[string]bool{"job-1": true}}
	handler := newTestResearchHandler(orch, nil)

	req := httptest.NewRequest("POST", "/api/research/cancel?id=job-1", nil)
	w := httptest.NewRecorder()

	handler.CancelHandler(w, req)
	assert.Equal(t, http.StatusAccepted, w.Code)
}

func TestCancelUnknownJobIs404(t *testing.T) {
	handler := newTestResearchHandler(&fakeOrchestrator{}, nil)

	req := httptest.NewRequest("POST", "/api/research/cancel?id=missing", nil)
	w := httptest.NewRecorder()

	handler.CancelHandler(w, req)
	assert.Equal(t, http.StatusNotFound, w.Code)
}
