package badger

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/arbor"
	"github.com/ternarybob/vestigo/internal/common"
	"github.com/ternarybob/vestigo/internal/interfaces"
	"github.com/ternarybob/vestigo/internal/models"
)

func newTestManager(t *testing.T) *Manager {
	t.Helper()

	manager, err := NewManager(arbor.NewLogger(), &common.BadgerConfig{
		Path: t.TempDir(),
	})
	require.NoError(t, err)
	t.Cleanup(func() { manager.Close() })

	return manager
}

func TestCredentialRoundTrip(t *testing.T) {
	manager := newTestManager(t)
	storage := manager.CredentialStorage()
	ctx := context.Background()

	cred := &models.Credential{
		PrincipalID:  "principal-1",
		AccessToken:  "token-abc",
		RefreshToken: "refresh-xyz",
		Expiry:       time.Now().Add(time.Hour),
		CreatedAt:    time.Now(),
		UpdatedAt:    time.Now(),
	}
	require.NoError(t, storage.StoreCredential(ctx, cred))

	loaded, err := storage.GetCredential(ctx, "principal-1")
	require.NoError(t, err)
	assert.Equal(t, "token-abc", loaded.AccessToken)
	assert.Equal(t, "refresh-xyz", loaded.RefreshToken)

	// Store again overwrites in place
	cred.AccessToken = "token-def"
	require.NoError(t, storage.StoreCredential(ctx, cred))
	loaded, err = storage.GetCredential(ctx, "principal-1")
	require.NoError(t, err)
	assert.Equal(t, "token-def", loaded.AccessToken)

	require.NoError(t, storage.DeleteCredential(ctx, "principal-1"))
	_, err = storage.GetCredential(ctx, "principal-1")
	assert.True(t, errors.Is(err, interfaces.ErrNotFound))

	// Deleting a missing credential is a no-op
	assert.NoError(t, storage.DeleteCredential(ctx, "principal-1"))
}

func TestSnapshotRoundTrip(t *testing.T) {
	manager := newTestManager(t)
	store := manager.JobStatusStore()
	ctx := context.Background()

	snapshot := &models.JobSnapshot{
		JobID:      "job-1",
		Status:     models.JobStatusRunning,
		PhaseIndex: 1,
		Phase:      string(models.PhaseCompetitorAnalysis),
		Progress:   "Phase 2: Competitor Analysis",
		UpdatedAt:  time.Now(),
	}
	require.NoError(t, store.PutSnapshot(ctx, snapshot))

	loaded, err := store.GetSnapshot(ctx, "job-1")
	require.NoError(t, err)
	assert.Equal(t, models.JobStatusRunning, loaded.Status)
	assert.Equal(t, 1, loaded.PhaseIndex)

	// Overwrite with the next committed transition
	snapshot.Status = models.JobStatusSucceeded
	snapshot.PhaseIndex = 5
	snapshot.ResultLink = "https://drive.example.com/folders/f1"
	require.NoError(t, store.PutSnapshot(ctx, snapshot))

	loaded, err = store.GetSnapshot(ctx, "job-1")
	require.NoError(t, err)
	assert.Equal(t, models.JobStatusSucceeded, loaded.Status)
	assert.Equal(t, "https://drive.example.com/folders/f1", loaded.ResultLink)

	_, err = store.GetSnapshot(ctx, "missing")
	assert.True(t, errors.Is(err, interfaces.ErrNotFound))
}

func TestDeleteSnapshot(t *testing.T) {
	manager := newTestManager(t)
	store := manager.JobStatusStore()
	ctx := context.Background()

	require.NoError(t, store.PutSnapshot(ctx, &models.JobSnapshot{
		JobID: "job-1", Status: models.JobStatusSucceeded, UpdatedAt: time.Now(),
	}))

	require.NoError(t, store.DeleteSnapshot(ctx, "job-1"))
	_, err := store.GetSnapshot(ctx, "job-1")
	assert.True(t, errors.Is(err, interfaces.ErrNotFound))

	// Deleting a missing snapshot is a no-op
	assert.NoError(t, store.DeleteSnapshot(ctx, "job-1"))
}

func TestSweepEvictsOnlyExpiredTerminalJobs(t *testing.T) {
	manager := newTestManager(t)
	store := manager.JobStatusStore()
	ctx := context.Background()

	old := time.Now().Add(-48 * time.Hour)
	recent := time.Now()

	snapshots := []*models.JobSnapshot{
		{JobID: "old-succeeded", Status: models.JobStatusSucceeded, UpdatedAt: old},
		{JobID: "old-failed", Status: models.JobStatusFailed, UpdatedAt: old},
		{JobID: "old-running", Status: models.JobStatusRunning, UpdatedAt: old},
		{JobID: "recent-succeeded", Status: models.JobStatusSucceeded, UpdatedAt: recent},
	}
	for _, snap := range snapshots {
		require.NoError(t, store.PutSnapshot(ctx, snap))
	}

	sweeper := NewSweeper(manager, 24*time.Hour, "0 0 * * * *", arbor.NewLogger())
	sweeper.sweep()

	// Terminal and old: gone
	_, err := store.GetSnapshot(ctx, "old-succeeded")
	assert.True(t, errors.Is(err, interfaces.ErrNotFound))
	_, err = store.GetSnapshot(ctx, "old-failed")
	assert.True(t, errors.Is(err, interfaces.ErrNotFound))

	// Running jobs survive regardless of age
	_, err = store.GetSnapshot(ctx, "old-running")
	assert.NoError(t, err)

	// Recent terminal jobs survive
	_, err = store.GetSnapshot(ctx, "recent-succeeded")
	assert.NoError(t, err)
}

func TestDocumentStoragePerJob(t *testing.T) {
	manager := newTestManager(t)
	storage := manager.DocumentStorage()
	ctx := context.Background()

	base := time.Now()
	docs := []*models.Document{
		{ID: "doc-1", JobID: "job-1", FileName: "Acme_Prospect_Overview.md", Content: "overview", CreatedAt: base},
		{ID: "doc-2", JobID: "job-1", FileName: "Acme_Competitor_Analysis.md", Content: "competitors", CreatedAt: base.Add(time.Second)},
		{ID: "doc-3", JobID: "job-2", FileName: "Other_Prospect_Overview.md", Content: "other", CreatedAt: base},
	}
	for _, doc := range docs {
		require.NoError(t, storage.SaveDocument(ctx, doc))
	}

	loaded, err := storage.GetDocumentsByJob(ctx, "job-1")
	require.NoError(t, err)
	require.Len(t, loaded, 2)
	assert.Equal(t, "Acme_Prospect_Overview.md", loaded[0].FileName)
	assert.Equal(t, "Acme_Competitor_Analysis.md", loaded[1].FileName)

	deleted, err := storage.DeleteDocumentsByJob(ctx, "job-1")
	require.NoError(t, err)
	assert.Equal(t, 2, deleted)

	loaded, err = storage.GetDocumentsByJob(ctx, "job-1")
	require.NoError(t, err)
	assert.Empty(t, loaded)

	// Other jobs untouched
	loaded, err = storage.GetDocumentsByJob(ctx, "job-2")
	require.NoError(t, err)
	assert.Len(t, loaded, 1)
}

// flakyDocumentStorage fails a configured number of delete calls before
// delegating to the real storage
type flakyDocumentStorage struct {
	interfaces.DocumentStorage
	failures int
}

func (f *flakyDocumentStorage) DeleteDocumentsByJob(ctx context.Context, jobID string) (int, error) {
	if f.failures > 0 {
		f.failures--
		return 0, errors.New("badger write conflict")
	}
	return f.DocumentStorage.DeleteDocumentsByJob(ctx, jobID)
}

func TestSweepKeepsSnapshotWhenDocumentDeletionFails(t *testing.T) {
	manager := newTestManager(t)
	ctx := context.Background()

	old := time.Now().Add(-48 * time.Hour)
	require.NoError(t, manager.JobStatusStore().PutSnapshot(ctx, &models.JobSnapshot{
		JobID: "job-old", Status: models.JobStatusSucceeded, UpdatedAt: old,
	}))
	require.NoError(t, manager.DocumentStorage().SaveDocument(ctx, &models.Document{
		ID: "doc-1", JobID: "job-old", FileName: "old.md", Content: "old", CreatedAt: old,
	}))

	manager.documents = &flakyDocumentStorage{DocumentStorage: manager.documents, failures: 1}
	sweeper := NewSweeper(manager, 24*time.Hour, "0 0 * * * *", arbor.NewLogger())

	// Document deletion fails, so the snapshot must survive for a later retry
	sweeper.sweep()
	_, err := manager.JobStatusStore().GetSnapshot(ctx, "job-old")
	require.NoError(t, err)
	docs, err := manager.DocumentStorage().GetDocumentsByJob(ctx, "job-old")
	require.NoError(t, err)
	require.Len(t, docs, 1)

	// The next sweep finds the job again and removes documents and snapshot
	sweeper.sweep()
	_, err = manager.JobStatusStore().GetSnapshot(ctx, "job-old")
	assert.True(t, errors.Is(err, interfaces.ErrNotFound))
	docs, err = manager.DocumentStorage().GetDocumentsByJob(ctx, "job-old")
	require.NoError(t, err)
	assert.Empty(t, docs)
}

func TestSweeperRemovesExpiredJobData(t *testing.T) {
	manager := newTestManager(t)
	ctx := context.Background()

	old := time.Now().Add(-48 * time.Hour)
	require.NoError(t, manager.JobStatusStore().PutSnapshot(ctx, &models.JobSnapshot{
		JobID: "job-old", Status: models.JobStatusSucceeded, UpdatedAt: old,
	}))
	require.NoError(t, manager.DocumentStorage().SaveDocument(ctx, &models.Document{
		ID: "doc-1", JobID: "job-old", FileName: "old.md", Content: "old", CreatedAt: old,
	}))

	sweeper := NewSweeper(manager, 24*time.Hour, "0 0 * * * *", arbor.NewLogger())
	sweeper.sweep()

	_, err := manager.JobStatusStore().GetSnapshot(ctx, "job-old")
	assert.True(t, errors.Is(err, interfaces.ErrNotFound))

	docs, err := manager.DocumentStorage().GetDocumentsByJob(ctx, "job-old")
	require.NoError(t, err)
	assert.Empty(t, docs)
}
