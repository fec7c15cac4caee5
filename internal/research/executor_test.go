package research

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/arbor"
	"github.com/ternarybob/vestigo/internal/interfaces"
	"github.com/ternarybob/vestigo/internal/models"
)

// fakeCredentials is a CredentialManager that serves a fixed credential or error
type fakeCredentials struct {
	mu    sync.Mutex
	cred  *models.Credential
	err   error
	calls int
}

func (f *fakeCredentials) GetValidCredential(ctx context.Context, principalID string) (*models.Credential, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.cred, nil
}

func (f *fakeCredentials) StoreCredential(ctx context.Context, cred *models.Credential) error {
	return nil
}

func (f *fakeCredentials) DeleteCredential(ctx context.Context, principalID string) error {
	return nil
}

func fastPolicy() *RetryPolicy {
	return &RetryPolicy{
		MaxAttempts:       3,
		InitialBackoff:    time.Millisecond,
		MaxBackoff:        5 * time.Millisecond,
		BackoffMultiplier: 2.0,
	}
}

func newTestItem(class models.ItemClass, needsAuth bool) *models.WorkItem {
	return &models.WorkItem{
		ID:          "item-1",
		Phase:       models.PhaseContentExtraction,
		Name:        "test item",
		Target:      "https://example.com/page",
		Class:       class,
		PrincipalID: "principal-1",
		NeedsAuth:   needsAuth,
		MaxAttempts: 3,
		Status:      models.ItemPending,
	}
}

func TestExecuteSucceedsFirstAttempt(t *testing.T) {
	executor := NewExecutor(&fakeCredentials{}, fastPolicy(), arbor.NewLogger())
	item := newTestItem(models.ItemBestEffort, false)

	outcome := executor.Execute(context.Background(), item, func(ctx context.Context, cred *models.Credential) error {
		return nil
	})

	assert.Equal(t, models.ItemSucceeded, outcome.Status)
	assert.Equal(t, 1, outcome.Attempts)
	assert.Empty(t, outcome.Error)
}

func TestExecuteRetriesTransientUntilSuccess(t *testing.T) {
	executor := NewExecutor(&fakeCredentials{}, fastPolicy(), arbor.NewLogger())
	item := newTestItem(models.ItemBestEffort, false)

	calls := 0
	outcome := executor.Execute(context.Background(), item, func(ctx context.Context, cred *models.Credential) error {
		calls++
		if calls < 3 {
			return &interfaces.StatusError{StatusCode: 503, URL: item.Target}
		}
		return nil
	})

	assert.Equal(t, models.ItemSucceeded, outcome.Status)
	assert.Equal(t, 3, outcome.Attempts)
	assert.Equal(t, 3, calls)
}

func TestExecuteExhaustsTransientBudget(t *testing.T) {
	executor := NewExecutor(&fakeCredentials{}, fastPolicy(), arbor.NewLogger())
	item := newTestItem(models.ItemCritical, false)

	calls := 0
	outcome := executor.Execute(context.Background(), item, func(ctx context.Context, cred *models.Credential) error {
		calls++
		return &interfaces.StatusError{StatusCode: 429, URL: item.Target}
	})

	assert.Equal(t, models.ItemFailed, outcome.Status)
	assert.Equal(t, models.FailureTransient, outcome.Reason)
	assert.Equal(t, 3, outcome.Attempts)
	assert.Equal(t, 3, calls)
}

func TestExecutePermanentFailsImmediately(t *testing.T) {
	executor := NewExecutor(&fakeCredentials{}, fastPolicy(), arbor.NewLogger())
	item := newTestItem(models.ItemBestEffort, false)

	calls := 0
	outcome := executor.Execute(context.Background(), item, func(ctx context.Context, cred *models.Credential) error {
		calls++
		return &interfaces.StatusError{StatusCode: 404, URL: item.Target}
	})

	assert.Equal(t, models.ItemFailed, outcome.Status)
	assert.Equal(t, models.FailurePermanent, outcome.Reason)
	assert.Equal(t, 1, outcome.Attempts)
	assert.Equal(t, 1, calls)
}

func TestExecuteAuthFailureIsTerminal(t *testing.T) {
	creds := &fakeCredentials{err: interfaces.ErrNotAuthenticated}
	executor := NewExecutor(creds, fastPolicy(), arbor.NewLogger())
	item := newTestItem(models.ItemBestEffort, true)

	called := false
	outcome := executor.Execute(context.Background(), item, func(ctx context.Context, cred *models.Credential) error {
		called = true
		return nil
	})

	assert.False(t, called, "call must not run without a credential")
	assert.Equal(t, models.ItemFailed, outcome.Status)
	assert.Equal(t, models.FailureAuthenticationRequired, outcome.Reason)
	assert.Equal(t, 1, outcome.Attempts)
	assert.Equal(t, 1, creds.calls)
}

func TestExecuteRenewalFailureIsTerminal(t *testing.T) {
	creds := &fakeCredentials{err: fmt.Errorf("%w: provider said no", interfaces.ErrRenewalFailed)}
	executor := NewExecutor(creds, fastPolicy(), arbor.NewLogger())
	item := newTestItem(models.ItemCritical, true)

	outcome := executor.Execute(context.Background(), item, func(ctx context.Context, cred *models.Credential) error {
		return nil
	})

	assert.Equal(t, models.ItemFailed, outcome.Status)
	assert.Equal(t, models.FailureRenewalFailed, outcome.Reason)
}

func TestExecutePassesCredentialToCall(t *testing.T) {
	creds := &fakeCredentials{cred: &models.Credential{
		PrincipalID: "principal-1",
		AccessToken: "token-abc",
	}}
	executor := NewExecutor(creds, fastPolicy(), arbor.NewLogger())
	item := newTestItem(models.ItemBestEffort, true)

	var seen *models.Credential
	outcome := executor.Execute(context.Background(), item, func(ctx context.Context, cred *models.Credential) error {
		seen = cred
		return nil
	})

	require.NotNil(t, seen)
	assert.Equal(t, "token-abc", seen.AccessToken)
	assert.Equal(t, models.ItemSucceeded, outcome.Status)
}

func TestExecuteStopsOnContextCancel(t *testing.T) {
	executor := NewExecutor(&fakeCredentials{}, &RetryPolicy{
		MaxAttempts:       3,
		InitialBackoff:    time.Second,
		MaxBackoff:        time.Second,
		BackoffMultiplier: 1.0,
	}, arbor.NewLogger())
	item := newTestItem(models.ItemBestEffort, false)

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(20 * time.Millisecond)
		cancel()
	}()

	start := time.Now()
	outcome := executor.Execute(ctx, item, func(ctx context.Context, cred *models.Credential) error {
		return &interfaces.StatusError{StatusCode: 503, URL: item.Target}
	})

	// Cancellation interrupts the backoff wait instead of sleeping it out
	assert.Equal(t, models.ItemFailed, outcome.Status)
	assert.Equal(t, models.FailureTransient, outcome.Reason)
	assert.Equal(t, 1, outcome.Attempts)
	assert.Less(t, time.Since(start), 500*time.Millisecond)
}

func TestClassifyUnrecognizedErrorIsPermanent(t *testing.T) {
	assert.Equal(t, models.FailurePermanent, Classify(errors.New("malformed payload")))
	assert.Equal(t, models.FailureTransient, Classify(context.DeadlineExceeded))
}
