package research

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/arbor"
	"github.com/ternarybob/vestigo/internal/interfaces"
	"github.com/ternarybob/vestigo/internal/models"
)

func newTestRunner() *Runner {
	executor := NewExecutor(&fakeCredentials{}, fastPolicy(), arbor.NewLogger())
	return NewRunner(executor, 4, arbor.NewLogger())
}

func succeedingItem(name string, class models.ItemClass) *Item {
	return &Item{
		Spec: &models.WorkItem{
			ID: name, Name: name, Target: name,
			Class: class, MaxAttempts: 3, Status: models.ItemPending,
		},
		Call: func(ctx context.Context, cred *models.Credential) error {
			return nil
		},
	}
}

func failingItem(name string, class models.ItemClass) *Item {
	return &Item{
		Spec: &models.WorkItem{
			ID: name, Name: name, Target: name,
			Class: class, MaxAttempts: 3, Status: models.ItemPending,
		},
		Call: func(ctx context.Context, cred *models.Credential) error {
			return &interfaces.StatusError{StatusCode: 404, URL: name}
		},
	}
}

func TestRunZeroItemsSucceeds(t *testing.T) {
	runner := newTestRunner()

	result := runner.Run(context.Background(), models.PhaseContentExtraction, nil)

	assert.Equal(t, models.PhaseSucceeded, result.Status)
	assert.Empty(t, result.Items)
}

func TestRunAllItemsSucceed(t *testing.T) {
	runner := newTestRunner()

	result := runner.Run(context.Background(), models.PhaseContentExtraction, []*Item{
		succeedingItem("a", models.ItemBestEffort),
		succeedingItem("b", models.ItemBestEffort),
	})

	assert.Equal(t, models.PhaseSucceeded, result.Status)
	assert.Len(t, result.Items, 2)
}

func TestRunCriticalFailureFailsPhase(t *testing.T) {
	runner := newTestRunner()

	result := runner.Run(context.Background(), models.PhaseDeepDive, []*Item{
		failingItem("deep_dive", models.ItemCritical),
	})

	require.Equal(t, models.PhaseFailed, result.Status)
	assert.Equal(t, models.FailurePermanent, result.FailureReason)
	assert.Contains(t, result.FailureDetail, "deep_dive")
}

func TestRunBestEffortFailuresArePartial(t *testing.T) {
	runner := newTestRunner()

	result := runner.Run(context.Background(), models.PhaseContentExtraction, []*Item{
		succeedingItem("a", models.ItemBestEffort),
		failingItem("b", models.ItemBestEffort),
		succeedingItem("c", models.ItemBestEffort),
		failingItem("d", models.ItemBestEffort),
		succeedingItem("e", models.ItemBestEffort),
	})

	assert.Equal(t, models.PhasePartiallySucceeded, result.Status)
	assert.Empty(t, result.FailureReason)
	assert.Len(t, result.Items, 5)

	failed := 0
	for _, item := range result.Items {
		if item.Status == models.ItemFailed {
			failed++
		}
	}
	assert.Equal(t, 2, failed)
}

func TestRunOneFailureDoesNotAbortOthers(t *testing.T) {
	runner := newTestRunner()

	result := runner.Run(context.Background(), models.PhaseContentExtraction, []*Item{
		failingItem("a", models.ItemBestEffort),
		succeedingItem("b", models.ItemBestEffort),
	})

	succeeded := 0
	for _, item := range result.Items {
		if item.Status == models.ItemSucceeded {
			succeeded++
		}
	}
	assert.Equal(t, 1, succeeded)
}

func TestRunCriticalFailureOutranksPartial(t *testing.T) {
	runner := newTestRunner()

	result := runner.Run(context.Background(), models.PhaseDeepDive, []*Item{
		failingItem("best", models.ItemBestEffort),
		failingItem("critical", models.ItemCritical),
	})

	assert.Equal(t, models.PhaseFailed, result.Status)
}
