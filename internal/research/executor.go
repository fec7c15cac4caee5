package research

import (
	"context"
	"time"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/vestigo/internal/interfaces"
	"github.com/ternarybob/vestigo/internal/models"
)

// ItemFunc performs one attempt of a work item's external call. The supplied
// credential is nil for items that do not require authentication.
type ItemFunc func(ctx context.Context, cred *models.Credential) error

// Executor runs one work item to a terminal state. It acquires a credential
// before each authenticated attempt, retries transient failures with backoff,
// and communicates every failure through the item outcome - nothing escapes
// its boundary as an error.
type Executor struct {
	credentials interfaces.CredentialManager
	policy      *RetryPolicy
	logger      arbor.ILogger
}

// NewExecutor creates a work item executor
func NewExecutor(credentials interfaces.CredentialManager, policy *RetryPolicy, logger arbor.ILogger) *Executor {
	if policy == nil {
		policy = NewRetryPolicy()
	}
	return &Executor{
		credentials: credentials,
		policy:      policy,
		logger:      logger,
	}
}

// Execute drives the item through its retry lifecycle and returns its
// terminal outcome. The attempt counter never exceeds the item's max-attempts
// limit; auth failures are terminal on the first attempt because they
// indicate the identity, not the call, is broken.
func (e *Executor) Execute(ctx context.Context, item *models.WorkItem, call ItemFunc) models.ItemOutcome {
	if item.MaxAttempts <= 0 {
		item.MaxAttempts = e.policy.MaxAttempts
	}

	for {
		item.Attempts++

		var cred *models.Credential
		if item.NeedsAuth {
			c, err := e.credentials.GetValidCredential(ctx, item.PrincipalID)
			if err != nil {
				reason := Classify(err)
				item.MarkFailed(reason, err.Error())
				e.logger.Warn().
					Str("item", item.Name).
					Str("principal_id", item.PrincipalID).
					Str("reason", string(reason)).
					Msg("Work item failed acquiring credential")
				return item.Outcome()
			}
			cred = c
		}

		err := call(ctx, cred)
		if err == nil {
			item.MarkSucceeded()
			return item.Outcome()
		}

		reason := Classify(err)
		if reason != models.FailureTransient || item.Attempts >= item.MaxAttempts {
			item.MarkFailed(reason, err.Error())
			e.logger.Warn().
				Err(err).
				Str("item", item.Name).
				Str("target", item.Target).
				Str("reason", string(reason)).
				Int("attempts", item.Attempts).
				Msg("Work item failed")
			return item.Outcome()
		}

		item.MarkRetrying()
		backoff := e.policy.Backoff(item.Attempts)
		e.logger.Debug().
			Err(err).
			Str("item", item.Name).
			Int("attempt", item.Attempts).
			Dur("backoff", backoff).
			Msg("Retrying work item after backoff")

		select {
		case <-ctx.Done():
			item.MarkFailed(models.FailureTransient, ctx.Err().Error())
			return item.Outcome()
		case <-time.After(backoff):
		}
	}
}
