package research

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/vestigo/internal/interfaces"
	"github.com/ternarybob/vestigo/internal/models"
)

// jobRun is the orchestrator's in-flight state for one job. Phases of one
// job are strictly serialized, so phase outputs need no locking.
type jobRun struct {
	job        *models.ResearchJob
	cancelled  atomic.Bool
	sourceURLs []string
}

// event drives the orchestration state machine. A nil result asks the
// machine to start the job's current phase; a non-nil result reports a
// finished phase. Phase sequencing is driven entirely by these completion
// messages - no worker ever blocks waiting on another pool task.
type event struct {
	jobID  string
	result *models.PhaseResult
}

// Config tunes the orchestration core
type Config struct {
	Workers         int
	ItemConcurrency int
	PhaseTimeout    time.Duration
	MaxAttempts     int
	InitialBackoff  time.Duration
	MaxBackoff      time.Duration
}

// Orchestrator owns the fixed phase sequence and advances each job through
// it. It is the only writer of job records; every committed transition is
// snapshotted to the status store before the next phase starts.
type Orchestrator struct {
	logger       arbor.ILogger
	phaseTimeout time.Duration
	maxAttempts  int

	credentials interfaces.CredentialManager
	enricher    interfaces.EnrichmentService
	content     interfaces.ContentService
	artifacts   interfaces.ArtifactStore
	snapshots   interfaces.JobStatusStore
	documents   interfaces.DocumentStorage

	runner *Runner
	pool   *Pool

	mu   sync.Mutex
	runs map[string]*jobRun

	events   chan event
	quit     chan struct{}
	loopWg   sync.WaitGroup
	stopOnce sync.Once
}

// NewOrchestrator wires the orchestration core against its collaborators
func NewOrchestrator(
	cfg Config,
	credentials interfaces.CredentialManager,
	enricher interfaces.EnrichmentService,
	content interfaces.ContentService,
	artifacts interfaces.ArtifactStore,
	snapshots interfaces.JobStatusStore,
	documents interfaces.DocumentStorage,
	logger arbor.ILogger,
) *Orchestrator {
	if cfg.PhaseTimeout <= 0 {
		cfg.PhaseTimeout = 10 * time.Minute
	}
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = 3
	}

	policy := NewRetryPolicy()
	policy.MaxAttempts = cfg.MaxAttempts
	if cfg.InitialBackoff > 0 {
		policy.InitialBackoff = cfg.InitialBackoff
	}
	if cfg.MaxBackoff > 0 {
		policy.MaxBackoff = cfg.MaxBackoff
	}

	executor := NewExecutor(credentials, policy, logger)

	o := &Orchestrator{
		logger:       logger,
		phaseTimeout: cfg.PhaseTimeout,
		maxAttempts:  cfg.MaxAttempts,
		credentials:  credentials,
		enricher:     enricher,
		content:      content,
		artifacts:    artifacts,
		snapshots:    snapshots,
		documents:    documents,
		runner:       NewRunner(executor, cfg.ItemConcurrency, logger),
		pool:         NewPool(cfg.Workers, logger),
		runs:         make(map[string]*jobRun),
		events:       make(chan event, 64),
		quit:         make(chan struct{}),
	}

	o.pool.Start()
	o.loopWg.Add(1)
	go o.loop()

	return o
}

// Submit performs the synchronous setup precondition (a valid credential and
// a resolved destination folder) and enqueues the job. Setup failure means no
// job exists: the caller gets an error, never a job id.
func (o *Orchestrator) Submit(ctx context.Context, principalID, companyName, folderName string) (string, error) {
	cred, err := o.credentials.GetValidCredential(ctx, principalID)
	if err != nil {
		return "", err
	}

	folderID, err := o.artifacts.EnsureFolder(ctx, cred, folderName)
	if err != nil {
		return "", NewFailure(models.FailureSetup, fmt.Errorf("failed to resolve destination folder %q: %w", folderName, err))
	}

	job := models.NewResearchJob(principalID, companyName, folderID, folderName, models.DefaultPhaseSequence())

	if err := o.snapshots.PutSnapshot(ctx, job.Snapshot()); err != nil {
		return "", NewFailure(models.FailureSetup, fmt.Errorf("failed to record job snapshot: %w", err))
	}

	run := &jobRun{job: job}
	o.mu.Lock()
	o.runs[job.ID] = run
	o.mu.Unlock()

	o.logger.Info().
		Str("job_id", job.ID).
		Str("company", companyName).
		Str("folder_id", folderID).
		Msg("Research job submitted")

	o.post(event{jobID: job.ID})
	return job.ID, nil
}

// Cancel requests cancellation of a running job. In-flight work items are
// allowed to finish; the next phase transition simply never occurs.
func (o *Orchestrator) Cancel(jobID string) bool {
	o.mu.Lock()
	run, ok := o.runs[jobID]
	o.mu.Unlock()

	if !ok || run.job.IsTerminal() {
		return false
	}

	run.cancelled.Store(true)
	o.logger.Info().Str("job_id", jobID).Msg("Research job cancellation requested")
	return true
}

// Stop shuts the orchestrator down. In-flight phase runs are cancelled via
// the pool context and their completion events are dropped, so a job caught
// mid-phase keeps its last committed snapshot and is not resumed.
func (o *Orchestrator) Stop() {
	o.stopOnce.Do(func() {
		close(o.quit)
		o.loopWg.Wait()
		o.pool.Stop()
	})
}

// loop is the state machine: start events begin the current phase, completion
// events commit its result and advance the sequence
func (o *Orchestrator) loop() {
	defer o.loopWg.Done()

	for {
		select {
		case <-o.quit:
			return
		case ev := <-o.events:
			if ev.result == nil {
				o.startPhase(ev.jobID)
			} else {
				o.completePhase(ev.jobID, ev.result)
			}
		}
	}
}

// post sends an event unless the orchestrator is shutting down
func (o *Orchestrator) post(ev event) {
	select {
	case o.events <- ev:
	case <-o.quit:
	}
}

func (o *Orchestrator) lookup(jobID string) *jobRun {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.runs[jobID]
}

// startPhase begins the job's current phase, or finalizes the job when the
// sequence is exhausted or cancellation was requested
func (o *Orchestrator) startPhase(jobID string) {
	run := o.lookup(jobID)
	if run == nil {
		return
	}

	if run.cancelled.Load() {
		o.finalizeFailed(run, models.FailureCancelled, "research job cancelled")
		return
	}

	job := run.job
	if job.PhaseIndex >= len(job.Phases) {
		o.finalizeSucceeded(run)
		return
	}

	phase := job.CurrentPhase()
	job.Status = models.JobStatusRunning
	job.Progress = fmt.Sprintf("Phase %d: %s", job.PhaseIndex+1, phase.Title())
	if job.StartedAt.IsZero() {
		job.StartedAt = time.Now()
	}
	o.commit(run)

	if err := o.pool.Submit(func(poolCtx context.Context) {
		o.runPhase(poolCtx, run, phase)
	}); err != nil {
		o.finalizeFailed(run, models.FailurePermanent, fmt.Sprintf("failed to schedule phase %s: %v", phase, err))
	}
}

// runPhase executes one phase inside the worker pool and reports its result
// back to the state machine. The phase gets a bounded end-to-end timeout;
// exceeding it is a phase failure with reason PhaseTimeout.
func (o *Orchestrator) runPhase(poolCtx context.Context, run *jobRun, phase models.PhaseName) {
	jobLogger := o.logger.WithCorrelationId(run.job.ID)
	jobLogger.Info().
		Str("phase", string(phase)).
		Msg("Starting research phase")

	phaseCtx, cancel := context.WithTimeout(poolCtx, o.phaseTimeout)
	defer cancel()

	var result *models.PhaseResult
	items, err := o.buildItems(phaseCtx, run, phase)
	if err != nil {
		result = &models.PhaseResult{
			Phase:         phase,
			Status:        models.PhaseFailed,
			Items:         []models.ItemOutcome{},
			FailureReason: Classify(err),
			FailureDetail: err.Error(),
		}
	} else {
		result = o.runner.Run(phaseCtx, phase, items)
		if phaseCtx.Err() == context.DeadlineExceeded {
			result.Status = models.PhaseFailed
			result.FailureReason = models.FailurePhaseTimeout
			result.FailureDetail = fmt.Sprintf("%s exceeded its %s bound", phase.Title(), o.phaseTimeout)
		}
	}

	o.post(event{jobID: run.job.ID, result: result})
}

// completePhase commits a finished phase's result and advances the sequence
func (o *Orchestrator) completePhase(jobID string, result *models.PhaseResult) {
	run := o.lookup(jobID)
	if run == nil {
		return
	}

	if run.cancelled.Load() {
		o.finalizeFailed(run, models.FailureCancelled, "research job cancelled")
		return
	}

	job := run.job
	if result.Status == models.PhaseFailed {
		detail := result.FailureDetail
		if detail == "" {
			detail = string(result.FailureReason)
		}
		o.finalizeFailed(run, result.FailureReason, fmt.Sprintf("%s failed: %s", result.Phase.Title(), detail))
		return
	}

	// Phase index only ever moves forward
	job.Progress = result.Summary()
	job.PhaseIndex++
	o.commit(run)

	o.post(event{jobID: jobID})
}

// finalizeSucceeded marks the job terminal with its artifact reference
func (o *Orchestrator) finalizeSucceeded(run *jobRun) {
	job := run.job
	job.Status = models.JobStatusSucceeded
	job.Progress = "Research workflow completed successfully"
	job.ResultLink = o.artifacts.FolderLink(job.FolderID)
	job.FinishedAt = time.Now()
	o.commit(run)
	o.finish(run)

	o.logger.Info().
		Str("job_id", job.ID).
		Str("result_link", job.ResultLink).
		Msg("Research job succeeded")
}

// finalizeFailed marks the job terminal with the failing phase's detail
func (o *Orchestrator) finalizeFailed(run *jobRun, reason models.FailureReason, detail string) {
	job := run.job
	job.Status = models.JobStatusFailed
	job.Progress = "Research workflow failed"
	job.Error = fmt.Sprintf("%s: %s", reason, detail)
	job.FinishedAt = time.Now()
	o.commit(run)
	o.finish(run)

	o.logger.Warn().
		Str("job_id", job.ID).
		Str("reason", string(reason)).
		Str("detail", detail).
		Msg("Research job failed")
}

// commit writes the job's snapshot to the status store. Readers only ever
// observe these committed transitions.
func (o *Orchestrator) commit(run *jobRun) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := o.snapshots.PutSnapshot(ctx, run.job.Snapshot()); err != nil {
		o.logger.Error().
			Err(err).
			Str("job_id", run.job.ID).
			Msg("Failed to write job snapshot")
	}
}

// finish drops a terminal job from the active set
func (o *Orchestrator) finish(run *jobRun) {
	o.mu.Lock()
	delete(o.runs, run.job.ID)
	o.mu.Unlock()
}
