package badger

import (
	"context"
	"fmt"
	"time"

	badgerdb "github.com/dgraph-io/badger/v4"
	"github.com/robfig/cron/v3"
	"github.com/ternarybob/arbor"
	"github.com/ternarybob/vestigo/internal/models"
	"github.com/timshannon/badgerhold/v4"
)

// Sweeper periodically evicts terminal job snapshots older than the retention
// window, removes their documents, and reclaims Badger value-log space.
// Running jobs are untouchable regardless of age.
type Sweeper struct {
	manager   *Manager
	retention time.Duration
	schedule  string
	cron      *cron.Cron
	logger    arbor.ILogger
}

// NewSweeper creates a retention sweeper on the given cron schedule
func NewSweeper(manager *Manager, retention time.Duration, schedule string, logger arbor.ILogger) *Sweeper {
	return &Sweeper{
		manager:   manager,
		retention: retention,
		schedule:  schedule,
		cron:      cron.New(cron.WithSeconds()),
		logger:    logger,
	}
}

// Start registers the sweep and begins the schedule
func (s *Sweeper) Start() error {
	if _, err := s.cron.AddFunc(s.schedule, s.sweep); err != nil {
		return fmt.Errorf("invalid retention schedule %q: %w", s.schedule, err)
	}
	s.cron.Start()

	s.logger.Info().
		Str("schedule", s.schedule).
		Dur("retention", s.retention).
		Msg("Retention sweeper started")

	return nil
}

// Stop halts the schedule and waits for a running sweep to finish
func (s *Sweeper) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	s.logger.Info().Msg("Retention sweeper stopped")
}

// sweep runs one eviction pass
func (s *Sweeper) sweep() {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	cutoff := time.Now().Add(-s.retention)

	var expired []models.JobSnapshot
	query := badgerhold.Where("Status").In(models.JobStatusSucceeded, models.JobStatusFailed).
		And("UpdatedAt").Lt(cutoff)
	if err := s.manager.db.Store().Find(&expired, query); err != nil {
		s.logger.Error().Err(err).Msg("Retention sweep failed to find expired snapshots")
		return
	}

	// Per job, documents go first and the snapshot last. A job whose document
	// pass fails keeps its snapshot, so the next sweep finds it again instead
	// of stranding its documents behind a missing snapshot.
	documentsDeleted := 0
	snapshotsDeleted := 0
	for i := range expired {
		jobID := expired[i].JobID

		n, err := s.manager.documents.DeleteDocumentsByJob(ctx, jobID)
		if err != nil {
			s.logger.Error().
				Err(err).
				Str("job_id", jobID).
				Msg("Retention sweep failed to delete documents, keeping snapshot for retry")
			continue
		}
		documentsDeleted += n

		if err := s.manager.jobStatus.DeleteSnapshot(ctx, jobID); err != nil {
			s.logger.Error().
				Err(err).
				Str("job_id", jobID).
				Msg("Retention sweep failed to evict snapshot")
			continue
		}
		snapshotsDeleted++
	}

	s.reclaimValueLog()

	if snapshotsDeleted > 0 || documentsDeleted > 0 {
		s.logger.Info().
			Int("snapshots_deleted", snapshotsDeleted).
			Int("documents_deleted", documentsDeleted).
			Msg("Retention sweep completed")
	}
}

// reclaimValueLog runs Badger value-log GC until no more files qualify
func (s *Sweeper) reclaimValueLog() {
	db := s.manager.db.Store().Badger()
	for {
		if err := db.RunValueLogGC(0.5); err != nil {
			if err != badgerdb.ErrNoRewrite {
				s.logger.Debug().Err(err).Msg("Value-log GC stopped")
			}
			return
		}
	}
}
