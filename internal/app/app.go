package app

import (
	"fmt"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/vestigo/internal/common"
	"github.com/ternarybob/vestigo/internal/handlers"
	"github.com/ternarybob/vestigo/internal/interfaces"
	"github.com/ternarybob/vestigo/internal/research"
	"github.com/ternarybob/vestigo/internal/services/artifacts"
	"github.com/ternarybob/vestigo/internal/services/auth"
	"github.com/ternarybob/vestigo/internal/services/content"
	"github.com/ternarybob/vestigo/internal/services/llm"
	"github.com/ternarybob/vestigo/internal/storage/badger"
)

// App holds all application components and dependencies
type App struct {
	Config *common.Config
	Logger arbor.ILogger

	StorageManager    *badger.Manager
	CredentialManager *auth.Manager
	EnrichmentService interfaces.EnrichmentService
	ContentService    *content.Service
	ArtifactStore     *artifacts.DriveStore
	Orchestrator      *research.Orchestrator
	Sweeper           *badger.Sweeper

	// HTTP handlers
	ResearchHandler *handlers.ResearchHandler
	AuthHandler     *handlers.AuthHandler
	StatusHandler   *handlers.StatusHandler
}

// New initializes the application with all dependencies
func New(cfg *common.Config, logger arbor.ILogger) (*App, error) {
	app := &App{
		Config: cfg,
		Logger: logger,
	}

	storageManager, err := badger.NewManager(logger, &cfg.Storage.Badger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize storage: %w", err)
	}
	app.StorageManager = storageManager

	renewer := auth.NewOAuthRenewer(&cfg.Auth, logger)
	app.CredentialManager = auth.NewManager(
		storageManager.CredentialStorage(),
		renewer,
		common.MustDuration(cfg.Auth.StalenessMargin),
		logger,
	)

	enricher, err := llm.NewGeminiService(cfg, logger)
	if err != nil {
		storageManager.Close()
		return nil, fmt.Errorf("failed to initialize enrichment service: %w", err)
	}
	app.EnrichmentService = enricher

	contentService, err := content.NewService(&cfg.Content, logger)
	if err != nil {
		enricher.Close()
		storageManager.Close()
		return nil, fmt.Errorf("failed to initialize content service: %w", err)
	}
	app.ContentService = contentService

	app.ArtifactStore = artifacts.NewDriveStore(&cfg.Drive, logger)

	app.Orchestrator = research.NewOrchestrator(
		research.Config{
			Workers:         cfg.Research.Workers,
			ItemConcurrency: cfg.Research.ItemConcurrency,
			PhaseTimeout:    common.MustDuration(cfg.Research.PhaseTimeout),
			MaxAttempts:     cfg.Research.MaxAttempts,
			InitialBackoff:  common.MustDuration(cfg.Research.InitialBackoff),
			MaxBackoff:      common.MustDuration(cfg.Research.MaxBackoff),
		},
		app.CredentialManager,
		app.EnrichmentService,
		app.ContentService,
		app.ArtifactStore,
		storageManager.JobStatusStore(),
		storageManager.DocumentStorage(),
		logger,
	)

	app.Sweeper = badger.NewSweeper(
		storageManager,
		common.MustDuration(cfg.Research.SnapshotRetention),
		cfg.Research.RetentionSchedule,
		logger,
	)
	if err := app.Sweeper.Start(); err != nil {
		app.Orchestrator.Stop()
		enricher.Close()
		storageManager.Close()
		return nil, fmt.Errorf("failed to start retention sweeper: %w", err)
	}

	app.ResearchHandler = handlers.NewResearchHandler(app.Orchestrator, storageManager.JobStatusStore(), logger)
	app.AuthHandler = handlers.NewAuthHandler(app.CredentialManager, logger)
	app.StatusHandler = handlers.NewStatusHandler(app.EnrichmentService, logger)

	logger.Info().Msg("Application initialized")

	return app, nil
}

// Close shuts down all components in dependency order
func (a *App) Close() {
	if a.Sweeper != nil {
		a.Sweeper.Stop()
	}
	if a.Orchestrator != nil {
		a.Orchestrator.Stop()
	}
	if a.EnrichmentService != nil {
		if err := a.EnrichmentService.Close(); err != nil {
			a.Logger.Warn().Err(err).Msg("Failed to close enrichment service")
		}
	}
	if a.StorageManager != nil {
		if err := a.StorageManager.Close(); err != nil {
			a.Logger.Warn().Err(err).Msg("Failed to close storage")
		}
	}
	a.Logger.Info().Msg("Application closed")
}
