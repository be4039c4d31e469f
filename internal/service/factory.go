// File: internal/service/factory.go
package service

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/arqv30/arqv-cli/internal/config"
	"github.com/arqv30/arqv-cli/internal/diagnostics"
	"github.com/arqv30/arqv-cli/internal/export"
	"github.com/arqv30/arqv-cli/internal/form"
	"github.com/arqv30/arqv-cli/internal/notify"
	"github.com/arqv30/arqv-cli/internal/orchestrator"
	"github.com/arqv30/arqv-cli/internal/progress"
	"github.com/arqv30/arqv-cli/internal/reporting"
	"github.com/arqv30/arqv-cli/internal/results"
)

// Options tailors the components to the command creating them.
type Options struct {
	// Surface receives rendered results and is closed on Shutdown. Nil disables rendering.
	Surface reporting.Surface
	// OnProgress observes every simulated progress update.
	OnProgress func(progress.State)
	// OnNotification observes the visible notification.
	OnNotification notify.Listener
	// SessionID overrides the generated correlation id.
	SessionID string
	// SkipArchive leaves the archive unset, for commands that never store results.
	SkipArchive bool
}

// ComponentFactory defines the interface for creating the set of components a command needs.
// This abstraction is the key to making the command logic testable.
type ComponentFactory interface {
	Create(ctx context.Context, cfg config.Interface, opts Options, logger *zap.Logger) (*Components, error)
}

// concreteFactory is the production implementation of the ComponentFactory.
type concreteFactory struct{}

// NewComponentFactory creates a new production-ready component factory.
func NewComponentFactory() ComponentFactory {
	return &concreteFactory{}
}

// Create handles the full dependency injection and initialization of components.
func (f *concreteFactory) Create(ctx context.Context, cfg config.Interface, opts Options, logger *zap.Logger) (*Components, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	components := &Components{Surface: opts.Surface, logger: logger}

	// Ensure cleanup happens if initialization fails midway.
	var initializationErr error
	defer func() {
		if initializationErr != nil {
			logger.Warn("Initialization failed, shutting down partially created components.", zap.Error(initializationErr))
			components.Shutdown()
		}
	}()

	// 1. Remote service client
	client, err := InitializeAPIClient(cfg.API(), logger)
	if err != nil {
		initializationErr = err
		return nil, initializationErr
	}
	components.Client = client
	logger.Debug("API client initialized.", zap.String("base_url", client.BaseURL()))

	// 2. Result archive
	if !opts.SkipArchive {
		archive, dbStore, pool, err := InitializeArchive(ctx, cfg.Database(), logger)
		if err != nil {
			initializationErr = fmt.Errorf("failed to initialize result archive: %w", err)
			return nil, initializationErr
		}
		components.Archive = archive
		components.Store = dbStore
		components.DBPool = pool
	}

	// 3. Notification board
	var boardOpts []notify.Option
	if opts.OnNotification != nil {
		boardOpts = append(boardOpts, notify.WithListener(opts.OnNotification))
	}
	components.Board = notify.NewBoard(cfg.Notify().TTL, logger, boardOpts...)

	// 4. Progress simulator
	var simOpts []progress.Option
	if opts.OnProgress != nil {
		simOpts = append(simOpts, progress.WithOnUpdate(opts.OnProgress))
	}
	components.Simulator = progress.New(cfg.Progress(), logger, simOpts...)

	// 5. Projector and exporters
	components.Projector = results.NewProjector(logger)

	saver, err := export.NewFileSaver(cfg.Export().OutputDir)
	if err != nil {
		initializationErr = err
		return nil, initializationErr
	}
	components.Saver = saver
	components.PDF = export.NewPDFExporter(client, saver, logger)
	components.Document = export.NewDocumentExporter(saver, cfg.Export(), logger)
	logger.Debug("Exporters initialized.", zap.String("output_dir", saver.Dir()))

	// 6. Diagnostics
	components.Diagnostics = diagnostics.NewRunner(client, cfg.Diagnostics(), components.Board, logger)

	// 7. Orchestrator
	deps := orchestrator.Dependencies{
		Analyzer:  client,
		Validator: form.NewValidator(cfg.Form()),
		Progress:  components.Simulator,
		Projector: components.Projector,
		Notifier:  components.Board,
		Surface:   opts.Surface,
		PDF:       components.PDF,
		Document:  components.Document,
		Archive:   components.Archive,
		SessionID: opts.SessionID,
	}
	orch, err := orchestrator.New(logger, deps)
	if err != nil {
		initializationErr = fmt.Errorf("failed to create orchestrator: %w", err)
		return nil, initializationErr
	}
	components.Orchestrator = orch
	logger.Debug("Orchestrator initialized.", zap.String("session_id", orch.SessionID()))

	return components, nil
}
