// File: internal/service/components.go
package service

import (
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/arqv30/arqv-cli/internal/apiclient"
	"github.com/arqv30/arqv-cli/internal/diagnostics"
	"github.com/arqv30/arqv-cli/internal/export"
	"github.com/arqv30/arqv-cli/internal/notify"
	"github.com/arqv30/arqv-cli/internal/orchestrator"
	"github.com/arqv30/arqv-cli/internal/progress"
	"github.com/arqv30/arqv-cli/internal/reporting"
	"github.com/arqv30/arqv-cli/internal/results"
	"github.com/arqv30/arqv-cli/internal/store"
)

// Components holds every initialized service a command needs.
// This struct centralizes the lifecycle management of those dependencies.
type Components struct {
	Client       *apiclient.Client
	Board        *notify.Board
	Simulator    *progress.Simulator
	Projector    *results.Projector
	Surface      reporting.Surface
	Saver        *export.FileSaver
	PDF          *export.PDFExporter
	Document     *export.DocumentExporter
	Archive      store.Archive
	Diagnostics  *diagnostics.Runner
	Orchestrator *orchestrator.Orchestrator

	// Store is set when the archive is backed by Postgres.
	Store  *store.Store
	DBPool *pgxpool.Pool

	logger *zap.Logger
}

// Shutdown releases components in reverse order of creation: the orchestrator
// first so no timer outlives it, the display surface last before the pool.
func (c *Components) Shutdown() {
	logger := c.logger
	if logger == nil {
		logger = zap.NewNop()
	}
	logger.Debug("Beginning components shutdown sequence.")

	// 1. Dispose the orchestrator. This cancels any in-flight request and
	//    stops the progress simulator.
	if c.Orchestrator != nil {
		c.Orchestrator.Dispose()
		c.Orchestrator = nil
		logger.Debug("Orchestrator disposed.")
	} else if c.Simulator != nil {
		c.Simulator.Stop()
	}

	// 2. Cancel the pending notification expiry.
	if c.Board != nil {
		c.Board.Close()
		logger.Debug("Notification board closed.")
	}

	// 3. Flush the display surface.
	if c.Surface != nil {
		if err := c.Surface.Close(); err != nil {
			logger.Warn("Error while closing display surface.", zap.Error(err))
		}
		c.Surface = nil
	}

	// 4. Close the database connection pool.
	if c.DBPool != nil {
		c.DBPool.Close()
		c.DBPool = nil
		logger.Debug("Database connection pool closed.")
	}

	logger.Debug("All components shut down.")
}
