// File: internal/service/initializers.go
package service

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/arqv30/arqv-cli/internal/apiclient"
	"github.com/arqv30/arqv-cli/internal/config"
	"github.com/arqv30/arqv-cli/internal/network"
	"github.com/arqv30/arqv-cli/internal/store"
)

// Connection pool settings for the result archive.
const (
	archiveMaxConns        = 4
	archiveMinConns        = 0
	archiveMaxConnLifetime = 1 * time.Hour
	archiveMaxConnIdleTime = 30 * time.Minute
)

// InitializeAPIClient builds the remote service client from the API settings.
func InitializeAPIClient(cfg config.APIConfig, logger *zap.Logger) (*apiclient.Client, error) {
	httpClient := network.NewClient(network.NewClientConfig(cfg, logger))
	client, err := apiclient.New(cfg.BaseURL, httpClient, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create api client: %w", err)
	}
	return client, nil
}

// InitializeArchive connects to Postgres when a database URL is configured and
// otherwise falls back to an in-memory archive that lives as long as the
// process. The returned store and pool are nil for the in-memory archive.
func InitializeArchive(ctx context.Context, cfg config.DatabaseConfig, logger *zap.Logger) (store.Archive, *store.Store, *pgxpool.Pool, error) {
	if cfg.URL == "" {
		logger.Debug("No database configured; results are archived in memory for this process only.")
		return store.NewMemoryArchive(), nil, nil, nil
	}

	poolConfig, err := pgxpool.ParseConfig(cfg.URL)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("unable to parse database url: %w", err)
	}
	poolConfig.MaxConns = archiveMaxConns
	poolConfig.MinConns = archiveMinConns
	poolConfig.MaxConnLifetime = archiveMaxConnLifetime
	poolConfig.MaxConnIdleTime = archiveMaxConnIdleTime

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("unable to create connection pool: %w", err)
	}

	// store.New pings, so a misconfigured database fails here rather than on first save.
	dbStore, err := store.New(ctx, pool, logger)
	if err != nil {
		pool.Close()
		return nil, nil, nil, err
	}
	logger.Info("Result archive connected.", zap.String("host", poolConfig.ConnConfig.Host))
	return dbStore, dbStore, pool, nil
}
