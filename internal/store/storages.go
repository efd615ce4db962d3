package store

import (
	"context"
	"fmt"

	"github.com/lingvoro/lingvoro-client/internal/config"
	"github.com/lingvoro/lingvoro-client/internal/logger"
)

// ClientStorages groups all client-side storage repositories into a single
// value that can be passed around the service layer.
type ClientStorages struct {
	// Entities is the SQLite-backed repository for syncable entity records
	// stored locally on the client device.
	Entities EntityRepository

	// Versions persists the entity sync-version map across restarts.
	Versions VersionRepository

	// RetryQueue holds sync operations deferred while the client is offline.
	RetryQueue RetryQueueRepository
}

// NewClientStorages initialises the client storage layer using the supplied
// configuration and logger. It performs the following steps:
//  1. Opens an SQLite connection to the file path specified in cfg.DB.DSN,
//     creating the database file if it does not yet exist.
//  2. Runs pending schema migrations via [DB.Migrate].
//  3. Constructs and returns a [ClientStorages] value wired to fresh
//     repositories sharing the connection.
//
// Returns an error if the database connection cannot be established or if
// migration fails.
func NewClientStorages(cfg config.Storage, logger *logger.Logger) (*ClientStorages, error) {
	logger.Info().Msg("creating new storages...")

	db, err := NewConnectSQLite(context.Background(), cfg.DB, logger)
	if err != nil {
		return nil, fmt.Errorf("sqlite connection error: %w", err)
	}

	if err := db.Migrate(); err != nil {
		return nil, fmt.Errorf("migration failed: %w", err)
	}

	return &ClientStorages{
		Entities:   NewEntityRepository(db, logger),
		Versions:   NewVersionRepository(db, logger),
		RetryQueue: NewRetryQueueRepository(db, logger),
	}, nil
}
