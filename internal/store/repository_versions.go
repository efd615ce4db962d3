package store

import (
	"context"
	"fmt"

	"github.com/lingvoro/lingvoro-client/internal/logger"
)

type versionRepository struct {
	*DB
	logger *logger.Logger
}

// NewVersionRepository constructs the SQLite-backed sync-version table.
func NewVersionRepository(db *DB, log *logger.Logger) VersionRepository {
	return &versionRepository{DB: db, logger: log}
}

func (r *versionRepository) LoadAll(ctx context.Context) (map[string]int64, error) {
	log := logger.FromContext(ctx)

	query, args, err := selectVersionsQuery()
	if err != nil {
		return nil, fmt.Errorf("build versions query: %w", err)
	}

	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		log.Err(err).Str("func", "versionRepository.LoadAll").Msg("failed to query sync versions")
		return nil, fmt.Errorf("query sync versions: %w", err)
	}
	defer rows.Close()

	versions := make(map[string]int64)
	for rows.Next() {
		var (
			key     string
			version int64
		)
		if err = rows.Scan(&key, &version); err != nil {
			log.Err(err).Str("func", "versionRepository.LoadAll").Msg("failed to scan sync version row")
			return nil, fmt.Errorf("scan sync version row: %w", err)
		}
		versions[key] = version
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate sync versions: %w", err)
	}

	return versions, nil
}

// ReplaceAll rewrites the whole table inside one transaction so a crash never
// leaves a half-written version map behind.
func (r *versionRepository) ReplaceAll(ctx context.Context, versions map[string]int64) error {
	log := logger.FromContext(ctx)

	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		log.Err(err).Str("func", "versionRepository.ReplaceAll").Msg("failed to begin transaction")
		return fmt.Errorf("begin versions transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err = tx.ExecContext(ctx, "DELETE FROM sync_versions"); err != nil {
		return fmt.Errorf("clear sync versions: %w", err)
	}

	for key, version := range versions {
		query, args, err := insertVersionQuery(key, version)
		if err != nil {
			return fmt.Errorf("build version insert: %w", err)
		}
		if _, err = tx.ExecContext(ctx, query, args...); err != nil {
			log.Err(err).Str("func", "versionRepository.ReplaceAll").Str("key", key).Msg("failed to insert sync version")
			return fmt.Errorf("insert sync version %s: %w", key, err)
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit sync versions: %w", err)
	}

	return nil
}
