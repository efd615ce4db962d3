package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/lingvoro/lingvoro-client/internal/logger"
	"github.com/lingvoro/lingvoro-client/models"
)

// Default bulk-sync priority per entity type. The coordinator applies a
// further boost for types listed in the sync configuration.
var entityPriority = map[string]int{
	models.EntityTypeProfile:  100,
	models.EntityTypeSettings: 90,
	models.EntityTypeProgress: 10,
}

type entityRepository struct {
	*DB
	logger *logger.Logger
}

// NewEntityRepository constructs the SQLite-backed state source.
func NewEntityRepository(db *DB, log *logger.Logger) EntityRepository {
	return &entityRepository{DB: db, logger: log}
}

func (r *entityRepository) ListStates(ctx context.Context) ([]models.EntityState, error) {
	log := logger.FromContext(ctx)

	query, args, err := selectStatesQuery()
	if err != nil {
		return nil, fmt.Errorf("build states query: %w", err)
	}

	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		log.Err(err).Str("func", "entityRepository.ListStates").Msg("failed to query entity states")
		return nil, fmt.Errorf("query entity states: %w", err)
	}
	defer rows.Close()

	var states []models.EntityState
	for rows.Next() {
		var (
			st    models.EntityState
			dirty string
		)
		if err = rows.Scan(&st.Key.Type, &st.Key.ID, &st.SyncVersion, &dirty, &st.Priority); err != nil {
			log.Err(err).Str("func", "entityRepository.ListStates").Msg("failed to scan entity state row")
			return nil, fmt.Errorf("scan entity state row: %w", err)
		}
		st.HasChanges = dirty != "" && dirty != "{}" && dirty != "null"
		states = append(states, st)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate entity states: %w", err)
	}

	return states, nil
}

func (r *entityRepository) GetEntity(ctx context.Context, key models.EntityKey) (models.Syncable, error) {
	log := logger.FromContext(ctx)

	query, args, err := selectEntityQuery(key.Type, key.ID)
	if err != nil {
		return nil, fmt.Errorf("build entity query: %w", err)
	}

	var (
		entityType, entityID string
		payload, dirty       string
		version              int64
	)
	row := r.DB.QueryRowContext(ctx, query, args...)
	if err = row.Scan(&entityType, &entityID, &payload, &dirty, &version); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: %s", ErrEntityNotFound, key)
		}
		log.Err(err).Str("func", "entityRepository.GetEntity").Str("key", key.String()).Msg("failed to scan entity row")
		return nil, fmt.Errorf("scan entity row: %w", err)
	}

	return hydrateEntity(entityType, payload, dirty, version)
}

func (r *entityRepository) SaveEntity(ctx context.Context, entity models.Syncable) error {
	log := logger.FromContext(ctx)
	key := entity.Key()

	payload, err := entity.SerializeForSync()
	if err != nil {
		return fmt.Errorf("serialize entity %s: %w", key, err)
	}

	dirty, err := json.Marshal(entity.ChangesSinceLastSync())
	if err != nil {
		return fmt.Errorf("serialize dirty set %s: %w", key, err)
	}

	query, args, err := upsertEntityQuery(key.Type, key.ID, string(payload), string(dirty),
		entity.SyncVersion(), entityPriority[key.Type])
	if err != nil {
		return fmt.Errorf("build entity upsert: %w", err)
	}

	if _, err = r.DB.ExecContext(ctx, query, args...); err != nil {
		log.Err(err).Str("func", "entityRepository.SaveEntity").Str("key", key.String()).Msg("failed to execute entity upsert")
		return fmt.Errorf("save entity %s: %w", key, err)
	}

	return nil
}

// hydrateEntity rebuilds a concrete entity value from its stored row. The
// sync version and dirty set columns are authoritative and override whatever
// the payload carries.
func hydrateEntity(entityType, payload, dirty string, version int64) (models.Syncable, error) {
	var dirtySet models.Changes
	if dirty != "" && dirty != "null" {
		if err := json.Unmarshal([]byte(dirty), &dirtySet); err != nil {
			return nil, fmt.Errorf("decode dirty set: %w", err)
		}
	}
	if len(dirtySet) == 0 {
		dirtySet = nil
	}

	state := models.SyncState{Version: version, Dirty: dirtySet}

	switch entityType {
	case models.EntityTypeProfile:
		var e models.Profile
		if err := json.Unmarshal([]byte(payload), &e); err != nil {
			return nil, fmt.Errorf("decode profile payload: %w", err)
		}
		e.SyncState = state
		return &e, nil

	case models.EntityTypeProgress:
		var e models.Progress
		if err := json.Unmarshal([]byte(payload), &e); err != nil {
			return nil, fmt.Errorf("decode progress payload: %w", err)
		}
		e.SyncState = state
		return &e, nil

	case models.EntityTypeSettings:
		var e models.Settings
		if err := json.Unmarshal([]byte(payload), &e); err != nil {
			return nil, fmt.Errorf("decode settings payload: %w", err)
		}
		e.SyncState = state
		return &e, nil

	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownEntityType, entityType)
	}
}
