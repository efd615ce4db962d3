package store

import (
	sq "github.com/Masterminds/squirrel"
)

// SQLite uses ? placeholders, squirrel's default.
var builder = sq.StatementBuilder

func selectEntityQuery(entityType, entityID string) (string, []any, error) {
	return builder.
		Select("entity_type", "entity_id", "payload", "dirty", "sync_version").
		From("entities").
		Where(sq.Eq{"entity_type": entityType, "entity_id": entityID}).
		ToSql()
}

func selectStatesQuery() (string, []any, error) {
	return builder.
		Select("entity_type", "entity_id", "sync_version", "dirty", "priority").
		From("entities").
		OrderBy("priority DESC", "entity_type", "entity_id").
		ToSql()
}

func upsertEntityQuery(entityType, entityID, payload, dirty string, version int64, priority int) (string, []any, error) {
	return builder.
		Insert("entities").
		Columns("entity_type", "entity_id", "payload", "dirty", "sync_version", "priority", "updated_at").
		Values(entityType, entityID, payload, dirty, version, priority, sq.Expr("CURRENT_TIMESTAMP")).
		Suffix(`ON CONFLICT (entity_type, entity_id) DO UPDATE SET
			payload      = excluded.payload,
			dirty        = excluded.dirty,
			sync_version = excluded.sync_version,
			priority     = excluded.priority,
			updated_at   = CURRENT_TIMESTAMP`).
		ToSql()
}

func selectVersionsQuery() (string, []any, error) {
	return builder.
		Select("entity_key", "version").
		From("sync_versions").
		OrderBy("entity_key").
		ToSql()
}

func insertVersionQuery(key string, version int64) (string, []any, error) {
	return builder.
		Insert("sync_versions").
		Columns("entity_key", "version").
		Values(key, version).
		ToSql()
}

func enqueueRetryQuery(operation, payload string, priority, maxRetries int) (string, []any, error) {
	return builder.
		Insert("retry_queue").
		Columns("operation", "payload", "priority", "max_retries", "attempts", "created_at").
		Values(operation, payload, priority, maxRetries, 0, sq.Expr("CURRENT_TIMESTAMP")).
		ToSql()
}

func pendingRetryQuery(limit int) (string, []any, error) {
	return builder.
		Select("id", "operation", "payload", "priority", "max_retries", "attempts").
		From("retry_queue").
		Where(sq.Expr("attempts < max_retries")).
		OrderBy("priority DESC", "id").
		Limit(uint64(limit)).
		ToSql()
}

func deleteRetryQuery(id int64) (string, []any, error) {
	return builder.
		Delete("retry_queue").
		Where(sq.Eq{"id": id}).
		ToSql()
}

func failRetryQuery(id int64) (string, []any, error) {
	return builder.
		Update("retry_queue").
		Set("attempts", sq.Expr("attempts + 1")).
		Where(sq.Eq{"id": id}).
		ToSql()
}
