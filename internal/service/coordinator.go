package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"sync/atomic"

	"golang.org/x/sync/singleflight"

	"github.com/lingvoro/lingvoro-client/internal/adapter"
	"github.com/lingvoro/lingvoro-client/internal/config"
	"github.com/lingvoro/lingvoro-client/internal/events"
	"github.com/lingvoro/lingvoro-client/internal/logger"
	"github.com/lingvoro/lingvoro-client/internal/store"
	"github.com/lingvoro/lingvoro-client/models"
)

// metadata key marking the single post-resolution retry so it is never
// scheduled twice for the same conflict.
const resolutionRetryKey = "resolution_retry"

// priorityBoost is added to entities whose type is configured as a priority
// type, so they sort ahead of everything else in a bulk sync.
const priorityBoost = 1000

type syncCoordinator struct {
	cfg        config.Sync
	entities   store.EntityRepository
	versions   store.VersionRepository
	retryQueue store.RetryQueueRepository
	remote     adapter.RemoteSource
	emitter    events.Emitter
	deltas     *DeltaStore
	ctxBuilder *ContextBuilder
	logger     *logger.Logger
	clk        clock

	strategies *registry[SyncStrategy]
	resolvers  *registry[ConflictResolver]

	// flight is the per-entity pending set: concurrent SyncEntity calls for
	// the same key share one execution and one result.
	flight singleflight.Group

	versionMu    sync.Mutex
	versionTable map[string]int64

	bulkRunning atomic.Bool
	probe       ConnectivityProbe
	job         *autoSyncJob

	retryWG sync.WaitGroup
}

// NewSyncCoordinator assembles the sync engine around the given
// collaborators. Strategies and resolvers are installed afterwards via
// RegisterStrategy/RegisterResolver; Initialize must be called before the
// first sync.
func NewSyncCoordinator(
	cfg config.Sync,
	storages *store.ClientStorages,
	remote adapter.RemoteSource,
	emitter events.Emitter,
	deltas *DeltaStore,
	ctxBuilder *ContextBuilder,
	log *logger.Logger,
) Coordinator {
	return &syncCoordinator{
		cfg:          cfg,
		entities:     storages.Entities,
		versions:     storages.Versions,
		retryQueue:   storages.RetryQueue,
		remote:       remote,
		emitter:      emitter,
		deltas:       deltas,
		ctxBuilder:   ctxBuilder,
		logger:       log,
		clk:          realClock{},
		strategies:   newRegistry[SyncStrategy](),
		resolvers:    newRegistry[ConflictResolver](),
		versionTable: make(map[string]int64),
		probe:        alwaysOnline{},
		job:          &autoSyncJob{},
	}
}

func (c *syncCoordinator) RegisterStrategy(entityType string, strategy SyncStrategy) {
	c.strategies.register(entityType, strategy)
}

func (c *syncCoordinator) RegisterResolver(entityType string, resolver ConflictResolver) {
	c.resolvers.register(entityType, resolver)
}

// SetConnectivityProbe attaches the network monitor's online flag. Before a
// probe is attached the coordinator assumes it is online.
func (c *syncCoordinator) SetConnectivityProbe(probe ConnectivityProbe) {
	if probe != nil {
		c.probe = probe
	}
}

func (c *syncCoordinator) Initialize(ctx context.Context) error {
	versions, err := c.versions.LoadAll(ctx)
	if err != nil {
		return fmt.Errorf("load sync versions: %w", err)
	}

	c.versionMu.Lock()
	c.versionTable = versions
	c.versionMu.Unlock()

	if !c.cfg.DisableAutoSync {
		c.StartAutoSync(ctx)
	}

	c.emitter.Emit(ctx, events.NewNotification(events.SyncInitialized, map[string]any{
		"known_entities": len(versions),
		"auto_sync":      !c.cfg.DisableAutoSync,
	}))
	c.logger.Info().Str("func", "syncCoordinator.Initialize").Int("known_entities", len(versions)).Msg("sync engine initialized")

	return nil
}

func (c *syncCoordinator) SyncEntity(ctx context.Context, entityType, entityID string, opts models.SyncOptions) (models.SyncResult, error) {
	key := models.EntityKey{Type: entityType, ID: entityID}

	// Lock release is the singleflight completion; it happens regardless of
	// how doSync terminates, panics included.
	v, _, _ := c.flight.Do(key.String(), func() (any, error) {
		return c.doSync(ctx, key, opts), nil
	})
	result := v.(models.SyncResult)

	return result, result.Err
}

func (c *syncCoordinator) doSync(ctx context.Context, key models.EntityKey, opts models.SyncOptions) (result models.SyncResult) {
	defer func() {
		if r := recover(); r != nil {
			c.logger.Error().Str("func", "syncCoordinator.doSync").Str("key", key.String()).Any("panic", r).Msg("recovered panic during sync")
			result = errorResult(key, fmt.Errorf("%w: %v", ErrSyncFatal, r))
			c.emitter.Emit(ctx, events.NewEntityNotification(events.EntitySyncError, key.Type, key.ID, map[string]any{
				"error": result.Err.Error(),
			}))
			c.emitter.Emit(ctx, events.NewEntityNotification(events.SyncFailed, key.Type, key.ID, nil))
		}
	}()

	syncCtx := c.ctxBuilder.Build(opts)
	c.emitter.Emit(ctx, events.NewEntityNotification(events.SyncStarted, key.Type, key.ID, map[string]any{
		"retry_count": syncCtx.RetryCount,
	}))

	entity, err := c.entities.GetEntity(ctx, key)
	if err != nil {
		return c.handleError(ctx, errorResult(key, err), opts)
	}

	remote, err := c.remote.FetchRemote(ctx, key.Type, key.ID, syncCtx)
	if err != nil {
		return c.handleError(ctx, errorResult(key, fmt.Errorf("fetch remote state: %w", err)), opts)
	}

	strategy, ok := c.strategies.lookup(key.Type)
	if !ok {
		return c.handleError(ctx, errorResult(key, fmt.Errorf("%w: %s", ErrNoStrategy, key.Type)), opts)
	}

	result = strategy.Sync(entity, remote, syncCtx)

	switch result.Status {
	case models.StatusSynced:
		result = c.handleSuccess(ctx, entity, result)
	case models.StatusConflict:
		result = c.handleConflict(ctx, entity, remote, result, opts, syncCtx)
	case models.StatusError:
		result = c.handleError(ctx, result, opts)
	}

	if result.Status == models.StatusError {
		c.emitter.Emit(ctx, events.NewEntityNotification(events.SyncFailed, key.Type, key.ID, map[string]any{
			"error": result.Err.Error(),
		}))
	} else {
		c.emitter.Emit(ctx, events.NewEntityNotification(events.SyncCompleted, key.Type, key.ID, map[string]any{
			"status": string(result.Status),
		}))
	}

	return result
}

// handleSuccess persists the reconciled entity, records the applied
// change-set as a delta, advances the durable version table, and emits
// EntitySyncSuccess. The version table is written only after the entity
// itself persisted.
func (c *syncCoordinator) handleSuccess(ctx context.Context, entity models.Syncable, result models.SyncResult) models.SyncResult {
	key := result.Key

	if err := c.entities.SaveEntity(ctx, entity); err != nil {
		return errorResult(key, fmt.Errorf("persist synced entity: %w", err))
	}

	c.versionMu.Lock()
	previous := c.versionTable[key.String()]
	c.versionTable[key.String()] = result.NewVersion
	snapshot := make(map[string]int64, len(c.versionTable))
	for k, v := range c.versionTable {
		snapshot[k] = v
	}
	c.versionMu.Unlock()

	if result.Merged && !c.cfg.DisableDeltaTracking {
		c.deltas.RecordDelta(models.DeltaUpdate{
			EntityID:    key.ID,
			EntityType:  key.Type,
			FromVersion: previous,
			ToVersion:   result.NewVersion,
			Changes:     result.AppliedChanges.Clone(),
			Timestamp:   c.clk.Now(),
		})
	}

	if err := c.versions.ReplaceAll(ctx, snapshot); err != nil {
		// The entity itself is already durable; losing the version table
		// write costs one redundant reconciliation on next startup.
		c.logger.Err(err).Str("func", "syncCoordinator.handleSuccess").Str("key", key.String()).Msg("failed to persist version table")
	}

	c.emitter.Emit(ctx, events.NewEntityNotification(events.EntitySyncSuccess, key.Type, key.ID, map[string]any{
		"new_version": result.NewVersion,
		"merged":      result.Merged,
	}))

	return result
}

// handleConflict looks up a resolver for the entity type and applies its
// decision. Merged and Custom outcomes additionally schedule exactly one
// retried sync after the configured delay.
func (c *syncCoordinator) handleConflict(ctx context.Context, entity models.Syncable, remote models.RemoteEntity, result models.SyncResult, opts models.SyncOptions, syncCtx models.SyncContext) models.SyncResult {
	key := result.Key

	resolver, ok := c.resolvers.lookup(key.Type)
	if !ok {
		c.emitter.Emit(ctx, events.NewEntityNotification(events.ConflictNoResolver, key.Type, key.ID, nil))
		return result
	}

	resolution := resolver.Resolve(result.LocalChanges, result.RemoteChanges, syncCtx)
	c.emitter.Emit(ctx, events.NewEntityNotification(events.ConflictResolutionAttempted, key.Type, key.ID, map[string]any{
		"resolution":  string(resolution.Resolution),
		"notify_user": resolution.NotifyUser,
	}))

	switch resolution.Resolution {
	case models.ResolutionLocalWins:
		// Local state stays untouched. The next sync cycle pushes it.
		return result

	case models.ResolutionRemoteWins:
		if err := entity.ApplyRemoteChanges(remote.Data); err != nil {
			return errorResult(key, fmt.Errorf("apply remote-wins resolution: %w", err))
		}
		entity.SetSyncVersion(remote.SyncVersion)
		entity.ClearLocalChanges()
		applied := syncedResult(key, entity.SyncVersion(), true)
		applied.AppliedChanges = remote.Data
		return c.handleSuccess(ctx, entity, applied)

	case models.ResolutionMerged, models.ResolutionCustom:
		if err := entity.ApplyRemoteChanges(resolution.ResolvedData); err != nil {
			return errorResult(key, fmt.Errorf("apply %s resolution: %w", resolution.Resolution, err))
		}
		if err := c.entities.SaveEntity(ctx, entity); err != nil {
			return errorResult(key, fmt.Errorf("persist resolved entity: %w", err))
		}
		c.scheduleResolutionRetry(ctx, key, opts)
		result.Merged = true
		return result

	default:
		return errorResult(key, fmt.Errorf("%w: unknown resolution %q", ErrSyncFatal, resolution.Resolution))
	}
}

// scheduleResolutionRetry re-attempts the sync once after the configured
// delay. The retry is marked in the options metadata so a second conflict on
// the retried sync never schedules another round.
func (c *syncCoordinator) scheduleResolutionRetry(ctx context.Context, key models.EntityKey, opts models.SyncOptions) {
	if opts.Metadata[resolutionRetryKey] == true {
		return
	}

	retryOpts := models.SyncOptions{
		Priority:   opts.Priority,
		RetryCount: opts.RetryCount,
		Metadata:   map[string]any{resolutionRetryKey: true},
	}

	c.retryWG.Add(1)
	go func() {
		defer c.retryWG.Done()
		c.clk.Sleep(ctx, c.cfg.RetryDelay)
		if ctx.Err() != nil {
			return
		}
		if _, err := c.SyncEntity(ctx, key.Type, key.ID, retryOpts); err != nil {
			c.logger.Err(err).Str("func", "syncCoordinator.scheduleResolutionRetry").Str("key", key.String()).Msg("post-resolution retry failed")
		}
	}()
}

// handleError classifies the failure: transient errors go to the offline
// retry queue with a bounded, incremented retry counter; everything else is
// surfaced via EntitySyncError.
func (c *syncCoordinator) handleError(ctx context.Context, result models.SyncResult, opts models.SyncOptions) models.SyncResult {
	key := result.Key

	if errors.Is(result.Err, adapter.ErrTransient) {
		if opts.RetryCount >= c.cfg.MaxRetries {
			result.Err = fmt.Errorf("%w: %w", ErrRetriesExhausted, result.Err)
			c.emitter.Emit(ctx, events.NewEntityNotification(events.EntitySyncError, key.Type, key.ID, map[string]any{
				"error": result.Err.Error(),
			}))
			return result
		}

		payload := models.RetryPayload{
			EntityType: key.Type,
			EntityID:   key.ID,
			RetryCount: opts.RetryCount + 1,
		}
		err := c.retryQueue.Enqueue(ctx, "sync_entity", payload, models.RetryOptions{
			Priority:   opts.Priority,
			MaxRetries: c.cfg.MaxRetries,
		})
		if err != nil {
			c.logger.Err(err).Str("func", "syncCoordinator.handleError").Str("key", key.String()).Msg("failed to enqueue retry task")
		}
		return result
	}

	c.emitter.Emit(ctx, events.NewEntityNotification(events.EntitySyncError, key.Type, key.ID, map[string]any{
		"error": result.Err.Error(),
	}))
	return result
}

// SyncAll synchronises every known entity sequentially, priority entities
// first. Per-entity failures are folded into the aggregate result list; one
// entity's failure never aborts the batch.
func (c *syncCoordinator) SyncAll(ctx context.Context, opts models.SyncOptions) ([]models.SyncResult, error) {
	if !c.bulkRunning.CompareAndSwap(false, true) {
		return nil, ErrBulkSyncRunning
	}
	defer c.bulkRunning.Store(false)

	states, err := c.entities.ListStates(ctx)
	if err != nil {
		return nil, fmt.Errorf("enumerate entities: %w", err)
	}

	priority := make(map[string]bool, len(c.cfg.PriorityTypes))
	for _, t := range c.cfg.PriorityTypes {
		priority[t] = true
	}
	for i := range states {
		if priority[states[i].Key.Type] {
			states[i].Priority += priorityBoost
		}
	}
	sort.SliceStable(states, func(i, j int) bool {
		return states[i].Priority > states[j].Priority
	})

	results := make([]models.SyncResult, 0, len(states))
	var succeeded, failed int
	for _, st := range states {
		result, _ := c.SyncEntity(ctx, st.Key.Type, st.Key.ID, models.SyncOptions{
			Priority:   st.Priority,
			RetryCount: opts.RetryCount,
			Metadata:   opts.Metadata,
		})
		results = append(results, result)
		if result.Status == models.StatusError {
			failed++
		} else {
			succeeded++
		}
	}

	c.emitter.Emit(ctx, events.NewNotification(events.BulkSyncCompleted, map[string]any{
		"total":     len(results),
		"succeeded": succeeded,
		"failed":    failed,
	}))
	c.logger.Info().Str("func", "syncCoordinator.SyncAll").Int("total", len(results)).Int("failed", failed).Msg("bulk sync completed")

	return results, nil
}

func (c *syncCoordinator) StartAutoSync(ctx context.Context) {
	c.job.Start(ctx, c.cfg.Interval, func(jobCtx context.Context) {
		if !c.probe.IsOnline() || c.bulkRunning.Load() {
			return
		}
		if _, err := c.SyncAll(jobCtx, models.SyncOptions{}); err != nil && !errors.Is(err, ErrBulkSyncRunning) {
			c.logger.Err(err).Str("func", "syncCoordinator.StartAutoSync").Msg("scheduled bulk sync failed")
		}
	})
	c.emitter.Emit(ctx, events.NewNotification(events.AutoSyncStarted, map[string]any{
		"interval": c.cfg.Interval.String(),
	}))
}

func (c *syncCoordinator) StopAutoSync() {
	c.job.Stop()
	c.emitter.Emit(context.Background(), events.NewNotification(events.AutoSyncStopped, nil))
}
