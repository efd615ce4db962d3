package client

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/lingvoro/lingvoro-client/internal/adapter"
	"github.com/lingvoro/lingvoro-client/internal/config"
	"github.com/lingvoro/lingvoro-client/internal/events"
	"github.com/lingvoro/lingvoro-client/internal/logger"
	"github.com/lingvoro/lingvoro-client/internal/service"
	"github.com/lingvoro/lingvoro-client/internal/store"
	"github.com/lingvoro/lingvoro-client/internal/workers"
	"github.com/lingvoro/lingvoro-client/models"
)

// App is the assembled client application: sync engine, network monitor,
// and background workers around one local store and one remote adapter.
type App struct {
	cfg         *config.ClientConfig
	coordinator service.Coordinator
	monitor     *service.NetworkMonitor
	workers     *workers.Workers
	logger      *logger.Logger
}

// NewApp wires the full application from configuration. The default
// strategies and resolvers are installed here: version comparison for
// profile and settings, change-set union for progress, local-wins for
// preference conflicts, and the progress merge resolver.
func NewApp(cfg *config.ClientConfig, log *logger.Logger) (*App, error) {
	remote, err := adapter.NewHTTPRemoteSource(cfg.Adapter, log)
	if err != nil {
		return nil, fmt.Errorf("create remote source: %w", err)
	}
	if cfg.App.AuthToken != "" {
		remote.SetToken(cfg.App.AuthToken)
	}

	storages, err := store.NewClientStorages(cfg.Storage, log)
	if err != nil {
		return nil, fmt.Errorf("create local storage: %w", err)
	}

	bus := events.NewBus(log)
	bus.Subscribe(events.LogHandler(log))

	var coordinator service.Coordinator
	monitor := service.NewNetworkMonitor(cfg, remote, bus, log, func(ctx context.Context) {
		if _, err := coordinator.SyncAll(ctx, models.SyncOptions{}); err != nil {
			log.Err(err).Str("func", "NewApp").Msg("post-reconnect bulk sync failed")
		}
	})

	deltas := service.NewDeltaStore(cfg.Sync.DeltaCapacity, storages.Entities, bus, log)
	ctxBuilder := service.NewContextBuilder(cfg.App, remote, monitor)
	coordinator = service.NewSyncCoordinator(cfg.Sync, storages, remote, bus, deltas, ctxBuilder, log)
	coordinator.SetConnectivityProbe(monitor)

	coordinator.RegisterStrategy(models.EntityTypeProfile, service.NewLastWriteWinsStrategy(models.EntityTypeProfile))
	coordinator.RegisterStrategy(models.EntityTypeSettings, service.NewLastWriteWinsStrategy(models.EntityTypeSettings))
	coordinator.RegisterStrategy(models.EntityTypeProgress, service.NewFieldMergeStrategy(models.EntityTypeProgress))
	coordinator.RegisterResolver(models.EntityTypeProfile, service.NewUserPreferenceResolver(models.EntityTypeProfile))
	coordinator.RegisterResolver(models.EntityTypeSettings, service.NewUserPreferenceResolver(models.EntityTypeSettings))
	coordinator.RegisterResolver(models.EntityTypeProgress, service.NewProgressResolver(models.EntityTypeProgress))

	retryWorker := workers.NewRetryWorker(storages.RetryQueue, coordinator, monitor, cfg.Workers.RetryInterval, log)

	return &App{
		cfg:         cfg,
		coordinator: coordinator,
		monitor:     monitor,
		workers:     workers.NewWorkers(log, retryWorker),
		logger:      log,
	}, nil
}

// Run starts the sync engine and blocks until SIGINT/SIGTERM, then shuts
// everything down in reverse start order.
func (a *App) Run() error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := a.coordinator.Initialize(ctx); err != nil {
		return fmt.Errorf("initialize sync engine: %w", err)
	}
	defer a.coordinator.StopAutoSync()

	a.monitor.Start(ctx)
	defer a.monitor.Stop()

	a.logger.Info().Str("func", "App.Run").Msg("lingvoro client started")

	err := a.workers.Run(ctx)
	if err != nil && ctx.Err() == nil {
		return fmt.Errorf("background workers: %w", err)
	}

	a.logger.Info().Str("func", "App.Run").Msg("lingvoro client stopped")
	return nil
}
