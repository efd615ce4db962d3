package service

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/lingvoro/lingvoro-client/internal/adapter"
	"github.com/lingvoro/lingvoro-client/internal/config"
	"github.com/lingvoro/lingvoro-client/internal/events"
	"github.com/lingvoro/lingvoro-client/internal/logger"
)

// NetworkMonitor polls server reachability and tracks the online flag the
// SyncContext builder reads. On an offline→online transition it waits for a
// settle delay (so flapping links do not thrash auto-sync), re-checks the
// link, emits NetworkRestored, and invokes the restore callback.
type NetworkMonitor struct {
	remote        adapter.RemoteSource
	emitter       events.Emitter
	logger        *logger.Logger
	probeInterval time.Duration
	settleDelay   time.Duration

	online    atomic.Bool
	onRestore func(ctx context.Context)

	mu     sync.Mutex
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewNetworkMonitor builds a monitor probing the remote source on
// cfg.Workers.NetworkProbeInterval with cfg.Sync.SettleDelay applied after
// reconnection. onRestore may be nil.
func NewNetworkMonitor(cfg *config.ClientConfig, remote adapter.RemoteSource, emitter events.Emitter, log *logger.Logger, onRestore func(ctx context.Context)) *NetworkMonitor {
	m := &NetworkMonitor{
		remote:        remote,
		emitter:       emitter,
		logger:        log,
		probeInterval: cfg.Workers.NetworkProbeInterval,
		settleDelay:   cfg.Sync.SettleDelay,
		onRestore:     onRestore,
	}
	m.online.Store(true)
	return m
}

// IsOnline implements ConnectivityProbe.
func (m *NetworkMonitor) IsOnline() bool {
	return m.online.Load()
}

// Start launches the probe loop. Idempotent: a second Start stops the
// previous loop first.
func (m *NetworkMonitor) Start(ctx context.Context) {
	m.Stop()

	m.mu.Lock()
	loopCtx, cancel := context.WithCancel(ctx)
	m.cancel = cancel
	m.wg.Add(1)
	m.mu.Unlock()

	go func() {
		defer m.wg.Done()
		t := time.NewTicker(m.probeInterval)
		defer t.Stop()

		for {
			select {
			case <-loopCtx.Done():
				return
			case <-t.C:
				m.probe(loopCtx)
			}
		}
	}()
}

// Stop halts the probe loop and waits for it to exit.
func (m *NetworkMonitor) Stop() {
	m.mu.Lock()
	cancel := m.cancel
	m.cancel = nil
	m.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	m.wg.Wait()
}

func (m *NetworkMonitor) probe(ctx context.Context) {
	reachable := m.remote.Ping(ctx) == nil
	wasOnline := m.online.Load()

	switch {
	case reachable == wasOnline:
		return

	case !reachable:
		m.online.Store(false)
		m.logger.Warn().Str("func", "NetworkMonitor.probe").Msg("network connection lost")

	default:
		m.restore(ctx)
	}
}

// restore waits out the settle delay and confirms the link is still up
// before declaring the client online again.
func (m *NetworkMonitor) restore(ctx context.Context) {
	t := time.NewTimer(m.settleDelay)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return
	case <-t.C:
	}

	if m.remote.Ping(ctx) != nil {
		return
	}

	m.online.Store(true)
	m.logger.Info().Str("func", "NetworkMonitor.restore").Msg("network connection restored")
	m.emitter.Emit(ctx, events.NewNotification(events.NetworkRestored, map[string]any{
		"settle_delay": m.settleDelay.String(),
	}))

	if m.onRestore != nil {
		m.onRestore(ctx)
	}
}
