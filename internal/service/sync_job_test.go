package service

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

// ── Start / Stop ─────────────────────────────────────────────────────────────

func TestAutoSyncJob_Start_RunsOnTicker(t *testing.T) {
	var calls atomic.Int64
	job := &autoSyncJob{}

	// 10ms interval over 55ms gives roughly 5 ticks.
	job.Start(context.Background(), 10*time.Millisecond, func(context.Context) {
		calls.Add(1)
	})
	time.Sleep(55 * time.Millisecond)
	job.Stop()

	got := calls.Load()
	assert.GreaterOrEqual(t, got, int64(3), "run should fire several times, fired: %d", got)
}

func TestAutoSyncJob_Stop_StopsGoroutine(t *testing.T) {
	var calls atomic.Int64
	job := &autoSyncJob{}

	job.Start(context.Background(), 10*time.Millisecond, func(context.Context) {
		calls.Add(1)
	})
	time.Sleep(30 * time.Millisecond)
	job.Stop()

	callsAfterStop := calls.Load()
	time.Sleep(30 * time.Millisecond)
	assert.Equal(t, callsAfterStop, calls.Load(), "no new runs after Stop")
}

func TestAutoSyncJob_Stop_BeforeStart_NoPanic(t *testing.T) {
	job := &autoSyncJob{}
	assert.NotPanics(t, func() { job.Stop() })
}

func TestAutoSyncJob_DoubleStop_NoPanic(t *testing.T) {
	job := &autoSyncJob{}
	job.Start(context.Background(), 10*time.Millisecond, func(context.Context) {})
	job.Stop()
	assert.NotPanics(t, func() { job.Stop() })
}

func TestAutoSyncJob_DefaultInterval(t *testing.T) {
	var calls atomic.Int64
	job := &autoSyncJob{}
	ctx, cancel := context.WithCancel(context.Background())

	// interval <= 0 falls back to 5 minutes, so 20ms sees no run.
	job.Start(ctx, 0, func(context.Context) { calls.Add(1) })
	time.Sleep(20 * time.Millisecond)
	cancel()
	job.Stop()

	assert.Equal(t, int64(0), calls.Load())
}

func TestAutoSyncJob_Restart_StopsPrevious(t *testing.T) {
	var calls atomic.Int64
	job := &autoSyncJob{}

	job.Start(context.Background(), 10*time.Millisecond, func(context.Context) { calls.Add(1) })
	time.Sleep(30 * time.Millisecond)
	callsBefore := calls.Load()
	assert.Greater(t, callsBefore, int64(0))

	job.Start(context.Background(), 10*time.Millisecond, func(context.Context) { calls.Add(1) })
	time.Sleep(30 * time.Millisecond)
	job.Stop()

	assert.Greater(t, calls.Load(), callsBefore, "second Start keeps generating runs")
}

func TestAutoSyncJob_ContextCancel_StopsJob(t *testing.T) {
	job := &autoSyncJob{}
	ctx, cancel := context.WithCancel(context.Background())

	job.Start(ctx, 10*time.Millisecond, func(context.Context) {})
	time.Sleep(30 * time.Millisecond)
	cancel()

	done := make(chan struct{})
	go func() {
		job.Stop()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(1 * time.Second):
		t.Fatal("Stop hung after context cancellation")
	}
}
