package service

import (
	"context"
	"sync"
	"time"

	"github.com/lingvoro/lingvoro-client/internal/events"
)

// recordingEmitter captures notifications for assertions without going
// through a real bus.
type recordingEmitter struct {
	mu    sync.Mutex
	notes []events.Notification
}

func (r *recordingEmitter) Emit(_ context.Context, n events.Notification) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.notes = append(r.notes, n)
}

func (r *recordingEmitter) names() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, len(r.notes))
	for i, n := range r.notes {
		out[i] = n.Name
	}
	return out
}

func (r *recordingEmitter) find(name string) (events.Notification, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, n := range r.notes {
		if n.Name == name {
			return n, true
		}
	}
	return events.Notification{}, false
}

func (r *recordingEmitter) count(name string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	var c int
	for _, n := range r.notes {
		if n.Name == name {
			c++
		}
	}
	return c
}

// fakeClock shrinks coordinator delays to a few milliseconds. The sleep is
// not a pure no-op: the post-resolution retry must start after the
// triggering operation has left the pending set, or it would coalesce into
// it.
type fakeClock struct {
	now time.Time
}

func (f fakeClock) Now() time.Time {
	if f.now.IsZero() {
		return time.Now()
	}
	return f.now
}

func (fakeClock) Sleep(ctx context.Context, _ time.Duration) {
	t := time.NewTimer(5 * time.Millisecond)
	defer t.Stop()
	select {
	case <-ctx.Done():
	case <-t.C:
	}
}
