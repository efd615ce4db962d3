package workers

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/lingvoro/lingvoro-client/internal/logger"
)

type funcWorker func(ctx context.Context) error

func (f funcWorker) Run(ctx context.Context) error { return f(ctx) }

func TestWorkers_Run_WaitsForAll(t *testing.T) {
	var first, second bool
	ws := NewWorkers(logger.Nop(),
		funcWorker(func(context.Context) error { first = true; return nil }),
		funcWorker(func(context.Context) error { second = true; return nil }),
	)

	assert.NoError(t, ws.Run(context.Background()))
	assert.True(t, first)
	assert.True(t, second)
}

func TestWorkers_Run_FailureCancelsSiblings(t *testing.T) {
	boom := errors.New("worker exploded")
	ws := NewWorkers(logger.Nop(),
		funcWorker(func(context.Context) error { return boom }),
		funcWorker(func(ctx context.Context) error {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(time.Second):
				return errors.New("sibling was not cancelled")
			}
		}),
	)

	assert.ErrorIs(t, ws.Run(context.Background()), boom)
}
