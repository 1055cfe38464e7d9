package scheduler

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jengzang/bikeshare-insights/internal/apperror"
)

type countingReloader struct {
	calls atomic.Int32
}

func (r *countingReloader) Reload(ctx context.Context) {
	r.calls.Add(1)
}

func TestInvalidSpec(t *testing.T) {
	_, err := NewReloadSchedule("every tuesday", &countingReloader{}, time.Second)
	assert.True(t, errors.Is(err, apperror.ErrInvalidInput))
}

func TestScheduleRunsUntilCancelled(t *testing.T) {
	reloader := &countingReloader{}
	s, err := NewReloadSchedule("@every 1s", reloader, time.Second)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		s.Run(ctx)
		close(done)
	}()

	assert.Eventually(t, func() bool { return reloader.calls.Load() >= 1 }, 5*time.Second, 50*time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("schedule did not stop")
	}
}
