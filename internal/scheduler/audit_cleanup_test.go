package scheduler

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/mrlokans/bookswap/internal/tasks"
)

type recorder struct {
	mu    sync.Mutex
	tasks []tasks.PurgeAuditEventsTask
	err   error
}

func (r *recorder) EnqueuePurge(ctx context.Context, task tasks.PurgeAuditEventsTask) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.tasks = append(r.tasks, task)
	return r.err
}

func TestValidateSchedule(t *testing.T) {
	assert.NoError(t, ValidateSchedule("0 3 * * *"))
	assert.NoError(t, ValidateSchedule("*/15 * * * *"))
	assert.Error(t, ValidateSchedule("0 0 3 * * *"))
	assert.Error(t, ValidateSchedule("nightly"))
}

func TestAuditCleanupScheduler_StartStop(t *testing.T) {
	rec := &recorder{}
	s := NewAuditCleanupScheduler("0 3 * * *", 30, rec, zap.NewNop())

	require.NoError(t, s.Start(context.Background()))
	assert.True(t, s.IsRunning())

	next := s.NextRun()
	require.NotNil(t, next)
	assert.Equal(t, 3, next.Hour())
	assert.True(t, next.After(time.Now()))

	s.Stop()
	assert.False(t, s.IsRunning())
	assert.Nil(t, s.NextRun())
	s.Stop()
}

func TestAuditCleanupScheduler_StopsWithContext(t *testing.T) {
	s := NewAuditCleanupScheduler("0 3 * * *", 30, &recorder{}, nil)
	ctx, cancel := context.WithCancel(context.Background())
	require.NoError(t, s.Start(ctx))

	cancel()
	assert.Eventually(t, func() bool { return !s.IsRunning() }, 2*time.Second, 10*time.Millisecond)
}

func TestAuditCleanupScheduler_DisabledAndInvalid(t *testing.T) {
	s := NewAuditCleanupScheduler("", 30, &recorder{}, nil)
	require.NoError(t, s.Start(context.Background()))
	assert.False(t, s.IsRunning())

	s = NewAuditCleanupScheduler("every night", 30, &recorder{}, nil)
	assert.Error(t, s.Start(context.Background()))
	assert.False(t, s.IsRunning())
}

func TestAuditCleanupScheduler_RunNow(t *testing.T) {
	rec := &recorder{}
	s := NewAuditCleanupScheduler("0 3 * * *", 45, rec, nil)

	s.RunNow()
	rec.err = errors.New("queue closed")
	s.RunNow()

	require.Len(t, rec.tasks, 2)
	assert.Equal(t, 45, rec.tasks[0].RetentionDays)
}
