package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/mrlokans/bookswap/internal/tasks"
)

// Enqueuer hands a purge task to the background queue.
type Enqueuer interface {
	EnqueuePurge(ctx context.Context, task tasks.PurgeAuditEventsTask) error
}

// EnqueuerFunc adapts a function to Enqueuer.
type EnqueuerFunc func(ctx context.Context, task tasks.PurgeAuditEventsTask) error

func (f EnqueuerFunc) EnqueuePurge(ctx context.Context, task tasks.PurgeAuditEventsTask) error {
	return f(ctx, task)
}

// QueueEnqueuer enqueues purge tasks on a backlite client.
func QueueEnqueuer(client *tasks.Client) Enqueuer {
	return EnqueuerFunc(func(ctx context.Context, task tasks.PurgeAuditEventsTask) error {
		_, err := client.Add(task).Ctx(ctx).Save()
		return err
	})
}

var parser = cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)

// ValidateSchedule checks a five-field cron expression.
func ValidateSchedule(schedule string) error {
	_, err := parser.Parse(schedule)
	return err
}

// AuditCleanupScheduler enqueues an audit purge on a cron schedule.
type AuditCleanupScheduler struct {
	schedule      string
	retentionDays int
	enqueuer      Enqueuer
	log           *zap.Logger

	cron      *cron.Cron
	entryID   cron.EntryID
	mu        sync.RWMutex
	isRunning bool
}

func NewAuditCleanupScheduler(schedule string, retentionDays int, enqueuer Enqueuer, logger *zap.Logger) *AuditCleanupScheduler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AuditCleanupScheduler{
		schedule:      schedule,
		retentionDays: retentionDays,
		enqueuer:      enqueuer,
		log:           logger,
		cron:          cron.New(cron.WithParser(parser)),
	}
}

// Start is a no-op when the schedule is empty. The scheduler stops when ctx
// is cancelled.
func (s *AuditCleanupScheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.isRunning {
		return nil
	}
	if s.schedule == "" {
		s.log.Info("audit cleanup scheduler disabled")
		return nil
	}
	if err := ValidateSchedule(s.schedule); err != nil {
		return fmt.Errorf("invalid cron schedule %q: %w", s.schedule, err)
	}

	entryID, err := s.cron.AddFunc(s.schedule, s.RunNow)
	if err != nil {
		return fmt.Errorf("failed to schedule audit cleanup: %w", err)
	}
	s.entryID = entryID
	s.cron.Start()
	s.isRunning = true

	s.log.Info("audit cleanup scheduler started",
		zap.String("schedule", s.schedule),
		zap.Int("retention_days", s.retentionDays),
		zap.Timep("next_run", s.nextRunLocked()))

	go func() {
		<-ctx.Done()
		s.Stop()
	}()
	return nil
}

// Stop waits for a running enqueue to finish.
func (s *AuditCleanupScheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.isRunning {
		return
	}
	<-s.cron.Stop().Done()
	s.cron.Remove(s.entryID)
	s.isRunning = false
	s.log.Info("audit cleanup scheduler stopped")
}

// RunNow enqueues one purge immediately.
func (s *AuditCleanupScheduler) RunNow() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	task := tasks.PurgeAuditEventsTask{RetentionDays: s.retentionDays}
	if err := s.enqueuer.EnqueuePurge(ctx, task); err != nil {
		s.log.Error("failed to enqueue audit purge", zap.Error(err))
		return
	}
	s.log.Debug("audit purge enqueued", zap.Int("retention_days", s.retentionDays))
}

func (s *AuditCleanupScheduler) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.isRunning
}

// NextRun returns nil when the scheduler is not running.
func (s *AuditCleanupScheduler) NextRun() *time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.isRunning {
		return nil
	}
	return s.nextRunLocked()
}

func (s *AuditCleanupScheduler) nextRunLocked() *time.Time {
	for _, entry := range s.cron.Entries() {
		if entry.ID == s.entryID {
			t := entry.Next
			return &t
		}
	}
	return nil
}
