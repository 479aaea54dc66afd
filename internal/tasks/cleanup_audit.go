package tasks

import (
	"context"
	"fmt"
	"time"

	"github.com/mikestefanello/backlite"
	"go.uber.org/zap"
)

// AuditEventCleaner deletes expired audit events and records the run.
type AuditEventCleaner interface {
	DeleteOldEvents(ctx context.Context, retention time.Duration) (int64, error)
	LogMaintenance(action, description string, err error)
}

// PurgeAuditEventsTask removes audit events older than RetentionDays.
type PurgeAuditEventsTask struct {
	RetentionDays int `json:"retention_days"`
}

func (t PurgeAuditEventsTask) Config() backlite.QueueConfig {
	return backlite.QueueConfig{
		Name:        "purge_audit_events",
		MaxAttempts: 3,
		Backoff:     5 * time.Minute,
		Timeout:     2 * time.Minute,
		Retention: &backlite.Retention{
			Duration: 24 * time.Hour,
			Data:     &backlite.RetainData{OnlyFailed: true},
		},
	}
}

func PurgeAuditEventsProcessor(cleaner AuditEventCleaner, logger *zap.Logger) backlite.QueueProcessor[PurgeAuditEventsTask] {
	return func(ctx context.Context, task PurgeAuditEventsTask) error {
		if cleaner == nil {
			return fmt.Errorf("audit event cleaner not configured")
		}

		days := task.RetentionDays
		if days <= 0 {
			days = DefaultConfig().AuditRetentionDays
		}

		deleted, err := cleaner.DeleteOldEvents(ctx, time.Duration(days)*24*time.Hour)
		if err != nil {
			cleaner.LogMaintenance("purge_audit_events", "Audit purge failed", err)
			return fmt.Errorf("purge audit events: %w", err)
		}

		logger.Info("purged audit events", zap.Int64("deleted", deleted), zap.Int("retention_days", days))
		cleaner.LogMaintenance("purge_audit_events",
			fmt.Sprintf("Deleted %d events older than %d days", deleted, days), nil)
		return nil
	}
}

func NewPurgeAuditEventsQueue(cleaner AuditEventCleaner, logger *zap.Logger) backlite.Queue {
	if logger == nil {
		logger = zap.NewNop()
	}
	return backlite.NewQueue(PurgeAuditEventsProcessor(cleaner, logger))
}
