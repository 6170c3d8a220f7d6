package cron

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/bargen/bargen-backend/pkg/logger"
)

const (
	notificationRetentionDays = 30
	notificationCleanupBatch  = 500
)

// NotificationCleanupJobParams configures the retention sweep. Retention is
// in days; BatchSize caps the rows deleted per transaction.
type NotificationCleanupJobParams struct {
	Logger     *logger.Logger
	DB         txRunner
	Repository notificationsCleanupRepo
	Retention  int
	BatchSize  int
}

type notificationsCleanupRepo interface {
	DeleteOlderThan(ctx context.Context, tx *gorm.DB, cutoff time.Time, limit int) (int64, error)
}

type notificationCleanupJob struct {
	logg      *logger.Logger
	db        txRunner
	repo      notificationsCleanupRepo
	retention time.Duration
	batch     int
	now       func() time.Time
}

// NewNotificationCleanupJob drops shopkeeper notifications past retention.
func NewNotificationCleanupJob(params NotificationCleanupJobParams) (Job, error) {
	switch {
	case params.Logger == nil:
		return nil, errors.New("logger required")
	case params.DB == nil:
		return nil, errors.New("db runner required")
	case params.Repository == nil:
		return nil, errors.New("notifications repository required")
	}
	days := params.Retention
	if days <= 0 {
		days = notificationRetentionDays
	}
	batch := params.BatchSize
	if batch <= 0 {
		batch = notificationCleanupBatch
	}
	return &notificationCleanupJob{
		logg:      params.Logger,
		db:        params.DB,
		repo:      params.Repository,
		retention: time.Duration(days) * 24 * time.Hour,
		batch:     batch,
		now:       time.Now,
	}, nil
}

func (j *notificationCleanupJob) Name() string { return "notification-cleanup" }

// Run deletes in batches until a short batch shows nothing older remains.
// Batches already committed stay deleted when a later one fails.
func (j *notificationCleanupJob) Run(ctx context.Context) error {
	cutoff := j.now().UTC().Add(-j.retention)
	var total int64
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		var deleted int64
		err := j.db.WithTx(ctx, func(tx *gorm.DB) error {
			n, err := j.repo.DeleteOlderThan(ctx, tx, cutoff, j.batch)
			deleted = n
			return err
		})
		if err != nil {
			return err
		}
		total += deleted
		if deleted < int64(j.batch) {
			break
		}
	}

	if total > 0 {
		j.logg.Info(j.logg.WithFields(ctx, map[string]any{
			"cutoff":       cutoff,
			"rows_deleted": total,
		}), "notifications.cleanup.deleted")
	}
	return nil
}
