package cron

import (
	"context"
	"errors"
	"testing"
	"time"

	"gorm.io/gorm"

	"github.com/bargen/bargen-backend/pkg/logger"
)

func TestNotificationCleanupJobUsesRetentionCutoff(t *testing.T) {
	now := time.Date(2026, 1, 31, 0, 0, 0, 0, time.UTC)
	repo := &fakeNotificationRepo{batches: []int64{42}}
	job := newNotificationCleanupJob(t, repo, 0)
	job.now = func() time.Time { return now }

	if err := job.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}

	want := now.Add(-notificationRetentionDays * 24 * time.Hour)
	if !repo.lastCutoff.Equal(want) {
		t.Fatalf("expected cutoff %s, got %s", want, repo.lastCutoff)
	}
	if repo.called != 1 {
		t.Fatalf("a short batch should end the sweep, got %d calls", repo.called)
	}
	if repo.lastLimit != notificationCleanupBatch {
		t.Fatalf("expected default batch %d, got %d", notificationCleanupBatch, repo.lastLimit)
	}
}

func TestNotificationCleanupJobLoopsWhileBatchesAreFull(t *testing.T) {
	repo := &fakeNotificationRepo{batches: []int64{10, 10, 3}}
	job := newNotificationCleanupJob(t, repo, 10)

	if err := job.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if repo.called != 3 {
		t.Fatalf("expected 3 batches, got %d", repo.called)
	}
}

func TestNotificationCleanupJobPropagatesErrors(t *testing.T) {
	repo := &fakeNotificationRepo{err: errors.New("boom")}
	job := newNotificationCleanupJob(t, repo, 0)

	if err := job.Run(context.Background()); err == nil {
		t.Fatal("expected error")
	}
}

func TestNotificationCleanupJobHonorsConfiguredRetention(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	repo := &fakeNotificationRepo{}
	jobIface, err := NewNotificationCleanupJob(NotificationCleanupJobParams{
		Logger:     logger.New(logger.Options{ServiceName: "test"}),
		DB:         notificationFakeTxRunner{},
		Repository: repo,
		Retention:  7,
	})
	if err != nil {
		t.Fatalf("NewNotificationCleanupJob: %v", err)
	}
	job := jobIface.(*notificationCleanupJob)
	job.now = func() time.Time { return now }
	if err := job.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if want := now.Add(-7 * 24 * time.Hour); !repo.lastCutoff.Equal(want) {
		t.Fatalf("expected cutoff %s, got %s", want, repo.lastCutoff)
	}
}

func TestNotificationCleanupJobRequiresDependencies(t *testing.T) {
	if _, err := NewNotificationCleanupJob(NotificationCleanupJobParams{DB: notificationFakeTxRunner{}, Repository: &fakeNotificationRepo{}}); err == nil {
		t.Fatal("expected missing logger to fail")
	}
}

func newNotificationCleanupJob(t *testing.T, repo *fakeNotificationRepo, batch int) *notificationCleanupJob {
	t.Helper()
	jobIface, err := NewNotificationCleanupJob(NotificationCleanupJobParams{
		Logger:     logger.New(logger.Options{ServiceName: "test"}),
		DB:         notificationFakeTxRunner{},
		Repository: repo,
		BatchSize:  batch,
	})
	if err != nil {
		t.Fatalf("NewNotificationCleanupJob: %v", err)
	}
	return jobIface.(*notificationCleanupJob)
}

type fakeNotificationRepo struct {
	batches    []int64
	lastCutoff time.Time
	lastLimit  int
	err        error
	called     int
}

func (f *fakeNotificationRepo) DeleteOlderThan(_ context.Context, _ *gorm.DB, cutoff time.Time, limit int) (int64, error) {
	f.called++
	f.lastCutoff = cutoff
	f.lastLimit = limit
	if f.err != nil {
		return 0, f.err
	}
	if len(f.batches) == 0 {
		return 0, nil
	}
	n := f.batches[0]
	f.batches = f.batches[1:]
	return n, nil
}

type notificationFakeTxRunner struct{}

func (notificationFakeTxRunner) WithTx(_ context.Context, fn func(tx *gorm.DB) error) error {
	return fn(nil)
}
