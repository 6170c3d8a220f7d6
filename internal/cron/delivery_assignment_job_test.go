package cron

import (
	"context"
	"errors"
	"testing"

	"github.com/bargen/bargen-backend/internal/delivery"
	"github.com/bargen/bargen-backend/pkg/logger"
)

type fakeAssigner struct {
	result delivery.AssignmentResult
	err    error
	calls  int
}

func (f *fakeAssigner) AssignPending(context.Context) (delivery.AssignmentResult, error) {
	f.calls++
	return f.result, f.err
}

func TestDeliveryAssignmentJobRunsSweep(t *testing.T) {
	assigner := &fakeAssigner{result: delivery.AssignmentResult{Considered: 3, Assigned: 2}}
	job, err := NewDeliveryAssignmentJob(DeliveryAssignmentJobParams{
		Logger:   logger.New(logger.Options{ServiceName: "test"}),
		Assigner: assigner,
	})
	if err != nil {
		t.Fatalf("NewDeliveryAssignmentJob: %v", err)
	}
	if job.Name() != "delivery-assignment" {
		t.Fatalf("unexpected job name %q", job.Name())
	}
	if err := job.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if assigner.calls != 1 {
		t.Fatalf("expected one sweep, got %d", assigner.calls)
	}
}

func TestDeliveryAssignmentJobPropagatesErrors(t *testing.T) {
	assigner := &fakeAssigner{err: errors.New("claim failed")}
	job, err := NewDeliveryAssignmentJob(DeliveryAssignmentJobParams{
		Logger:   logger.New(logger.Options{ServiceName: "test"}),
		Assigner: assigner,
	})
	if err != nil {
		t.Fatalf("NewDeliveryAssignmentJob: %v", err)
	}
	if err := job.Run(context.Background()); err == nil {
		t.Fatal("expected error")
	}
}

func TestDeliveryAssignmentJobRequiresAssigner(t *testing.T) {
	if _, err := NewDeliveryAssignmentJob(DeliveryAssignmentJobParams{
		Logger: logger.New(logger.Options{ServiceName: "test"}),
	}); err == nil {
		t.Fatal("expected missing assigner to fail")
	}
}
