package cron

import (
	"context"
	"fmt"

	"github.com/bargen/bargen-backend/internal/delivery"
	"github.com/bargen/bargen-backend/pkg/logger"
)

type pendingAssigner interface {
	AssignPending(ctx context.Context) (delivery.AssignmentResult, error)
}

type DeliveryAssignmentJobParams struct {
	Logger   *logger.Logger
	Assigner pendingAssigner
}

// NewDeliveryAssignmentJob pairs orders waiting for a driver with available partners.
func NewDeliveryAssignmentJob(params DeliveryAssignmentJobParams) (Job, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.Assigner == nil {
		return nil, fmt.Errorf("assigner required")
	}
	return &deliveryAssignmentJob{logg: params.Logger, assigner: params.Assigner}, nil
}

type deliveryAssignmentJob struct {
	logg     *logger.Logger
	assigner pendingAssigner
}

func (j *deliveryAssignmentJob) Name() string { return "delivery-assignment" }

func (j *deliveryAssignmentJob) Run(ctx context.Context) error {
	result, err := j.assigner.AssignPending(ctx)
	logCtx := j.logg.WithFields(ctx, map[string]any{
		"orders_considered": result.Considered,
		"orders_assigned":   result.Assigned,
	})
	if err != nil {
		return fmt.Errorf("delivery assignment: %w", err)
	}
	if result.Considered > 0 {
		j.logg.Info(logCtx, "delivery.assignment.sweep")
	}
	return nil
}
