package delivery

import (
	"context"
	"errors"
	"fmt"

	"github.com/bargen/bargen-backend/pkg/logger"
	"github.com/bargen/bargen-backend/pkg/metrics"
	"go.uber.org/multierr"
	"gorm.io/gorm"
)

const DefaultAssignmentBatch = 50

var (
	errOrderTaken = errors.New("order no longer awaiting a driver")
	errNoPartner  = errors.New("no available delivery partner")
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// AssignmentResult summarizes one assignment sweep.
type AssignmentResult struct {
	Considered int
	Assigned   int
}

// Assigner pairs orders awaiting a driver with available partners.
type Assigner struct {
	tx      txRunner
	repo    *Repository
	metrics *metrics.MarketplaceMetrics
	logg    *logger.Logger
	batch   int
}

type AssignerParams struct {
	DB        txRunner
	Repo      *Repository
	Metrics   *metrics.MarketplaceMetrics
	Logger    *logger.Logger
	BatchSize int
}

func NewAssigner(params AssignerParams) (*Assigner, error) {
	if params.DB == nil {
		return nil, fmt.Errorf("db client required")
	}
	if params.Repo == nil {
		return nil, fmt.Errorf("delivery repository required")
	}
	batch := params.BatchSize
	if batch <= 0 {
		batch = DefaultAssignmentBatch
	}
	return &Assigner{
		tx:      params.DB,
		repo:    params.Repo,
		metrics: params.Metrics,
		logg:    params.Logger,
		batch:   batch,
	}, nil
}

// AssignPending walks awaiting orders oldest first. Each claim runs in its own
// transaction; per-order failures are collected and the sweep continues. The
// sweep stops early once no partner is available.
func (a *Assigner) AssignPending(ctx context.Context) (AssignmentResult, error) {
	var result AssignmentResult
	orders, err := a.repo.ListAwaitingDriver(ctx, a.batch)
	if err != nil {
		return result, fmt.Errorf("list awaiting orders: %w", err)
	}

	var errs error
	for _, order := range orders {
		if ctx.Err() != nil {
			errs = multierr.Append(errs, ctx.Err())
			break
		}
		result.Considered++
		err := a.tx.WithTx(ctx, func(tx *gorm.DB) error {
			repo := a.repo.WithTx(tx)
			locked, err := repo.LockAwaitingOrder(ctx, order.ID)
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return errOrderTaken
			}
			if err != nil {
				return err
			}
			partner, err := repo.ClaimAvailablePartner(ctx)
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return errNoPartner
			}
			if err != nil {
				return err
			}
			if err := repo.AssignDriver(ctx, locked.ID, partner.ID); err != nil {
				return err
			}
			if a.logg != nil {
				a.logg.Info(a.logg.WithFields(ctx, map[string]any{
					"order_id":   locked.ID.String(),
					"partner_id": partner.ID.String(),
				}), "delivery.driver.assigned")
			}
			return nil
		})
		switch {
		case err == nil:
			result.Assigned++
			a.metrics.DriverAssigned()
		case errors.Is(err, errOrderTaken):
		case errors.Is(err, errNoPartner):
			return result, errs
		default:
			errs = multierr.Append(errs, fmt.Errorf("assign order %s: %w", order.ID, err))
		}
	}
	return result, errs
}
