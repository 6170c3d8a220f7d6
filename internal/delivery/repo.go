package delivery

import (
	"context"
	"time"

	"github.com/bargen/bargen-backend/pkg/db"
	"github.com/bargen/bargen-backend/pkg/db/models"
	"github.com/bargen/bargen-backend/pkg/enums"
	"github.com/bargen/bargen-backend/pkg/types"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Repository persists delivery partners and orders.
type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	if tx == nil {
		return r
	}
	return &Repository{db: tx}
}

func (r *Repository) CreatePartner(ctx context.Context, partner *models.DeliveryPartner) error {
	return r.db.WithContext(ctx).Create(partner).Error
}

func (r *Repository) FindPartner(ctx context.Context, id uuid.UUID) (*models.DeliveryPartner, error) {
	var partner models.DeliveryPartner
	if err := r.db.WithContext(ctx).First(&partner, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &partner, nil
}

func (r *Repository) ListPartnersByOwner(ctx context.Context, owner types.Principal) ([]models.DeliveryPartner, error) {
	var rows []models.DeliveryPartner
	err := r.db.WithContext(ctx).
		Where("owner = ?", owner).
		Order("created_at ASC").Order("id ASC").
		Find(&rows).Error
	return rows, err
}

func (r *Repository) SetPartnerAvailability(ctx context.Context, id uuid.UUID, available bool) error {
	return r.db.WithContext(ctx).
		Model(&models.DeliveryPartner{}).
		Where("id = ?", id).
		Updates(map[string]any{"is_available": available, "updated_at": time.Now().UTC()}).Error
}

// HasActiveOrder reports whether the partner is the driver on an order that
// has not reached a terminal status.
func (r *Repository) HasActiveOrder(ctx context.Context, partnerID uuid.UUID) (bool, error) {
	var n int64
	err := r.db.WithContext(ctx).
		Model(&models.DeliveryOrder{}).
		Where("driver_id = ? AND status NOT IN ?", partnerID,
			[]enums.DeliveryStatus{enums.DeliveryStatusCompleted, enums.DeliveryStatusFailed}).
		Count(&n).Error
	return n > 0, err
}

func (r *Repository) CreateOrder(ctx context.Context, order *models.DeliveryOrder) error {
	return r.db.WithContext(ctx).Create(order).Error
}

func (r *Repository) FindOrder(ctx context.Context, id uuid.UUID) (*models.DeliveryOrder, error) {
	var order models.DeliveryOrder
	if err := r.db.WithContext(ctx).First(&order, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &order, nil
}

// OrderVisibility lists the identities through which a caller may see orders.
type OrderVisibility struct {
	Customer   types.Principal
	PartnerIDs []uuid.UUID
	ShopIDs    []uuid.UUID
}

// ListVisibleOrders returns orders matching any of the visibility keys, newest first.
func (r *Repository) ListVisibleOrders(ctx context.Context, vis OrderVisibility) ([]models.DeliveryOrder, error) {
	cond := r.db.Session(&gorm.Session{NewDB: true}).Where("customer = ?", vis.Customer)
	if len(vis.PartnerIDs) > 0 {
		cond = cond.Or("driver_id IN ?", vis.PartnerIDs)
	}
	if len(vis.ShopIDs) > 0 {
		cond = cond.Or("shop_id IN ?", vis.ShopIDs)
	}
	var rows []models.DeliveryOrder
	err := r.db.WithContext(ctx).
		Where(cond).
		Order("created_at DESC").Order("id DESC").
		Find(&rows).Error
	return rows, err
}

// TransitionOrder moves an order from one status to another. It reports false
// when the order was no longer in from. When releaseDriver is set the partner
// becomes available again in the same transaction.
func (r *Repository) TransitionOrder(ctx context.Context, id uuid.UUID, from, to enums.DeliveryStatus, releaseDriver *uuid.UUID) (bool, error) {
	moved := false
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		now := time.Now().UTC()
		res := tx.Model(&models.DeliveryOrder{}).
			Where("id = ? AND status = ?", id, from).
			Updates(map[string]any{"status": to, "updated_at": now})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return nil
		}
		moved = true
		if releaseDriver == nil {
			return nil
		}
		return tx.Model(&models.DeliveryPartner{}).
			Where("id = ?", *releaseDriver).
			Updates(map[string]any{"is_available": true, "updated_at": now}).Error
	})
	return moved, err
}

// ListAwaitingDriver returns orders waiting for a driver, oldest first.
func (r *Repository) ListAwaitingDriver(ctx context.Context, limit int) ([]models.DeliveryOrder, error) {
	var rows []models.DeliveryOrder
	q := r.db.WithContext(ctx).
		Where("status = ?", enums.DeliveryStatusDriverPendingAssignment).
		Order("created_at ASC").Order("id ASC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	err := q.Find(&rows).Error
	return rows, err
}

// LockAwaitingOrder re-reads the order under a row lock, skipping rows another
// worker already holds. Locking clauses are only emitted on Postgres.
func (r *Repository) LockAwaitingOrder(ctx context.Context, id uuid.UUID) (*models.DeliveryOrder, error) {
	var order models.DeliveryOrder
	err := skipLocked(r.db.WithContext(ctx)).
		Where("id = ? AND status = ?", id, enums.DeliveryStatusDriverPendingAssignment).
		First(&order).Error
	if err != nil {
		return nil, err
	}
	return &order, nil
}

// ClaimAvailablePartner locks the longest-registered available partner.
func (r *Repository) ClaimAvailablePartner(ctx context.Context) (*models.DeliveryPartner, error) {
	var partner models.DeliveryPartner
	err := skipLocked(r.db.WithContext(ctx)).
		Where("is_available = ?", true).
		Order("created_at ASC").Order("id ASC").
		First(&partner).Error
	if err != nil {
		return nil, err
	}
	return &partner, nil
}

// AssignDriver marks the partner busy and moves the order to driver_assigned.
func (r *Repository) AssignDriver(ctx context.Context, orderID, partnerID uuid.UUID) error {
	now := time.Now().UTC()
	if err := r.db.WithContext(ctx).
		Model(&models.DeliveryPartner{}).
		Where("id = ?", partnerID).
		Updates(map[string]any{"is_available": false, "updated_at": now}).Error; err != nil {
		return err
	}
	return r.db.WithContext(ctx).
		Model(&models.DeliveryOrder{}).
		Where("id = ?", orderID).
		Updates(map[string]any{
			"status":     enums.DeliveryStatusDriverAssigned,
			"driver_id":  partnerID,
			"updated_at": now,
		}).Error
}

func skipLocked(conn *gorm.DB) *gorm.DB {
	if !db.IsPostgres(conn) {
		return conn
	}
	return conn.Clauses(clause.Locking{Strength: "UPDATE", Options: "SKIP LOCKED"})
}
