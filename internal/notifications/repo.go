package notifications

import (
	"context"
	"time"

	"github.com/bargen/bargen-backend/pkg/db/models"
	"github.com/bargen/bargen-backend/pkg/pagination"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Repository exposes persistence helpers for shopkeeper notifications.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, notification *models.ShopkeeperNotification) error
	List(ctx context.Context, params listNotificationsParams) ([]models.ShopkeeperNotification, error)
	DeleteOlderThan(ctx context.Context, tx *gorm.DB, cutoff time.Time, limit int) (int64, error)
}

type repositoryImpl struct {
	db *gorm.DB
}

// NewRepository returns a notifications repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repositoryImpl{db: db}
}

type listNotificationsParams struct {
	ShopID uuid.UUID
	Limit  int
	Cursor *pagination.Cursor
}

func (r *repositoryImpl) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repositoryImpl{db: tx}
}

func (r *repositoryImpl) Create(ctx context.Context, notification *models.ShopkeeperNotification) error {
	return r.db.WithContext(ctx).Create(notification).Error
}

// List returns up to Limit+1 rows so the caller can detect another page.
func (r *repositoryImpl) List(ctx context.Context, params listNotificationsParams) ([]models.ShopkeeperNotification, error) {
	var rows []models.ShopkeeperNotification
	err := r.db.WithContext(ctx).
		Model(&models.ShopkeeperNotification{}).
		Where("shop_id = ?", params.ShopID).
		Scopes(pagination.NewestFirst(params.Cursor, params.Limit)).
		Find(&rows).Error
	return rows, err
}

// DeleteOlderThan removes notifications created before cutoff, at most limit
// rows when limit > 0.
func (r *repositoryImpl) DeleteOlderThan(ctx context.Context, tx *gorm.DB, cutoff time.Time, limit int) (int64, error) {
	conn := r.db
	if tx != nil {
		conn = tx
	}
	conn = conn.WithContext(ctx)
	query := conn.Where("created_at < ?", cutoff)
	if limit > 0 {
		oldest := conn.Model(&models.ShopkeeperNotification{}).
			Select("id").
			Where("created_at < ?", cutoff).
			Order("created_at ASC").
			Limit(limit)
		query = conn.Where("id IN (?)", oldest)
	}
	result := query.Delete(&models.ShopkeeperNotification{})
	return result.RowsAffected, result.Error
}
