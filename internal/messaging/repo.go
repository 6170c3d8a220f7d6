package messaging

import (
	"context"

	"github.com/bargen/bargen-backend/pkg/db/models"
	"github.com/bargen/bargen-backend/pkg/types"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Repository stores chat messages. Messages are append-only.
type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) Create(ctx context.Context, msg *models.Message) error {
	return r.db.WithContext(ctx).Create(msg).Error
}

// ListForProduct returns messages on productID involving principal, oldest first.
func (r *Repository) ListForProduct(ctx context.Context, productID uuid.UUID, principal types.Principal) ([]models.Message, error) {
	var rows []models.Message
	err := r.db.WithContext(ctx).
		Where("product_id = ?", productID).
		Where("participant_low = ? OR participant_high = ?", principal, principal).
		Order("created_at ASC").Order("id ASC").
		Find(&rows).Error
	return rows, err
}

// ListForParticipant returns every message involving principal, newest first.
func (r *Repository) ListForParticipant(ctx context.Context, principal types.Principal) ([]models.Message, error) {
	var rows []models.Message
	err := r.db.WithContext(ctx).
		Where("participant_low = ? OR participant_high = ?", principal, principal).
		Order("created_at DESC").Order("id DESC").
		Find(&rows).Error
	return rows, err
}
