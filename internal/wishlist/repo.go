package wishlist

import (
	"context"

	"github.com/bargen/bargen-backend/pkg/db/models"
	"github.com/bargen/bargen-backend/pkg/types"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Repository encapsulates wishlist persistence.
type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// AddItem inserts a like and ignores duplicates. It reports whether a row was written.
func (r *Repository) AddItem(ctx context.Context, customer types.Principal, productID uuid.UUID) (bool, error) {
	if customer.IsZero() || productID == uuid.Nil {
		return false, gorm.ErrInvalidValue
	}
	res := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "customer"}, {Name: "product_id"}},
			DoNothing: true,
		}).
		Create(&models.WishlistItem{Customer: customer, ProductID: productID})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

// RemoveItem deletes the like if it exists.
func (r *Repository) RemoveItem(ctx context.Context, customer types.Principal, productID uuid.UUID) error {
	return r.db.WithContext(ctx).
		Where("customer = ? AND product_id = ?", customer, productID).
		Delete(&models.WishlistItem{}).
		Error
}

func (r *Repository) Exists(ctx context.Context, customer types.Principal, productID uuid.UUID) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.WishlistItem{}).
		Where("customer = ? AND product_id = ?", customer, productID).
		Count(&count).Error
	return count > 0, err
}

// ListItems returns the customer's likes, newest first.
func (r *Repository) ListItems(ctx context.Context, customer types.Principal) ([]models.WishlistItem, error) {
	var rows []models.WishlistItem
	err := r.db.WithContext(ctx).
		Where("customer = ?", customer).
		Order("created_at DESC").Order("id DESC").
		Find(&rows).Error
	return rows, err
}
