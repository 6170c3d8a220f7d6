package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/bargen/bargen-backend/pkg/types"
)

// WishlistItem links a customer to a liked product.
type WishlistItem struct {
	ID        uuid.UUID       `gorm:"column:id;type:uuid;primaryKey"`
	Customer  types.Principal `gorm:"column:customer;type:text;not null;uniqueIndex:wishlist_items_customer_product_key"`
	ProductID uuid.UUID       `gorm:"column:product_id;type:uuid;not null;index:wishlist_items_product_id_idx;uniqueIndex:wishlist_items_customer_product_key"`
	CreatedAt time.Time       `gorm:"column:created_at;autoCreateTime"`
}

func (WishlistItem) TableName() string { return "wishlist_items" }

func (w *WishlistItem) BeforeCreate(*gorm.DB) error {
	ensureID(&w.ID)
	return nil
}
