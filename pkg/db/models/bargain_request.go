package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/bargen/bargen-backend/pkg/enums"
	"github.com/bargen/bargen-backend/pkg/types"
)

// BargainRequest is a customer's proposed price for a product. Shopkeeper and
// ShopID are captured at submission so the record outlives the product.
type BargainRequest struct {
	ID               uuid.UUID           `gorm:"column:id;type:uuid;primaryKey"`
	ProductID        uuid.UUID           `gorm:"column:product_id;type:uuid;not null;index:bargain_requests_product_idx"`
	ShopID           uuid.UUID           `gorm:"column:shop_id;type:uuid;not null;index:bargain_requests_shop_customer_idx,priority:1"`
	Customer         types.Principal     `gorm:"column:customer;type:text;not null;index:bargain_requests_shop_customer_idx,priority:2"`
	Shopkeeper       types.Principal     `gorm:"column:shopkeeper;type:text;not null;index:bargain_requests_shopkeeper_idx"`
	DesiredPrice     int64               `gorm:"column:desired_price;not null"`
	Note             *string             `gorm:"column:note;type:text"`
	Status           enums.BargainStatus `gorm:"column:status;type:text;not null"`
	MutuallyAccepted bool                `gorm:"column:mutually_accepted;not null"`
	AcceptedAt       *time.Time          `gorm:"column:accepted_at"`
	CreatedAt        time.Time           `gorm:"column:created_at;autoCreateTime"`
}

func (BargainRequest) TableName() string { return "bargain_requests" }

func (b *BargainRequest) BeforeCreate(*gorm.DB) error {
	ensureID(&b.ID)
	return nil
}
