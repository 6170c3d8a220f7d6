package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/bargen/bargen-backend/pkg/enums"
	"github.com/bargen/bargen-backend/pkg/types"
)

// ShopkeeperNotification is a derived record of a customer acting on a shop's
// product. Rows are pruned after the retention window.
type ShopkeeperNotification struct {
	ID        uuid.UUID              `gorm:"column:id;type:uuid;primaryKey"`
	ShopID    uuid.UUID              `gorm:"column:shop_id;type:uuid;not null;index:shopkeeper_notifications_shop_created_idx,priority:1"`
	Recipient types.Principal        `gorm:"column:recipient;type:text;not null"`
	Action    enums.ShopkeeperAction `gorm:"column:action;type:text;not null"`
	Actor     types.Principal        `gorm:"column:actor;type:text;not null"`
	ProductID uuid.UUID              `gorm:"column:product_id;type:uuid;not null"`
	CreatedAt time.Time              `gorm:"column:created_at;autoCreateTime;index:shopkeeper_notifications_shop_created_idx,priority:2"`
}

func (ShopkeeperNotification) TableName() string { return "shopkeeper_notifications" }

func (n *ShopkeeperNotification) BeforeCreate(*gorm.DB) error {
	ensureID(&n.ID)
	return nil
}
