package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/bargen/bargen-backend/pkg/types"
)

// CartItem is one line of a customer's cart. ProductID may dangle.
type CartItem struct {
	Customer  types.Principal `gorm:"column:customer;type:text;primaryKey"`
	ProductID uuid.UUID       `gorm:"column:product_id;type:uuid;primaryKey"`
	Quantity  int64           `gorm:"column:quantity;not null"`
	CreatedAt time.Time       `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}

func (CartItem) TableName() string { return "cart_items" }

// InsuranceSelection is the per-customer deal protection choice. Absence means none.
type InsuranceSelection struct {
	Customer       types.Principal `gorm:"column:customer;type:text;primaryKey"`
	Name           string          `gorm:"column:name;type:text;not null"`
	Details        string          `gorm:"column:details;type:text;not null"`
	Premium        int64           `gorm:"column:premium;not null"`
	CoverageAmount int64           `gorm:"column:coverage_amount;not null"`
	UpdatedAt      time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}

func (InsuranceSelection) TableName() string { return "insurance_selections" }
