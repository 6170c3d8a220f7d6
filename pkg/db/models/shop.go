package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/bargen/bargen-backend/pkg/types"
)

// Shop is a shopkeeper's storefront. Owner never changes after creation.
type Shop struct {
	ID          uuid.UUID       `gorm:"column:id;type:uuid;primaryKey"`
	Owner       types.Principal `gorm:"column:owner;type:text;not null;index:shops_owner_idx"`
	Name        string          `gorm:"column:name;type:text;not null"`
	Address     string          `gorm:"column:address;type:text;not null"`
	DistanceKm  float64         `gorm:"column:distance_km;not null"`
	Rating      int             `gorm:"column:rating;not null"`
	PriceInfo   string          `gorm:"column:price_info;type:text;not null"`
	Phone       string          `gorm:"column:phone;type:text;not null"`
	LocationURL string          `gorm:"column:location_url;type:text;not null"`
	CreatedAt   time.Time       `gorm:"column:created_at;autoCreateTime"`
}

func (Shop) TableName() string { return "shops" }

func (s *Shop) BeforeCreate(*gorm.DB) error {
	ensureID(&s.ID)
	return nil
}
