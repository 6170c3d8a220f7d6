package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/bargen/bargen-backend/pkg/enums"
	"github.com/bargen/bargen-backend/pkg/types"
)

type Product struct {
	ID                  uuid.UUID                `gorm:"column:id;type:uuid;primaryKey"`
	ShopID              uuid.UUID                `gorm:"column:shop_id;type:uuid;not null;index:products_shop_id_idx"`
	Name                string                   `gorm:"column:name;type:text;not null"`
	Description         string                   `gorm:"column:description;type:text;not null"`
	Price               int64                    `gorm:"column:price;not null"`
	Condition           enums.ProductCondition   `gorm:"column:condition;type:text;not null"`
	ReturnPolicy        string                   `gorm:"column:return_policy;type:text;not null"`
	Age                 *types.ProductAge        `gorm:"column:age;type:jsonb"`
	VerificationLabels  types.VerificationLabels `gorm:"column:verification_labels;type:jsonb;not null"`
	PhotoRefs           types.PhotoRefs          `gorm:"column:photo_refs;type:jsonb;not null"`
	ListingQualityScore *int                     `gorm:"column:listing_quality_score"`
	CreatedAt           time.Time                `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt           time.Time                `gorm:"column:updated_at;autoUpdateTime"`
}

func (Product) TableName() string { return "products" }

func (p *Product) BeforeCreate(*gorm.DB) error {
	ensureID(&p.ID)
	return nil
}
