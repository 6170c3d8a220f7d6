package models

import (
	"time"

	"github.com/bargen/bargen-backend/pkg/enums"
	"github.com/bargen/bargen-backend/pkg/types"
)

type UserProfile struct {
	Principal types.Principal `gorm:"column:principal;type:text;primaryKey"`
	Name      string          `gorm:"column:name;type:text;not null"`
	Email     *string         `gorm:"column:email;type:text"`
	Phone     *string         `gorm:"column:phone;type:text"`
	Role      enums.UserRole  `gorm:"column:role;type:text;not null"`
	CreatedAt time.Time       `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}

func (UserProfile) TableName() string { return "user_profiles" }
