package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/bargen/bargen-backend/pkg/enums"
	"github.com/bargen/bargen-backend/pkg/types"
)

type DeliveryPartner struct {
	ID          uuid.UUID       `gorm:"column:id;type:uuid;primaryKey"`
	Owner       types.Principal `gorm:"column:owner;type:text;not null;index:delivery_partners_owner_idx"`
	Name        string          `gorm:"column:name;type:text;not null"`
	VehicleType string          `gorm:"column:vehicle_type;type:text;not null"`
	Location    string          `gorm:"column:location;type:text;not null"`
	IsAvailable bool            `gorm:"column:is_available;not null;index:delivery_partners_available_idx"`
	CreatedAt   time.Time       `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}

func (DeliveryPartner) TableName() string { return "delivery_partners" }

func (p *DeliveryPartner) BeforeCreate(*gorm.DB) error {
	ensureID(&p.ID)
	return nil
}

type DeliveryOrder struct {
	ID              uuid.UUID            `gorm:"column:id;type:uuid;primaryKey"`
	ShopID          uuid.UUID            `gorm:"column:shop_id;type:uuid;not null;index:delivery_orders_shop_idx"`
	BargainID       uuid.UUID            `gorm:"column:bargain_id;type:uuid;not null"`
	Customer        types.Principal      `gorm:"column:customer;type:text;not null;index:delivery_orders_customer_idx"`
	DriverID        *uuid.UUID           `gorm:"column:driver_id;type:uuid;index:delivery_orders_driver_idx"`
	Status          enums.DeliveryStatus `gorm:"column:status;type:text;not null;index:delivery_orders_status_idx"`
	DeliveryOption  enums.DeliveryOption `gorm:"column:delivery_option;type:text;not null"`
	PickupLocation  string               `gorm:"column:pickup_location;type:text;not null"`
	DropoffLocation string               `gorm:"column:dropoff_location;type:text;not null"`
	DeliveryFee     int64                `gorm:"column:delivery_fee;not null"`
	CompletionCode  string               `gorm:"column:completion_code;type:text;not null"`
	CreatedAt       time.Time            `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt       time.Time            `gorm:"column:updated_at;autoUpdateTime"`
}

func (DeliveryOrder) TableName() string { return "delivery_orders" }

func (o *DeliveryOrder) BeforeCreate(*gorm.DB) error {
	ensureID(&o.ID)
	return nil
}
