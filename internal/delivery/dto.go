package delivery

import (
	"time"

	"github.com/bargen/bargen-backend/pkg/db/models"
	"github.com/bargen/bargen-backend/pkg/enums"
	"github.com/bargen/bargen-backend/pkg/types"
	"github.com/google/uuid"
)

type PartnerDTO struct {
	ID          uuid.UUID       `json:"id"`
	Owner       types.Principal `json:"owner"`
	Name        string          `json:"name"`
	VehicleType string          `json:"vehicleType"`
	Location    string          `json:"location"`
	IsAvailable bool            `json:"isAvailable"`
	CreatedAt   time.Time       `json:"createdAt"`
}

// OrderDTO omits CompletionCode for drivers.
type OrderDTO struct {
	ID              uuid.UUID            `json:"id"`
	ShopID          uuid.UUID            `json:"shopId"`
	BargainID       uuid.UUID            `json:"bargainId"`
	Customer        types.Principal      `json:"customer"`
	DriverID        *uuid.UUID           `json:"driverId,omitempty"`
	Status          enums.DeliveryStatus `json:"status"`
	DeliveryOption  enums.DeliveryOption `json:"deliveryOption"`
	PickupLocation  string               `json:"pickupLocation"`
	DropoffLocation string               `json:"dropoffLocation"`
	DeliveryFee     int64                `json:"deliveryFee"`
	CompletionCode  string               `json:"completionCode,omitempty"`
	CreatedAt       time.Time            `json:"createdAt"`
	UpdatedAt       time.Time            `json:"updatedAt"`
}

type FeeQuoteDTO struct {
	ShopID      uuid.UUID `json:"shopId"`
	DistanceKm  float64   `json:"distanceKm"`
	DeliveryFee int64     `json:"deliveryFee"`
}

type RegisterPartnerInput struct {
	Name        string
	VehicleType string
	Location    string
}

type CreateOrderInput struct {
	ShopID          uuid.UUID
	Option          enums.DeliveryOption
	DropoffLocation string
	DistanceKm      *float64
}

type AdvanceInput struct {
	Status         enums.DeliveryStatus
	CompletionCode string
}

func partnerFromModel(m *models.DeliveryPartner) PartnerDTO {
	return PartnerDTO{
		ID:          m.ID,
		Owner:       m.Owner,
		Name:        m.Name,
		VehicleType: m.VehicleType,
		Location:    m.Location,
		IsAvailable: m.IsAvailable,
		CreatedAt:   m.CreatedAt,
	}
}

func orderFromModel(m *models.DeliveryOrder, showCode bool) OrderDTO {
	dto := OrderDTO{
		ID:              m.ID,
		ShopID:          m.ShopID,
		BargainID:       m.BargainID,
		Customer:        m.Customer,
		DriverID:        m.DriverID,
		Status:          m.Status,
		DeliveryOption:  m.DeliveryOption,
		PickupLocation:  m.PickupLocation,
		DropoffLocation: m.DropoffLocation,
		DeliveryFee:     m.DeliveryFee,
		CreatedAt:       m.CreatedAt,
		UpdatedAt:       m.UpdatedAt,
	}
	if showCode {
		dto.CompletionCode = m.CompletionCode
	}
	return dto
}
