package bargains

import (
	"time"

	"github.com/bargen/bargen-backend/pkg/db/models"
	"github.com/bargen/bargen-backend/pkg/enums"
	"github.com/bargen/bargen-backend/pkg/types"
	"github.com/google/uuid"
)

type BargainDTO struct {
	ID               uuid.UUID           `json:"id"`
	ProductID        uuid.UUID           `json:"productId"`
	ShopID           uuid.UUID           `json:"shopId"`
	Customer         types.Principal     `json:"customer"`
	Shopkeeper       types.Principal     `json:"shopkeeper"`
	DesiredPrice     int64               `json:"desiredPrice"`
	Note             *string             `json:"note,omitempty"`
	Status           enums.BargainStatus `json:"status"`
	MutuallyAccepted bool                `json:"mutuallyAccepted"`
	CreatedAt        time.Time           `json:"createdAt"`
	AcceptedAt       *time.Time          `json:"acceptedAt,omitempty"`
}

// SubmitInput is a customer's offer on a product. DesiredPrice 0 asks the
// shopkeeper for their best deal.
type SubmitInput struct {
	ProductID    uuid.UUID
	DesiredPrice int64
	Note         *string
}

func fromModel(m models.BargainRequest) BargainDTO {
	return BargainDTO{
		ID:               m.ID,
		ProductID:        m.ProductID,
		ShopID:           m.ShopID,
		Customer:         m.Customer,
		Shopkeeper:       m.Shopkeeper,
		DesiredPrice:     m.DesiredPrice,
		Note:             m.Note,
		Status:           m.Status,
		MutuallyAccepted: m.MutuallyAccepted,
		CreatedAt:        m.CreatedAt,
		AcceptedAt:       m.AcceptedAt,
	}
}

func fromModels(rows []models.BargainRequest) []BargainDTO {
	out := make([]BargainDTO, 0, len(rows))
	for _, row := range rows {
		out = append(out, fromModel(row))
	}
	return out
}
