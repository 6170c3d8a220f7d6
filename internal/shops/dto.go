package shops

import (
	"time"

	"github.com/bargen/bargen-backend/pkg/db/models"
	"github.com/bargen/bargen-backend/pkg/phonelinks"
	"github.com/bargen/bargen-backend/pkg/types"
	"github.com/google/uuid"
)

// ShopDTO is the public shop profile with derived contact links.
type ShopDTO struct {
	ID          uuid.UUID       `json:"id"`
	Owner       types.Principal `json:"owner"`
	Name        string          `json:"name"`
	Address     string          `json:"address"`
	DistanceKm  float64         `json:"distanceKm"`
	Rating      int             `json:"rating"`
	PriceInfo   string          `json:"priceInfo"`
	Phone       string          `json:"phone"`
	LocationURL string          `json:"locationUrl"`
	WhatsAppURL string          `json:"whatsappUrl,omitempty"`
	TelURL      string          `json:"telUrl,omitempty"`
	CreatedAt   time.Time       `json:"createdAt"`
}

// CreateShopInput captures the fields a shopkeeper supplies.
type CreateShopInput struct {
	Name        string
	Address     string
	DistanceKm  float64
	Rating      int
	PriceInfo   string
	Phone       string
	LocationURL string
}

// FromModel maps a shop row to its DTO.
func FromModel(m *models.Shop) ShopDTO {
	if m == nil {
		return ShopDTO{}
	}
	return ShopDTO{
		ID:          m.ID,
		Owner:       m.Owner,
		Name:        m.Name,
		Address:     m.Address,
		DistanceKm:  m.DistanceKm,
		Rating:      m.Rating,
		PriceInfo:   m.PriceInfo,
		Phone:       m.Phone,
		LocationURL: m.LocationURL,
		WhatsAppURL: phonelinks.WhatsApp(m.Phone),
		TelURL:      phonelinks.Tel(m.Phone),
		CreatedAt:   m.CreatedAt,
	}
}

func fromModels(rows []models.Shop) []ShopDTO {
	out := make([]ShopDTO, 0, len(rows))
	for i := range rows {
		out = append(out, FromModel(&rows[i]))
	}
	return out
}
