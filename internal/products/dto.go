package products

import (
	"time"

	"github.com/bargen/bargen-backend/internal/shops"
	"github.com/bargen/bargen-backend/pkg/db/models"
	"github.com/bargen/bargen-backend/pkg/enums"
	"github.com/bargen/bargen-backend/pkg/types"
	"github.com/google/uuid"
)

// PhotoDTO pairs an opaque blob ref with its direct URL.
type PhotoDTO struct {
	Ref string `json:"ref"`
	URL string `json:"url"`
}

type ProductDTO struct {
	ID                  uuid.UUID                `json:"id"`
	ShopID              uuid.UUID                `json:"shopId"`
	Name                string                   `json:"name"`
	Description         string                   `json:"description"`
	Price               int64                    `json:"price"`
	Condition           enums.ProductCondition   `json:"condition"`
	ReturnPolicy        string                   `json:"returnPolicy"`
	Age                 *types.ProductAge        `json:"age,omitempty"`
	VerificationLabels  types.VerificationLabels `json:"verificationLabels"`
	Photos              []PhotoDTO               `json:"photos"`
	ListingQualityScore *int                     `json:"listingQualityScore,omitempty"`
	CreatedAt           time.Time                `json:"createdAt"`
	UpdatedAt           time.Time                `json:"updatedAt"`
}

// ProductWithShopDTO is a product joined with the shop that lists it.
type ProductWithShopDTO struct {
	Product ProductDTO    `json:"product"`
	Shop    shops.ShopDTO `json:"shop"`
}

func (p ProductWithShopDTO) MatchID() uuid.UUID         { return p.Product.ID }
func (p ProductWithShopDTO) MatchName() string          { return p.Product.Name }
func (p ProductWithShopDTO) ListingPrice() int64        { return p.Product.Price }
func (p ProductWithShopDTO) ListingRating() int         { return p.Shop.Rating }
func (p ProductWithShopDTO) ListingDistanceKm() float64 { return p.Shop.DistanceKm }

// CompareResult lists the same product offered by other shops.
type CompareResult struct {
	Product ProductWithShopDTO   `json:"product"`
	Matches []ProductWithShopDTO `json:"matches"`
}

// ProductInput is the full set of editable listing fields.
type ProductInput struct {
	Name                string
	Description         string
	Price               int64
	Condition           enums.ProductCondition
	ReturnPolicy        string
	Age                 *types.ProductAge
	VerificationLabels  types.VerificationLabels
	PhotoRefs           types.PhotoRefs
	ListingQualityScore *int
}

// BrowseInput filters the joined catalog.
type BrowseInput struct {
	Query     string
	Condition enums.ProductCondition
	Sort      string
}

type urlResolver interface {
	DirectURL(ref string) string
}

func newProductDTO(m *models.Product, urls urlResolver) ProductDTO {
	photos := make([]PhotoDTO, 0, len(m.PhotoRefs))
	for _, ref := range m.PhotoRefs {
		url := ref
		if urls != nil {
			url = urls.DirectURL(ref)
		}
		photos = append(photos, PhotoDTO{Ref: ref, URL: url})
	}
	labels := m.VerificationLabels
	if labels == nil {
		labels = types.VerificationLabels{}
	}
	return ProductDTO{
		ID:                  m.ID,
		ShopID:              m.ShopID,
		Name:                m.Name,
		Description:         m.Description,
		Price:               m.Price,
		Condition:           m.Condition,
		ReturnPolicy:        m.ReturnPolicy,
		Age:                 m.Age,
		VerificationLabels:  labels,
		Photos:              photos,
		ListingQualityScore: m.ListingQualityScore,
		CreatedAt:           m.CreatedAt,
		UpdatedAt:           m.UpdatedAt,
	}
}
