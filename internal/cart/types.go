package cart

import (
	"math"
	"time"

	"github.com/bargen/bargen-backend/pkg/db/models"
	pkgerrors "github.com/bargen/bargen-backend/pkg/errors"
	"github.com/google/uuid"
)

// MaxLineQuantity caps the units on one cart line, summed across adds.
const MaxLineQuantity = 10_000

type CartItemDTO struct {
	ProductID uuid.UUID `json:"productId"`
	Quantity  int64     `json:"quantity"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// CartLineDTO is one priced cart line. Pricing fields are set only while the
// product still exists.
type CartLineDTO struct {
	ProductID   uuid.UUID  `json:"productId"`
	Quantity    int64      `json:"quantity"`
	Available   bool       `json:"available"`
	ProductName string     `json:"productName,omitempty"`
	ShopID      *uuid.UUID `json:"shopId,omitempty"`
	UnitPrice   *int64     `json:"unitPrice,omitempty"`
	LineTotal   *int64     `json:"lineTotal,omitempty"`
}

type CartTotalDTO struct {
	Items            []CartLineDTO `json:"items"`
	Subtotal         int64         `json:"subtotal"`
	Insurance        *Insurance    `json:"insurance"`
	InsurancePremium int64         `json:"insurancePremium"`
	Total            int64         `json:"total"`
	UnavailableCount int           `json:"unavailableCount"`
}

func itemFromModel(m models.CartItem) CartItemDTO {
	return CartItemDTO{ProductID: m.ProductID, Quantity: m.Quantity, UpdatedAt: m.UpdatedAt}
}

func insuranceFromModel(m *models.InsuranceSelection) *Insurance {
	if m == nil {
		return nil
	}
	return &Insurance{
		Name:           m.Name,
		Details:        m.Details,
		Premium:        m.Premium,
		CoverageAmount: m.CoverageAmount,
	}
}

// computeTotal prices items against the products that still exist. Missing
// products are flagged unavailable and excluded from the subtotal. Amounts that
// do not fit in int64 are rejected rather than wrapped.
func computeTotal(items []models.CartItem, products map[uuid.UUID]models.Product, insurance *Insurance) (CartTotalDTO, error) {
	total := CartTotalDTO{Items: make([]CartLineDTO, 0, len(items)), Insurance: insurance}
	for _, item := range items {
		line := CartLineDTO{ProductID: item.ProductID, Quantity: item.Quantity}
		product, ok := products[item.ProductID]
		if !ok {
			total.UnavailableCount++
			total.Items = append(total.Items, line)
			continue
		}
		unit := product.Price
		lineTotal, ok := mulAmount(unit, item.Quantity)
		if !ok {
			return CartTotalDTO{}, pkgerrors.Newf(pkgerrors.CodeValidation, "cart line for %s is too large to price", item.ProductID)
		}
		if total.Subtotal, ok = addAmount(total.Subtotal, lineTotal); !ok {
			return CartTotalDTO{}, errTotalTooLarge()
		}
		shopID := product.ShopID
		line.Available = true
		line.ProductName = product.Name
		line.ShopID = &shopID
		line.UnitPrice = &unit
		line.LineTotal = &lineTotal
		total.Items = append(total.Items, line)
	}
	if insurance != nil {
		total.InsurancePremium = insurance.Premium
	}
	var ok bool
	if total.Total, ok = addAmount(total.Subtotal, total.InsurancePremium); !ok {
		return CartTotalDTO{}, errTotalTooLarge()
	}
	return total, nil
}

func errTotalTooLarge() error {
	return pkgerrors.New(pkgerrors.CodeValidation, "cart total is too large to price")
}

// mulAmount and addAmount work on non-negative minor units; negative inputs
// are reported as invalid.
func mulAmount(a, b int64) (int64, bool) {
	if a < 0 || b < 0 {
		return 0, false
	}
	if a != 0 && b > math.MaxInt64/a {
		return 0, false
	}
	return a * b, true
}

func addAmount(a, b int64) (int64, bool) {
	if a < 0 || b < 0 || b > math.MaxInt64-a {
		return 0, false
	}
	return a + b, true
}
