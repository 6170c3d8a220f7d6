package cart

import (
	"strings"

	"github.com/bargen/bargen-backend/pkg/config"
)

// Insurance is a deal protection option. Amounts are minor units.
type Insurance struct {
	Name           string `json:"name"`
	Details        string `json:"details"`
	Premium        int64  `json:"premium"`
	CoverageAmount int64  `json:"coverageAmount"`
}

// Catalog is the configured set of insurance options, in display order.
type Catalog struct {
	options []Insurance
}

func NewCatalog(opts []config.InsuranceOption) Catalog {
	out := make([]Insurance, 0, len(opts))
	for _, opt := range opts {
		out = append(out, Insurance{
			Name:           strings.TrimSpace(opt.Name),
			Details:        opt.Details,
			Premium:        opt.Premium,
			CoverageAmount: opt.CoverageAmount,
		})
	}
	return Catalog{options: out}
}

// Options returns a copy of the catalog.
func (c Catalog) Options() []Insurance {
	out := make([]Insurance, len(c.options))
	copy(out, c.options)
	return out
}

// Lookup resolves an option by case-insensitive name.
func (c Catalog) Lookup(name string) (Insurance, bool) {
	key := strings.TrimSpace(name)
	for _, opt := range c.options {
		if strings.EqualFold(opt.Name, key) {
			return opt, true
		}
	}
	return Insurance{}, false
}

// Recommend returns the cheapest option that covers cartTotal, or the option
// with the largest coverage when none does. It returns nil for empty carts.
func (c Catalog) Recommend(cartTotal int64) *Insurance {
	if cartTotal <= 0 || len(c.options) == 0 {
		return nil
	}
	var covering, widest *Insurance
	for i := range c.options {
		opt := c.options[i]
		if widest == nil || opt.CoverageAmount > widest.CoverageAmount {
			widest = &opt
		}
		if opt.CoverageAmount >= cartTotal && (covering == nil || opt.Premium < covering.Premium) {
			covering = &opt
		}
	}
	if covering != nil {
		return covering
	}
	return widest
}
