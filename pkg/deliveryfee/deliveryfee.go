// Package deliveryfee computes delivery charges in minor currency units.
package deliveryfee

import (
	"math"

	"github.com/bargen/bargen-backend/pkg/config"
	pkgerrors "github.com/bargen/bargen-backend/pkg/errors"
	"github.com/shopspring/decimal"
)

// maxFee is the largest amount a fee can hold in minor units.
var maxFee = decimal.NewFromInt(math.MaxInt64)

// Model is a linear per-kilometre fee with an optional floor. A positive
// MaxDistanceKm caps the distances it will quote.
type Model struct {
	RatePerKm     int64
	MinimumFee    int64
	MaxDistanceKm float64
}

// Estimate is a client-side preview. It is never charged or persisted.
type Estimate struct {
	DistanceKm float64 `json:"distanceKm"`
	Amount     int64   `json:"amount"`
}

func FromConfig(cfg config.DeliveryConfig) Model {
	return Model{RatePerKm: cfg.RatePerKm, MinimumFee: cfg.MinimumFee, MaxDistanceKm: cfg.MaxDistanceKm}
}

// Quote returns the authoritative fee for distanceKm, rounded half up to the
// nearest minor unit and never below MinimumFee.
func (m Model) Quote(distanceKm float64) (int64, error) {
	if math.IsNaN(distanceKm) || math.IsInf(distanceKm, 0) {
		return 0, pkgerrors.New(pkgerrors.CodeValidation, "distanceKm must be a finite number")
	}
	if distanceKm < 0 {
		return 0, pkgerrors.New(pkgerrors.CodeValidation, "distanceKm must be >= 0")
	}
	if m.MaxDistanceKm > 0 && distanceKm > m.MaxDistanceKm {
		return 0, pkgerrors.Newf(pkgerrors.CodeValidation, "distanceKm must be at most %g", m.MaxDistanceKm)
	}
	return m.compute(distanceKm)
}

// Estimate previews the fee locally. Invalid distances estimate to zero.
func (m Model) Estimate(distanceKm float64) Estimate {
	fee, err := m.Quote(distanceKm)
	if err != nil {
		return Estimate{DistanceKm: distanceKm}
	}
	return Estimate{DistanceKm: distanceKm, Amount: fee}
}

func (m Model) compute(distanceKm float64) (int64, error) {
	exact := decimal.NewFromFloat(distanceKm).
		Mul(decimal.NewFromInt(m.RatePerKm)).
		Round(0)
	if exact.GreaterThan(maxFee) {
		return 0, pkgerrors.New(pkgerrors.CodeValidation, "distanceKm is too large to quote")
	}
	amount := exact.IntPart()
	if amount < m.MinimumFee {
		return m.MinimumFee, nil
	}
	return amount, nil
}
