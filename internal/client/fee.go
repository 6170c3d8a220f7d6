package client

import "github.com/bargen/bargen-backend/pkg/deliveryfee"

// EstimateDeliveryFee previews a fee locally. The server quote is what gets
// charged.
func EstimateDeliveryFee(model deliveryfee.Model, distanceKm float64) deliveryfee.Estimate {
	return model.Estimate(distanceKm)
}
