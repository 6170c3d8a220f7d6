package controllers

import (
	"net/http"

	"github.com/bargen/bargen-backend/api/responses"
	"github.com/bargen/bargen-backend/api/validators"
	"github.com/bargen/bargen-backend/internal/shops"
	"github.com/bargen/bargen-backend/pkg/logger"
)

type createShopPayload struct {
	Name        string  `json:"name" validate:"required,max=200"`
	Address     string  `json:"address" validate:"max=500"`
	DistanceKm  float64 `json:"distanceKm" validate:"gte=0"`
	Rating      int     `json:"rating" validate:"gte=0,lte=5"`
	PriceInfo   string  `json:"priceInfo" validate:"max=200"`
	Phone       string  `json:"phone" validate:"omitempty,phone,max=32"`
	LocationURL string  `json:"locationUrl" validate:"max=500"`
}

func (p createShopPayload) toInput() shops.CreateShopInput {
	return shops.CreateShopInput{
		Name:        validators.SanitizeString(p.Name, 200),
		Address:     validators.SanitizeString(p.Address, 500),
		DistanceKm:  p.DistanceKm,
		Rating:      p.Rating,
		PriceInfo:   validators.SanitizeString(p.PriceInfo, 200),
		Phone:       validators.SanitizeString(p.Phone, 32),
		LocationURL: validators.SanitizeString(p.LocationURL, 500),
	}
}

// CreateShop registers a shop owned by the caller.
func CreateShop(svc shops.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			writeUnavailable(ctx, logg, w, "shops")
			return
		}
		var payload createShopPayload
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		shop, err := svc.Create(ctx, callerOf(r), payload.toInput())
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteCreated(w, shop)
	}
}

func MyShops(svc shops.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			writeUnavailable(ctx, logg, w, "shops")
			return
		}
		out, err := svc.ListMine(ctx, callerOf(r))
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, out)
	}
}

func ListShops(svc shops.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			writeUnavailable(ctx, logg, w, "shops")
			return
		}
		out, err := svc.List(ctx)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, out)
	}
}

func GetShop(svc shops.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			writeUnavailable(ctx, logg, w, "shops")
			return
		}
		shopID, err := validators.URLParamUUID(r, "shopId")
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		shop, err := svc.GetByID(ctx, shopID)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, shop)
	}
}
