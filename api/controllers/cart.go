package controllers

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/bargen/bargen-backend/api/responses"
	"github.com/bargen/bargen-backend/api/validators"
	"github.com/bargen/bargen-backend/internal/cart"
	pkgerrors "github.com/bargen/bargen-backend/pkg/errors"
	"github.com/bargen/bargen-backend/pkg/logger"
)

type addToCartPayload struct {
	ProductID uuid.UUID `json:"productId" validate:"required"`
	Quantity  int64     `json:"quantity" validate:"gte=1,lte=10000"`
}

// selectInsurancePayload carries a nullable selection; null clears it.
type selectInsurancePayload struct {
	Insurance *cart.Insurance `json:"insurance"`
}

func AddToCart(svc cart.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			writeUnavailable(ctx, logg, w, "cart")
			return
		}
		var payload addToCartPayload
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		if payload.ProductID == uuid.Nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeValidation, "productId is required"))
			return
		}
		item, err := svc.AddToCart(ctx, callerOf(r), payload.ProductID, payload.Quantity)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteCreated(w, item)
	}
}

func RemoveFromCart(svc cart.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			writeUnavailable(ctx, logg, w, "cart")
			return
		}
		productID, err := validators.URLParamUUID(r, "productId")
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		if err := svc.RemoveFromCart(ctx, callerOf(r), productID); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]bool{"removed": true})
	}
}

func CartItems(svc cart.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			writeUnavailable(ctx, logg, w, "cart")
			return
		}
		items, err := svc.GetCartItems(ctx, callerOf(r))
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, items)
	}
}

// CartTotal prices the cart including the selected insurance premium.
func CartTotal(svc cart.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			writeUnavailable(ctx, logg, w, "cart")
			return
		}
		total, err := svc.GetCartTotalWithInsurance(ctx, callerOf(r))
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, total)
	}
}

func InsuranceOptions(svc cart.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			writeUnavailable(r.Context(), logg, w, "cart")
			return
		}
		responses.WriteSuccess(w, svc.GetDefaultInsuranceOptions())
	}
}

func SelectedInsurance(svc cart.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			writeUnavailable(ctx, logg, w, "cart")
			return
		}
		selected, err := svc.GetSelectedInsurance(ctx, callerOf(r))
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, selected)
	}
}

func SelectInsurance(svc cart.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			writeUnavailable(ctx, logg, w, "cart")
			return
		}
		var payload selectInsurancePayload
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		selected, err := svc.SelectInsurance(ctx, callerOf(r), payload.Insurance)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, selected)
	}
}

// RecommendInsurance picks the catalog option that best fits cartTotal.
func RecommendInsurance(svc cart.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			writeUnavailable(ctx, logg, w, "cart")
			return
		}
		total, err := validators.ParseQueryInt64(r, "cartTotal")
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		if total < 0 {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeValidation, "cartTotal must be >= 0"))
			return
		}
		responses.WriteSuccess(w, svc.RecommendBestInsurance(total))
	}
}
