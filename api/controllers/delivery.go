package controllers

import (
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/bargen/bargen-backend/api/responses"
	"github.com/bargen/bargen-backend/api/validators"
	"github.com/bargen/bargen-backend/internal/delivery"
	"github.com/bargen/bargen-backend/pkg/enums"
	pkgerrors "github.com/bargen/bargen-backend/pkg/errors"
	"github.com/bargen/bargen-backend/pkg/logger"
)

type registerPartnerPayload struct {
	Name        string `json:"name" validate:"required,max=200"`
	VehicleType string `json:"vehicleType" validate:"required,max=50"`
	Location    string `json:"location" validate:"max=500"`
}

type availabilityPayload struct {
	IsAvailable *bool `json:"isAvailable" validate:"required"`
}

type deliveryOrderPayload struct {
	ShopID          uuid.UUID `json:"shopId" validate:"required"`
	DeliveryOption  string    `json:"deliveryOption" validate:"required"`
	DropoffLocation string    `json:"dropoffLocation,omitempty" validate:"max=500"`
	DistanceKm      *float64  `json:"distanceKm,omitempty" validate:"omitempty,gte=0"`
}

type advanceOrderPayload struct {
	Status         string `json:"status" validate:"required"`
	CompletionCode string `json:"completionCode,omitempty" validate:"max=16"`
}

func RegisterDeliveryPartner(svc delivery.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			writeUnavailable(ctx, logg, w, "delivery")
			return
		}
		var payload registerPartnerPayload
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		partner, err := svc.RegisterDeliveryPartner(ctx, callerOf(r), delivery.RegisterPartnerInput{
			Name:        validators.SanitizeString(payload.Name, 200),
			VehicleType: validators.SanitizeString(payload.VehicleType, 50),
			Location:    validators.SanitizeString(payload.Location, 500),
		})
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteCreated(w, partner)
	}
}

func SetPartnerAvailability(svc delivery.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			writeUnavailable(ctx, logg, w, "delivery")
			return
		}
		partnerID, err := validators.URLParamUUID(r, "partnerId")
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		var payload availabilityPayload
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		partner, err := svc.SetDeliveryPartnerAvailability(ctx, callerOf(r), partnerID, *payload.IsAvailable)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, partner)
	}
}

// CreateDeliveryOrder fulfils an accepted bargain by pickup or delivery.
func CreateDeliveryOrder(svc delivery.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			writeUnavailable(ctx, logg, w, "delivery")
			return
		}
		var payload deliveryOrderPayload
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		if payload.ShopID == uuid.Nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeValidation, "shopId is required"))
			return
		}
		option, err := enums.ParseDeliveryOption(payload.DeliveryOption)
		if err != nil {
			responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "deliveryOption must be pickup or delivery"))
			return
		}
		order, err := svc.CreateDeliveryOrder(ctx, callerOf(r), delivery.CreateOrderInput{
			ShopID:          payload.ShopID,
			Option:          option,
			DropoffLocation: validators.SanitizeString(payload.DropoffLocation, 500),
			DistanceKm:      payload.DistanceKm,
		})
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteCreated(w, order)
	}
}

func DeliveryOrders(svc delivery.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			writeUnavailable(ctx, logg, w, "delivery")
			return
		}
		out, err := svc.GetOwnDeliveryOrders(ctx, callerOf(r))
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, out)
	}
}

func AdvanceDeliveryOrder(svc delivery.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			writeUnavailable(ctx, logg, w, "delivery")
			return
		}
		orderID, err := validators.URLParamUUID(r, "orderId")
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		var payload advanceOrderPayload
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		status, err := enums.ParseDeliveryStatus(payload.Status)
		if err != nil {
			responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "unknown delivery status"))
			return
		}
		order, err := svc.AdvanceDeliveryOrder(ctx, callerOf(r), orderID, delivery.AdvanceInput{
			Status:         status,
			CompletionCode: strings.TrimSpace(payload.CompletionCode),
		})
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, order)
	}
}

// DeliveryFee quotes the fee from a shop. Without distanceKm the shop's
// stored distance is used.
func DeliveryFee(svc delivery.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			writeUnavailable(ctx, logg, w, "delivery")
			return
		}
		shopID, err := validators.URLParamUUID(r, "shopId")
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		distance, err := validators.ParseOptionalQueryFloat(r, "distanceKm")
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		quote, err := svc.CalculateDeliveryFee(ctx, shopID, distance)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, quote)
	}
}
