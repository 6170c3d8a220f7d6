package controllers

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/bargen/bargen-backend/api/responses"
	"github.com/bargen/bargen-backend/api/validators"
	"github.com/bargen/bargen-backend/internal/bargains"
	pkgerrors "github.com/bargen/bargen-backend/pkg/errors"
	"github.com/bargen/bargen-backend/pkg/logger"
)

type submitBargainPayload struct {
	ProductID    uuid.UUID `json:"productId" validate:"required"`
	DesiredPrice int64     `json:"desiredPrice" validate:"gte=0"`
	Note         *string   `json:"note,omitempty" validate:"omitempty,max=1000"`
}

// SubmitBargain records a price offer from the caller.
func SubmitBargain(svc bargains.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			writeUnavailable(ctx, logg, w, "bargains")
			return
		}
		var payload submitBargainPayload
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		if payload.ProductID == uuid.Nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeValidation, "productId is required"))
			return
		}
		if payload.Note != nil {
			note := validators.SanitizeString(*payload.Note, 1000)
			payload.Note = &note
		}
		bargain, err := svc.Submit(ctx, callerOf(r), bargains.SubmitInput{
			ProductID:    payload.ProductID,
			DesiredPrice: payload.DesiredPrice,
			Note:         payload.Note,
		})
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteCreated(w, bargain)
	}
}

// AcceptBargain lets the shopkeeper accept a pending offer.
func AcceptBargain(svc bargains.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			writeUnavailable(ctx, logg, w, "bargains")
			return
		}
		bargainID, err := validators.URLParamUUID(r, "bargainId")
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		bargain, err := svc.Accept(ctx, callerOf(r), bargainID)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, bargain)
	}
}

func ProductBargains(svc bargains.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			writeUnavailable(ctx, logg, w, "bargains")
			return
		}
		productID, err := validators.URLParamUUID(r, "productId")
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		out, err := svc.ListByProduct(ctx, callerOf(r), productID)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, out)
	}
}

func MyBargains(svc bargains.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			writeUnavailable(ctx, logg, w, "bargains")
			return
		}
		out, err := svc.ListForCustomer(ctx, callerOf(r))
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, out)
	}
}
