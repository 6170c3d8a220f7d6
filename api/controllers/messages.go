package controllers

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/bargen/bargen-backend/api/responses"
	"github.com/bargen/bargen-backend/api/validators"
	"github.com/bargen/bargen-backend/internal/messaging"
	pkgerrors "github.com/bargen/bargen-backend/pkg/errors"
	"github.com/bargen/bargen-backend/pkg/logger"
	"github.com/bargen/bargen-backend/pkg/types"
)

type sendMessagePayload struct {
	To        string    `json:"to" validate:"required,principal,max=200"`
	Content   string    `json:"content" validate:"required,max=4000"`
	ProductID uuid.UUID `json:"productId" validate:"required"`
}

func SendMessage(svc messaging.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			writeUnavailable(ctx, logg, w, "messaging")
			return
		}
		var payload sendMessagePayload
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		if payload.ProductID == uuid.Nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeValidation, "productId is required"))
			return
		}
		msg, err := svc.SendMessage(ctx, callerOf(r), messaging.SendInput{
			To:        types.ParsePrincipal(payload.To),
			Content:   payload.Content,
			ProductID: payload.ProductID,
		})
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteCreated(w, msg)
	}
}

// ProductMessages returns the caller's conversation about one product.
func ProductMessages(svc messaging.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			writeUnavailable(ctx, logg, w, "messaging")
			return
		}
		productID, err := validators.URLParamUUID(r, "productId")
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		out, err := svc.GetChatMessages(ctx, callerOf(r), productID)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, out)
	}
}

func MessageThreads(svc messaging.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			writeUnavailable(ctx, logg, w, "messaging")
			return
		}
		out, err := svc.ListThreads(ctx, callerOf(r))
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, out)
	}
}
