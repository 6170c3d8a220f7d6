package controllers

import (
	"net/http"
	"strings"

	"github.com/bargen/bargen-backend/api/responses"
	"github.com/bargen/bargen-backend/api/validators"
	"github.com/bargen/bargen-backend/internal/notifications"
	"github.com/bargen/bargen-backend/pkg/logger"
	"github.com/bargen/bargen-backend/pkg/pagination"
)

// ShopNotifications returns a page of shopkeeper notifications for a shop the
// caller owns.
func ShopNotifications(svc notifications.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			writeUnavailable(ctx, logg, w, "notifications")
			return
		}
		shopID, err := validators.URLParamUUID(r, "shopId")
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		limit, err := validators.ParseQueryInt(r, "limit", 0, 0, pagination.MaxLimit)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		page, err := svc.ListForShop(ctx, callerOf(r), notifications.ListParams{
			ShopID: shopID,
			Limit:  limit,
			Cursor: strings.TrimSpace(r.URL.Query().Get("cursor")),
		})
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, page)
	}
}
