package controllers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/bargen/bargen-backend/api/responses"
	"github.com/bargen/bargen-backend/api/validators"
	"github.com/bargen/bargen-backend/internal/products"
	"github.com/bargen/bargen-backend/pkg/enums"
	pkgerrors "github.com/bargen/bargen-backend/pkg/errors"
	"github.com/bargen/bargen-backend/pkg/logger"
	"github.com/bargen/bargen-backend/pkg/types"
)

type productPayload struct {
	ShopID              *uuid.UUID               `json:"shopId,omitempty"`
	Name                string                   `json:"name" validate:"required,max=200"`
	Description         string                   `json:"description" validate:"max=4000"`
	Price               int64                    `json:"price" validate:"gte=0,lte=1000000000000"`
	Condition           enums.ProductCondition   `json:"condition"`
	ReturnPolicy        string                   `json:"returnPolicy" validate:"max=1000"`
	Age                 *types.ProductAge        `json:"age,omitempty"`
	VerificationLabels  types.VerificationLabels `json:"verificationLabels,omitempty"`
	PhotoRefs           []string                 `json:"photoRefs,omitempty" validate:"max=20"`
	ListingQualityScore *int                     `json:"listingQualityScore,omitempty"`
}

func (p productPayload) toInput() products.ProductInput {
	return products.ProductInput{
		Name:                validators.SanitizeString(p.Name, 200),
		Description:         validators.SanitizeString(p.Description, 4000),
		Price:               p.Price,
		Condition:           p.Condition,
		ReturnPolicy:        validators.SanitizeString(p.ReturnPolicy, 1000),
		Age:                 p.Age,
		VerificationLabels:  p.VerificationLabels,
		PhotoRefs:           types.PhotoRefs(p.PhotoRefs),
		ListingQualityScore: p.ListingQualityScore,
	}
}

// CreateProduct lists a product in one of the caller's shops.
func CreateProduct(svc products.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			writeUnavailable(ctx, logg, w, "products")
			return
		}
		var payload productPayload
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		if payload.ShopID == nil || *payload.ShopID == uuid.Nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeValidation, "shopId is required"))
			return
		}
		product, err := svc.CreateProduct(ctx, callerOf(r), *payload.ShopID, payload.toInput())
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteCreated(w, product)
	}
}

// UpdateProduct replaces the editable fields of a listing. Owners and admins
// share this handler; the service decides who may edit.
func UpdateProduct(svc products.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			writeUnavailable(ctx, logg, w, "products")
			return
		}
		productID, err := validators.URLParamUUID(r, "productId")
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		var payload productPayload
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		product, err := svc.UpdateProduct(ctx, callerOf(r), productID, payload.toInput())
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, product)
	}
}

func DeleteProduct(svc products.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			writeUnavailable(ctx, logg, w, "products")
			return
		}
		productID, err := validators.URLParamUUID(r, "productId")
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		if err := svc.DeleteProduct(ctx, callerOf(r), productID); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]bool{"deleted": true})
	}
}

func GetProduct(svc products.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			writeUnavailable(ctx, logg, w, "products")
			return
		}
		productID, err := validators.URLParamUUID(r, "productId")
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		product, err := svc.GetProduct(ctx, productID)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, product)
	}
}

func ShopProducts(svc products.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			writeUnavailable(ctx, logg, w, "products")
			return
		}
		shopID, err := validators.URLParamUUID(r, "shopId")
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		out, err := svc.GetProductsForShop(ctx, shopID)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, out)
	}
}

// BrowseProducts searches the joined product and shop catalog.
func BrowseProducts(svc products.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			writeUnavailable(ctx, logg, w, "products")
			return
		}
		q := r.URL.Query()
		input := products.BrowseInput{
			Query:     validators.SanitizeString(q.Get("q"), 200),
			Condition: enums.ProductCondition(strings.TrimSpace(q.Get("condition"))),
			Sort:      strings.TrimSpace(q.Get("sort")),
		}
		out, err := svc.Browse(ctx, input)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, out)
	}
}

func CompareProduct(svc products.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			writeUnavailable(ctx, logg, w, "products")
			return
		}
		productID, err := validators.URLParamUUID(r, "productId")
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		result, err := svc.Compare(ctx, productID, strings.TrimSpace(r.URL.Query().Get("sort")))
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}

// ProductPhoto streams the bytes of one listing photo.
func ProductPhoto(svc products.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			writeUnavailable(ctx, logg, w, "products")
			return
		}
		productID, err := validators.URLParamUUID(r, "productId")
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		index, err := strconv.Atoi(strings.TrimSpace(chi.URLParam(r, "index")))
		if err != nil || index < 0 {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeValidation, "photo index must be a non-negative integer"))
			return
		}
		body, err := svc.Photo(ctx, productID, index)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteBlob(w, "", body)
	}
}

// AdminListProducts returns every listing regardless of owner.
func AdminListProducts(svc products.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			writeUnavailable(ctx, logg, w, "products")
			return
		}
		out, err := svc.ListAll(ctx, callerOf(r))
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, out)
	}
}
