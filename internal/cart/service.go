package cart

import (
	"context"
	"errors"
	"fmt"

	"github.com/bargen/bargen-backend/internal/notifications"
	"github.com/bargen/bargen-backend/pkg/auth"
	"github.com/bargen/bargen-backend/pkg/db/models"
	"github.com/bargen/bargen-backend/pkg/enums"
	pkgerrors "github.com/bargen/bargen-backend/pkg/errors"
	"github.com/bargen/bargen-backend/pkg/logger"
	"github.com/bargen/bargen-backend/pkg/types"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type cartRepository interface {
	AddQuantity(ctx context.Context, customer types.Principal, productID uuid.UUID, quantity, maxQuantity int64) (*models.CartItem, error)
	RemoveItem(ctx context.Context, customer types.Principal, productID uuid.UUID) error
	ListItems(ctx context.Context, customer types.Principal) ([]models.CartItem, error)
	FindInsurance(ctx context.Context, customer types.Principal) (*models.InsuranceSelection, error)
	SaveInsurance(ctx context.Context, selection *models.InsuranceSelection) error
	ClearInsurance(ctx context.Context, customer types.Principal) error
}

type productLoader interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Product, error)
	FindByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]models.Product, error)
}

type shopLoader interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Shop, error)
}

// Service aggregates cart lines and deal protection into totals.
type Service interface {
	AddToCart(ctx context.Context, caller auth.Caller, productID uuid.UUID, quantity int64) (*CartItemDTO, error)
	RemoveFromCart(ctx context.Context, caller auth.Caller, productID uuid.UUID) error
	GetCartItems(ctx context.Context, caller auth.Caller) ([]CartItemDTO, error)
	GetDefaultInsuranceOptions() []Insurance
	SelectInsurance(ctx context.Context, caller auth.Caller, insurance *Insurance) (*Insurance, error)
	GetSelectedInsurance(ctx context.Context, caller auth.Caller) (*Insurance, error)
	GetCartTotalWithInsurance(ctx context.Context, caller auth.Caller) (*CartTotalDTO, error)
	RecommendBestInsurance(cartTotal int64) *Insurance
}

type ServiceParams struct {
	Repo          cartRepository
	Products      productLoader
	Shops         shopLoader
	Catalog       Catalog
	Notifications notifications.Recorder
	Logger        *logger.Logger
}

type service struct {
	repo     cartRepository
	products productLoader
	shops    shopLoader
	catalog  Catalog
	notifier notifications.Recorder
	logg     *logger.Logger
}

func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, fmt.Errorf("cart repository required")
	}
	if params.Products == nil {
		return nil, fmt.Errorf("product repository required")
	}
	if params.Shops == nil {
		return nil, fmt.Errorf("shop repository required")
	}
	return &service{
		repo:     params.Repo,
		products: params.Products,
		shops:    params.Shops,
		catalog:  params.Catalog,
		notifier: params.Notifications,
		logg:     params.Logger,
	}, nil
}

// AddToCart accumulates: adding to an existing line increases its quantity.
func (s *service) AddToCart(ctx context.Context, caller auth.Caller, productID uuid.UUID, quantity int64) (*CartItemDTO, error) {
	if !caller.IsAuthenticated() {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "sign in to add items to your cart")
	}
	if quantity < 1 || quantity > MaxLineQuantity {
		return nil, pkgerrors.Newf(pkgerrors.CodeValidation, "quantity must be between 1 and %d", MaxLineQuantity)
	}
	if productID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "productId is required")
	}
	product, err := s.products.FindByID(ctx, productID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load product")
	}

	item, err := s.repo.AddQuantity(ctx, caller.Principal, productID, quantity, MaxLineQuantity)
	if err != nil {
		if errors.Is(err, ErrQuantityLimit) {
			return nil, pkgerrors.Newf(pkgerrors.CodeValidation, "a cart line holds at most %d units", MaxLineQuantity)
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "add cart item")
	}
	s.notifyShopkeeper(ctx, caller, product)

	dto := itemFromModel(*item)
	return &dto, nil
}

func (s *service) RemoveFromCart(ctx context.Context, caller auth.Caller, productID uuid.UUID) error {
	if !caller.IsAuthenticated() {
		return pkgerrors.New(pkgerrors.CodeUnauthorized, "sign in to edit your cart")
	}
	if err := s.repo.RemoveItem(ctx, caller.Principal, productID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "remove cart item")
	}
	return nil
}

func (s *service) GetCartItems(ctx context.Context, caller auth.Caller) ([]CartItemDTO, error) {
	if !caller.IsAuthenticated() {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "sign in to view your cart")
	}
	rows, err := s.repo.ListItems(ctx, caller.Principal)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list cart items")
	}
	out := make([]CartItemDTO, 0, len(rows))
	for _, row := range rows {
		out = append(out, itemFromModel(row))
	}
	return out, nil
}

func (s *service) GetDefaultInsuranceOptions() []Insurance {
	return s.catalog.Options()
}

// SelectInsurance stores the catalog entry named by insurance; nil clears the
// selection. Client supplied amounts are ignored.
func (s *service) SelectInsurance(ctx context.Context, caller auth.Caller, insurance *Insurance) (*Insurance, error) {
	if !caller.IsAuthenticated() {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "sign in to choose deal protection")
	}
	if insurance == nil {
		if err := s.repo.ClearInsurance(ctx, caller.Principal); err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "clear insurance")
		}
		return nil, nil
	}

	option, ok := s.catalog.Lookup(insurance.Name)
	if !ok {
		return nil, pkgerrors.Newf(pkgerrors.CodeValidation, "unknown insurance option %q", insurance.Name)
	}
	selection := &models.InsuranceSelection{
		Customer:       caller.Principal,
		Name:           option.Name,
		Details:        option.Details,
		Premium:        option.Premium,
		CoverageAmount: option.CoverageAmount,
	}
	if err := s.repo.SaveInsurance(ctx, selection); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "save insurance")
	}
	return &option, nil
}

func (s *service) GetSelectedInsurance(ctx context.Context, caller auth.Caller) (*Insurance, error) {
	if !caller.IsAuthenticated() {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "sign in to view deal protection")
	}
	selection, err := s.repo.FindInsurance(ctx, caller.Principal)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load insurance")
	}
	return insuranceFromModel(selection), nil
}

func (s *service) GetCartTotalWithInsurance(ctx context.Context, caller auth.Caller) (*CartTotalDTO, error) {
	if !caller.IsAuthenticated() {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "sign in to view your cart")
	}
	items, err := s.repo.ListItems(ctx, caller.Principal)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list cart items")
	}
	ids := make([]uuid.UUID, 0, len(items))
	for _, item := range items {
		ids = append(ids, item.ProductID)
	}
	products, err := s.products.FindByIDs(ctx, ids)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load cart products")
	}
	selection, err := s.repo.FindInsurance(ctx, caller.Principal)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load insurance")
	}

	total, err := computeTotal(items, products, insuranceFromModel(selection))
	if err != nil {
		return nil, err
	}
	return &total, nil
}

func (s *service) RecommendBestInsurance(cartTotal int64) *Insurance {
	return s.catalog.Recommend(cartTotal)
}

// notifyShopkeeper records an in_cart notification. Failures are logged and
// never fail the cart write.
func (s *service) notifyShopkeeper(ctx context.Context, caller auth.Caller, product *models.Product) {
	if s.notifier == nil {
		return
	}
	shop, err := s.shops.FindByID(ctx, product.ShopID)
	if err != nil {
		s.warn(ctx, "cart.notify.shop_lookup_failed", err)
		return
	}
	err = s.notifier.Record(ctx, notifications.Event{
		ShopID:    shop.ID,
		Recipient: shop.Owner,
		Action:    enums.ShopkeeperActionInCart,
		User:      caller.Principal,
		ProductID: product.ID,
	})
	if err != nil {
		s.warn(ctx, "cart.notify.failed", err)
	}
}

func (s *service) warn(ctx context.Context, msg string, err error) {
	if s.logg == nil {
		return
	}
	s.logg.Warn(s.logg.WithField(ctx, "error", err.Error()), msg)
}
