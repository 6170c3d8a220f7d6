package wishlist

import (
	"context"
	"errors"
	"time"

	"github.com/bargen/bargen-backend/internal/notifications"
	"github.com/bargen/bargen-backend/internal/products"
	"github.com/bargen/bargen-backend/pkg/auth"
	"github.com/bargen/bargen-backend/pkg/db/models"
	"github.com/bargen/bargen-backend/pkg/enums"
	pkgerrors "github.com/bargen/bargen-backend/pkg/errors"
	"github.com/bargen/bargen-backend/pkg/logger"
	"github.com/bargen/bargen-backend/pkg/types"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type wishlistRepository interface {
	AddItem(ctx context.Context, customer types.Principal, productID uuid.UUID) (bool, error)
	RemoveItem(ctx context.Context, customer types.Principal, productID uuid.UUID) error
	Exists(ctx context.Context, customer types.Principal, productID uuid.UUID) (bool, error)
	ListItems(ctx context.Context, customer types.Principal) ([]models.WishlistItem, error)
}

type productReader interface {
	GetProduct(ctx context.Context, productID uuid.UUID) (*products.ProductWithShopDTO, error)
	GetProductsByIDs(ctx context.Context, ids []uuid.UUID) ([]products.ProductWithShopDTO, error)
}

// ServiceParams groups dependencies for the wishlist service.
type ServiceParams struct {
	Repo          wishlistRepository
	Products      productReader
	Notifications notifications.Recorder
	Logger        *logger.Logger
}

// Service exposes business rules for wishlist management.
type Service interface {
	Like(ctx context.Context, caller auth.Caller, productID uuid.UUID) error
	RemoveLike(ctx context.Context, caller auth.Caller, productID uuid.UUID) error
	HasLiked(ctx context.Context, caller auth.Caller, productID uuid.UUID) (bool, error)
	GetWishlist(ctx context.Context, caller auth.Caller) ([]WishlistItemDTO, error)
}

type service struct {
	repo     wishlistRepository
	products productReader
	notifier notifications.Recorder
	logg     *logger.Logger
}

func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "wishlist repo is required")
	}
	if params.Products == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product service is required")
	}
	return &service{
		repo:     params.Repo,
		products: params.Products,
		notifier: params.Notifications,
		logg:     params.Logger,
	}, nil
}

// Like is idempotent. Only the first like notifies the shop owner.
func (s *service) Like(ctx context.Context, caller auth.Caller, productID uuid.UUID) error {
	if !caller.IsAuthenticated() {
		return pkgerrors.New(pkgerrors.CodeUnauthorized, "sign in to like products")
	}
	product, err := s.products.GetProduct(ctx, productID)
	if err != nil {
		return err
	}
	created, err := s.repo.AddItem(ctx, caller.Principal, productID)
	if err != nil {
		if errors.Is(err, gorm.ErrInvalidValue) {
			return pkgerrors.New(pkgerrors.CodeValidation, "product id is required")
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "add wishlist item")
	}
	if created && s.notifier != nil {
		err := s.notifier.Record(ctx, notifications.Event{
			ShopID:    product.Shop.ID,
			Recipient: product.Shop.Owner,
			Action:    enums.ShopkeeperActionLiked,
			User:      caller.Principal,
			ProductID: productID,
		})
		if err != nil && s.logg != nil {
			s.logg.Warn(s.logg.WithField(ctx, "error", err.Error()), "wishlist.notify.failed")
		}
	}
	return nil
}

func (s *service) RemoveLike(ctx context.Context, caller auth.Caller, productID uuid.UUID) error {
	if !caller.IsAuthenticated() {
		return pkgerrors.New(pkgerrors.CodeUnauthorized, "sign in to edit your wishlist")
	}
	if err := s.repo.RemoveItem(ctx, caller.Principal, productID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "remove wishlist item")
	}
	return nil
}

func (s *service) HasLiked(ctx context.Context, caller auth.Caller, productID uuid.UUID) (bool, error) {
	if !caller.IsAuthenticated() {
		return false, pkgerrors.New(pkgerrors.CodeUnauthorized, "sign in to view your wishlist")
	}
	liked, err := s.repo.Exists(ctx, caller.Principal, productID)
	if err != nil {
		return false, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check wishlist")
	}
	return liked, nil
}

// GetWishlist skips likes whose product no longer exists.
func (s *service) GetWishlist(ctx context.Context, caller auth.Caller) ([]WishlistItemDTO, error) {
	if !caller.IsAuthenticated() {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "sign in to view your wishlist")
	}
	rows, err := s.repo.ListItems(ctx, caller.Principal)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list wishlist")
	}
	ids := make([]uuid.UUID, 0, len(rows))
	likedAt := make(map[uuid.UUID]time.Time, len(rows))
	for _, row := range rows {
		ids = append(ids, row.ProductID)
		likedAt[row.ProductID] = row.CreatedAt
	}
	found, err := s.products.GetProductsByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	out := make([]WishlistItemDTO, 0, len(found))
	for _, product := range found {
		out = append(out, WishlistItemDTO{ProductWithShopDTO: product, LikedAt: likedAt[product.Product.ID]})
	}
	return out, nil
}
