package notifications

import (
	"context"
	"errors"
	"time"

	"github.com/bargen/bargen-backend/pkg/auth"
	"github.com/bargen/bargen-backend/pkg/db/models"
	"github.com/bargen/bargen-backend/pkg/enums"
	pkgerrors "github.com/bargen/bargen-backend/pkg/errors"
	"github.com/bargen/bargen-backend/pkg/pagination"
	"github.com/bargen/bargen-backend/pkg/types"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Event is a customer action surfaced to a shop owner.
type Event struct {
	ShopID    uuid.UUID
	Recipient types.Principal
	Action    enums.ShopkeeperAction
	User      types.Principal
	ProductID uuid.UUID
}

// Recorder is the write side used by cart and wishlist.
type Recorder interface {
	Record(ctx context.Context, event Event) error
}

// Service defines shopkeeper notification operations.
type Service interface {
	Recorder
	ListForShop(ctx context.Context, caller auth.Caller, params ListParams) (*ListResult, error)
}

// ListParams configures pagination for notifications.
type ListParams struct {
	ShopID uuid.UUID
	Limit  int
	Cursor string
}

type NotificationDTO struct {
	ID        uuid.UUID              `json:"id"`
	ShopID    uuid.UUID              `json:"shopId"`
	Action    enums.ShopkeeperAction `json:"action"`
	User      types.Principal        `json:"user"`
	ProductID uuid.UUID              `json:"productId"`
	CreatedAt time.Time              `json:"createdAt"`
}

// ListResult wraps returned notifications and the cursor for the next page.
type ListResult = pagination.Page[NotificationDTO]

type shopLoader interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Shop, error)
}

type service struct {
	repo    Repository
	shops   shopLoader
	enabled bool
}

// NewService wires notification dependencies. When enabled is false Record is a no-op.
func NewService(repo Repository, shops shopLoader, enabled bool) (Service, error) {
	if repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "notifications repository required")
	}
	if shops == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "shop repository required")
	}
	return &service{repo: repo, shops: shops, enabled: enabled}, nil
}

// Record stores event. Owners acting on their own products are not notified.
func (s *service) Record(ctx context.Context, event Event) error {
	if !s.enabled || event.Recipient == event.User {
		return nil
	}
	if !event.Action.IsValid() {
		return pkgerrors.Newf(pkgerrors.CodeValidation, "invalid notification action %q", event.Action)
	}
	row := &models.ShopkeeperNotification{
		ShopID:    event.ShopID,
		Recipient: event.Recipient,
		Action:    event.Action,
		Actor:     event.User,
		ProductID: event.ProductID,
	}
	if err := s.repo.Create(ctx, row); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "record notification")
	}
	return nil
}

func (s *service) ListForShop(ctx context.Context, caller auth.Caller, params ListParams) (*ListResult, error) {
	if !caller.IsAuthenticated() {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "sign in to view notifications")
	}
	if params.ShopID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "shop id required")
	}
	shop, err := s.shops.FindByID(ctx, params.ShopID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "shop not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load shop")
	}
	if !caller.IsAdmin() && !caller.Is(shop.Owner) {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "only the shop owner can view notifications")
	}

	cursor, err := pagination.ParseCursor(params.Cursor)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
	}

	rows, err := s.repo.List(ctx, listNotificationsParams{ShopID: params.ShopID, Limit: params.Limit, Cursor: cursor})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list notifications")
	}

	dtos := make([]NotificationDTO, 0, len(rows))
	for _, row := range rows {
		dtos = append(dtos, NotificationDTO{
			ID:        row.ID,
			ShopID:    row.ShopID,
			Action:    row.Action,
			User:      row.Actor,
			ProductID: row.ProductID,
			CreatedAt: row.CreatedAt,
		})
	}
	page := pagination.Trim(dtos, params.Limit, func(n NotificationDTO) pagination.Cursor {
		return pagination.Cursor{CreatedAt: n.CreatedAt, ID: n.ID}
	})
	return &page, nil
}
