package bargains

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/bargen/bargen-backend/pkg/auth"
	"github.com/bargen/bargen-backend/pkg/db/models"
	"github.com/bargen/bargen-backend/pkg/enums"
	pkgerrors "github.com/bargen/bargen-backend/pkg/errors"
	"github.com/bargen/bargen-backend/pkg/logger"
	"github.com/bargen/bargen-backend/pkg/metrics"
	"github.com/bargen/bargen-backend/pkg/types"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

const maxNoteLength = 1000

type bargainRepository interface {
	Create(ctx context.Context, bargain *models.BargainRequest) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.BargainRequest, error)
	MarkAccepted(ctx context.Context, id uuid.UUID, at time.Time) (bool, error)
	ListByProduct(ctx context.Context, productID uuid.UUID) ([]models.BargainRequest, error)
	ListByProductForParticipant(ctx context.Context, productID uuid.UUID, principal types.Principal) ([]models.BargainRequest, error)
	ListByCustomer(ctx context.Context, customer types.Principal) ([]models.BargainRequest, error)
	FindAccepted(ctx context.Context, customer types.Principal, shopID uuid.UUID) (*models.BargainRequest, error)
}

type productLoader interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Product, error)
}

type shopLoader interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Shop, error)
}

// Service runs the negotiation state machine: pending -> accepted.
type Service interface {
	Submit(ctx context.Context, caller auth.Caller, input SubmitInput) (*BargainDTO, error)
	Accept(ctx context.Context, caller auth.Caller, bargainID uuid.UUID) (*BargainDTO, error)
	ListByProduct(ctx context.Context, caller auth.Caller, productID uuid.UUID) ([]BargainDTO, error)
	ListForCustomer(ctx context.Context, caller auth.Caller) ([]BargainDTO, error)
	HasAcceptedBargain(ctx context.Context, customer types.Principal, shopID uuid.UUID) (bool, error)
	AcceptedBargain(ctx context.Context, customer types.Principal, shopID uuid.UUID) (*BargainDTO, error)
}

type ServiceParams struct {
	Repo     bargainRepository
	Products productLoader
	Shops    shopLoader
	Metrics  *metrics.MarketplaceMetrics
	Logger   *logger.Logger
	Clock    func() time.Time
}

type service struct {
	repo     bargainRepository
	products productLoader
	shops    shopLoader
	metrics  *metrics.MarketplaceMetrics
	logg     *logger.Logger
	now      func() time.Time
}

func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, fmt.Errorf("bargain repository required")
	}
	if params.Products == nil {
		return nil, fmt.Errorf("product repository required")
	}
	if params.Shops == nil {
		return nil, fmt.Errorf("shop repository required")
	}
	now := params.Clock
	if now == nil {
		now = time.Now
	}
	return &service{
		repo:     params.Repo,
		products: params.Products,
		shops:    params.Shops,
		metrics:  params.Metrics,
		logg:     params.Logger,
		now:      now,
	}, nil
}

func (s *service) Submit(ctx context.Context, caller auth.Caller, input SubmitInput) (*BargainDTO, error) {
	if !caller.IsAuthenticated() {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "sign in to send a bargain request")
	}
	if input.DesiredPrice < 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "desiredPrice must be zero or greater")
	}
	if input.ProductID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "productId is required")
	}
	note := trimNote(input.Note)
	if note != nil && len([]rune(*note)) > maxNoteLength {
		return nil, pkgerrors.Newf(pkgerrors.CodeValidation, "note must be at most %d characters", maxNoteLength)
	}

	product, err := s.products.FindByID(ctx, input.ProductID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load product")
	}
	shop, err := s.shops.FindByID(ctx, product.ShopID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "shop not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load shop")
	}
	if shop.Owner == caller.Principal {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "cannot bargain on your own product")
	}

	bargain := &models.BargainRequest{
		ProductID:    product.ID,
		ShopID:       shop.ID,
		Customer:     caller.Principal,
		Shopkeeper:   shop.Owner,
		DesiredPrice: input.DesiredPrice,
		Note:         note,
		Status:       enums.BargainStatusPending,
	}
	if err := s.repo.Create(ctx, bargain); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create bargain request")
	}
	s.metrics.BargainSubmitted(bargain.DesiredPrice)
	s.logEvent(ctx, "bargain.submitted", bargain)

	dto := fromModel(*bargain)
	return &dto, nil
}

// Accept is idempotent: accepting an accepted bargain returns it unchanged.
func (s *service) Accept(ctx context.Context, caller auth.Caller, bargainID uuid.UUID) (*BargainDTO, error) {
	if !caller.IsAuthenticated() {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "sign in to accept bargains")
	}
	bargain, err := s.load(ctx, bargainID)
	if err != nil {
		return nil, err
	}
	if bargain.Shopkeeper != caller.Principal {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "only the shopkeeper can accept this bargain")
	}

	transitioned, err := s.repo.MarkAccepted(ctx, bargain.ID, s.now().UTC())
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "accept bargain")
	}
	current, err := s.load(ctx, bargain.ID)
	if err != nil {
		return nil, err
	}
	if transitioned {
		s.metrics.BargainAccepted()
		s.logEvent(ctx, "bargain.accepted", current)
	}
	dto := fromModel(*current)
	return &dto, nil
}

func (s *service) ListByProduct(ctx context.Context, caller auth.Caller, productID uuid.UUID) ([]BargainDTO, error) {
	if !caller.IsAuthenticated() {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "sign in to view bargains")
	}
	if productID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "productId is required")
	}

	seeAll, err := s.seesAllBargains(ctx, caller, productID)
	if err != nil {
		return nil, err
	}
	var rows []models.BargainRequest
	if seeAll {
		rows, err = s.repo.ListByProduct(ctx, productID)
	} else {
		rows, err = s.repo.ListByProductForParticipant(ctx, productID, caller.Principal)
	}
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list bargains")
	}
	return fromModels(rows), nil
}

func (s *service) ListForCustomer(ctx context.Context, caller auth.Caller) ([]BargainDTO, error) {
	if !caller.IsAuthenticated() {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "sign in to view your bargains")
	}
	rows, err := s.repo.ListByCustomer(ctx, caller.Principal)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list bargains")
	}
	return fromModels(rows), nil
}

func (s *service) HasAcceptedBargain(ctx context.Context, customer types.Principal, shopID uuid.UUID) (bool, error) {
	bargain, err := s.AcceptedBargain(ctx, customer, shopID)
	if err != nil {
		return false, err
	}
	return bargain != nil, nil
}

// AcceptedBargain returns nil when customer holds no accepted bargain with the shop.
func (s *service) AcceptedBargain(ctx context.Context, customer types.Principal, shopID uuid.UUID) (*BargainDTO, error) {
	if customer.IsZero() || shopID == uuid.Nil {
		return nil, nil
	}
	bargain, err := s.repo.FindAccepted(ctx, customer, shopID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load accepted bargain")
	}
	dto := fromModel(*bargain)
	return &dto, nil
}

// seesAllBargains reports whether caller may see every bargain on the product:
// admins and the owner of the product's shop. Deleted products fall back to
// participant visibility.
func (s *service) seesAllBargains(ctx context.Context, caller auth.Caller, productID uuid.UUID) (bool, error) {
	if caller.IsAdmin() {
		return true, nil
	}
	product, err := s.products.FindByID(ctx, productID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, nil
		}
		return false, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load product")
	}
	shop, err := s.shops.FindByID(ctx, product.ShopID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, nil
		}
		return false, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load shop")
	}
	return shop.Owner == caller.Principal, nil
}

func (s *service) load(ctx context.Context, id uuid.UUID) (*models.BargainRequest, error) {
	if id == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "bargain id is required")
	}
	bargain, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "bargain request not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load bargain request")
	}
	return bargain, nil
}

func (s *service) logEvent(ctx context.Context, event string, bargain *models.BargainRequest) {
	if s.logg == nil {
		return
	}
	ctx = s.logg.WithFields(ctx, map[string]any{
		"bargain_id": bargain.ID.String(),
		"product_id": bargain.ProductID.String(),
		"shop_id":    bargain.ShopID.String(),
		"status":     bargain.Status.String(),
	})
	s.logg.Info(ctx, event)
}

func trimNote(note *string) *string {
	if note == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*note)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}
