package shops

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/bargen/bargen-backend/pkg/auth"
	"github.com/bargen/bargen-backend/pkg/db/models"
	pkgerrors "github.com/bargen/bargen-backend/pkg/errors"
	"github.com/bargen/bargen-backend/pkg/types"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type shopRepository interface {
	Create(ctx context.Context, shop *models.Shop) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.Shop, error)
	ListByOwner(ctx context.Context, owner types.Principal) ([]models.Shop, error)
	List(ctx context.Context) ([]models.Shop, error)
}

// Service exposes shop profile operations.
type Service interface {
	Create(ctx context.Context, caller auth.Caller, input CreateShopInput) (*ShopDTO, error)
	GetByID(ctx context.Context, id uuid.UUID) (*ShopDTO, error)
	ListMine(ctx context.Context, caller auth.Caller) ([]ShopDTO, error)
	List(ctx context.Context) ([]ShopDTO, error)
}

type service struct {
	repo          shopRepository
	maxDistanceKm float64
}

// NewService builds the shop service. A positive maxDistanceKm rejects shops
// registered further away than delivery fees are quoted for.
func NewService(repo shopRepository, maxDistanceKm float64) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("shop repository required")
	}
	return &service{repo: repo, maxDistanceKm: maxDistanceKm}, nil
}

func (s *service) Create(ctx context.Context, caller auth.Caller, input CreateShopInput) (*ShopDTO, error) {
	if !caller.IsAuthenticated() {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "sign in to create a shop")
	}
	if err := validateCreate(input, s.maxDistanceKm); err != nil {
		return nil, err
	}

	shop := &models.Shop{
		Owner:       caller.Principal,
		Name:        strings.TrimSpace(input.Name),
		Address:     strings.TrimSpace(input.Address),
		DistanceKm:  input.DistanceKm,
		Rating:      input.Rating,
		PriceInfo:   strings.TrimSpace(input.PriceInfo),
		Phone:       strings.TrimSpace(input.Phone),
		LocationURL: strings.TrimSpace(input.LocationURL),
	}
	if err := s.repo.Create(ctx, shop); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create shop")
	}
	dto := FromModel(shop)
	return &dto, nil
}

func (s *service) GetByID(ctx context.Context, id uuid.UUID) (*ShopDTO, error) {
	if id == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "shop id is required")
	}
	shop, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "shop not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load shop")
	}
	dto := FromModel(shop)
	return &dto, nil
}

func (s *service) ListMine(ctx context.Context, caller auth.Caller) ([]ShopDTO, error) {
	if !caller.IsAuthenticated() {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "sign in to view your shops")
	}
	rows, err := s.repo.ListByOwner(ctx, caller.Principal)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list shops")
	}
	return fromModels(rows), nil
}

func (s *service) List(ctx context.Context) ([]ShopDTO, error) {
	rows, err := s.repo.List(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list shops")
	}
	return fromModels(rows), nil
}

func validateCreate(input CreateShopInput, maxDistanceKm float64) error {
	if strings.TrimSpace(input.Name) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "shop name is required")
	}
	if strings.TrimSpace(input.Address) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "shop address is required")
	}
	if input.DistanceKm < 0 || math.IsNaN(input.DistanceKm) || math.IsInf(input.DistanceKm, 0) {
		return pkgerrors.New(pkgerrors.CodeValidation, "distanceKm must be a non-negative number")
	}
	if maxDistanceKm > 0 && input.DistanceKm > maxDistanceKm {
		return pkgerrors.Newf(pkgerrors.CodeValidation, "distanceKm must be at most %g", maxDistanceKm)
	}
	if input.Rating < 1 || input.Rating > 5 {
		return pkgerrors.New(pkgerrors.CodeValidation, "rating must be between 1 and 5")
	}
	return nil
}
