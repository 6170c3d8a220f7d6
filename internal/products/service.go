package products

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/bargen/bargen-backend/internal/compare"
	"github.com/bargen/bargen-backend/internal/shops"
	"github.com/bargen/bargen-backend/pkg/auth"
	"github.com/bargen/bargen-backend/pkg/db/models"
	pkgerrors "github.com/bargen/bargen-backend/pkg/errors"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	maxNameLength = 200
	// MaxPrice is the largest listing price in minor units.
	MaxPrice int64 = 1_000_000_000_000
)

type productRepository interface {
	Create(ctx context.Context, product *models.Product) error
	Update(ctx context.Context, product *models.Product) error
	Delete(ctx context.Context, id uuid.UUID) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.Product, error)
	FindByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]models.Product, error)
	ListByShop(ctx context.Context, shopID uuid.UUID) ([]models.Product, error)
	List(ctx context.Context, filter ListFilter) ([]models.Product, error)
	ListByName(ctx context.Context, name string) ([]models.Product, error)
}

type shopLoader interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Shop, error)
	FindByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]models.Shop, error)
}

// PhotoStore resolves photo refs to URLs and bytes.
type PhotoStore interface {
	DirectURL(ref string) string
	Fetch(ctx context.Context, ref string) ([]byte, error)
}

// Service exposes catalog operations.
type Service interface {
	CreateProduct(ctx context.Context, caller auth.Caller, shopID uuid.UUID, input ProductInput) (*ProductWithShopDTO, error)
	UpdateProduct(ctx context.Context, caller auth.Caller, productID uuid.UUID, input ProductInput) (*ProductWithShopDTO, error)
	DeleteProduct(ctx context.Context, caller auth.Caller, productID uuid.UUID) error
	GetProduct(ctx context.Context, productID uuid.UUID) (*ProductWithShopDTO, error)
	GetProductsForShop(ctx context.Context, shopID uuid.UUID) ([]ProductWithShopDTO, error)
	GetProductsByIDs(ctx context.Context, ids []uuid.UUID) ([]ProductWithShopDTO, error)
	Browse(ctx context.Context, input BrowseInput) ([]ProductWithShopDTO, error)
	ListAll(ctx context.Context, caller auth.Caller) ([]ProductDTO, error)
	Compare(ctx context.Context, productID uuid.UUID, sortKey string) (*CompareResult, error)
	Photo(ctx context.Context, productID uuid.UUID, index int) ([]byte, error)
}

type service struct {
	repo   productRepository
	shops  shopLoader
	photos PhotoStore
}

// NewService builds the catalog service. photos may be nil, in which case refs
// are exposed verbatim and photo bytes are unavailable.
func NewService(repo productRepository, shopRepo shopLoader, photos PhotoStore) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("product repository required")
	}
	if shopRepo == nil {
		return nil, fmt.Errorf("shop repository required")
	}
	return &service{repo: repo, shops: shopRepo, photos: photos}, nil
}

func (s *service) CreateProduct(ctx context.Context, caller auth.Caller, shopID uuid.UUID, input ProductInput) (*ProductWithShopDTO, error) {
	if !caller.IsAuthenticated() {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "sign in to list products")
	}
	shop, err := s.loadShop(ctx, shopID)
	if err != nil {
		return nil, err
	}
	if !caller.Is(shop.Owner) {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "only the shop owner can list products")
	}
	if err := validateInput(&input); err != nil {
		return nil, err
	}

	product := &models.Product{ShopID: shop.ID}
	applyInput(product, input)
	if err := s.repo.Create(ctx, product); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create product")
	}
	dto := s.withShop(product, shop)
	return &dto, nil
}

func (s *service) UpdateProduct(ctx context.Context, caller auth.Caller, productID uuid.UUID, input ProductInput) (*ProductWithShopDTO, error) {
	product, shop, err := s.authorizeEdit(ctx, caller, productID)
	if err != nil {
		return nil, err
	}
	if err := validateInput(&input); err != nil {
		return nil, err
	}
	applyInput(product, input)
	if err := s.repo.Update(ctx, product); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update product")
	}
	dto := s.withShop(product, shop)
	return &dto, nil
}

func (s *service) DeleteProduct(ctx context.Context, caller auth.Caller, productID uuid.UUID) error {
	if _, _, err := s.authorizeEdit(ctx, caller, productID); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, productID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete product")
	}
	return nil
}

func (s *service) GetProduct(ctx context.Context, productID uuid.UUID) (*ProductWithShopDTO, error) {
	product, err := s.loadProduct(ctx, productID)
	if err != nil {
		return nil, err
	}
	shop, err := s.loadShop(ctx, product.ShopID)
	if err != nil {
		return nil, err
	}
	dto := s.withShop(product, shop)
	return &dto, nil
}

func (s *service) GetProductsForShop(ctx context.Context, shopID uuid.UUID) ([]ProductWithShopDTO, error) {
	shop, err := s.loadShop(ctx, shopID)
	if err != nil {
		return nil, err
	}
	rows, err := s.repo.ListByShop(ctx, shopID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list shop products")
	}
	out := make([]ProductWithShopDTO, 0, len(rows))
	for i := range rows {
		out = append(out, s.withShop(&rows[i], shop))
	}
	return out, nil
}

// GetProductsByIDs returns the products that still exist, in the order of ids.
func (s *service) GetProductsByIDs(ctx context.Context, ids []uuid.UUID) ([]ProductWithShopDTO, error) {
	byID, err := s.repo.FindByIDs(ctx, ids)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load products")
	}
	rows := make([]models.Product, 0, len(byID))
	for _, id := range ids {
		if row, ok := byID[id]; ok {
			rows = append(rows, row)
		}
	}
	return s.join(ctx, rows)
}

func (s *service) Browse(ctx context.Context, input BrowseInput) ([]ProductWithShopDTO, error) {
	if input.Condition != "" && !input.Condition.IsValid() {
		return nil, pkgerrors.Newf(pkgerrors.CodeValidation, "invalid condition %q", input.Condition)
	}
	rows, err := s.repo.List(ctx, ListFilter{NameContains: input.Query, Condition: input.Condition})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "browse products")
	}
	joined, err := s.join(ctx, rows)
	if err != nil {
		return nil, err
	}
	return compare.ApplySorting(joined, compare.ParseSortKey(input.Sort)), nil
}

func (s *service) ListAll(ctx context.Context, caller auth.Caller) ([]ProductDTO, error) {
	if !caller.IsAdmin() {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "admin role required")
	}
	rows, err := s.repo.List(ctx, ListFilter{})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list products")
	}
	out := make([]ProductDTO, 0, len(rows))
	for i := range rows {
		out = append(out, newProductDTO(&rows[i], s.urls()))
	}
	return out, nil
}

func (s *service) Compare(ctx context.Context, productID uuid.UUID, sortKey string) (*CompareResult, error) {
	base, err := s.GetProduct(ctx, productID)
	if err != nil {
		return nil, err
	}
	candidates, err := s.repo.ListByName(ctx, base.Product.Name)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load comparable products")
	}
	joined, err := s.join(ctx, candidates)
	if err != nil {
		return nil, err
	}
	matches := compare.FindMatchingProducts(base.Product.Name, joined, base.Product.ID)
	return &CompareResult{
		Product: *base,
		Matches: compare.ApplySorting(matches, compare.ParseSortKey(sortKey)),
	}, nil
}

func (s *service) Photo(ctx context.Context, productID uuid.UUID, index int) ([]byte, error) {
	product, err := s.loadProduct(ctx, productID)
	if err != nil {
		return nil, err
	}
	if index < 0 || index >= len(product.PhotoRefs) {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "photo not found")
	}
	if s.photos == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "photo storage is not configured")
	}
	return s.photos.Fetch(ctx, product.PhotoRefs[index])
}

func (s *service) authorizeEdit(ctx context.Context, caller auth.Caller, productID uuid.UUID) (*models.Product, *models.Shop, error) {
	if !caller.IsAuthenticated() {
		return nil, nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "sign in to edit products")
	}
	product, err := s.loadProduct(ctx, productID)
	if err != nil {
		return nil, nil, err
	}
	shop, err := s.shops.FindByID(ctx, product.ShopID)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load shop")
	}
	if caller.IsAdmin() || (shop != nil && caller.Is(shop.Owner)) {
		return product, shop, nil
	}
	return nil, nil, pkgerrors.New(pkgerrors.CodeForbidden, "only the shop owner can edit this product")
}

func (s *service) loadProduct(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	if id == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product id is required")
	}
	product, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load product")
	}
	return product, nil
}

func (s *service) loadShop(ctx context.Context, id uuid.UUID) (*models.Shop, error) {
	if id == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "shop id is required")
	}
	shop, err := s.shops.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "shop not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load shop")
	}
	return shop, nil
}

// join attaches shops to rows. Products whose shop is gone are skipped.
func (s *service) join(ctx context.Context, rows []models.Product) ([]ProductWithShopDTO, error) {
	ids := make([]uuid.UUID, 0, len(rows))
	seen := make(map[uuid.UUID]struct{}, len(rows))
	for _, row := range rows {
		if _, ok := seen[row.ShopID]; ok {
			continue
		}
		seen[row.ShopID] = struct{}{}
		ids = append(ids, row.ShopID)
	}
	shopsByID, err := s.shops.FindByIDs(ctx, ids)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load shops")
	}
	out := make([]ProductWithShopDTO, 0, len(rows))
	for i := range rows {
		shop, ok := shopsByID[rows[i].ShopID]
		if !ok {
			continue
		}
		out = append(out, s.withShop(&rows[i], &shop))
	}
	return out, nil
}

func (s *service) withShop(product *models.Product, shop *models.Shop) ProductWithShopDTO {
	return ProductWithShopDTO{
		Product: newProductDTO(product, s.urls()),
		Shop:    shops.FromModel(shop),
	}
}

func (s *service) urls() urlResolver {
	if s.photos == nil {
		return nil
	}
	return s.photos
}

func validateInput(input *ProductInput) error {
	input.Name = strings.TrimSpace(input.Name)
	if input.Name == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "product name is required")
	}
	if len(input.Name) > maxNameLength {
		return pkgerrors.Newf(pkgerrors.CodeValidation, "product name must be at most %d characters", maxNameLength)
	}
	if input.Price < 0 || input.Price > MaxPrice {
		return pkgerrors.Newf(pkgerrors.CodeValidation, "price must be between 0 and %d", MaxPrice)
	}
	if !input.Condition.IsValid() {
		return pkgerrors.New(pkgerrors.CodeValidation, "condition must be new or used")
	}
	if input.Age != nil {
		if err := input.Age.Validate(); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeValidation, err, err.Error())
		}
	}
	if score := input.ListingQualityScore; score != nil && (*score < 0 || *score > 100) {
		return pkgerrors.New(pkgerrors.CodeValidation, "listingQualityScore must be between 0 and 100")
	}
	return nil
}

func applyInput(product *models.Product, input ProductInput) {
	product.Name = input.Name
	product.Description = strings.TrimSpace(input.Description)
	product.Price = input.Price
	product.Condition = input.Condition
	product.ReturnPolicy = strings.TrimSpace(input.ReturnPolicy)
	product.Age = input.Age
	product.VerificationLabels = input.VerificationLabels.Normalize()
	product.PhotoRefs = input.PhotoRefs.Clean()
	product.ListingQualityScore = input.ListingQualityScore
}
