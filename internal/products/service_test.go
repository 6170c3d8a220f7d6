package products

import (
	"context"
	"errors"
	"testing"

	"github.com/bargen/bargen-backend/internal/shops"
	"github.com/bargen/bargen-backend/pkg/auth"
	"github.com/bargen/bargen-backend/pkg/db/dbtest"
	"github.com/bargen/bargen-backend/pkg/db/models"
	"github.com/bargen/bargen-backend/pkg/enums"
	pkgerrors "github.com/bargen/bargen-backend/pkg/errors"
	"github.com/bargen/bargen-backend/pkg/types"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type fakePhotoStore struct {
	fetch func(ctx context.Context, ref string) ([]byte, error)
}

func (f fakePhotoStore) DirectURL(ref string) string { return "https://cdn.test/" + ref }

func (f fakePhotoStore) Fetch(ctx context.Context, ref string) ([]byte, error) {
	if f.fetch == nil {
		return nil, errors.New("not configured")
	}
	return f.fetch(ctx, ref)
}

type fixture struct {
	svc  Service
	db   *gorm.DB
	shop *models.Shop
}

func newFixture(t *testing.T, photos PhotoStore) fixture {
	t.Helper()
	conn := dbtest.Open(t)
	shopRepo := shops.NewRepository(conn)
	shop := &models.Shop{Owner: "owner", Name: "Ravi", Address: "MG Road", Rating: 4, DistanceKm: 1.5}
	require.NoError(t, shopRepo.Create(context.Background(), shop))
	svc, err := NewService(NewRepository(conn), shopRepo, photos)
	require.NoError(t, err)
	return fixture{svc: svc, db: conn, shop: shop}
}

func caller(p string, role enums.UserRole) auth.Caller {
	return auth.Caller{Principal: types.Principal(p), Role: role}
}

func input(name string, price int64) ProductInput {
	return ProductInput{
		Name:      name,
		Price:     price,
		Condition: enums.ProductConditionUsed,
		Age:       &types.ProductAge{ConditionDescription: "light wear", Time: types.AgeMonths(3)},
		VerificationLabels: types.VerificationLabels{
			{LabelText: "Bill available"}, {LabelText: "bill available"},
		},
		PhotoRefs: types.PhotoRefs{"products/a.jpg", " "},
	}
}

func TestCreateProductRequiresShopOwner(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()

	_, err := f.svc.CreateProduct(ctx, caller("stranger", enums.UserRoleUser), f.shop.ID, input("Phone", 100))
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeForbidden))

	_, err = f.svc.CreateProduct(ctx, auth.Guest(), f.shop.ID, input("Phone", 100))
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeUnauthorized))

	dto, err := f.svc.CreateProduct(ctx, caller("owner", enums.UserRoleUser), f.shop.ID, input(" Phone ", 100))
	require.NoError(t, err)
	assert.Equal(t, "Phone", dto.Product.Name)
	assert.Len(t, dto.Product.VerificationLabels, 1)
	require.Len(t, dto.Product.Photos, 1)
	assert.Equal(t, "products/a.jpg", dto.Product.Photos[0].URL, "without storage the ref is the url")
	assert.Equal(t, f.shop.ID, dto.Shop.ID)
}

func TestCreateProductValidation(t *testing.T) {
	f := newFixture(t, nil)
	owner := caller("owner", enums.UserRoleUser)

	bad := input("Phone", -1)
	_, err := f.svc.CreateProduct(context.Background(), owner, f.shop.ID, bad)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))

	_, err = f.svc.CreateProduct(context.Background(), owner, f.shop.ID, input("Phone", MaxPrice+1))
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation), "price above the cap")

	bad = input("Phone", 1)
	bad.Age = &types.ProductAge{Time: types.AgeTime{Kind: types.AgeKindBrandNew, Value: new(int64)}}
	_, err = f.svc.CreateProduct(context.Background(), owner, f.shop.ID, bad)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))

	bad = input("Phone", 1)
	bad.Condition = "refurbished"
	_, err = f.svc.CreateProduct(context.Background(), owner, f.shop.ID, bad)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))
}

func TestGetProductRoundTripsAge(t *testing.T) {
	f := newFixture(t, fakePhotoStore{})
	ctx := context.Background()
	created, err := f.svc.CreateProduct(ctx, caller("owner", enums.UserRoleUser), f.shop.ID, input("Phone", 100))
	require.NoError(t, err)

	got, err := f.svc.GetProduct(ctx, created.Product.ID)
	require.NoError(t, err)
	require.NotNil(t, got.Product.Age)
	assert.Equal(t, types.AgeKindMonths, got.Product.Age.Time.Kind)
	assert.Equal(t, int64(3), *got.Product.Age.Time.Value)
	assert.Equal(t, "https://cdn.test/products/a.jpg", got.Product.Photos[0].URL)
}

func TestUpdateAndDeleteAllowOwnerOrAdmin(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()
	created, err := f.svc.CreateProduct(ctx, caller("owner", enums.UserRoleUser), f.shop.ID, input("Phone", 100))
	require.NoError(t, err)

	_, err = f.svc.UpdateProduct(ctx, caller("other", enums.UserRoleUser), created.Product.ID, input("Phone", 90))
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeForbidden))

	updated, err := f.svc.UpdateProduct(ctx, caller("root", enums.UserRoleAdmin), created.Product.ID, input("Phone X", 90))
	require.NoError(t, err)
	assert.Equal(t, int64(90), updated.Product.Price)
	assert.Equal(t, "Phone X", updated.Product.Name)

	require.NoError(t, f.svc.DeleteProduct(ctx, caller("owner", enums.UserRoleUser), created.Product.ID))
	_, err = f.svc.GetProduct(ctx, created.Product.ID)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound))
}

func TestCompareFindsSameNameAtOtherShops(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()
	shopRepo := shops.NewRepository(f.db)
	near := &models.Shop{Owner: "near", Name: "Near", Address: "a", Rating: 5, DistanceKm: 0.2}
	far := &models.Shop{Owner: "far", Name: "Far", Address: "b", Rating: 2, DistanceKm: 9}
	require.NoError(t, shopRepo.Create(ctx, near))
	require.NoError(t, shopRepo.Create(ctx, far))

	base, err := f.svc.CreateProduct(ctx, caller("owner", enums.UserRoleUser), f.shop.ID, input("Red Shoes", 500))
	require.NoError(t, err)
	_, err = f.svc.CreateProduct(ctx, caller("near", enums.UserRoleUser), near.ID, input(" red shoes", 700))
	require.NoError(t, err)
	_, err = f.svc.CreateProduct(ctx, caller("far", enums.UserRoleUser), far.ID, input("RED SHOES", 300))
	require.NoError(t, err)
	_, err = f.svc.CreateProduct(ctx, caller("far", enums.UserRoleUser), far.ID, input("Blue Shoes", 100))
	require.NoError(t, err)

	result, err := f.svc.Compare(ctx, base.Product.ID, "price")
	require.NoError(t, err)
	require.Len(t, result.Matches, 2)
	assert.Equal(t, int64(300), result.Matches[0].Product.Price)
	assert.Equal(t, int64(700), result.Matches[1].Product.Price)

	result, err = f.svc.Compare(ctx, base.Product.ID, "distance")
	require.NoError(t, err)
	assert.Equal(t, near.ID, result.Matches[0].Shop.ID)
}

func TestCompareFoldsNonASCIINames(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()
	other := &models.Shop{Owner: "other", Name: "Other", Address: "c", Rating: 3, DistanceKm: 1}
	require.NoError(t, shops.NewRepository(f.db).Create(ctx, other))

	base, err := f.svc.CreateProduct(ctx, caller("owner", enums.UserRoleUser), f.shop.ID, input("Écran Ölçer", 500))
	require.NoError(t, err)
	_, err = f.svc.CreateProduct(ctx, caller("other", enums.UserRoleUser), other.ID, input(" écran ölçer ", 450))
	require.NoError(t, err)
	_, err = f.svc.CreateProduct(ctx, caller("other", enums.UserRoleUser), other.ID, input("Écran", 100))
	require.NoError(t, err)

	result, err := f.svc.Compare(ctx, base.Product.ID, "price")
	require.NoError(t, err)
	require.Len(t, result.Matches, 1)
	assert.Equal(t, int64(450), result.Matches[0].Product.Price)
}

func TestBrowseFiltersAndSorts(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()
	owner := caller("owner", enums.UserRoleUser)
	for _, p := range []struct {
		name  string
		price int64
	}{{"Steel Bottle", 300}, {"Glass Bottle", 100}, {"Lamp", 50}} {
		_, err := f.svc.CreateProduct(ctx, owner, f.shop.ID, input(p.name, p.price))
		require.NoError(t, err)
	}

	got, err := f.svc.Browse(ctx, BrowseInput{Query: "bottle", Sort: "price"})
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "Glass Bottle", got[0].Product.Name)

	_, err = f.svc.Browse(ctx, BrowseInput{Condition: "mint"})
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))
}

func TestPhotoFetchesByIndex(t *testing.T) {
	f := newFixture(t, fakePhotoStore{fetch: func(ctx context.Context, ref string) ([]byte, error) {
		return []byte("bytes:" + ref), nil
	}})
	ctx := context.Background()
	created, err := f.svc.CreateProduct(ctx, caller("owner", enums.UserRoleUser), f.shop.ID, input("Phone", 100))
	require.NoError(t, err)

	data, err := f.svc.Photo(ctx, created.Product.ID, 0)
	require.NoError(t, err)
	assert.Equal(t, "bytes:products/a.jpg", string(data))

	_, err = f.svc.Photo(ctx, created.Product.ID, 5)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound))

	_, err = f.svc.Photo(ctx, uuid.New(), 0)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound))
}

func TestListAllIsAdminOnly(t *testing.T) {
	f := newFixture(t, nil)
	_, err := f.svc.ListAll(context.Background(), caller("owner", enums.UserRoleUser))
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeForbidden))

	rows, err := f.svc.ListAll(context.Background(), caller("root", enums.UserRoleAdmin))
	require.NoError(t, err)
	assert.Empty(t, rows)
}
