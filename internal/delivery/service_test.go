package delivery

import (
	"context"
	"testing"

	"github.com/bargen/bargen-backend/internal/bargains"
	"github.com/bargen/bargen-backend/internal/products"
	"github.com/bargen/bargen-backend/internal/shops"
	"github.com/bargen/bargen-backend/pkg/auth"
	"github.com/bargen/bargen-backend/pkg/db"
	"github.com/bargen/bargen-backend/pkg/db/dbtest"
	"github.com/bargen/bargen-backend/pkg/db/models"
	"github.com/bargen/bargen-backend/pkg/deliveryfee"
	"github.com/bargen/bargen-backend/pkg/enums"
	pkgerrors "github.com/bargen/bargen-backend/pkg/errors"
	"github.com/bargen/bargen-backend/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixture struct {
	svc      Service
	repo     *Repository
	client   *db.Client
	bargains bargains.Service
	shop     *models.Shop
	product  *models.Product
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	ctx := context.Background()
	client, conn := dbtest.Client(t)

	shopRepo := shops.NewRepository(conn)
	productRepo := products.NewRepository(conn)
	shop := &models.Shop{Owner: "keeper", Name: "Ravi", Address: "12 MG Road", Rating: 4, DistanceKm: 2.5}
	require.NoError(t, shopRepo.Create(ctx, shop))
	product := &models.Product{ShopID: shop.ID, Name: "Fridge", Price: 20000, Condition: enums.ProductConditionUsed}
	require.NoError(t, productRepo.Create(ctx, product))

	bargainSvc, err := bargains.NewService(bargains.ServiceParams{
		Repo:     bargains.NewRepository(conn),
		Products: productRepo,
		Shops:    shopRepo,
	})
	require.NoError(t, err)

	repo := NewRepository(conn)
	svc, err := NewService(ServiceParams{
		Repo:          repo,
		Shops:         shopRepo,
		Bargains:      bargainSvc,
		Fees:          deliveryfee.Model{RatePerKm: 1000},
		CodeGenerator: func() (string, error) { return "042917", nil },
	})
	require.NoError(t, err)
	return fixture{svc: svc, repo: repo, client: client, bargains: bargainSvc, shop: shop, product: product}
}

func as(p string) auth.Caller {
	return auth.Caller{Principal: types.Principal(p), Role: enums.UserRoleUser}
}

func (f fixture) acceptBargain(t *testing.T, customer string) {
	t.Helper()
	ctx := context.Background()
	b, err := f.bargains.Submit(ctx, as(customer), bargains.SubmitInput{ProductID: f.product.ID, DesiredPrice: 18000})
	require.NoError(t, err)
	_, err = f.bargains.Accept(ctx, as("keeper"), b.ID)
	require.NoError(t, err)
}

func TestCreateOrderRequiresAcceptedBargain(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.CreateDeliveryOrder(ctx, as("alice"), CreateOrderInput{ShopID: f.shop.ID, Option: enums.DeliveryOptionPickup})
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeStateConflict), "got %v", err)

	f.acceptBargain(t, "alice")
	order, err := f.svc.CreateDeliveryOrder(ctx, as("alice"), CreateOrderInput{ShopID: f.shop.ID, Option: enums.DeliveryOptionPickup})
	require.NoError(t, err)
	assert.Equal(t, enums.DeliveryStatusPending, order.Status)
	assert.Zero(t, order.DeliveryFee)
	assert.Equal(t, "12 MG Road", order.PickupLocation)
	assert.Empty(t, order.DropoffLocation)
	assert.Equal(t, "042917", order.CompletionCode)

	_, err = f.svc.CreateDeliveryOrder(ctx, as("bob"), CreateOrderInput{ShopID: f.shop.ID, Option: enums.DeliveryOptionPickup})
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeStateConflict), "acceptance is per customer")
}

func TestCreateDeliveryOrderChargesQuote(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.acceptBargain(t, "alice")

	_, err := f.svc.CreateDeliveryOrder(ctx, as("alice"), CreateOrderInput{ShopID: f.shop.ID, Option: enums.DeliveryOptionDelivery})
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation), "dropoff is required")

	order, err := f.svc.CreateDeliveryOrder(ctx, as("alice"), CreateOrderInput{
		ShopID:          f.shop.ID,
		Option:          enums.DeliveryOptionDelivery,
		DropoffLocation: "Flat 4, Indiranagar",
	})
	require.NoError(t, err)
	assert.Equal(t, enums.DeliveryStatusDriverPendingAssignment, order.Status)
	assert.Equal(t, int64(2500), order.DeliveryFee, "falls back to the shop distance")

	km := 1.2
	quote, err := f.svc.CalculateDeliveryFee(ctx, f.shop.ID, &km)
	require.NoError(t, err)
	assert.Equal(t, int64(1200), quote.DeliveryFee)
}

func TestDeliveryLifecycle(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.acceptBargain(t, "alice")

	partner, err := f.svc.RegisterDeliveryPartner(ctx, as("dave"), RegisterPartnerInput{Name: "Dave", VehicleType: "bike", Location: "Koramangala"})
	require.NoError(t, err)
	assert.True(t, partner.IsAvailable)

	order, err := f.svc.CreateDeliveryOrder(ctx, as("alice"), CreateOrderInput{ShopID: f.shop.ID, Option: enums.DeliveryOptionDelivery, DropoffLocation: "Indiranagar"})
	require.NoError(t, err)

	assigner, err := NewAssigner(AssignerParams{DB: f.client, Repo: f.repo})
	require.NoError(t, err)
	res, err := assigner.AssignPending(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Assigned)

	driverView, err := f.svc.GetOwnDeliveryOrders(ctx, as("dave"))
	require.NoError(t, err)
	require.Len(t, driverView, 1)
	assert.Equal(t, enums.DeliveryStatusDriverAssigned, driverView[0].Status)
	assert.Empty(t, driverView[0].CompletionCode, "drivers never see the code")

	_, err = f.svc.AdvanceDeliveryOrder(ctx, as("keeper"), order.ID, AdvanceInput{Status: enums.DeliveryStatusPickingUp})
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeForbidden))

	for _, next := range []enums.DeliveryStatus{enums.DeliveryStatusPickingUp, enums.DeliveryStatusInTransit, enums.DeliveryStatusDelivered} {
		_, err := f.svc.AdvanceDeliveryOrder(ctx, as("dave"), order.ID, AdvanceInput{Status: next})
		require.NoError(t, err, "advance to %s", next)
	}

	_, err = f.svc.AdvanceDeliveryOrder(ctx, as("dave"), order.ID, AdvanceInput{Status: enums.DeliveryStatusCompleted, CompletionCode: "000000"})
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))

	done, err := f.svc.AdvanceDeliveryOrder(ctx, as("dave"), order.ID, AdvanceInput{Status: enums.DeliveryStatusCompleted, CompletionCode: "042917"})
	require.NoError(t, err)
	assert.Equal(t, enums.DeliveryStatusCompleted, done.Status)

	released, err := f.repo.FindPartner(ctx, partner.ID)
	require.NoError(t, err)
	assert.True(t, released.IsAvailable, "terminal orders free the driver")

	_, err = f.svc.AdvanceDeliveryOrder(ctx, as("dave"), order.ID, AdvanceInput{Status: enums.DeliveryStatusFailed})
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeStateConflict))
}

func TestPickupCompletedByShopOwner(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.acceptBargain(t, "alice")
	order, err := f.svc.CreateDeliveryOrder(ctx, as("alice"), CreateOrderInput{ShopID: f.shop.ID, Option: enums.DeliveryOptionPickup})
	require.NoError(t, err)

	_, err = f.svc.AdvanceDeliveryOrder(ctx, as("alice"), order.ID, AdvanceInput{Status: enums.DeliveryStatusCompleted, CompletionCode: "042917"})
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeForbidden))

	_, err = f.svc.AdvanceDeliveryOrder(ctx, as("keeper"), order.ID, AdvanceInput{Status: enums.DeliveryStatusInTransit})
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeStateConflict))

	done, err := f.svc.AdvanceDeliveryOrder(ctx, as("keeper"), order.ID, AdvanceInput{Status: enums.DeliveryStatusCompleted, CompletionCode: " 042917 "})
	require.NoError(t, err)
	assert.Equal(t, "042917", done.CompletionCode)

	keeperView, err := f.svc.GetOwnDeliveryOrders(ctx, as("keeper"))
	require.NoError(t, err)
	require.Len(t, keeperView, 1)
	assert.Equal(t, enums.DeliveryStatusCompleted, keeperView[0].Status)
}

func TestAssignmentStopsWithoutPartners(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.acceptBargain(t, "alice")
	for i := 0; i < 2; i++ {
		_, err := f.svc.CreateDeliveryOrder(ctx, as("alice"), CreateOrderInput{ShopID: f.shop.ID, Option: enums.DeliveryOptionDelivery, DropoffLocation: "Indiranagar"})
		require.NoError(t, err)
	}
	_, err := f.svc.RegisterDeliveryPartner(ctx, as("dave"), RegisterPartnerInput{Name: "Dave", VehicleType: "bike", Location: "HSR"})
	require.NoError(t, err)

	assigner, err := NewAssigner(AssignerParams{DB: f.client, Repo: f.repo})
	require.NoError(t, err)
	res, err := assigner.AssignPending(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Assigned)
	assert.Equal(t, 2, res.Considered)

	awaiting, err := f.repo.ListAwaitingDriver(ctx, 0)
	require.NoError(t, err)
	assert.Len(t, awaiting, 1)
}

func TestPartnerAvailabilityOwnership(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	partner, err := f.svc.RegisterDeliveryPartner(ctx, as("dave"), RegisterPartnerInput{Name: "Dave", VehicleType: "bike", Location: "HSR"})
	require.NoError(t, err)

	_, err = f.svc.SetDeliveryPartnerAvailability(ctx, as("eve"), partner.ID, false)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeForbidden))

	updated, err := f.svc.SetDeliveryPartnerAvailability(ctx, as("dave"), partner.ID, false)
	require.NoError(t, err)
	assert.False(t, updated.IsAvailable)

	_, err = f.svc.RegisterDeliveryPartner(ctx, as("dave"), RegisterPartnerInput{Name: "Dave"})
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))
}

func TestBusyPartnerCannotReopen(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.acceptBargain(t, "alice")

	partner, err := f.svc.RegisterDeliveryPartner(ctx, as("dave"), RegisterPartnerInput{Name: "Dave", VehicleType: "bike", Location: "HSR"})
	require.NoError(t, err)
	order, err := f.svc.CreateDeliveryOrder(ctx, as("alice"), CreateOrderInput{ShopID: f.shop.ID, Option: enums.DeliveryOptionDelivery, DropoffLocation: "Indiranagar"})
	require.NoError(t, err)
	_, err = f.svc.CreateDeliveryOrder(ctx, as("alice"), CreateOrderInput{ShopID: f.shop.ID, Option: enums.DeliveryOptionDelivery, DropoffLocation: "Indiranagar"})
	require.NoError(t, err)

	assigner, err := NewAssigner(AssignerParams{DB: f.client, Repo: f.repo})
	require.NoError(t, err)
	res, err := assigner.AssignPending(ctx)
	require.NoError(t, err)
	require.Equal(t, 1, res.Assigned)

	for _, next := range []enums.DeliveryStatus{enums.DeliveryStatusPickingUp, enums.DeliveryStatusInTransit, enums.DeliveryStatusDelivered} {
		_, err = f.svc.SetDeliveryPartnerAvailability(ctx, as("dave"), partner.ID, true)
		assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeStateConflict), "still busy before %s, got %v", next, err)
		_, err = f.svc.AdvanceDeliveryOrder(ctx, as("dave"), order.ID, AdvanceInput{Status: next})
		require.NoError(t, err)
	}

	res, err = assigner.AssignPending(ctx)
	require.NoError(t, err)
	assert.Zero(t, res.Assigned, "a busy driver gets no second order")

	_, err = f.svc.AdvanceDeliveryOrder(ctx, as("dave"), order.ID, AdvanceInput{Status: enums.DeliveryStatusCompleted, CompletionCode: "042917"})
	require.NoError(t, err)
	reopened, err := f.svc.SetDeliveryPartnerAvailability(ctx, as("dave"), partner.ID, true)
	require.NoError(t, err)
	assert.True(t, reopened.IsAvailable)

	_, err = f.svc.SetDeliveryPartnerAvailability(ctx, as("dave"), partner.ID, false)
	require.NoError(t, err, "going offline is always allowed")
}

func TestOneBargainOpensRepeatOrders(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.acceptBargain(t, "alice")

	first, err := f.svc.CreateDeliveryOrder(ctx, as("alice"), CreateOrderInput{ShopID: f.shop.ID, Option: enums.DeliveryOptionPickup})
	require.NoError(t, err)
	again, err := f.svc.CreateDeliveryOrder(ctx, as("alice"), CreateOrderInput{ShopID: f.shop.ID, Option: enums.DeliveryOptionPickup})
	require.NoError(t, err)

	assert.NotEqual(t, first.ID, again.ID)
	assert.Equal(t, first.BargainID, again.BargainID, "both orders record the gating bargain")
}
