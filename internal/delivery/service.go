package delivery

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/bargen/bargen-backend/internal/bargains"
	"github.com/bargen/bargen-backend/pkg/auth"
	"github.com/bargen/bargen-backend/pkg/db/models"
	"github.com/bargen/bargen-backend/pkg/deliveryfee"
	"github.com/bargen/bargen-backend/pkg/enums"
	pkgerrors "github.com/bargen/bargen-backend/pkg/errors"
	"github.com/bargen/bargen-backend/pkg/logger"
	"github.com/bargen/bargen-backend/pkg/metrics"
	"github.com/bargen/bargen-backend/pkg/types"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type deliveryRepository interface {
	CreatePartner(ctx context.Context, partner *models.DeliveryPartner) error
	FindPartner(ctx context.Context, id uuid.UUID) (*models.DeliveryPartner, error)
	ListPartnersByOwner(ctx context.Context, owner types.Principal) ([]models.DeliveryPartner, error)
	SetPartnerAvailability(ctx context.Context, id uuid.UUID, available bool) error
	HasActiveOrder(ctx context.Context, partnerID uuid.UUID) (bool, error)
	CreateOrder(ctx context.Context, order *models.DeliveryOrder) error
	FindOrder(ctx context.Context, id uuid.UUID) (*models.DeliveryOrder, error)
	ListVisibleOrders(ctx context.Context, vis OrderVisibility) ([]models.DeliveryOrder, error)
	TransitionOrder(ctx context.Context, id uuid.UUID, from, to enums.DeliveryStatus, releaseDriver *uuid.UUID) (bool, error)
}

type shopLoader interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Shop, error)
	ListByOwner(ctx context.Context, owner types.Principal) ([]models.Shop, error)
}

type bargainGate interface {
	AcceptedBargain(ctx context.Context, customer types.Principal, shopID uuid.UUID) (*bargains.BargainDTO, error)
}

// Service manages delivery partners and orders.
type Service interface {
	RegisterDeliveryPartner(ctx context.Context, caller auth.Caller, input RegisterPartnerInput) (*PartnerDTO, error)
	SetDeliveryPartnerAvailability(ctx context.Context, caller auth.Caller, partnerID uuid.UUID, available bool) (*PartnerDTO, error)
	CreateDeliveryOrder(ctx context.Context, caller auth.Caller, input CreateOrderInput) (*OrderDTO, error)
	GetOwnDeliveryOrders(ctx context.Context, caller auth.Caller) ([]OrderDTO, error)
	AdvanceDeliveryOrder(ctx context.Context, caller auth.Caller, orderID uuid.UUID, input AdvanceInput) (*OrderDTO, error)
	CalculateDeliveryFee(ctx context.Context, shopID uuid.UUID, distanceKm *float64) (*FeeQuoteDTO, error)
}

type ServiceParams struct {
	Repo     deliveryRepository
	Shops    shopLoader
	Bargains bargainGate
	Fees     deliveryfee.Model
	Metrics  *metrics.MarketplaceMetrics
	Logger   *logger.Logger
	// CodeGenerator overrides the completion code source in tests.
	CodeGenerator func() (string, error)
}

type service struct {
	repo     deliveryRepository
	shops    shopLoader
	bargains bargainGate
	fees     deliveryfee.Model
	metrics  *metrics.MarketplaceMetrics
	logg     *logger.Logger
	newCode  func() (string, error)
}

func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, fmt.Errorf("delivery repository required")
	}
	if params.Shops == nil {
		return nil, fmt.Errorf("shop repository required")
	}
	if params.Bargains == nil {
		return nil, fmt.Errorf("bargain service required")
	}
	gen := params.CodeGenerator
	if gen == nil {
		gen = newCompletionCode
	}
	return &service{
		repo:     params.Repo,
		shops:    params.Shops,
		bargains: params.Bargains,
		fees:     params.Fees,
		metrics:  params.Metrics,
		logg:     params.Logger,
		newCode:  gen,
	}, nil
}

func (s *service) RegisterDeliveryPartner(ctx context.Context, caller auth.Caller, input RegisterPartnerInput) (*PartnerDTO, error) {
	if !caller.IsAuthenticated() {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "sign in to register as a delivery partner")
	}
	partner := &models.DeliveryPartner{
		Owner:       caller.Principal,
		Name:        strings.TrimSpace(input.Name),
		VehicleType: strings.TrimSpace(input.VehicleType),
		Location:    strings.TrimSpace(input.Location),
		IsAvailable: true,
	}
	if partner.Name == "" || partner.VehicleType == "" || partner.Location == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "name, vehicleType and location are required")
	}
	if err := s.repo.CreatePartner(ctx, partner); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "register delivery partner")
	}
	s.logEvent(ctx, "delivery.partner.registered", map[string]any{"partner_id": partner.ID.String()})
	dto := partnerFromModel(partner)
	return &dto, nil
}

func (s *service) SetDeliveryPartnerAvailability(ctx context.Context, caller auth.Caller, partnerID uuid.UUID, available bool) (*PartnerDTO, error) {
	if !caller.IsAuthenticated() {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "sign in to update availability")
	}
	partner, err := s.loadPartner(ctx, partnerID)
	if err != nil {
		return nil, err
	}
	if partner.Owner != caller.Principal {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "only the partner owner can change availability")
	}
	if available {
		busy, err := s.repo.HasActiveOrder(ctx, partner.ID)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check active orders")
		}
		if busy {
			return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "finish the current delivery before taking new orders")
		}
	}
	if err := s.repo.SetPartnerAvailability(ctx, partner.ID, available); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update availability")
	}
	partner.IsAvailable = available
	dto := partnerFromModel(partner)
	return &dto, nil
}

// CreateDeliveryOrder requires a mutually accepted bargain between the caller
// and the shop.
func (s *service) CreateDeliveryOrder(ctx context.Context, caller auth.Caller, input CreateOrderInput) (*OrderDTO, error) {
	if !caller.IsAuthenticated() {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "sign in to arrange delivery")
	}
	if !input.Option.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "deliveryOption must be pickup or delivery")
	}
	dropoff := strings.TrimSpace(input.DropoffLocation)
	if input.Option == enums.DeliveryOptionDelivery && dropoff == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "dropoffLocation is required for delivery")
	}
	shop, err := s.loadShop(ctx, input.ShopID)
	if err != nil {
		return nil, err
	}
	bargain, err := s.bargains.AcceptedBargain(ctx, caller.Principal, shop.ID)
	if err != nil {
		return nil, err
	}
	if bargain == nil {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "delivery is available after the shopkeeper accepts your bargain")
	}

	code, err := s.newCode()
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "generate completion code")
	}
	order := &models.DeliveryOrder{
		ShopID:         shop.ID,
		BargainID:      bargain.ID,
		Customer:       caller.Principal,
		DeliveryOption: input.Option,
		PickupLocation: shop.Address,
		CompletionCode: code,
	}
	switch input.Option {
	case enums.DeliveryOptionPickup:
		order.Status = enums.DeliveryStatusPending
	case enums.DeliveryOptionDelivery:
		fee, err := s.quote(shop, input.DistanceKm)
		if err != nil {
			return nil, err
		}
		order.Status = enums.DeliveryStatusDriverPendingAssignment
		order.DropoffLocation = dropoff
		order.DeliveryFee = fee
	}

	if err := s.repo.CreateOrder(ctx, order); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create delivery order")
	}
	s.metrics.DeliveryOrderCreated(order.DeliveryOption.String())
	s.logEvent(ctx, "delivery.order.created", map[string]any{
		"order_id": order.ID.String(),
		"shop_id":  order.ShopID.String(),
		"option":   order.DeliveryOption.String(),
		"fee":      order.DeliveryFee,
	})
	dto := orderFromModel(order, true)
	return &dto, nil
}

func (s *service) GetOwnDeliveryOrders(ctx context.Context, caller auth.Caller) ([]OrderDTO, error) {
	if !caller.IsAuthenticated() {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "sign in to view delivery orders")
	}
	partners, err := s.repo.ListPartnersByOwner(ctx, caller.Principal)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list partners")
	}
	ownedShops, err := s.shops.ListByOwner(ctx, caller.Principal)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list shops")
	}

	vis := OrderVisibility{Customer: caller.Principal}
	for _, p := range partners {
		vis.PartnerIDs = append(vis.PartnerIDs, p.ID)
	}
	shopSet := make(map[uuid.UUID]struct{}, len(ownedShops))
	for _, shop := range ownedShops {
		vis.ShopIDs = append(vis.ShopIDs, shop.ID)
		shopSet[shop.ID] = struct{}{}
	}

	rows, err := s.repo.ListVisibleOrders(ctx, vis)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list delivery orders")
	}
	out := make([]OrderDTO, 0, len(rows))
	for i := range rows {
		_, ownsShop := shopSet[rows[i].ShopID]
		out = append(out, orderFromModel(&rows[i], ownsShop || rows[i].Customer == caller.Principal))
	}
	return out, nil
}

func (s *service) AdvanceDeliveryOrder(ctx context.Context, caller auth.Caller, orderID uuid.UUID, input AdvanceInput) (*OrderDTO, error) {
	if !caller.IsAuthenticated() {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "sign in to update delivery orders")
	}
	if !input.Status.IsValid() {
		return nil, pkgerrors.Newf(pkgerrors.CodeValidation, "invalid status %q", input.Status)
	}
	order, err := s.loadOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	who, err := s.actorFor(ctx, caller, order)
	if err != nil {
		return nil, err
	}
	if !who.driver && !who.shopOwner {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "not a party to this delivery order")
	}
	if err := checkTransition(order.Status, input.Status, who, input.CompletionCode, order.CompletionCode); err != nil {
		return nil, err
	}

	var release *uuid.UUID
	if input.Status.IsTerminal() && order.DriverID != nil {
		release = order.DriverID
	}
	moved, err := s.repo.TransitionOrder(ctx, order.ID, order.Status, input.Status, release)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update delivery order")
	}
	if !moved {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "order changed concurrently; reload and retry")
	}
	s.logEvent(ctx, "delivery.order.status_changed", map[string]any{
		"order_id": order.ID.String(),
		"from":     order.Status.String(),
		"to":       input.Status.String(),
	})

	updated, err := s.loadOrder(ctx, order.ID)
	if err != nil {
		return nil, err
	}
	dto := orderFromModel(updated, who.shopOwner || updated.Customer == caller.Principal)
	return &dto, nil
}

func (s *service) CalculateDeliveryFee(ctx context.Context, shopID uuid.UUID, distanceKm *float64) (*FeeQuoteDTO, error) {
	shop, err := s.loadShop(ctx, shopID)
	if err != nil {
		return nil, err
	}
	fee, err := s.quote(shop, distanceKm)
	if err != nil {
		return nil, err
	}
	km := shop.DistanceKm
	if distanceKm != nil {
		km = *distanceKm
	}
	return &FeeQuoteDTO{ShopID: shop.ID, DistanceKm: km, DeliveryFee: fee}, nil
}

// quote prices distanceKm, falling back to the shop's listed distance.
func (s *service) quote(shop *models.Shop, distanceKm *float64) (int64, error) {
	km := shop.DistanceKm
	if distanceKm != nil {
		km = *distanceKm
	}
	return s.fees.Quote(km)
}

func (s *service) actorFor(ctx context.Context, caller auth.Caller, order *models.DeliveryOrder) (actor, error) {
	var who actor
	if order.DriverID != nil {
		partner, err := s.repo.FindPartner(ctx, *order.DriverID)
		switch {
		case err == nil:
			who.driver = partner.Owner == caller.Principal
		case !errors.Is(err, gorm.ErrRecordNotFound):
			return who, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load partner")
		}
	}
	shop, err := s.shops.FindByID(ctx, order.ShopID)
	switch {
	case err == nil:
		who.shopOwner = shop.Owner == caller.Principal
	case !errors.Is(err, gorm.ErrRecordNotFound):
		return who, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load shop")
	}
	return who, nil
}

func (s *service) loadShop(ctx context.Context, id uuid.UUID) (*models.Shop, error) {
	if id == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "shopId is required")
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

func (s *service) loadPartner(ctx context.Context, id uuid.UUID) (*models.DeliveryPartner, error) {
	partner, err := s.repo.FindPartner(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "delivery partner not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load partner")
	}
	return partner, nil
}

func (s *service) loadOrder(ctx context.Context, id uuid.UUID) (*models.DeliveryOrder, error) {
	order, err := s.repo.FindOrder(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "delivery order not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load delivery order")
	}
	return order, nil
}

func (s *service) logEvent(ctx context.Context, event string, fields map[string]any) {
	if s.logg == nil {
		return
	}
	s.logg.Info(s.logg.WithFields(ctx, fields), event)
}
