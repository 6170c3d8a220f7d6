package client

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	"github.com/bargen/bargen-backend/internal/delivery"
	"github.com/bargen/bargen-backend/pkg/enums"
	"github.com/google/uuid"
)

type PartnerRequest struct {
	Name        string `json:"name"`
	VehicleType string `json:"vehicleType"`
	Location    string `json:"location"`
}

type DeliveryOrderRequest struct {
	ShopID          uuid.UUID            `json:"shopId"`
	DeliveryOption  enums.DeliveryOption `json:"deliveryOption"`
	DropoffLocation string               `json:"dropoffLocation,omitempty"`
	DistanceKm      *float64             `json:"distanceKm,omitempty"`
}

type availabilityRequest struct {
	IsAvailable bool `json:"isAvailable"`
}

type advanceRequest struct {
	Status         enums.DeliveryStatus `json:"status"`
	CompletionCode string               `json:"completionCode,omitempty"`
}

func (c *Client) RegisterDeliveryPartner(ctx context.Context, req PartnerRequest) (*delivery.PartnerDTO, error) {
	var out delivery.PartnerDTO
	if err := c.do(ctx, call{method: http.MethodPost, path: "/delivery/partners", body: req, out: &out, mutating: true}); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) SetPartnerAvailability(ctx context.Context, partnerID uuid.UUID, available bool) (*delivery.PartnerDTO, error) {
	var out delivery.PartnerDTO
	path := "/delivery/partners/" + partnerID.String() + "/availability"
	if err := c.do(ctx, call{method: http.MethodPut, path: path, body: availabilityRequest{IsAvailable: available}, out: &out, mutating: true}); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) CreateDeliveryOrder(ctx context.Context, req DeliveryOrderRequest) (*delivery.OrderDTO, error) {
	var out delivery.OrderDTO
	if err := c.do(ctx, call{method: http.MethodPost, path: "/delivery/orders", body: req, out: &out, mutating: true}); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) ListDeliveryOrders(ctx context.Context) ([]delivery.OrderDTO, error) {
	var out []delivery.OrderDTO
	err := c.do(ctx, call{method: http.MethodGet, path: "/delivery/orders", out: &out})
	return out, err
}

func (c *Client) AdvanceDeliveryOrder(ctx context.Context, orderID uuid.UUID, status enums.DeliveryStatus, completionCode string) (*delivery.OrderDTO, error) {
	var out delivery.OrderDTO
	path := "/delivery/orders/" + orderID.String() + "/status"
	req := advanceRequest{Status: status, CompletionCode: completionCode}
	if err := c.do(ctx, call{method: http.MethodPost, path: path, body: req, out: &out, mutating: true}); err != nil {
		return nil, err
	}
	return &out, nil
}

// DeliveryFee asks the server for the authoritative fee. A nil distance uses
// the shop's listed distance.
func (c *Client) DeliveryFee(ctx context.Context, shopID uuid.UUID, distanceKm *float64) (*delivery.FeeQuoteDTO, error) {
	query := url.Values{}
	if distanceKm != nil {
		query.Set("distanceKm", strconv.FormatFloat(*distanceKm, 'f', -1, 64))
	}
	var out delivery.FeeQuoteDTO
	if err := c.do(ctx, call{method: http.MethodGet, path: "/shops/" + shopID.String() + "/delivery-fee", query: query, out: &out}); err != nil {
		return nil, err
	}
	return &out, nil
}
