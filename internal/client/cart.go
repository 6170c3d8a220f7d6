package client

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	"github.com/bargen/bargen-backend/internal/cart"
	"github.com/google/uuid"
)

type addToCartRequest struct {
	ProductID uuid.UUID `json:"productId"`
	Quantity  int64     `json:"quantity"`
}

type selectInsuranceRequest struct {
	Insurance *cart.Insurance `json:"insurance"`
}

// AddToCart accumulates quantity onto the line and returns the resulting line.
func (c *Client) AddToCart(ctx context.Context, productID uuid.UUID, quantity int64) (*cart.CartItemDTO, error) {
	var out cart.CartItemDTO
	req := addToCartRequest{ProductID: productID, Quantity: quantity}
	if err := c.do(ctx, call{method: http.MethodPost, path: "/cart/items", body: req, out: &out, mutating: true}); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) RemoveFromCart(ctx context.Context, productID uuid.UUID) error {
	return c.do(ctx, call{method: http.MethodDelete, path: "/cart/items/" + productID.String(), mutating: true})
}

func (c *Client) GetCartItems(ctx context.Context) ([]cart.CartItemDTO, error) {
	var out []cart.CartItemDTO
	err := c.do(ctx, call{method: http.MethodGet, path: "/cart/items", out: &out})
	return out, err
}

func (c *Client) GetCartTotal(ctx context.Context) (*cart.CartTotalDTO, error) {
	var out cart.CartTotalDTO
	if err := c.do(ctx, call{method: http.MethodGet, path: "/cart/total", out: &out}); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) InsuranceOptions(ctx context.Context) ([]cart.Insurance, error) {
	var out []cart.Insurance
	err := c.do(ctx, call{method: http.MethodGet, path: "/insurance/options", out: &out})
	return out, err
}

func (c *Client) GetSelectedInsurance(ctx context.Context) (*cart.Insurance, error) {
	var out *cart.Insurance
	if err := c.do(ctx, call{method: http.MethodGet, path: "/cart/insurance", out: &out}); err != nil {
		return nil, err
	}
	return out, nil
}

// SelectInsurance sets the selection by name; nil clears it.
func (c *Client) SelectInsurance(ctx context.Context, insurance *cart.Insurance) (*cart.Insurance, error) {
	var out *cart.Insurance
	req := selectInsuranceRequest{Insurance: insurance}
	if err := c.do(ctx, call{method: http.MethodPut, path: "/cart/insurance", body: req, out: &out, mutating: true}); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) RecommendInsurance(ctx context.Context, cartTotal int64) (*cart.Insurance, error) {
	query := url.Values{"cartTotal": []string{strconv.FormatInt(cartTotal, 10)}}
	var out *cart.Insurance
	if err := c.do(ctx, call{method: http.MethodGet, path: "/insurance/recommendation", query: query, out: &out}); err != nil {
		return nil, err
	}
	return out, nil
}
