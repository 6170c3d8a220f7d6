package client

import (
	"context"
	"net/http"

	"github.com/bargen/bargen-backend/internal/bargains"
	"github.com/google/uuid"
)

type submitBargainRequest struct {
	ProductID    uuid.UUID `json:"productId"`
	DesiredPrice int64     `json:"desiredPrice"`
	Note         *string   `json:"note,omitempty"`
}

// SubmitBargain asks for desiredPrice on a product. Zero asks for the best deal.
func (c *Client) SubmitBargain(ctx context.Context, productID uuid.UUID, desiredPrice int64, note *string) (*bargains.BargainDTO, error) {
	var out bargains.BargainDTO
	req := submitBargainRequest{ProductID: productID, DesiredPrice: desiredPrice, Note: note}
	if err := c.do(ctx, call{method: http.MethodPost, path: "/bargains", body: req, out: &out, mutating: true}); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) AcceptBargain(ctx context.Context, bargainID uuid.UUID) (*bargains.BargainDTO, error) {
	var out bargains.BargainDTO
	if err := c.do(ctx, call{method: http.MethodPost, path: "/bargains/" + bargainID.String() + "/accept", out: &out, mutating: true}); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) ListProductBargains(ctx context.Context, productID uuid.UUID) ([]bargains.BargainDTO, error) {
	var out []bargains.BargainDTO
	err := c.do(ctx, call{method: http.MethodGet, path: "/products/" + productID.String() + "/bargains", out: &out})
	return out, err
}

func (c *Client) MyBargains(ctx context.Context) ([]bargains.BargainDTO, error) {
	var out []bargains.BargainDTO
	err := c.do(ctx, call{method: http.MethodGet, path: "/bargains/mine", out: &out})
	return out, err
}

// DeliveryAvailable reports whether the caller holds an accepted bargain with
// the shop. The server enforces the same rule when an order is created.
func (c *Client) DeliveryAvailable(ctx context.Context, shopID uuid.UUID) (bool, error) {
	mine, err := c.MyBargains(ctx)
	if err != nil {
		return false, err
	}
	for _, b := range mine {
		if b.ShopID == shopID && b.MutuallyAccepted {
			return true, nil
		}
	}
	return false, nil
}
