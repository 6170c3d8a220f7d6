package client

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	"github.com/bargen/bargen-backend/internal/messaging"
	"github.com/bargen/bargen-backend/internal/notifications"
	"github.com/bargen/bargen-backend/internal/wishlist"
	"github.com/bargen/bargen-backend/pkg/types"
	"github.com/google/uuid"
)

type sendMessageRequest struct {
	To        types.Principal `json:"to"`
	Content   string          `json:"content"`
	ProductID uuid.UUID       `json:"productId"`
}

func (c *Client) SendMessage(ctx context.Context, to types.Principal, content string, productID uuid.UUID) (*messaging.MessageDTO, error) {
	var out messaging.MessageDTO
	req := sendMessageRequest{To: to, Content: content, ProductID: productID}
	if err := c.do(ctx, call{method: http.MethodPost, path: "/messages", body: req, out: &out, mutating: true}); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) GetChatMessages(ctx context.Context, productID uuid.UUID) ([]messaging.MessageDTO, error) {
	var out []messaging.MessageDTO
	err := c.do(ctx, call{method: http.MethodGet, path: "/products/" + productID.String() + "/messages", out: &out})
	return out, err
}

func (c *Client) ListThreads(ctx context.Context) ([]messaging.ThreadDTO, error) {
	var out []messaging.ThreadDTO
	err := c.do(ctx, call{method: http.MethodGet, path: "/messages/threads", out: &out})
	return out, err
}

func (c *Client) Like(ctx context.Context, productID uuid.UUID) error {
	return c.do(ctx, call{method: http.MethodPut, path: "/wishlist/" + productID.String(), mutating: true})
}

func (c *Client) Unlike(ctx context.Context, productID uuid.UUID) error {
	return c.do(ctx, call{method: http.MethodDelete, path: "/wishlist/" + productID.String(), mutating: true})
}

func (c *Client) HasLiked(ctx context.Context, productID uuid.UUID) (bool, error) {
	var out wishlist.LikedDTO
	if err := c.do(ctx, call{method: http.MethodGet, path: "/wishlist/" + productID.String(), out: &out}); err != nil {
		return false, err
	}
	return out.Liked, nil
}

func (c *Client) GetWishlist(ctx context.Context) ([]wishlist.WishlistItemDTO, error) {
	var out []wishlist.WishlistItemDTO
	err := c.do(ctx, call{method: http.MethodGet, path: "/wishlist", out: &out})
	return out, err
}

// ShopNotifications pages through a shop's notifications, newest first. A zero
// limit uses the server default.
func (c *Client) ShopNotifications(ctx context.Context, shopID uuid.UUID, limit int, cursor string) (*notifications.ListResult, error) {
	query := url.Values{}
	if limit > 0 {
		query.Set("limit", strconv.Itoa(limit))
	}
	if cursor != "" {
		query.Set("cursor", cursor)
	}
	var out notifications.ListResult
	if err := c.do(ctx, call{method: http.MethodGet, path: "/shops/" + shopID.String() + "/notifications", query: query, out: &out}); err != nil {
		return nil, err
	}
	return &out, nil
}
