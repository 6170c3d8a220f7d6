package client

import (
	"context"

	"github.com/bargen/bargen-backend/internal/bargains"
	"github.com/bargen/bargen-backend/internal/messaging"
	"github.com/bargen/bargen-backend/internal/notifications"
	"github.com/google/uuid"
)

// WatchChat polls the caller's conversation about a product.
func (c *Client) WatchChat(ctx context.Context, productID uuid.UUID, handler Handler[[]messaging.MessageDTO]) Subscription {
	feed := PollingFeed[[]messaging.MessageDTO]{
		Interval: ChatPollInterval,
		Fetch: func(ctx context.Context) ([]messaging.MessageDTO, error) {
			return c.GetChatMessages(ctx, productID)
		},
	}
	return feed.Subscribe(ctx, handler)
}

// WatchNotifications polls the newest page of a shop's notifications.
func (c *Client) WatchNotifications(ctx context.Context, shopID uuid.UUID, handler Handler[*notifications.ListResult]) Subscription {
	feed := PollingFeed[*notifications.ListResult]{
		Interval: NotificationPollInterval,
		Fetch: func(ctx context.Context) (*notifications.ListResult, error) {
			return c.ShopNotifications(ctx, shopID, 0, "")
		},
	}
	return feed.Subscribe(ctx, handler)
}

// WatchBargains polls the bargains on a product visible to the caller.
func (c *Client) WatchBargains(ctx context.Context, productID uuid.UUID, handler Handler[[]bargains.BargainDTO]) Subscription {
	feed := PollingFeed[[]bargains.BargainDTO]{
		Interval: BargainPollInterval,
		Fetch: func(ctx context.Context) ([]bargains.BargainDTO, error) {
			return c.ListProductBargains(ctx, productID)
		},
	}
	return feed.Subscribe(ctx, handler)
}
