package client

import (
	"context"
	"time"
)

const (
	ChatPollInterval         = 5 * time.Second
	NotificationPollInterval = 10 * time.Second
	BargainPollInterval      = 5 * time.Second
)

// Handler receives each fetched value, or the error of a failed fetch.
type Handler[T any] func(value T, err error)

// Subscription is a live feed. Stop is idempotent and blocks until polling has
// ended, so the handler is never invoked after it returns. A handler that wants
// to end its own feed should cancel the context it subscribed with instead.
type Subscription interface {
	Stop()
}

// Feed produces values over time until the subscription ends.
type Feed[T any] interface {
	Subscribe(ctx context.Context, handler Handler[T]) Subscription
}

// PollingFeed fetches immediately and then every Interval.
type PollingFeed[T any] struct {
	Interval time.Duration
	Fetch    func(ctx context.Context) (T, error)
}

func (f PollingFeed[T]) Subscribe(ctx context.Context, handler Handler[T]) Subscription {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, cancel := context.WithCancel(ctx)
	sub := &pollingSubscription{cancel: cancel, done: make(chan struct{})}
	go func() {
		defer close(sub.done)
		f.poll(ctx, handler)
	}()
	return sub
}

func (f PollingFeed[T]) poll(ctx context.Context, handler Handler[T]) {
	interval := f.Interval
	if interval <= 0 {
		interval = time.Second
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		value, err := f.Fetch(ctx)
		// Results that race with cancellation are dropped.
		if ctx.Err() != nil {
			return
		}
		handler(value, err)
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

type pollingSubscription struct {
	cancel context.CancelFunc
	done   chan struct{}
}

func (s *pollingSubscription) Stop() {
	s.cancel()
	<-s.done
}
