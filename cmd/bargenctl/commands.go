package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/bargen/bargen-backend/internal/client"
	"github.com/bargen/bargen-backend/internal/messaging"
	"github.com/bargen/bargen-backend/pkg/auth"
	"github.com/bargen/bargen-backend/pkg/auth/session"
	"github.com/bargen/bargen-backend/pkg/config"
	"github.com/bargen/bargen-backend/pkg/enums"
	"github.com/bargen/bargen-backend/pkg/logger"
	"github.com/bargen/bargen-backend/pkg/redis"
	"github.com/bargen/bargen-backend/pkg/types"
)

var errDevOnly = errors.New("token minting is only available when BARGEN_APP_ENV=dev")

func runToken(ctx context.Context, env *cliEnv, args []string) error {
	fs := flag.NewFlagSet("token", flag.ContinueOnError)
	principal := fs.String("principal", "", "principal the token acts as")
	revoke := fs.String("revoke", "", "token id (jti) to revoke instead of minting")
	if err := fs.Parse(args); err != nil {
		return err
	}
	p := types.ParsePrincipal(*principal)
	if p.IsZero() && *revoke == "" {
		return errors.New("-principal or -revoke is required")
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if !cfg.App.IsDev() {
		return errDevOnly
	}

	logg := logger.New(logger.Options{ServiceName: "bargenctl", Level: "warn"})
	redisClient, err := redis.New(ctx, cfg.Redis, logg)
	if err != nil {
		return fmt.Errorf("connect redis: %w", err)
	}
	defer redisClient.Close()

	sessions, err := session.NewManager(redisClient)
	if err != nil {
		return err
	}

	if *revoke != "" {
		if err := sessions.Revoke(ctx, *revoke); err != nil {
			return fmt.Errorf("revoke session: %w", err)
		}
		fmt.Fprintf(env.out, "revoked %s\n", *revoke)
		return nil
	}

	token, claims, err := auth.MintAccessToken(cfg.JWT, time.Now().UTC(), auth.AccessTokenPayload{Principal: p})
	if err != nil {
		return err
	}
	if err := sessions.Register(ctx, claims.ID, p, cfg.JWT.AccessTokenTTL()); err != nil {
		return fmt.Errorf("register session: %w", err)
	}

	fmt.Fprintln(env.out, token)
	return nil
}

func runBrowse(ctx context.Context, env *cliEnv, args []string) error {
	fs := flag.NewFlagSet("browse", flag.ContinueOnError)
	env.bind(fs)
	query := fs.String("q", "", "text to search for")
	condition := fs.String("condition", "", "new or used")
	sortKey := fs.String("sort", "", "price, rating or distance")
	if err := fs.Parse(args); err != nil {
		return err
	}

	q := client.BrowseQuery{Query: *query, Sort: *sortKey}
	if strings.TrimSpace(*condition) != "" {
		c, err := enums.ParseProductCondition(*condition)
		if err != nil {
			return err
		}
		q.Condition = c
	}

	c, err := env.client()
	if err != nil {
		return err
	}
	listings, err := c.BrowseProducts(ctx, q)
	if err != nil {
		return err
	}
	printListings(env.out, listings)
	return nil
}

func runBargain(ctx context.Context, env *cliEnv, args []string) error {
	fs := flag.NewFlagSet("bargain", flag.ContinueOnError)
	env.bind(fs)
	product := fs.String("product", "", "product id")
	price := fs.Int64("price", -1, "desired price in cents")
	note := fs.String("note", "", "optional note for the shopkeeper")
	if err := fs.Parse(args); err != nil {
		return err
	}
	productID, err := parseID("product", *product)
	if err != nil {
		return err
	}
	if *price < 0 {
		return errors.New("-price must not be negative")
	}

	var notePtr *string
	if trimmed := strings.TrimSpace(*note); trimmed != "" {
		notePtr = &trimmed
	}

	c, err := env.client()
	if err != nil {
		return err
	}
	bargain, err := c.SubmitBargain(ctx, productID, *price, notePtr)
	if err != nil {
		return err
	}
	printBargain(env.out, *bargain)
	return nil
}

func runAccept(ctx context.Context, env *cliEnv, args []string) error {
	fs := flag.NewFlagSet("accept", flag.ContinueOnError)
	env.bind(fs)
	id := fs.String("bargain", "", "bargain id")
	if err := fs.Parse(args); err != nil {
		return err
	}
	bargainID, err := parseID("bargain", *id)
	if err != nil {
		return err
	}

	c, err := env.client()
	if err != nil {
		return err
	}
	bargain, err := c.AcceptBargain(ctx, bargainID)
	if err != nil {
		return err
	}
	printBargain(env.out, *bargain)
	return nil
}

func runCart(ctx context.Context, env *cliEnv, args []string) error {
	fs := flag.NewFlagSet("cart", flag.ContinueOnError)
	env.bind(fs)
	if err := fs.Parse(args); err != nil {
		return err
	}

	c, err := env.client()
	if err != nil {
		return err
	}
	total, err := c.GetCartTotal(ctx)
	if err != nil {
		return err
	}
	printCart(env.out, *total)
	return nil
}

func runWatchChat(ctx context.Context, env *cliEnv, args []string) error {
	fs := flag.NewFlagSet("watch-chat", flag.ContinueOnError)
	env.bind(fs)
	product := fs.String("product", "", "product id")
	if err := fs.Parse(args); err != nil {
		return err
	}
	productID, err := parseID("product", *product)
	if err != nil {
		return err
	}

	c, err := env.client()
	if err != nil {
		return err
	}

	seen := make(map[uuid.UUID]struct{})
	sub := c.WatchChat(ctx, productID, func(msgs []messaging.MessageDTO, err error) {
		if err != nil {
			fmt.Fprintf(env.out, "! %s\n", client.UserMessage(err))
			return
		}
		for _, fresh := range unseenMessages(seen, msgs) {
			printMessage(env.out, fresh)
		}
	})
	defer sub.Stop()

	<-ctx.Done()
	return nil
}

func parseID(name, raw string) (uuid.UUID, error) {
	if strings.TrimSpace(raw) == "" {
		return uuid.Nil, fmt.Errorf("-%s is required", name)
	}
	id, err := uuid.Parse(strings.TrimSpace(raw))
	if err != nil {
		return uuid.Nil, fmt.Errorf("-%s: %w", name, err)
	}
	return id, nil
}
