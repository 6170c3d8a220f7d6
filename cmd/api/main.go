package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/bargen/bargen-backend/api"
	"github.com/bargen/bargen-backend/api/controllers"
	"github.com/bargen/bargen-backend/api/routes"
	"github.com/bargen/bargen-backend/internal/bargains"
	"github.com/bargen/bargen-backend/internal/cart"
	"github.com/bargen/bargen-backend/internal/delivery"
	"github.com/bargen/bargen-backend/internal/messaging"
	"github.com/bargen/bargen-backend/internal/notifications"
	"github.com/bargen/bargen-backend/internal/products"
	"github.com/bargen/bargen-backend/internal/shops"
	"github.com/bargen/bargen-backend/internal/users"
	"github.com/bargen/bargen-backend/internal/wishlist"
	"github.com/bargen/bargen-backend/pkg/auth/session"
	"github.com/bargen/bargen-backend/pkg/config"
	"github.com/bargen/bargen-backend/pkg/db"
	"github.com/bargen/bargen-backend/pkg/deliveryfee"
	"github.com/bargen/bargen-backend/pkg/logger"
	"github.com/bargen/bargen-backend/pkg/metrics"
	"github.com/bargen/bargen-backend/pkg/migrate"
	"github.com/bargen/bargen-backend/pkg/redis"
	"github.com/bargen/bargen-backend/pkg/storage/gcs"
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
		Level:       cfg.App.LogLevel,
		WarnStack:   cfg.App.LogWarnStack,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	dbClient, err := db.New(ctx, cfg.DB, logg)
	requireResource(ctx, logg, "database", err)
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing database", err)
		}
	}()

	err = migrate.MaybeRunDev(ctx, cfg, logg, dbClient)
	requireResource(ctx, logg, "dev migrations", err)

	redisClient, err := redis.New(ctx, cfg.Redis, logg)
	requireResource(ctx, logg, "redis", err)
	defer func() {
		if err := redisClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing redis", err)
		}
	}()

	sessions, err := session.NewManager(redisClient)
	requireResource(ctx, logg, "session manager", err)

	photos, err := gcs.NewClient(ctx, cfg.GCS, cfg.GCP, logg)
	requireResource(ctx, logg, "gcs", err)
	defer func() {
		if err := photos.Close(); err != nil {
			logg.Error(context.Background(), "error closing gcs", err)
		}
	}()

	marketMetrics := metrics.NewMarketplaceMetrics(prometheus.DefaultRegisterer)

	shopRepo := shops.NewRepository(dbClient.DB())
	productRepo := products.NewRepository(dbClient.DB())

	shopService, err := shops.NewService(shopRepo, cfg.Delivery.MaxDistanceKm)
	requireResource(ctx, logg, "shops service", err)

	productService, err := products.NewService(productRepo, shopRepo, photos)
	requireResource(ctx, logg, "products service", err)

	notificationService, err := notifications.NewService(notifications.NewRepository(dbClient.DB()), shopRepo, cfg.Eventing.NotificationsEnabled)
	requireResource(ctx, logg, "notifications service", err)

	insurance, err := cfg.Cart.Options()
	requireResource(ctx, logg, "insurance catalog", err)

	cartService, err := cart.NewService(cart.ServiceParams{
		Repo:          cart.NewRepository(dbClient.DB()),
		Products:      productRepo,
		Shops:         shopRepo,
		Catalog:       cart.NewCatalog(insurance),
		Notifications: notificationService,
		Logger:        logg,
	})
	requireResource(ctx, logg, "cart service", err)

	bargainService, err := bargains.NewService(bargains.ServiceParams{
		Repo:     bargains.NewRepository(dbClient.DB()),
		Products: productRepo,
		Shops:    shopRepo,
		Metrics:  marketMetrics,
		Logger:   logg,
	})
	requireResource(ctx, logg, "bargains service", err)

	messagingService, err := messaging.NewService(messaging.NewRepository(dbClient.DB()), productRepo)
	requireResource(ctx, logg, "messaging service", err)

	wishlistService, err := wishlist.NewService(wishlist.ServiceParams{
		Repo:          wishlist.NewRepository(dbClient.DB()),
		Products:      productService,
		Notifications: notificationService,
		Logger:        logg,
	})
	requireResource(ctx, logg, "wishlist service", err)

	userService, err := users.NewService(users.NewRepository(dbClient.DB()), cfg.Auth.AdminPrincipals)
	requireResource(ctx, logg, "users service", err)

	deliveryService, err := delivery.NewService(delivery.ServiceParams{
		Repo:     delivery.NewRepository(dbClient.DB()),
		Shops:    shopRepo,
		Bargains: bargainService,
		Fees:     deliveryfee.FromConfig(cfg.Delivery),
		Metrics:  marketMetrics,
		Logger:   logg,
	})
	requireResource(ctx, logg, "delivery service", err)

	readiness := map[string]controllers.Pinger{
		"db":    dbClient,
		"redis": redisClient,
	}
	if cfg.GCS.Enabled() {
		readiness["gcs"] = photos
	}

	router := routes.NewRouter(routes.Deps{
		Config:        cfg,
		Logger:        logg,
		Sessions:      sessions,
		Idempotency:   redisClient,
		RateLimits:    redisClient,
		Readiness:     readiness,
		Shops:         shopService,
		Products:      productService,
		Cart:          cartService,
		Bargains:      bargainService,
		Messaging:     messagingService,
		Wishlist:      wishlistService,
		Users:         userService,
		Delivery:      deliveryService,
		Notifications: notificationService,
	})

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	runCtx := logg.WithFields(ctx, map[string]any{
		"env":  cfg.App.Env,
		"addr": addr,
	})
	logg.Info(runCtx, "starting api server")

	if err := api.Serve(runCtx, api.NewServer(addr, router), logg); err != nil {
		logg.Error(runCtx, "api server stopped unexpectedly", err)
		os.Exit(1)
	}
	logg.Info(runCtx, "api server stopped")
}

func requireResource(ctx context.Context, logg *logger.Logger, name string, err error) {
	if err == nil {
		return
	}
	logg.Error(logg.WithField(ctx, "resource", name), "failed to initialize resource", err)
	os.Exit(1)
}
