package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/bargen/bargen-backend/api"
	"github.com/bargen/bargen-backend/internal/cron"
	"github.com/bargen/bargen-backend/internal/delivery"
	"github.com/bargen/bargen-backend/internal/notifications"
	"github.com/bargen/bargen-backend/pkg/config"
	"github.com/bargen/bargen-backend/pkg/db"
	"github.com/bargen/bargen-backend/pkg/logger"
	"github.com/bargen/bargen-backend/pkg/metrics"
	"github.com/bargen/bargen-backend/pkg/migrate"
	"github.com/bargen/bargen-backend/pkg/redis"
)

const (
	lockKeyFormat            = "bargen:cron-worker:lock:%s"
	notificationCleanupEvery = time.Hour
)

func main() {
	once := flag.Bool("once", false, "run a single tick and exit")
	flag.Parse()

	logg := logger.New(logger.Options{ServiceName: "cron-worker"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	cfg.Service.Kind = "cron-worker"

	logg = logger.New(logger.Options{
		ServiceName: "cron-worker",
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

	lock, err := cron.NewRedisLock(redisClient, lockKey(cfg.App.Env), 0)
	requireResource(ctx, logg, "cron lock", err)

	registry, err := buildRegistry(cfg, logg, dbClient)
	requireResource(ctx, logg, "cron registry", err)

	service, err := cron.NewService(cron.ServiceParams{
		Logger:     logg,
		Registry:   registry,
		Lock:       lock,
		Metrics:    metrics.NewCronJobMetrics(prometheus.DefaultRegisterer),
		Interval:   cfg.Cron.Interval,
		JobTimeout: cfg.Cron.JobTimeout,
	})
	requireResource(ctx, logg, "cron service", err)

	ctx = logg.WithFields(ctx, map[string]any{
		"env":         cfg.App.Env,
		"serviceKind": cfg.Service.Kind,
	})
	if *once {
		if err := service.RunOnce(ctx); err != nil {
			logg.Error(ctx, "cron tick failed", err)
			os.Exit(1)
		}
		return
	}

	if cfg.Cron.MetricsAddr != "" {
		go serveMetrics(ctx, cfg.Cron.MetricsAddr, logg)
	}

	logg.Info(ctx, "starting cron worker")

	if err := service.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logg.Error(ctx, "cron worker stopped unexpectedly", err)
		os.Exit(1)
	}

	logg.Info(ctx, "cron worker shutting down gracefully")
}

func buildRegistry(cfg *config.Config, logg *logger.Logger, dbClient *db.Client) (*cron.Registry, error) {
	registry := cron.NewRegistry()

	cleanup, err := cron.NewNotificationCleanupJob(cron.NotificationCleanupJobParams{
		Logger:     logg,
		DB:         dbClient,
		Repository: notifications.NewRepository(dbClient.DB()),
		Retention:  cfg.Notifications.RetentionDays,
		BatchSize:  cfg.Notifications.CleanupBatchSize,
	})
	if err != nil {
		return nil, err
	}
	if err := registry.Register(cleanup, notificationCleanupEvery); err != nil {
		return nil, err
	}

	assigner, err := delivery.NewAssigner(delivery.AssignerParams{
		DB:        dbClient,
		Repo:      delivery.NewRepository(dbClient.DB()),
		Metrics:   metrics.NewMarketplaceMetrics(prometheus.DefaultRegisterer),
		Logger:    logg,
		BatchSize: cfg.Delivery.AssignmentBatchSize,
	})
	if err != nil {
		return nil, err
	}
	assignment, err := cron.NewDeliveryAssignmentJob(cron.DeliveryAssignmentJobParams{
		Logger:   logg,
		Assigner: assigner,
	})
	if err != nil {
		return nil, err
	}
	if err := registry.Register(assignment, 0); err != nil {
		return nil, err
	}
	return registry, nil
}

func lockKey(env string) string {
	if env == "" {
		env = "local"
	}
	return fmt.Sprintf(lockKeyFormat, env)
}

func requireResource(ctx context.Context, logg *logger.Logger, name string, err error) {
	if err == nil {
		return
	}
	logg.Error(logg.WithField(ctx, "resource", name), "failed to initialize resource", err)
	os.Exit(1)
}

func serveMetrics(ctx context.Context, addr string, logg *logger.Logger) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	if err := api.Serve(ctx, api.NewServer(addr, mux), logg); err != nil {
		logg.Error(ctx, "cron metrics server stopped", err)
	}
}
