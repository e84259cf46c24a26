package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/angelmondragon/stockroom-backend/internal/alerts"
	"github.com/angelmondragon/stockroom-backend/internal/catalog"
	"github.com/angelmondragon/stockroom-backend/internal/cron"
	"github.com/angelmondragon/stockroom-backend/internal/stock"
	"github.com/angelmondragon/stockroom-backend/internal/users"
	"github.com/angelmondragon/stockroom-backend/pkg/config"
	"github.com/angelmondragon/stockroom-backend/pkg/db"
	"github.com/angelmondragon/stockroom-backend/pkg/instance"
	"github.com/angelmondragon/stockroom-backend/pkg/logger"
	"github.com/angelmondragon/stockroom-backend/pkg/metrics"
	"github.com/angelmondragon/stockroom-backend/pkg/migrate"
	"github.com/angelmondragon/stockroom-backend/pkg/redis"
)

func main() {
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
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	dbClient, err := db.New(context.Background(), cfg.DB, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap database", err)
		os.Exit(1)
	}
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing database", err)
		}
	}()

	if err := migrate.MaybeRunDev(context.Background(), cfg, logg, dbClient); err != nil {
		logg.Error(context.Background(), "failed to run dev migrations", err)
		os.Exit(1)
	}

	redisClient, err := redis.New(context.Background(), cfg.Redis, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap redis", err)
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing redis", err)
		}
	}()

	registry, err := buildRegistry(cfg, logg, dbClient)
	if err != nil {
		logg.Error(context.Background(), "failed to register cron jobs", err)
		os.Exit(1)
	}

	lock, err := cron.NewRedisLock(redisClient, "cron-worker:"+envOrLocal(cfg.App.Env), cfg.Cron.LockTTL)
	if err != nil {
		logg.Error(context.Background(), "failed to create cron lock", err)
		os.Exit(1)
	}

	service, err := cron.NewService(cron.ServiceParams{
		Logger:   logg,
		Registry: registry,
		Lock:     lock,
		Metrics:  metrics.NewCronJobMetrics(prometheus.DefaultRegisterer),
		Interval: cfg.Cron.Interval,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create cron service", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx = logg.WithFields(ctx, map[string]any{
		"env":         cfg.App.Env,
		"serviceKind": cfg.Service.Kind,
		"interval":    cfg.Cron.Interval.String(),
		"instance":    instance.GetID(),
	})
	logg.Info(ctx, "starting cron worker")

	if err := service.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logg.Error(ctx, "cron worker stopped unexpectedly", err)
		os.Exit(1)
	}

	logg.Info(ctx, "cron worker shutting down gracefully")
}

func buildRegistry(cfg *config.Config, logg *logger.Logger, dbClient *db.Client) (*cron.Registry, error) {
	conn := dbClient.DB()

	catalogService, err := catalog.NewService(catalog.NewRepository(conn))
	if err != nil {
		return nil, err
	}
	stockService, err := stock.NewService(stock.ServiceParams{
		Repo:          stock.NewRepository(conn),
		Catalog:       catalogService,
		AllowNegative: cfg.Stock.AllowNegative,
	})
	if err != nil {
		return nil, err
	}
	alertsService, err := alerts.NewService(alerts.NewRepository(conn), catalogService, stockService)
	if err != nil {
		return nil, err
	}

	lowStock, err := cron.NewLowStockAlertJob(logg, alertsService)
	if err != nil {
		return nil, err
	}
	staleLogins, err := cron.NewStaleLoginJob(cron.StaleLoginJobParams{
		Logger:     logg,
		DB:         dbClient,
		Repository: users.NewRepository(conn),
		SessionTTL: cfg.JWT.TokenTTL(),
	})
	if err != nil {
		return nil, err
	}
	return cron.NewRegistry(lowStock, staleLogins)
}

func envOrLocal(env string) string {
	if env == "" {
		return "local"
	}
	return env
}
