package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/angelmondragon/stockroom-backend/api"
	"github.com/angelmondragon/stockroom-backend/api/routes"
	"github.com/angelmondragon/stockroom-backend/internal/alerts"
	"github.com/angelmondragon/stockroom-backend/internal/auth"
	"github.com/angelmondragon/stockroom-backend/internal/billing"
	"github.com/angelmondragon/stockroom-backend/internal/catalog"
	"github.com/angelmondragon/stockroom-backend/internal/dashboard"
	"github.com/angelmondragon/stockroom-backend/internal/inventoryrequests"
	"github.com/angelmondragon/stockroom-backend/internal/orders"
	"github.com/angelmondragon/stockroom-backend/internal/roles"
	"github.com/angelmondragon/stockroom-backend/internal/stock"
	"github.com/angelmondragon/stockroom-backend/internal/users"
	"github.com/angelmondragon/stockroom-backend/pkg/auth/session"
	"github.com/angelmondragon/stockroom-backend/pkg/config"
	"github.com/angelmondragon/stockroom-backend/pkg/db"
	"github.com/angelmondragon/stockroom-backend/pkg/events"
	"github.com/angelmondragon/stockroom-backend/pkg/instance"
	"github.com/angelmondragon/stockroom-backend/pkg/logger"
	"github.com/angelmondragon/stockroom-backend/pkg/metrics"
	"github.com/angelmondragon/stockroom-backend/pkg/migrate"
	"github.com/angelmondragon/stockroom-backend/pkg/redis"
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

	var publisher events.Publisher = events.Nop{}
	if cfg.Kafka.Enabled() {
		publisher = events.NewKafkaPublisher(cfg.Kafka.Brokers, cfg.Kafka.OrdersTopic, cfg.Kafka.WriteTimeout)
		logg.Info(logg.WithField(context.Background(), "topic", cfg.Kafka.OrdersTopic), "kafka publisher enabled")
	}
	defer func() {
		if err := publisher.Close(); err != nil {
			logg.Error(context.Background(), "error closing event publisher", err)
		}
	}()

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	httpMetrics := metrics.NewHTTPMetrics(registry)
	domainMetrics := metrics.NewDomainMetrics(registry)

	sessionManager, err := session.NewManager(redisClient, cfg.JWT)
	must(logg, "session manager", err)

	conn := dbClient.DB()
	userRepo := users.NewRepository(conn)

	usersService, err := users.NewService(userRepo)
	must(logg, "users service", err)

	authService, err := auth.NewService(auth.ServiceParams{
		Store:          redisClient,
		UserRepo:       userRepo,
		SessionManager: sessionManager,
		JWTConfig:      cfg.JWT,
		OTPConfig:      cfg.OTP,
		PasswordConfig: cfg.Password,
		EchoCode:       cfg.App.IsDev(),
		Logger:         logg,
	})
	must(logg, "auth service", err)

	catalogService, err := catalog.NewService(catalog.NewRepository(conn))
	must(logg, "catalog service", err)

	stockService, err := stock.NewService(stock.ServiceParams{
		Repo:          stock.NewRepository(conn),
		Catalog:       catalogService,
		AllowNegative: cfg.Stock.AllowNegative,
		Metrics:       domainMetrics,
	})
	must(logg, "stock service", err)

	billingService, err := billing.NewService(billing.NewRepository(conn), dbClient, domainMetrics)
	must(logg, "billing service", err)

	ordersService, err := orders.NewService(orders.ServiceParams{
		Repo:      orders.NewRepository(conn),
		Tx:        dbClient,
		Catalog:   catalogService,
		Billing:   billingService,
		Stock:     stockService,
		Publisher: publisher,
		Metrics:   domainMetrics,
		Logger:    logg,
	})
	must(logg, "orders service", err)

	alertsService, err := alerts.NewService(alerts.NewRepository(conn), catalogService, stockService)
	must(logg, "alerts service", err)

	dashboardService, err := dashboard.NewService(conn)
	must(logg, "dashboard service", err)

	inventoryService, err := inventoryrequests.NewService(inventoryrequests.NewRepository(conn), dbClient)
	must(logg, "inventory requests service", err)

	rolesService, err := roles.NewService(roles.NewRepository(conn))
	must(logg, "roles service", err)

	handler := routes.NewRouter(cfg, logg, routes.Dependencies{
		DB:                dbClient,
		Redis:             redisClient,
		Sessions:          sessionManager,
		Metrics:           promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		HTTP:              httpMetrics,
		Auth:              authService,
		Users:             usersService,
		Catalog:           catalogService,
		Orders:            ordersService,
		Billing:           billingService,
		Stock:             stockService,
		Dashboard:         dashboardService,
		Alerts:            alertsService,
		InventoryRequests: inventoryService,
		Roles:             rolesService,
	})
	server := api.NewServer(cfg, handler)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx = logg.WithFields(ctx, map[string]any{
		"env":      cfg.App.Env,
		"addr":     server.Addr,
		"instance": instance.GetID(),
	})
	logg.Info(ctx, "starting api server")

	if err := api.Serve(ctx, server, logg); err != nil {
		logg.Error(ctx, "api server stopped unexpectedly", err)
		os.Exit(1)
	}
	logg.Info(ctx, "api server stopped")
}

func must(logg *logger.Logger, component string, err error) {
	if err == nil {
		return
	}
	logg.Error(context.Background(), "failed to create "+component, err)
	os.Exit(1)
}
