package main

import (
	"context"
	"net/http"
	"os"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/multierr"

	"github.com/tiendazo/storefront-backend/api/controllers"
	"github.com/tiendazo/storefront-backend/api/routes"
	"github.com/tiendazo/storefront-backend/internal/cart"
	checkoutsvc "github.com/tiendazo/storefront-backend/internal/checkout"
	"github.com/tiendazo/storefront-backend/internal/marketplace"
	"github.com/tiendazo/storefront-backend/internal/orders"
	sessionsvc "github.com/tiendazo/storefront-backend/internal/session"
	"github.com/tiendazo/storefront-backend/pkg/backend"
	"github.com/tiendazo/storefront-backend/pkg/config"
	"github.com/tiendazo/storefront-backend/pkg/db"
	"github.com/tiendazo/storefront-backend/pkg/logger"
	"github.com/tiendazo/storefront-backend/pkg/metrics"
	"github.com/tiendazo/storefront-backend/pkg/migrate"
	"github.com/tiendazo/storefront-backend/pkg/redis"
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "storefront-api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "storefront-api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	registry := prometheus.NewRegistry()
	storefrontMetrics := metrics.NewStorefrontMetrics(registry)

	var closers []func() error
	defer func() {
		var closeErr error
		for _, closeFn := range closers {
			closeErr = multierr.Append(closeErr, closeFn())
		}
		if closeErr != nil {
			logg.Error(context.Background(), "error closing clients", closeErr)
		}
	}()

	var checks []controllers.ReadinessCheck

	var redisClient *redis.Client
	if cfg.Redis.URL != "" || cfg.Redis.Address != "" {
		redisClient, err = redis.New(context.Background(), cfg.Redis, logg)
		if err != nil {
			logg.Error(context.Background(), "failed to bootstrap redis", err)
			os.Exit(1)
		}
		closers = append(closers, redisClient.Close)
		checks = append(checks, controllers.ReadinessCheck{Name: "redis", Probe: redisClient.Ping})
	}

	cartStorage, dbClient, err := buildCartStorage(cfg, logg, redisClient)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap cart storage", err)
		os.Exit(1)
	}
	if dbClient != nil {
		closers = append(closers, dbClient.Close)
		checks = append(checks, controllers.ReadinessCheck{Name: "database", Probe: dbClient.Ping})
	}

	sessionStore := sessionsvc.NewMemoryStore()
	if redisClient != nil {
		sessionStore, err = sessionsvc.NewRedisStore(redisClient)
		if err != nil {
			logg.Error(context.Background(), "failed to create session store", err)
			os.Exit(1)
		}
	}
	sessionService, err := sessionsvc.NewService(sessionStore, cfg.Session, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create session service", err)
		os.Exit(1)
	}

	backendClient, err := backend.New(cfg, sessionService, storefrontMetrics, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create backend client", err)
		os.Exit(1)
	}
	checks = append(checks, controllers.ReadinessCheck{Name: "backend", Probe: backendClient.Ping})

	cartService, err := cart.NewService(cartStorage, storefrontMetrics, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create cart service", err)
		os.Exit(1)
	}

	checkoutService, err := checkoutsvc.NewService(cartService, backendClient, cfg.Checkout, cfg.Flags.RecheckStock, storefrontMetrics, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create checkout service", err)
		os.Exit(1)
	}

	marketplaceService, err := marketplace.NewService(backendClient, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create marketplace service", err)
		os.Exit(1)
	}

	ordersService, err := orders.NewService(backendClient, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create orders service", err)
		os.Exit(1)
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":          cfg.App.Env,
		"addr":         addr,
		"cart_storage": cfg.Cart.Storage,
	})
	logg.Info(ctx, "starting storefront api server")

	server := &http.Server{
		Addr: addr,
		Handler: routes.NewRouter(
			cfg,
			logg,
			registry,
			checks,
			backendClient,
			sessionService,
			cartService,
			checkoutService,
			marketplaceService,
			ordersService,
		),
	}

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logg.Error(ctx, "storefront api server stopped unexpectedly", err)
		os.Exit(1)
	}
}

func buildCartStorage(cfg *config.Config, logg *logger.Logger, redisClient *redis.Client) (cart.Storage, *db.Client, error) {
	switch cfg.Cart.Storage {
	case config.CartStorageRedis:
		storage, err := cart.NewRedisStorage(redisClient)
		return storage, nil, err
	case config.CartStoragePostgres:
		var dbClient *db.Client
		var err error
		if cfg.App.IsDev() && cfg.Flags.UseSQLiteForDev {
			dbClient, err = db.NewSQLite(cfg.DB.DSN)
		} else {
			dbClient, err = db.New(context.Background(), cfg.DB, logg)
		}
		if err != nil {
			return nil, nil, err
		}
		if err := migrate.MaybeRunDev(context.Background(), cfg, logg, dbClient); err != nil {
			return nil, nil, err
		}
		storage, err := cart.NewGormStorage(dbClient)
		return storage, dbClient, err
	default:
		return cart.NewMemoryStorage(), nil, nil
	}
}
