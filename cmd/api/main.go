package main

import (
	"context"
	"net/http"
	"os"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/hanamaru-app/hanamaru-backend/api/routes"
	internalauth "github.com/hanamaru-app/hanamaru-backend/internal/auth"
	"github.com/hanamaru-app/hanamaru-backend/internal/codes"
	"github.com/hanamaru-app/hanamaru-backend/internal/customers"
	"github.com/hanamaru-app/hanamaru-backend/internal/ledger"
	"github.com/hanamaru-app/hanamaru-backend/internal/products"
	"github.com/hanamaru-app/hanamaru-backend/internal/settlement"
	"github.com/hanamaru-app/hanamaru-backend/internal/stores"
	"github.com/hanamaru-app/hanamaru-backend/pkg/auth/session"
	"github.com/hanamaru-app/hanamaru-backend/pkg/config"
	"github.com/hanamaru-app/hanamaru-backend/pkg/db"
	"github.com/hanamaru-app/hanamaru-backend/pkg/instance"
	"github.com/hanamaru-app/hanamaru-backend/pkg/logger"
	"github.com/hanamaru-app/hanamaru-backend/pkg/metrics"
	"github.com/hanamaru-app/hanamaru-backend/pkg/migrate"
	"github.com/hanamaru-app/hanamaru-backend/pkg/redis"
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

	sessionManager, err := session.NewManager(redisClient, cfg.JWT)
	if err != nil {
		logg.Error(context.Background(), "failed to create session manager", err)
		os.Exit(1)
	}

	promRegistry := prometheus.NewRegistry()
	redemptionMetrics := metrics.NewRedemptionMetrics(promRegistry)

	gormDB := dbClient.DB()

	ledgerService, err := ledger.NewService(ledger.NewRepository(gormDB))
	if err != nil {
		logg.Error(context.Background(), "failed to create ledger service", err)
		os.Exit(1)
	}

	codeRepo := codes.NewRepository(gormDB)
	codeRegistry, err := codes.NewRegistry(codeRepo, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create code registry", err)
		os.Exit(1)
	}
	codeGuard, err := codes.NewGuard(codeRepo)
	if err != nil {
		logg.Error(context.Background(), "failed to create code guard", err)
		os.Exit(1)
	}

	settlementService, err := settlement.NewService(
		dbClient,
		codeRegistry,
		codeGuard,
		ledgerService,
		settlement.NewRepository(gormDB),
		logg,
		redemptionMetrics,
	)
	if err != nil {
		logg.Error(context.Background(), "failed to create settlement service", err)
		os.Exit(1)
	}

	authService, err := internalauth.NewService(
		internalauth.NewRepository(gormDB),
		sessionManager,
		cfg.JWT,
		cfg.Password,
		logg,
	)
	if err != nil {
		logg.Error(context.Background(), "failed to create auth service", err)
		os.Exit(1)
	}

	storeService, err := stores.NewService(stores.NewRepository(gormDB))
	if err != nil {
		logg.Error(context.Background(), "failed to create store service", err)
		os.Exit(1)
	}

	productService, err := products.NewService(products.NewRepository(gormDB))
	if err != nil {
		logg.Error(context.Background(), "failed to create product service", err)
		os.Exit(1)
	}

	customerService, err := customers.NewService(customers.NewRepository(gormDB), ledgerService)
	if err != nil {
		logg.Error(context.Background(), "failed to create customer service", err)
		os.Exit(1)
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":      cfg.App.Env,
		"addr":     addr,
		"instance": instance.GetID(),
	})
	logg.Info(ctx, "starting api server")

	server := &http.Server{
		Addr: addr,
		Handler: routes.NewRouter(routes.Deps{
			Config:      cfg,
			Logger:      logg,
			DB:          dbClient,
			Redis:       redisClient,
			Sessions:    sessionManager,
			Metrics:     promRegistry,
			AuthService: authService,
			Stores:      storeService,
			Products:    productService,
			Customers:   customerService,
			Settlements: settlementService,
		}),
	}

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logg.Error(ctx, "api server stopped unexpectedly", err)
		os.Exit(1)
	}
}
