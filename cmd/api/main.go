package main

import (
	"context"
	"net/http"
	"os"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/tracksplit/tracksplit-backend/api/routes"
	"github.com/tracksplit/tracksplit-backend/internal/disbursement"
	"github.com/tracksplit/tracksplit-backend/internal/notifications"
	"github.com/tracksplit/tracksplit-backend/internal/payments"
	"github.com/tracksplit/tracksplit-backend/internal/splits"
	"github.com/tracksplit/tracksplit-backend/internal/works"
	"github.com/tracksplit/tracksplit-backend/pkg/config"
	"github.com/tracksplit/tracksplit-backend/pkg/db"
	"github.com/tracksplit/tracksplit-backend/pkg/logger"
	"github.com/tracksplit/tracksplit-backend/pkg/metrics"
	"github.com/tracksplit/tracksplit-backend/pkg/migrate"
	"github.com/tracksplit/tracksplit-backend/pkg/outbox"
	"github.com/tracksplit/tracksplit-backend/pkg/redis"
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

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	disbursementMetrics := metrics.NewDisbursementMetrics(registry)

	outboxService := outbox.NewService(outbox.NewRepository(dbClient.DB()), logg)

	splitsRepo := splits.NewRepository(dbClient.DB())
	splitsService, err := splits.NewService(splitsRepo, dbClient, outboxService, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create splits service", err)
		os.Exit(1)
	}

	worksRepo := works.NewRepository(dbClient.DB())
	worksService, err := works.NewService(worksRepo, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create works service", err)
		os.Exit(1)
	}

	cardRail, err := payments.NewCardRail(context.Background(), cfg.Payments, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create card rail", err)
		os.Exit(1)
	}
	chainRail, err := payments.NewChainRail(cfg.Payments, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create chain rail", err)
		os.Exit(1)
	}
	railRouter, err := payments.NewRouter(cfg.Payments.PortTimeout, logg, cardRail, chainRail)
	if err != nil {
		logg.Error(context.Background(), "failed to create rail router", err)
		os.Exit(1)
	}

	disbursementService, err := disbursement.NewService(
		disbursement.NewRepository(dbClient.DB()),
		splitsRepo,
		worksRepo,
		railRouter,
		dbClient,
		outboxService,
		redisClient,
		disbursementMetrics,
		logg,
		cfg.Eventing.PurchaseDedupeTTL,
	)
	if err != nil {
		logg.Error(context.Background(), "failed to create disbursement service", err)
		os.Exit(1)
	}

	notificationsService, err := notifications.NewService(notifications.NewRepository(dbClient.DB()))
	if err != nil {
		logg.Error(context.Background(), "failed to create notifications service", err)
		os.Exit(1)
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	id := os.Getenv("DYNO")
	if id == "" {
		id = "local"
	}
	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":      cfg.App.Env,
		"addr":     addr,
		"instance": id,
	})
	logg.Info(ctx, "starting api server")

	server := &http.Server{
		Addr: addr,
		Handler: routes.NewRouter(
			cfg,
			logg,
			dbClient,
			redisClient,
			registry,
			splitsService,
			worksService,
			disbursementService,
			notificationsService,
		),
	}

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logg.Error(ctx, "api server stopped unexpectedly", err)
		os.Exit(1)
	}
}
