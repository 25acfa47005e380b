package main

import (
	"context"
	"net/http"
	"os"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/kayalabs/studiocart-backend/api/controllers"
	"github.com/kayalabs/studiocart-backend/api/routes"
	"github.com/kayalabs/studiocart-backend/internal/admin"
	"github.com/kayalabs/studiocart-backend/internal/cart"
	"github.com/kayalabs/studiocart-backend/internal/documents"
	"github.com/kayalabs/studiocart-backend/internal/profile"
	"github.com/kayalabs/studiocart-backend/pkg/config"
	"github.com/kayalabs/studiocart-backend/pkg/db"
	"github.com/kayalabs/studiocart-backend/pkg/logger"
	"github.com/kayalabs/studiocart-backend/pkg/metrics"
	"github.com/kayalabs/studiocart-backend/pkg/migrate"
	"github.com/kayalabs/studiocart-backend/pkg/redis"
	"github.com/kayalabs/studiocart-backend/pkg/storage/gcs"
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

	redisClient, err := redis.New(context.Background(), cfg.Redis)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap redis", err)
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing redis", err)
		}
	}()

	var gcsPinger controllers.Pinger
	var uploader cart.SketchUploader
	if cfg.GCS.BucketName != "" {
		gcsClient, err := gcs.NewClient(context.Background(), cfg.GCS, cfg.GCP, logg)
		if err != nil {
			logg.Error(context.Background(), "failed to bootstrap gcs", err)
			os.Exit(1)
		}
		gcsPinger = gcsClient
		uploader = gcsClient
	} else {
		logg.Warn(context.Background(), "gcs bucket not configured, sketch uploads disabled")
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	cartMetrics := metrics.NewCartMetrics(registry)

	docsRepo := documents.NewRepository(dbClient.DB())

	mirror, err := cart.NewRedisMirror(redisClient, cfg.Cart.MirrorTTL, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create cart mirror", err)
		os.Exit(1)
	}

	bridge, err := cart.NewBridge(docsRepo, cartMetrics, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create persistence bridge", err)
		os.Exit(1)
	}

	cartService, err := cart.NewService(mirror, bridge, uploader, cartMetrics, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create cart service", err)
		os.Exit(1)
	}

	profileService, err := profile.NewService(cartService, docsRepo, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create profile service", err)
		os.Exit(1)
	}

	adminService, err := admin.NewService(docsRepo, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create admin service", err)
		os.Exit(1)
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":  cfg.App.Env,
		"addr": addr,
	})
	logg.Info(ctx, "starting api server")

	server := &http.Server{
		Addr: addr,
		Handler: routes.NewRouter(cfg, logg, routes.Dependencies{
			DBPinger:       dbClient,
			RedisPinger:    redisClient,
			GCSPinger:      gcsPinger,
			Registry:       registry,
			CartService:    cartService,
			ProfileService: profileService,
			AdminService:   adminService,
		}),
	}

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logg.Error(ctx, "api server stopped unexpectedly", err)
		os.Exit(1)
	}
}
