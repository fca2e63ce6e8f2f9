package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	"slideforge/internal/api"
	"slideforge/internal/config"
	"slideforge/internal/idempotency"
	"slideforge/internal/images"
	"slideforge/internal/layout"
	"slideforge/internal/outline"
	"slideforge/internal/render"
	"slideforge/internal/storage"
)

func main() {
	cfg := config.MustLoad()
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	store, err := storage.NewLocalStore(cfg.Storage, logger)
	if err != nil {
		logger.Error("init storage", "error", err)
		os.Exit(1)
	}

	var objects *storage.ObjectStore
	if cfg.MinIO.Enabled {
		objects, err = storage.NewObjectStore(cfg.MinIO)
		if err != nil {
			logger.Error("init object store", "error", err)
			os.Exit(1)
		}
		logger.Info("object store ready", "bucket", cfg.MinIO.Bucket)
	}

	catalog := layout.NewCatalog(cfg.Layouts.Path, logger)
	provider := images.NewProvider(cfg.Images, logger)
	outlineService := outline.NewService(cfg.Outline, provider, logger)

	var cache idempotency.Store
	if cfg.Idempotency.Backend == "redis" {
		client := redis.NewClient(&redis.Options{
			Addr: fmt.Sprintf("%s:%d", cfg.Redis.Host, cfg.Redis.Port),
		})
		cache = idempotency.NewRedisStore(client)
		logger.Info("idempotency cache on redis", "addr", client.Options().Addr)
	} else {
		cache = idempotency.NewMemoryStore()
	}

	var assets render.AssetFetcher
	if objects != nil {
		assets = objects
	}
	resolver := render.NewResolver(assets, time.Duration(cfg.Images.TimeoutMS)*time.Millisecond, logger)
	exporter := render.NewExporter(store, render.NewPPTXRenderer(resolver, logger), logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if cfg.Retention.Enabled {
		go store.SweepLoop(ctx,
			time.Duration(cfg.Retention.SweepMinutes)*time.Minute,
			time.Duration(cfg.Retention.Days)*24*time.Hour,
		)
	}

	router := api.NewRouter(logger)
	api.RegisterRoutes(router, cfg, store, objects, catalog, outlineService, exporter, cache, logger)

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.API.Port),
		Handler: router,
	}

	go func() {
		logger.Info("api listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server failed", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed", "error", err)
	}
}
