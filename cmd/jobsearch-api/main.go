package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/Habebryt/taxlyacademy-jobsearch/internal/aggregate"
	"github.com/Habebryt/taxlyacademy-jobsearch/internal/api"
	"github.com/Habebryt/taxlyacademy-jobsearch/internal/archive"
	"github.com/Habebryt/taxlyacademy-jobsearch/internal/cache"
	"github.com/Habebryt/taxlyacademy-jobsearch/internal/cache/memory"
	rediscache "github.com/Habebryt/taxlyacademy-jobsearch/internal/cache/redis"
	"github.com/Habebryt/taxlyacademy-jobsearch/internal/config"
	"github.com/Habebryt/taxlyacademy-jobsearch/internal/geo"
	"github.com/Habebryt/taxlyacademy-jobsearch/internal/normalize"
	"github.com/Habebryt/taxlyacademy-jobsearch/internal/recommend"
	"github.com/Habebryt/taxlyacademy-jobsearch/internal/source"
	"github.com/Habebryt/taxlyacademy-jobsearch/internal/telemetry"

	"github.com/joho/godotenv"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

func newLogger() (*zap.Logger, error) {
	return zap.NewProduction()
}

func newCache(cfg *config.Config) cache.Cache {
	if cfg.RedisAddr == "" {
		return memory.New(cfg.CacheTTL)
	}
	return rediscache.New(cache.Options{
		RedisAddr:     cfg.RedisAddr,
		RedisPassword: cfg.RedisPassword,
		RedisDB:       cfg.RedisDB,
		DefaultTTL:    cfg.CacheTTL,
	})
}

func newAdzuna(cfg *config.Config, logger *zap.Logger, c cache.Cache) *source.AdzunaAdapter {
	return source.NewAdzuna(cfg, logger, c)
}

func newAdapters(cfg *config.Config, logger *zap.Logger, adzuna *source.AdzunaAdapter) []source.Adapter {
	return []source.Adapter{
		adzuna,
		source.NewFindWork(cfg, logger),
		source.NewJooble(cfg, logger),
		source.NewReed(cfg, logger),
		source.NewMuse(cfg, logger),
	}
}

func newAggregator(
	cfg *config.Config,
	logger *zap.Logger,
	adapters []source.Adapter,
	adzuna *source.AdzunaAdapter,
	normalizer *normalize.Normalizer,
	publisher archive.Publisher,
) *aggregate.Aggregator {
	return aggregate.New(cfg, logger, adapters, adzuna, normalizer, publisher)
}

func newRecommender(cfg *config.Config, logger *zap.Logger) *recommend.Recommender {
	return recommend.New(cfg, logger, recommend.DefaultCatalog())
}

func registerTracing(cfg *config.Config, lc fx.Lifecycle, logger *zap.Logger) {
	if cfg.OTLPCollectorURL == "" {
		return
	}

	var shutdown func()
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			var err error
			shutdown, err = telemetry.InitTracer(ctx, "jobsearch-api", cfg.OTLPCollectorURL)
			if err != nil {
				logger.Warn("tracing disabled, collector unreachable", zap.Error(err))
				shutdown = nil
			}
			return nil
		},
		OnStop: func(ctx context.Context) error {
			if shutdown != nil {
				shutdown()
			}
			return nil
		},
	})
}

func registerServer(server *api.Server, lc fx.Lifecycle, logger *zap.Logger) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				if err := server.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					logger.Error("HTTP server failed", zap.Error(err))
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			return server.Shutdown(ctx)
		},
	})
}

func main() {
	_ = godotenv.Load()

	app := fx.New(
		fx.Provide(
			config.Load,
			newLogger,
			newCache,
			newAdzuna,
			newAdapters,
			normalize.New,
			archive.NewPublisher,
			newAggregator,
			newRecommender,
			geo.New,
			api.NewServer,
		),
		fx.Invoke(registerTracing, registerServer),
	)

	startCtx := context.Background()
	if err := app.Start(startCtx); err != nil {
		log.Fatal(err)
	}

	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)
	<-c

	stopCtx := context.Background()
	if err := app.Stop(stopCtx); err != nil {
		log.Fatal(err)
	}
}
