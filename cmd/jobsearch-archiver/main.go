package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/Habebryt/taxlyacademy-jobsearch/internal/archive"
	"github.com/Habebryt/taxlyacademy-jobsearch/internal/config"
	"github.com/Habebryt/taxlyacademy-jobsearch/internal/telemetry"

	"github.com/ClickHouse/clickhouse-go/v2"
	"github.com/joho/godotenv"
	"github.com/nats-io/nats.go"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

func newLogger() (*zap.Logger, error) {
	return zap.NewProduction()
}

func newNATSConnection(cfg *config.Config) (*nats.Conn, error) {
	if cfg.NATSURL == "" {
		return nil, fmt.Errorf("NATS_URL must be set for the archiver")
	}
	opts := []nats.Option{
		nats.Timeout(cfg.NATSConnTimeout),
		nats.Name("jobsearch-archiver"),
		nats.RetryOnFailedConnect(true),
	}
	return nats.Connect(cfg.NATSURL, opts...)
}

func newClickHouseConnection(cfg *config.Config) (clickhouse.Conn, error) {
	return archive.NewClickHouseConn(context.Background(), cfg)
}

func main() {
	_ = godotenv.Load()

	app := fx.New(
		fx.Provide(
			config.Load,
			newLogger,
			newNATSConnection,
			newClickHouseConnection,
			archive.NewStore,
			archive.NewSubscriber,
		),
		fx.Invoke(
			func(cfg *config.Config, lc fx.Lifecycle, logger *zap.Logger) {
				if cfg.OTLPCollectorURL == "" {
					return
				}
				var shutdown func()
				lc.Append(fx.Hook{
					OnStart: func(ctx context.Context) error {
						var err error
						shutdown, err = telemetry.InitTracer(ctx, "jobsearch-archiver", cfg.OTLPCollectorURL)
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
			},
			func(conn clickhouse.Conn, logger *zap.Logger) error {
				return archive.NewMigrator(conn, logger).Run(context.Background())
			},
			func(subscriber *archive.Subscriber, lc fx.Lifecycle) error {
				return subscriber.RegisterSubscriptions(lc)
			},
		),
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
