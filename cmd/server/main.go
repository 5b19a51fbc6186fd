package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	rediscache "github.com/ogurasousui/hr-records/internal/adapters/cache/redis"
	"github.com/ogurasousui/hr-records/internal/adapters/events/kafka"
	"github.com/ogurasousui/hr-records/internal/adapters/http/handler"
	"github.com/ogurasousui/hr-records/internal/adapters/repository/postgres"
	"github.com/ogurasousui/hr-records/internal/core/catalog"
	"github.com/ogurasousui/hr-records/internal/core/employee"
	"github.com/ogurasousui/hr-records/internal/platform/config"
	pg "github.com/ogurasousui/hr-records/internal/platform/db/postgres"
	"github.com/ogurasousui/hr-records/internal/platform/logger"
	"github.com/ogurasousui/hr-records/internal/platform/metrics"
	"github.com/ogurasousui/hr-records/internal/platform/server"
)

const eventSource = "hr-records"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(parseFlags())
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}

	lg, err := logger.New(cfg.Log)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to build logger")
	}

	if err := run(ctx, cfg, lg); err != nil {
		lg.Fatal().Err(err).Msg("server stopped with error")
	}
	lg.Info().Msg("server stopped")
}

func run(ctx context.Context, cfg *config.Config, lg zerolog.Logger) error {
	db, err := pg.Open(ctx, cfg.Database)
	if err != nil {
		return err
	}
	defer db.Close()

	var refs catalog.Repository = postgres.NewCatalogRepository(db.Pool)
	if cfg.Redis.Enabled() {
		client, err := rediscache.NewClient(ctx, cfg.Redis)
		if err != nil {
			return err
		}
		defer func() { _ = client.Close() }()
		refs = rediscache.NewCatalogCache(refs, client, cfg.Redis.TTL, lg)
		lg.Info().Str("addr", cfg.Redis.Addr).Msg("catalog cache enabled")
	}

	opts := []employee.Option{employee.WithLogger(lg)}
	if cfg.Kafka.Enabled() {
		sp, err := kafka.NewSyncProducer(cfg.Kafka)
		if err != nil {
			return err
		}
		publisher := kafka.NewPublisher(sp, cfg.Kafka.Topic, eventSource, lg)
		defer func() { _ = publisher.Close() }()
		opts = append(opts, employee.WithPublisher(publisher))
		lg.Info().Strs("brokers", cfg.Kafka.Brokers).Str("topic", cfg.Kafka.Topic).Msg("employee events enabled")
	}

	synth := employee.NewSynthesizer(cfg.Email.Domains, cfg.Email.MaxCollisions)
	employeeSvc := employee.NewService(postgres.NewEmployeeRepository(db.Pool), refs, synth, nil, db.Tx, opts...)
	catalogSvc := catalog.NewService(refs)

	router := handler.NewRouter(handler.Dependencies{
		Employees: employeeSvc,
		Catalog:   catalogSvc,
		Logger:    lg,
		Metrics:   metrics.New(),
		Pinger:    db,
	})

	return server.New(cfg.Server, router, lg).Run(ctx)
}

func parseFlags() string {
	var configPath string

	flag.StringVar(&configPath, "config", "", "path to config file (defaults to CONFIG_PATH env or assets/local.yaml)")
	flag.Parse()

	_ = godotenv.Load(".env")

	if configPath == "" {
		configPath = os.Getenv("CONFIG_PATH")
	}
	if configPath == "" {
		configPath = "assets/local.yaml"
	}
	return configPath
}
