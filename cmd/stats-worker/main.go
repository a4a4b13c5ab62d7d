package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/wekezahq/coopledger-backend/internal/stats"
	"github.com/wekezahq/coopledger-backend/pkg/config"
	"github.com/wekezahq/coopledger-backend/pkg/db"
	"github.com/wekezahq/coopledger-backend/pkg/logger"
	"github.com/wekezahq/coopledger-backend/pkg/pubsub"
	"github.com/wekezahq/coopledger-backend/pkg/redis"
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "stats-worker"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "stats-worker",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	dbClient, err := db.New(ctx, cfg.DB, logg)
	if err != nil {
		logg.Error(ctx, "failed to bootstrap database", err)
		os.Exit(1)
	}
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing database", err)
		}
	}()

	redisClient, err := redis.New(ctx, cfg.Redis, logg)
	if err != nil {
		logg.Error(ctx, "failed to bootstrap redis", err)
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing redis", err)
		}
	}()

	pubsubClient, err := pubsub.NewClient(ctx, cfg.GCP, cfg.PubSub, logg)
	if err != nil {
		logg.Error(ctx, "failed to bootstrap pubsub", err)
		os.Exit(1)
	}
	defer func() {
		if err := pubsubClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing pubsub client", err)
		}
	}()

	statsService, err := stats.NewService(stats.NewRepository(dbClient.DB()), redisClient, logg)
	if err != nil {
		logg.Error(ctx, "failed to create stats service", err)
		os.Exit(1)
	}

	worker, err := stats.NewWorker(pubsubClient.LedgerSubscription(), statsService, logg)
	if err != nil {
		logg.Error(ctx, "failed to create stats worker", err)
		os.Exit(1)
	}

	ctx = logg.WithField(ctx, "env", cfg.App.Env)
	if err := worker.Run(ctx); err != nil {
		logg.Error(ctx, "stats worker stopped unexpectedly", err)
		os.Exit(1)
	}
	logg.Info(ctx, "stats worker stopped")
}
