package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/multierr"

	"github.com/wekezahq/coopledger-backend/api/routes"
	"github.com/wekezahq/coopledger-backend/internal/archive"
	"github.com/wekezahq/coopledger-backend/internal/audit"
	"github.com/wekezahq/coopledger-backend/internal/funds"
	"github.com/wekezahq/coopledger-backend/internal/ledger"
	"github.com/wekezahq/coopledger-backend/internal/members"
	"github.com/wekezahq/coopledger-backend/internal/projects"
	"github.com/wekezahq/coopledger-backend/internal/stats"
	"github.com/wekezahq/coopledger-backend/pkg/config"
	"github.com/wekezahq/coopledger-backend/pkg/db"
	"github.com/wekezahq/coopledger-backend/pkg/logger"
	"github.com/wekezahq/coopledger-backend/pkg/metrics"
	"github.com/wekezahq/coopledger-backend/pkg/migrate"
	"github.com/wekezahq/coopledger-backend/pkg/pubsub"
	"github.com/wekezahq/coopledger-backend/pkg/redis"
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
	ledgerMetrics := metrics.NewLedgerMetrics(registry)

	gormDB := dbClient.DB()
	auditRepo := audit.NewRepository(gormDB)
	auditor, err := audit.NewRecorder(auditRepo)
	if err != nil {
		logg.Error(context.Background(), "failed to create audit recorder", err)
		os.Exit(1)
	}
	archiveService, err := archive.NewService(archive.NewRepository(gormDB))
	if err != nil {
		logg.Error(context.Background(), "failed to create archive service", err)
		os.Exit(1)
	}

	statsService, err := stats.NewService(stats.NewRepository(gormDB), redisClient, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create stats service", err)
		os.Exit(1)
	}
	notifier, pubsubClient := buildNotifier(cfg, logg, statsService)
	if pubsubClient != nil {
		defer func() {
			if err := pubsubClient.Close(); err != nil {
				logg.Error(context.Background(), "error closing pubsub client", err)
			}
		}()
	}

	ledgerService, err := ledger.NewService(ledger.ServiceParams{
		Repo:             ledger.NewRepository(gormDB),
		Tx:               dbClient,
		Auditor:          auditor,
		Archive:          archiveService,
		Stats:            notifier,
		Logger:           logg,
		Metrics:          ledgerMetrics,
		ReconcileEpsilon: cfg.Ledger.ReconcileEpsilon,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create ledger service", err)
		os.Exit(1)
	}

	fundRepo := funds.NewRepository(gormDB)
	memberRepo := members.NewRepository(gormDB)

	fundService, err := funds.NewService(fundRepo, dbClient, auditor)
	if err != nil {
		logg.Error(context.Background(), "failed to create fund service", err)
		os.Exit(1)
	}
	memberService, err := members.NewService(memberRepo, dbClient, auditor)
	if err != nil {
		logg.Error(context.Background(), "failed to create member service", err)
		os.Exit(1)
	}
	projectService, err := projects.NewService(projects.NewRepository(gormDB), fundRepo, memberRepo, dbClient, auditor)
	if err != nil {
		logg.Error(context.Background(), "failed to create project service", err)
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
		Handler: routes.NewRouter(routes.Deps{
			Config:   cfg,
			Logger:   logg,
			Registry: registry,
			DB:       dbClient,
			Redis:    redisClient,
			Ledger:   ledgerService,
			Funds:    fundService,
			Members:  memberService,
			Projects: projectService,
			Stats:    statsService,
			Audit:    auditRepo,
			Archive:  archiveService,
		}),
	}

	shutdownCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	serverErr := make(chan error, 1)
	go func() {
		serverErr <- server.ListenAndServe()
	}()

	select {
	case err := <-serverErr:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logg.Error(ctx, "api server stopped unexpectedly", err)
			os.Exit(1)
		}
	case <-shutdownCtx.Done():
		logg.Info(ctx, "shutting down api server")
		timeoutCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()

		err := server.Shutdown(timeoutCtx)
		if drained := <-serverErr; drained != nil && !errors.Is(drained, http.ErrServerClosed) {
			err = multierr.Append(err, drained)
		}
		if err != nil {
			logg.Error(ctx, "api server shutdown failed", err)
			os.Exit(1)
		}
	}
}

// buildNotifier picks how ledger changes reach the stats cache: pubsub
// fan-out when configured, synchronous recompute when pubsub is absent,
// or a no-op when stats are disabled.
func buildNotifier(cfg *config.Config, logg *logger.Logger, statsService stats.Service) (ledger.StatsNotifier, *pubsub.Client) {
	if !cfg.FeatureFlags.StatsNotify {
		return stats.NoopNotifier{}, nil
	}

	if cfg.GCP.ProjectID != "" {
		client, err := pubsub.NewClient(context.Background(), cfg.GCP, cfg.PubSub, logg)
		if err != nil {
			logg.Error(context.Background(), "pubsub unavailable, falling back to inline stats", err)
		} else {
			return stats.NewPublishNotifier(client.LedgerPublisher(), logg), client
		}
	}

	return stats.NewInlineNotifier(statsService, logg), nil
}
