// main wires the registry's dependencies and keeps the server lifecycle small.
// Business logic lives in the internal services packages.
package main

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	_ "github.com/lib/pq"
	"golang.org/x/sync/errgroup"

	httpapi "vouch/internal/http"
	identitystore "vouch/internal/identity/store"
	"vouch/internal/platform/clock"
	"vouch/internal/platform/config"
	"vouch/internal/platform/httpserver"
	"vouch/internal/platform/logger"
	"vouch/internal/platform/metrics"
	platformredis "vouch/internal/platform/redis"
	"vouch/internal/platform/token"
	"vouch/internal/registry"
	"vouch/internal/registry/handler"
	verificationstore "vouch/internal/verification/store"
	verifierstore "vouch/internal/verifier/store"
	id "vouch/pkg/domain"
	audit "vouch/pkg/platform/audit"
	auditkafka "vouch/pkg/platform/audit/kafka"
	"vouch/pkg/platform/audit/publisher"
	auditmemory "vouch/pkg/platform/audit/store/memory"
	auditpostgres "vouch/pkg/platform/audit/store/postgres"
	auditredis "vouch/pkg/platform/audit/store/redis"
)

func main() {
	cfg := config.FromEnv()
	log := logger.New(slog.LevelInfo)

	if err := run(cfg, log); err != nil {
		log.Error("server exited", "error", err)
		os.Exit(1)
	}
}

func run(cfg config.Server, log *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	m := metrics.New()
	logical := clock.NewLogical()
	health := map[string]httpapi.HealthCheck{}

	// Audit pipeline: the in-memory store is the system of record; configured
	// external sinks receive a best-effort mirror of the stream.
	var sinks []audit.Appender

	if cfg.RedisURL != "" {
		redisClient, err := platformredis.New(cfg.RedisURL)
		if err != nil {
			return err
		}
		defer redisClient.Close()
		sinks = append(sinks, auditredis.New(redisClient.Client))
		health["redis"] = redisClient.Health
		log.Info("audit sink enabled", "sink", "redis")
	}

	if cfg.PostgresDSN != "" {
		db, err := sql.Open("postgres", cfg.PostgresDSN)
		if err != nil {
			return err
		}
		defer db.Close()
		pgStore := auditpostgres.New(db)
		if err := pgStore.Migrate(ctx); err != nil {
			return err
		}
		sinks = append(sinks, pgStore)
		health["postgres"] = db.PingContext
		log.Info("audit sink enabled", "sink", "postgres")
	}

	if len(cfg.KafkaBrokers) > 0 {
		kafkaPub, err := auditkafka.New(ctx, cfg.KafkaBrokers, cfg.KafkaTopic)
		if err != nil {
			return err
		}
		defer kafkaPub.Close()
		sinks = append(sinks, kafkaPub)
		log.Info("audit sink enabled", "sink", "kafka", "topic", cfg.KafkaTopic)
	}

	auditStore := audit.NewFanoutStore(auditmemory.NewInMemoryStore(), log, sinks...)

	pubOpts := []publisher.Option{publisher.WithLogger(log)}
	if cfg.AuditBuffer > 0 {
		pubOpts = append(pubOpts, publisher.WithAsyncBuffer(cfg.AuditBuffer))
	}
	auditPub := publisher.NewPublisher(auditStore, pubOpts...)
	defer auditPub.Close()

	service := registry.New(
		id.Principal(cfg.OwnerPrincipal),
		identitystore.NewInMemory(),
		verifierstore.NewInMemory(),
		verificationstore.NewInMemory(),
		auditPub,
		registry.WithLogger(log),
		registry.WithMetrics(m),
	)

	tokens := token.NewService(cfg.JWTSigningKey, "vouch")
	router := httpapi.NewRouter(httpapi.Deps{
		Handler: handler.New(service, log),
		Tokens:  tokens,
		Clock:   logical,
		Metrics: m,
		Logger:  log,
		Health:  health,
	})

	srv := httpserver.New(cfg.Addr, router)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("starting registry server", "addr", cfg.Addr, "owner", cfg.OwnerPrincipal)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	return g.Wait()
}
