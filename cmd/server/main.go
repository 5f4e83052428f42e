// Command server wires the registries, the ledger substrate, and the HTTP
// transport. Business logic lives in the internal service packages; main
// only chooses implementations from config and owns the process lifecycle.
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	authzpkg "canopy/internal/authz"
	completioncache "canopy/internal/completion/cache"
	completionhandler "canopy/internal/completion/handler"
	completionservice "canopy/internal/completion/service"
	completionstore "canopy/internal/completion/store"
	foresthandler "canopy/internal/forest/handler"
	forestservice "canopy/internal/forest/service"
	foreststore "canopy/internal/forest/store"
	httpapi "canopy/internal/http"
	identityhandler "canopy/internal/identity/handler"
	identityservice "canopy/internal/identity/service"
	identitystore "canopy/internal/identity/store"
	jwttoken "canopy/internal/jwt_token"
	"canopy/internal/ledger"
	milestonehandler "canopy/internal/milestone/handler"
	milestoneservice "canopy/internal/milestone/service"
	milestonestore "canopy/internal/milestone/store"
	"canopy/internal/platform/config"
	"canopy/internal/platform/httpserver"
	"canopy/internal/platform/logger"
	"canopy/internal/platform/metrics"
	"canopy/internal/platform/postgres"
	platformredis "canopy/internal/platform/redis"
	relationshiphandler "canopy/internal/relationship/handler"
	relationshipservice "canopy/internal/relationship/service"
	relationshipstore "canopy/internal/relationship/store"
	"canopy/pkg/domain"
	auditpublisher "canopy/pkg/platform/audit/publisher"
	auditkafka "canopy/pkg/platform/audit/publishers/kafka"
	auditmemory "canopy/pkg/platform/audit/store/memory"
	auditpostgres "canopy/pkg/platform/audit/store/postgres"
)

func main() {
	cfg := config.FromEnv()
	log := logger.New()

	if err := run(cfg, log); err != nil {
		log.Error("server exited", "error", err)
		os.Exit(1)
	}
}

func run(cfg config.Server, log *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	m := metrics.New()
	seq := ledger.NewSequencer()

	// Store selection: postgres when configured, in-memory otherwise. The
	// ledger substrate follows the same choice so every mutation stays one
	// atomic step.
	var (
		users         identitystore.Store
		relationships relationshipstore.Store
		forests       foreststore.Store
		milestones    milestonestore.Store
		completions   completionstore.Store
		tx            ledger.StoreTx
		health        func() error
		auditSinks    []auditpublisher.Sink
	)
	if cfg.PostgresURL != "" {
		pool, err := postgres.New(ctx, cfg.PostgresURL)
		if err != nil {
			return err
		}
		defer pool.Close()
		users = identitystore.NewPostgres(pool)
		relationships = relationshipstore.NewPostgres(pool)
		forests = foreststore.NewPostgres(pool)
		milestones = milestonestore.NewPostgres(pool)
		completions = completionstore.NewPostgres(pool)
		tx = ledger.NewPgxTx(pool)
		health = func() error { return pool.Ping(context.Background()) }
		auditSinks = append(auditSinks, auditpostgres.New(pool))
		log.Info("using postgres store")
	} else {
		users = identitystore.NewInMemory()
		relationships = relationshipstore.NewInMemory()
		forests = foreststore.NewInMemory()
		milestones = milestonestore.NewInMemory()
		completions = completionstore.NewInMemory()
		tx = ledger.NewSerializedTx()
		auditSinks = append(auditSinks, auditmemory.NewInMemoryStore())
		log.Info("using in-memory store")
	}

	redisClient, err := platformredis.New(cfg.Redis)
	if err != nil {
		return err
	}
	if redisClient != nil {
		defer redisClient.Close()
		completions = completioncache.New(completions, redisClient.Client, completioncache.WithLogger(log))
		log.Info("completion cache enabled")
	}

	if len(cfg.Kafka.Brokers) > 0 {
		kafkaSink, err := auditkafka.New(cfg.Kafka.Brokers, cfg.Kafka.Topic)
		if err != nil {
			return err
		}
		defer kafkaSink.Close()
		auditSinks = append(auditSinks, kafkaSink)
		log.Info("kafka audit sink enabled", "topic", cfg.Kafka.Topic)
	}

	auditor := auditpublisher.NewPublisher(auditSinks,
		auditpublisher.WithAsyncBuffer(256),
		auditpublisher.WithLogger(log),
	)
	defer auditor.Close()

	checker := authzpkg.NewChecker(users, relationships)

	identitySvc := identityservice.New(users, tx,
		identityservice.WithAuditor(auditor), identityservice.WithMetrics(m))
	relationshipSvc := relationshipservice.New(relationships, checker, tx,
		relationshipservice.WithAuditor(auditor), relationshipservice.WithMetrics(m))
	forestSvc := forestservice.New(forests, checker, tx,
		forestservice.WithAuditor(auditor), forestservice.WithMetrics(m))
	milestoneSvc := milestoneservice.New(milestones, forests, checker, tx,
		milestoneservice.WithAuditor(auditor), milestoneservice.WithMetrics(m))

	completionOpts := []completionservice.Option{
		completionservice.WithAuditor(auditor), completionservice.WithMetrics(m),
	}
	if cfg.Owner != "" {
		completionOpts = append(completionOpts, completionservice.WithOwner(domain.UserID(cfg.Owner)))
	}
	completionSvc := completionservice.New(completions, milestones, checker, tx, completionOpts...)

	jwtSvc := jwttoken.NewService(cfg.JWTSigningKey, "canopy", "canopy-api")
	router := httpapi.New(httpapi.Deps{
		Logger:    log,
		Metrics:   m,
		Sequencer: seq,
		Validator: jwttoken.NewServiceAdapter(jwtSvc),
		Health:    health,
	},
		identityhandler.New(identitySvc, log),
		relationshiphandler.New(relationshipSvc, log),
		foresthandler.New(forestSvc, log),
		milestonehandler.New(milestoneSvc, log),
		completionhandler.New(completionSvc, log),
	)

	srv := httpserver.New(cfg.Addr, router)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("starting server", "addr", cfg.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}
