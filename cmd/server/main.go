package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"docauth/internal/docauth/authority"
	"docauth/internal/docauth/events"
	docmetrics "docauth/internal/docauth/metrics"
	"docauth/internal/docauth/service"
	"docauth/internal/docauth/store"
	"docauth/internal/docauth/workers/reconciler"
	"docauth/internal/platform/config"
	"docauth/internal/platform/database"
	"docauth/internal/platform/health"
	"docauth/internal/platform/kafka"
	"docauth/internal/platform/kafka/producer"
	"docauth/internal/platform/logger"
)

// main wires high-level dependencies and keeps the process lifecycle small.
// The authentication workflow lives in internal/docauth; this binary exposes
// only operational endpoints (health, metrics).
func main() {
	cfg := config.FromEnv()
	log := logger.New()

	log.Info("initializing docauth",
		"addr", cfg.Addr,
		"environment", cfg.Environment,
	)

	// Record store: Postgres when configured, in-memory otherwise.
	pool, err := database.New(database.Config{
		URL:             cfg.DatabaseURL,
		MaxOpenConns:    database.DefaultConfig().MaxOpenConns,
		MaxIdleConns:    database.DefaultConfig().MaxIdleConns,
		ConnMaxLifetime: database.DefaultConfig().ConnMaxLifetime,
	})
	if err != nil {
		log.Error("database init failed", "error", err)
		os.Exit(1)
	}

	var recordStore store.Store
	if pool != nil {
		recordStore = store.NewPostgres(pool.DB())
		log.Info("using postgres record store")
	} else {
		recordStore = store.NewMemory()
		log.Warn("DATABASE_URL not set, using in-memory record store")
	}

	prod, err := producer.New(producer.Config{
		Brokers:         cfg.KafkaBrokers,
		Acks:            kafka.DefaultProducerConfig().Acks,
		Retries:         kafka.DefaultProducerConfig().Retries,
		DeliveryTimeout: kafka.DefaultProducerConfig().DeliveryTimeout,
	}, log)
	if err != nil {
		log.Error("kafka producer init failed", "error", err)
		os.Exit(1)
	}
	defer prod.Close()

	metrics := docmetrics.New()
	publisher := events.NewKafkaPublisher(prod, events.WithLogger(log))
	authorityClient := authority.NewHTTPClient(cfg.AuthorityBaseURL, cfg.AuthorityAPIKey, cfg.AuthorityTimeout)

	svc, err := service.New(recordStore, authorityClient, publisher,
		service.WithLogger(log),
		service.WithMetrics(metrics),
	)
	if err != nil {
		log.Error("service init failed", "error", err)
		os.Exit(1)
	}
	_ = svc // library-invoked by the embedding transport; constructed here to fail fast on bad wiring

	worker, err := reconciler.New(recordStore, publisher,
		reconciler.WithInterval(cfg.ReconcilerInterval),
		reconciler.WithBatchSize(cfg.ReconcilerBatchSize),
		reconciler.WithLogger(log),
		reconciler.WithMetrics(metrics),
	)
	if err != nil {
		log.Error("reconciler init failed", "error", err)
		os.Exit(1)
	}

	workerCtx, stopWorker := context.WithCancel(context.Background())
	defer stopWorker()
	go func() {
		if err := worker.Start(workerCtx); err != nil && err != context.Canceled {
			log.Error("reconciler stopped", "error", err)
		}
	}()

	// Operational endpoints only; the workflow owns no HTTP surface.
	healthHandler := health.New(cfg.Environment)
	if pool != nil {
		healthHandler.RegisterCheck("database", func() error {
			ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			return pool.Health(ctx)
		})
	}
	kafkaCheck := kafka.NewHealthChecker(cfg.KafkaBrokers)
	healthHandler.RegisterCheck(kafkaCheck.Name(), func() error {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		return kafkaCheck.Check(ctx)
	})

	router := chi.NewRouter()
	healthHandler.Register(router)
	router.Handle("/metrics", promhttp.Handler())

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	log.Info("starting http server", "addr", cfg.Addr)

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	// Graceful shutdown on SIGINT
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt)
	<-quit

	log.Info("shutting down gracefully")
	stopWorker()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Error("graceful shutdown failed", "error", err)
		os.Exit(1)
	}

	log.Info("server stopped")
}
