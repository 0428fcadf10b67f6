package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"comercioapp/internal/auth"
	"comercioapp/internal/config"
	"comercioapp/internal/infra"
	"comercioapp/internal/realtime"
	"comercioapp/internal/repository"
	"comercioapp/internal/router"
	"comercioapp/internal/service"
	"comercioapp/internal/worker"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

const version = "1.0.0"

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}

	// Structured logger: dev pretty, prod JSON
	if !cfg.IsProduction() {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
	}

	db, err := infra.NewDatabase(cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to open outbox database")
	}
	outbox := repository.NewMovimientoPendienteRepository(db)

	// Redis is optional: without it the gateway runs with in-memory tokens,
	// no catalog cache and receipts rendered in-process.
	rdb, err := infra.NewRedis(cfg.RedisURL)
	if err != nil {
		log.Warn().Err(err).Msg("redis unavailable, continuing without it")
		rdb = nil
	}
	var tokens auth.TokenStore
	if rdb != nil {
		tokens = auth.NewRedisTokenStore(rdb, cfg.TokenTTL)
	} else {
		tokens = auth.NewMemoryTokenStore(cfg.TokenTTL)
	}

	cb := infra.NewCircuitBreaker(infra.CircuitBreakerConfig{
		FailureThreshold: cfg.APIFailThreshold,
		OpenTimeout:      cfg.APIOpenTimeout,
		OnStateChange: func(from, to infra.CBState) {
			log.Warn().Str("from", from.String()).Str("to", to.String()).Msg("api circuit breaker")
		},
	})
	api := infra.NewAPIClient(cfg.APIBaseURL, cfg.APITimeout, cb, auth.NewContextProvider())

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	metrics := service.NewMetrics(registry)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Receipt and e-mail jobs. Handlers are wired here (composition root).
	dispatcher := worker.NewDispatcher(rdb)
	dispatcher.Handle(worker.JobRecibo, worker.NewReciboWorker(infra.ReciboOptions{
		NombreComercio: cfg.NombreComercio,
		StoragePath:    cfg.ReciboStoragePath,
		QRBaseURL:      cfg.ReciboQRBaseURL,
	}, dispatcher))
	dispatcher.Handle(worker.JobEmail, worker.NewEmailWorker(infra.NewMailer(cfg)))
	dispatcher.StartWorkerPool(ctx, cfg.WorkerPoolSize)

	worker.StartRetryCron(ctx, worker.RetryCronConfig{
		Repo:       outbox,
		SenderPara: worker.SenderPorCaja(api, tokens),
		CB:         cb,
		RDB:        rdb,
		Metrics:    metrics,
		Interval:   cfg.OutboxRetryInterval,
		MaxRetries: cfg.OutboxMaxRetries,
	})

	hub := realtime.NewHub(cfg.Origenes())
	go hub.Run(ctx)

	r := router.New(router.Deps{
		Config:     cfg,
		DB:         db,
		Redis:      rdb,
		API:        api,
		Tokens:     tokens,
		Outbox:     outbox,
		Dispatcher: dispatcher,
		Hub:        hub,
		Registry:   registry,
		Metrics:    metrics,
	})

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      r,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: cfg.WriteTimeout(),
		IdleTimeout:  60 * time.Second,
	}

	if cfg.MDNSEnabled {
		stop, err := infra.AnunciarMDNS(cfg.NombreComercio, cfg.Port, version)
		if err != nil {
			log.Warn().Err(err).Msg("mdns announcement failed")
		} else {
			defer stop()
		}
	}

	// Graceful shutdown on SIGINT / SIGTERM
	go func() {
		log.Info().Str("api", cfg.APIBaseURL).Msgf("comercioapp gateway listening on :%d", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down server…")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("forced shutdown")
	}
	cancel()
	dispatcher.Wait()
	if rdb != nil {
		_ = rdb.Close()
	}
	log.Info().Msg("server exited")
}
