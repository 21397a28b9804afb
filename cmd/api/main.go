package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/dejobratic/marketplace/internal/config"
	"github.com/dejobratic/marketplace/internal/database"
	idempostgres "github.com/dejobratic/marketplace/internal/idempotency/postgres"
	"github.com/dejobratic/marketplace/internal/inventory"
	inventorypostgres "github.com/dejobratic/marketplace/internal/inventory/postgres"
	"github.com/dejobratic/marketplace/internal/kafka"
	notifpostgres "github.com/dejobratic/marketplace/internal/notifications/postgres"
	"github.com/dejobratic/marketplace/internal/orders/adapters"
	httpadapter "github.com/dejobratic/marketplace/internal/orders/adapters/http"
	orderspostgres "github.com/dejobratic/marketplace/internal/orders/adapters/postgres"
	ordersapp "github.com/dejobratic/marketplace/internal/orders/app"
	ordersmetrics "github.com/dejobratic/marketplace/internal/orders/metrics"
	"github.com/dejobratic/marketplace/internal/orders/ports"
	"github.com/dejobratic/marketplace/internal/telemetry"
	"go.opentelemetry.io/otel"
)

func main() {
	if err := run(); err != nil {
		slog.Error("service failed", "error", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logger := telemetry.NewLogger(parseLogLevel(cfg.Telemetry.LogLevel))
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	tel, err := telemetry.Initialize(ctx, telemetry.Config{
		ServiceName:    cfg.Service.Name,
		ServiceVersion: cfg.Service.Version,
		Environment:    cfg.Service.Environment,
		OTLPEndpoint:   cfg.Telemetry.OTelEndpoint,
		EnableTracing:  cfg.Telemetry.EnableTracing,
		EnableMetrics:  cfg.Telemetry.EnableMetrics,
		SampleRate:     cfg.Telemetry.SampleRate,
	})
	if err != nil {
		return fmt.Errorf("initialize telemetry: %w", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := tel.Shutdown(shutdownCtx); err != nil {
			logger.Error("telemetry shutdown failed", "error", err)
		}
	}()

	pool, err := database.NewPool(ctx, cfg.Database.URL)
	if err != nil {
		return fmt.Errorf("create database pool: %w", err)
	}
	defer pool.Close()

	if cfg.Database.AutoMigrate {
		logger.Info("running database migrations", "path", cfg.Database.MigrationsPath)
		if err := database.RunMigrations(cfg.Database.URL, cfg.Database.MigrationsPath); err != nil {
			return fmt.Errorf("run migrations: %w", err)
		}
		logger.Info("migrations completed successfully")
	}

	meter := otel.Meter("marketplace-api")

	dbMetrics, err := database.NewMetrics(meter)
	if err != nil {
		return fmt.Errorf("create database metrics: %w", err)
	}
	kafkaMetrics, err := kafka.NewMetrics(meter)
	if err != nil {
		return fmt.Errorf("create kafka metrics: %w", err)
	}
	httpMetrics, err := httpadapter.NewMetrics(meter)
	if err != nil {
		return fmt.Errorf("create http metrics: %w", err)
	}
	orderMetrics, err := ordersmetrics.NewMetrics(meter)
	if err != nil {
		return fmt.Errorf("create order metrics: %w", err)
	}

	notifier := notifpostgres.NewStore(pool)

	productStore := inventory.NewLowStockMonitor(inventorypostgres.NewStore(pool), notifier, logger)

	repo := adapters.NewObservableRepository(orderspostgres.NewRepository(pool), dbMetrics)
	idemStore := idempostgres.NewStore(pool)

	var eventBus ports.EventBus = kafka.NewNoopEventBus()
	if len(cfg.Kafka.Brokers) > 0 {
		bus := kafka.NewEventBus(strings.Join(cfg.Kafka.Brokers, ","))
		defer func() {
			if err := bus.Close(); err != nil {
				logger.Error("kafka writer close failed", "error", err)
			}
		}()
		eventBus = bus
	}
	observableBus := adapters.NewObservableEventBus(eventBus, kafkaMetrics)

	service := ordersapp.NewService(
		repo,
		adapters.NewInventoryAdapter(productStore),
		notifier,
		observableBus,
		idemStore,
		logger,
		orderMetrics,
	)
	ordersHandler := httpadapter.NewHandler(service)

	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	mux.HandleFunc("/readyz", func(w http.ResponseWriter, r *http.Request) {
		if err := database.CheckHealth(r.Context(), pool); err != nil {
			respondJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "not ready", "error": err.Error()})
			return
		}
		respondJSON(w, http.StatusOK, map[string]string{"status": "ready"})
	})

	ordersHandler.Register(mux)

	handler := withRecovery(httpadapter.WithMetrics(mux, httpMetrics))

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.HTTP.Port),
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		logger.Info("http server starting", "port", cfg.HTTP.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("http server error", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.HTTP.ShutdownGrace)*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("graceful shutdown: %w", err)
	}
	logger.Info("http server stopped")
	return nil
}

func parseLogLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func withRecovery(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				slog.Error("panic recovered", "error", rec)
				respondJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
			}
		}()
		next.ServeHTTP(w, r)
	})
}

func respondJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
