// Package main is the entry point for the observation API server.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/cascadiaherp/shellwatch/internal/api"
	"github.com/cascadiaherp/shellwatch/internal/auth"
	"github.com/cascadiaherp/shellwatch/internal/config"
	"github.com/cascadiaherp/shellwatch/internal/db"
	"github.com/cascadiaherp/shellwatch/internal/health"
	"github.com/cascadiaherp/shellwatch/internal/i18n"
	"github.com/cascadiaherp/shellwatch/internal/middleware"
	"github.com/cascadiaherp/shellwatch/internal/observation"
	"github.com/cascadiaherp/shellwatch/internal/species"
	"github.com/cascadiaherp/shellwatch/internal/storage"
)

func main() {
	configPath := flag.String("config", "", "path to YAML config file (environment variables take precedence)")
	help := flag.Bool("help", false, "display help message")
	flag.Parse()

	if *help {
		fmt.Println("Shellwatch API Server")
		fmt.Println()
		fmt.Println("Usage: api [options]")
		fmt.Println()
		fmt.Println("Options:")
		flag.PrintDefaults()
		os.Exit(0)
	}

	// Load .env in development; ignore if absent.
	_ = godotenv.Load()

	cfg, errs := config.Load(*configPath)
	if len(errs) > 0 {
		for _, err := range errs {
			fmt.Fprintf(os.Stderr, "config error: %v\n", err)
		}
		os.Exit(1)
	}

	logger := middleware.NewLogger(cfg.Env)
	slog.SetDefault(logger)

	summary := cfg.LogSummary()
	attrs := make([]any, 0, len(summary)*2)
	for key, value := range summary {
		attrs = append(attrs, key, value)
	}
	logger.Info("configuration loaded", attrs...)

	conn, err := db.Open(context.Background(), cfg.DatabaseURL)
	if err != nil {
		logger.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer func() {
		if err := conn.Close(); err != nil {
			logger.Error("failed to close database", "error", err)
		}
	}()

	bundle, err := i18n.Load()
	if err != nil {
		logger.Error("failed to load translations", "error", err)
		os.Exit(1)
	}
	translator := bundle.Translator(cfg.Locale)

	catalog, err := species.Load()
	if err != nil {
		logger.Error("failed to load species catalog", "error", err)
		os.Exit(1)
	}

	var store *storage.Store
	if cfg.StorageEnabled() {
		store, err = storage.NewStore(storage.StoreConfig{
			BucketName:      cfg.StorageBucketName,
			AccessKeyID:     cfg.StorageAccessKeyID,
			SecretAccessKey: cfg.StorageSecretAccessKey,
			Endpoint:        cfg.StorageEndpoint,
			PublicBaseURL:   cfg.StoragePublicBaseURL,
			MaxSizeMB:       cfg.StorageMaxUploadSizeMB,
		})
		if err != nil {
			logger.Error("failed to configure photo storage", "error", err)
			os.Exit(1)
		}
	} else {
		logger.Warn("photo storage not configured; observation submission is disabled")
	}

	// Metrics registry. The default registry is avoided so tests and
	// multiple instances never collide.
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	httpMetrics := middleware.NewMetrics()
	if err := httpMetrics.Register(registry); err != nil {
		logger.Error("failed to register HTTP metrics", "error", err)
		os.Exit(1)
	}
	obsMetrics := observation.NewMetrics()
	if err := obsMetrics.Register(registry); err != nil {
		logger.Error("failed to register observation metrics", "error", err)
		os.Exit(1)
	}

	var tokens *auth.JWTService
	if cfg.JWTPreviousSecret != "" {
		tokens = auth.NewJWTServiceWithRotation(cfg.JWTSecret, cfg.JWTPreviousSecret)
	} else {
		tokens = auth.NewJWTService(cfg.JWTSecret)
	}

	authService, err := auth.NewService(auth.ServiceConfig{
		Users:  auth.NewPostgresUserRepository(conn, logger),
		Tokens: tokens,
		Logger: logger,
	})
	if err != nil {
		logger.Error("failed to create auth service", "error", err)
		os.Exit(1)
	}

	authHandlers := api.NewAuthHandlers(authService)
	speciesHandlers := api.NewSpeciesHandlers(catalog)

	healthConfig := api.HealthHandlersConfig{DBChecker: health.NewDBChecker(conn)}
	if store != nil {
		healthConfig.StorageChecker = store
	}
	healthHandlers := api.NewHealthHandlers(healthConfig)

	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", healthHandlers.Health)
	mux.HandleFunc("GET /ready", healthHandlers.Ready)
	mux.Handle("GET /metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))

	mux.HandleFunc("POST /auth/signup", authHandlers.SignUp)
	mux.HandleFunc("POST /auth/signin", authHandlers.SignIn)
	mux.HandleFunc("POST /auth/refresh", authHandlers.Refresh)

	mux.HandleFunc("GET /species", speciesHandlers.List)
	mux.HandleFunc("GET /species/{id}", speciesHandlers.Get)

	if store != nil {
		requireAuth := middleware.RequireAuth(tokens)
		obsHandlers, err := api.NewObservationHandlers(api.ObservationHandlersConfig{
			Store:         store,
			Repo:          observation.NewPostgresRepository(conn, logger),
			Catalog:       catalog,
			Translator:    translator,
			Logger:        logger,
			Metrics:       obsMetrics,
			MaxPhotoBytes: int64(cfg.StorageMaxUploadSizeMB) << 20,
		})
		if err != nil {
			logger.Error("failed to create observation handlers", "error", err)
			os.Exit(1)
		}
		mux.Handle("POST /observations", requireAuth(http.HandlerFunc(obsHandlers.Submit)))
		mux.Handle("GET /observations", requireAuth(http.HandlerFunc(obsHandlers.List)))
	}

	// Middleware chain: RequestID -> Logging -> HTTPMetrics -> mux
	handler := middleware.RequestID(
		middleware.Logging(logger)(
			middleware.HTTPMetrics(httpMetrics)(mux)))

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      handler,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("starting server", "port", cfg.Port)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal for graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}

	logger.Info("server stopped")
}
