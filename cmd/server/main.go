// Package main is the entry point for the AI orchestration server.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/flowboard/aicore"
	"github.com/flowboard/aicore/internal/api"
	"github.com/flowboard/aicore/internal/config"
	"github.com/flowboard/aicore/internal/feature"
	"github.com/flowboard/aicore/internal/observability"
	"github.com/flowboard/aicore/internal/secret"
	"github.com/flowboard/aicore/pkg/provider"
	"github.com/flowboard/aicore/providers/anthropic"
	"github.com/flowboard/aicore/providers/offline"
)

const secretCacheTTL = 5 * time.Minute

var factories = map[string]provider.Factory{
	anthropic.ProviderName: anthropic.NewFromConfig,
	offline.ProviderName:   offline.NewFromConfig,
}

func main() {
	configPath := flag.String("config", "config/config.yaml", "path to configuration file")
	flag.Parse()

	cfg, err := config.LoadFromFile(*configPath)
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg.Logging.Level, cfg.Logging.Format, os.Stdout)
	slog.SetDefault(logger)
	logger.Info("starting aicore server", "version", aicore.Version)

	secrets := buildSecretManager(logger)
	defer secrets.Close()

	client, err := buildClient(cfg, secrets, logger)
	if err != nil {
		logger.Error("failed to initialize AI client", "error", err)
		os.Exit(1)
	}
	defer client.Close()

	deps := feature.Deps{
		AI:     client,
		Store:  feature.NewMemoryStore(),
		Logger: logger,
	}
	handler := api.NewHandler(client, deps, logger)

	mux := http.NewServeMux()
	handler.RegisterRoutes(mux)
	if cfg.Metrics.Enabled {
		mux.Handle("GET "+cfg.Metrics.Path, promhttp.Handler())
	}

	var httpHandler http.Handler = mux
	httpHandler = api.AccessLog(logger, httpHandler)
	httpHandler = observability.RequestIDMiddleware(httpHandler)

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      httpHandler,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	go func() {
		logger.Info("server listening", "port", cfg.Server.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown error", "error", err)
	}
	logger.Info("server stopped")
}

func buildSecretManager(logger *slog.Logger) *secret.Manager {
	m := secret.NewManager()
	m.Register("env", secret.NewEnvSource())

	if addr := os.Getenv("VAULT_ADDR"); addr != "" {
		vault, err := secret.NewVaultSource(secret.VaultConfig{
			Address: addr,
			Token:   os.Getenv("VAULT_TOKEN"),
		})
		if err != nil {
			logger.Warn("vault source unavailable", "error", err)
		} else {
			m.Register("vault", secret.NewCachedSource(vault, secretCacheTTL))
		}
	}
	return m
}

// buildClient resolves the provider credential and constructs the AI
// client. A missing credential disables the AI subsystem instead of
// failing startup.
func buildClient(cfg *config.Config, secrets *secret.Manager, logger *slog.Logger) (*aicore.Client, error) {
	enabled := cfg.AI.Enabled

	var apiKey string
	if enabled && cfg.AI.Provider.APIKey != "" {
		resolved, err := secrets.Resolve(context.Background(), cfg.AI.Provider.APIKey)
		if err != nil {
			logger.Warn("provider credential unavailable, AI features disabled", "error", err)
			enabled = false
		}
		apiKey = resolved
	}

	var prov provider.Provider
	if enabled {
		factory, ok := factories[cfg.AI.Provider.Type]
		if !ok {
			return nil, fmt.Errorf("unknown provider type %q", cfg.AI.Provider.Type)
		}
		p, err := factory(provider.Config{
			Name:            cfg.AI.Provider.Type,
			Type:            cfg.AI.Provider.Type,
			APIKey:          apiKey,
			BaseURL:         cfg.AI.Provider.BaseURL,
			Model:           cfg.AI.Provider.Model,
			Timeout:         cfg.AI.Timeout,
			MaxOutputTokens: cfg.AI.MaxOutputTokens,
		})
		if err != nil {
			return nil, fmt.Errorf("create provider: %w", err)
		}
		prov = p
		logger.Info("provider registered", "name", prov.Name())
	} else {
		logger.Info("AI features disabled")
	}

	return aicore.New(
		aicore.WithProvider(prov),
		aicore.WithEnabled(enabled),
		aicore.WithTimeout(cfg.AI.Timeout),
		aicore.WithDailyQuota(cfg.AI.DailyQuota),
		aicore.WithConcurrency(cfg.AI.MaxConcurrent),
		aicore.WithLogger(logger),
	)
}
