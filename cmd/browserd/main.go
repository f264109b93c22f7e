package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/proflock/browserd/internal/adapters/agent"
	"github.com/proflock/browserd/internal/adapters/imagegen"
	"github.com/proflock/browserd/internal/adapters/storage"
	"github.com/proflock/browserd/internal/config"
	"github.com/proflock/browserd/internal/core/ports"
	"github.com/proflock/browserd/internal/core/services"
	"github.com/proflock/browserd/pkg/kernel"
	"github.com/rs/cors"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	logger.Info("starting browserd")

	if err := run(logger); err != nil {
		logger.Error("browserd startup failed", "error", err)
		os.Exit(1)
	}
}

func run(logger *slog.Logger) error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle signals
	go func() {
		sig := make(chan os.Signal, 1)
		signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
		<-sig
		logger.Info("shutting down")
		cancel()
	}()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	// Agent backend. A nil provider is valid: jobs are still accepted and
	// degrade to an error status with a fixed diagnostic.
	agentProvider, err := agent.NewProvider(cfg.Agent)
	if err != nil {
		return fmt.Errorf("failed to build agent provider: %w", err)
	}
	if agentProvider == nil {
		logger.Warn("no agent provider configured, jobs will degrade to error")
	} else {
		logger.Info("agent provider ready", "provider", agentProvider.Name(), "model", cfg.Agent.DefaultModel)
	}

	// Artifact store is optional too; frames are best-effort.
	var store ports.ObjectStore
	if supabase := storage.NewSupabaseStore(cfg.Supabase); supabase != nil {
		store = supabase
	} else {
		logger.Warn("supabase storage not configured, frame uploads disabled")
	}

	eventLog := services.NewEventLog(logger)
	registry := services.NewRegistry(logger)
	runner := services.NewRunner(
		logger,
		eventLog,
		agentProvider,
		store,
		imagegen.NewPlaceholderRenderer(),
		cfg.Server.HeartbeatInterval,
	)

	apiServer := kernel.NewServer(logger, registry, runner, eventLog, cfg.Agent.DefaultModel)

	c := cors.New(cors.Options{
		AllowedOrigins:   cfg.Server.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"*"},
		AllowCredentials: true,
	})
	handler := c.Handler(apiServer.Handler())

	httpServer := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.Port),
		Handler: handler,
	}

	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info("starting api server", "addr", httpServer.Addr)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return fmt.Errorf("api server failed: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gCtx.Done()
		logger.Info("shutting down api server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return httpServer.Shutdown(shutdownCtx)
	})

	return g.Wait()
}
