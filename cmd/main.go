package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"lifeops/internal/di"
	"lifeops/internal/shared/config"
)

func main() {
	os.Exit(run())
}

func run() int {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "❌ Invalid environment configuration:")
		for _, problem := range config.Problems(err) {
			fmt.Fprintf(os.Stderr, "  - %s\n", problem)
		}
		return 1
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	container, err := di.NewContainer(ctx, cfg, di.Options{})
	cancel()
	if err != nil {
		fmt.Fprintf(os.Stderr, "❌ Failed to initialize application: %v\n", err)
		return 1
	}
	log := container.Logger.WithComponent("server")
	defer func() {
		if err := container.Close(); err != nil {
			log.Errorf("Failed to close resources: %v", err)
		}
	}()

	app := container.BuildApp()

	serverErr := make(chan error, 1)
	go func() {
		log.Infof("🚀 LifeOps API listening on %s (%s)", cfg.Addr(), cfg.Environment)
		serverErr <- app.Listen(cfg.Addr())
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serverErr:
		if err != nil && !errors.Is(err, context.Canceled) {
			log.Errorf("Server failed: %v", err)
			return 1
		}
	case sig := <-quit:
		log.Infof("Received %v, shutting down gracefully", sig)

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := app.ShutdownWithContext(shutdownCtx); err != nil {
			log.Errorf("Server forced to shutdown: %v", err)
		}
	}

	log.Info("✅ Server stopped")
	return 0
}
