package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"

	"github.com/Luiggi-Git/carocha-functions/internal/api"
	"github.com/Luiggi-Git/carocha-functions/internal/config"
	"github.com/Luiggi-Git/carocha-functions/internal/gateway"
	"github.com/Luiggi-Git/carocha-functions/internal/logging"
	"github.com/Luiggi-Git/carocha-functions/internal/observability"
	"github.com/Luiggi-Git/carocha-functions/internal/storage"
)

func main() {
	var (
		port = flag.String("port", "7071", "Server port")
	)
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	logging.Init(cfg.LogLevel)

	store, err := newStore(cfg)
	if err != nil {
		slog.Error("Failed to initialize storage", "backend", cfg.Storage, "error", err)
		os.Exit(1)
	}

	svc, err := gateway.New(gateway.Options{
		Credential:        cfg.Credential,
		Container:         cfg.Container,
		Window:            cfg.GrantWindow(),
		ClockSkewBuffer:   cfg.ClockSkewBuffer(),
		NoClockSkewBuffer: cfg.ClockSkewBufferSeconds == 0,
		ListConcurrency:   cfg.ListConcurrency,
		Store:             store,
	})
	if err != nil {
		slog.Error("Failed to initialize gateway", "error", err)
		os.Exit(1)
	}
	slog.Info("Gateway initialized",
		"account", cfg.Credential.Identity,
		"container", svc.Container(),
		"storage", cfg.Storage,
		"grant_window", cfg.GrantWindow().String())

	e := echo.New()
	e.HideBanner = true

	e.Use(echomiddleware.Logger())
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestIDWithConfig(echomiddleware.RequestIDConfig{
		Generator: uuid.NewString,
	}))
	e.Use(echomiddleware.Secure())
	e.Use(echomiddleware.CORSWithConfig(echomiddleware.CORSConfig{
		AllowOrigins: []string{"*"},
		AllowMethods: []string{http.MethodGet, http.MethodDelete},
	}))

	api.RegisterRoutes(e, svc, observability.NewHealthHandler(svc.Container(), svc.Ready))

	go func() {
		addr := fmt.Sprintf(":%s", *port)
		slog.Info("Starting photogate", "addr", addr, "version", observability.Version)
		if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
			slog.Error("Server startup failed", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	slog.Info("Shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := e.Shutdown(shutdownCtx); err != nil {
		slog.Error("Server shutdown failed", "error", err)
		os.Exit(1)
	}
	slog.Info("Server shutdown complete")
}

func newStore(cfg *config.Config) (storage.ObjectStore, error) {
	switch cfg.Storage {
	case config.StorageMemory:
		slog.Warn("Using in-memory object store; listings and deletes are not persisted")
		return storage.NewMemStore(), nil
	default:
		return storage.NewBlobStore(cfg.Credential, cfg.Container)
	}
}
