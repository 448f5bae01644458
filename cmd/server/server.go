package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	_ "net/http/pprof"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/janhq/mistralhub/internal/config"
	"github.com/janhq/mistralhub/internal/infrastructure/logger"
	"github.com/janhq/mistralhub/internal/infrastructure/observability"
	"github.com/janhq/mistralhub/internal/interfaces/httpserver"
)

// @title Mistral Hub Relay
// @version 1.0
// @description Streaming chat, vision and document relay for the Mistral API.
// @BasePath /
type Application struct {
	cfg        *config.Config
	httpServer *httpserver.HttpServer
	log        zerolog.Logger
}

func NewApplication(cfg *config.Config, httpServer *httpserver.HttpServer, log zerolog.Logger) *Application {
	return &Application{
		cfg:        cfg,
		httpServer: httpServer,
		log:        log,
	}
}

// Start runs the relay and the metrics/pprof listener until ctx ends or one of them fails.
func (a *Application) Start(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var eg errgroup.Group
	if addr := a.cfg.MetricsAddr(); addr != "" {
		eg.Go(func() error {
			err := a.runMetrics(ctx, addr)
			if err != nil {
				cancel()
			}
			return err
		})
	}
	eg.Go(func() error {
		err := a.httpServer.Run(ctx)
		cancel()
		return err
	})

	return eg.Wait()
}

func (a *Application) runMetrics(ctx context.Context, addr string) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.Handle("/debug/pprof/", http.DefaultServeMux)

	server := &http.Server{Addr: addr, Handler: mux}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.ShutdownTimeout)
		defer cancel()
		_ = server.Shutdown(shutdownCtx)
	}()

	a.log.Info().Str("addr", addr).Msg("metrics server listening")
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func main() {
	loadEnvFiles()

	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	log, err := logger.New(logger.Options{Level: cfg.LogLevel, Format: cfg.LogFormat, File: cfg.LogFile})
	if err != nil {
		panic(err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTelemetry, err := observability.Setup(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("initialize observability")
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		if err := shutdownTelemetry(shutdownCtx); err != nil {
			log.Error().Err(err).Msg("shutdown telemetry")
		}
	}()

	app := CreateApplication(cfg, log)
	if err := app.Start(ctx); err != nil {
		log.Error().Err(err).Msg("application stopped with error")
		return
	}

	log.Info().Msg("application exited cleanly")
}

func loadEnvFiles() {
	paths := []string{".env", "../.env"}
	for _, path := range paths {
		if _, err := os.Stat(path); err == nil {
			if err := godotenv.Overload(path); err != nil {
				fmt.Fprintf(os.Stderr, "warning: failed to load %s: %v\n", path, err)
			}
		}
	}
}
