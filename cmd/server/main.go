package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"

	"github.com/patrickwarner/adsignal/internal/api"
	"github.com/patrickwarner/adsignal/internal/config"
	"github.com/patrickwarner/adsignal/internal/logic"
	"github.com/patrickwarner/adsignal/internal/observability"
)

func main() {
	cfg := config.Load()

	logger, err := observability.InitLoggerWithService(cfg.ServiceName)
	if err != nil {
		fmt.Fprintf(os.Stderr, "init logger: %v\n", err)
		os.Exit(1)
	}

	defer func() {
		if err := logger.Sync(); err != nil {
			fmt.Fprintf(os.Stderr, "failed to sync logger: %v\n", err)
		}
	}()

	if err := run(logger, cfg); err != nil {
		logger.Error("server error", zap.Error(err))
		os.Exit(1)
	}
}

// buildHandler wires the engine, API server and HTTP instrumentation.
func buildHandler(logger *zap.Logger, cfg config.Config, metrics observability.MetricsRegistry) (http.Handler, *logic.Engine, error) {
	patterns, err := logic.LoadPatterns(cfg.PatternsFile, cfg.StrictParamKeys)
	if err != nil {
		return nil, nil, fmt.Errorf("load patterns: %w", err)
	}
	engine := logic.NewEngine(patterns, logger, metrics)

	srv, err := api.NewServer(logger, engine, metrics, cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("init api: %w", err)
	}
	return otelhttp.NewHandler(srv.Router(), cfg.ServiceName), engine, nil
}

func run(logger *zap.Logger, cfg config.Config) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.TracingEnabled {
		shutdown, err := observability.InitTracing(ctx, logger, observability.TracingConfig{
			ServiceName: cfg.ServiceName,
			Environment: cfg.Environment,
			Endpoint:    cfg.TempoEndpoint,
			SampleRate:  cfg.TracingSampleRate,
		})
		if err != nil {
			return fmt.Errorf("init tracing: %w", err)
		}
		defer shutdown()
	}

	handler, engine, err := buildHandler(logger, cfg, observability.NewPrometheusRegistry())
	if err != nil {
		return err
	}

	if cfg.PatternsFile != "" && cfg.WatchPatterns {
		pw, err := logic.NewPatternsWatcher(cfg.PatternsFile, cfg.StrictParamKeys, engine, logger)
		if err != nil {
			return fmt.Errorf("watch patterns: %w", err)
		}
		go func() {
			if err := pw.Run(ctx); err != nil {
				logger.Warn("patterns watcher stopped", zap.Error(err))
			}
		}()
	}

	addr := ":" + cfg.Port
	srv := &http.Server{
		Addr:         addr,
		Handler:      handler,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}

	logger.Info("adsignal server running",
		zap.String("addr", addr),
		zap.Bool("strict_param_keys", cfg.StrictParamKeys),
		zap.String("patterns_file", cfg.PatternsFile),
		zap.Bool("watch_patterns", cfg.WatchPatterns))

	errCh := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- fmt.Errorf("listen: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
	case err := <-errCh:
		if err != nil {
			return err
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	return nil
}
