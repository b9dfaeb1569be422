package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/iwvelando/price-sensitivity/internal/engine"
	"github.com/iwvelando/price-sensitivity/internal/fixture"
	"github.com/iwvelando/price-sensitivity/internal/logging"
	"github.com/iwvelando/price-sensitivity/internal/server"
	"github.com/iwvelando/price-sensitivity/pkg/constants"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

const (
	envServerConfig = "PRICING_SERVER_CONFIG"
	envAddress      = "PRICING_ADDRESS"

	shutdownTimeout = 5 * time.Second
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func main() {
	// A missing .env is fine; the environment may already be populated.
	_ = godotenv.Load(".env")

	configLocation := flag.String("config", envOr(envServerConfig, constants.DefaultServerConfigFile), "path to server configuration file")
	addressFlag := flag.String("address", os.Getenv(envAddress), "listen address override")
	logLevel := flag.String("log-level", "", "log level override (debug, info, warn, error)")
	flag.Parse()

	cfg, err := server.LoadConfig(*configLocation)
	if err != nil {
		fmt.Printf("{\"op\": \"main\", \"level\": \"fatal\", \"msg\": \"failed to load server configuration at %s\", \"error\": \"%v\"}\n", *configLocation, err)
		os.Exit(1)
	}
	if *addressFlag != "" {
		cfg.Address = *addressFlag
	}

	logger, err := logging.New(cfg.Logging, *logLevel)
	if err != nil {
		fmt.Printf("{\"op\": \"main\", \"level\": \"fatal\", \"msg\": \"failed to initialize logger\", \"error\": \"%v\"}\n", err)
		os.Exit(1)
	}
	defer func() {
		_ = logger.Sync()
	}()

	table, err := fixture.LoadOrDefault(cfg.Fixtures.Path)
	if err != nil {
		logger.Fatal("failed to load fixtures",
			zap.String("op", "main"),
			zap.String("path", cfg.Fixtures.Path),
			zap.Error(err),
		)
	}
	eng, err := engine.New(table)
	if err != nil {
		logger.Fatal("failed to build pricing engine",
			zap.String("op", "main"),
			zap.Error(err),
		)
	}

	httpServer := &http.Server{
		Addr:              cfg.Address,
		Handler:           server.NewHandler(logger, eng, cfg, version),
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	go func() {
		logger.Info("pricing server listening",
			zap.String("op", "main"),
			zap.String("address", cfg.Address),
			zap.Int("fixturePoints", table.Len()),
			zap.Int("scenarioCapacity", cfg.ScenarioCapacity),
		)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("HTTP server error",
				zap.String("op", "main"),
				zap.Error(err),
			)
			cancel()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down pricing server", zap.String("op", "main"))

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer shutdownCancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown error",
			zap.String("op", "main"),
			zap.Error(err),
		)
	}
}
