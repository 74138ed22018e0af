// Command polyarb is the latency-arbitrage detector. It loads configuration,
// validates it, wires dependencies, sets up signal handling, and starts the
// pipeline in the configured mode.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/Healzy1/poly-latency-arb-bot/internal/app"
	"github.com/Healzy1/poly-latency-arb-bot/internal/config"
	"github.com/Healzy1/poly-latency-arb-bot/internal/logging"
)

func main() {
	configPath := flag.String("config", "config.toml", "path to configuration file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config %s: %v\n", *configPath, err)
		os.Exit(1)
	}

	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "invalid configuration: %v\n", err)
		os.Exit(1)
	}

	logger, logCloser, err := logging.New(cfg.LogLevel, cfg.LogFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to set up logging: %v\n", err)
		os.Exit(1)
	}
	if logCloser != nil {
		defer logCloser.Close()
	}

	logger.Info().
		Str("mode", cfg.Mode).
		Str("config", *configPath).
		Msg("latency-arb detector starting")

	application := app.New(cfg, logger)
	defer application.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := application.Run(ctx); err != nil {
		// context.Canceled is expected on clean shutdown.
		if errors.Is(err, context.Canceled) {
			logger.Info().Msg("shut down gracefully")
		} else {
			logger.Error().Err(err).Msg("exited with error")
			os.Exit(1)
		}
	}

	logger.Info().Msg("latency-arb detector stopped")
}
