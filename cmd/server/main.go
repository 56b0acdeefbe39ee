// cmd/server/main.go
package main

import (
	"context"
	"errors"
	"flag"
	"math/rand/v2"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/opd-ai/go-planet-protector/pkg/config"
	"github.com/opd-ai/go-planet-protector/pkg/engine"
	"github.com/opd-ai/go-planet-protector/pkg/event"
	"github.com/opd-ai/go-planet-protector/pkg/health"
	"github.com/opd-ai/go-planet-protector/pkg/logging"
	"github.com/opd-ai/go-planet-protector/pkg/network"
	"github.com/opd-ai/go-planet-protector/pkg/render"
)

func main() {
	logger := logging.NewLogger()
	ctx := logging.WithCorrelationID(context.Background(), logging.GenerateCorrelationID())

	configPath := flag.String("config", "config.json", "Path to configuration file")
	createDefault := flag.Bool("default", false, "Create default configuration file")
	seed := flag.Uint64("seed", 0, "Random seed (0 uses PLANET_SEED or the clock)")
	autoUpgrade := flag.Bool("auto-upgrade", true, "Buy weapon upgrades whenever affordable")
	maxTicks := flag.Uint64("ticks", 0, "Stop after this many ticks (0 uses loop.maxTicks)")
	flag.Parse()

	if *createDefault {
		if err := config.SaveConfig(config.DefaultConfig(), *configPath); err != nil {
			logger.Error(ctx, "Failed to create default configuration", err,
				"config_path", *configPath,
			)
			os.Exit(1)
		}
		logger.Info(ctx, "Created default configuration file",
			"config_path", *configPath,
		)
		return
	}

	gameConfig, err := loadGameConfig(ctx, logger, *configPath)
	if err != nil {
		logger.Error(ctx, "Failed to load configuration", err, "config_path", *configPath)
		os.Exit(1)
	}
	if *maxTicks > 0 {
		gameConfig.Loop.MaxTicks = *maxTicks
	}

	envConfig, err := config.LoadConfigFromEnv()
	if err != nil {
		logger.Error(ctx, "Invalid environment configuration", err)
		os.Exit(1)
	}

	if *seed == 0 {
		*seed = envConfig.Seed
	}
	if *seed == 0 {
		*seed = uint64(time.Now().UnixNano())
	}

	bus := event.NewEventBus()
	session, err := engine.NewSession(gameConfig, rand.New(rand.NewPCG(*seed, *seed)), bus, logger)
	if err != nil {
		logger.Error(ctx, "Failed to create session", err)
		os.Exit(1)
	}
	logger.Info(ctx, "Session created",
		"seed", *seed,
		"auto_upgrade", *autoUpgrade,
		"spectators", gameConfig.Spectator.Enabled,
	)

	var presenter engine.Presenter = render.NewNullPresenter(logger, true)
	if *autoUpgrade {
		presenter = render.NewAutoUpgrader(presenter, session)
	}

	var server *network.SpectatorServer
	if gameConfig.Spectator.Enabled {
		server, err = startSpectatorServer(gameConfig, envConfig, session, bus, logger)
		if err != nil {
			logger.Error(ctx, "Failed to start spectator server", err)
			os.Exit(1)
		}
	}

	runCtx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	runErr := session.Run(runCtx, presenter)

	stats := session.Stats()
	logger.Info(ctx, "Session finished",
		"reason", stats.EndReason,
		"ticks", stats.Ticks,
		"kills", stats.Kills,
		"credited", stats.Credited,
		"upgrades", stats.Upgrades,
	)

	if server != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), envConfig.ShutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error(ctx, "Spectator server shutdown failed", err)
		}
	}

	if runErr != nil && !errors.Is(runErr, context.Canceled) {
		logger.Error(ctx, "Session failed", runErr)
		os.Exit(1)
	}
}

// loadGameConfig reads path, falling back to defaults when it does not
// exist, and applies PLANET_* overrides.
func loadGameConfig(ctx context.Context, logger *logging.Logger, path string) (*config.GameConfig, error) {
	var gameConfig *config.GameConfig
	if _, err := os.Stat(path); os.IsNotExist(err) {
		logger.Info(ctx, "Configuration file not found, using default configuration",
			"config_path", path,
		)
		gameConfig = config.DefaultConfig()
	} else {
		gameConfig, err = config.LoadConfig(path)
		if err != nil {
			return nil, err
		}
	}

	if err := config.ApplyEnvironmentOverrides(gameConfig); err != nil {
		return nil, logging.WrapError(err, "failed to apply environment configuration")
	}
	return gameConfig, nil
}

// startSpectatorServer serves the live feed with health probes alongside
func startSpectatorServer(gameConfig *config.GameConfig, envConfig *config.EnvironmentConfig,
	session *engine.Session, bus *event.Bus, logger *logging.Logger) (*network.SpectatorServer, error) {
	hub := network.NewSpectatorHub(envConfig, gameConfig.Spectator.BroadcastEvery, logger)
	hub.Attach(bus)
	server := network.NewSpectatorServer(envConfig, hub, logger)

	checker := health.NewHealthChecker()
	checker.AddCheck(health.NewSessionHealthCheck(session.IsRunning))
	checker.AddCheck(health.NewLoopHealthCheck(session.LastTickAt, envConfig.StallTimeout))
	checker.AddCheck(health.NewListenerHealthCheck(server.Addr, server.Running))
	checker.Register(server)

	if err := server.StartOn(config.SpectatorAddress(gameConfig, envConfig)); err != nil {
		return nil, err
	}
	return server, nil
}
