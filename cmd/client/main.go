// cmd/client/main.go
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"math/rand/v2"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/EngoEngine/engo"
	"golang.org/x/term"

	"github.com/opd-ai/go-planet-protector/pkg/audio"
	"github.com/opd-ai/go-planet-protector/pkg/config"
	"github.com/opd-ai/go-planet-protector/pkg/engine"
	"github.com/opd-ai/go-planet-protector/pkg/event"
	"github.com/opd-ai/go-planet-protector/pkg/logging"
	"github.com/opd-ai/go-planet-protector/pkg/network"
	"github.com/opd-ai/go-planet-protector/pkg/render"
	engorender "github.com/opd-ai/go-planet-protector/pkg/render/engo"
)

func main() {
	configPath := flag.String("config", "config.json", "Path to configuration file")
	createDefault := flag.Bool("default", false, "Create default configuration file")
	renderer := flag.String("renderer", "", "Renderer type: 'terminal', 'engo' or 'null' (default: terminal on a tty, else null)")
	seed := flag.Uint64("seed", 0, "Random seed (0 uses PLANET_SEED or the clock)")
	spectate := flag.String("spectate", "", "Follow a server's spectator feed instead of playing, e.g. ws://localhost:8080/ws")
	logPath := flag.String("log", "planet-protector.log", "Log file used while the terminal renderer owns the screen")
	flag.Parse()

	if *renderer == "" {
		*renderer = defaultRenderer()
	}

	// The terminal renderer owns stdout, so logs go to a file
	logger := logging.NewLogger()
	if *renderer == "terminal" && *spectate == "" {
		fileLogger, closer, err := logging.OpenLogFile(*logPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "failed to open log file: %v\n", err)
			os.Exit(1)
		}
		defer closer.Close()
		logger = fileLogger
	}
	ctx := logging.WithCorrelationID(context.Background(), logging.GenerateCorrelationID())

	if *createDefault {
		if err := config.SaveConfig(config.DefaultConfig(), *configPath); err != nil {
			logger.Error(ctx, "Failed to create default configuration", err, "config_path", *configPath)
			os.Exit(1)
		}
		logger.Info(ctx, "Created default configuration file", "config_path", *configPath)
		return
	}

	envConfig, err := config.LoadConfigFromEnv()
	if err != nil {
		logger.Error(ctx, "Invalid environment configuration", err)
		os.Exit(1)
	}

	runCtx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if *spectate != "" {
		if err := followFeed(runCtx, envConfig, *spectate, logger); err != nil {
			logger.Error(ctx, "Spectating failed", err, "url", *spectate)
			os.Exit(1)
		}
		return
	}

	gameConfig, err := loadGameConfig(ctx, logger, *configPath)
	if err != nil {
		logger.Error(ctx, "Failed to load configuration", err, "config_path", *configPath)
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

	player := audio.NewPlayer(gameConfig.Audio, logger)
	if err := player.Init(); err != nil {
		logger.Warn(ctx, "Audio unavailable, continuing without sound", "error", err.Error())
	} else {
		player.Attach(bus)
	}
	defer player.Close()

	logger.Info(ctx, "Starting game", "renderer", *renderer, "seed", *seed)

	switch *renderer {
	case "engo":
		err = runEngo(runCtx, session, gameConfig, logger)
	case "null":
		err = session.Run(runCtx, render.NewNullPresenter(logger, true))
	case "terminal":
		err = runTerminal(runCtx, session, gameConfig, logger)
	default:
		err = fmt.Errorf("unknown renderer %q", *renderer)
	}

	printSummary(session.Stats())

	if err != nil && !errors.Is(err, context.Canceled) {
		logger.Error(ctx, "Game failed", err)
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

// defaultRenderer picks the terminal when stdout is a tty
func defaultRenderer() string {
	if term.IsTerminal(int(os.Stdout.Fd())) {
		return "terminal"
	}
	return "null"
}

// loadGameConfig reads path, falling back to defaults when it does not
// exist, and applies PLANET_* overrides.
func loadGameConfig(ctx context.Context, logger *logging.Logger, path string) (*config.GameConfig, error) {
	var gameConfig *config.GameConfig
	if _, err := os.Stat(path); os.IsNotExist(err) {
		logger.Info(ctx, "Configuration file not found, using default configuration", "config_path", path)
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

func runTerminal(ctx context.Context, session *engine.Session, gameConfig *config.GameConfig, logger *logging.Logger) error {
	presenter, err := render.NewTerminal(render.TerminalOptions{
		WorldWidth:     float64(gameConfig.Window.Width),
		WorldHeight:    float64(gameConfig.Window.Height),
		UpgradeControl: session.UpgradeControl(),
	}, logger)
	if err != nil {
		return err
	}
	defer presenter.Close()

	return session.Run(ctx, presenter)
}

func runEngo(ctx context.Context, session *engine.Session, gameConfig *config.GameConfig, logger *logging.Logger) error {
	scene := engorender.NewGameScene(ctx, session, gameConfig.Assets, logger)
	engo.Run(engorender.RunOptions(gameConfig), scene)
	return scene.Err()
}

// followFeed prints one line per snapshot until the feed ends
func followFeed(ctx context.Context, envConfig *config.EnvironmentConfig, url string, logger *logging.Logger) error {
	client := network.NewSpectatorClient(envConfig, logger)
	if err := client.Connect(ctx, url); err != nil {
		return err
	}
	defer client.Close()

	for {
		select {
		case <-ctx.Done():
			return nil
		case end := <-client.End():
			fmt.Printf("game over: %s, %d kills, %d credited, balance %d, %d upgrades\n",
				end.Reason, end.Kills, end.Credited, end.Balance, end.Upgrades)
			return nil
		case state, ok := <-client.States():
			if !ok {
				return nil
			}
			fmt.Printf("tick %6d  bodies %3d  balance %6d  power %3d  upgrade %6d  kills %4d\n",
				state.Tick, len(state.Bodies), state.Balance, state.Power, state.UpgradeCost, state.Kills)
		}
	}
}

func printSummary(stats engine.Stats) {
	fmt.Printf("Game over (%s) after %d ticks: %d kills, %d credited, %d upgrades\n",
		stats.EndReason, stats.Ticks, stats.Kills, stats.Credited, stats.Upgrades)
}
