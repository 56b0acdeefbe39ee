// pkg/render/engo/scene.go
package engo

import (
	"context"
	"image/color"

	"github.com/EngoEngine/ecs"
	"github.com/EngoEngine/engo"
	"github.com/EngoEngine/engo/common"

	"github.com/opd-ai/go-planet-protector/pkg/config"
	"github.com/opd-ai/go-planet-protector/pkg/engine"
	"github.com/opd-ai/go-planet-protector/pkg/logging"
	"github.com/opd-ai/go-planet-protector/pkg/physics"
)

const gameOverText = "GAME OVER - press Esc"

// GameScene runs a Session inside engo's main loop. Engo paces frames,
// so the session is stepped once per engo update instead of through
// Session.Run.
type GameScene struct {
	ctx       context.Context
	session   *engine.Session
	presenter *EngoPresenter
	assets    *AssetManager
	hud       *HUDSystem
	logger    *logging.Logger

	// exit stops the engo loop; replaced in tests
	exit    func()
	exiting bool
	err     error
}

// NewGameScene creates a scene for session using the given asset settings
func NewGameScene(ctx context.Context, session *engine.Session, assets config.AssetsConfig, logger *logging.Logger) *GameScene {
	if logger == nil {
		logger = logging.NewDiscardLogger()
	}
	am := NewAssetManager(assets)
	hud := NewHUDSystem(session.UpgradeControl())
	return &GameScene{
		ctx:       ctx,
		session:   session,
		presenter: NewEngoPresenter(am, hud, logger),
		assets:    am,
		hud:       hud,
		logger:    logger,
		exit:      engo.Exit,
	}
}

// RunOptions returns the engo window settings for cfg
func RunOptions(cfg *config.GameConfig) engo.RunOptions {
	return engo.RunOptions{
		Title:          cfg.Window.Title,
		Width:          cfg.Window.Width,
		Height:         cfg.Window.Height,
		FPSLimit:       cfg.Loop.FrameRate,
		NotResizable:   true,
		VSync:          true,
		StandardInputs: false,
	}
}

// Type returns the scene type (required by Engo)
func (scene *GameScene) Type() string {
	return "PlanetProtector"
}

// Preload is called before the scene starts (required by Engo)
func (scene *GameScene) Preload() {
	if err := scene.assets.Preload(); err != nil {
		scene.fail(err)
		return
	}
	if err := scene.hud.Preload(); err != nil {
		scene.fail(err)
	}
}

// Setup is called when the scene starts (required by Engo)
func (scene *GameScene) Setup(u engo.Updater) {
	if scene.err != nil {
		scene.stop()
		return
	}
	world := u.(*ecs.World)
	common.SetBackground(color.Black)

	if err := scene.assets.LoadAssets(); err != nil {
		scene.fail(err)
		scene.stop()
		return
	}
	if err := scene.hud.LoadFont(); err != nil {
		scene.fail(err)
		scene.stop()
		return
	}

	renderSystem := &common.RenderSystem{}
	world.AddSystem(renderSystem)
	scene.presenter.Attach(renderSystem)

	SetupInputBindings()
	world.AddSystem(NewInputSystem(scene.presenter, scene.session.UpgradeControl()))
	world.AddSystem(&sessionSystem{scene: scene})

	scene.logger.Info(scene.ctx, "engo scene ready",
		"procedural_assets", scene.assets.Procedural(),
	)
}

// Exit is called when the window closes
func (scene *GameScene) Exit() {
	if scene.session.State() == engine.StateRunning {
		scene.session.Terminate(engine.ReasonQuit)
	}
	scene.logger.Debug(scene.ctx, "engo scene exited")
}

// Err returns the startup failure that stopped the scene, if any
func (scene *GameScene) Err() error {
	return scene.err
}

func (scene *GameScene) fail(err error) {
	scene.err = err
	scene.logger.Error(scene.ctx, "engo scene failed", err)
}

func (scene *GameScene) stop() {
	if !scene.exiting {
		scene.exiting = true
		scene.exit()
	}
}

// step advances the session by one tick. After the session ends the last
// frame stays up with a game over banner until the player quits.
func (scene *GameScene) step() {
	select {
	case <-scene.ctx.Done():
		scene.session.Terminate(engine.ReasonCancelled)
		scene.stop()
		return
	default:
	}

	if scene.session.State() == engine.StateRunning {
		state := scene.session.Step(scene.presenter)
		maxTicks := scene.session.Config.Loop.MaxTicks
		if state == engine.StateRunning && maxTicks > 0 && scene.session.CurrentTick() >= maxTicks {
			scene.session.Terminate(engine.ReasonTickLimit)
		}
		if scene.session.Stats().EndReason == engine.ReasonQuit {
			scene.stop()
		}
		return
	}

	for _, ev := range scene.presenter.PollEvents() {
		if ev.Kind == engine.InputQuit {
			scene.stop()
			return
		}
	}
	scene.drawGameOver()
}

func (scene *GameScene) drawGameOver() {
	p := scene.presenter
	scene.session.Anchor().Draw(p)
	for _, body := range scene.session.Bodies() {
		body.Draw(p)
	}
	cfg := scene.session.Config.Window
	p.DrawText(gameOverText,
		physics.Vector2D{X: float64(cfg.Width)/2 - 90, Y: float64(cfg.Height) / 2},
		color.RGBA{R: 255, G: 80, B: 80, A: 255})
	p.Present()
}

// sessionSystem steps the scene's session once per engo frame
type sessionSystem struct {
	scene *GameScene
}

func (s *sessionSystem) Update(dt float32) {
	s.scene.step()
}

func (s *sessionSystem) Remove(ecs.BasicEntity) {}
