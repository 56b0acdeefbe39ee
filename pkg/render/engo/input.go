// pkg/render/engo/input.go
package engo

import (
	"github.com/EngoEngine/ecs"
	"github.com/EngoEngine/engo"

	"github.com/opd-ai/go-planet-protector/pkg/engine"
	"github.com/opd-ai/go-planet-protector/pkg/physics"
)

// Button names registered with engo.Input
const (
	quitButton    = "quit"
	upgradeButton = "upgrade"
)

// InputSystem turns engo mouse and keyboard state into engine input
// events for the presenter. It must run before the session system.
type InputSystem struct {
	presenter *EngoPresenter
	control   physics.Rect
}

// NewInputSystem creates an input system feeding presenter
func NewInputSystem(presenter *EngoPresenter, control physics.Rect) *InputSystem {
	return &InputSystem{presenter: presenter, control: control}
}

// Remove satisfies the ecs.System interface
func (is *InputSystem) Remove(ecs.BasicEntity) {}

// Update reads this frame's input
func (is *InputSystem) Update(dt float32) {
	is.handle(
		engo.Input.Button(quitButton).JustPressed(),
		engo.Input.Button(upgradeButton).JustPressed(),
		engo.Input.Mouse,
	)
}

func (is *InputSystem) handle(quit, upgrade bool, mouse engo.Mouse) {
	if quit {
		is.presenter.push(engine.InputEvent{Kind: engine.InputQuit})
	}
	if upgrade {
		is.presenter.push(engine.InputEvent{Kind: engine.InputPointerDown, Position: is.control.Center})
	}
	if mouse.Action == engo.Press && mouse.Button == engo.MouseButtonLeft {
		is.presenter.push(engine.InputEvent{
			Kind:     engine.InputPointerDown,
			Position: physics.Vector2D{X: float64(mouse.X), Y: float64(mouse.Y)},
		})
	}
}

// SetupInputBindings registers the game's keys
func SetupInputBindings() {
	engo.Input.RegisterButton(quitButton, engo.KeyEscape, engo.KeyQ)
	engo.Input.RegisterButton(upgradeButton, engo.KeyU)
}
