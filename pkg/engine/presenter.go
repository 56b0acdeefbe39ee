// pkg/engine/presenter.go
package engine

import (
	"github.com/opd-ai/go-planet-protector/pkg/entity"
	"github.com/opd-ai/go-planet-protector/pkg/physics"
)

// InputKind identifies what the player did
type InputKind int

const (
	InputQuit InputKind = iota
	InputPointerDown
)

func (k InputKind) String() string {
	switch k {
	case InputQuit:
		return "quit"
	case InputPointerDown:
		return "pointer_down"
	default:
		return "unknown"
	}
}

// InputEvent is a single player input. Position is in world coordinates
// and only meaningful for InputPointerDown.
type InputEvent struct {
	Kind     InputKind
	Position physics.Vector2D
}

// Presenter is the display and input collaborator driven by a Session.
// PollEvents must not block. Tick blocks long enough to cap the loop at
// fps ticks per second.
type Presenter interface {
	entity.Renderer
	PollEvents() []InputEvent
	Present()
	Tick(fps int)
}
