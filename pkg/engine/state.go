// pkg/engine/state.go
package engine

import (
	"github.com/opd-ai/go-planet-protector/pkg/physics"
)

// State is the lifecycle state of a Session
type State int

const (
	StateRunning State = iota
	StateTerminated
)

func (s State) String() string {
	switch s {
	case StateRunning:
		return "running"
	case StateTerminated:
		return "terminated"
	default:
		return "unknown"
	}
}

// End reasons reported in Stats and the GameEnded event
const (
	ReasonQuit            = "quit"
	ReasonAnchorDestroyed = "anchor_destroyed"
	ReasonTickLimit       = "tick_limit"
	ReasonCancelled       = "cancelled"
)

// GameState is an immutable snapshot of a session taken at the end of a tick
type GameState struct {
	Tick        uint64      `msgpack:"tick" json:"tick"`
	Running     bool        `msgpack:"running" json:"running"`
	Anchor      AnchorState `msgpack:"anchor" json:"anchor"`
	Bodies      []BodyState `msgpack:"bodies" json:"bodies"`
	Balance     int         `msgpack:"balance" json:"balance"`
	Power       int         `msgpack:"power" json:"power"`
	UpgradeCost int         `msgpack:"upgradeCost" json:"upgradeCost"`
	Kills       int         `msgpack:"kills" json:"kills"`
}

// AnchorState represents a snapshot of the anchor
type AnchorState struct {
	Position  physics.Vector2D `msgpack:"position" json:"position"`
	Radius    float64          `msgpack:"radius" json:"radius"`
	Destroyed bool             `msgpack:"destroyed" json:"destroyed"`
}

// BodyState represents a snapshot of a live body
type BodyState struct {
	ID           uint64           `msgpack:"id" json:"id"`
	Position     physics.Vector2D `msgpack:"position" json:"position"`
	Velocity     physics.Vector2D `msgpack:"velocity" json:"velocity"`
	Mass         int              `msgpack:"mass" json:"mass"`
	StartingMass int              `msgpack:"startingMass" json:"startingMass"`
	Size         float64          `msgpack:"size" json:"size"`
}

// Stats accumulates over the life of a session
type Stats struct {
	Ticks     uint64
	Spawned   int
	Kills     int
	Credited  int
	Upgrades  int
	Rejected  int
	EndReason string
}
