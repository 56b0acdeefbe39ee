// pkg/entity/body.go
package entity

import (
	"math"
	"math/rand/v2"

	"github.com/opd-ai/go-planet-protector/pkg/physics"
)

// BodyTuning holds the constants that govern how bodies spawn, move and
// shrink. One value is shared by every body of a session.
type BodyTuning struct {
	Acceleration         float64
	FiringRadius         float64
	DestructionThreshold int
	MaxMass              int
	MaxDisplay           float64
	MinDisplay           float64
	AxisReference        physics.AxisReference
}

// DefaultBodyTuning returns the classic tuning
func DefaultBodyTuning() BodyTuning {
	return BodyTuning{
		Acceleration:         0.1,
		FiringRadius:         175,
		DestructionThreshold: 0,
		MaxMass:              10000,
		MaxDisplay:           30,
		MinDisplay:           8,
		AxisReference:        physics.AxisLegacy,
	}
}

// Body is an asteroid falling toward the anchor
type Body struct {
	ID       ID
	Position physics.Vector2D
	Velocity physics.Vector2D

	mass         int
	startingMass int
	dead         bool
	tuning       BodyTuning
}

// NewBody creates a body at rest at position
func NewBody(id ID, startingMass int, position physics.Vector2D, tuning BodyTuning) *Body {
	return &Body{
		ID:           id,
		Position:     position,
		mass:         startingMass,
		startingMass: startingMass,
		tuning:       tuning,
	}
}

// SpawnBody creates a body at rest at a uniformly random point on the
// firing circle around anchor.
func SpawnBody(id ID, startingMass int, anchor *Anchor, tuning BodyTuning, rng *rand.Rand) *Body {
	angle := rng.Float64() * 2 * math.Pi
	return NewBody(id, startingMass, physics.OnCircle(anchor.Position, tuning.FiringRadius, angle), tuning)
}

// GetID returns the body's identifier
func (b *Body) GetID() ID {
	return b.ID
}

// GetPosition returns the body's position
func (b *Body) GetPosition() physics.Vector2D {
	return b.Position
}

// Mass returns the remaining mass
func (b *Body) Mass() int {
	return b.mass
}

// StartingMass returns the mass the body spawned with
func (b *Body) StartingMass() int {
	return b.startingMass
}

// IsDead reports whether the body has been destroyed
func (b *Body) IsDead() bool {
	return b.dead
}

// Tick pulls the body toward anchor and moves it one step
func (b *Body) Tick(anchor *Anchor) {
	if b.dead {
		return
	}
	b.Velocity = b.Velocity.Add(physics.Attraction(
		b.Position, anchor.Position, b.tuning.Acceleration, b.tuning.AxisReference))
	b.Position = b.Position.Add(b.Velocity)
}

// ApplyDamage removes amount from the body's mass and reports whether this
// hit destroyed it. Non-positive amounts and hits on a dead body do nothing.
func (b *Body) ApplyDamage(amount int) bool {
	if amount <= 0 || b.dead {
		return false
	}
	b.mass -= amount
	if b.mass < b.tuning.DestructionThreshold {
		b.dead = true
		return true
	}
	return false
}

// DisplaySize returns the on-screen diameter for the current mass
func (b *Body) DisplaySize() float64 {
	mass := math.Max(float64(b.mass), 0)
	size := b.tuning.MinDisplay
	if b.tuning.MaxMass > 0 {
		size += b.tuning.MaxDisplay * mass / float64(b.tuning.MaxMass)
	}
	return math.Max(size, b.tuning.MinDisplay)
}

// GetCollider returns the body's collision shape
func (b *Body) GetCollider() physics.Circle {
	return physics.Circle{Center: b.Position, Radius: b.DisplaySize() / 2}
}

// Draw renders the body sprite scaled to its mass
func (b *Body) Draw(r Renderer) {
	if b.dead {
		return
	}
	r.DrawSprite(SpriteBody, b.Position, b.DisplaySize())
}
