// pkg/entity/anchor.go
package entity

import (
	"github.com/opd-ai/go-planet-protector/pkg/physics"
)

// Anchor is the stationary planet every body is pulled toward
type Anchor struct {
	ID       ID
	Position physics.Vector2D
	Radius   float64

	destroyed bool
}

// NewAnchor creates a new anchor
func NewAnchor(id ID, position physics.Vector2D, radius float64) *Anchor {
	return &Anchor{
		ID:       id,
		Position: position,
		Radius:   radius,
	}
}

// GetID returns the anchor's identifier
func (a *Anchor) GetID() ID {
	return a.ID
}

// GetPosition returns the anchor's position
func (a *Anchor) GetPosition() physics.Vector2D {
	return a.Position
}

// GetCollider returns the anchor's collision shape
func (a *Anchor) GetCollider() physics.Circle {
	return physics.Circle{Center: a.Position, Radius: a.Radius}
}

// Draw renders the planet sprite
func (a *Anchor) Draw(r Renderer) {
	r.DrawSprite(SpriteAnchor, a.Position, a.Radius*2)
}

// MarkDestroyed records that a body reached the anchor
func (a *Anchor) MarkDestroyed() {
	a.destroyed = true
}

// IsDestroyed reports whether a body has reached the anchor
func (a *Anchor) IsDestroyed() bool {
	return a.destroyed
}
