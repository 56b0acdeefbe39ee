// pkg/entity/entity.go
package entity

import (
	"github.com/opd-ai/go-planet-protector/pkg/physics"
)

// ID is a unique identifier for an entity
type ID uint64

// Entity is the capability every drawable game object offers
type Entity interface {
	GetID() ID
	GetPosition() physics.Vector2D
	Draw(r Renderer)
}

// Collidable is an entity with a circular collision shape
type Collidable interface {
	Entity
	GetCollider() physics.Circle
}

// IDSource hands out increasing entity IDs. The zero value starts at 1.
type IDSource struct {
	last ID
}

// Next returns the next unused ID
func (s *IDSource) Next() ID {
	s.last++
	return s.last
}
