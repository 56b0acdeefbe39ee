// pkg/engine/targeter.go
package engine

import (
	"github.com/opd-ai/go-planet-protector/pkg/entity"
)

// Targeter selects which live bodies the weapon damages this tick
type Targeter interface {
	Targets(anchor *entity.Anchor, bodies []*entity.Body) []*entity.Body
}

// AllBodies damages every live body every tick
type AllBodies struct{}

// Targets returns every body that is still alive
func (AllBodies) Targets(_ *entity.Anchor, bodies []*entity.Body) []*entity.Body {
	targets := make([]*entity.Body, 0, len(bodies))
	for _, b := range bodies {
		if !b.IsDead() {
			targets = append(targets, b)
		}
	}
	return targets
}

// Nearest damages only the Count live bodies closest to the anchor.
// A Count below 1 is treated as 1.
type Nearest struct {
	Count int
}

// Targets returns up to Count bodies ordered by distance to the anchor
func (n Nearest) Targets(anchor *entity.Anchor, bodies []*entity.Body) []*entity.Body {
	count := n.Count
	if count < 1 {
		count = 1
	}

	targets := AllBodies{}.Targets(anchor, bodies)
	// insertion sort keeps ties in spawn order
	for i := 1; i < len(targets); i++ {
		for j := i; j > 0 && closer(anchor, targets[j], targets[j-1]); j-- {
			targets[j], targets[j-1] = targets[j-1], targets[j]
		}
	}

	if len(targets) > count {
		targets = targets[:count]
	}
	return targets
}

func closer(anchor *entity.Anchor, a, b *entity.Body) bool {
	return a.Position.DistanceSquared(anchor.Position) < b.Position.DistanceSquared(anchor.Position)
}
