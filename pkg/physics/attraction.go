// pkg/physics/attraction.go
package physics

import "math"

// AxisReference selects which coordinate of the center the y component
// of Attraction is compared against.
type AxisReference int

const (
	// AxisLegacy compares the moving point's y against the center's x.
	// Gameplay tuning was done with this behaviour; it is indistinguishable
	// from AxisCorrected whenever the center lies on the x == y diagonal.
	AxisLegacy AxisReference = iota
	// AxisCorrected compares y against the center's y.
	AxisCorrected
)

// String returns a readable name for the reference mode
func (r AxisReference) String() string {
	switch r {
	case AxisLegacy:
		return "legacy"
	case AxisCorrected:
		return "corrected"
	default:
		return "unknown"
	}
}

// Attraction returns the per-tick velocity increment that pulls p toward
// center with magnitude accel, split along the line p->center.
//
// The angle is taken as atan(dx/dy). When p is level with center on y the
// angle is fixed at +/- pi/2 so the whole increment lands on the x axis.
func Attraction(p, center Vector2D, accel float64, ref AxisReference) Vector2D {
	var angle float64
	if p.Y == center.Y {
		if p.X < center.X {
			angle = math.Pi / 2
		} else {
			angle = -math.Pi / 2
		}
	} else {
		angle = math.Atan((p.X - center.X) / (p.Y - center.Y))
	}

	opposite := math.Abs(math.Sin(angle)) * accel
	adjacent := math.Abs(math.Cos(angle)) * accel

	var delta Vector2D
	if p.X > center.X {
		delta.X = -opposite
	} else {
		delta.X = opposite
	}

	yRef := center.X
	if ref == AxisCorrected {
		yRef = center.Y
	}
	if p.Y > yRef {
		delta.Y = -adjacent
	} else {
		delta.Y = adjacent
	}

	return delta
}
