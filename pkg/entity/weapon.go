// pkg/entity/weapon.go
package entity

import (
	"image/color"
)

// Weapon is the laser mounted on the anchor. It credits its economy with a
// body's starting mass whenever a hit destroys that body.
type Weapon struct {
	BeamColor color.RGBA
	BeamWidth float64

	power       int
	upgradeCost int
	upgrades    int
	bank        *Economy
}

// NewWeapon creates a laser. A non-positive power falls back to 1.
func NewWeapon(power, upgradeCost int, bank *Economy) *Weapon {
	if power <= 0 {
		power = 1
	}
	return &Weapon{
		BeamColor:   color.RGBA{R: 255, A: 255},
		BeamWidth:   3,
		power:       power,
		upgradeCost: upgradeCost,
		bank:        bank,
	}
}

// Power returns the damage dealt per hit
func (w *Weapon) Power() int {
	return w.power
}

// UpgradeCost returns the price of the next upgrade
func (w *Weapon) UpgradeCost() int {
	return w.upgradeCost
}

// Upgrades returns how many upgrades have been applied
func (w *Weapon) Upgrades() int {
	return w.upgrades
}

// Damage hits body once and reports whether the hit destroyed it
func (w *Weapon) Damage(body *Body) bool {
	if !body.ApplyDamage(w.power) {
		return false
	}
	if w.bank != nil {
		w.bank.Credit(body.StartingMass())
	}
	return true
}

// Fire draws the beam from the anchor to body. It has no effect on the body.
func (w *Weapon) Fire(r Renderer, anchor *Anchor, body *Body) {
	r.DrawLine(anchor.Position, body.Position, w.BeamColor, w.BeamWidth)
}

// Upgrade doubles the upgrade cost and adds one to the power. Paying for
// the upgrade is the caller's job.
func (w *Weapon) Upgrade() {
	w.upgradeCost *= 2
	w.power++
	w.upgrades++
}
