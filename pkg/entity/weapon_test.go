// pkg/entity/weapon_test.go
package entity

import (
	"math"
	"testing"

	"github.com/opd-ai/go-planet-protector/pkg/physics"
)

func TestNewWeapon_Defaults(t *testing.T) {
	tests := []struct {
		name      string
		power     int
		wantPower int
	}{
		{"explicit", 4, 4},
		{"zero_defaults_to_one", 0, 1},
		{"negative_defaults_to_one", -2, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := NewWeapon(tt.power, 100, NewEconomy(0))
			if w.Power() != tt.wantPower {
				t.Errorf("Power() = %d, expected %d", w.Power(), tt.wantPower)
			}
			if w.UpgradeCost() != 100 {
				t.Errorf("UpgradeCost() = %d, expected 100", w.UpgradeCost())
			}
		})
	}
}

func TestWeapon_DestroysAfterExactTicks(t *testing.T) {
	tuning := DefaultBodyTuning()
	tuning.DestructionThreshold = 50
	bank := NewEconomy(0)
	w := NewWeapon(3, 100, bank)
	body := NewBody(1, 150, physics.Vector2D{}, tuning)

	want := int(math.Ceil(float64(150-50) / 3))
	hits := 0
	for !body.IsDead() && hits < 100 {
		hits++
		killed := w.Damage(body)
		if killed != body.IsDead() {
			t.Fatalf("Damage() = %v but IsDead() = %v on hit %d", killed, body.IsDead(), hits)
		}
		if !killed && bank.Balance() != 0 {
			t.Fatalf("bank credited %d before the kill", bank.Balance())
		}
	}

	if hits != want || hits != 34 {
		t.Errorf("destroyed after %d hits, expected %d", hits, want)
	}
	if bank.Balance() != 150 {
		t.Errorf("Balance() = %d, expected 150", bank.Balance())
	}

	if w.Damage(body) {
		t.Error("Damage() on a dead body reported another kill")
	}
	if bank.Balance() != 150 {
		t.Errorf("Balance() = %d after hitting a dead body, expected 150", bank.Balance())
	}
}

func TestWeapon_UpgradeRoundTrip(t *testing.T) {
	for n := 0; n <= 6; n++ {
		w := NewWeapon(1, 100, nil)
		for i := 0; i < n; i++ {
			w.Upgrade()
		}
		wantCost := 100 * (1 << n)
		if w.UpgradeCost() != wantCost {
			t.Errorf("after %d upgrades cost = %d, expected %d", n, w.UpgradeCost(), wantCost)
		}
		if w.Power() != 1+n {
			t.Errorf("after %d upgrades power = %d, expected %d", n, w.Power(), 1+n)
		}
		if w.Upgrades() != n {
			t.Errorf("Upgrades() = %d, expected %d", w.Upgrades(), n)
		}
	}
}

func TestWeapon_UpgradeLeavesBalance(t *testing.T) {
	bank := NewEconomy(500)
	w := NewWeapon(1, 100, bank)
	w.Upgrade()
	if bank.Balance() != 500 {
		t.Errorf("Upgrade() changed balance to %d", bank.Balance())
	}
}

func TestWeapon_Fire(t *testing.T) {
	anchor := NewAnchor(1, physics.Vector2D{X: 200, Y: 200}, 32)
	body := NewBody(2, 100, physics.Vector2D{X: 300, Y: 250}, DefaultBodyTuning())
	w := NewWeapon(1, 100, NewEconomy(0))
	r := &recordingRenderer{}

	w.Fire(r, anchor, body)

	if len(r.lines) != 1 {
		t.Fatalf("Fire() drew %d lines, expected 1", len(r.lines))
	}
	line := r.lines[0]
	if line.from != anchor.Position || line.to != body.Position {
		t.Errorf("beam from %v to %v, expected %v to %v", line.from, line.to, anchor.Position, body.Position)
	}
	if line.color != w.BeamColor || line.width != 3 {
		t.Errorf("beam style = %v/%v, expected %v/3", line.color, line.width, w.BeamColor)
	}
	if body.Mass() != 100 {
		t.Errorf("Fire() changed body mass to %d", body.Mass())
	}
}
