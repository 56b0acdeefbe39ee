// pkg/render/autopilot.go
package render

import (
	"github.com/opd-ai/go-planet-protector/pkg/engine"
)

// AutoUpgrader decorates a Presenter with a player that clicks the
// upgrade control whenever the balance covers the next upgrade. Input
// from the wrapped presenter still comes through, so a human can quit.
type AutoUpgrader struct {
	engine.Presenter
	session *engine.Session
	clicks  int
}

// NewAutoUpgrader wraps p for session. PollEvents must be called from the
// goroutine stepping session.
func NewAutoUpgrader(p engine.Presenter, session *engine.Session) *AutoUpgrader {
	return &AutoUpgrader{Presenter: p, session: session}
}

// PollEvents implements engine.Presenter.
func (a *AutoUpgrader) PollEvents() []engine.InputEvent {
	events := a.Presenter.PollEvents()
	if a.session.Economy().Balance() >= a.session.Weapon().UpgradeCost() {
		a.clicks++
		events = append(events, engine.InputEvent{
			Kind:     engine.InputPointerDown,
			Position: a.session.UpgradeControl().Center,
		})
	}
	return events
}

// Clicks returns how many upgrade clicks were injected
func (a *AutoUpgrader) Clicks() int {
	return a.clicks
}
