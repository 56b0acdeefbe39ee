package render

import (
	"testing"

	"github.com/opd-ai/go-planet-protector/pkg/engine"
)

func TestAutoUpgraderClicksWhenAffordable(t *testing.T) {
	s := newSession(t, quietSessionConfig())
	null := NewNullPresenter(nil, false)
	auto := NewAutoUpgrader(null, s)

	s.Step(auto)
	if auto.Clicks() != 0 {
		t.Fatalf("clicked with balance %d and cost %d", s.Economy().Balance(), s.Weapon().UpgradeCost())
	}

	s.Economy().Credit(250)
	s.Step(auto)

	if auto.Clicks() != 1 {
		t.Errorf("Clicks() = %d, want 1", auto.Clicks())
	}
	if got := s.Weapon().Power(); got != 2 {
		t.Errorf("Power() = %d, want 2", got)
	}
	if got := s.Economy().Balance(); got != 150 {
		t.Errorf("Balance() = %d, want 150", got)
	}

	s.Step(auto)
	if auto.Clicks() != 1 {
		t.Errorf("clicked again with balance %d and cost %d", s.Economy().Balance(), s.Weapon().UpgradeCost())
	}
}

func TestAutoUpgraderPassesInputThrough(t *testing.T) {
	s := newSession(t, quietSessionConfig())
	null := NewNullPresenter(nil, false)
	auto := NewAutoUpgrader(null, s)

	null.Enqueue(engine.InputEvent{Kind: engine.InputQuit})
	if state := s.Step(auto); state != engine.StateTerminated {
		t.Errorf("Step() = %v, want terminated", state)
	}
	if got := s.Stats().EndReason; got != engine.ReasonQuit {
		t.Errorf("EndReason = %q, want quit", got)
	}
}
