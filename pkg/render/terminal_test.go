package render

import (
	"image/color"
	"testing"
	"time"

	"github.com/gdamore/tcell/v2"

	"github.com/opd-ai/go-planet-protector/pkg/engine"
	"github.com/opd-ai/go-planet-protector/pkg/entity"
	"github.com/opd-ai/go-planet-protector/pkg/physics"
)

// newSimTerminal returns a presenter on a 70x30 simulated screen, so one
// cell covers 10x20 world units of a 700x600 field.
func newSimTerminal(t *testing.T) (*TerminalPresenter, tcell.SimulationScreen) {
	t.Helper()
	screen := tcell.NewSimulationScreen("UTF-8")
	p, err := NewTerminalPresenter(screen, TerminalOptions{
		WorldWidth:     700,
		WorldHeight:    600,
		UpgradeControl: physics.RectFromCorner(540, 10, 150, 30),
	}, nil)
	if err != nil {
		t.Fatalf("NewTerminalPresenter failed: %v", err)
	}
	screen.SetSize(70, 30)
	t.Cleanup(p.Close)
	return p, screen
}

// waitForEvents polls until at least n events arrive or a second passes
func waitForEvents(t *testing.T, p *TerminalPresenter, n int) []engine.InputEvent {
	t.Helper()
	var got []engine.InputEvent
	deadline := time.Now().Add(time.Second)
	for len(got) < n && time.Now().Before(deadline) {
		got = append(got, p.PollEvents()...)
		time.Sleep(time.Millisecond)
	}
	if len(got) < n {
		t.Fatalf("expected %d events, got %v", n, got)
	}
	return got
}

func runeAt(screen tcell.SimulationScreen, col, row int) rune {
	cells, width, _ := screen.GetContents()
	cell := cells[row*width+col]
	if len(cell.Runes) == 0 {
		return ' '
	}
	return cell.Runes[0]
}

func TestTerminalPresenter_KeyInput(t *testing.T) {
	tests := []struct {
		name string
		key  tcell.Key
		r    rune
		want engine.InputKind
	}{
		{"q quits", tcell.KeyRune, 'q', engine.InputQuit},
		{"escape quits", tcell.KeyEscape, 0, engine.InputQuit},
		{"ctrl-c quits", tcell.KeyCtrlC, 0, engine.InputQuit},
		{"u clicks upgrade", tcell.KeyRune, 'u', engine.InputPointerDown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, screen := newSimTerminal(t)
			screen.InjectKey(tt.key, tt.r, tcell.ModNone)

			events := waitForEvents(t, p, 1)
			if events[0].Kind != tt.want {
				t.Fatalf("expected %v, got %v", tt.want, events[0].Kind)
			}
			if tt.want == engine.InputPointerDown {
				control := physics.RectFromCorner(540, 10, 150, 30)
				if !control.Contains(events[0].Position) {
					t.Errorf("upgrade key should click inside the control, got %+v", events[0].Position)
				}
			}
		})
	}
}

func TestTerminalPresenter_IgnoresOtherKeys(t *testing.T) {
	p, screen := newSimTerminal(t)
	screen.InjectKey(tcell.KeyRune, 'x', tcell.ModNone)
	screen.InjectKey(tcell.KeyRune, 'q', tcell.ModNone)

	events := waitForEvents(t, p, 1)
	if len(events) != 1 || events[0].Kind != engine.InputQuit {
		t.Errorf("expected only the quit event, got %v", events)
	}
}

func TestTerminalPresenter_MouseMapsToWorld(t *testing.T) {
	p, screen := newSimTerminal(t)
	screen.InjectMouse(5, 2, tcell.Button1, tcell.ModNone)

	events := waitForEvents(t, p, 1)
	want := physics.Vector2D{X: 55, Y: 50}
	if events[0].Kind != engine.InputPointerDown || events[0].Position != want {
		t.Errorf("expected pointer down at %+v, got %+v", want, events[0])
	}
}

func TestTerminalPresenter_PollNeverBlocks(t *testing.T) {
	p, _ := newSimTerminal(t)

	done := make(chan struct{})
	go func() {
		p.PollEvents()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("PollEvents blocked")
	}
}

func TestTerminalPresenter_Drawing(t *testing.T) {
	p, screen := newSimTerminal(t)

	p.DrawText("Hi", physics.Vector2D{X: 10, Y: 10}, color.RGBA{R: 255, G: 255, B: 255, A: 255})
	p.DrawSprite(entity.SpriteBody, physics.Vector2D{X: 305, Y: 410}, 4)
	p.DrawSprite(entity.SpriteAnchor, physics.Vector2D{X: 205, Y: 210}, 64)
	p.DrawLine(physics.Vector2D{X: 5, Y: 590}, physics.Vector2D{X: 205, Y: 590}, color.RGBA{R: 255, A: 255}, 3)
	p.Present()

	if runeAt(screen, 1, 0) != 'H' || runeAt(screen, 2, 0) != 'i' {
		t.Errorf("text not drawn at cell (1,0)")
	}
	if runeAt(screen, 30, 20) != '*' {
		t.Errorf("small body should be a single glyph at (30,20), got %q", runeAt(screen, 30, 20))
	}
	if runeAt(screen, 20, 10) != 'O' || runeAt(screen, 23, 10) != 'O' {
		t.Error("anchor should fill cells around (20,10)")
	}
	for col := 0; col <= 20; col++ {
		if runeAt(screen, col, 29) != '.' {
			t.Fatalf("beam missing at column %d", col)
		}
	}
}

func TestTerminalPresenter_PresentClearsNextFrame(t *testing.T) {
	p, screen := newSimTerminal(t)

	p.DrawText("X", physics.Vector2D{X: 100, Y: 100}, color.RGBA{A: 255})
	p.Present()
	p.Present()

	if runeAt(screen, 10, 5) == 'X' {
		t.Error("second frame should not keep the first frame's text")
	}
}

func TestTerminalPresenter_OffscreenDrawIsClipped(t *testing.T) {
	p, _ := newSimTerminal(t)

	p.DrawSprite(entity.SpriteBody, physics.Vector2D{X: -500, Y: -500}, 100)
	p.DrawText("far away", physics.Vector2D{X: 5000, Y: 5000}, color.RGBA{A: 255})
	p.DrawLine(physics.Vector2D{X: -100, Y: -100}, physics.Vector2D{X: 800, Y: 700}, color.RGBA{A: 255}, 1)
	p.Present()
}

func TestTerminalPresenter_CloseReportsQuit(t *testing.T) {
	screen := tcell.NewSimulationScreen("UTF-8")
	p, err := NewTerminalPresenter(screen, TerminalOptions{WorldWidth: 700, WorldHeight: 600}, nil)
	if err != nil {
		t.Fatal(err)
	}
	p.Close()

	events := waitForEvents(t, p, 1)
	if events[len(events)-1].Kind != engine.InputQuit {
		t.Errorf("expected quit after the screen closed, got %v", events)
	}
}

func TestTerminalPresenter_DrivesSession(t *testing.T) {
	p, screen := newSimTerminal(t)
	cfg := quietSessionConfig()
	cfg.Economy.StartingBalance = 100
	s := newSession(t, cfg)

	screen.InjectKey(tcell.KeyRune, 'u', tcell.ModNone)
	waitDeadline := time.Now().Add(time.Second)
	for s.Weapon().Power() == 1 && time.Now().Before(waitDeadline) {
		s.Step(p)
		time.Sleep(time.Millisecond)
	}

	if s.Weapon().Power() != 2 {
		t.Fatalf("expected the upgrade key to upgrade the weapon, power %d", s.Weapon().Power())
	}
	if runeAt(screen, 1, 0) != 'B' {
		t.Errorf("expected HUD balance text at the top left, got %q", runeAt(screen, 1, 0))
	}
}
