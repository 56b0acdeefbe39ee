// pkg/render/terminal.go
package render

import (
	"context"
	"image/color"
	"math"
	"sync"

	"github.com/gdamore/tcell/v2"

	"github.com/opd-ai/go-planet-protector/pkg/engine"
	"github.com/opd-ai/go-planet-protector/pkg/entity"
	"github.com/opd-ai/go-planet-protector/pkg/logging"
	"github.com/opd-ai/go-planet-protector/pkg/physics"
)

// TerminalOptions configures a TerminalPresenter
type TerminalOptions struct {
	// WorldWidth and WorldHeight are stretched over the whole screen
	WorldWidth  float64
	WorldHeight float64
	// UpgradeControl is clicked on behalf of the player when 'u' is pressed
	UpgradeControl physics.Rect
}

// TerminalPresenter draws the game with terminal cells through tcell.
// Mouse clicks are reported in world coordinates. Keys: 'u' presses the
// upgrade control, 'q', Esc and Ctrl-C quit.
type TerminalPresenter struct {
	screen  tcell.Screen
	opts    TerminalOptions
	events  chan tcell.Event
	limiter *FrameLimiter
	logger  *logging.Logger
	closed  sync.Once
}

// NewTerminalPresenter initializes screen and starts reading its events.
// The presenter owns screen from here on; call Close to restore the terminal.
func NewTerminalPresenter(screen tcell.Screen, opts TerminalOptions, logger *logging.Logger) (*TerminalPresenter, error) {
	if logger == nil {
		logger = logging.NewDiscardLogger()
	}
	if err := screen.Init(); err != nil {
		return nil, logging.WrapError(err, "failed to initialize terminal")
	}
	screen.EnableMouse()
	screen.HideCursor()
	screen.Clear()

	t := &TerminalPresenter{
		screen:  screen,
		opts:    opts,
		events:  make(chan tcell.Event, 100),
		limiter: NewFrameLimiter(),
		logger:  logger,
	}

	go func() {
		for {
			ev := screen.PollEvent()
			if ev == nil {
				close(t.events)
				return
			}
			t.events <- ev
		}
	}()

	cols, rows := screen.Size()
	logger.Debug(context.Background(), "terminal presenter ready", "cols", cols, "rows", rows)
	return t, nil
}

// NewTerminal opens the controlling terminal
func NewTerminal(opts TerminalOptions, logger *logging.Logger) (*TerminalPresenter, error) {
	screen, err := tcell.NewScreen()
	if err != nil {
		return nil, logging.WrapError(err, "failed to open terminal")
	}
	return NewTerminalPresenter(screen, opts, logger)
}

// Close restores the terminal. Later calls do nothing.
func (t *TerminalPresenter) Close() {
	t.closed.Do(t.screen.Fini)
}

// PollEvents implements engine.Presenter. It never blocks.
func (t *TerminalPresenter) PollEvents() []engine.InputEvent {
	var out []engine.InputEvent
	for {
		select {
		case ev, ok := <-t.events:
			if !ok {
				return append(out, engine.InputEvent{Kind: engine.InputQuit})
			}
			if in, ok := t.translate(ev); ok {
				out = append(out, in)
			}
		default:
			return out
		}
	}
}

func (t *TerminalPresenter) translate(ev tcell.Event) (engine.InputEvent, bool) {
	switch ev := ev.(type) {
	case *tcell.EventKey:
		switch {
		case ev.Key() == tcell.KeyEscape, ev.Key() == tcell.KeyCtrlC:
			return engine.InputEvent{Kind: engine.InputQuit}, true
		case ev.Key() == tcell.KeyRune && (ev.Rune() == 'q' || ev.Rune() == 'Q'):
			return engine.InputEvent{Kind: engine.InputQuit}, true
		case ev.Key() == tcell.KeyRune && (ev.Rune() == 'u' || ev.Rune() == 'U'):
			return engine.InputEvent{Kind: engine.InputPointerDown, Position: t.opts.UpgradeControl.Center}, true
		}
	case *tcell.EventMouse:
		if ev.Buttons()&tcell.Button1 != 0 {
			x, y := ev.Position()
			return engine.InputEvent{Kind: engine.InputPointerDown, Position: t.toWorld(x, y)}, true
		}
	case *tcell.EventResize:
		t.screen.Sync()
	}
	return engine.InputEvent{}, false
}

// scale returns world units per column and per row
func (t *TerminalPresenter) scale() (float64, float64) {
	cols, rows := t.screen.Size()
	return t.opts.WorldWidth / float64(max(cols, 1)), t.opts.WorldHeight / float64(max(rows, 1))
}

func (t *TerminalPresenter) toCell(p physics.Vector2D) (int, int) {
	sx, sy := t.scale()
	return int(math.Floor(p.X / sx)), int(math.Floor(p.Y / sy))
}

// toWorld returns the world position at the center of a cell
func (t *TerminalPresenter) toWorld(col, row int) physics.Vector2D {
	sx, sy := t.scale()
	return physics.Vector2D{X: (float64(col) + 0.5) * sx, Y: (float64(row) + 0.5) * sy}
}

func (t *TerminalPresenter) set(col, row int, r rune, style tcell.Style) {
	cols, rows := t.screen.Size()
	if col < 0 || row < 0 || col >= cols || row >= rows {
		return
	}
	t.screen.SetContent(col, row, r, nil, style)
}

func styleFor(c color.RGBA) tcell.Style {
	return tcell.StyleDefault.Foreground(tcell.NewRGBColor(int32(c.R), int32(c.G), int32(c.B)))
}

var (
	anchorStyle = tcell.StyleDefault.Foreground(tcell.ColorDodgerBlue)
	bodyStyle   = tcell.StyleDefault.Foreground(tcell.ColorSandyBrown)
)

// DrawSprite implements entity.Renderer. Sprites become filled ellipses
// of cells, or a single glyph when smaller than a cell.
func (t *TerminalPresenter) DrawSprite(sprite entity.Sprite, center physics.Vector2D, size float64) {
	glyph, style := '*', bodyStyle
	if sprite == entity.SpriteAnchor {
		glyph, style = 'O', anchorStyle
	}

	sx, sy := t.scale()
	rx, ry := size/2/sx, size/2/sy
	cx, cy := t.toCell(center)
	if rx < 1 || ry < 1 {
		t.set(cx, cy, glyph, style)
		return
	}

	for row := cy - int(ry); row <= cy+int(ry); row++ {
		for col := cx - int(rx); col <= cx+int(rx); col++ {
			dx, dy := float64(col-cx)/rx, float64(row-cy)/ry
			if dx*dx+dy*dy <= 1 {
				t.set(col, row, glyph, style)
			}
		}
	}
}

// DrawLine implements entity.Renderer. Width is ignored; a beam is one
// cell wide.
func (t *TerminalPresenter) DrawLine(from, to physics.Vector2D, c color.RGBA, width float64) {
	x0, y0 := t.toCell(from)
	x1, y1 := t.toCell(to)
	style := styleFor(c)

	dx, dy := abs(x1-x0), -abs(y1-y0)
	stepX, stepY := 1, 1
	if x0 > x1 {
		stepX = -1
	}
	if y0 > y1 {
		stepY = -1
	}
	err := dx + dy
	for {
		t.set(x0, y0, '.', style)
		if x0 == x1 && y0 == y1 {
			return
		}
		e2 := 2 * err
		if e2 >= dy {
			err += dy
			x0 += stepX
		}
		if e2 <= dx {
			err += dx
			y0 += stepY
		}
	}
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

// DrawText implements entity.Renderer.
func (t *TerminalPresenter) DrawText(text string, pos physics.Vector2D, c color.RGBA) {
	col, row := t.toCell(pos)
	style := styleFor(c)
	for _, r := range text {
		t.set(col, row, r, style)
		col++
	}
}

// Present implements engine.Presenter. The frame is shown and the back
// buffer cleared for the next one.
func (t *TerminalPresenter) Present() {
	t.screen.Show()
	t.screen.Clear()
}

// Tick implements engine.Presenter.
func (t *TerminalPresenter) Tick(fps int) {
	t.limiter.Wait(fps)
}

var _ engine.Presenter = (*TerminalPresenter)(nil)
