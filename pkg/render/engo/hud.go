// pkg/render/engo/hud.go
package engo

import (
	"bytes"
	"image/color"

	"github.com/EngoEngine/engo"
	"github.com/EngoEngine/engo/common"
	"golang.org/x/image/font/gofont/goregular"

	"github.com/opd-ai/go-planet-protector/pkg/logging"
	"github.com/opd-ai/go-planet-protector/pkg/physics"
)

const hudFontURL = "go.ttf"

// HUDSystem draws text and the upgrade control's panel
type HUDSystem struct {
	font     *common.Font
	fontSize float64
	control  physics.Rect

	texts  pool
	panels pool

	panelColor color.Color
}

// NewHUDSystem creates a HUD that frames control with a panel
func NewHUDSystem(control physics.Rect) *HUDSystem {
	return &HUDSystem{
		fontSize:   16,
		control:    control,
		panelColor: color.RGBA{R: 60, G: 60, B: 90, A: 200},
	}
}

// Preload registers the embedded Go font with engo's file loader
func (hud *HUDSystem) Preload() error {
	if err := engo.Files.LoadReaderData(hudFontURL, bytes.NewReader(goregular.TTF)); err != nil {
		return logging.WrapError(err, "failed to load HUD font")
	}
	return nil
}

// LoadFont builds the font atlas. It needs a GL context.
func (hud *HUDSystem) LoadFont() error {
	font := &common.Font{
		URL:  hudFontURL,
		FG:   color.White,
		Size: hud.fontSize,
	}
	if err := font.CreatePreloaded(); err != nil {
		return logging.WrapError(err, "failed to create HUD font")
	}
	hud.font = font
	return nil
}

// show lays out this frame's text, with the control panel underneath
func (hud *HUDSystem) show(texts []textCmd) {
	panel := hud.panels.take(0)
	panel.RenderComponent.Drawable = common.Rectangle{}
	panel.RenderComponent.Color = hud.panelColor
	panel.SpaceComponent = panelSpace(hud.control)

	for i, cmd := range texts {
		e := hud.texts.take(i)
		e.RenderComponent.Drawable = common.Text{Font: hud.font, Text: cmd.text}
		e.RenderComponent.Color = cmd.color
		e.SpaceComponent = common.SpaceComponent{
			Position: engo.Point{X: float32(cmd.pos.X), Y: float32(cmd.pos.Y)},
			Width:    float32(len(cmd.text)) * float32(hud.fontSize) / 2,
			Height:   float32(hud.fontSize),
		}
	}
	hud.texts.hideFrom(len(texts))
}

func panelSpace(r physics.Rect) common.SpaceComponent {
	corner := r.Min()
	return common.SpaceComponent{
		Position: engo.Point{X: float32(corner.X), Y: float32(corner.Y)},
		Width:    float32(r.Width),
		Height:   float32(r.Height),
	}
}
