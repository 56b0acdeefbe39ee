// pkg/render/engo/renderer.go
package engo

import (
	"image/color"
	"math"
	"sync"

	"github.com/EngoEngine/ecs"
	"github.com/EngoEngine/engo"
	"github.com/EngoEngine/engo/common"

	"github.com/opd-ai/go-planet-protector/pkg/engine"
	"github.com/opd-ai/go-planet-protector/pkg/entity"
	"github.com/opd-ai/go-planet-protector/pkg/logging"
	"github.com/opd-ai/go-planet-protector/pkg/physics"
)

type spriteCmd struct {
	sprite entity.Sprite
	center physics.Vector2D
	size   float64
}

type lineCmd struct {
	from, to physics.Vector2D
	color    color.RGBA
	width    float64
}

type textCmd struct {
	text  string
	pos   physics.Vector2D
	color color.RGBA
}

// frame buffers the draw calls of one tick until Present
type frame struct {
	sprites []spriteCmd
	lines   []lineCmd
	texts   []textCmd
}

func (f *frame) reset() {
	f.sprites = f.sprites[:0]
	f.lines = f.lines[:0]
	f.texts = f.texts[:0]
}

// drawEntity is one pooled renderable
type drawEntity struct {
	ecs.BasicEntity
	common.RenderComponent
	common.SpaceComponent
}

// pool reuses entities across frames. The render system is retained mode,
// so entities are shown or hidden rather than created per draw call.
type pool struct {
	entities []*drawEntity
	add      func(*drawEntity)
}

// take returns the i'th entity, creating it on first use
func (p *pool) take(i int) *drawEntity {
	for len(p.entities) <= i {
		e := &drawEntity{BasicEntity: ecs.NewBasic()}
		e.RenderComponent.Scale = engo.Point{X: 1, Y: 1}
		p.entities = append(p.entities, e)
		if p.add != nil {
			p.add(e)
		}
	}
	e := p.entities[i]
	e.RenderComponent.Hidden = false
	return e
}

// hideFrom hides every entity from index n on
func (p *pool) hideFrom(n int) {
	for i := n; i < len(p.entities); i++ {
		p.entities[i].RenderComponent.Hidden = true
	}
}

// visible counts the entities currently shown
func (p *pool) visible() int {
	n := 0
	for _, e := range p.entities {
		if !e.RenderComponent.Hidden {
			n++
		}
	}
	return n
}

// EngoPresenter implements engine.Presenter on top of an engo world.
// Draw calls are buffered and applied to pooled entities on Present.
// Frame pacing belongs to engo, so Tick does nothing.
type EngoPresenter struct {
	assets  *AssetManager
	hud     *HUDSystem
	logger  *logging.Logger
	sprites pool
	beams   pool

	current frame
	frames  uint64

	mu      sync.Mutex
	pending []engine.InputEvent
}

// NewEngoPresenter creates a presenter that is not yet attached to a world
func NewEngoPresenter(assets *AssetManager, hud *HUDSystem, logger *logging.Logger) *EngoPresenter {
	if logger == nil {
		logger = logging.NewDiscardLogger()
	}
	return &EngoPresenter{
		assets: assets,
		hud:    hud,
		logger: logger,
	}
}

// Attach adds pooled entities to rs from now on
func (p *EngoPresenter) Attach(rs *common.RenderSystem) {
	add := func(e *drawEntity) {
		rs.Add(&e.BasicEntity, &e.RenderComponent, &e.SpaceComponent)
	}
	p.sprites.add = add
	p.beams.add = add
	p.hud.texts.add = add
	p.hud.panels.add = add
}

// push queues input for the next PollEvents call
func (p *EngoPresenter) push(ev engine.InputEvent) {
	p.mu.Lock()
	p.pending = append(p.pending, ev)
	p.mu.Unlock()
}

// PollEvents implements engine.Presenter.
func (p *EngoPresenter) PollEvents() []engine.InputEvent {
	p.mu.Lock()
	events := p.pending
	p.pending = nil
	p.mu.Unlock()
	return events
}

// DrawSprite implements entity.Renderer.
func (p *EngoPresenter) DrawSprite(sprite entity.Sprite, center physics.Vector2D, size float64) {
	p.current.sprites = append(p.current.sprites, spriteCmd{sprite: sprite, center: center, size: size})
}

// DrawLine implements entity.Renderer.
func (p *EngoPresenter) DrawLine(from, to physics.Vector2D, c color.RGBA, width float64) {
	p.current.lines = append(p.current.lines, lineCmd{from: from, to: to, color: c, width: width})
}

// DrawText implements entity.Renderer.
func (p *EngoPresenter) DrawText(text string, pos physics.Vector2D, c color.RGBA) {
	p.current.texts = append(p.current.texts, textCmd{text: text, pos: pos, color: c})
}

// Present implements engine.Presenter.
func (p *EngoPresenter) Present() {
	for i, cmd := range p.current.sprites {
		e := p.sprites.take(i)
		e.RenderComponent.Drawable = p.assets.Sprite(cmd.sprite)
		e.RenderComponent.Color = color.White
		e.RenderComponent.Scale = spriteScale(cmd.size, e.RenderComponent.Drawable)
		e.SpaceComponent = spriteSpace(cmd.center, cmd.size)
	}
	p.sprites.hideFrom(len(p.current.sprites))

	for i, cmd := range p.current.lines {
		e := p.beams.take(i)
		e.RenderComponent.Drawable = common.Rectangle{}
		e.RenderComponent.Color = cmd.color
		e.SpaceComponent = beamSpace(cmd.from, cmd.to, cmd.width)
	}
	p.beams.hideFrom(len(p.current.lines))

	p.hud.show(p.current.texts)

	p.frames++
	p.current.reset()
}

// Tick implements engine.Presenter.
func (p *EngoPresenter) Tick(int) {}

// spriteSpace centers a size x size box on center
func spriteSpace(center physics.Vector2D, size float64) common.SpaceComponent {
	return common.SpaceComponent{
		Position: engo.Point{X: float32(center.X - size/2), Y: float32(center.Y - size/2)},
		Width:    float32(size),
		Height:   float32(size),
	}
}

// spriteScale stretches a drawable to size pixels
func spriteScale(size float64, d common.Drawable) engo.Point {
	if d == nil || d.Width() <= 0 || d.Height() <= 0 {
		return engo.Point{X: 1, Y: 1}
	}
	return engo.Point{X: float32(size) / d.Width(), Y: float32(size) / d.Height()}
}

// beamSpace lays a width-thick rectangle from one point to another.
// Engo rotates around Position, so the corner is offset by half the
// thickness perpendicular to the beam.
func beamSpace(from, to physics.Vector2D, width float64) common.SpaceComponent {
	d := to.Sub(from)
	angle := math.Atan2(d.Y, d.X)
	offset := physics.Vector2D{X: math.Sin(angle), Y: -math.Cos(angle)}.Scale(width / 2)
	corner := from.Add(offset)
	return common.SpaceComponent{
		Position: engo.Point{X: float32(corner.X), Y: float32(corner.Y)},
		Width:    float32(d.Length()),
		Height:   float32(width),
		Rotation: float32(angle * 180 / math.Pi),
	}
}

var _ engine.Presenter = (*EngoPresenter)(nil)
