// pkg/render/null.go
package render

import (
	"context"
	"image/color"
	"sync"

	"github.com/opd-ai/go-planet-protector/pkg/engine"
	"github.com/opd-ai/go-planet-protector/pkg/entity"
	"github.com/opd-ai/go-planet-protector/pkg/logging"
	"github.com/opd-ai/go-planet-protector/pkg/physics"
)

// NullPresenter draws nothing. Draw calls are logged at debug level and
// input comes from Enqueue, which makes it the presenter for headless
// sessions and tests.
type NullPresenter struct {
	logger  *logging.Logger
	limiter *FrameLimiter

	mu      sync.Mutex
	pending []engine.InputEvent
	frames  uint64
}

// NewNullPresenter creates a presenter. With paced set, Tick sleeps to
// hold the frame rate; otherwise it returns immediately.
func NewNullPresenter(logger *logging.Logger, paced bool) *NullPresenter {
	if logger == nil {
		logger = logging.NewDiscardLogger()
	}
	p := &NullPresenter{logger: logger}
	if paced {
		p.limiter = NewFrameLimiter()
	}
	return p
}

// Enqueue queues input for the next PollEvents call. Safe for concurrent use.
func (p *NullPresenter) Enqueue(events ...engine.InputEvent) {
	p.mu.Lock()
	p.pending = append(p.pending, events...)
	p.mu.Unlock()
}

// Frames returns how many frames have been presented
func (p *NullPresenter) Frames() uint64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.frames
}

// PollEvents implements engine.Presenter.
func (p *NullPresenter) PollEvents() []engine.InputEvent {
	p.mu.Lock()
	events := p.pending
	p.pending = nil
	p.mu.Unlock()
	return events
}

// DrawSprite implements entity.Renderer.
func (p *NullPresenter) DrawSprite(sprite entity.Sprite, center physics.Vector2D, size float64) {
	p.logger.Debug(context.Background(), "DrawSprite called",
		"sprite", string(sprite),
		"x", center.X,
		"y", center.Y,
		"size", size,
	)
}

// DrawLine implements entity.Renderer.
func (p *NullPresenter) DrawLine(from, to physics.Vector2D, c color.RGBA, width float64) {
	p.logger.Debug(context.Background(), "DrawLine called",
		"from_x", from.X,
		"from_y", from.Y,
		"to_x", to.X,
		"to_y", to.Y,
		"width", width,
	)
}

// DrawText implements entity.Renderer.
func (p *NullPresenter) DrawText(text string, pos physics.Vector2D, c color.RGBA) {
	p.logger.Debug(context.Background(), "DrawText called", "text", text)
}

// Present implements engine.Presenter.
func (p *NullPresenter) Present() {
	p.mu.Lock()
	p.frames++
	p.mu.Unlock()
}

// Tick implements engine.Presenter.
func (p *NullPresenter) Tick(fps int) {
	if p.limiter != nil {
		p.limiter.Wait(fps)
	}
}

var _ engine.Presenter = (*NullPresenter)(nil)
