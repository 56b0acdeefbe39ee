// pkg/audio/player.go
package audio

import (
	"context"
	"sync"
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/speaker"

	"github.com/opd-ai/go-planet-protector/pkg/config"
	"github.com/opd-ai/go-planet-protector/pkg/event"
	"github.com/opd-ai/go-planet-protector/pkg/logging"
)

// SampleRate is the output rate of every cue
const SampleRate = beep.SampleRate(44100)

// Player turns bus events into sound cues mixed onto the speaker
type Player struct {
	mu          sync.Mutex
	mixer       *beep.Mixer
	volume      float64
	enabled     bool
	initialized bool
	subs        []*event.Subscription
	logger      *logging.Logger
}

// NewPlayer creates a player for cfg. Nothing is heard until Init.
func NewPlayer(cfg config.AudioConfig, logger *logging.Logger) *Player {
	if logger == nil {
		logger = logging.NewDiscardLogger()
	}
	return &Player{
		mixer:   &beep.Mixer{},
		volume:  cfg.Volume,
		enabled: cfg.Enabled,
		logger:  logger,
	}
}

// Init opens the speaker and starts the mixer. A disabled player never
// touches the audio device.
func (p *Player) Init() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.enabled || p.initialized {
		return nil
	}
	if err := speaker.Init(SampleRate, SampleRate.N(100*time.Millisecond)); err != nil {
		return logging.WrapError(err, "failed to initialise speaker")
	}
	speaker.Play(p.mixer)
	p.initialized = true
	return nil
}

// Attach subscribes the player to the session's events
func (p *Player) Attach(bus *event.Bus) {
	cues := map[event.Type]Cue{
		event.BodyDestroyed:   CueKill,
		event.WeaponUpgraded:  CueUpgrade,
		event.UpgradeRejected: CueRejected,
		event.GameEnded:       CueGameOver,
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	for eventType, cue := range cues {
		cue := cue
		p.subs = append(p.subs, bus.Subscribe(eventType, func(event.Event) {
			p.Play(cue)
		}))
	}
}

// Play mixes cue c in. It is a no-op when the player is disabled.
func (p *Player) Play(c Cue) {
	if !p.enabled {
		return
	}
	s, err := NewCueStreamer(c, SampleRate, p.volume)
	if err != nil {
		p.logger.Error(context.Background(), "audio cue failed", err, "cue", c.String())
		return
	}

	p.mu.Lock()
	initialized := p.initialized
	p.mu.Unlock()

	if initialized {
		speaker.Lock()
		defer speaker.Unlock()
	}
	p.mixer.Add(s)
}

// Playing returns the number of cues still sounding
func (p *Player) Playing() int {
	p.mu.Lock()
	initialized := p.initialized
	p.mu.Unlock()

	if initialized {
		speaker.Lock()
		defer speaker.Unlock()
	}
	return p.mixer.Len()
}

// Close unsubscribes from the bus and silences pending cues
func (p *Player) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()

	for _, sub := range p.subs {
		sub.Cancel()
	}
	p.subs = nil

	if p.initialized {
		speaker.Lock()
		p.mixer.Clear()
		speaker.Unlock()
		speaker.Close()
		p.initialized = false
		return
	}
	p.mixer.Clear()
}
