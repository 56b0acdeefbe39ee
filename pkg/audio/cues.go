// pkg/audio/cues.go
package audio

import (
	"fmt"
	"math"
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/effects"
	"github.com/gopxl/beep/generators"
)

// Cue identifies a sound played in response to a game event
type Cue int

const (
	CueKill Cue = iota
	CueUpgrade
	CueRejected
	CueGameOver
)

func (c Cue) String() string {
	switch c {
	case CueKill:
		return "kill"
	case CueUpgrade:
		return "upgrade"
	case CueRejected:
		return "rejected"
	case CueGameOver:
		return "game_over"
	default:
		return fmt.Sprintf("cue(%d)", int(c))
	}
}

// note is one sine tone of a cue
type note struct {
	freq     float64
	duration time.Duration
}

var cueNotes = map[Cue][]note{
	CueKill: {
		{660, 60 * time.Millisecond},
		{880, 60 * time.Millisecond},
	},
	CueUpgrade: {
		{523.25, 70 * time.Millisecond},
		{659.25, 70 * time.Millisecond},
		{783.99, 70 * time.Millisecond},
	},
	CueRejected: {
		{150, 150 * time.Millisecond},
	},
	CueGameOver: {
		{392, 200 * time.Millisecond},
		{329.63, 200 * time.Millisecond},
		{261.63, 300 * time.Millisecond},
	},
}

// Duration returns how long cue c plays
func (c Cue) Duration() time.Duration {
	var d time.Duration
	for _, n := range cueNotes[c] {
		d += n.duration
	}
	return d
}

// NewCueStreamer builds the finite streamer for cue c at the given volume
// (0 silences it, 1 is full scale).
func NewCueStreamer(c Cue, rate beep.SampleRate, volume float64) (beep.Streamer, error) {
	notes, ok := cueNotes[c]
	if !ok {
		return nil, fmt.Errorf("unknown audio cue %s", c)
	}

	parts := make([]beep.Streamer, 0, len(notes))
	for _, n := range notes {
		tone, err := generators.SineTone(rate, n.freq)
		if err != nil {
			return nil, fmt.Errorf("failed to build %s cue: %w", c, err)
		}
		parts = append(parts, beep.Take(rate.N(n.duration), tone))
	}
	return withVolume(beep.Seq(parts...), volume), nil
}

// withVolume scales s linearly; log2(0) is -Inf so zero is made silent
func withVolume(s beep.Streamer, volume float64) beep.Streamer {
	if volume <= 0 {
		return &effects.Volume{Streamer: s, Base: 2, Silent: true}
	}
	return &effects.Volume{Streamer: s, Base: 2, Volume: math.Log2(volume)}
}
