package audio

import (
	"math"
	"testing"
	"time"

	"github.com/gopxl/beep"
)

// drain streams s to the end and returns every sample
func drain(t *testing.T, s beep.Streamer) [][2]float64 {
	t.Helper()
	var out [][2]float64
	buf := make([][2]float64, 512)
	for i := 0; i < 1000; i++ {
		n, ok := s.Stream(buf)
		out = append(out, buf[:n]...)
		if !ok {
			return out
		}
	}
	t.Fatal("streamer never drained")
	return nil
}

func TestCueStreamerLength(t *testing.T) {
	tests := []struct {
		cue  Cue
		want time.Duration
	}{
		{CueKill, 120 * time.Millisecond},
		{CueUpgrade, 210 * time.Millisecond},
		{CueRejected, 150 * time.Millisecond},
		{CueGameOver, 700 * time.Millisecond},
	}

	for _, tt := range tests {
		t.Run(tt.cue.String(), func(t *testing.T) {
			if got := tt.cue.Duration(); got != tt.want {
				t.Errorf("Duration() = %v, want %v", got, tt.want)
			}

			s, err := NewCueStreamer(tt.cue, SampleRate, 1)
			if err != nil {
				t.Fatalf("NewCueStreamer failed: %v", err)
			}
			samples := drain(t, s)

			want := 0
			for _, n := range cueNotes[tt.cue] {
				want += SampleRate.N(n.duration)
			}
			if len(samples) != want {
				t.Errorf("streamed %d samples, want %d", len(samples), want)
			}
		})
	}
}

func TestCueStreamerVolume(t *testing.T) {
	tests := []struct {
		name    string
		volume  float64
		wantMax float64
	}{
		{"full", 1, 1},
		{"half", 0.5, 0.5},
		{"silent", 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := NewCueStreamer(CueKill, SampleRate, tt.volume)
			if err != nil {
				t.Fatalf("NewCueStreamer failed: %v", err)
			}
			peak := 0.0
			for _, frame := range drain(t, s) {
				peak = math.Max(peak, math.Abs(frame[0]))
				peak = math.Max(peak, math.Abs(frame[1]))
			}
			if peak > tt.wantMax+1e-9 {
				t.Errorf("peak = %v, want <= %v", peak, tt.wantMax)
			}
			if tt.volume > 0 && peak < tt.wantMax*0.9 {
				t.Errorf("peak = %v, want close to %v", peak, tt.wantMax)
			}
		})
	}
}

func TestUnknownCue(t *testing.T) {
	if _, err := NewCueStreamer(Cue(42), SampleRate, 1); err == nil {
		t.Error("expected an error for an unknown cue")
	}
	if got := Cue(42).String(); got != "cue(42)" {
		t.Errorf("String() = %q, want cue(42)", got)
	}
}
