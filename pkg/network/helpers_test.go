package network

import (
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/opd-ai/go-planet-protector/pkg/config"
	"github.com/opd-ai/go-planet-protector/pkg/engine"
	"github.com/opd-ai/go-planet-protector/pkg/physics"
)

func testEnv() *config.EnvironmentConfig {
	return &config.EnvironmentConfig{
		MaxSpectators:                     4,
		WriteTimeout:                      time.Second,
		PingInterval:                      time.Second,
		SendBuffer:                        8,
		CircuitBreakerMaxRequests:         1,
		CircuitBreakerInterval:            time.Minute,
		CircuitBreakerTimeout:             time.Minute,
		CircuitBreakerMaxConsecutiveFails: 3,
	}
}

func testState(tick uint64) *engine.GameState {
	return &engine.GameState{
		Tick:    tick,
		Running: true,
		Anchor: engine.AnchorState{
			Position: physics.Vector2D{X: 200, Y: 200},
			Radius:   32,
		},
		Bodies: []engine.BodyState{{
			ID:           7,
			Position:     physics.Vector2D{X: 350, Y: 120},
			Velocity:     physics.Vector2D{X: -0.1, Y: 0.1},
			Mass:         60,
			StartingMass: 100,
			Size:         12,
		}},
		Balance:     40,
		Power:       2,
		UpgradeCost: 200,
		Kills:       1,
	}
}

// wsURL turns an httptest server URL into a websocket URL for the hub
func wsURL(srv *httptest.Server) string {
	return "ws" + strings.TrimPrefix(srv.URL, "http") + SpectatorPath
}

func waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for %s", what)
}
