package render

import (
	"math/rand/v2"
	"testing"

	"github.com/opd-ai/go-planet-protector/pkg/config"
	"github.com/opd-ai/go-planet-protector/pkg/engine"
)

func quietSessionConfig() *config.GameConfig {
	cfg := config.DefaultConfig()
	cfg.Bodies.SpawnOdds = 0
	cfg.Bodies.IdleSpawnMass = 0
	return cfg
}

func newSession(t *testing.T, cfg *config.GameConfig) *engine.Session {
	t.Helper()
	s, err := engine.NewSession(cfg, rand.New(rand.NewPCG(3, 3)), nil, nil)
	if err != nil {
		t.Fatalf("NewSession failed: %v", err)
	}
	return s
}
