package engo

import (
	"context"
	"math/rand/v2"
	"testing"

	"github.com/opd-ai/go-planet-protector/pkg/config"
	"github.com/opd-ai/go-planet-protector/pkg/engine"
)

func quietConfig() *config.GameConfig {
	cfg := config.DefaultConfig()
	cfg.Bodies.SpawnOdds = 0
	cfg.Bodies.IdleSpawnMass = 0
	return cfg
}

// newTestScene builds a scene whose presenter is not attached to any
// render system, with exit calls counted instead of stopping engo.
func newTestScene(t *testing.T, ctx context.Context, cfg *config.GameConfig) (*GameScene, *int) {
	t.Helper()
	session, err := engine.NewSession(cfg, rand.New(rand.NewPCG(5, 5)), nil, nil)
	if err != nil {
		t.Fatalf("NewSession failed: %v", err)
	}
	scene := NewGameScene(ctx, session, config.AssetsConfig{}, nil)
	exits := 0
	scene.exit = func() { exits++ }
	return scene, &exits
}
