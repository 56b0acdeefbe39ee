// pkg/config/config.go
package config

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/opd-ai/go-planet-protector/pkg/entity"
)

// GameConfig contains configuration for a Planet Protector session
type GameConfig struct {
	Window    WindowConfig    `json:"window"`
	Anchor    AnchorConfig    `json:"anchor"`
	Physics   PhysicsConfig   `json:"physics"`
	Bodies    BodyConfig      `json:"bodies"`
	Weapon    WeaponConfig    `json:"weapon"`
	Economy   EconomyConfig   `json:"economy"`
	Loop      LoopConfig      `json:"loop"`
	Controls  ControlsConfig  `json:"controls"`
	Assets    AssetsConfig    `json:"assets"`
	Audio     AudioConfig     `json:"audio"`
	Spectator SpectatorConfig `json:"spectator"`
}

// WindowConfig describes the play field
type WindowConfig struct {
	Width  int    `json:"width"`
	Height int    `json:"height"`
	Title  string `json:"title"`
}

// AnchorConfig places the planet
type AnchorConfig struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Radius float64 `json:"radius"`
}

// PhysicsConfig contains attraction settings
type PhysicsConfig struct {
	Acceleration float64 `json:"acceleration"`
	FiringRadius float64 `json:"firingRadius"`
	// CorrectAxisReference compares a body's y against the anchor's y
	// instead of its x when choosing the vertical pull direction.
	CorrectAxisReference bool `json:"correctAxisReference"`
}

// BodyConfig controls spawning and sizing of asteroids
type BodyConfig struct {
	SpawnOdds            int     `json:"spawnOdds"`
	StartingMass         int     `json:"startingMass"`
	MassJitter           int     `json:"massJitter"`
	IdleSpawnMass        int     `json:"idleSpawnMass"`
	DestructionThreshold int     `json:"destructionThreshold"`
	MaxMass              int     `json:"maxMass"`
	MaxDisplay           float64 `json:"maxDisplay"`
	MinDisplay           float64 `json:"minDisplay"`
}

// WeaponConfig contains laser settings
type WeaponConfig struct {
	InitialPower       int     `json:"initialPower"`
	InitialUpgradeCost int     `json:"initialUpgradeCost"`
	BeamColor          string  `json:"beamColor"`
	BeamWidth          float64 `json:"beamWidth"`
}

// EconomyConfig contains bank settings
type EconomyConfig struct {
	StartingBalance int `json:"startingBalance"`
}

// LoopConfig contains tick pacing settings
type LoopConfig struct {
	FrameRate int    `json:"frameRate"`
	MaxTicks  uint64 `json:"maxTicks"`
}

// ControlsConfig places clickable controls, in world coordinates
type ControlsConfig struct {
	UpgradeButton ButtonConfig `json:"upgradeButton"`
}

// ButtonConfig is a rectangle given by its top-left corner
type ButtonConfig struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// AssetsConfig names sprite images. An empty Dir selects built-in sprites.
type AssetsConfig struct {
	Dir    string `json:"dir"`
	Planet string `json:"planet"`
	Body   string `json:"body"`
}

// AudioConfig contains sound cue settings
type AudioConfig struct {
	Enabled bool    `json:"enabled"`
	Volume  float64 `json:"volume"`
}

// SpectatorConfig controls the live state feed
type SpectatorConfig struct {
	Enabled        bool   `json:"enabled"`
	Address        string `json:"address"`
	BroadcastEvery int    `json:"broadcastEvery"`
}

// ValidationError reports an invalid configuration field
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Message)
}

// LoadConfig loads a configuration from a file
func LoadConfig(path string) (*GameConfig, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open config file: %w", err)
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	// Missing sections keep their defaults
	config := DefaultConfig()
	if err := json.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("failed to validate config file: %w", err)
	}

	return config, nil
}

// SaveConfig saves a configuration to a file
func SaveConfig(config *GameConfig, path string) error {
	if config == nil {
		return fmt.Errorf("failed to marshal config: nil config")
	}

	data, err := json.MarshalIndent(config, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// DefaultConfig returns the classic game configuration
func DefaultConfig() *GameConfig {
	return &GameConfig{
		Window: WindowConfig{
			Width:  700,
			Height: 600,
			Title:  "Planet Protector",
		},
		Anchor: AnchorConfig{
			X:      200,
			Y:      200,
			Radius: 32,
		},
		Physics: PhysicsConfig{
			Acceleration:         0.1,
			FiringRadius:         175,
			CorrectAxisReference: false,
		},
		Bodies: BodyConfig{
			SpawnOdds:            50,
			StartingMass:         100,
			MassJitter:           0,
			IdleSpawnMass:        50,
			DestructionThreshold: 0,
			MaxMass:              10000,
			MaxDisplay:           30,
			MinDisplay:           8,
		},
		Weapon: WeaponConfig{
			InitialPower:       1,
			InitialUpgradeCost: 100,
			BeamColor:          "#FF0000",
			BeamWidth:          3,
		},
		Economy: EconomyConfig{
			StartingBalance: 0,
		},
		Loop: LoopConfig{
			FrameRate: 15,
			MaxTicks:  0,
		},
		Controls: ControlsConfig{
			UpgradeButton: ButtonConfig{X: 540, Y: 10, Width: 150, Height: 30},
		},
		Assets: AssetsConfig{
			Dir:    "",
			Planet: "planet.png",
			Body:   "meteor_1.png",
		},
		Audio: AudioConfig{
			Enabled: true,
			Volume:  0.5,
		},
		Spectator: SpectatorConfig{
			Enabled:        false,
			Address:        ":8080",
			BroadcastEvery: 1,
		},
	}
}

// Validate checks the configuration for values the game cannot run with
func (c *GameConfig) Validate() error {
	if c.Window.Width <= 0 || c.Window.Height <= 0 {
		return &ValidationError{Field: "window", Message: "width and height must be positive"}
	}
	if c.Anchor.Radius <= 0 {
		return &ValidationError{Field: "anchor.radius", Message: "must be positive"}
	}
	if c.Physics.Acceleration < 0 {
		return &ValidationError{Field: "physics.acceleration", Message: "must not be negative"}
	}
	if c.Physics.FiringRadius <= c.Anchor.Radius {
		return &ValidationError{Field: "physics.firingRadius", Message: "must be larger than the anchor radius"}
	}
	if c.Bodies.StartingMass <= 0 {
		return &ValidationError{Field: "bodies.startingMass", Message: "must be positive"}
	}
	if c.Bodies.MassJitter < 0 || c.Bodies.IdleSpawnMass < 0 {
		return &ValidationError{Field: "bodies", Message: "massJitter and idleSpawnMass must not be negative"}
	}
	if c.Bodies.MaxMass <= 0 {
		return &ValidationError{Field: "bodies.maxMass", Message: "must be positive"}
	}
	if c.Bodies.MinDisplay <= 0 {
		return &ValidationError{Field: "bodies.minDisplay", Message: "must be positive"}
	}
	if c.Weapon.InitialUpgradeCost <= 0 {
		return &ValidationError{Field: "weapon.initialUpgradeCost", Message: "must be positive"}
	}
	if _, err := entity.ParseHexColor(c.Weapon.BeamColor); err != nil {
		return &ValidationError{Field: "weapon.beamColor", Message: err.Error()}
	}
	if c.Economy.StartingBalance < 0 {
		return &ValidationError{Field: "economy.startingBalance", Message: "must not be negative"}
	}
	if c.Loop.FrameRate <= 0 || c.Loop.FrameRate > 240 {
		return &ValidationError{Field: "loop.frameRate", Message: "must be between 1 and 240"}
	}
	if c.Controls.UpgradeButton.Width <= 0 || c.Controls.UpgradeButton.Height <= 0 {
		return &ValidationError{Field: "controls.upgradeButton", Message: "width and height must be positive"}
	}
	if c.Audio.Volume < 0 || c.Audio.Volume > 1 {
		return &ValidationError{Field: "audio.volume", Message: "must be between 0 and 1"}
	}
	if c.Spectator.Enabled && c.Spectator.Address == "" {
		return &ValidationError{Field: "spectator.address", Message: "required when the feed is enabled"}
	}
	if c.Spectator.BroadcastEvery < 1 {
		return &ValidationError{Field: "spectator.broadcastEvery", Message: "must be at least 1"}
	}
	return nil
}
