// pkg/config/env_config.go
package config

import (
	"os"
	"strconv"
	"time"
)

// EnvironmentConfig holds operational settings that come from the
// environment rather than the game file.
type EnvironmentConfig struct {
	SpectatorAddr string
	SpectatorPort int
	MaxSpectators int
	WriteTimeout  time.Duration
	PingInterval  time.Duration
	SendBuffer    int
	// ConnectRate caps spectator connection attempts per host within
	// ConnectWindow; 0 disables the limit
	ConnectRate   int
	ConnectWindow time.Duration

	// Circuit Breaker Configuration
	CircuitBreakerMaxRequests         int
	CircuitBreakerInterval            time.Duration
	CircuitBreakerTimeout             time.Duration
	CircuitBreakerMaxConsecutiveFails int

	ShutdownTimeout time.Duration
	StallTimeout    time.Duration
	Seed            uint64
}

// LoadConfigFromEnv reads PLANET_* variables, falling back to defaults
func LoadConfigFromEnv() (*EnvironmentConfig, error) {
	config := &EnvironmentConfig{
		SpectatorAddr: getEnvOrDefault("PLANET_SPECTATOR_ADDR", "localhost"),
		SpectatorPort: getEnvAsIntOrDefault("PLANET_SPECTATOR_PORT", 8080),
		MaxSpectators: getEnvAsIntOrDefault("PLANET_MAX_SPECTATORS", 32),
		WriteTimeout:  getEnvAsDurationOrDefault("PLANET_WRITE_TIMEOUT", 10*time.Second),
		PingInterval:  getEnvAsDurationOrDefault("PLANET_PING_INTERVAL", 30*time.Second),
		SendBuffer:    getEnvAsIntOrDefault("PLANET_SEND_BUFFER", 16),
		ConnectRate:   getEnvAsIntOrDefault("PLANET_CONNECT_RATE", 10),
		ConnectWindow: getEnvAsDurationOrDefault("PLANET_CONNECT_WINDOW", time.Minute),

		CircuitBreakerMaxRequests:         getEnvAsIntOrDefault("PLANET_CB_MAX_REQUESTS", 1),
		CircuitBreakerInterval:            getEnvAsDurationOrDefault("PLANET_CB_INTERVAL", 60*time.Second),
		CircuitBreakerTimeout:             getEnvAsDurationOrDefault("PLANET_CB_TIMEOUT", 30*time.Second),
		CircuitBreakerMaxConsecutiveFails: getEnvAsIntOrDefault("PLANET_CB_MAX_FAILS", 3),

		ShutdownTimeout: getEnvAsDurationOrDefault("PLANET_SHUTDOWN_TIMEOUT", 5*time.Second),
		StallTimeout:    getEnvAsDurationOrDefault("PLANET_STALL_TIMEOUT", 2*time.Second),
		Seed:            uint64(getEnvAsIntOrDefault("PLANET_SEED", 0)),
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

// Validate checks operational settings
func (c *EnvironmentConfig) Validate() error {
	if c.SpectatorAddr == "" {
		return &ValidationError{Field: "SpectatorAddr", Message: "must not be empty"}
	}
	if c.SpectatorPort < 1024 || c.SpectatorPort > 65535 {
		return &ValidationError{Field: "SpectatorPort", Message: "must be between 1024 and 65535"}
	}
	if c.MaxSpectators < 1 || c.MaxSpectators > 1000 {
		return &ValidationError{Field: "MaxSpectators", Message: "must be between 1 and 1000"}
	}
	if c.WriteTimeout < time.Second || c.WriteTimeout > time.Minute {
		return &ValidationError{Field: "WriteTimeout", Message: "must be between 1s and 1m"}
	}
	if c.PingInterval < time.Second || c.PingInterval > time.Minute {
		return &ValidationError{Field: "PingInterval", Message: "must be between 1s and 1m"}
	}
	if c.SendBuffer < 1 {
		return &ValidationError{Field: "SendBuffer", Message: "must be at least 1"}
	}
	if c.CircuitBreakerMaxRequests < 1 {
		return &ValidationError{Field: "CircuitBreakerMaxRequests", Message: "must be at least 1"}
	}
	if c.ConnectRate < 0 {
		return &ValidationError{Field: "ConnectRate", Message: "must not be negative"}
	}
	if c.ConnectRate > 0 && c.ConnectWindow <= 0 {
		return &ValidationError{Field: "ConnectWindow", Message: "must be positive when ConnectRate is set"}
	}
	if c.CircuitBreakerInterval <= 0 {
		return &ValidationError{Field: "CircuitBreakerInterval", Message: "must be positive"}
	}
	if c.CircuitBreakerTimeout <= 0 {
		return &ValidationError{Field: "CircuitBreakerTimeout", Message: "must be positive"}
	}
	if c.CircuitBreakerMaxConsecutiveFails < 1 {
		return &ValidationError{Field: "CircuitBreakerMaxConsecutiveFails", Message: "must be at least 1"}
	}
	if c.ShutdownTimeout < time.Second {
		return &ValidationError{Field: "ShutdownTimeout", Message: "must be at least 1s"}
	}
	if c.StallTimeout <= 0 {
		return &ValidationError{Field: "StallTimeout", Message: "must be positive"}
	}
	return nil
}

// ListenAddress returns host:port for the spectator server
func (c *EnvironmentConfig) ListenAddress() string {
	return c.SpectatorAddr + ":" + strconv.Itoa(c.SpectatorPort)
}

// ApplyEnvironmentOverrides applies PLANET_* gameplay overrides to config
// and re-validates it.
func ApplyEnvironmentOverrides(config *GameConfig) error {
	config.Loop.FrameRate = getEnvAsIntOrDefault("PLANET_FRAME_RATE", config.Loop.FrameRate)
	config.Bodies.SpawnOdds = getEnvAsIntOrDefault("PLANET_SPAWN_ODDS", config.Bodies.SpawnOdds)
	config.Bodies.StartingMass = getEnvAsIntOrDefault("PLANET_STARTING_MASS", config.Bodies.StartingMass)
	config.Physics.Acceleration = getEnvAsFloatOrDefault("PLANET_ACCELERATION", config.Physics.Acceleration)
	config.Physics.CorrectAxisReference = getEnvAsBoolOrDefault("PLANET_CORRECT_AXIS", config.Physics.CorrectAxisReference)
	config.Audio.Enabled = getEnvAsBoolOrDefault("PLANET_AUDIO", config.Audio.Enabled)
	config.Assets.Dir = getEnvOrDefault("PLANET_ASSETS_DIR", config.Assets.Dir)
	config.Spectator.Enabled = getEnvAsBoolOrDefault("PLANET_SPECTATOR", config.Spectator.Enabled)

	return config.Validate()
}

func getEnvOrDefault(key, defaultValue string) string {
	if value, ok := os.LookupEnv(key); ok && value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsIntOrDefault(key string, defaultValue int) int {
	if value, err := strconv.Atoi(os.Getenv(key)); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsBoolOrDefault(key string, defaultValue bool) bool {
	if value, err := strconv.ParseBool(os.Getenv(key)); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsFloatOrDefault(key string, defaultValue float64) float64 {
	if value, err := strconv.ParseFloat(os.Getenv(key), 64); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	if value, err := time.ParseDuration(os.Getenv(key)); err == nil {
		return value
	}
	return defaultValue
}

// SpectatorAddress picks the spectator listen address: the
// PLANET_SPECTATOR_ADDR/PLANET_SPECTATOR_PORT pair when either is set,
// otherwise the game config's spectator.address.
func SpectatorAddress(config *GameConfig, env *EnvironmentConfig) string {
	_, addrSet := os.LookupEnv("PLANET_SPECTATOR_ADDR")
	_, portSet := os.LookupEnv("PLANET_SPECTATOR_PORT")
	if addrSet || portSet {
		return env.ListenAddress()
	}
	return config.Spectator.Address
}
