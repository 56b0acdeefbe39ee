// Package network carries the live spectator feed: a websocket hub that
// fans session snapshots out to viewers, and a client that follows one.
// Delivery to each peer runs behind a circuit breaker so a stalled viewer
// is cut off instead of backing up the game loop.
package network

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/sony/gobreaker"

	"github.com/opd-ai/go-planet-protector/pkg/config"
	"github.com/opd-ai/go-planet-protector/pkg/logging"
)

// DeliveryGuard wraps network operations toward one peer with a circuit
// breaker. Consecutive failures open the breaker, after which operations
// fail immediately.
type DeliveryGuard struct {
	name       string
	breaker    *gobreaker.CircuitBreaker
	logger     *logging.Logger
	maxRetries int
	retryDelay time.Duration
}

// Operation is a single attempt at a network operation
type Operation func() error

// NewDeliveryGuard creates a guard named name, tuned by the circuit
// breaker settings in envConfig.
func NewDeliveryGuard(name string, envConfig *config.EnvironmentConfig, logger *logging.Logger) *DeliveryGuard {
	if logger == nil {
		logger = logging.NewDiscardLogger()
	}

	settings := gobreaker.Settings{
		Name:        name,
		MaxRequests: uint32(envConfig.CircuitBreakerMaxRequests),
		Interval:    envConfig.CircuitBreakerInterval,
		Timeout:     envConfig.CircuitBreakerTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= uint32(envConfig.CircuitBreakerMaxConsecutiveFails)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Info(context.Background(), "circuit breaker state changed",
				"name", name,
				"from", from.String(),
				"to", to.String(),
			)
		},
	}

	return &DeliveryGuard{
		name:       name,
		breaker:    gobreaker.NewCircuitBreaker(settings),
		logger:     logger,
		maxRetries: 3,
		retryDelay: time.Second,
	}
}

// Execute runs operation through the circuit breaker. While the breaker
// is open it returns an error without calling operation.
func (g *DeliveryGuard) Execute(ctx context.Context, operation Operation) error {
	_, err := g.breaker.Execute(func() (interface{}, error) {
		return nil, operation()
	})
	if err != nil {
		g.logger.LogWithContext(ctx, slog.LevelDebug, "guarded operation failed",
			"name", g.name,
			"error", err.Error(),
			"state", g.breaker.State().String(),
		)
		return fmt.Errorf("circuit breaker: %w", err)
	}
	return nil
}

// ExecuteWithRetry retries operation with a linearly growing delay. It
// gives up early once the breaker opens or ctx is done.
func (g *DeliveryGuard) ExecuteWithRetry(ctx context.Context, operation Operation) error {
	for attempt := 0; attempt < g.maxRetries; attempt++ {
		err := g.Execute(ctx, operation)
		if err == nil {
			return nil
		}

		if g.Tripped() {
			g.logger.Warn(ctx, "circuit breaker is open, skipping retries",
				"name", g.name,
				"attempt", attempt+1,
			)
			return err
		}

		if attempt == g.maxRetries-1 {
			return fmt.Errorf("max retries (%d) exceeded: %w", g.maxRetries, err)
		}

		delay := time.Duration(attempt+1) * g.retryDelay
		g.logger.Warn(ctx, "operation failed, retrying",
			"name", g.name,
			"attempt", attempt+1,
			"delay", delay.String(),
			"error", err.Error(),
		)

		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return fmt.Errorf("retry cancelled: %w", ctx.Err())
		}
	}

	return errors.New("unexpected exit from retry loop")
}

// Tripped reports whether the breaker is open
func (g *DeliveryGuard) Tripped() bool {
	return g.breaker.State() == gobreaker.StateOpen
}

// State returns the breaker state
func (g *DeliveryGuard) State() gobreaker.State {
	return g.breaker.State()
}

// Counts returns the breaker's request counters for the current interval
func (g *DeliveryGuard) Counts() gobreaker.Counts {
	return g.breaker.Counts()
}
