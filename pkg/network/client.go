// pkg/network/client.go
package network

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/opd-ai/go-planet-protector/pkg/config"
	"github.com/opd-ai/go-planet-protector/pkg/engine"
	"github.com/opd-ai/go-planet-protector/pkg/logging"
)

// ErrNotConnected is returned by operations that need a live connection
var ErrNotConnected = errors.New("spectator client not connected")

// SpectatorClient follows a spectator feed
type SpectatorClient struct {
	guard       *DeliveryGuard
	logger      *logging.Logger
	dialTimeout time.Duration
	readTimeout time.Duration

	mu     sync.Mutex
	conn   *websocket.Conn
	states chan *engine.GameState
	end    chan *GameEnd
	done   chan struct{}
}

// NewSpectatorClient creates a client whose dial is retried behind a
// circuit breaker configured from envConfig.
func NewSpectatorClient(envConfig *config.EnvironmentConfig, logger *logging.Logger) *SpectatorClient {
	if logger == nil {
		logger = logging.NewDiscardLogger()
	}
	return &SpectatorClient{
		guard:       NewDeliveryGuard("spectator-client", envConfig, logger),
		logger:      logger,
		dialTimeout: 10 * time.Second,
		readTimeout: 3 * envConfig.PingInterval,
		states:      make(chan *engine.GameState, 16),
		end:         make(chan *GameEnd, 1),
	}
}

// Connect dials url, e.g. ws://localhost:8080/ws, and starts receiving
func (c *SpectatorClient) Connect(ctx context.Context, url string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.conn != nil {
		return errors.New("spectator client already connected")
	}

	var conn *websocket.Conn
	err := c.guard.ExecuteWithRetry(ctx, func() error {
		dialCtx, cancel := context.WithTimeout(ctx, c.dialTimeout)
		defer cancel()

		var err error
		conn, _, err = websocket.DefaultDialer.DialContext(dialCtx, url, nil)
		return err
	})
	if err != nil {
		return fmt.Errorf("failed to connect to spectator feed %s: %w", url, err)
	}

	c.conn = conn
	c.done = make(chan struct{})
	go c.messageLoop(conn, c.done)

	c.logger.Info(ctx, "following spectator feed", "url", url)
	return nil
}

// States delivers snapshots. Snapshots are dropped while the channel is
// full, and it is closed when the feed ends.
func (c *SpectatorClient) States() <-chan *engine.GameState {
	return c.states
}

// End delivers the game summary if the server sends one
func (c *SpectatorClient) End() <-chan *GameEnd {
	return c.end
}

// Done is closed when the connection has ended
func (c *SpectatorClient) Done() <-chan struct{} {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.done
}

// Close ends the connection
func (c *SpectatorClient) Close() error {
	c.mu.Lock()
	conn, done := c.conn, c.done
	c.mu.Unlock()

	if conn == nil {
		return ErrNotConnected
	}

	conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
		time.Now().Add(time.Second))
	err := conn.Close()
	<-done
	return err
}

func (c *SpectatorClient) messageLoop(conn *websocket.Conn, done chan struct{}) {
	defer func() {
		close(c.states)
		close(done)
	}()

	conn.SetPingHandler(func(appData string) error {
		conn.SetReadDeadline(time.Now().Add(c.readTimeout))
		return conn.WriteControl(websocket.PongMessage, []byte(appData), time.Now().Add(time.Second))
	})

	for {
		conn.SetReadDeadline(time.Now().Add(c.readTimeout))
		msgType, data, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				c.logger.Warn(context.Background(), "spectator feed lost", "error", err.Error())
			}
			return
		}
		if msgType != websocket.BinaryMessage {
			continue
		}

		msg, err := DecodeMessage(data)
		if err != nil {
			c.logger.Warn(context.Background(), "ignoring bad spectator frame", "error", err.Error())
			continue
		}

		switch msg.Type {
		case MsgSnapshot:
			select {
			case c.states <- msg.State:
			default:
			}
		case MsgGameEnd:
			select {
			case c.end <- msg.End:
			default:
			}
		}
	}
}
