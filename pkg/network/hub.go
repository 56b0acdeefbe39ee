// pkg/network/hub.go
package network

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/opd-ai/go-planet-protector/pkg/config"
	"github.com/opd-ai/go-planet-protector/pkg/engine"
	"github.com/opd-ai/go-planet-protector/pkg/event"
	"github.com/opd-ai/go-planet-protector/pkg/logging"
)

// ErrSlowSpectator is recorded against a spectator whose send buffer is full
var ErrSlowSpectator = errors.New("spectator send buffer full")

const maxSpectatorMessage = 512

// spectator is one connected viewer
type spectator struct {
	id    uint64
	conn  *websocket.Conn
	send  chan []byte
	guard *DeliveryGuard
}

// SpectatorHub fans session snapshots out to websocket viewers. It is fed
// from the event bus on the game loop goroutine and never blocks it:
// frames that do not fit a viewer's buffer are dropped and counted
// against that viewer's circuit breaker.
type SpectatorHub struct {
	env      *config.EnvironmentConfig
	every    uint64
	logger   *logging.Logger
	upgrader websocket.Upgrader
	limiter  *ConnectLimiter

	mu         sync.RWMutex
	spectators map[uint64]*spectator
	nextID     uint64
	latest     []byte
	closed     bool

	subs []*event.Subscription
}

// NewSpectatorHub creates a hub that forwards every broadcastEvery'th tick
func NewSpectatorHub(env *config.EnvironmentConfig, broadcastEvery int, logger *logging.Logger) *SpectatorHub {
	if logger == nil {
		logger = logging.NewDiscardLogger()
	}
	if broadcastEvery < 1 {
		broadcastEvery = 1
	}
	h := &SpectatorHub{
		env:    env,
		every:  uint64(broadcastEvery),
		logger: logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 4096,
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
		},
		spectators: make(map[uint64]*spectator),
		nextID:     1,
	}
	if env.ConnectRate > 0 {
		h.limiter = NewConnectLimiter(env.ConnectRate, env.ConnectWindow)
	}
	return h
}

// Attach subscribes the hub to a session's tick and game end events
func (h *SpectatorHub) Attach(bus *event.Bus) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.subs = append(h.subs,
		bus.Subscribe(event.TickCompleted, func(e event.Event) {
			tick, ok := e.(*event.TickEvent)
			if !ok || tick.Tick%h.every != 0 {
				return
			}
			state, ok := tick.Snapshot.(*engine.GameState)
			if !ok || state == nil {
				return
			}
			h.publish(SnapshotMessage(state))
		}),
		bus.Subscribe(event.GameEnded, func(e event.Event) {
			if end, ok := e.(*event.GameEndEvent); ok {
				h.publish(GameEndMessage(end))
			}
		}),
	)
}

func (h *SpectatorHub) publish(m *Message) {
	data, err := EncodeMessage(m)
	if err != nil {
		h.logger.Error(context.Background(), "failed to encode spectator frame", err)
		return
	}
	h.Broadcast(data)
}

// Broadcast queues data for every spectator. The most recent frame is
// also kept and sent to viewers that join later.
func (h *SpectatorHub) Broadcast(data []byte) {
	ctx := context.Background()

	h.mu.Lock()
	h.latest = data
	var tripped []*spectator
	for _, s := range h.spectators {
		err := s.guard.Execute(ctx, func() error {
			select {
			case s.send <- data:
				return nil
			default:
				return ErrSlowSpectator
			}
		})
		if err != nil && s.guard.Tripped() {
			tripped = append(tripped, s)
		}
	}
	h.mu.Unlock()

	for _, s := range tripped {
		h.logger.Warn(ctx, "dropping slow spectator", "spectator_id", s.id)
		h.remove(s)
	}
}

// ServeHTTP upgrades a request to a spectator connection
func (h *SpectatorHub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.mu.RLock()
	full := len(h.spectators) >= h.env.MaxSpectators
	closed := h.closed
	h.mu.RUnlock()

	if closed {
		http.Error(w, "spectator feed closed", http.StatusServiceUnavailable)
		return
	}
	if h.limiter != nil && !h.limiter.Allow(r.RemoteAddr) {
		h.logger.Warn(r.Context(), "rejecting spectator, connecting too often", "remote_addr", r.RemoteAddr)
		http.Error(w, "too many connection attempts", http.StatusTooManyRequests)
		return
	}
	if full {
		h.logger.Warn(r.Context(), "rejecting spectator, hub full", "max_spectators", h.env.MaxSpectators)
		http.Error(w, "too many spectators", http.StatusServiceUnavailable)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn(r.Context(), "websocket upgrade failed", "error", err.Error())
		return
	}

	s := h.add(conn)
	h.logger.Info(r.Context(), "spectator connected",
		"spectator_id", s.id,
		"remote_addr", r.RemoteAddr,
	)

	go h.writePump(s)
	go h.readPump(s)
}

func (h *SpectatorHub) add(conn *websocket.Conn) *spectator {
	h.mu.Lock()
	defer h.mu.Unlock()

	id := h.nextID
	h.nextID++
	s := &spectator{
		id:    id,
		conn:  conn,
		send:  make(chan []byte, h.env.SendBuffer),
		guard: NewDeliveryGuard(fmt.Sprintf("spectator-%d", id), h.env, h.logger),
	}
	if h.latest != nil {
		select {
		case s.send <- h.latest:
		default:
		}
	}
	h.spectators[id] = s
	return s
}

// remove unregisters s and closes its send channel, which ends its
// write pump. Removing twice is a no-op.
func (h *SpectatorHub) remove(s *spectator) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.spectators[s.id]; !ok {
		return
	}
	delete(h.spectators, s.id)
	close(s.send)
}

// readPump discards viewer input and keeps the read deadline fresh on
// pongs. It unregisters the spectator when the connection fails.
func (h *SpectatorHub) readPump(s *spectator) {
	defer h.remove(s)

	pongWait := 2 * h.env.PingInterval
	s.conn.SetReadLimit(maxSpectatorMessage)
	s.conn.SetReadDeadline(time.Now().Add(pongWait))
	s.conn.SetPongHandler(func(string) error {
		s.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		if _, _, err := s.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				h.logger.Debug(context.Background(), "spectator read failed",
					"spectator_id", s.id,
					"error", err.Error(),
				)
			}
			return
		}
	}
}

// writePump is the only writer on the connection
func (h *SpectatorHub) writePump(s *spectator) {
	ticker := time.NewTicker(h.env.PingInterval)
	defer func() {
		ticker.Stop()
		s.conn.Close()
		h.logger.Info(context.Background(), "spectator disconnected", "spectator_id", s.id)
	}()

	for {
		select {
		case data, ok := <-s.send:
			s.conn.SetWriteDeadline(time.Now().Add(h.env.WriteTimeout))
			if !ok {
				s.conn.WriteMessage(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
				return
			}
			if err := s.conn.WriteMessage(websocket.BinaryMessage, data); err != nil {
				h.remove(s)
				return
			}

		case <-ticker.C:
			s.conn.SetWriteDeadline(time.Now().Add(h.env.WriteTimeout))
			if err := s.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				h.remove(s)
				return
			}
		}
	}
}

// Count returns the number of connected spectators
func (h *SpectatorHub) Count() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.spectators)
}

// Close unsubscribes from the bus and disconnects every spectator
func (h *SpectatorHub) Close() {
	h.mu.Lock()
	subs := h.subs
	h.subs = nil
	h.closed = true
	all := make([]*spectator, 0, len(h.spectators))
	for _, s := range h.spectators {
		all = append(all, s)
	}
	h.mu.Unlock()

	for _, sub := range subs {
		sub.Cancel()
	}
	if h.limiter != nil {
		h.limiter.Close()
	}
	for _, s := range all {
		h.remove(s)
	}
}
