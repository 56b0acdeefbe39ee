// pkg/network/codec.go
package network

import (
	"fmt"

	"github.com/vmihailenco/msgpack/v5"

	"github.com/opd-ai/go-planet-protector/pkg/engine"
	"github.com/opd-ai/go-planet-protector/pkg/event"
)

// MessageType identifies a spectator feed frame
type MessageType string

const (
	MsgSnapshot MessageType = "snapshot"
	MsgGameEnd  MessageType = "game_end"
)

// Message is one binary websocket frame of the spectator feed
type Message struct {
	Type  MessageType       `msgpack:"type"`
	Tick  uint64            `msgpack:"tick"`
	State *engine.GameState `msgpack:"state,omitempty"`
	End   *GameEnd          `msgpack:"end,omitempty"`
}

// GameEnd summarises a finished session for spectators
type GameEnd struct {
	Reason   string `msgpack:"reason"`
	Kills    int    `msgpack:"kills"`
	Credited int    `msgpack:"credited"`
	Balance  int    `msgpack:"balance"`
	Upgrades int    `msgpack:"upgrades"`
}

// SnapshotMessage wraps a tick snapshot
func SnapshotMessage(state *engine.GameState) *Message {
	return &Message{Type: MsgSnapshot, Tick: state.Tick, State: state}
}

// GameEndMessage converts a GameEnded event
func GameEndMessage(e *event.GameEndEvent) *Message {
	return &Message{
		Type: MsgGameEnd,
		Tick: e.Tick,
		End: &GameEnd{
			Reason:   e.Reason,
			Kills:    e.Kills,
			Credited: e.Credited,
			Balance:  e.Balance,
			Upgrades: e.Upgrades,
		},
	}
}

// EncodeMessage serialises m with msgpack
func EncodeMessage(m *Message) ([]byte, error) {
	data, err := msgpack.Marshal(m)
	if err != nil {
		return nil, fmt.Errorf("failed to encode %s message: %w", m.Type, err)
	}
	return data, nil
}

// DecodeMessage parses a frame produced by EncodeMessage
func DecodeMessage(data []byte) (*Message, error) {
	var m Message
	if err := msgpack.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("failed to decode message: %w", err)
	}
	switch m.Type {
	case MsgSnapshot:
		if m.State == nil {
			return nil, fmt.Errorf("snapshot message at tick %d has no state", m.Tick)
		}
	case MsgGameEnd:
		if m.End == nil {
			return nil, fmt.Errorf("game end message at tick %d has no summary", m.Tick)
		}
	default:
		return nil, fmt.Errorf("unknown message type %q", m.Type)
	}
	return &m, nil
}
