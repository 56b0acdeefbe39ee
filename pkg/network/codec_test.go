package network

import (
	"reflect"
	"strings"
	"testing"

	"github.com/vmihailenco/msgpack/v5"

	"github.com/opd-ai/go-planet-protector/pkg/event"
)

func TestSnapshotMessageRoundTrip(t *testing.T) {
	state := testState(42)

	data, err := EncodeMessage(SnapshotMessage(state))
	if err != nil {
		t.Fatalf("EncodeMessage failed: %v", err)
	}
	msg, err := DecodeMessage(data)
	if err != nil {
		t.Fatalf("DecodeMessage failed: %v", err)
	}

	if msg.Type != MsgSnapshot || msg.Tick != 42 {
		t.Errorf("got %s at tick %d, want snapshot at tick 42", msg.Type, msg.Tick)
	}
	if !reflect.DeepEqual(msg.State, state) {
		t.Errorf("state = %+v, want %+v", msg.State, state)
	}
}

func TestGameEndMessage(t *testing.T) {
	end := &event.GameEndEvent{
		BaseEvent: event.BaseEvent{EventType: event.GameEnded},
		Reason:    "anchor_destroyed",
		Tick:      900,
		Kills:     12,
		Credited:  1400,
		Balance:   300,
		Upgrades:  3,
	}

	data, err := EncodeMessage(GameEndMessage(end))
	if err != nil {
		t.Fatalf("EncodeMessage failed: %v", err)
	}
	msg, err := DecodeMessage(data)
	if err != nil {
		t.Fatalf("DecodeMessage failed: %v", err)
	}

	want := &GameEnd{Reason: "anchor_destroyed", Kills: 12, Credited: 1400, Balance: 300, Upgrades: 3}
	if msg.Type != MsgGameEnd || msg.Tick != 900 || !reflect.DeepEqual(msg.End, want) {
		t.Errorf("got %+v (end %+v), want game_end at 900 with %+v", msg, msg.End, want)
	}
}

func TestDecodeMessageRejects(t *testing.T) {
	encode := func(v interface{}) []byte {
		data, err := msgpack.Marshal(v)
		if err != nil {
			t.Fatalf("Marshal failed: %v", err)
		}
		return data
	}

	tests := []struct {
		name    string
		data    []byte
		wantErr string
	}{
		{"garbage", []byte{0xc1}, "failed to decode"},
		{"unknown type", encode(Message{Type: "chat"}), "unknown message type"},
		{"snapshot without state", encode(Message{Type: MsgSnapshot, Tick: 3}), "has no state"},
		{"end without summary", encode(Message{Type: MsgGameEnd, Tick: 3}), "has no summary"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := DecodeMessage(tt.data)
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("DecodeMessage() error = %v, want containing %q", err, tt.wantErr)
			}
		})
	}
}
