// pkg/event/event_test.go
package event

import (
	"sync"
	"testing"

	"github.com/opd-ai/go-planet-protector/pkg/physics"
)

func TestNewEventBus_Creation_ReturnsInitializedBus(t *testing.T) {
	bus := NewEventBus()

	if bus == nil {
		t.Fatal("NewEventBus() returned nil")
	}
	if bus.handlers == nil {
		t.Error("handlers map not initialized")
	}
	if bus.nextID != 1 {
		t.Errorf("expected nextID to be 1, got %d", bus.nextID)
	}
}

func TestBaseEvent_GetType_ReturnsCorrectType(t *testing.T) {
	tests := []struct {
		name      string
		eventType Type
		source    interface{}
	}{
		{"body_spawned", BodySpawned, "test_source"},
		{"weapon_upgraded", WeaponUpgraded, 123},
		{"nil_source", GameStarted, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := &BaseEvent{EventType: tt.eventType, Source: tt.source}
			if e.GetType() != tt.eventType {
				t.Errorf("GetType() = %v, want %v", e.GetType(), tt.eventType)
			}
			if e.GetSource() != tt.source {
				t.Errorf("GetSource() = %v, want %v", e.GetSource(), tt.source)
			}
		})
	}
}

func TestBusSubscribe_UniqueIDs(t *testing.T) {
	bus := NewEventBus()

	sub1 := bus.Subscribe(BodySpawned, func(Event) {})
	sub2 := bus.Subscribe(BodySpawned, func(Event) {})
	_ = bus.Subscribe(BodyDestroyed, func(Event) {})

	if sub1.ID == 0 || sub1.ID == sub2.ID {
		t.Errorf("subscription IDs %d and %d should be unique and non-zero", sub1.ID, sub2.ID)
	}
	if sub1.Cancel == nil {
		t.Error("subscription Cancel function should not be nil")
	}

	bus.mu.RLock()
	defer bus.mu.RUnlock()
	if len(bus.handlers[BodySpawned]) != 2 {
		t.Errorf("expected 2 handlers for BodySpawned, got %d", len(bus.handlers[BodySpawned]))
	}
	if len(bus.handlers[BodyDestroyed]) != 1 {
		t.Errorf("expected 1 handler for BodyDestroyed, got %d", len(bus.handlers[BodyDestroyed]))
	}
}

func TestBusPublish_RoutesByType(t *testing.T) {
	bus := NewEventBus()
	var spawned, destroyed int

	bus.Subscribe(BodySpawned, func(Event) { spawned++ })
	bus.Subscribe(BodySpawned, func(Event) { spawned++ })
	bus.Subscribe(BodyDestroyed, func(Event) { destroyed++ })

	bus.Publish(&BaseEvent{EventType: BodySpawned})
	bus.Publish(&BaseEvent{EventType: GameEnded})

	if spawned != 2 {
		t.Errorf("BodySpawned handlers called %d times, want 2", spawned)
	}
	if destroyed != 0 {
		t.Errorf("BodyDestroyed handler called %d times, want 0", destroyed)
	}
}

func TestSubscriptionCancel_RemovesOnlyTarget(t *testing.T) {
	bus := NewEventBus()
	var first, second int

	sub := bus.Subscribe(WeaponUpgraded, func(Event) { first++ })
	bus.Subscribe(WeaponUpgraded, func(Event) { second++ })

	sub.Cancel()
	bus.Publish(&BaseEvent{EventType: WeaponUpgraded})

	if first != 0 {
		t.Errorf("cancelled handler called %d times", first)
	}
	if second != 1 {
		t.Errorf("remaining handler called %d times, want 1", second)
	}

	// cancelling twice is harmless
	sub.Cancel()
}

func TestBusSubscribe_ConcurrentAccess_ThreadSafe(t *testing.T) {
	bus := NewEventBus()
	var wg sync.WaitGroup
	var mu sync.Mutex
	calls := 0

	const subscribers = 10
	wg.Add(subscribers)
	for i := 0; i < subscribers; i++ {
		go func() {
			defer wg.Done()
			bus.Subscribe(TickCompleted, func(Event) {
				mu.Lock()
				calls++
				mu.Unlock()
			})
		}()
	}
	wg.Wait()

	wg.Add(3)
	for i := 0; i < 3; i++ {
		go func() {
			defer wg.Done()
			bus.Publish(NewTickEvent(nil, 1, nil))
		}()
	}
	wg.Wait()

	if calls != subscribers*3 {
		t.Errorf("expected %d handler calls, got %d", subscribers*3, calls)
	}
}

func TestEventConstructors(t *testing.T) {
	pos := physics.Vector2D{X: 1, Y: 2}

	body := NewBodyEvent(BodyDestroyed, "s", 7, 0, 150, pos)
	if body.GetType() != BodyDestroyed || body.BodyID != 7 || body.StartingMass != 150 || body.Position != pos {
		t.Errorf("NewBodyEvent() = %+v", body)
	}

	up := NewUpgradeEvent(WeaponUpgraded, "s", 2, 200, 50)
	if up.GetType() != WeaponUpgraded || up.Power != 2 || up.UpgradeCost != 200 || up.Balance != 50 {
		t.Errorf("NewUpgradeEvent() = %+v", up)
	}

	col := NewCollisionEvent("s", 1, 9)
	if col.GetType() != AnchorDestroyed || col.AnchorID != 1 || col.BodyID != 9 {
		t.Errorf("NewCollisionEvent() = %+v", col)
	}

	tick := NewTickEvent("s", 42, "snap")
	if tick.GetType() != TickCompleted || tick.Tick != 42 || tick.Snapshot != "snap" {
		t.Errorf("NewTickEvent() = %+v", tick)
	}
}
