// pkg/event/event.go
package event

import (
	"sync"

	"github.com/opd-ai/go-planet-protector/pkg/physics"
)

// Type represents the type of event
type Type string

// Game event types
const (
	BodySpawned     Type = "body_spawned"
	BodyDestroyed   Type = "body_destroyed"
	AnchorDestroyed Type = "anchor_destroyed"
	WeaponUpgraded  Type = "weapon_upgraded"
	UpgradeRejected Type = "upgrade_rejected"
	GameStarted     Type = "game_started"
	GameEnded       Type = "game_ended"
	TickCompleted   Type = "tick_completed"
)

// Event is the base interface for all events
type Event interface {
	GetType() Type
	GetSource() interface{}
}

// BaseEvent provides common functionality for all events
type BaseEvent struct {
	EventType Type
	Source    interface{}
}

// GetType returns the event type
func (e *BaseEvent) GetType() Type {
	return e.EventType
}

// GetSource returns the event source
func (e *BaseEvent) GetSource() interface{} {
	return e.Source
}

// Handler is a function that handles events
type Handler func(Event)

// Subscription identifies a registered handler. Cancel removes it.
type Subscription struct {
	ID     uint64
	Cancel func()
}

type handlerEntry struct {
	id      uint64
	handler Handler
}

// Bus manages event subscriptions and dispatching. Handlers run
// synchronously on the publishing goroutine.
type Bus struct {
	handlers map[Type][]handlerEntry
	nextID   uint64
	mu       sync.RWMutex
}

// NewEventBus creates a new event bus
func NewEventBus() *Bus {
	return &Bus{
		handlers: make(map[Type][]handlerEntry),
		nextID:   1,
	}
}

// Subscribe registers a handler for a specific event type
func (b *Bus) Subscribe(eventType Type, handler Handler) *Subscription {
	b.mu.Lock()
	defer b.mu.Unlock()

	id := b.nextID
	b.nextID++
	b.handlers[eventType] = append(b.handlers[eventType], handlerEntry{id: id, handler: handler})

	return &Subscription{
		ID:     id,
		Cancel: func() { b.unsubscribe(eventType, id) },
	}
}

func (b *Bus) unsubscribe(eventType Type, id uint64) {
	b.mu.Lock()
	defer b.mu.Unlock()

	entries := b.handlers[eventType]
	for i, entry := range entries {
		if entry.id == id {
			b.handlers[eventType] = append(entries[:i:i], entries[i+1:]...)
			break
		}
	}
	if len(b.handlers[eventType]) == 0 {
		delete(b.handlers, eventType)
	}
}

// Publish sends an event to all subscribed handlers
func (b *Bus) Publish(event Event) {
	b.mu.RLock()
	entries := b.handlers[event.GetType()]
	b.mu.RUnlock()

	for _, entry := range entries {
		entry.handler(event)
	}
}

// Specific event implementations

// BodyEvent describes a body being spawned or destroyed
type BodyEvent struct {
	BaseEvent
	BodyID       uint64
	Mass         int
	StartingMass int
	Position     physics.Vector2D
	Credited     int
}

// NewBodyEvent creates a new body event
func NewBodyEvent(eventType Type, source interface{}, bodyID uint64, mass, startingMass int, position physics.Vector2D) *BodyEvent {
	return &BodyEvent{
		BaseEvent: BaseEvent{
			EventType: eventType,
			Source:    source,
		},
		BodyID:       bodyID,
		Mass:         mass,
		StartingMass: startingMass,
		Position:     position,
	}
}

// UpgradeEvent describes an accepted or rejected weapon upgrade
type UpgradeEvent struct {
	BaseEvent
	Power       int
	UpgradeCost int
	Balance     int
}

// NewUpgradeEvent creates a new upgrade event
func NewUpgradeEvent(eventType Type, source interface{}, power, upgradeCost, balance int) *UpgradeEvent {
	return &UpgradeEvent{
		BaseEvent: BaseEvent{
			EventType: eventType,
			Source:    source,
		},
		Power:       power,
		UpgradeCost: upgradeCost,
		Balance:     balance,
	}
}

// CollisionEvent records a body reaching the anchor
type CollisionEvent struct {
	BaseEvent
	AnchorID uint64
	BodyID   uint64
}

// NewCollisionEvent creates a new collision event
func NewCollisionEvent(source interface{}, anchorID, bodyID uint64) *CollisionEvent {
	return &CollisionEvent{
		BaseEvent: BaseEvent{
			EventType: AnchorDestroyed,
			Source:    source,
		},
		AnchorID: anchorID,
		BodyID:   bodyID,
	}
}

// GameEndEvent summarises a finished session
type GameEndEvent struct {
	BaseEvent
	Reason   string
	Tick     uint64
	Kills    int
	Credited int
	Balance  int
	Upgrades int
}

// TickEvent carries the state snapshot taken at the end of a tick
type TickEvent struct {
	BaseEvent
	Tick     uint64
	Snapshot interface{}
}

// NewTickEvent creates a new tick event
func NewTickEvent(source interface{}, tick uint64, snapshot interface{}) *TickEvent {
	return &TickEvent{
		BaseEvent: BaseEvent{
			EventType: TickCompleted,
			Source:    source,
		},
		Tick:     tick,
		Snapshot: snapshot,
	}
}
