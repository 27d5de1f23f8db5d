// Package events carries title and sync notifications between the watcher,
// the regeneration workers and the sync tasks.
package events

import "time"

// Entity types.
const (
	EntityTitle = "title"
	EntityTask  = "task"
)

// Event is implemented by every event published on the Bus.
type Event interface {
	EventType() string
	EntityType() string // EntityTitle or EntityTask
	EntityID() int64    // title id; 0 for task events
	OccurredAt() time.Time
}

// BaseEvent provides common fields for all events.
type BaseEvent struct {
	Type      string    `json:"type"`
	Entity    string    `json:"entity_type"`
	ID        int64     `json:"entity_id"`
	Timestamp time.Time `json:"occurred_at"`
}

func (e BaseEvent) EventType() string     { return e.Type }
func (e BaseEvent) EntityType() string    { return e.Entity }
func (e BaseEvent) EntityID() int64       { return e.ID }
func (e BaseEvent) OccurredAt() time.Time { return e.Timestamp }

// NewBaseEvent stamps an event with the current time.
func NewBaseEvent(eventType, entityType string, entityID int64) BaseEvent {
	return BaseEvent{
		Type:      eventType,
		Entity:    entityType,
		ID:        entityID,
		Timestamp: time.Now(),
	}
}

func titleEvent(eventType string, titleID int) BaseEvent {
	return NewBaseEvent(eventType, EntityTitle, int64(titleID))
}
