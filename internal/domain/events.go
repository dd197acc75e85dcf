package domain

import (
	"time"
)

// ChangeKind names a persistence change other parts of the application react
// to (gallery refresh, tree re-render, badge counts).
type ChangeKind string

const (
	ChangeMemoryAdded       ChangeKind = "memoryAdded"
	ChangeMemoryUpdated     ChangeKind = "memoryUpdated"
	ChangeMemoryDeleted     ChangeKind = "memoryDeleted"
	ChangeFamilyTreeUpdated ChangeKind = "familyTreeUpdated"
)

// ChangeEvent is delivered to registered listeners after a save has been
// confirmed. ScopeID is the family or user scope the entity belongs to;
// Entity is the saved value (nil for deletions).
type ChangeEvent struct {
	Kind       ChangeKind  `json:"kind"`
	EntityID   string      `json:"entityId"`
	ScopeID    string      `json:"scopeId"`
	Entity     interface{} `json:"entity,omitempty"`
	OccurredAt time.Time   `json:"occurredAt"`
}

// NewChangeEvent stamps a change notification with the current time.
func NewChangeEvent(kind ChangeKind, entityID, scopeID string, entity interface{}) ChangeEvent {
	return ChangeEvent{
		Kind:       kind,
		EntityID:   entityID,
		ScopeID:    scopeID,
		Entity:     entity,
		OccurredAt: time.Now(),
	}
}
