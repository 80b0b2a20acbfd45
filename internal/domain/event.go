package domain

import (
	"github.com/google/uuid"
)

// EventType classifies an entity lifecycle event.
type EventType string

const (
	EventCreated     EventType = "entityCreated"
	EventUpdated     EventType = "entityUpdated"
	EventSoftDeleted EventType = "entitySoftDeleted"
	EventDeleted     EventType = "entityDeleted"
)

// FieldChange records a single field transition inside a change description.
// Values are decoded JSON (maps, slices, scalars); the consumer knows the
// shape per field name.
type FieldChange struct {
	Name     string `json:"name"`
	OldValue any    `json:"oldValue,omitempty"`
	NewValue any    `json:"newValue,omitempty"`
}

// ChangeDescription lists field-level deltas of a metadata-only update.
// It is only populated when the entity version did not change.
type ChangeDescription struct {
	FieldsAdded   []FieldChange `json:"fieldsAdded,omitempty"`
	FieldsUpdated []FieldChange `json:"fieldsUpdated,omitempty"`
	FieldsDeleted []FieldChange `json:"fieldsDeleted,omitempty"`
}

// ChangeEvent is one entity lifecycle event from the catalog. Delivery is
// at-least-once and unordered across entities; consumers must be idempotent.
type ChangeEvent struct {
	EntityID           uuid.UUID          `json:"entityId"`
	EntityType         string             `json:"entityType"`
	EventType          EventType          `json:"eventType"`
	EntityFQN          string             `json:"entityFullyQualifiedName,omitempty"`
	PreviousVersion    float64            `json:"previousVersion"`
	CurrentVersion     float64            `json:"currentVersion"`
	Timestamp          int64              `json:"timestamp"`
	ChangeDescription  *ChangeDescription `json:"changeDescription,omitempty"`
	Entity             map[string]any     `json:"entity,omitempty"`
}

// MetadataOnly reports whether the update did not bump the entity version,
// meaning only the change description can be applied as a partial patch.
func (e *ChangeEvent) MetadataOnly() bool {
	return e.PreviousVersion == e.CurrentVersion
}

// EntityString walks the entity snapshot along the given path and returns
// the string leaf, or "" when any step is missing.
func (e *ChangeEvent) EntityString(path ...string) string {
	current := e.Entity
	for i, key := range path {
		if current == nil {
			return ""
		}
		v, ok := current[key]
		if !ok {
			return ""
		}
		if i == len(path)-1 {
			s, _ := v.(string)
			return s
		}
		current, _ = v.(map[string]any)
	}
	return ""
}
