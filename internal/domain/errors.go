package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrUnknownEntityType signals an entity type with no index routing.
	ErrUnknownEntityType = errors.New("unknown entity type")
	// ErrUnknownChartType signals an insight chart with no aggregation or processor.
	ErrUnknownChartType = errors.New("unknown chart type")
	// ErrResultWindowExceeded signals pagination past the index result window.
	ErrResultWindowExceeded = errors.New("result window exceeded")
	// ErrMissingEntity signals an event without the entity snapshot it requires.
	ErrMissingEntity = errors.New("event carries no entity snapshot")
)

// SyncError wraps an index store failure with the operation context it
// happened under. Single-document writes are never silently swallowed.
type SyncError struct {
	Op       string
	Index    string
	EntityID string
	Err      error
}

func (e *SyncError) Error() string {
	return fmt.Sprintf("sync %s %s/%s: %v", e.Op, e.Index, e.EntityID, e.Err)
}

func (e *SyncError) Unwrap() error { return e.Err }

// NewSyncError creates a SyncError.
func NewSyncError(op, index, entityID string, err error) error {
	return &SyncError{Op: op, Index: index, EntityID: entityID, Err: err}
}
