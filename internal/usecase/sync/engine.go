// Package sync applies catalog change events to the search indexes. Event
// delivery is at-least-once and unordered, so every handler is idempotent.
package sync

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/opencatalog/searchsync/internal/domain"
	"github.com/opencatalog/searchsync/internal/domain/patch"
	"github.com/opencatalog/searchsync/internal/metrics"
	"github.com/opencatalog/searchsync/internal/store"
)

type handler func(ctx context.Context, ev *domain.ChangeEvent) error

// Engine routes change events to per-entity-type handlers.
type Engine struct {
	store    Store
	builder  DocumentBuilder
	logger   *zap.Logger
	handlers map[string]handler
}

// New creates a sync engine.
func New(s Store, b DocumentBuilder, logger *zap.Logger) *Engine {
	e := &Engine{store: s, builder: b, logger: logger}

	e.handlers = map[string]handler{
		domain.EntityTable:     e.applyDocument,
		domain.EntityTopic:     e.applyDocument,
		domain.EntityDashboard: e.applyDocument,
		domain.EntityPipeline:  e.applyDocument,
		domain.EntityMlModel:   e.applyDocument,
		domain.EntityContainer: e.applyDocument,
		domain.EntityQuery:     e.applyDocument,
		domain.EntityUser:      e.applyDocument,
		domain.EntityTeam:      e.applyDocument,

		domain.EntityGlossaryTerm: e.applyGlossaryTerm,
		domain.EntityTag:          e.applyTag,

		domain.EntityGlossary:         e.applyParent,
		domain.EntityClassification:   e.applyParent,
		domain.EntityDatabase:         e.applyParent,
		domain.EntityDatabaseSchema:   e.applyParent,
		domain.EntityDatabaseService:  e.applyParent,
		domain.EntityMessagingService: e.applyParent,
		domain.EntityDashboardService: e.applyParent,
		domain.EntityPipelineService:  e.applyParent,
		domain.EntityMlModelService:   e.applyParent,
		domain.EntityStorageService:   e.applyParent,
	}
	return e
}

// Apply dispatches one change event. Unknown entity types fail loudly so a
// catalog schema drift is caught instead of silently dropping events.
func (e *Engine) Apply(ctx context.Context, ev *domain.ChangeEvent) error {
	h, ok := e.handlers[ev.EntityType]
	if !ok {
		metrics.RecordSyncEvent(ev.EntityType, string(ev.EventType), "rejected")
		return fmt.Errorf("%w: %q", domain.ErrUnknownEntityType, ev.EntityType)
	}

	if err := h(ctx, ev); err != nil {
		metrics.RecordSyncEvent(ev.EntityType, string(ev.EventType), "failed")
		return err
	}

	metrics.RecordSyncEvent(ev.EntityType, string(ev.EventType), "applied")
	e.logger.Debug("applied change event",
		zap.String("entityType", ev.EntityType),
		zap.String("eventType", string(ev.EventType)),
		zap.String("entityId", ev.EntityID.String()),
	)
	return nil
}

// BulkWrite applies a batch of pre-built operations in one round trip.
func (e *Engine) BulkWrite(ctx context.Context, ops []store.BulkOperation) (*store.BulkResult, error) {
	res, err := e.store.Bulk(ctx, ops)
	if err != nil {
		return nil, fmt.Errorf("bulk write: %w", err)
	}
	metrics.RecordBulkItems(res.Succeeded, res.Failed)
	if res.Failed > 0 {
		e.logger.Warn("bulk write finished with item failures",
			zap.Int("succeeded", res.Succeeded),
			zap.Int("failed", res.Failed),
		)
	}
	return res, nil
}

// applyDocument handles entity types whose documents live one-to-one in a
// single index.
func (e *Engine) applyDocument(ctx context.Context, ev *domain.ChangeEvent) error {
	index, err := domain.IndexForEntity(ev.EntityType)
	if err != nil {
		return err
	}
	id := ev.EntityID.String()

	switch ev.EventType {
	case domain.EventCreated:
		doc, err := e.buildDocument(ev)
		if err != nil {
			return err
		}
		if err := e.store.UpsertDocument(ctx, index, id, doc); err != nil {
			return domain.NewSyncError("create", index, id, err)
		}
		return nil

	case domain.EventUpdated:
		return e.applyUpdate(ctx, index, ev)

	case domain.EventSoftDeleted:
		script, err := patch.NewScript(
			patch.Set("deleted", true),
			patch.Set("updatedAt", ev.Timestamp),
		)
		if err != nil {
			return err
		}
		if err := e.store.UpdateDocument(ctx, index, id, script, nil); err != nil {
			return domain.NewSyncError("soft-delete", index, id, err)
		}
		return nil

	case domain.EventDeleted:
		if err := e.store.DeleteDocument(ctx, index, id, store.RefreshWait); err != nil {
			return domain.NewSyncError("delete", index, id, err)
		}
		return nil

	default:
		return fmt.Errorf("unknown event type %q for %s/%s", ev.EventType, ev.EntityType, id)
	}
}

// applyUpdate reindexes the full snapshot on a version bump. A same-version
// update carries only metadata deltas, which become a patch script; deltas
// with no recognized operation leave the document untouched.
func (e *Engine) applyUpdate(ctx context.Context, index string, ev *domain.ChangeEvent) error {
	id := ev.EntityID.String()

	if !ev.MetadataOnly() {
		doc, err := e.buildDocument(ev)
		if err != nil {
			return err
		}
		if err := e.store.UpsertDocument(ctx, index, id, doc); err != nil {
			return domain.NewSyncError("update", index, id, err)
		}
		return nil
	}

	script, ok := BuildPatchScript(ev)
	if !ok {
		return nil
	}
	if err := e.store.UpdateDocument(ctx, index, id, script, nil); err != nil {
		return domain.NewSyncError("patch", index, id, err)
	}
	return nil
}

func (e *Engine) buildDocument(ev *domain.ChangeEvent) (map[string]any, error) {
	if ev.Entity == nil {
		return nil, fmt.Errorf("%s %s: %w", ev.EntityType, ev.EntityID, domain.ErrMissingEntity)
	}
	doc, err := e.builder.Build(ev.EntityType, ev.Entity)
	if err != nil {
		return nil, fmt.Errorf("build document %s/%s: %w", ev.EntityType, ev.EntityID, err)
	}
	return doc, nil
}
