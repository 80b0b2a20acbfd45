package sync

import (
	"context"
	"fmt"

	"github.com/opencatalog/searchsync/internal/domain"
	"github.com/opencatalog/searchsync/internal/domain/criteria"
	"github.com/opencatalog/searchsync/internal/store"
)

// cascadeRule tells which child index a container deletion sweeps and how
// the orphaned documents are matched.
type cascadeRule struct {
	index string
	match func(ev *domain.ChangeEvent) criteria.Criteria
}

// cascades maps container entity types to their delete rule. Containers
// carry no search documents of their own; only their hard deletion touches
// the indexes.
var cascades = map[string]cascadeRule{
	domain.EntityGlossary: {
		index: domain.GlossaryIndex,
		match: func(ev *domain.ChangeEvent) criteria.Criteria {
			return criteria.AllOf(criteria.Match("glossary.id", ev.EntityID.String()))
		},
	},
	domain.EntityClassification: {
		index: domain.TagIndex,
		match: func(ev *domain.ChangeEvent) criteria.Criteria {
			return criteria.AllOf(criteria.Wildcard("fullyQualifiedName", ev.EntityFQN+".*"))
		},
	},
	domain.EntityDatabase: {
		index: domain.TableIndex,
		match: func(ev *domain.ChangeEvent) criteria.Criteria {
			return criteria.AllOf(
				criteria.Term("database.name", ev.EntityString("name")),
				criteria.Term("service.name", ev.EntityString("service", "name")),
			)
		},
	},
	domain.EntityDatabaseSchema: {
		index: domain.TableIndex,
		match: func(ev *domain.ChangeEvent) criteria.Criteria {
			return criteria.AllOf(
				criteria.Term("databaseSchema.name", ev.EntityString("name")),
				criteria.Term("database.name", ev.EntityString("database", "name")),
			)
		},
	},
	domain.EntityDatabaseService:  serviceCascade(domain.TableIndex),
	domain.EntityMessagingService: serviceCascade(domain.TopicIndex),
	domain.EntityDashboardService: serviceCascade(domain.DashboardIndex),
	domain.EntityPipelineService:  serviceCascade(domain.PipelineIndex),
	domain.EntityMlModelService:   serviceCascade(domain.MlModelIndex),
	domain.EntityStorageService:   serviceCascade(domain.ContainerIndex),
}

func serviceCascade(index string) cascadeRule {
	return cascadeRule{
		index: index,
		match: func(ev *domain.ChangeEvent) criteria.Criteria {
			return criteria.AllOf(criteria.Term("service.name", ev.EntityString("name")))
		},
	}
}

// applyParent handles container entity types. Anything but a hard delete
// is a no-op because containers are denormalized into their children.
func (e *Engine) applyParent(ctx context.Context, ev *domain.ChangeEvent) error {
	if ev.EventType != domain.EventDeleted {
		return nil
	}

	rule, ok := cascades[ev.EntityType]
	if !ok {
		return fmt.Errorf("%w: no cascade rule for %q", domain.ErrUnknownEntityType, ev.EntityType)
	}

	c := rule.match(ev)
	if err := e.store.DeleteByQuery(ctx, rule.index, c, store.RefreshImmediate); err != nil {
		return domain.NewSyncError("cascade-delete", rule.index, ev.EntityID.String(), err)
	}
	return nil
}

// applyGlossaryTerm handles glossary terms, whose hard deletion also sweeps
// every child term nested under it.
func (e *Engine) applyGlossaryTerm(ctx context.Context, ev *domain.ChangeEvent) error {
	if ev.EventType != domain.EventDeleted {
		return e.applyDocument(ctx, ev)
	}

	id := ev.EntityID.String()
	c := criteria.AnyOf(
		criteria.Match("id", id),
		criteria.Match("parent.id", id),
	)
	if err := e.store.DeleteByQuery(ctx, domain.GlossaryIndex, c, store.RefreshImmediate); err != nil {
		return domain.NewSyncError("cascade-delete", domain.GlossaryIndex, id, err)
	}
	return nil
}

// applyTag handles tags, whose hard deletion also rewrites every document
// still referencing the tag.
func (e *Engine) applyTag(ctx context.Context, ev *domain.ChangeEvent) error {
	if ev.EventType != domain.EventDeleted {
		return e.applyDocument(ctx, ev)
	}

	id := ev.EntityID.String()
	if err := e.store.DeleteDocument(ctx, domain.TagIndex, id, store.RefreshWait); err != nil {
		return domain.NewSyncError("delete", domain.TagIndex, id, err)
	}
	return e.removeTagReferences(ctx, ev.EntityFQN)
}
