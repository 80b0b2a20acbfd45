package sync

import (
	"context"

	"github.com/opencatalog/searchsync/internal/domain/criteria"
	"github.com/opencatalog/searchsync/internal/domain/patch"
	"github.com/opencatalog/searchsync/internal/store"
)

// Store is the consumer interface for index mutations (ISP).
type Store interface {
	UpsertDocument(ctx context.Context, index, id string, doc map[string]any) error
	UpdateDocument(ctx context.Context, index, id string, script patch.Script, upsert map[string]any) error
	DeleteDocument(ctx context.Context, index, id string, refresh store.Refresh) error
	DeleteByQuery(ctx context.Context, index string, c criteria.Criteria, refresh store.Refresh) error
	Scan(ctx context.Context, index, field, value string, from, size int) (*store.SearchResult, error)
	Bulk(ctx context.Context, ops []store.BulkOperation) (*store.BulkResult, error)
}

// DocumentBuilder turns an entity snapshot into its search document.
type DocumentBuilder interface {
	Build(entityType string, entity map[string]any) (map[string]any, error)
}
