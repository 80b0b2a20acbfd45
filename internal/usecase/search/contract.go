package search

import (
	"context"

	"github.com/opencatalog/searchsync/internal/store"
)

// Store is the consumer interface for read operations (ISP).
type Store interface {
	Search(ctx context.Context, req *store.SearchRequest) (*store.SearchResult, error)
	Suggest(ctx context.Context, req *store.SuggestRequest) ([]store.Suggestion, error)
	FieldAggregate(ctx context.Context, index, field string) ([]store.FieldBucket, error)
}
