// Package store defines the index store facade the sync and search layers
// are written against. The elastic subpackage is the production
// implementation; tests supply in-memory fakes.
package store

import (
	"context"

	"github.com/opencatalog/searchsync/internal/domain/criteria"
	"github.com/opencatalog/searchsync/internal/domain/insight"
	"github.com/opencatalog/searchsync/internal/domain/patch"
	"github.com/opencatalog/searchsync/internal/domain/query"
)

// Refresh controls when a write becomes visible to search.
type Refresh string

const (
	// RefreshNone leaves visibility to the index refresh cycle.
	RefreshNone Refresh = "false"
	// RefreshImmediate forces an index refresh before returning.
	RefreshImmediate Refresh = "true"
	// RefreshWait blocks until the next scheduled refresh makes the write
	// visible.
	RefreshWait Refresh = "wait_for"
)

// Pinger checks index store connectivity.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Writer provides document mutation operations.
type Writer interface {
	// UpsertDocument replaces the document or creates it when absent.
	UpsertDocument(ctx context.Context, index, id string, doc map[string]any) error
	// UpdateDocument applies a patch script to an existing document. When
	// the document is absent and upsert is non-nil, upsert is indexed
	// instead.
	UpdateDocument(ctx context.Context, index, id string, script patch.Script, upsert map[string]any) error
	// DeleteDocument removes one document. A missing document is not an
	// error.
	DeleteDocument(ctx context.Context, index, id string, refresh Refresh) error
	// DeleteByQuery removes every document matching the criteria.
	DeleteByQuery(ctx context.Context, index string, c criteria.Criteria, refresh Refresh) error
	// Bulk applies a batch of heterogeneous operations in one round trip.
	Bulk(ctx context.Context, ops []BulkOperation) (*BulkResult, error)
}

// Searcher provides read operations.
type Searcher interface {
	Search(ctx context.Context, req *SearchRequest) (*SearchResult, error)
	// Scan pages through every live document of an index matching a
	// full-text clause, for batch maintenance jobs.
	Scan(ctx context.Context, index, field, value string, from, size int) (*SearchResult, error)
	Suggest(ctx context.Context, req *SuggestRequest) ([]Suggestion, error)
	// FieldAggregate returns the distinct values of a keyword field with
	// per-value document counts.
	FieldAggregate(ctx context.Context, index, field string) ([]FieldBucket, error)
	// Insight runs a chart aggregation tree over a report index.
	Insight(ctx context.Context, req *insight.Request, root insight.AggNode) (*insight.Result, error)
}

// Store is the full index store facade.
type Store interface {
	Pinger
	Writer
	Searcher
	Close()
}

// SearchRequest carries one search call from the facade to the store.
type SearchRequest struct {
	Index string
	Query query.Description
	// Filter is an optional raw engine filter, passed through opaquely.
	Filter string
	// PostFilter narrows hits after aggregations are computed, so facet
	// counts ignore it.
	PostFilter string
	From       int
	Size       int
	// SortField orders hits by a field instead of relevance when set.
	SortField string
	SortAsc   bool
	// IncludeDeleted flips the mandatory deleted term: false matches live
	// documents, true matches soft-deleted ones.
	IncludeDeleted bool
	// SourceFields restricts the returned document fields. Empty means the
	// whole source.
	SourceFields []string
	// ExactHitCount requests an exact total instead of the capped
	// approximation.
	ExactHitCount bool
}

// Hit is one matched document.
type Hit struct {
	Index     string              `json:"index"`
	ID        string              `json:"id"`
	Score     float64             `json:"score"`
	Source    map[string]any      `json:"source"`
	Highlight map[string][]string `json:"highlight,omitempty"`
}

// FieldBucket is one value of a terms aggregation.
type FieldBucket struct {
	Key   string `json:"key"`
	Count int64  `json:"count"`
}

// SearchResult is a page of hits plus facet buckets.
type SearchResult struct {
	Total  int64                    `json:"total"`
	Hits   []Hit                    `json:"hits"`
	Facets map[string][]FieldBucket `json:"facets,omitempty"`
}

// SuggestRequest asks for search-as-you-type completions.
type SuggestRequest struct {
	Index          string
	Prefix         string
	Field          string
	Size           int
	Fuzzy          bool
	IncludeDeleted bool
}

// Suggestion is one completion candidate.
type Suggestion struct {
	Text   string         `json:"text"`
	Source map[string]any `json:"source,omitempty"`
}

// BulkKind selects the operation type of one bulk item.
type BulkKind int

const (
	// BulkUpsert indexes the document, replacing any existing one.
	BulkUpsert BulkKind = iota
	// BulkUpdate applies a patch script to an existing document.
	BulkUpdate
	// BulkDelete removes the document.
	BulkDelete
)

// BulkOperation is one item of a bulk request.
type BulkOperation struct {
	Kind   BulkKind
	Index  string
	ID     string
	Doc    map[string]any
	Script patch.Script
}

// BulkResult summarizes a bulk response.
type BulkResult struct {
	Succeeded int      `json:"succeeded"`
	Failed    int      `json:"failed"`
	Errors    []string `json:"errors,omitempty"`
}
