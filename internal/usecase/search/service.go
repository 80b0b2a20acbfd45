// Package search is the read-side facade: it resolves the per-index query
// plan, validates pagination, and forwards to the index store.
package search

import (
	"context"
	"fmt"

	"github.com/opencatalog/searchsync/internal/domain"
	"github.com/opencatalog/searchsync/internal/domain/query"
	"github.com/opencatalog/searchsync/internal/store"
)

const (
	defaultPageSize    = 10
	defaultSuggestSize = 25
	matchAll           = "*"
)

// Request is one search call as the transport hands it over.
type Request struct {
	Query          string
	Index          string
	From           int
	Size           int
	SortField      string
	SortDescending bool
	Deleted        bool
	QueryFilter    string
	PostFilter     string
	TrackTotalHits bool
	SourceFields   []string
}

// SuggestRequest is one completion call.
type SuggestRequest struct {
	Index   string
	Prefix  string
	Field   string
	Size    int
	Deleted bool
}

// Service handles search, suggestion, and field aggregation reads.
type Service struct {
	store Store
}

// New creates a search service.
func New(s Store) *Service {
	return &Service{store: s}
}

// Search runs one ranked query against an index.
func (s *Service) Search(ctx context.Context, req *Request) (*store.SearchResult, error) {
	if req.From < 0 || req.Size < 0 {
		return nil, fmt.Errorf("negative pagination: from=%d size=%d", req.From, req.Size)
	}
	size := req.Size
	if size == 0 {
		size = defaultPageSize
	}
	if req.From+size > query.MaxResultWindow {
		return nil, fmt.Errorf(
			"from=%d size=%d exceeds window %d: %w",
			req.From, size, query.MaxResultWindow, domain.ErrResultWindowExceeded,
		)
	}

	text := req.Query
	if text == "" {
		text = matchAll
	}

	sr := &store.SearchRequest{
		Index:          req.Index,
		Query:          query.ForIndex(req.Index, text),
		Filter:         req.QueryFilter,
		PostFilter:     req.PostFilter,
		From:           req.From,
		Size:           size,
		SortField:      req.SortField,
		SortAsc:        !req.SortDescending,
		IncludeDeleted: req.Deleted,
		SourceFields:   req.SourceFields,
		ExactHitCount:  req.TrackTotalHits,
	}

	res, err := s.store.Search(ctx, sr)
	if err != nil {
		return nil, fmt.Errorf("search %s: %w", req.Index, err)
	}
	return res, nil
}

// Suggest returns search-as-you-type completions, fuzzy by default.
func (s *Service) Suggest(ctx context.Context, req *SuggestRequest) ([]store.Suggestion, error) {
	size := req.Size
	if size <= 0 {
		size = defaultSuggestSize
	}

	out, err := s.store.Suggest(ctx, &store.SuggestRequest{
		Index:          req.Index,
		Prefix:         req.Prefix,
		Field:          req.Field,
		Size:           size,
		Fuzzy:          true,
		IncludeDeleted: req.Deleted,
	})
	if err != nil {
		return nil, fmt.Errorf("suggest %s: %w", req.Index, err)
	}
	return out, nil
}

// Aggregate lists the distinct values of a keyword field with counts.
func (s *Service) Aggregate(ctx context.Context, index, field string) ([]store.FieldBucket, error) {
	if field == "" {
		return nil, fmt.Errorf("field is required")
	}
	buckets, err := s.store.FieldAggregate(ctx, index, field)
	if err != nil {
		return nil, fmt.Errorf("aggregate %s.%s: %w", index, field, err)
	}
	return buckets, nil
}
