package elastic

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/olivere/elastic/v7"
	"go.uber.org/zap"

	"github.com/opencatalog/searchsync/internal/domain/query"
	"github.com/opencatalog/searchsync/internal/store"
)

// Search runs one search request: text query, optional raw filter, the
// mandatory liveness term, highlighting, and facet aggregations.
func (s *Store) Search(ctx context.Context, req *store.SearchRequest) (*store.SearchResult, error) {
	svc := s.client.Search().
		Index(req.Index).
		Query(s.buildSearchQuery(req)).
		From(req.From).
		Size(req.Size).
		Timeout(searchTimeout)

	if req.ExactHitCount {
		svc = svc.TrackTotalHits(true)
	} else {
		svc = svc.TrackTotalHits(query.MaxResultHits)
	}

	if req.PostFilter != "" {
		if pf, ok := s.unwrapFilter(req.PostFilter); ok {
			svc = svc.PostFilter(pf)
		}
	}
	if len(req.Query.Highlights) > 0 {
		svc = svc.Highlight(buildHighlight(req.Query.Highlights))
	}
	for _, f := range req.Query.Facets {
		svc = svc.Aggregation(f.Name, buildFacet(f))
	}
	if req.SortField != "" {
		svc = svc.Sort(req.SortField, req.SortAsc)
	}
	if len(req.SourceFields) > 0 {
		svc = svc.FetchSourceContext(
			elastic.NewFetchSourceContext(true).Include(req.SourceFields...))
	}

	res, err := svc.Do(ctx)
	if err != nil {
		return nil, fmt.Errorf("search %s: %w", req.Index, err)
	}
	return s.parseSearchResult(res, req.Query.Facets), nil
}

// Scan pages through live documents matching a single full-text clause.
// Used by batch maintenance jobs, so it tolerates deeper latency.
func (s *Store) Scan(ctx context.Context, index, field, value string, from, size int) (*store.SearchResult, error) {
	bq := elastic.NewBoolQuery().
		Must(elastic.NewMatchQuery(field, value)).
		Must(elastic.NewTermQuery("deleted", false))

	res, err := s.client.Search().
		Index(index).
		Query(bq).
		From(from).
		Size(size).
		Timeout(scanTimeout).
		TrackTotalHits(true).
		Do(ctx)
	if err != nil {
		return nil, fmt.Errorf("scan %s: %w", index, err)
	}
	return s.parseSearchResult(res, nil), nil
}

// suggesterName is the completion suggester name shared with the index
// mapping.
const suggesterName = "metadata-suggest"

// buildSuggester translates a suggest request into a completion suggester.
// Only the default suggest field carries the deleted category context in
// its mapping; custom completion fields get no context query.
func buildSuggester(req *store.SuggestRequest) *elastic.CompletionSuggester {
	field := req.Field
	if field == "" {
		field = "suggest"
	}

	sugg := elastic.NewCompletionSuggester(suggesterName).
		Field(field).
		Prefix(req.Prefix).
		Size(req.Size).
		SkipDuplicates(true)
	if req.Fuzzy {
		sugg = sugg.FuzzyOptions(elastic.NewFuzzyCompletionSuggesterOptions().EditDistance("AUTO"))
	}
	if strings.EqualFold(field, "suggest") {
		sugg = sugg.ContextQuery(elastic.NewSuggesterCategoryQuery(
			"deleted", strconv.FormatBool(req.IncludeDeleted)))
	}
	return sugg
}

// Suggest returns search-as-you-type completions.
func (s *Store) Suggest(ctx context.Context, req *store.SuggestRequest) ([]store.Suggestion, error) {
	sugg := buildSuggester(req)

	res, err := s.client.Search().
		Index(req.Index).
		Suggester(sugg).
		Timeout(searchTimeout).
		Do(ctx)
	if err != nil {
		return nil, fmt.Errorf("suggest %s: %w", req.Index, err)
	}

	var out []store.Suggestion
	for _, suggestion := range res.Suggest[suggesterName] {
		for _, opt := range suggestion.Options {
			sg := store.Suggestion{Text: opt.Text}
			if len(opt.Source) > 0 {
				var src map[string]any
				if err := json.Unmarshal(opt.Source, &src); err == nil {
					sg.Source = src
				}
			}
			out = append(out, sg)
		}
	}
	return out, nil
}

// FieldAggregate returns every distinct value of a keyword field, ordered
// by key, with document counts. No hits are fetched.
func (s *Store) FieldAggregate(ctx context.Context, index, field string) ([]store.FieldBucket, error) {
	agg := elastic.NewTermsAggregation().
		Field(field).
		Size(query.MaxAggregateSize).
		OrderByKeyAsc()

	res, err := s.client.Search().
		Index(index).
		Size(0).
		Aggregation("values", agg).
		Timeout(searchTimeout).
		Do(ctx)
	if err != nil {
		return nil, fmt.Errorf("aggregate %s.%s: %w", index, field, err)
	}

	terms, ok := res.Aggregations.Terms("values")
	if !ok {
		return nil, nil
	}
	buckets := make([]store.FieldBucket, 0, len(terms.Buckets))
	for _, b := range terms.Buckets {
		buckets = append(buckets, store.FieldBucket{
			Key:   fmt.Sprintf("%v", b.Key),
			Count: b.DocCount,
		})
	}
	return buckets, nil
}

// buildSearchQuery combines the text query, the optional caller filter,
// and the liveness term into the final boolean query. The deleted term is
// always ANDed: IncludeDeleted selects soft-deleted documents, it never
// widens the query to both.
func (s *Store) buildSearchQuery(req *store.SearchRequest) elastic.Query {
	bq := elastic.NewBoolQuery().Must(buildTextQuery(req.Query))
	if req.Filter != "" {
		if fq, ok := s.unwrapFilter(req.Filter); ok {
			bq.Filter(fq)
		}
	}
	bq.Must(elastic.NewTermQuery("deleted", req.IncludeDeleted))
	return bq
}

// buildTextQuery translates a query description into the engine query,
// wrapping it in an additive field-value score when a usage boost is set.
func buildTextQuery(d query.Description) elastic.Query {
	qs := elastic.NewQueryStringQuery(d.Query)
	for _, f := range d.Fields {
		if f.Boost > 0 {
			qs = qs.FieldWithBoost(f.Field, f.Boost)
		} else {
			qs = qs.Field(f.Field)
		}
	}
	if d.Operator != "" {
		qs = qs.DefaultOperator(d.Operator)
	}
	if d.Fuzziness != "" {
		qs = qs.Fuzziness(d.Fuzziness)
	}
	if d.Lenient {
		qs = qs.Lenient(true)
	}

	if d.Boost == nil {
		return qs
	}
	factor := elastic.NewFieldValueFactorFunction().
		Field(d.Boost.Field).
		Factor(d.Boost.Factor).
		Missing(d.Boost.Missing)
	return elastic.NewFunctionScoreQuery().
		Query(qs).
		AddScoreFunc(factor).
		BoostMode("sum")
}

// unwrapFilter parses a raw caller filter of the form {"query": {...}} and
// returns the inner query as an opaque passthrough. Malformed filters are
// logged and ignored rather than failing the whole search.
func (s *Store) unwrapFilter(raw string) (elastic.Query, bool) {
	var envelope map[string]json.RawMessage
	if err := json.Unmarshal([]byte(raw), &envelope); err != nil {
		s.logger.Warn("ignoring malformed search filter", zap.Error(err))
		return nil, false
	}
	inner, ok := envelope["query"]
	if !ok {
		s.logger.Warn("ignoring search filter without query clause")
		return nil, false
	}
	return elastic.NewRawStringQuery(string(inner)), true
}

func buildHighlight(fields []string) *elastic.Highlight {
	hl := elastic.NewHighlight().
		PreTags(query.PreTag).
		PostTags(query.PostTag)
	for _, f := range fields {
		hl = hl.Fields(elastic.NewHighlighterField(f))
	}
	return hl
}

func buildFacet(f query.Facet) elastic.Aggregation {
	agg := elastic.NewTermsAggregation().Field(f.Field)
	if f.Size > 0 {
		agg = agg.Size(f.Size)
	}
	return agg
}

func (s *Store) parseSearchResult(res *elastic.SearchResult, facets []query.Facet) *store.SearchResult {
	out := &store.SearchResult{Total: res.TotalHits()}

	if res.Hits != nil {
		out.Hits = make([]store.Hit, 0, len(res.Hits.Hits))
		for _, h := range res.Hits.Hits {
			hit := store.Hit{Index: h.Index, ID: h.Id}
			if h.Score != nil {
				hit.Score = *h.Score
			}
			if len(h.Source) > 0 {
				var src map[string]any
				if err := json.Unmarshal(h.Source, &src); err == nil {
					hit.Source = src
				}
			}
			if len(h.Highlight) > 0 {
				hit.Highlight = h.Highlight
			}
			out.Hits = append(out.Hits, hit)
		}
	}

	if len(facets) > 0 {
		out.Facets = make(map[string][]store.FieldBucket, len(facets))
		for _, f := range facets {
			terms, ok := res.Aggregations.Terms(f.Name)
			if !ok {
				continue
			}
			buckets := make([]store.FieldBucket, 0, len(terms.Buckets))
			for _, b := range terms.Buckets {
				buckets = append(buckets, store.FieldBucket{
					Key:   fmt.Sprintf("%v", b.Key),
					Count: b.DocCount,
				})
			}
			out.Facets[f.Name] = buckets
		}
	}
	return out
}
