package elastic

import (
	"context"
	"fmt"
	"strings"

	"github.com/olivere/elastic/v7"

	"github.com/opencatalog/searchsync/internal/domain/insight"
)

// Insight runs one chart aggregation tree over a report index and flattens
// the bucket tree into data points.
func (s *Store) Insight(ctx context.Context, req *insight.Request, root insight.AggNode) (*insight.Result, error) {
	bq := elastic.NewBoolQuery().
		Filter(elastic.NewRangeQuery(insight.FieldTimestamp).Gte(req.Start).Lte(req.End))
	if req.Team != "" {
		bq.Filter(elastic.NewTermsQuery(insight.FieldTeam, splitValues(req.Team)...))
	}
	if req.Tier != "" {
		bq.Filter(elastic.NewTermsQuery(insight.FieldEntityTier, splitValues(req.Tier)...))
	}

	res, err := s.client.Search().
		Index(req.Index).
		Query(bq).
		Size(0).
		Aggregation(root.Name, buildAgg(root)).
		Timeout(searchTimeout).
		Do(ctx)
	if err != nil {
		return nil, fmt.Errorf("insight %s: %w", req.Chart, err)
	}

	data := make([]map[string]any, 0)
	collect(res.Aggregations, root, map[string]any{}, &data)
	return &insight.Result{Chart: req.Chart, Data: data}, nil
}

// buildAgg translates an aggregation node tree into native aggregations.
func buildAgg(node insight.AggNode) elastic.Aggregation {
	switch node.Kind {
	case insight.AggDateHistogram:
		agg := elastic.NewDateHistogramAggregation().
			Field(node.Field).
			CalendarInterval("1d")
		for _, sub := range node.Subs {
			agg = agg.SubAggregation(sub.Name, buildAgg(sub))
		}
		return agg
	case insight.AggTerms:
		agg := elastic.NewTermsAggregation().Field(node.Field)
		if node.Size > 0 {
			agg = agg.Size(node.Size)
		}
		if node.Missing != "" {
			agg = agg.Missing(node.Missing)
		}
		if node.OrderByAgg != "" {
			agg = agg.OrderByAggregation(node.OrderByAgg, node.OrderAsc)
		}
		for _, sub := range node.Subs {
			agg = agg.SubAggregation(sub.Name, buildAgg(sub))
		}
		return agg
	case insight.AggMax:
		return elastic.NewMaxAggregation().Field(node.Field)
	default:
		return elastic.NewSumAggregation().Field(node.Field)
	}
}

// collect walks the response bucket tree. Bucketing nodes fan rows out;
// metric and annotation sub-aggregations attach values to the current row.
func collect(aggs elastic.Aggregations, node insight.AggNode, row map[string]any, out *[]map[string]any) {
	switch node.Kind {
	case insight.AggDateHistogram:
		hist, ok := aggs.DateHistogram(node.Name)
		if !ok {
			return
		}
		for _, b := range hist.Buckets {
			next := cloneRow(row)
			next["timestamp"] = int64(b.Key)
			if len(node.Subs) == 0 {
				next["count"] = b.DocCount
				*out = append(*out, next)
				continue
			}
			for _, sub := range node.Subs {
				collect(b.Aggregations, sub, next, out)
			}
		}
	case insight.AggTerms:
		terms, ok := aggs.Terms(node.Name)
		if !ok {
			return
		}
		for _, b := range terms.Buckets {
			next := cloneRow(row)
			next[node.Name] = fmt.Sprintf("%v", b.Key)
			for _, sub := range node.Subs {
				attach(b.Aggregations, sub, next)
			}
			*out = append(*out, next)
		}
	}
}

// attach resolves a sub-aggregation of a terms bucket into a row value.
// Nested terms annotations collapse to their top bucket.
func attach(aggs elastic.Aggregations, node insight.AggNode, row map[string]any) {
	switch node.Kind {
	case insight.AggSum:
		if m, ok := aggs.Sum(node.Name); ok && m.Value != nil {
			row[node.Name] = *m.Value
		}
	case insight.AggMax:
		if m, ok := aggs.Max(node.Name); ok && m.Value != nil {
			row[node.Name] = *m.Value
		}
	case insight.AggTerms:
		if t, ok := aggs.Terms(node.Name); ok && len(t.Buckets) > 0 {
			row[node.Name] = fmt.Sprintf("%v", t.Buckets[0].Key)
		}
	}
}

func cloneRow(row map[string]any) map[string]any {
	next := make(map[string]any, len(row)+2)
	for k, v := range row {
		next[k] = v
	}
	return next
}

func splitValues(csv string) []any {
	parts := strings.Split(csv, ",")
	out := make([]any, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
