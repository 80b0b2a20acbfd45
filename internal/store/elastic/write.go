package elastic

import (
	"context"
	"fmt"
	"strings"

	"github.com/olivere/elastic/v7"
	"go.uber.org/zap"

	"github.com/opencatalog/searchsync/internal/domain/criteria"
	"github.com/opencatalog/searchsync/internal/domain/patch"
	"github.com/opencatalog/searchsync/internal/store"
)

// UpsertDocument indexes the document, replacing any existing version.
func (s *Store) UpsertDocument(ctx context.Context, index, id string, doc map[string]any) error {
	_, err := s.client.Index().
		Index(index).
		Id(id).
		BodyJson(doc).
		Do(ctx)
	if err != nil {
		return fmt.Errorf("index %s/%s: %w", index, id, err)
	}
	return nil
}

// UpdateDocument applies a patch script server-side. When upsert is non-nil
// and the document is absent, upsert is indexed instead of running the
// script.
func (s *Store) UpdateDocument(ctx context.Context, index, id string, script patch.Script, upsert map[string]any) error {
	src, params := buildScript(script)
	svc := s.client.Update().
		Index(index).
		Id(id).
		Script(elastic.NewScript(src).Lang("painless").Params(params))
	if upsert != nil {
		svc = svc.Upsert(upsert)
	}
	if _, err := svc.Do(ctx); err != nil {
		return fmt.Errorf("update %s/%s: %w", index, id, err)
	}
	return nil
}

// DeleteDocument removes one document. A missing document is treated as
// already deleted.
func (s *Store) DeleteDocument(ctx context.Context, index, id string, refresh store.Refresh) error {
	_, err := s.client.Delete().
		Index(index).
		Id(id).
		Refresh(string(refresh)).
		Do(ctx)
	if err != nil {
		if elastic.IsNotFound(err) {
			return nil
		}
		return fmt.Errorf("delete %s/%s: %w", index, id, err)
	}
	return nil
}

// DeleteByQuery removes every document matching the criteria.
func (s *Store) DeleteByQuery(ctx context.Context, index string, c criteria.Criteria, refresh store.Refresh) error {
	res, err := s.client.DeleteByQuery(index).
		Query(buildCriteria(c)).
		Refresh(string(refresh)).
		Do(ctx)
	if err != nil {
		return fmt.Errorf("delete by query %s: %w", index, err)
	}
	s.logger.Debug("delete by query",
		zap.String("index", index),
		zap.Int64("deleted", res.Deleted),
	)
	return nil
}

// Bulk applies a batch of operations in one round trip. Item failures are
// collected into the result, not returned as an error.
func (s *Store) Bulk(ctx context.Context, ops []store.BulkOperation) (*store.BulkResult, error) {
	if len(ops) == 0 {
		return &store.BulkResult{}, nil
	}

	bulk := s.client.Bulk()
	for _, op := range ops {
		switch op.Kind {
		case store.BulkUpsert:
			bulk.Add(elastic.NewBulkIndexRequest().
				Index(op.Index).Id(op.ID).Doc(op.Doc))
		case store.BulkUpdate:
			src, params := buildScript(op.Script)
			bulk.Add(elastic.NewBulkUpdateRequest().
				Index(op.Index).Id(op.ID).
				Script(elastic.NewScript(src).Lang("painless").Params(params)))
		case store.BulkDelete:
			bulk.Add(elastic.NewBulkDeleteRequest().
				Index(op.Index).Id(op.ID))
		}
	}

	resp, err := bulk.Do(ctx)
	if err != nil {
		return nil, fmt.Errorf("bulk: %w", err)
	}

	result := &store.BulkResult{Succeeded: len(resp.Succeeded())}
	for _, item := range resp.Failed() {
		result.Failed++
		if item.Error != nil {
			result.Errors = append(result.Errors,
				fmt.Sprintf("%s/%s: %s", item.Index, item.Id, item.Error.Reason))
		}
	}
	return result, nil
}

// buildScript translates a patch script into painless source plus params.
// Parameters are numbered in operation order so paths can repeat.
func buildScript(script patch.Script) (string, map[string]any) {
	var b strings.Builder
	params := make(map[string]any, len(script.Operations()))

	for i, op := range script.Operations() {
		p := fmt.Sprintf("p%d", i)
		params[p] = op.Value()
		field := "ctx._source." + op.Path()

		switch op.Kind() {
		case patch.OpSet:
			fmt.Fprintf(&b, "%s = params.%s; ", field, p)
		case patch.OpListUnion:
			fmt.Fprintf(&b, "if (%s == null) { %s = []; } ", field, field)
			fmt.Fprintf(&b,
				"for (item in params.%s) { if (!%s.contains(item)) { %s.add(item); } } ",
				p, field, field)
		case patch.OpListDifference:
			fmt.Fprintf(&b, "if (%s != null) { %s.removeAll(params.%s); } ", field, field, p)
		}
	}

	return strings.TrimSpace(b.String()), params
}

// buildCriteria translates engine-neutral criteria into a bool query.
func buildCriteria(c criteria.Criteria) elastic.Query {
	bq := elastic.NewBoolQuery()
	for _, clause := range c.Must() {
		bq.Must(clauseQuery(clause))
	}
	if should := c.Should(); len(should) > 0 {
		for _, clause := range should {
			bq.Should(clauseQuery(clause))
		}
		bq.MinimumNumberShouldMatch(1)
	}
	return bq
}

func clauseQuery(c criteria.Clause) elastic.Query {
	switch c.Kind() {
	case criteria.KindWildcard:
		return elastic.NewWildcardQuery(c.Field(), c.Value())
	case criteria.KindMatch:
		return elastic.NewMatchQuery(c.Field(), c.Value())
	default:
		return elastic.NewTermQuery(c.Field(), c.Value())
	}
}
