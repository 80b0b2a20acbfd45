package elastic

import (
	"encoding/json"
	"strings"
	"testing"

	"go.uber.org/zap"

	"github.com/opencatalog/searchsync/internal/domain/criteria"
	"github.com/opencatalog/searchsync/internal/domain/insight"
	"github.com/opencatalog/searchsync/internal/domain/patch"
	"github.com/opencatalog/searchsync/internal/domain/query"
	"github.com/opencatalog/searchsync/internal/store"
)

func testStore(t *testing.T) *Store {
	t.Helper()
	return &Store{logger: zap.NewNop()}
}

func mustScript(t *testing.T, ops ...patch.Operation) patch.Script {
	t.Helper()
	s, err := patch.NewScript(ops...)
	if err != nil {
		t.Fatalf("NewScript: %v", err)
	}
	return s
}

// asSlice normalizes bool clause sources, which are emitted as a bare map
// when there is a single clause and as a slice otherwise.
func asSlice(v any) []any {
	switch x := v.(type) {
	case []any:
		return x
	case nil:
		return nil
	default:
		return []any{x}
	}
}

func TestBuildScriptSet(t *testing.T) {
	src, params := buildScript(mustScript(t, patch.Set("updatedAt", int64(1700000000000))))
	if !strings.Contains(src, "ctx._source.updatedAt = params.p0;") {
		t.Errorf("source = %q", src)
	}
	if params["p0"] != int64(1700000000000) {
		t.Errorf("params = %v", params)
	}
}

func TestBuildScriptListUnionGuardsAndDeduplicates(t *testing.T) {
	src, _ := buildScript(mustScript(t, patch.ListUnion("followers", []any{"u1"})))
	for _, want := range []string{
		"if (ctx._source.followers == null) { ctx._source.followers = []; }",
		"if (!ctx._source.followers.contains(item))",
		"ctx._source.followers.add(item);",
	} {
		if !strings.Contains(src, want) {
			t.Errorf("source %q missing %q", src, want)
		}
	}
}

func TestBuildScriptListDifferenceToleratesMissingList(t *testing.T) {
	src, _ := buildScript(mustScript(t, patch.ListDifference("followers", []any{"u1"})))
	if !strings.Contains(src, "if (ctx._source.followers != null) { ctx._source.followers.removeAll(params.p0); }") {
		t.Errorf("source = %q", src)
	}
}

func TestBuildScriptNumbersParamsInOrder(t *testing.T) {
	src, params := buildScript(mustScript(t,
		patch.Set("updatedAt", int64(1)),
		patch.ListUnion("followers", []any{"a"}),
		patch.ListDifference("followers", []any{"b"}),
	))
	if len(params) != 3 {
		t.Fatalf("params = %v", params)
	}
	if !strings.Contains(src, "params.p0") || !strings.Contains(src, "params.p1") || !strings.Contains(src, "params.p2") {
		t.Errorf("source = %q", src)
	}
}

func TestSearchQueryAlwaysFiltersDeleted(t *testing.T) {
	s := testStore(t)
	req := &store.SearchRequest{Query: query.ForIndex("table_search_index", "x")}

	src, err := s.buildSearchQuery(req).Source()
	if err != nil {
		t.Fatal(err)
	}
	boolQ := src.(map[string]interface{})["bool"].(map[string]interface{})

	found := false
	for _, clause := range asSlice(boolQ["must"]) {
		m, ok := clause.(map[string]interface{})
		if !ok {
			continue
		}
		if term, ok := m["term"].(map[string]interface{}); ok {
			if v, ok := term["deleted"]; ok && v == false {
				found = true
			}
		}
	}
	if !found {
		t.Error("query must carry a deleted=false term")
	}
}

func TestSearchQuerySelectsSoftDeleted(t *testing.T) {
	s := testStore(t)
	req := &store.SearchRequest{
		Query:          query.ForIndex("table_search_index", "x"),
		IncludeDeleted: true,
	}

	src, err := s.buildSearchQuery(req).Source()
	if err != nil {
		t.Fatal(err)
	}
	boolQ := src.(map[string]interface{})["bool"].(map[string]interface{})

	found := false
	for _, clause := range asSlice(boolQ["must"]) {
		m, ok := clause.(map[string]interface{})
		if !ok {
			continue
		}
		if term, ok := m["term"].(map[string]interface{}); ok {
			if v, ok := term["deleted"]; ok && v == true {
				found = true
			}
		}
	}
	if !found {
		t.Error("requesting soft-deleted documents must AND a deleted=true term, not drop the constraint")
	}
}

func suggesterCompletion(t *testing.T, req *store.SuggestRequest) map[string]interface{} {
	t.Helper()
	src, err := buildSuggester(req).Source(false)
	if err != nil {
		t.Fatal(err)
	}
	raw, err := json.Marshal(src)
	if err != nil {
		t.Fatal(err)
	}
	var m map[string]interface{}
	if err := json.Unmarshal(raw, &m); err != nil {
		t.Fatal(err)
	}
	completion, ok := m["completion"].(map[string]interface{})
	if !ok {
		t.Fatalf("suggester source = %v", src)
	}
	return completion
}

func TestSuggesterDefaultFieldCarriesDeletedContext(t *testing.T) {
	completion := suggesterCompletion(t, &store.SuggestRequest{Prefix: "ord", Size: 25})

	contexts, ok := completion["contexts"]
	if !ok {
		t.Fatal("default suggest field must carry the deleted context")
	}
	raw, err := json.Marshal(contexts)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(raw), "deleted") || !strings.Contains(string(raw), "false") {
		t.Errorf("contexts = %s, want deleted=false", raw)
	}

	completion = suggesterCompletion(t, &store.SuggestRequest{
		Prefix: "ord", Size: 25, IncludeDeleted: true,
	})
	raw, err = json.Marshal(completion["contexts"])
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(raw), "true") || strings.Contains(string(raw), "false") {
		t.Errorf("contexts = %s, want the single value true", raw)
	}
}

func TestSuggesterCustomFieldHasNoContext(t *testing.T) {
	completion := suggesterCompletion(t, &store.SuggestRequest{
		Prefix: "ord",
		Field:  "column_suggest",
		Size:   25,
	})

	if _, ok := completion["contexts"]; ok {
		t.Error("custom completion fields have no context mapping, so no context query")
	}
	if completion["field"] != "column_suggest" {
		t.Errorf("field = %v", completion["field"])
	}
}

func TestSearchQueryIgnoresMalformedFilter(t *testing.T) {
	s := testStore(t)
	req := &store.SearchRequest{
		Query:  query.ForIndex("table_search_index", "x"),
		Filter: `{"query": not json`,
	}

	src, err := s.buildSearchQuery(req).Source()
	if err != nil {
		t.Fatal(err)
	}
	boolQ := src.(map[string]interface{})["bool"].(map[string]interface{})
	if _, ok := boolQ["filter"]; ok {
		t.Error("malformed filter must be dropped, not passed through")
	}
}

func TestSearchQueryUnwrapsFilterEnvelope(t *testing.T) {
	s := testStore(t)
	req := &store.SearchRequest{
		Query:  query.ForIndex("table_search_index", "x"),
		Filter: `{"query": {"term": {"service.name.keyword": "mysql_prod"}}}`,
	}

	src, err := s.buildSearchQuery(req).Source()
	if err != nil {
		t.Fatal(err)
	}
	boolQ := src.(map[string]interface{})["bool"].(map[string]interface{})
	if _, ok := boolQ["filter"]; !ok {
		t.Error("well-formed filter must be attached")
	}
}

func TestBuildTextQueryAppliesBoostsAndOperator(t *testing.T) {
	d := query.ForIndex("tag_search_index", "pii")
	src, err := buildTextQuery(d).Source()
	if err != nil {
		t.Fatal(err)
	}
	qs := src.(map[string]interface{})["query_string"].(map[string]interface{})
	if qs["default_operator"] != "AND" {
		t.Errorf("default_operator = %v", qs["default_operator"])
	}
	if qs["fuzziness"] != "AUTO" {
		t.Errorf("fuzziness = %v", qs["fuzziness"])
	}

	fields := asSlice(qs["fields"])
	hasBoosted := false
	for _, f := range fields {
		if f == "name^10" {
			hasBoosted = true
		}
	}
	if !hasBoosted {
		t.Errorf("fields = %v, want name^10", fields)
	}
}

func TestBuildTextQueryWrapsUsageBoostAdditively(t *testing.T) {
	d := query.ForIndex("table_search_index", "orders")
	src, err := buildTextQuery(d).Source()
	if err != nil {
		t.Fatal(err)
	}
	fs, ok := src.(map[string]interface{})["function_score"].(map[string]interface{})
	if !ok {
		t.Fatal("table query must be wrapped in a function score")
	}
	if fs["boost_mode"] != "sum" {
		t.Errorf("boost_mode = %v, want sum", fs["boost_mode"])
	}
}

func TestBuildCriteriaAnyOfRequiresOneMatch(t *testing.T) {
	c := criteria.AnyOf(
		criteria.Match("id", "abc"),
		criteria.Match("parent.id", "abc"),
	)
	src, err := buildCriteria(c).Source()
	if err != nil {
		t.Fatal(err)
	}
	boolQ := src.(map[string]interface{})["bool"].(map[string]interface{})
	if len(asSlice(boolQ["should"])) != 2 {
		t.Errorf("should = %v", boolQ["should"])
	}
	if boolQ["minimum_should_match"] != "1" && boolQ["minimum_should_match"] != 1 {
		t.Errorf("minimum_should_match = %v", boolQ["minimum_should_match"])
	}
}

func TestBuildCriteriaWildcard(t *testing.T) {
	c := criteria.AllOf(criteria.Wildcard("fullyQualifiedName", "PII.*"))
	src, err := buildCriteria(c).Source()
	if err != nil {
		t.Fatal(err)
	}
	boolQ := src.(map[string]interface{})["bool"].(map[string]interface{})
	clause := asSlice(boolQ["must"])[0].(map[string]interface{})
	if _, ok := clause["wildcard"]; !ok {
		t.Errorf("clause = %v, want wildcard", clause)
	}
}

func TestBuildAggLeaderboardOrdersByMetric(t *testing.T) {
	root, err := insight.AggregationFor(insight.MostViewedEntities)
	if err != nil {
		t.Fatal(err)
	}
	src, err := buildAgg(root).Source()
	if err != nil {
		t.Fatal(err)
	}
	m := src.(map[string]interface{})
	terms := m["terms"].(map[string]interface{})
	if terms["size"] != 10 {
		t.Errorf("size = %v, want 10", terms["size"])
	}
	if _, ok := terms["order"]; !ok {
		t.Error("leaderboard terms aggregation must carry an order")
	}
	if _, ok := m["aggregations"]; !ok {
		t.Error("leaderboard must carry metric sub-aggregations")
	}
}

func TestBuildAggDailyHistogram(t *testing.T) {
	root, err := insight.AggregationFor(insight.DailyActiveUsers)
	if err != nil {
		t.Fatal(err)
	}
	src, err := buildAgg(root).Source()
	if err != nil {
		t.Fatal(err)
	}
	hist := src.(map[string]interface{})["date_histogram"].(map[string]interface{})
	if hist["calendar_interval"] != "1d" {
		t.Errorf("calendar_interval = %v, want 1d", hist["calendar_interval"])
	}
	if hist["field"] != insight.FieldTimestamp {
		t.Errorf("field = %v", hist["field"])
	}
}

func TestSplitValues(t *testing.T) {
	got := splitValues("Marketing, Sales ,")
	if len(got) != 2 || got[0] != "Marketing" || got[1] != "Sales" {
		t.Errorf("splitValues = %v", got)
	}
}
