package query

import (
	"testing"

	"github.com/opencatalog/searchsync/internal/domain"
)

var typedIndexes = []string{
	domain.TableIndex,
	domain.TopicIndex,
	domain.DashboardIndex,
	domain.PipelineIndex,
	domain.MlModelIndex,
	domain.ContainerIndex,
	domain.QueryIndex,
	domain.UserIndex,
	domain.TeamIndex,
	domain.GlossaryIndex,
	domain.TagIndex,
}

func TestForIndexTypedQueriesUseANDWithFuzziness(t *testing.T) {
	for _, index := range typedIndexes {
		d := ForIndex(index, "revenue")
		if d.Query != "revenue" {
			t.Errorf("%s: query = %q", index, d.Query)
		}
		if d.Operator != "AND" {
			t.Errorf("%s: operator = %q, want AND", index, d.Operator)
		}
		if d.Fuzziness != "AUTO" {
			t.Errorf("%s: fuzziness = %q, want AUTO", index, d.Fuzziness)
		}
		if len(d.Fields) == 0 {
			t.Errorf("%s: no boosted fields", index)
		}
		if d.Lenient {
			t.Errorf("%s: typed query must not be lenient", index)
		}
	}
}

func TestForIndexAttachesStandardFacets(t *testing.T) {
	want := []string{"serviceType", "service.name.keyword", "entityType", "tier.tagFQN"}
	for _, index := range append(typedIndexes, "unknown_index") {
		d := ForIndex(index, "x")
		found := make(map[string]bool)
		for _, f := range d.Facets {
			found[f.Name] = true
		}
		for _, name := range want {
			if !found[name] {
				t.Errorf("%s: missing facet %q", index, name)
			}
		}
	}
}

func TestTableQueryBoostsExactNameAboveColumns(t *testing.T) {
	d := ForIndex(domain.TableIndex, "revenue")

	boosts := make(map[string]float64)
	for _, f := range d.Fields {
		boosts[f.Field] = f.Boost
	}

	if boosts["name.keyword"] != 25 {
		t.Errorf("name.keyword boost = %v, want 25", boosts["name.keyword"])
	}
	if boosts["displayName"] != 15 {
		t.Errorf("displayName boost = %v, want 15", boosts["displayName"])
	}
	if boosts["columns.name"] != 2 {
		t.Errorf("columns.name boost = %v, want 2", boosts["columns.name"])
	}
	if boosts["description"] != 1 {
		t.Errorf("description boost = %v, want 1", boosts["description"])
	}
}

func TestTableQueryAddsAdditiveUsageBoost(t *testing.T) {
	d := ForIndex(domain.TableIndex, "revenue")
	if d.Boost == nil {
		t.Fatal("table query must carry a usage boost")
	}
	if d.Boost.Field != "usageSummary.weeklyStats.count" {
		t.Errorf("boost field = %q", d.Boost.Field)
	}
	if d.Boost.Factor != 0.2 {
		t.Errorf("boost factor = %v, want 0.2", d.Boost.Factor)
	}
	if d.Boost.Missing != 0 {
		t.Errorf("boost missing = %v, want 0", d.Boost.Missing)
	}
}

func TestUnknownIndexFallsBackToLenient(t *testing.T) {
	d := ForIndex("all", "status:[* TO *")
	if !d.Lenient {
		t.Error("fallback query must be lenient")
	}
	if len(d.Fields) != 0 {
		t.Errorf("fallback must not carry a boost table, got %d fields", len(d.Fields))
	}
	if d.Boost != nil {
		t.Error("fallback must not carry a usage boost")
	}
}

func TestHighlightsMatchQueriedFields(t *testing.T) {
	d := ForIndex(domain.PipelineIndex, "etl")

	queried := make(map[string]bool)
	for _, f := range d.Fields {
		queried[f.Field] = true
	}
	for _, h := range d.Highlights {
		if !queried[h] {
			t.Errorf("highlight field %q is not part of the query", h)
		}
	}
}
