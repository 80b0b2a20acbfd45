// Package query builds per-entity-type search query descriptions: field
// boost tables, fuzziness, highlighting, and facet aggregations. Builders
// are pure and deterministic; the index store client translates a
// Description into the engine's native request.
package query

// Highlight markers wrapped around matched fragments.
const (
	PreTag  = `<span class="text-highlighter">`
	PostTag = `</span>`
)

const (
	// MaxAggregateSize caps facet bucket counts.
	MaxAggregateSize = 10000
	// MaxResultHits caps approximate total-hit counting when exact counts
	// are not requested.
	MaxResultHits = 10000
	// MaxResultWindow is the index store's from+size pagination bound.
	MaxResultWindow = 10000
)

// FieldBoost weights one field in the text query. A zero boost means the
// engine default.
type FieldBoost struct {
	Field string
	Boost float64
}

// Facet is a bucketed term-count aggregation attached to a search request,
// independent of the text query.
type Facet struct {
	Name  string
	Field string
	Size  int
}

// UsageBoost adds a field-value score on top of the text relevance score.
type UsageBoost struct {
	Field   string
	Factor  float64
	Missing float64
}

// Description is an immutable query plan for one search request.
type Description struct {
	Query      string
	Fields     []FieldBoost
	Operator   string
	Fuzziness  string
	Lenient    bool
	Highlights []string
	Facets     []Facet
	Boost      *UsageBoost
}

// Common document fields.
const (
	fieldName               = "name"
	fieldNameKeyword        = "name.keyword"
	fieldNameNgram          = "name.ngram"
	fieldDisplayName        = "displayName"
	fieldDisplayNameKeyword = "displayName.keyword"
	fieldDisplayNameNgram   = "displayName.ngram"
	fieldDescription        = "description"
	fieldDescriptionNgram   = "description.ngram"
)

// standardFacets drive the faceted-navigation UI and are attached to every
// typed entity query.
func standardFacets() []Facet {
	return []Facet{
		{Name: "serviceType", Field: "serviceType", Size: MaxAggregateSize},
		{Name: "service.name.keyword", Field: "service.name.keyword", Size: MaxAggregateSize},
		{Name: "entityType", Field: "entityType", Size: MaxAggregateSize},
		{Name: "tier.tagFQN", Field: "tier.tagFQN"},
	}
}
