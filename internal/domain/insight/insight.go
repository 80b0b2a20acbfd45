// Package insight defines the data-insight chart catalog and the
// engine-neutral aggregation tree each chart needs. The index store client
// translates an AggNode tree into native aggregations over the insight
// report index.
package insight

import (
	"fmt"

	"github.com/opencatalog/searchsync/internal/domain"
)

// ChartType names a supported data-insight chart.
type ChartType string

const (
	TotalEntitiesByType                      ChartType = "totalEntitiesByType"
	TotalEntitiesByTier                      ChartType = "totalEntitiesByTier"
	PercentageOfEntitiesWithDescriptionByType ChartType = "percentageOfEntitiesWithDescriptionByType"
	PercentageOfEntitiesWithOwnerByType      ChartType = "percentageOfEntitiesWithOwnerByType"
	PercentageOfServicesWithDescription      ChartType = "percentageOfServicesWithDescription"
	PercentageOfServicesWithOwner            ChartType = "percentageOfServicesWithOwner"
	PageViewsByEntities                      ChartType = "pageViewsByEntities"
	DailyActiveUsers                         ChartType = "dailyActiveUsers"
	MostActiveUsers                          ChartType = "mostActiveUsers"
	MostViewedEntities                       ChartType = "mostViewedEntities"
)

// Report document fields. Reports are flattened snapshots written by the
// ingestion pipeline, one document per entity per day.
const (
	FieldTimestamp             = "timestamp"
	// FieldTeam and FieldEntityTier are exported because insight filters
	// are applied on them outside this package.
	FieldTeam                  = "data.team.keyword"
	FieldEntityTier            = "data.entityTier.keyword"
	fieldEntityType            = "data.entityType.keyword"
	fieldEntityCount           = "data.entityCount"
	fieldCompletedDescriptions = "data.completedDescriptions"
	fieldHasOwner              = "data.hasOwner"
	fieldViews                 = "data.views"
	fieldUserName              = "data.userName.keyword"
	fieldSessions              = "data.sessions"
	fieldTotalPageView         = "data.totalPageView"
	fieldLastSession           = "data.lastSession"
	fieldSessionDuration       = "data.totalSessionDuration"
	fieldEntityFQN             = "data.entityFqn.keyword"
	fieldOwner                 = "data.owner.keyword"
	fieldEntityHref            = "data.entityHref.keyword"
	fieldServiceName           = "data.serviceName.keyword"
)

// AggKind selects the aggregation primitive of a node.
type AggKind int

const (
	// AggDateHistogram buckets documents by day on a timestamp field.
	AggDateHistogram AggKind = iota
	// AggTerms buckets documents by distinct field value.
	AggTerms
	// AggSum sums a numeric field per bucket.
	AggSum
	// AggMax takes the maximum of a numeric field per bucket.
	AggMax
)

// AggNode is one node of an aggregation tree. Leaf metrics have no Subs.
type AggNode struct {
	Name       string
	Field      string
	Kind       AggKind
	Size       int
	Missing    string
	OrderByAgg string
	OrderAsc   bool
	Subs       []AggNode
}

// bucketSize is the terms bucket count for unranked dimensional breakdowns.
const bucketSize = 1000

// rankedSize is the terms bucket count for leaderboard charts.
const rankedSize = 10

// daily wraps subtrees in the per-day histogram shared by time-series charts.
func daily(subs ...AggNode) AggNode {
	return AggNode{Name: "timestamp", Field: FieldTimestamp, Kind: AggDateHistogram, Subs: subs}
}

func entityTypeBuckets(metrics ...AggNode) AggNode {
	return AggNode{Name: "entityType", Field: fieldEntityType, Kind: AggTerms, Size: bucketSize, Subs: metrics}
}

func sum(name, field string) AggNode {
	return AggNode{Name: name, Field: field, Kind: AggSum}
}

// aggregations maps each chart to its aggregation tree. Leaderboard charts
// rank a single terms bucket set by a metric and skip the date histogram.
var aggregations = map[ChartType]AggNode{
	TotalEntitiesByType: daily(
		entityTypeBuckets(sum("entityCount", fieldEntityCount)),
	),
	TotalEntitiesByTier: daily(
		AggNode{
			Name: "entityTier", Field: FieldEntityTier, Kind: AggTerms,
			Size: bucketSize, Missing: "NoTier",
			Subs: []AggNode{sum("entityCount", fieldEntityCount)},
		},
	),
	PercentageOfEntitiesWithDescriptionByType: daily(
		entityTypeBuckets(
			sum("completedDescriptionFraction", fieldCompletedDescriptions),
			sum("entityCount", fieldEntityCount),
		),
	),
	PercentageOfEntitiesWithOwnerByType: daily(
		entityTypeBuckets(
			sum("hasOwnerFraction", fieldHasOwner),
			sum("entityCount", fieldEntityCount),
		),
	),
	PercentageOfServicesWithDescription: daily(
		AggNode{
			Name: "serviceName", Field: fieldServiceName, Kind: AggTerms, Size: bucketSize,
			Subs: []AggNode{
				sum("completedDescriptionFraction", fieldCompletedDescriptions),
				sum("entityCount", fieldEntityCount),
			},
		},
	),
	PercentageOfServicesWithOwner: daily(
		AggNode{
			Name: "serviceName", Field: fieldServiceName, Kind: AggTerms, Size: bucketSize,
			Subs: []AggNode{
				sum("hasOwnerFraction", fieldHasOwner),
				sum("entityCount", fieldEntityCount),
			},
		},
	),
	PageViewsByEntities: daily(
		entityTypeBuckets(sum("pageViews", fieldViews)),
	),
	DailyActiveUsers: daily(),
	MostActiveUsers: {
		Name: "userName", Field: fieldUserName, Kind: AggTerms,
		Size: rankedSize, OrderByAgg: "sessions",
		Subs: []AggNode{
			sum("sessions", fieldSessions),
			sum("pageViews", fieldTotalPageView),
			{Name: "lastSession", Field: fieldLastSession, Kind: AggMax},
			sum("sessionDuration", fieldSessionDuration),
			{Name: "team", Field: FieldTeam, Kind: AggTerms, Size: bucketSize},
		},
	},
	MostViewedEntities: {
		Name: "entityFqn", Field: fieldEntityFQN, Kind: AggTerms,
		Size: rankedSize, OrderByAgg: "pageViews",
		Subs: []AggNode{
			sum("pageViews", fieldTotalPageView),
			{Name: "owner", Field: fieldOwner, Kind: AggTerms, Size: bucketSize},
			{Name: "entityType", Field: fieldEntityType, Kind: AggTerms, Size: bucketSize},
			{Name: "entityHref", Field: fieldEntityHref, Kind: AggTerms, Size: bucketSize},
		},
	},
}

// Report indexes written by the ingestion pipeline.
const (
	EntityReportIndex                  = "entity_report_data_index"
	WebAnalyticEntityViewReportIndex   = "web_analytic_entity_view_report_data_index"
	WebAnalyticUserActivityReportIndex = "web_analytic_user_activity_report_data_index"
)

// reportIndexes maps charts that do not read the entity report to their
// web-analytic source.
var reportIndexes = map[ChartType]string{
	PageViewsByEntities: WebAnalyticEntityViewReportIndex,
	MostViewedEntities:  WebAnalyticEntityViewReportIndex,
	DailyActiveUsers:    WebAnalyticUserActivityReportIndex,
	MostActiveUsers:     WebAnalyticUserActivityReportIndex,
}

// ReportIndex returns the default report index a chart aggregates over.
func ReportIndex(chart ChartType) string {
	if index, ok := reportIndexes[chart]; ok {
		return index
	}
	return EntityReportIndex
}

// AggregationFor returns the aggregation tree for the chart.
func AggregationFor(chart ChartType) (AggNode, error) {
	node, ok := aggregations[chart]
	if !ok {
		return AggNode{}, fmt.Errorf("%w: %q", domain.ErrUnknownChartType, chart)
	}
	return node, nil
}

// teamFilterable charts carry a per-report team dimension and accept a team
// filter. Web-analytic event charts do not record teams.
var teamFilterable = map[ChartType]bool{
	TotalEntitiesByType:                      true,
	TotalEntitiesByTier:                      true,
	PercentageOfEntitiesWithDescriptionByType: true,
	PercentageOfEntitiesWithOwnerByType:      true,
	PercentageOfServicesWithDescription:      true,
	PercentageOfServicesWithOwner:            true,
}

// tierFilterable charts record the entity tier and accept a tier filter.
var tierFilterable = map[ChartType]bool{
	TotalEntitiesByType:                      true,
	PercentageOfEntitiesWithDescriptionByType: true,
	PercentageOfEntitiesWithOwnerByType:      true,
}

// SupportsTeamFilter reports whether a team filter applies to the chart.
func SupportsTeamFilter(chart ChartType) bool { return teamFilterable[chart] }

// SupportsTierFilter reports whether a tier filter applies to the chart.
func SupportsTierFilter(chart ChartType) bool { return tierFilterable[chart] }

// Request selects one chart over a report index and time range. Team and
// Tier are comma-separated value lists; empty means unfiltered.
type Request struct {
	Chart ChartType
	Index string
	Start int64
	End   int64
	Team  string
	Tier  string
}

// Result is the decoded aggregation response for one chart, a flat list of
// per-bucket data points ready for serialization.
type Result struct {
	Chart ChartType        `json:"chartType"`
	Data  []map[string]any `json:"data"`
}
