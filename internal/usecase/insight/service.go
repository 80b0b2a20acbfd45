// Package insight dispatches data-insight chart requests: it resolves the
// chart's aggregation tree, gates the optional filters on the chart's
// capabilities, and post-processes the buckets.
package insight

import (
	"context"
	"fmt"

	dominsight "github.com/opencatalog/searchsync/internal/domain/insight"
)

// Service runs chart aggregations.
type Service struct {
	store      Store
	processors map[dominsight.ChartType]Processor
}

// New creates an insight service with the default chart processors.
func New(s Store) *Service {
	return &Service{
		store: s,
		processors: map[dominsight.ChartType]Processor{
			dominsight.PercentageOfEntitiesWithDescriptionByType: percentageProcessor{fraction: "completedDescriptionFraction"},
			dominsight.PercentageOfEntitiesWithOwnerByType:       percentageProcessor{fraction: "hasOwnerFraction"},
			dominsight.PercentageOfServicesWithDescription:       percentageProcessor{fraction: "completedDescriptionFraction"},
			dominsight.PercentageOfServicesWithOwner:             percentageProcessor{fraction: "hasOwnerFraction"},
		},
	}
}

// WithProcessor registers or replaces the processor of one chart.
func (s *Service) WithProcessor(chart dominsight.ChartType, p Processor) *Service {
	s.processors[chart] = p
	return s
}

// ListChart runs one chart aggregation. Filters the chart cannot honor are
// dropped rather than producing silently empty buckets.
func (s *Service) ListChart(ctx context.Context, req *dominsight.Request) (*dominsight.Result, error) {
	root, err := dominsight.AggregationFor(req.Chart)
	if err != nil {
		return nil, err
	}

	gated := *req
	if !dominsight.SupportsTeamFilter(req.Chart) {
		gated.Team = ""
	}
	if !dominsight.SupportsTierFilter(req.Chart) {
		gated.Tier = ""
	}

	res, err := s.store.Insight(ctx, &gated, root)
	if err != nil {
		return nil, fmt.Errorf("chart %s: %w", req.Chart, err)
	}

	if p, ok := s.processors[req.Chart]; ok {
		return p.Process(res)
	}
	return res, nil
}

// percentageProcessor converts a summed per-entity fraction plus an entity
// count into a percentage data point.
type percentageProcessor struct {
	fraction string
}

func (p percentageProcessor) Process(res *dominsight.Result) (*dominsight.Result, error) {
	for _, row := range res.Data {
		fraction, okF := row[p.fraction].(float64)
		count, okC := row["entityCount"].(float64)
		if !okF || !okC || count == 0 {
			continue
		}
		row["percentage"] = fraction / count * 100
	}
	return res, nil
}
