package insight

import (
	"errors"
	"testing"

	"github.com/opencatalog/searchsync/internal/domain"
)

func TestAggregationForUnknownChart(t *testing.T) {
	_, err := AggregationFor("entityGrowthRate")
	if !errors.Is(err, domain.ErrUnknownChartType) {
		t.Fatalf("err = %v, want ErrUnknownChartType", err)
	}
}

func TestTimeSeriesChartsStartWithDailyHistogram(t *testing.T) {
	charts := []ChartType{
		TotalEntitiesByType,
		TotalEntitiesByTier,
		PercentageOfEntitiesWithDescriptionByType,
		PercentageOfEntitiesWithOwnerByType,
		PercentageOfServicesWithDescription,
		PercentageOfServicesWithOwner,
		PageViewsByEntities,
		DailyActiveUsers,
	}
	for _, chart := range charts {
		node, err := AggregationFor(chart)
		if err != nil {
			t.Fatalf("%s: %v", chart, err)
		}
		if node.Kind != AggDateHistogram {
			t.Errorf("%s: root kind = %d, want date histogram", chart, node.Kind)
		}
		if node.Field != FieldTimestamp {
			t.Errorf("%s: root field = %q, want %q", chart, node.Field, FieldTimestamp)
		}
	}
}

func TestLeaderboardChartsRankByMetric(t *testing.T) {
	tests := []struct {
		chart   ChartType
		orderBy string
	}{
		{MostActiveUsers, "sessions"},
		{MostViewedEntities, "pageViews"},
	}
	for _, tt := range tests {
		node, err := AggregationFor(tt.chart)
		if err != nil {
			t.Fatalf("%s: %v", tt.chart, err)
		}
		if node.Kind != AggTerms {
			t.Errorf("%s: root kind = %d, want terms", tt.chart, node.Kind)
		}
		if node.Size != 10 {
			t.Errorf("%s: size = %d, want 10", tt.chart, node.Size)
		}
		if node.OrderByAgg != tt.orderBy {
			t.Errorf("%s: order by = %q, want %q", tt.chart, node.OrderByAgg, tt.orderBy)
		}
		if node.OrderAsc {
			t.Errorf("%s: leaderboard order must be descending", tt.chart)
		}
		found := false
		for _, sub := range node.Subs {
			if sub.Name == tt.orderBy {
				found = true
			}
		}
		if !found {
			t.Errorf("%s: ordering metric %q is not a sub-aggregation", tt.chart, tt.orderBy)
		}
	}
}

func TestTierBucketsKeepUntieredEntities(t *testing.T) {
	node, err := AggregationFor(TotalEntitiesByTier)
	if err != nil {
		t.Fatal(err)
	}
	if len(node.Subs) != 1 {
		t.Fatalf("expected one sub-aggregation, got %d", len(node.Subs))
	}
	tier := node.Subs[0]
	if tier.Missing != "NoTier" {
		t.Errorf("missing bucket = %q, want NoTier", tier.Missing)
	}
}

func TestFilterCapabilities(t *testing.T) {
	if SupportsTeamFilter(MostActiveUsers) {
		t.Error("web analytic charts must not accept a team filter")
	}
	if !SupportsTeamFilter(TotalEntitiesByType) {
		t.Error("entity report charts must accept a team filter")
	}
	if SupportsTierFilter(TotalEntitiesByTier) {
		t.Error("the tier breakdown chart must not also filter by tier")
	}
	if !SupportsTierFilter(PercentageOfEntitiesWithOwnerByType) {
		t.Error("entity report charts must accept a tier filter")
	}
}
