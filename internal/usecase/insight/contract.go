package insight

import (
	"context"

	dominsight "github.com/opencatalog/searchsync/internal/domain/insight"
)

// Store is the consumer interface for chart aggregations (ISP).
type Store interface {
	Insight(ctx context.Context, req *dominsight.Request, root dominsight.AggNode) (*dominsight.Result, error)
}

// Processor post-processes the raw data points of one chart, e.g. turning
// summed fractions into percentages.
type Processor interface {
	Process(res *dominsight.Result) (*dominsight.Result, error)
}
