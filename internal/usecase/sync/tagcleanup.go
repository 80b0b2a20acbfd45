package sync

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/opencatalog/searchsync/internal/domain"
	"github.com/opencatalog/searchsync/internal/domain/patch"
	"github.com/opencatalog/searchsync/internal/store"
)

// tagCleanupPageSize is the scan page size of the tag reference sweep.
const tagCleanupPageSize = 50

// taggedIndexes lists every index whose documents carry a tags field.
var taggedIndexes = strings.Join([]string{
	domain.TableIndex,
	domain.TopicIndex,
	domain.DashboardIndex,
	domain.PipelineIndex,
	domain.MlModelIndex,
	domain.ContainerIndex,
	domain.QueryIndex,
	domain.GlossaryIndex,
}, ",")

// removeTagReferences sweeps every document still referencing the deleted
// tag and rewrites its tags list without it. Pages are collected first and
// committed in a single bulk so a partially scanned sweep never writes.
func (e *Engine) removeTagReferences(ctx context.Context, tagFQN string) error {
	if tagFQN == "" {
		return nil
	}

	var ops []store.BulkOperation
	from := 0
	for {
		page, err := e.store.Scan(ctx, taggedIndexes, "tags.tagFQN", tagFQN, from, tagCleanupPageSize)
		if err != nil {
			return fmt.Errorf("scan tag references %q: %w", tagFQN, err)
		}
		if len(page.Hits) == 0 {
			break
		}

		for _, hit := range page.Hits {
			script, err := patch.NewScript(patch.Set("tags", keptTags(hit.Source, tagFQN)))
			if err != nil {
				return err
			}
			ops = append(ops, store.BulkOperation{
				Kind:   store.BulkUpdate,
				Index:  hit.Index,
				ID:     hit.ID,
				Script: script,
			})
		}

		from += len(page.Hits)
		if int64(from) >= page.Total {
			break
		}
	}

	if len(ops) == 0 {
		return nil
	}

	res, err := e.store.Bulk(ctx, ops)
	if err != nil {
		return fmt.Errorf("rewrite tag references %q: %w", tagFQN, err)
	}
	e.logger.Info("removed tag references",
		zap.String("tagFQN", tagFQN),
		zap.Int("rewritten", res.Succeeded),
		zap.Int("failed", res.Failed),
	)
	return nil
}

// keptTags returns the document's tags minus the deleted one. A document
// matched on a different analyzer token keeps its list unchanged.
func keptTags(source map[string]any, tagFQN string) []any {
	tags, ok := source["tags"].([]any)
	if !ok {
		return []any{}
	}
	kept := make([]any, 0, len(tags))
	for _, t := range tags {
		tag, ok := t.(map[string]any)
		if ok {
			if fqn, _ := tag["tagFQN"].(string); fqn == tagFQN {
				continue
			}
		}
		kept = append(kept, t)
	}
	return kept
}
