// Package elastic implements the index store facade over Elasticsearch 7.
package elastic

import (
	"context"
	"fmt"
	"time"

	"github.com/olivere/elastic/v7"
	"go.uber.org/zap"

	"github.com/opencatalog/searchsync/internal/store"
)

// Compile-time check: Store implements store.Store.
var _ store.Store = (*Store)(nil)

// searchTimeout bounds query execution inside the cluster.
const searchTimeout = "30s"

// scanTimeout bounds batch maintenance scans, which page deep.
const scanTimeout = "60s"

// Config holds connection parameters for an Elasticsearch store.
type Config struct {
	Addrs    []string
	Username string
	Password string
}

// Store implements store.Store via the olivere client.
type Store struct {
	client *elastic.Client
	logger *zap.Logger
}

// NewStore creates an Elasticsearch store. Sniffing is disabled so the
// client sticks to the configured addresses behind load balancers.
func NewStore(cfg Config, logger *zap.Logger) (*Store, error) {
	if len(cfg.Addrs) == 0 {
		return nil, fmt.Errorf("addrs is required")
	}

	opts := []elastic.ClientOptionFunc{
		elastic.SetURL(cfg.Addrs...),
		elastic.SetSniff(false),
		elastic.SetHealthcheck(false),
	}
	if cfg.Username != "" {
		opts = append(opts, elastic.SetBasicAuth(cfg.Username, cfg.Password))
	}

	client, err := elastic.NewClient(opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create client: %w", err)
	}

	return &Store{client: client, logger: logger}, nil
}

// Ping checks connectivity against the cluster health endpoint.
func (s *Store) Ping(ctx context.Context) error {
	res, err := s.client.ClusterHealth().Do(ctx)
	if err != nil {
		return fmt.Errorf("ping: %w", err)
	}
	if res.Status == "red" {
		return fmt.Errorf("ping: cluster status is red")
	}
	return nil
}

// Close shuts down the client.
func (s *Store) Close() {
	s.client.Stop()
}

// WaitForReady polls Ping until the store responds or timeout expires.
func (s *Store) WaitForReady(ctx context.Context, timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	ticker := time.NewTicker(100 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return fmt.Errorf("timeout waiting for index store: %w", ctx.Err())
		case <-ticker.C:
			if err := s.Ping(ctx); err == nil {
				return nil
			}
		}
	}
}
