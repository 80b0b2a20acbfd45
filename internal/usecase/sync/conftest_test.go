package sync

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/opencatalog/searchsync/internal/domain"
	"github.com/opencatalog/searchsync/internal/domain/criteria"
	"github.com/opencatalog/searchsync/internal/domain/patch"
	"github.com/opencatalog/searchsync/internal/store"
)

// --- Mocks ---

type upsertCall struct {
	index string
	id    string
	doc   map[string]any
}

type updateCall struct {
	index  string
	id     string
	script patch.Script
}

type deleteCall struct {
	index   string
	id      string
	refresh store.Refresh
}

type deleteByQueryCall struct {
	index    string
	criteria criteria.Criteria
	refresh  store.Refresh
}

type mockStore struct {
	upserts        []upsertCall
	updates        []updateCall
	deletes        []deleteCall
	deleteQueries  []deleteByQueryCall
	bulks          [][]store.BulkOperation
	scanFn         func(index, field, value string, from, size int) (*store.SearchResult, error)
	upsertErr      error
	updateErr      error
	deleteErr      error
	deleteQueryErr error
	bulkResult     *store.BulkResult
	bulkErr        error
}

func (m *mockStore) UpsertDocument(_ context.Context, index, id string, doc map[string]any) error {
	m.upserts = append(m.upserts, upsertCall{index: index, id: id, doc: doc})
	return m.upsertErr
}

func (m *mockStore) UpdateDocument(_ context.Context, index, id string, script patch.Script, _ map[string]any) error {
	m.updates = append(m.updates, updateCall{index: index, id: id, script: script})
	return m.updateErr
}

func (m *mockStore) DeleteDocument(_ context.Context, index, id string, refresh store.Refresh) error {
	m.deletes = append(m.deletes, deleteCall{index: index, id: id, refresh: refresh})
	return m.deleteErr
}

func (m *mockStore) DeleteByQuery(_ context.Context, index string, c criteria.Criteria, refresh store.Refresh) error {
	m.deleteQueries = append(m.deleteQueries, deleteByQueryCall{index: index, criteria: c, refresh: refresh})
	return m.deleteQueryErr
}

func (m *mockStore) Scan(_ context.Context, index, field, value string, from, size int) (*store.SearchResult, error) {
	if m.scanFn != nil {
		return m.scanFn(index, field, value, from, size)
	}
	return &store.SearchResult{}, nil
}

func (m *mockStore) Bulk(_ context.Context, ops []store.BulkOperation) (*store.BulkResult, error) {
	m.bulks = append(m.bulks, ops)
	if m.bulkErr != nil {
		return nil, m.bulkErr
	}
	if m.bulkResult != nil {
		return m.bulkResult, nil
	}
	return &store.BulkResult{Succeeded: len(ops)}, nil
}

// mutations counts every write the store received.
func (m *mockStore) mutations() int {
	return len(m.upserts) + len(m.updates) + len(m.deletes) + len(m.deleteQueries) + len(m.bulks)
}

func newEngine(t *testing.T) (*Engine, *mockStore) {
	t.Helper()
	ms := &mockStore{}
	return New(ms, NewBuilder(), zap.NewNop()), ms
}

func makeEvent(t *testing.T, entityType string, eventType domain.EventType) *domain.ChangeEvent {
	t.Helper()
	return &domain.ChangeEvent{
		EntityID:        uuid.New(),
		EntityType:      entityType,
		EventType:       eventType,
		PreviousVersion: 1.0,
		CurrentVersion:  1.0,
		Timestamp:       1700000000000,
	}
}

func withEntity(ev *domain.ChangeEvent, entity map[string]any) *domain.ChangeEvent {
	ev.Entity = entity
	return ev
}
