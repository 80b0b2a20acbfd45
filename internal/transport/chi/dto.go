package chi

import (
	"fmt"

	"github.com/opencatalog/searchsync/internal/store"
)

// errorCode is the machine-readable error identifier of the API.
type errorCode string

const (
	codeBadRequest           errorCode = "bad_request"
	codeValidationFailed     errorCode = "validation_failed"
	codeUnknownEntityType    errorCode = "unknown_entity_type"
	codeUnknownChartType     errorCode = "unknown_chart_type"
	codeResultWindowExceeded errorCode = "result_window_exceeded"
	codeIndexStoreError      errorCode = "index_store_error"
	codeInternalError        errorCode = "internal_error"
)

type errorResponse struct {
	Code    errorCode `json:"code"`
	Message string    `json:"message"`
}

type suggestResponse struct {
	Suggestions []store.Suggestion `json:"suggestions"`
}

type aggregateResponse struct {
	Field   string              `json:"field"`
	Buckets []store.FieldBucket `json:"buckets"`
}

type bulkRequest struct {
	Operations []bulkOperation `json:"operations"`
}

// bulkOperation is one externally submitted bulk item. Scripted updates are
// internal to the sync engine and not accepted over the API.
type bulkOperation struct {
	Action   string         `json:"action"`
	Index    string         `json:"index"`
	ID       string         `json:"id"`
	Document map[string]any `json:"document,omitempty"`
}

func (op bulkOperation) toStore() (store.BulkOperation, error) {
	if op.Index == "" || op.ID == "" {
		return store.BulkOperation{}, fmt.Errorf("index and id are required")
	}
	switch op.Action {
	case "upsert":
		if op.Document == nil {
			return store.BulkOperation{}, fmt.Errorf("upsert requires a document")
		}
		return store.BulkOperation{
			Kind:  store.BulkUpsert,
			Index: op.Index,
			ID:    op.ID,
			Doc:   op.Document,
		}, nil
	case "delete":
		return store.BulkOperation{
			Kind:  store.BulkDelete,
			Index: op.Index,
			ID:    op.ID,
		}, nil
	default:
		return store.BulkOperation{}, fmt.Errorf("unknown action %q", op.Action)
	}
}
