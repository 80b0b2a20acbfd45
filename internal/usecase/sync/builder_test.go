package sync

import (
	"reflect"
	"testing"

	"github.com/opencatalog/searchsync/internal/domain"
)

func TestBuild_DerivedFields(t *testing.T) {
	b := NewBuilder()
	doc, err := b.Build(domain.EntityTable, map[string]any{
		"name":               "orders",
		"displayName":        "Orders",
		"fullyQualifiedName": "mysql_prod.sales.orders",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if doc["entityType"] != domain.EntityTable {
		t.Errorf("entityType = %v", doc["entityType"])
	}
	if doc["deleted"] != false {
		t.Errorf("deleted = %v", doc["deleted"])
	}

	wantParts := []string{"mysql_prod.sales.orders", "sales.orders", "orders"}
	if !reflect.DeepEqual(doc["fqnParts"], wantParts) {
		t.Errorf("fqnParts = %v, want %v", doc["fqnParts"], wantParts)
	}

	suggest := doc["suggest"].([]map[string]any)
	inputs := suggest[0]["input"].([]string)
	if !reflect.DeepEqual(inputs, []string{"orders", "Orders", "mysql_prod.sales.orders"}) {
		t.Errorf("suggest inputs = %v", inputs)
	}
}

func TestBuild_KeepsExistingDeletedFlag(t *testing.T) {
	b := NewBuilder()
	doc, err := b.Build(domain.EntityTable, map[string]any{"name": "t", "deleted": true})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if doc["deleted"] != true {
		t.Errorf("deleted = %v, want snapshot value preserved", doc["deleted"])
	}
}

func TestBuild_DoesNotMutateSnapshot(t *testing.T) {
	b := NewBuilder()
	entity := map[string]any{"name": "t"}
	if _, err := b.Build(domain.EntityTable, entity); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(entity) != 1 {
		t.Errorf("snapshot mutated: %v", entity)
	}
}
