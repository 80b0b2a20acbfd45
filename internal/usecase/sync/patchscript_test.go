package sync

import (
	"testing"

	"github.com/opencatalog/searchsync/internal/domain"
	"github.com/opencatalog/searchsync/internal/domain/patch"
)

func metadataEvent(t *testing.T, entityType string, cd *domain.ChangeDescription) *domain.ChangeEvent {
	t.Helper()
	ev := makeEvent(t, entityType, domain.EventUpdated)
	ev.ChangeDescription = cd
	return ev
}

func TestBuildPatchScript_NilDescription(t *testing.T) {
	ev := makeEvent(t, domain.EntityTable, domain.EventUpdated)
	if _, ok := BuildPatchScript(ev); ok {
		t.Fatal("expected no script for nil change description")
	}
}

func TestBuildPatchScript_FollowerAddedIsUnion(t *testing.T) {
	ev := metadataEvent(t, domain.EntityTable, &domain.ChangeDescription{
		FieldsAdded: []domain.FieldChange{{
			Name:     "followers",
			NewValue: []any{map[string]any{"id": "u-1"}, map[string]any{"id": "u-2"}},
		}},
	})

	script, ok := BuildPatchScript(ev)
	if !ok {
		t.Fatal("expected a script")
	}
	ops := script.Operations()
	if len(ops) != 2 {
		t.Fatalf("ops = %d, want updatedAt + union", len(ops))
	}
	if ops[1].Kind() != patch.OpListUnion || ops[1].Path() != "followers" {
		t.Errorf("op = %d %s", ops[1].Kind(), ops[1].Path())
	}
	ids := ops[1].Value().([]any)
	if len(ids) != 2 || ids[0] != "u-1" || ids[1] != "u-2" {
		t.Errorf("ids = %v", ids)
	}
}

func TestBuildPatchScript_FollowerRemovedIsDifference(t *testing.T) {
	ev := metadataEvent(t, domain.EntityTable, &domain.ChangeDescription{
		FieldsDeleted: []domain.FieldChange{{
			Name:     "followers",
			OldValue: []any{map[string]any{"id": "u-1"}},
		}},
	})

	script, ok := BuildPatchScript(ev)
	if !ok {
		t.Fatal("expected a script")
	}
	ops := script.Operations()
	if ops[1].Kind() != patch.OpListDifference {
		t.Errorf("kind = %d, want list difference", ops[1].Kind())
	}
}

func TestBuildPatchScript_UsageSummaryReplaced(t *testing.T) {
	summary := map[string]any{"weeklyStats": map[string]any{"count": float64(42)}}
	ev := metadataEvent(t, domain.EntityTable, &domain.ChangeDescription{
		FieldsUpdated: []domain.FieldChange{{Name: "usageSummary", NewValue: summary}},
	})

	script, ok := BuildPatchScript(ev)
	if !ok {
		t.Fatal("expected a script")
	}
	ops := script.Operations()
	if ops[1].Path() != "usageSummary" || ops[1].Kind() != patch.OpSet {
		t.Errorf("op = %s/%d", ops[1].Path(), ops[1].Kind())
	}
}

func TestBuildPatchScript_QueryUsedInOnlyForQueries(t *testing.T) {
	cd := &domain.ChangeDescription{
		FieldsUpdated: []domain.FieldChange{{Name: "queryUsedIn", NewValue: []any{"t1"}}},
	}

	if _, ok := BuildPatchScript(metadataEvent(t, domain.EntityTable, cd)); ok {
		t.Error("queryUsedIn on a table must be ignored")
	}
	if _, ok := BuildPatchScript(metadataEvent(t, domain.EntityQuery, cd)); !ok {
		t.Error("queryUsedIn on a query must produce a script")
	}
}

func TestBuildPatchScript_UpdatedAtOnlyWithRealOps(t *testing.T) {
	ev := metadataEvent(t, domain.EntityTable, &domain.ChangeDescription{
		FieldsUpdated: []domain.FieldChange{{Name: "tags", NewValue: []any{}}},
	})

	if _, ok := BuildPatchScript(ev); ok {
		t.Fatal("unrecognized field must not produce an updatedAt-only script")
	}
}

func TestBuildPatchScript_UpdatedAtComesFirst(t *testing.T) {
	ev := metadataEvent(t, domain.EntityTable, &domain.ChangeDescription{
		FieldsUpdated: []domain.FieldChange{{Name: "votes", NewValue: map[string]any{"upVotes": float64(3)}}},
	})

	script, ok := BuildPatchScript(ev)
	if !ok {
		t.Fatal("expected a script")
	}
	first := script.Operations()[0]
	if first.Path() != "updatedAt" {
		t.Errorf("first op path = %q", first.Path())
	}
	if first.Value() != ev.Timestamp {
		t.Errorf("updatedAt = %v, want event timestamp", first.Value())
	}
}

func TestReferenceIDs_SkipsMalformedEntries(t *testing.T) {
	ids := referenceIDs([]any{
		map[string]any{"id": "u-1"},
		"not a reference",
		map[string]any{"name": "no id"},
	})
	if len(ids) != 1 || ids[0] != "u-1" {
		t.Errorf("ids = %v", ids)
	}
}
