package sync

import (
	"github.com/opencatalog/searchsync/internal/domain"
	"github.com/opencatalog/searchsync/internal/domain/patch"
)

// BuildPatchScript translates a metadata-only change description into a
// patch script. The second return is false when the delta carries no
// recognized field: the caller then skips the write entirely, so the
// document keeps its previous updatedAt.
func BuildPatchScript(ev *domain.ChangeEvent) (patch.Script, bool) {
	if ev.ChangeDescription == nil {
		return patch.Script{}, false
	}

	var ops []patch.Operation

	for _, fc := range ev.ChangeDescription.FieldsAdded {
		if fc.Name == "followers" {
			if ids := referenceIDs(fc.NewValue); len(ids) > 0 {
				ops = append(ops, patch.ListUnion("followers", ids))
			}
		}
	}

	for _, fc := range ev.ChangeDescription.FieldsDeleted {
		if fc.Name == "followers" {
			if ids := referenceIDs(fc.OldValue); len(ids) > 0 {
				ops = append(ops, patch.ListDifference("followers", ids))
			}
		}
	}

	for _, fc := range ev.ChangeDescription.FieldsUpdated {
		switch fc.Name {
		case "usageSummary":
			ops = append(ops, patch.Set("usageSummary", fc.NewValue))
		case "votes":
			ops = append(ops, patch.Set("votes", fc.NewValue))
		case "queryUsedIn":
			if ev.EntityType == domain.EntityQuery {
				ops = append(ops, patch.Set("queryUsedIn", fc.NewValue))
			}
		}
	}

	if len(ops) == 0 {
		return patch.Script{}, false
	}

	// Stamp the sync time only when something actually changes.
	ops = append([]patch.Operation{patch.Set("updatedAt", ev.Timestamp)}, ops...)
	script, err := patch.NewScript(ops...)
	if err != nil {
		return patch.Script{}, false
	}
	return script, true
}

// referenceIDs extracts the id of each entity reference in a decoded JSON
// list. Malformed elements are skipped.
func referenceIDs(v any) []any {
	list, ok := v.([]any)
	if !ok {
		return nil
	}
	ids := make([]any, 0, len(list))
	for _, el := range list {
		ref, ok := el.(map[string]any)
		if !ok {
			continue
		}
		if id, ok := ref["id"].(string); ok && id != "" {
			ids = append(ids, id)
		}
	}
	return ids
}
