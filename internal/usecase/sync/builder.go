package sync

import "strings"

// Builder is the default document builder: it flattens an entity snapshot
// into its search document, adding the derived fields the index mapping
// expects.
type Builder struct{}

// NewBuilder creates the default document builder.
func NewBuilder() *Builder { return &Builder{} }

// Build copies the snapshot and derives entityType, the liveness flag, the
// completion suggest inputs, and the FQN split used for hierarchy facets.
func (b *Builder) Build(entityType string, entity map[string]any) (map[string]any, error) {
	doc := make(map[string]any, len(entity)+4)
	for k, v := range entity {
		doc[k] = v
	}

	doc["entityType"] = entityType
	if _, ok := doc["deleted"]; !ok {
		doc["deleted"] = false
	}

	fqn, _ := entity["fullyQualifiedName"].(string)
	if fqn != "" {
		doc["fqnParts"] = fqnParts(fqn)
	}

	inputs := suggestInputs(entity, fqn)
	if len(inputs) > 0 {
		doc["suggest"] = []map[string]any{{"input": inputs}}
	}
	return doc, nil
}

// fqnParts expands a dotted fully qualified name into every suffix path so
// hierarchy levels match as exact terms.
func fqnParts(fqn string) []string {
	segments := strings.Split(fqn, ".")
	parts := make([]string, 0, len(segments))
	for i := range segments {
		parts = append(parts, strings.Join(segments[i:], "."))
	}
	return parts
}

func suggestInputs(entity map[string]any, fqn string) []string {
	var inputs []string
	seen := make(map[string]bool)
	add := func(s string) {
		if s != "" && !seen[s] {
			seen[s] = true
			inputs = append(inputs, s)
		}
	}
	name, _ := entity["name"].(string)
	displayName, _ := entity["displayName"].(string)
	add(name)
	add(displayName)
	add(fqn)
	return inputs
}

var _ DocumentBuilder = (*Builder)(nil)
